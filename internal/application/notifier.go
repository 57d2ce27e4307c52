package application

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/project-board/internal/domain/entity"
	"github.com/oksasatya/project-board/pkg/mailer"
	tpl "github.com/oksasatya/project-board/pkg/mailer/templates"
)

// Notifier turns domain events into email jobs on the queue. Failures are
// logged and never fail the request that triggered them.
type Notifier struct {
	Pub     EventPublisher
	Logger  *logrus.Logger
	Enabled bool
	AppName string
	AppURL  string
}

func NewNotifier(pub EventPublisher, logger *logrus.Logger, enabled bool, appName, appURL string) *Notifier {
	return &Notifier{Pub: pub, Logger: logger, Enabled: enabled, AppName: appName, AppURL: appURL}
}

func (n *Notifier) active() bool {
	return n != nil && n.Enabled && n.Pub != nil
}

func (n *Notifier) publish(ctx context.Context, job mailer.EmailJob) {
	if !n.active() {
		return
	}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := n.Pub.PublishJSON(c, job); err != nil && n.Logger != nil {
		n.Logger.WithError(err).WithFields(logrus.Fields{"to": job.To, "template": job.Template}).Warn("failed to publish email job")
	}
}

func (n *Notifier) base(u *entity.User) map[string]any {
	return map[string]any{
		"Name":    u.Name,
		"Email":   u.Email,
		"Role":    string(u.Role),
		"AppName": n.AppName,
		"AppURL":  n.AppURL,
	}
}

// Welcome is sent after registration.
func (n *Notifier) Welcome(ctx context.Context, u *entity.User) {
	if !n.active() {
		return
	}
	n.publish(ctx, mailer.EmailJob{To: u.Email, Template: tpl.Welcome, Data: n.base(u)})
}

// ProjectClaimed confirms a claim to the claimant.
func (n *Notifier) ProjectClaimed(ctx context.Context, u *entity.User, p *entity.Project) {
	if !n.active() {
		return
	}
	data := n.base(u)
	data["Title"] = p.Title
	data["Deadline"] = p.Deadline
	data["ProjectID"] = p.ID
	n.publish(ctx, mailer.EmailJob{To: u.Email, Template: tpl.ProjectClaimed, Data: data})
}

// TaskCompleted tells the assignee about the score award.
func (n *Notifier) TaskCompleted(ctx context.Context, u *entity.User, task entity.Task, points int) {
	if !n.active() {
		return
	}
	data := n.base(u)
	data["Title"] = task.Title
	data["ProjectID"] = task.ID
	data["Points"] = points
	data["TotalScore"] = u.TotalScore
	n.publish(ctx, mailer.EmailJob{To: u.Email, Template: tpl.TaskCompleted, Data: data})
}
