package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/project-board/pkg/helpers"
	tpl "github.com/oksasatya/project-board/pkg/mailer/templates"
)

// Outcome tells the consumer what to do with a delivery.
type Outcome int

const (
	Ack     Outcome = iota // delivered
	Requeue                // transient send failure
	Drop                   // malformed job; retrying cannot help
)

var errEmptyJob = errors.New("job has no recipient or content")

// Worker renders queued EmailJobs and hands them to a Sender.
type Worker struct {
	Sender      Sender
	Logger      *logrus.Logger
	SendTimeout time.Duration
}

func NewWorker(sender Sender, logger *logrus.Logger) *Worker {
	if logger == nil {
		logger = helpers.NewDiscardLogger()
	}
	return &Worker{Sender: sender, Logger: logger, SendTimeout: 15 * time.Second}
}

// Render resolves the subject and bodies of job, from its template when set.
func Render(job EmailJob) (subject, text, html string, err error) {
	if job.To == "" {
		return "", "", "", errEmptyJob
	}
	if job.Template != "" {
		return tpl.Render(job.Template, job.Data)
	}
	if job.Subject == "" || (job.Text == "" && job.HTML == "") {
		return "", "", "", errEmptyJob
	}
	return job.Subject, job.Text, job.HTML, nil
}

// Handle processes one message body.
func (w *Worker) Handle(ctx context.Context, body []byte) Outcome {
	var job EmailJob
	if err := json.Unmarshal(body, &job); err != nil {
		w.Logger.WithError(err).Warn("bad email job")
		return Drop
	}
	subject, text, html, err := Render(job)
	if err != nil {
		w.Logger.WithError(err).WithField("template", job.Template).Warn("render email job failed")
		return Drop
	}

	c, cancel := context.WithTimeout(ctx, w.SendTimeout)
	defer cancel()
	if err := w.Sender.Send(c, job.To, subject, text, html); err != nil {
		w.Logger.WithError(err).WithField("to", job.To).Warn("send failed")
		return Requeue
	}
	w.Logger.WithFields(logrus.Fields{"to": job.To, "template": job.Template}).Info("email sent")
	return Ack
}
