package entity

import "time"

// ProjectStatus is the lifecycle state of a project.
type ProjectStatus string

const (
	ProjectOpen  ProjectStatus = "Open"
	ProjectTaken ProjectStatus = "Taken"
)

// DeadlineLayout is the date format accepted for project deadlines.
const DeadlineLayout = "2006-01-02"

// Project is an admin-created work item that users can claim.
// Status is Open iff AssignedTo is empty.
type Project struct {
	ID            string        `json:"_id"`
	Title         string        `json:"title"`
	Description   string        `json:"description"`
	Deadline      time.Time     `json:"deadline"`
	Status        ProjectStatus `json:"status"`
	AssignedTo    []string      `json:"assignedTo"`
	CreatedBy     string        `json:"createdBy,omitempty"`
	AttachmentURL string        `json:"attachmentUrl,omitempty"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

// IsAssignedTo reports whether userID appears in the assignee list.
func (p *Project) IsAssignedTo(userID string) bool {
	for _, id := range p.AssignedTo {
		if id == userID {
			return true
		}
	}
	return false
}
