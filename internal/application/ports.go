package application

import (
	"context"
	"io"

	"github.com/oksasatya/project-board/internal/domain/entity"
)

// Optional collaborators. A nil value disables the feature it backs.

// EventPublisher enqueues a JSON job; *helpers.RabbitPublisher satisfies it.
type EventPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// ProjectIndex is the full-text index over projects.
type ProjectIndex interface {
	Index(ctx context.Context, p *entity.Project) error
	Search(ctx context.Context, q string, size int) ([]string, error)
}

// ObjectStorage stores uploaded files; *helpers.GCSUploader satisfies it.
type ObjectStorage interface {
	Upload(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error)
}
