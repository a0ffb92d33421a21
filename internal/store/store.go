package store

import (
	"context"

	"github.com/mbichler/pulse/internal/models"
)

// TaskListFilter specifies filters for listing tasks.
type TaskListFilter struct {
	Owner   string
	Project string
	Status  models.TaskStatus
}

// Store defines the persistence interface for the dashboard's static
// tasks/projects data. The live status snapshot is not stored here; it is
// derived from the transcript on every run.
type Store interface {
	// Tasks
	CreateTask(ctx context.Context, task *models.Task) error
	GetTask(ctx context.Context, id string) (*models.Task, error)
	ListTasks(ctx context.Context, filter TaskListFilter) ([]*models.Task, error)
	UpdateTask(ctx context.Context, task *models.Task) error
	DeleteTask(ctx context.Context, id string) error
	ToggleTask(ctx context.Context, id string) (*models.Task, error)

	// Projects
	CreateProject(ctx context.Context, p *models.Project) error
	GetProject(ctx context.Context, key string) (*models.Project, error)
	ListProjects(ctx context.Context) ([]*models.Project, error)
	UpdateProject(ctx context.Context, p *models.Project) error
	DeleteProject(ctx context.Context, key string) error

	// DataDocument assembles the combined tasks/projects document the
	// dashboard fetches once at load.
	DataDocument(ctx context.Context) (*models.DataDocument, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
