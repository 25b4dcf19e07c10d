package repository

import (
	"context"
	"errors"

	"github.com/yukikurage/task-tracker-api/internal/models"
)

var (
	// ErrNotFound is returned when no record matches. Malformed identifiers
	// are reported the same way.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique constraint is violated.
	ErrDuplicate = errors.New("duplicate record")
)

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create stores a new task and fills in its ID
	Create(ctx context.Context, task *models.Task) error

	// FindByID finds a task by ID regardless of owner
	FindByID(ctx context.Context, id string) (*models.Task, error)

	// List retrieves one owner's tasks, newest first
	List(ctx context.Context, filter TaskFilter) ([]models.Task, error)

	// Update overwrites the mutable fields of a task, matching on both
	// task.ID and task.UserID
	Update(ctx context.Context, task *models.Task) error

	// Delete hard deletes a task, matching on both id and owner
	Delete(ctx context.Context, id, userID string) error
}

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	UserID        string
	Category      *string
	Completed     *bool
	TitleContains *string
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *models.User) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id string) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}
