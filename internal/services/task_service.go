package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yukikurage/task-tracker-api/internal/constants"
	"github.com/yukikurage/task-tracker-api/internal/dto"
	"github.com/yukikurage/task-tracker-api/internal/models"
	"github.com/yukikurage/task-tracker-api/internal/repository"
)

var (
	ErrTaskNotFound    = errors.New("task not found")
	ErrNotTaskOwner    = errors.New("user not authorized")
	ErrTitleEmpty      = errors.New("title cannot be empty")
	ErrInvalidPriority = errors.New("priority must be one of Low, Medium, High")
)

// TaskService scopes every task read and write to the calling user.
type TaskService struct {
	taskRepo repository.TaskRepository
	now      func() time.Time
}

// NewTaskService creates a new TaskService
func NewTaskService(taskRepo repository.TaskRepository) *TaskService {
	return &TaskService{
		taskRepo: taskRepo,
		now:      time.Now,
	}
}

// ListTasks returns all of the user's tasks, newest first
func (s *TaskService) ListTasks(ctx context.Context, userID string) ([]models.Task, error) {
	return s.list(ctx, repository.TaskFilter{UserID: userID})
}

// ListTasksByCategory returns the user's tasks whose category matches exactly
func (s *TaskService) ListTasksByCategory(ctx context.Context, userID, category string) ([]models.Task, error) {
	return s.list(ctx, repository.TaskFilter{UserID: userID, Category: &category})
}

// ListTasksByStatus returns completed tasks for the "completed" token and
// open tasks for any other token
func (s *TaskService) ListTasksByStatus(ctx context.Context, userID, status string) ([]models.Task, error) {
	completed := status == constants.StatusCompleted
	return s.list(ctx, repository.TaskFilter{UserID: userID, Completed: &completed})
}

// SearchTasks returns the user's tasks whose title contains keyword, ignoring case
func (s *TaskService) SearchTasks(ctx context.Context, userID, keyword string) ([]models.Task, error) {
	return s.list(ctx, repository.TaskFilter{UserID: userID, TitleContains: &keyword})
}

func (s *TaskService) list(ctx context.Context, filter repository.TaskFilter) ([]models.Task, error) {
	tasks, err := s.taskRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	return tasks, nil
}

// CreateTask creates a task owned by userID
func (s *TaskService) CreateTask(ctx context.Context, userID string, input dto.CreateTaskRequest) (*models.Task, error) {
	tags := input.Tags
	if tags == nil {
		tags = []string{}
	}
	priority := input.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}

	now := s.now()
	task := &models.Task{
		Title:       input.Title,
		Description: input.Description,
		Category:    input.Category,
		Tags:        tags,
		Priority:    priority,
		DueDate:     input.DueDate.Ptr(),
		UserID:      userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return task, nil
}

// GetTask returns a task if it exists and belongs to userID
func (s *TaskService) GetTask(ctx context.Context, userID, taskID string) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if task.UserID != userID {
		return nil, ErrNotTaskOwner
	}

	return task, nil
}

// UpdateTask applies patch to a task owned by userID and returns the result.
// The write only succeeds while the task still exists under the same owner.
// An empty patch returns the task unchanged.
func (s *TaskService) UpdateTask(ctx context.Context, userID, taskID string, patch dto.TaskPatch) (*models.Task, error) {
	task, err := s.GetTask(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}
	if patch.Empty() {
		return task, nil
	}

	if err := applyPatch(task, patch); err != nil {
		return nil, err
	}
	task.UpdatedAt = s.now()

	if err := s.taskRepo.Update(ctx, task); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return task, nil
}

// DeleteTask permanently deletes a task owned by userID
func (s *TaskService) DeleteTask(ctx context.Context, userID, taskID string) error {
	if _, err := s.GetTask(ctx, userID, taskID); err != nil {
		return err
	}

	if err := s.taskRepo.Delete(ctx, taskID, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to delete task: %w", err)
	}

	return nil
}

// applyPatch overwrites the fields present in patch. A null value resets the
// field to its default.
func applyPatch(task *models.Task, patch dto.TaskPatch) error {
	if patch.Title.Present {
		if patch.Title.Null || patch.Title.Value == "" {
			return ErrTitleEmpty
		}
		task.Title = patch.Title.Value
	}
	if patch.Priority.Present {
		priority := patch.Priority.Value
		if patch.Priority.Null {
			priority = models.PriorityMedium
		}
		if !priority.Valid() {
			return ErrInvalidPriority
		}
		task.Priority = priority
	}
	if patch.Description.Present {
		task.Description = patch.Description.Value
	}
	if patch.Completed.Present {
		task.Completed = patch.Completed.Value
	}
	if patch.Category.Present {
		task.Category = patch.Category.Value
	}
	if patch.Tags.Present {
		task.Tags = patch.Tags.Value
		if task.Tags == nil {
			task.Tags = []string{}
		}
	}
	if patch.DueDate.Present {
		if patch.DueDate.Null {
			task.DueDate = nil
		} else {
			due := patch.DueDate.Value.Time
			task.DueDate = &due
		}
	}
	return nil
}
