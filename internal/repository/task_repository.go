package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/yukikurage/task-tracker-api/internal/models"
	"gorm.io/gorm"
)

// likeEscaper escapes LIKE wildcards with '!', which every supported SQL
// dialect accepts in an ESCAPE clause without further quoting.
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// updatableTaskColumns are written by Update. user_id, id and created_at are
// never among them.
var updatableTaskColumns = []string{
	"title", "title_folded", "description", "category", "tags", "priority", "completed", "due_date", "updated_at",
}

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create creates a new task
func (r *GormTaskRepository) Create(ctx context.Context, task *models.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

// FindByID finds a task by ID
func (r *GormTaskRepository) FindByID(ctx context.Context, id string) (*models.Task, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}

	var task models.Task
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&task).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &task, nil
}

// List retrieves tasks with filtering
func (r *GormTaskRepository) List(ctx context.Context, filter TaskFilter) ([]models.Task, error) {
	query := r.db.WithContext(ctx).Model(&models.Task{}).Where("user_id = ?", filter.UserID)

	// Apply filters
	if filter.Category != nil {
		query = query.Where(r.categoryEquals(), *filter.Category)
	}
	if filter.Completed != nil {
		query = query.Where("completed = ?", *filter.Completed)
	}
	if filter.TitleContains != nil {
		pattern := "%" + likeEscaper.Replace(models.FoldTitle(*filter.TitleContains)) + "%"
		query = query.Where("title_folded LIKE ? ESCAPE '!'", pattern)
	}

	tasks := []models.Task{}
	if err := query.Order("created_at DESC").Order("id DESC").Find(&tasks).Error; err != nil {
		return nil, err
	}

	return tasks, nil
}

// categoryEquals compares categories byte for byte. MySQL's default utf8mb4
// collation ignores case, so the comparison is forced onto the binary one.
func (r *GormTaskRepository) categoryEquals() string {
	if r.db.Dialector.Name() == "mysql" {
		return "category = ? COLLATE utf8mb4_bin"
	}
	return "category = ?"
}

// Update writes the mutable columns of task, only if it still belongs to task.UserID
func (r *GormTaskRepository) Update(ctx context.Context, task *models.Task) error {
	// Hooks run against the empty model below, not task.
	task.TitleFolded = models.FoldTitle(task.Title)

	result := r.db.WithContext(ctx).
		Model(&models.Task{}).
		Where("id = ? AND user_id = ?", task.ID, task.UserID).
		Select(updatableTaskColumns).
		Updates(task)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete hard deletes a task owned by userID
func (r *GormTaskRepository) Delete(ctx context.Context, id, userID string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}

	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.Task{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
