package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/yukikurage/task-tracker-api/internal/models"
)

// dateLayout is accepted for due dates in addition to RFC 3339.
const dateLayout = "2006-01-02"

// Optional carries a JSON field that may be absent, explicitly null, or set.
// The zero value means the field was absent from the request body.
type Optional[T any] struct {
	Value   T
	Present bool
	Null    bool
}

// Some returns a present, non-null Optional.
func Some[T any](value T) Optional[T] {
	return Optional[T]{Value: value, Present: true}
}

// Null returns a present Optional holding JSON null.
func Null[T any]() Optional[T] {
	return Optional[T]{Present: true, Null: true}
}

// UnmarshalJSON is only invoked by encoding/json when the key is present, so
// reaching it is what marks the field as present.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Present = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		var zero T
		o.Value = zero
		o.Null = true
		return nil
	}
	o.Null = false
	if err := json.Unmarshal(data, &o.Value); err != nil {
		return err
	}
	if n, ok := any(o.Value).(nullable); ok && n.isNull() {
		o.Null = true
	}
	return nil
}

// nullable is implemented by values that have a JSON spelling other than
// null meaning "no value".
type nullable interface {
	isNull() bool
}

// DueDate accepts either an RFC 3339 timestamp or a plain YYYY-MM-DD date.
// An empty string means no due date, the same as null.
type DueDate struct {
	time.Time
}

func (d *DueDate) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("dueDate must be a string: %w", err)
	}
	if raw == "" {
		d.Time = time.Time{}
		return nil
	}

	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		d.Time = t
		return nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return fmt.Errorf("dueDate must be RFC 3339 or %s: %q", dateLayout, raw)
	}
	d.Time = t
	return nil
}

func (d DueDate) isNull() bool {
	return d.IsZero()
}

// Ptr returns the due date as a *time.Time, nil when no date was given.
func (d *DueDate) Ptr() *time.Time {
	if d == nil || d.IsZero() {
		return nil
	}
	t := d.Time
	return &t
}

// CreateTaskRequest is the body of POST /api/tasks.
type CreateTaskRequest struct {
	Title       string          `json:"title" binding:"required"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Tags        []string        `json:"tags"`
	Priority    models.Priority `json:"priority" binding:"omitempty,oneof=Low Medium High"`
	DueDate     *DueDate        `json:"dueDate"`
}

// TaskPatch is the body of PUT /api/tasks/:id. Only present fields are
// applied to the stored task.
type TaskPatch struct {
	Title       Optional[string]          `json:"title"`
	Description Optional[string]          `json:"description"`
	Completed   Optional[bool]            `json:"completed"`
	Category    Optional[string]          `json:"category"`
	Tags        Optional[[]string]        `json:"tags"`
	Priority    Optional[models.Priority] `json:"priority"`
	DueDate     Optional[DueDate]         `json:"dueDate"`
}

// Empty reports whether the patch names no field at all.
func (p TaskPatch) Empty() bool {
	return !p.Title.Present &&
		!p.Description.Present &&
		!p.Completed.Present &&
		!p.Category.Present &&
		!p.Tags.Present &&
		!p.Priority.Present &&
		!p.DueDate.Present
}

// MessageResponse is returned by operations that confirm rather than echo.
type MessageResponse struct {
	Message string `json:"message"`
}
