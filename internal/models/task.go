package models

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"gorm.io/gorm"
)

type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	default:
		return false
	}
}

type Task struct {
	ID          string     `gorm:"primarykey;type:varchar(36)" json:"id"`
	Title       string     `gorm:"type:varchar(255);not null" json:"title"`
	TitleFolded string     `gorm:"type:varchar(255);not null;default:''" json:"-"`
	Description string     `gorm:"type:text" json:"description"`
	Category    string     `gorm:"type:varchar(100);index" json:"category"`
	Tags        []string   `gorm:"type:text;serializer:json" json:"tags"`
	Priority    Priority   `gorm:"type:varchar(10);not null" json:"priority"`
	Completed   bool       `gorm:"not null" json:"completed"`
	DueDate     *time.Time `json:"dueDate"`
	UserID      string     `gorm:"type:varchar(36);not null;index:idx_tasks_user_created,priority:1" json:"user"`
	CreatedAt   time.Time  `gorm:"index:idx_tasks_user_created,priority:2" json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// FoldTitle returns the Unicode case folded form of s. Title search compares
// folded titles against folded keywords so matching ignores case beyond ASCII.
func FoldTitle(s string) string {
	return cases.Fold().String(s)
}

// BeforeCreate assigns a UUID when the caller did not provide an ID and
// stores the folded title used by search.
func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	t.TitleFolded = FoldTitle(t.Title)
	return nil
}

// AfterFind keeps tags an empty list rather than null on the wire.
func (t *Task) AfterFind(tx *gorm.DB) error {
	if t.Tags == nil {
		t.Tags = []string{}
	}
	return nil
}
