package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	TaskStatusPending   = "pending"
	TaskStatusCompleted = "completed"

	TaskCategoryDaily        = "daily"
	TaskCategoryWeekly       = "weekly"
	TaskCategoryHighPriority = "high_priority"
)

// TaskCategories lists the accepted task categories.
var TaskCategories = []string{TaskCategoryDaily, TaskCategoryWeekly, TaskCategoryHighPriority}

// Task is a to-do item. Completing it feeds XP, the user streak and daily activity.
type Task struct {
	ID            uint                        `gorm:"primaryKey" json:"id"`
	UserID        uint                        `gorm:"index;not null" json:"user_id"`
	Title         string                      `gorm:"size:255;not null" json:"title"`
	Description   string                      `gorm:"type:text" json:"description"`
	Category      string                      `gorm:"size:32;index;not null;default:'daily'" json:"category"`
	Priority      int                         `gorm:"not null;default:0" json:"priority"`
	Status        string                      `gorm:"size:16;index;not null;default:'pending'" json:"status"`
	EstimatedTime *int                        `json:"estimated_time"`
	ActualTime    *int                        `json:"actual_time"`
	DueDate       Date                        `gorm:"type:varchar(10);index" json:"due_date"`
	CompletedAt   *time.Time                  `gorm:"index" json:"completed_at"`
	Tags          datatypes.JSONSlice[string] `json:"tags"`
	CreatedAt     time.Time                   `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time                   `json:"updated_at"`
}

// IsCompleted reports whether the task has been completed.
func (t *Task) IsCompleted() bool {
	return t.Status == TaskStatusCompleted
}
