package models

import "time"

// DailyActivity stores per-user daily activity counters. One row per (user, date).
type DailyActivity struct {
	ID                   uint      `gorm:"primaryKey" json:"-"`
	UserID               uint      `gorm:"not null;uniqueIndex:uniq_activity_user_date,priority:1" json:"-"`
	Date                 Date      `gorm:"type:varchar(10);not null;uniqueIndex:uniq_activity_user_date,priority:2" json:"date"`
	TasksCompleted       int       `gorm:"not null;default:0" json:"tasks_completed"`
	FocusTime            int       `gorm:"not null;default:0" json:"focus_time"`
	NotesCreated         int       `gorm:"not null;default:0" json:"notes_created"`
	ExpensesLogged       int       `gorm:"not null;default:0" json:"expenses_logged"`
	CompletionPercentage int       `gorm:"not null;default:0" json:"completion_percentage"`
	CreatedAt            time.Time `json:"-"`
	UpdatedAt            time.Time `json:"-"`
}

// TableName returns the database table name.
func (DailyActivity) TableName() string {
	return "daily_activities"
}
