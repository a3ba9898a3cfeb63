package models

import "time"

// DefaultHabitIcon is used when a habit is created without an icon.
const DefaultHabitIcon = "☀️"

// Habit is a daily recurring checkmark with its own streak.
// IsCompleted is per-day state; it is cleared when the day rolls over.
type Habit struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	UserID            uint      `gorm:"index;not null" json:"user_id"`
	Title             string    `gorm:"size:255;not null" json:"title"`
	Icon              string    `gorm:"size:32" json:"icon"`
	Order             int       `gorm:"column:sort_order;not null;default:0" json:"order"`
	IsCompleted       bool      `gorm:"not null;default:false" json:"is_completed"`
	LastCompletedDate Date      `gorm:"type:varchar(10)" json:"last_completed_date"`
	CurrentStreak     int       `gorm:"not null;default:0" json:"current_streak"`
	CreatedAt         time.Time `json:"created_at"`
}
