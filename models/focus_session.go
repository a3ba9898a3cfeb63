package models

import "time"

// FocusSession is a timed focus block. DurationActual and CompletedAt are set on completion.
type FocusSession struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	UserID          uint       `gorm:"index;not null" json:"user_id"`
	TaskID          *uint      `gorm:"index" json:"task_id"`
	DurationPlanned int        `gorm:"not null" json:"duration_planned"`
	DurationActual  *int       `json:"duration_actual"`
	StartedAt       time.Time  `gorm:"index;not null" json:"started_at"`
	CompletedAt     *time.Time `gorm:"index" json:"completed_at"`
	Interrupted     bool       `gorm:"not null;default:false" json:"interrupted"`
}
