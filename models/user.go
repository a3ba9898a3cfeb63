package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// User is a LifeOS account. Passwords are stored as bcrypt hashes only.
// TotalXP, CurrentLevel and the streak fields are owned by the gamification service.
type User struct {
	ID                  uint                        `gorm:"primaryKey" json:"id"`
	Email               string                      `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Username            string                      `gorm:"size:64;uniqueIndex;not null" json:"username"`
	PasswordHash        string                      `gorm:"size:255" json:"-"`
	TotalXP             int                         `gorm:"not null;default:0" json:"total_xp"`
	CurrentLevel        int                         `gorm:"not null;default:1" json:"current_level"`
	CurrentStreak       int                         `gorm:"not null;default:0" json:"current_streak"`
	LongestStreak       int                         `gorm:"not null;default:0" json:"longest_streak"`
	LastStreakDate      Date                        `gorm:"type:varchar(10)" json:"last_streak_date"`
	InitialBalance      float64                     `gorm:"not null;default:0" json:"initial_balance"`
	IsInitialBalanceSet bool                        `gorm:"not null;default:false" json:"is_initial_balance_set"`
	CustomNoteLabels    datatypes.JSONSlice[string] `json:"custom_note_labels"`
	CreatedAt           time.Time                   `json:"created_at"`
	UpdatedAt           time.Time                   `json:"updated_at"`
}

// BeforeCreate hook ensures timestamps and list fields are set even when not provided.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	if u.CurrentLevel == 0 {
		u.CurrentLevel = 1
	}
	if u.CustomNoteLabels == nil {
		u.CustomNoteLabels = datatypes.JSONSlice[string]{}
	}
	return nil
}

// BeforeUpdate ensures the UpdatedAt timestamp is refreshed.
func (u *User) BeforeUpdate(tx *gorm.DB) error {
	u.UpdatedAt = time.Now().UTC()
	return nil
}
