package models

import "time"

// UserAchievement records that a user unlocked an achievement. The unique index
// guarantees at most one row, and therefore one XP reward, per pair.
type UserAchievement struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        uint      `gorm:"not null;uniqueIndex:uniq_user_achievement,priority:1" json:"user_id"`
	AchievementID string    `gorm:"size:64;not null;uniqueIndex:uniq_user_achievement,priority:2" json:"achievement_id"`
	UnlockedAt    time.Time `gorm:"not null" json:"unlocked_at"`
}
