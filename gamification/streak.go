package gamification

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cppla/lifeos/models"
)

// RefreshStreak advances the user's day streak if at least one task was
// completed today. Repeated calls on the same day leave it unchanged.
func (s *Service) RefreshStreak(ctx context.Context, userID uint) error {
	today := s.Today()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var completedToday int64
		if err := tx.Model(&models.Task{}).
			Where("user_id = ? AND status = ? AND completed_at >= ? AND completed_at < ?",
				userID, models.TaskStatusCompleted, today.Start(), today.AddDays(1).Start()).
			Count(&completedToday).Error; err != nil {
			return err
		}
		if completedToday == 0 {
			return nil
		}

		var user models.User
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id", "current_streak", "longest_streak", "last_streak_date").
			First(&user, userID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		current, longest, changed := nextStreak(user.CurrentStreak, user.LongestStreak, user.LastStreakDate, today)
		if !changed {
			return nil
		}
		return tx.Model(&models.User{}).Where("id = ?", userID).UpdateColumns(map[string]interface{}{
			"current_streak":   current,
			"longest_streak":   longest,
			"last_streak_date": today,
		}).Error
	})
	if err != nil {
		return fmt.Errorf("refresh streak for user %d: %w", userID, err)
	}
	return nil
}

// nextStreak applies one qualifying day to a streak. A day already counted is
// not counted again; a gap of more than one day starts over at 1.
func nextStreak(current, longest int, last, today models.Date) (int, int, bool) {
	switch {
	case last.Equal(today):
		return current, longest, false
	case last.Equal(today.AddDays(-1)):
		current++
	default:
		current = 1
	}
	if current > longest {
		longest = current
	}
	return current, longest, true
}
