package gamification

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cppla/lifeos/models"
)

// ListHabits returns the user's habits in display order. Habits checked off on
// an earlier day are unchecked first; their streaks are kept.
func (s *Service) ListHabits(ctx context.Context, userID uint) ([]models.Habit, error) {
	today := s.Today()
	db := s.db.WithContext(ctx)

	if err := db.Model(&models.Habit{}).
		Where("user_id = ? AND is_completed = ?", userID, true).
		Where("last_completed_date IS NULL OR last_completed_date <> ?", today).
		UpdateColumn("is_completed", false).Error; err != nil {
		return nil, fmt.Errorf("reset stale habits for user %d: %w", userID, err)
	}

	var habits []models.Habit
	if err := db.Where("user_id = ?", userID).Order("sort_order ASC, id ASC").Find(&habits).Error; err != nil {
		return nil, fmt.Errorf("list habits for user %d: %w", userID, err)
	}
	return habits, nil
}

// OnHabitToggled records a habit being checked or unchecked today and returns
// the updated habit. Unchecking never touches the streak. Checking extends the
// streak when the previous completion was yesterday, keeps it when it was
// today, and restarts it at 1 otherwise.
func (s *Service) OnHabitToggled(ctx context.Context, userID, habitID uint, completed bool) (*models.Habit, error) {
	today := s.Today()
	var habit models.Habit

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND user_id = ?", habitID, userID).
			First(&habit).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		if !completed {
			habit.IsCompleted = false
			return tx.Model(&habit).UpdateColumn("is_completed", false).Error
		}

		prev := habit.LastCompletedDate
		switch {
		case prev.Equal(today.AddDays(-1)):
			habit.CurrentStreak++
		case !prev.Equal(today):
			habit.CurrentStreak = 1
		}
		habit.IsCompleted = true
		habit.LastCompletedDate = today
		return tx.Model(&habit).UpdateColumns(map[string]interface{}{
			"is_completed":        true,
			"last_completed_date": today,
			"current_streak":      habit.CurrentStreak,
		}).Error
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("habit %d: %w", habitID, ErrNotFound)
		}
		return nil, fmt.Errorf("toggle habit %d: %w", habitID, err)
	}
	return &habit, nil
}
