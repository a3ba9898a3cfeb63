package gamification

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/cppla/lifeos/models"
	"github.com/cppla/lifeos/utils"
)

// XP awarded per event.
const (
	XPTaskCreated  = 5
	XPNoteCreated  = 5
	XPFocusSession = 25
)

// Grant sources, used as metric labels and log fields.
const (
	SourceTaskCreated   = "task_created"
	SourceTaskCompleted = "task_completed"
	SourceNoteCreated   = "note_created"
	SourceFocusSession  = "focus_session"
	SourceAchievement   = "achievement"
)

// XPForTaskCompletion is 10 plus 10 per priority point.
func XPForTaskCompletion(priority int) int {
	return 10 + priority*10
}

// Grant adds amount to the user's total XP and recomputes the level in one
// transaction. A missing user is a silent no-op.
func (s *Service) Grant(ctx context.Context, userID uint, amount int, source string) error {
	if amount <= 0 {
		return fmt.Errorf("%w: xp amount must be positive, got %d", ErrInvalidInput, amount)
	}

	var granted bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		granted, err = grantTx(tx, userID, amount)
		return err
	})
	if err != nil {
		return fmt.Errorf("grant %d xp to user %d: %w", amount, userID, err)
	}
	if granted {
		utils.XPGranted.WithLabelValues(source).Add(float64(amount))
	}
	return nil
}

// grantTx increments total_xp in place, so concurrent grants never lose an
// update, then derives current_level from the committed total. The UPDATE
// holds the row lock until tx ends.
func grantTx(tx *gorm.DB, userID uint, amount int) (bool, error) {
	res := tx.Model(&models.User{}).
		Where("id = ?", userID).
		UpdateColumn("total_xp", gorm.Expr("total_xp + ?", amount))
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}

	var total int
	if err := tx.Model(&models.User{}).Where("id = ?", userID).Select("total_xp").Scan(&total).Error; err != nil {
		return false, err
	}
	if err := tx.Model(&models.User{}).Where("id = ?", userID).UpdateColumn("current_level", Level(total)).Error; err != nil {
		return false, err
	}
	return true, nil
}
