package gamification

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cppla/lifeos/models"
)

// ActivityField names a counter on the daily activity record.
type ActivityField string

const (
	ActivityTasksCompleted ActivityField = "tasks_completed"
	ActivityFocusTime      ActivityField = "focus_time"
	ActivityNotesCreated   ActivityField = "notes_created"
	ActivityExpensesLogged ActivityField = "expenses_logged"
)

// Valid reports whether f is an incrementable counter.
func (f ActivityField) Valid() bool {
	switch f {
	case ActivityTasksCompleted, ActivityFocusTime, ActivityNotesCreated, ActivityExpensesLogged:
		return true
	}
	return false
}

// IncrementActivity adds amount to field on today's activity record, creating
// the record on the first event of the day.
func (s *Service) IncrementActivity(ctx context.Context, userID uint, field ActivityField, amount int) error {
	if !field.Valid() {
		return fmt.Errorf("%w: unknown activity field %q", ErrInvalidInput, field)
	}
	if amount < 0 {
		return fmt.Errorf("%w: activity increment must not be negative, got %d", ErrInvalidInput, amount)
	}

	record := models.DailyActivity{UserID: userID, Date: s.Today()}
	switch field {
	case ActivityTasksCompleted:
		record.TasksCompleted = amount
	case ActivityFocusTime:
		record.FocusTime = amount
	case ActivityNotesCreated:
		record.NotesCreated = amount
	case ActivityExpensesLogged:
		record.ExpensesLogged = amount
	}

	db := s.db.WithContext(ctx)
	// Atomic upsert: concurrent first events of a day must not lose an increment
	err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "date"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			string(field): gorm.Expr(existingColumn(db, record.TableName(), string(field))+" + ?", amount),
			"updated_at":  s.Now(),
		}),
	}).Create(&record).Error
	if err != nil {
		return fmt.Errorf("increment %s for user %d: %w", field, userID, err)
	}
	return nil
}

// existingColumn references the stored row's column inside an upsert's update
// clause. PostgreSQL rejects the bare name as ambiguous with EXCLUDED.
func existingColumn(db *gorm.DB, table, column string) string {
	if db.Dialector.Name() == "postgres" {
		return table + "." + column
	}
	return column
}
