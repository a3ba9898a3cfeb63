package gamification

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cppla/lifeos/utils"
)

// Event handlers run after the primary action has been committed. Each step is
// attempted independently; failures are logged and counted, never returned.
// Only malformed input is reported, before anything is written.

// OnTaskCreated rewards creating a task.
func (s *Service) OnTaskCreated(ctx context.Context, userID uint) {
	s.sideEffect("xp_grant", userID, s.Grant(ctx, userID, XPTaskCreated, SourceTaskCreated))
}

// OnTaskCompleted rewards a completion by priority, refreshes the day streak
// and counts the task in today's activity. completedAt is only logged: the
// streak and the activity counter always use the service clock's today, and
// the streak evidence is re-read from the stored completed_at values.
func (s *Service) OnTaskCompleted(ctx context.Context, userID uint, priority int, completedAt time.Time) error {
	if priority < 0 {
		return fmt.Errorf("%w: priority must not be negative, got %d", ErrInvalidInput, priority)
	}
	s.logger.Debug("task_completed",
		zap.Uint("user_id", userID),
		zap.Int("priority", priority),
		zap.Time("completed_at", completedAt.UTC()),
	)
	s.sideEffect("xp_grant", userID, s.Grant(ctx, userID, XPForTaskCompletion(priority), SourceTaskCompleted))
	s.sideEffect("streak_refresh", userID, s.RefreshStreak(ctx, userID))
	s.sideEffect("activity_increment", userID, s.IncrementActivity(ctx, userID, ActivityTasksCompleted, 1))
	return nil
}

// OnNoteCreated rewards a new note and counts it in today's activity.
func (s *Service) OnNoteCreated(ctx context.Context, userID uint) {
	s.sideEffect("xp_grant", userID, s.Grant(ctx, userID, XPNoteCreated, SourceNoteCreated))
	s.sideEffect("activity_increment", userID, s.IncrementActivity(ctx, userID, ActivityNotesCreated, 1))
}

// OnFocusSessionCompleted rewards an uninterrupted session and adds its
// minutes to today's focus time either way.
func (s *Service) OnFocusSessionCompleted(ctx context.Context, userID uint, durationActual int, interrupted bool) error {
	if durationActual < 0 {
		return fmt.Errorf("%w: focus duration must not be negative, got %d", ErrInvalidInput, durationActual)
	}
	if !interrupted {
		s.sideEffect("xp_grant", userID, s.Grant(ctx, userID, XPFocusSession, SourceFocusSession))
	}
	s.sideEffect("activity_increment", userID, s.IncrementActivity(ctx, userID, ActivityFocusTime, durationActual))
	return nil
}

// OnExpenseLogged counts budget rows in today's activity.
func (s *Service) OnExpenseLogged(ctx context.Context, userID uint, count int) error {
	if count < 0 {
		return fmt.Errorf("%w: expense count must not be negative, got %d", ErrInvalidInput, count)
	}
	if count == 0 {
		return nil
	}
	s.sideEffect("activity_increment", userID, s.IncrementActivity(ctx, userID, ActivityExpensesLogged, count))
	return nil
}

func (s *Service) sideEffect(op string, userID uint, err error) {
	if err == nil {
		return
	}
	utils.GamificationFailures.WithLabelValues(op).Inc()
	s.logger.Warn(op+"_failed", zap.Uint("user_id", userID), zap.Error(err))
}
