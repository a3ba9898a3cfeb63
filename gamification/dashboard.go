package gamification

import (
	"context"
	"errors"
	"fmt"
	"math"

	"gorm.io/gorm"

	"github.com/cppla/lifeos/models"
)

// MaxHistoryDays bounds GetActivityHistory.
const MaxHistoryDays = 3660

// DashboardStats is the summary shown on the dashboard.
type DashboardStats struct {
	CurrentStreak        int     `json:"current_streak"`
	LongestStreak        int     `json:"longest_streak"`
	TotalXP              int     `json:"total_xp"`
	CurrentLevel         int     `json:"current_level"`
	TasksCompletedToday  int     `json:"tasks_completed_today"`
	TasksTotalToday      int     `json:"tasks_total_today"`
	FocusTimeToday       int     `json:"focus_time_today"`
	NotesCount           int     `json:"notes_count"`
	WeeklyCompletionRate float64 `json:"weekly_completion_rate"`
	TotalTasksCompleted  int     `json:"total_tasks_completed"`
	TotalFocusTime       int     `json:"total_focus_time"`
}

// GetDashboardStats reads the dashboard summary. It never mutates state.
func (s *Service) GetDashboardStats(ctx context.Context, userID uint) (*DashboardStats, error) {
	db := s.db.WithContext(ctx)
	today := s.Today()

	var user models.User
	err := db.First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("user %d: %w", userID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load user %d: %w", userID, err)
	}

	stats := &DashboardStats{
		CurrentStreak: user.CurrentStreak,
		LongestStreak: user.LongestStreak,
		TotalXP:       user.TotalXP,
		CurrentLevel:  user.CurrentLevel,
	}

	todays := func() *gorm.DB {
		return db.Model(&models.Task{}).
			Where("user_id = ?", userID).
			Where("due_date = ? OR category = ?", today, models.TaskCategoryDaily)
	}
	var n int64
	if err := todays().Count(&n).Error; err != nil {
		return nil, fmt.Errorf("count today's tasks: %w", err)
	}
	stats.TasksTotalToday = int(n)
	if err := todays().Where("status = ?", models.TaskStatusCompleted).Count(&n).Error; err != nil {
		return nil, fmt.Errorf("count today's completed tasks: %w", err)
	}
	stats.TasksCompletedToday = int(n)

	weekly := func() *gorm.DB {
		return db.Model(&models.Task{}).
			Where("user_id = ? AND created_at >= ?", userID, today.AddDays(-7).Start())
	}
	var weekTotal, weekDone int64
	if err := weekly().Count(&weekTotal).Error; err != nil {
		return nil, fmt.Errorf("count weekly tasks: %w", err)
	}
	if err := weekly().Where("status = ?", models.TaskStatusCompleted).Count(&weekDone).Error; err != nil {
		return nil, fmt.Errorf("count weekly completed tasks: %w", err)
	}
	stats.WeeklyCompletionRate = CompletionRate(weekDone, weekTotal)

	var activity []models.DailyActivity
	if err := db.Where("user_id = ? AND date = ?", userID, today).Limit(1).Find(&activity).Error; err != nil {
		return nil, fmt.Errorf("load today's activity: %w", err)
	}
	if len(activity) > 0 {
		stats.FocusTimeToday = activity[0].FocusTime
	}

	if err := db.Model(&models.Note{}).Where("user_id = ?", userID).Count(&n).Error; err != nil {
		return nil, fmt.Errorf("count notes: %w", err)
	}
	stats.NotesCount = int(n)

	if err := db.Model(&models.Task{}).
		Where("user_id = ? AND status = ?", userID, models.TaskStatusCompleted).
		Count(&n).Error; err != nil {
		return nil, fmt.Errorf("count completed tasks: %w", err)
	}
	stats.TotalTasksCompleted = int(n)

	if stats.TotalFocusTime, err = sumFocusMinutes(db, userID); err != nil {
		return nil, err
	}
	return stats, nil
}

// GetActivityHistory returns the user's activity records for the last days
// days including today, oldest first. Reads hit the database directly.
func (s *Service) GetActivityHistory(ctx context.Context, userID uint, days int) ([]models.DailyActivity, error) {
	if days < 1 || days > MaxHistoryDays {
		return nil, fmt.Errorf("%w: days must be between 1 and %d, got %d", ErrInvalidInput, MaxHistoryDays, days)
	}
	since := s.Today().AddDays(-days)

	records := make([]models.DailyActivity, 0)
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND date > ?", userID, since).
		Order("date ASC").
		Limit(days).
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("activity history for user %d: %w", userID, err)
	}
	return records, nil
}

// CompletionRate is done/total as a percentage with one decimal, 0 when total is 0.
func CompletionRate(done, total int64) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(done)/float64(total)*1000) / 10
}
