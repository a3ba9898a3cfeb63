package gamification

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cppla/lifeos/models"
)

func TestDashboardStatsEmpty(t *testing.T) {
	svc, db, _ := newTestService(t)
	u := createUser(t, db, "ada")

	stats, err := svc.GetDashboardStats(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, stats.WeeklyCompletionRate)
	assert.Zero(t, stats.TasksTotalToday)
	assert.Zero(t, stats.FocusTimeToday)
	assert.Equal(t, 1, stats.CurrentLevel)
}

func TestDashboardStats(t *testing.T) {
	svc, db, clock := newTestService(t)
	ctx := context.Background()
	u := createUser(t, db, "ada")
	now := clock.now()
	today := clock.today()

	tasks := []models.Task{
		{UserID: u.ID, Title: "daily open", Category: models.TaskCategoryDaily, Status: models.TaskStatusPending, CreatedAt: now},
		{UserID: u.ID, Title: "due today", Category: models.TaskCategoryWeekly, Status: models.TaskStatusCompleted, DueDate: today, CompletedAt: &now, CreatedAt: now},
		{UserID: u.ID, Title: "due later", Category: models.TaskCategoryWeekly, Status: models.TaskStatusPending, DueDate: today.AddDays(3), CreatedAt: now},
		{UserID: u.ID, Title: "old", Category: models.TaskCategoryWeekly, Status: models.TaskStatusCompleted, CompletedAt: &now, CreatedAt: now.AddDate(0, 0, -10)},
	}
	require.NoError(t, db.Create(&tasks).Error)
	require.NoError(t, db.Create(&models.Note{UserID: u.ID, Title: "n"}).Error)
	minutes := 45
	require.NoError(t, db.Create(&models.FocusSession{UserID: u.ID, DurationPlanned: 50, DurationActual: &minutes, StartedAt: now, CompletedAt: &now}).Error)
	require.NoError(t, svc.IncrementActivity(ctx, u.ID, ActivityFocusTime, 45))
	require.NoError(t, svc.Grant(ctx, u.ID, 120, SourceTaskCompleted))

	// another user's data never leaks in
	other := createUser(t, db, "bob")
	require.NoError(t, db.Create(&models.Task{UserID: other.ID, Title: "x", Category: models.TaskCategoryDaily, Status: models.TaskStatusPending, CreatedAt: now}).Error)

	stats, err := svc.GetDashboardStats(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TasksTotalToday)
	assert.Equal(t, 1, stats.TasksCompletedToday)
	assert.Equal(t, 33.3, stats.WeeklyCompletionRate)
	assert.Equal(t, 45, stats.FocusTimeToday)
	assert.Equal(t, 1, stats.NotesCount)
	assert.Equal(t, 2, stats.TotalTasksCompleted)
	assert.Equal(t, 45, stats.TotalFocusTime)
	assert.Equal(t, 120, stats.TotalXP)
	assert.Equal(t, 1, stats.CurrentLevel)
}

func TestDashboardStatsMissingUser(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.GetDashboardStats(context.Background(), 404)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCompletionRate(t *testing.T) {
	assert.Equal(t, 0.0, CompletionRate(0, 0))
	assert.Equal(t, 66.7, CompletionRate(2, 3))
	assert.Equal(t, 100.0, CompletionRate(4, 4))
}

func TestGetActivityHistory(t *testing.T) {
	svc, db, clock := newTestService(t)
	ctx := context.Background()
	u := createUser(t, db, "ada")
	today := clock.today()

	for _, offset := range []int{-40, -5, -1, 0} {
		require.NoError(t, db.Create(&models.DailyActivity{
			UserID: u.ID, Date: today.AddDays(offset), TasksCompleted: 1,
		}).Error)
	}

	records, err := svc.GetActivityHistory(ctx, u.ID, 30)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.True(t, records[0].Date.Equal(today.AddDays(-5)))
	assert.True(t, records[2].Date.Equal(today))

	records, err = svc.GetActivityHistory(ctx, u.ID+1, 30)
	require.NoError(t, err)
	assert.Empty(t, records)

	for _, days := range []int{0, -1, MaxHistoryDays + 1} {
		_, err := svc.GetActivityHistory(ctx, u.ID, days)
		assert.ErrorIs(t, err, ErrInvalidInput, "days=%d", days)
	}
}

func TestGetActivityHistoryIncludesToday(t *testing.T) {
	svc, db, clock := newTestService(t)
	ctx := context.Background()
	u := createUser(t, db, "ada")
	today := clock.today()

	for offset := -7; offset <= 0; offset++ {
		require.NoError(t, db.Create(&models.DailyActivity{
			UserID: u.ID, Date: today.AddDays(offset), TasksCompleted: 1,
		}).Error)
	}

	records, err := svc.GetActivityHistory(ctx, u.ID, 7)
	require.NoError(t, err)
	require.Len(t, records, 7)
	assert.True(t, records[0].Date.Equal(today.AddDays(-6)))
	assert.True(t, records[6].Date.Equal(today))

	records, err = svc.GetActivityHistory(ctx, u.ID, 1)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.True(t, records[0].Date.Equal(today))
}

func TestGetActivityHistoryReflectsLatestWrites(t *testing.T) {
	svc, db, clock := newTestService(t)
	ctx := context.Background()
	u := createUser(t, db, "ada")

	require.NoError(t, svc.IncrementActivity(ctx, u.ID, ActivityTasksCompleted, 3))
	records, err := svc.GetActivityHistory(ctx, u.ID, 30)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 3, records[0].TasksCompleted)

	require.NoError(t, svc.IncrementActivity(ctx, u.ID, ActivityTasksCompleted, 1))
	records, err = svc.GetActivityHistory(ctx, u.ID, 30)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 4, records[0].TasksCompleted)
	assert.True(t, records[0].Date.Equal(clock.today()))
}
