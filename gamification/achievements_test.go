package gamification

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cppla/lifeos/models"
)

func statusByID(list []AchievementStatus) map[string]AchievementStatus {
	out := make(map[string]AchievementStatus, len(list))
	for _, s := range list {
		out[s.ID] = s
	}
	return out
}

func TestDefaultCatalog(t *testing.T) {
	c := DefaultCatalog()
	require.Equal(t, 9, c.Len())

	ids := make([]string, 0, c.Len())
	for _, a := range c.Entries() {
		ids = append(ids, a.ID)
	}
	assert.Equal(t, []string{
		"first_step", "centurion", "task_master",
		"getting_warm", "on_fire", "blazing",
		"focused_mind", "deep_work", "note_taker",
	}, ids)

	deep, ok := findEntry(c, "deep_work")
	require.True(t, ok)
	assert.Equal(t, AchievementFocusHours, deep.Type)
	assert.Equal(t, 6000, deep.Requirement)
}

func TestCatalogEntriesIsACopy(t *testing.T) {
	c := DefaultCatalog()
	entries := c.Entries()
	entries[0].XPReward = 1
	first, _ := findEntry(c, "first_step")
	assert.Equal(t, 50, first.XPReward)
}

func TestNewCatalogValidation(t *testing.T) {
	ok := Achievement{ID: "a", Type: AchievementTask, Requirement: 1, XPReward: 10}

	_, err := NewCatalog(ok, ok)
	assert.ErrorIs(t, err, ErrInvalidInput)

	bad := ok
	bad.ID = "b"
	bad.Type = "karma"
	_, err = NewCatalog(ok, bad)
	assert.ErrorIs(t, err, ErrInvalidInput)

	bad = ok
	bad.Requirement = 0
	_, err = NewCatalog(bad)
	assert.ErrorIs(t, err, ErrInvalidInput)

	c, err := NewCatalog(ok)
	require.NoError(t, err)
	assert.Equal(t, 1, c.Len())
}

func TestGetAchievementsUnlocksOnce(t *testing.T) {
	svc, db, clock := newTestService(t)
	ctx := context.Background()
	u := createUser(t, db, "ada")

	list, err := svc.GetAchievements(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, list, 9)
	for _, s := range list {
		assert.False(t, s.Unlocked, s.ID)
		assert.Nil(t, s.UnlockedAt, s.ID)
	}
	assert.Zero(t, reloadUser(t, db, u.ID).TotalXP)

	createCompletedTask(t, db, u.ID, clock.now())

	list, err = svc.GetAchievements(ctx, u.ID)
	require.NoError(t, err)
	first := statusByID(list)["first_step"]
	require.True(t, first.Unlocked)
	require.NotNil(t, first.UnlockedAt)
	assert.False(t, statusByID(list)["centurion"].Unlocked)
	got := reloadUser(t, db, u.ID)
	assert.Equal(t, 50, got.TotalXP)
	assert.Equal(t, Level(50), got.CurrentLevel)

	clock.advance(1)
	list, err = svc.GetAchievements(ctx, u.ID)
	require.NoError(t, err)
	again := statusByID(list)["first_step"]
	require.True(t, again.Unlocked)
	assert.WithinDuration(t, *first.UnlockedAt, *again.UnlockedAt, time.Second)
	assert.Equal(t, 50, reloadUser(t, db, u.ID).TotalXP)

	var count int64
	require.NoError(t, db.Model(&models.UserAchievement{}).Where("user_id = ?", u.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestGetAchievementsSkipsExistingUnlockRecord(t *testing.T) {
	svc, db, clock := newTestService(t)
	ctx := context.Background()
	u := createUser(t, db, "ada")
	createCompletedTask(t, db, u.ID, clock.now())

	// unlock persisted by an earlier evaluation
	require.NoError(t, db.Create(&models.UserAchievement{
		UserID: u.ID, AchievementID: "first_step", UnlockedAt: clock.now().Add(-time.Hour),
	}).Error)

	_, err := svc.unlock(ctx, u.ID, Achievement{ID: "first_step", Type: AchievementTask, Requirement: 1, XPReward: 50})
	require.NoError(t, err)
	assert.Zero(t, reloadUser(t, db, u.ID).TotalXP)

	list, err := svc.GetAchievements(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, statusByID(list)["first_step"].Unlocked)
	assert.Zero(t, reloadUser(t, db, u.ID).TotalXP)
}

func TestGetAchievementsMetrics(t *testing.T) {
	svc, db, clock := newTestService(t)
	ctx := context.Background()
	u := createUser(t, db, "ada")

	done := clock.now()
	minutes := 3000
	sessions := []models.FocusSession{
		{UserID: u.ID, DurationPlanned: 25, DurationActual: &minutes, StartedAt: done, CompletedAt: &done},
		{UserID: u.ID, DurationPlanned: 25, DurationActual: &minutes, StartedAt: done, CompletedAt: &done, Interrupted: true},
		{UserID: u.ID, DurationPlanned: 25, StartedAt: done},
	}
	require.NoError(t, db.Create(&sessions).Error)
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", u.ID).UpdateColumn("longest_streak", 7).Error)

	m, err := svc.loadMetrics(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, m.FocusSessions)
	assert.Equal(t, 6000, m.FocusMinutes)
	assert.Equal(t, 7, m.LongestStreak)

	list, err := svc.GetAchievements(ctx, u.ID)
	require.NoError(t, err)
	byID := statusByID(list)
	assert.True(t, byID["deep_work"].Unlocked)
	assert.True(t, byID["getting_warm"].Unlocked)
	assert.True(t, byID["on_fire"].Unlocked)
	assert.False(t, byID["blazing"].Unlocked)
	assert.False(t, byID["focused_mind"].Unlocked)
	assert.Equal(t, 1000+100+250, reloadUser(t, db, u.ID).TotalXP)
}

func TestGetAchievementsMissingUser(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.GetAchievements(context.Background(), 31337)
	assert.ErrorIs(t, err, ErrNotFound)
}

func findEntry(c Catalog, id string) (Achievement, bool) {
	for _, a := range c.Entries() {
		if a.ID == id {
			return a, true
		}
	}
	return Achievement{}, false
}
