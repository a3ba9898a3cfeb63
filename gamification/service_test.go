package gamification

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/cppla/lifeos/models"
)

// testClock is a settable time source.
type testClock struct{ t time.Time }

func (c *testClock) now() time.Time     { return c.t }
func (c *testClock) advance(days int)   { c.t = c.t.AddDate(0, 0, days) }
func (c *testClock) today() models.Date { return models.DateOf(c.t) }

var day0 = time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "lifeos.db")), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

func newTestService(t *testing.T) (*Service, *gorm.DB, *testClock) {
	t.Helper()
	db := newTestDB(t)
	clock := &testClock{t: day0}
	return NewService(db, DefaultCatalog(), nil, WithClock(clock.now)), db, clock
}

func createUser(t *testing.T, db *gorm.DB, name string) *models.User {
	t.Helper()
	u := &models.User{Email: name + "@example.com", Username: name, PasswordHash: "x"}
	require.NoError(t, db.Create(u).Error)
	return u
}

func reloadUser(t *testing.T, db *gorm.DB, id uint) models.User {
	t.Helper()
	var u models.User
	require.NoError(t, db.First(&u, id).Error)
	return u
}

func createCompletedTask(t *testing.T, db *gorm.DB, userID uint, at time.Time) *models.Task {
	t.Helper()
	completedAt := at
	task := &models.Task{
		UserID:      userID,
		Title:       "done",
		Category:    models.TaskCategoryWeekly,
		Status:      models.TaskStatusCompleted,
		CompletedAt: &completedAt,
		CreatedAt:   at,
	}
	require.NoError(t, db.Create(task).Error)
	return task
}
