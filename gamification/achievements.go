package gamification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cppla/lifeos/models"
	"github.com/cppla/lifeos/utils"
)

// AchievementType selects which aggregate an achievement is measured against.
type AchievementType string

const (
	AchievementTask       AchievementType = "task"
	AchievementStreak     AchievementType = "streak"
	AchievementFocus      AchievementType = "focus"
	AchievementFocusHours AchievementType = "focus_hours"
	AchievementNotes      AchievementType = "notes"
)

func (t AchievementType) valid() bool {
	switch t {
	case AchievementTask, AchievementStreak, AchievementFocus, AchievementFocusHours, AchievementNotes:
		return true
	}
	return false
}

// Achievement is one catalog entry. focus_hours requirements are in minutes.
type Achievement struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Type        AchievementType `json:"type"`
	Requirement int             `json:"requirement"`
	XPReward    int             `json:"xp_reward"`
	BadgeIcon   string          `json:"badge_icon"`
}

// Catalog is an immutable, ordered set of achievements.
type Catalog struct {
	entries []Achievement
}

// NewCatalog validates entries and copies them into a Catalog.
func NewCatalog(entries ...Achievement) (Catalog, error) {
	seen := make(map[string]struct{}, len(entries))
	for _, a := range entries {
		if a.ID == "" {
			return Catalog{}, fmt.Errorf("%w: achievement without id", ErrInvalidInput)
		}
		if _, dup := seen[a.ID]; dup {
			return Catalog{}, fmt.Errorf("%w: duplicate achievement %q", ErrInvalidInput, a.ID)
		}
		if !a.Type.valid() {
			return Catalog{}, fmt.Errorf("%w: achievement %q has unknown type %q", ErrInvalidInput, a.ID, a.Type)
		}
		if a.Requirement <= 0 {
			return Catalog{}, fmt.Errorf("%w: achievement %q requirement must be positive", ErrInvalidInput, a.ID)
		}
		if a.XPReward < 0 {
			return Catalog{}, fmt.Errorf("%w: achievement %q xp reward must not be negative", ErrInvalidInput, a.ID)
		}
		seen[a.ID] = struct{}{}
	}
	return Catalog{entries: append([]Achievement(nil), entries...)}, nil
}

// DefaultCatalog returns the built-in achievements.
func DefaultCatalog() Catalog {
	c, err := NewCatalog(
		Achievement{ID: "first_step", Name: "First Step", Description: "Complete your first task", Type: AchievementTask, Requirement: 1, XPReward: 50, BadgeIcon: "check"},
		Achievement{ID: "centurion", Name: "Centurion", Description: "Complete 100 tasks", Type: AchievementTask, Requirement: 100, XPReward: 500, BadgeIcon: "trophy"},
		Achievement{ID: "task_master", Name: "Task Master", Description: "Complete 1000 tasks", Type: AchievementTask, Requirement: 1000, XPReward: 2000, BadgeIcon: "crown"},
		Achievement{ID: "getting_warm", Name: "Getting Warm", Description: "Maintain a 3 day streak", Type: AchievementStreak, Requirement: 3, XPReward: 100, BadgeIcon: "flame"},
		Achievement{ID: "on_fire", Name: "On Fire", Description: "Maintain a 7 day streak", Type: AchievementStreak, Requirement: 7, XPReward: 250, BadgeIcon: "flame"},
		Achievement{ID: "blazing", Name: "Blazing", Description: "Maintain a 30 day streak", Type: AchievementStreak, Requirement: 30, XPReward: 1000, BadgeIcon: "flame"},
		Achievement{ID: "focused_mind", Name: "Focused Mind", Description: "Complete 10 focus sessions", Type: AchievementFocus, Requirement: 10, XPReward: 200, BadgeIcon: "clock"},
		Achievement{ID: "deep_work", Name: "Deep Work", Description: "100 hours of focus time", Type: AchievementFocusHours, Requirement: 6000, XPReward: 1000, BadgeIcon: "brain"},
		Achievement{ID: "note_taker", Name: "Note Taker", Description: "Create 50 notes", Type: AchievementNotes, Requirement: 50, XPReward: 200, BadgeIcon: "file-text"},
	)
	if err != nil {
		panic(err)
	}
	return c
}

// Entries returns a copy of the catalog in order.
func (c Catalog) Entries() []Achievement {
	return append([]Achievement(nil), c.entries...)
}

// Len returns the number of achievements.
func (c Catalog) Len() int { return len(c.entries) }

// Metrics are the live aggregates achievements are measured against.
type Metrics struct {
	TasksCompleted int
	FocusSessions  int
	FocusMinutes   int
	NotesCreated   int
	LongestStreak  int
}

// Value returns the metric an achievement type measures.
func (m Metrics) Value(t AchievementType) int {
	switch t {
	case AchievementTask:
		return m.TasksCompleted
	case AchievementStreak:
		return m.LongestStreak
	case AchievementFocus:
		return m.FocusSessions
	case AchievementFocusHours:
		return m.FocusMinutes
	case AchievementNotes:
		return m.NotesCreated
	}
	return 0
}

// AchievementStatus is a catalog entry with the user's unlock state.
type AchievementStatus struct {
	Achievement
	Unlocked   bool       `json:"unlocked"`
	UnlockedAt *time.Time `json:"unlocked_at"`
}

// GetAchievements evaluates the catalog for a user, unlocking and rewarding
// every newly satisfied achievement, and returns all entries in catalog order.
// Repeated calls never unlock or reward twice.
func (s *Service) GetAchievements(ctx context.Context, userID uint) ([]AchievementStatus, error) {
	m, err := s.loadMetrics(ctx, userID)
	if err != nil {
		return nil, err
	}

	var existing []models.UserAchievement
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Find(&existing).Error; err != nil {
		return nil, fmt.Errorf("load achievements for user %d: %w", userID, err)
	}
	unlocked := make(map[string]time.Time, len(existing))
	for _, ua := range existing {
		unlocked[ua.AchievementID] = ua.UnlockedAt
	}

	out := make([]AchievementStatus, 0, len(s.catalog.entries))
	for _, a := range s.catalog.entries {
		st := AchievementStatus{Achievement: a}
		if at, ok := unlocked[a.ID]; ok {
			st.Unlocked, st.UnlockedAt = true, &at
		} else if m.Value(a.Type) >= a.Requirement {
			at, err := s.unlock(ctx, userID, a)
			if err != nil {
				return nil, err
			}
			st.Unlocked, st.UnlockedAt = true, &at
		}
		out = append(out, st)
	}
	return out, nil
}

// unlock inserts the unlock record and grants its reward in one transaction.
// When a concurrent evaluation got there first the insert is skipped by the
// unique index and no XP is granted.
func (s *Service) unlock(ctx context.Context, userID uint, a Achievement) (time.Time, error) {
	record := models.UserAchievement{UserID: userID, AchievementID: a.ID, UnlockedAt: s.Now()}
	var inserted bool

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "achievement_id"}},
			DoNothing: true,
		}).Create(&record)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var stored models.UserAchievement
			if err := tx.Where("user_id = ? AND achievement_id = ?", userID, a.ID).First(&stored).Error; err != nil {
				return err
			}
			record.UnlockedAt = stored.UnlockedAt
			return nil
		}
		inserted = true
		if a.XPReward > 0 {
			if _, err := grantTx(tx, userID, a.XPReward); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return time.Time{}, fmt.Errorf("unlock %s for user %d: %w", a.ID, userID, err)
	}

	if inserted {
		utils.AchievementsUnlocked.WithLabelValues(a.ID).Inc()
		if a.XPReward > 0 {
			utils.XPGranted.WithLabelValues(SourceAchievement).Add(float64(a.XPReward))
		}
		s.logger.Info("achievement_unlocked",
			zap.Uint("user_id", userID),
			zap.String("achievement", a.ID),
			zap.Int("xp_reward", a.XPReward),
		)
	}
	return record.UnlockedAt, nil
}

func (s *Service) loadMetrics(ctx context.Context, userID uint) (Metrics, error) {
	db := s.db.WithContext(ctx)

	var user models.User
	err := db.Select("id", "longest_streak").First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Metrics{}, fmt.Errorf("user %d: %w", userID, ErrNotFound)
	}
	if err != nil {
		return Metrics{}, fmt.Errorf("load user %d: %w", userID, err)
	}

	var tasks, sessions, notes int64
	var minutes int
	if err := db.Model(&models.Task{}).
		Where("user_id = ? AND status = ?", userID, models.TaskStatusCompleted).
		Count(&tasks).Error; err != nil {
		return Metrics{}, fmt.Errorf("count completed tasks: %w", err)
	}
	if err := db.Model(&models.FocusSession{}).
		Where("user_id = ? AND completed_at IS NOT NULL AND interrupted = ?", userID, false).
		Count(&sessions).Error; err != nil {
		return Metrics{}, fmt.Errorf("count focus sessions: %w", err)
	}
	if minutes, err = sumFocusMinutes(db, userID); err != nil {
		return Metrics{}, err
	}
	if err := db.Model(&models.Note{}).Where("user_id = ?", userID).Count(&notes).Error; err != nil {
		return Metrics{}, fmt.Errorf("count notes: %w", err)
	}

	return Metrics{
		TasksCompleted: int(tasks),
		FocusSessions:  int(sessions),
		FocusMinutes:   minutes,
		NotesCreated:   int(notes),
		LongestStreak:  user.LongestStreak,
	}, nil
}

// sumFocusMinutes totals duration_actual over completed sessions.
func sumFocusMinutes(db *gorm.DB, userID uint) (int, error) {
	var total int
	if err := db.Model(&models.FocusSession{}).
		Where("user_id = ? AND completed_at IS NOT NULL", userID).
		Select("COALESCE(SUM(duration_actual), 0)").
		Scan(&total).Error; err != nil {
		return 0, fmt.Errorf("sum focus minutes: %w", err)
	}
	return total, nil
}
