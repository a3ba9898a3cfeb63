// Package gamification turns user actions into XP, levels, streaks, daily
// activity rollups and achievements, and serves the dashboard read models.
package gamification

import (
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/cppla/lifeos/models"
)

var (
	// ErrNotFound is returned when a referenced user or habit does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput is returned before any mutation when arguments are malformed.
	ErrInvalidInput = errors.New("invalid input")
)

// Service owns every gamification rule. It is safe for concurrent use; all
// shared state lives in the database.
type Service struct {
	db      *gorm.DB
	catalog Catalog
	logger  *zap.Logger
	now     func() time.Time
}

// Option customizes a Service.
type Option func(*Service)

// WithClock overrides the time source. Tests use it to pin "today".
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService wires the service to its storage, achievement catalog and logger.
func NewService(db *gorm.DB, catalog Catalog, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		db:      db,
		catalog: catalog,
		logger:  logger,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now returns the current instant in UTC.
func (s *Service) Now() time.Time {
	return s.now().UTC()
}

// Today returns the current UTC calendar day.
func (s *Service) Today() models.Date {
	return models.DateOf(s.Now())
}
