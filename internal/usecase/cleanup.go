package usecase

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/arklim/tourism-api/internal/core/port"
)

// SweepObserver is notified after every sweep attempt.
type SweepObserver interface {
	ObserveSweep(removed int64, duration time.Duration, err error)
}

// TokenCleanupService purges blacklist entries whose tokens have naturally expired.
type TokenCleanupService struct {
	repo     port.BlacklistRepository
	observer SweepObserver
	logger   *zap.Logger
	now      func() time.Time
}

// NewTokenCleanupService constructs the cleanup service. observer may be nil.
func NewTokenCleanupService(repo port.BlacklistRepository, observer SweepObserver, log *zap.Logger) *TokenCleanupService {
	if log == nil {
		log = zap.NewNop()
	}
	return &TokenCleanupService{
		repo:     repo,
		observer: observer,
		logger:   log,
		now:      time.Now,
	}
}

// WithClock allows injection of a custom clock (primarily for testing).
func (s *TokenCleanupService) WithClock(now func() time.Time) *TokenCleanupService {
	if now != nil {
		s.now = now
	}
	return s
}

// SweepExpired deletes every entry with an expiry strictly before now in a single statement.
func (s *TokenCleanupService) SweepExpired(ctx context.Context) (int64, error) {
	started := time.Now()
	cutoff := s.now().UTC()

	removed, err := s.repo.DeleteExpired(ctx, cutoff)
	if s.observer != nil {
		s.observer.ObserveSweep(removed, time.Since(started), err)
	}
	if err != nil {
		s.logger.Error("blacklist sweep failed", zap.Time("cutoff", cutoff), zap.Error(err))
		return 0, fmt.Errorf("delete expired tokens: %w", err)
	}

	s.logger.Info("blacklist sweep completed",
		zap.Time("cutoff", cutoff),
		zap.Int64("removed", removed),
	)

	return removed, nil
}
