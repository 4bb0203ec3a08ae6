package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arklim/tourism-api/internal/core/domain"
	"github.com/arklim/tourism-api/internal/core/port"
	"github.com/arklim/tourism-api/internal/infra/logger"
	"github.com/arklim/tourism-api/internal/repository"
)

// AttractionService manages the attraction catalogue and its visit counters.
type AttractionService struct {
	attractions port.AttractionRepository
	events      port.EventPublisher
	logger      *zap.Logger
	now         func() time.Time
}

// NewAttractionService constructs an AttractionService. events may be nil.
func NewAttractionService(attractions port.AttractionRepository, events port.EventPublisher, log *zap.Logger) *AttractionService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AttractionService{
		attractions: attractions,
		events:      events,
		logger:      log,
		now:         time.Now,
	}
}

// List returns the whole catalogue.
func (s *AttractionService) List(ctx context.Context) ([]domain.Attraction, error) {
	attractions, err := s.attractions.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list attractions: %w", err)
	}
	return attractions, nil
}

// Get returns a single attraction.
func (s *AttractionService) Get(ctx context.Context, id int64) (domain.Attraction, error) {
	attraction, err := s.attractions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Attraction{}, ErrAttractionNotFound
		}
		return domain.Attraction{}, fmt.Errorf("get attraction: %w", err)
	}
	return *attraction, nil
}

// Create adds an attraction with a zero visit counter.
func (s *AttractionService) Create(ctx context.Context, attraction domain.Attraction) (domain.Attraction, error) {
	attraction.Name = strings.TrimSpace(attraction.Name)
	attraction.ShortDescription = strings.TrimSpace(attraction.ShortDescription)

	switch {
	case attraction.Name == "":
		return domain.Attraction{}, invalid("Name is required")
	case attraction.ShortDescription == "":
		return domain.Attraction{}, invalid("Description is required")
	case attraction.EntranceFee < 0:
		return domain.Attraction{}, invalid("Entrance fee must be a positive number")
	}

	created, err := s.attractions.Create(ctx, attraction)
	if err != nil {
		return domain.Attraction{}, fmt.Errorf("create attraction: %w", err)
	}

	logger.FromContext(ctx, s.logger).Info("attraction created", zap.Int64("attraction_id", created.ID))
	return created, nil
}

// Update applies a partial change to an existing attraction.
func (s *AttractionService) Update(ctx context.Context, id int64, update domain.AttractionUpdate) (domain.Attraction, error) {
	if update.IsEmpty() {
		return domain.Attraction{}, invalid("At least one field is required for update")
	}
	if update.EntranceFee != nil && *update.EntranceFee < 0 {
		return domain.Attraction{}, invalid("Entrance fee must be a positive number")
	}
	if update.Name != nil && strings.TrimSpace(*update.Name) == "" {
		return domain.Attraction{}, invalid("Name is required")
	}
	if update.ShortDescription != nil && strings.TrimSpace(*update.ShortDescription) == "" {
		return domain.Attraction{}, invalid("Description is required")
	}

	attraction, err := s.Get(ctx, id)
	if err != nil {
		return domain.Attraction{}, err
	}

	update.Apply(&attraction)

	if err := s.attractions.Update(ctx, attraction); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Attraction{}, ErrAttractionNotFound
		}
		return domain.Attraction{}, fmt.Errorf("update attraction: %w", err)
	}

	return attraction, nil
}

// Delete removes an attraction.
func (s *AttractionService) Delete(ctx context.Context, id int64) error {
	if err := s.attractions.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAttractionNotFound
		}
		return fmt.Errorf("delete attraction: %w", err)
	}
	return nil
}

// RecordVisit atomically increments the traffic counter and returns its new value.
func (s *AttractionService) RecordVisit(ctx context.Context, id int64, visitor string) (int64, error) {
	count, err := s.attractions.IncrementTraffic(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, ErrAttractionNotFound
		}
		return 0, fmt.Errorf("increment traffic: %w", err)
	}

	if s.events != nil {
		event := domain.AttractionVisitedEvent{
			EventID:      uuid.NewString(),
			AttractionID: id,
			TrafficCount: count,
			VisitedBy:    visitor,
			VisitedAt:    s.now().UTC(),
		}
		if err := s.events.PublishAttractionVisited(ctx, event); err != nil {
			logger.FromContext(ctx, s.logger).Warn("publish attraction visited failed", zap.Error(err))
		}
	}

	return count, nil
}
