package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/arklim/tourism-api/internal/core/domain"
	"github.com/arklim/tourism-api/internal/core/port"
	"github.com/arklim/tourism-api/internal/repository"
)

const maxTripNameLength = 255

// TripService manages itineraries built from existing attractions.
type TripService struct {
	trips       port.TripRepository
	attractions port.AttractionRepository
}

// NewTripService constructs a TripService.
func NewTripService(trips port.TripRepository, attractions port.AttractionRepository) *TripService {
	return &TripService{trips: trips, attractions: attractions}
}

// List returns every trip.
func (s *TripService) List(ctx context.Context) ([]domain.Trip, error) {
	trips, err := s.trips.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list trips: %w", err)
	}
	return trips, nil
}

// Get returns a trip with its attractions.
func (s *TripService) Get(ctx context.Context, id int64) (domain.Trip, error) {
	trip, err := s.trips.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Trip{}, ErrTripNotFound
		}
		return domain.Trip{}, fmt.Errorf("get trip: %w", err)
	}
	return *trip, nil
}

// Create stores a new trip after checking every referenced attraction exists.
func (s *TripService) Create(ctx context.Context, draft domain.TripDraft) (int64, error) {
	draft, err := s.prepare(ctx, draft)
	if err != nil {
		return 0, err
	}

	id, err := s.trips.Create(ctx, draft)
	if err != nil {
		return 0, fmt.Errorf("create trip: %w", err)
	}
	return id, nil
}

// Replace overwrites an existing trip and returns its new state.
func (s *TripService) Replace(ctx context.Context, id int64, draft domain.TripDraft) (domain.Trip, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return domain.Trip{}, err
	}

	draft, err := s.prepare(ctx, draft)
	if err != nil {
		return domain.Trip{}, err
	}

	if err := s.trips.Replace(ctx, id, draft); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Trip{}, ErrTripNotFound
		}
		return domain.Trip{}, fmt.Errorf("replace trip: %w", err)
	}

	return s.Get(ctx, id)
}

// Delete removes a trip.
func (s *TripService) Delete(ctx context.Context, id int64) error {
	if err := s.trips.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTripNotFound
		}
		return fmt.Errorf("delete trip: %w", err)
	}
	return nil
}

// prepare validates draft, drops repeated attraction ids and resolves each one.
func (s *TripService) prepare(ctx context.Context, draft domain.TripDraft) (domain.TripDraft, error) {
	draft.Name = strings.TrimSpace(draft.Name)

	switch {
	case draft.Name == "":
		return draft, invalid("Name is required")
	case utf8.RuneCountInString(draft.Name) > maxTripNameLength:
		return draft, invalid("Name must not exceed 255 characters")
	case len(draft.Days) == 0:
		return draft, invalid("Duration cannot be empty")
	case draft.AttractionIDs == nil:
		return draft, invalid("Attraction IDs are required")
	}

	seen := make(map[int64]struct{}, len(draft.AttractionIDs))
	unique := make([]int64, 0, len(draft.AttractionIDs))
	for _, id := range draft.AttractionIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}

	for _, id := range unique {
		if _, err := s.attractions.GetByID(ctx, id); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return draft, invalid(fmt.Sprintf("Attraction not found with ID: %d", id))
			}
			return draft, fmt.Errorf("get attraction %d: %w", id, err)
		}
	}

	draft.AttractionIDs = unique
	return draft, nil
}
