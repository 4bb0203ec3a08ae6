package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/arklim/tourism-api/internal/core/domain"
	"github.com/arklim/tourism-api/internal/core/port"
	"github.com/arklim/tourism-api/internal/repository"
)

const (
	minRating = 1
	maxRating = 5
)

// ReviewService records and lists attraction reviews.
type ReviewService struct {
	reviews     port.ReviewRepository
	attractions port.AttractionRepository
	users       port.UserRepository
	now         func() time.Time
}

// NewReviewService constructs a ReviewService.
func NewReviewService(reviews port.ReviewRepository, attractions port.AttractionRepository, users port.UserRepository) *ReviewService {
	return &ReviewService{
		reviews:     reviews,
		attractions: attractions,
		users:       users,
		now:         time.Now,
	}
}

// Add stores a review written by the user identified by authorEmail.
func (s *ReviewService) Add(ctx context.Context, attractionID int64, authorEmail string, rating int, comment string) (int64, error) {
	comment = strings.TrimSpace(comment)
	switch {
	case rating < minRating:
		return 0, invalid("Rating must be at least 1")
	case rating > maxRating:
		return 0, invalid("Rating must be at most 5")
	case comment == "":
		return 0, invalid("Comment is required")
	}

	user, err := s.users.GetByEmail(ctx, authorEmail)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, ErrUserNotFound
		}
		return 0, fmt.Errorf("lookup user: %w", err)
	}

	if err := s.ensureAttraction(ctx, attractionID); err != nil {
		return 0, err
	}

	id, err := s.reviews.Create(ctx, domain.Review{
		AttractionID: attractionID,
		UserID:       user.ID,
		UserName:     user.Name,
		Rating:       rating,
		Comment:      comment,
		CreatedAt:    s.now().UTC(),
	})
	if err != nil {
		return 0, fmt.Errorf("create review: %w", err)
	}

	return id, nil
}

// ListForAttraction returns the reviews of an existing attraction, newest first.
func (s *ReviewService) ListForAttraction(ctx context.Context, attractionID int64) ([]domain.Review, error) {
	if err := s.ensureAttraction(ctx, attractionID); err != nil {
		return nil, err
	}

	reviews, err := s.reviews.ListByAttraction(ctx, attractionID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return reviews, nil
}

func (s *ReviewService) ensureAttraction(ctx context.Context, id int64) error {
	if _, err := s.attractions.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAttractionNotFound
		}
		return fmt.Errorf("get attraction: %w", err)
	}
	return nil
}
