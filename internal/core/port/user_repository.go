package port

import (
	"context"

	"github.com/arklim/tourism-api/internal/core/domain"
)

// UserRepository exposes persistence behavior for users.
type UserRepository interface {
	Create(ctx context.Context, user domain.User) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Update(ctx context.Context, user domain.User) error
}

// AttractionRepository exposes persistence behavior for attractions.
type AttractionRepository interface {
	Create(ctx context.Context, attraction domain.Attraction) (domain.Attraction, error)
	GetByID(ctx context.Context, id int64) (*domain.Attraction, error)
	List(ctx context.Context) ([]domain.Attraction, error)
	Update(ctx context.Context, attraction domain.Attraction) error
	Delete(ctx context.Context, id int64) error
	IncrementTraffic(ctx context.Context, id int64) (int64, error)
	TopByTraffic(ctx context.Context, limit int) ([]domain.Attraction, error)
	TotalTraffic(ctx context.Context) (int64, error)
}

// TripRepository exposes persistence behavior for trips and their attraction links.
type TripRepository interface {
	Create(ctx context.Context, draft domain.TripDraft) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.Trip, error)
	List(ctx context.Context) ([]domain.Trip, error)
	Replace(ctx context.Context, id int64, draft domain.TripDraft) error
	Delete(ctx context.Context, id int64) error
}

// ReviewRepository exposes persistence behavior for attraction reviews.
type ReviewRepository interface {
	Create(ctx context.Context, review domain.Review) (int64, error)
	ListByAttraction(ctx context.Context, attractionID int64) ([]domain.Review, error)
}
