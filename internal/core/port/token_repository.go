package port

import (
	"context"
	"time"

	"github.com/arklim/tourism-api/internal/core/domain"
)

// BlacklistRepository is the durable revocation store for bearer tokens.
type BlacklistRepository interface {
	FindByToken(ctx context.Context, token string) (*domain.BlacklistEntry, error)
	Create(ctx context.Context, entry domain.BlacklistEntry) error
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

// BlacklistCache is a read-through accelerator in front of BlacklistRepository.
// A miss never means "not blacklisted"; callers fall back to the repository.
type BlacklistCache interface {
	Remember(ctx context.Context, token string, expiresAt time.Time) error
	Contains(ctx context.Context, token string) (bool, error)
}
