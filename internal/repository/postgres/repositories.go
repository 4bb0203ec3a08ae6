package postgres

import "github.com/jackc/pgx/v5/pgxpool"

// Repositories groups concrete PostgreSQL repository implementations.
type Repositories struct {
	Users       *UserRepository
	Attractions *AttractionRepository
	Trips       *TripRepository
	Reviews     *ReviewRepository
	Blacklist   *BlacklistRepository
}

// NewRepositories wires all repositories backed by the provided pool.
func NewRepositories(pool *pgxpool.Pool) *Repositories {
	return &Repositories{
		Users:       NewUserRepository(pool),
		Attractions: NewAttractionRepository(pool),
		Trips:       NewTripRepository(pool),
		Reviews:     NewReviewRepository(pool),
		Blacklist:   NewBlacklistRepository(pool),
	}
}
