package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/arklim/tourism-api/internal/core/domain"
	"github.com/arklim/tourism-api/internal/core/port"
)

// BlacklistRepository persists revoked bearer tokens in blacklisted_tokens.
type BlacklistRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewBlacklistRepository wires a PostgreSQL-backed blacklist repository.
func NewBlacklistRepository(exec pgExecutor) *BlacklistRepository {
	return &BlacklistRepository{
		exec:    exec,
		builder: newBuilder(),
	}
}

// FindByToken returns the entry for token, or nil when the token is not blacklisted.
func (r *BlacklistRepository) FindByToken(ctx context.Context, token string) (*domain.BlacklistEntry, error) {
	stmt, args, err := r.builder.
		Select("id", "token", "expiry_date", "created_at").
		From("blacklisted_tokens").
		Where(squirrel.Eq{"token": token}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select blacklisted token sql: %w", err)
	}

	var entry domain.BlacklistEntry
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(
		&entry.ID,
		&entry.Token,
		&entry.ExpiryDate,
		&entry.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan blacklisted token: %w", err)
	}

	return &entry, nil
}

// Create records entry. A token that is already present is left as is.
func (r *BlacklistRepository) Create(ctx context.Context, entry domain.BlacklistEntry) error {
	stmt, args, err := r.builder.Insert("blacklisted_tokens").
		Columns("token", "expiry_date", "created_at").
		Values(entry.Token, entry.ExpiryDate, entry.CreatedAt).
		Suffix("ON CONFLICT (token) DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert blacklisted token sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert blacklisted token: %w", err)
	}

	return nil
}

// DeleteExpired purges every entry whose expiry_date lies strictly before the cutoff.
func (r *BlacklistRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	stmt, args, err := r.builder.Delete("blacklisted_tokens").
		Where(squirrel.Lt{"expiry_date": before}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build delete expired tokens sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return 0, fmt.Errorf("delete expired tokens: %w", err)
	}

	return tag.RowsAffected(), nil
}

var _ port.BlacklistRepository = (*BlacklistRepository)(nil)
