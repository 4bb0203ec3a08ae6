package postgres

import (
	"context"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"

	"github.com/arklim/tourism-api/internal/core/domain"
	"github.com/arklim/tourism-api/internal/core/port"
)

// ReviewRepository implements port.ReviewRepository using PostgreSQL.
type ReviewRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewReviewRepository wires a PostgreSQL-backed review repository.
func NewReviewRepository(exec pgExecutor) *ReviewRepository {
	return &ReviewRepository{
		exec:    exec,
		builder: newBuilder(),
	}
}

// Create inserts a review and returns its id.
func (r *ReviewRepository) Create(ctx context.Context, review domain.Review) (int64, error) {
	stmt, args, err := r.builder.Insert("reviews").
		Columns("attraction_id", "user_id", "rating", "comment", "created_at").
		Values(review.AttractionID, review.UserID, review.Rating, review.Comment, review.CreatedAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build insert review sql: %w", err)
	}

	var id int64
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("insert review: %w", err)
	}

	return id, nil
}

// ListByAttraction returns the reviews of an attraction, newest first.
func (r *ReviewRepository) ListByAttraction(ctx context.Context, attractionID int64) ([]domain.Review, error) {
	stmt, args, err := r.builder.
		Select("r.id", "r.attraction_id", "r.user_id", "u.name", "r.rating", "r.comment", "r.created_at").
		From("reviews r").
		Join("users u ON u.id = r.user_id").
		Where(squirrel.Eq{"r.attraction_id": attractionID}).
		OrderBy("r.created_at DESC", "r.id DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list reviews sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query reviews: %w", err)
	}
	defer rows.Close()

	reviews := make([]domain.Review, 0)
	for rows.Next() {
		var review domain.Review
		if err := rows.Scan(
			&review.ID,
			&review.AttractionID,
			&review.UserID,
			&review.UserName,
			&review.Rating,
			&review.Comment,
			&review.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		reviews = append(reviews, review)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reviews: %w", err)
	}

	return reviews, nil
}

var _ port.ReviewRepository = (*ReviewRepository)(nil)
