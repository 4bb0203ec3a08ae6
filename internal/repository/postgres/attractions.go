package postgres

import (
	"context"
	"errors"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/arklim/tourism-api/internal/core/domain"
	"github.com/arklim/tourism-api/internal/core/port"
	"github.com/arklim/tourism-api/internal/repository"
)

var attractionColumns = []string{"id", "name", "short_description", "entrance_fee", "photos", "traffic_count"}

// AttractionRepository implements port.AttractionRepository using PostgreSQL.
type AttractionRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewAttractionRepository wires a PostgreSQL-backed attraction repository.
func NewAttractionRepository(exec pgExecutor) *AttractionRepository {
	return &AttractionRepository{
		exec:    exec,
		builder: newBuilder(),
	}
}

func scanAttraction(row pgx.Row) (domain.Attraction, error) {
	var a domain.Attraction
	err := row.Scan(&a.ID, &a.Name, &a.ShortDescription, &a.EntranceFee, &a.Photos, &a.TrafficCount)
	if a.Photos == nil {
		a.Photos = []string{}
	}
	return a, err
}

func photosValue(photos []string) []string {
	if photos == nil {
		return []string{}
	}
	return photos
}

// Create inserts an attraction with a zero traffic counter.
func (r *AttractionRepository) Create(ctx context.Context, attraction domain.Attraction) (domain.Attraction, error) {
	attraction.Photos = photosValue(attraction.Photos)
	attraction.TrafficCount = 0

	stmt, args, err := r.builder.Insert("attractions").
		Columns("name", "short_description", "entrance_fee", "photos", "traffic_count").
		Values(attraction.Name, attraction.ShortDescription, attraction.EntranceFee, attraction.Photos, attraction.TrafficCount).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return domain.Attraction{}, fmt.Errorf("build insert attraction sql: %w", err)
	}

	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&attraction.ID); err != nil {
		return domain.Attraction{}, fmt.Errorf("insert attraction: %w", err)
	}

	return attraction, nil
}

// GetByID retrieves a single attraction.
func (r *AttractionRepository) GetByID(ctx context.Context, id int64) (*domain.Attraction, error) {
	stmt, args, err := r.builder.
		Select(attractionColumns...).
		From("attractions").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select attraction sql: %w", err)
	}

	attraction, err := scanAttraction(r.exec.QueryRow(ctx, stmt, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan attraction: %w", err)
	}

	return &attraction, nil
}

// List returns every attraction ordered by id.
func (r *AttractionRepository) List(ctx context.Context) ([]domain.Attraction, error) {
	stmt, args, err := r.builder.
		Select(attractionColumns...).
		From("attractions").
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list attractions sql: %w", err)
	}

	return r.query(ctx, stmt, args)
}

// TopByTraffic returns up to limit attractions with a non-zero counter, busiest first.
func (r *AttractionRepository) TopByTraffic(ctx context.Context, limit int) ([]domain.Attraction, error) {
	if limit <= 0 {
		return []domain.Attraction{}, nil
	}

	stmt, args, err := r.builder.
		Select(attractionColumns...).
		From("attractions").
		Where(squirrel.Gt{"traffic_count": 0}).
		OrderBy("traffic_count DESC", "id").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build top attractions sql: %w", err)
	}

	return r.query(ctx, stmt, args)
}

func (r *AttractionRepository) query(ctx context.Context, stmt string, args []any) ([]domain.Attraction, error) {
	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query attractions: %w", err)
	}
	defer rows.Close()

	attractions := make([]domain.Attraction, 0)
	for rows.Next() {
		attraction, err := scanAttraction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan attraction: %w", err)
		}
		attractions = append(attractions, attraction)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attractions: %w", err)
	}

	return attractions, nil
}

// TotalTraffic sums the traffic counters of every attraction.
func (r *AttractionRepository) TotalTraffic(ctx context.Context) (int64, error) {
	stmt, args, err := r.builder.
		Select("COALESCE(SUM(traffic_count), 0)::BIGINT").
		From("attractions").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build total traffic sql: %w", err)
	}

	var total int64
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("sum traffic: %w", err)
	}

	return total, nil
}

// Update overwrites the editable fields of an attraction. The traffic counter is left alone.
func (r *AttractionRepository) Update(ctx context.Context, attraction domain.Attraction) error {
	stmt, args, err := r.builder.Update("attractions").
		Set("name", attraction.Name).
		Set("short_description", attraction.ShortDescription).
		Set("entrance_fee", attraction.EntranceFee).
		Set("photos", photosValue(attraction.Photos)).
		Where(squirrel.Eq{"id": attraction.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update attraction sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update attraction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// Delete removes an attraction together with its reviews and trip links.
func (r *AttractionRepository) Delete(ctx context.Context, id int64) error {
	stmt, args, err := r.builder.Delete("attractions").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete attraction sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("delete attraction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// IncrementTraffic atomically bumps the counter and returns the new value.
func (r *AttractionRepository) IncrementTraffic(ctx context.Context, id int64) (int64, error) {
	stmt, args, err := r.builder.Update("attractions").
		Set("traffic_count", squirrel.Expr("traffic_count + 1")).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING traffic_count").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build increment traffic sql: %w", err)
	}

	var count int64
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&count); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, repository.ErrNotFound
		}
		return 0, fmt.Errorf("increment traffic: %w", err)
	}

	return count, nil
}

var _ port.AttractionRepository = (*AttractionRepository)(nil)
