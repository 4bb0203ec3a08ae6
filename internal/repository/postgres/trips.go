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

// TripRepository implements port.TripRepository using PostgreSQL. A trip's
// attractions live in trip_attractions, ordered by position.
type TripRepository struct {
	db      pgTxExecutor
	builder squirrel.StatementBuilderType
}

// NewTripRepository wires a PostgreSQL-backed trip repository.
func NewTripRepository(db pgTxExecutor) *TripRepository {
	return &TripRepository{
		db:      db,
		builder: newBuilder(),
	}
}

func daysValue(days []string) []string {
	if days == nil {
		return []string{}
	}
	return days
}

// Create inserts the trip and its attraction links in one transaction.
func (r *TripRepository) Create(ctx context.Context, draft domain.TripDraft) (int64, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin create trip: %w", err)
	}
	defer rollback(ctx, tx)

	stmt, args, err := r.builder.Insert("trips").
		Columns("name", "days").
		Values(draft.Name, daysValue(draft.Days)).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build insert trip sql: %w", err)
	}

	var id int64
	if err := tx.QueryRow(ctx, stmt, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("insert trip: %w", err)
	}

	if err := r.insertLinks(ctx, tx, id, draft.AttractionIDs); err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit create trip: %w", err)
	}

	return id, nil
}

func (r *TripRepository) insertLinks(ctx context.Context, exec pgExecutor, tripID int64, attractionIDs []int64) error {
	if len(attractionIDs) == 0 {
		return nil
	}

	insert := r.builder.Insert("trip_attractions").Columns("trip_id", "attraction_id", "position")
	for position, attractionID := range attractionIDs {
		insert = insert.Values(tripID, attractionID, position)
	}

	stmt, args, err := insert.ToSql()
	if err != nil {
		return fmt.Errorf("build insert trip attractions sql: %w", err)
	}

	if _, err := exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert trip attractions: %w", err)
	}

	return nil
}

// GetByID retrieves a trip with its attractions.
func (r *TripRepository) GetByID(ctx context.Context, id int64) (*domain.Trip, error) {
	stmt, args, err := r.builder.
		Select("id", "name", "days").
		From("trips").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select trip sql: %w", err)
	}

	var trip domain.Trip
	if err := r.db.QueryRow(ctx, stmt, args...).Scan(&trip.ID, &trip.Name, &trip.Days); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan trip: %w", err)
	}

	links, err := r.loadAttractions(ctx, squirrel.Eq{"ta.trip_id": id})
	if err != nil {
		return nil, err
	}

	trip.Days = daysValue(trip.Days)
	trip.Attractions = links[trip.ID]
	if trip.Attractions == nil {
		trip.Attractions = []domain.Attraction{}
	}

	return &trip, nil
}

// List returns every trip with its attractions, ordered by id.
func (r *TripRepository) List(ctx context.Context) ([]domain.Trip, error) {
	stmt, args, err := r.builder.
		Select("id", "name", "days").
		From("trips").
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list trips sql: %w", err)
	}

	rows, err := r.db.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query trips: %w", err)
	}

	trips := make([]domain.Trip, 0)
	for rows.Next() {
		var trip domain.Trip
		if err := rows.Scan(&trip.ID, &trip.Name, &trip.Days); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan trip: %w", err)
		}
		trip.Days = daysValue(trip.Days)
		trips = append(trips, trip)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trips: %w", err)
	}

	if len(trips) == 0 {
		return trips, nil
	}

	links, err := r.loadAttractions(ctx, nil)
	if err != nil {
		return nil, err
	}

	for i := range trips {
		trips[i].Attractions = links[trips[i].ID]
		if trips[i].Attractions == nil {
			trips[i].Attractions = []domain.Attraction{}
		}
	}

	return trips, nil
}

// loadAttractions returns linked attractions grouped by trip id, in itinerary order.
func (r *TripRepository) loadAttractions(ctx context.Context, where squirrel.Sqlizer) (map[int64][]domain.Attraction, error) {
	query := r.builder.
		Select("ta.trip_id", "a.id", "a.name", "a.short_description", "a.entrance_fee", "a.photos", "a.traffic_count").
		From("trip_attractions ta").
		Join("attractions a ON a.id = ta.attraction_id").
		OrderBy("ta.trip_id", "ta.position")
	if where != nil {
		query = query.Where(where)
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build trip attractions sql: %w", err)
	}

	rows, err := r.db.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query trip attractions: %w", err)
	}
	defer rows.Close()

	grouped := make(map[int64][]domain.Attraction)
	for rows.Next() {
		var (
			tripID int64
			a      domain.Attraction
		)
		if err := rows.Scan(&tripID, &a.ID, &a.Name, &a.ShortDescription, &a.EntranceFee, &a.Photos, &a.TrafficCount); err != nil {
			return nil, fmt.Errorf("scan trip attraction: %w", err)
		}
		if a.Photos == nil {
			a.Photos = []string{}
		}
		grouped[tripID] = append(grouped[tripID], a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trip attractions: %w", err)
	}

	return grouped, nil
}

// Replace overwrites name, days and attraction links of an existing trip.
func (r *TripRepository) Replace(ctx context.Context, id int64, draft domain.TripDraft) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin replace trip: %w", err)
	}
	defer rollback(ctx, tx)

	stmt, args, err := r.builder.Update("trips").
		Set("name", draft.Name).
		Set("days", daysValue(draft.Days)).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update trip sql: %w", err)
	}

	tag, err := tx.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update trip: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	stmt, args, err = r.builder.Delete("trip_attractions").
		Where(squirrel.Eq{"trip_id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build clear trip attractions sql: %w", err)
	}
	if _, err := tx.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("clear trip attractions: %w", err)
	}

	if err := r.insertLinks(ctx, tx, id, draft.AttractionIDs); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit replace trip: %w", err)
	}

	return nil
}

// Delete removes a trip; its attraction links cascade.
func (r *TripRepository) Delete(ctx context.Context, id int64) error {
	stmt, args, err := r.builder.Delete("trips").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete trip sql: %w", err)
	}

	tag, err := r.db.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("delete trip: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

var _ port.TripRepository = (*TripRepository)(nil)
