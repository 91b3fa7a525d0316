package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/tripplanner/backend/internal/domain"
)

// ActivityRepo defines the persistence operations for Activities.
type ActivityRepo interface {
	// Create inserts a new activity with a zero vote count.
	// Returns domain.ErrNotFound if the trip does not exist.
	Create(ctx context.Context, a domain.Activity) (domain.Activity, error)

	// GetByID retrieves a single activity.
	// Returns domain.ErrNotFound if no activity with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Activity, error)

	// ListByTrip returns all activities of a trip ordered by date, then time
	// (untimed last), then creation order.
	ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.Activity, error)

	// ListByTrips batches ListByTrip for several trips, keyed by trip ID.
	// Trips without activities are absent from the map.
	ListByTrips(ctx context.Context, tripIDs []uuid.UUID) (map[uuid.UUID][]domain.Activity, error)

	// Update overwrites the editable fields. The vote count, trip, and
	// creator are never written here.
	Update(ctx context.Context, a domain.Activity) (domain.Activity, error)

	// Delete removes an activity and, through the cascade, its votes.
	Delete(ctx context.Context, id uuid.UUID) error

	// AdjustVotes adds delta to the vote counter and returns the new count.
	// Must run in the same transaction as the vote row change.
	AdjustVotes(ctx context.Context, id uuid.UUID, delta int) (int, error)
}

type pgActivityRepo struct {
	db db
}

// NewActivityRepo constructs an ActivityRepo backed by db.
func NewActivityRepo(db db) ActivityRepo {
	return &pgActivityRepo{db: db}
}

const activityColumns = `id, trip_id, name, description, activity_date, start_time::text, category,
	estimated_cost::text, notes, creator_id, votes, created_at, updated_at`

func (r *pgActivityRepo) Create(ctx context.Context, a domain.Activity) (domain.Activity, error) {
	const q = `
		INSERT INTO activities (trip_id, name, description, activity_date, start_time, category,
		                        estimated_cost, notes, creator_id)
		VALUES (@trip_id, @name, @description, @activity_date, @start_time::text::time, @category,
		        @estimated_cost::text::numeric, @notes, @creator_id)
		RETURNING ` + activityColumns

	args := pgx.NamedArgs{
		"trip_id":        a.TripID,
		"name":           a.Name,
		"description":    a.Description,
		"activity_date":  a.Date,
		"start_time":     a.Time,
		"category":       string(a.Category),
		"estimated_cost": decimalArg(a.EstimatedCost),
		"notes":          a.Notes,
		"creator_id":     a.CreatorID,
	}

	result, err := scanActivity(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Activity{}, fmt.Errorf("repo.ActivityRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgActivityRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Activity, error) {
	const q = `SELECT ` + activityColumns + ` FROM activities WHERE id = @id`

	result, err := scanActivity(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Activity{}, fmt.Errorf("repo.ActivityRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgActivityRepo) ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.Activity, error) {
	const q = `
		SELECT ` + activityColumns + `
		FROM activities
		WHERE trip_id = @trip_id
		ORDER BY activity_date, start_time NULLS LAST, created_at, id`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"trip_id": tripID})
	if err != nil {
		return nil, fmt.Errorf("repo.ActivityRepo.ListByTrip: %w", err)
	}
	defer rows.Close()

	activities := []domain.Activity{}
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.ActivityRepo.ListByTrip: scan: %w", err)
		}
		activities = append(activities, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.ActivityRepo.ListByTrip: rows: %w", err)
	}
	return activities, nil
}

func (r *pgActivityRepo) ListByTrips(ctx context.Context, tripIDs []uuid.UUID) (map[uuid.UUID][]domain.Activity, error) {
	out := make(map[uuid.UUID][]domain.Activity, len(tripIDs))
	if len(tripIDs) == 0 {
		return out, nil
	}

	const q = `
		SELECT ` + activityColumns + `
		FROM activities
		WHERE trip_id = ANY(@trip_ids::text[]::uuid[])
		ORDER BY activity_date, start_time NULLS LAST, created_at, id`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"trip_ids": uuidStrings(tripIDs)})
	if err != nil {
		return nil, fmt.Errorf("repo.ActivityRepo.ListByTrips: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.ActivityRepo.ListByTrips: scan: %w", err)
		}
		out[a.TripID] = append(out[a.TripID], a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.ActivityRepo.ListByTrips: rows: %w", err)
	}
	return out, nil
}

func (r *pgActivityRepo) Update(ctx context.Context, a domain.Activity) (domain.Activity, error) {
	const q = `
		UPDATE activities
		SET name           = @name,
		    description    = @description,
		    activity_date  = @activity_date,
		    start_time     = @start_time::text::time,
		    category       = @category,
		    estimated_cost = @estimated_cost::text::numeric,
		    notes          = @notes,
		    updated_at     = now()
		WHERE id = @id
		RETURNING ` + activityColumns

	args := pgx.NamedArgs{
		"id":             a.ID,
		"name":           a.Name,
		"description":    a.Description,
		"activity_date":  a.Date,
		"start_time":     a.Time,
		"category":       string(a.Category),
		"estimated_cost": decimalArg(a.EstimatedCost),
		"notes":          a.Notes,
	}

	result, err := scanActivity(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Activity{}, fmt.Errorf("repo.ActivityRepo.Update: %w", err)
	}
	return result, nil
}

func (r *pgActivityRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM activities WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.ActivityRepo.Delete: %w", translate(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.ActivityRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// AdjustVotes relies on the votes >= 0 check constraint to reject a
// decrement below zero.
func (r *pgActivityRepo) AdjustVotes(ctx context.Context, id uuid.UUID, delta int) (int, error) {
	const q = `
		UPDATE activities
		SET votes = votes + @delta
		WHERE id = @id
		RETURNING votes`

	var votes int
	if err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id, "delta": delta}).Scan(&votes); err != nil {
		return 0, fmt.Errorf("repo.ActivityRepo.AdjustVotes: %w", translate(err))
	}
	return votes, nil
}

func scanActivity(s scanner) (domain.Activity, error) {
	var (
		a         domain.Activity
		id        pgtype.UUID
		tripID    pgtype.UUID
		creatorID pgtype.UUID
		date      pgtype.Date
		category  string
		cost      *string
	)

	err := s.Scan(&id, &tripID, &a.Name, &a.Description, &date, &a.Time, &category,
		&cost, &a.Notes, &creatorID, &a.Votes, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return domain.Activity{}, translate(err)
	}

	a.ID = uuid.UUID(id.Bytes)
	a.TripID = uuid.UUID(tripID.Bytes)
	a.CreatorID = uuid.UUID(creatorID.Bytes)
	a.Date = date.Time
	a.Category = domain.Category(category)
	if a.EstimatedCost, err = parseDecimal(cost); err != nil {
		return domain.Activity{}, err
	}
	return a, nil
}
