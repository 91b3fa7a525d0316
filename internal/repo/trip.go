package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/tripplanner/backend/internal/domain"
)

// TripRepo defines the persistence operations for Trips.
// The service layer depends on this interface, not the concrete Postgres implementation,
// which allows the service to be unit-tested with a mock.
type TripRepo interface {
	// Create inserts a new trip and returns the persisted record (with DB-generated
	// id, created_at, and updated_at populated).
	// Returns domain.ErrConflict if the trip code is already taken.
	Create(ctx context.Context, trip domain.Trip) (domain.Trip, error)

	// GetByID retrieves a single trip by its UUID primary key.
	// Returns domain.ErrNotFound if no trip with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error)

	// GetByCode retrieves a trip by its join code. The code must already be
	// normalised to upper case. Returns domain.ErrNotFound if unknown.
	GetByCode(ctx context.Context, code string) (domain.Trip, error)

	// CodeExists reports whether any trip uses code.
	CodeExists(ctx context.Context, code string) (bool, error)

	// ListByMember returns one page of the trips userID participates in,
	// newest first, plus the total number of such trips.
	ListByMember(ctx context.Context, userID uuid.UUID, p domain.PaginationParams) ([]domain.Trip, int64, error)

	// Update overwrites the mutable fields of an existing trip and returns the
	// updated record. The trip code is never written.
	// Returns domain.ErrNotFound if no trip with that ID exists.
	Update(ctx context.Context, trip domain.Trip) (domain.Trip, error)

	// Delete removes a trip by ID. Memberships, activities, and votes go with it
	// through ON DELETE CASCADE. Returns domain.ErrNotFound if it does not exist.
	Delete(ctx context.Context, id uuid.UUID) error
}

// pgTripRepo is the Postgres implementation of TripRepo.
type pgTripRepo struct {
	db db
}

// NewTripRepo constructs a TripRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewTripRepo(db db) TripRepo {
	return &pgTripRepo{db: db}
}

const tripColumns = `id, name, description, start_date, end_date, budget::text, trip_code, creator_id, created_at, updated_at`

// Create inserts a new trip row and returns the full persisted record.
func (r *pgTripRepo) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	const q = `
		INSERT INTO trips (name, description, start_date, end_date, budget, trip_code, creator_id)
		VALUES (@name, @description, @start_date, @end_date, @budget::text::numeric, @trip_code, @creator_id)
		RETURNING ` + tripColumns

	args := pgx.NamedArgs{
		"name":        trip.Name,
		"description": trip.Description,
		"start_date":  trip.StartDate,
		"end_date":    trip.EndDate,
		"budget":      decimalArg(trip.Budget), // nil becomes NULL
		"trip_code":   trip.TripCode,
		"creator_id":  trip.CreatorID,
	}

	result, err := scanTrip(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Create: %w", err)
	}
	return result, nil
}

// GetByID retrieves a trip by primary key.
func (r *pgTripRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	const q = `SELECT ` + tripColumns + ` FROM trips WHERE id = @id`

	result, err := scanTrip(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.GetByID: %w", err)
	}
	return result, nil
}

// GetByCode retrieves a trip by its unique join code.
func (r *pgTripRepo) GetByCode(ctx context.Context, code string) (domain.Trip, error) {
	const q = `SELECT ` + tripColumns + ` FROM trips WHERE trip_code = @code`

	result, err := scanTrip(r.db.QueryRow(ctx, q, pgx.NamedArgs{"code": code}))
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.GetByCode: %w", err)
	}
	return result, nil
}

// CodeExists checks the unique trip_code index.
func (r *pgTripRepo) CodeExists(ctx context.Context, code string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM trips WHERE trip_code = @code)`

	var exists bool
	if err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"code": code}).Scan(&exists); err != nil {
		return false, fmt.Errorf("repo.TripRepo.CodeExists: %w", err)
	}
	return exists, nil
}

// ListByMember returns trips joined through trip_participants, newest first.
func (r *pgTripRepo) ListByMember(ctx context.Context, userID uuid.UUID, p domain.PaginationParams) ([]domain.Trip, int64, error) {
	const countQ = `SELECT count(*) FROM trip_participants WHERE user_id = @user_id`

	var total int64
	if err := r.db.QueryRow(ctx, countQ, pgx.NamedArgs{"user_id": userID}).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.TripRepo.ListByMember: count: %w", err)
	}

	const q = `
		SELECT t.id, t.name, t.description, t.start_date, t.end_date, t.budget::text,
		       t.trip_code, t.creator_id, t.created_at, t.updated_at
		FROM trips t
		JOIN trip_participants tp ON tp.trip_id = t.id
		WHERE tp.user_id = @user_id
		ORDER BY t.created_at DESC, t.id
		LIMIT @limit OFFSET @offset`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{
		"user_id": userID,
		"limit":   p.Limit,
		"offset":  p.Offset(),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("repo.TripRepo.ListByMember: %w", err)
	}
	defer rows.Close()

	trips := []domain.Trip{}
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("repo.TripRepo.ListByMember: scan: %w", err)
		}
		trips = append(trips, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("repo.TripRepo.ListByMember: rows: %w", err)
	}

	return trips, total, nil
}

// Update overwrites the mutable fields of a trip and returns the updated record.
func (r *pgTripRepo) Update(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	const q = `
		UPDATE trips
		SET name        = @name,
		    description = @description,
		    start_date  = @start_date,
		    end_date    = @end_date,
		    budget      = @budget::text::numeric,
		    updated_at  = now()
		WHERE id = @id
		RETURNING ` + tripColumns

	args := pgx.NamedArgs{
		"id":          trip.ID,
		"name":        trip.Name,
		"description": trip.Description,
		"start_date":  trip.StartDate,
		"end_date":    trip.EndDate,
		"budget":      decimalArg(trip.Budget),
	}

	result, err := scanTrip(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Update: %w", err)
	}
	return result, nil
}

// Delete removes a trip by primary key.
func (r *pgTripRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM trips WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.TripRepo.Delete: %w", translate(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.TripRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// scanTrip maps a single database row into a domain.Trip.
// It handles the UUID, date, and nullable budget conversions.
func scanTrip(s scanner) (domain.Trip, error) {
	var (
		t         domain.Trip
		id        pgtype.UUID
		creatorID pgtype.UUID
		startDate pgtype.Date
		endDate   pgtype.Date
		budget    *string
	)

	err := s.Scan(&id, &t.Name, &t.Description, &startDate, &endDate, &budget,
		&t.TripCode, &creatorID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return domain.Trip{}, translate(err)
	}

	t.ID = uuid.UUID(id.Bytes)
	t.CreatorID = uuid.UUID(creatorID.Bytes)
	t.StartDate = startDate.Time
	t.EndDate = endDate.Time
	if t.Budget, err = parseDecimal(budget); err != nil {
		return domain.Trip{}, err
	}

	return t, nil
}
