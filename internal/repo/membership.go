package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/tripplanner/backend/internal/domain"
)

// MembershipRepo defines the persistence operations for trip participants.
type MembershipRepo interface {
	// Create adds userID to tripID with the given role.
	// Returns domain.ErrConflict if the user is already a participant and
	// domain.ErrNotFound if the trip or user does not exist.
	Create(ctx context.Context, tripID, userID uuid.UUID, role domain.Role) (domain.Membership, error)

	// Get returns the membership of userID in tripID.
	// Returns domain.ErrNotFound if the user is not a participant.
	Get(ctx context.Context, tripID, userID uuid.UUID) (domain.Membership, error)

	// Delete removes userID from tripID.
	// Returns domain.ErrNotFound if the user was not a participant.
	Delete(ctx context.Context, tripID, userID uuid.UUID) error

	// ListParticipants returns the participants of tripID in join order.
	ListParticipants(ctx context.Context, tripID uuid.UUID) ([]domain.Participant, error)

	// ListParticipantsByTrips batches ListParticipants for several trips.
	// Trips with no participants are absent from the map.
	ListParticipantsByTrips(ctx context.Context, tripIDs []uuid.UUID) (map[uuid.UUID][]domain.Participant, error)
}

type pgMembershipRepo struct {
	db db
}

// NewMembershipRepo constructs a MembershipRepo backed by db.
func NewMembershipRepo(db db) MembershipRepo {
	return &pgMembershipRepo{db: db}
}

func (r *pgMembershipRepo) Create(ctx context.Context, tripID, userID uuid.UUID, role domain.Role) (domain.Membership, error) {
	const q = `
		INSERT INTO trip_participants (trip_id, user_id, role)
		VALUES (@trip_id, @user_id, @role)
		RETURNING id, trip_id, user_id, role, joined_at`

	m, err := scanMembership(r.db.QueryRow(ctx, q, pgx.NamedArgs{
		"trip_id": tripID,
		"user_id": userID,
		"role":    string(role),
	}))
	if err != nil {
		return domain.Membership{}, fmt.Errorf("repo.MembershipRepo.Create: %w", err)
	}
	return m, nil
}

func (r *pgMembershipRepo) Get(ctx context.Context, tripID, userID uuid.UUID) (domain.Membership, error) {
	const q = `
		SELECT id, trip_id, user_id, role, joined_at
		FROM trip_participants
		WHERE trip_id = @trip_id AND user_id = @user_id`

	m, err := scanMembership(r.db.QueryRow(ctx, q, pgx.NamedArgs{
		"trip_id": tripID,
		"user_id": userID,
	}))
	if err != nil {
		return domain.Membership{}, fmt.Errorf("repo.MembershipRepo.Get: %w", err)
	}
	return m, nil
}

func (r *pgMembershipRepo) Delete(ctx context.Context, tripID, userID uuid.UUID) error {
	const q = `DELETE FROM trip_participants WHERE trip_id = @trip_id AND user_id = @user_id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"trip_id": tripID, "user_id": userID})
	if err != nil {
		return fmt.Errorf("repo.MembershipRepo.Delete: %w", translate(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.MembershipRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *pgMembershipRepo) ListParticipants(ctx context.Context, tripID uuid.UUID) ([]domain.Participant, error) {
	byTrip, err := r.ListParticipantsByTrips(ctx, []uuid.UUID{tripID})
	if err != nil {
		return nil, fmt.Errorf("repo.MembershipRepo.ListParticipants: %w", err)
	}
	if p, ok := byTrip[tripID]; ok {
		return p, nil
	}
	return []domain.Participant{}, nil
}

func (r *pgMembershipRepo) ListParticipantsByTrips(ctx context.Context, tripIDs []uuid.UUID) (map[uuid.UUID][]domain.Participant, error) {
	out := make(map[uuid.UUID][]domain.Participant, len(tripIDs))
	if len(tripIDs) == 0 {
		return out, nil
	}

	const q = `
		SELECT tp.trip_id, u.id, u.name, u.email, tp.role, tp.joined_at
		FROM trip_participants tp
		JOIN users u ON u.id = tp.user_id
		WHERE tp.trip_id = ANY(@trip_ids::text[]::uuid[])
		ORDER BY tp.joined_at, tp.id`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"trip_ids": uuidStrings(tripIDs)})
	if err != nil {
		return nil, fmt.Errorf("repo.MembershipRepo.ListParticipantsByTrips: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			tripID pgtype.UUID
			userID pgtype.UUID
			role   string
			p      domain.Participant
		)
		if err := rows.Scan(&tripID, &userID, &p.User.Name, &p.User.Email, &role, &p.JoinedAt); err != nil {
			return nil, fmt.Errorf("repo.MembershipRepo.ListParticipantsByTrips: scan: %w", err)
		}
		p.User.ID = uuid.UUID(userID.Bytes)
		p.Role = domain.Role(role)
		key := uuid.UUID(tripID.Bytes)
		out[key] = append(out[key], p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.MembershipRepo.ListParticipantsByTrips: rows: %w", err)
	}
	return out, nil
}

func scanMembership(s scanner) (domain.Membership, error) {
	var (
		m      domain.Membership
		id     pgtype.UUID
		tripID pgtype.UUID
		userID pgtype.UUID
		role   string
	)
	if err := s.Scan(&id, &tripID, &userID, &role, &m.JoinedAt); err != nil {
		return domain.Membership{}, translate(err)
	}
	m.ID = uuid.UUID(id.Bytes)
	m.TripID = uuid.UUID(tripID.Bytes)
	m.UserID = uuid.UUID(userID.Bytes)
	m.Role = domain.Role(role)
	return m, nil
}
