package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/tripplanner/backend/internal/domain"
)

// UserRepo reads users. Users are owned by the identity service, so there
// are no write operations here.
type UserRepo interface {
	// GetByID returns domain.ErrNotFound if the user does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (domain.UserSummary, error)

	// GetByIDs returns the users that exist among ids, keyed by ID.
	GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]domain.UserSummary, error)
}

type pgUserRepo struct {
	db db
}

// NewUserRepo constructs a UserRepo backed by db.
func NewUserRepo(db db) UserRepo {
	return &pgUserRepo{db: db}
}

func (r *pgUserRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.UserSummary, error) {
	const q = `SELECT id, name, email FROM users WHERE id = @id`

	u, err := scanUser(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.UserSummary{}, fmt.Errorf("repo.UserRepo.GetByID: %w", err)
	}
	return u, nil
}

func (r *pgUserRepo) GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]domain.UserSummary, error) {
	out := make(map[uuid.UUID]domain.UserSummary, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	const q = `SELECT id, name, email FROM users WHERE id = ANY(@ids::text[]::uuid[])`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"ids": uuidStrings(ids)})
	if err != nil {
		return nil, fmt.Errorf("repo.UserRepo.GetByIDs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.UserRepo.GetByIDs: scan: %w", err)
		}
		out[u.ID] = u
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.UserRepo.GetByIDs: rows: %w", err)
	}
	return out, nil
}

func scanUser(s scanner) (domain.UserSummary, error) {
	var (
		u  domain.UserSummary
		id pgtype.UUID
	)
	if err := s.Scan(&id, &u.Name, &u.Email); err != nil {
		return domain.UserSummary{}, translate(err)
	}
	u.ID = uuid.UUID(id.Bytes)
	return u, nil
}
