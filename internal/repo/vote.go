package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/tripplanner/backend/internal/domain"
)

// VoteRepo defines the persistence operations for votes.
// It never touches the activity vote counter; callers pair every vote row
// change with ActivityRepo.AdjustVotes inside one transaction.
type VoteRepo interface {
	// Create records that userID voted for activityID.
	// Returns domain.ErrConflict if the vote already exists.
	Create(ctx context.Context, activityID, userID uuid.UUID) (domain.Vote, error)

	// Delete removes the vote and reports whether a row existed.
	Delete(ctx context.Context, activityID, userID uuid.UUID) (bool, error)

	// Exists reports whether userID has voted for activityID.
	Exists(ctx context.Context, activityID, userID uuid.UUID) (bool, error)

	// ListVoters returns the voters of one activity in vote order.
	ListVoters(ctx context.Context, activityID uuid.UUID) ([]domain.Voter, error)

	// ListVotersByActivities batches ListVoters. Activities without votes
	// are absent from the map.
	ListVotersByActivities(ctx context.Context, activityIDs []uuid.UUID) (map[uuid.UUID][]domain.Voter, error)

	// CountByActivity counts vote rows directly, bypassing the counter.
	CountByActivity(ctx context.Context, activityID uuid.UUID) (int, error)
}

type pgVoteRepo struct {
	db db
}

// NewVoteRepo constructs a VoteRepo backed by db.
func NewVoteRepo(db db) VoteRepo {
	return &pgVoteRepo{db: db}
}

func (r *pgVoteRepo) Create(ctx context.Context, activityID, userID uuid.UUID) (domain.Vote, error) {
	const q = `
		INSERT INTO votes (activity_id, user_id)
		VALUES (@activity_id, @user_id)
		RETURNING id, activity_id, user_id, created_at`

	var (
		v          domain.Vote
		id, aID, u pgtype.UUID
	)
	err := r.db.QueryRow(ctx, q, pgx.NamedArgs{
		"activity_id": activityID,
		"user_id":     userID,
	}).Scan(&id, &aID, &u, &v.CreatedAt)
	if err != nil {
		return domain.Vote{}, fmt.Errorf("repo.VoteRepo.Create: %w", translate(err))
	}
	v.ID = uuid.UUID(id.Bytes)
	v.ActivityID = uuid.UUID(aID.Bytes)
	v.UserID = uuid.UUID(u.Bytes)
	return v, nil
}

func (r *pgVoteRepo) Delete(ctx context.Context, activityID, userID uuid.UUID) (bool, error) {
	const q = `DELETE FROM votes WHERE activity_id = @activity_id AND user_id = @user_id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"activity_id": activityID, "user_id": userID})
	if err != nil {
		return false, fmt.Errorf("repo.VoteRepo.Delete: %w", translate(err))
	}
	return tag.RowsAffected() > 0, nil
}

func (r *pgVoteRepo) Exists(ctx context.Context, activityID, userID uuid.UUID) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM votes WHERE activity_id = @activity_id AND user_id = @user_id)`

	var exists bool
	err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"activity_id": activityID, "user_id": userID}).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("repo.VoteRepo.Exists: %w", err)
	}
	return exists, nil
}

func (r *pgVoteRepo) ListVoters(ctx context.Context, activityID uuid.UUID) ([]domain.Voter, error) {
	byActivity, err := r.ListVotersByActivities(ctx, []uuid.UUID{activityID})
	if err != nil {
		return nil, fmt.Errorf("repo.VoteRepo.ListVoters: %w", err)
	}
	if v, ok := byActivity[activityID]; ok {
		return v, nil
	}
	return []domain.Voter{}, nil
}

func (r *pgVoteRepo) ListVotersByActivities(ctx context.Context, activityIDs []uuid.UUID) (map[uuid.UUID][]domain.Voter, error) {
	out := make(map[uuid.UUID][]domain.Voter, len(activityIDs))
	if len(activityIDs) == 0 {
		return out, nil
	}

	const q = `
		SELECT v.activity_id, u.id, u.name, v.created_at
		FROM votes v
		JOIN users u ON u.id = v.user_id
		WHERE v.activity_id = ANY(@activity_ids::text[]::uuid[])
		ORDER BY v.created_at, v.id`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"activity_ids": uuidStrings(activityIDs)})
	if err != nil {
		return nil, fmt.Errorf("repo.VoteRepo.ListVotersByActivities: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			activityID pgtype.UUID
			userID     pgtype.UUID
			v          domain.Voter
		)
		if err := rows.Scan(&activityID, &userID, &v.Name, &v.VotedAt); err != nil {
			return nil, fmt.Errorf("repo.VoteRepo.ListVotersByActivities: scan: %w", err)
		}
		v.UserID = uuid.UUID(userID.Bytes)
		key := uuid.UUID(activityID.Bytes)
		out[key] = append(out[key], v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.VoteRepo.ListVotersByActivities: rows: %w", err)
	}
	return out, nil
}

func (r *pgVoteRepo) CountByActivity(ctx context.Context, activityID uuid.UUID) (int, error) {
	const q = `SELECT count(*) FROM votes WHERE activity_id = @activity_id`

	var n int
	if err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"activity_id": activityID}).Scan(&n); err != nil {
		return 0, fmt.Errorf("repo.VoteRepo.CountByActivity: %w", err)
	}
	return n, nil
}
