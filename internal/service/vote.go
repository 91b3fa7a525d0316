package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/pkordes/tripplanner/backend/internal/domain"
	"github.com/pkordes/tripplanner/backend/internal/repo"
)

// VoteService toggles votes and keeps the activity vote counter equal to
// the number of vote rows.
type VoteService struct {
	repos   repo.Repos
	tx      repo.TxManager
	metrics *Metrics
	log     *slog.Logger
}

// NewVoteService constructs a VoteService. metrics and log may be nil.
func NewVoteService(repos repo.Repos, tx repo.TxManager, metrics *Metrics, log *slog.Logger) *VoteService {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &VoteService{repos: repos, tx: tx, metrics: metrics, log: log}
}

// Toggle flips userID's vote on activityID. The vote row and the counter
// change commit together or not at all.
func (s *VoteService) Toggle(ctx context.Context, activityID, userID uuid.UUID) (domain.VoteResult, error) {
	if _, err := memberActivity(ctx, s.repos, activityID, userID); err != nil {
		return domain.VoteResult{}, fmt.Errorf("service.VoteService.Toggle: %w", err)
	}

	var voted bool
	err := s.tx.InTx(ctx, func(r repo.Repos) error {
		removed, err := r.Votes.Delete(ctx, activityID, userID)
		if err != nil {
			return err
		}
		if removed {
			voted = false
			_, err = r.Activities.AdjustVotes(ctx, activityID, -1)
			return err
		}

		if _, err := r.Votes.Create(ctx, activityID, userID); err != nil {
			return err
		}
		voted = true
		_, err = r.Activities.AdjustVotes(ctx, activityID, 1)
		return err
	})
	if errors.Is(err, domain.ErrConflict) {
		return domain.VoteResult{}, fmt.Errorf("service.VoteService.Toggle: %w: vote changed concurrently, try again", domain.ErrConflict)
	}
	if err != nil {
		return domain.VoteResult{}, fmt.Errorf("service.VoteService.Toggle: %w", err)
	}
	s.metrics.voteToggled(voted)

	a, err := s.repos.Activities.GetByID(ctx, activityID)
	if err != nil {
		return domain.VoteResult{}, fmt.Errorf("service.VoteService.Toggle: %w", err)
	}
	detail, err := enrichActivity(ctx, s.repos, a)
	if err != nil {
		return domain.VoteResult{}, fmt.Errorf("service.VoteService.Toggle: %w", err)
	}

	s.log.DebugContext(ctx, "vote toggled",
		slog.String("activity_id", activityID.String()),
		slog.Bool("voted", voted),
		slog.Int("votes", detail.Votes),
	)
	return domain.VoteResult{Voted: voted, Activity: detail}, nil
}

// Status reports whether userID currently votes for activityID.
func (s *VoteService) Status(ctx context.Context, activityID, userID uuid.UUID) (bool, error) {
	if _, err := memberActivity(ctx, s.repos, activityID, userID); err != nil {
		return false, fmt.Errorf("service.VoteService.Status: %w", err)
	}
	voted, err := s.repos.Votes.Exists(ctx, activityID, userID)
	if err != nil {
		return false, fmt.Errorf("service.VoteService.Status: %w", err)
	}
	return voted, nil
}
