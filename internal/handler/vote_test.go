package handler_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/tripplanner/backend/internal/domain"
	"github.com/pkordes/tripplanner/backend/internal/handler"
)

func voteHandler(svc *mockVoteServicer) http.Handler {
	return newHTTPHandler(handler.NewServer(nil, nil, svc, nil, nil))
}

func TestToggleVote_200(t *testing.T) {
	act := activityFixture(uuid.New(), 2)
	act.Voters = []domain.Voter{
		{UserID: uuid.New(), Name: "Ana"},
		{UserID: caller.ID, Name: "Caller"},
	}
	svc := &mockVoteServicer{
		toggle: func(_ context.Context, activityID, userID uuid.UUID) (domain.VoteResult, error) {
			assert.Equal(t, act.ID, activityID)
			assert.Equal(t, caller.ID, userID)
			return domain.VoteResult{Voted: true, Activity: act}, nil
		},
	}

	rec := do(t, voteHandler(svc), http.MethodPost, "/activities/"+act.ID.String()+"/vote", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[handler.VoteResult](t, rec)
	assert.True(t, resp.Voted)
	assert.Equal(t, 2, resp.Activity.Votes)
	assert.True(t, resp.Activity.Locked)
	assert.Len(t, resp.Activity.Voters, 2)
}

func TestToggleVote_Retract(t *testing.T) {
	act := activityFixture(uuid.New(), 1)
	svc := &mockVoteServicer{
		toggle: func(context.Context, uuid.UUID, uuid.UUID) (domain.VoteResult, error) {
			return domain.VoteResult{Voted: false, Activity: act}, nil
		},
	}

	rec := do(t, voteHandler(svc), http.MethodPost, "/activities/"+act.ID.String()+"/vote", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[handler.VoteResult](t, rec)
	assert.False(t, resp.Voted)
	assert.False(t, resp.Activity.Locked)
}

func TestToggleVote_409_Concurrent(t *testing.T) {
	svc := &mockVoteServicer{
		toggle: func(context.Context, uuid.UUID, uuid.UUID) (domain.VoteResult, error) {
			return domain.VoteResult{}, fmt.Errorf("service.VoteService.Toggle: %w",
				fmt.Errorf("%w: vote changed concurrently, try again", domain.ErrConflict))
		},
	}

	rec := do(t, voteHandler(svc), http.MethodPost, "/activities/"+uuid.NewString()+"/vote", nil)

	assert.Equal(t, http.StatusConflict, rec.Code)
	resp := decode[handler.ErrorResponse](t, rec)
	assert.Equal(t, "vote changed concurrently, try again", resp.Error.Message)
}

func TestGetVoteStatus_200(t *testing.T) {
	svc := &mockVoteServicer{
		status: func(context.Context, uuid.UUID, uuid.UUID) (bool, error) { return true, nil },
	}

	rec := do(t, voteHandler(svc), http.MethodGet, "/activities/"+uuid.NewString()+"/vote", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"voted":true}`, rec.Body.String())
}

func TestGetVoteStatus_404_NonMember(t *testing.T) {
	svc := &mockVoteServicer{
		status: func(context.Context, uuid.UUID, uuid.UUID) (bool, error) {
			return false, fmt.Errorf("%w: activity not found", domain.ErrNotFound)
		},
	}

	rec := do(t, voteHandler(svc), http.MethodGet, "/activities/"+uuid.NewString()+"/vote", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
