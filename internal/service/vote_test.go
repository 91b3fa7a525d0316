package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/tripplanner/backend/internal/domain"
	"github.com/pkordes/tripplanner/backend/internal/service"
)

func newVoteService(s *fakeStore) *service.VoteService {
	return service.NewVoteService(s.repos(), fakeTx{s}, nil, nil)
}

func TestVoteService_Toggle_EndorseThenRetract(t *testing.T) {
	s := newFakeStore()
	alice := s.addUser("alice")
	trip := createTrip(t, s, alice)
	act := createActivity(t, s, trip.ID, alice, "Kayaking")
	svc := newVoteService(s)

	first, err := svc.Toggle(context.Background(), act.ID, alice)
	require.NoError(t, err)
	assert.True(t, first.Voted)
	assert.Equal(t, 1, first.Activity.Votes)
	require.Len(t, first.Activity.Voters, 1)
	assert.Equal(t, "alice", first.Activity.Voters[0].Name)

	second, err := svc.Toggle(context.Background(), act.ID, alice)
	require.NoError(t, err)
	assert.False(t, second.Voted)
	assert.Zero(t, second.Activity.Votes, "double toggle restores the original count")
	assert.Empty(t, second.Activity.Voters)
	assert.Zero(t, s.voteRows(act.ID))
}

func TestVoteService_Toggle_LocksAtTwo(t *testing.T) {
	s := newFakeStore()
	alice := s.addUser("alice")
	bob := s.addUser("bob")
	carol := s.addUser("carol")
	trip := createTrip(t, s, alice)
	joinTrip(t, s, trip, bob)
	joinTrip(t, s, trip, carol)
	act := createActivity(t, s, trip.ID, alice, "Kayaking")
	svc := newVoteService(s)

	r, err := svc.Toggle(context.Background(), act.ID, bob)
	require.NoError(t, err)
	assert.False(t, r.Activity.Locked())

	r, err = svc.Toggle(context.Background(), act.ID, carol)
	require.NoError(t, err)
	assert.True(t, r.Activity.Locked(), "two votes lock regardless of trip size")
}

func TestVoteService_Toggle_NonMember(t *testing.T) {
	s := newFakeStore()
	alice := s.addUser("alice")
	mallory := s.addUser("mallory")
	trip := createTrip(t, s, alice)
	act := createActivity(t, s, trip.ID, alice, "Kayaking")

	_, err := newVoteService(s).Toggle(context.Background(), act.ID, mallory)

	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Zero(t, s.voteRows(act.ID))
}

func TestVoteService_Toggle_UnknownActivity(t *testing.T) {
	s := newFakeStore()
	alice := s.addUser("alice")

	_, err := newVoteService(s).Toggle(context.Background(), uuid.New(), alice)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// TestVoteService_Toggle_ConcurrentDuplicate simulates a second toggle by
// the same user inserting the vote row first.
func TestVoteService_Toggle_ConcurrentDuplicate(t *testing.T) {
	s := newFakeStore()
	alice := s.addUser("alice")
	trip := createTrip(t, s, alice)
	act := createActivity(t, s, trip.ID, alice, "Kayaking")
	s.failNext("Votes.Create", domain.ErrConflict)

	_, err := newVoteService(s).Toggle(context.Background(), act.ID, alice)

	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Zero(t, s.activities[act.ID].Votes)
	assert.Zero(t, s.voteRows(act.ID))
}

// TestVoteService_Toggle_CounterFailureRollsBack checks that a vote row is
// never left behind when the counter update fails.
func TestVoteService_Toggle_CounterFailureRollsBack(t *testing.T) {
	s := newFakeStore()
	alice := s.addUser("alice")
	trip := createTrip(t, s, alice)
	act := createActivity(t, s, trip.ID, alice, "Kayaking")
	boom := errors.New("deadlock detected")
	s.failNext("Activities.AdjustVotes", boom)

	_, err := newVoteService(s).Toggle(context.Background(), act.ID, alice)

	assert.ErrorIs(t, err, boom)
	assert.Zero(t, s.voteRows(act.ID))
	assert.Zero(t, s.activities[act.ID].Votes)
}

func TestVoteService_Toggle_CounterMatchesRows(t *testing.T) {
	s := newFakeStore()
	users := []uuid.UUID{s.addUser("alice"), s.addUser("bob"), s.addUser("carol")}
	trip := createTrip(t, s, users[0])
	joinTrip(t, s, trip, users[1])
	joinTrip(t, s, trip, users[2])
	act := createActivity(t, s, trip.ID, users[0], "Kayaking")
	svc := newVoteService(s)

	// An arbitrary toggle sequence; after each commit the counter must equal
	// the number of vote rows.
	for _, i := range []int{0, 1, 0, 2, 2, 1, 0, 2} {
		_, err := svc.Toggle(context.Background(), act.ID, users[i])
		require.NoError(t, err)
		assert.Equal(t, s.voteRows(act.ID), s.activities[act.ID].Votes)
	}
}

func TestVoteService_Toggle_Metrics(t *testing.T) {
	s := newFakeStore()
	alice := s.addUser("alice")
	trip := createTrip(t, s, alice)
	act := createActivity(t, s, trip.ID, alice, "Kayaking")
	reg := prometheus.NewRegistry()
	svc := service.NewVoteService(s.repos(), fakeTx{s}, service.NewMetrics(reg), nil)

	for range 3 {
		_, err := svc.Toggle(context.Background(), act.ID, alice)
		require.NoError(t, err)
	}

	families, err := reg.Gather()
	require.NoError(t, err)
	got := map[string]float64{}
	for _, f := range families {
		if f.GetName() != "tripplanner_votes_total" {
			continue
		}
		for _, m := range f.GetMetric() {
			got[m.GetLabel()[0].GetValue()] = m.GetCounter().GetValue()
		}
	}
	assert.Equal(t, map[string]float64{"endorse": 2, "retract": 1}, got)
}

func TestVoteService_Status(t *testing.T) {
	s := newFakeStore()
	alice := s.addUser("alice")
	bob := s.addUser("bob")
	mallory := s.addUser("mallory")
	trip := createTrip(t, s, alice)
	joinTrip(t, s, trip, bob)
	act := createActivity(t, s, trip.ID, alice, "Kayaking")
	svc := newVoteService(s)
	_, err := svc.Toggle(context.Background(), act.ID, alice)
	require.NoError(t, err)

	voted, err := svc.Status(context.Background(), act.ID, alice)
	require.NoError(t, err)
	assert.True(t, voted)

	voted, err = svc.Status(context.Background(), act.ID, bob)
	require.NoError(t, err)
	assert.False(t, voted)

	_, err = svc.Status(context.Background(), act.ID, mallory)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
