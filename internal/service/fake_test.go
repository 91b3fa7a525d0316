package service_test

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/tripplanner/backend/internal/domain"
	"github.com/pkordes/tripplanner/backend/internal/repo"
)

// fakeStore is an in-memory stand-in for the whole schema. It enforces the
// same unique and cascade rules as the migrations, and its TxManager
// restores a snapshot when the unit of work fails, so service tests can
// observe rollback behaviour without Postgres.
type fakeStore struct {
	mu         sync.Mutex
	clock      time.Time
	users      map[uuid.UUID]domain.UserSummary
	trips      map[uuid.UUID]domain.Trip
	members    []domain.Membership
	activities map[uuid.UUID]domain.Activity
	votes      []domain.Vote

	// fail queues errors returned by the named operation ("Trips.Create",
	// "Votes.Create", ...), one per call, before it touches any state.
	fail map[string][]error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		clock:      time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC),
		users:      map[uuid.UUID]domain.UserSummary{},
		trips:      map[uuid.UUID]domain.Trip{},
		activities: map[uuid.UUID]domain.Activity{},
		fail:       map[string][]error{},
	}
}

func (s *fakeStore) addUser(name string) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.New()
	s.users[id] = domain.UserSummary{ID: id, Name: name, Email: name + "@example.test"}
	return id
}

func (s *fakeStore) failNext(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail[op] = append(s.fail[op], err)
}

// popFail must be called with mu held.
func (s *fakeStore) popFail(op string) error {
	q := s.fail[op]
	if len(q) == 0 {
		return nil
	}
	s.fail[op] = q[1:]
	return q[0]
}

// tick must be called with mu held.
func (s *fakeStore) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

func (s *fakeStore) repos() repo.Repos {
	return repo.Repos{
		Trips:       fakeTrips{s},
		Memberships: fakeMemberships{s},
		Activities:  fakeActivities{s},
		Votes:       fakeVotes{s},
		Users:       fakeUsers{s},
	}
}

type fakeSnapshot struct {
	trips      map[uuid.UUID]domain.Trip
	members    []domain.Membership
	activities map[uuid.UUID]domain.Activity
	votes      []domain.Vote
}

func (s *fakeStore) snapshot() fakeSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fakeSnapshot{
		trips:      maps.Clone(s.trips),
		members:    slices.Clone(s.members),
		activities: maps.Clone(s.activities),
		votes:      slices.Clone(s.votes),
	}
}

func (s *fakeStore) restore(snap fakeSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trips, s.members, s.activities, s.votes = snap.trips, snap.members, snap.activities, snap.votes
}

// voteRows counts vote rows for id directly, for counter consistency checks.
func (s *fakeStore) voteRows(id uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, v := range s.votes {
		if v.ActivityID == id {
			n++
		}
	}
	return n
}

func (s *fakeStore) memberCount(tripID uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, m := range s.members {
		if m.TripID == tripID {
			n++
		}
	}
	return n
}

// ---- TxManager ----------------------------------------------------------

type fakeTx struct{ s *fakeStore }

func (t fakeTx) InTx(_ context.Context, fn func(r repo.Repos) error) error {
	snap := t.s.snapshot()
	if err := fn(t.s.repos()); err != nil {
		t.s.restore(snap)
		return err
	}
	return nil
}

var _ repo.TxManager = fakeTx{}

// ---- TripRepo -----------------------------------------------------------

type fakeTrips struct{ s *fakeStore }

var _ repo.TripRepo = fakeTrips{}

func (f fakeTrips) Create(_ context.Context, t domain.Trip) (domain.Trip, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if err := f.s.popFail("Trips.Create"); err != nil {
		return domain.Trip{}, err
	}
	for _, existing := range f.s.trips {
		if existing.TripCode == t.TripCode {
			return domain.Trip{}, fmt.Errorf("%w [trips_trip_code_key]", domain.ErrConflict)
		}
	}
	if _, ok := f.s.users[t.CreatorID]; !ok {
		return domain.Trip{}, fmt.Errorf("%w [trips_creator_id_fkey]", domain.ErrNotFound)
	}
	t.ID = uuid.New()
	t.CreatedAt = f.s.tick()
	t.UpdatedAt = t.CreatedAt
	f.s.trips[t.ID] = t
	return t, nil
}

func (f fakeTrips) GetByID(_ context.Context, id uuid.UUID) (domain.Trip, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	t, ok := f.s.trips[id]
	if !ok {
		return domain.Trip{}, domain.ErrNotFound
	}
	return t, nil
}

func (f fakeTrips) GetByCode(_ context.Context, code string) (domain.Trip, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, t := range f.s.trips {
		if t.TripCode == code {
			return t, nil
		}
	}
	return domain.Trip{}, domain.ErrNotFound
}

func (f fakeTrips) CodeExists(_ context.Context, code string) (bool, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if err := f.s.popFail("Trips.CodeExists"); err != nil {
		return false, err
	}
	for _, t := range f.s.trips {
		if t.TripCode == code {
			return true, nil
		}
	}
	return false, nil
}

func (f fakeTrips) ListByMember(_ context.Context, userID uuid.UUID, p domain.PaginationParams) ([]domain.Trip, int64, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var all []domain.Trip
	for _, m := range f.s.members {
		if m.UserID == userID {
			all = append(all, f.s.trips[m.TripID])
		}
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	out := []domain.Trip{}
	for i := p.Offset(); i < len(all) && len(out) < p.Limit; i++ {
		out = append(out, all[i])
	}
	return out, int64(len(all)), nil
}

func (f fakeTrips) Update(_ context.Context, t domain.Trip) (domain.Trip, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	existing, ok := f.s.trips[t.ID]
	if !ok {
		return domain.Trip{}, domain.ErrNotFound
	}
	existing.Name = t.Name
	existing.Description = t.Description
	existing.StartDate = t.StartDate
	existing.EndDate = t.EndDate
	existing.Budget = t.Budget
	existing.UpdatedAt = f.s.tick()
	f.s.trips[t.ID] = existing
	return existing, nil
}

func (f fakeTrips) Delete(_ context.Context, id uuid.UUID) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if err := f.s.popFail("Trips.Delete"); err != nil {
		return err
	}
	if _, ok := f.s.trips[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.s.trips, id)
	f.s.members = slices.DeleteFunc(f.s.members, func(m domain.Membership) bool { return m.TripID == id })
	for aid, a := range f.s.activities {
		if a.TripID == id {
			delete(f.s.activities, aid)
			f.s.votes = slices.DeleteFunc(f.s.votes, func(v domain.Vote) bool { return v.ActivityID == aid })
		}
	}
	return nil
}

// ---- MembershipRepo -----------------------------------------------------

type fakeMemberships struct{ s *fakeStore }

var _ repo.MembershipRepo = fakeMemberships{}

func (f fakeMemberships) Create(_ context.Context, tripID, userID uuid.UUID, role domain.Role) (domain.Membership, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if err := f.s.popFail("Memberships.Create"); err != nil {
		return domain.Membership{}, err
	}
	if _, ok := f.s.trips[tripID]; !ok {
		return domain.Membership{}, fmt.Errorf("%w [trip_participants_trip_id_fkey]", domain.ErrNotFound)
	}
	for _, m := range f.s.members {
		if m.TripID == tripID && m.UserID == userID {
			return domain.Membership{}, fmt.Errorf("%w [trip_participants_trip_user_key]", domain.ErrConflict)
		}
	}
	m := domain.Membership{ID: uuid.New(), TripID: tripID, UserID: userID, Role: role, JoinedAt: f.s.tick()}
	f.s.members = append(f.s.members, m)
	return m, nil
}

func (f fakeMemberships) Get(_ context.Context, tripID, userID uuid.UUID) (domain.Membership, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, m := range f.s.members {
		if m.TripID == tripID && m.UserID == userID {
			return m, nil
		}
	}
	return domain.Membership{}, domain.ErrNotFound
}

func (f fakeMemberships) Delete(_ context.Context, tripID, userID uuid.UUID) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	before := len(f.s.members)
	f.s.members = slices.DeleteFunc(f.s.members, func(m domain.Membership) bool {
		return m.TripID == tripID && m.UserID == userID
	})
	if len(f.s.members) == before {
		return domain.ErrNotFound
	}
	return nil
}

func (f fakeMemberships) ListParticipants(ctx context.Context, tripID uuid.UUID) ([]domain.Participant, error) {
	byTrip, err := f.ListParticipantsByTrips(ctx, []uuid.UUID{tripID})
	if err != nil {
		return nil, err
	}
	if p, ok := byTrip[tripID]; ok {
		return p, nil
	}
	return []domain.Participant{}, nil
}

func (f fakeMemberships) ListParticipantsByTrips(_ context.Context, tripIDs []uuid.UUID) (map[uuid.UUID][]domain.Participant, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	out := map[uuid.UUID][]domain.Participant{}
	for _, m := range f.s.members {
		if slices.Contains(tripIDs, m.TripID) {
			out[m.TripID] = append(out[m.TripID], domain.Participant{
				User: f.s.users[m.UserID], Role: m.Role, JoinedAt: m.JoinedAt,
			})
		}
	}
	return out, nil
}

// ---- ActivityRepo -------------------------------------------------------

type fakeActivities struct{ s *fakeStore }

var _ repo.ActivityRepo = fakeActivities{}

func (f fakeActivities) Create(_ context.Context, a domain.Activity) (domain.Activity, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if _, ok := f.s.trips[a.TripID]; !ok {
		return domain.Activity{}, fmt.Errorf("%w [activities_trip_id_fkey]", domain.ErrNotFound)
	}
	a.ID = uuid.New()
	a.Votes = 0
	a.CreatedAt = f.s.tick()
	a.UpdatedAt = a.CreatedAt
	f.s.activities[a.ID] = a
	return a, nil
}

func (f fakeActivities) GetByID(_ context.Context, id uuid.UUID) (domain.Activity, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	a, ok := f.s.activities[id]
	if !ok {
		return domain.Activity{}, domain.ErrNotFound
	}
	return a, nil
}

func (f fakeActivities) ListByTrip(_ context.Context, tripID uuid.UUID) ([]domain.Activity, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	out := []domain.Activity{}
	for _, a := range f.s.activities {
		if a.TripID == tripID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		switch {
		case a.Time != nil && b.Time == nil:
			return true
		case a.Time == nil && b.Time != nil:
			return false
		case a.Time != nil && b.Time != nil && *a.Time != *b.Time:
			return *a.Time < *b.Time
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
	return out, nil
}

func (f fakeActivities) ListByTrips(ctx context.Context, tripIDs []uuid.UUID) (map[uuid.UUID][]domain.Activity, error) {
	f.s.mu.Lock()
	err := f.s.popFail("Activities.ListByTrips")
	f.s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	out := map[uuid.UUID][]domain.Activity{}
	for _, id := range tripIDs {
		acts, err := f.ListByTrip(ctx, id)
		if err != nil {
			return nil, err
		}
		if len(acts) > 0 {
			out[id] = acts
		}
	}
	return out, nil
}

func (f fakeActivities) Update(_ context.Context, a domain.Activity) (domain.Activity, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	existing, ok := f.s.activities[a.ID]
	if !ok {
		return domain.Activity{}, domain.ErrNotFound
	}
	existing.Name = a.Name
	existing.Description = a.Description
	existing.Date = a.Date
	existing.Time = a.Time
	existing.Category = a.Category
	existing.EstimatedCost = a.EstimatedCost
	existing.Notes = a.Notes
	existing.UpdatedAt = f.s.tick()
	f.s.activities[a.ID] = existing
	return existing, nil
}

func (f fakeActivities) Delete(_ context.Context, id uuid.UUID) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if _, ok := f.s.activities[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.s.activities, id)
	f.s.votes = slices.DeleteFunc(f.s.votes, func(v domain.Vote) bool { return v.ActivityID == id })
	return nil
}

func (f fakeActivities) AdjustVotes(_ context.Context, id uuid.UUID, delta int) (int, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if err := f.s.popFail("Activities.AdjustVotes"); err != nil {
		return 0, err
	}
	a, ok := f.s.activities[id]
	if !ok {
		return 0, domain.ErrNotFound
	}
	if a.Votes+delta < 0 {
		return 0, fmt.Errorf("check constraint activities_votes_check violated")
	}
	a.Votes += delta
	f.s.activities[id] = a
	return a.Votes, nil
}

// ---- VoteRepo -----------------------------------------------------------

type fakeVotes struct{ s *fakeStore }

var _ repo.VoteRepo = fakeVotes{}

func (f fakeVotes) Create(_ context.Context, activityID, userID uuid.UUID) (domain.Vote, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if err := f.s.popFail("Votes.Create"); err != nil {
		return domain.Vote{}, err
	}
	for _, v := range f.s.votes {
		if v.ActivityID == activityID && v.UserID == userID {
			return domain.Vote{}, fmt.Errorf("%w [votes_activity_user_key]", domain.ErrConflict)
		}
	}
	v := domain.Vote{ID: uuid.New(), ActivityID: activityID, UserID: userID, CreatedAt: f.s.tick()}
	f.s.votes = append(f.s.votes, v)
	return v, nil
}

func (f fakeVotes) Delete(_ context.Context, activityID, userID uuid.UUID) (bool, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	before := len(f.s.votes)
	f.s.votes = slices.DeleteFunc(f.s.votes, func(v domain.Vote) bool {
		return v.ActivityID == activityID && v.UserID == userID
	})
	return len(f.s.votes) < before, nil
}

func (f fakeVotes) Exists(_ context.Context, activityID, userID uuid.UUID) (bool, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, v := range f.s.votes {
		if v.ActivityID == activityID && v.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (f fakeVotes) ListVoters(ctx context.Context, activityID uuid.UUID) ([]domain.Voter, error) {
	byActivity, err := f.ListVotersByActivities(ctx, []uuid.UUID{activityID})
	if err != nil {
		return nil, err
	}
	if v, ok := byActivity[activityID]; ok {
		return v, nil
	}
	return []domain.Voter{}, nil
}

func (f fakeVotes) ListVotersByActivities(_ context.Context, ids []uuid.UUID) (map[uuid.UUID][]domain.Voter, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	out := map[uuid.UUID][]domain.Voter{}
	for _, v := range f.s.votes {
		if slices.Contains(ids, v.ActivityID) {
			out[v.ActivityID] = append(out[v.ActivityID], domain.Voter{
				UserID: v.UserID, Name: f.s.users[v.UserID].Name, VotedAt: v.CreatedAt,
			})
		}
	}
	return out, nil
}

func (f fakeVotes) CountByActivity(_ context.Context, activityID uuid.UUID) (int, error) {
	return f.s.voteRows(activityID), nil
}

// ---- UserRepo -----------------------------------------------------------

type fakeUsers struct{ s *fakeStore }

var _ repo.UserRepo = fakeUsers{}

func (f fakeUsers) GetByID(_ context.Context, id uuid.UUID) (domain.UserSummary, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if err := f.s.popFail("Users.GetByID"); err != nil {
		return domain.UserSummary{}, err
	}
	u, ok := f.s.users[id]
	if !ok {
		return domain.UserSummary{}, domain.ErrNotFound
	}
	return u, nil
}

func (f fakeUsers) GetByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]domain.UserSummary, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	out := map[uuid.UUID]domain.UserSummary{}
	for _, id := range ids {
		if u, ok := f.s.users[id]; ok {
			out[id] = u
		}
	}
	return out, nil
}
