package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/pkordes/tripplanner/backend/internal/domain"
	"github.com/pkordes/tripplanner/backend/internal/repo"
)

// requireMember resolves userID's membership in tripID. A missing trip and
// a missing membership both surface as domain.ErrNotFound.
func requireMember(ctx context.Context, r repo.Repos, tripID, userID uuid.UUID) (domain.Membership, error) {
	m, err := r.Memberships.Get(ctx, tripID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Membership{}, fmt.Errorf("%w: trip not found", domain.ErrNotFound)
		}
		return domain.Membership{}, err
	}
	return m, nil
}

// memberActivity loads an activity and checks that userID belongs to its
// trip. Absent activity and non-membership are reported the same way.
func memberActivity(ctx context.Context, r repo.Repos, activityID, userID uuid.UUID) (domain.Activity, error) {
	a, err := r.Activities.GetByID(ctx, activityID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Activity{}, fmt.Errorf("%w: activity not found", domain.ErrNotFound)
		}
		return domain.Activity{}, err
	}
	if _, err := r.Memberships.Get(ctx, a.TripID, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Activity{}, fmt.Errorf("%w: activity not found", domain.ErrNotFound)
		}
		return domain.Activity{}, err
	}
	return a, nil
}

// enrichActivities attaches creators and voters to activities with one
// user lookup and one voter lookup.
func enrichActivities(ctx context.Context, r repo.Repos, activities []domain.Activity) ([]domain.ActivityDetail, error) {
	out := make([]domain.ActivityDetail, 0, len(activities))
	if len(activities) == 0 {
		return out, nil
	}

	ids := make([]uuid.UUID, len(activities))
	creatorIDs := make([]uuid.UUID, len(activities))
	for i, a := range activities {
		ids[i] = a.ID
		creatorIDs[i] = a.CreatorID
	}

	voters, err := r.Votes.ListVotersByActivities(ctx, ids)
	if err != nil {
		return nil, err
	}
	creators, err := r.Users.GetByIDs(ctx, creatorIDs)
	if err != nil {
		return nil, err
	}

	for _, a := range activities {
		v := voters[a.ID]
		if v == nil {
			v = []domain.Voter{}
		}
		out = append(out, domain.ActivityDetail{
			Activity: a,
			Creator:  userOrPlaceholder(creators, a.CreatorID),
			Voters:   v,
		})
	}
	return out, nil
}

func enrichActivity(ctx context.Context, r repo.Repos, a domain.Activity) (domain.ActivityDetail, error) {
	voters, err := r.Votes.ListVoters(ctx, a.ID)
	if err != nil {
		return domain.ActivityDetail{}, err
	}
	creator, err := userSummary(ctx, r, a.CreatorID)
	if err != nil {
		return domain.ActivityDetail{}, err
	}
	return domain.ActivityDetail{Activity: a, Creator: creator, Voters: voters}, nil
}

// enrichTrips attaches creators and participants. Activities are left nil;
// callers that need them use attachActivities or set them afterwards.
func enrichTrips(ctx context.Context, r repo.Repos, trips []domain.Trip) ([]domain.TripDetail, error) {
	out := make([]domain.TripDetail, 0, len(trips))
	if len(trips) == 0 {
		return out, nil
	}

	ids := make([]uuid.UUID, len(trips))
	creatorIDs := make([]uuid.UUID, len(trips))
	for i, t := range trips {
		ids[i] = t.ID
		creatorIDs[i] = t.CreatorID
	}

	participants, err := r.Memberships.ListParticipantsByTrips(ctx, ids)
	if err != nil {
		return nil, err
	}
	creators, err := r.Users.GetByIDs(ctx, creatorIDs)
	if err != nil {
		return nil, err
	}

	for _, t := range trips {
		p := participants[t.ID]
		if p == nil {
			p = []domain.Participant{}
		}
		out = append(out, domain.TripDetail{
			Trip:         t,
			Creator:      userOrPlaceholder(creators, t.CreatorID),
			Participants: p,
		})
	}
	return out, nil
}

func enrichTrip(ctx context.Context, r repo.Repos, t domain.Trip) (domain.TripDetail, error) {
	participants, err := r.Memberships.ListParticipants(ctx, t.ID)
	if err != nil {
		return domain.TripDetail{}, err
	}
	creator, err := userSummary(ctx, r, t.CreatorID)
	if err != nil {
		return domain.TripDetail{}, err
	}
	return domain.TripDetail{Trip: t, Creator: creator, Participants: participants}, nil
}

// attachActivities loads the activities of every trip in details with one
// activity query and one enrichment pass. Trips without activities get an
// empty slice.
func attachActivities(ctx context.Context, r repo.Repos, details []domain.TripDetail) error {
	if len(details) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(details))
	for i, d := range details {
		ids[i] = d.ID
	}

	byTrip, err := r.Activities.ListByTrips(ctx, ids)
	if err != nil {
		return err
	}
	var all []domain.Activity
	for _, id := range ids {
		all = append(all, byTrip[id]...)
	}
	enriched, err := enrichActivities(ctx, r, all)
	if err != nil {
		return err
	}

	grouped := make(map[uuid.UUID][]domain.ActivityDetail, len(ids))
	for _, a := range enriched {
		grouped[a.TripID] = append(grouped[a.TripID], a)
	}
	for i := range details {
		details[i].Activities = grouped[details[i].ID]
		if details[i].Activities == nil {
			details[i].Activities = []domain.ActivityDetail{}
		}
	}
	return nil
}

// userSummary returns the user with id, or the placeholder of
// userOrPlaceholder when the user no longer exists.
func userSummary(ctx context.Context, r repo.Repos, id uuid.UUID) (domain.UserSummary, error) {
	u, err := r.Users.GetByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.UserSummary{ID: id}, nil
	}
	return u, err
}

// userOrPlaceholder returns the user with id, or a summary carrying only the
// id when the identity service has already removed the user.
func userOrPlaceholder(users map[uuid.UUID]domain.UserSummary, id uuid.UUID) domain.UserSummary {
	if u, ok := users[id]; ok {
		return u
	}
	return domain.UserSummary{ID: id}
}
