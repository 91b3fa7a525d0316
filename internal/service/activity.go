package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/tripplanner/backend/internal/domain"
	"github.com/pkordes/tripplanner/backend/internal/repo"
)

// ActivityService implements business logic for activities. Every operation
// is gated on membership in the owning trip; any member may edit or delete
// any activity.
type ActivityService struct {
	repos repo.Repos
	tx    repo.TxManager
}

// NewActivityService constructs an ActivityService.
func NewActivityService(repos repo.Repos, tx repo.TxManager) *ActivityService {
	return &ActivityService{repos: repos, tx: tx}
}

// Create validates a and stores it on a.TripID with userID as creator.
func (s *ActivityService) Create(ctx context.Context, a domain.Activity, userID uuid.UUID) (domain.ActivityDetail, error) {
	if _, err := requireMember(ctx, s.repos, a.TripID, userID); err != nil {
		return domain.ActivityDetail{}, fmt.Errorf("service.ActivityService.Create: %w", err)
	}

	a, err := validateActivity(a)
	if err != nil {
		return domain.ActivityDetail{}, fmt.Errorf("service.ActivityService.Create: %w", err)
	}
	a.CreatorID = userID

	created, err := s.repos.Activities.Create(ctx, a)
	if err != nil {
		return domain.ActivityDetail{}, fmt.Errorf("service.ActivityService.Create: %w", err)
	}
	detail, err := enrichActivity(ctx, s.repos, created)
	if err != nil {
		return domain.ActivityDetail{}, fmt.Errorf("service.ActivityService.Create: %w", err)
	}
	return detail, nil
}

// Get returns one activity with its creator and voters.
func (s *ActivityService) Get(ctx context.Context, activityID, userID uuid.UUID) (domain.ActivityDetail, error) {
	a, err := memberActivity(ctx, s.repos, activityID, userID)
	if err != nil {
		return domain.ActivityDetail{}, fmt.Errorf("service.ActivityService.Get: %w", err)
	}
	detail, err := enrichActivity(ctx, s.repos, a)
	if err != nil {
		return domain.ActivityDetail{}, fmt.Errorf("service.ActivityService.Get: %w", err)
	}
	return detail, nil
}

// ListByTrip returns the trip's activities in itinerary order.
func (s *ActivityService) ListByTrip(ctx context.Context, tripID, userID uuid.UUID) ([]domain.ActivityDetail, error) {
	if _, err := requireMember(ctx, s.repos, tripID, userID); err != nil {
		return nil, fmt.Errorf("service.ActivityService.ListByTrip: %w", err)
	}
	activities, err := s.repos.Activities.ListByTrip(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("service.ActivityService.ListByTrip: %w", err)
	}
	details, err := enrichActivities(ctx, s.repos, activities)
	if err != nil {
		return nil, fmt.Errorf("service.ActivityService.ListByTrip: %w", err)
	}
	return details, nil
}

// Update overwrites the editable fields of the activity identified by a.ID.
func (s *ActivityService) Update(ctx context.Context, a domain.Activity, userID uuid.UUID) (domain.ActivityDetail, error) {
	existing, err := memberActivity(ctx, s.repos, a.ID, userID)
	if err != nil {
		return domain.ActivityDetail{}, fmt.Errorf("service.ActivityService.Update: %w", err)
	}

	a, err = validateActivity(a)
	if err != nil {
		return domain.ActivityDetail{}, fmt.Errorf("service.ActivityService.Update: %w", err)
	}
	a.TripID = existing.TripID
	a.CreatorID = existing.CreatorID

	updated, err := s.repos.Activities.Update(ctx, a)
	if err != nil {
		return domain.ActivityDetail{}, fmt.Errorf("service.ActivityService.Update: %w", err)
	}
	detail, err := enrichActivity(ctx, s.repos, updated)
	if err != nil {
		return domain.ActivityDetail{}, fmt.Errorf("service.ActivityService.Update: %w", err)
	}
	return detail, nil
}

// Delete removes the activity; its votes go with it.
func (s *ActivityService) Delete(ctx context.Context, activityID, userID uuid.UUID) error {
	if _, err := memberActivity(ctx, s.repos, activityID, userID); err != nil {
		return fmt.Errorf("service.ActivityService.Delete: %w", err)
	}
	err := s.tx.InTx(ctx, func(r repo.Repos) error {
		return r.Activities.Delete(ctx, activityID)
	})
	if err != nil {
		return fmt.Errorf("service.ActivityService.Delete: %w", err)
	}
	return nil
}

// timeLayouts are the accepted forms of Activity.Time.
var timeLayouts = []string{"15:04:05", "15:04"}

// validateActivity trims text fields, defaults the category, and
// normalises the time to HH:MM:SS.
func validateActivity(a domain.Activity) (domain.Activity, error) {
	a.Name = strings.TrimSpace(a.Name)
	a.Description = strings.TrimSpace(a.Description)
	a.Notes = strings.TrimSpace(a.Notes)

	if a.Name == "" {
		return a, fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if a.Date.IsZero() {
		return a, fmt.Errorf("%w: date is required", domain.ErrValidation)
	}
	if a.Category == "" {
		a.Category = domain.CategoryOther
	}
	if !a.Category.Valid() {
		return a, fmt.Errorf("%w: category must be one of Adventure, Food, Sightseeing, Other", domain.ErrValidation)
	}
	if err := validateMoney("estimated_cost", a.EstimatedCost); err != nil {
		return a, err
	}
	if a.Time != nil {
		raw := strings.TrimSpace(*a.Time)
		if raw == "" {
			a.Time = nil
			return a, nil
		}
		normalized, ok := parseClock(raw)
		if !ok {
			return a, fmt.Errorf("%w: time must be HH:MM or HH:MM:SS", domain.ErrValidation)
		}
		a.Time = &normalized
	}
	return a, nil
}

func parseClock(s string) (string, bool) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("15:04:05"), true
		}
	}
	return "", false
}
