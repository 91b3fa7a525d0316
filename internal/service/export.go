package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/pkordes/tripplanner/backend/internal/domain"
	"github.com/pkordes/tripplanner/backend/internal/repo"
)

// ExportService assembles a flat itinerary of one trip.
type ExportService struct {
	repos repo.Repos
}

// NewExportService constructs an ExportService backed by the provided repos.
func NewExportService(repos repo.Repos) *ExportService {
	return &ExportService{repos: repos}
}

// Itinerary returns one ItineraryRow per activity, in itinerary order.
// A trip with no activities yields an empty, non-nil slice.
func (s *ExportService) Itinerary(ctx context.Context, tripID, userID uuid.UUID) ([]domain.ItineraryRow, error) {
	if _, err := requireMember(ctx, s.repos, tripID, userID); err != nil {
		return nil, fmt.Errorf("service.ExportService.Itinerary: %w", err)
	}

	trip, err := s.repos.Trips.GetByID(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("service.ExportService.Itinerary: get trip: %w", err)
	}
	activities, err := s.repos.Activities.ListByTrip(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("service.ExportService.Itinerary: list activities: %w", err)
	}

	creatorIDs := make([]uuid.UUID, len(activities))
	for i, a := range activities {
		creatorIDs[i] = a.CreatorID
	}
	users, err := s.repos.Users.GetByIDs(ctx, creatorIDs)
	if err != nil {
		return nil, fmt.Errorf("service.ExportService.Itinerary: users: %w", err)
	}

	rows := make([]domain.ItineraryRow, 0, len(activities))
	for _, a := range activities {
		row := domain.ItineraryRow{
			TripCode:      trip.TripCode,
			TripName:      trip.Name,
			ActivityName:  a.Name,
			Date:          a.Date,
			Category:      a.Category,
			EstimatedCost: a.EstimatedCost,
			Votes:         a.Votes,
			Locked:        a.Locked(),
			ProposedBy:    users[a.CreatorID].Name,
		}
		if a.Time != nil {
			row.Time = *a.Time
		}
		rows = append(rows, row)
	}
	return rows, nil
}
