// Package service contains the business logic for the trip planner API.
// Services validate inputs, enforce membership and role rules, and
// orchestrate repo calls. Multi-row writes run inside repo.TxManager.
// No SQL lives here; services depend on repo interfaces, not implementations.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/pkordes/tripplanner/backend/internal/domain"
	"github.com/pkordes/tripplanner/backend/internal/repo"
)

// TripService implements business logic for Trip operations.
type TripService struct {
	repos   repo.Repos
	tx      repo.TxManager
	newCode CodeGenerator
	metrics *Metrics
	log     *slog.Logger
}

// NewTripService constructs a TripService. repos must be bound to the pool
// (not a transaction). A nil gen falls back to RandomCode; a nil metrics or
// logger disables that output.
func NewTripService(repos repo.Repos, tx repo.TxManager, gen CodeGenerator, metrics *Metrics, log *slog.Logger) *TripService {
	if gen == nil {
		gen = RandomCode
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &TripService{repos: repos, tx: tx, newCode: gen, metrics: metrics, log: log}
}

// CreateTrip validates trip, assigns it a fresh join code, and stores it
// together with the creator's membership in one transaction.
func (s *TripService) CreateTrip(ctx context.Context, trip domain.Trip, creatorID uuid.UUID) (domain.TripDetail, error) {
	trip, err := validateTrip(trip)
	if err != nil {
		return domain.TripDetail{}, fmt.Errorf("service.TripService.CreateTrip: %w", err)
	}
	trip.CreatorID = creatorID

	for attempt := 1; attempt <= maxCodeAttempts; attempt++ {
		code, err := s.newCode()
		if err != nil {
			return domain.TripDetail{}, fmt.Errorf("service.TripService.CreateTrip: %w", err)
		}

		taken, err := s.repos.Trips.CodeExists(ctx, code)
		if err != nil {
			return domain.TripDetail{}, fmt.Errorf("service.TripService.CreateTrip: %w", err)
		}
		if taken {
			s.collision(ctx, code, attempt)
			continue
		}

		trip.TripCode = code
		var created domain.Trip
		err = s.tx.InTx(ctx, func(r repo.Repos) error {
			var err error
			if created, err = r.Trips.Create(ctx, trip); err != nil {
				return err
			}
			_, err = r.Memberships.Create(ctx, created.ID, creatorID, domain.RoleCreator)
			return err
		})
		if errors.Is(err, domain.ErrConflict) {
			// Another request took the code between the check and the insert.
			s.collision(ctx, code, attempt)
			continue
		}
		if err != nil {
			return domain.TripDetail{}, fmt.Errorf("service.TripService.CreateTrip: %w", err)
		}

		s.metrics.tripCreated()
		s.log.InfoContext(ctx, "trip created",
			slog.String("trip_id", created.ID.String()),
			slog.String("creator_id", creatorID.String()),
		)

		detail, err := enrichTrip(ctx, s.repos, created)
		if err != nil {
			return domain.TripDetail{}, fmt.Errorf("service.TripService.CreateTrip: %w", err)
		}
		detail.Activities = []domain.ActivityDetail{}
		return detail, nil
	}

	return domain.TripDetail{}, fmt.Errorf("service.TripService.CreateTrip: %w after %d attempts",
		domain.ErrCodeSpaceExhausted, maxCodeAttempts)
}

func (s *TripService) collision(ctx context.Context, code string, attempt int) {
	s.metrics.codeCollision()
	s.log.DebugContext(ctx, "trip code collision",
		slog.String("code", code),
		slog.Int("attempt", attempt),
	)
}

// JoinTrip adds userID to the trip identified by code as a collaborator.
func (s *TripService) JoinTrip(ctx context.Context, code string, userID uuid.UUID) (domain.TripDetail, error) {
	trip, err := s.repos.Trips.GetByCode(ctx, NormalizeCode(code))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.TripDetail{}, fmt.Errorf("service.TripService.JoinTrip: %w: trip not found", domain.ErrNotFound)
		}
		return domain.TripDetail{}, fmt.Errorf("service.TripService.JoinTrip: %w", err)
	}

	_, err = s.repos.Memberships.Get(ctx, trip.ID, userID)
	switch {
	case err == nil:
		return domain.TripDetail{}, fmt.Errorf("service.TripService.JoinTrip: %w: you are already a participant of this trip", domain.ErrConflict)
	case !errors.Is(err, domain.ErrNotFound):
		return domain.TripDetail{}, fmt.Errorf("service.TripService.JoinTrip: %w", err)
	}

	err = s.tx.InTx(ctx, func(r repo.Repos) error {
		_, err := r.Memberships.Create(ctx, trip.ID, userID, domain.RoleCollaborator)
		return err
	})
	if errors.Is(err, domain.ErrConflict) {
		return domain.TripDetail{}, fmt.Errorf("service.TripService.JoinTrip: %w: you are already a participant of this trip", domain.ErrConflict)
	}
	if err != nil {
		return domain.TripDetail{}, fmt.Errorf("service.TripService.JoinTrip: %w", err)
	}

	s.metrics.tripJoined()
	s.log.InfoContext(ctx, "trip joined",
		slog.String("trip_id", trip.ID.String()),
		slog.String("user_id", userID.String()),
	)

	detail, err := enrichTrip(ctx, s.repos, trip)
	if err != nil {
		return domain.TripDetail{}, fmt.Errorf("service.TripService.JoinTrip: %w", err)
	}
	return detail, nil
}

// PreviewTrip looks a trip up by code so a prospective member can confirm
// it before joining. Only the trip's own fields are returned.
func (s *TripService) PreviewTrip(ctx context.Context, code string) (domain.Trip, error) {
	trip, err := s.repos.Trips.GetByCode(ctx, NormalizeCode(code))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Trip{}, fmt.Errorf("service.TripService.PreviewTrip: %w: trip not found", domain.ErrNotFound)
		}
		return domain.Trip{}, fmt.Errorf("service.TripService.PreviewTrip: %w", err)
	}
	return trip, nil
}

// GetTrip returns the trip with creator, participants, and activities.
func (s *TripService) GetTrip(ctx context.Context, tripID, userID uuid.UUID) (domain.TripDetail, error) {
	if _, err := requireMember(ctx, s.repos, tripID, userID); err != nil {
		return domain.TripDetail{}, fmt.Errorf("service.TripService.GetTrip: %w", err)
	}

	trip, err := s.repos.Trips.GetByID(ctx, tripID)
	if err != nil {
		return domain.TripDetail{}, fmt.Errorf("service.TripService.GetTrip: %w", err)
	}
	detail, err := enrichTrip(ctx, s.repos, trip)
	if err != nil {
		return domain.TripDetail{}, fmt.Errorf("service.TripService.GetTrip: %w", err)
	}

	activities, err := s.repos.Activities.ListByTrip(ctx, tripID)
	if err != nil {
		return domain.TripDetail{}, fmt.Errorf("service.TripService.GetTrip: %w", err)
	}
	if detail.Activities, err = enrichActivities(ctx, s.repos, activities); err != nil {
		return domain.TripDetail{}, fmt.Errorf("service.TripService.GetTrip: %w", err)
	}
	return detail, nil
}

// ListTrips returns one page of the trips userID belongs to, each with its
// activities and their voters, and the total count across all pages.
func (s *TripService) ListTrips(ctx context.Context, userID uuid.UUID, p domain.PaginationParams) ([]domain.TripDetail, int64, error) {
	trips, total, err := s.repos.Trips.ListByMember(ctx, userID, p)
	if err != nil {
		return nil, 0, fmt.Errorf("service.TripService.ListTrips: %w", err)
	}
	details, err := enrichTrips(ctx, s.repos, trips)
	if err != nil {
		return nil, 0, fmt.Errorf("service.TripService.ListTrips: %w", err)
	}
	if err := attachActivities(ctx, s.repos, details); err != nil {
		return nil, 0, fmt.Errorf("service.TripService.ListTrips: %w", err)
	}
	return details, total, nil
}

// UpdateTrip overwrites the editable fields of a trip. Only the creator may
// do this; the join code is never changed.
func (s *TripService) UpdateTrip(ctx context.Context, trip domain.Trip, userID uuid.UUID) (domain.TripDetail, error) {
	existing, err := s.creatorTrip(ctx, trip.ID, userID, "update")
	if err != nil {
		return domain.TripDetail{}, fmt.Errorf("service.TripService.UpdateTrip: %w", err)
	}

	trip, err = validateTrip(trip)
	if err != nil {
		return domain.TripDetail{}, fmt.Errorf("service.TripService.UpdateTrip: %w", err)
	}
	trip.TripCode = existing.TripCode
	trip.CreatorID = existing.CreatorID

	updated, err := s.repos.Trips.Update(ctx, trip)
	if err != nil {
		return domain.TripDetail{}, fmt.Errorf("service.TripService.UpdateTrip: %w", err)
	}
	detail, err := enrichTrip(ctx, s.repos, updated)
	if err != nil {
		return domain.TripDetail{}, fmt.Errorf("service.TripService.UpdateTrip: %w", err)
	}
	return detail, nil
}

// DeleteTrip removes a trip and, through the cascade, its memberships,
// activities, and votes. Only the creator may do this.
func (s *TripService) DeleteTrip(ctx context.Context, tripID, userID uuid.UUID) error {
	if _, err := s.creatorTrip(ctx, tripID, userID, "delete"); err != nil {
		return fmt.Errorf("service.TripService.DeleteTrip: %w", err)
	}

	err := s.tx.InTx(ctx, func(r repo.Repos) error {
		return r.Trips.Delete(ctx, tripID)
	})
	if err != nil {
		return fmt.Errorf("service.TripService.DeleteTrip: %w", err)
	}

	s.log.InfoContext(ctx, "trip deleted", slog.String("trip_id", tripID.String()))
	return nil
}

// LeaveTrip removes userID's own membership. Creators cannot leave.
func (s *TripService) LeaveTrip(ctx context.Context, tripID, userID uuid.UUID) error {
	m, err := requireMember(ctx, s.repos, tripID, userID)
	if err != nil {
		return fmt.Errorf("service.TripService.LeaveTrip: %w", err)
	}
	if m.Role == domain.RoleCreator {
		return fmt.Errorf("service.TripService.LeaveTrip: %w: trip creators cannot leave their own trip; delete the trip instead", domain.ErrValidation)
	}

	if err := s.repos.Memberships.Delete(ctx, tripID, userID); err != nil {
		return fmt.Errorf("service.TripService.LeaveTrip: %w", err)
	}
	return nil
}

// creatorTrip runs the membership gate and then the creator-only gate.
func (s *TripService) creatorTrip(ctx context.Context, tripID, userID uuid.UUID, action string) (domain.Trip, error) {
	if _, err := requireMember(ctx, s.repos, tripID, userID); err != nil {
		return domain.Trip{}, err
	}
	trip, err := s.repos.Trips.GetByID(ctx, tripID)
	if err != nil {
		return domain.Trip{}, err
	}
	if trip.CreatorID != userID {
		return domain.Trip{}, fmt.Errorf("%w: only the trip creator can %s this trip", domain.ErrForbidden, action)
	}
	return trip, nil
}

// validateTrip checks the business rules shared by create and update and
// returns trip with its text fields trimmed.
func validateTrip(trip domain.Trip) (domain.Trip, error) {
	trip.Name = strings.TrimSpace(trip.Name)
	trip.Description = strings.TrimSpace(trip.Description)

	if trip.Name == "" {
		return trip, fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if trip.StartDate.IsZero() {
		return trip, fmt.Errorf("%w: start_date is required", domain.ErrValidation)
	}
	if trip.EndDate.IsZero() {
		return trip, fmt.Errorf("%w: end_date is required", domain.ErrValidation)
	}
	if trip.EndDate.Before(trip.StartDate) {
		return trip, fmt.Errorf("%w: end_date must not be before start_date", domain.ErrValidation)
	}
	if err := validateMoney("budget", trip.Budget); err != nil {
		return trip, err
	}
	return trip, nil
}
