// Package handler implements the HTTP handlers for the trip planner API.
// All handlers are methods on Server. They are split into domain-specific
// files (health.go, trip.go, activity.go, vote.go, export.go) but share the
// same Server struct so they can access its dependencies.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pkordes/tripplanner/backend/internal/domain"
)

// TripServicer defines the business operations the trip handlers depend on.
// Defining the interface here (in the consumer package) lets handler tests
// inject a mock without touching the database or service layer.
type TripServicer interface {
	CreateTrip(ctx context.Context, trip domain.Trip, creatorID uuid.UUID) (domain.TripDetail, error)
	JoinTrip(ctx context.Context, code string, userID uuid.UUID) (domain.TripDetail, error)
	PreviewTrip(ctx context.Context, code string) (domain.Trip, error)
	GetTrip(ctx context.Context, tripID, userID uuid.UUID) (domain.TripDetail, error)
	ListTrips(ctx context.Context, userID uuid.UUID, p domain.PaginationParams) ([]domain.TripDetail, int64, error)
	UpdateTrip(ctx context.Context, trip domain.Trip, userID uuid.UUID) (domain.TripDetail, error)
	DeleteTrip(ctx context.Context, tripID, userID uuid.UUID) error
	LeaveTrip(ctx context.Context, tripID, userID uuid.UUID) error
}

// ActivityServicer defines the business operations the activity handlers depend on.
type ActivityServicer interface {
	Create(ctx context.Context, a domain.Activity, userID uuid.UUID) (domain.ActivityDetail, error)
	Get(ctx context.Context, activityID, userID uuid.UUID) (domain.ActivityDetail, error)
	ListByTrip(ctx context.Context, tripID, userID uuid.UUID) ([]domain.ActivityDetail, error)
	Update(ctx context.Context, a domain.Activity, userID uuid.UUID) (domain.ActivityDetail, error)
	Delete(ctx context.Context, activityID, userID uuid.UUID) error
}

// VoteServicer defines the business operations the vote handlers depend on.
type VoteServicer interface {
	Toggle(ctx context.Context, activityID, userID uuid.UUID) (domain.VoteResult, error)
	Status(ctx context.Context, activityID, userID uuid.UUID) (bool, error)
}

// ExportServicer defines the operation the export handler depends on.
type ExportServicer interface {
	Itinerary(ctx context.Context, tripID, userID uuid.UUID) ([]domain.ItineraryRow, error)
}

// Server holds the services behind every API endpoint.
// Wire it in main.go: GetHealth on the public router, Routes inside the
// authenticated group.
type Server struct {
	trips      TripServicer
	activities ActivityServicer
	votes      VoteServicer
	export     ExportServicer
	log        *slog.Logger
}

// NewServer constructs the Server with all its dependencies.
// A nil logger discards output.
func NewServer(trips TripServicer, activities ActivityServicer, votes VoteServicer, export ExportServicer, log *slog.Logger) *Server {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Server{
		trips:      trips,
		activities: activities,
		votes:      votes,
		export:     export,
		log:        log,
	}
}

// NewHealthHandler returns a Server for health-check-only use.
func NewHealthHandler() *Server {
	return NewServer(nil, nil, nil, nil, nil)
}

// Routes registers every endpoint that requires a principal on r.
// The caller is responsible for installing the authentication middleware.
func (s *Server) Routes(r chi.Router) {
	r.Route("/trips", func(r chi.Router) {
		r.Post("/", s.CreateTrip)
		r.Get("/", s.ListTrips)
		r.Get("/code/{code}", s.PreviewTrip)
		r.Post("/join/{code}", s.JoinTrip)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.GetTrip)
			r.Put("/", s.UpdateTrip)
			r.Delete("/", s.DeleteTrip)
			r.Post("/leave", s.LeaveTrip)
			r.Get("/activities", s.ListActivities)
			r.Post("/activities", s.CreateActivity)
			r.Get("/export", s.ExportItinerary)
		})
	})

	r.Route("/activities/{id}", func(r chi.Router) {
		r.Get("/", s.GetActivity)
		r.Put("/", s.UpdateActivity)
		r.Delete("/", s.DeleteActivity)
		r.Post("/vote", s.ToggleVote)
		r.Get("/vote", s.GetVoteStatus)
	})
}

// Handler returns a router serving the health check plus Routes behind
// authenticate. main.go adds the cross-cutting middleware around it.
func (s *Server) Handler(authenticate func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", s.GetHealth)
	r.Group(func(r chi.Router) {
		r.Use(authenticate)
		s.Routes(r)
	})
	return r
}
