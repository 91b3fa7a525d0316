package handler

import (
	"time"

	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"
	"github.com/shopspring/decimal"

	"github.com/pkordes/tripplanner/backend/internal/domain"
)

// The wire types below mirror the schemas in spec/openapi.yaml.
// Dates use openapi_types.Date so they marshal as "2006-01-02".

// TripRequest is the body of POST /trips and PUT /trips/{id}.
type TripRequest struct {
	Name        string              `json:"name"`
	Description *string             `json:"description,omitempty"`
	StartDate   *openapi_types.Date `json:"start_date"`
	EndDate     *openapi_types.Date `json:"end_date"`
	Budget      *decimal.Decimal    `json:"budget,omitempty"`
}

// Trip is the public view of a trip.
type Trip struct {
	ID          uuid.UUID          `json:"id"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
	StartDate   openapi_types.Date `json:"start_date"`
	EndDate     openapi_types.Date `json:"end_date"`
	Budget      *decimal.Decimal   `json:"budget"`
	TripCode    string             `json:"trip_code"`
	CreatorID   uuid.UUID          `json:"creator_id"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// Participant is a trip member with their role.
type Participant struct {
	domain.UserSummary
	Role     domain.Role `json:"role"`
	JoinedAt time.Time   `json:"joined_at"`
}

// TripDetail is a trip with its creator and participants. Reads (GET /trips
// and GET /trips/{id}) also carry its activities.
type TripDetail struct {
	Trip
	Creator      domain.UserSummary `json:"creator"`
	Participants []Participant      `json:"participants"`
	Activities   *[]ActivityDetail  `json:"activities,omitempty"`
}

// Pagination describes one page of a list response.
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
}

// TripList is the body of GET /trips.
type TripList struct {
	Data       []TripDetail `json:"data"`
	Pagination Pagination   `json:"pagination"`
}

// ActivityRequest is the body of POST /trips/{id}/activities and
// PUT /activities/{id}.
type ActivityRequest struct {
	Name          string              `json:"name"`
	Description   *string             `json:"description,omitempty"`
	Date          *openapi_types.Date `json:"date"`
	Time          *string             `json:"time,omitempty"`
	Category      *string             `json:"category,omitempty"`
	EstimatedCost *decimal.Decimal    `json:"estimated_cost,omitempty"`
	Notes         *string             `json:"notes,omitempty"`
}

// Voter is one endorsement of an activity.
type Voter struct {
	UserID  uuid.UUID `json:"user_id"`
	Name    string    `json:"name"`
	VotedAt time.Time `json:"voted_at"`
}

// ActivityDetail is an activity with its creator and voters.
type ActivityDetail struct {
	ID            uuid.UUID          `json:"id"`
	TripID        uuid.UUID          `json:"trip_id"`
	Name          string             `json:"name"`
	Description   string             `json:"description"`
	Date          openapi_types.Date `json:"date"`
	Time          *string            `json:"time"`
	Category      domain.Category    `json:"category"`
	EstimatedCost *decimal.Decimal   `json:"estimated_cost"`
	Notes         string             `json:"notes"`
	Votes         int                `json:"votes"`
	Locked        bool               `json:"locked"`
	CreatorID     uuid.UUID          `json:"creator_id"`
	Creator       domain.UserSummary `json:"creator"`
	Voters        []Voter            `json:"voters"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

// VoteResult is the body of POST /activities/{id}/vote.
type VoteResult struct {
	Voted    bool           `json:"voted"`
	Activity ActivityDetail `json:"activity"`
}

// VoteStatus is the body of GET /activities/{id}/vote.
type VoteStatus struct {
	Voted bool `json:"voted"`
}

// ItineraryRow is one row of GET /trips/{id}/export in JSON form.
type ItineraryRow struct {
	TripCode      string             `json:"trip_code"`
	TripName      string             `json:"trip_name"`
	ActivityName  string             `json:"activity_name"`
	Date          openapi_types.Date `json:"date"`
	Time          *string            `json:"time,omitempty"`
	Category      domain.Category    `json:"category"`
	EstimatedCost *decimal.Decimal   `json:"estimated_cost,omitempty"`
	Votes         int                `json:"votes"`
	Locked        bool               `json:"locked"`
	ProposedBy    string             `json:"proposed_by"`
}

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status string `json:"status"`
}

// --- mapping helpers --------------------------------------------------------

// dateOrZero unwraps an optional date. A missing date becomes the zero time,
// which the service rejects as a validation error.
func dateOrZero(d *openapi_types.Date) time.Time {
	if d == nil {
		return time.Time{}
	}
	return d.Time
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func tripToResponse(t domain.Trip) Trip {
	return Trip{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		StartDate:   openapi_types.Date{Time: t.StartDate},
		EndDate:     openapi_types.Date{Time: t.EndDate},
		Budget:      t.Budget,
		TripCode:    t.TripCode,
		CreatorID:   t.CreatorID,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func tripDetailToResponse(d domain.TripDetail) TripDetail {
	resp := TripDetail{
		Trip:         tripToResponse(d.Trip),
		Creator:      d.Creator,
		Participants: make([]Participant, len(d.Participants)),
	}
	for i, p := range d.Participants {
		resp.Participants[i] = Participant{UserSummary: p.User, Role: p.Role, JoinedAt: p.JoinedAt}
	}
	if d.Activities != nil {
		acts := activitiesToResponse(d.Activities)
		resp.Activities = &acts
	}
	return resp
}

func activityToResponse(a domain.ActivityDetail) ActivityDetail {
	resp := ActivityDetail{
		ID:            a.ID,
		TripID:        a.TripID,
		Name:          a.Name,
		Description:   a.Description,
		Date:          openapi_types.Date{Time: a.Date},
		Time:          a.Time,
		Category:      a.Category,
		EstimatedCost: a.EstimatedCost,
		Notes:         a.Notes,
		Votes:         a.Votes,
		Locked:        a.Locked(),
		CreatorID:     a.CreatorID,
		Creator:       a.Creator,
		Voters:        make([]Voter, len(a.Voters)),
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
	for i, v := range a.Voters {
		resp.Voters[i] = Voter(v)
	}
	return resp
}

func activitiesToResponse(in []domain.ActivityDetail) []ActivityDetail {
	out := make([]ActivityDetail, len(in))
	for i, a := range in {
		out[i] = activityToResponse(a)
	}
	return out
}
