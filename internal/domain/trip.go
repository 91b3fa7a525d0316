// Package domain contains the core data types for the trip planner.
// It is imported by every other internal package (repo, service, handler)
// and depends only on small value-type libraries.
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TripCodeLength is the fixed width of a trip join code.
const TripCodeLength = 8

// Trip is a shared planning unit. It is the root aggregate: memberships and
// activities belong to a trip and are removed with it.
type Trip struct {
	ID          uuid.UUID
	Name        string
	Description string
	StartDate   time.Time
	EndDate     time.Time
	Budget      *decimal.Decimal // nil when no budget was set
	TripCode    string           // immutable after creation
	CreatorID   uuid.UUID
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TripDetail is a trip enriched with its creator, participants and, when
// loaded, its activities.
type TripDetail struct {
	Trip
	Creator      UserSummary
	Participants []Participant
	Activities   []ActivityDetail
}
