package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role is a user's role within a single trip.
type Role string

const (
	// RoleCreator is assigned once, when the trip is created.
	RoleCreator Role = "creator"
	// RoleCollaborator is assigned to everyone who joins by code.
	RoleCollaborator Role = "collaborator"
)

// Membership is one row of the trip_participants ledger.
// There is at most one membership per (TripID, UserID).
type Membership struct {
	ID       uuid.UUID
	TripID   uuid.UUID
	UserID   uuid.UUID
	Role     Role
	JoinedAt time.Time
}

// Participant is a membership joined with the member's user record.
type Participant struct {
	User     UserSummary
	Role     Role
	JoinedAt time.Time
}
