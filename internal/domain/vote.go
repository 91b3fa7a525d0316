package domain

import (
	"time"

	"github.com/google/uuid"
)

// Vote is a single user's endorsement of one activity.
// Existence is binary per (ActivityID, UserID).
type Vote struct {
	ID         uuid.UUID
	ActivityID uuid.UUID
	UserID     uuid.UUID
	CreatedAt  time.Time
}

// Voter is a vote joined with the voting user's name.
type Voter struct {
	UserID  uuid.UUID
	Name    string
	VotedAt time.Time
}

// VoteResult is the outcome of a vote toggle.
type VoteResult struct {
	Voted    bool
	Activity ActivityDetail
}
