package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LockThreshold is the number of votes at which an activity is locked in.
// It does not depend on how many participants the trip has.
const LockThreshold = 2

// Category classifies an activity.
type Category string

const (
	CategoryAdventure   Category = "Adventure"
	CategoryFood        Category = "Food"
	CategorySightseeing Category = "Sightseeing"
	CategoryOther       Category = "Other"
)

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryAdventure, CategoryFood, CategorySightseeing, CategoryOther:
		return true
	}
	return false
}

// Activity is a proposed trip event subject to group voting.
// Votes is a denormalized count of the vote rows referencing the activity;
// it is only ever changed in the same transaction as the vote row.
type Activity struct {
	ID            uuid.UUID
	TripID        uuid.UUID
	Name          string
	Description   string
	Date          time.Time
	Time          *string // "15:04:05"; nil when the activity has no set time
	Category      Category
	EstimatedCost *decimal.Decimal
	Notes         string
	CreatorID     uuid.UUID
	Votes         int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Locked reports whether the activity has reached the vote quorum.
func (a Activity) Locked() bool {
	return a.Votes >= LockThreshold
}

// ActivityDetail is an activity enriched with its creator and voters.
type ActivityDetail struct {
	Activity
	Creator UserSummary
	Voters  []Voter
}
