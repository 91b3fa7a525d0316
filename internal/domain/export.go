package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ItineraryRow is a single row in a trip itinerary export.
// It is a flat, denormalized view: one row per activity, with trip fields
// repeated on every row.
type ItineraryRow struct {
	// Trip fields, repeated for every activity.
	TripCode string
	TripName string

	// Activity fields.
	ActivityName  string
	Date          time.Time
	Time          string // empty when the activity has no set time
	Category      Category
	EstimatedCost *decimal.Decimal
	Votes         int
	Locked        bool
	ProposedBy    string
}
