package domain

import "github.com/google/uuid"

// UserSummary is the public view of a user owned by the external identity
// service. The trip planner only ever reads users.
type UserSummary struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email,omitempty"`
}
