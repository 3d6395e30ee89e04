package models

import "github.com/google/uuid"

// UserIdentity represents the authenticated requester of a booking.
// Identity is issued elsewhere; this service only consumes it. A nil
// *UserIdentity means the caller is a guest and the booking takes the
// degraded/guest path.
type UserIdentity struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Phone string    `json:"phone,omitempty"`
}
