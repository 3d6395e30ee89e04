package models

import (
	"time"
)

// BookingStatus represents the lifecycle status of a session booking
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// PaymentStatus represents the payment state of a session booking
type PaymentStatus string

const (
	PaymentStatusNotRequired PaymentStatus = "not_required"
	PaymentStatusPending     PaymentStatus = "pending"
	PaymentStatusPaid        PaymentStatus = "paid"
	PaymentStatusFailed      PaymentStatus = "failed"
)

// BookingOrigin records which store a booking was written to
type BookingOrigin string

const (
	// BookingOriginStore marks bookings persisted in the durable store
	BookingOriginStore BookingOrigin = "store"
	// BookingOriginFallback marks bookings recorded locally while the
	// durable store was unavailable; picked up by manual reconciliation
	BookingOriginFallback BookingOrigin = "fallback"
)

// DefaultSessionMinutes is the fixed length of a mentor session
const DefaultSessionMinutes = 60

// Booking represents a mentor session reservation, durable or fallback-local
type Booking struct {
	ID              string        `json:"id" db:"id"`
	MentorID        string        `json:"mentor_id" db:"mentor_id"`
	RequesterID     *string       `json:"requester_id,omitempty" db:"requester_id"`
	ScheduledAt     time.Time     `json:"scheduled_at" db:"scheduled_at"`
	DurationMinutes int           `json:"duration_minutes" db:"duration_minutes"`
	Topic           string        `json:"topic" db:"topic"`
	Notes           *string       `json:"notes,omitempty" db:"notes"`
	Status          BookingStatus `json:"status" db:"status"`
	PaymentStatus   PaymentStatus `json:"payment_status" db:"payment_status"`
	Amount          float64       `json:"amount" db:"amount"`
	Currency        string        `json:"currency" db:"currency"`
	ContactEmail    *string       `json:"contact_email,omitempty" db:"contact_email"`
	ContactPhone    *string       `json:"contact_phone,omitempty" db:"contact_phone"`
	Origin          BookingOrigin `json:"origin" db:"origin"`
	CreatedAt       time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at" db:"updated_at"`
}

// IsTerminal reports whether the booking can no longer change state.
// Confirmed and cancelled bookings never transition backward.
func (b *Booking) IsTerminal() bool {
	return b.Status == BookingStatusConfirmed || b.Status == BookingStatusCancelled
}
