package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// WeeklyAvailability maps a weekday name ("Monday") to the ordered list of
// bookable time-of-day slots ("09:00", "14:30") the mentor publishes for
// that weekday. Stored as JSONB.
type WeeklyAvailability map[string][]string

// Value implements the driver.Valuer interface
func (a WeeklyAvailability) Value() (driver.Value, error) {
	if a == nil {
		return nil, nil
	}
	return json.Marshal(a)
}

// Scan implements the sql.Scanner interface
func (a *WeeklyAvailability) Scan(src interface{}) error {
	if src == nil {
		*a = nil
		return nil
	}
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, a)
	case string:
		return json.Unmarshal([]byte(v), a)
	default:
		return fmt.Errorf("cannot scan %T into WeeklyAvailability", src)
	}
}

// MentorProfile represents a mentor listed in the directory. Read-only in
// this service; the mentor catalog is maintained elsewhere.
type MentorProfile struct {
	ID           string             `json:"id" db:"id"`
	Name         string             `json:"name" db:"name"`
	Title        string             `json:"title" db:"title"`
	HourlyRate   float64            `json:"hourly_rate" db:"hourly_rate"`
	Availability WeeklyAvailability `json:"availability" db:"availability"`
	CreatedAt    time.Time          `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at" db:"updated_at"`
}

// IsFree reports whether the mentor is on the free near-peer tier.
// A zero rate always takes the free booking path.
func (m *MentorProfile) IsFree() bool {
	return m.HourlyRate == 0
}
