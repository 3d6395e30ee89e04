package booking

import (
	"time"

	"github.com/careercompass/mentor-booking-backend/internal/models"
)

// SlotsFor returns the bookable time-of-day slots for a mentor on the
// given calendar date, in the order the mentor published them. Past dates
// and weekdays without an availability entry yield an empty slice, never
// an error. Pure and deterministic: identical inputs always produce an
// identical sequence.
func SlotsFor(mentor *models.MentorProfile, date time.Time) []string {
	if mentor == nil || date.IsZero() {
		return []string{}
	}

	if isPastDay(date) {
		return []string{}
	}

	slots, ok := mentor.Availability[date.Weekday().String()]
	if !ok {
		return []string{}
	}

	// Copy so callers cannot mutate the mentor's published schedule
	out := make([]string, len(slots))
	copy(out, slots)
	return out
}

// HasSlot reports whether the given time-of-day is bookable for the mentor
// on the given date.
func HasSlot(mentor *models.MentorProfile, date time.Time, timeOfDay string) bool {
	for _, slot := range SlotsFor(mentor, date) {
		if slot == timeOfDay {
			return true
		}
	}
	return false
}

// isPastDay compares calendar days, each value in its own location. A
// date parsed at UTC midnight and the server's local clock on the same
// calendar day compare equal, whatever zone the server runs in.
func isPastDay(date time.Time) bool {
	y, m, d := date.Date()
	ny, nm, nd := time.Now().Date()
	if y != ny {
		return y < ny
	}
	if m != nm {
		return m < nm
	}
	return d < nd
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
