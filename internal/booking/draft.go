package booking

import "time"

// Draft is the in-memory aggregate a single workflow run builds up as the
// user progresses. It is owned exclusively by its Workflow and discarded
// on cancellation or on any terminal state; nothing in a draft is durable.
type Draft struct {
	MentorID     string
	Date         time.Time // calendar date, zero until selected
	TimeOfDay    string    // "HH:MM", empty until selected
	Topic        string
	Notes        string
	ContactEmail string
	ContactPhone string
}

// ScheduledAt combines the selected date and time-of-day into the session
// start timestamp.
func (d *Draft) ScheduledAt() time.Time {
	t, err := time.Parse("15:04", d.TimeOfDay)
	if err != nil {
		return truncateToDay(d.Date)
	}
	return time.Date(
		d.Date.Year(), d.Date.Month(), d.Date.Day(),
		t.Hour(), t.Minute(), 0, 0, d.Date.Location(),
	)
}
