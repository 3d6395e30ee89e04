package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careercompass/mentor-booking-backend/internal/models"
)

func availabilityMentor(day string, slots []string) *models.MentorProfile {
	return &models.MentorProfile{
		ID:         "mentor-1",
		Name:       "Amara Silva",
		HourlyRate: 2500,
		Availability: models.WeeklyAvailability{
			day: slots,
		},
	}
}

func TestSlotsFor_ReturnsPublishedSlotsInOrder(t *testing.T) {
	date := time.Now().AddDate(0, 0, 7)
	slots := []string{"09:00", "10:30", "16:00"}
	mentor := availabilityMentor(date.Weekday().String(), slots)

	got := SlotsFor(mentor, date)

	assert.Equal(t, slots, got)
}

func TestSlotsFor_WeekdayWithoutEntry(t *testing.T) {
	date := time.Now().AddDate(0, 0, 7)
	// Availability published for a different weekday only
	other := date.AddDate(0, 0, 1).Weekday().String()
	mentor := availabilityMentor(other, []string{"09:00"})

	got := SlotsFor(mentor, date)

	assert.Empty(t, got)
	assert.NotNil(t, got)
}

func TestSlotsFor_PastDateYieldsEmpty(t *testing.T) {
	date := time.Now().AddDate(0, 0, -7)
	mentor := availabilityMentor(date.Weekday().String(), []string{"09:00"})

	assert.Empty(t, SlotsFor(mentor, date))
}

func TestSlotsFor_TodayIsBookable(t *testing.T) {
	date := time.Now()
	mentor := availabilityMentor(date.Weekday().String(), []string{"23:45"})

	assert.Equal(t, []string{"23:45"}, SlotsFor(mentor, date))
}

func TestSlotsFor_TodayParsedAsUTCMidnight(t *testing.T) {
	// Requests carry dates as "YYYY-MM-DD", which time.Parse pins to
	// midnight UTC. West of UTC that instant precedes local midnight;
	// the same calendar day must still be bookable.
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	orig := time.Local
	time.Local = loc
	t.Cleanup(func() { time.Local = orig })

	today := time.Now().In(loc).Format("2006-01-02")
	date, err := time.Parse("2006-01-02", today)
	require.NoError(t, err)

	mentor := availabilityMentor(date.Weekday().String(), []string{"09:00"})

	assert.Equal(t, []string{"09:00"}, SlotsFor(mentor, date))
	assert.True(t, HasSlot(mentor, date, "09:00"))
}

func TestSlotsFor_Idempotent(t *testing.T) {
	date := time.Now().AddDate(0, 0, 14)
	slots := []string{"08:00", "09:00", "10:00", "11:00"}
	mentor := availabilityMentor(date.Weekday().String(), slots)

	first := SlotsFor(mentor, date)
	second := SlotsFor(mentor, date)

	assert.Equal(t, first, second)
	assert.Equal(t, slots, second)
}

func TestSlotsFor_CopyDoesNotAliasSchedule(t *testing.T) {
	date := time.Now().AddDate(0, 0, 7)
	mentor := availabilityMentor(date.Weekday().String(), []string{"09:00", "10:00"})

	got := SlotsFor(mentor, date)
	got[0] = "mutated"

	assert.Equal(t, []string{"09:00", "10:00"}, SlotsFor(mentor, date))
}

func TestSlotsFor_NilMentor(t *testing.T) {
	assert.Empty(t, SlotsFor(nil, time.Now()))
}

func TestHasSlot(t *testing.T) {
	date := time.Now().AddDate(0, 0, 7)
	mentor := availabilityMentor(date.Weekday().String(), []string{"09:00", "10:00"})

	assert.True(t, HasSlot(mentor, date, "10:00"))
	assert.False(t, HasSlot(mentor, date, "11:00"))
	assert.False(t, HasSlot(mentor, date.AddDate(0, 0, 1), "09:00"))
}
