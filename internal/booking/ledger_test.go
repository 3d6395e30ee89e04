package booking

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careercompass/mentor-booking-backend/internal/models"
)

func TestFallbackLedger_RecordAssignsIdentity(t *testing.T) {
	ledger := NewFallbackLedger()

	b := &models.Booking{
		MentorID:    "mentor-1",
		ScheduledAt: time.Now().AddDate(0, 0, 3),
		Topic:       "Interview prep",
		Status:      models.BookingStatusConfirmed,
	}

	id := ledger.Record(b)

	require.NotEmpty(t, id)
	assert.Equal(t, id, b.ID)
	assert.Equal(t, models.BookingOriginFallback, b.Origin)
	assert.False(t, b.CreatedAt.IsZero())

	entries := ledger.List()
	require.Len(t, entries, 1)
	assert.Equal(t, id, entries[0].ID)
}

func TestFallbackLedger_ListReturnsCopy(t *testing.T) {
	ledger := NewFallbackLedger()
	ledger.Record(&models.Booking{MentorID: "mentor-1", Topic: "CV review"})

	entries := ledger.List()
	entries[0].Topic = "tampered"

	assert.Equal(t, "CV review", ledger.List()[0].Topic)
}

func TestFallbackLedger_EntriesAreIsolated(t *testing.T) {
	ledger := NewFallbackLedger()

	b := &models.Booking{MentorID: "mentor-1", Topic: "Salary negotiation"}
	ledger.Record(b)

	// Mutating the caller's record after the fact must not reach the ledger
	b.Topic = "changed"

	assert.Equal(t, "Salary negotiation", ledger.List()[0].Topic)
}

func TestFallbackLedger_ConcurrentRecords(t *testing.T) {
	ledger := NewFallbackLedger()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ledger.Record(&models.Booking{MentorID: "mentor-1"})
		}()
	}
	wg.Wait()

	assert.Equal(t, 20, ledger.Len())

	seen := make(map[string]bool)
	for _, e := range ledger.List() {
		assert.False(t, seen[e.ID], "ledger IDs must be unique")
		seen[e.ID] = true
	}
}
