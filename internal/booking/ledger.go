package booking

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/careercompass/mentor-booking-backend/internal/models"
)

// FallbackLedger is the local, in-process record of bookings created while
// the durable store could not be reached. Record never fails; entries are
// tagged origin=fallback so a later reconciliation job can tell them apart
// from store-native bookings. Best-effort durable for the process lifetime
// only.
type FallbackLedger struct {
	mu      sync.Mutex
	entries []models.Booking
}

// NewFallbackLedger creates an empty fallback ledger
func NewFallbackLedger() *FallbackLedger {
	return &FallbackLedger{}
}

// Record stores a copy of the booking locally and returns the locally
// generated booking ID. The booking's ID and Origin are overwritten.
func (l *FallbackLedger) Record(b *models.Booking) string {
	l.mu.Lock()
	defer l.mu.Unlock()

	b.ID = uuid.New().String()
	b.Origin = models.BookingOriginFallback
	now := time.Now()
	b.CreatedAt = now
	b.UpdatedAt = now

	l.entries = append(l.entries, *b)
	return b.ID
}

// List returns a copy of all recorded entries, oldest first.
func (l *FallbackLedger) List() []models.Booking {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]models.Booking, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of recorded entries.
func (l *FallbackLedger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
