package database

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/careercompass/mentor-booking-backend/internal/booking"
	"github.com/careercompass/mentor-booking-backend/internal/models"
)

const defaultWriteTimeout = 10 * time.Second

// BookingRepository is the persistence gateway for the bookings table. Its
// write operations return *booking.StoreError exclusively, classified into
// the closed set the workflow controller routes on, and never panic past
// the caller. Writes run under a short deadline so a hung store degrades
// like an unreachable one instead of stalling the whole run.
type BookingRepository struct {
	db           DB
	writeTimeout time.Duration
}

// NewBookingRepository creates a new BookingRepository. writeTimeout bounds
// each durable write; non-positive values fall back to a 10s default.
func NewBookingRepository(db DB, writeTimeout time.Duration) *BookingRepository {
	if writeTimeout <= 0 {
		writeTimeout = defaultWriteTimeout
	}
	return &BookingRepository{db: db, writeTimeout: writeTimeout}
}

func (r *BookingRepository) writeContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), r.writeTimeout)
}

// CreatePending inserts a booking in its pending state and fills in the
// server-issued identifier and timestamps.
func (r *BookingRepository) CreatePending(b *models.Booking) error {
	query := `
		INSERT INTO bookings (
			id, mentor_id, requester_id, scheduled_at, duration_minutes,
			topic, notes, status, payment_status, amount, currency,
			contact_email, contact_phone
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13
		)
		RETURNING created_at, updated_at
	`

	if b.ID == "" {
		b.ID = uuid.New().String()
	}

	ctx, cancel := r.writeContext()
	defer cancel()

	err := r.db.QueryRowContext(
		ctx, query,
		b.ID, b.MentorID, b.RequesterID, b.ScheduledAt, b.DurationMinutes,
		b.Topic, b.Notes, models.BookingStatusPending, b.PaymentStatus,
		b.Amount, b.Currency, b.ContactEmail, b.ContactPhone,
	).Scan(&b.CreatedAt, &b.UpdatedAt)

	if err != nil {
		return classifyStoreError("create_pending", err)
	}

	return nil
}

// MarkConfirmed confirms a booking without touching its payment status.
// Used by the free-session path.
func (r *BookingRepository) MarkConfirmed(id string) error {
	query := `
		UPDATE bookings
		SET status = 'confirmed', updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
	`
	return r.execUpdate("mark_confirmed", query, id)
}

// MarkPaid confirms a booking and marks its payment settled
func (r *BookingRepository) MarkPaid(id string) error {
	query := `
		UPDATE bookings
		SET status = 'confirmed', payment_status = 'paid', updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
	`
	return r.execUpdate("mark_paid", query, id)
}

// MarkFailed leaves a booking pending with a failed payment, awaiting
// manual follow-up
func (r *BookingRepository) MarkFailed(id string) error {
	query := `
		UPDATE bookings
		SET payment_status = 'failed', updated_at = NOW()
		WHERE id = $1 AND status = 'pending'
	`
	return r.execUpdate("mark_failed", query, id)
}

func (r *BookingRepository) execUpdate(op, query string, id string) error {
	ctx, cancel := r.writeContext()
	defer cancel()

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return classifyStoreError(op, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return classifyStoreError(op, err)
	}
	if rows == 0 {
		return &booking.StoreError{
			Failure: booking.StoreRejected,
			Op:      op,
			Err:     errors.New("booking not found or not pending"),
		}
	}

	return nil
}

// GetByID retrieves a booking by ID. Returns nil, nil when absent.
func (r *BookingRepository) GetByID(id string) (*models.Booking, error) {
	query := `
		SELECT id, mentor_id, requester_id, scheduled_at, duration_minutes,
			   topic, notes, status, payment_status, amount, currency,
			   contact_email, contact_phone, created_at, updated_at
		FROM bookings
		WHERE id = $1
	`

	b, err := r.scanBooking(r.db.QueryRow(query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return b, nil
}

// GetByRequesterID retrieves all bookings for a requester, newest first.
// Backs the dashboard listing; not part of the workflow itself.
func (r *BookingRepository) GetByRequesterID(requesterID string) ([]models.Booking, error) {
	query := `
		SELECT id, mentor_id, requester_id, scheduled_at, duration_minutes,
			   topic, notes, status, payment_status, amount, currency,
			   contact_email, contact_phone, created_at, updated_at
		FROM bookings
		WHERE requester_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(query, requesterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := []models.Booking{}
	for rows.Next() {
		b, err := r.scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}

	return bookings, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func (r *BookingRepository) scanBooking(row scanner) (*models.Booking, error) {
	b := &models.Booking{Origin: models.BookingOriginStore}
	var requesterID sql.NullString
	var notes sql.NullString
	var contactEmail sql.NullString
	var contactPhone sql.NullString

	err := row.Scan(
		&b.ID, &b.MentorID, &requesterID, &b.ScheduledAt, &b.DurationMinutes,
		&b.Topic, &notes, &b.Status, &b.PaymentStatus, &b.Amount, &b.Currency,
		&contactEmail, &contactPhone, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if requesterID.Valid {
		b.RequesterID = &requesterID.String
	}
	if notes.Valid {
		b.Notes = &notes.String
	}
	if contactEmail.Valid {
		b.ContactEmail = &contactEmail.String
	}
	if contactPhone.Valid {
		b.ContactPhone = &contactPhone.String
	}

	return b, nil
}

// classifyStoreError maps driver-level failures onto the closed taxonomy.
// 42P01 (undefined_table) means the schema the service expects is absent;
// class 23 covers integrity violations such as a taken slot; everything
// else (dial errors, exceeded write deadlines, closed pools) is treated
// as unreachable.
func classifyStoreError(op string, err error) *booking.StoreError {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch {
		case pqErr.Code == "42P01":
			return &booking.StoreError{Failure: booking.StoreSchemaMissing, Op: op, Err: err}
		case pqErr.Code.Class() == "23":
			return &booking.StoreError{Failure: booking.StoreRejected, Op: op, Err: err}
		}
	}

	return &booking.StoreError{Failure: booking.StoreUnreachable, Op: op, Err: err}
}
