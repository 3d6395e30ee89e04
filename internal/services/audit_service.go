package services

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/careercompass/mentor-booking-backend/internal/database"
	"github.com/careercompass/mentor-booking-backend/internal/models"
	"github.com/careercompass/mentor-booking-backend/internal/utils"
)

// AuditService records booking workflow runs for support and
// reconciliation. Logging is best-effort: a failed audit write is logged
// and swallowed, it never affects the booking outcome.
type AuditService struct {
	db     database.DB
	logger *logrus.Logger
}

// NewAuditService creates a new audit service
func NewAuditService(db database.DB, logger *logrus.Logger) *AuditService {
	return &AuditService{db: db, logger: logger}
}

// BookingRunEvent describes one finished workflow run
type BookingRunEvent struct {
	RequesterID *uuid.UUID // nil for guest runs
	MentorID    string
	BookingID   *string
	Terminal    string // confirmed, pending_follow_up, cancelled
	Origin      string // store or fallback
	IPAddress   string
	UserAgent   string
}

// LogBookingRun records the terminal event of one workflow run together
// with the requesting device's parsed info.
func (s *AuditService) LogBookingRun(event BookingRunEvent, b *models.Booking) {
	details := map[string]interface{}{
		"terminal":    event.Terminal,
		"origin":      event.Origin,
		"device_info": utils.ParseUserAgent(event.UserAgent),
	}
	if b != nil {
		details["payment_status"] = b.PaymentStatus
		details["amount"] = b.Amount
		details["scheduled_at"] = b.ScheduledAt
	}

	if err := s.insert(event, details); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"mentor_id": event.MentorID,
			"terminal":  event.Terminal,
		}).Warn("Failed to write booking audit entry")
	}
}

func (s *AuditService) insert(event BookingRunEvent, details map[string]interface{}) error {
	detailsJSON, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("failed to marshal audit details: %w", err)
	}

	query := `
		INSERT INTO booking_audit_log (
			id, requester_id, mentor_id, booking_id, terminal,
			ip_address, user_agent, details, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err = s.db.Exec(
		query,
		uuid.New().String(), event.RequesterID, event.MentorID,
		event.BookingID, event.Terminal, event.IPAddress,
		event.UserAgent, detailsJSON, time.Now(),
	)
	return err
}
