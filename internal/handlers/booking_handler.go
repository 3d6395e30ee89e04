package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/careercompass/mentor-booking-backend/internal/booking"
	"github.com/careercompass/mentor-booking-backend/internal/config"
	"github.com/careercompass/mentor-booking-backend/internal/database"
	"github.com/careercompass/mentor-booking-backend/internal/middleware"
	"github.com/careercompass/mentor-booking-backend/internal/models"
	"github.com/careercompass/mentor-booking-backend/internal/services"
	"github.com/careercompass/mentor-booking-backend/internal/utils"
	"github.com/careercompass/mentor-booking-backend/pkg/validator"
)

// BookingHandler drives booking workflow runs over HTTP. One POST runs a
// whole workflow: validation failures come back inline as 400s, while
// store and payment failures are absorbed by the workflow into one of its
// terminal events, never into an error response.
type BookingHandler struct {
	mentorRepo  *database.MentorRepository
	bookingRepo *database.BookingRepository
	payments    booking.PaymentClient
	ledger      *booking.FallbackLedger
	audit       *services.AuditService
	contacts    *validator.ContactValidator
	cfg         config.BookingConfig
	logger      *logrus.Logger
}

// NewBookingHandler creates a new BookingHandler
func NewBookingHandler(
	mentorRepo *database.MentorRepository,
	bookingRepo *database.BookingRepository,
	payments booking.PaymentClient,
	ledger *booking.FallbackLedger,
	audit *services.AuditService,
	cfg config.BookingConfig,
	logger *logrus.Logger,
) *BookingHandler {
	return &BookingHandler{
		mentorRepo:  mentorRepo,
		bookingRepo: bookingRepo,
		payments:    payments,
		ledger:      ledger,
		audit:       audit,
		contacts:    validator.NewContactValidator(),
		cfg:         cfg,
		logger:      logger,
	}
}

// CreateBookingRequest is the payload for one booking workflow run
type CreateBookingRequest struct {
	MentorID     string `json:"mentor_id" binding:"required"`
	Date         string `json:"date" binding:"required"` // YYYY-MM-DD
	Time         string `json:"time" binding:"required"` // HH:MM
	Topic        string `json:"topic" binding:"required"`
	Notes        string `json:"notes,omitempty"`
	ContactEmail string `json:"contact_email,omitempty"`
	ContactPhone string `json:"contact_phone,omitempty"`
}

// BookingRunResponse reports the single terminal event of a workflow run
type BookingRunResponse struct {
	Event   string          `json:"event"` // booking_confirmed, booking_pending_follow_up, booking_cancelled
	Message string          `json:"message"`
	Booking *models.Booking `json:"booking,omitempty"`
}

// terminalRecorder captures the one terminal notification of a run
type terminalRecorder struct {
	event   string
	booking *models.Booking
}

func (r *terminalRecorder) BookingConfirmed(b *models.Booking) {
	r.event = "booking_confirmed"
	r.booking = b
}

func (r *terminalRecorder) BookingPendingFollowUp(b *models.Booking) {
	r.event = "booking_pending_follow_up"
	r.booking = b
}

func (r *terminalRecorder) BookingCancelled() {
	r.event = "booking_cancelled"
}

// CreateBooking runs one booking workflow end-to-end
// POST /api/v1/bookings
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be in YYYY-MM-DD format"})
		return
	}

	contactEmail := req.ContactEmail
	if contactEmail != "" {
		contactEmail, err = h.contacts.ValidateEmail(contactEmail)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	contactPhone, err := h.contacts.ValidatePhone(req.ContactPhone)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	mentor, err := h.mentorRepo.GetByID(req.MentorID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load mentor for booking")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load mentor"})
		return
	}
	if mentor == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Mentor not found"})
		return
	}

	// Absent or invalid identity routes the run onto the guest path
	var requester *models.UserIdentity
	if userCtx, ok := middleware.GetUserContext(c); ok {
		requester = &models.UserIdentity{
			ID:    userCtx.UserID,
			Name:  userCtx.Name,
			Email: userCtx.Email,
		}
	}

	recorder := &terminalRecorder{}
	wf := booking.NewWorkflow(
		mentor, requester, h.bookingRepo, h.payments, h.ledger, recorder,
		h.cfg.SessionMinutes, h.cfg.Currency, h.logger,
	)
	wf.SetContact(contactEmail, contactPhone)

	if err := wf.SelectDate(date); err != nil {
		h.rejectStep(c, err)
		return
	}
	if err := wf.SelectTime(req.Time); err != nil {
		h.rejectStep(c, err)
		return
	}
	if err := wf.EnterDetails(req.Topic, req.Notes); err != nil {
		h.rejectStep(c, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.cfg.CheckoutTimeout)
	defer cancel()

	terminal, err := wf.Submit(ctx)
	if err != nil {
		// Sequencing errors only; booking/payment failures are absorbed
		h.logger.WithError(err).Error("Booking workflow sequencing error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Booking could not be processed"})
		return
	}

	h.logRun(c, requester, mentor.ID, recorder)

	c.JSON(http.StatusCreated, BookingRunResponse{
		Event:   recorder.event,
		Message: terminalMessage(terminal),
		Booking: recorder.booking,
	})
}

// ListBookings returns the authenticated requester's bookings
// GET /api/v1/bookings
func (h *BookingHandler) ListBookings(c *gin.Context) {
	userCtx, ok := middleware.GetUserContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	bookings, err := h.bookingRepo.GetByRequesterID(userCtx.UserID.String())
	if err != nil {
		h.logger.WithError(err).Error("Failed to list bookings")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list bookings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

// GetBooking returns one of the requester's bookings. The final flag
// tells the dashboard whether the booking can still change state, e.g. a
// pending/failed one awaiting manual follow-up.
// GET /api/v1/bookings/:id
func (h *BookingHandler) GetBooking(c *gin.Context) {
	userCtx, ok := middleware.GetUserContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	b, err := h.bookingRepo.GetByID(c.Param("id"))
	if err != nil {
		h.logger.WithError(err).Error("Failed to load booking")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load booking"})
		return
	}
	// Absent bookings and other requesters' bookings look the same
	if b == nil || b.RequesterID == nil || *b.RequesterID != userCtx.UserID.String() {
		c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"booking": b, "final": b.IsTerminal()})
}

// ListFallbackBookings returns the local fallback ledger for manual
// reconciliation
// GET /api/v1/bookings/fallback
func (h *BookingHandler) ListFallbackBookings(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"bookings": h.ledger.List()})
}

// rejectStep reports a blocked transition inline; validation never enters
// the workflow's failure-absorption path
func (h *BookingHandler) rejectStep(c *gin.Context, err error) {
	var vErr *booking.ValidationError
	if errors.As(err, &vErr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": vErr.Error(), "field": vErr.Field})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

func (h *BookingHandler) logRun(c *gin.Context, requester *models.UserIdentity, mentorID string, recorder *terminalRecorder) {
	if h.audit == nil {
		return
	}

	event := services.BookingRunEvent{
		MentorID:  mentorID,
		Terminal:  recorder.event,
		IPAddress: utils.GetRealIP(c),
		UserAgent: utils.GetUserAgent(c),
	}
	if requester != nil {
		id := requester.ID
		event.RequesterID = &id
	}
	if recorder.booking != nil {
		bookingID := recorder.booking.ID
		event.BookingID = &bookingID
		event.Origin = string(recorder.booking.Origin)
	}

	h.audit.LogBookingRun(event, recorder.booking)
}

func terminalMessage(state booking.State) string {
	switch state {
	case booking.StateConfirmed:
		return "Your session is booked."
	case booking.StatePendingFollowUp:
		return "Your request is recorded. Our team will follow up to complete the booking."
	case booking.StateCancelled:
		return "Booking cancelled."
	default:
		return ""
	}
}
