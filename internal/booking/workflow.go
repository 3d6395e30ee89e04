package booking

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/careercompass/mentor-booking-backend/internal/models"
)

// State identifies where a workflow run is in its lifecycle
type State string

const (
	StateSelectingDate   State = "selecting_date"
	StateSelectingTime   State = "selecting_time"
	StateEnteringDetails State = "entering_details"
	StateRouting         State = "routing"
	StateAwaitingPayment State = "awaiting_payment"
	StateConfirmed       State = "confirmed"
	StatePendingFollowUp State = "pending_follow_up"
	StateCancelled       State = "cancelled"
)

// IsTerminal reports whether the state absorbs the run
func (s State) IsTerminal() bool {
	return s == StateConfirmed || s == StatePendingFollowUp || s == StateCancelled
}

// Store abstracts the durable booking store. Implementations return
// *StoreError (or nil) and never panic past their caller.
type Store interface {
	// CreatePending inserts the booking and fills in its server-issued ID
	CreatePending(b *models.Booking) error
	// MarkConfirmed confirms a booking without touching its payment state
	MarkConfirmed(id string) error
	// MarkPaid confirms a booking and marks it paid
	MarkPaid(id string) error
	// MarkFailed leaves a booking pending with a failed payment
	MarkFailed(id string) error
}

// PaymentOutcome is the normalized result of a charge attempt
type PaymentOutcome string

const (
	OutcomeSucceeded     PaymentOutcome = "succeeded"
	OutcomeDeclined      PaymentOutcome = "declined"
	OutcomeIndeterminate PaymentOutcome = "indeterminate"
)

// ChargeRequest carries everything the payment gateway needs for one charge.
// The booking ID doubles as the gateway-side idempotency key.
type ChargeRequest struct {
	BookingID   string
	Amount      float64
	Currency    string
	PayerName   string
	PayerEmail  string
	PayerPhone  string
	Description string
}

// PaymentClient initiates and awaits completion of an external checkout.
// The call may suspend for a human-timescale duration; implementations
// must normalize every lower-level failure to OutcomeIndeterminate rather
// than returning gateway-specific errors.
type PaymentClient interface {
	Charge(ctx context.Context, req *ChargeRequest) (PaymentOutcome, error)
}

// Notifier receives exactly one terminal event per workflow run
type Notifier interface {
	BookingConfirmed(b *models.Booking)
	BookingPendingFollowUp(b *models.Booking)
	BookingCancelled()
}

// Workflow drives one booking attempt from slot selection to a terminal
// state. A workflow is single-flow: its steps are advanced by discrete
// user actions and never run concurrently. Every failure past validation
// is converted into a terminal, user-visible state; Submit re-raises
// nothing from the store or the gateway.
type Workflow struct {
	mentor    *models.MentorProfile
	requester *models.UserIdentity // nil = guest
	store     Store
	payments  PaymentClient
	ledger    *FallbackLedger
	notifier  Notifier
	logger    *logrus.Logger

	sessionMinutes int
	currency       string

	state      State
	draft      *Draft
	booking    *models.Booking
	submitting bool
}

// ErrSubmitInFlight is returned when a step arrives while the durable
// write or the charge of the same run is still outstanding.
var ErrSubmitInFlight = errors.New("a submission for this booking is already in flight")

// NewWorkflow creates a workflow run for one booking attempt. A nil
// requester routes the run onto the guest/degraded path.
func NewWorkflow(
	mentor *models.MentorProfile,
	requester *models.UserIdentity,
	store Store,
	payments PaymentClient,
	ledger *FallbackLedger,
	notifier Notifier,
	sessionMinutes int,
	currency string,
	logger *logrus.Logger,
) *Workflow {
	return &Workflow{
		mentor:         mentor,
		requester:      requester,
		store:          store,
		payments:       payments,
		ledger:         ledger,
		notifier:       notifier,
		logger:         logger,
		sessionMinutes: sessionMinutes,
		currency:       currency,
		state:          StateSelectingDate,
		draft:          &Draft{MentorID: mentor.ID},
	}
}

// State returns the current workflow state
func (w *Workflow) State() State {
	return w.state
}

// Booking returns the booking record of a finished run, nil before Submit
func (w *Workflow) Booking() *models.Booking {
	return w.booking
}

// SelectDate records the chosen calendar date
func (w *Workflow) SelectDate(date time.Time) error {
	if w.state != StateSelectingDate {
		return &TransitionError{From: w.state, Step: "select date"}
	}
	if date.IsZero() {
		return &ValidationError{Field: "date", Reason: "a session date is required"}
	}
	w.draft.Date = truncateToDay(date)
	w.state = StateSelectingTime
	return nil
}

// SelectTime records the chosen time-of-day. The slot must come from the
// mentor's resolved availability for the selected date.
func (w *Workflow) SelectTime(timeOfDay string) error {
	if w.state != StateSelectingTime {
		return &TransitionError{From: w.state, Step: "select time"}
	}
	if !HasSlot(w.mentor, w.draft.Date, timeOfDay) {
		return &ValidationError{Field: "time", Reason: "not an available slot for the selected date"}
	}
	w.draft.TimeOfDay = timeOfDay
	w.state = StateEnteringDetails
	return nil
}

// EnterDetails records the session topic and optional notes
func (w *Workflow) EnterDetails(topic, notes string) error {
	if w.state != StateEnteringDetails {
		return &TransitionError{From: w.state, Step: "enter details"}
	}
	if strings.TrimSpace(topic) == "" {
		return &ValidationError{Field: "topic", Reason: "a session topic is required"}
	}
	w.draft.Topic = strings.TrimSpace(topic)
	w.draft.Notes = strings.TrimSpace(notes)
	w.state = StateRouting
	return nil
}

// SetContact records how to reach the requester about this session. Used
// for the payment gateway and for manual follow-up on guest bookings.
func (w *Workflow) SetContact(email, phone string) {
	w.draft.ContactEmail = strings.TrimSpace(email)
	w.draft.ContactPhone = strings.TrimSpace(phone)
}

// Cancel abandons the run and discards the draft. Free before any durable
// state exists; not offered once Submit is in flight.
func (w *Workflow) Cancel() error {
	if w.submitting {
		return ErrSubmitInFlight
	}
	if w.state.IsTerminal() {
		return &TransitionError{From: w.state, Step: "cancel"}
	}
	w.draft = nil
	w.finish(StateCancelled, nil)
	return nil
}

// Submit routes the validated draft down the free, paid or degraded path
// and drives the run to a terminal state. The durable pending write
// happens at most once, and always completes (success or classified
// failure) before any charge is initiated. Submit returns an error only
// for sequencing mistakes; booking and payment failures are absorbed into
// the returned terminal state.
func (w *Workflow) Submit(ctx context.Context) (State, error) {
	if w.state != StateRouting {
		return w.state, &TransitionError{From: w.state, Step: "submit"}
	}
	if w.submitting {
		return w.state, ErrSubmitInFlight
	}
	w.submitting = true
	defer func() { w.submitting = false }()

	b := w.buildBooking()

	// Guest path: no durable write, local record only
	if w.requester == nil {
		b.Status = models.BookingStatusConfirmed
		if w.mentor.IsFree() {
			b.PaymentStatus = models.PaymentStatusNotRequired
		} else {
			b.PaymentStatus = models.PaymentStatusPending
		}
		w.ledger.Record(b)
		w.log().WithField("booking_id", b.ID).Info("Guest booking recorded locally")
		w.finish(StateConfirmed, b)
		return w.state, nil
	}

	if w.mentor.IsFree() {
		b.PaymentStatus = models.PaymentStatusNotRequired
	} else {
		b.PaymentStatus = models.PaymentStatusPending
		b.Amount = w.mentor.HourlyRate
		b.Currency = w.currency
	}
	b.Status = models.BookingStatusPending

	// The one durable create of this run. If it fails we never retry it:
	// a retried write racing connectivity recovery could duplicate the
	// booking. Unavailable stores degrade to the local ledger instead.
	if err := w.store.CreatePending(b); err != nil {
		var storeErr *StoreError
		if errors.As(err, &storeErr) && !storeErr.Unavailable() {
			// Slot taken or otherwise refused: absorb into follow-up
			w.log().WithError(err).Warn("Durable store rejected booking")
			b.Status = models.BookingStatusPending
			b.PaymentStatus = models.PaymentStatusFailed
			w.ledger.Record(b)
			w.finish(StatePendingFollowUp, b)
			return w.state, nil
		}

		w.log().WithError(err).Warn("Durable store unavailable, recording booking locally")
		b.Status = models.BookingStatusConfirmed
		w.ledger.Record(b)
		w.finish(StateConfirmed, b)
		return w.state, nil
	}
	b.Origin = models.BookingOriginStore

	if w.mentor.IsFree() {
		if err := w.store.MarkConfirmed(b.ID); err != nil {
			// The pending record exists; a failed confirm update must not
			// turn a free booking into a dead end
			w.log().WithError(err).WithField("booking_id", b.ID).
				Warn("Failed to confirm free booking, record left pending")
		}
		b.Status = models.BookingStatusConfirmed
		w.finish(StateConfirmed, b)
		return w.state, nil
	}

	// Paid path: the pending record observably exists before the charge
	// starts, so a payment can never succeed against a missing booking
	w.state = StateAwaitingPayment
	outcome, err := w.payments.Charge(ctx, w.chargeRequest(b))
	if err != nil {
		w.log().WithError(err).WithField("booking_id", b.ID).Warn("Charge did not complete")
	}

	switch outcome {
	case OutcomeSucceeded:
		if err := w.store.MarkPaid(b.ID); err != nil {
			w.log().WithError(err).WithField("booking_id", b.ID).
				Error("Payment succeeded but booking update failed")
			w.absorbPaymentFailure(b)
			return w.state, nil
		}
		b.Status = models.BookingStatusConfirmed
		b.PaymentStatus = models.PaymentStatusPaid
		w.log().WithFields(logrus.Fields{
			"booking_id": b.ID,
			"amount":     b.Amount,
			"currency":   b.Currency,
		}).Info("Booking paid and confirmed")
		w.finish(StateConfirmed, b)

	default:
		// Declined and indeterminate land in the same place: the request
		// is kept and a human follows up, never a dead-end error screen
		w.log().WithFields(logrus.Fields{
			"booking_id": b.ID,
			"outcome":    outcome,
		}).Warn("Payment not completed")
		w.absorbPaymentFailure(b)
	}

	return w.state, nil
}

// absorbPaymentFailure is the designed absorption point for everything
// that goes wrong on the payment leg. The record ends up pending/failed in
// the durable store if possible, otherwise in the fallback ledger.
func (w *Workflow) absorbPaymentFailure(b *models.Booking) {
	b.Status = models.BookingStatusPending
	b.PaymentStatus = models.PaymentStatusFailed

	if err := w.store.MarkFailed(b.ID); err != nil {
		w.log().WithError(err).WithField("booking_id", b.ID).
			Warn("Could not mark booking failed in store, recording locally")
		local := *b
		w.ledger.Record(&local)
	}

	w.finish(StatePendingFollowUp, b)
}

func (w *Workflow) buildBooking() *models.Booking {
	b := &models.Booking{
		MentorID:        w.mentor.ID,
		ScheduledAt:     w.draft.ScheduledAt(),
		DurationMinutes: w.sessionMinutes,
		Topic:           w.draft.Topic,
		Status:          models.BookingStatusPending,
		Origin:          models.BookingOriginStore,
	}
	if w.requester != nil {
		id := w.requester.ID.String()
		b.RequesterID = &id
	}
	if w.draft.Notes != "" {
		notes := w.draft.Notes
		b.Notes = &notes
	}
	if w.draft.ContactEmail != "" {
		email := w.draft.ContactEmail
		b.ContactEmail = &email
	}
	if w.draft.ContactPhone != "" {
		phone := w.draft.ContactPhone
		b.ContactPhone = &phone
	}
	return b
}

func (w *Workflow) chargeRequest(b *models.Booking) *ChargeRequest {
	req := &ChargeRequest{
		BookingID:   b.ID,
		Amount:      b.Amount,
		Currency:    b.Currency,
		Description: "Mentor session - " + w.mentor.Name,
	}
	if w.requester != nil {
		req.PayerName = w.requester.Name
		req.PayerEmail = w.requester.Email
		req.PayerPhone = w.requester.Phone
	}
	if req.PayerEmail == "" {
		req.PayerEmail = w.draft.ContactEmail
	}
	if req.PayerPhone == "" {
		req.PayerPhone = w.draft.ContactPhone
	}
	return req
}

// finish moves the run into a terminal state, discards the draft and
// emits the single terminal notification.
func (w *Workflow) finish(state State, b *models.Booking) {
	w.state = state
	w.booking = b
	w.draft = nil

	if w.notifier == nil {
		return
	}
	switch state {
	case StateConfirmed:
		w.notifier.BookingConfirmed(b)
	case StatePendingFollowUp:
		w.notifier.BookingPendingFollowUp(b)
	case StateCancelled:
		w.notifier.BookingCancelled()
	}
}

func (w *Workflow) log() *logrus.Logger {
	if w.logger != nil {
		return w.logger
	}
	return logrus.StandardLogger()
}
