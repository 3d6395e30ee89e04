package services

import (
	"bytes"
	"context"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/careercompass/mentor-booking-backend/internal/booking"
	"github.com/careercompass/mentor-booking-backend/internal/config"
)

// payableEnvironmentURLs maps environment names to their IPG endpoint URLs
var payableEnvironmentURLs = map[string]string{
	"dev":        "https://payable-ipg-dev.web.app/ipg/dev",
	"sandbox":    "https://sandboxipgpayment.payable.lk/ipg/sandbox",
	"production": "https://ipgpayment.payable.lk/ipg/pro",
}

// PayableService integrates the PAYable IPG hosted checkout and adapts it
// to the workflow's PaymentClient contract: Charge initiates the checkout
// and then awaits the payer, normalizing every gateway-level failure to an
// indeterminate outcome so the workflow's failure handling stays uniform.
type PayableService struct {
	config *config.PaymentConfig
	logger *logrus.Logger
	client *http.Client
}

// payableCheckoutRequest is the request sent to PAYable IPG.
// NOTE: merchantToken is never sent - it is only an input to checkValue.
type payableCheckoutRequest struct {
	MerchantKey string `json:"merchantKey"`

	LogoURL    string `json:"logoUrl,omitempty"`
	ReturnURL  string `json:"returnUrl"`
	WebhookURL string `json:"webhookUrl,omitempty"`

	PaymentType  int    `json:"paymentType"` // 1 = one-time
	InvoiceID    string `json:"invoiceId"`
	Amount       string `json:"amount"`
	CurrencyCode string `json:"currencyCode"`

	OrderDescription string `json:"orderDescription,omitempty"`

	CustomerFirstName   string `json:"customerFirstName"`
	CustomerLastName    string `json:"customerLastName"`
	CustomerEmail       string `json:"customerEmail"`
	CustomerMobilePhone string `json:"customerMobilePhone"`

	CheckValue string `json:"checkValue"`

	IntegrationType    string `json:"integrationType"`
	IntegrationVersion string `json:"integrationVersion"`
}

// payableCheckoutResponse is the response from PAYable IPG
type payableCheckoutResponse struct {
	Status          string `json:"status"` // "success", "PENDING" or "error"
	UID             string `json:"uid"`
	StatusIndicator string `json:"statusIndicator"`
	PaymentPage     string `json:"paymentPage"`
	Message         string `json:"message,omitempty"`
}

// payableStatusRequest is the request to check payment status
type payableStatusRequest struct {
	UID             string `json:"uid"`
	StatusIndicator string `json:"statusIndicator"`
}

// payableStatusResponse is the response from a status check
type payableStatusResponse struct {
	Status        string `json:"status"`
	PaymentStatus string `json:"paymentStatus"` // "PENDING", "SUCCESS", "FAILED", "CANCELLED"
	Amount        string `json:"amount"`
	InvoiceID     string `json:"invoiceId"`
	TransactionID string `json:"transactionId,omitempty"`
	Message       string `json:"message,omitempty"`
}

// NewPayableService creates a new PAYable payment service
func NewPayableService(cfg *config.PaymentConfig, logger *logrus.Logger) *PayableService {
	return &PayableService{
		config: cfg,
		logger: logger,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// IsConfigured returns true if merchant credentials are present
func (s *PayableService) IsConfigured() bool {
	return s.config.MerchantKey != "" && s.config.MerchantToken != ""
}

// GenerateCheckValue creates the SHA-512 checkValue for PAYable authentication
// Step 1: hash1 = SHA512(merchantToken) uppercase hex
// Step 2: hash2 = SHA512("merchantKey|invoiceId|amount|currencyCode|hash1") uppercase hex
func (s *PayableService) GenerateCheckValue(invoiceID, amount, currencyCode string) string {
	hash1 := sha512.Sum512([]byte(s.config.MerchantToken))
	hash1Hex := strings.ToUpper(hex.EncodeToString(hash1[:]))

	data := fmt.Sprintf("%s|%s|%s|%s|%s",
		s.config.MerchantKey,
		invoiceID,
		amount,
		currencyCode,
		hash1Hex,
	)
	hash2 := sha512.Sum512([]byte(data))
	return strings.ToUpper(hex.EncodeToString(hash2[:]))
}

// Charge initiates a hosted checkout for the booking and waits for the
// payer to complete it, polling the gateway's check-status endpoint. The
// booking ID is the invoice ID, so the gateway's own idempotency prevents
// duplicate charges for retried clicks. The call can suspend for as long
// as ctx allows; a cancelled or exhausted ctx yields an indeterminate
// outcome, never a propagated gateway error.
func (s *PayableService) Charge(ctx context.Context, req *booking.ChargeRequest) (booking.PaymentOutcome, error) {
	if !s.IsConfigured() {
		return booking.OutcomeIndeterminate, fmt.Errorf("payment gateway not configured: missing merchant credentials")
	}

	checkout, err := s.initiateCheckout(req)
	if err != nil {
		s.logger.WithError(err).WithField("booking_id", req.BookingID).
			Error("Failed to initiate PAYable checkout")
		return booking.OutcomeIndeterminate, err
	}

	s.logger.WithFields(logrus.Fields{
		"booking_id":   req.BookingID,
		"uid":          checkout.UID,
		"payment_page": checkout.PaymentPage,
		"environment":  s.config.Environment,
	}).Info("PAYable checkout initiated, awaiting payer")

	return s.awaitOutcome(ctx, req.BookingID, checkout.UID, checkout.StatusIndicator)
}

func (s *PayableService) initiateCheckout(req *booking.ChargeRequest) (*payableCheckoutResponse, error) {
	amount := fmt.Sprintf("%.2f", req.Amount)
	checkValue := s.GenerateCheckValue(req.BookingID, amount, req.Currency)

	firstName, lastName := splitName(req.PayerName)
	if lastName == "" {
		lastName = "." // PAYable requires a last name
	}

	email := req.PayerEmail
	if email == "" {
		email = "sessions@careercompass.app"
	}
	phone := req.PayerPhone
	if phone == "" {
		phone = "0770000000"
	}

	payload := &payableCheckoutRequest{
		MerchantKey:         s.config.MerchantKey,
		LogoURL:             s.config.LogoURL,
		ReturnURL:           s.config.ReturnURL,
		WebhookURL:          s.config.WebhookURL,
		PaymentType:         1,
		InvoiceID:           req.BookingID,
		Amount:              amount,
		CurrencyCode:        req.Currency,
		OrderDescription:    req.Description,
		CustomerFirstName:   firstName,
		CustomerLastName:    lastName,
		CustomerEmail:       email,
		CustomerMobilePhone: phone,
		CheckValue:          checkValue,
		IntegrationType:     "CareerCompass",
		IntegrationVersion:  "1.0.0",
	}

	body, err := s.post(s.endpointURL(), payload)
	if err != nil {
		return nil, err
	}

	var resp payableCheckoutResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse checkout response: %w", err)
	}

	// PAYable returns "PENDING" once the checkout is ready for the payer,
	// or "success" in some flows; both mean the page is live
	if resp.Status != "success" && resp.Status != "PENDING" {
		msg := resp.Message
		if msg == "" {
			msg = fmt.Sprintf("status=%s", resp.Status)
		}
		return nil, fmt.Errorf("checkout initiation failed: %s", msg)
	}
	if resp.PaymentPage == "" {
		return nil, fmt.Errorf("checkout initiation failed: no payment page URL returned")
	}

	return &resp, nil
}

// awaitOutcome polls the check-status endpoint until the gateway reports a
// terminal payment status or ctx ends. Transient poll failures do not end
// the wait on their own; only a run of consecutive failures does.
func (s *PayableService) awaitOutcome(ctx context.Context, bookingID, uid, statusIndicator string) (booking.PaymentOutcome, error) {
	interval := s.config.StatusPollInterval
	if interval <= 0 {
		interval = 5 * time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	const maxConsecutiveFailures = 3
	failures := 0

	for {
		select {
		case <-ctx.Done():
			return booking.OutcomeIndeterminate, fmt.Errorf("checkout wait ended: %w", ctx.Err())
		case <-ticker.C:
		}

		status, err := s.checkStatus(uid, statusIndicator)
		if err != nil {
			failures++
			s.logger.WithError(err).WithFields(logrus.Fields{
				"booking_id": bookingID,
				"uid":        uid,
				"failures":   failures,
			}).Warn("PAYable status check failed")
			if failures >= maxConsecutiveFailures {
				return booking.OutcomeIndeterminate, fmt.Errorf("status checks failing: %w", err)
			}
			continue
		}
		failures = 0

		switch strings.ToUpper(status.PaymentStatus) {
		case "SUCCESS":
			s.logger.WithFields(logrus.Fields{
				"booking_id":     bookingID,
				"uid":            uid,
				"transaction_id": status.TransactionID,
			}).Info("PAYable payment completed")
			return booking.OutcomeSucceeded, nil
		case "FAILED", "CANCELLED":
			return booking.OutcomeDeclined, nil
		default:
			// still pending, keep waiting
		}
	}
}

func (s *PayableService) checkStatus(uid, statusIndicator string) (*payableStatusResponse, error) {
	payload := &payableStatusRequest{
		UID:             uid,
		StatusIndicator: statusIndicator,
	}

	// The check-status endpoint shares the IPG base URL
	statusURL := strings.Replace(s.endpointURL(), "/ipg/", "/check-status/", 1)

	body, err := s.post(statusURL, payload)
	if err != nil {
		return nil, err
	}

	var resp payableStatusResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse status response: %w", err)
	}

	return &resp, nil
}

func (s *PayableService) post(url string, payload interface{}) ([]byte, error) {
	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := s.client.Post(url, "application/json", bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to call payment gateway: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("payment gateway returned status %d: %s", resp.StatusCode, string(body))
	}

	return body, nil
}

func (s *PayableService) endpointURL() string {
	if url, ok := payableEnvironmentURLs[s.config.Environment]; ok {
		return url
	}
	return payableEnvironmentURLs["sandbox"]
}

// splitName splits a full name into first and last name
func splitName(fullName string) (firstName, lastName string) {
	parts := strings.Fields(fullName)
	if len(parts) == 0 {
		return "Customer", ""
	}
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}
