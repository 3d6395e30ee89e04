package validator

import (
	"errors"
	"regexp"
	"strings"
)

var (
	// ErrEmptyEmail indicates the email address is empty
	ErrEmptyEmail = errors.New("email address cannot be empty")

	// ErrInvalidEmail indicates the email address is malformed
	ErrInvalidEmail = errors.New("email address is not valid")

	// ErrInvalidPhone indicates the phone number is malformed
	ErrInvalidPhone = errors.New("phone number must be 9 to 15 digits, optionally prefixed with +")
)

// emailRegex is a pragmatic check, not an RFC 5322 parser
var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// phoneRegex matches an optional leading + followed by digits
var phoneRegex = regexp.MustCompile(`^\+?\d{9,15}$`)

// ContactValidator validates the contact details a booking carries for
// payment and manual follow-up.
type ContactValidator struct{}

// NewContactValidator creates a new contact validator instance
func NewContactValidator() *ContactValidator {
	return &ContactValidator{}
}

// ValidateEmail validates and normalizes an email address
func (v *ContactValidator) ValidateEmail(email string) (string, error) {
	sanitized := strings.TrimSpace(strings.ToLower(email))
	if sanitized == "" {
		return "", ErrEmptyEmail
	}
	if !emailRegex.MatchString(sanitized) {
		return "", ErrInvalidEmail
	}
	return sanitized, nil
}

// ValidatePhone validates and normalizes a phone number. Spaces and
// dashes are stripped before checking.
func (v *ContactValidator) ValidatePhone(phone string) (string, error) {
	sanitized := strings.NewReplacer(" ", "", "-", "", "(", "", ")", "").Replace(strings.TrimSpace(phone))
	if sanitized == "" {
		return "", nil // phone is optional
	}
	if !phoneRegex.MatchString(sanitized) {
		return "", ErrInvalidPhone
	}
	return sanitized, nil
}
