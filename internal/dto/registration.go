package dto

import (
	"regexp"
	"strings"
	"time"
)

var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// RegisterRequest fields live on the URL; the body only carries the ticket
// choice for paid events.
type EventRegistrationRequest struct {
	TicketID *int64 `json:"ticket_id"`
}

// GuestRegistrationRequest is an event sign-up without an account
type GuestRegistrationRequest struct {
	FirstName        string `json:"first_name" binding:"required,min=1,max=100"`
	LastName         string `json:"last_name" binding:"required,min=1,max=100"`
	Email            string `json:"email" binding:"required,max=255"`
	CountryCode      string `json:"country_code" binding:"omitempty,len=2"`
	PhoneCountryCode string `json:"phone_country_code" binding:"omitempty,max=5"`
	Phone            string `json:"phone" binding:"omitempty,max=20"`
	TicketID         *int64 `json:"ticket_id"`
}

// Validate runs the blocking checks before any seat is touched
func (r *GuestRegistrationRequest) Validate() (bool, string) {
	if strings.TrimSpace(r.FirstName) == "" {
		return false, "First name is required"
	}
	if strings.TrimSpace(r.LastName) == "" {
		return false, "Last name is required"
	}
	if !emailRegex.MatchString(strings.TrimSpace(r.Email)) {
		return false, "A valid email address is required"
	}
	if r.Phone != "" && r.PhoneCountryCode == "" {
		return false, "Phone country code is required when a phone number is given"
	}
	return true, ""
}

// Normalize trims and lowercases contact fields
func (r *GuestRegistrationRequest) Normalize() {
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

// ConfirmPaymentRequest finalizes a Stripe checkout session
type ConfirmPaymentRequest struct {
	SessionID string `json:"session_id" binding:"required"`
}

// CheckoutResponse carries the Stripe redirect for a pending registration
type CheckoutResponse struct {
	RegistrationID int64  `json:"registration_id"`
	SessionID      string `json:"session_id"`
	CheckoutURL    string `json:"checkout_url"`
}

// Scan status values returned by QR verification
const (
	ScanStatusFirstScan      = "first_scan"
	ScanStatusAlreadyScanned = "already_scanned"
	ScanStatusFraudDetected  = "fraud_detected"
	ScanStatusInvalid        = "invalid"
)

// VerifyQRRequest carries the raw QR payload scanned at the entry gate
type VerifyQRRequest struct {
	QRCodeData string `json:"qr_code_data" binding:"required,max=500"`
}

// VerifyQRResponse is the scan verdict. ScanStatus is the structured
// verdict; Message keeps the legacy human-readable text shown on scanners.
type VerifyQRResponse struct {
	Valid              bool       `json:"valid"`
	ScanStatus         string     `json:"scan_status"`
	Message            string     `json:"message"`
	ParticipantName    string     `json:"participant_name,omitempty"`
	ParticipantEmail   *string    `json:"participant_email,omitempty"`
	EventTitle         string     `json:"event_title,omitempty"`
	EventDate          *time.Time `json:"event_date,omitempty"`
	RegistrationStatus string     `json:"registration_status,omitempty"`
	ScannedCount       int        `json:"scanned_count,omitempty"`
}
