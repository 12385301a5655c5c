package domain

import "time"

// Registration type constants
const (
	RegistrationTypeUser  = "user"
	RegistrationTypeGuest = "guest"
)

// Registration status constants
const (
	RegistrationStatusPending   = "pending"
	RegistrationStatusConfirmed = "confirmed"
	RegistrationStatusWaitlist  = "waitlist"
	RegistrationStatusOffered   = "offered"
	RegistrationStatusCancelled = "cancelled"
	RegistrationStatusRefunded  = "refunded"
)

// Payment status constants
const (
	PaymentStatusNotRequired = "not_required"
	PaymentStatusPending     = "pending"
	PaymentStatusPaid        = "paid"
	PaymentStatusFailed      = "failed"
	PaymentStatusRefunded    = "refunded"
)

// Registration represents an event sign-up, by an account holder or a guest
type Registration struct {
	ID               int64      `json:"id"`
	RegistrationType string     `json:"registration_type"` // user, guest
	EventID          int64      `json:"event_id"`
	UserID           *int64     `json:"user_id,omitempty"`
	TicketID         *int64     `json:"ticket_id,omitempty"`

	GuestFirstName        string `json:"guest_first_name,omitempty"`
	GuestLastName         string `json:"guest_last_name,omitempty"`
	GuestEmail            string `json:"guest_email,omitempty"`
	GuestCountryCode      string `json:"guest_country_code,omitempty"`
	GuestPhoneCountryCode string `json:"guest_phone_country_code,omitempty"`
	GuestPhone            string `json:"guest_phone,omitempty"`
	GuestPhoneFull        string `json:"guest_phone_full,omitempty"`

	RegistrationDate time.Time  `json:"registration_date"`
	WaitlistJoinedAt *time.Time `json:"waitlist_joined_at,omitempty"`
	OfferExpiresAt   *time.Time `json:"offer_expires_at,omitempty"`

	Status        string  `json:"status"`         // pending, confirmed, waitlist, offered, cancelled, refunded
	PaymentStatus string  `json:"payment_status"` // not_required, pending, paid, failed, refunded
	AmountPaid    float64 `json:"amount_paid"`
	Currency      string  `json:"currency,omitempty"`

	StripeSessionID       *string `json:"stripe_session_id,omitempty"`
	StripePaymentIntentID *string `json:"stripe_payment_intent_id,omitempty"`

	QRCodeURL  string `json:"qr_code_url,omitempty"`
	QRCodeData string `json:"qr_code_data,omitempty"`

	ScannedCount int        `json:"scanned_count"`
	FirstScanAt  *time.Time `json:"first_scan_at,omitempty"`
	LastScanAt   *time.Time `json:"last_scan_at,omitempty"`
	ScannedBy    *string    `json:"scanned_by,omitempty"`

	EmailSent   bool       `json:"email_sent"`
	EmailSentAt *time.Time `json:"email_sent_at,omitempty"`
	SMSSent     bool       `json:"sms_sent"`
	SMSSentAt   *time.Time `json:"sms_sent_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsGuest reports whether the registration belongs to a non-account holder
func (r *Registration) IsGuest() bool {
	return r.RegistrationType == RegistrationTypeGuest
}

// HolderName returns the attendee name regardless of registration type
func (r *Registration) HolderName(user *User) string {
	if r.IsGuest() {
		return r.GuestFirstName + " " + r.GuestLastName
	}
	if user != nil {
		return user.FullName()
	}
	return ""
}

// HolderEmail returns the attendee email regardless of registration type
func (r *Registration) HolderEmail(user *User) string {
	if r.IsGuest() {
		return r.GuestEmail
	}
	if user != nil {
		return user.Email
	}
	return ""
}

// OccupiesSeat reports whether the registration counts against capacity
func (r *Registration) OccupiesSeat() bool {
	return r.Status == RegistrationStatusConfirmed || r.Status == RegistrationStatusPending
}
