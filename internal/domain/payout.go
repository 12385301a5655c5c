package domain

import "time"

// Payout status constants
const (
	PayoutStatusPending    = "pending"
	PayoutStatusApproved   = "approved"
	PayoutStatusProcessing = "processing"
	PayoutStatusCompleted  = "completed"
	PayoutStatusRejected   = "rejected"
	PayoutStatusFailed     = "failed"
	PayoutStatusCancelled  = "cancelled"
)

// Payout is a withdrawal request by an organizer against their balance
type Payout struct {
	ID                 int64      `json:"id"`
	OrganizerID        int64      `json:"organizer_id"`
	Amount             float64    `json:"amount"`
	Currency           string     `json:"currency"`
	Status             string     `json:"status"` // pending, approved, processing, completed, rejected, failed, cancelled
	PayoutMethod       string     `json:"payout_method"`
	AccountDetails     *string    `json:"account_details,omitempty"`
	StripePayoutID     *string    `json:"stripe_payout_id,omitempty"`
	OrganizerMessage   *string    `json:"organizer_message,omitempty"`
	AdminNotes         *string    `json:"admin_notes,omitempty"`
	ProcessedByAdminID *int64     `json:"processed_by_admin_id,omitempty"`
	RequestedAt        time.Time  `json:"requested_at"`
	ApprovedAt         *time.Time `json:"approved_at,omitempty"`
	CompletedAt        *time.Time `json:"completed_at,omitempty"`
	RejectedAt         *time.Time `json:"rejected_at,omitempty"`
}

// Reserved reports whether the payout amount is still held against the balance
func (p *Payout) Reserved() bool {
	switch p.Status {
	case PayoutStatusPending, PayoutStatusApproved, PayoutStatusProcessing:
		return true
	}
	return false
}

// CommissionSettings is the platform-wide commission policy, a single row
type CommissionSettings struct {
	ID                      int64     `json:"id"`
	DefaultCommissionRate   float64   `json:"default_commission_rate"`
	MinimumCommissionAmount float64   `json:"minimum_commission_amount"`
	IsActive                bool      `json:"is_active"`
	Notes                   *string   `json:"notes,omitempty"`
	CreatedAt               time.Time `json:"created_at"`
	UpdatedAt               time.Time `json:"updated_at"`
}

// CommissionTransaction records the platform cut taken on one paid registration
type CommissionTransaction struct {
	ID                    int64     `json:"id"`
	RegistrationID        int64     `json:"registration_id"`
	EventID               int64     `json:"event_id"`
	OrganizerID           int64     `json:"organizer_id"`
	TicketAmount          float64   `json:"ticket_amount"`
	CommissionRate        float64   `json:"commission_rate"`
	CommissionAmount      float64   `json:"commission_amount"`
	NetAmount             float64   `json:"net_amount"`
	Currency              string    `json:"currency"`
	StripePaymentIntentID *string   `json:"stripe_payment_intent_id,omitempty"`
	Notes                 *string   `json:"notes,omitempty"`
	CreatedAt             time.Time `json:"created_at"`
}

// OrganizerBalance summarizes an organizer's marketplace finances
type OrganizerBalance struct {
	TotalRevenue     float64 `json:"total_revenue"`
	TotalCommission  float64 `json:"total_commission"`
	TotalPaidOut     float64 `json:"total_paid_out"`
	PendingPayouts   float64 `json:"pending_payouts"`
	AvailableBalance float64 `json:"available_balance"`
	Currency         string  `json:"currency"`
}
