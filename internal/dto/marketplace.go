package dto

import "github.com/emldov7/evMonde--sub000/internal/domain"

// PayoutRequestInput is an organizer withdrawal request
type PayoutRequestInput struct {
	Amount           float64 `json:"amount" binding:"required,gt=0"`
	Currency         string  `json:"currency" binding:"omitempty,len=3"`
	PayoutMethod     string  `json:"payout_method" binding:"required,oneof=bank_transfer mobile_money paypal stripe"`
	AccountDetails   string  `json:"account_details" binding:"required,max=2000"`
	OrganizerMessage string  `json:"organizer_message" binding:"omitempty,max=2000"`
}

// ProcessPayoutRequest is the admin decision on a payout
type ProcessPayoutRequest struct {
	Status     string `json:"status" binding:"required,oneof=approved rejected completed failed"`
	AdminNotes string `json:"admin_notes" binding:"omitempty,max=2000"`
}

// validTransitions maps the current payout status to the admin decisions
// allowed from it.
var validPayoutTransitions = map[string][]string{
	domain.PayoutStatusPending:    {domain.PayoutStatusApproved, domain.PayoutStatusRejected},
	domain.PayoutStatusApproved:   {domain.PayoutStatusCompleted, domain.PayoutStatusFailed},
	domain.PayoutStatusProcessing: {domain.PayoutStatusCompleted, domain.PayoutStatusFailed},
}

// ValidateTransition checks the decision against the payout's current status
func (r *ProcessPayoutRequest) ValidateTransition(current string) (bool, string) {
	for _, next := range validPayoutTransitions[current] {
		if r.Status == next {
			return true, ""
		}
	}
	return false, "Cannot move a " + current + " payout to " + r.Status
}

// UpdateCommissionSettingsRequest updates the platform commission policy
type UpdateCommissionSettingsRequest struct {
	DefaultCommissionRate   *float64 `json:"default_commission_rate" binding:"omitempty,gte=0,lte=100"`
	MinimumCommissionAmount *float64 `json:"minimum_commission_amount" binding:"omitempty,gte=0"`
	IsActive                *bool    `json:"is_active"`
	Notes                   *string  `json:"notes" binding:"omitempty,max=2000"`
}

// Validate checks that at least one field is set
func (r *UpdateCommissionSettingsRequest) Validate() (bool, string) {
	if r.DefaultCommissionRate == nil && r.MinimumCommissionAmount == nil &&
		r.IsActive == nil && r.Notes == nil {
		return false, "At least one field must be provided for update"
	}
	return true, ""
}

// PayoutListQuery filters the admin payout queue
type PayoutListQuery struct {
	Page   int    `form:"page" binding:"omitempty,min=1"`
	Limit  int    `form:"limit" binding:"omitempty,min=1,max=100"`
	Status string `form:"status" binding:"omitempty,oneof=pending approved processing completed rejected failed cancelled"`
}

// SetDefaults sets default values for query parameters
func (q *PayoutListQuery) SetDefaults() {
	if q.Page == 0 {
		q.Page = 1
	}
	if q.Limit == 0 {
		q.Limit = 20
	}
}
