package dto

// SuspendUserRequest suspends an account with a reason shown to the user
type SuspendUserRequest struct {
	Reason string `json:"reason" binding:"required,min=3,max=500"`
}

// PromoteUserRequest changes an account's role
type PromoteUserRequest struct {
	Role string `json:"role" binding:"required,oneof=admin organizer participant"`
}

// FlagEventRequest marks an event for moderation review
type FlagEventRequest struct {
	Reason string `json:"reason" binding:"required,min=3,max=500"`
}

// AdminNotesRequest attaches internal notes to an event
type AdminNotesRequest struct {
	Notes string `json:"notes" binding:"max=2000"`
}

// ListUsersQuery filters the admin user list
type ListUsersQuery struct {
	Page      int    `form:"page" binding:"omitempty,min=1"`
	Limit     int    `form:"limit" binding:"omitempty,min=1,max=100"`
	Role      string `form:"role" binding:"omitempty,oneof=admin organizer participant"`
	Suspended *bool  `form:"suspended" binding:"omitempty"`
	Search    string `form:"search" binding:"omitempty,max=255"`
}

// SetDefaults sets default values for query parameters
func (q *ListUsersQuery) SetDefaults() {
	if q.Page == 0 {
		q.Page = 1
	}
	if q.Limit == 0 {
		q.Limit = 20
	}
}

// PlatformStats is the full platform statistics block
type PlatformStats struct {
	TotalUsers        int `json:"total_users"`
	ActiveUsers       int `json:"active_users"`
	SuspendedUsers    int `json:"suspended_users"`
	AdminUsers        int `json:"admin_users"`
	OrganizerUsers    int `json:"organizer_users"`
	ParticipantUsers  int `json:"participant_users"`
	NewUsersThisMonth int `json:"new_users_this_month"`

	TotalEvents        int `json:"total_events"`
	PublishedEvents    int `json:"published_events"`
	DraftEvents        int `json:"draft_events"`
	CancelledEvents    int `json:"cancelled_events"`
	FeaturedEvents     int `json:"featured_events"`
	FlaggedEvents      int `json:"flagged_events"`
	NewEventsThisMonth int `json:"new_events_this_month"`

	TotalRegistrations        int `json:"total_registrations"`
	ConfirmedRegistrations    int `json:"confirmed_registrations"`
	PendingRegistrations      int `json:"pending_registrations"`
	CancelledRegistrations    int `json:"cancelled_registrations"`
	NewRegistrationsThisMonth int `json:"new_registrations_this_month"`

	TotalRevenue           float64 `json:"total_revenue"`
	RevenueThisMonth       float64 `json:"revenue_this_month"`
	TotalPaidRegistrations int     `json:"total_paid_registrations"`
	AverageTicketPrice     float64 `json:"average_ticket_price"`
	CommissionRevenue      float64 `json:"commission_revenue"`
}

// TopOrganizer is one row of the top-organizers ranking
type TopOrganizer struct {
	ID                 int64   `json:"id"`
	Name               string  `json:"name"`
	Email              string  `json:"email"`
	TotalEvents        int     `json:"total_events"`
	TotalRegistrations int     `json:"total_registrations"`
	TotalRevenue       float64 `json:"total_revenue"`
}

// TopEvent is one row of the top-events ranking
type TopEvent struct {
	ID                 int64   `json:"id"`
	Title              string  `json:"title"`
	OrganizerName      string  `json:"organizer_name"`
	TotalRegistrations int     `json:"total_registrations"`
	TotalRevenue       float64 `json:"total_revenue"`
}
