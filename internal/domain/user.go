package domain

import "time"

// User roles
const (
	RoleAdmin       = "admin"
	RoleOrganizer   = "organizer"
	RoleParticipant = "participant"
)

// User represents a platform account
type User struct {
	ID                 int64      `json:"id"`
	Email              string     `json:"email"`
	HashedPassword     string     `json:"-"`
	FirstName          string     `json:"first_name"`
	LastName           string     `json:"last_name"`
	Role               string     `json:"role"` // admin, organizer, participant
	CountryCode        string     `json:"country_code"`
	CountryName        string     `json:"country_name"`
	PhoneCountryCode   string     `json:"phone_country_code"`
	Phone              string     `json:"phone"`
	PhoneFull          string     `json:"phone_full"`
	PreferredLanguage  string     `json:"preferred_language"`
	IsActive           bool       `json:"is_active"`
	IsVerified         bool       `json:"is_verified"`
	IsSuspended        bool       `json:"is_suspended"`
	SuspensionReason   *string    `json:"suspension_reason,omitempty"`
	SuspendedAt        *time.Time `json:"suspended_at,omitempty"`
	SuspendedByAdminID *int64     `json:"suspended_by_admin_id,omitempty"`
	LastLoginAt        *time.Time `json:"last_login_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// FullName returns the display name used in emails and tickets
func (u *User) FullName() string {
	if u.FirstName == "" {
		return u.LastName
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// CanOrganize reports whether the user may create and manage events
func (u *User) CanOrganize() bool {
	return u.Role == RoleOrganizer || u.Role == RoleAdmin
}
