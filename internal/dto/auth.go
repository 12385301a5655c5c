package dto

import (
	"strings"
	"time"

	"github.com/emldov7/evMonde--sub000/internal/domain"
)

// RegisterRequest represents a new account request
type RegisterRequest struct {
	Email            string `json:"email" binding:"required,email,max=255"`
	Password         string `json:"password" binding:"required,min=8,max=72"`
	FirstName        string `json:"first_name" binding:"required,min=1,max=100"`
	LastName         string `json:"last_name" binding:"required,min=1,max=100"`
	Role             string `json:"role" binding:"omitempty,oneof=participant organizer"`
	CountryCode      string `json:"country_code" binding:"omitempty,len=2"`
	CountryName      string `json:"country_name" binding:"omitempty,max=100"`
	PhoneCountryCode string `json:"phone_country_code" binding:"omitempty,max=5"`
	Phone            string `json:"phone" binding:"omitempty,max=20"`
	PreferredLanguage string `json:"preferred_language" binding:"omitempty,oneof=fr en"`
}

// Normalize lowercases the email and fills role/language defaults
func (r *RegisterRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	if r.Role == "" {
		r.Role = domain.RoleParticipant
	}
	if r.PreferredLanguage == "" {
		r.PreferredLanguage = "fr"
	}
}

// LoginRequest represents a login attempt
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse carries the access token and the authenticated user
type AuthResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresIn   int64        `json:"expires_in"`
	User        UserResponse `json:"user"`
}

// UserResponse is the public shape of a user account
type UserResponse struct {
	ID                int64      `json:"id"`
	Email             string     `json:"email"`
	FirstName         string     `json:"first_name"`
	LastName          string     `json:"last_name"`
	Role              string     `json:"role"`
	CountryCode       string     `json:"country_code,omitempty"`
	CountryName       string     `json:"country_name,omitempty"`
	PhoneFull         string     `json:"phone_full,omitempty"`
	PreferredLanguage string     `json:"preferred_language"`
	IsVerified        bool       `json:"is_verified"`
	IsSuspended       bool       `json:"is_suspended"`
	LastLoginAt       *time.Time `json:"last_login_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

// ToUserResponse maps a domain user to its public shape
func ToUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:                u.ID,
		Email:             u.Email,
		FirstName:         u.FirstName,
		LastName:          u.LastName,
		Role:              u.Role,
		CountryCode:       u.CountryCode,
		CountryName:       u.CountryName,
		PhoneFull:         u.PhoneFull,
		PreferredLanguage: u.PreferredLanguage,
		IsVerified:        u.IsVerified,
		IsSuspended:       u.IsSuspended,
		LastLoginAt:       u.LastLoginAt,
		CreatedAt:         u.CreatedAt,
	}
}

// UpdateProfileRequest represents a profile update
type UpdateProfileRequest struct {
	FirstName         *string `json:"first_name" binding:"omitempty,min=1,max=100"`
	LastName          *string `json:"last_name" binding:"omitempty,min=1,max=100"`
	CountryCode       *string `json:"country_code" binding:"omitempty,len=2"`
	CountryName       *string `json:"country_name" binding:"omitempty,max=100"`
	PhoneCountryCode  *string `json:"phone_country_code" binding:"omitempty,max=5"`
	Phone             *string `json:"phone" binding:"omitempty,max=20"`
	PreferredLanguage *string `json:"preferred_language" binding:"omitempty,oneof=fr en"`
}

// Validate checks that at least one field is set
func (r *UpdateProfileRequest) Validate() (bool, string) {
	if r.FirstName == nil && r.LastName == nil && r.CountryCode == nil &&
		r.CountryName == nil && r.PhoneCountryCode == nil && r.Phone == nil &&
		r.PreferredLanguage == nil {
		return false, "At least one field must be provided for update"
	}
	return true, ""
}

// ChangePasswordRequest represents a password change
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8,max=72"`
}

// Validate rejects reusing the current password
func (r *ChangePasswordRequest) Validate() (bool, string) {
	if r.CurrentPassword == r.NewPassword {
		return false, "New password must differ from the current one"
	}
	return true, ""
}
