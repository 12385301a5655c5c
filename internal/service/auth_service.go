package service

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/emldov7/evMonde--sub000/internal/domain"
	"github.com/emldov7/evMonde--sub000/internal/dto"
	"github.com/emldov7/evMonde--sub000/internal/repository"
)

var (
	ErrEmailAlreadyUsed     = errors.New("email already registered")
	ErrIncorrectCredentials = errors.New("incorrect email or password")
	ErrAccountSuspended     = errors.New("account suspended")
	ErrUserNotFound         = errors.New("user not found")
)

// AuthService defines the interface for account and session operations
type AuthService interface {
	// Register creates a new account and returns a signed session
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error)
	// Login verifies credentials and returns a signed session
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error)
	// Me returns the authenticated user's profile
	Me(ctx context.Context, userID int64) (*dto.UserResponse, error)
	// UpdateProfile updates the authenticated user's profile fields
	UpdateProfile(ctx context.Context, userID int64, req *dto.UpdateProfileRequest) (*dto.UserResponse, error)
	// ChangePassword rotates the password after verifying the current one
	ChangePassword(ctx context.Context, userID int64, req *dto.ChangePasswordRequest) error
}

// authService implements AuthService
type authService struct {
	userRepo  repository.UserRepository
	jwtSecret string
	tokenTTL  time.Duration
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo repository.UserRepository, jwtSecret string, tokenTTL time.Duration) AuthService {
	return &authService{
		userRepo:  userRepo,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
	}
}

// Register creates a new account and returns a signed session
func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	req.Normalize()

	existing, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailAlreadyUsed
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := &domain.User{
		Email:             req.Email,
		HashedPassword:    string(hash),
		FirstName:         req.FirstName,
		LastName:          req.LastName,
		Role:              req.Role,
		CountryCode:       req.CountryCode,
		CountryName:       req.CountryName,
		PhoneCountryCode:  req.PhoneCountryCode,
		Phone:             req.Phone,
		PhoneFull:         joinPhone(req.PhoneCountryCode, req.Phone),
		PreferredLanguage: req.PreferredLanguage,
		IsActive:          true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	return s.issueSession(user)
}

// Login verifies credentials and returns a signed session
func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrIncorrectCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(req.Password)); err != nil {
		return nil, ErrIncorrectCredentials
	}

	if user.IsSuspended {
		return nil, ErrAccountSuspended
	}

	now := time.Now()
	if err := s.userRepo.TouchLastLogin(ctx, user.ID, now); err != nil {
		return nil, err
	}
	user.LastLoginAt = &now

	return s.issueSession(user)
}

// Me returns the authenticated user's profile
func (s *authService) Me(ctx context.Context, userID int64) (*dto.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	resp := dto.ToUserResponse(user)
	return &resp, nil
}

// UpdateProfile updates the authenticated user's profile fields
func (s *authService) UpdateProfile(ctx context.Context, userID int64, req *dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.CountryCode != nil {
		user.CountryCode = *req.CountryCode
	}
	if req.CountryName != nil {
		user.CountryName = *req.CountryName
	}
	if req.PhoneCountryCode != nil {
		user.PhoneCountryCode = *req.PhoneCountryCode
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	if req.PhoneCountryCode != nil || req.Phone != nil {
		user.PhoneFull = joinPhone(user.PhoneCountryCode, user.Phone)
	}
	if req.PreferredLanguage != nil {
		user.PreferredLanguage = *req.PreferredLanguage
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	resp := dto.ToUserResponse(user)
	return &resp, nil
}

// ChangePassword rotates the password after verifying the current one
func (s *authService) ChangePassword(ctx context.Context, userID int64, req *dto.ChangePasswordRequest) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(req.CurrentPassword)); err != nil {
		return ErrIncorrectCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.HashedPassword = string(hash)

	return s.userRepo.Update(ctx, user)
}

func (s *authService) issueSession(user *domain.User) (*dto.AuthResponse, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": formatID(user.ID),
		"email":   user.Email,
		"role":    user.Role,
		"iat":     now.Unix(),
		"exp":     now.Add(s.tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		AccessToken: signed,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.tokenTTL.Seconds()),
		User:        dto.ToUserResponse(user),
	}, nil
}
