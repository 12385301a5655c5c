package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/emldov7/evMonde--sub000/internal/domain"
	"github.com/emldov7/evMonde--sub000/internal/dto"
)

const testSecret = "test-secret-key-for-signing"

func newAuthFixture() (AuthService, *memUserRepo) {
	users := newMemUserRepo()
	return NewAuthService(users, testSecret, time.Hour), users
}

func seedUser(users *memUserRepo, email, password, role string) *domain.User {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	user := &domain.User{
		Email:          email,
		HashedPassword: string(hash),
		FirstName:      "Awa",
		LastName:       "Diallo",
		Role:           role,
		IsActive:       true,
	}
	_ = users.Create(context.Background(), user)
	return user
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("creates account and returns token", func(t *testing.T) {
		svc, _ := newAuthFixture()
		resp, err := svc.Register(ctx, &dto.RegisterRequest{
			Email:     "Awa@Example.COM",
			Password:  "motdepasse",
			FirstName: "Awa",
			LastName:  "Diallo",
		})
		if err != nil {
			t.Fatalf("register failed: %v", err)
		}
		if resp.AccessToken == "" {
			t.Error("expected a non-empty access token")
		}
		if resp.User.Email != "awa@example.com" {
			t.Errorf("expected lowercased email, got %s", resp.User.Email)
		}
		if resp.User.Role != domain.RoleParticipant {
			t.Errorf("expected default role participant, got %s", resp.User.Role)
		}

		claims := jwt.MapClaims{}
		_, err = jwt.ParseWithClaims(resp.AccessToken, claims, func(*jwt.Token) (interface{}, error) {
			return []byte(testSecret), nil
		})
		if err != nil {
			t.Fatalf("token does not verify: %v", err)
		}
		if _, ok := claims["user_id"].(string); !ok {
			t.Error("expected user_id claim to be a string")
		}
	})

	t.Run("rejects duplicate email", func(t *testing.T) {
		svc, users := newAuthFixture()
		seedUser(users, "awa@example.com", "motdepasse", domain.RoleParticipant)

		_, err := svc.Register(ctx, &dto.RegisterRequest{
			Email:     "awa@example.com",
			Password:  "autremotdepasse",
			FirstName: "Awa",
			LastName:  "Diallo",
		})
		if !errors.Is(err, ErrEmailAlreadyUsed) {
			t.Errorf("expected ErrEmailAlreadyUsed, got %v", err)
		}
	})
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("valid credentials", func(t *testing.T) {
		svc, users := newAuthFixture()
		seedUser(users, "awa@example.com", "motdepasse", domain.RoleOrganizer)

		resp, err := svc.Login(ctx, &dto.LoginRequest{Email: "awa@example.com", Password: "motdepasse"})
		if err != nil {
			t.Fatalf("login failed: %v", err)
		}
		if resp.User.Role != domain.RoleOrganizer {
			t.Errorf("expected organizer role, got %s", resp.User.Role)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		svc, users := newAuthFixture()
		seedUser(users, "awa@example.com", "motdepasse", domain.RoleParticipant)

		_, err := svc.Login(ctx, &dto.LoginRequest{Email: "awa@example.com", Password: "mauvais"})
		if !errors.Is(err, ErrIncorrectCredentials) {
			t.Errorf("expected ErrIncorrectCredentials, got %v", err)
		}
	})

	t.Run("unknown email", func(t *testing.T) {
		svc, _ := newAuthFixture()
		_, err := svc.Login(ctx, &dto.LoginRequest{Email: "nobody@example.com", Password: "motdepasse"})
		if !errors.Is(err, ErrIncorrectCredentials) {
			t.Errorf("expected ErrIncorrectCredentials, got %v", err)
		}
	})

	t.Run("suspended account", func(t *testing.T) {
		svc, users := newAuthFixture()
		user := seedUser(users, "awa@example.com", "motdepasse", domain.RoleParticipant)
		reason := "chargeback abuse"
		user.IsSuspended = true
		user.SuspensionReason = &reason
		_ = users.Update(ctx, user)

		_, err := svc.Login(ctx, &dto.LoginRequest{Email: "awa@example.com", Password: "motdepasse"})
		if !errors.Is(err, ErrAccountSuspended) {
			t.Errorf("expected ErrAccountSuspended, got %v", err)
		}
	})
}

func TestAuthService_ChangePassword(t *testing.T) {
	ctx := context.Background()
	svc, users := newAuthFixture()
	user := seedUser(users, "awa@example.com", "motdepasse", domain.RoleParticipant)

	err := svc.ChangePassword(ctx, user.ID, &dto.ChangePasswordRequest{
		CurrentPassword: "mauvais",
		NewPassword:     "nouveaumotdepasse",
	})
	if !errors.Is(err, ErrIncorrectCredentials) {
		t.Fatalf("expected ErrIncorrectCredentials for wrong current password, got %v", err)
	}

	err = svc.ChangePassword(ctx, user.ID, &dto.ChangePasswordRequest{
		CurrentPassword: "motdepasse",
		NewPassword:     "nouveaumotdepasse",
	})
	if err != nil {
		t.Fatalf("change password failed: %v", err)
	}

	if _, err := svc.Login(ctx, &dto.LoginRequest{Email: "awa@example.com", Password: "nouveaumotdepasse"}); err != nil {
		t.Errorf("login with new password failed: %v", err)
	}
}
