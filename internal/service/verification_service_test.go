package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/emldov7/evMonde--sub000/internal/domain"
	"github.com/emldov7/evMonde--sub000/internal/dto"
)

type verifyFixture struct {
	svc    VerificationService
	regs   *memRegistrationRepo
	events *memEventRepo
	users  *memUserRepo
}

func newVerifyFixture(t *testing.T) *verifyFixture {
	t.Helper()
	regs := newMemRegistrationRepo()
	events := newMemEventRepo()
	users := newMemUserRepo()
	return &verifyFixture{
		svc:    NewVerificationService(regs, events, users),
		regs:   regs,
		events: events,
		users:  users,
	}
}

func (f *verifyFixture) seedScannable(t *testing.T, status string, scannedCount int) *domain.Registration {
	t.Helper()
	ctx := context.Background()

	user := seedUser(f.users, "awa@example.com", "motdepasse", domain.RoleParticipant)
	event := &domain.Event{
		Title:     "Forum Tech Dakar",
		StartDate: time.Now().Add(2 * time.Hour),
		EndDate:   time.Now().Add(8 * time.Hour),
		Status:    domain.EventStatusPublished,
	}
	_ = f.events.Create(ctx, event)

	reg := &domain.Registration{
		RegistrationType: domain.RegistrationTypeUser,
		EventID:          event.ID,
		UserID:           &user.ID,
		Status:           status,
		QRCodeData:       "qr-payload-123",
		ScannedCount:     scannedCount,
	}
	if scannedCount > 0 {
		first := time.Now().Add(-10 * time.Minute)
		reg.FirstScanAt = &first
	}
	_ = f.regs.Create(ctx, reg)
	return reg
}

func TestVerificationService_VerifyQR(t *testing.T) {
	ctx := context.Background()

	t.Run("first scan admits", func(t *testing.T) {
		f := newVerifyFixture(t)
		reg := f.seedScannable(t, domain.RegistrationStatusConfirmed, 0)

		resp, err := f.svc.VerifyQR(ctx, &dto.VerifyQRRequest{QRCodeData: "qr-payload-123"}, "gate@example.com")
		if err != nil {
			t.Fatalf("verify failed: %v", err)
		}
		if !resp.Valid {
			t.Error("expected first scan to be valid")
		}
		if resp.ScanStatus != dto.ScanStatusFirstScan {
			t.Errorf("expected scan status first_scan, got %s", resp.ScanStatus)
		}
		if !strings.Contains(resp.Message, "PREMIER SCAN") {
			t.Errorf("unexpected message: %s", resp.Message)
		}
		if resp.ParticipantEmail == nil || *resp.ParticipantEmail != "awa@example.com" {
			t.Error("expected the participant email on a first scan")
		}
		if resp.ScannedCount != 1 {
			t.Errorf("expected scanned count 1, got %d", resp.ScannedCount)
		}

		stored, _ := f.regs.GetByID(ctx, reg.ID)
		if stored.ScannedCount != 1 {
			t.Errorf("expected the scan to be persisted, got count %d", stored.ScannedCount)
		}
		if stored.ScannedBy == nil || *stored.ScannedBy != "gate@example.com" {
			t.Error("expected the scanner identity to be recorded")
		}
	})

	t.Run("second scan warns with elapsed minutes", func(t *testing.T) {
		f := newVerifyFixture(t)
		f.seedScannable(t, domain.RegistrationStatusConfirmed, 1)

		resp, err := f.svc.VerifyQR(ctx, &dto.VerifyQRRequest{QRCodeData: "qr-payload-123"}, "gate@example.com")
		if err != nil {
			t.Fatalf("verify failed: %v", err)
		}
		if resp.Valid {
			t.Error("expected second scan to be refused")
		}
		if resp.ScanStatus != dto.ScanStatusAlreadyScanned {
			t.Errorf("expected scan status already_scanned, got %s", resp.ScanStatus)
		}
		if !strings.Contains(resp.Message, "ALERTE") || !strings.Contains(resp.Message, "10 minutes") {
			t.Errorf("unexpected message: %s", resp.Message)
		}
		if resp.RegistrationStatus != "SCANNED_2_TIMES" {
			t.Errorf("expected SCANNED_2_TIMES, got %s", resp.RegistrationStatus)
		}
		if resp.ParticipantEmail == nil {
			t.Error("expected the participant email on a second scan")
		}
	})

	t.Run("third scan is fraud and hides the email", func(t *testing.T) {
		f := newVerifyFixture(t)
		f.seedScannable(t, domain.RegistrationStatusConfirmed, 2)

		resp, err := f.svc.VerifyQR(ctx, &dto.VerifyQRRequest{QRCodeData: "qr-payload-123"}, "gate@example.com")
		if err != nil {
			t.Fatalf("verify failed: %v", err)
		}
		if resp.Valid {
			t.Error("expected fraud scan to be refused")
		}
		if resp.ScanStatus != dto.ScanStatusFraudDetected {
			t.Errorf("expected scan status fraud_detected, got %s", resp.ScanStatus)
		}
		if !strings.Contains(resp.Message, "FRAUDE") || !strings.Contains(resp.Message, "3 fois") {
			t.Errorf("unexpected message: %s", resp.Message)
		}
		if resp.RegistrationStatus != "FRAUD_DETECTED_3_SCANS" {
			t.Errorf("expected FRAUD_DETECTED_3_SCANS, got %s", resp.RegistrationStatus)
		}
		if resp.ParticipantEmail != nil {
			t.Error("expected the participant email to be withheld on fraud")
		}
	})

	t.Run("fourth scan counts itself too", func(t *testing.T) {
		f := newVerifyFixture(t)
		f.seedScannable(t, domain.RegistrationStatusConfirmed, 3)

		resp, err := f.svc.VerifyQR(ctx, &dto.VerifyQRRequest{QRCodeData: "qr-payload-123"}, "gate@example.com")
		if err != nil {
			t.Fatalf("verify failed: %v", err)
		}
		if !strings.Contains(resp.Message, "4 fois") {
			t.Errorf("unexpected message: %s", resp.Message)
		}
		if resp.RegistrationStatus != "FRAUD_DETECTED_4_SCANS" {
			t.Errorf("expected FRAUD_DETECTED_4_SCANS, got %s", resp.RegistrationStatus)
		}
	})

	t.Run("non-confirmed registration is invalid", func(t *testing.T) {
		f := newVerifyFixture(t)
		f.seedScannable(t, domain.RegistrationStatusWaitlist, 0)

		resp, err := f.svc.VerifyQR(ctx, &dto.VerifyQRRequest{QRCodeData: "qr-payload-123"}, "gate@example.com")
		if err != nil {
			t.Fatalf("verify failed: %v", err)
		}
		if resp.Valid || resp.ScanStatus != dto.ScanStatusInvalid {
			t.Errorf("expected invalid verdict, got valid=%v status=%s", resp.Valid, resp.ScanStatus)
		}
		if !strings.Contains(resp.Message, "waitlist") {
			t.Errorf("expected the registration status in the message, got %s", resp.Message)
		}
	})

	t.Run("unknown payload", func(t *testing.T) {
		f := newVerifyFixture(t)

		resp, err := f.svc.VerifyQR(ctx, &dto.VerifyQRRequest{QRCodeData: "nope"}, "gate@example.com")
		if err != nil {
			t.Fatalf("verify failed: %v", err)
		}
		if resp.Valid || resp.ScanStatus != dto.ScanStatusInvalid {
			t.Errorf("expected invalid verdict, got valid=%v status=%s", resp.Valid, resp.ScanStatus)
		}
		if resp.Message != "❌ QR code invalide" {
			t.Errorf("unexpected message: %s", resp.Message)
		}
	})
}
