package service

import (
	"context"
	"fmt"
	"time"

	"github.com/emldov7/evMonde--sub000/internal/domain"
	"github.com/emldov7/evMonde--sub000/internal/dto"
	"github.com/emldov7/evMonde--sub000/internal/repository"
	"github.com/emldov7/evMonde--sub000/internal/telemetry"
)

// VerificationService defines the interface for QR ticket checks at the door
type VerificationService interface {
	VerifyQR(ctx context.Context, req *dto.VerifyQRRequest, scannedBy string) (*dto.VerifyQRResponse, error)
}

// verificationService implements VerificationService
type verificationService struct {
	regRepo   repository.RegistrationRepository
	eventRepo repository.EventRepository
	userRepo  repository.UserRepository
	scans     *telemetry.Counter
}

// NewVerificationService creates a new VerificationService
func NewVerificationService(
	regRepo repository.RegistrationRepository,
	eventRepo repository.EventRepository,
	userRepo repository.UserRepository,
) VerificationService {
	scans, _ := telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "qr_scans_total",
		Description: "QR verification attempts by outcome",
		Unit:        "{scan}",
	})
	return &verificationService{
		regRepo:   regRepo,
		eventRepo: eventRepo,
		userRepo:  userRepo,
		scans:     scans,
	}
}

// VerifyQR resolves a scanned payload and grades it. The first scan admits,
// a second scan warns, any further scan is refused and the attendee email
// is withheld from the scanner.
func (s *verificationService) VerifyQR(ctx context.Context, req *dto.VerifyQRRequest, scannedBy string) (*dto.VerifyQRResponse, error) {
	reg, err := s.regRepo.GetByQRCode(ctx, req.QRCodeData)
	if err != nil {
		return nil, err
	}
	if reg == nil {
		s.count(ctx, dto.ScanStatusInvalid)
		return &dto.VerifyQRResponse{
			Valid:      false,
			ScanStatus: dto.ScanStatusInvalid,
			Message:    "❌ QR code invalide",
		}, nil
	}

	event, err := s.eventRepo.GetByID(ctx, reg.EventID)
	if err != nil {
		return nil, err
	}

	var user *domain.User
	if reg.UserID != nil {
		user, err = s.userRepo.GetByID(ctx, *reg.UserID)
		if err != nil {
			return nil, err
		}
	}

	resp := &dto.VerifyQRResponse{
		ParticipantName:    reg.HolderName(user),
		RegistrationStatus: reg.Status,
		ScannedCount:       reg.ScannedCount,
	}
	if event != nil {
		resp.EventTitle = event.Title
		resp.EventDate = &event.StartDate
	}

	if reg.Status != domain.RegistrationStatusConfirmed {
		resp.Valid = false
		resp.ScanStatus = dto.ScanStatusInvalid
		resp.Message = fmt.Sprintf("❌ Inscription %s. Statut invalide.", reg.Status)
		email := reg.HolderEmail(user)
		if email != "" {
			resp.ParticipantEmail = &email
		}
		s.count(ctx, dto.ScanStatusInvalid)
		return resp, nil
	}

	now := time.Now()
	switch {
	case reg.ScannedCount == 0:
		resp.Valid = true
		resp.ScanStatus = dto.ScanStatusFirstScan
		resp.Message = "✅ QR code valide ! Accès autorisé. PREMIER SCAN."
		email := reg.HolderEmail(user)
		if email != "" {
			resp.ParticipantEmail = &email
		}
	case reg.ScannedCount == 1:
		minutes := 0
		if reg.FirstScanAt != nil {
			minutes = int(now.Sub(*reg.FirstScanAt).Minutes())
		}
		resp.Valid = false
		resp.ScanStatus = dto.ScanStatusAlreadyScanned
		resp.Message = fmt.Sprintf("⚠️ ALERTE ! Ce QR code a déjà été scanné il y a %d minutes. Possibilité de fraude !", minutes)
		resp.RegistrationStatus = "SCANNED_2_TIMES"
		email := reg.HolderEmail(user)
		if email != "" {
			resp.ParticipantEmail = &email
		}
	default:
		// The count reported includes the scan being graded right now.
		total := reg.ScannedCount + 1
		resp.Valid = false
		resp.ScanStatus = dto.ScanStatusFraudDetected
		resp.Message = fmt.Sprintf("🚨 FRAUDE DÉTECTÉE ! Ce QR code a été scanné %d fois. ACCÈS REFUSÉ !", total)
		resp.RegistrationStatus = fmt.Sprintf("FRAUD_DETECTED_%d_SCANS", total)
		resp.ParticipantEmail = nil
	}

	if err := s.regRepo.RecordScan(ctx, reg.ID, scannedBy, now); err != nil {
		return nil, err
	}
	resp.ScannedCount = reg.ScannedCount + 1
	s.count(ctx, resp.ScanStatus)
	return resp, nil
}

func (s *verificationService) count(ctx context.Context, status string) {
	if s.scans == nil {
		return
	}
	s.scans.Add(ctx, 1, telemetry.ScanStatusAttr(status))
}
