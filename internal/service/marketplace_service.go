package service

import (
	"context"
	"errors"
	"time"

	"github.com/emldov7/evMonde--sub000/internal/domain"
	"github.com/emldov7/evMonde--sub000/internal/dto"
	"github.com/emldov7/evMonde--sub000/internal/repository"
	"github.com/emldov7/evMonde--sub000/pkg/crypto"
)

var (
	ErrInsufficientBalance = errors.New("requested amount exceeds the available balance")
	ErrPayoutNotFound      = errors.New("payout not found")
	ErrInvalidTransition   = errors.New("invalid payout status transition")
)

// MarketplaceService defines the interface for public listings and
// organizer finances
type MarketplaceService interface {
	ListPublicEvents(ctx context.Context, q *dto.ListEventsQuery) ([]domain.Event, int, error)
	GetPublicEvent(ctx context.Context, id int64) (*domain.Event, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
	ListTags(ctx context.Context) ([]domain.Tag, error)

	MyBalance(ctx context.Context, organizerID int64) (*domain.OrganizerBalance, error)
	RequestPayout(ctx context.Context, organizerID int64, req *dto.PayoutRequestInput) (*domain.Payout, error)
	MyPayouts(ctx context.Context, organizerID int64) ([]domain.Payout, error)

	ListPayouts(ctx context.Context, q *dto.PayoutListQuery) ([]domain.Payout, int, error)
	ProcessPayout(ctx context.Context, payoutID, adminID int64, req *dto.ProcessPayoutRequest) (*domain.Payout, error)
	CommissionSettings(ctx context.Context) (*domain.CommissionSettings, error)
	UpdateCommissionSettings(ctx context.Context, req *dto.UpdateCommissionSettingsRequest) (*domain.CommissionSettings, error)
}

// marketplaceService implements MarketplaceService
type marketplaceService struct {
	eventRepo    repository.EventRepository
	ticketRepo   repository.TicketRepository
	taxonomyRepo repository.TaxonomyRepository
	payoutRepo   repository.PayoutRepository
	box          *crypto.Box
	currency     string
}

// NewMarketplaceService creates a new MarketplaceService. The crypto box
// encrypts payout account details at rest.
func NewMarketplaceService(
	eventRepo repository.EventRepository,
	ticketRepo repository.TicketRepository,
	taxonomyRepo repository.TaxonomyRepository,
	payoutRepo repository.PayoutRepository,
	box *crypto.Box,
	currency string,
) MarketplaceService {
	return &marketplaceService{
		eventRepo:    eventRepo,
		ticketRepo:   ticketRepo,
		taxonomyRepo: taxonomyRepo,
		payoutRepo:   payoutRepo,
		box:          box,
		currency:     currency,
	}
}

// ListPublicEvents returns published events that have not ended
func (s *marketplaceService) ListPublicEvents(ctx context.Context, q *dto.ListEventsQuery) ([]domain.Event, int, error) {
	q.SetDefaults()
	events, total, err := s.eventRepo.ListPublished(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	for i := range events {
		tickets, err := s.ticketRepo.ListByEvent(ctx, events[i].ID)
		if err != nil {
			return nil, 0, err
		}
		events[i].Tickets = tickets
	}
	return events, total, nil
}

// GetPublicEvent returns one published event with tickets and tags
func (s *marketplaceService) GetPublicEvent(ctx context.Context, id int64) (*domain.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if event == nil || event.Status != domain.EventStatusPublished {
		return nil, ErrEventNotFound
	}

	tickets, err := s.ticketRepo.ListByEvent(ctx, event.ID)
	if err != nil {
		return nil, err
	}
	event.Tickets = tickets

	tags, err := s.taxonomyRepo.ListTagsByEvent(ctx, event.ID)
	if err != nil {
		return nil, err
	}
	event.Tags = tags
	return event, nil
}

// ListCategories returns active categories in display order
func (s *marketplaceService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.taxonomyRepo.ListCategories(ctx, true)
}

// ListTags returns active tags
func (s *marketplaceService) ListTags(ctx context.Context) ([]domain.Tag, error) {
	return s.taxonomyRepo.ListTags(ctx, true)
}

// MyBalance returns the organizer's marketplace balance
func (s *marketplaceService) MyBalance(ctx context.Context, organizerID int64) (*domain.OrganizerBalance, error) {
	balance, err := s.payoutRepo.OrganizerBalance(ctx, organizerID)
	if err != nil {
		return nil, err
	}
	balance.Currency = s.currency
	return balance, nil
}

// RequestPayout opens a withdrawal request, refused when the amount
// exceeds the balance available right now. Account details are encrypted
// before they touch the database.
func (s *marketplaceService) RequestPayout(ctx context.Context, organizerID int64, req *dto.PayoutRequestInput) (*domain.Payout, error) {
	balance, err := s.payoutRepo.OrganizerBalance(ctx, organizerID)
	if err != nil {
		return nil, err
	}
	if req.Amount > balance.AvailableBalance {
		return nil, ErrInsufficientBalance
	}

	encrypted, err := s.box.Encrypt(req.AccountDetails)
	if err != nil {
		return nil, err
	}

	currency := req.Currency
	if currency == "" {
		currency = s.currency
	}

	payout := &domain.Payout{
		OrganizerID:    organizerID,
		Amount:         req.Amount,
		Currency:       currency,
		Status:         domain.PayoutStatusPending,
		PayoutMethod:   req.PayoutMethod,
		AccountDetails: &encrypted,
		RequestedAt:    time.Now(),
	}
	if req.OrganizerMessage != "" {
		payout.OrganizerMessage = &req.OrganizerMessage
	}

	if err := s.payoutRepo.Create(ctx, payout); err != nil {
		return nil, err
	}
	payout.AccountDetails = nil
	return payout, nil
}

// MyPayouts returns the organizer's payout history without account details
func (s *marketplaceService) MyPayouts(ctx context.Context, organizerID int64) ([]domain.Payout, error) {
	payouts, err := s.payoutRepo.ListByOrganizer(ctx, organizerID)
	if err != nil {
		return nil, err
	}
	for i := range payouts {
		payouts[i].AccountDetails = nil
	}
	return payouts, nil
}

// ListPayouts returns the admin payout queue with decrypted account details
func (s *marketplaceService) ListPayouts(ctx context.Context, q *dto.PayoutListQuery) ([]domain.Payout, int, error) {
	q.SetDefaults()
	payouts, total, err := s.payoutRepo.List(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	for i := range payouts {
		if payouts[i].AccountDetails == nil {
			continue
		}
		plain, err := s.box.Decrypt(*payouts[i].AccountDetails)
		if err != nil {
			return nil, 0, err
		}
		payouts[i].AccountDetails = &plain
	}
	return payouts, total, nil
}

// ProcessPayout applies an admin decision, stamping the matching timestamp
func (s *marketplaceService) ProcessPayout(ctx context.Context, payoutID, adminID int64, req *dto.ProcessPayoutRequest) (*domain.Payout, error) {
	payout, err := s.payoutRepo.GetByID(ctx, payoutID)
	if err != nil {
		return nil, err
	}
	if payout == nil {
		return nil, ErrPayoutNotFound
	}

	if valid, _ := req.ValidateTransition(payout.Status); !valid {
		return nil, ErrInvalidTransition
	}

	now := time.Now()
	payout.Status = req.Status
	payout.ProcessedByAdminID = &adminID
	if req.AdminNotes != "" {
		payout.AdminNotes = &req.AdminNotes
	}
	switch req.Status {
	case domain.PayoutStatusApproved:
		payout.ApprovedAt = &now
	case domain.PayoutStatusCompleted:
		payout.CompletedAt = &now
	case domain.PayoutStatusRejected:
		payout.RejectedAt = &now
	}

	if err := s.payoutRepo.Update(ctx, payout); err != nil {
		return nil, err
	}
	payout.AccountDetails = nil
	return payout, nil
}

// CommissionSettings returns the platform commission policy, creating the
// default row on first read
func (s *marketplaceService) CommissionSettings(ctx context.Context) (*domain.CommissionSettings, error) {
	settings, err := s.payoutRepo.GetCommissionSettings(ctx)
	if err != nil {
		return nil, err
	}
	if settings == nil {
		settings = &domain.CommissionSettings{
			ID:                    1,
			DefaultCommissionRate: 5.0,
			IsActive:              true,
		}
		if err := s.payoutRepo.UpdateCommissionSettings(ctx, settings); err != nil {
			return nil, err
		}
	}
	return settings, nil
}

// UpdateCommissionSettings changes the platform commission policy
func (s *marketplaceService) UpdateCommissionSettings(ctx context.Context, req *dto.UpdateCommissionSettingsRequest) (*domain.CommissionSettings, error) {
	settings, err := s.CommissionSettings(ctx)
	if err != nil {
		return nil, err
	}

	if req.DefaultCommissionRate != nil {
		settings.DefaultCommissionRate = *req.DefaultCommissionRate
	}
	if req.MinimumCommissionAmount != nil {
		settings.MinimumCommissionAmount = *req.MinimumCommissionAmount
	}
	if req.IsActive != nil {
		settings.IsActive = *req.IsActive
	}
	if req.Notes != nil {
		settings.Notes = req.Notes
	}

	if err := s.payoutRepo.UpdateCommissionSettings(ctx, settings); err != nil {
		return nil, err
	}
	return settings, nil
}
