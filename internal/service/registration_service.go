package service

import (
	"context"
	"errors"
	"time"

	"github.com/emldov7/evMonde--sub000/internal/domain"
	"github.com/emldov7/evMonde--sub000/internal/dto"
	"github.com/emldov7/evMonde--sub000/internal/mailer"
	"github.com/emldov7/evMonde--sub000/internal/payments"
	"github.com/emldov7/evMonde--sub000/internal/qrticket"
	"github.com/emldov7/evMonde--sub000/internal/repository"
	"github.com/emldov7/evMonde--sub000/pkg/logger"
	"go.uber.org/zap"
)

var (
	ErrEventClosed          = errors.New("event is not open for registration")
	ErrEventEnded           = errors.New("event has already ended")
	ErrAlreadyRegistered    = errors.New("already registered for this event")
	ErrSoldOut              = errors.New("no seats left")
	ErrTicketNotFound       = errors.New("ticket not found")
	ErrTicketRequired       = errors.New("a ticket choice is required for a paid event")
	ErrPaymentNotCompleted  = errors.New("payment not completed")
	ErrRegistrationNotFound = errors.New("registration not found")
	ErrNotRegistrationOwner = errors.New("registration belongs to another user")
)

// RegistrationService defines the interface for event sign-ups and payment
type RegistrationService interface {
	Register(ctx context.Context, eventID, userID int64, req *dto.EventRegistrationRequest) (*domain.Registration, error)
	RegisterGuest(ctx context.Context, eventID int64, req *dto.GuestRegistrationRequest) (*domain.Registration, error)
	RegisterWithPayment(ctx context.Context, eventID, userID int64, req *dto.EventRegistrationRequest) (*dto.CheckoutResponse, error)
	RegisterGuestWithPayment(ctx context.Context, eventID int64, req *dto.GuestRegistrationRequest) (*dto.CheckoutResponse, error)
	ConfirmPayment(ctx context.Context, req *dto.ConfirmPaymentRequest) (*domain.Registration, error)
	Cancel(ctx context.Context, registrationID, userID int64) error
	ListMine(ctx context.Context, userID int64) ([]domain.Registration, error)
	ListForEvent(ctx context.Context, eventID, organizerID int64, role string) ([]domain.Registration, error)
}

// registrationService implements RegistrationService
type registrationService struct {
	eventRepo    repository.EventRepository
	ticketRepo   repository.TicketRepository
	regRepo      repository.RegistrationRepository
	userRepo     repository.UserRepository
	payoutRepo   repository.PayoutRepository
	taxonomyRepo repository.TaxonomyRepository
	gateway      payments.Gateway
	minter       *qrticket.Minter
	mail         *mailer.Mailer
	successURL   string
	cancelURL    string
}

// NewRegistrationService creates a new RegistrationService
func NewRegistrationService(
	eventRepo repository.EventRepository,
	ticketRepo repository.TicketRepository,
	regRepo repository.RegistrationRepository,
	userRepo repository.UserRepository,
	payoutRepo repository.PayoutRepository,
	taxonomyRepo repository.TaxonomyRepository,
	gateway payments.Gateway,
	minter *qrticket.Minter,
	mail *mailer.Mailer,
	successURL, cancelURL string,
) RegistrationService {
	return &registrationService{
		eventRepo:    eventRepo,
		ticketRepo:   ticketRepo,
		regRepo:      regRepo,
		userRepo:     userRepo,
		payoutRepo:   payoutRepo,
		taxonomyRepo: taxonomyRepo,
		gateway:      gateway,
		minter:       minter,
		mail:         mail,
		successURL:   successURL,
		cancelURL:    cancelURL,
	}
}

// Register signs an account holder up for a free event or a free tier. A
// full event yields a waitlist position instead of a refusal.
func (s *registrationService) Register(ctx context.Context, eventID, userID int64, req *dto.EventRegistrationRequest) (*domain.Registration, error) {
	event, ticket, err := s.prepare(ctx, eventID, req.TicketID)
	if err != nil {
		return nil, err
	}
	if ticket != nil && ticket.Price > 0 {
		return nil, ErrTicketRequired
	}

	existing, err := s.regRepo.GetByEventAndUser(ctx, eventID, userID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrAlreadyRegistered
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	reg := newRegistration(domain.RegistrationTypeUser, event, ticket)
	reg.UserID = &userID
	reg.PaymentStatus = domain.PaymentStatusNotRequired

	if event.AvailableSeats <= 0 {
		return s.joinWaitlist(ctx, reg)
	}
	return s.confirmFree(ctx, event, ticket, reg, user)
}

// RegisterGuest signs up a non-account holder for a free event
func (s *registrationService) RegisterGuest(ctx context.Context, eventID int64, req *dto.GuestRegistrationRequest) (*domain.Registration, error) {
	if valid, msg := req.Validate(); !valid {
		return nil, validationError(msg)
	}
	req.Normalize()

	event, ticket, err := s.prepare(ctx, eventID, req.TicketID)
	if err != nil {
		return nil, err
	}
	if ticket != nil && ticket.Price > 0 {
		return nil, ErrTicketRequired
	}

	existing, err := s.regRepo.GetByEventAndGuestEmail(ctx, eventID, req.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrAlreadyRegistered
	}

	reg := newRegistration(domain.RegistrationTypeGuest, event, ticket)
	reg.PaymentStatus = domain.PaymentStatusNotRequired
	fillGuest(reg, req)

	if event.AvailableSeats <= 0 {
		return s.joinWaitlist(ctx, reg)
	}
	return s.confirmFree(ctx, event, ticket, reg, nil)
}

// RegisterWithPayment opens a pending registration and a checkout session
func (s *registrationService) RegisterWithPayment(ctx context.Context, eventID, userID int64, req *dto.EventRegistrationRequest) (*dto.CheckoutResponse, error) {
	event, ticket, err := s.prepare(ctx, eventID, req.TicketID)
	if err != nil {
		return nil, err
	}
	if ticket == nil || ticket.Price <= 0 {
		return nil, ErrTicketRequired
	}

	existing, err := s.regRepo.GetByEventAndUser(ctx, eventID, userID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrAlreadyRegistered
	}
	if event.AvailableSeats <= 0 || ticket.Remaining() <= 0 {
		return nil, ErrSoldOut
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	reg := newRegistration(domain.RegistrationTypeUser, event, ticket)
	reg.UserID = &userID
	reg.Status = domain.RegistrationStatusPending
	reg.PaymentStatus = domain.PaymentStatusPending

	return s.openCheckout(ctx, event, ticket, reg, user.Email)
}

// RegisterGuestWithPayment is the guest variant of the paid flow
func (s *registrationService) RegisterGuestWithPayment(ctx context.Context, eventID int64, req *dto.GuestRegistrationRequest) (*dto.CheckoutResponse, error) {
	if valid, msg := req.Validate(); !valid {
		return nil, validationError(msg)
	}
	req.Normalize()

	event, ticket, err := s.prepare(ctx, eventID, req.TicketID)
	if err != nil {
		return nil, err
	}
	if ticket == nil || ticket.Price <= 0 {
		return nil, ErrTicketRequired
	}

	existing, err := s.regRepo.GetByEventAndGuestEmail(ctx, eventID, req.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrAlreadyRegistered
	}
	if event.AvailableSeats <= 0 || ticket.Remaining() <= 0 {
		return nil, ErrSoldOut
	}

	reg := newRegistration(domain.RegistrationTypeGuest, event, ticket)
	reg.Status = domain.RegistrationStatusPending
	reg.PaymentStatus = domain.PaymentStatusPending
	fillGuest(reg, req)

	return s.openCheckout(ctx, event, ticket, reg, req.Email)
}

// ConfirmPayment finalizes a paid registration once its checkout session
// is paid: seat taken, commission recorded, QR minted, ticket emailed.
func (s *registrationService) ConfirmPayment(ctx context.Context, req *dto.ConfirmPaymentRequest) (*domain.Registration, error) {
	reg, err := s.regRepo.GetByStripeSession(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}
	if reg == nil {
		return nil, ErrRegistrationNotFound
	}
	if reg.Status == domain.RegistrationStatusConfirmed {
		return reg, nil
	}

	session, err := s.gateway.GetCheckout(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}
	if !session.Paid {
		return nil, ErrPaymentNotCompleted
	}

	event, err := s.eventRepo.GetByID(ctx, reg.EventID)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, ErrEventNotFound
	}

	reg.Status = domain.RegistrationStatusConfirmed
	reg.PaymentStatus = domain.PaymentStatusPaid
	reg.AmountPaid = session.AmountTotal
	reg.Currency = session.Currency
	if session.PaymentIntentID != "" {
		reg.StripePaymentIntentID = &session.PaymentIntentID
	}

	if err := s.takeSeat(ctx, event, reg.TicketID); err != nil {
		return nil, err
	}
	if err := s.attachQR(ctx, reg); err != nil {
		return nil, err
	}
	if err := s.regRepo.Update(ctx, reg); err != nil {
		return nil, err
	}

	if err := s.recordCommission(ctx, event, reg); err != nil {
		// The registration is confirmed; a commission bookkeeping failure
		// must not break the attendee flow.
		logger.ErrorCtx(ctx, "commission recording failed",
			zap.Int64("registration_id", reg.ID),
			zap.Error(err))
	}

	s.sendTicket(ctx, event, reg)
	return reg, nil
}

// Cancel releases a registration and its seat
func (s *registrationService) Cancel(ctx context.Context, registrationID, userID int64) error {
	reg, err := s.regRepo.GetByID(ctx, registrationID)
	if err != nil {
		return err
	}
	if reg == nil {
		return ErrRegistrationNotFound
	}
	if reg.UserID == nil || *reg.UserID != userID {
		return ErrNotRegistrationOwner
	}
	if reg.Status == domain.RegistrationStatusCancelled {
		return nil
	}

	releaseSeat := reg.OccupiesSeat()
	reg.Status = domain.RegistrationStatusCancelled
	if err := s.regRepo.Update(ctx, reg); err != nil {
		return err
	}

	if releaseSeat {
		if err := s.eventRepo.AdjustAvailableSeats(ctx, reg.EventID, 1); err != nil {
			return err
		}
		if reg.TicketID != nil {
			if err := s.ticketRepo.IncrementSold(ctx, *reg.TicketID, -1); err != nil {
				return err
			}
		}
		if err := s.allocateWaitlist(ctx, reg.EventID); err != nil {
			// The cancellation itself succeeded; a failed promotion leaves
			// the candidate queued for the next freed seat.
			logger.WarnCtx(ctx, "waitlist allocation failed",
				zap.Int64("event_id", reg.EventID),
				zap.Error(err))
		}
	}
	return nil
}

// allocateWaitlist promotes the oldest waitlisted registration when a seat
// is available. Free events are confirmed outright with a fresh QR ticket;
// paid events stay queued until the attendee starts a checkout themselves.
func (s *registrationService) allocateWaitlist(ctx context.Context, eventID int64) error {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return err
	}
	if event == nil || event.AvailableSeats <= 0 || !event.IsFree {
		return nil
	}

	candidate, err := s.regRepo.OldestWaitlisted(ctx, eventID)
	if err != nil {
		return err
	}
	if candidate == nil {
		return nil
	}

	candidate.Status = domain.RegistrationStatusConfirmed
	candidate.PaymentStatus = domain.PaymentStatusNotRequired
	if err := s.attachQR(ctx, candidate); err != nil {
		return err
	}
	if err := s.regRepo.Update(ctx, candidate); err != nil {
		return err
	}
	if err := s.takeSeat(ctx, event, candidate.TicketID); err != nil {
		return err
	}

	s.sendTicket(ctx, event, candidate)
	return nil
}

// ListMine returns the caller's registrations
func (s *registrationService) ListMine(ctx context.Context, userID int64) ([]domain.Registration, error) {
	return s.regRepo.ListByUser(ctx, userID)
}

// ListForEvent returns an event's attendee list after the ownership check
func (s *registrationService) ListForEvent(ctx context.Context, eventID, organizerID int64, role string) ([]domain.Registration, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, ErrEventNotFound
	}
	if event.OrganizerID != organizerID && role != domain.RoleAdmin {
		return nil, ErrNotEventOwner
	}
	return s.regRepo.ListByEvent(ctx, eventID)
}

func (s *registrationService) prepare(ctx context.Context, eventID int64, ticketID *int64) (*domain.Event, *domain.Ticket, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, nil, err
	}
	if event == nil {
		return nil, nil, ErrEventNotFound
	}
	now := time.Now()
	if event.HasEnded(now) {
		return nil, nil, ErrEventEnded
	}
	if !event.IsOpenForRegistration(now) {
		return nil, nil, ErrEventClosed
	}

	var ticket *domain.Ticket
	if ticketID != nil {
		ticket, err = s.ticketRepo.GetByID(ctx, *ticketID)
		if err != nil {
			return nil, nil, err
		}
		if ticket == nil || ticket.EventID != eventID || !ticket.IsActive {
			return nil, nil, ErrTicketNotFound
		}
	}
	return event, ticket, nil
}

func (s *registrationService) confirmFree(ctx context.Context, event *domain.Event, ticket *domain.Ticket, reg *domain.Registration, user *domain.User) (*domain.Registration, error) {
	reg.Status = domain.RegistrationStatusConfirmed
	if err := s.attachQR(ctx, reg); err != nil {
		return nil, err
	}
	if err := s.regRepo.Create(ctx, reg); err != nil {
		return nil, err
	}
	if err := s.takeSeat(ctx, event, reg.TicketID); err != nil {
		return nil, err
	}
	s.sendTicketTo(ctx, event, reg, reg.HolderName(user), reg.HolderEmail(user))
	return reg, nil
}

func (s *registrationService) joinWaitlist(ctx context.Context, reg *domain.Registration) (*domain.Registration, error) {
	now := time.Now()
	reg.Status = domain.RegistrationStatusWaitlist
	reg.WaitlistJoinedAt = &now
	if err := s.regRepo.Create(ctx, reg); err != nil {
		return nil, err
	}
	return reg, nil
}

func (s *registrationService) openCheckout(ctx context.Context, event *domain.Event, ticket *domain.Ticket, reg *domain.Registration, email string) (*dto.CheckoutResponse, error) {
	reg.AmountPaid = 0
	reg.Currency = ticket.Currency
	if err := s.regRepo.Create(ctx, reg); err != nil {
		return nil, err
	}

	session, err := s.gateway.CreateCheckout(ctx, &payments.CheckoutInput{
		RegistrationID: reg.ID,
		EventTitle:     event.Title,
		TicketName:     ticket.Name,
		Amount:         ticket.Price,
		Currency:       ticket.Currency,
		CustomerEmail:  email,
		SuccessURL:     s.successURL,
		CancelURL:      s.cancelURL,
	})
	if err != nil {
		return nil, err
	}

	reg.StripeSessionID = &session.ID
	if err := s.regRepo.Update(ctx, reg); err != nil {
		return nil, err
	}

	return &dto.CheckoutResponse{
		RegistrationID: reg.ID,
		SessionID:      session.ID,
		CheckoutURL:    session.URL,
	}, nil
}

func (s *registrationService) takeSeat(ctx context.Context, event *domain.Event, ticketID *int64) error {
	if err := s.eventRepo.AdjustAvailableSeats(ctx, event.ID, -1); err != nil {
		return err
	}
	if ticketID != nil {
		if err := s.ticketRepo.IncrementSold(ctx, *ticketID, 1); err != nil {
			return err
		}
	}
	return nil
}

func (s *registrationService) attachQR(ctx context.Context, reg *domain.Registration) error {
	payload := qrticket.NewPayload()
	url, err := s.minter.Mint(payload)
	if err != nil {
		return err
	}
	reg.QRCodeData = payload
	reg.QRCodeURL = url
	return nil
}

// recordCommission books the platform cut at the category override when
// one exists, otherwise at the global rate, floored by the minimum.
func (s *registrationService) recordCommission(ctx context.Context, event *domain.Event, reg *domain.Registration) error {
	settings, err := s.payoutRepo.GetCommissionSettings(ctx)
	if err != nil {
		return err
	}
	if settings == nil || !settings.IsActive {
		return nil
	}

	rate := settings.DefaultCommissionRate
	if event.CategoryID != nil {
		category, err := s.taxonomyRepo.GetCategory(ctx, *event.CategoryID)
		if err != nil {
			return err
		}
		if category != nil && category.CustomCommissionRate != nil {
			rate = *category.CustomCommissionRate
		}
	}

	amount := reg.AmountPaid * rate / 100
	if amount < settings.MinimumCommissionAmount {
		amount = settings.MinimumCommissionAmount
	}

	tx := &domain.CommissionTransaction{
		RegistrationID:        reg.ID,
		EventID:               event.ID,
		OrganizerID:           event.OrganizerID,
		TicketAmount:          reg.AmountPaid,
		CommissionRate:        rate,
		CommissionAmount:      amount,
		NetAmount:             reg.AmountPaid - amount,
		Currency:              reg.Currency,
		StripePaymentIntentID: reg.StripePaymentIntentID,
		CreatedAt:             time.Now(),
	}
	return s.payoutRepo.CreateCommissionTransaction(ctx, tx)
}

func (s *registrationService) sendTicket(ctx context.Context, event *domain.Event, reg *domain.Registration) {
	var user *domain.User
	if reg.UserID != nil {
		u, err := s.userRepo.GetByID(ctx, *reg.UserID)
		if err == nil {
			user = u
		}
	}
	s.sendTicketTo(ctx, event, reg, reg.HolderName(user), reg.HolderEmail(user))
}

func (s *registrationService) sendTicketTo(ctx context.Context, event *domain.Event, reg *domain.Registration, name, email string) {
	if email == "" {
		return
	}
	err := s.mail.SendTicket(ctx, mailer.TicketEmail{
		To:            email,
		Name:          name,
		EventTitle:    event.Title,
		EventDate:     event.StartDate,
		EventLocation: event.Location,
		QRCodeURL:     reg.QRCodeURL,
	})
	if err != nil {
		logger.WarnCtx(ctx, "ticket email failed",
			zap.Int64("registration_id", reg.ID),
			zap.Error(err))
		return
	}
	now := time.Now()
	reg.EmailSent = true
	reg.EmailSentAt = &now
	if reg.ID != 0 {
		_ = s.regRepo.Update(ctx, reg)
	}
}

func newRegistration(regType string, event *domain.Event, ticket *domain.Ticket) *domain.Registration {
	now := time.Now()
	reg := &domain.Registration{
		RegistrationType: regType,
		EventID:          event.ID,
		RegistrationDate: now,
		Currency:         event.Currency,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if ticket != nil {
		reg.TicketID = &ticket.ID
		reg.Currency = ticket.Currency
	}
	return reg
}

func fillGuest(reg *domain.Registration, req *dto.GuestRegistrationRequest) {
	reg.GuestFirstName = req.FirstName
	reg.GuestLastName = req.LastName
	reg.GuestEmail = req.Email
	reg.GuestCountryCode = req.CountryCode
	reg.GuestPhoneCountryCode = req.PhoneCountryCode
	reg.GuestPhone = req.Phone
	reg.GuestPhoneFull = joinPhone(req.PhoneCountryCode, req.Phone)
}
