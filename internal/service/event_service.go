package service

import (
	"context"
	"errors"
	"time"

	"github.com/emldov7/evMonde--sub000/internal/domain"
	"github.com/emldov7/evMonde--sub000/internal/dto"
	"github.com/emldov7/evMonde--sub000/internal/repository"
)

var (
	ErrEventNotFound       = errors.New("event not found")
	ErrNotEventOwner       = errors.New("event belongs to another organizer")
	ErrInvalidEventPayload = errors.New("invalid event payload")
	ErrEventNotDraft       = errors.New("only draft events can be published")
	ErrEventNotPublished   = errors.New("only published events can be cancelled")
	ErrNoActiveTicket      = errors.New("a paid event needs at least one active ticket before publishing")
	ErrReminderNotFound    = errors.New("reminder not found")
)

// EventService defines the interface for organizer event management
type EventService interface {
	Create(ctx context.Context, organizerID int64, req *dto.CreateEventRequest) (*domain.Event, error)
	GetByID(ctx context.Context, id int64) (*domain.Event, error)
	GetOwned(ctx context.Context, id, organizerID int64, role string) (*domain.Event, error)
	ListByOrganizer(ctx context.Context, organizerID int64, q *dto.ListEventsQuery) ([]domain.Event, int, error)
	Update(ctx context.Context, id, organizerID int64, role string, req *dto.UpdateEventRequest) (*domain.Event, error)
	Delete(ctx context.Context, id, organizerID int64, role string) error
	Publish(ctx context.Context, id, organizerID int64, role string) (*domain.Event, error)
	Cancel(ctx context.Context, id, organizerID int64, role string) (*domain.Event, error)

	ListReminders(ctx context.Context, eventID, organizerID int64, role string) ([]domain.EventReminder, error)
	CreateReminder(ctx context.Context, eventID, organizerID int64, role string, in *dto.ReminderInput) (*domain.EventReminder, error)
	UpdateReminder(ctx context.Context, eventID, reminderID, organizerID int64, role string, in *dto.ReminderInput) (*domain.EventReminder, error)
	DeleteReminder(ctx context.Context, eventID, reminderID, organizerID int64, role string) error
	SaveReminders(ctx context.Context, eventID, organizerID int64, role string, req *dto.SaveRemindersRequest) (*dto.SaveRemindersResponse, error)
}

// eventService implements EventService
type eventService struct {
	eventRepo    repository.EventRepository
	ticketRepo   repository.TicketRepository
	reminderRepo repository.ReminderRepository
	taxonomyRepo repository.TaxonomyRepository
}

// NewEventService creates a new EventService
func NewEventService(
	eventRepo repository.EventRepository,
	ticketRepo repository.TicketRepository,
	reminderRepo repository.ReminderRepository,
	taxonomyRepo repository.TaxonomyRepository,
) EventService {
	return &eventService{
		eventRepo:    eventRepo,
		ticketRepo:   ticketRepo,
		reminderRepo: reminderRepo,
		taxonomyRepo: taxonomyRepo,
	}
}

// Create validates the wizard payload and stores a draft event. Capacity
// comes from the ticket quantity sum when tickets are given.
func (s *eventService) Create(ctx context.Context, organizerID int64, req *dto.CreateEventRequest) (*domain.Event, error) {
	if valid, msg := req.Validate(); !valid {
		return nil, validationError(msg)
	}

	now := time.Now()
	capacity := req.DerivedCapacity()
	currency := req.Currency
	if currency == "" {
		currency = "XOF"
	}

	event := &domain.Event{
		Title:           req.Title,
		Description:     req.Description,
		FullDescription: req.FullDescription,
		EventType:       req.EventType,
		EventFormat:     req.EventFormat,
		StartDate:       req.StartDate,
		EndDate:         req.EndDate,
		Location:        req.Location,
		Address:         req.Address,
		City:            req.City,
		CountryCode:     req.CountryCode,
		Capacity:        capacity,
		AvailableSeats:  capacity,
		IsFree:          req.IsFree,
		Price:           minTicketPrice(req.Tickets),
		Currency:        currency,
		ImageURL:        req.ImageURL,
		Status:          domain.EventStatusDraft,
		OrganizerID:     organizerID,
		CategoryID:      req.CategoryID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	applyVirtualFields(event, req)

	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, err
	}

	for _, in := range req.Tickets {
		ticket := ticketFromInput(event.ID, currency, in, now)
		if err := s.ticketRepo.Create(ctx, ticket); err != nil {
			return nil, err
		}
		event.Tickets = append(event.Tickets, *ticket)
	}

	if len(req.TagIDs) > 0 {
		if err := s.eventRepo.SetTags(ctx, event.ID, req.TagIDs); err != nil {
			return nil, err
		}
	}

	return s.hydrate(ctx, event)
}

// GetByID retrieves an event with tickets and tags
func (s *eventService) GetByID(ctx context.Context, id int64) (*domain.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, ErrEventNotFound
	}
	return s.hydrate(ctx, event)
}

// GetOwned retrieves an event after checking ownership. Admins bypass the
// ownership check.
func (s *eventService) GetOwned(ctx context.Context, id, organizerID int64, role string) (*domain.Event, error) {
	event, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if event.OrganizerID != organizerID && role != domain.RoleAdmin {
		return nil, ErrNotEventOwner
	}
	return event, nil
}

// ListByOrganizer returns an organizer's own events
func (s *eventService) ListByOrganizer(ctx context.Context, organizerID int64, q *dto.ListEventsQuery) ([]domain.Event, int, error) {
	q.SetDefaults()
	return s.eventRepo.ListByOrganizer(ctx, organizerID, q)
}

// Update re-validates the full payload and replaces the event document.
// Ticket tiers present in the payload with an ID are updated, new ones
// created, missing ones deactivated rather than dropped so sold tickets
// keep their reference.
func (s *eventService) Update(ctx context.Context, id, organizerID int64, role string, req *dto.UpdateEventRequest) (*domain.Event, error) {
	if valid, msg := req.Validate(); !valid {
		return nil, validationError(msg)
	}

	event, err := s.GetOwned(ctx, id, organizerID, role)
	if err != nil {
		return nil, err
	}

	seatsTaken := event.Capacity - event.AvailableSeats
	capacity := req.DerivedCapacity()
	currency := req.Currency
	if currency == "" {
		currency = event.Currency
	}

	event.Title = req.Title
	event.Description = req.Description
	event.FullDescription = req.FullDescription
	event.EventType = req.EventType
	event.EventFormat = req.EventFormat
	event.StartDate = req.StartDate
	event.EndDate = req.EndDate
	event.Location = req.Location
	event.Address = req.Address
	event.City = req.City
	event.CountryCode = req.CountryCode
	event.Capacity = capacity
	event.AvailableSeats = capacity - seatsTaken
	if event.AvailableSeats < 0 {
		event.AvailableSeats = 0
	}
	event.IsFree = req.IsFree
	event.Price = minTicketPrice(req.Tickets)
	event.Currency = currency
	event.ImageURL = req.ImageURL
	event.CategoryID = req.CategoryID
	applyVirtualFields(event, req)

	if err := s.eventRepo.Update(ctx, event); err != nil {
		return nil, err
	}

	if err := s.reconcileTickets(ctx, event, currency, req.Tickets); err != nil {
		return nil, err
	}
	if err := s.eventRepo.SetTags(ctx, event.ID, req.TagIDs); err != nil {
		return nil, err
	}

	return s.hydrate(ctx, event)
}

// Delete removes an event after the ownership check
func (s *eventService) Delete(ctx context.Context, id, organizerID int64, role string) error {
	if _, err := s.GetOwned(ctx, id, organizerID, role); err != nil {
		return err
	}
	return s.eventRepo.Delete(ctx, id)
}

// Publish moves a draft to published. A payable event must carry an
// active ticket tier; a free one only needs capacity.
func (s *eventService) Publish(ctx context.Context, id, organizerID int64, role string) (*domain.Event, error) {
	event, err := s.GetOwned(ctx, id, organizerID, role)
	if err != nil {
		return nil, err
	}
	if event.Status != domain.EventStatusDraft {
		return nil, ErrEventNotDraft
	}

	if !event.IsFree {
		hasActive := false
		for _, t := range event.Tickets {
			if t.IsActive {
				hasActive = true
				break
			}
		}
		if !hasActive {
			return nil, ErrNoActiveTicket
		}
	}

	event.Status = domain.EventStatusPublished
	event.IsPublished = true
	if err := s.eventRepo.Update(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

// Cancel moves a published event to cancelled, closing registrations
func (s *eventService) Cancel(ctx context.Context, id, organizerID int64, role string) (*domain.Event, error) {
	event, err := s.GetOwned(ctx, id, organizerID, role)
	if err != nil {
		return nil, err
	}
	if event.Status != domain.EventStatusPublished {
		return nil, ErrEventNotPublished
	}

	event.Status = domain.EventStatusCancelled
	event.IsPublished = false
	if err := s.eventRepo.Update(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

// ListReminders returns an event's reminders after the ownership check
func (s *eventService) ListReminders(ctx context.Context, eventID, organizerID int64, role string) ([]domain.EventReminder, error) {
	if _, err := s.GetOwned(ctx, eventID, organizerID, role); err != nil {
		return nil, err
	}
	return s.reminderRepo.ListByEvent(ctx, eventID)
}

// CreateReminder adds one reminder to an event
func (s *eventService) CreateReminder(ctx context.Context, eventID, organizerID int64, role string, in *dto.ReminderInput) (*domain.EventReminder, error) {
	if _, err := s.GetOwned(ctx, eventID, organizerID, role); err != nil {
		return nil, err
	}
	reminder := &domain.EventReminder{
		EventID:     eventID,
		ScheduledAt: in.ScheduledAt,
		Message:     in.Message,
		CreatedAt:   time.Now(),
	}
	if err := s.reminderRepo.Create(ctx, reminder); err != nil {
		return nil, err
	}
	return reminder, nil
}

// UpdateReminder reschedules or rewords one reminder
func (s *eventService) UpdateReminder(ctx context.Context, eventID, reminderID, organizerID int64, role string, in *dto.ReminderInput) (*domain.EventReminder, error) {
	if _, err := s.GetOwned(ctx, eventID, organizerID, role); err != nil {
		return nil, err
	}
	reminder, err := s.reminderRepo.GetByID(ctx, reminderID)
	if err != nil {
		return nil, err
	}
	if reminder == nil || reminder.EventID != eventID {
		return nil, ErrReminderNotFound
	}

	reminder.ScheduledAt = in.ScheduledAt
	reminder.Message = in.Message
	if err := s.reminderRepo.Update(ctx, reminder); err != nil {
		return nil, err
	}
	return reminder, nil
}

// DeleteReminder removes one reminder
func (s *eventService) DeleteReminder(ctx context.Context, eventID, reminderID, organizerID int64, role string) error {
	if _, err := s.GetOwned(ctx, eventID, organizerID, role); err != nil {
		return err
	}
	reminder, err := s.reminderRepo.GetByID(ctx, reminderID)
	if err != nil {
		return err
	}
	if reminder == nil || reminder.EventID != eventID {
		return ErrReminderNotFound
	}
	return s.reminderRepo.Delete(ctx, reminderID)
}

// SaveReminders applies a three-way diff between the stored reminders and
// the submitted set: rows without an ID are created, stored rows missing
// from the payload are deleted, and rows whose schedule or message changed
// are updated. Each row is touched exactly once whatever the edit order.
func (s *eventService) SaveReminders(ctx context.Context, eventID, organizerID int64, role string, req *dto.SaveRemindersRequest) (*dto.SaveRemindersResponse, error) {
	if _, err := s.GetOwned(ctx, eventID, organizerID, role); err != nil {
		return nil, err
	}

	existing, err := s.reminderRepo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]*domain.EventReminder, len(existing))
	for i := range existing {
		byID[existing[i].ID] = &existing[i]
	}

	resp := &dto.SaveRemindersResponse{}
	seen := make(map[int64]bool, len(req.Reminders))

	for _, in := range req.Reminders {
		if in.ID == nil {
			reminder := &domain.EventReminder{
				EventID:     eventID,
				ScheduledAt: in.ScheduledAt,
				Message:     in.Message,
				CreatedAt:   time.Now(),
			}
			if err := s.reminderRepo.Create(ctx, reminder); err != nil {
				return nil, err
			}
			resp.Created++
			continue
		}

		current, ok := byID[*in.ID]
		if !ok {
			return nil, ErrReminderNotFound
		}
		seen[*in.ID] = true

		if current.ScheduledAt.Equal(in.ScheduledAt) && current.Message == in.Message {
			continue
		}
		current.ScheduledAt = in.ScheduledAt
		current.Message = in.Message
		if err := s.reminderRepo.Update(ctx, current); err != nil {
			return nil, err
		}
		resp.Updated++
	}

	for id := range byID {
		if !seen[id] {
			if err := s.reminderRepo.Delete(ctx, id); err != nil {
				return nil, err
			}
			resp.Deleted++
		}
	}

	resp.Reminders, err = s.reminderRepo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (s *eventService) hydrate(ctx context.Context, event *domain.Event) (*domain.Event, error) {
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

// reconcileTickets replaces the tier set with the payload's. Missing tiers
// are deactivated, never deleted, so existing registrations keep a valid
// ticket reference.
func (s *eventService) reconcileTickets(ctx context.Context, event *domain.Event, currency string, inputs []dto.TicketInput) error {
	existing, err := s.ticketRepo.ListByEvent(ctx, event.ID)
	if err != nil {
		return err
	}
	byID := make(map[int64]*domain.Ticket, len(existing))
	for i := range existing {
		byID[existing[i].ID] = &existing[i]
	}

	seen := make(map[int64]bool, len(inputs))
	now := time.Now()
	for _, in := range inputs {
		if in.ID == nil {
			if err := s.ticketRepo.Create(ctx, ticketFromInput(event.ID, currency, in, now)); err != nil {
				return err
			}
			continue
		}
		current, ok := byID[*in.ID]
		if !ok {
			continue
		}
		seen[*in.ID] = true
		current.Name = in.Name
		current.Description = in.Description
		current.Price = in.Price
		current.QuantityAvailable = in.QuantityAvailable
		if in.Currency != "" {
			current.Currency = in.Currency
		}
		if in.IsActive != nil {
			current.IsActive = *in.IsActive
		}
		if err := s.ticketRepo.Update(ctx, current); err != nil {
			return err
		}
	}

	for id, ticket := range byID {
		if seen[id] {
			continue
		}
		if ticket.QuantitySold == 0 {
			if err := s.ticketRepo.Delete(ctx, id); err != nil {
				return err
			}
			continue
		}
		ticket.IsActive = false
		if err := s.ticketRepo.Update(ctx, ticket); err != nil {
			return err
		}
	}
	return nil
}

func ticketFromInput(eventID int64, currency string, in dto.TicketInput, now time.Time) *domain.Ticket {
	ticketCurrency := in.Currency
	if ticketCurrency == "" {
		ticketCurrency = currency
	}
	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}
	return &domain.Ticket{
		EventID:           eventID,
		Name:              in.Name,
		Description:       in.Description,
		Price:             in.Price,
		Currency:          ticketCurrency,
		QuantityAvailable: in.QuantityAvailable,
		IsActive:          active,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

func applyVirtualFields(event *domain.Event, req *dto.CreateEventRequest) {
	event.VirtualPlatform = req.VirtualPlatform
	event.VirtualMeetingURL = req.VirtualMeetingURL
	event.VirtualMeetingID = req.VirtualMeetingID
	event.VirtualMeetingPassword = req.VirtualMeetingPassword
	event.VirtualInstructions = req.VirtualInstructions
}

func minTicketPrice(tickets []dto.TicketInput) float64 {
	min := 0.0
	for i, t := range tickets {
		if i == 0 || t.Price < min {
			min = t.Price
		}
	}
	return min
}

// validationError wraps a human message in ErrInvalidEventPayload so
// handlers can map it to a 400 while keeping the message.
type payloadError struct {
	msg string
}

func (e *payloadError) Error() string { return e.msg }

func (e *payloadError) Is(target error) bool { return target == ErrInvalidEventPayload }

func validationError(msg string) error {
	return &payloadError{msg: msg}
}
