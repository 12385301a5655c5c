package repository

import (
	"context"
	"time"

	"github.com/emldov7/evMonde--sub000/internal/domain"
	"github.com/emldov7/evMonde--sub000/internal/dto"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, q *dto.ListUsersQuery) ([]domain.User, int, error)
	TouchLastLogin(ctx context.Context, id int64, at time.Time) error
}

// EventRepository defines the interface for event data access
type EventRepository interface {
	Create(ctx context.Context, event *domain.Event) error
	GetByID(ctx context.Context, id int64) (*domain.Event, error)
	Update(ctx context.Context, event *domain.Event) error
	Delete(ctx context.Context, id int64) error
	ListByOrganizer(ctx context.Context, organizerID int64, q *dto.ListEventsQuery) ([]domain.Event, int, error)
	ListPublished(ctx context.Context, q *dto.ListEventsQuery) ([]domain.Event, int, error)
	ListAll(ctx context.Context, q *dto.ListEventsQuery) ([]domain.Event, int, error)
	AdjustAvailableSeats(ctx context.Context, id int64, delta int) error
	SetTags(ctx context.Context, eventID int64, tagIDs []int64) error
}

// TicketRepository defines the interface for ticket tier data access
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id int64) (*domain.Ticket, error)
	ListByEvent(ctx context.Context, eventID int64) ([]domain.Ticket, error)
	Update(ctx context.Context, ticket *domain.Ticket) error
	Delete(ctx context.Context, id int64) error
	IncrementSold(ctx context.Context, id int64, delta int) error
}

// RegistrationRepository defines the interface for registration data access
type RegistrationRepository interface {
	Create(ctx context.Context, reg *domain.Registration) error
	GetByID(ctx context.Context, id int64) (*domain.Registration, error)
	GetByQRCode(ctx context.Context, qrCodeData string) (*domain.Registration, error)
	GetByStripeSession(ctx context.Context, sessionID string) (*domain.Registration, error)
	GetByEventAndUser(ctx context.Context, eventID, userID int64) (*domain.Registration, error)
	GetByEventAndGuestEmail(ctx context.Context, eventID int64, email string) (*domain.Registration, error)
	Update(ctx context.Context, reg *domain.Registration) error
	ListByUser(ctx context.Context, userID int64) ([]domain.Registration, error)
	ListByEvent(ctx context.Context, eventID int64) ([]domain.Registration, error)
	CountConfirmedByEvent(ctx context.Context, eventID int64) (int, error)
	OldestWaitlisted(ctx context.Context, eventID int64) (*domain.Registration, error)
	RecordScan(ctx context.Context, id int64, scannedBy string, at time.Time) error
}

// ReminderRepository defines the interface for event reminder data access
type ReminderRepository interface {
	Create(ctx context.Context, reminder *domain.EventReminder) error
	GetByID(ctx context.Context, id int64) (*domain.EventReminder, error)
	ListByEvent(ctx context.Context, eventID int64) ([]domain.EventReminder, error)
	ListDue(ctx context.Context, now time.Time, grace time.Duration, limit int) ([]domain.EventReminder, error)
	Update(ctx context.Context, reminder *domain.EventReminder) error
	MarkSent(ctx context.Context, id int64, at time.Time) error
	Delete(ctx context.Context, id int64) error
}

// TaxonomyRepository defines the interface for category and tag data access
type TaxonomyRepository interface {
	ListCategories(ctx context.Context, activeOnly bool) ([]domain.Category, error)
	GetCategory(ctx context.Context, id int64) (*domain.Category, error)
	ListTags(ctx context.Context, activeOnly bool) ([]domain.Tag, error)
	ListTagsByEvent(ctx context.Context, eventID int64) ([]domain.Tag, error)
}

// PayoutRepository defines the interface for payout and commission data access
type PayoutRepository interface {
	Create(ctx context.Context, payout *domain.Payout) error
	GetByID(ctx context.Context, id int64) (*domain.Payout, error)
	Update(ctx context.Context, payout *domain.Payout) error
	ListByOrganizer(ctx context.Context, organizerID int64) ([]domain.Payout, error)
	List(ctx context.Context, q *dto.PayoutListQuery) ([]domain.Payout, int, error)

	GetCommissionSettings(ctx context.Context) (*domain.CommissionSettings, error)
	UpdateCommissionSettings(ctx context.Context, s *domain.CommissionSettings) error
	CreateCommissionTransaction(ctx context.Context, tx *domain.CommissionTransaction) error

	OrganizerBalance(ctx context.Context, organizerID int64) (*domain.OrganizerBalance, error)
}

// StatsRepository defines the interface for platform statistics queries
type StatsRepository interface {
	PlatformStats(ctx context.Context) (*dto.PlatformStats, error)
	TopOrganizers(ctx context.Context, limit int) ([]dto.TopOrganizer, error)
	TopEvents(ctx context.Context, limit int) ([]dto.TopEvent, error)
}
