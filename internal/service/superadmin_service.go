package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/emldov7/evMonde--sub000/internal/domain"
	"github.com/emldov7/evMonde--sub000/internal/dto"
	"github.com/emldov7/evMonde--sub000/internal/repository"
	"github.com/emldov7/evMonde--sub000/pkg/logger"
	"github.com/emldov7/evMonde--sub000/pkg/redis"
	"go.uber.org/zap"
)

var (
	ErrCannotTargetAdmin = errors.New("operation not allowed on an admin account")
	ErrSelfTarget        = errors.New("operation not allowed on own account")
)

const (
	statsCacheKey = "superadmin:stats"
	statsCacheTTL = 60 * time.Second
)

// SuperadminService defines the interface for the platform admin console
type SuperadminService interface {
	ListUsers(ctx context.Context, q *dto.ListUsersQuery) ([]dto.UserResponse, int, error)
	GetUser(ctx context.Context, id int64) (*domain.User, error)
	SuspendUser(ctx context.Context, id, adminID int64, req *dto.SuspendUserRequest) (*domain.User, error)
	UnsuspendUser(ctx context.Context, id int64) (*domain.User, error)
	DeleteUser(ctx context.Context, id, adminID int64) error
	PromoteUser(ctx context.Context, id int64, req *dto.PromoteUserRequest) (*domain.User, error)

	ListEvents(ctx context.Context, q *dto.ListEventsQuery) ([]domain.Event, int, error)
	FeatureEvent(ctx context.Context, id int64, featured bool) (*domain.Event, error)
	FlagEvent(ctx context.Context, id int64, req *dto.FlagEventRequest) (*domain.Event, error)
	UnflagEvent(ctx context.Context, id int64) (*domain.Event, error)
	SetAdminNotes(ctx context.Context, id int64, req *dto.AdminNotesRequest) (*domain.Event, error)
	DeleteEvent(ctx context.Context, id int64) error

	PlatformStats(ctx context.Context) (*dto.PlatformStats, error)
	TopOrganizers(ctx context.Context, limit int) ([]dto.TopOrganizer, error)
	TopEvents(ctx context.Context, limit int) ([]dto.TopEvent, error)
}

// superadminService implements SuperadminService
type superadminService struct {
	userRepo  repository.UserRepository
	eventRepo repository.EventRepository
	statsRepo repository.StatsRepository
	cache     *redis.Client
}

// NewSuperadminService creates a new SuperadminService
func NewSuperadminService(
	userRepo repository.UserRepository,
	eventRepo repository.EventRepository,
	statsRepo repository.StatsRepository,
	cache *redis.Client,
) SuperadminService {
	return &superadminService{
		userRepo:  userRepo,
		eventRepo: eventRepo,
		statsRepo: statsRepo,
		cache:     cache,
	}
}

// ListUsers pages through accounts with role, suspension and search filters
func (s *superadminService) ListUsers(ctx context.Context, q *dto.ListUsersQuery) ([]dto.UserResponse, int, error) {
	q.SetDefaults()
	users, total, err := s.userRepo.List(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	out := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		out = append(out, dto.ToUserResponse(&users[i]))
	}
	return out, total, nil
}

// GetUser returns a single account
func (s *superadminService) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// SuspendUser locks an account out. Admin accounts cannot be suspended.
func (s *superadminService) SuspendUser(ctx context.Context, id, adminID int64, req *dto.SuspendUserRequest) (*domain.User, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.Role == domain.RoleAdmin {
		return nil, ErrCannotTargetAdmin
	}

	now := time.Now()
	user.IsSuspended = true
	user.SuspensionReason = &req.Reason
	user.SuspendedAt = &now
	user.SuspendedByAdminID = &adminID
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	logger.InfoCtx(ctx, "user suspended",
		zap.Int64("user_id", id),
		zap.Int64("admin_id", adminID))
	return user, nil
}

// UnsuspendUser restores a suspended account
func (s *superadminService) UnsuspendUser(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	user.IsSuspended = false
	user.SuspensionReason = nil
	user.SuspendedAt = nil
	user.SuspendedByAdminID = nil
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteUser removes an account. Admins cannot delete themselves or peers.
func (s *superadminService) DeleteUser(ctx context.Context, id, adminID int64) error {
	if id == adminID {
		return ErrSelfTarget
	}
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return err
	}
	if user.Role == domain.RoleAdmin {
		return ErrCannotTargetAdmin
	}
	return s.userRepo.Delete(ctx, id)
}

// PromoteUser changes an account's role
func (s *superadminService) PromoteUser(ctx context.Context, id int64, req *dto.PromoteUserRequest) (*domain.User, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	user.Role = req.Role
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	logger.InfoCtx(ctx, "user role changed",
		zap.Int64("user_id", id),
		zap.String("role", req.Role))
	return user, nil
}

// ListEvents pages through every event regardless of status
func (s *superadminService) ListEvents(ctx context.Context, q *dto.ListEventsQuery) ([]domain.Event, int, error) {
	q.SetDefaults()
	return s.eventRepo.ListAll(ctx, q)
}

// FeatureEvent toggles the homepage highlight on an event
func (s *superadminService) FeatureEvent(ctx context.Context, id int64, featured bool) (*domain.Event, error) {
	event, err := s.getEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	event.IsFeatured = featured
	if err := s.eventRepo.Update(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

// FlagEvent marks an event for moderation review
func (s *superadminService) FlagEvent(ctx context.Context, id int64, req *dto.FlagEventRequest) (*domain.Event, error) {
	event, err := s.getEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	event.IsFlagged = true
	event.FlagReason = &req.Reason
	if err := s.eventRepo.Update(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

// UnflagEvent clears the moderation flag
func (s *superadminService) UnflagEvent(ctx context.Context, id int64) (*domain.Event, error) {
	event, err := s.getEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	event.IsFlagged = false
	event.FlagReason = nil
	if err := s.eventRepo.Update(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

// SetAdminNotes attaches internal moderation notes to an event
func (s *superadminService) SetAdminNotes(ctx context.Context, id int64, req *dto.AdminNotesRequest) (*domain.Event, error) {
	event, err := s.getEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	event.AdminNotes = &req.Notes
	if err := s.eventRepo.Update(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

// DeleteEvent removes an event without an ownership check
func (s *superadminService) DeleteEvent(ctx context.Context, id int64) error {
	event, err := s.getEvent(ctx, id)
	if err != nil {
		return err
	}
	return s.eventRepo.Delete(ctx, event.ID)
}

// PlatformStats returns the dashboard counters, cached for a minute
func (s *superadminService) PlatformStats(ctx context.Context) (*dto.PlatformStats, error) {
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, statsCacheKey).Bytes(); err == nil {
			var stats dto.PlatformStats
			if err := json.Unmarshal(raw, &stats); err == nil {
				return &stats, nil
			}
		}
	}

	stats, err := s.statsRepo.PlatformStats(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if raw, err := json.Marshal(stats); err == nil {
			if err := s.cache.Set(ctx, statsCacheKey, raw, statsCacheTTL).Err(); err != nil {
				logger.WarnCtx(ctx, "stats cache write failed", zap.Error(err))
			}
		}
	}
	return stats, nil
}

// TopOrganizers ranks organizers by revenue
func (s *superadminService) TopOrganizers(ctx context.Context, limit int) ([]dto.TopOrganizer, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	return s.statsRepo.TopOrganizers(ctx, limit)
}

// TopEvents ranks events by confirmed attendance
func (s *superadminService) TopEvents(ctx context.Context, limit int) ([]dto.TopEvent, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	return s.statsRepo.TopEvents(ctx, limit)
}

func (s *superadminService) getEvent(ctx context.Context, id int64) (*domain.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, ErrEventNotFound
	}
	return event, nil
}
