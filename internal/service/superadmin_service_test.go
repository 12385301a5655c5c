package service

import (
	"context"
	"errors"
	"testing"

	"github.com/emldov7/evMonde--sub000/internal/domain"
	"github.com/emldov7/evMonde--sub000/internal/dto"
)

type superadminFixture struct {
	svc    SuperadminService
	users  *memUserRepo
	events *memEventRepo
	stats  *memStatsRepo
}

func newSuperadminFixture() *superadminFixture {
	users := newMemUserRepo()
	events := newMemEventRepo()
	stats := &memStatsRepo{}
	return &superadminFixture{
		svc:    NewSuperadminService(users, events, stats, nil),
		users:  users,
		events: events,
		stats:  stats,
	}
}

func TestSuperadminService_SuspendUser(t *testing.T) {
	ctx := context.Background()

	t.Run("suspends with reason and audit fields", func(t *testing.T) {
		f := newSuperadminFixture()
		admin := seedUser(f.users, "admin@evmonde.test", "motdepasse", domain.RoleAdmin)
		target := seedUser(f.users, "orga@example.com", "motdepasse", domain.RoleOrganizer)

		user, err := f.svc.SuspendUser(ctx, target.ID, admin.ID, &dto.SuspendUserRequest{Reason: "fraude aux billets"})
		if err != nil {
			t.Fatalf("suspend failed: %v", err)
		}
		if !user.IsSuspended {
			t.Error("expected the account suspended")
		}
		if user.SuspensionReason == nil || *user.SuspensionReason != "fraude aux billets" {
			t.Error("expected the suspension reason stored")
		}
		if user.SuspendedByAdminID == nil || *user.SuspendedByAdminID != admin.ID {
			t.Error("expected the acting admin recorded")
		}
	})

	t.Run("admin accounts cannot be suspended", func(t *testing.T) {
		f := newSuperadminFixture()
		admin := seedUser(f.users, "admin@evmonde.test", "motdepasse", domain.RoleAdmin)
		peer := seedUser(f.users, "peer@evmonde.test", "motdepasse", domain.RoleAdmin)

		_, err := f.svc.SuspendUser(ctx, peer.ID, admin.ID, &dto.SuspendUserRequest{Reason: "test"})
		if !errors.Is(err, ErrCannotTargetAdmin) {
			t.Errorf("expected ErrCannotTargetAdmin, got %v", err)
		}
	})

	t.Run("unsuspend clears every suspension field", func(t *testing.T) {
		f := newSuperadminFixture()
		admin := seedUser(f.users, "admin@evmonde.test", "motdepasse", domain.RoleAdmin)
		target := seedUser(f.users, "orga@example.com", "motdepasse", domain.RoleOrganizer)
		if _, err := f.svc.SuspendUser(ctx, target.ID, admin.ID, &dto.SuspendUserRequest{Reason: "test"}); err != nil {
			t.Fatalf("suspend failed: %v", err)
		}

		user, err := f.svc.UnsuspendUser(ctx, target.ID)
		if err != nil {
			t.Fatalf("unsuspend failed: %v", err)
		}
		if user.IsSuspended || user.SuspensionReason != nil || user.SuspendedAt != nil || user.SuspendedByAdminID != nil {
			t.Error("expected every suspension field cleared")
		}
	})
}

func TestSuperadminService_DeleteUser(t *testing.T) {
	ctx := context.Background()

	t.Run("cannot delete self", func(t *testing.T) {
		f := newSuperadminFixture()
		admin := seedUser(f.users, "admin@evmonde.test", "motdepasse", domain.RoleAdmin)

		if err := f.svc.DeleteUser(ctx, admin.ID, admin.ID); !errors.Is(err, ErrSelfTarget) {
			t.Errorf("expected ErrSelfTarget, got %v", err)
		}
	})

	t.Run("cannot delete another admin", func(t *testing.T) {
		f := newSuperadminFixture()
		admin := seedUser(f.users, "admin@evmonde.test", "motdepasse", domain.RoleAdmin)
		peer := seedUser(f.users, "peer@evmonde.test", "motdepasse", domain.RoleAdmin)

		if err := f.svc.DeleteUser(ctx, peer.ID, admin.ID); !errors.Is(err, ErrCannotTargetAdmin) {
			t.Errorf("expected ErrCannotTargetAdmin, got %v", err)
		}
	})

	t.Run("deletes a regular account", func(t *testing.T) {
		f := newSuperadminFixture()
		admin := seedUser(f.users, "admin@evmonde.test", "motdepasse", domain.RoleAdmin)
		target := seedUser(f.users, "orga@example.com", "motdepasse", domain.RoleOrganizer)

		if err := f.svc.DeleteUser(ctx, target.ID, admin.ID); err != nil {
			t.Fatalf("delete failed: %v", err)
		}
		if u, _ := f.users.GetByID(ctx, target.ID); u != nil {
			t.Error("expected the account gone")
		}
	})
}

func TestSuperadminService_EventModeration(t *testing.T) {
	ctx := context.Background()
	f := newSuperadminFixture()
	event := &domain.Event{Title: "Forum Tech Dakar", Status: domain.EventStatusPublished}
	_ = f.events.Create(ctx, event)

	featured, err := f.svc.FeatureEvent(ctx, event.ID, true)
	if err != nil {
		t.Fatalf("feature failed: %v", err)
	}
	if !featured.IsFeatured {
		t.Error("expected the event featured")
	}

	flagged, err := f.svc.FlagEvent(ctx, event.ID, &dto.FlagEventRequest{Reason: "contenu trompeur"})
	if err != nil {
		t.Fatalf("flag failed: %v", err)
	}
	if !flagged.IsFlagged || flagged.FlagReason == nil {
		t.Error("expected the event flagged with a reason")
	}

	unflagged, err := f.svc.UnflagEvent(ctx, event.ID)
	if err != nil {
		t.Fatalf("unflag failed: %v", err)
	}
	if unflagged.IsFlagged || unflagged.FlagReason != nil {
		t.Error("expected the flag cleared")
	}

	if _, err := f.svc.FeatureEvent(ctx, 999, true); !errors.Is(err, ErrEventNotFound) {
		t.Errorf("expected ErrEventNotFound, got %v", err)
	}
}

func TestSuperadminService_Rankings(t *testing.T) {
	ctx := context.Background()
	f := newSuperadminFixture()
	for i := 0; i < 20; i++ {
		f.stats.organizers = append(f.stats.organizers, dto.TopOrganizer{ID: int64(i + 1)})
	}

	t.Run("default limit", func(t *testing.T) {
		rows, err := f.svc.TopOrganizers(ctx, 0)
		if err != nil {
			t.Fatalf("ranking failed: %v", err)
		}
		if len(rows) != 10 {
			t.Errorf("expected the default limit of 10, got %d", len(rows))
		}
	})

	t.Run("oversized limit clamped", func(t *testing.T) {
		rows, err := f.svc.TopOrganizers(ctx, 500)
		if err != nil {
			t.Fatalf("ranking failed: %v", err)
		}
		if len(rows) != 10 {
			t.Errorf("expected the clamp to 10, got %d", len(rows))
		}
	})
}
