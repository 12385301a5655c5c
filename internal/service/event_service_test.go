package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/emldov7/evMonde--sub000/internal/domain"
	"github.com/emldov7/evMonde--sub000/internal/dto"
)

type eventFixture struct {
	svc       EventService
	events    *memEventRepo
	tickets   *memTicketRepo
	reminders *memReminderRepo
}

func newEventFixture() *eventFixture {
	events := newMemEventRepo()
	tickets := newMemTicketRepo()
	reminders := newMemReminderRepo()
	taxonomy := newMemTaxonomyRepo()
	return &eventFixture{
		svc:       NewEventService(events, tickets, reminders, taxonomy),
		events:    events,
		tickets:   tickets,
		reminders: reminders,
	}
}

func validCreateRequest() *dto.CreateEventRequest {
	return &dto.CreateEventRequest{
		Title:       "Forum Tech Dakar",
		EventType:   "conference",
		EventFormat: domain.EventFormatPhysical,
		StartDate:   time.Now().Add(24 * time.Hour),
		EndDate:     time.Now().Add(30 * time.Hour),
		Location:    "CICAD",
		City:        "Dakar",
		CountryCode: "SN",
		Capacity:    100,
		IsFree:      true,
	}
}

func TestEventService_Create_StoresVirtualDetails(t *testing.T) {
	ctx := context.Background()
	f := newEventFixture()

	req := validCreateRequest()
	req.EventFormat = domain.EventFormatHybrid
	req.VirtualPlatform = domain.PlatformZoom
	req.VirtualMeetingURL = "https://zoom.us/j/123456"

	event, err := f.svc.Create(ctx, 1, req)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if event.VirtualPlatform != domain.PlatformZoom {
		t.Errorf("VirtualPlatform = %q, want %q", event.VirtualPlatform, domain.PlatformZoom)
	}
	if event.VirtualMeetingURL != "https://zoom.us/j/123456" {
		t.Errorf("VirtualMeetingURL = %q", event.VirtualMeetingURL)
	}

	physical, err := f.svc.Create(ctx, 1, validCreateRequest())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if physical.VirtualPlatform != "" {
		t.Errorf("expected no platform on a physical event, got %q", physical.VirtualPlatform)
	}
}

func TestEventService_Create_FormatMatrix(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		mutate  func(*dto.CreateEventRequest)
		wantErr bool
	}{
		{
			name:   "physical with venue",
			mutate: func(r *dto.CreateEventRequest) {},
		},
		{
			name: "physical without location",
			mutate: func(r *dto.CreateEventRequest) {
				r.Location = ""
			},
			wantErr: true,
		},
		{
			name: "physical without city",
			mutate: func(r *dto.CreateEventRequest) {
				r.City = ""
			},
			wantErr: true,
		},
		{
			name: "virtual with meeting details",
			mutate: func(r *dto.CreateEventRequest) {
				r.EventFormat = domain.EventFormatVirtual
				r.Location, r.City, r.CountryCode = "", "", ""
				r.VirtualPlatform = domain.PlatformZoom
				r.VirtualMeetingURL = "https://zoom.us/j/123"
			},
		},
		{
			name: "virtual without meeting URL",
			mutate: func(r *dto.CreateEventRequest) {
				r.EventFormat = domain.EventFormatVirtual
				r.Location, r.City, r.CountryCode = "", "", ""
				r.VirtualPlatform = domain.PlatformZoom
			},
			wantErr: true,
		},
		{
			name: "hybrid needs both",
			mutate: func(r *dto.CreateEventRequest) {
				r.EventFormat = domain.EventFormatHybrid
				r.VirtualPlatform = domain.PlatformGoogleMeet
				r.VirtualMeetingURL = "https://meet.google.com/abc"
			},
		},
		{
			name: "hybrid without venue",
			mutate: func(r *dto.CreateEventRequest) {
				r.EventFormat = domain.EventFormatHybrid
				r.Location = ""
				r.VirtualPlatform = domain.PlatformGoogleMeet
				r.VirtualMeetingURL = "https://meet.google.com/abc"
			},
			wantErr: true,
		},
		{
			name: "end before start",
			mutate: func(r *dto.CreateEventRequest) {
				r.EndDate = r.StartDate.Add(-time.Hour)
			},
			wantErr: true,
		},
		{
			name: "no tickets and no capacity",
			mutate: func(r *dto.CreateEventRequest) {
				r.Capacity = 0
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newEventFixture()
			req := validCreateRequest()
			tt.mutate(req)

			_, err := f.svc.Create(ctx, 1, req)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidEventPayload) {
					t.Errorf("expected ErrInvalidEventPayload, got %v", err)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestEventService_Create_FreePaidConsistency(t *testing.T) {
	ctx := context.Background()

	t.Run("free event with priced ticket refused", func(t *testing.T) {
		f := newEventFixture()
		req := validCreateRequest()
		req.IsFree = true
		req.Tickets = []dto.TicketInput{{Name: "Standard", Price: 5000, QuantityAvailable: 50}}

		if _, err := f.svc.Create(ctx, 1, req); !errors.Is(err, ErrInvalidEventPayload) {
			t.Errorf("expected ErrInvalidEventPayload, got %v", err)
		}
	})

	t.Run("paid event with only free tickets refused", func(t *testing.T) {
		f := newEventFixture()
		req := validCreateRequest()
		req.IsFree = false
		req.Tickets = []dto.TicketInput{{Name: "Gratuit", Price: 0, QuantityAvailable: 50}}

		if _, err := f.svc.Create(ctx, 1, req); !errors.Is(err, ErrInvalidEventPayload) {
			t.Errorf("expected ErrInvalidEventPayload, got %v", err)
		}
	})

	t.Run("capacity derives from ticket quantities", func(t *testing.T) {
		f := newEventFixture()
		req := validCreateRequest()
		req.IsFree = false
		req.Capacity = 0
		req.Tickets = []dto.TicketInput{
			{Name: "Standard", Price: 5000, QuantityAvailable: 80},
			{Name: "VIP", Price: 20000, QuantityAvailable: 20},
		}

		event, err := f.svc.Create(ctx, 1, req)
		if err != nil {
			t.Fatalf("create failed: %v", err)
		}
		if event.Capacity != 100 || event.AvailableSeats != 100 {
			t.Errorf("expected capacity 100/100, got %d/%d", event.Capacity, event.AvailableSeats)
		}
		if event.Status != domain.EventStatusDraft {
			t.Errorf("expected new event to be a draft, got %s", event.Status)
		}
		if len(event.Tickets) != 2 {
			t.Errorf("expected 2 ticket tiers, got %d", len(event.Tickets))
		}
	})
}

func TestEventService_Publish(t *testing.T) {
	ctx := context.Background()

	t.Run("publishes a free draft", func(t *testing.T) {
		f := newEventFixture()
		event, err := f.svc.Create(ctx, 1, validCreateRequest())
		if err != nil {
			t.Fatalf("create failed: %v", err)
		}

		published, err := f.svc.Publish(ctx, event.ID, 1, domain.RoleOrganizer)
		if err != nil {
			t.Fatalf("publish failed: %v", err)
		}
		if published.Status != domain.EventStatusPublished || !published.IsPublished {
			t.Errorf("expected published event, got %s", published.Status)
		}
	})

	t.Run("refuses a non-draft", func(t *testing.T) {
		f := newEventFixture()
		event, _ := f.svc.Create(ctx, 1, validCreateRequest())
		if _, err := f.svc.Publish(ctx, event.ID, 1, domain.RoleOrganizer); err != nil {
			t.Fatalf("first publish failed: %v", err)
		}

		if _, err := f.svc.Publish(ctx, event.ID, 1, domain.RoleOrganizer); !errors.Is(err, ErrEventNotDraft) {
			t.Errorf("expected ErrEventNotDraft, got %v", err)
		}
	})

	t.Run("paid event needs an active ticket", func(t *testing.T) {
		f := newEventFixture()
		req := validCreateRequest()
		req.IsFree = false
		inactive := false
		req.Tickets = []dto.TicketInput{{Name: "Standard", Price: 5000, QuantityAvailable: 50, IsActive: &inactive}}
		event, err := f.svc.Create(ctx, 1, req)
		if err != nil {
			t.Fatalf("create failed: %v", err)
		}

		if _, err := f.svc.Publish(ctx, event.ID, 1, domain.RoleOrganizer); !errors.Is(err, ErrNoActiveTicket) {
			t.Errorf("expected ErrNoActiveTicket, got %v", err)
		}
	})

	t.Run("stranger cannot publish, admin can", func(t *testing.T) {
		f := newEventFixture()
		event, _ := f.svc.Create(ctx, 1, validCreateRequest())

		if _, err := f.svc.Publish(ctx, event.ID, 99, domain.RoleOrganizer); !errors.Is(err, ErrNotEventOwner) {
			t.Errorf("expected ErrNotEventOwner, got %v", err)
		}
		if _, err := f.svc.Publish(ctx, event.ID, 99, domain.RoleAdmin); err != nil {
			t.Errorf("expected admin to bypass ownership, got %v", err)
		}
	})
}

func TestEventService_Cancel(t *testing.T) {
	ctx := context.Background()
	f := newEventFixture()
	event, _ := f.svc.Create(ctx, 1, validCreateRequest())

	if _, err := f.svc.Cancel(ctx, event.ID, 1, domain.RoleOrganizer); !errors.Is(err, ErrEventNotPublished) {
		t.Fatalf("expected ErrEventNotPublished for a draft, got %v", err)
	}

	if _, err := f.svc.Publish(ctx, event.ID, 1, domain.RoleOrganizer); err != nil {
		t.Fatalf("publish failed: %v", err)
	}
	cancelled, err := f.svc.Cancel(ctx, event.ID, 1, domain.RoleOrganizer)
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if cancelled.Status != domain.EventStatusCancelled || cancelled.IsPublished {
		t.Errorf("expected cancelled unpublished event, got %s", cancelled.Status)
	}
}

func TestEventService_SaveReminders(t *testing.T) {
	ctx := context.Background()
	f := newEventFixture()
	event, _ := f.svc.Create(ctx, 1, validCreateRequest())

	base := time.Now().Add(12 * time.Hour).Truncate(time.Second)
	first, err := f.svc.CreateReminder(ctx, event.ID, 1, domain.RoleOrganizer, &dto.ReminderInput{
		ScheduledAt: base, Message: "Demain !",
	})
	if err != nil {
		t.Fatalf("create reminder failed: %v", err)
	}
	second, err := f.svc.CreateReminder(ctx, event.ID, 1, domain.RoleOrganizer, &dto.ReminderInput{
		ScheduledAt: base.Add(6 * time.Hour), Message: "Dans 6 heures",
	})
	if err != nil {
		t.Fatalf("create reminder failed: %v", err)
	}

	t.Run("each row touched exactly once", func(t *testing.T) {
		// first kept untouched, second rescheduled, one brand new row,
		// nothing referencing second's old state, no other deletions
		resp, err := f.svc.SaveReminders(ctx, event.ID, 1, domain.RoleOrganizer, &dto.SaveRemindersRequest{
			Reminders: []dto.ReminderInput{
				{ID: &first.ID, ScheduledAt: base, Message: "Demain !"},
				{ID: &second.ID, ScheduledAt: base.Add(3 * time.Hour), Message: "Dans 6 heures"},
				{ScheduledAt: base.Add(9 * time.Hour), Message: "Dernier rappel"},
			},
		})
		if err != nil {
			t.Fatalf("save reminders failed: %v", err)
		}
		if resp.Created != 1 || resp.Updated != 1 || resp.Deleted != 0 {
			t.Errorf("expected 1 created, 1 updated, 0 deleted; got %d/%d/%d",
				resp.Created, resp.Updated, resp.Deleted)
		}
		if len(resp.Reminders) != 3 {
			t.Errorf("expected 3 reminders after save, got %d", len(resp.Reminders))
		}
	})

	t.Run("omitted rows are deleted", func(t *testing.T) {
		resp, err := f.svc.SaveReminders(ctx, event.ID, 1, domain.RoleOrganizer, &dto.SaveRemindersRequest{
			Reminders: []dto.ReminderInput{
				{ID: &first.ID, ScheduledAt: base, Message: "Demain !"},
			},
		})
		if err != nil {
			t.Fatalf("save reminders failed: %v", err)
		}
		if resp.Created != 0 || resp.Updated != 0 || resp.Deleted != 2 {
			t.Errorf("expected 0 created, 0 updated, 2 deleted; got %d/%d/%d",
				resp.Created, resp.Updated, resp.Deleted)
		}
		if len(resp.Reminders) != 1 {
			t.Errorf("expected 1 reminder left, got %d", len(resp.Reminders))
		}
	})

	t.Run("unknown reminder id is refused", func(t *testing.T) {
		ghost := int64(9999)
		_, err := f.svc.SaveReminders(ctx, event.ID, 1, domain.RoleOrganizer, &dto.SaveRemindersRequest{
			Reminders: []dto.ReminderInput{{ID: &ghost, ScheduledAt: base, Message: "?"}},
		})
		if !errors.Is(err, ErrReminderNotFound) {
			t.Errorf("expected ErrReminderNotFound, got %v", err)
		}
	})
}
