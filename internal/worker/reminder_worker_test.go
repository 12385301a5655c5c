package worker

import (
	"context"
	"testing"
	"time"

	"github.com/emldov7/evMonde--sub000/internal/domain"
	"github.com/emldov7/evMonde--sub000/internal/mailer"
	"github.com/emldov7/evMonde--sub000/internal/repository"
)

func TestDefaultReminderWorkerConfig(t *testing.T) {
	config := DefaultReminderWorkerConfig()

	if config.ScanInterval != time.Minute {
		t.Errorf("ScanInterval = %v, want %v", config.ScanInterval, time.Minute)
	}

	if config.Grace != 2*time.Minute {
		t.Errorf("Grace = %v, want %v", config.Grace, 2*time.Minute)
	}

	if config.BatchSize != 100 {
		t.Errorf("BatchSize = %v, want %v", config.BatchSize, 100)
	}
}

func TestNewReminderWorker_WithDefaultConfig(t *testing.T) {
	worker := NewReminderWorker(nil, nil, nil, nil, nil, nil)

	if worker == nil {
		t.Fatal("NewReminderWorker() returned nil")
	}

	if worker.config == nil {
		t.Fatal("Worker config should not be nil")
	}

	if worker.config.ScanInterval != time.Minute {
		t.Errorf("Default ScanInterval = %v, want %v", worker.config.ScanInterval, time.Minute)
	}

	if worker.running {
		t.Error("Worker should not be running initially")
	}

	if worker.totalSent != 0 {
		t.Errorf("TotalSent = %v, want %v", worker.totalSent, 0)
	}
}

func TestNewReminderWorker_WithCustomConfig(t *testing.T) {
	customConfig := &ReminderWorkerConfig{
		ScanInterval: 15 * time.Second,
		Grace:        5 * time.Minute,
		BatchSize:    20,
	}

	worker := NewReminderWorker(nil, nil, nil, nil, nil, customConfig)

	if worker.config.ScanInterval != 15*time.Second {
		t.Errorf("ScanInterval = %v, want %v", worker.config.ScanInterval, 15*time.Second)
	}

	if worker.config.BatchSize != 20 {
		t.Errorf("BatchSize = %v, want %v", worker.config.BatchSize, 20)
	}
}

func TestReminderWorker_GetStats(t *testing.T) {
	worker := NewReminderWorker(nil, nil, nil, nil, nil, nil)

	stats := worker.GetStats()
	if stats.IsRunning {
		t.Error("IsRunning should be false before Start")
	}
	if stats.TotalSent != 0 {
		t.Errorf("TotalSent = %v, want %v", stats.TotalSent, 0)
	}
	if stats.LastSentCount != 0 {
		t.Errorf("LastSentCount = %v, want %v", stats.LastSentCount, 0)
	}
}

type fakeReminderRepo struct {
	repository.ReminderRepository
	reminders map[int64]*domain.EventReminder
}

func (r *fakeReminderRepo) ListDue(_ context.Context, now time.Time, grace time.Duration, limit int) ([]domain.EventReminder, error) {
	var out []domain.EventReminder
	for _, rem := range r.reminders {
		if rem.Sent || rem.ScheduledAt.After(now) || rem.ScheduledAt.Before(now.Add(-grace)) {
			continue
		}
		out = append(out, *rem)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *fakeReminderRepo) MarkSent(_ context.Context, id int64, at time.Time) error {
	rem := r.reminders[id]
	rem.Sent = true
	rem.SentAt = &at
	return nil
}

type fakeEventRepo struct {
	repository.EventRepository
	events map[int64]*domain.Event
}

func (r *fakeEventRepo) GetByID(_ context.Context, id int64) (*domain.Event, error) {
	event, ok := r.events[id]
	if !ok {
		return nil, nil
	}
	cp := *event
	return &cp, nil
}

type fakeRegistrationRepo struct {
	repository.RegistrationRepository
	regs []domain.Registration
}

func (r *fakeRegistrationRepo) ListByEvent(_ context.Context, eventID int64) ([]domain.Registration, error) {
	var out []domain.Registration
	for _, reg := range r.regs {
		if reg.EventID == eventID {
			out = append(out, reg)
		}
	}
	return out, nil
}

type fakeUserRepo struct {
	repository.UserRepository
	users map[int64]*domain.User
}

func (r *fakeUserRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	cp := *user
	return &cp, nil
}

type reminderFixture struct {
	worker    *ReminderWorker
	reminders *fakeReminderRepo
	events    *fakeEventRepo
	regs      *fakeRegistrationRepo
	users     *fakeUserRepo
}

func newReminderFixture(t *testing.T) *reminderFixture {
	t.Helper()
	f := &reminderFixture{
		reminders: &fakeReminderRepo{reminders: make(map[int64]*domain.EventReminder)},
		events:    &fakeEventRepo{events: make(map[int64]*domain.Event)},
		regs:      &fakeRegistrationRepo{},
		users:     &fakeUserRepo{users: make(map[int64]*domain.User)},
	}
	mail := mailer.New("", "evMonde", "billets@evmonde.test", false)
	f.worker = NewReminderWorker(f.reminders, f.events, f.regs, f.users, mail, nil)
	return f
}

func TestReminderWorker_RunScan(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	t.Run("due reminder is marked sent", func(t *testing.T) {
		f := newReminderFixture(t)
		f.events.events[5] = &domain.Event{ID: 5, Title: "Forum Dakar", StartDate: now.Add(2 * time.Hour)}
		f.regs.regs = []domain.Registration{{
			ID:               1,
			EventID:          5,
			RegistrationType: domain.RegistrationTypeGuest,
			GuestFirstName:   "Awa",
			GuestLastName:    "Diop",
			GuestEmail:       "awa@example.com",
			Status:           domain.RegistrationStatusConfirmed,
		}}
		f.reminders.reminders[1] = &domain.EventReminder{ID: 1, EventID: 5, ScheduledAt: now.Add(-30 * time.Second)}

		f.worker.runScan(ctx, now)

		if !f.reminders.reminders[1].Sent {
			t.Error("expected the due reminder marked sent")
		}
		if f.reminders.reminders[1].SentAt == nil {
			t.Error("expected the sent time stamped")
		}
		stats := f.worker.GetStats()
		if stats.TotalSent != 1 {
			t.Errorf("TotalSent = %v, want %v", stats.TotalSent, 1)
		}
		if stats.LastSentCount != 1 {
			t.Errorf("LastSentCount = %v, want %v", stats.LastSentCount, 1)
		}
	})

	t.Run("future reminder is left alone", func(t *testing.T) {
		f := newReminderFixture(t)
		f.events.events[5] = &domain.Event{ID: 5, Title: "Forum Dakar", StartDate: now.Add(2 * time.Hour)}
		f.reminders.reminders[1] = &domain.EventReminder{ID: 1, EventID: 5, ScheduledAt: now.Add(time.Hour)}

		f.worker.runScan(ctx, now)

		if f.reminders.reminders[1].Sent {
			t.Error("expected a future reminder untouched")
		}
	})

	t.Run("stale reminder past the grace window is left alone", func(t *testing.T) {
		f := newReminderFixture(t)
		f.events.events[5] = &domain.Event{ID: 5, Title: "Forum Dakar", StartDate: now.Add(2 * time.Hour)}
		f.reminders.reminders[1] = &domain.EventReminder{ID: 1, EventID: 5, ScheduledAt: now.Add(-10 * time.Minute)}

		f.worker.runScan(ctx, now)

		if f.reminders.reminders[1].Sent {
			t.Error("expected a stale reminder untouched")
		}
	})

	t.Run("reminder for a deleted event is retired without email", func(t *testing.T) {
		f := newReminderFixture(t)
		f.reminders.reminders[1] = &domain.EventReminder{ID: 1, EventID: 99, ScheduledAt: now.Add(-30 * time.Second)}

		f.worker.runScan(ctx, now)

		if !f.reminders.reminders[1].Sent {
			t.Error("expected the orphaned reminder marked sent")
		}
	})
}

func TestTimeRemaining(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name  string
		start time.Time
		want  string
	}{
		{"hours and minutes", now.Add(2*time.Hour + 30*time.Minute), "2h 30min"},
		{"whole hours", now.Add(3 * time.Hour), "3h"},
		{"under an hour", now.Add(45 * time.Minute), "45min"},
		{"already started", now.Add(-10 * time.Minute), "0min"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := timeRemaining(tt.start, now); got != tt.want {
				t.Errorf("timeRemaining() = %q, want %q", got, tt.want)
			}
		})
	}
}
