// Package worker hosts the background loops that run beside the API server.
package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/emldov7/evMonde--sub000/internal/domain"
	"github.com/emldov7/evMonde--sub000/internal/mailer"
	"github.com/emldov7/evMonde--sub000/internal/repository"
	"github.com/emldov7/evMonde--sub000/pkg/logger"
)

// ReminderWorkerConfig holds the tuning knobs of the reminder dispatcher
type ReminderWorkerConfig struct {
	ScanInterval time.Duration
	Grace        time.Duration
	BatchSize    int
}

// DefaultReminderWorkerConfig returns the production settings. A reminder
// that stays unsent longer than Grace past its schedule is considered stale
// and left alone rather than delivered late.
func DefaultReminderWorkerConfig() *ReminderWorkerConfig {
	return &ReminderWorkerConfig{
		ScanInterval: time.Minute,
		Grace:        2 * time.Minute,
		BatchSize:    100,
	}
}

// ReminderWorker scans for due event reminders and emails every confirmed
// attendee of the event. Each reminder is marked sent exactly once, even
// when some of its emails fail.
type ReminderWorker struct {
	reminderRepo repository.ReminderRepository
	eventRepo    repository.EventRepository
	regRepo      repository.RegistrationRepository
	userRepo     repository.UserRepository
	mail         *mailer.Mailer
	config       *ReminderWorkerConfig

	mu            sync.Mutex
	running       bool
	stop          chan struct{}
	done          chan struct{}
	totalSent     int64
	lastScanTime  time.Time
	lastSentCount int
}

// ReminderWorkerStats is a snapshot of the worker's counters
type ReminderWorkerStats struct {
	IsRunning     bool      `json:"is_running"`
	TotalSent     int64     `json:"total_sent"`
	LastScanTime  time.Time `json:"last_scan_time"`
	LastSentCount int       `json:"last_sent_count"`
}

// NewReminderWorker creates a ReminderWorker. A nil config uses the defaults.
func NewReminderWorker(
	reminderRepo repository.ReminderRepository,
	eventRepo repository.EventRepository,
	regRepo repository.RegistrationRepository,
	userRepo repository.UserRepository,
	mail *mailer.Mailer,
	config *ReminderWorkerConfig,
) *ReminderWorker {
	if config == nil {
		config = DefaultReminderWorkerConfig()
	}
	return &ReminderWorker{
		reminderRepo: reminderRepo,
		eventRepo:    eventRepo,
		regRepo:      regRepo,
		userRepo:     userRepo,
		mail:         mail,
		config:       config,
	}
}

// Start launches the scan loop. It returns immediately; a second Start while
// running is a no-op.
func (w *ReminderWorker) Start(ctx context.Context) {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.stop = make(chan struct{})
	w.done = make(chan struct{})
	stop, done := w.stop, w.done
	w.mu.Unlock()

	logger.Info("reminder worker started",
		zap.Duration("scan_interval", w.config.ScanInterval),
		zap.Duration("grace", w.config.Grace))

	go func() {
		defer close(done)
		ticker := time.NewTicker(w.config.ScanInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-stop:
				return
			case <-ticker.C:
				w.runScan(ctx, time.Now())
			}
		}
	}()
}

// Stop halts the scan loop and waits for the in-flight scan to finish.
func (w *ReminderWorker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	close(w.stop)
	done := w.done
	w.mu.Unlock()

	<-done
	logger.Info("reminder worker stopped")
}

// GetStats returns a snapshot of the worker's counters
func (w *ReminderWorker) GetStats() *ReminderWorkerStats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return &ReminderWorkerStats{
		IsRunning:     w.running,
		TotalSent:     w.totalSent,
		LastScanTime:  w.lastScanTime,
		LastSentCount: w.lastSentCount,
	}
}

func (w *ReminderWorker) runScan(ctx context.Context, now time.Time) {
	due, err := w.reminderRepo.ListDue(ctx, now, w.config.Grace, w.config.BatchSize)
	if err != nil {
		logger.WarnCtx(ctx, "reminder scan failed", zap.Error(err))
		return
	}

	sent := 0
	for i := range due {
		if err := w.dispatch(ctx, &due[i], now); err != nil {
			logger.WarnCtx(ctx, "reminder dispatch failed",
				zap.Int64("reminder_id", due[i].ID),
				zap.Error(err))
			continue
		}
		sent++
	}

	w.mu.Lock()
	w.lastScanTime = now
	w.lastSentCount = sent
	w.totalSent += int64(sent)
	w.mu.Unlock()
}

// dispatch emails a single reminder and marks it sent. A reminder whose
// event no longer exists is marked sent without email so it stops matching
// the due scan.
func (w *ReminderWorker) dispatch(ctx context.Context, reminder *domain.EventReminder, now time.Time) error {
	event, err := w.eventRepo.GetByID(ctx, reminder.EventID)
	if err != nil {
		return err
	}
	if event == nil {
		return w.reminderRepo.MarkSent(ctx, reminder.ID, now)
	}

	regs, err := w.regRepo.ListByEvent(ctx, event.ID)
	if err != nil {
		return err
	}

	remaining := timeRemaining(event.StartDate, now)
	for i := range regs {
		reg := &regs[i]
		if reg.Status != domain.RegistrationStatusConfirmed {
			continue
		}
		var user *domain.User
		if reg.UserID != nil {
			if u, err := w.userRepo.GetByID(ctx, *reg.UserID); err == nil {
				user = u
			}
		}
		email := reg.HolderEmail(user)
		if email == "" {
			continue
		}
		name := reg.HolderName(user)
		if name == "" {
			name = "Participant"
		}
		err := w.mail.SendReminder(ctx, mailer.ReminderEmail{
			To:            email,
			Name:          name,
			EventTitle:    event.Title,
			EventDate:     event.StartDate,
			TimeRemaining: remaining,
			Message:       reminder.Message,
		})
		if err != nil {
			logger.WarnCtx(ctx, "reminder email failed",
				zap.Int64("registration_id", reg.ID),
				zap.Error(err))
		}
	}

	return w.reminderRepo.MarkSent(ctx, reminder.ID, now)
}

// timeRemaining renders the delay before the event start the way attendees
// read it, as "2h 30min", "2h" or "45min". A start already passed reads "0min".
func timeRemaining(start, now time.Time) string {
	mins := int(start.Sub(now).Minutes())
	if mins < 0 {
		mins = 0
	}
	if mins >= 60 {
		h, m := mins/60, mins%60
		if m == 0 {
			return fmt.Sprintf("%dh", h)
		}
		return fmt.Sprintf("%dh %dmin", h, m)
	}
	return fmt.Sprintf("%dmin", mins)
}
