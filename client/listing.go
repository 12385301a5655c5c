package client

import (
	"context"
	"sync"
	"time"

	"github.com/emldov7/evMonde--sub000/internal/domain"
	"github.com/emldov7/evMonde--sub000/internal/dto"
)

// refilterInterval is how often a live listing re-applies the end-date
// cutoff to its snapshot.
const refilterInterval = 30 * time.Second

// Listing keeps a fetched page of events and drops the ones that end
// while the page stays on screen. The snapshot is filtered locally on a
// timer; no request is made until Refresh is called.
type Listing struct {
	mu       sync.RWMutex
	snapshot []domain.Event
	visible  []domain.Event
	now      func() time.Time
	ticker   *time.Ticker
	done     chan struct{}
	stopOnce sync.Once
}

// NewListing fetches the first page and starts the re-filter timer
func (c *Client) NewListing(ctx context.Context, q *dto.ListEventsQuery) (*Listing, error) {
	events, _, err := c.ListEvents(ctx, q)
	if err != nil {
		return nil, err
	}
	l := &Listing{
		now:  time.Now,
		done: make(chan struct{}),
	}
	l.replace(events)
	l.ticker = time.NewTicker(refilterInterval)
	go l.loop()
	return l, nil
}

// Events returns the currently visible events
func (l *Listing) Events() []domain.Event {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]domain.Event, len(l.visible))
	copy(out, l.visible)
	return out
}

// Refresh replaces the snapshot with a fresh fetch
func (l *Listing) Refresh(ctx context.Context, c *Client, q *dto.ListEventsQuery) error {
	events, _, err := c.ListEvents(ctx, q)
	if err != nil {
		return err
	}
	l.replace(events)
	return nil
}

// Stop ends the re-filter timer
func (l *Listing) Stop() {
	l.stopOnce.Do(func() {
		if l.ticker != nil {
			l.ticker.Stop()
		}
		close(l.done)
	})
}

func (l *Listing) loop() {
	for {
		select {
		case <-l.done:
			return
		case <-l.ticker.C:
			l.refilter()
		}
	}
}

func (l *Listing) replace(events []domain.Event) {
	l.mu.Lock()
	l.snapshot = events
	l.visible = filterCurrent(events, l.now())
	l.mu.Unlock()
}

func (l *Listing) refilter() {
	l.mu.Lock()
	l.visible = filterCurrent(l.snapshot, l.now())
	l.mu.Unlock()
}

// filterCurrent keeps events whose effective end is not in the past.
// Events without an end date fall back to their start date, matching the
// server's listing cutoff.
func filterCurrent(events []domain.Event, now time.Time) []domain.Event {
	out := make([]domain.Event, 0, len(events))
	for _, e := range events {
		deadline := e.EndDate
		if deadline.IsZero() {
			deadline = e.StartDate
		}
		if !deadline.Before(now) {
			out = append(out, e)
		}
	}
	return out
}
