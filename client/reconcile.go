package client

import (
	"context"

	"github.com/emldov7/evMonde--sub000/internal/domain"
	"github.com/emldov7/evMonde--sub000/internal/dto"
)

// ReminderEditor holds the reminder rows of one event as loaded from the
// server plus the user's local edits, and computes the minimal change set
// at save time. Rows deleted locally simply disappear from the working
// list; the diff against the load-time snapshot recovers them.
type ReminderEditor struct {
	eventID  int64
	snapshot map[int64]domain.EventReminder
	rows     []dto.ReminderInput
}

// ReminderDiff is the change set computed against the load-time snapshot
type ReminderDiff struct {
	Creates []dto.ReminderInput
	Updates []dto.ReminderInput
	Deletes []int64
}

// Empty reports whether the diff would change nothing on the server
func (d *ReminderDiff) Empty() bool {
	return len(d.Creates) == 0 && len(d.Updates) == 0 && len(d.Deletes) == 0
}

// NewReminderEditor loads an event's reminders and snapshots them
func (c *Client) NewReminderEditor(ctx context.Context, eventID int64) (*ReminderEditor, error) {
	existing, err := c.ListReminders(ctx, eventID)
	if err != nil {
		return nil, err
	}
	ed := &ReminderEditor{
		eventID:  eventID,
		snapshot: make(map[int64]domain.EventReminder, len(existing)),
		rows:     make([]dto.ReminderInput, 0, len(existing)),
	}
	for _, r := range existing {
		ed.snapshot[r.ID] = r
		id := r.ID
		ed.rows = append(ed.rows, dto.ReminderInput{
			ID:          &id,
			ScheduledAt: r.ScheduledAt,
			Message:     r.Message,
		})
	}
	return ed, nil
}

// Rows returns the working list for display and editing
func (e *ReminderEditor) Rows() []dto.ReminderInput {
	return e.rows
}

// Add appends a new local row with no server identity yet
func (e *ReminderEditor) Add(in dto.ReminderInput) {
	in.ID = nil
	e.rows = append(e.rows, in)
}

// Set replaces the row at index i
func (e *ReminderEditor) Set(i int, in dto.ReminderInput) {
	if i < 0 || i >= len(e.rows) {
		return
	}
	in.ID = e.rows[i].ID
	e.rows[i] = in
}

// Remove drops the row at index i from the working list
func (e *ReminderEditor) Remove(i int) {
	if i < 0 || i >= len(e.rows) {
		return
	}
	e.rows = append(e.rows[:i], e.rows[i+1:]...)
}

// Diff classifies every row against the snapshot: rows without an ID are
// creates, snapshot IDs missing from the working list are deletes, and
// rows whose schedule or message changed are updates. Untouched rows are
// skipped entirely.
func (e *ReminderEditor) Diff() *ReminderDiff {
	diff := &ReminderDiff{}
	seen := make(map[int64]bool, len(e.rows))
	for _, row := range e.rows {
		if row.ID == nil {
			diff.Creates = append(diff.Creates, row)
			continue
		}
		seen[*row.ID] = true
		prev, ok := e.snapshot[*row.ID]
		if !ok {
			// The row references an ID the server never gave us,
			// treat it as a create and let the server assign one.
			row.ID = nil
			diff.Creates = append(diff.Creates, row)
			continue
		}
		if !prev.ScheduledAt.Equal(row.ScheduledAt) || prev.Message != row.Message {
			diff.Updates = append(diff.Updates, row)
		}
	}
	for id := range e.snapshot {
		if !seen[id] {
			diff.Deletes = append(diff.Deletes, id)
		}
	}
	return diff
}

// Save computes the diff and applies it with one request per changed row.
// Unchanged rows cause no traffic at all. On success the working list is
// reloaded so it becomes the new snapshot.
func (e *ReminderEditor) Save(ctx context.Context, c *Client) (*ReminderDiff, error) {
	diff := e.Diff()
	if diff.Empty() {
		return diff, nil
	}
	for _, id := range diff.Deletes {
		if err := c.DeleteReminder(ctx, e.eventID, id); err != nil {
			return diff, err
		}
	}
	for _, row := range diff.Updates {
		if _, err := c.UpdateReminder(ctx, e.eventID, *row.ID, row); err != nil {
			return diff, err
		}
	}
	for _, row := range diff.Creates {
		if _, err := c.CreateReminder(ctx, e.eventID, row); err != nil {
			return diff, err
		}
	}

	fresh, err := c.NewReminderEditor(ctx, e.eventID)
	if err != nil {
		return diff, err
	}
	*e = *fresh
	return diff, nil
}
