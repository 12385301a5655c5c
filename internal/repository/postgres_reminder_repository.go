package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/emldov7/evMonde--sub000/internal/domain"
)

// PostgresReminderRepository implements ReminderRepository using PostgreSQL
type PostgresReminderRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresReminderRepository creates a new PostgresReminderRepository
func NewPostgresReminderRepository(pool *pgxpool.Pool) *PostgresReminderRepository {
	return &PostgresReminderRepository{pool: pool}
}

const reminderColumns = `id, event_id, scheduled_at, COALESCE(message, ''), sent, sent_at, created_at`

func scanReminder(row pgx.Row) (*domain.EventReminder, error) {
	reminder := &domain.EventReminder{}
	err := row.Scan(
		&reminder.ID,
		&reminder.EventID,
		&reminder.ScheduledAt,
		&reminder.Message,
		&reminder.Sent,
		&reminder.SentAt,
		&reminder.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return reminder, nil
}

// Create creates a new reminder and fills the generated ID
func (r *PostgresReminderRepository) Create(ctx context.Context, reminder *domain.EventReminder) error {
	query := `
		INSERT INTO event_reminders (event_id, scheduled_at, message, sent, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	return r.pool.QueryRow(ctx, query,
		reminder.EventID,
		reminder.ScheduledAt,
		reminder.Message,
		reminder.Sent,
		reminder.CreatedAt,
	).Scan(&reminder.ID)
}

// GetByID retrieves a reminder by ID
func (r *PostgresReminderRepository) GetByID(ctx context.Context, id int64) (*domain.EventReminder, error) {
	query := `SELECT ` + reminderColumns + ` FROM event_reminders WHERE id = $1`
	return scanReminder(r.pool.QueryRow(ctx, query, id))
}

// ListByEvent returns an event's reminders in schedule order
func (r *PostgresReminderRepository) ListByEvent(ctx context.Context, eventID int64) ([]domain.EventReminder, error) {
	query := `SELECT ` + reminderColumns + ` FROM event_reminders WHERE event_id = $1 ORDER BY scheduled_at ASC`
	rows, err := r.pool.Query(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reminders := []domain.EventReminder{}
	for rows.Next() {
		reminder, err := scanReminder(rows)
		if err != nil {
			return nil, err
		}
		reminders = append(reminders, *reminder)
	}
	return reminders, rows.Err()
}

// ListDue returns unsent reminders whose schedule falls inside the grace
// window ending now. Rows older than the window stay unsent and are skipped.
func (r *PostgresReminderRepository) ListDue(ctx context.Context, now time.Time, grace time.Duration, limit int) ([]domain.EventReminder, error) {
	query := `
		SELECT ` + reminderColumns + `
		FROM event_reminders
		WHERE sent = FALSE AND scheduled_at <= $1 AND scheduled_at >= $2
		ORDER BY scheduled_at ASC
		LIMIT $3
	`
	rows, err := r.pool.Query(ctx, query, now, now.Add(-grace), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reminders := []domain.EventReminder{}
	for rows.Next() {
		reminder, err := scanReminder(rows)
		if err != nil {
			return nil, err
		}
		reminders = append(reminders, *reminder)
	}
	return reminders, rows.Err()
}

// Update persists the schedule and message of a reminder
func (r *PostgresReminderRepository) Update(ctx context.Context, reminder *domain.EventReminder) error {
	query := `
		UPDATE event_reminders
		SET scheduled_at = $2, message = $3, sent = $4, sent_at = $5
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query,
		reminder.ID,
		reminder.ScheduledAt,
		reminder.Message,
		reminder.Sent,
		reminder.SentAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// MarkSent stamps a reminder as dispatched
func (r *PostgresReminderRepository) MarkSent(ctx context.Context, id int64, at time.Time) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE event_reminders SET sent = TRUE, sent_at = $2 WHERE id = $1`, id, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// Delete removes a reminder
func (r *PostgresReminderRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM event_reminders WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
