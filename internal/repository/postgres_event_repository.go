package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/emldov7/evMonde--sub000/internal/domain"
	"github.com/emldov7/evMonde--sub000/internal/dto"
)

// PostgresEventRepository implements EventRepository using PostgreSQL
type PostgresEventRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresEventRepository creates a new PostgresEventRepository
func NewPostgresEventRepository(pool *pgxpool.Pool) *PostgresEventRepository {
	return &PostgresEventRepository{pool: pool}
}

const eventColumns = `id, title, COALESCE(description, ''), COALESCE(full_description, ''),
	event_type, event_format, start_date, end_date,
	COALESCE(location, ''), COALESCE(address, ''), COALESCE(city, ''), COALESCE(country_code, ''),
	capacity, available_seats, is_free, price, currency, COALESCE(image_url, ''),
	virtual_platform, COALESCE(virtual_meeting_url, ''), COALESCE(virtual_meeting_id, ''),
	COALESCE(virtual_meeting_password, ''), COALESCE(virtual_instructions, ''),
	status, is_published, organizer_id, category_id,
	is_featured, is_flagged, flag_reason, flagged_at, flagged_by_admin_id, admin_notes,
	created_at, updated_at`

func scanEvent(row pgx.Row) (*domain.Event, error) {
	event := &domain.Event{}
	err := row.Scan(
		&event.ID,
		&event.Title,
		&event.Description,
		&event.FullDescription,
		&event.EventType,
		&event.EventFormat,
		&event.StartDate,
		&event.EndDate,
		&event.Location,
		&event.Address,
		&event.City,
		&event.CountryCode,
		&event.Capacity,
		&event.AvailableSeats,
		&event.IsFree,
		&event.Price,
		&event.Currency,
		&event.ImageURL,
		&event.VirtualPlatform,
		&event.VirtualMeetingURL,
		&event.VirtualMeetingID,
		&event.VirtualMeetingPassword,
		&event.VirtualInstructions,
		&event.Status,
		&event.IsPublished,
		&event.OrganizerID,
		&event.CategoryID,
		&event.IsFeatured,
		&event.IsFlagged,
		&event.FlagReason,
		&event.FlaggedAt,
		&event.FlaggedByAdminID,
		&event.AdminNotes,
		&event.CreatedAt,
		&event.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return event, nil
}

// Create creates a new event and fills the generated ID
func (r *PostgresEventRepository) Create(ctx context.Context, event *domain.Event) error {
	query := `
		INSERT INTO events (title, description, full_description, event_type, event_format,
			start_date, end_date, location, address, city, country_code,
			capacity, available_seats, is_free, price, currency, image_url,
			virtual_platform, virtual_meeting_url, virtual_meeting_id,
			virtual_meeting_password, virtual_instructions,
			status, is_published, organizer_id, category_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
			$16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28)
		RETURNING id
	`
	return r.pool.QueryRow(ctx, query,
		event.Title,
		event.Description,
		event.FullDescription,
		event.EventType,
		event.EventFormat,
		event.StartDate,
		event.EndDate,
		event.Location,
		event.Address,
		event.City,
		event.CountryCode,
		event.Capacity,
		event.AvailableSeats,
		event.IsFree,
		event.Price,
		event.Currency,
		event.ImageURL,
		event.VirtualPlatform,
		event.VirtualMeetingURL,
		event.VirtualMeetingID,
		event.VirtualMeetingPassword,
		event.VirtualInstructions,
		event.Status,
		event.IsPublished,
		event.OrganizerID,
		event.CategoryID,
		event.CreatedAt,
		event.UpdatedAt,
	).Scan(&event.ID)
}

// GetByID retrieves an event by ID
func (r *PostgresEventRepository) GetByID(ctx context.Context, id int64) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	return scanEvent(r.pool.QueryRow(ctx, query, id))
}

// Update persists every mutable field of an event
func (r *PostgresEventRepository) Update(ctx context.Context, event *domain.Event) error {
	query := `
		UPDATE events
		SET title = $2, description = $3, full_description = $4, event_type = $5,
			event_format = $6, start_date = $7, end_date = $8, location = $9,
			address = $10, city = $11, country_code = $12, capacity = $13,
			available_seats = $14, is_free = $15, price = $16, currency = $17,
			image_url = $18, virtual_platform = $19, virtual_meeting_url = $20,
			virtual_meeting_id = $21, virtual_meeting_password = $22,
			virtual_instructions = $23, status = $24, is_published = $25,
			category_id = $26, is_featured = $27, is_flagged = $28,
			flag_reason = $29, flagged_at = $30, flagged_by_admin_id = $31,
			admin_notes = $32, updated_at = $33
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query,
		event.ID,
		event.Title,
		event.Description,
		event.FullDescription,
		event.EventType,
		event.EventFormat,
		event.StartDate,
		event.EndDate,
		event.Location,
		event.Address,
		event.City,
		event.CountryCode,
		event.Capacity,
		event.AvailableSeats,
		event.IsFree,
		event.Price,
		event.Currency,
		event.ImageURL,
		event.VirtualPlatform,
		event.VirtualMeetingURL,
		event.VirtualMeetingID,
		event.VirtualMeetingPassword,
		event.VirtualInstructions,
		event.Status,
		event.IsPublished,
		event.CategoryID,
		event.IsFeatured,
		event.IsFlagged,
		event.FlagReason,
		event.FlaggedAt,
		event.FlaggedByAdminID,
		event.AdminNotes,
		time.Now(),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// Delete removes an event; tickets and registrations cascade
func (r *PostgresEventRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PostgresEventRepository) list(ctx context.Context, where string, args []interface{}, q *dto.ListEventsQuery) ([]domain.Event, int, error) {
	idx := len(args) + 1

	if q.CategoryID != nil {
		where += fmt.Sprintf(` AND category_id = $%d`, idx)
		args = append(args, *q.CategoryID)
		idx++
	}
	if q.TagID != nil {
		where += fmt.Sprintf(` AND id IN (SELECT event_id FROM event_tags WHERE tag_id = $%d)`, idx)
		args = append(args, *q.TagID)
		idx++
	}
	if q.City != "" {
		where += fmt.Sprintf(` AND city ILIKE $%d`, idx)
		args = append(args, q.City)
		idx++
	}
	if q.Search != "" {
		where += fmt.Sprintf(` AND (title ILIKE $%d OR description ILIKE $%d)`, idx, idx)
		args = append(args, "%"+q.Search+"%")
		idx++
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM events `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + eventColumns + ` FROM events ` + where +
		fmt.Sprintf(` ORDER BY start_date ASC LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, q.Limit, (q.Page-1)*q.Limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	events := []domain.Event{}
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, 0, err
		}
		events = append(events, *event)
	}
	return events, total, rows.Err()
}

// ListByOrganizer returns an organizer's own events, any status
func (r *PostgresEventRepository) ListByOrganizer(ctx context.Context, organizerID int64, q *dto.ListEventsQuery) ([]domain.Event, int, error) {
	where := `WHERE organizer_id = $1`
	args := []interface{}{organizerID}
	if q.Status != "" {
		where += ` AND status = $2`
		args = append(args, q.Status)
	}
	return r.list(ctx, where, args, q)
}

// ListPublished returns published events that have not ended. Events with
// no end date fall back to the start date for the cutoff.
func (r *PostgresEventRepository) ListPublished(ctx context.Context, q *dto.ListEventsQuery) ([]domain.Event, int, error) {
	where := `WHERE status = $1 AND COALESCE(end_date, start_date) >= NOW()`
	args := []interface{}{domain.EventStatusPublished}
	return r.list(ctx, where, args, q)
}

// ListAll returns every event regardless of status, for moderation
func (r *PostgresEventRepository) ListAll(ctx context.Context, q *dto.ListEventsQuery) ([]domain.Event, int, error) {
	where := `WHERE 1=1`
	args := []interface{}{}
	if q.Status != "" {
		where += ` AND status = $1`
		args = append(args, q.Status)
	}
	return r.list(ctx, where, args, q)
}

// AdjustAvailableSeats moves the seat counter by delta, clamped at zero
// and at capacity.
func (r *PostgresEventRepository) AdjustAvailableSeats(ctx context.Context, id int64, delta int) error {
	query := `
		UPDATE events
		SET available_seats = LEAST(capacity, GREATEST(0, available_seats + $2)),
			updated_at = NOW()
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query, id, delta)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// SetTags replaces the event's tag set
func (r *PostgresEventRepository) SetTags(ctx context.Context, eventID int64, tagIDs []int64) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM event_tags WHERE event_id = $1`, eventID); err != nil {
		return err
	}
	for _, tagID := range tagIDs {
		if _, err := tx.Exec(ctx,
			`INSERT INTO event_tags (event_id, tag_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			eventID, tagID); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}
