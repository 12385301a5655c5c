package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/emldov7/evMonde--sub000/internal/domain"
)

// ErrTicketSoldOut is returned when an increment would exceed the quantity
var ErrTicketSoldOut = errors.New("ticket sold out")

// PostgresTicketRepository implements TicketRepository using PostgreSQL
type PostgresTicketRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresTicketRepository creates a new PostgresTicketRepository
func NewPostgresTicketRepository(pool *pgxpool.Pool) *PostgresTicketRepository {
	return &PostgresTicketRepository{pool: pool}
}

const ticketColumns = `id, event_id, name, COALESCE(description, ''), price, currency,
	quantity_available, quantity_sold, is_active, created_at, updated_at`

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	ticket := &domain.Ticket{}
	err := row.Scan(
		&ticket.ID,
		&ticket.EventID,
		&ticket.Name,
		&ticket.Description,
		&ticket.Price,
		&ticket.Currency,
		&ticket.QuantityAvailable,
		&ticket.QuantitySold,
		&ticket.IsActive,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return ticket, nil
}

// Create creates a new ticket tier and fills the generated ID
func (r *PostgresTicketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	query := `
		INSERT INTO tickets (event_id, name, description, price, currency,
			quantity_available, quantity_sold, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`
	return r.pool.QueryRow(ctx, query,
		ticket.EventID,
		ticket.Name,
		ticket.Description,
		ticket.Price,
		ticket.Currency,
		ticket.QuantityAvailable,
		ticket.QuantitySold,
		ticket.IsActive,
		ticket.CreatedAt,
		ticket.UpdatedAt,
	).Scan(&ticket.ID)
}

// GetByID retrieves a ticket tier by ID
func (r *PostgresTicketRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id = $1`
	return scanTicket(r.pool.QueryRow(ctx, query, id))
}

// ListByEvent returns every tier of an event, cheapest first
func (r *PostgresTicketRepository) ListByEvent(ctx context.Context, eventID int64) ([]domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE event_id = $1 ORDER BY price ASC, id ASC`
	rows, err := r.pool.Query(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tickets := []domain.Ticket{}
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, *ticket)
	}
	return tickets, rows.Err()
}

// Update persists the mutable fields of a ticket tier
func (r *PostgresTicketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	query := `
		UPDATE tickets
		SET name = $2, description = $3, price = $4, currency = $5,
			quantity_available = $6, is_active = $7, updated_at = $8
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query,
		ticket.ID,
		ticket.Name,
		ticket.Description,
		ticket.Price,
		ticket.Currency,
		ticket.QuantityAvailable,
		ticket.IsActive,
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

// Delete removes a ticket tier
func (r *PostgresTicketRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tickets WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// IncrementSold moves the sold counter by delta. A positive delta only
// succeeds while seats remain on the tier.
func (r *PostgresTicketRepository) IncrementSold(ctx context.Context, id int64, delta int) error {
	query := `
		UPDATE tickets
		SET quantity_sold = quantity_sold + $2, updated_at = NOW()
		WHERE id = $1 AND ($2 <= 0 OR quantity_sold + $2 <= quantity_available)
	`
	tag, err := r.pool.Exec(ctx, query, id, delta)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTicketSoldOut
	}
	return nil
}
