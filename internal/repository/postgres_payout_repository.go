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

// PostgresPayoutRepository implements PayoutRepository using PostgreSQL
type PostgresPayoutRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresPayoutRepository creates a new PostgresPayoutRepository
func NewPostgresPayoutRepository(pool *pgxpool.Pool) *PostgresPayoutRepository {
	return &PostgresPayoutRepository{pool: pool}
}

const payoutColumns = `id, organizer_id, amount, currency, status, payout_method,
	account_details, stripe_payout_id, organizer_message, admin_notes,
	processed_by_admin_id, requested_at, approved_at, completed_at, rejected_at`

func scanPayout(row pgx.Row) (*domain.Payout, error) {
	payout := &domain.Payout{}
	err := row.Scan(
		&payout.ID,
		&payout.OrganizerID,
		&payout.Amount,
		&payout.Currency,
		&payout.Status,
		&payout.PayoutMethod,
		&payout.AccountDetails,
		&payout.StripePayoutID,
		&payout.OrganizerMessage,
		&payout.AdminNotes,
		&payout.ProcessedByAdminID,
		&payout.RequestedAt,
		&payout.ApprovedAt,
		&payout.CompletedAt,
		&payout.RejectedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return payout, nil
}

// Create creates a new payout request and fills the generated ID
func (r *PostgresPayoutRepository) Create(ctx context.Context, payout *domain.Payout) error {
	query := `
		INSERT INTO payouts (organizer_id, amount, currency, status, payout_method,
			account_details, organizer_message, requested_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	return r.pool.QueryRow(ctx, query,
		payout.OrganizerID,
		payout.Amount,
		payout.Currency,
		payout.Status,
		payout.PayoutMethod,
		payout.AccountDetails,
		payout.OrganizerMessage,
		payout.RequestedAt,
	).Scan(&payout.ID)
}

// GetByID retrieves a payout by ID
func (r *PostgresPayoutRepository) GetByID(ctx context.Context, id int64) (*domain.Payout, error) {
	query := `SELECT ` + payoutColumns + ` FROM payouts WHERE id = $1`
	return scanPayout(r.pool.QueryRow(ctx, query, id))
}

// Update persists a payout decision
func (r *PostgresPayoutRepository) Update(ctx context.Context, payout *domain.Payout) error {
	query := `
		UPDATE payouts
		SET status = $2, admin_notes = $3, processed_by_admin_id = $4,
			stripe_payout_id = $5, approved_at = $6, completed_at = $7, rejected_at = $8
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query,
		payout.ID,
		payout.Status,
		payout.AdminNotes,
		payout.ProcessedByAdminID,
		payout.StripePayoutID,
		payout.ApprovedAt,
		payout.CompletedAt,
		payout.RejectedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// ListByOrganizer returns an organizer's payout requests, newest first
func (r *PostgresPayoutRepository) ListByOrganizer(ctx context.Context, organizerID int64) ([]domain.Payout, error) {
	query := `SELECT ` + payoutColumns + ` FROM payouts WHERE organizer_id = $1 ORDER BY requested_at DESC`
	rows, err := r.pool.Query(ctx, query, organizerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	payouts := []domain.Payout{}
	for rows.Next() {
		payout, err := scanPayout(rows)
		if err != nil {
			return nil, err
		}
		payouts = append(payouts, *payout)
	}
	return payouts, rows.Err()
}

// List returns a filtered page of the payout queue plus the unpaged total
func (r *PostgresPayoutRepository) List(ctx context.Context, q *dto.PayoutListQuery) ([]domain.Payout, int, error) {
	where := `WHERE 1=1`
	args := []interface{}{}
	idx := 1

	if q.Status != "" {
		where += fmt.Sprintf(` AND status = $%d`, idx)
		args = append(args, q.Status)
		idx++
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM payouts `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + payoutColumns + ` FROM payouts ` + where +
		fmt.Sprintf(` ORDER BY requested_at DESC LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, q.Limit, (q.Page-1)*q.Limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	payouts := []domain.Payout{}
	for rows.Next() {
		payout, err := scanPayout(rows)
		if err != nil {
			return nil, 0, err
		}
		payouts = append(payouts, *payout)
	}
	return payouts, total, rows.Err()
}

// GetCommissionSettings returns the single commission policy row
func (r *PostgresPayoutRepository) GetCommissionSettings(ctx context.Context) (*domain.CommissionSettings, error) {
	query := `SELECT id, default_commission_rate, minimum_commission_amount, is_active, notes, created_at, updated_at
		FROM commission_settings WHERE id = 1`
	s := &domain.CommissionSettings{}
	err := r.pool.QueryRow(ctx, query).Scan(
		&s.ID,
		&s.DefaultCommissionRate,
		&s.MinimumCommissionAmount,
		&s.IsActive,
		&s.Notes,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return s, nil
}

// UpdateCommissionSettings upserts the commission policy row
func (r *PostgresPayoutRepository) UpdateCommissionSettings(ctx context.Context, s *domain.CommissionSettings) error {
	query := `
		INSERT INTO commission_settings (id, default_commission_rate, minimum_commission_amount, is_active, notes, created_at, updated_at)
		VALUES (1, $1, $2, $3, $4, NOW(), $5)
		ON CONFLICT (id) DO UPDATE
		SET default_commission_rate = $1, minimum_commission_amount = $2,
			is_active = $3, notes = $4, updated_at = $5
	`
	_, err := r.pool.Exec(ctx, query,
		s.DefaultCommissionRate,
		s.MinimumCommissionAmount,
		s.IsActive,
		s.Notes,
		time.Now(),
	)
	return err
}

// CreateCommissionTransaction records the platform cut on one registration
func (r *PostgresPayoutRepository) CreateCommissionTransaction(ctx context.Context, tx *domain.CommissionTransaction) error {
	query := `
		INSERT INTO commission_transactions (registration_id, event_id, organizer_id,
			ticket_amount, commission_rate, commission_amount, net_amount, currency,
			stripe_payment_intent_id, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`
	return r.pool.QueryRow(ctx, query,
		tx.RegistrationID,
		tx.EventID,
		tx.OrganizerID,
		tx.TicketAmount,
		tx.CommissionRate,
		tx.CommissionAmount,
		tx.NetAmount,
		tx.Currency,
		tx.StripePaymentIntentID,
		tx.Notes,
		tx.CreatedAt,
	).Scan(&tx.ID)
}

// OrganizerBalance computes the available balance: ticket revenue minus
// commissions, completed payouts, and payouts still reserved.
func (r *PostgresPayoutRepository) OrganizerBalance(ctx context.Context, organizerID int64) (*domain.OrganizerBalance, error) {
	query := `
		SELECT
			COALESCE((SELECT SUM(r.amount_paid) FROM registrations r
				JOIN events e ON e.id = r.event_id
				WHERE e.organizer_id = $1 AND r.payment_status = 'paid'), 0),
			COALESCE((SELECT SUM(ct.commission_amount) FROM commission_transactions ct
				WHERE ct.organizer_id = $1), 0),
			COALESCE((SELECT SUM(p.amount) FROM payouts p
				WHERE p.organizer_id = $1 AND p.status = 'completed'), 0),
			COALESCE((SELECT SUM(p.amount) FROM payouts p
				WHERE p.organizer_id = $1 AND p.status IN ('pending', 'approved', 'processing')), 0)
	`
	balance := &domain.OrganizerBalance{}
	err := r.pool.QueryRow(ctx, query, organizerID).Scan(
		&balance.TotalRevenue,
		&balance.TotalCommission,
		&balance.TotalPaidOut,
		&balance.PendingPayouts,
	)
	if err != nil {
		return nil, err
	}
	balance.AvailableBalance = balance.TotalRevenue - balance.TotalCommission -
		balance.TotalPaidOut - balance.PendingPayouts
	if balance.AvailableBalance < 0 {
		balance.AvailableBalance = 0
	}
	return balance, nil
}
