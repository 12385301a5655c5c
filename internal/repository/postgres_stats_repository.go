package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/emldov7/evMonde--sub000/internal/dto"
)

// PostgresStatsRepository implements StatsRepository using PostgreSQL
type PostgresStatsRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresStatsRepository creates a new PostgresStatsRepository
func NewPostgresStatsRepository(pool *pgxpool.Pool) *PostgresStatsRepository {
	return &PostgresStatsRepository{pool: pool}
}

// PlatformStats computes the full statistics block in a single round trip
func (r *PostgresStatsRepository) PlatformStats(ctx context.Context) (*dto.PlatformStats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM users WHERE is_active AND NOT is_suspended),
			(SELECT COUNT(*) FROM users WHERE is_suspended),
			(SELECT COUNT(*) FROM users WHERE role = 'admin'),
			(SELECT COUNT(*) FROM users WHERE role = 'organizer'),
			(SELECT COUNT(*) FROM users WHERE role = 'participant'),
			(SELECT COUNT(*) FROM users WHERE created_at >= date_trunc('month', NOW())),
			(SELECT COUNT(*) FROM events),
			(SELECT COUNT(*) FROM events WHERE status = 'published'),
			(SELECT COUNT(*) FROM events WHERE status = 'draft'),
			(SELECT COUNT(*) FROM events WHERE status = 'cancelled'),
			(SELECT COUNT(*) FROM events WHERE is_featured),
			(SELECT COUNT(*) FROM events WHERE is_flagged),
			(SELECT COUNT(*) FROM events WHERE created_at >= date_trunc('month', NOW())),
			(SELECT COUNT(*) FROM registrations),
			(SELECT COUNT(*) FROM registrations WHERE status = 'confirmed'),
			(SELECT COUNT(*) FROM registrations WHERE status = 'pending'),
			(SELECT COUNT(*) FROM registrations WHERE status = 'cancelled'),
			(SELECT COUNT(*) FROM registrations WHERE created_at >= date_trunc('month', NOW())),
			COALESCE((SELECT SUM(amount_paid) FROM registrations WHERE payment_status = 'paid'), 0),
			COALESCE((SELECT SUM(amount_paid) FROM registrations WHERE payment_status = 'paid' AND created_at >= date_trunc('month', NOW())), 0),
			(SELECT COUNT(*) FROM registrations WHERE payment_status = 'paid'),
			COALESCE((SELECT AVG(amount_paid) FROM registrations WHERE payment_status = 'paid'), 0),
			COALESCE((SELECT SUM(commission_amount) FROM commission_transactions), 0)
	`
	stats := &dto.PlatformStats{}
	err := r.pool.QueryRow(ctx, query).Scan(
		&stats.TotalUsers,
		&stats.ActiveUsers,
		&stats.SuspendedUsers,
		&stats.AdminUsers,
		&stats.OrganizerUsers,
		&stats.ParticipantUsers,
		&stats.NewUsersThisMonth,
		&stats.TotalEvents,
		&stats.PublishedEvents,
		&stats.DraftEvents,
		&stats.CancelledEvents,
		&stats.FeaturedEvents,
		&stats.FlaggedEvents,
		&stats.NewEventsThisMonth,
		&stats.TotalRegistrations,
		&stats.ConfirmedRegistrations,
		&stats.PendingRegistrations,
		&stats.CancelledRegistrations,
		&stats.NewRegistrationsThisMonth,
		&stats.TotalRevenue,
		&stats.RevenueThisMonth,
		&stats.TotalPaidRegistrations,
		&stats.AverageTicketPrice,
		&stats.CommissionRevenue,
	)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// TopOrganizers ranks organizers by ticket revenue
func (r *PostgresStatsRepository) TopOrganizers(ctx context.Context, limit int) ([]dto.TopOrganizer, error) {
	query := `
		SELECT u.id, u.first_name || ' ' || u.last_name, u.email,
			COUNT(DISTINCT e.id),
			COUNT(reg.id),
			COALESCE(SUM(reg.amount_paid) FILTER (WHERE reg.payment_status = 'paid'), 0)
		FROM users u
		JOIN events e ON e.organizer_id = u.id
		LEFT JOIN registrations reg ON reg.event_id = e.id
		WHERE u.role = 'organizer'
		GROUP BY u.id, u.first_name, u.last_name, u.email
		ORDER BY 6 DESC, 5 DESC
		LIMIT $1
	`
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ranking := []dto.TopOrganizer{}
	for rows.Next() {
		var row dto.TopOrganizer
		if err := rows.Scan(&row.ID, &row.Name, &row.Email,
			&row.TotalEvents, &row.TotalRegistrations, &row.TotalRevenue); err != nil {
			return nil, err
		}
		ranking = append(ranking, row)
	}
	return ranking, rows.Err()
}

// TopEvents ranks events by confirmed registrations
func (r *PostgresStatsRepository) TopEvents(ctx context.Context, limit int) ([]dto.TopEvent, error) {
	query := `
		SELECT e.id, e.title, u.first_name || ' ' || u.last_name,
			COUNT(reg.id) FILTER (WHERE reg.status = 'confirmed'),
			COALESCE(SUM(reg.amount_paid) FILTER (WHERE reg.payment_status = 'paid'), 0)
		FROM events e
		JOIN users u ON u.id = e.organizer_id
		LEFT JOIN registrations reg ON reg.event_id = e.id
		GROUP BY e.id, e.title, u.first_name, u.last_name
		ORDER BY 4 DESC, 5 DESC
		LIMIT $1
	`
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ranking := []dto.TopEvent{}
	for rows.Next() {
		var row dto.TopEvent
		if err := rows.Scan(&row.ID, &row.Title, &row.OrganizerName,
			&row.TotalRegistrations, &row.TotalRevenue); err != nil {
			return nil, err
		}
		ranking = append(ranking, row)
	}
	return ranking, rows.Err()
}
