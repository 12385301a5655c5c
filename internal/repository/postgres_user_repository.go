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

// PostgresUserRepository implements UserRepository using PostgreSQL
type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresUserRepository creates a new PostgresUserRepository
func NewPostgresUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

const userColumns = `id, email, hashed_password, first_name, last_name, role,
	COALESCE(country_code, ''), COALESCE(country_name, ''),
	COALESCE(phone_country_code, ''), COALESCE(phone, ''), COALESCE(phone_full, ''),
	COALESCE(preferred_language, 'fr'), is_active, is_verified, is_suspended,
	suspension_reason, suspended_at, suspended_by_admin_id, last_login_at,
	created_at, updated_at`

func scanUser(row pgx.Row) (*domain.User, error) {
	user := &domain.User{}
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.HashedPassword,
		&user.FirstName,
		&user.LastName,
		&user.Role,
		&user.CountryCode,
		&user.CountryName,
		&user.PhoneCountryCode,
		&user.Phone,
		&user.PhoneFull,
		&user.PreferredLanguage,
		&user.IsActive,
		&user.IsVerified,
		&user.IsSuspended,
		&user.SuspensionReason,
		&user.SuspendedAt,
		&user.SuspendedByAdminID,
		&user.LastLoginAt,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

// Create creates a new user and fills the generated ID
func (r *PostgresUserRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (email, hashed_password, first_name, last_name, role,
			country_code, country_name, phone_country_code, phone, phone_full,
			preferred_language, is_active, is_verified, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id
	`
	return r.pool.QueryRow(ctx, query,
		user.Email,
		user.HashedPassword,
		user.FirstName,
		user.LastName,
		user.Role,
		user.CountryCode,
		user.CountryName,
		user.PhoneCountryCode,
		user.Phone,
		user.PhoneFull,
		user.PreferredLanguage,
		user.IsActive,
		user.IsVerified,
		user.CreatedAt,
		user.UpdatedAt,
	).Scan(&user.ID)
}

// GetByID retrieves a user by ID
func (r *PostgresUserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.pool.QueryRow(ctx, query, id))
}

// GetByEmail retrieves a user by email
func (r *PostgresUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.pool.QueryRow(ctx, query, email))
}

// Update persists every mutable field of a user
func (r *PostgresUserRepository) Update(ctx context.Context, user *domain.User) error {
	query := `
		UPDATE users
		SET email = $2, hashed_password = $3, first_name = $4, last_name = $5,
			role = $6, country_code = $7, country_name = $8,
			phone_country_code = $9, phone = $10, phone_full = $11,
			preferred_language = $12, is_active = $13, is_verified = $14,
			is_suspended = $15, suspension_reason = $16, suspended_at = $17,
			suspended_by_admin_id = $18, updated_at = $19
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query,
		user.ID,
		user.Email,
		user.HashedPassword,
		user.FirstName,
		user.LastName,
		user.Role,
		user.CountryCode,
		user.CountryName,
		user.PhoneCountryCode,
		user.Phone,
		user.PhoneFull,
		user.PreferredLanguage,
		user.IsActive,
		user.IsVerified,
		user.IsSuspended,
		user.SuspensionReason,
		user.SuspendedAt,
		user.SuspendedByAdminID,
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

// Delete removes a user; registrations cascade at the schema level
func (r *PostgresUserRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// List returns a filtered page of users plus the unpaged total
func (r *PostgresUserRepository) List(ctx context.Context, q *dto.ListUsersQuery) ([]domain.User, int, error) {
	where := `WHERE 1=1`
	args := []interface{}{}
	idx := 1

	if q.Role != "" {
		where += fmt.Sprintf(` AND role = $%d`, idx)
		args = append(args, q.Role)
		idx++
	}
	if q.Suspended != nil {
		where += fmt.Sprintf(` AND is_suspended = $%d`, idx)
		args = append(args, *q.Suspended)
		idx++
	}
	if q.Search != "" {
		where += fmt.Sprintf(` AND (email ILIKE $%d OR first_name ILIKE $%d OR last_name ILIKE $%d)`, idx, idx, idx)
		args = append(args, "%"+q.Search+"%")
		idx++
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + userColumns + ` FROM users ` + where +
		fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, q.Limit, (q.Page-1)*q.Limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	users := []domain.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, *user)
	}
	return users, total, rows.Err()
}

// TouchLastLogin stamps the last successful login time
func (r *PostgresUserRepository) TouchLastLogin(ctx context.Context, id int64, at time.Time) error {
	_, err := r.pool.Exec(ctx, `UPDATE users SET last_login_at = $2 WHERE id = $1`, id, at)
	return err
}
