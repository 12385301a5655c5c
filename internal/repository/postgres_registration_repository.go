package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/emldov7/evMonde--sub000/internal/domain"
)

// PostgresRegistrationRepository implements RegistrationRepository using PostgreSQL
type PostgresRegistrationRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRegistrationRepository creates a new PostgresRegistrationRepository
func NewPostgresRegistrationRepository(pool *pgxpool.Pool) *PostgresRegistrationRepository {
	return &PostgresRegistrationRepository{pool: pool}
}

const registrationColumns = `id, registration_type, event_id, user_id, ticket_id,
	COALESCE(guest_first_name, ''), COALESCE(guest_last_name, ''), COALESCE(guest_email, ''),
	COALESCE(guest_country_code, ''), COALESCE(guest_phone_country_code, ''),
	COALESCE(guest_phone, ''), COALESCE(guest_phone_full, ''),
	registration_date, waitlist_joined_at, offer_expires_at,
	status, payment_status, amount_paid, COALESCE(currency, ''),
	stripe_session_id, stripe_payment_intent_id,
	COALESCE(qr_code_url, ''), COALESCE(qr_code_data, ''),
	scanned_count, first_scan_at, last_scan_at, scanned_by,
	email_sent, email_sent_at, sms_sent, sms_sent_at,
	created_at, updated_at`

func scanRegistration(row pgx.Row) (*domain.Registration, error) {
	reg := &domain.Registration{}
	err := row.Scan(
		&reg.ID,
		&reg.RegistrationType,
		&reg.EventID,
		&reg.UserID,
		&reg.TicketID,
		&reg.GuestFirstName,
		&reg.GuestLastName,
		&reg.GuestEmail,
		&reg.GuestCountryCode,
		&reg.GuestPhoneCountryCode,
		&reg.GuestPhone,
		&reg.GuestPhoneFull,
		&reg.RegistrationDate,
		&reg.WaitlistJoinedAt,
		&reg.OfferExpiresAt,
		&reg.Status,
		&reg.PaymentStatus,
		&reg.AmountPaid,
		&reg.Currency,
		&reg.StripeSessionID,
		&reg.StripePaymentIntentID,
		&reg.QRCodeURL,
		&reg.QRCodeData,
		&reg.ScannedCount,
		&reg.FirstScanAt,
		&reg.LastScanAt,
		&reg.ScannedBy,
		&reg.EmailSent,
		&reg.EmailSentAt,
		&reg.SMSSent,
		&reg.SMSSentAt,
		&reg.CreatedAt,
		&reg.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return reg, nil
}

// Create creates a new registration and fills the generated ID
func (r *PostgresRegistrationRepository) Create(ctx context.Context, reg *domain.Registration) error {
	query := `
		INSERT INTO registrations (registration_type, event_id, user_id, ticket_id,
			guest_first_name, guest_last_name, guest_email, guest_country_code,
			guest_phone_country_code, guest_phone, guest_phone_full,
			registration_date, waitlist_joined_at, offer_expires_at,
			status, payment_status, amount_paid, currency,
			stripe_session_id, stripe_payment_intent_id,
			qr_code_url, qr_code_data, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20, $21, $22, $23, $24)
		RETURNING id
	`
	var qrData interface{}
	if reg.QRCodeData != "" {
		qrData = reg.QRCodeData
	}
	return r.pool.QueryRow(ctx, query,
		reg.RegistrationType,
		reg.EventID,
		reg.UserID,
		reg.TicketID,
		reg.GuestFirstName,
		reg.GuestLastName,
		reg.GuestEmail,
		reg.GuestCountryCode,
		reg.GuestPhoneCountryCode,
		reg.GuestPhone,
		reg.GuestPhoneFull,
		reg.RegistrationDate,
		reg.WaitlistJoinedAt,
		reg.OfferExpiresAt,
		reg.Status,
		reg.PaymentStatus,
		reg.AmountPaid,
		reg.Currency,
		reg.StripeSessionID,
		reg.StripePaymentIntentID,
		reg.QRCodeURL,
		qrData,
		reg.CreatedAt,
		reg.UpdatedAt,
	).Scan(&reg.ID)
}

// GetByID retrieves a registration by ID
func (r *PostgresRegistrationRepository) GetByID(ctx context.Context, id int64) (*domain.Registration, error) {
	query := `SELECT ` + registrationColumns + ` FROM registrations WHERE id = $1`
	return scanRegistration(r.pool.QueryRow(ctx, query, id))
}

// GetByQRCode retrieves a registration by its QR payload
func (r *PostgresRegistrationRepository) GetByQRCode(ctx context.Context, qrCodeData string) (*domain.Registration, error) {
	query := `SELECT ` + registrationColumns + ` FROM registrations WHERE qr_code_data = $1`
	return scanRegistration(r.pool.QueryRow(ctx, query, qrCodeData))
}

// GetByStripeSession retrieves a registration by its checkout session
func (r *PostgresRegistrationRepository) GetByStripeSession(ctx context.Context, sessionID string) (*domain.Registration, error) {
	query := `SELECT ` + registrationColumns + ` FROM registrations WHERE stripe_session_id = $1`
	return scanRegistration(r.pool.QueryRow(ctx, query, sessionID))
}

// GetByEventAndUser finds a user's live registration for an event
func (r *PostgresRegistrationRepository) GetByEventAndUser(ctx context.Context, eventID, userID int64) (*domain.Registration, error) {
	query := `SELECT ` + registrationColumns + ` FROM registrations
		WHERE event_id = $1 AND user_id = $2 AND status NOT IN ($3, $4)
		ORDER BY created_at DESC LIMIT 1`
	return scanRegistration(r.pool.QueryRow(ctx, query, eventID, userID,
		domain.RegistrationStatusCancelled, domain.RegistrationStatusRefunded))
}

// GetByEventAndGuestEmail finds a guest's live registration for an event
func (r *PostgresRegistrationRepository) GetByEventAndGuestEmail(ctx context.Context, eventID int64, email string) (*domain.Registration, error) {
	query := `SELECT ` + registrationColumns + ` FROM registrations
		WHERE event_id = $1 AND guest_email = $2 AND status NOT IN ($3, $4)
		ORDER BY created_at DESC LIMIT 1`
	return scanRegistration(r.pool.QueryRow(ctx, query, eventID, email,
		domain.RegistrationStatusCancelled, domain.RegistrationStatusRefunded))
}

// Update persists the mutable fields of a registration
func (r *PostgresRegistrationRepository) Update(ctx context.Context, reg *domain.Registration) error {
	query := `
		UPDATE registrations
		SET status = $2, payment_status = $3, amount_paid = $4, currency = $5,
			stripe_session_id = $6, stripe_payment_intent_id = $7,
			qr_code_url = $8, qr_code_data = NULLIF($9, ''),
			waitlist_joined_at = $10, offer_expires_at = $11,
			email_sent = $12, email_sent_at = $13,
			sms_sent = $14, sms_sent_at = $15, updated_at = $16
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query,
		reg.ID,
		reg.Status,
		reg.PaymentStatus,
		reg.AmountPaid,
		reg.Currency,
		reg.StripeSessionID,
		reg.StripePaymentIntentID,
		reg.QRCodeURL,
		reg.QRCodeData,
		reg.WaitlistJoinedAt,
		reg.OfferExpiresAt,
		reg.EmailSent,
		reg.EmailSentAt,
		reg.SMSSent,
		reg.SMSSentAt,
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

// ListByUser returns a user's registrations, newest first
func (r *PostgresRegistrationRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Registration, error) {
	query := `SELECT ` + registrationColumns + ` FROM registrations
		WHERE user_id = $1 ORDER BY created_at DESC`
	return r.queryMany(ctx, query, userID)
}

// ListByEvent returns every registration of an event, oldest first
func (r *PostgresRegistrationRepository) ListByEvent(ctx context.Context, eventID int64) ([]domain.Registration, error) {
	query := `SELECT ` + registrationColumns + ` FROM registrations
		WHERE event_id = $1 ORDER BY created_at ASC`
	return r.queryMany(ctx, query, eventID)
}

func (r *PostgresRegistrationRepository) queryMany(ctx context.Context, query string, args ...interface{}) ([]domain.Registration, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	regs := []domain.Registration{}
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, err
		}
		regs = append(regs, *reg)
	}
	return regs, rows.Err()
}

// CountConfirmedByEvent counts registrations holding a seat
func (r *PostgresRegistrationRepository) CountConfirmedByEvent(ctx context.Context, eventID int64) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM registrations WHERE event_id = $1 AND status = $2`,
		eventID, domain.RegistrationStatusConfirmed).Scan(&count)
	return count, err
}

// OldestWaitlisted returns the registration that has been queued the longest
// for an event, or nil when the waitlist is empty.
func (r *PostgresRegistrationRepository) OldestWaitlisted(ctx context.Context, eventID int64) (*domain.Registration, error) {
	query := `SELECT ` + registrationColumns + ` FROM registrations
		WHERE event_id = $1 AND status = $2
		ORDER BY waitlist_joined_at ASC NULLS LAST
		LIMIT 1`
	return scanRegistration(r.pool.QueryRow(ctx, query, eventID, domain.RegistrationStatusWaitlist))
}

// RecordScan increments the scan counter and stamps the scan times. The
// first scan also sets first_scan_at; the counter never moves backwards.
func (r *PostgresRegistrationRepository) RecordScan(ctx context.Context, id int64, scannedBy string, at time.Time) error {
	query := `
		UPDATE registrations
		SET scanned_count = scanned_count + 1,
			first_scan_at = COALESCE(first_scan_at, $2),
			last_scan_at = $2,
			scanned_by = NULLIF($3, ''),
			updated_at = $2
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query, id, at, scannedBy)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
