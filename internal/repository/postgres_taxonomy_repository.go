package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/emldov7/evMonde--sub000/internal/domain"
)

// PostgresTaxonomyRepository implements TaxonomyRepository using PostgreSQL
type PostgresTaxonomyRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresTaxonomyRepository creates a new PostgresTaxonomyRepository
func NewPostgresTaxonomyRepository(pool *pgxpool.Pool) *PostgresTaxonomyRepository {
	return &PostgresTaxonomyRepository{pool: pool}
}

const categoryColumns = `id, name, slug, COALESCE(description, ''), COALESCE(icon, ''),
	COALESCE(color, ''), is_active, display_order, custom_commission_rate,
	created_at, updated_at`

const tagColumns = `id, name, slug, COALESCE(color, ''), is_active, created_at, updated_at`

// ListCategories returns categories in display order
func (r *PostgresTaxonomyRepository) ListCategories(ctx context.Context, activeOnly bool) ([]domain.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories`
	if activeOnly {
		query += ` WHERE is_active = TRUE`
	}
	query += ` ORDER BY display_order ASC, name ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := []domain.Category{}
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(
			&c.ID, &c.Name, &c.Slug, &c.Description, &c.Icon, &c.Color,
			&c.IsActive, &c.DisplayOrder, &c.CustomCommissionRate,
			&c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// GetCategory retrieves a category by ID
func (r *PostgresTaxonomyRepository) GetCategory(ctx context.Context, id int64) (*domain.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE id = $1`
	c := &domain.Category{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.Name, &c.Slug, &c.Description, &c.Icon, &c.Color,
		&c.IsActive, &c.DisplayOrder, &c.CustomCommissionRate,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return c, nil
}

// ListTags returns tags in name order
func (r *PostgresTaxonomyRepository) ListTags(ctx context.Context, activeOnly bool) ([]domain.Tag, error) {
	query := `SELECT ` + tagColumns + ` FROM tags`
	if activeOnly {
		query += ` WHERE is_active = TRUE`
	}
	query += ` ORDER BY name ASC`
	return r.queryTags(ctx, query)
}

// ListTagsByEvent returns the tags attached to an event
func (r *PostgresTaxonomyRepository) ListTagsByEvent(ctx context.Context, eventID int64) ([]domain.Tag, error) {
	query := `SELECT t.id, t.name, t.slug, COALESCE(t.color, ''), t.is_active, t.created_at, t.updated_at
		FROM tags t
		JOIN event_tags et ON et.tag_id = t.id
		WHERE et.event_id = $1
		ORDER BY t.name ASC`
	return r.queryTags(ctx, query, eventID)
}

func (r *PostgresTaxonomyRepository) queryTags(ctx context.Context, query string, args ...interface{}) ([]domain.Tag, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tags := []domain.Tag{}
	for rows.Next() {
		var t domain.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Slug, &t.Color, &t.IsActive, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}
