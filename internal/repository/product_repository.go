package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"shopfront/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const productColumns = "id, name, description, affiliate_link, price, image_url, image_path, category, is_top_pick, created_at"

// productRepository implements the ProductRepository interface using PostgreSQL.
type productRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(pool *pgxpool.Pool, logger zerolog.Logger) ProductRepository {
	return &productRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "product").Logger(),
	}
}

// Insert creates a new product row and returns the persisted row.
func (r *productRepository) Insert(ctx context.Context, in *model.NewProduct) (*model.Product, error) {
	query := `
		INSERT INTO products (name, description, affiliate_link, price, image_url, image_path, category, is_top_pick)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + productColumns

	var p model.Product
	err := r.pool.QueryRow(ctx, query,
		in.Name,
		in.Description,
		in.AffiliateLink,
		in.Price,
		in.ImageURL,
		in.ImagePath,
		in.Category,
		in.IsTopPick,
	).Scan(scanTargets(&p)...)
	if err != nil {
		r.logger.Error().Err(err).Str("name", in.Name).Msg("failed to insert product")
		return nil, fmt.Errorf("failed to insert product: %w", err)
	}

	return &p, nil
}

// List retrieves products matching the filter within its window,
// ordered by creation time descending.
func (r *productRepository) List(ctx context.Context, filter ListFilter) ([]model.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE ($1 = '' OR category = $1)
		  AND ($2 = '' OR name ILIKE '%' || $2 || '%' OR description ILIKE '%' || $2 || '%')
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`

	rows, err := r.pool.Query(ctx, query, filter.Category, filter.Search, filter.Limit, filter.Offset)
	if err != nil {
		r.logger.Error().Err(err).
			Str("category", filter.Category).
			Str("search", filter.Search).
			Int("limit", filter.Limit).
			Int("offset", filter.Offset).
			Msg("failed to query products")
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	return r.collectRows(rows)
}

// Count returns the total number of rows matching the filter.
func (r *productRepository) Count(ctx context.Context, filter ListFilter) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM products
		WHERE ($1 = '' OR category = $1)
		  AND ($2 = '' OR name ILIKE '%' || $2 || '%' OR description ILIKE '%' || $2 || '%')
	`

	var count int
	err := r.pool.QueryRow(ctx, query, filter.Category, filter.Search).Scan(&count)
	if err != nil {
		r.logger.Error().Err(err).
			Str("category", filter.Category).
			Str("search", filter.Search).
			Msg("failed to count products")
		return 0, fmt.Errorf("failed to count products: %w", err)
	}

	return count, nil
}

// ListTopPicks retrieves up to limit top-pick products, newest first.
func (r *productRepository) ListTopPicks(ctx context.Context, limit int) ([]model.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE is_top_pick
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		r.logger.Error().Err(err).Int("limit", limit).Msg("failed to query top picks")
		return nil, fmt.Errorf("failed to query top picks: %w", err)
	}
	defer rows.Close()

	return r.collectRows(rows)
}

// GetByID retrieves a single product by its ID.
func (r *productRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE id = $1
	`

	var p model.Product
	err := r.pool.QueryRow(ctx, query, id).Scan(scanTargets(&p)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("product_id", id.String()).Msg("product not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to query product")
		return nil, fmt.Errorf("failed to query product: %w", err)
	}

	return &p, nil
}

// UpdatePartial applies the non-nil fields of the update record to the
// row matching id and returns the updated row.
func (r *productRepository) UpdatePartial(ctx context.Context, id uuid.UUID, upd *model.ProductUpdate) (*model.Product, error) {
	var (
		set  []string
		args []any
	)
	add := func(column string, value any) {
		args = append(args, value)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if upd.Name != nil {
		add("name", *upd.Name)
	}
	if upd.AffiliateLink != nil {
		add("affiliate_link", *upd.AffiliateLink)
	}
	if upd.Description != nil {
		add("description", nullIfEmpty(*upd.Description))
	}
	if upd.Price != nil {
		add("price", nullIfEmpty(*upd.Price))
	}
	if upd.Category != nil {
		add("category", nullIfEmpty(*upd.Category))
	}
	if upd.IsTopPick != nil {
		add("is_top_pick", *upd.IsTopPick)
	}
	if upd.ImageURL != nil {
		add("image_url", *upd.ImageURL)
	}
	if upd.ImagePath != nil {
		add("image_path", *upd.ImagePath)
	}

	if len(set) == 0 {
		return nil, model.ErrNoFieldsToUpdate
	}

	args = append(args, id)
	query := fmt.Sprintf(
		"UPDATE products SET %s WHERE id = $%d RETURNING %s",
		strings.Join(set, ", "), len(args), productColumns,
	)

	var p model.Product
	err := r.pool.QueryRow(ctx, query, args...).Scan(scanTargets(&p)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("product_id", id.String()).Msg("product not found for update")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to update product")
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	return &p, nil
}

// Delete removes the row matching id.
func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, "DELETE FROM products WHERE id = $1", id)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to delete product")
		return fmt.Errorf("failed to delete product: %w", err)
	}

	if tag.RowsAffected() == 0 {
		r.logger.Debug().Str("product_id", id.String()).Msg("product not found for delete")
		return model.ErrProductNotFound
	}

	return nil
}

// collectRows scans a product result set.
func (r *productRepository) collectRows(rows pgx.Rows) ([]model.Product, error) {
	var products []model.Product
	for rows.Next() {
		var p model.Product
		if err := rows.Scan(scanTargets(&p)...); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan product row")
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating product rows")
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

// scanTargets returns scan destinations in productColumns order.
func scanTargets(p *model.Product) []any {
	return []any{
		&p.ID,
		&p.Name,
		&p.Description,
		&p.AffiliateLink,
		&p.Price,
		&p.ImageURL,
		&p.ImagePath,
		&p.Category,
		&p.IsTopPick,
		&p.CreatedAt,
	}
}

// nullIfEmpty maps a present-but-empty form value to SQL NULL.
func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
