package repository

import (
	"context"

	"shopfront/internal/model"

	"github.com/google/uuid"
)

// ListFilter holds the resolved filter and window for a list query.
// Empty Category/Search mean no filtering on that dimension.
type ListFilter struct {
	Category string
	Search   string
	Limit    int
	Offset   int
}

// ProductRepository defines the interface for product data access operations.
type ProductRepository interface {
	// Insert creates a new product row and returns the persisted row,
	// including the server-assigned id and creation timestamp.
	Insert(ctx context.Context, in *model.NewProduct) (*model.Product, error)

	// List retrieves products matching the filter, newest first,
	// within the filter's limit/offset window.
	List(ctx context.Context, filter ListFilter) ([]model.Product, error)

	// Count returns the total number of rows matching the filter,
	// independent of the pagination window.
	Count(ctx context.Context, filter ListFilter) (int, error)

	// ListTopPicks retrieves up to limit top-pick products, newest first.
	ListTopPicks(ctx context.Context, limit int) ([]model.Product, error)

	// GetByID retrieves a single product. A missing row is (nil, nil).
	GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error)

	// UpdatePartial applies the non-nil fields of the update record to
	// the row matching id and returns the updated row. A missing row
	// is (nil, nil).
	UpdatePartial(ctx context.Context, id uuid.UUID, upd *model.ProductUpdate) (*model.Product, error)

	// Delete removes the row matching id. A missing row yields
	// model.ErrProductNotFound.
	Delete(ctx context.Context, id uuid.UUID) error
}
