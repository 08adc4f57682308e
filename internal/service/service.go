package service

import (
	"context"

	"shopfront/internal/model"

	"github.com/google/uuid"
)

// ProductService defines operations for catalogue management.
type ProductService interface {
	// Create uploads the product image, resolves its public URL and
	// inserts the product row. The image is mandatory.
	Create(ctx context.Context, in *model.NewProduct, image *model.ImageUpload) (*model.Product, error)

	// List retrieves a filtered, paginated page of products together
	// with the total matching count.
	List(ctx context.Context, q model.ListQuery) (*model.ProductPage, error)

	// TopPicks retrieves the promoted products, newest first, capped.
	TopPicks(ctx context.Context) ([]model.Product, error)

	// Update applies a partial update, optionally replacing the
	// product image.
	Update(ctx context.Context, id uuid.UUID, upd *model.ProductUpdate, image *model.ImageUpload) (*model.Product, error)

	// Delete removes the product row, then best-effort removes its
	// stored image.
	Delete(ctx context.Context, id uuid.UUID) error
}
