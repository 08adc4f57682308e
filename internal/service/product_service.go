package service

import (
	"context"
	"fmt"
	"time"

	"shopfront/internal/model"
	"shopfront/internal/repository"
	"shopfront/internal/storage"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	defaultPage     = 1
	defaultPageSize = 12
	topPicksLimit   = 8
)

// productService implements ProductService.
type productService struct {
	repo    repository.ProductRepository
	storage storage.ObjectStorage
	logger  zerolog.Logger
}

// NewProductService creates a new product service.
func NewProductService(repo repository.ProductRepository, store storage.ObjectStorage, logger zerolog.Logger) ProductService {
	return &productService{
		repo:    repo,
		storage: store,
		logger:  logger.With().Str("service", "product").Logger(),
	}
}

// Create validates the input, uploads the image, resolves its public
// URL and inserts the row. Validation runs before any storage write.
// If the insert fails after a successful upload, the uploaded object
// is removed best-effort so the image lifecycle tracks the row.
func (s *productService) Create(ctx context.Context, in *model.NewProduct, image *model.ImageUpload) (*model.Product, error) {
	if in.Name == "" {
		return nil, model.MissingFieldError("name")
	}
	if in.AffiliateLink == "" {
		return nil, model.MissingFieldError("affiliateLink")
	}
	if image == nil {
		return nil, model.MissingFieldError("productImage")
	}

	key := storage.ObjectKey(time.Now(), image.Filename)
	if err := s.storage.Upload(ctx, key, image.Content, image.Size, image.ContentType, false); err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("image upload failed")
		return nil, fmt.Errorf("failed to upload product image: %w", err)
	}

	url, err := s.storage.PublicURL(key)
	if err != nil {
		// A product must never reference an image without a resolvable
		// URL; discard the object and fail the create.
		s.removeObject(ctx, key)
		s.logger.Error().Err(err).Str("key", key).Msg("public URL resolution failed")
		return nil, fmt.Errorf("failed to resolve image URL: %w", err)
	}

	in.ImageURL = url
	in.ImagePath = key

	created, err := s.repo.Insert(ctx, in)
	if err != nil {
		s.removeObject(ctx, key)
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.logger.Info().
		Str("product_id", created.ID.String()).
		Str("name", created.Name).
		Bool("is_top_pick", created.IsTopPick).
		Msg("product created")

	return created, nil
}

// List retrieves a page of products plus the total matching count.
func (s *productService) List(ctx context.Context, q model.ListQuery) (*model.ProductPage, error) {
	page := q.Page
	if page < defaultPage {
		page = defaultPage
	}
	limit := q.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}

	filter := repository.ListFilter{
		Category: q.Category,
		Search:   q.Search,
		Limit:    limit,
		Offset:   (page - 1) * limit,
	}

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	products, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	if products == nil {
		products = []model.Product{}
	}

	s.logger.Debug().
		Int("count", len(products)).
		Int("total", total).
		Int("page", page).
		Msg("retrieved products")

	return &model.ProductPage{
		Products:      products,
		TotalProducts: total,
		CurrentPage:   page,
		TotalPages:    (total + limit - 1) / limit,
	}, nil
}

// TopPicks retrieves promoted products, newest first, capped at 8.
func (s *productService) TopPicks(ctx context.Context) ([]model.Product, error) {
	products, err := s.repo.ListTopPicks(ctx, topPicksLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list top picks: %w", err)
	}
	if products == nil {
		products = []model.Product{}
	}
	return products, nil
}

// Update applies a partial update. A replacement image is uploaded
// first (overwrite allowed); once the row update is confirmed the
// superseded object is removed best-effort.
func (s *productService) Update(ctx context.Context, id uuid.UUID, upd *model.ProductUpdate, image *model.ImageUpload) (*model.Product, error) {
	if upd.Empty() && image == nil {
		return nil, model.ErrNoFieldsToUpdate
	}

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to look up product: %w", err)
	}
	if existing == nil {
		return nil, model.ErrProductNotFound
	}

	var supersededPath string
	if image != nil {
		key := storage.ObjectKey(time.Now(), image.Filename)
		if err := s.storage.Upload(ctx, key, image.Content, image.Size, image.ContentType, true); err != nil {
			s.logger.Error().Err(err).Str("key", key).Msg("replacement image upload failed")
			return nil, fmt.Errorf("failed to upload product image: %w", err)
		}

		url, err := s.storage.PublicURL(key)
		if err != nil {
			s.removeObject(ctx, key)
			s.logger.Error().Err(err).Str("key", key).Msg("public URL resolution failed")
			return nil, fmt.Errorf("failed to resolve image URL: %w", err)
		}

		upd.ImageURL = &url
		upd.ImagePath = &key
		if existing.ImagePath != nil {
			supersededPath = *existing.ImagePath
		}
	}

	updated, err := s.repo.UpdatePartial(ctx, id, upd)
	if err != nil {
		if upd.ImagePath != nil {
			s.removeObject(ctx, *upd.ImagePath)
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	if updated == nil {
		// Row vanished between the lookup and the update.
		if upd.ImagePath != nil {
			s.removeObject(ctx, *upd.ImagePath)
		}
		return nil, model.ErrProductNotFound
	}

	if supersededPath != "" && (upd.ImagePath == nil || supersededPath != *upd.ImagePath) {
		s.removeObject(ctx, supersededPath)
	}

	s.logger.Info().Str("product_id", id.String()).Msg("product updated")

	return updated, nil
}

// Delete removes the product row, then best-effort removes the stored
// image. A lookup failure aborts the delete; a missing row is a clean
// not-found with no side effects.
func (s *productService) Delete(ctx context.Context, id uuid.UUID) error {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to look up product: %w", err)
	}
	if existing == nil {
		return model.ErrProductNotFound
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	// The row is gone, so the operation has succeeded from the
	// caller's perspective; image removal failures are logged only.
	if existing.ImagePath != nil && *existing.ImagePath != "" {
		s.removeObject(ctx, *existing.ImagePath)
	}

	s.logger.Info().Str("product_id", id.String()).Msg("product deleted")

	return nil
}

// removeObject deletes a stored object, logging failures instead of
// propagating them.
func (s *productService) removeObject(ctx context.Context, key string) {
	if err := s.storage.Delete(ctx, key); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("failed to remove stored image")
	}
}
