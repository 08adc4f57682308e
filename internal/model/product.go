package model

import (
	"io"
	"time"

	"github.com/google/uuid"
)

// Product represents a catalogue product row.
type Product struct {
	ID            uuid.UUID `json:"id" db:"id"`
	Name          string    `json:"name" db:"name"`
	Description   *string   `json:"description" db:"description"`
	AffiliateLink string    `json:"affiliate_link" db:"affiliate_link"`
	Price         *string   `json:"price" db:"price"`
	ImageURL      *string   `json:"image_url" db:"image_url"`
	ImagePath     *string   `json:"image_path" db:"image_path"`
	Category      *string   `json:"category" db:"category"`
	IsTopPick     bool      `json:"is_top_pick" db:"is_top_pick"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// NewProduct carries the fields for a product insert. ImageURL and
// ImagePath are filled in by the service once the image upload has
// been confirmed.
type NewProduct struct {
	Name          string
	Description   *string
	AffiliateLink string
	Price         *string
	Category      *string
	IsTopPick     bool
	ImageURL      string
	ImagePath     string
}

// ProductUpdate is a partial-update record. A nil pointer means the
// field was absent from the request and must be left unchanged; a
// pointer to an empty string means the field was present but empty
// (normalised to NULL for the nullable columns, passed through
// verbatim for name and affiliate link).
type ProductUpdate struct {
	Name          *string
	Description   *string
	AffiliateLink *string
	Price         *string
	Category      *string
	IsTopPick     *bool
	ImageURL      *string
	ImagePath     *string
}

// Empty reports whether the update record carries no fields at all.
func (u *ProductUpdate) Empty() bool {
	return u.Name == nil &&
		u.Description == nil &&
		u.AffiliateLink == nil &&
		u.Price == nil &&
		u.Category == nil &&
		u.IsTopPick == nil &&
		u.ImageURL == nil &&
		u.ImagePath == nil
}

// ImageUpload is an image payload extracted from a multipart request.
type ImageUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Content     io.Reader
}

// ListQuery holds the list endpoint's filter and pagination inputs.
type ListQuery struct {
	Category string
	Search   string
	Page     int
	Limit    int
}

// ProductPage is the paginated list response.
type ProductPage struct {
	Products      []Product `json:"products"`
	TotalProducts int       `json:"totalProducts"`
	CurrentPage   int       `json:"currentPage"`
	TotalPages    int       `json:"totalPages"`
}

// ProductResponse wraps a single product for mutation responses.
type ProductResponse struct {
	Message string   `json:"message"`
	Data    *Product `json:"data"`
}

// MessageResponse is the body for responses that carry no data.
type MessageResponse struct {
	Message string `json:"message"`
}
