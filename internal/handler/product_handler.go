package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"shopfront/internal/model"
	"shopfront/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// maxUploadMemory is the in-memory multipart threshold; larger uploads
// are staged to disk and removed again via MultipartForm.RemoveAll.
const maxUploadMemory = 10 << 20

const imageFormField = "productImage"

// ProductHandler handles product-related HTTP requests.
type ProductHandler struct {
	service service.ProductService
	logger  zerolog.Logger
}

// NewProductHandler creates a new product handler.
func NewProductHandler(service service.ProductService, logger zerolog.Logger) *ProductHandler {
	return &ProductHandler{
		service: service,
		logger:  logger.With().Str("handler", "product").Logger(),
	}
}

// Create handles POST /api/products requests.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", "", h.logger)
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form", err.Error(), h.logger)
		return
	}
	defer removeStagedFiles(r)

	image, closeImage, err := imageFromRequest(r)
	if err != nil {
		writeServiceError(w, err, "failed to read product image", h.logger)
		return
	}
	if closeImage != nil {
		defer closeImage()
	}

	in := &model.NewProduct{
		Name:          r.FormValue("name"),
		AffiliateLink: r.FormValue("affiliateLink"),
		Description:   optionalFormValue(r, "description"),
		Price:         optionalFormValue(r, "price"),
		Category:      optionalFormValue(r, "category"),
		IsTopPick:     parseTopPick(r.FormValue("isTopPick")),
	}

	product, err := h.service.Create(r.Context(), in, image)
	if err != nil {
		writeServiceError(w, err, "failed to create product", h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, model.ProductResponse{
		Message: "Product created successfully",
		Data:    product,
	})
}

// List handles GET /api/products requests with filtering and pagination.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", "", h.logger)
		return
	}

	q := model.ListQuery{
		Category: r.URL.Query().Get("category"),
		Search:   r.URL.Query().Get("search"),
		Page:     1,
		Limit:    12,
	}

	if pageStr := r.URL.Query().Get("page"); pageStr != "" {
		page, err := strconv.Atoi(pageStr)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid page parameter", "", h.logger)
			return
		}
		q.Page = page
	}

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid limit parameter", "", h.logger)
			return
		}
		q.Limit = limit
	}

	page, err := h.service.List(r.Context(), q)
	if err != nil {
		writeServiceError(w, err, "failed to retrieve products", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, page)
}

// TopPicks handles GET /api/products/toppicks requests.
func (h *ProductHandler) TopPicks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", "", h.logger)
		return
	}

	products, err := h.service.TopPicks(r.Context())
	if err != nil {
		writeServiceError(w, err, "failed to retrieve top picks", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, products)
}

// Update handles PUT /api/products/{id} requests.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", "", h.logger)
		return
	}

	id, ok := h.productID(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form", err.Error(), h.logger)
		return
	}
	defer removeStagedFiles(r)

	image, closeImage, err := imageFromRequest(r)
	if err != nil {
		writeServiceError(w, err, "failed to read product image", h.logger)
		return
	}
	if closeImage != nil {
		defer closeImage()
	}

	upd := &model.ProductUpdate{
		Name:          presentFormValue(r, "name"),
		AffiliateLink: presentFormValue(r, "affiliateLink"),
		Description:   presentFormValue(r, "description"),
		Price:         presentFormValue(r, "price"),
		Category:      presentFormValue(r, "category"),
	}
	if v := presentFormValue(r, "isTopPick"); v != nil {
		isTopPick := parseTopPick(*v)
		upd.IsTopPick = &isTopPick
	}

	product, err := h.service.Update(r.Context(), id, upd, image)
	if err != nil {
		writeServiceError(w, err, "failed to update product", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, model.ProductResponse{
		Message: "Product updated successfully",
		Data:    product,
	})
}

// Delete handles DELETE /api/products/{id} requests.
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", "", h.logger)
		return
	}

	id, ok := h.productID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		writeServiceError(w, err, "failed to delete product", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, model.MessageResponse{
		Message: "Product deleted successfully",
	})
}

// productID extracts and parses the product id path segment. A
// malformed id can never match a row, so it reads as not-found.
func (h *ProductHandler) productID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	idStr := strings.TrimPrefix(r.URL.Path, "/api/products/")
	if idStr == "" {
		writeError(w, http.StatusBadRequest, "product ID is required", "", h.logger)
		return uuid.Nil, false
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		writeError(w, http.StatusNotFound, model.ErrProductNotFound.Message, "", h.logger)
		return uuid.Nil, false
	}

	return id, true
}

// imageFromRequest extracts the image payload from a multipart form.
// A missing file field is not an error here; the service decides
// whether the image is mandatory. Non-image content types are rejected
// before any processing.
func imageFromRequest(r *http.Request) (*model.ImageUpload, func(), error) {
	file, header, err := r.FormFile(imageFormField)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil, nil
		}
		return nil, nil, model.NewDomainError(model.ErrCodeInvalidImage, "invalid product image upload")
	}

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		file.Close()
		return nil, nil, model.ErrNotAnImage
	}

	upload := &model.ImageUpload{
		Filename:    header.Filename,
		ContentType: contentType,
		Size:        header.Size,
		Content:     file,
	}
	return upload, func() { file.Close() }, nil
}

// removeStagedFiles releases any disk-backed multipart staging,
// success or failure alike.
func removeStagedFiles(r *http.Request) {
	if r.MultipartForm != nil {
		_ = r.MultipartForm.RemoveAll()
	}
}

// optionalFormValue returns a pointer to a non-empty form value, nil
// otherwise. Used on create, where unsupplied optional fields are
// stored as NULL.
func optionalFormValue(r *http.Request, key string) *string {
	if value := r.FormValue(key); value != "" {
		return &value
	}
	return nil
}

// presentFormValue returns a pointer to the form value when the key
// was present in the request at all, nil when it was absent. Presence,
// not truthiness, decides inclusion in a partial update.
func presentFormValue(r *http.Request, key string) *string {
	if r.MultipartForm == nil {
		return nil
	}
	values, ok := r.MultipartForm.Value[key]
	if !ok || len(values) == 0 {
		return nil
	}
	return &values[0]
}

// parseTopPick coerces the transport's string-typed flag: exactly
// "true" is true, anything else is false.
func parseTopPick(value string) bool {
	return value == "true"
}
