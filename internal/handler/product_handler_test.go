package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"shopfront/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockProductService is a mock implementation of service.ProductService.
type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) Create(ctx context.Context, in *model.NewProduct, image *model.ImageUpload) (*model.Product, error) {
	args := m.Called(ctx, in, image)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockProductService) List(ctx context.Context, q model.ListQuery) (*model.ProductPage, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ProductPage), args.Error(1)
}

func (m *MockProductService) TopPicks(ctx context.Context) ([]model.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *MockProductService) Update(ctx context.Context, id uuid.UUID, upd *model.ProductUpdate, image *model.ImageUpload) (*model.Product, error) {
	args := m.Called(ctx, id, upd, image)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockProductService) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type formFile struct {
	filename    string
	contentType string
	content     []byte
}

// multipartBody builds a multipart request body from form fields and
// an optional productImage file part.
func multipartBody(t *testing.T, fields map[string]string, file *formFile) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for key, value := range fields {
		require.NoError(t, w.WriteField(key, value))
	}

	if file != nil {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition",
			fmt.Sprintf(`form-data; name=%q; filename=%q`, imageFormField, file.filename))
		header.Set("Content-Type", file.contentType)
		part, err := w.CreatePart(header)
		require.NoError(t, err)
		_, err = part.Write(file.content)
		require.NoError(t, err)
	}

	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func pngFile() *formFile {
	return &formFile{filename: "tee.png", contentType: "image/png", content: []byte("png-bytes")}
}

func strPtr(s string) *string { return &s }

func TestProductHandler_Create(t *testing.T) {
	logger := zerolog.Nop()

	persisted := &model.Product{
		ID:            uuid.New(),
		Name:          "Tee A",
		AffiliateLink: "https://x/a",
		ImageURL:      strPtr("https://cdn.example.com/k"),
		ImagePath:     strPtr("k"),
		CreatedAt:     time.Now(),
	}

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockProductService)
		h := NewProductHandler(mockService, logger)

		mockService.On("Create", mock.Anything,
			mock.MatchedBy(func(in *model.NewProduct) bool {
				return in.Name == "Tee A" &&
					in.AffiliateLink == "https://x/a" &&
					!in.IsTopPick &&
					in.Description == nil
			}),
			mock.MatchedBy(func(img *model.ImageUpload) bool {
				return img != nil && img.Filename == "tee.png" && img.ContentType == "image/png"
			}),
		).Return(persisted, nil)

		body, contentType := multipartBody(t, map[string]string{
			"name":          "Tee A",
			"affiliateLink": "https://x/a",
		}, pngFile())

		req := httptest.NewRequest(http.MethodPost, "/api/products", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()

		h.Create(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)

		var resp model.ProductResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		require.NotNil(t, resp.Data)
		assert.False(t, resp.Data.IsTopPick)
		assert.NotNil(t, resp.Data.ImageURL)
		mockService.AssertExpectations(t)
	})

	t.Run("isTopPick only for the exact string true", func(t *testing.T) {
		tests := []struct {
			value    string
			expected bool
		}{
			{"true", true},
			{"TRUE", false},
			{"True", false},
			{"1", false},
			{"", false},
		}

		for _, tt := range tests {
			t.Run(fmt.Sprintf("value=%q", tt.value), func(t *testing.T) {
				mockService := new(MockProductService)
				h := NewProductHandler(mockService, logger)

				mockService.On("Create", mock.Anything,
					mock.MatchedBy(func(in *model.NewProduct) bool {
						return in.IsTopPick == tt.expected
					}),
					mock.Anything,
				).Return(persisted, nil)

				body, contentType := multipartBody(t, map[string]string{
					"name":          "Tee A",
					"affiliateLink": "https://x/a",
					"isTopPick":     tt.value,
				}, pngFile())

				req := httptest.NewRequest(http.MethodPost, "/api/products", body)
				req.Header.Set("Content-Type", contentType)
				w := httptest.NewRecorder()

				h.Create(w, req)

				assert.Equal(t, http.StatusCreated, w.Code)
				mockService.AssertExpectations(t)
			})
		}
	})

	t.Run("Non-image payload rejected before service", func(t *testing.T) {
		mockService := new(MockProductService)
		h := NewProductHandler(mockService, logger)

		body, contentType := multipartBody(t, map[string]string{
			"name":          "Tee A",
			"affiliateLink": "https://x/a",
		}, &formFile{filename: "notes.txt", contentType: "text/plain", content: []byte("hi")})

		req := httptest.NewRequest(http.MethodPost, "/api/products", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()

		h.Create(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockService.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Missing image maps validation error to 400", func(t *testing.T) {
		mockService := new(MockProductService)
		h := NewProductHandler(mockService, logger)

		mockService.On("Create", mock.Anything, mock.Anything, mock.Anything).
			Return(nil, model.MissingFieldError("productImage"))

		body, contentType := multipartBody(t, map[string]string{
			"name":          "Tee A",
			"affiliateLink": "https://x/a",
		}, nil)

		req := httptest.NewRequest(http.MethodPost, "/api/products", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()

		h.Create(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)

		var resp ErrorResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, "productImage is required", resp.Message)
	})

	t.Run("Service failure maps to 500 with detail", func(t *testing.T) {
		mockService := new(MockProductService)
		h := NewProductHandler(mockService, logger)

		mockService.On("Create", mock.Anything, mock.Anything, mock.Anything).
			Return(nil, errors.New("bucket unavailable"))

		body, contentType := multipartBody(t, map[string]string{
			"name":          "Tee A",
			"affiliateLink": "https://x/a",
		}, pngFile())

		req := httptest.NewRequest(http.MethodPost, "/api/products", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()

		h.Create(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)

		var resp ErrorResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.NotEmpty(t, resp.Message)
		assert.Contains(t, resp.Error, "bucket unavailable")
	})

	t.Run("Non-multipart body rejected", func(t *testing.T) {
		mockService := new(MockProductService)
		h := NewProductHandler(mockService, logger)

		req := httptest.NewRequest(http.MethodPost, "/api/products", bytes.NewBufferString(`{}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		h.Create(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestProductHandler_List(t *testing.T) {
	logger := zerolog.Nop()

	emptyPage := &model.ProductPage{
		Products:    []model.Product{},
		CurrentPage: 1,
	}

	tests := []struct {
		name           string
		queryParams    string
		expectedQuery  model.ListQuery
		mockReturn     *model.ProductPage
		mockError      error
		expectedStatus int
		expectService  bool
	}{
		{
			name:           "Defaults",
			queryParams:    "",
			expectedQuery:  model.ListQuery{Page: 1, Limit: 12},
			mockReturn:     emptyPage,
			expectedStatus: http.StatusOK,
			expectService:  true,
		},
		{
			name:           "Explicit filters and window",
			queryParams:    "?category=tees&search=summer&page=2&limit=5",
			expectedQuery:  model.ListQuery{Category: "tees", Search: "summer", Page: 2, Limit: 5},
			mockReturn:     emptyPage,
			expectedStatus: http.StatusOK,
			expectService:  true,
		},
		{
			name:           "Invalid page parameter",
			queryParams:    "?page=abc",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Invalid limit parameter",
			queryParams:    "?limit=abc",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Service error",
			queryParams:    "",
			expectedQuery:  model.ListQuery{Page: 1, Limit: 12},
			mockError:      errors.New("database error"),
			expectedStatus: http.StatusInternalServerError,
			expectService:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockProductService)
			h := NewProductHandler(mockService, logger)

			if tt.expectService {
				mockService.On("List", mock.Anything, tt.expectedQuery).
					Return(tt.mockReturn, tt.mockError)
			}

			req := httptest.NewRequest(http.MethodGet, "/api/products"+tt.queryParams, nil)
			w := httptest.NewRecorder()

			h.List(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)

			if tt.expectService {
				mockService.AssertExpectations(t)
			}
		})
	}
}

func TestProductHandler_List_BodyShape(t *testing.T) {
	logger := zerolog.Nop()
	mockService := new(MockProductService)
	h := NewProductHandler(mockService, logger)

	page := &model.ProductPage{
		Products:      []model.Product{{ID: uuid.New(), Name: "Tee B"}},
		TotalProducts: 2,
		CurrentPage:   2,
		TotalPages:    2,
	}
	mockService.On("List", mock.Anything, model.ListQuery{Page: 2, Limit: 1}).Return(page, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/products?page=2&limit=1", nil)
	w := httptest.NewRecorder()

	h.List(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var decoded model.ProductPage
	require.NoError(t, json.NewDecoder(w.Body).Decode(&decoded))
	assert.Len(t, decoded.Products, 1)
	assert.Equal(t, 2, decoded.CurrentPage)
	assert.Equal(t, 2, decoded.TotalPages)
}

func TestProductHandler_TopPicks(t *testing.T) {
	logger := zerolog.Nop()

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockProductService)
		h := NewProductHandler(mockService, logger)

		picks := []model.Product{{ID: uuid.New(), Name: "Tee A", IsTopPick: true}}
		mockService.On("TopPicks", mock.Anything).Return(picks, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/products/toppicks", nil)
		w := httptest.NewRecorder()

		h.TopPicks(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var decoded []model.Product
		require.NoError(t, json.NewDecoder(w.Body).Decode(&decoded))
		assert.Len(t, decoded, 1)
		assert.True(t, decoded[0].IsTopPick)
	})

	t.Run("Service error", func(t *testing.T) {
		mockService := new(MockProductService)
		h := NewProductHandler(mockService, logger)

		mockService.On("TopPicks", mock.Anything).Return(nil, errors.New("database error"))

		req := httptest.NewRequest(http.MethodGet, "/api/products/toppicks", nil)
		w := httptest.NewRecorder()

		h.TopPicks(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestProductHandler_Update(t *testing.T) {
	logger := zerolog.Nop()
	id := uuid.New()

	t.Run("Presence decides field inclusion", func(t *testing.T) {
		mockService := new(MockProductService)
		h := NewProductHandler(mockService, logger)

		updated := &model.Product{ID: id, Name: "Tee A"}
		mockService.On("Update", mock.Anything, id,
			mock.MatchedBy(func(u *model.ProductUpdate) bool {
				// description present-but-empty, name absent
				return u.Description != nil && *u.Description == "" &&
					u.Name == nil &&
					u.IsTopPick != nil && *u.IsTopPick
			}),
			mock.Anything,
		).Return(updated, nil)

		body, contentType := multipartBody(t, map[string]string{
			"description": "",
			"isTopPick":   "true",
		}, nil)

		req := httptest.NewRequest(http.MethodPut, "/api/products/"+id.String(), body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()

		h.Update(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("Empty update maps to 400", func(t *testing.T) {
		mockService := new(MockProductService)
		h := NewProductHandler(mockService, logger)

		mockService.On("Update", mock.Anything, id, mock.Anything, mock.Anything).
			Return(nil, model.ErrNoFieldsToUpdate)

		body, contentType := multipartBody(t, nil, nil)

		req := httptest.NewRequest(http.MethodPut, "/api/products/"+id.String(), body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()

		h.Update(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Unknown id maps to 404", func(t *testing.T) {
		mockService := new(MockProductService)
		h := NewProductHandler(mockService, logger)

		mockService.On("Update", mock.Anything, id, mock.Anything, mock.Anything).
			Return(nil, model.ErrProductNotFound)

		body, contentType := multipartBody(t, map[string]string{"name": "New"}, nil)

		req := httptest.NewRequest(http.MethodPut, "/api/products/"+id.String(), body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()

		h.Update(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Malformed id reads as not found", func(t *testing.T) {
		mockService := new(MockProductService)
		h := NewProductHandler(mockService, logger)

		body, contentType := multipartBody(t, map[string]string{"name": "New"}, nil)

		req := httptest.NewRequest(http.MethodPut, "/api/products/not-a-uuid", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()

		h.Update(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		mockService.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Replacement image forwarded", func(t *testing.T) {
		mockService := new(MockProductService)
		h := NewProductHandler(mockService, logger)

		updated := &model.Product{ID: id, Name: "Tee A"}
		mockService.On("Update", mock.Anything, id, mock.Anything,
			mock.MatchedBy(func(img *model.ImageUpload) bool {
				return img != nil && img.ContentType == "image/png"
			}),
		).Return(updated, nil)

		body, contentType := multipartBody(t, nil, pngFile())

		req := httptest.NewRequest(http.MethodPut, "/api/products/"+id.String(), body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()

		h.Update(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		mockService.AssertExpectations(t)
	})
}

func TestProductHandler_Delete(t *testing.T) {
	logger := zerolog.Nop()
	id := uuid.New()

	tests := []struct {
		name           string
		path           string
		mockError      error
		expectedStatus int
		expectService  bool
	}{
		{
			name:           "Success",
			path:           "/api/products/" + id.String(),
			expectedStatus: http.StatusOK,
			expectService:  true,
		},
		{
			name:           "Unknown id",
			path:           "/api/products/" + id.String(),
			mockError:      model.ErrProductNotFound,
			expectedStatus: http.StatusNotFound,
			expectService:  true,
		},
		{
			name:           "Malformed id",
			path:           "/api/products/nope",
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "Missing id",
			path:           "/api/products/",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Store failure",
			path:           "/api/products/" + id.String(),
			mockError:      errors.New("database error"),
			expectedStatus: http.StatusInternalServerError,
			expectService:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockProductService)
			h := NewProductHandler(mockService, logger)

			if tt.expectService {
				mockService.On("Delete", mock.Anything, id).Return(tt.mockError)
			}

			req := httptest.NewRequest(http.MethodDelete, tt.path, nil)
			w := httptest.NewRecorder()

			h.Delete(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)

			if tt.expectService {
				mockService.AssertExpectations(t)
			}
		})
	}
}

func TestProductHandler_MethodNotAllowed(t *testing.T) {
	logger := zerolog.Nop()
	mockService := new(MockProductService)
	h := NewProductHandler(mockService, logger)

	tests := []struct {
		name    string
		method  string
		handler http.HandlerFunc
	}{
		{"Create rejects GET", http.MethodGet, h.Create},
		{"List rejects POST", http.MethodPost, h.List},
		{"TopPicks rejects DELETE", http.MethodDelete, h.TopPicks},
		{"Update rejects GET", http.MethodGet, h.Update},
		{"Delete rejects GET", http.MethodGet, h.Delete},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/products", nil)
			w := httptest.NewRecorder()

			tt.handler(w, req)

			assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
		})
	}
}
