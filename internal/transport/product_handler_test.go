package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"catalog-api/internal/catalog"
	"catalog-api/internal/domain"
	"catalog-api/internal/repository"
	"catalog-api/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// stubCatalogService lets each test pin down exactly one behavior
type stubCatalogService struct {
	listFn   func(ctx context.Context, filter *catalog.ProductFilter) ([]*domain.ProductWithCategories, int, error)
	getFn    func(ctx context.Context, id uuid.UUID) (*domain.ProductWithCategories, error)
	createFn func(ctx context.Context, input service.CreateProductInput) (*domain.ProductWithCategories, error)
	updateFn func(ctx context.Context, id uuid.UUID, input service.UpdateProductInput) (*domain.ProductWithCategories, error)
	deleteFn func(ctx context.Context, id uuid.UUID) error
}

func (s *stubCatalogService) ListProducts(ctx context.Context, filter *catalog.ProductFilter) ([]*domain.ProductWithCategories, int, error) {
	return s.listFn(ctx, filter)
}

func (s *stubCatalogService) GetProduct(ctx context.Context, id uuid.UUID) (*domain.ProductWithCategories, error) {
	return s.getFn(ctx, id)
}

func (s *stubCatalogService) CreateProduct(ctx context.Context, input service.CreateProductInput) (*domain.ProductWithCategories, error) {
	return s.createFn(ctx, input)
}

func (s *stubCatalogService) UpdateProduct(ctx context.Context, id uuid.UUID, input service.UpdateProductInput) (*domain.ProductWithCategories, error) {
	return s.updateFn(ctx, id, input)
}

func (s *stubCatalogService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return s.deleteFn(ctx, id)
}

func (s *stubCatalogService) ListCategories(ctx context.Context) ([]*domain.CategoryWithProductCount, error) {
	return nil, nil
}

func (s *stubCatalogService) CreateCategory(ctx context.Context, name string) (*domain.Category, error) {
	return nil, nil
}

func (s *stubCatalogService) UpdateCategory(ctx context.Context, id uuid.UUID, name string) (*domain.Category, error) {
	return nil, nil
}

func (s *stubCatalogService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	return nil
}

func newTestRouter(stub *stubCatalogService) chi.Router {
	router := chi.NewRouter()
	handler := NewProductHandler(stub, zap.NewNop())
	handler.RegisterRoutes(router)
	return router
}

func sampleProduct() *domain.ProductWithCategories {
	return &domain.ProductWithCategories{
		Product: domain.Product{
			ID:    uuid.New(),
			Name:  "Widget",
			Price: decimal.RequireFromString("9.99"),
		},
		Categories: []domain.CategoryRef{},
	}
}

func TestListProducts_InvalidFilterReturns400(t *testing.T) {
	router := newTestRouter(&stubCatalogService{})

	req := httptest.NewRequest(http.MethodGet, "/api/products?minPrice=10&maxPrice=5", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.Message == "" {
		t.Error("expected a descriptive message")
	}
}

func TestListProducts_ReturnsProductsAndTotal(t *testing.T) {
	stub := &stubCatalogService{
		listFn: func(ctx context.Context, filter *catalog.ProductFilter) ([]*domain.ProductWithCategories, int, error) {
			if filter.Page != 2 || filter.Limit != 5 {
				t.Errorf("filter not forwarded: page=%d limit=%d", filter.Page, filter.Limit)
			}
			return []*domain.ProductWithCategories{sampleProduct()}, 11, nil
		},
	}
	router := newTestRouter(stub)

	req := httptest.NewRequest(http.MethodGet, "/api/products?page=2&limit=5", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body struct {
		Products []json.RawMessage `json:"products"`
		Total    int               `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if len(body.Products) != 1 || body.Total != 11 {
		t.Errorf("unexpected body: products=%d total=%d", len(body.Products), body.Total)
	}
}

func TestGetProduct_NotFoundReturns404(t *testing.T) {
	stub := &stubCatalogService{
		getFn: func(ctx context.Context, id uuid.UUID) (*domain.ProductWithCategories, error) {
			return nil, repository.ErrProductNotFound
		},
	}
	router := newTestRouter(stub)

	req := httptest.NewRequest(http.MethodGet, "/api/products/"+uuid.NewString(), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestGetProduct_MalformedIDReturns400(t *testing.T) {
	router := newTestRouter(&stubCatalogService{})

	req := httptest.NewRequest(http.MethodGet, "/api/products/not-a-uuid", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestCreateProduct_Returns201(t *testing.T) {
	created := sampleProduct()
	stub := &stubCatalogService{
		createFn: func(ctx context.Context, input service.CreateProductInput) (*domain.ProductWithCategories, error) {
			if input.Name != "Widget" || len(input.CategoryIDs) != 1 {
				t.Errorf("input not forwarded: %+v", input)
			}
			return created, nil
		},
	}
	router := newTestRouter(stub)

	payload := map[string]any{
		"name":          "Widget",
		"price":         "9.99",
		"stockQuantity": 5,
		"categoryIds":   []string{uuid.NewString()},
	}
	body, _ := json.Marshal(payload)

	req := httptest.NewRequest(http.MethodPost, "/api/products", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestCreateProduct_ValidationFailures(t *testing.T) {
	router := newTestRouter(&stubCatalogService{})

	tests := []struct {
		name    string
		payload map[string]any
	}{
		{"missing name", map[string]any{"price": "9.99", "categoryIds": []string{uuid.NewString()}}},
		{"no categories", map[string]any{"name": "Widget", "price": "9.99", "categoryIds": []string{}}},
		{"negative stock", map[string]any{"name": "Widget", "price": "9.99", "stockQuantity": -1, "categoryIds": []string{uuid.NewString()}}},
		{"negative price", map[string]any{"name": "Widget", "price": "-1", "categoryIds": []string{uuid.NewString()}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, _ := json.Marshal(tt.payload)
			req := httptest.NewRequest(http.MethodPost, "/api/products", bytes.NewReader(body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestUpdateProduct_OmittedVersusEmptyCategoryIDs(t *testing.T) {
	var captured service.UpdateProductInput
	stub := &stubCatalogService{
		updateFn: func(ctx context.Context, id uuid.UUID, input service.UpdateProductInput) (*domain.ProductWithCategories, error) {
			captured = input
			return sampleProduct(), nil
		},
	}
	router := newTestRouter(stub)
	target := "/api/products/" + uuid.NewString()

	t.Run("omitted stays nil", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, target, bytes.NewReader([]byte(`{"name":"Widget v2"}`)))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if captured.CategoryIDs != nil {
			t.Error("omitted categoryIds must decode to nil")
		}
		if captured.Name == nil || *captured.Name != "Widget v2" {
			t.Errorf("name not forwarded: %v", captured.Name)
		}
	})

	t.Run("explicit empty array decodes non-nil", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, target, bytes.NewReader([]byte(`{"categoryIds":[]}`)))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if captured.CategoryIDs == nil {
			t.Fatal("explicit empty categoryIds must decode to a non-nil slice")
		}
		if len(*captured.CategoryIDs) != 0 {
			t.Errorf("expected empty slice, got %v", *captured.CategoryIDs)
		}
	})
}

func TestDeleteProduct_Returns204(t *testing.T) {
	stub := &stubCatalogService{
		deleteFn: func(ctx context.Context, id uuid.UUID) error { return nil },
	}
	router := newTestRouter(stub)

	req := httptest.NewRequest(http.MethodDelete, "/api/products/"+uuid.NewString(), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("expected empty body, got %q", rec.Body.String())
	}
}

func TestDeleteProduct_NotFoundReturns404(t *testing.T) {
	stub := &stubCatalogService{
		deleteFn: func(ctx context.Context, id uuid.UUID) error { return repository.ErrProductNotFound },
	}
	router := newTestRouter(stub)

	req := httptest.NewRequest(http.MethodDelete, "/api/products/"+uuid.NewString(), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}
