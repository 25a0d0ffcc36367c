package transport

import (
	"errors"
	"net/http"

	"catalog-api/internal/catalog"
	"catalog-api/internal/domain"
	"catalog-api/internal/middleware"
	"catalog-api/internal/repository"
	"catalog-api/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CreateProductRequest represents the product creation payload
type CreateProductRequest struct {
	Name          string          `json:"name" validate:"required,max=255"`
	Description   string          `json:"description" validate:"max=5000"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stockQuantity" validate:"gte=0"`
	ImageURL      string          `json:"imageUrl" validate:"omitempty,url"`
	CategoryIDs   []uuid.UUID     `json:"categoryIds" validate:"required,min=1"`
}

// UpdateProductRequest represents a partial product update. A nil CategoryIDs
// means the field was omitted and the associations stay untouched; an empty
// slice clears them.
type UpdateProductRequest struct {
	Name          *string          `json:"name" validate:"omitempty,max=255"`
	Description   *string          `json:"description" validate:"omitempty,max=5000"`
	Price         *decimal.Decimal `json:"price"`
	StockQuantity *int             `json:"stockQuantity" validate:"omitempty,gte=0"`
	ImageURL      *string          `json:"imageUrl" validate:"omitempty,url"`
	CategoryIDs   *[]uuid.UUID     `json:"categoryIds"`
}

// ProductListResponse is the paginated listing shape
type ProductListResponse struct {
	Products []*domain.ProductWithCategories `json:"products"`
	Total    int                             `json:"total"`
}

// ProductHandler handles HTTP requests for product operations
type ProductHandler struct {
	catalogService service.CatalogService
	logger         *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(catalogService service.CatalogService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		catalogService: catalogService,
		logger:         logger,
	}
}

// RegisterRoutes registers all product routes
func (h *ProductHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
}

// List handles filtered, sorted, paginated product listings
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := catalog.ParseProductFilter(r.URL.Query())
	if err != nil {
		var invalid *catalog.InvalidFilterError
		if errors.As(err, &invalid) {
			h.logger.Debug("Rejected product filter", zap.String("field", invalid.Field), zap.Error(err))
			middleware.RespondWithError(w, http.StatusBadRequest, invalid.Error())
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid query parameters")
		return
	}

	products, total, err := h.catalogService.ListProducts(r.Context(), filter)
	if err != nil {
		h.respondStoreError(w, err, "Failed to list products")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, ProductListResponse{
		Products: products,
		Total:    total,
	})
}

// Get handles fetching a single product
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	product, err := h.catalogService.GetProduct(r.Context(), id)
	if err != nil {
		h.respondStoreError(w, err, "Failed to get product")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// Create handles product creation
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Product creation validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Price.IsNegative() {
		middleware.RespondWithValidationErrors(w, []middleware.ValidationError{
			{Field: "price", Message: "Value must not be negative"},
		})
		return
	}

	product, err := h.catalogService.CreateProduct(r.Context(), service.CreateProductInput{
		Name:          req.Name,
		Description:   req.Description,
		Price:         req.Price,
		StockQuantity: req.StockQuantity,
		ImageURL:      req.ImageURL,
		CategoryIDs:   req.CategoryIDs,
	})
	if err != nil {
		h.respondStoreError(w, err, "Failed to create product")
		return
	}

	h.logger.Info("Product created", zap.String("product_id", product.ID.String()))
	middleware.RespondWithJSON(w, http.StatusCreated, product)
}

// Update handles partial product updates
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	var req UpdateProductRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Product update validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Price != nil && req.Price.IsNegative() {
		middleware.RespondWithValidationErrors(w, []middleware.ValidationError{
			{Field: "price", Message: "Value must not be negative"},
		})
		return
	}

	product, err := h.catalogService.UpdateProduct(r.Context(), id, service.UpdateProductInput{
		Name:          req.Name,
		Description:   req.Description,
		Price:         req.Price,
		StockQuantity: req.StockQuantity,
		ImageURL:      req.ImageURL,
		CategoryIDs:   req.CategoryIDs,
	})
	if err != nil {
		h.respondStoreError(w, err, "Failed to update product")
		return
	}

	h.logger.Info("Product updated", zap.String("product_id", id.String()))
	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// Delete handles product deletion
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	if err := h.catalogService.DeleteProduct(r.Context(), id); err != nil {
		h.respondStoreError(w, err, "Failed to delete product")
		return
	}

	h.logger.Info("Product deleted", zap.String("product_id", id.String()))
	w.WriteHeader(http.StatusNoContent)
}

// respondStoreError maps store errors to status codes without leaking
// internal detail
func (h *ProductHandler) respondStoreError(w http.ResponseWriter, err error, logMessage string) {
	switch {
	case errors.Is(err, repository.ErrProductNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, "product not found")
	case errors.Is(err, repository.ErrCategoryNotFound):
		middleware.RespondWithError(w, http.StatusBadRequest, "one or more categories do not exist")
	default:
		h.logger.Error(logMessage, zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}
