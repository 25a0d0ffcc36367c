package service

import (
	"context"
	"time"

	"catalog-api/internal/catalog"
	"catalog-api/internal/domain"
	"catalog-api/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateProductInput carries already-validated fields for a new product
type CreateProductInput struct {
	Name          string
	Description   string
	Price         decimal.Decimal
	StockQuantity int
	ImageURL      string
	CategoryIDs   []uuid.UUID
}

// UpdateProductInput carries a partial update. Nil fields are left untouched.
// CategoryIDs keeps the omitted-versus-empty distinction: nil means "don't
// touch the associations", an empty slice means "clear them all".
type UpdateProductInput struct {
	Name          *string
	Description   *string
	Price         *decimal.Decimal
	StockQuantity *int
	ImageURL      *string
	CategoryIDs   *[]uuid.UUID
}

// CatalogService orchestrates the product read path (normalize → predicates →
// execute → attach) and coordinates writes with their association changes
type CatalogService interface {
	ListProducts(ctx context.Context, filter *catalog.ProductFilter) ([]*domain.ProductWithCategories, int, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*domain.ProductWithCategories, error)
	CreateProduct(ctx context.Context, input CreateProductInput) (*domain.ProductWithCategories, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*domain.ProductWithCategories, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	ListCategories(ctx context.Context) ([]*domain.CategoryWithProductCount, error)
	CreateCategory(ctx context.Context, name string) (*domain.Category, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, name string) (*domain.Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error
}

type catalogService struct {
	products   repository.ProductRepository
	categories repository.CategoryRepository
}

// NewCatalogService creates a new CatalogService backed by the given stores
func NewCatalogService(products repository.ProductRepository, categories repository.CategoryRepository) CatalogService {
	return &catalogService{
		products:   products,
		categories: categories,
	}
}

// ListProducts runs the filtered, paginated page query plus the matching
// distinct count, then attaches each product's category list
func (s *catalogService) ListProducts(ctx context.Context, filter *catalog.ProductFilter) ([]*domain.ProductWithCategories, int, error) {
	set := catalog.BuildPredicates(filter)

	products, total, err := s.products.List(ctx, set, filter.SortBy, filter.SortOrder, filter.Page, filter.Limit)
	if err != nil {
		return nil, 0, err
	}

	attached, err := s.products.AttachCategories(ctx, products)
	if err != nil {
		return nil, 0, err
	}

	return attached, total, nil
}

// GetProduct returns a single product with its category list
func (s *catalogService) GetProduct(ctx context.Context, id uuid.UUID) (*domain.ProductWithCategories, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	attached, err := s.products.AttachCategories(ctx, []*domain.Product{product})
	if err != nil {
		return nil, err
	}

	return attached[0], nil
}

// CreateProduct inserts the product with its associations and re-reads it
// through the read path so the response reflects committed state
func (s *catalogService) CreateProduct(ctx context.Context, input CreateProductInput) (*domain.ProductWithCategories, error) {
	now := time.Now().UTC()
	product := &domain.Product{
		ID:            uuid.New(),
		Name:          input.Name,
		Description:   input.Description,
		Price:         input.Price,
		StockQuantity: input.StockQuantity,
		ImageURL:      input.ImageURL,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.products.Create(ctx, product, input.CategoryIDs); err != nil {
		return nil, err
	}

	return s.GetProduct(ctx, product.ID)
}

// UpdateProduct applies a partial update and replaces the association set
// only when the input explicitly supplies one
func (s *catalogService) UpdateProduct(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*domain.ProductWithCategories, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		product.Name = *input.Name
	}
	if input.Description != nil {
		product.Description = *input.Description
	}
	if input.Price != nil {
		product.Price = *input.Price
	}
	if input.StockQuantity != nil {
		product.StockQuantity = *input.StockQuantity
	}
	if input.ImageURL != nil {
		product.ImageURL = *input.ImageURL
	}
	product.UpdatedAt = time.Now().UTC()

	if err := s.products.Update(ctx, product, input.CategoryIDs); err != nil {
		return nil, err
	}

	return s.GetProduct(ctx, id)
}

// DeleteProduct removes the product and, through the schema cascade, every
// association row pointing at it
func (s *catalogService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return s.products.Delete(ctx, id)
}

// ListCategories returns all categories with product counts, sorted by name
func (s *catalogService) ListCategories(ctx context.Context) ([]*domain.CategoryWithProductCount, error) {
	return s.categories.List(ctx)
}

// CreateCategory inserts a new category
func (s *catalogService) CreateCategory(ctx context.Context, name string) (*domain.Category, error) {
	category := &domain.Category{
		ID:        uuid.New(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.categories.Create(ctx, category); err != nil {
		return nil, err
	}

	return category, nil
}

// UpdateCategory renames a category
func (s *catalogService) UpdateCategory(ctx context.Context, id uuid.UUID, name string) (*domain.Category, error) {
	category, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	category.Name = name
	if err := s.categories.Update(ctx, category); err != nil {
		return nil, err
	}

	return category, nil
}

// DeleteCategory removes a category and cascades its association rows
func (s *catalogService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	return s.categories.Delete(ctx, id)
}
