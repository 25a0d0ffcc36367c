package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product represents a product in the catalog. Price is carried as an
// exact-precision decimal end to end; it is never converted to a float.
type Product struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	Name          string          `json:"name" db:"name"`
	Description   string          `json:"description" db:"description"`
	Price         decimal.Decimal `json:"price" db:"price"`
	StockQuantity int             `json:"stockQuantity" db:"stock_quantity"`
	ImageURL      string          `json:"imageUrl" db:"image_url"`
	CreatedAt     time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time       `json:"updatedAt" db:"updated_at"`
}

// Category represents a product category
type Category struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// CategoryRef is the slim category shape attached to products on reads
type CategoryRef struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// ProductWithCategories is the read-model returned by every product read:
// a product plus the committed set of its categories. It is assembled per
// request and never persisted.
type ProductWithCategories struct {
	Product
	Categories []CategoryRef `json:"categories"`
}

// CategoryWithProductCount decorates a category with the number of distinct
// products currently associated with it.
type CategoryWithProductCount struct {
	Category
	ProductCount int `json:"productCount"`
}
