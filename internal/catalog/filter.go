package catalog

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
)

// SortField enumerates the columns a product listing may be ordered by
type SortField string

const (
	SortByName      SortField = "name"
	SortByPrice     SortField = "price"
	SortByStock     SortField = "stock"
	SortByCreatedAt SortField = "createdAt"
)

// SortOrder represents the sort direction
type SortOrder string

const (
	SortOrderAsc  SortOrder = "asc"
	SortOrderDesc SortOrder = "desc"
)

// InvalidFilterError reports a malformed or contradictory filter parameter.
// The transport layer maps it to a client error; it is never silently
// clamped away.
type InvalidFilterError struct {
	Field   string
	Message string
}

func (e *InvalidFilterError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// ProductFilter is the canonical, fully-typed and defaulted representation
// of all product listing parameters. Producing it has no side effects.
type ProductFilter struct {
	Page        int
	Limit       int
	Search      string
	CategoryID  *uuid.UUID
	CategoryIDs []uuid.UUID
	MinPrice    *decimal.Decimal
	MaxPrice    *decimal.Decimal
	MinStock    *int
	MaxStock    *int
	SortBy      SortField
	SortOrder   SortOrder
}

// ParseProductFilter validates and normalizes raw query parameters into a
// canonical filter-set. Page and limit fall back to their defaults when
// missing or below 1; range and enum violations fail with InvalidFilterError.
func ParseProductFilter(query url.Values) (*ProductFilter, error) {
	filter := &ProductFilter{
		Page:      parsePositiveInt(query.Get("page"), DefaultPage),
		Limit:     parsePositiveInt(query.Get("limit"), DefaultLimit),
		Search:    strings.TrimSpace(query.Get("search")),
		SortBy:    SortByCreatedAt,
		SortOrder: SortOrderDesc,
	}

	if raw := query.Get("categoryId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, &InvalidFilterError{Field: "categoryId", Message: "must be a valid UUID"}
		}
		filter.CategoryID = &id
	}

	ids, err := parseCategoryIDs(query["categoryIds"])
	if err != nil {
		return nil, err
	}
	filter.CategoryIDs = ids

	filter.MinPrice, err = parsePrice("minPrice", query.Get("minPrice"))
	if err != nil {
		return nil, err
	}
	filter.MaxPrice, err = parsePrice("maxPrice", query.Get("maxPrice"))
	if err != nil {
		return nil, err
	}
	if filter.MinPrice != nil && filter.MaxPrice != nil && filter.MinPrice.GreaterThan(*filter.MaxPrice) {
		return nil, &InvalidFilterError{Field: "minPrice", Message: "must not exceed maxPrice"}
	}

	filter.MinStock, err = parseStock("minStock", query.Get("minStock"))
	if err != nil {
		return nil, err
	}
	filter.MaxStock, err = parseStock("maxStock", query.Get("maxStock"))
	if err != nil {
		return nil, err
	}
	if filter.MinStock != nil && filter.MaxStock != nil && *filter.MinStock > *filter.MaxStock {
		return nil, &InvalidFilterError{Field: "minStock", Message: "must not exceed maxStock"}
	}

	if raw := query.Get("sortBy"); raw != "" {
		switch SortField(raw) {
		case SortByName, SortByPrice, SortByStock, SortByCreatedAt:
			filter.SortBy = SortField(raw)
		default:
			return nil, &InvalidFilterError{Field: "sortBy", Message: "must be one of name, price, stock, createdAt"}
		}
	}

	if raw := query.Get("sortOrder"); raw != "" {
		switch SortOrder(raw) {
		case SortOrderAsc, SortOrderDesc:
			filter.SortOrder = SortOrder(raw)
		default:
			return nil, &InvalidFilterError{Field: "sortOrder", Message: "must be asc or desc"}
		}
	}

	return filter, nil
}

// parsePositiveInt falls back to def for anything unparseable or below 1
func parsePositiveInt(raw string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return def
	}
	return n
}

// parseCategoryIDs accepts repeated parameters and comma-delimited values,
// trimming segments and discarding empty ones
func parseCategoryIDs(values []string) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for _, value := range values {
		for _, segment := range strings.Split(value, ",") {
			segment = strings.TrimSpace(segment)
			if segment == "" {
				continue
			}
			id, err := uuid.Parse(segment)
			if err != nil {
				return nil, &InvalidFilterError{Field: "categoryIds", Message: "must contain valid UUIDs"}
			}
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func parsePrice(field, raw string) (*decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, &InvalidFilterError{Field: field, Message: "must be a number"}
	}
	if value.IsNegative() {
		return nil, &InvalidFilterError{Field: field, Message: "must not be negative"}
	}
	return &value, nil
}

func parseStock(field, raw string) (*int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return nil, &InvalidFilterError{Field: field, Message: "must be an integer"}
	}
	if value < 0 {
		return nil, &InvalidFilterError{Field: field, Message: "must not be negative"}
	}
	return &value, nil
}
