package catalog

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func TestBuildPredicates_EmptyFilter(t *testing.T) {
	set := BuildPredicates(&ProductFilter{Page: 1, Limit: 10})

	if len(set.Predicates) != 0 {
		t.Errorf("expected no predicates, got %v", set.Predicates)
	}
	if set.RequiresCategoryJoin() {
		t.Error("empty filter must not require a category join")
	}
}

func TestBuildPredicates_AllDimensions(t *testing.T) {
	minPrice := decimal.RequireFromString("5.00")
	maxPrice := decimal.RequireFromString("10.00")
	minStock := 1
	maxStock := 99

	set := BuildPredicates(&ProductFilter{
		Search:   "widget",
		MinPrice: &minPrice,
		MaxPrice: &maxPrice,
		MinStock: &minStock,
		MaxStock: &maxStock,
	})

	if len(set.Predicates) != 5 {
		t.Fatalf("expected 5 predicates, got %d", len(set.Predicates))
	}

	want := []struct {
		column string
		op     Op
	}{
		{"name", OpContains},
		{"price", OpGTE},
		{"price", OpLTE},
		{"stock_quantity", OpGTE},
		{"stock_quantity", OpLTE},
	}

	for i, w := range want {
		if set.Predicates[i].Column != w.column || set.Predicates[i].Op != w.op {
			t.Errorf("predicate %d: expected %s/%v, got %s/%v",
				i, w.column, w.op, set.Predicates[i].Column, set.Predicates[i].Op)
		}
	}
}

func TestBuildPredicates_CategoryPrecedence(t *testing.T) {
	single := uuid.New()
	multiA := uuid.New()
	multiB := uuid.New()

	t.Run("plural wins over single", func(t *testing.T) {
		set := BuildPredicates(&ProductFilter{
			CategoryID:  &single,
			CategoryIDs: []uuid.UUID{multiA, multiB},
		})

		if !set.RequiresCategoryJoin() {
			t.Fatal("expected category join")
		}
		if len(set.CategoryIDs) != 2 || set.CategoryIDs[0] != multiA || set.CategoryIDs[1] != multiB {
			t.Errorf("expected plural set, got %v", set.CategoryIDs)
		}
		for _, id := range set.CategoryIDs {
			if id == single {
				t.Error("single categoryId must not leak into the plural set")
			}
		}
	})

	t.Run("single used when plural absent", func(t *testing.T) {
		set := BuildPredicates(&ProductFilter{CategoryID: &single})

		if !set.RequiresCategoryJoin() {
			t.Fatal("expected category join")
		}
		if len(set.CategoryIDs) != 1 || set.CategoryIDs[0] != single {
			t.Errorf("expected [%s], got %v", single, set.CategoryIDs)
		}
	})

	t.Run("duplicates in plural collapse", func(t *testing.T) {
		set := BuildPredicates(&ProductFilter{
			CategoryIDs: []uuid.UUID{multiA, multiA, multiB},
		})

		if len(set.CategoryIDs) != 2 {
			t.Errorf("expected deduplicated set, got %v", set.CategoryIDs)
		}
	})
}

func TestBuildPredicates_NoCategoryMeansNoJoin(t *testing.T) {
	set := BuildPredicates(&ProductFilter{Search: "widget"})

	if set.RequiresCategoryJoin() {
		t.Error("search-only filter must not require a category join")
	}
}
