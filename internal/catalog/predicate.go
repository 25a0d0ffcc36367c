package catalog

import "github.com/google/uuid"

// Op identifies the comparison a predicate applies to its column
type Op int

const (
	// OpContains matches a case-insensitive substring
	OpContains Op = iota
	// OpGTE is an inclusive lower bound
	OpGTE
	// OpLTE is an inclusive upper bound
	OpLTE
)

// Predicate is a single condition over a product column. Predicates are
// independent of each other and combined by logical AND, so their order
// never affects correctness.
type Predicate struct {
	Column string
	Op     Op
	Value  any
}

// PredicateSet is the finished, immutable output of BuildPredicates. It is
// rendered into SQL exactly once, by the query executor, so the page query
// and the count query can never disagree on the filter.
type PredicateSet struct {
	Predicates  []Predicate
	CategoryIDs []uuid.UUID
}

// RequiresCategoryJoin reports whether the association table must be joined
// to evaluate the set
func (ps PredicateSet) RequiresCategoryJoin() bool {
	return len(ps.CategoryIDs) > 0
}

// BuildPredicates translates a canonical filter-set into AND-composed
// predicates over product columns plus an optional category-membership term.
// A non-empty categoryIds collection takes precedence over a single
// categoryId; the two are never applied together.
func BuildPredicates(filter *ProductFilter) PredicateSet {
	set := PredicateSet{}

	switch {
	case len(filter.CategoryIDs) > 0:
		set.CategoryIDs = dedupeIDs(filter.CategoryIDs)
	case filter.CategoryID != nil:
		set.CategoryIDs = []uuid.UUID{*filter.CategoryID}
	}

	if filter.Search != "" {
		set.Predicates = append(set.Predicates, Predicate{Column: "name", Op: OpContains, Value: filter.Search})
	}
	if filter.MinPrice != nil {
		set.Predicates = append(set.Predicates, Predicate{Column: "price", Op: OpGTE, Value: *filter.MinPrice})
	}
	if filter.MaxPrice != nil {
		set.Predicates = append(set.Predicates, Predicate{Column: "price", Op: OpLTE, Value: *filter.MaxPrice})
	}
	if filter.MinStock != nil {
		set.Predicates = append(set.Predicates, Predicate{Column: "stock_quantity", Op: OpGTE, Value: *filter.MinStock})
	}
	if filter.MaxStock != nil {
		set.Predicates = append(set.Predicates, Predicate{Column: "stock_quantity", Op: OpLTE, Value: *filter.MaxStock})
	}

	return set
}

func dedupeIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
