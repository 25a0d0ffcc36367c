package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"catalog-api/internal/catalog"
	"catalog-api/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrProductNotFound  = errors.New("product not found")
	ErrCategoryNotFound = errors.New("category not found")
)

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product, categoryIDs []uuid.UUID) error
	Update(ctx context.Context, product *domain.Product, categoryIDs *[]uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	List(ctx context.Context, set catalog.PredicateSet, sortBy catalog.SortField, sortOrder catalog.SortOrder, page, limit int) ([]*domain.Product, int, error)
	AttachCategories(ctx context.Context, products []*domain.Product) ([]*domain.ProductWithCategories, error)
}

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

const productColumns = "p.id, p.name, p.description, p.price, p.stock_quantity, p.image_url, p.created_at, p.updated_at"

// sortColumns is the allow-list mapping sort fields to columns; anything
// outside it falls back to created_at
var sortColumns = map[catalog.SortField]string{
	catalog.SortByName:      "name",
	catalog.SortByPrice:     "price",
	catalog.SortByStock:     "stock_quantity",
	catalog.SortByCreatedAt: "created_at",
}

// renderPredicates turns the finished predicate set into a WHERE clause and
// its positional arguments. It is the single point where filter SQL is
// produced, so the page query and the count query always share it.
func renderPredicates(set catalog.PredicateSet) (string, []any) {
	clauses := []string{}
	args := []any{}

	if set.RequiresCategoryJoin() {
		clauses = append(clauses, fmt.Sprintf("pc.category_id = ANY($%d::uuid[])", len(args)+1))
		args = append(args, uuidStrings(set.CategoryIDs))
	}

	for _, p := range set.Predicates {
		placeholder := len(args) + 1
		switch p.Op {
		case catalog.OpContains:
			clauses = append(clauses, fmt.Sprintf("p.%s ILIKE $%d", p.Column, placeholder))
			args = append(args, "%"+fmt.Sprint(p.Value)+"%")
		case catalog.OpGTE:
			clauses = append(clauses, fmt.Sprintf("p.%s >= $%d", p.Column, placeholder))
			args = append(args, p.Value)
		case catalog.OpLTE:
			clauses = append(clauses, fmt.Sprintf("p.%s <= $%d", p.Column, placeholder))
			args = append(args, p.Value)
		}
	}

	if len(clauses) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(clauses, " AND "), args
}

// List executes the paginated row query and the distinct-product count over
// the identical predicate set. When the association table is joined a product
// can match through several categories, so the page selects DISTINCT rows and
// the count counts DISTINCT product ids; joined fan-out never inflates either.
func (r *productRepository) List(ctx context.Context, set catalog.PredicateSet, sortBy catalog.SortField, sortOrder catalog.SortOrder, page, limit int) ([]*domain.Product, int, error) {
	column, ok := sortColumns[sortBy]
	if !ok {
		column = "created_at"
	}
	direction := "DESC"
	if sortOrder == catalog.SortOrderAsc {
		direction = "ASC"
	}

	where, args := renderPredicates(set)

	join := ""
	selectClause := "SELECT"
	countExpr := "COUNT(*)"
	if set.RequiresCategoryJoin() {
		join = "JOIN product_categories pc ON pc.product_id = p.id"
		selectClause = "SELECT DISTINCT"
		countExpr = "COUNT(DISTINCT p.id)"
	}

	countQuery := fmt.Sprintf("SELECT %s FROM products p %s %s", countExpr, join, where)
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	offset := (page - 1) * limit

	// Secondary order by id keeps pagination stable when the sort column ties
	query := fmt.Sprintf(`
		%s %s
		FROM products p
		%s
		%s
		ORDER BY p.%s %s, p.id ASC
		LIMIT $%d OFFSET $%d
	`, selectClause, productColumns, join, where, column, direction, len(args)+1, len(args)+2)

	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := []*domain.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating products: %w", err)
	}

	return products, total, nil
}

// AttachCategories enriches an already-paginated page of products with their
// category lists using one batched lookup. It never changes the page's
// cardinality or order; a product without categories gets an empty list.
func (r *productRepository) AttachCategories(ctx context.Context, products []*domain.Product) ([]*domain.ProductWithCategories, error) {
	result := make([]*domain.ProductWithCategories, 0, len(products))
	if len(products) == 0 {
		return result, nil
	}

	ids := make([]uuid.UUID, len(products))
	for i, product := range products {
		ids[i] = product.ID
	}

	query := `
		SELECT pc.product_id, c.id, c.name
		FROM product_categories pc
		JOIN categories c ON c.id = pc.category_id
		WHERE pc.product_id = ANY($1::uuid[])
		ORDER BY c.name ASC
	`

	rows, err := r.db.QueryContext(ctx, query, uuidStrings(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product categories: %w", err)
	}
	defer rows.Close()

	byProduct := make(map[uuid.UUID][]domain.CategoryRef)
	for rows.Next() {
		var productID uuid.UUID
		var ref domain.CategoryRef
		if err := rows.Scan(&productID, &ref.ID, &ref.Name); err != nil {
			return nil, fmt.Errorf("failed to scan product category: %w", err)
		}
		byProduct[productID] = append(byProduct[productID], ref)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating product categories: %w", err)
	}

	for _, product := range products {
		categories := byProduct[product.ID]
		if categories == nil {
			categories = []domain.CategoryRef{}
		}
		result = append(result, &domain.ProductWithCategories{
			Product:    *product,
			Categories: categories,
		})
	}

	return result, nil
}

// Create inserts the product row and its association rows as one transaction
func (r *productRepository) Create(ctx context.Context, product *domain.Product, categoryIDs []uuid.UUID) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO products (id, name, description, price, stock_quantity, image_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err = tx.ExecContext(
		ctx,
		query,
		product.ID,
		product.Name,
		product.Description,
		product.Price,
		product.StockQuantity,
		product.ImageURL,
		product.CreatedAt,
		product.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	if err := insertAssociations(ctx, tx, product.ID, categoryIDs); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit product create: %w", err)
	}

	return nil
}

// Update rewrites the product row and, when categoryIDs is non-nil, replaces
// the whole association set inside the same transaction. A nil categoryIDs
// leaves existing associations untouched; an empty slice clears them all.
// Readers never observe the window between the delete and the re-insert.
func (r *productRepository) Update(ctx context.Context, product *domain.Product, categoryIDs *[]uuid.UUID) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE products
		SET name = $2, description = $3, price = $4, stock_quantity = $5,
		    image_url = $6, updated_at = $7
		WHERE id = $1
	`

	result, err := tx.ExecContext(
		ctx,
		query,
		product.ID,
		product.Name,
		product.Description,
		product.Price,
		product.StockQuantity,
		product.ImageURL,
		product.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	if categoryIDs != nil {
		_, err = tx.ExecContext(ctx, `DELETE FROM product_categories WHERE product_id = $1`, product.ID)
		if err != nil {
			return fmt.Errorf("failed to clear product categories: %w", err)
		}
		if err := insertAssociations(ctx, tx, product.ID, *categoryIDs); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit product update: %w", err)
	}

	return nil
}

// Delete removes a product; the schema cascades its association rows
func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

// FindByID retrieves a product by ID
func (r *productRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products p WHERE p.id = $1`, productColumns)

	product, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}

	return product, nil
}

// insertAssociations writes one association row per distinct category id.
// ON CONFLICT gives duplicate ids in the input set semantics instead of an
// error; a missing category surfaces as ErrCategoryNotFound.
func insertAssociations(ctx context.Context, tx *sql.Tx, productID uuid.UUID, categoryIDs []uuid.UUID) error {
	query := `
		INSERT INTO product_categories (product_id, category_id)
		VALUES ($1, $2)
		ON CONFLICT (product_id, category_id) DO NOTHING
	`

	for _, categoryID := range categoryIDs {
		if _, err := tx.ExecContext(ctx, query, productID, categoryID); err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23503" {
				return ErrCategoryNotFound
			}
			return fmt.Errorf("failed to associate category: %w", err)
		}
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	product := &domain.Product{}
	err := row.Scan(
		&product.ID,
		&product.Name,
		&product.Description,
		&product.Price,
		&product.StockQuantity,
		&product.ImageURL,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return product, nil
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
