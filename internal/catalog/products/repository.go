package products

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/basteen-Dev/pavilion/internal/platform/db"
	"github.com/basteen-Dev/pavilion/internal/platform/httpx"
)

var (
	ErrNotFound      = fmt.Errorf("product %w", httpx.ErrNotFound)
	ErrAlreadyExists = fmt.Errorf("product sku or slug %w", httpx.ErrDuplicate)

	// ErrUnknownTaxonomy means the category, sub-category or brand id does not exist.
	ErrUnknownTaxonomy = fmt.Errorf("%w: unknown category, sub-category or brand", httpx.ErrValidation)
)

type Repository interface {
	Get(ctx context.Context, id uuid.UUID) (*Product, error)
	GetBySlug(ctx context.Context, slug string) (*Product, error)
	GetMany(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]Product, error)
	List(ctx context.Context, req ListProductsRequest) ([]Product, int, error)
	Create(ctx context.Context, p Product) (*Product, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db db.DBTX
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

const productColumns = `id, name, slug, sku, description, short_description,
	mrp, dealer_price, selling_price, category_id, sub_category_id, brand_id,
	images, variants, is_active, is_featured, created_at, updated_at`

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(
		&p.ID, &p.Name, &p.Slug, &p.SKU, &p.Description, &p.ShortDescription,
		&p.MRP, &p.DealerPrice, &p.SellingPrice, &p.CategoryID, &p.SubCategoryID, &p.BrandID,
		&p.Images, &p.Variants, &p.IsActive, &p.IsFeatured, &p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

func (r *repository) Get(ctx context.Context, id uuid.UUID) (*Product, error) {
	return r.getOne(ctx, "id = $1", id)
}

func (r *repository) GetBySlug(ctx context.Context, slug string) (*Product, error) {
	return r.getOne(ctx, "slug = $1", slug)
}

func (r *repository) getOne(ctx context.Context, cond string, arg any) (*Product, error) {
	p, err := scanProduct(r.db.QueryRow(ctx, "SELECT "+productColumns+" FROM products WHERE "+cond, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *repository) GetMany(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]Product, error) {
	out := make(map[uuid.UUID]Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := r.db.Query(ctx, "SELECT "+productColumns+" FROM products WHERE id = ANY($1)", ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out[p.ID] = p
	}
	return out, rows.Err()
}

func (r *repository) List(ctx context.Context, req ListProductsRequest) ([]Product, int, error) {
	var conditions []string
	var args []interface{}
	argPos := 1

	if req.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(name ILIKE $%d OR sku ILIKE $%d)", argPos, argPos))
		args = append(args, "%"+req.Search+"%")
		argPos++
	}
	if req.CategoryID != nil {
		conditions = append(conditions, fmt.Sprintf("category_id = $%d", argPos))
		args = append(args, *req.CategoryID)
		argPos++
	}
	if req.SubCategoryID != nil {
		conditions = append(conditions, fmt.Sprintf("sub_category_id = $%d", argPos))
		args = append(args, *req.SubCategoryID)
		argPos++
	}
	if req.BrandID != nil {
		conditions = append(conditions, fmt.Sprintf("brand_id = $%d", argPos))
		args = append(args, *req.BrandID)
		argPos++
	}
	if req.IsActive != nil {
		conditions = append(conditions, fmt.Sprintf("is_active = $%d", argPos))
		args = append(args, *req.IsActive)
		argPos++
	}
	if req.Featured != nil {
		conditions = append(conditions, fmt.Sprintf("is_featured = $%d", argPos))
		args = append(args, *req.Featured)
		argPos++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM products "+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM products %s ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d`,
		productColumns, whereClause, argPos, argPos+1)
	args = append(args, req.Limit, req.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	products := make([]Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		products = append(products, p)
	}
	return products, total, rows.Err()
}

func (r *repository) Create(ctx context.Context, p Product) (*Product, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO products (name, slug, sku, description, short_description,
			mrp, dealer_price, selling_price, category_id, sub_category_id, brand_id,
			images, variants, is_active, is_featured)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING `+productColumns,
		p.Name, p.Slug, p.SKU, p.Description, p.ShortDescription,
		p.MRP, p.DealerPrice, p.SellingPrice, p.CategoryID, p.SubCategoryID, p.BrandID,
		p.Images, p.Variants, p.IsActive, p.IsFeatured,
	)
	created, err := scanProduct(row)
	if err != nil {
		return nil, writeError(err)
	}
	return &created, nil
}

// updatableColumns fixes the column order so generated statements are stable.
var updatableColumns = []string{
	"name", "slug", "sku", "description", "short_description",
	"mrp", "dealer_price", "selling_price", "category_id", "sub_category_id", "brand_id",
	"images", "variants", "is_active", "is_featured",
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	query := "UPDATE products SET updated_at = NOW()"
	var args []interface{}
	argPos := 1

	for _, col := range updatableColumns {
		if v, ok := updates[col]; ok {
			query += fmt.Sprintf(", %s = $%d", col, argPos)
			args = append(args, v)
			argPos++
		}
	}

	query += fmt.Sprintf(" WHERE id = $%d", argPos)
	args = append(args, id)

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return writeError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func writeError(err error) error {
	switch {
	case db.IsUniqueViolation(err):
		return ErrAlreadyExists
	case db.IsForeignKeyViolation(err):
		return ErrUnknownTaxonomy
	default:
		return err
	}
}
