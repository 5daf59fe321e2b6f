package taxonomy

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/basteen-Dev/pavilion/internal/platform/db"
	"github.com/basteen-Dev/pavilion/internal/platform/httpx"
)

var (
	ErrNotFound      = fmt.Errorf("taxonomy entry %w", httpx.ErrNotFound)
	ErrAlreadyExists = fmt.Errorf("taxonomy slug %w", httpx.ErrDuplicate)

	// ErrUnknownParent means a referenced category or sub-category does not exist.
	ErrUnknownParent = fmt.Errorf("%w: unknown category or sub-category", httpx.ErrValidation)
)

// Kind names a taxonomy table.
type Kind string

const (
	KindCategory    Kind = "categories"
	KindSubCategory Kind = "sub_categories"
	KindBrand       Kind = "brands"
)

// updatableColumns fixes, per kind, which columns a patch may touch and in
// which order they appear in the statement.
var updatableColumns = map[Kind][]string{
	KindCategory:    {"name", "slug", "image_url", "is_active"},
	KindSubCategory: {"category_id", "name", "slug", "image_url", "is_active"},
	KindBrand:       {"name", "slug", "image_url", "logo_url", "category_id", "sub_category_id", "is_active"},
}

type Repository interface {
	ListCategories(ctx context.Context, f Filter) ([]Category, error)
	ListSubCategories(ctx context.Context, f Filter) ([]SubCategory, error)
	ListBrands(ctx context.Context, f Filter) ([]Brand, error)
	GetCategory(ctx context.Context, id int64) (*Category, error)
	GetSubCategory(ctx context.Context, id int64) (*SubCategory, error)
	GetBrand(ctx context.Context, id int64) (*Brand, error)
	CreateCategory(ctx context.Context, c Category) (*Category, error)
	CreateSubCategory(ctx context.Context, sc SubCategory) (*SubCategory, error)
	CreateBrand(ctx context.Context, b Brand) (*Brand, error)
	Update(ctx context.Context, kind Kind, id int64, updates map[string]interface{}) error
	Delete(ctx context.Context, kind Kind, id int64) error
}

type repository struct {
	db db.DBTX
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

// where accumulates positional conditions.
type where struct {
	conds []string
	args  []interface{}
}

func (w *where) add(format string, arg interface{}) {
	w.args = append(w.args, arg)
	w.conds = append(w.conds, fmt.Sprintf(format, len(w.args)))
}

func (w *where) clause() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

const categorySelect = `SELECT c.id, c.name, c.slug, c.image_url, c.is_active, c.created_at, c.updated_at
	FROM categories c`

func scanCategory(row pgx.Row) (Category, error) {
	var c Category
	err := row.Scan(&c.ID, &c.Name, &c.Slug, &c.ImageURL, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (r *repository) ListCategories(ctx context.Context, f Filter) ([]Category, error) {
	var w where
	if f.ActiveOnly {
		w.conds = append(w.conds, "c.is_active")
	}
	rows, err := r.db.Query(ctx, categorySelect+w.clause()+" ORDER BY c.name, c.id", w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]Category, 0)
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *repository) GetCategory(ctx context.Context, id int64) (*Category, error) {
	c, err := scanCategory(r.db.QueryRow(ctx, categorySelect+" WHERE c.id = $1", id))
	if err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

const subCategorySelect = `SELECT sc.id, sc.category_id, c.name, sc.name, sc.slug, sc.image_url, sc.is_active,
	sc.created_at, sc.updated_at
	FROM sub_categories sc JOIN categories c ON c.id = sc.category_id`

func scanSubCategory(row pgx.Row) (SubCategory, error) {
	var sc SubCategory
	err := row.Scan(&sc.ID, &sc.CategoryID, &sc.CategoryName, &sc.Name, &sc.Slug, &sc.ImageURL, &sc.IsActive,
		&sc.CreatedAt, &sc.UpdatedAt)
	return sc, err
}

func (r *repository) ListSubCategories(ctx context.Context, f Filter) ([]SubCategory, error) {
	var w where
	if f.CategoryID != nil {
		w.add("sc.category_id = $%d", *f.CategoryID)
	}
	if f.ActiveOnly {
		w.conds = append(w.conds, "sc.is_active", "c.is_active")
	}
	rows, err := r.db.Query(ctx, subCategorySelect+w.clause()+" ORDER BY sc.name, sc.id", w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]SubCategory, 0)
	for rows.Next() {
		sc, err := scanSubCategory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}

func (r *repository) GetSubCategory(ctx context.Context, id int64) (*SubCategory, error) {
	sc, err := scanSubCategory(r.db.QueryRow(ctx, subCategorySelect+" WHERE sc.id = $1", id))
	if err != nil {
		return nil, notFound(err)
	}
	return &sc, nil
}

const brandSelect = `SELECT b.id, b.name, b.slug, b.image_url, b.logo_url, b.category_id, b.sub_category_id,
	c.name, sc.name, b.is_active, b.created_at, b.updated_at
	FROM brands b
	LEFT JOIN categories c ON c.id = b.category_id
	LEFT JOIN sub_categories sc ON sc.id = b.sub_category_id`

func scanBrand(row pgx.Row) (Brand, error) {
	var b Brand
	err := row.Scan(&b.ID, &b.Name, &b.Slug, &b.ImageURL, &b.LogoURL, &b.CategoryID, &b.SubCategoryID,
		&b.CategoryName, &b.SubCategoryName, &b.IsActive, &b.CreatedAt, &b.UpdatedAt)
	return b, err
}

func (r *repository) ListBrands(ctx context.Context, f Filter) ([]Brand, error) {
	var w where
	if f.CategoryID != nil {
		w.add("b.category_id = $%d", *f.CategoryID)
	}
	if f.SubCategoryID != nil {
		w.add("b.sub_category_id = $%d", *f.SubCategoryID)
	}
	if f.ActiveOnly {
		w.conds = append(w.conds, "b.is_active")
	}
	rows, err := r.db.Query(ctx, brandSelect+w.clause()+" ORDER BY b.name, b.id", w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]Brand, 0)
	for rows.Next() {
		b, err := scanBrand(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *repository) GetBrand(ctx context.Context, id int64) (*Brand, error) {
	b, err := scanBrand(r.db.QueryRow(ctx, brandSelect+" WHERE b.id = $1", id))
	if err != nil {
		return nil, notFound(err)
	}
	return &b, nil
}

func (r *repository) CreateCategory(ctx context.Context, c Category) (*Category, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO categories (name, slug, image_url, is_active)
		VALUES ($1, $2, $3, $4) RETURNING id`,
		c.Name, c.Slug, c.ImageURL, c.IsActive,
	).Scan(&id)
	if err != nil {
		return nil, writeError(err)
	}
	return r.GetCategory(ctx, id)
}

func (r *repository) CreateSubCategory(ctx context.Context, sc SubCategory) (*SubCategory, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO sub_categories (category_id, name, slug, image_url, is_active)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		sc.CategoryID, sc.Name, sc.Slug, sc.ImageURL, sc.IsActive,
	).Scan(&id)
	if err != nil {
		return nil, writeError(err)
	}
	return r.GetSubCategory(ctx, id)
}

func (r *repository) CreateBrand(ctx context.Context, b Brand) (*Brand, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO brands (name, slug, image_url, logo_url, category_id, sub_category_id, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		b.Name, b.Slug, b.ImageURL, b.LogoURL, b.CategoryID, b.SubCategoryID, b.IsActive,
	).Scan(&id)
	if err != nil {
		return nil, writeError(err)
	}
	return r.GetBrand(ctx, id)
}

func (r *repository) Update(ctx context.Context, kind Kind, id int64, updates map[string]interface{}) error {
	columns, ok := updatableColumns[kind]
	if !ok {
		return fmt.Errorf("taxonomy: unknown kind %q", kind)
	}
	query := "UPDATE " + string(kind) + " SET updated_at = NOW()"
	var args []interface{}
	for _, col := range columns {
		if v, ok := updates[col]; ok {
			args = append(args, v)
			query += fmt.Sprintf(", %s = $%d", col, len(args))
		}
	}
	args = append(args, id)
	query += fmt.Sprintf(" WHERE id = $%d", len(args))

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return writeError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, kind Kind, id int64) error {
	if _, ok := updatableColumns[kind]; !ok {
		return fmt.Errorf("taxonomy: unknown kind %q", kind)
	}
	tag, err := r.db.Exec(ctx, "DELETE FROM "+string(kind)+" WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func writeError(err error) error {
	switch {
	case db.IsUniqueViolation(err):
		return ErrAlreadyExists
	case db.IsForeignKeyViolation(err):
		return ErrUnknownParent
	default:
		return err
	}
}
