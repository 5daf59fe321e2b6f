package quotations

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/basteen-Dev/pavilion/internal/platform/db"
	"github.com/basteen-Dev/pavilion/internal/platform/httpx"
	"github.com/basteen-Dev/pavilion/internal/sales/shared"
)

var (
	ErrNotFound = fmt.Errorf("quotation %w", httpx.ErrNotFound)
	// ErrVersionConflict means the quotation changed since the caller read it.
	ErrVersionConflict = fmt.Errorf("quotation %w: version mismatch", httpx.ErrConflict)
	// ErrAlreadyConverted means an order already exists for the quotation.
	ErrAlreadyConverted = fmt.Errorf("quotation %w: already converted", httpx.ErrConflict)
)

type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	Get(ctx context.Context, id uuid.UUID) (*Quotation, error)
	List(ctx context.Context, req ListQuotationsRequest) ([]Quotation, int, error)
	Create(ctx context.Context, q Quotation) (*Quotation, error)
	InsertItem(ctx context.Context, item Item) error
	Update(ctx context.Context, id uuid.UUID, version int, updates map[string]interface{}) error
}

type repository struct {
	db   db.DBTX
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool, pool: pool}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return db.WithDocumentTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &repository{db: tx, pool: r.pool})
	})
}

const quotationColumns = `id, reference_number, customer_id, customer_snapshot, status,
	total_amount, show_total, notes, valid_until, version, created_by, created_at, updated_at`

func scanQuotation(row pgx.Row) (Quotation, error) {
	var q Quotation
	err := row.Scan(
		&q.ID, &q.ReferenceNumber, &q.CustomerID, &q.CustomerSnapshot, &q.Status,
		&q.TotalAmount, &q.ShowTotal, &q.Notes, &q.ValidUntil, &q.Version, &q.CreatedBy,
		&q.CreatedAt, &q.UpdatedAt,
	)
	return q, err
}

func (r *repository) Get(ctx context.Context, id uuid.UUID) (*Quotation, error) {
	q, err := scanQuotation(r.db.QueryRow(ctx, "SELECT "+quotationColumns+" FROM quotations WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, quotation_id, product_id, product_name, sku, quantity,
		       unit_price, mrp, discount, line_total, line_order
		FROM quotation_items
		WHERE quotation_id = $1
		ORDER BY line_order, id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	q.Items = make([]Item, 0)
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.QuotationID, &it.ProductID, &it.ProductName, &it.SKU, &it.Quantity,
			&it.UnitPrice, &it.MRP, &it.Discount, &it.LineTotal, &it.LineOrder); err != nil {
			return nil, err
		}
		q.Items = append(q.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *repository) List(ctx context.Context, req ListQuotationsRequest) ([]Quotation, int, error) {
	var conditions []string
	var args []interface{}
	argPos := 1

	if req.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argPos))
		args = append(args, string(*req.Status))
		argPos++
	}
	if req.CustomerID != nil {
		conditions = append(conditions, fmt.Sprintf("customer_id = $%d", argPos))
		args = append(args, *req.CustomerID)
		argPos++
	}
	if req.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(reference_number ILIKE $%d OR customer_snapshot->>'name' ILIKE $%d OR customer_snapshot->>'company_name' ILIKE $%d)", argPos, argPos, argPos))
		args = append(args, "%"+req.Search+"%")
		argPos++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM quotations "+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM quotations %s ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d`,
		quotationColumns, whereClause, argPos, argPos+1)
	args = append(args, req.Limit, req.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]Quotation, 0)
	for rows.Next() {
		q, err := scanQuotation(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, q)
	}
	return out, total, rows.Err()
}

// Create allocates a reference number and inserts the header. Items are added
// with InsertItem inside the same transaction.
func (r *repository) Create(ctx context.Context, q Quotation) (*Quotation, error) {
	ref, err := shared.NextNumber(ctx, r.db, shared.PrefixQuotation, time.Now())
	if err != nil {
		return nil, err
	}
	created, err := scanQuotation(r.db.QueryRow(ctx, `
		INSERT INTO quotations (reference_number, customer_id, customer_snapshot, status,
			total_amount, show_total, notes, valid_until, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+quotationColumns,
		ref, q.CustomerID, q.CustomerSnapshot, string(q.Status),
		q.TotalAmount, q.ShowTotal, q.Notes, q.ValidUntil, q.CreatedBy,
	))
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return nil, fmt.Errorf("%w: unknown customer", httpx.ErrValidation)
		}
		return nil, err
	}
	return &created, nil
}

func (r *repository) InsertItem(ctx context.Context, it Item) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO quotation_items (quotation_id, product_id, product_name, sku, quantity,
			unit_price, mrp, discount, line_total, line_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		it.QuotationID, it.ProductID, it.ProductName, it.SKU, it.Quantity,
		it.UnitPrice, it.MRP, it.Discount, it.LineTotal, it.LineOrder,
	)
	if err != nil && db.IsForeignKeyViolation(err) {
		return fmt.Errorf("%w: product %s no longer exists", httpx.ErrValidation, it.ProductName)
	}
	return err
}

// Update applies updates when the stored version equals version and bumps it.
func (r *repository) Update(ctx context.Context, id uuid.UUID, version int, updates map[string]interface{}) error {
	query := "UPDATE quotations SET updated_at = NOW(), version = version + 1"
	var args []interface{}
	argPos := 1

	for _, col := range []string{"status", "notes"} {
		if v, ok := updates[col]; ok {
			query += fmt.Sprintf(", %s = $%d", col, argPos)
			args = append(args, v)
			argPos++
		}
	}

	query += fmt.Sprintf(" WHERE id = $%d AND version = $%d", argPos, argPos+1)
	args = append(args, id, version)

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 1 {
		return nil
	}
	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM quotations WHERE id = $1)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}
	return ErrVersionConflict
}
