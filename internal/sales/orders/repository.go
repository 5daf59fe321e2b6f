package orders

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
	"github.com/basteen-Dev/pavilion/internal/sales/quotations"
	salesshared "github.com/basteen-Dev/pavilion/internal/sales/shared"
	"github.com/basteen-Dev/pavilion/internal/shared"
)

const idempotencyModule = "orders"

var (
	ErrNotFound        = fmt.Errorf("order %w", httpx.ErrNotFound)
	ErrVersionConflict = fmt.Errorf("order %w: version mismatch", httpx.ErrConflict)
	// ErrAlreadyConverted means the quotation already has an order.
	ErrAlreadyConverted = quotations.ErrAlreadyConverted
	// ErrDuplicateRequest means the Idempotency-Key was seen before.
	ErrDuplicateRequest = fmt.Errorf("order %w: idempotency key already used", httpx.ErrConflict)
)

type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	Get(ctx context.Context, id uuid.UUID) (*Order, error)
	List(ctx context.Context, req ListOrdersRequest) ([]Order, int, error)
	Create(ctx context.Context, order Order) (*Order, error)
	InsertItem(ctx context.Context, item Item) error
	UpdateStatus(ctx context.Context, id uuid.UUID, version int, status Status, notes *string) error
	// ClaimKey records an idempotency key; a repeat returns ErrDuplicateRequest.
	ClaimKey(ctx context.Context, key string) error
	// MarkQuotationProcessing moves an Approved quotation at version to
	// Processing.
	MarkQuotationProcessing(ctx context.Context, quotationID uuid.UUID, version int) error
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

const orderColumns = `id, order_number, customer_id, quotation_id, status, total_amount, notes,
	version, created_by, created_at, updated_at`

func scanOrder(row pgx.Row) (Order, error) {
	var o Order
	var status string
	err := row.Scan(&o.ID, &o.OrderNumber, &o.CustomerID, &o.QuotationID, &status, &o.TotalAmount,
		&o.Notes, &o.Version, &o.CreatedBy, &o.CreatedAt, &o.UpdatedAt)
	o.Status = Status(status)
	return o, err
}

func (r *repository) Get(ctx context.Context, id uuid.UUID) (*Order, error) {
	o, err := scanOrder(r.db.QueryRow(ctx, "SELECT "+orderColumns+" FROM orders WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, order_id, product_id, product_name, sku, quantity, unit_price, mrp,
			discount, line_total, line_order
		FROM order_items WHERE order_id = $1 ORDER BY line_order, id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	o.Items = make([]Item, 0)
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName, &it.SKU, &it.Quantity,
			&it.UnitPrice, &it.MRP, &it.Discount, &it.LineTotal, &it.LineOrder); err != nil {
			return nil, err
		}
		o.Items = append(o.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *repository) List(ctx context.Context, req ListOrdersRequest) ([]Order, int, error) {
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
		conditions = append(conditions, fmt.Sprintf("order_number ILIKE $%d", argPos))
		args = append(args, "%"+req.Search+"%")
		argPos++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM orders "+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM orders %s ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d`,
		orderColumns, whereClause, argPos, argPos+1)
	args = append(args, req.Limit, req.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	orders := make([]Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		orders = append(orders, o)
	}
	return orders, total, rows.Err()
}

// Create allocates the order number and inserts the header. Call it with
// InsertItem inside one transaction.
func (r *repository) Create(ctx context.Context, o Order) (*Order, error) {
	number, err := salesshared.NextNumber(ctx, r.db, salesshared.PrefixOrder, time.Now())
	if err != nil {
		return nil, err
	}
	created, err := scanOrder(r.db.QueryRow(ctx, `
		INSERT INTO orders (order_number, customer_id, quotation_id, status, total_amount, notes, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+orderColumns,
		number, o.CustomerID, o.QuotationID, string(o.Status), o.TotalAmount, o.Notes, o.CreatedBy,
	))
	if err != nil {
		switch {
		case db.IsUniqueViolation(err) && o.QuotationID != nil:
			return nil, ErrAlreadyConverted
		case db.IsForeignKeyViolation(err):
			return nil, fmt.Errorf("%w: unknown customer", httpx.ErrValidation)
		}
		return nil, err
	}
	return &created, nil
}

func (r *repository) InsertItem(ctx context.Context, it Item) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO order_items (order_id, product_id, product_name, sku, quantity,
			unit_price, mrp, discount, line_total, line_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		it.OrderID, it.ProductID, it.ProductName, it.SKU, it.Quantity,
		it.UnitPrice, it.MRP, it.Discount, it.LineTotal, it.LineOrder,
	)
	if err != nil && db.IsForeignKeyViolation(err) {
		return fmt.Errorf("%w: product %s no longer exists", httpx.ErrValidation, it.ProductName)
	}
	return err
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, version int, status Status, notes *string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE orders
		SET status = $3, notes = COALESCE($4, notes), version = version + 1, updated_at = NOW()
		WHERE id = $1 AND version = $2`,
		id, version, string(status), notes,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 1 {
		return nil
	}
	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}
	return ErrVersionConflict
}

func (r *repository) ClaimKey(ctx context.Context, key string) error {
	err := shared.NewIdempotencyStore(r.db).CheckAndInsert(ctx, key, idempotencyModule)
	if errors.Is(err, shared.ErrIdempotencyConflict) {
		return ErrDuplicateRequest
	}
	return err
}

func (r *repository) MarkQuotationProcessing(ctx context.Context, quotationID uuid.UUID, version int) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE quotations
		SET status = 'Processing', version = version + 1, updated_at = NOW()
		WHERE id = $1 AND status = 'Approved' AND version = $2`,
		quotationID, version,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return quotations.ErrVersionConflict
	}
	return nil
}
