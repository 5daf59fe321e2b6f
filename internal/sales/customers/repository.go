package customers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/basteen-Dev/pavilion/internal/platform/db"
	"github.com/basteen-Dev/pavilion/internal/platform/httpx"
)

var (
	ErrNotFound      = fmt.Errorf("customer %w", httpx.ErrNotFound)
	ErrAlreadyExists = fmt.Errorf("customer email %w", httpx.ErrDuplicate)
	ErrInvalidStatus = fmt.Errorf("%w: customer is not pending approval", httpx.ErrValidation)
)

type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	Get(ctx context.Context, id uuid.UUID) (*Customer, error)
	List(ctx context.Context, req ListCustomersRequest) ([]Customer, int, error)
	Create(ctx context.Context, customer Customer) (*Customer, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error
	Decide(ctx context.Context, id uuid.UUID, status string, discount decimal.Decimal, at time.Time) error
	CreatePortalUser(ctx context.Context, user PortalUser) (uuid.UUID, error)
}

type repository struct {
	db   db.DBTX
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool, pool: pool}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &repository{db: tx, pool: r.pool})
	})
}

const customerColumns = `id, name, company_name, email, phone, gst_number, address, type,
	discount_percentage, status, primary_contact_name, primary_contact_email,
	primary_contact_phone, approved_at, created_at, updated_at`

func scanCustomer(row pgx.Row) (Customer, error) {
	var c Customer
	err := row.Scan(
		&c.ID, &c.Name, &c.CompanyName, &c.Email, &c.Phone, &c.GSTNumber, &c.Address, &c.Type,
		&c.DiscountPercentage, &c.Status, &c.PrimaryContactName, &c.PrimaryContactEmail,
		&c.PrimaryContactPhone, &c.ApprovedAt, &c.CreatedAt, &c.UpdatedAt,
	)
	return c, err
}

func (r *repository) Get(ctx context.Context, id uuid.UUID) (*Customer, error) {
	c, err := scanCustomer(r.db.QueryRow(ctx, "SELECT "+customerColumns+" FROM customers WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *repository) List(ctx context.Context, req ListCustomersRequest) ([]Customer, int, error) {
	var conditions []string
	var args []interface{}
	argPos := 1

	if req.Type != nil {
		conditions = append(conditions, fmt.Sprintf("type = $%d", argPos))
		args = append(args, *req.Type)
		argPos++
	}
	if req.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argPos))
		args = append(args, *req.Status)
		argPos++
	}
	if req.Search != nil && *req.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(name ILIKE $%d OR company_name ILIKE $%d OR email ILIKE $%d)", argPos, argPos, argPos))
		args = append(args, "%"+*req.Search+"%")
		argPos++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM customers "+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM customers %s ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d`,
		customerColumns, whereClause, argPos, argPos+1)
	args = append(args, req.Limit, req.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	customers := make([]Customer, 0)
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, 0, err
		}
		customers = append(customers, c)
	}
	return customers, total, rows.Err()
}

func (r *repository) Create(ctx context.Context, c Customer) (*Customer, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO customers (name, company_name, email, phone, gst_number, address, type,
			discount_percentage, status, primary_contact_name, primary_contact_email,
			primary_contact_phone, approved_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING `+customerColumns,
		c.Name, c.CompanyName, c.Email, c.Phone, c.GSTNumber, c.Address, c.Type,
		c.DiscountPercentage, c.Status, c.PrimaryContactName, c.PrimaryContactEmail,
		c.PrimaryContactPhone, c.ApprovedAt,
	)
	created, err := scanCustomer(row)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrAlreadyExists
		}
		return nil, err
	}
	return &created, nil
}

var updatableColumns = []string{
	"name", "company_name", "email", "phone", "gst_number", "address", "type",
	"discount_percentage", "primary_contact_name", "primary_contact_email", "primary_contact_phone",
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	query := "UPDATE customers SET updated_at = NOW()"
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
		if db.IsUniqueViolation(err) {
			return ErrAlreadyExists
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Decide moves a pending customer to status. The pending guard lives in the
// WHERE clause so two concurrent decisions cannot both succeed.
func (r *repository) Decide(ctx context.Context, id uuid.UUID, status string, discount decimal.Decimal, at time.Time) error {
	var approvedAt *time.Time
	if status == StatusApproved {
		approvedAt = &at
	}
	tag, err := r.db.Exec(ctx, `
		UPDATE customers
		SET status = $2, discount_percentage = $3, approved_at = $4, updated_at = $5
		WHERE id = $1 AND status = 'pending'`,
		id, status, discount, approvedAt, at,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 1 {
		return nil
	}
	if _, err := r.Get(ctx, id); err != nil {
		return err
	}
	return ErrInvalidStatus
}

func (r *repository) CreatePortalUser(ctx context.Context, user PortalUser) (uuid.UUID, error) {
	var id uuid.UUID
	err := r.db.QueryRow(ctx, `
		INSERT INTO users (email, password_hash, role, customer_id)
		VALUES ($1, $2, 'b2b', $3)
		RETURNING id`,
		strings.ToLower(user.Email), user.PasswordHash, user.CustomerID,
	).Scan(&id)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return uuid.Nil, fmt.Errorf("portal user email %w", httpx.ErrDuplicate)
		}
		return uuid.Nil, err
	}
	return id, nil
}
