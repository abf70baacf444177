package postgres

import (
	"context"
	"errors"

	domain "dashboard/backend/internal/domain/invoice"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// InvoiceRepository persists invoices in PostgreSQL.
type InvoiceRepository struct {
	pool *pgxpool.Pool
}

// NewInvoiceRepository constructs a repository.
func NewInvoiceRepository(pool *pgxpool.Pool) *InvoiceRepository {
	return &InvoiceRepository{pool: pool}
}

var _ domain.Repository = (*InvoiceRepository)(nil)

const invoiceSearch = `
FROM invoices
JOIN customers ON invoices.customer_id = customers.id
WHERE customers.name ILIKE $1
   OR customers.email ILIKE $1
   OR invoices.amount::text ILIKE $1
   OR invoices.date::text ILIKE $1
   OR invoices.status ILIKE $1
`

// Create inserts a new invoice.
func (r *InvoiceRepository) Create(ctx context.Context, invoice *domain.Invoice) error {
	const query = `
INSERT INTO invoices (id, customer_id, amount, status, date)
VALUES ($1, $2, $3, $4, $5::date)
`
	_, err := r.pool.Exec(ctx, query,
		invoice.ID,
		invoice.CustomerID,
		invoice.Amount,
		string(invoice.Status),
		invoice.Date,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrUnknownCustomer
		}
		return err
	}
	return nil
}

// GetByID fetches an invoice by id.
func (r *InvoiceRepository) GetByID(ctx context.Context, id string) (*domain.Invoice, error) {
	const query = `
SELECT id::text, customer_id::text, amount, status, to_char(date, 'YYYY-MM-DD')
FROM invoices WHERE id = $1
`
	var inv domain.Invoice
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&inv.ID,
		&inv.CustomerID,
		&inv.Amount,
		&inv.Status,
		&inv.Date,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidText(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &inv, nil
}

// List returns invoices matching the filter, newest first.
func (r *InvoiceRepository) List(ctx context.Context, filter domain.Filter) ([]*domain.Row, error) {
	const query = `
SELECT invoices.id::text,
       invoices.customer_id::text,
       invoices.amount,
       invoices.status,
       to_char(invoices.date, 'YYYY-MM-DD'),
       customers.name,
       customers.email,
       customers.image_url
` + invoiceSearch + `
ORDER BY invoices.date DESC, invoices.id
LIMIT $2 OFFSET $3
`
	rows, err := r.pool.Query(ctx, query, likePattern(filter.Query), filter.Limit, filter.Offset)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scanInvoiceRow)
}

// Count returns how many invoices match the search query.
func (r *InvoiceRepository) Count(ctx context.Context, query string) (int, error) {
	const stmt = `SELECT COUNT(*) ` + invoiceSearch
	var n int
	if err := r.pool.QueryRow(ctx, stmt, likePattern(query)).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// Update writes invoice updates to the database.
func (r *InvoiceRepository) Update(ctx context.Context, invoice *domain.Invoice) error {
	const query = `
UPDATE invoices
SET customer_id = $2,
    amount = $3,
    status = $4
WHERE id = $1
`
	tag, err := r.pool.Exec(ctx, query,
		invoice.ID,
		invoice.CustomerID,
		invoice.Amount,
		string(invoice.Status),
	)
	if err != nil {
		switch {
		case isForeignKeyViolation(err):
			return domain.ErrUnknownCustomer
		case isInvalidText(err):
			return domain.ErrNotFound
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes an invoice by id.
func (r *InvoiceRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM invoices WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		if isInvalidText(err) {
			return domain.ErrNotFound
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Summary aggregates counts and totals for the dashboard cards.
func (r *InvoiceRepository) Summary(ctx context.Context) (domain.Summary, error) {
	const query = `
SELECT
    (SELECT COUNT(*) FROM invoices),
    (SELECT COUNT(*) FROM customers),
    COALESCE((SELECT SUM(amount) FROM invoices WHERE status = 'paid'), 0),
    COALESCE((SELECT SUM(amount) FROM invoices WHERE status = 'pending'), 0)
`
	var s domain.Summary
	err := r.pool.QueryRow(ctx, query).Scan(
		&s.Invoices,
		&s.Customers,
		&s.TotalPaid,
		&s.TotalPending,
	)
	return s, err
}

func scanInvoiceRow(row pgx.CollectableRow) (*domain.Row, error) {
	var r domain.Row
	err := row.Scan(
		&r.ID,
		&r.CustomerID,
		&r.Amount,
		&r.Status,
		&r.Date,
		&r.Name,
		&r.Email,
		&r.ImageURL,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func likePattern(q string) string {
	return "%" + q + "%"
}
