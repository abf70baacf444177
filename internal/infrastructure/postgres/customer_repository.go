package postgres

import (
	"context"

	domain "dashboard/backend/internal/domain/customer"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CustomerRepository reads customers from PostgreSQL.
type CustomerRepository struct {
	pool *pgxpool.Pool
}

// NewCustomerRepository constructs a repository.
func NewCustomerRepository(pool *pgxpool.Pool) *CustomerRepository {
	return &CustomerRepository{pool: pool}
}

var _ domain.Repository = (*CustomerRepository)(nil)

// List returns all customers sorted by name.
func (r *CustomerRepository) List(ctx context.Context) ([]*domain.Customer, error) {
	const query = `
SELECT id::text, name, email, image_url
FROM customers
ORDER BY name ASC
`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.Customer, error) {
		var c domain.Customer
		if err := row.Scan(&c.ID, &c.Name, &c.Email, &c.ImageURL); err != nil {
			return nil, err
		}
		return &c, nil
	})
}
