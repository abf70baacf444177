package invoice

import "context"

// Repository defines persistence behaviours for invoices.
type Repository interface {
	Create(ctx context.Context, invoice *Invoice) error
	GetByID(ctx context.Context, id string) (*Invoice, error)
	List(ctx context.Context, filter Filter) ([]*Row, error)
	Count(ctx context.Context, query string) (int, error)
	Update(ctx context.Context, invoice *Invoice) error
	Delete(ctx context.Context, id string) error
	Summary(ctx context.Context) (Summary, error)
}
