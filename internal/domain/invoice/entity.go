package invoice

import "errors"

var (
	// ErrNotFound indicates an invoice could not be located.
	ErrNotFound = errors.New("invoice not found")
	// ErrUnknownCustomer signals a customer id without a matching customer.
	ErrUnknownCustomer = errors.New("customer does not exist")
)

// Status is the payment state of an invoice.
type Status string

const (
	StatusPending Status = "pending"
	StatusPaid    Status = "paid"
)

// Invoice captures a single invoice row. Amount is stored in cents.
type Invoice struct {
	ID         string `json:"id"`
	CustomerID string `json:"customerId"`
	Amount     int64  `json:"amount"`
	Status     Status `json:"status"`
	Date       string `json:"date"`
}

// Row is an invoice joined with its customer for listing.
type Row struct {
	Invoice
	Name     string `json:"name"`
	Email    string `json:"email"`
	ImageURL string `json:"imageUrl"`
}

// Filter narrows invoice listings.
type Filter struct {
	Query  string
	Limit  int
	Offset int
}

// Summary aggregates invoice totals for the dashboard landing page.
type Summary struct {
	Invoices     int   `json:"invoices"`
	Customers    int   `json:"customers"`
	TotalPaid    int64 `json:"totalPaid"`
	TotalPending int64 `json:"totalPending"`
}
