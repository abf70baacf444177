package customer

import "context"

// Customer is the party an invoice is billed to.
type Customer struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	ImageURL string `json:"imageUrl"`
}

// Repository lists customers.
type Repository interface {
	List(ctx context.Context) ([]*Customer, error)
}
