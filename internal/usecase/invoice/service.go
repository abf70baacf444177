package invoice

import (
	"context"
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	customerdomain "dashboard/backend/internal/domain/customer"
	domain "dashboard/backend/internal/domain/invoice"
	"dashboard/backend/internal/validate"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/google/uuid"
)

// ItemsPerPage is the invoice table page size.
const ItemsPerPage = 6

// maxAmount keeps cents within a PostgreSQL INTEGER.
const maxAmount = float64(math.MaxInt32) / 100

// Field messages shown next to the invoice form inputs.
const (
	MsgCustomer = "Please select a customer."
	MsgAmount   = "Please enter an amount greater than $0."
	MsgStatus   = "Please select an invoice status."
)

// Service encapsulates invoice use cases.
type Service struct {
	repo      domain.Repository
	customers customerdomain.Repository
	nowFunc   func() time.Time
}

// NewService constructs an invoice service.
func NewService(repo domain.Repository, customers customerdomain.Repository) *Service {
	return &Service{
		repo:      repo,
		customers: customers,
		nowFunc:   time.Now,
	}
}

// Input is the raw invoice form submission.
type Input struct {
	CustomerID string `json:"customerId"`
	Amount     string `json:"amount"`
	Status     string `json:"status"`
}

// Page is one page of the filtered invoice table.
type Page struct {
	Items      []*domain.Row `json:"items"`
	Page       int           `json:"page"`
	TotalPages int           `json:"totalPages"`
	Query      string        `json:"query"`
}

type form struct {
	CustomerID string  `json:"customerId"`
	Amount     float64 `json:"amount"`
	Status     string  `json:"status"`
}

// parse validates the input and returns customer id, amount in cents and status.
func parse(in Input) (string, int64, domain.Status, error) {
	f := form{
		CustomerID: strings.TrimSpace(in.CustomerID),
		Status:     strings.TrimSpace(in.Status),
	}
	if amount, err := strconv.ParseFloat(strings.TrimSpace(in.Amount), 64); err == nil && !math.IsNaN(amount) && !math.IsInf(amount, 0) {
		f.Amount = amount
	}

	err := validation.ValidateStruct(&f,
		validation.Field(&f.CustomerID,
			validation.Required.Error(MsgCustomer),
			is.UUID.Error(MsgCustomer),
		),
		validation.Field(&f.Amount,
			validation.Required.Error(MsgAmount),
			validation.Min(0.0).Exclusive().Error(MsgAmount),
			validation.Max(maxAmount).Error("Amount is too large."),
		),
		validation.Field(&f.Status,
			validation.Required.Error(MsgStatus),
			validation.In(string(domain.StatusPending), string(domain.StatusPaid)).Error(MsgStatus),
		),
	)
	if err := validate.Wrap(err); err != nil {
		return "", 0, "", err
	}

	cents := int64(math.Round(f.Amount * 100))
	if cents < 1 {
		return "", 0, "", &validate.Error{Fields: map[string]string{"amount": MsgAmount}}
	}
	return f.CustomerID, cents, domain.Status(f.Status), nil
}

// Create validates the form and stores a new invoice dated today.
func (s *Service) Create(ctx context.Context, in Input) (*domain.Invoice, error) {
	customerID, cents, status, err := parse(in)
	if err != nil {
		return nil, err
	}

	inv := &domain.Invoice{
		ID:         uuid.NewString(),
		CustomerID: customerID,
		Amount:     cents,
		Status:     status,
		Date:       s.nowFunc().UTC().Format(time.DateOnly),
	}
	if err := s.repo.Create(ctx, inv); err != nil {
		return nil, customerFieldError(err)
	}
	return inv, nil
}

// Update replaces customer, amount and status of an existing invoice.
func (s *Service) Update(ctx context.Context, id string, in Input) error {
	if !validID(id) {
		return domain.ErrNotFound
	}
	customerID, cents, status, err := parse(in)
	if err != nil {
		return err
	}
	return customerFieldError(s.repo.Update(ctx, &domain.Invoice{
		ID:         id,
		CustomerID: customerID,
		Amount:     cents,
		Status:     status,
	}))
}

// Delete removes an invoice.
func (s *Service) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return domain.ErrNotFound
	}
	return s.repo.Delete(ctx, id)
}

// Get fetches an invoice by id.
func (s *Service) Get(ctx context.Context, id string) (*domain.Invoice, error) {
	if !validID(id) {
		return nil, domain.ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

// List returns one page of invoices matching query. Pages start at 1.
func (s *Service) List(ctx context.Context, query string, page int) (Page, error) {
	query = strings.TrimSpace(query)
	if page < 1 {
		page = 1
	}

	total, err := s.repo.Count(ctx, query)
	if err != nil {
		return Page{}, err
	}
	items, err := s.repo.List(ctx, domain.Filter{
		Query:  query,
		Limit:  ItemsPerPage,
		Offset: (page - 1) * ItemsPerPage,
	})
	if err != nil {
		return Page{}, err
	}
	if items == nil {
		items = []*domain.Row{}
	}
	return Page{
		Items:      items,
		Page:       page,
		TotalPages: (total + ItemsPerPage - 1) / ItemsPerPage,
		Query:      query,
	}, nil
}

// Summary returns the dashboard totals.
func (s *Service) Summary(ctx context.Context) (domain.Summary, error) {
	return s.repo.Summary(ctx)
}

// Customers lists customers for the invoice form.
func (s *Service) Customers(ctx context.Context) ([]*customerdomain.Customer, error) {
	return s.customers.List(ctx)
}

func validID(id string) bool {
	_, err := uuid.Parse(strings.TrimSpace(id))
	return err == nil
}

func customerFieldError(err error) error {
	if errors.Is(err, domain.ErrUnknownCustomer) {
		return &validate.Error{Fields: map[string]string{"customerId": MsgCustomer}}
	}
	return err
}
