package services

import (
	"context"
	"strings"

	"restaurant-service/internal/repository"
)

// CustomerService backs the admin customer screens. Order placement never
// goes through here; it resolves customers inside OrderService.
type CustomerService struct {
	customers repository.CustomerRepository
}

func NewCustomerService(customers repository.CustomerRepository) *CustomerService {
	return &CustomerService{customers: customers}
}

// List returns customers with order aggregates, optionally filtered by a
// name/email substring.
func (s *CustomerService) List(ctx context.Context, search string, limit int) ([]repository.CustomerSummary, error) {
	return s.customers.List(ctx, strings.TrimSpace(search), limit)
}
