package repository

import (
	"context"
	"time"

	"restaurant-service/internal/domain"
)

// OrderFilter narrows admin order listings. Empty fields mean "all".
type OrderFilter struct {
	Status domain.OrderStatus
	Type   domain.OrderType
	Limit  int
}

// StatusUpdate is a staff-side patch to an existing order.
type StatusUpdate struct {
	Status     domain.OrderStatus
	AdminNotes *string
}

type OrderRepository interface {
	// CreateWithItems persists the order and all its items as one
	// transaction. Either every row exists afterwards or none do. A
	// duplicate order number surfaces as domain.ErrConflict.
	CreateWithItems(ctx context.Context, order *domain.Order) error

	FindByID(ctx context.Context, id uint64) (*domain.Order, error)
	FindByNumber(ctx context.Context, number string) (*domain.Order, error)
	List(ctx context.Context, filter OrderFilter) ([]domain.Order, error)
	CountByStatus(ctx context.Context) (map[domain.OrderStatus]int64, error)
	UpdateStatus(ctx context.Context, id uint64, upd StatusUpdate) (*domain.Order, error)
}

type CustomerRepository interface {
	// FindByEmail does an exact, case-sensitive lookup. Returns
	// (nil, nil) when no customer exists.
	FindByEmail(ctx context.Context, email string) (*domain.Customer, error)
	FindByID(ctx context.Context, id uint64) (*domain.Customer, error)
	// Create returns domain.ErrConflict when the email is already taken,
	// so a losing concurrent creator can re-read instead of failing.
	Create(ctx context.Context, customer *domain.Customer) error
	UpdateContact(ctx context.Context, id uint64, name, phone string) error
	List(ctx context.Context, search string, limit int) ([]CustomerSummary, error)
}

// CustomerSummary is a customer row decorated with order aggregates for
// the admin listing.
type CustomerSummary struct {
	domain.Customer
	OrdersCount   int64        `json:"ordersCount"`
	TotalSpent    domain.Cents `json:"totalSpent"`
	LastOrderDate *time.Time   `json:"lastOrderDate,omitempty"`
}

type FoodRepository interface {
	// FindActiveByName returns (nil, nil) when no active food matches;
	// order items without a catalog match are allowed.
	FindActiveByName(ctx context.Context, name string) (*domain.Food, error)
	FindByID(ctx context.Context, id uint64) (*domain.Food, error)
	ListActive(ctx context.Context, category string) ([]domain.Food, error)
	List(ctx context.Context) ([]domain.Food, error)
	Categories(ctx context.Context) ([]string, error)
	Create(ctx context.Context, food *domain.Food) error
	// Update replaces the food's fields and its portion-size set.
	Update(ctx context.Context, food *domain.Food) error
}
