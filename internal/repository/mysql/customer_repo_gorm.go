package mysql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"restaurant-service/internal/domain"
	"restaurant-service/internal/repository"

	"gorm.io/gorm"
)

type customerRepo struct {
	db *gorm.DB
}

func NewCustomerRepository(db *gorm.DB) repository.CustomerRepository {
	return &customerRepo{db: db}
}

func (r *customerRepo) FindByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	var c domain.Customer
	// BINARY forces an exact byte comparison; the default utf8mb4
	// collation would match case-insensitively and the lookup policy here
	// is exact match.
	err := r.db.WithContext(ctx).Where("BINARY email = ?", email).First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find customer by email: %w", err)
	}
	return &c, nil
}

func (r *customerRepo) FindByID(ctx context.Context, id uint64) (*domain.Customer, error) {
	var c domain.Customer
	err := r.db.WithContext(ctx).First(&c, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find customer %d: %w", id, err)
	}
	return &c, nil
}

func (r *customerRepo) Create(ctx context.Context, customer *domain.Customer) error {
	if err := r.db.WithContext(ctx).Create(customer).Error; err != nil {
		if isDuplicateKey(err) {
			return fmt.Errorf("customer email %s: %w", customer.Email, domain.ErrConflict)
		}
		return fmt.Errorf("create customer: %w", err)
	}
	return nil
}

func (r *customerRepo) UpdateContact(ctx context.Context, id uint64, name, phone string) error {
	updates := map[string]any{"name": name}
	if phone != "" {
		updates["phone"] = phone
	}
	err := r.db.WithContext(ctx).
		Model(&domain.Customer{}).
		Where("id = ?", id).
		Updates(updates).Error
	if err != nil {
		return fmt.Errorf("update customer %d contact: %w", id, err)
	}
	return nil
}

func (r *customerRepo) List(ctx context.Context, search string, limit int) ([]repository.CustomerSummary, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	q := r.db.WithContext(ctx).
		Model(&domain.Customer{}).
		Select("customers.*, " +
			"COUNT(orders.id) AS orders_count, " +
			"COALESCE(SUM(orders.total), 0) AS total_spent, " +
			"MAX(orders.created_at) AS last_order_date").
		Joins("LEFT JOIN orders ON orders.customer_id = customers.id").
		Group("customers.id").
		Order("customers.created_at DESC").
		Limit(limit)

	if search != "" {
		like := "%" + search + "%"
		q = q.Where("customers.name LIKE ? OR customers.email LIKE ?", like, like)
	}

	var rows []customerSummaryRow
	if err := q.Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}

	out := make([]repository.CustomerSummary, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toSummary())
	}
	return out, nil
}

// customerSummaryRow is the flat scan target for the aggregate listing
// query.
type customerSummaryRow struct {
	ID         uint64
	Name       string
	Email      string
	Phone      string
	Address    string
	City       string
	State      string
	PostalCode string
	CreatedAt  time.Time
	UpdatedAt  time.Time

	OrdersCount   int64
	TotalSpent    int64
	LastOrderDate *time.Time
}

func (r customerSummaryRow) toSummary() repository.CustomerSummary {
	return repository.CustomerSummary{
		Customer: domain.Customer{
			ID:         r.ID,
			Name:       r.Name,
			Email:      r.Email,
			Phone:      r.Phone,
			Address:    r.Address,
			City:       r.City,
			State:      r.State,
			PostalCode: r.PostalCode,
			CreatedAt:  r.CreatedAt,
			UpdatedAt:  r.UpdatedAt,
		},
		OrdersCount:   r.OrdersCount,
		TotalSpent:    domain.Cents(r.TotalSpent),
		LastOrderDate: r.LastOrderDate,
	}
}
