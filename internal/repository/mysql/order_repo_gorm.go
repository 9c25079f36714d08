package mysql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"restaurant-service/internal/domain"
	"restaurant-service/internal/repository"

	gomysql "github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

const defaultListLimit = 50

type orderRepo struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) repository.OrderRepository {
	return &orderRepo{db: db}
}

// isDuplicateKey reports a MySQL unique-constraint violation (error 1062).
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var myErr *gomysql.MySQLError
	return errors.As(err, &myErr) && myErr.Number == 1062
}

func (r *orderRepo) CreateWithItems(ctx context.Context, order *domain.Order) error {
	items := order.Items
	order.Items = nil

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items", "Customer").Create(order).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].OrderID = order.ID
			// Line totals are recomputed at write time, never taken from
			// the request.
			items[i].TotalPrice = items[i].UnitPrice.MulQty(items[i].Quantity)
		}
		if err := tx.Create(&items).Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		if isDuplicateKey(err) {
			return fmt.Errorf("order number %s: %w", order.OrderNumber, domain.ErrConflict)
		}
		return fmt.Errorf("create order: %w", err)
	}

	order.Items = items
	return nil
}

func (r *orderRepo) FindByID(ctx context.Context, id uint64) (*domain.Order, error) {
	var o domain.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Customer").
		First(&o, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find order %d: %w", id, err)
	}
	return &o, nil
}

func (r *orderRepo) FindByNumber(ctx context.Context, number string) (*domain.Order, error) {
	var o domain.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("order_number = ?", number).
		First(&o).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find order %s: %w", number, err)
	}
	return &o, nil
}

func (r *orderRepo) List(ctx context.Context, filter repository.OrderFilter) ([]domain.Order, error) {
	q := r.db.WithContext(ctx).Preload("Items").Order("created_at DESC")
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	var out []domain.Order
	if err := q.Limit(limit).Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return out, nil
}

func (r *orderRepo) CountByStatus(ctx context.Context) (map[domain.OrderStatus]int64, error) {
	var rows []struct {
		Status domain.OrderStatus
		Count  int64
	}
	err := r.db.WithContext(ctx).
		Model(&domain.Order{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("count orders by status: %w", err)
	}

	counts := make(map[domain.OrderStatus]int64, len(domain.OrderStatuses))
	for _, s := range domain.OrderStatuses {
		counts[s] = 0
	}
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

func (r *orderRepo) UpdateStatus(ctx context.Context, id uint64, upd repository.StatusUpdate) (*domain.Order, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var o domain.Order
		if err := tx.First(&o, id).Error; err != nil {
			return err
		}

		updates := map[string]any{"status": upd.Status}
		if upd.Status == domain.StatusReady && o.ReadyAt == nil {
			now := time.Now()
			updates["ready_at"] = &now
		}
		if upd.AdminNotes != nil {
			updates["admin_notes"] = *upd.AdminNotes
		}
		return tx.Model(&o).Updates(updates).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("update order %d status: %w", id, err)
	}
	return r.FindByID(ctx, id)
}
