package mysql

import (
	"context"
	"fmt"
	"time"

	"restaurant-service/internal/domain"
	"restaurant-service/internal/repository"

	"gorm.io/gorm"
)

const (
	recentOrdersLimit = 10
	topItemsLimit     = 5
)

type statsRepo struct {
	db *gorm.DB
}

func NewStatsRepository(db *gorm.DB) repository.StatsRepository {
	return &statsRepo{db: db}
}

func (r *statsRepo) Collect(ctx context.Context) (*repository.DashboardStats, error) {
	db := r.db.WithContext(ctx)
	stats := &repository.DashboardStats{
		FoodsByCategory: make(map[string]int64),
		OrdersByStatus:  make(map[domain.OrderStatus]int64),
		OrdersByType:    make(map[domain.OrderType]int64),
	}

	now := time.Now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	orders := func() *gorm.DB { return db.Model(&domain.Order{}) }

	if err := orders().Count(&stats.TotalOrders).Error; err != nil {
		return nil, fmt.Errorf("dashboard stats: total orders: %w", err)
	}
	if err := orders().Where("status = ?", domain.StatusPending).Count(&stats.PendingOrders).Error; err != nil {
		return nil, fmt.Errorf("dashboard stats: pending orders: %w", err)
	}
	if err := orders().Where("status = ?", domain.StatusCompleted).Count(&stats.CompletedOrders).Error; err != nil {
		return nil, fmt.Errorf("dashboard stats: completed orders: %w", err)
	}
	if err := orders().Where("created_at >= ?", startOfDay).Count(&stats.TodayOrders).Error; err != nil {
		return nil, fmt.Errorf("dashboard stats: today orders: %w", err)
	}

	revenue := func(q *gorm.DB, dst *domain.Cents) error {
		var total int64
		err := q.Where("status <> ?", domain.StatusCancelled).
			Select("COALESCE(SUM(total), 0)").
			Scan(&total).Error
		*dst = domain.Cents(total)
		return err
	}
	if err := revenue(orders(), &stats.TotalRevenue); err != nil {
		return nil, fmt.Errorf("dashboard stats: total revenue: %w", err)
	}
	if err := revenue(orders().Where("created_at >= ?", startOfDay), &stats.TodayRevenue); err != nil {
		return nil, fmt.Errorf("dashboard stats: today revenue: %w", err)
	}
	if err := revenue(orders().Where("created_at >= ?", startOfMonth), &stats.MonthRevenue); err != nil {
		return nil, fmt.Errorf("dashboard stats: month revenue: %w", err)
	}

	if err := db.Model(&domain.Food{}).Count(&stats.TotalFoods).Error; err != nil {
		return nil, fmt.Errorf("dashboard stats: total foods: %w", err)
	}
	if err := db.Model(&domain.Food{}).Where("is_active = ?", true).Count(&stats.ActiveFoods).Error; err != nil {
		return nil, fmt.Errorf("dashboard stats: active foods: %w", err)
	}

	var categoryRows []struct {
		Category string
		Count    int64
	}
	if err := db.Model(&domain.Food{}).
		Select("category, COUNT(*) AS count").
		Group("category").
		Scan(&categoryRows).Error; err != nil {
		return nil, fmt.Errorf("dashboard stats: foods by category: %w", err)
	}
	for _, row := range categoryRows {
		stats.FoodsByCategory[row.Category] = row.Count
	}

	var statusRows []struct {
		Status domain.OrderStatus
		Count  int64
	}
	if err := orders().Select("status, COUNT(*) AS count").Group("status").Scan(&statusRows).Error; err != nil {
		return nil, fmt.Errorf("dashboard stats: orders by status: %w", err)
	}
	for _, row := range statusRows {
		stats.OrdersByStatus[row.Status] = row.Count
	}

	var typeRows []struct {
		Type  domain.OrderType
		Count int64
	}
	if err := orders().Select("type, COUNT(*) AS count").Group("type").Scan(&typeRows).Error; err != nil {
		return nil, fmt.Errorf("dashboard stats: orders by type: %w", err)
	}
	for _, row := range typeRows {
		stats.OrdersByType[row.Type] = row.Count
	}

	if err := db.Order("created_at DESC").Limit(recentOrdersLimit).Find(&stats.RecentOrders).Error; err != nil {
		return nil, fmt.Errorf("dashboard stats: recent orders: %w", err)
	}

	var topRows []struct {
		FoodName      string
		TotalQuantity int64
		TotalRevenue  int64
	}
	if err := db.Model(&domain.OrderItem{}).
		Select("food_name, SUM(quantity) AS total_quantity, SUM(total_price) AS total_revenue").
		Group("food_name").
		Order("total_quantity DESC").
		Limit(topItemsLimit).
		Scan(&topRows).Error; err != nil {
		return nil, fmt.Errorf("dashboard stats: top items: %w", err)
	}
	for _, row := range topRows {
		stats.TopItems = append(stats.TopItems, repository.TopItem{
			FoodName:      row.FoodName,
			TotalQuantity: row.TotalQuantity,
			TotalRevenue:  domain.Cents(row.TotalRevenue),
		})
	}

	return stats, nil
}
