package repository

import (
	"context"

	"restaurant-service/internal/domain"
)

// DashboardStats is the aggregate snapshot the admin dashboard renders.
type DashboardStats struct {
	TotalOrders     int64 `json:"totalOrders"`
	PendingOrders   int64 `json:"pendingOrders"`
	CompletedOrders int64 `json:"completedOrders"`
	TodayOrders     int64 `json:"todayOrders"`

	// Revenue excludes cancelled orders.
	TotalRevenue domain.Cents `json:"totalRevenue"`
	TodayRevenue domain.Cents `json:"todayRevenue"`
	MonthRevenue domain.Cents `json:"monthRevenue"`

	TotalFoods      int64            `json:"totalFoods"`
	ActiveFoods     int64            `json:"activeFoods"`
	FoodsByCategory map[string]int64 `json:"foodsByCategory"`

	OrdersByStatus map[domain.OrderStatus]int64 `json:"ordersByStatus"`
	OrdersByType   map[domain.OrderType]int64   `json:"ordersByType"`

	RecentOrders []domain.Order `json:"recentOrders"`
	TopItems     []TopItem      `json:"topItems"`
}

// TopItem aggregates order-item snapshots by food name, so historical
// sales survive catalog renames and deletions.
type TopItem struct {
	FoodName      string       `json:"foodName"`
	TotalQuantity int64        `json:"totalQuantity"`
	TotalRevenue  domain.Cents `json:"totalRevenue"`
}

type StatsRepository interface {
	Collect(ctx context.Context) (*DashboardStats, error)
}
