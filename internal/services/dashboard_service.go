package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"restaurant-service/internal/repository"

	"github.com/go-redis/redis/v8"
)

const (
	statsCacheKey = "dashboard:stats"
	statsCacheTTL = 10 * time.Second
)

// DashboardService aggregates order/food/revenue statistics for the admin
// dashboard, with a short Redis cache in front of the heavier queries.
type DashboardService struct {
	stats  repository.StatsRepository
	redis  *redis.Client
	logger *slog.Logger
}

func NewDashboardService(stats repository.StatsRepository, logger *slog.Logger) *DashboardService {
	return &DashboardService{stats: stats, logger: logger}
}

func (s *DashboardService) SetRedisClient(client *redis.Client) {
	s.redis = client
}

func (s *DashboardService) Stats(ctx context.Context) (*repository.DashboardStats, error) {
	if s.redis != nil {
		if raw, err := s.redis.Get(ctx, statsCacheKey).Result(); err == nil {
			var cached repository.DashboardStats
			if err := json.Unmarshal([]byte(raw), &cached); err == nil {
				return &cached, nil
			}
		}
	}

	stats, err := s.stats.Collect(ctx)
	if err != nil {
		return nil, err
	}

	if s.redis != nil {
		if data, err := json.Marshal(stats); err == nil {
			if err := s.redis.Set(ctx, statsCacheKey, data, statsCacheTTL).Err(); err != nil {
				s.logger.Warn("dashboard stats cache set failed", "error", err)
			}
		}
	}

	return stats, nil
}
