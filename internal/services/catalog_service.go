package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"restaurant-service/internal/domain"
	"restaurant-service/internal/repository"

	"github.com/go-redis/redis/v8"
	"golang.org/x/sync/errgroup"
)

var ErrFoodNotFound = errors.New("food not found")

const (
	menuCacheKey  = "catalog:menu"
	menuCacheTTL  = time.Minute
	warmupWorkers = 4
)

func categoryCacheKey(category string) string {
	return "catalog:category:" + category
}

// MenuFood is the storefront view of a catalog entry: portion sizes
// flattened to a name → price map.
type MenuFood struct {
	ID           uint64                  `json:"id"`
	Name         string                  `json:"name"`
	Description  string                  `json:"description,omitempty"`
	Image        string                  `json:"image,omitempty"`
	Category     string                  `json:"category"`
	PortionSizes map[string]domain.Cents `json:"portion_sizes"`
}

// CatalogService serves the food catalog. Reads go through Redis when a
// client is configured; admin mutations invalidate the affected keys.
type CatalogService struct {
	foods  repository.FoodRepository
	redis  *redis.Client
	logger *slog.Logger
}

func NewCatalogService(foods repository.FoodRepository, logger *slog.Logger) *CatalogService {
	return &CatalogService{foods: foods, logger: logger}
}

func (s *CatalogService) SetRedisClient(client *redis.Client) {
	s.redis = client
}

// Menu returns all active foods grouped by category.
func (s *CatalogService) Menu(ctx context.Context) (map[string][]MenuFood, error) {
	var cached map[string][]MenuFood
	if s.cacheGet(ctx, menuCacheKey, &cached) {
		return cached, nil
	}

	foods, err := s.foods.ListActive(ctx, "")
	if err != nil {
		return nil, err
	}

	menu := make(map[string][]MenuFood)
	for _, f := range foods {
		menu[f.Category] = append(menu[f.Category], toMenuFood(f))
	}

	s.cacheSet(ctx, menuCacheKey, menu)
	return menu, nil
}

// Category returns the active foods in one category.
func (s *CatalogService) Category(ctx context.Context, category string) ([]MenuFood, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		verr := domain.NewValidationError()
		verr.Add("category", "is required")
		return nil, verr
	}

	key := categoryCacheKey(category)
	var cached []MenuFood
	if s.cacheGet(ctx, key, &cached) {
		return cached, nil
	}

	foods, err := s.foods.ListActive(ctx, category)
	if err != nil {
		return nil, err
	}

	out := make([]MenuFood, 0, len(foods))
	for _, f := range foods {
		out = append(out, toMenuFood(f))
	}

	s.cacheSet(ctx, key, out)
	return out, nil
}

// ListAll is the admin listing: every food, active or not, with its
// portion-size rows.
func (s *CatalogService) ListAll(ctx context.Context) ([]domain.Food, error) {
	return s.foods.List(ctx)
}

func (s *CatalogService) GetFood(ctx context.Context, id uint64) (*domain.Food, error) {
	f, err := s.foods.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if f == nil {
		return nil, ErrFoodNotFound
	}
	return f, nil
}

// CreateFood adds a catalog entry with its portion sizes.
func (s *CatalogService) CreateFood(ctx context.Context, food *domain.Food) error {
	if err := validateFood(food); err != nil {
		return err
	}
	if err := s.foods.Create(ctx, food); err != nil {
		return err
	}
	s.invalidate(ctx, food.Category)
	return nil
}

// UpdateFood replaces a catalog entry's fields and portion-size set.
func (s *CatalogService) UpdateFood(ctx context.Context, food *domain.Food) error {
	if err := validateFood(food); err != nil {
		return err
	}

	existing, err := s.foods.FindByID(ctx, food.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrFoodNotFound
	}

	if err := s.foods.Update(ctx, food); err != nil {
		return err
	}

	s.invalidate(ctx, food.Category)
	if existing.Category != food.Category {
		s.invalidate(ctx, existing.Category)
	}
	return nil
}

// WarmupCache preloads the menu and per-category caches. Used at startup;
// failures are non-fatal.
func (s *CatalogService) WarmupCache(ctx context.Context) error {
	if s.redis == nil {
		return nil
	}

	if _, err := s.Menu(ctx); err != nil {
		return err
	}

	categories, err := s.foods.Categories(ctx)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(warmupWorkers)
	for _, category := range categories {
		category := category
		g.Go(func() error {
			_, err := s.Category(gctx, category)
			return err
		})
	}
	return g.Wait()
}

func toMenuFood(f domain.Food) MenuFood {
	sizes := make(map[string]domain.Cents, len(f.PortionSizes))
	for _, ps := range f.PortionSizes {
		sizes[ps.SizeName] = ps.Price
	}
	return MenuFood{
		ID:           f.ID,
		Name:         f.Name,
		Description:  f.Description,
		Image:        f.Image,
		Category:     f.Category,
		PortionSizes: sizes,
	}
}

func validateFood(food *domain.Food) error {
	verr := domain.NewValidationError()
	if strings.TrimSpace(food.Name) == "" {
		verr.Add("name", "is required")
	}
	if strings.TrimSpace(food.Category) == "" {
		verr.Add("category", "is required")
	}
	if len(food.PortionSizes) == 0 {
		verr.Add("portion_sizes", "at least one portion size is required")
	}
	seen := make(map[string]bool, len(food.PortionSizes))
	for i, ps := range food.PortionSizes {
		field := fmt.Sprintf("portion_sizes[%d]", i)
		if strings.TrimSpace(ps.SizeName) == "" {
			verr.Add(field+".size_name", "is required")
		} else if seen[ps.SizeName] {
			verr.Add(field+".size_name", "duplicate size name")
		}
		seen[ps.SizeName] = true
		if ps.Price < 0 {
			verr.Add(field+".price", "must not be negative")
		}
	}
	if verr.HasErrors() {
		return verr
	}
	return nil
}

func (s *CatalogService) cacheGet(ctx context.Context, key string, dst any) bool {
	if s.redis == nil {
		return false
	}
	raw, err := s.redis.Get(ctx, key).Result()
	if err != nil {
		return false
	}
	return json.Unmarshal([]byte(raw), dst) == nil
}

func (s *CatalogService) cacheSet(ctx context.Context, key string, value any) {
	if s.redis == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.redis.Set(ctx, key, data, menuCacheTTL).Err(); err != nil {
		s.logger.Warn("catalog cache set failed", "key", key, "error", err)
	}
}

func (s *CatalogService) invalidate(ctx context.Context, category string) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Del(ctx, menuCacheKey, categoryCacheKey(category)).Err(); err != nil {
		s.logger.Warn("catalog cache invalidation failed", "category", category, "error", err)
	}
}
