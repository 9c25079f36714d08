package mysql

import (
	"context"
	"errors"
	"fmt"

	"restaurant-service/internal/domain"
	"restaurant-service/internal/repository"

	"gorm.io/gorm"
)

type foodRepo struct {
	db *gorm.DB
}

func NewFoodRepository(db *gorm.DB) repository.FoodRepository {
	return &foodRepo{db: db}
}

func preloadSizes(db *gorm.DB) *gorm.DB {
	return db.Preload("PortionSizes", func(db *gorm.DB) *gorm.DB {
		return db.Order("sort_order ASC")
	})
}

func (r *foodRepo) FindActiveByName(ctx context.Context, name string) (*domain.Food, error) {
	var f domain.Food
	err := preloadSizes(r.db.WithContext(ctx)).
		Where("name = ? AND is_active = ?", name, true).
		First(&f).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find food %q: %w", name, err)
	}
	return &f, nil
}

func (r *foodRepo) FindByID(ctx context.Context, id uint64) (*domain.Food, error) {
	var f domain.Food
	err := preloadSizes(r.db.WithContext(ctx)).First(&f, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find food %d: %w", id, err)
	}
	return &f, nil
}

func (r *foodRepo) ListActive(ctx context.Context, category string) ([]domain.Food, error) {
	q := preloadSizes(r.db.WithContext(ctx)).
		Where("is_active = ?", true).
		Order("category ASC").
		Order("sort_order ASC")
	if category != "" {
		q = q.Where("category = ?", category)
	}

	var out []domain.Food
	if err := q.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list active foods: %w", err)
	}
	return out, nil
}

func (r *foodRepo) List(ctx context.Context) ([]domain.Food, error) {
	var out []domain.Food
	err := preloadSizes(r.db.WithContext(ctx)).
		Order("category ASC").
		Order("sort_order ASC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list foods: %w", err)
	}
	return out, nil
}

func (r *foodRepo) Categories(ctx context.Context) ([]string, error) {
	var out []string
	err := r.db.WithContext(ctx).
		Model(&domain.Food{}).
		Distinct("category").
		Order("category ASC").
		Pluck("category", &out).Error
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return out, nil
}

func (r *foodRepo) Create(ctx context.Context, food *domain.Food) error {
	if err := r.db.WithContext(ctx).Create(food).Error; err != nil {
		if isDuplicateKey(err) {
			return fmt.Errorf("food %q: %w", food.Name, domain.ErrConflict)
		}
		return fmt.Errorf("create food: %w", err)
	}
	return nil
}

// Update saves the food's own fields and replaces its portion-size set in
// one transaction.
func (r *foodRepo) Update(ctx context.Context, food *domain.Food) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("PortionSizes").Save(food).Error; err != nil {
			return err
		}
		if err := tx.Where("food_id = ?", food.ID).Delete(&domain.FoodPortionSize{}).Error; err != nil {
			return err
		}
		if len(food.PortionSizes) == 0 {
			return nil
		}
		for i := range food.PortionSizes {
			food.PortionSizes[i].ID = 0
			food.PortionSizes[i].FoodID = food.ID
		}
		return tx.Create(&food.PortionSizes).Error
	})
	if err != nil {
		if isDuplicateKey(err) {
			return fmt.Errorf("food %q: %w", food.Name, domain.ErrConflict)
		}
		return fmt.Errorf("update food %d: %w", food.ID, err)
	}
	return nil
}
