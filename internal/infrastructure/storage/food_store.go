package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/mealtrack/backend/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FoodStore is the gorm backed food catalog.
type FoodStore struct {
	db *gorm.DB
}

func NewFoodStore(db *gorm.DB) *FoodStore {
	return &FoodStore{db: db}
}

// Find returns foods whose name or brand contains query, verified foods
// first and then by name.
func (s *FoodStore) Find(ctx context.Context, query string, limit int) ([]domain.Food, error) {
	pattern := containsPattern(query)

	var rows []foodModel
	err := s.db.WithContext(ctx).
		Where(`(LOWER(name) LIKE ? ESCAPE '\' OR LOWER(brand) LIKE ? ESCAPE '\')`, pattern, pattern).
		Order("is_verified DESC").
		Order("name ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("find foods: %w", err)
	}

	foods := make([]domain.Food, 0, len(rows))
	for i := range rows {
		foods = append(foods, *rows[i].toDomain())
	}
	return foods, nil
}

func (s *FoodStore) Get(ctx context.Context, id string) (*domain.Food, error) {
	return s.first(ctx, "id = ?", id)
}

func (s *FoodStore) FindByFdcID(ctx context.Context, fdcID int64) (*domain.Food, error) {
	return s.first(ctx, "fdc_id = ?", fdcID)
}

func (s *FoodStore) FindByNameBrand(ctx context.Context, name, brand string) (*domain.Food, error) {
	return s.first(ctx, "name = ? AND brand = ?", name, brand)
}

// Insert stores food and fills in its ID and CreatedAt. A row that collides
// with an existing fdc id or (name, brand) is not written and ErrAlreadyExists
// is returned.
func (s *FoodStore) Insert(ctx context.Context, food *domain.Food) error {
	m := newFoodModel(food)

	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(m)
	if res.Error != nil {
		return fmt.Errorf("insert food: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: food %q (%s)", domain.ErrAlreadyExists, food.Name, food.Brand)
	}

	food.ID = m.ID
	food.CreatedAt = m.CreatedAt
	return nil
}

func (s *FoodStore) first(ctx context.Context, query string, args ...interface{}) (*domain.Food, error) {
	var m foodModel
	err := s.db.WithContext(ctx).Where(query, args...).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get food: %w", err)
	}
	return m.toDomain(), nil
}
