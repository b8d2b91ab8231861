package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/mealtrack/backend/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MealStore persists meals and meal items.
type MealStore struct {
	db *gorm.DB
}

func NewMealStore(db *gorm.DB) *MealStore {
	return &MealStore{db: db}
}

// FindOrCreateMeal returns the user's meal for the slot and date, creating
// it on first use. Concurrent callers converge on the same row.
func (s *MealStore) FindOrCreateMeal(ctx context.Context, userID string, mealType domain.MealType, date string) (*domain.Meal, error) {
	db := s.db.WithContext(ctx)

	meal, err := s.findMeal(db, userID, mealType, date)
	if err == nil {
		return meal, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	m := &mealModel{
		UserID:   userID,
		MealType: string(mealType),
		Date:     date,
		Name:     mealType.Title(),
	}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(m).Error; err != nil {
		return nil, fmt.Errorf("create meal: %w", err)
	}

	return s.findMeal(db, userID, mealType, date)
}

func (s *MealStore) findMeal(db *gorm.DB, userID string, mealType domain.MealType, date string) (*domain.Meal, error) {
	var m mealModel
	err := db.Where("user_id = ? AND meal_type = ? AND date = ?", userID, string(mealType), date).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find meal: %w", err)
	}
	return m.toDomain()
}

// AddItem inserts item and fills in its ID and CreatedAt.
func (s *MealStore) AddItem(ctx context.Context, item *domain.MealItem) error {
	m, err := newMealItemModel(item)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Create(m).Error; err != nil {
		return fmt.Errorf("add meal item: %w", err)
	}
	item.ID = m.ID
	item.CreatedAt = m.CreatedAt
	return nil
}

// GetItem loads an item together with the owner and date of its meal.
func (s *MealStore) GetItem(ctx context.Context, id string) (*domain.MealItemRecord, error) {
	db := s.db.WithContext(ctx)

	var item mealItemModel
	err := db.Where("id = ?", id).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get meal item: %w", err)
	}

	var meal mealModel
	err = db.Where("id = ?", item.MealID).First(&meal).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get meal: %w", err)
	}

	di, err := item.toDomain()
	if err != nil {
		return nil, err
	}
	return &domain.MealItemRecord{Item: *di, OwnerID: meal.UserID, Date: meal.Date}, nil
}

// UpdateItem overwrites quantity, unit and the nutrition snapshot.
func (s *MealStore) UpdateItem(ctx context.Context, item *domain.MealItem) error {
	res := s.db.WithContext(ctx).Model(&mealItemModel{}).Where("id = ?", item.ID).Updates(map[string]interface{}{
		"quantity":  item.Quantity,
		"unit":      item.Unit,
		"calories":  item.Nutrition.Calories,
		"protein_g": item.Nutrition.ProteinG,
		"carbs_g":   item.Nutrition.CarbsG,
		"fat_g":     item.Nutrition.FatG,
		"fiber_g":   item.Nutrition.FiberG,
	})
	if res.Error != nil {
		return fmt.Errorf("update meal item: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *MealStore) DeleteItem(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&mealItemModel{})
	if res.Error != nil {
		return fmt.Errorf("delete meal item: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// MealsForDate returns the user's meals on date with their items, both in
// creation order.
func (s *MealStore) MealsForDate(ctx context.Context, userID, date string) ([]domain.Meal, error) {
	var rows []mealModel
	err := s.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Where("user_id = ? AND date = ?", userID, date).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list meals: %w", err)
	}

	meals := make([]domain.Meal, 0, len(rows))
	for i := range rows {
		meal, err := rows[i].toDomain()
		if err != nil {
			return nil, err
		}
		meals = append(meals, *meal)
	}
	return meals, nil
}
