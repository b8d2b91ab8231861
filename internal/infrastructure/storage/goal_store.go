package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/mealtrack/backend/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GoalStore persists per-user daily targets.
type GoalStore struct {
	db *gorm.DB
}

func NewGoalStore(db *gorm.DB) *GoalStore {
	return &GoalStore{db: db}
}

func (s *GoalStore) GetGoals(ctx context.Context, userID string) (*domain.DailyGoals, error) {
	var m goalModel
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &domain.DailyGoals{UserID: userID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get goals: %w", err)
	}
	return &domain.DailyGoals{
		UserID:   m.UserID,
		Calories: m.Calories,
		ProteinG: m.ProteinG,
		CarbsG:   m.CarbsG,
		FatG:     m.FatG,
		FiberG:   m.FiberG,
	}, nil
}

// SetGoals inserts or replaces the user's goals.
func (s *GoalStore) SetGoals(ctx context.Context, goals *domain.DailyGoals) error {
	m := &goalModel{
		UserID:   goals.UserID,
		Calories: goals.Calories,
		ProteinG: goals.ProteinG,
		CarbsG:   goals.CarbsG,
		FatG:     goals.FatG,
		FiberG:   goals.FiberG,
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		UpdateAll: true,
	}).Create(m).Error
	if err != nil {
		return fmt.Errorf("set goals: %w", err)
	}
	return nil
}
