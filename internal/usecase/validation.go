package usecase

import (
	"fmt"
	"math"

	"github.com/mealtrack/backend/internal/domain"
	"github.com/mealtrack/backend/internal/nutrition"
)

// invalid marks a validation failure so the HTTP layer answers 400.
func invalid(err error) error {
	return fmt.Errorf("%w: %v", domain.ErrValidation, err)
}

// positiveAmount checks a caller supplied quantity or multiplier. A missing
// value means one; zero, negative and non-finite values are rejected.
func positiveAmount(field string, v *float64) (float64, error) {
	if v == nil {
		return 1, nil
	}
	if math.IsNaN(*v) || math.IsInf(*v, 0) || *v <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive number", domain.ErrValidation, field)
	}
	return *v, nil
}

// finiteNutrition rejects snapshots whose arithmetic overflowed.
func finiteNutrition(n domain.MealNutrition) error {
	if !nutrition.IsFinite(n) {
		return fmt.Errorf("%w: nutrition values out of range", domain.ErrValidation)
	}
	return nil
}
