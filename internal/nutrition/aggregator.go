// Package nutrition holds the pure arithmetic over nutrient data: scaling,
// summing, validating and goal progress. Nothing here performs I/O.
package nutrition

import (
	"math"

	"github.com/mealtrack/backend/internal/domain"
)

// MaxPlausibleCalories is the per-entry calorie ceiling used by Validate.
const MaxPlausibleCalories = 5000

// Input is a loosely populated nutrient record as submitted by clients.
// Nil fields count as 0 in Totals; a nil Portion counts as 1.
type Input struct {
	Calories *float64 `json:"calories,omitempty"`
	ProteinG *float64 `json:"protein,omitempty"`
	CarbsG   *float64 `json:"carbs,omitempty"`
	FatG     *float64 `json:"fat,omitempty"`
	FiberG   *float64 `json:"fiber,omitempty"`
	SugarG   *float64 `json:"sugar,omitempty"`
	SodiumMg *float64 `json:"sodium,omitempty"`
	Portion  *float64 `json:"portion,omitempty"`
}

// Summary is the seven-field total returned by Totals.
type Summary struct {
	Calories float64 `json:"calories"`
	ProteinG float64 `json:"protein"`
	CarbsG   float64 `json:"carbs"`
	FatG     float64 `json:"fat"`
	FiberG   float64 `json:"fiber"`
	SugarG   float64 `json:"sugar"`
	SodiumMg float64 `json:"sodium"`
}

func val(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

func portion(p *float64) float64 {
	if p == nil {
		return 1
	}
	return *p
}

// Totals sums each nutrient multiplied by the item's portion.
func Totals(items []Input) Summary {
	var s Summary
	for _, it := range items {
		m := portion(it.Portion)
		s.Calories += val(it.Calories) * m
		s.ProteinG += val(it.ProteinG) * m
		s.CarbsG += val(it.CarbsG) * m
		s.FatG += val(it.FatG) * m
		s.FiberG += val(it.FiberG) * m
		s.SugarG += val(it.SugarG) * m
		s.SodiumMg += val(it.SodiumMg) * m
	}
	return s
}

// Validate returns human readable problems with n, in a fixed order.
// An empty result means n is acceptable.
func Validate(n Input) []string {
	errs := []string{}

	if n.Calories == nil {
		errs = append(errs, "Calories is required")
	}

	checks := []struct {
		label string
		value *float64
	}{
		{"Calories", n.Calories},
		{"Protein", n.ProteinG},
		{"Carbs", n.CarbsG},
		{"Fat", n.FatG},
	}
	for _, c := range checks {
		if c.value != nil && *c.value < 0 {
			errs = append(errs, c.label+" cannot be negative")
		}
	}

	if n.Calories != nil && *n.Calories > MaxPlausibleCalories {
		errs = append(errs, "Calories seem unrealistically high")
	}

	return errs
}

// DailyProgress returns consumed/goal as a whole percentage per key in
// consumed. Missing or zero goals yield 0; values above 100 are kept.
func DailyProgress(consumed, goals map[string]float64) map[string]int {
	progress := make(map[string]int, len(consumed))
	for key, c := range consumed {
		g := goals[key]
		if g == 0 {
			progress[key] = 0
			continue
		}
		progress[key] = roundHalfUp(c / g * 100)
	}
	return progress
}

func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}

// ScaleFood computes the meal item snapshot for quantity servings of food.
func ScaleFood(food *domain.Food, quantity float64) domain.MealNutrition {
	n := food.Nutrients
	return domain.MealNutrition{
		Calories: n.Calories * quantity,
		ProteinG: n.ProteinG * quantity,
		CarbsG:   n.CarbsG * quantity,
		FatG:     n.FatG * quantity,
		FiberG:   n.FiberG * quantity,
	}
}

// Add returns the field-wise sum of a and b.
func Add(a, b domain.MealNutrition) domain.MealNutrition {
	return domain.MealNutrition{
		Calories: a.Calories + b.Calories,
		ProteinG: a.ProteinG + b.ProteinG,
		CarbsG:   a.CarbsG + b.CarbsG,
		FatG:     a.FatG + b.FatG,
		FiberG:   a.FiberG + b.FiberG,
	}
}

// MealTotals sums the snapshots of a meal's items.
func MealTotals(items []domain.MealItem) domain.MealNutrition {
	var total domain.MealNutrition
	for _, it := range items {
		total = Add(total, it.Nutrition)
	}
	return total
}

// DayTotals sums every item of every meal.
func DayTotals(meals []domain.Meal) domain.MealNutrition {
	var total domain.MealNutrition
	for _, m := range meals {
		total = Add(total, MealTotals(m.Items))
	}
	return total
}

// ConsumedMap keys consumed nutrition by the names DailyProgress reports.
func ConsumedMap(n domain.MealNutrition) map[string]float64 {
	return map[string]float64{
		"calories":  n.Calories,
		"protein_g": n.ProteinG,
		"carbs_g":   n.CarbsG,
		"fat_g":     n.FatG,
		"fiber_g":   n.FiberG,
	}
}

// GoalsMap keys daily goals the same way as ConsumedMap.
func GoalsMap(g domain.DailyGoals) map[string]float64 {
	return map[string]float64{
		"calories":  g.Calories,
		"protein_g": g.ProteinG,
		"carbs_g":   g.CarbsG,
		"fat_g":     g.FatG,
		"fiber_g":   g.FiberG,
	}
}

func finite(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// IsFinite reports whether every field of n is a finite number.
func IsFinite(n domain.MealNutrition) bool {
	return finite(n.Calories, n.ProteinG, n.CarbsG, n.FatG, n.FiberG)
}

// IsFinite reports whether the summary survived summation without overflow.
func (s Summary) IsFinite() bool {
	return finite(s.Calories, s.ProteinG, s.CarbsG, s.FatG, s.FiberG, s.SugarG, s.SodiumMg)
}
