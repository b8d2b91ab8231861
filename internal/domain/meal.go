package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// MealType is one of the four meal slots of a day.
type MealType string

const (
	MealTypeBreakfast MealType = "breakfast"
	MealTypeLunch     MealType = "lunch"
	MealTypeDinner    MealType = "dinner"
	MealTypeSnack     MealType = "snack"
)

// ParseMealType accepts a meal type case-insensitively.
func ParseMealType(s string) (MealType, error) {
	switch mt := MealType(strings.ToLower(strings.TrimSpace(s))); mt {
	case MealTypeBreakfast, MealTypeLunch, MealTypeDinner, MealTypeSnack:
		return mt, nil
	}
	return "", fmt.Errorf("%w: unknown meal type %q", ErrValidation, s)
}

// Title returns the display name used for auto-created meals.
func (m MealType) Title() string {
	if m == "" {
		return ""
	}
	return strings.ToUpper(string(m[:1])) + string(m[1:])
}

// DateLayout is the calendar date format meals are keyed by.
const DateLayout = "2006-01-02"

// Meal groups the items a user logged for one meal slot on one date.
type Meal struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	MealType  MealType   `json:"meal_type"`
	Date      string     `json:"date"`
	Name      string     `json:"name"`
	Notes     string     `json:"notes,omitempty"`
	Items     []MealItem `json:"items"`
	CreatedAt time.Time  `json:"created_at"`
}

// MealNutrition is the snapshot of nutrients recorded on a meal item.
type MealNutrition struct {
	Calories float64 `json:"calories"`
	ProteinG float64 `json:"protein_g"`
	CarbsG   float64 `json:"carbs_g"`
	FatG     float64 `json:"fat_g"`
	FiberG   float64 `json:"fiber_g"`
}

// MealItemSource is either a FoodSource or a RecipeSource.
type MealItemSource interface {
	isMealItemSource()
}

// FoodSource marks an item logged from a catalog food.
type FoodSource struct {
	FoodID string
}

// RecipeSource marks an item logged from a recipe at a serving multiplier.
type RecipeSource struct {
	RecipeID          string
	ServingMultiplier float64
}

func (FoodSource) isMealItemSource()   {}
func (RecipeSource) isMealItemSource() {}

// MealItem is one logged entry. Nutrition is computed once at insertion
// and only recomputed by an explicit quantity update.
type MealItem struct {
	ID                string         `json:"id"`
	MealID            string         `json:"meal_id"`
	Source            MealItemSource `json:"-"`
	Quantity          float64        `json:"quantity"`
	Unit              string         `json:"unit"`
	ServingMultiplier float64        `json:"serving_multiplier"`
	Nutrition         MealNutrition  `json:"nutrition"`
	CreatedAt         time.Time      `json:"created_at"`
}

// MarshalJSON flattens the source variant into food_id or recipe_id.
func (i MealItem) MarshalJSON() ([]byte, error) {
	type alias MealItem
	out := struct {
		alias
		SourceType string `json:"source_type"`
		FoodID     string `json:"food_id,omitempty"`
		RecipeID   string `json:"recipe_id,omitempty"`
	}{alias: alias(i)}

	switch src := i.Source.(type) {
	case FoodSource:
		out.SourceType = "food"
		out.FoodID = src.FoodID
	case RecipeSource:
		out.SourceType = "recipe"
		out.RecipeID = src.RecipeID
	}
	return json.Marshal(out)
}

// UnmarshalJSON restores the source variant written by MarshalJSON.
func (i *MealItem) UnmarshalJSON(data []byte) error {
	type alias MealItem
	in := struct {
		*alias
		SourceType string `json:"source_type"`
		FoodID     string `json:"food_id"`
		RecipeID   string `json:"recipe_id"`
	}{alias: (*alias)(i)}
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	switch in.SourceType {
	case "food":
		i.Source = FoodSource{FoodID: in.FoodID}
	case "recipe":
		i.Source = RecipeSource{RecipeID: in.RecipeID, ServingMultiplier: i.ServingMultiplier}
	default:
		return fmt.Errorf("%w: meal item source %q", ErrCorruptRecord, in.SourceType)
	}
	return nil
}

// MealItemRecord is a meal item together with the owner and date of its meal.
type MealItemRecord struct {
	Item    MealItem
	OwnerID string
	Date    string
}

// DailyGoals holds a user's daily nutrient targets. Zero means no target.
type DailyGoals struct {
	UserID   string  `json:"user_id"`
	Calories float64 `json:"calories"`
	ProteinG float64 `json:"protein_g"`
	CarbsG   float64 `json:"carbs_g"`
	FatG     float64 `json:"fat_g"`
	FiberG   float64 `json:"fiber_g"`
}

// MealSummary is a meal with the sum of its item snapshots.
type MealSummary struct {
	Meal   Meal          `json:"meal"`
	Totals MealNutrition `json:"totals"`
}

// DailySummary is the dashboard view of one user's day.
type DailySummary struct {
	Date     string         `json:"date"`
	Meals    []MealSummary  `json:"meals"`
	Totals   MealNutrition  `json:"totals"`
	Goals    DailyGoals     `json:"goals"`
	Progress map[string]int `json:"progress"`
}
