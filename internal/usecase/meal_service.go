package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/mealtrack/backend/internal/domain"
	"github.com/mealtrack/backend/internal/nutrition"
	"github.com/sirupsen/logrus"
)

const defaultSummaryTTL = 5 * time.Minute

// MealServiceConfig holds configuration for the meal service
type MealServiceConfig struct {
	SummaryTTL time.Duration
}

// AddFoodRequest logs quantity servings of a catalog food. A missing
// quantity means one serving and an empty unit means the food's serving unit.
type AddFoodRequest struct {
	FoodID   string   `json:"food_id"`
	MealType string   `json:"meal_type"`
	Quantity *float64 `json:"quantity"`
	Unit     string   `json:"unit"`
}

// AddRecipeRequest logs a recipe at a serving multiplier. A missing
// multiplier means one serving.
type AddRecipeRequest struct {
	RecipeID          string   `json:"recipe_id"`
	MealType          string   `json:"meal_type"`
	ServingMultiplier *float64 `json:"serving_multiplier"`
}

// MealService maintains the per-user meal ledger and the dashboard view.
type MealService struct {
	foods      domain.FoodStore
	recipes    domain.RecipeStore
	meals      domain.MealStore
	goals      domain.GoalStore
	cache      domain.CacheRepository
	summaryTTL time.Duration
	log        logrus.FieldLogger
	now        func() time.Time
}

func NewMealService(
	foods domain.FoodStore,
	recipes domain.RecipeStore,
	meals domain.MealStore,
	goals domain.GoalStore,
	cache domain.CacheRepository,
	cfg MealServiceConfig,
	log logrus.FieldLogger,
) *MealService {
	if cfg.SummaryTTL <= 0 {
		cfg.SummaryTTL = defaultSummaryTTL
	}
	return &MealService{
		foods:      foods,
		recipes:    recipes,
		meals:      meals,
		goals:      goals,
		cache:      cache,
		summaryTTL: cfg.SummaryTTL,
		log:        log.WithField("component", "meals"),
		now:        time.Now,
	}
}

func (s *MealService) today() string {
	return s.now().UTC().Format(domain.DateLayout)
}

func summaryKey(userID, date string) string {
	return "summary:" + userID + ":" + date
}

// invalidateUser drops every cached summary of userID.
func (s *MealService) invalidateUser(ctx context.Context, userID string) {
	if err := s.cache.DeletePrefix(ctx, summaryKey(userID, "")); err != nil {
		s.log.WithError(err).WithField("user_id", userID).Warn("failed to invalidate summaries")
	}
}

func (s *MealService) invalidate(ctx context.Context, userID, date string) {
	if err := s.cache.Delete(ctx, summaryKey(userID, date)); err != nil {
		s.log.WithError(err).WithField("user_id", userID).Warn("failed to invalidate summary")
	}
}

// AddFoodToMeal appends a food item to the caller's meal of mealType for
// today, creating the meal on first use. The item's nutrition is a
// snapshot of the food at this moment.
func (s *MealService) AddFoodToMeal(ctx context.Context, identity domain.Identity, req AddFoodRequest) (*domain.MealItem, error) {
	userID, err := domain.RequireUser(identity)
	if err != nil {
		return nil, err
	}

	foodID := strings.TrimSpace(req.FoodID)
	if foodID == "" {
		return nil, fmt.Errorf("%w: food_id is required", domain.ErrValidation)
	}
	mealType, err := domain.ParseMealType(req.MealType)
	if err != nil {
		return nil, err
	}
	quantity, err := positiveAmount("quantity", req.Quantity)
	if err != nil {
		return nil, err
	}

	food, err := s.foods.Get(ctx, foodID)
	if err != nil {
		return nil, err
	}
	snapshot := nutrition.ScaleFood(food, quantity)
	if err := finiteNutrition(snapshot); err != nil {
		return nil, err
	}

	date := s.today()
	meal, err := s.meals.FindOrCreateMeal(ctx, userID, mealType, date)
	if err != nil {
		return nil, err
	}

	unit := strings.TrimSpace(req.Unit)
	if unit == "" {
		unit = food.ServingUnit
	}

	item := &domain.MealItem{
		MealID:            meal.ID,
		Source:            domain.FoodSource{FoodID: food.ID},
		Quantity:          quantity,
		Unit:              unit,
		ServingMultiplier: 1,
		Nutrition:         snapshot,
	}
	if err := s.meals.AddItem(ctx, item); err != nil {
		return nil, err
	}

	s.invalidate(ctx, userID, date)
	s.log.WithFields(logrus.Fields{
		"user_id":   userID,
		"meal_type": mealType,
		"food_id":   food.ID,
	}).Debug("food logged")
	return item, nil
}

// AddRecipeToMeal appends a recipe item to today's meal. The recipe must be
// visible to the caller.
func (s *MealService) AddRecipeToMeal(ctx context.Context, identity domain.Identity, req AddRecipeRequest) (*domain.MealItem, error) {
	userID, err := domain.RequireUser(identity)
	if err != nil {
		return nil, err
	}

	recipeID := strings.TrimSpace(req.RecipeID)
	if recipeID == "" {
		return nil, fmt.Errorf("%w: recipe_id is required", domain.ErrValidation)
	}
	mealType, err := domain.ParseMealType(req.MealType)
	if err != nil {
		return nil, err
	}
	multiplier, err := positiveAmount("serving_multiplier", req.ServingMultiplier)
	if err != nil {
		return nil, err
	}

	recipe, err := s.recipes.GetRecipe(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	if !recipe.VisibleTo(userID) {
		return nil, domain.ErrNotFound
	}
	snapshot := nutrition.RecipeNutrition(recipe, multiplier)
	if err := finiteNutrition(snapshot); err != nil {
		return nil, err
	}

	date := s.today()
	meal, err := s.meals.FindOrCreateMeal(ctx, userID, mealType, date)
	if err != nil {
		return nil, err
	}

	item := &domain.MealItem{
		MealID:            meal.ID,
		Source:            domain.RecipeSource{RecipeID: recipe.ID, ServingMultiplier: multiplier},
		Quantity:          1,
		Unit:              "serving",
		ServingMultiplier: multiplier,
		Nutrition:         snapshot,
	}
	if err := s.meals.AddItem(ctx, item); err != nil {
		return nil, err
	}

	s.invalidate(ctx, userID, date)
	return item, nil
}

// ownedItem loads an item and hides it from everyone but the owner of its meal.
func (s *MealService) ownedItem(ctx context.Context, userID, itemID string) (*domain.MealItemRecord, error) {
	if strings.TrimSpace(itemID) == "" {
		return nil, fmt.Errorf("%w: item id is required", domain.ErrValidation)
	}
	rec, err := s.meals.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if rec.OwnerID != userID {
		return nil, domain.ErrNotFound
	}
	return rec, nil
}

// UpdateMealItem changes the quantity of a food item and recomputes its
// snapshot from the food's current values. Recipe items keep their
// multiplier and cannot be re-quantified.
func (s *MealService) UpdateMealItem(ctx context.Context, identity domain.Identity, itemID string, quantity float64) (*domain.MealItem, error) {
	userID, err := domain.RequireUser(identity)
	if err != nil {
		return nil, err
	}
	if _, err := positiveAmount("quantity", &quantity); err != nil {
		return nil, err
	}

	rec, err := s.ownedItem(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}

	src, ok := rec.Item.Source.(domain.FoodSource)
	if !ok {
		return nil, fmt.Errorf("%w: only food items can change quantity", domain.ErrValidation)
	}

	food, err := s.foods.Get(ctx, src.FoodID)
	if err != nil {
		return nil, err
	}

	item := rec.Item
	item.Quantity = quantity
	item.Nutrition = nutrition.ScaleFood(food, quantity)
	if err := finiteNutrition(item.Nutrition); err != nil {
		return nil, err
	}
	if err := s.meals.UpdateItem(ctx, &item); err != nil {
		return nil, err
	}

	s.invalidate(ctx, userID, rec.Date)
	return &item, nil
}

func (s *MealService) DeleteMealItem(ctx context.Context, identity domain.Identity, itemID string) error {
	userID, err := domain.RequireUser(identity)
	if err != nil {
		return err
	}

	rec, err := s.ownedItem(ctx, userID, itemID)
	if err != nil {
		return err
	}
	if err := s.meals.DeleteItem(ctx, rec.Item.ID); err != nil {
		return err
	}

	s.invalidate(ctx, userID, rec.Date)
	return nil
}

// TodaysMeals returns the caller's meals for the current UTC date.
func (s *MealService) TodaysMeals(ctx context.Context, identity domain.Identity) ([]domain.Meal, error) {
	return s.MealsForDate(ctx, identity, s.today())
}

// MealsForDate returns the caller's meals on date. Guests have no ledger
// and always get an empty list.
func (s *MealService) MealsForDate(ctx context.Context, identity domain.Identity, date string) ([]domain.Meal, error) {
	date, err := s.parseDate(date)
	if err != nil {
		return nil, err
	}
	userID, ok := identity.UserID()
	if !ok {
		return []domain.Meal{}, nil
	}
	return s.meals.MealsForDate(ctx, userID, date)
}

func (s *MealService) parseDate(date string) (string, error) {
	date = strings.TrimSpace(date)
	if date == "" {
		return s.today(), nil
	}
	t, err := time.Parse(domain.DateLayout, date)
	if err != nil {
		return "", fmt.Errorf("%w: date must be YYYY-MM-DD", domain.ErrValidation)
	}
	return t.Format(domain.DateLayout), nil
}

// DailySummary returns per-meal totals, day totals, goals and progress for
// date. Results are cached per user and date until a write for that day.
func (s *MealService) DailySummary(ctx context.Context, identity domain.Identity, date string) (*domain.DailySummary, error) {
	date, err := s.parseDate(date)
	if err != nil {
		return nil, err
	}

	userID, ok := identity.UserID()
	if !ok {
		return buildSummary(date, nil, domain.DailyGoals{}), nil
	}

	key := summaryKey(userID, date)
	var cached domain.DailySummary
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		return &cached, nil
	} else if !errors.Is(err, domain.ErrCacheMiss) {
		s.log.WithError(err).Warn("summary cache read failed")
	}

	meals, err := s.meals.MealsForDate(ctx, userID, date)
	if err != nil {
		return nil, err
	}
	goals, err := s.goals.GetGoals(ctx, userID)
	if err != nil {
		return nil, err
	}

	summary := buildSummary(date, meals, *goals)
	if err := s.cache.Set(ctx, key, summary, s.summaryTTL); err != nil {
		s.log.WithError(err).Warn("summary cache write failed")
	}
	return summary, nil
}

func buildSummary(date string, meals []domain.Meal, goals domain.DailyGoals) *domain.DailySummary {
	summaries := make([]domain.MealSummary, 0, len(meals))
	for _, m := range meals {
		summaries = append(summaries, domain.MealSummary{Meal: m, Totals: nutrition.MealTotals(m.Items)})
	}
	totals := nutrition.DayTotals(meals)
	return &domain.DailySummary{
		Date:     date,
		Meals:    summaries,
		Totals:   totals,
		Goals:    goals,
		Progress: nutrition.DailyProgress(nutrition.ConsumedMap(totals), nutrition.GoalsMap(goals)),
	}
}

// GetGoals returns the caller's targets; guests get zero goals.
func (s *MealService) GetGoals(ctx context.Context, identity domain.Identity) (*domain.DailyGoals, error) {
	userID, ok := identity.UserID()
	if !ok {
		return &domain.DailyGoals{}, nil
	}
	return s.goals.GetGoals(ctx, userID)
}

func validateGoals(g *domain.DailyGoals) error {
	return validation.ValidateStruct(g,
		validation.Field(&g.Calories, validation.Min(0.0)),
		validation.Field(&g.ProteinG, validation.Min(0.0)),
		validation.Field(&g.CarbsG, validation.Min(0.0)),
		validation.Field(&g.FatG, validation.Min(0.0)),
		validation.Field(&g.FiberG, validation.Min(0.0)),
	)
}

// SetGoals replaces the caller's targets and drops every cached summary
// of the caller, since each one embeds the goals.
func (s *MealService) SetGoals(ctx context.Context, identity domain.Identity, goals domain.DailyGoals) (*domain.DailyGoals, error) {
	userID, err := domain.RequireUser(identity)
	if err != nil {
		return nil, err
	}
	if err := validateGoals(&goals); err != nil {
		return nil, invalid(err)
	}

	goals.UserID = userID
	if err := s.goals.SetGoals(ctx, &goals); err != nil {
		return nil, err
	}

	s.invalidateUser(ctx, userID)
	return &goals, nil
}
