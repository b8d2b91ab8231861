package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/mealtrack/backend/internal/domain"
	"github.com/mealtrack/backend/internal/nutrition"
	"github.com/sirupsen/logrus"
)

const recipeSearchLimit = 20

// IngredientInput is one ingredient line of a recipe write.
type IngredientInput struct {
	FoodID   string  `json:"food_id"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
}

func (in IngredientInput) Validate() error {
	in.FoodID = strings.TrimSpace(in.FoodID)
	return validation.ValidateStruct(&in,
		validation.Field(&in.FoodID, validation.Required),
		validation.Field(&in.Quantity, validation.Required, validation.Min(0.0).Exclusive()),
	)
}

// CreateRecipeRequest describes a new recipe. Zero servings means one.
type CreateRecipeRequest struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Servings    float64           `json:"servings"`
	IsPublic    bool              `json:"is_public"`
	Ingredients []IngredientInput `json:"ingredients"`
}

func (r CreateRecipeRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Servings, validation.Min(0.0)),
	)
}

// UpdateRecipeRequest is a partial update; nil fields are left unchanged.
type UpdateRecipeRequest struct {
	Name        *string            `json:"name"`
	Description *string            `json:"description"`
	Servings    *float64           `json:"servings"`
	IsPublic    *bool              `json:"is_public"`
	Ingredients *[]IngredientInput `json:"ingredients"`
}

// RecipeNutritionResult is the nutrition of Multiplier servings of a recipe.
type RecipeNutritionResult struct {
	RecipeID   string               `json:"recipe_id"`
	Servings   float64              `json:"servings"`
	Multiplier float64              `json:"multiplier"`
	Nutrition  domain.MealNutrition `json:"nutrition"`
	PerServing domain.MealNutrition `json:"per_serving"`
}

type RecipeService struct {
	recipes domain.RecipeStore
	foods   domain.FoodStore
	log     logrus.FieldLogger
}

func NewRecipeService(recipes domain.RecipeStore, foods domain.FoodStore, log logrus.FieldLogger) *RecipeService {
	return &RecipeService{
		recipes: recipes,
		foods:   foods,
		log:     log.WithField("component", "recipes"),
	}
}

// CreateRecipe validates and stores a recipe owned by the caller.
func (s *RecipeService) CreateRecipe(ctx context.Context, identity domain.Identity, req CreateRecipeRequest) (*domain.Recipe, error) {
	userID, err := domain.RequireUser(identity)
	if err != nil {
		return nil, err
	}

	if err := req.Validate(); err != nil {
		return nil, invalid(err)
	}
	name := strings.TrimSpace(req.Name)
	servings := req.Servings
	if servings == 0 {
		servings = 1
	}
	ingredients, err := s.ingredients(ctx, req.Ingredients)
	if err != nil {
		return nil, err
	}

	recipe := &domain.Recipe{
		Name:        name,
		Description: strings.TrimSpace(req.Description),
		CreatedBy:   userID,
		IsPublic:    req.IsPublic,
		Servings:    servings,
		Ingredients: ingredients,
	}
	if err := s.recipes.CreateRecipe(ctx, recipe); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"recipe_id": recipe.ID, "user_id": userID}).Info("recipe created")
	return s.recipes.GetRecipe(ctx, recipe.ID)
}

// ingredients validates ingredient lines and checks every food exists.
func (s *RecipeService) ingredients(ctx context.Context, in []IngredientInput) ([]domain.RecipeIngredient, error) {
	if len(in) == 0 {
		return nil, fmt.Errorf("%w: at least one ingredient is required", domain.ErrValidation)
	}
	if err := validation.Validate(in); err != nil {
		return nil, invalid(fmt.Errorf("ingredients: %w", err))
	}

	out := make([]domain.RecipeIngredient, 0, len(in))
	for i, ing := range in {
		foodID := strings.TrimSpace(ing.FoodID)

		food, err := s.foods.Get(ctx, foodID)
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: ingredient %d: unknown food %q", domain.ErrValidation, i+1, foodID)
		}
		if err != nil {
			return nil, err
		}

		unit := strings.TrimSpace(ing.Unit)
		if unit == "" {
			unit = food.ServingUnit
		}
		out = append(out, domain.RecipeIngredient{
			FoodID:   foodID,
			Position: i,
			Quantity: ing.Quantity,
			Unit:     unit,
			Food:     food,
		})
	}
	return out, nil
}

// GetRecipe returns a recipe visible to the caller. Private recipes of
// other users are reported as not found.
func (s *RecipeService) GetRecipe(ctx context.Context, identity domain.Identity, id string) (*domain.Recipe, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: recipe id is required", domain.ErrValidation)
	}
	recipe, err := s.recipes.GetRecipe(ctx, id)
	if err != nil {
		return nil, err
	}
	userID, _ := identity.UserID()
	if !recipe.VisibleTo(userID) {
		return nil, domain.ErrNotFound
	}
	return recipe, nil
}

// SearchRecipes matches recipe names. Guests always search public recipes.
func (s *RecipeService) SearchRecipes(ctx context.Context, identity domain.Identity, query string, publicOnly bool) ([]domain.Recipe, error) {
	q := strings.TrimSpace(query)
	if tooShort(q) {
		return []domain.Recipe{}, nil
	}

	userID, ok := identity.UserID()
	return s.recipes.SearchRecipes(ctx, domain.RecipeQuery{
		Name:       q,
		ViewerID:   userID,
		PublicOnly: publicOnly || !ok,
		Limit:      recipeSearchLimit,
	})
}

func (s *RecipeService) ListUserRecipes(ctx context.Context, identity domain.Identity) ([]domain.Recipe, error) {
	userID, err := domain.RequireUser(identity)
	if err != nil {
		return nil, err
	}
	return s.recipes.ListRecipesByOwner(ctx, userID)
}

func (s *RecipeService) ownedRecipe(ctx context.Context, userID, id string) (*domain.Recipe, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: recipe id is required", domain.ErrValidation)
	}
	recipe, err := s.recipes.GetRecipe(ctx, id)
	if err != nil {
		return nil, err
	}
	if recipe.CreatedBy != userID {
		return nil, domain.ErrNotFound
	}
	return recipe, nil
}

// UpdateRecipe applies a partial update to a recipe the caller owns.
func (s *RecipeService) UpdateRecipe(ctx context.Context, identity domain.Identity, id string, req UpdateRecipeRequest) (*domain.Recipe, error) {
	userID, err := domain.RequireUser(identity)
	if err != nil {
		return nil, err
	}

	recipe, err := s.ownedRecipe(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", domain.ErrValidation)
		}
		recipe.Name = name
	}
	if req.Description != nil {
		recipe.Description = strings.TrimSpace(*req.Description)
	}
	if req.Servings != nil {
		if *req.Servings <= 0 {
			return nil, fmt.Errorf("%w: servings must be positive", domain.ErrValidation)
		}
		recipe.Servings = *req.Servings
	}
	if req.IsPublic != nil {
		recipe.IsPublic = *req.IsPublic
	}
	if req.Ingredients != nil {
		ingredients, err := s.ingredients(ctx, *req.Ingredients)
		if err != nil {
			return nil, err
		}
		recipe.Ingredients = ingredients
	}

	if err := s.recipes.UpdateRecipe(ctx, recipe); err != nil {
		return nil, err
	}
	return s.recipes.GetRecipe(ctx, recipe.ID)
}

func (s *RecipeService) DeleteRecipe(ctx context.Context, identity domain.Identity, id string) error {
	userID, err := domain.RequireUser(identity)
	if err != nil {
		return err
	}
	if _, err := s.ownedRecipe(ctx, userID, id); err != nil {
		return err
	}
	if err := s.recipes.DeleteRecipe(ctx, id); err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{"recipe_id": id, "user_id": userID}).Info("recipe deleted")
	return nil
}

// RecipeNutrition computes nutrition for multiplier servings of a visible
// recipe. A nil multiplier means one serving.
func (s *RecipeService) RecipeNutrition(ctx context.Context, identity domain.Identity, id string, multiplier *float64) (*RecipeNutritionResult, error) {
	m, err := positiveAmount("multiplier", multiplier)
	if err != nil {
		return nil, err
	}

	recipe, err := s.GetRecipe(ctx, identity, id)
	if err != nil {
		return nil, err
	}
	res := &RecipeNutritionResult{
		RecipeID:   recipe.ID,
		Servings:   recipe.Servings,
		Multiplier: m,
		Nutrition:  nutrition.RecipeNutrition(recipe, m),
		PerServing: nutrition.PerServing(recipe),
	}
	if err := finiteNutrition(res.Nutrition); err != nil {
		return nil, err
	}
	return res, nil
}
