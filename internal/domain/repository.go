package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching operations.
// Values are stored serialized so readers never share memory with writers.
type CacheRepository interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	// DeletePrefix removes every key starting with prefix.
	DeletePrefix(ctx context.Context, prefix string) error
}

// USDAClient defines the interface for interacting with USDA FoodData Central API
type USDAClient interface {
	SearchFoods(ctx context.Context, query string, pageSize int) (*USDASearchResponse, error)
	GetFoodDetails(ctx context.Context, fdcID int64) (*USDAFood, error)
}

// FoodStore is the local food catalog. Lookups return ErrNotFound when
// nothing matches; Insert returns ErrAlreadyExists when the fdc id or the
// (name, brand) pair is already taken.
type FoodStore interface {
	Find(ctx context.Context, query string, limit int) ([]Food, error)
	Get(ctx context.Context, id string) (*Food, error)
	FindByFdcID(ctx context.Context, fdcID int64) (*Food, error)
	FindByNameBrand(ctx context.Context, name, brand string) (*Food, error)
	Insert(ctx context.Context, food *Food) error
}

// RecipeStore persists recipes with their ingredients.
// GetRecipe resolves ingredient foods where they still exist.
type RecipeStore interface {
	CreateRecipe(ctx context.Context, recipe *Recipe) error
	GetRecipe(ctx context.Context, id string) (*Recipe, error)
	SearchRecipes(ctx context.Context, q RecipeQuery) ([]Recipe, error)
	ListRecipesByOwner(ctx context.Context, ownerID string) ([]Recipe, error)
	UpdateRecipe(ctx context.Context, recipe *Recipe) error
	DeleteRecipe(ctx context.Context, id string) error
}

// MealStore persists meals and their items.
type MealStore interface {
	FindOrCreateMeal(ctx context.Context, userID string, mealType MealType, date string) (*Meal, error)
	AddItem(ctx context.Context, item *MealItem) error
	GetItem(ctx context.Context, id string) (*MealItemRecord, error)
	UpdateItem(ctx context.Context, item *MealItem) error
	DeleteItem(ctx context.Context, id string) error
	MealsForDate(ctx context.Context, userID, date string) ([]Meal, error)
}

// GoalStore persists daily goals. GetGoals returns zero goals for users
// who never set any.
type GoalStore interface {
	GetGoals(ctx context.Context, userID string) (*DailyGoals, error)
	SetGoals(ctx context.Context, goals *DailyGoals) error
}
