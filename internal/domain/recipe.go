package domain

import "time"

// Recipe is a named, owned collection of ingredients yielding Servings portions.
type Recipe struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	CreatedBy   string             `json:"created_by"`
	IsPublic    bool               `json:"is_public"`
	Servings    float64            `json:"servings"`
	Ingredients []RecipeIngredient `json:"ingredients"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// RecipeIngredient references a catalog food. Food is nil when the
// referenced food no longer resolves.
type RecipeIngredient struct {
	ID       string  `json:"id"`
	RecipeID string  `json:"recipe_id"`
	FoodID   string  `json:"food_id"`
	Position int     `json:"position"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
	Food     *Food   `json:"food,omitempty"`
}

// VisibleTo reports whether userID may read the recipe. An empty userID is a guest.
func (r *Recipe) VisibleTo(userID string) bool {
	return r.IsPublic || (userID != "" && r.CreatedBy == userID)
}

// RecipeQuery filters a recipe search.
type RecipeQuery struct {
	Name       string
	ViewerID   string
	PublicOnly bool
	Limit      int
}
