package nutrition

import "github.com/mealtrack/backend/internal/domain"

// RecipeNutrition returns the nutrition of multiplier servings of recipe.
// Each resolved ingredient contributes food * (quantity / servings) * multiplier;
// ingredients whose food did not resolve are skipped. A recipe with no
// servings or no ingredients yields zeros.
func RecipeNutrition(recipe *domain.Recipe, multiplier float64) domain.MealNutrition {
	var total domain.MealNutrition
	if recipe == nil || recipe.Servings <= 0 || len(recipe.Ingredients) == 0 {
		return total
	}

	for _, ing := range recipe.Ingredients {
		if ing.Food == nil {
			continue
		}
		contribution := (ing.Quantity / recipe.Servings) * multiplier
		total = Add(total, ScaleFood(ing.Food, contribution))
	}
	return total
}

// PerServing is RecipeNutrition with a multiplier of 1.
func PerServing(recipe *domain.Recipe) domain.MealNutrition {
	return RecipeNutrition(recipe, 1)
}
