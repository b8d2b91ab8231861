package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/mealtrack/backend/internal/domain"
	"gorm.io/gorm"
)

// RecipeStore persists recipes and their ingredients.
type RecipeStore struct {
	db *gorm.DB
}

func NewRecipeStore(db *gorm.DB) *RecipeStore {
	return &RecipeStore{db: db}
}

func withIngredients(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Ingredients.Food")
}

// CreateRecipe writes the recipe and its ingredients in one transaction.
func (s *RecipeStore) CreateRecipe(ctx context.Context, recipe *domain.Recipe) error {
	m := newRecipeModel(recipe)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Ingredients").Create(m).Error; err != nil {
			return err
		}
		ingredients := newIngredientModels(m.ID, recipe.Ingredients)
		if len(ingredients) == 0 {
			return nil
		}
		return tx.Omit("Food").Create(&ingredients).Error
	})
	if err != nil {
		return fmt.Errorf("create recipe: %w", err)
	}

	recipe.ID = m.ID
	recipe.CreatedAt = m.CreatedAt
	recipe.UpdatedAt = m.UpdatedAt
	return nil
}

func (s *RecipeStore) GetRecipe(ctx context.Context, id string) (*domain.Recipe, error) {
	var m recipeModel
	err := withIngredients(s.db.WithContext(ctx)).Where("id = ?", id).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get recipe: %w", err)
	}
	return m.toDomain(), nil
}

// SearchRecipes matches names case-insensitively. Guests and PublicOnly
// queries see public recipes; signed-in viewers also see their own.
func (s *RecipeStore) SearchRecipes(ctx context.Context, q domain.RecipeQuery) ([]domain.Recipe, error) {
	db := withIngredients(s.db.WithContext(ctx)).
		Where(`LOWER(name) LIKE ? ESCAPE '\'`, containsPattern(q.Name))

	if q.PublicOnly || q.ViewerID == "" {
		db = db.Where("is_public = ?", true)
	} else {
		db = db.Where("(is_public = ? OR created_by = ?)", true, q.ViewerID)
	}
	if q.Limit > 0 {
		db = db.Limit(q.Limit)
	}

	var rows []recipeModel
	if err := db.Order("name ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("search recipes: %w", err)
	}
	return toDomainRecipes(rows), nil
}

// ListRecipesByOwner returns the owner's recipes, newest first.
func (s *RecipeStore) ListRecipesByOwner(ctx context.Context, ownerID string) ([]domain.Recipe, error) {
	var rows []recipeModel
	err := withIngredients(s.db.WithContext(ctx)).
		Where("created_by = ?", ownerID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	return toDomainRecipes(rows), nil
}

// UpdateRecipe overwrites the recipe columns and replaces its ingredient list.
func (s *RecipeStore) UpdateRecipe(ctx context.Context, recipe *domain.Recipe) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&recipeModel{}).Where("id = ?", recipe.ID).Updates(map[string]interface{}{
			"name":        recipe.Name,
			"description": recipe.Description,
			"is_public":   recipe.IsPublic,
			"servings":    recipe.Servings,
			"updated_at":  tx.NowFunc(),
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}

		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&recipeIngredientModel{}).Error; err != nil {
			return err
		}
		ingredients := newIngredientModels(recipe.ID, recipe.Ingredients)
		if len(ingredients) == 0 {
			return nil
		}
		return tx.Omit("Food").Create(&ingredients).Error
	})
	if errors.Is(err, domain.ErrNotFound) {
		return err
	}
	if err != nil {
		return fmt.Errorf("update recipe: %w", err)
	}
	return nil
}

// DeleteRecipe removes the recipe and its ingredients together.
func (s *RecipeStore) DeleteRecipe(ctx context.Context, id string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("recipe_id = ?", id).Delete(&recipeIngredientModel{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&recipeModel{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
	if errors.Is(err, domain.ErrNotFound) {
		return err
	}
	if err != nil {
		return fmt.Errorf("delete recipe: %w", err)
	}
	return nil
}

func toDomainRecipes(rows []recipeModel) []domain.Recipe {
	recipes := make([]domain.Recipe, 0, len(rows))
	for i := range rows {
		recipes = append(recipes, *rows[i].toDomain())
	}
	return recipes
}
