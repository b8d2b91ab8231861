package storage

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mealtrack/backend/internal/domain"
	"gorm.io/gorm"
)

type foodModel struct {
	ID            string `gorm:"primaryKey;size:36"`
	FdcID         *int64 `gorm:"uniqueIndex"`
	Name          string `gorm:"size:255;not null;uniqueIndex:idx_foods_name_brand"`
	Brand         string `gorm:"size:255;not null;uniqueIndex:idx_foods_name_brand"`
	ServingSize   float64
	ServingUnit   string `gorm:"size:32"`
	Calories      float64
	ProteinG      float64
	CarbsG        float64
	FatG          float64
	FiberG        float64
	SugarG        float64
	SodiumMg      float64
	CholesterolMg float64
	VitaminAMcg   float64
	VitaminCMg    float64
	VitaminDMcg   float64
	VitaminEMg    float64
	VitaminB12Mcg float64
	CalciumMg     float64
	IronMg        float64
	MagnesiumMg   float64
	PotassiumMg   float64
	ZincMg        float64
	SeleniumMcg   float64
	FolateMcg     float64
	IsVerified    bool `gorm:"index"`
	CreatedAt     time.Time
}

func (foodModel) TableName() string { return "foods" }

func (m *foodModel) BeforeCreate(*gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

func newFoodModel(f *domain.Food) *foodModel {
	n := f.Nutrients
	return &foodModel{
		ID:            f.ID,
		FdcID:         f.FdcID,
		Name:          f.Name,
		Brand:         f.Brand,
		ServingSize:   f.ServingSize,
		ServingUnit:   f.ServingUnit,
		Calories:      n.Calories,
		ProteinG:      n.ProteinG,
		CarbsG:        n.CarbsG,
		FatG:          n.FatG,
		FiberG:        n.FiberG,
		SugarG:        n.SugarG,
		SodiumMg:      n.SodiumMg,
		CholesterolMg: n.CholesterolMg,
		VitaminAMcg:   n.VitaminAMcg,
		VitaminCMg:    n.VitaminCMg,
		VitaminDMcg:   n.VitaminDMcg,
		VitaminEMg:    n.VitaminEMg,
		VitaminB12Mcg: n.VitaminB12Mcg,
		CalciumMg:     n.CalciumMg,
		IronMg:        n.IronMg,
		MagnesiumMg:   n.MagnesiumMg,
		PotassiumMg:   n.PotassiumMg,
		ZincMg:        n.ZincMg,
		SeleniumMcg:   n.SeleniumMcg,
		FolateMcg:     n.FolateMcg,
		IsVerified:    f.IsVerified,
		CreatedAt:     f.CreatedAt,
	}
}

func (m *foodModel) toDomain() *domain.Food {
	return &domain.Food{
		ID:          m.ID,
		FdcID:       m.FdcID,
		Name:        m.Name,
		Brand:       m.Brand,
		ServingSize: m.ServingSize,
		ServingUnit: m.ServingUnit,
		Nutrients: domain.Nutrients{
			Calories:      m.Calories,
			ProteinG:      m.ProteinG,
			CarbsG:        m.CarbsG,
			FatG:          m.FatG,
			FiberG:        m.FiberG,
			SugarG:        m.SugarG,
			SodiumMg:      m.SodiumMg,
			CholesterolMg: m.CholesterolMg,
			VitaminAMcg:   m.VitaminAMcg,
			VitaminCMg:    m.VitaminCMg,
			VitaminDMcg:   m.VitaminDMcg,
			VitaminEMg:    m.VitaminEMg,
			VitaminB12Mcg: m.VitaminB12Mcg,
			CalciumMg:     m.CalciumMg,
			IronMg:        m.IronMg,
			MagnesiumMg:   m.MagnesiumMg,
			PotassiumMg:   m.PotassiumMg,
			ZincMg:        m.ZincMg,
			SeleniumMcg:   m.SeleniumMcg,
			FolateMcg:     m.FolateMcg,
		},
		IsVerified: m.IsVerified,
		CreatedAt:  m.CreatedAt,
	}
}

type recipeModel struct {
	ID          string `gorm:"primaryKey;size:36"`
	Name        string `gorm:"size:255;not null;index"`
	Description string
	CreatedBy   string `gorm:"size:64;not null;index"`
	IsPublic    bool   `gorm:"index"`
	Servings    float64
	Ingredients []recipeIngredientModel `gorm:"foreignKey:RecipeID"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (recipeModel) TableName() string { return "recipes" }

func (m *recipeModel) BeforeCreate(*gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

type recipeIngredientModel struct {
	ID       string `gorm:"primaryKey;size:36"`
	RecipeID string `gorm:"size:36;not null;index"`
	FoodID   string `gorm:"size:36;not null;index"`
	Position int
	Quantity float64
	Unit     string     `gorm:"size:32"`
	Food     *foodModel `gorm:"foreignKey:FoodID"`
}

func (recipeIngredientModel) TableName() string { return "recipe_ingredients" }

func (m *recipeIngredientModel) BeforeCreate(*gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

func newRecipeModel(r *domain.Recipe) *recipeModel {
	m := &recipeModel{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		CreatedBy:   r.CreatedBy,
		IsPublic:    r.IsPublic,
		Servings:    r.Servings,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	return m
}

func newIngredientModels(recipeID string, ingredients []domain.RecipeIngredient) []recipeIngredientModel {
	models := make([]recipeIngredientModel, 0, len(ingredients))
	for i, ing := range ingredients {
		models = append(models, recipeIngredientModel{
			RecipeID: recipeID,
			FoodID:   ing.FoodID,
			Position: i,
			Quantity: ing.Quantity,
			Unit:     ing.Unit,
		})
	}
	return models
}

func (m *recipeModel) toDomain() *domain.Recipe {
	r := &domain.Recipe{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		CreatedBy:   m.CreatedBy,
		IsPublic:    m.IsPublic,
		Servings:    m.Servings,
		Ingredients: make([]domain.RecipeIngredient, 0, len(m.Ingredients)),
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
	for _, ing := range m.Ingredients {
		ri := domain.RecipeIngredient{
			ID:       ing.ID,
			RecipeID: ing.RecipeID,
			FoodID:   ing.FoodID,
			Position: ing.Position,
			Quantity: ing.Quantity,
			Unit:     ing.Unit,
		}
		if ing.Food != nil {
			ri.Food = ing.Food.toDomain()
		}
		r.Ingredients = append(r.Ingredients, ri)
	}
	return r
}

type mealModel struct {
	ID        string          `gorm:"primaryKey;size:36"`
	UserID    string          `gorm:"size:64;not null;uniqueIndex:idx_meals_user_type_date"`
	MealType  string          `gorm:"size:16;not null;uniqueIndex:idx_meals_user_type_date"`
	Date      string          `gorm:"size:10;not null;uniqueIndex:idx_meals_user_type_date"`
	Name      string          `gorm:"size:255"`
	Notes     string
	Items     []mealItemModel `gorm:"foreignKey:MealID"`
	CreatedAt time.Time
}

func (mealModel) TableName() string { return "meals" }

func (m *mealModel) BeforeCreate(*gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

func (m *mealModel) toDomain() (*domain.Meal, error) {
	meal := &domain.Meal{
		ID:        m.ID,
		UserID:    m.UserID,
		MealType:  domain.MealType(m.MealType),
		Date:      m.Date,
		Name:      m.Name,
		Notes:     m.Notes,
		Items:     make([]domain.MealItem, 0, len(m.Items)),
		CreatedAt: m.CreatedAt,
	}
	for i := range m.Items {
		item, err := m.Items[i].toDomain()
		if err != nil {
			return nil, err
		}
		meal.Items = append(meal.Items, *item)
	}
	return meal, nil
}

// mealItemModel stores the source variant as two nullable columns. Exactly
// one of FoodID and RecipeID is set on every valid row.
type mealItemModel struct {
	ID                string  `gorm:"primaryKey;size:36"`
	MealID            string  `gorm:"size:36;not null;index"`
	FoodID            *string `gorm:"size:36;index"`
	RecipeID          *string `gorm:"size:36;index"`
	Quantity          float64
	Unit              string `gorm:"size:32"`
	ServingMultiplier float64
	Calories          float64 `gorm:"column:calories"`
	ProteinG          float64 `gorm:"column:protein_g"`
	CarbsG            float64 `gorm:"column:carbs_g"`
	FatG              float64 `gorm:"column:fat_g"`
	FiberG            float64 `gorm:"column:fiber_g"`
	CreatedAt         time.Time
}

func (mealItemModel) TableName() string { return "meal_items" }

func (m *mealItemModel) BeforeCreate(*gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

func newMealItemModel(item *domain.MealItem) (*mealItemModel, error) {
	m := &mealItemModel{
		ID:                item.ID,
		MealID:            item.MealID,
		Quantity:          item.Quantity,
		Unit:              item.Unit,
		ServingMultiplier: item.ServingMultiplier,
		Calories:          item.Nutrition.Calories,
		ProteinG:          item.Nutrition.ProteinG,
		CarbsG:            item.Nutrition.CarbsG,
		FatG:              item.Nutrition.FatG,
		FiberG:            item.Nutrition.FiberG,
		CreatedAt:         item.CreatedAt,
	}
	switch src := item.Source.(type) {
	case domain.FoodSource:
		m.FoodID = &src.FoodID
	case domain.RecipeSource:
		m.RecipeID = &src.RecipeID
		m.ServingMultiplier = src.ServingMultiplier
	default:
		return nil, fmt.Errorf("%w: meal item without source", domain.ErrValidation)
	}
	return m, nil
}

func (m *mealItemModel) toDomain() (*domain.MealItem, error) {
	item := &domain.MealItem{
		ID:                m.ID,
		MealID:            m.MealID,
		Quantity:          m.Quantity,
		Unit:              m.Unit,
		ServingMultiplier: m.ServingMultiplier,
		Nutrition: domain.MealNutrition{
			Calories: m.Calories,
			ProteinG: m.ProteinG,
			CarbsG:   m.CarbsG,
			FatG:     m.FatG,
			FiberG:   m.FiberG,
		},
		CreatedAt: m.CreatedAt,
	}

	switch {
	case m.FoodID != nil && m.RecipeID == nil:
		item.Source = domain.FoodSource{FoodID: *m.FoodID}
	case m.RecipeID != nil && m.FoodID == nil:
		item.Source = domain.RecipeSource{RecipeID: *m.RecipeID, ServingMultiplier: m.ServingMultiplier}
	default:
		return nil, fmt.Errorf("%w: meal item %s must reference exactly one of food or recipe", domain.ErrCorruptRecord, m.ID)
	}
	return item, nil
}

type goalModel struct {
	UserID    string `gorm:"primaryKey;size:64"`
	Calories  float64
	ProteinG  float64
	CarbsG    float64
	FatG      float64
	FiberG    float64
	UpdatedAt time.Time
}

func (goalModel) TableName() string { return "daily_goals" }
