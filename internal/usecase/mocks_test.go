package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mealtrack/backend/internal/domain"
	"github.com/sirupsen/logrus"
)

func discardLogger() logrus.FieldLogger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func ptr[T any](v T) *T {
	return &v
}

// MockCacheRepository is a mock implementation of domain.CacheRepository.
// Values are stored as JSON like the real cache.
type MockCacheRepository struct {
	mu       sync.Mutex
	data     map[string][]byte
	getCalls int
	deleted  []string
}

func NewMockCacheRepository() *MockCacheRepository {
	return &MockCacheRepository{data: make(map[string][]byte)}
}

func (m *MockCacheRepository) Get(ctx context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getCalls++
	raw, ok := m.data[key]
	if !ok {
		return domain.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *MockCacheRepository) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = raw
	return nil
}

func (m *MockCacheRepository) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	m.deleted = append(m.deleted, key)
	return nil
}

func (m *MockCacheRepository) DeletePrefix(ctx context.Context, prefix string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key := range m.data {
		if strings.HasPrefix(key, prefix) {
			delete(m.data, key)
			m.deleted = append(m.deleted, key)
		}
	}
	return nil
}

func (m *MockCacheRepository) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	return ok
}

// MockUSDAClient is a mock implementation of domain.USDAClient
type MockUSDAClient struct {
	mu          sync.Mutex
	searchFoods []domain.USDAFood
	searchError error
	details     map[int64]*domain.USDAFood
	detailError map[int64]error
	searchCalls int
	detailCalls int
	lastQuery   string
}

func NewMockUSDAClient(foods ...domain.USDAFood) *MockUSDAClient {
	m := &MockUSDAClient{
		searchFoods: foods,
		details:     make(map[int64]*domain.USDAFood),
		detailError: make(map[int64]error),
	}
	for i := range foods {
		f := foods[i]
		m.details[f.FdcID] = &f
	}
	return m
}

func (m *MockUSDAClient) SearchFoods(ctx context.Context, query string, pageSize int) (*domain.USDASearchResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.searchCalls++
	m.lastQuery = query
	if m.searchError != nil {
		return nil, m.searchError
	}
	if len(m.searchFoods) == 0 {
		return nil, domain.ErrProductNotFound
	}
	foods := m.searchFoods
	if len(foods) > pageSize {
		foods = foods[:pageSize]
	}
	return &domain.USDASearchResponse{Foods: append([]domain.USDAFood(nil), foods...), TotalHits: len(m.searchFoods)}, nil
}

func (m *MockUSDAClient) GetFoodDetails(ctx context.Context, fdcID int64) (*domain.USDAFood, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.detailCalls++
	if err := m.detailError[fdcID]; err != nil {
		return nil, err
	}
	f, ok := m.details[fdcID]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	cp := *f
	return &cp, nil
}

// MockFoodStore is an in-memory domain.FoodStore enforcing the same
// uniqueness rules as the database.
type MockFoodStore struct {
	mu        sync.Mutex
	foods     map[string]domain.Food
	order     []string
	insertErr error
	findErr   error
	inserts   int
}

func NewMockFoodStore(foods ...domain.Food) *MockFoodStore {
	m := &MockFoodStore{foods: make(map[string]domain.Food)}
	for i := range foods {
		_ = m.Insert(context.Background(), &foods[i])
	}
	return m
}

func (m *MockFoodStore) Find(ctx context.Context, query string, limit int) ([]domain.Food, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findErr != nil {
		return nil, m.findErr
	}
	q := strings.ToLower(query)
	out := []domain.Food{}
	for _, id := range m.order {
		f := m.foods[id]
		if strings.Contains(strings.ToLower(f.Name), q) || strings.Contains(strings.ToLower(f.Brand), q) {
			out = append(out, f)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].IsVerified != out[j].IsVerified {
			return out[i].IsVerified
		}
		return out[i].Name < out[j].Name
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MockFoodStore) Get(ctx context.Context, id string) (*domain.Food, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.foods[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &f, nil
}

func (m *MockFoodStore) FindByFdcID(ctx context.Context, fdcID int64) (*domain.Food, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, f := range m.foods {
		if f.FdcID != nil && *f.FdcID == fdcID {
			found := f
			return &found, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockFoodStore) FindByNameBrand(ctx context.Context, name, brand string) (*domain.Food, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, f := range m.foods {
		if f.Name == name && f.Brand == brand {
			found := f
			return &found, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockFoodStore) Insert(ctx context.Context, food *domain.Food) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.insertErr != nil {
		return m.insertErr
	}
	for _, f := range m.foods {
		if f.Name == food.Name && f.Brand == food.Brand {
			return domain.ErrAlreadyExists
		}
		if f.FdcID != nil && food.FdcID != nil && *f.FdcID == *food.FdcID {
			return domain.ErrAlreadyExists
		}
	}
	if food.ID == "" {
		food.ID = fmt.Sprintf("food-%d", len(m.order)+1)
	}
	m.foods[food.ID] = *food
	m.order = append(m.order, food.ID)
	m.inserts++
	return nil
}

func (m *MockFoodStore) set(food domain.Food) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.foods[food.ID] = food
}

// MockRecipeStore is an in-memory domain.RecipeStore that resolves
// ingredient foods from a MockFoodStore.
type MockRecipeStore struct {
	mu      sync.Mutex
	recipes map[string]domain.Recipe
	foods   *MockFoodStore
	nextID  int
}

func NewMockRecipeStore(foods *MockFoodStore) *MockRecipeStore {
	return &MockRecipeStore{recipes: make(map[string]domain.Recipe), foods: foods}
}

func (m *MockRecipeStore) resolve(r domain.Recipe) *domain.Recipe {
	ings := make([]domain.RecipeIngredient, len(r.Ingredients))
	for i, ing := range r.Ingredients {
		ing.Food = nil
		if f, err := m.foods.Get(context.Background(), ing.FoodID); err == nil {
			ing.Food = f
		}
		ings[i] = ing
	}
	r.Ingredients = ings
	return &r
}

func (m *MockRecipeStore) CreateRecipe(ctx context.Context, recipe *domain.Recipe) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	recipe.ID = fmt.Sprintf("recipe-%d", m.nextID)
	recipe.CreatedAt = time.Now()
	m.recipes[recipe.ID] = *recipe
	return nil
}

func (m *MockRecipeStore) GetRecipe(ctx context.Context, id string) (*domain.Recipe, error) {
	m.mu.Lock()
	r, ok := m.recipes[id]
	m.mu.Unlock()
	if !ok {
		return nil, domain.ErrNotFound
	}
	return m.resolve(r), nil
}

func (m *MockRecipeStore) SearchRecipes(ctx context.Context, q domain.RecipeQuery) ([]domain.Recipe, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.Recipe{}
	for _, r := range m.recipes {
		if !strings.Contains(strings.ToLower(r.Name), strings.ToLower(q.Name)) {
			continue
		}
		if !r.IsPublic && (q.PublicOnly || q.ViewerID == "" || r.CreatedBy != q.ViewerID) {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (m *MockRecipeStore) ListRecipesByOwner(ctx context.Context, ownerID string) ([]domain.Recipe, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.Recipe{}
	for _, r := range m.recipes {
		if r.CreatedBy == ownerID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *MockRecipeStore) UpdateRecipe(ctx context.Context, recipe *domain.Recipe) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.recipes[recipe.ID]; !ok {
		return domain.ErrNotFound
	}
	m.recipes[recipe.ID] = *recipe
	return nil
}

func (m *MockRecipeStore) DeleteRecipe(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.recipes[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.recipes, id)
	return nil
}

// MockMealStore is an in-memory domain.MealStore.
type MockMealStore struct {
	mu     sync.Mutex
	meals  []*domain.Meal
	items  map[string]*domain.MealItem
	nextID int
}

func NewMockMealStore() *MockMealStore {
	return &MockMealStore{items: make(map[string]*domain.MealItem)}
}

func (m *MockMealStore) id(prefix string) string {
	m.nextID++
	return fmt.Sprintf("%s-%d", prefix, m.nextID)
}

func (m *MockMealStore) FindOrCreateMeal(ctx context.Context, userID string, mealType domain.MealType, date string) (*domain.Meal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, meal := range m.meals {
		if meal.UserID == userID && meal.MealType == mealType && meal.Date == date {
			cp := *meal
			return &cp, nil
		}
	}
	meal := &domain.Meal{ID: m.id("meal"), UserID: userID, MealType: mealType, Date: date, Name: mealType.Title()}
	m.meals = append(m.meals, meal)
	cp := *meal
	return &cp, nil
}

func (m *MockMealStore) AddItem(ctx context.Context, item *domain.MealItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	item.ID = m.id("item")
	cp := *item
	m.items[item.ID] = &cp
	return nil
}

func (m *MockMealStore) meal(id string) *domain.Meal {
	for _, meal := range m.meals {
		if meal.ID == id {
			return meal
		}
	}
	return nil
}

func (m *MockMealStore) GetItem(ctx context.Context, id string) (*domain.MealItemRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	meal := m.meal(item.MealID)
	if meal == nil {
		return nil, domain.ErrNotFound
	}
	return &domain.MealItemRecord{Item: *item, OwnerID: meal.UserID, Date: meal.Date}, nil
}

func (m *MockMealStore) UpdateItem(ctx context.Context, item *domain.MealItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.items[item.ID]
	if !ok {
		return domain.ErrNotFound
	}
	stored.Quantity = item.Quantity
	stored.Unit = item.Unit
	stored.Nutrition = item.Nutrition
	return nil
}

func (m *MockMealStore) DeleteItem(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

func (m *MockMealStore) MealsForDate(ctx context.Context, userID, date string) ([]domain.Meal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.Meal{}
	for _, meal := range m.meals {
		if meal.UserID != userID || meal.Date != date {
			continue
		}
		cp := *meal
		cp.Items = nil
		for _, it := range m.items {
			if it.MealID == meal.ID {
				cp.Items = append(cp.Items, *it)
			}
		}
		sort.Slice(cp.Items, func(i, j int) bool { return cp.Items[i].ID < cp.Items[j].ID })
		out = append(out, cp)
	}
	return out, nil
}

// MockGoalStore is an in-memory domain.GoalStore.
type MockGoalStore struct {
	mu    sync.Mutex
	goals map[string]domain.DailyGoals
}

func NewMockGoalStore() *MockGoalStore {
	return &MockGoalStore{goals: make(map[string]domain.DailyGoals)}
}

func (m *MockGoalStore) GetGoals(ctx context.Context, userID string) (*domain.DailyGoals, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.goals[userID]
	if !ok {
		return &domain.DailyGoals{UserID: userID}, nil
	}
	return &g, nil
}

func (m *MockGoalStore) SetGoals(ctx context.Context, goals *domain.DailyGoals) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.goals[goals.UserID] = *goals
	return nil
}

func usdaFood(fdcID int64, name, brand string, calories, protein float64) domain.USDAFood {
	return domain.USDAFood{
		FdcID:       fdcID,
		Description: name,
		BrandOwner:  brand,
		DataType:    "Foundation",
		Nutrients: []domain.USDANutrient{
			{NutrientID: 1008, Amount: ptr(calories)},
			{NutrientID: 1003, Amount: ptr(protein)},
		},
	}
}
