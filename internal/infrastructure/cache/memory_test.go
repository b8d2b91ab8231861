package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/mealtrack/backend/internal/domain"
)

func newTestCache(t *testing.T) *MemoryCache {
	t.Helper()
	c := NewMemoryCache(time.Minute)
	t.Cleanup(c.Close)
	return c
}

func TestMemoryCache_SetAndGet(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	want := domain.DailySummary{
		Date:     "2024-05-01",
		Totals:   domain.MealNutrition{Calories: 1800, ProteinG: 90},
		Goals:    domain.DailyGoals{UserID: "user-1", Calories: 2000},
		Progress: map[string]int{"calories": 90},
		Meals: []domain.MealSummary{{
			Meal: domain.Meal{ID: "m1", MealType: domain.MealTypeLunch, Items: []domain.MealItem{
				{ID: "i1", Source: domain.FoodSource{FoodID: "f1"}, Quantity: 2},
			}},
		}},
	}

	if err := cache.Set(ctx, "summary:user-1:2024-05-01", want, time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	var got domain.DailySummary
	if err := cache.Get(ctx, "summary:user-1:2024-05-01", &got); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Totals != want.Totals || got.Progress["calories"] != 90 {
		t.Errorf("Get() = %+v, want %+v", got, want)
	}
	if src, ok := got.Meals[0].Meal.Items[0].Source.(domain.FoodSource); !ok || src.FoodID != "f1" {
		t.Errorf("item source = %#v, want FoodSource f1", got.Meals[0].Meal.Items[0].Source)
	}
}

func TestMemoryCache_ValuesAreCopies(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	progress := map[string]int{"calories": 50}
	if err := cache.Set(ctx, "k", progress, time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	progress["calories"] = 99

	var got map[string]int
	if err := cache.Get(ctx, "k", &got); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got["calories"] != 50 {
		t.Errorf("cached value changed through caller map: %v", got)
	}
}

func TestMemoryCache_Get_CacheMiss(t *testing.T) {
	cache := newTestCache(t)

	var v string
	err := cache.Get(context.Background(), "non-existent-key", &v)
	if !errors.Is(err, domain.ErrCacheMiss) {
		t.Errorf("Get() error = %v, want %v", err, domain.ErrCacheMiss)
	}
}

func TestMemoryCache_Expiration(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }

	if err := cache.Set(ctx, "short", "value", time.Second); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	var v string
	if err := cache.Get(ctx, "short", &v); err != nil {
		t.Fatalf("Get() before expiry error = %v", err)
	}

	now = now.Add(2 * time.Second)
	if err := cache.Get(ctx, "short", &v); !errors.Is(err, domain.ErrCacheMiss) {
		t.Errorf("Get() after expiry error = %v, want %v", err, domain.ErrCacheMiss)
	}

	if size := cache.Size(); size != 1 {
		t.Errorf("Size() before sweep = %d, want 1", size)
	}
	cache.sweep()
	if size := cache.Size(); size != 0 {
		t.Errorf("Size() after sweep = %d, want 0", size)
	}
}

func TestMemoryCache_Delete(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	if err := cache.Set(ctx, "delete-test", "value", time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := cache.Delete(ctx, "delete-test"); err != nil {
		t.Errorf("Delete() error = %v", err)
	}

	var v string
	if err := cache.Get(ctx, "delete-test", &v); !errors.Is(err, domain.ErrCacheMiss) {
		t.Errorf("Get() after delete error = %v, want %v", err, domain.ErrCacheMiss)
	}
}

func TestMemoryCache_DeletePrefix(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	keys := []string{"summary:u1:2024-03-09", "summary:u1:2024-03-10", "summary:u10:2024-03-10", "other"}
	for _, k := range keys {
		if err := cache.Set(ctx, k, k, time.Minute); err != nil {
			t.Fatalf("Set(%q) error = %v", k, err)
		}
	}

	if err := cache.DeletePrefix(ctx, "summary:u1:"); err != nil {
		t.Fatalf("DeletePrefix() error = %v", err)
	}

	want := map[string]bool{
		"summary:u1:2024-03-09":  false,
		"summary:u1:2024-03-10":  false,
		"summary:u10:2024-03-10": true,
		"other":                  true,
	}
	for k, present := range want {
		var v string
		err := cache.Get(ctx, k, &v)
		if present && err != nil {
			t.Errorf("Get(%q) error = %v, want hit", k, err)
		}
		if !present && !errors.Is(err, domain.ErrCacheMiss) {
			t.Errorf("Get(%q) error = %v, want %v", k, err, domain.ErrCacheMiss)
		}
	}
}

func TestMemoryCache_SizeAndClear(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := cache.Set(ctx, fmt.Sprintf("key-%d", i), i, time.Minute); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
	}
	if size := cache.Size(); size != 5 {
		t.Errorf("Size() = %d, want 5", size)
	}

	cache.Clear()
	if size := cache.Size(); size != 0 {
		t.Errorf("Size() = %d, want 0 after clear", size)
	}
}

func TestMemoryCache_SetUnencodable(t *testing.T) {
	cache := newTestCache(t)

	if err := cache.Set(context.Background(), "bad", make(chan int), time.Minute); err == nil {
		t.Error("Set() error = nil, want encode error")
	}
}

func TestMemoryCache_CloseIsIdempotent(t *testing.T) {
	cache := NewMemoryCache(time.Millisecond)
	cache.Close()
	cache.Close()
}

func TestMemoryCache_Concurrent(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			key := fmt.Sprintf("key-%d", id)
			if err := cache.Set(ctx, key, id, time.Minute); err != nil {
				t.Errorf("Concurrent Set() error = %v", err)
			}
			var got int
			if err := cache.Get(ctx, key, &got); err != nil || got != id {
				t.Errorf("Concurrent Get() = %d, %v", got, err)
			}
			_ = cache.Delete(ctx, key)
		}(i)
	}
	wg.Wait()
}
