package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mealtrack/backend/internal/domain"
	"github.com/mealtrack/backend/internal/usecase"
)

func (h *Handler) TodaysMeals(c *gin.Context) {
	meals, err := h.meals.TodaysMeals(c.Request.Context(), identityFrom(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"meals": meals})
}

func (h *Handler) AddFoodItem(c *gin.Context) {
	var req usecase.AddFoodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	item, err := h.meals.AddFoodToMeal(c.Request.Context(), identityFrom(c), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *Handler) AddRecipeItem(c *gin.Context) {
	var req usecase.AddRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	item, err := h.meals.AddRecipeToMeal(c.Request.Context(), identityFrom(c), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

type updateItemRequest struct {
	Quantity *float64 `json:"quantity"`
}

func (h *Handler) UpdateMealItem(c *gin.Context) {
	var req updateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	if req.Quantity == nil {
		badRequest(c, "quantity is required")
		return
	}
	item, err := h.meals.UpdateMealItem(c.Request.Context(), identityFrom(c), c.Param("id"), *req.Quantity)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *Handler) DeleteMealItem(c *gin.Context) {
	if err := h.meals.DeleteMealItem(c.Request.Context(), identityFrom(c), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Dashboard handles GET /dashboard?date=YYYY-MM-DD (default today, UTC).
func (h *Handler) Dashboard(c *gin.Context) {
	summary, err := h.meals.DailySummary(c.Request.Context(), identityFrom(c), c.Query("date"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *Handler) GetGoals(c *gin.Context) {
	goals, err := h.meals.GetGoals(c.Request.Context(), identityFrom(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, goals)
}

func (h *Handler) SetGoals(c *gin.Context) {
	var req domain.DailyGoals
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	goals, err := h.meals.SetGoals(c.Request.Context(), identityFrom(c), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, goals)
}
