package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mealtrack/backend/internal/usecase"
)

// SearchRecipes handles GET /recipes?q=&public_only=
func (h *Handler) SearchRecipes(c *gin.Context) {
	publicOnly := false
	if raw := c.Query("public_only"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			badRequest(c, "public_only must be a boolean")
			return
		}
		publicOnly = v
	}

	recipes, err := h.recipes.SearchRecipes(c.Request.Context(), identityFrom(c), c.Query("q"), publicOnly)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipes": recipes})
}

func (h *Handler) GetRecipe(c *gin.Context) {
	recipe, err := h.recipes.GetRecipe(c.Request.Context(), identityFrom(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

// RecipeNutrition handles GET /recipes/:id/nutrition?multiplier=
func (h *Handler) RecipeNutrition(c *gin.Context) {
	var multiplier *float64
	if raw := c.Query("multiplier"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			badRequest(c, "multiplier must be a number")
			return
		}
		multiplier = &v
	}

	result, err := h.recipes.RecipeNutrition(c.Request.Context(), identityFrom(c), c.Param("id"), multiplier)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) CreateRecipe(c *gin.Context) {
	var req usecase.CreateRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	recipe, err := h.recipes.CreateRecipe(c.Request.Context(), identityFrom(c), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, recipe)
}

func (h *Handler) UpdateRecipe(c *gin.Context) {
	var req usecase.UpdateRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	recipe, err := h.recipes.UpdateRecipe(c.Request.Context(), identityFrom(c), c.Param("id"), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

func (h *Handler) DeleteRecipe(c *gin.Context) {
	if err := h.recipes.DeleteRecipe(c.Request.Context(), identityFrom(c), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) MyRecipes(c *gin.Context) {
	recipes, err := h.recipes.ListUserRecipes(c.Request.Context(), identityFrom(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipes": recipes})
}
