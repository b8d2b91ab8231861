package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mealtrack/backend/internal/domain"
	"github.com/mealtrack/backend/internal/nutrition"
	"github.com/mealtrack/backend/internal/usecase"
	"github.com/sirupsen/logrus"
)

const serviceName = "mealtrack-backend"

// Handler holds dependencies for HTTP handlers
type Handler struct {
	catalog *usecase.CatalogService
	meals   *usecase.MealService
	recipes *usecase.RecipeService
	version string
	log     logrus.FieldLogger
}

// NewHandler creates a new HTTP handler
func NewHandler(
	catalog *usecase.CatalogService,
	meals *usecase.MealService,
	recipes *usecase.RecipeService,
	version string,
	log logrus.FieldLogger,
) *Handler {
	return &Handler{
		catalog: catalog,
		meals:   meals,
		recipes: recipes,
		version: version,
		log:     log.WithField("component", "http"),
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": serviceName,
		"version": h.version,
	})
}

// respondError maps domain errors to HTTP status codes.
func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, domain.ErrGuestForbidden):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "USDA API temporarily unavailable"})
	default:
		_ = c.Error(err)
		h.log.WithError(err).WithField("path", c.FullPath()).Error("unhandled error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

// SearchFoods handles GET /foods/search?q=
func (h *Handler) SearchFoods(c *gin.Context) {
	foods, err := h.catalog.SearchCatalog(c.Request.Context(), c.Query("q"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"foods": foods, "count": len(foods)})
}

func (h *Handler) GetFood(c *gin.Context) {
	food, err := h.catalog.GetFood(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, food)
}

type importRequest struct {
	Query string `json:"query"`
}

// ImportFoods handles POST /foods/import. When USDA is unavailable the
// response is 503 but still carries the local matches.
func (h *Handler) ImportFoods(c *gin.Context) {
	var req importRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	result, err := h.catalog.ImportFromExternal(c.Request.Context(), identityFrom(c), req.Query)
	if err != nil {
		if result != nil && errors.Is(err, domain.ErrUpstreamUnavailable) {
			c.JSON(http.StatusServiceUnavailable, struct {
				*usecase.ImportResult
				Error string `json:"error"`
			}{result, "USDA API temporarily unavailable"})
			return
		}
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type totalsRequest struct {
	Items []nutrition.Input `json:"items"`
}

// NutritionTotals handles POST /nutrition/totals
func (h *Handler) NutritionTotals(c *gin.Context) {
	var req totalsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	summary := nutrition.Totals(req.Items)
	if !summary.IsFinite() {
		badRequest(c, "nutrition totals out of range")
		return
	}
	c.JSON(http.StatusOK, summary)
}

// ValidateNutrition handles POST /nutrition/validate
func (h *Handler) ValidateNutrition(c *gin.Context) {
	var req nutrition.Input
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	errs := nutrition.Validate(req)
	c.JSON(http.StatusOK, gin.H{"valid": len(errs) == 0, "errors": errs})
}

type progressRequest struct {
	Consumed map[string]float64 `json:"consumed"`
	Goals    map[string]float64 `json:"goals"`
}

// DailyProgress handles POST /nutrition/progress
func (h *Handler) DailyProgress(c *gin.Context) {
	var req progressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	c.JSON(http.StatusOK, gin.H{"progress": nutrition.DailyProgress(req.Consumed, req.Goals)})
}
