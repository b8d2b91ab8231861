package http

import (
	"github.com/gin-gonic/gin"
	"github.com/mealtrack/backend/config"
	"github.com/sirupsen/logrus"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler, log logrus.FieldLogger) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware(log))
	router.Use(LoggerMiddleware(log.WithField("component", "access")))
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	v1.Use(IdentityMiddleware([]byte(cfg.Auth.JWTSecret), cfg.Auth.AllowGuest))
	{
		foods := v1.Group("/foods")
		{
			foods.GET("/search", handler.SearchFoods)
			foods.GET("/:id", handler.GetFood)
			foods.POST("/import", handler.ImportFoods)
		}

		// Pure calculations, no state
		nutrition := v1.Group("/nutrition")
		{
			nutrition.POST("/totals", handler.NutritionTotals)
			nutrition.POST("/validate", handler.ValidateNutrition)
			nutrition.POST("/progress", handler.DailyProgress)
		}

		recipes := v1.Group("/recipes")
		{
			recipes.GET("", handler.SearchRecipes)
			recipes.POST("", handler.CreateRecipe)
			recipes.GET("/:id", handler.GetRecipe)
			recipes.GET("/:id/nutrition", handler.RecipeNutrition)
			recipes.PATCH("/:id", handler.UpdateRecipe)
			recipes.DELETE("/:id", handler.DeleteRecipe)
		}
		v1.GET("/me/recipes", handler.MyRecipes)

		meals := v1.Group("/meals")
		{
			meals.GET("/today", handler.TodaysMeals)
			meals.POST("/items/food", handler.AddFoodItem)
			meals.POST("/items/recipe", handler.AddRecipeItem)
			meals.PATCH("/items/:id", handler.UpdateMealItem)
			meals.DELETE("/items/:id", handler.DeleteMealItem)
		}

		v1.GET("/dashboard", handler.Dashboard)
		v1.GET("/goals", handler.GetGoals)
		v1.PUT("/goals", handler.SetGoals)
	}

	return router
}
