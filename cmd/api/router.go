package api

import (
	"net/http"

	authDelivery "mindlog-backend/internal/auth/delivery"
	authUsecase "mindlog-backend/internal/auth/usecase"
	journalDelivery "mindlog-backend/internal/journal/delivery"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(
	r *gin.Engine,
	authUc authUsecase.AuthUsecase,
	entryHandler *journalDelivery.EntryHandler,
	searchHandler *journalDelivery.SearchHandler,
	insightHandler *journalDelivery.InsightHandler,
) {
	authHandler := authDelivery.NewAuthHandler(authUc)

	api := r.Group("/api")
	{
		// Health check (no auth required)
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		// Auth routes
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.GET("/me", authDelivery.AuthMiddleware(authUc), authHandler.Me)
		}

		// Entry routes (protected)
		entries := api.Group("/entries")
		entries.Use(authDelivery.AuthMiddleware(authUc))
		{
			entries.POST("", entryHandler.CreateEntry)
			entries.GET("", entryHandler.ListEntries)
			entries.GET("/:id", entryHandler.GetEntry)
			entries.DELETE("/:id", entryHandler.DeleteEntry)
		}

		// Search routes (protected)
		search := api.Group("/search")
		search.Use(authDelivery.AuthMiddleware(authUc))
		{
			search.GET("", searchHandler.Search)
			search.GET("/recent", searchHandler.ListRecentSearches)
			search.DELETE("/recent", searchHandler.ClearRecentSearches)
			search.DELETE("/recent/:id", searchHandler.DeleteRecentSearch)
		}

		// Summary routes (protected)
		summaries := api.Group("/summaries")
		summaries.Use(authDelivery.AuthMiddleware(authUc))
		{
			summaries.POST("/daily", insightHandler.GenerateDailySummary)
			summaries.POST("/weekly", insightHandler.GenerateWeeklySummary)
			summaries.GET("", insightHandler.ListSummaries)
		}

		// Insight routes (protected) - usage visibility and sentiment backfill
		insights := api.Group("/insights")
		insights.Use(authDelivery.AuthMiddleware(authUc))
		{
			insights.GET("/usage", insightHandler.GetUsage)
			insights.POST("/sentiment/backfill", insightHandler.BackfillSentiment)
		}
	}
}
