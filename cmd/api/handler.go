package api

import (
	"log"

	authUsecase "mindlog-backend/internal/auth/usecase"
	journalDelivery "mindlog-backend/internal/journal/delivery"
	journalRepo "mindlog-backend/internal/journal/repository"
	journalUsecase "mindlog-backend/internal/journal/usecase"
	"mindlog-backend/pkg/ai"
	"mindlog-backend/pkg/config"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	authUsecase     authUsecase.AuthUsecase
	entryHandler    *journalDelivery.EntryHandler
	searchHandler   *journalDelivery.SearchHandler
	insightHandler  *journalDelivery.InsightHandler
	sentimentWorker *journalUsecase.SentimentWorker
}

func NewHandler(
	authUc authUsecase.AuthUsecase,
	entryRepo journalRepo.EntryRepository,
	summaryRepo journalRepo.SummaryRepository,
	usageRepo journalRepo.UsageRepository,
	recentSearchRepo journalRepo.RecentSearchRepository,
	cfg *config.Config,
) *Handler {
	// One chat client serves both AI operations; an empty key yields an
	// unavailable client and every AI path degrades gracefully
	aiClient := ai.NewChatClient(cfg.LLMBaseURL, cfg.LLMAPIKey)
	if aiClient.Available() {
		log.Printf("LLM client initialized (sentiment=%s, summary=%s)", cfg.SentimentModel, cfg.SummaryModel)
	} else {
		log.Println("Warning: LLM_API_KEY not set. Sentiment analysis and summaries are disabled.")
	}

	usageTracker := journalUsecase.NewUsageTracker(usageRepo)
	analyzer := journalUsecase.NewSentimentAnalyzer(aiClient, usageTracker, cfg.SentimentModel)

	sentimentWorker := journalUsecase.NewSentimentWorker(analyzer, entryRepo, cfg.SentimentWorkers)
	sentimentWorker.Start()
	log.Println("Sentiment worker started")

	entryUc := journalUsecase.NewEntryUsecase(entryRepo, sentimentWorker)
	summaryGenerator := journalUsecase.NewSummaryGenerator(aiClient, entryRepo, summaryRepo, usageTracker, cfg.SummaryModel)
	recentSearches := journalUsecase.NewRecentSearches(recentSearchRepo)
	searchEngine := journalUsecase.NewSearchEngine(entryRepo, recentSearches)

	return &Handler{
		authUsecase:     authUc,
		entryHandler:    journalDelivery.NewEntryHandler(entryUc),
		searchHandler:   journalDelivery.NewSearchHandler(searchEngine, recentSearches),
		insightHandler:  journalDelivery.NewInsightHandler(summaryGenerator, usageTracker, entryUc),
		sentimentWorker: sentimentWorker,
	}
}

func (h *Handler) Start(addr string) error {
	r := gin.Default()

	// CORS middleware
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		} else {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	SetupRoutes(r, h.authUsecase, h.entryHandler, h.searchHandler, h.insightHandler)

	return r.Run(addr)
}

// Stop drains the background sentiment queue
func (h *Handler) Stop() {
	h.sentimentWorker.Stop()
}
