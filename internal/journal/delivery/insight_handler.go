package delivery

import (
	"net/http"
	"strconv"
	"time"

	journaldomain "mindlog-backend/internal/journal/domain"
	"mindlog-backend/internal/journal/usecase"
	"mindlog-backend/pkg/ai"

	"github.com/gin-gonic/gin"
)

// InsightHandler handles AI summary generation, usage reporting, and
// sentiment backfill requests
type InsightHandler struct {
	summaryGenerator *usecase.SummaryGenerator
	usageTracker     *usecase.UsageTracker
	entryUsecase     *usecase.EntryUsecase
}

// NewInsightHandler creates a new InsightHandler
func NewInsightHandler(summaryGenerator *usecase.SummaryGenerator, usageTracker *usecase.UsageTracker, entryUsecase *usecase.EntryUsecase) *InsightHandler {
	return &InsightHandler{
		summaryGenerator: summaryGenerator,
		usageTracker:     usageTracker,
		entryUsecase:     entryUsecase,
	}
}

// GenerateSummaryRequest represents the request body for summary generation
type GenerateSummaryRequest struct {
	Date  string `json:"date" binding:"required"` // YYYY-MM-DD
	Force bool   `json:"force"`
}

// GenerateDailySummary summarizes one day of entries
// POST /api/summaries/daily
func (h *InsightHandler) GenerateDailySummary(c *gin.Context) {
	h.generateSummary(c, journaldomain.SummaryTypeDaily)
}

// GenerateWeeklySummary summarizes the week ending on the given date
// POST /api/summaries/weekly
func (h *InsightHandler) GenerateWeeklySummary(c *gin.Context) {
	h.generateSummary(c, journaldomain.SummaryTypeWeekly)
}

func (h *InsightHandler) generateSummary(c *gin.Context, typ journaldomain.SummaryType) {
	userID := c.GetString("userID")

	var req GenerateSummaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}

	var summary *journaldomain.Summary
	if typ == journaldomain.SummaryTypeDaily {
		summary, err = h.summaryGenerator.GenerateDaily(c.Request.Context(), userID, date, req.Force)
	} else {
		summary, err = h.summaryGenerator.GenerateWeekly(c.Request.Context(), userID, date, req.Force)
	}
	if err != nil {
		status := summaryErrorStatus(err)
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	// Nothing to summarize in the range is a valid outcome, not an error
	if summary == nil {
		c.JSON(http.StatusOK, gin.H{"summary": nil})
		return
	}

	c.JSON(http.StatusOK, gin.H{"summary": summary})
}

// ListSummaries returns stored summaries, newest range first
// GET /api/summaries?type=daily&limit=20
func (h *InsightHandler) ListSummaries(c *gin.Context) {
	userID := c.GetString("userID")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	summaries, err := h.summaryGenerator.GetSummaries(userID, journaldomain.SummaryType(c.Query("type")), limit)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"summaries": summaries})
}

// GetUsage reports the user's AI token spend
// GET /api/insights/usage?days=30
func (h *InsightHandler) GetUsage(c *gin.Context) {
	userID := c.GetString("userID")
	days, _ := strconv.Atoi(c.DefaultQuery("days", "30"))

	usage, err := h.usageTracker.GetUserUsage(userID, days)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, usage)
}

// BackfillSentiment queues un-analyzed entries for background analysis
// POST /api/insights/sentiment/backfill
func (h *InsightHandler) BackfillSentiment(c *gin.Context) {
	userID := c.GetString("userID")

	queued, err := h.entryUsecase.Backfill(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"queued": queued})
}

// summaryErrorStatus maps the LLM error taxonomy onto HTTP statuses: quota
// problems say try again later, a missing credential means the feature is
// disabled, anything else from upstream is a bad gateway.
func summaryErrorStatus(err error) int {
	switch {
	case ai.IsRateLimitError(err):
		return http.StatusTooManyRequests
	case ai.IsAuthError(err):
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}
