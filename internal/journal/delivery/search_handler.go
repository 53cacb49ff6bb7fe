package delivery

import (
	"net/http"
	"strconv"

	"mindlog-backend/internal/journal/usecase"

	"github.com/gin-gonic/gin"
)

// SearchHandler handles full-text search and search history requests
type SearchHandler struct {
	searchEngine   *usecase.SearchEngine
	recentSearches *usecase.RecentSearches
}

// NewSearchHandler creates a new SearchHandler
func NewSearchHandler(searchEngine *usecase.SearchEngine, recentSearches *usecase.RecentSearches) *SearchHandler {
	return &SearchHandler{
		searchEngine:   searchEngine,
		recentSearches: recentSearches,
	}
}

// Search runs a ranked full-text search with filters. An empty q browses with
// filters only.
// GET /api/search?q=beach&mood=happy&from=2026-01-01&to=2026-01-31&page=0&limit=20
func (h *SearchHandler) Search(c *gin.Context) {
	userID := c.GetString("userID")

	page, _ := strconv.Atoi(c.DefaultQuery("page", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	startDate, endDate := parseDateBounds(c.Query("from"), c.Query("to"))

	filters := usecase.SearchFilters{
		Mood:      c.Query("mood"),
		StartDate: startDate,
		EndDate:   endDate,
	}

	result, err := h.searchEngine.Search(userID, c.Query("q"), filters, page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// ListRecentSearches returns the user's search history, newest first
// GET /api/search/recent?limit=20
func (h *SearchHandler) ListRecentSearches(c *gin.Context) {
	userID := c.GetString("userID")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	searches, err := h.recentSearches.List(userID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"searches": searches})
}

// DeleteRecentSearch removes one remembered query
// DELETE /api/search/recent/:id
func (h *SearchHandler) DeleteRecentSearch(c *gin.Context) {
	userID := c.GetString("userID")

	if err := h.recentSearches.Delete(userID, c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// ClearRecentSearches wipes the user's search history
// DELETE /api/search/recent
func (h *SearchHandler) ClearRecentSearches(c *gin.Context) {
	userID := c.GetString("userID")

	if err := h.recentSearches.Clear(userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"cleared": true})
}
