package delivery

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"mindlog-backend/internal/journal/usecase"

	"github.com/gin-gonic/gin"
)

// EntryHandler handles journal entry HTTP requests
type EntryHandler struct {
	entryUsecase *usecase.EntryUsecase
}

// NewEntryHandler creates a new EntryHandler
func NewEntryHandler(entryUsecase *usecase.EntryUsecase) *EntryHandler {
	return &EntryHandler{entryUsecase: entryUsecase}
}

// CreateEntryRequest represents the request body for creating an entry
type CreateEntryRequest struct {
	Content string `json:"content" binding:"required"`
	Mood    string `json:"mood"`
}

// CreateEntry stores a new entry and dispatches background sentiment analysis
// POST /api/entries
func (h *EntryHandler) CreateEntry(c *gin.Context) {
	userID := c.GetString("userID")

	var req CreateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry, err := h.entryUsecase.Create(userID, req.Content, req.Mood)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, entry)
}

// GetEntry returns one entry
// GET /api/entries/:id
func (h *EntryHandler) GetEntry(c *gin.Context) {
	userID := c.GetString("userID")

	entry, err := h.entryUsecase.GetByID(userID, c.Param("id"))
	if err != nil {
		if errors.Is(err, usecase.ErrEntryNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "entry not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, entry)
}

// ListEntries returns a filtered page of entries
// GET /api/entries?mood=happy&from=2026-01-01&to=2026-01-31&page=0&limit=20
func (h *EntryHandler) ListEntries(c *gin.Context) {
	userID := c.GetString("userID")

	page, _ := strconv.Atoi(c.DefaultQuery("page", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	startDate, endDate := parseDateBounds(c.Query("from"), c.Query("to"))

	entries, total, err := h.entryUsecase.List(userID, c.Query("mood"), startDate, endDate, page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"entries": entries,
		"total":   total,
	})
}

// DeleteEntry removes one entry
// DELETE /api/entries/:id
func (h *EntryHandler) DeleteEntry(c *gin.Context) {
	userID := c.GetString("userID")

	if err := h.entryUsecase.Delete(userID, c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// parseDateBounds turns from/to query params into inclusive created-at bounds.
// "to" is widened to the end of its day so a date-only bound includes the day.
func parseDateBounds(from, to string) (*time.Time, *time.Time) {
	var start, end *time.Time
	if t, err := time.Parse("2006-01-02", from); err == nil {
		start = &t
	}
	if t, err := time.Parse("2006-01-02", to); err == nil {
		e := t.Add(24*time.Hour - time.Nanosecond)
		end = &e
	}
	return start, end
}
