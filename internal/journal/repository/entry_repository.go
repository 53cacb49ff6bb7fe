package repository

import (
	"errors"
	"time"

	journaldomain "mindlog-backend/internal/journal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SearchParams describes one filtered entry query. Terms holds sanitized
// full-text tokens; an empty slice means a plain filtered listing with no
// full-text predicate.
type SearchParams struct {
	UserID    string
	Terms     []string
	Mood      string
	StartDate *time.Time
	EndDate   *time.Time
	Limit     int
	Offset    int
}

// EntryRepository defines the interface for journal entry operations. This
// core owns the sentiment fields; everything else about an entry is plain CRUD.
type EntryRepository interface {
	Create(entry *journaldomain.JournalEntry) error
	FindByID(userID, id string) (*journaldomain.JournalEntry, error)
	Delete(userID, id string) error
	// Search runs a filtered, optionally full-text, paginated query and
	// returns the page plus the total match count
	Search(params SearchParams) ([]*journaldomain.JournalEntry, int64, error)
	// FindByDateRange returns all entries created within [start, end], oldest first
	FindByDateRange(userID string, start, end time.Time) ([]*journaldomain.JournalEntry, error)
	// UpdateSentiment writes the sentiment fields in a single atomic update
	UpdateSentiment(userID, id string, score, magnitude float64, emotion string, analyzedAt time.Time) error
	// FindUnanalyzed returns entries whose sentiment fields are still null
	FindUnanalyzed(userID string, limit int) ([]*journaldomain.JournalEntry, error)
}

// gormEntryRepository implements EntryRepository using GORM
type gormEntryRepository struct {
	db *gorm.DB
}

// NewEntryRepository creates a new instance of gormEntryRepository
func NewEntryRepository(db *gorm.DB) EntryRepository {
	return &gormEntryRepository{db: db}
}

func (r *gormEntryRepository) Create(entry *journaldomain.JournalEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	now := time.Now()
	entry.CreatedAt = now
	entry.UpdatedAt = now
	return r.db.Create(entry).Error
}

func (r *gormEntryRepository) FindByID(userID, id string) (*journaldomain.JournalEntry, error) {
	var entry journaldomain.JournalEntry
	err := r.db.Where("id = ? AND user_id = ?", id, userID).First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

func (r *gormEntryRepository) Delete(userID, id string) error {
	return r.db.Where("id = ? AND user_id = ?", id, userID).
		Delete(&journaldomain.JournalEntry{}).Error
}

func (r *gormEntryRepository) Search(params SearchParams) ([]*journaldomain.JournalEntry, int64, error) {
	query := r.db.Model(&journaldomain.JournalEntry{}).
		Where("user_id = ?", params.UserID)

	if params.Mood != "" {
		query = query.Where("mood = ?", params.Mood)
	}
	if params.StartDate != nil {
		query = query.Where("created_at >= ?", *params.StartDate)
	}
	if params.EndDate != nil {
		query = query.Where("created_at <= ?", *params.EndDate)
	}

	tsQuery := tsQueryString(params.Terms)
	if tsQuery != "" {
		query = query.Where(
			"to_tsvector('english', content) @@ to_tsquery('english', ?)", tsQuery)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// Ordering must stay total-order-consistent across pages, so id breaks
	// created_at ties either way.
	if tsQuery != "" {
		query = query.Order(clause.Expr{
			SQL:  "ts_rank(to_tsvector('english', content), to_tsquery('english', ?)) DESC",
			Vars: []interface{}{tsQuery},
		}).Order("created_at DESC, id DESC")
	} else {
		query = query.Order("created_at DESC, id DESC")
	}

	var entries []*journaldomain.JournalEntry
	err := query.Limit(params.Limit).Offset(params.Offset).Find(&entries).Error
	return entries, total, err
}

func (r *gormEntryRepository) FindByDateRange(userID string, start, end time.Time) ([]*journaldomain.JournalEntry, error) {
	var entries []*journaldomain.JournalEntry
	err := r.db.Where("user_id = ? AND created_at >= ? AND created_at <= ?", userID, start, end).
		Order("created_at ASC").
		Find(&entries).Error
	return entries, err
}

func (r *gormEntryRepository) UpdateSentiment(userID, id string, score, magnitude float64, emotion string, analyzedAt time.Time) error {
	return r.db.Model(&journaldomain.JournalEntry{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(map[string]interface{}{
			"sentiment_score":       score,
			"sentiment_magnitude":   magnitude,
			"primary_emotion":       emotion,
			"sentiment_analyzed_at": analyzedAt,
			"updated_at":            time.Now(),
		}).Error
}

func (r *gormEntryRepository) FindUnanalyzed(userID string, limit int) ([]*journaldomain.JournalEntry, error) {
	var entries []*journaldomain.JournalEntry
	err := r.db.Where("user_id = ? AND sentiment_analyzed_at IS NULL", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}

// tsQueryString joins sanitized tokens into a to_tsquery AND expression
func tsQueryString(terms []string) string {
	if len(terms) == 0 {
		return ""
	}
	out := terms[0]
	for _, t := range terms[1:] {
		out += " & " + t
	}
	return out
}
