package repository

import (
	"errors"
	"time"

	journaldomain "mindlog-backend/internal/journal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SummaryRepository defines the interface for AI summary persistence
type SummaryRepository interface {
	// Upsert writes the summary keyed by (user, type, start, end); repeated
	// writes for the same range overwrite rather than duplicate
	Upsert(summary *journaldomain.Summary) error
	// FindByPeriod returns the summary for an exact range, or nil
	FindByPeriod(userID string, typ journaldomain.SummaryType, start, end time.Time) (*journaldomain.Summary, error)
	// FindByUser lists summaries newest range first; typ == "" means all types
	FindByUser(userID string, typ journaldomain.SummaryType, limit int) ([]*journaldomain.Summary, error)
	// FindDailyInRange returns daily summaries whose start date falls within
	// [start, end], oldest first. Weekly generation reads these, never raw entries.
	FindDailyInRange(userID string, start, end time.Time) ([]*journaldomain.Summary, error)
}

// gormSummaryRepository implements SummaryRepository using GORM
type gormSummaryRepository struct {
	db *gorm.DB
}

// NewSummaryRepository creates a new instance of gormSummaryRepository
func NewSummaryRepository(db *gorm.DB) SummaryRepository {
	return &gormSummaryRepository{db: db}
}

func (r *gormSummaryRepository) Upsert(summary *journaldomain.Summary) error {
	var existing journaldomain.Summary
	err := r.db.Where("user_id = ? AND type = ? AND start_date = ? AND end_date = ?",
		summary.UserID, summary.Type, summary.StartDate, summary.EndDate).
		First(&existing).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		if summary.ID == "" {
			summary.ID = uuid.New().String()
		}
		return r.db.Create(summary).Error
	} else if err != nil {
		return err
	}

	existing.Content = summary.Content
	existing.EntryCount = summary.EntryCount
	existing.GeneratedAt = summary.GeneratedAt
	existing.Metadata = summary.Metadata
	if err := r.db.Save(&existing).Error; err != nil {
		return err
	}
	*summary = existing
	return nil
}

func (r *gormSummaryRepository) FindByPeriod(userID string, typ journaldomain.SummaryType, start, end time.Time) (*journaldomain.Summary, error) {
	var summary journaldomain.Summary
	err := r.db.Where("user_id = ? AND type = ? AND start_date = ? AND end_date = ?",
		userID, typ, start, end).
		First(&summary).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &summary, nil
}

func (r *gormSummaryRepository) FindByUser(userID string, typ journaldomain.SummaryType, limit int) ([]*journaldomain.Summary, error) {
	query := r.db.Where("user_id = ?", userID)
	if typ != "" {
		query = query.Where("type = ?", typ)
	}

	var summaries []*journaldomain.Summary
	err := query.Order("start_date DESC").Limit(limit).Find(&summaries).Error
	return summaries, err
}

func (r *gormSummaryRepository) FindDailyInRange(userID string, start, end time.Time) ([]*journaldomain.Summary, error) {
	var summaries []*journaldomain.Summary
	err := r.db.Where("user_id = ? AND type = ? AND start_date >= ? AND start_date <= ?",
		userID, journaldomain.SummaryTypeDaily, start, end).
		Order("start_date ASC").
		Find(&summaries).Error
	return summaries, err
}
