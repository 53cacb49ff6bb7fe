package repository

import (
	"errors"
	"time"

	journaldomain "mindlog-backend/internal/journal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RecentSearchRepository defines the interface for a user's search history
type RecentSearchRepository interface {
	// Upsert refreshes the timestamp of an existing (user, query) row or
	// inserts a new one
	Upsert(userID, query string) error
	ListByUser(userID string, limit int) ([]*journaldomain.RecentSearch, error)
	// TrimToCap deletes all but the user's most recent max rows
	TrimToCap(userID string, max int) error
	Delete(userID, id string) error
	Clear(userID string) error
}

// gormRecentSearchRepository implements RecentSearchRepository using GORM
type gormRecentSearchRepository struct {
	db *gorm.DB
}

// NewRecentSearchRepository creates a new instance of gormRecentSearchRepository
func NewRecentSearchRepository(db *gorm.DB) RecentSearchRepository {
	return &gormRecentSearchRepository{db: db}
}

func (r *gormRecentSearchRepository) Upsert(userID, query string) error {
	var existing journaldomain.RecentSearch
	err := r.db.Where("user_id = ? AND query = ?", userID, query).First(&existing).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		search := journaldomain.RecentSearch{
			ID:        uuid.New().String(),
			UserID:    userID,
			Query:     query,
			CreatedAt: time.Now(),
		}
		return r.db.Create(&search).Error
	} else if err != nil {
		return err
	}

	existing.CreatedAt = time.Now()
	return r.db.Save(&existing).Error
}

func (r *gormRecentSearchRepository) ListByUser(userID string, limit int) ([]*journaldomain.RecentSearch, error) {
	var searches []*journaldomain.RecentSearch
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&searches).Error
	return searches, err
}

func (r *gormRecentSearchRepository) TrimToCap(userID string, max int) error {
	keep := r.db.Model(&journaldomain.RecentSearch{}).
		Select("id").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(max)

	return r.db.Where("user_id = ? AND id NOT IN (?)", userID, keep).
		Delete(&journaldomain.RecentSearch{}).Error
}

func (r *gormRecentSearchRepository) Delete(userID, id string) error {
	return r.db.Where("id = ? AND user_id = ?", id, userID).
		Delete(&journaldomain.RecentSearch{}).Error
}

func (r *gormRecentSearchRepository) Clear(userID string) error {
	return r.db.Where("user_id = ?", userID).
		Delete(&journaldomain.RecentSearch{}).Error
}
