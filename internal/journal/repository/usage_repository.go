package repository

import (
	"time"

	journaldomain "mindlog-backend/internal/journal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UsageRepository defines the interface for LLM usage accounting. Records are
// append-only: the rate limiter counts them over trailing windows, so they
// must be durable rather than in-memory.
type UsageRepository interface {
	Insert(record *journaldomain.UsageRecord) error
	// CountSince counts one operation type's records in the trailing window
	CountSince(userID string, op journaldomain.OperationType, since time.Time) (int64, error)
	// CountAllSince counts records across all operation types
	CountAllSince(userID string, since time.Time) (int64, error)
	// FindSince returns the raw records for aggregation reads
	FindSince(userID string, since time.Time) ([]*journaldomain.UsageRecord, error)
}

// gormUsageRepository implements UsageRepository using GORM
type gormUsageRepository struct {
	db *gorm.DB
}

// NewUsageRepository creates a new instance of gormUsageRepository
func NewUsageRepository(db *gorm.DB) UsageRepository {
	return &gormUsageRepository{db: db}
}

func (r *gormUsageRepository) Insert(record *journaldomain.UsageRecord) error {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}
	return r.db.Create(record).Error
}

func (r *gormUsageRepository) CountSince(userID string, op journaldomain.OperationType, since time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&journaldomain.UsageRecord{}).
		Where("user_id = ? AND operation_type = ? AND created_at >= ?", userID, op, since).
		Count(&count).Error
	return count, err
}

func (r *gormUsageRepository) CountAllSince(userID string, since time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&journaldomain.UsageRecord{}).
		Where("user_id = ? AND created_at >= ?", userID, since).
		Count(&count).Error
	return count, err
}

func (r *gormUsageRepository) FindSince(userID string, since time.Time) ([]*journaldomain.UsageRecord, error) {
	var records []*journaldomain.UsageRecord
	err := r.db.Where("user_id = ? AND created_at >= ?", userID, since).
		Order("created_at DESC").
		Find(&records).Error
	return records, err
}
