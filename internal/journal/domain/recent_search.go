package domain

import "time"

// RecentSearchCap is the most-recent history kept per user; older rows are evicted
const RecentSearchCap = 20

// RecentSearch is one remembered query. At most one row exists per
// (user, query); re-searching refreshes CreatedAt instead of duplicating.
type RecentSearch struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	UserID    string    `json:"user_id" gorm:"uniqueIndex:idx_user_query;not null"`
	Query     string    `json:"query" gorm:"uniqueIndex:idx_user_query;not null"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM
func (RecentSearch) TableName() string {
	return "recent_searches"
}
