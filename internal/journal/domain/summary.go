package domain

import "time"

// SummaryType distinguishes daily from weekly summaries
type SummaryType string

const (
	SummaryTypeDaily  SummaryType = "daily"
	SummaryTypeWeekly SummaryType = "weekly"
)

// Summary is an AI-generated narrative over a date range. At most one row
// exists per (user, type, start, end); writes go through an upsert.
type Summary struct {
	ID          string      `json:"id" gorm:"primaryKey"`
	UserID      string      `json:"user_id" gorm:"uniqueIndex:idx_user_period;not null"`
	Type        SummaryType `json:"type" gorm:"uniqueIndex:idx_user_period;not null"`
	Content     string      `json:"content" gorm:"type:text"`
	StartDate   time.Time   `json:"start_date" gorm:"uniqueIndex:idx_user_period"`
	EndDate     time.Time   `json:"end_date" gorm:"uniqueIndex:idx_user_period"`
	EntryCount  int         `json:"entry_count"`
	GeneratedAt time.Time   `json:"generated_at"`
	Metadata    string      `json:"metadata,omitempty" gorm:"type:text"`
}

// TableName specifies the table name for GORM
func (Summary) TableName() string {
	return "summaries"
}

// SummaryMetadata is the structured payload serialized into Summary.Metadata
type SummaryMetadata struct {
	WordCount   int      `json:"word_count"`
	KeyThemes   []string `json:"key_themes,omitempty"`
	OverallMood string   `json:"overall_mood,omitempty"`
	Insights    []string `json:"insights,omitempty"`
}
