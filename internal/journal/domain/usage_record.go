package domain

import "time"

// OperationType is the kind of AI operation a usage record accounts for
type OperationType string

const (
	OperationSentiment OperationType = "sentiment"
	OperationSummary   OperationType = "summary"
)

// UsageRecord is one LLM call's token cost. Rows are append-only; they feed
// both billing visibility and the rate-limit windows, so they are never
// mutated or deleted.
type UsageRecord struct {
	ID            string        `json:"id" gorm:"primaryKey"`
	UserID        string        `json:"user_id" gorm:"index:idx_usage_user_created;not null"`
	OperationType OperationType `json:"operation_type" gorm:"not null"`
	Model         string        `json:"model"`
	TokensUsed    int           `json:"tokens_used"`
	CostUSD       float64       `json:"cost_usd"`
	CreatedAt     time.Time     `json:"created_at" gorm:"index:idx_usage_user_created"`
}

// TableName specifies the table name for GORM
func (UsageRecord) TableName() string {
	return "usage_records"
}
