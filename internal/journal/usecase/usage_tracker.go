package usecase

import (
	"log"
	"time"

	journaldomain "mindlog-backend/internal/journal/domain"
	"mindlog-backend/internal/journal/repository"
)

// pricePer1KTokens maps model names to a blended USD price per 1,000 tokens.
// Unrecognized models fall back to defaultPricePer1K.
var pricePer1KTokens = map[string]float64{
	"gpt-4o":        0.00750,
	"gpt-4o-mini":   0.00045,
	"gpt-4-turbo":   0.02000,
	"gpt-3.5-turbo": 0.00100,
}

const defaultPricePer1K = 0.00200

// rateLimit is one sliding-window quota
type rateLimit struct {
	Window time.Duration
	Max    int64
}

// Per-operation ceilings. Sentiment fires on every entry write so it gets a
// tight per-minute window; explicit summary generation is the most expensive
// call and gets a 15-minute window. Everything shares a general hourly ceiling.
var operationLimits = map[journaldomain.OperationType]rateLimit{
	journaldomain.OperationSentiment: {Window: time.Minute, Max: 10},
	journaldomain.OperationSummary:   {Window: 15 * time.Minute, Max: 5},
}

var globalLimit = rateLimit{Window: time.Hour, Max: 50}

// UserUsage aggregates a user's LLM spend for display
type UserUsage struct {
	TotalTokens     int                                 `json:"total_tokens"`
	TotalCostUSD    float64                             `json:"total_cost_usd"`
	OperationCounts map[journaldomain.OperationType]int `json:"operation_counts"`
}

// UsageTracker records every LLM call's token cost and enforces sliding-window
// quotas computed from the durable usage_records table, so limits hold across
// restarts and multiple server instances.
type UsageTracker struct {
	usageRepo repository.UsageRepository
	now       func() time.Time
}

// NewUsageTracker creates a new UsageTracker
func NewUsageTracker(usageRepo repository.UsageRepository) *UsageTracker {
	return &UsageTracker{
		usageRepo: usageRepo,
		now:       time.Now,
	}
}

// Track appends a usage record. Failures are logged and swallowed: losing a
// cost-accounting row is acceptable, failing a user-facing AI operation
// because accounting failed is not.
func (t *UsageTracker) Track(userID string, op journaldomain.OperationType, model string, tokensUsed int) {
	if tokensUsed < 0 {
		tokensUsed = 0
	}

	record := &journaldomain.UsageRecord{
		UserID:        userID,
		OperationType: op,
		Model:         model,
		TokensUsed:    tokensUsed,
		CostUSD:       costFor(model, tokensUsed),
		CreatedAt:     t.now(),
	}

	if err := t.usageRepo.Insert(record); err != nil {
		log.Printf("[Usage] Failed to record %s usage for user %s: %v", op, userID, err)
	}
}

// CheckRateLimit reports whether the user may perform another operation of
// this kind. Callers must check BEFORE invoking the LLM; checked after the
// fact the limiter is advisory only.
func (t *UsageTracker) CheckRateLimit(userID string, op journaldomain.OperationType) bool {
	now := t.now()

	if limit, ok := operationLimits[op]; ok {
		count, err := t.usageRepo.CountSince(userID, op, now.Add(-limit.Window))
		if err != nil {
			log.Printf("[Usage] Rate limit count failed for user %s: %v", userID, err)
			return false
		}
		if count >= limit.Max {
			return false
		}
	}

	count, err := t.usageRepo.CountAllSince(userID, now.Add(-globalLimit.Window))
	if err != nil {
		log.Printf("[Usage] Rate limit count failed for user %s: %v", userID, err)
		return false
	}
	return count < globalLimit.Max
}

// GetUserUsage aggregates the user's usage over the trailing number of days
func (t *UsageTracker) GetUserUsage(userID string, days int) (*UserUsage, error) {
	if days <= 0 {
		days = 30
	}

	records, err := t.usageRepo.FindSince(userID, t.now().AddDate(0, 0, -days))
	if err != nil {
		return nil, err
	}

	usage := &UserUsage{
		OperationCounts: make(map[journaldomain.OperationType]int),
	}
	for _, rec := range records {
		usage.TotalTokens += rec.TokensUsed
		usage.TotalCostUSD += rec.CostUSD
		usage.OperationCounts[rec.OperationType]++
	}
	return usage, nil
}

func costFor(model string, tokens int) float64 {
	price, ok := pricePer1KTokens[model]
	if !ok {
		price = defaultPricePer1K
	}
	return float64(tokens) / 1000.0 * price
}
