package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	journaldomain "mindlog-backend/internal/journal/domain"
	"mindlog-backend/internal/journal/repository"
	"mindlog-backend/pkg/ai"
)

const (
	// summaryEntryMaxChars bounds how much of each entry goes into the prompt
	summaryEntryMaxChars = 1000

	summariesDefaultLimit = 20
	summariesMaxLimit     = 100
)

// summaryPayload is the structured response requested from the model
type summaryPayload struct {
	Summary     string   `json:"summary"`
	KeyThemes   []string `json:"key_themes"`
	OverallMood string   `json:"overall_mood"`
	Insights    []string `json:"insights"`
}

// SummaryGenerator aggregates entries (daily) or prior daily summaries
// (weekly) into a cached narrative. Generation is idempotent per range: the
// persisted row is an upsert keyed by (user, type, start, end).
type SummaryGenerator struct {
	client      ai.Client
	entryRepo   repository.EntryRepository
	summaryRepo repository.SummaryRepository
	tracker     *UsageTracker
	model       string
	now         func() time.Time
}

// NewSummaryGenerator creates a new SummaryGenerator
func NewSummaryGenerator(
	client ai.Client,
	entryRepo repository.EntryRepository,
	summaryRepo repository.SummaryRepository,
	tracker *UsageTracker,
	model string,
) *SummaryGenerator {
	return &SummaryGenerator{
		client:      client,
		entryRepo:   entryRepo,
		summaryRepo: summaryRepo,
		tracker:     tracker,
		model:       model,
		now:         time.Now,
	}
}

// GenerateDaily summarizes one day of entries. A day with no entries returns
// (nil, nil): nothing to summarize is a valid outcome, not an error.
//
// A cached summary is served only while it is still accurate: always once it
// was generated after the day closed, and mid-day only until a newer entry
// arrives. A stale mid-day cache regenerates so the narrative never silently
// omits later entries.
func (g *SummaryGenerator) GenerateDaily(ctx context.Context, userID string, date time.Time, force bool) (*journaldomain.Summary, error) {
	start, end := dayBounds(date)

	var cached *journaldomain.Summary
	if !force {
		var err error
		cached, err = g.summaryRepo.FindByPeriod(userID, journaldomain.SummaryTypeDaily, start, end)
		if err != nil {
			return nil, err
		}
		if cached != nil && cached.GeneratedAt.After(end) {
			return cached, nil
		}
	}

	entries, err := g.entryRepo.FindByDateRange(userID, start, end)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}

	// Entries come back oldest first, so the last one is the newest
	if cached != nil && !entries[len(entries)-1].CreatedAt.After(cached.GeneratedAt) {
		return cached, nil
	}

	var b strings.Builder
	for _, entry := range entries {
		content := truncateForPrompt(entry.Content, summaryEntryMaxChars)
		if entry.Mood != "" {
			fmt.Fprintf(&b, "[%s, feeling %s] %s\n\n", entry.CreatedAt.Format("15:04"), entry.Mood, content)
		} else {
			fmt.Fprintf(&b, "[%s] %s\n\n", entry.CreatedAt.Format("15:04"), content)
		}
	}

	payload, tokens, err := g.complete(ctx, userID, dailySummarySystemPrompt, b.String())
	if err != nil {
		return nil, err
	}

	summary := g.buildSummary(userID, journaldomain.SummaryTypeDaily, start, end, len(entries), payload)
	g.tracker.Track(userID, journaldomain.OperationSummary, g.model, tokens)

	if err := g.summaryRepo.Upsert(summary); err != nil {
		return nil, err
	}
	return summary, nil
}

// GenerateWeekly summarizes the prior seven days of already-generated daily
// summaries. Building on summaries rather than raw entries bounds the prompt
// size regardless of entry volume. A week with no daily summaries returns
// (nil, nil).
func (g *SummaryGenerator) GenerateWeekly(ctx context.Context, userID string, date time.Time, force bool) (*journaldomain.Summary, error) {
	dayStart, end := dayBounds(date)
	start := dayStart.AddDate(0, 0, -6)

	var cached *journaldomain.Summary
	if !force {
		var err error
		cached, err = g.summaryRepo.FindByPeriod(userID, journaldomain.SummaryTypeWeekly, start, end)
		if err != nil {
			return nil, err
		}
		if cached != nil && cached.GeneratedAt.After(end) {
			return cached, nil
		}
	}

	dailies, err := g.summaryRepo.FindDailyInRange(userID, start, end)
	if err != nil {
		return nil, err
	}
	if len(dailies) == 0 {
		return nil, nil
	}

	// The cached week stays valid until a daily summary inside it is
	// regenerated or added
	if cached != nil && !newestGeneratedAt(dailies).After(cached.GeneratedAt) {
		return cached, nil
	}

	var b strings.Builder
	entryCount := 0
	for _, daily := range dailies {
		fmt.Fprintf(&b, "%s (%d entries): %s\n\n",
			daily.StartDate.Format("Monday, Jan 2"), daily.EntryCount, daily.Content)
		entryCount += daily.EntryCount
	}

	payload, tokens, err := g.complete(ctx, userID, weeklySummarySystemPrompt, b.String())
	if err != nil {
		return nil, err
	}

	summary := g.buildSummary(userID, journaldomain.SummaryTypeWeekly, start, end, entryCount, payload)
	g.tracker.Track(userID, journaldomain.OperationSummary, g.model, tokens)

	if err := g.summaryRepo.Upsert(summary); err != nil {
		return nil, err
	}
	return summary, nil
}

// GetSummaries lists stored summaries, newest range first
func (g *SummaryGenerator) GetSummaries(userID string, typ journaldomain.SummaryType, limit int) ([]*journaldomain.Summary, error) {
	if typ != "" && typ != journaldomain.SummaryTypeDaily && typ != journaldomain.SummaryTypeWeekly {
		return nil, fmt.Errorf("unknown summary type %q", typ)
	}
	if limit <= 0 {
		limit = summariesDefaultLimit
	}
	if limit > summariesMaxLimit {
		limit = summariesMaxLimit
	}
	return g.summaryRepo.FindByUser(userID, typ, limit)
}

// complete runs the availability, rate-limit, call, parse sequence shared by
// both summary kinds. Unlike sentiment there is no safe default narrative, so
// failures propagate.
func (g *SummaryGenerator) complete(ctx context.Context, userID, systemPrompt, input string) (*summaryPayload, int, error) {
	if !g.client.Available() {
		return nil, 0, &ai.AuthError{Message: "LLM not configured"}
	}
	if !g.tracker.CheckRateLimit(userID, journaldomain.OperationSummary) {
		return nil, 0, &ai.RateLimitError{Message: "summary generation quota exceeded, try again later"}
	}

	completion, err := g.client.Complete(ctx, []ai.Message{
		{Role: ai.RoleSystem, Content: systemPrompt},
		{Role: ai.RoleUser, Content: input},
	}, ai.Options{
		Model:       g.model,
		Temperature: 0.6,
		MaxTokens:   600,
	})
	if err != nil {
		return nil, 0, err
	}

	payload, err := parseSummaryJSON(completion.Text)
	if err != nil {
		return nil, 0, err
	}
	return payload, completion.TotalTokens(), nil
}

func (g *SummaryGenerator) buildSummary(userID string, typ journaldomain.SummaryType, start, end time.Time, entryCount int, payload *summaryPayload) *journaldomain.Summary {
	metadata, _ := json.Marshal(journaldomain.SummaryMetadata{
		WordCount:   len(strings.Fields(payload.Summary)),
		KeyThemes:   payload.KeyThemes,
		OverallMood: payload.OverallMood,
		Insights:    payload.Insights,
	})

	return &journaldomain.Summary{
		UserID:      userID,
		Type:        typ,
		Content:     payload.Summary,
		StartDate:   start,
		EndDate:     end,
		EntryCount:  entryCount,
		GeneratedAt: g.now(),
		Metadata:    string(metadata),
	}
}

const dailySummarySystemPrompt = `You are a reflective journaling assistant. The user gives you all of their journal entries from a single day, each prefixed with its time and optional mood.
Write a short second-person narrative of their day. Respond with STRICT JSON only, no markdown fences:
{"summary": <2-4 sentence narrative>, "key_themes": [<2-4 short themes>], "overall_mood": <one word>, "insights": [<1-3 short observations>]}`

const weeklySummarySystemPrompt = `You are a reflective journaling assistant. The user gives you their daily journal summaries from the past week.
Write a short second-person narrative of their week, noting arcs and recurring themes. Respond with STRICT JSON only, no markdown fences:
{"summary": <3-5 sentence narrative>, "key_themes": [<2-4 short themes>], "overall_mood": <one word>, "insights": [<1-3 short observations>]}`

// parseSummaryJSON validates the model's structured response. A missing or
// empty narrative makes the whole response unusable.
func parseSummaryJSON(raw string) (*summaryPayload, error) {
	var payload summaryPayload
	cleaned := ai.ExtractJSONObject(raw)
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return nil, &ai.ValidationError{Message: "invalid summary JSON: " + err.Error()}
	}
	if strings.TrimSpace(payload.Summary) == "" {
		return nil, &ai.ValidationError{Message: "summary JSON missing narrative"}
	}
	return &payload, nil
}

// newestGeneratedAt returns the latest generation time among the summaries
func newestGeneratedAt(summaries []*journaldomain.Summary) time.Time {
	var latest time.Time
	for _, s := range summaries {
		if s.GeneratedAt.After(latest) {
			latest = s.GeneratedAt
		}
	}
	return latest
}

// dayBounds returns [startOfDay, endOfDay] for the date's UTC day
func dayBounds(date time.Time) (time.Time, time.Time) {
	d := date.UTC()
	start := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	end := start.Add(24*time.Hour - time.Nanosecond)
	return start, end
}
