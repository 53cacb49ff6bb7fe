package usecase

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	journaldomain "mindlog-backend/internal/journal/domain"
	"mindlog-backend/pkg/ai"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validSummaryResponse = `{"summary": "You spent the day outdoors and felt lighter for it.", "key_themes": ["nature", "rest"], "overall_mood": "content", "insights": ["Time outside lifts your mood."]}`

func newTestGenerator(client *fakeAIClient, entryRepo *fakeEntryRepo, summaryRepo *fakeSummaryRepo, usageRepo *fakeUsageRepo) *SummaryGenerator {
	return NewSummaryGenerator(client, entryRepo, summaryRepo, NewUsageTracker(usageRepo), "gpt-4o-mini")
}

func testDate() time.Time {
	return time.Date(2026, 8, 29, 15, 30, 0, 0, time.UTC)
}

func TestGenerateDailyEmptyDayReturnsNil(t *testing.T) {
	client := &fakeAIClient{available: true, response: validSummaryResponse}
	g := newTestGenerator(client, &fakeEntryRepo{}, newFakeSummaryRepo(), &fakeUsageRepo{})

	summary, err := g.GenerateDaily(context.Background(), "u1", testDate(), false)

	require.NoError(t, err)
	assert.Nil(t, summary)
	assert.Zero(t, client.calls, "an empty day must not cost an LLM call")
}

func TestGenerateDailyReturnsCachedAfterPeriodClosed(t *testing.T) {
	client := &fakeAIClient{available: true, response: validSummaryResponse}
	entryRepo := &fakeEntryRepo{}
	summaryRepo := newFakeSummaryRepo()
	g := newTestGenerator(client, entryRepo, summaryRepo, &fakeUsageRepo{})

	start, end := dayBounds(testDate())
	cached := &journaldomain.Summary{
		UserID: "u1", Type: journaldomain.SummaryTypeDaily,
		StartDate: start, EndDate: end, Content: "already generated",
		GeneratedAt: end.Add(time.Hour),
	}
	require.NoError(t, summaryRepo.Upsert(cached))

	summary, err := g.GenerateDaily(context.Background(), "u1", testDate(), false)

	require.NoError(t, err)
	require.NotNil(t, summary)
	assert.Equal(t, "already generated", summary.Content)
	// The day was over when the summary was written, so nothing is re-read
	assert.Zero(t, client.calls)
	assert.Zero(t, entryRepo.rangeCalls)
}

func TestGenerateDailyRegeneratesWhenEntriesArriveAfterCache(t *testing.T) {
	client := &fakeAIClient{available: true, response: validSummaryResponse}
	start, end := dayBounds(testDate())
	entryRepo := &fakeEntryRepo{rangeEntries: []*journaldomain.JournalEntry{
		{ID: "e1", UserID: "u1", Content: "Slow morning", CreatedAt: start.Add(9 * time.Hour)},
		{ID: "e2", UserID: "u1", Content: "Busy evening", CreatedAt: start.Add(17 * time.Hour)},
	}}
	summaryRepo := newFakeSummaryRepo()
	cached := &journaldomain.Summary{
		UserID: "u1", Type: journaldomain.SummaryTypeDaily,
		StartDate: start, EndDate: end, Content: "only the morning", EntryCount: 1,
		GeneratedAt: start.Add(12 * time.Hour),
	}
	require.NoError(t, summaryRepo.Upsert(cached))

	g := newTestGenerator(client, entryRepo, summaryRepo, &fakeUsageRepo{})

	summary, err := g.GenerateDaily(context.Background(), "u1", testDate(), false)

	require.NoError(t, err)
	require.NotNil(t, summary)
	// The evening entry postdates the noon summary, so it must regenerate
	assert.Equal(t, 1, client.calls)
	assert.NotEqual(t, "only the morning", summary.Content)
	assert.Equal(t, 2, summary.EntryCount)
}

func TestGenerateDailyMidDayCacheFreshWithoutNewEntries(t *testing.T) {
	client := &fakeAIClient{available: true, response: validSummaryResponse}
	start, end := dayBounds(testDate())
	entryRepo := &fakeEntryRepo{rangeEntries: []*journaldomain.JournalEntry{
		{ID: "e1", UserID: "u1", Content: "Slow morning", CreatedAt: start.Add(9 * time.Hour)},
	}}
	summaryRepo := newFakeSummaryRepo()
	cached := &journaldomain.Summary{
		UserID: "u1", Type: journaldomain.SummaryTypeDaily,
		StartDate: start, EndDate: end, Content: "the morning so far", EntryCount: 1,
		GeneratedAt: start.Add(12 * time.Hour),
	}
	require.NoError(t, summaryRepo.Upsert(cached))

	g := newTestGenerator(client, entryRepo, summaryRepo, &fakeUsageRepo{})

	summary, err := g.GenerateDaily(context.Background(), "u1", testDate(), false)

	require.NoError(t, err)
	require.NotNil(t, summary)
	assert.Equal(t, "the morning so far", summary.Content)
	assert.Zero(t, client.calls)
}

func TestGenerateDailyPersistsViaUpsert(t *testing.T) {
	client := &fakeAIClient{available: true, response: validSummaryResponse, promptTokens: 200, completionTokens: 80}
	entryRepo := &fakeEntryRepo{rangeEntries: []*journaldomain.JournalEntry{
		{ID: "e1", UserID: "u1", Content: "Walked in the park", Mood: "calm", CreatedAt: testDate()},
		{ID: "e2", UserID: "u1", Content: "Read a book", CreatedAt: testDate().Add(time.Hour)},
	}}
	summaryRepo := newFakeSummaryRepo()
	usageRepo := &fakeUsageRepo{}
	g := newTestGenerator(client, entryRepo, summaryRepo, usageRepo)

	summary, err := g.GenerateDaily(context.Background(), "u1", testDate(), false)

	require.NoError(t, err)
	require.NotNil(t, summary)
	assert.Equal(t, journaldomain.SummaryTypeDaily, summary.Type)
	assert.Equal(t, 2, summary.EntryCount)
	assert.NotEmpty(t, summary.Content)

	var meta journaldomain.SummaryMetadata
	require.NoError(t, json.Unmarshal([]byte(summary.Metadata), &meta))
	assert.Equal(t, []string{"nature", "rest"}, meta.KeyThemes)
	assert.Equal(t, "content", meta.OverallMood)

	// Token accounting for the call
	require.Len(t, usageRepo.records, 1)
	assert.Equal(t, 280, usageRepo.records[0].TokensUsed)
	assert.Equal(t, journaldomain.OperationSummary, usageRepo.records[0].OperationType)
}

func TestGenerateDailyIsIdempotentPerRange(t *testing.T) {
	client := &fakeAIClient{available: true, response: validSummaryResponse}
	entryRepo := &fakeEntryRepo{rangeEntries: []*journaldomain.JournalEntry{
		{ID: "e1", UserID: "u1", Content: "Walked in the park", CreatedAt: testDate()},
	}}
	summaryRepo := newFakeSummaryRepo()
	g := newTestGenerator(client, entryRepo, summaryRepo, &fakeUsageRepo{})

	first, err := g.GenerateDaily(context.Background(), "u1", testDate(), false)
	require.NoError(t, err)
	second, err := g.GenerateDaily(context.Background(), "u1", testDate(), true)
	require.NoError(t, err)

	// Regeneration overwrites the same row, never duplicating
	assert.Len(t, summaryRepo.rows, 1)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 2, summaryRepo.upserts)
}

func TestGenerateDailyPropagatesValidationError(t *testing.T) {
	client := &fakeAIClient{available: true, response: "I had trouble summarizing this day."}
	entryRepo := &fakeEntryRepo{rangeEntries: []*journaldomain.JournalEntry{
		{ID: "e1", UserID: "u1", Content: "Walked", CreatedAt: testDate()},
	}}
	summaryRepo := newFakeSummaryRepo()
	g := newTestGenerator(client, entryRepo, summaryRepo, &fakeUsageRepo{})

	summary, err := g.GenerateDaily(context.Background(), "u1", testDate(), false)

	assert.Nil(t, summary)
	var vErr *ai.ValidationError
	assert.ErrorAs(t, err, &vErr)
	assert.Empty(t, summaryRepo.rows, "no row may persist for a failed generation")
}

func TestGenerateDailyWhenLLMUnconfigured(t *testing.T) {
	client := &fakeAIClient{available: false}
	entryRepo := &fakeEntryRepo{rangeEntries: []*journaldomain.JournalEntry{
		{ID: "e1", UserID: "u1", Content: "Walked", CreatedAt: testDate()},
	}}
	g := newTestGenerator(client, entryRepo, newFakeSummaryRepo(), &fakeUsageRepo{})

	_, err := g.GenerateDaily(context.Background(), "u1", testDate(), false)

	assert.True(t, ai.IsAuthError(err))
	assert.Zero(t, client.calls)
}

func TestGenerateDailyRateLimited(t *testing.T) {
	usageRepo := &fakeUsageRepo{}
	for i := 0; i < 5; i++ {
		usageRepo.records = append(usageRepo.records, &journaldomain.UsageRecord{
			UserID:        "u1",
			OperationType: journaldomain.OperationSummary,
			CreatedAt:     time.Now(),
		})
	}

	client := &fakeAIClient{available: true, response: validSummaryResponse}
	entryRepo := &fakeEntryRepo{rangeEntries: []*journaldomain.JournalEntry{
		{ID: "e1", UserID: "u1", Content: "Walked", CreatedAt: testDate()},
	}}
	g := newTestGenerator(client, entryRepo, newFakeSummaryRepo(), usageRepo)

	_, err := g.GenerateDaily(context.Background(), "u1", testDate(), false)

	assert.True(t, ai.IsRateLimitError(err))
	assert.Zero(t, client.calls, "the quota check must run before the LLM call")
}

func TestGenerateWeeklyBuildsOnDailySummaries(t *testing.T) {
	client := &fakeAIClient{available: true, response: validSummaryResponse}
	entryRepo := &fakeEntryRepo{}
	summaryRepo := newFakeSummaryRepo()
	summaryRepo.dailies = []*journaldomain.Summary{
		{UserID: "u1", Type: journaldomain.SummaryTypeDaily, Content: "Monday was slow.", EntryCount: 2, StartDate: testDate().AddDate(0, 0, -5)},
		{UserID: "u1", Type: journaldomain.SummaryTypeDaily, Content: "Tuesday picked up.", EntryCount: 3, StartDate: testDate().AddDate(0, 0, -4)},
	}
	g := newTestGenerator(client, entryRepo, summaryRepo, &fakeUsageRepo{})

	summary, err := g.GenerateWeekly(context.Background(), "u1", testDate(), false)

	require.NoError(t, err)
	require.NotNil(t, summary)
	assert.Equal(t, journaldomain.SummaryTypeWeekly, summary.Type)
	assert.Equal(t, 5, summary.EntryCount)
	// Weekly generation summarizes summaries, never raw entries
	assert.Zero(t, entryRepo.rangeCalls)

	require.Len(t, client.lastMessages, 2)
	assert.Contains(t, client.lastMessages[1].Content, "Monday was slow.")
	assert.Contains(t, client.lastMessages[1].Content, "Tuesday picked up.")
}

func TestGenerateWeeklyRegeneratesWhenDailyIsNewer(t *testing.T) {
	client := &fakeAIClient{available: true, response: validSummaryResponse}
	dayStart, end := dayBounds(testDate())
	start := dayStart.AddDate(0, 0, -6)

	summaryRepo := newFakeSummaryRepo()
	cached := &journaldomain.Summary{
		UserID: "u1", Type: journaldomain.SummaryTypeWeekly,
		StartDate: start, EndDate: end, Content: "last look at the week",
		GeneratedAt: dayStart.Add(10 * time.Hour),
	}
	require.NoError(t, summaryRepo.Upsert(cached))
	summaryRepo.dailies = []*journaldomain.Summary{
		{UserID: "u1", Type: journaldomain.SummaryTypeDaily, Content: "Fresh daily.", EntryCount: 1,
			StartDate: dayStart, GeneratedAt: dayStart.Add(14 * time.Hour)},
	}

	g := newTestGenerator(client, &fakeEntryRepo{}, summaryRepo, &fakeUsageRepo{})

	summary, err := g.GenerateWeekly(context.Background(), "u1", testDate(), false)

	require.NoError(t, err)
	require.NotNil(t, summary)
	// A daily summary newer than the cached week invalidates it
	assert.Equal(t, 1, client.calls)
	assert.NotEqual(t, "last look at the week", summary.Content)
}

func TestGenerateWeeklyReturnsCachedAfterPeriodClosed(t *testing.T) {
	client := &fakeAIClient{available: true, response: validSummaryResponse}
	dayStart, end := dayBounds(testDate())
	start := dayStart.AddDate(0, 0, -6)

	summaryRepo := newFakeSummaryRepo()
	cached := &journaldomain.Summary{
		UserID: "u1", Type: journaldomain.SummaryTypeWeekly,
		StartDate: start, EndDate: end, Content: "the finished week",
		GeneratedAt: end.Add(time.Hour),
	}
	require.NoError(t, summaryRepo.Upsert(cached))

	g := newTestGenerator(client, &fakeEntryRepo{}, summaryRepo, &fakeUsageRepo{})

	summary, err := g.GenerateWeekly(context.Background(), "u1", testDate(), false)

	require.NoError(t, err)
	require.NotNil(t, summary)
	assert.Equal(t, "the finished week", summary.Content)
	assert.Zero(t, client.calls)
}

func TestGenerateWeeklyEmptyWeekReturnsNil(t *testing.T) {
	client := &fakeAIClient{available: true, response: validSummaryResponse}
	g := newTestGenerator(client, &fakeEntryRepo{}, newFakeSummaryRepo(), &fakeUsageRepo{})

	summary, err := g.GenerateWeekly(context.Background(), "u1", testDate(), false)

	require.NoError(t, err)
	assert.Nil(t, summary)
	assert.Zero(t, client.calls)
}

func TestGetSummariesRejectsUnknownType(t *testing.T) {
	g := newTestGenerator(&fakeAIClient{}, &fakeEntryRepo{}, newFakeSummaryRepo(), &fakeUsageRepo{})

	_, err := g.GetSummaries("u1", "monthly", 10)

	assert.Error(t, err)
}

func TestGetSummariesOrderedNewestFirst(t *testing.T) {
	summaryRepo := newFakeSummaryRepo()
	old := &journaldomain.Summary{UserID: "u1", Type: journaldomain.SummaryTypeDaily, StartDate: testDate().AddDate(0, 0, -3), EndDate: testDate().AddDate(0, 0, -3)}
	recent := &journaldomain.Summary{UserID: "u1", Type: journaldomain.SummaryTypeDaily, StartDate: testDate(), EndDate: testDate()}
	require.NoError(t, summaryRepo.Upsert(old))
	require.NoError(t, summaryRepo.Upsert(recent))

	g := newTestGenerator(&fakeAIClient{}, &fakeEntryRepo{}, summaryRepo, &fakeUsageRepo{})

	summaries, err := g.GetSummaries("u1", journaldomain.SummaryTypeDaily, 10)
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.True(t, summaries[0].StartDate.After(summaries[1].StartDate))
}
