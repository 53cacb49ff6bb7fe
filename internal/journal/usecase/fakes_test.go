package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	journaldomain "mindlog-backend/internal/journal/domain"
	"mindlog-backend/internal/journal/repository"
	"mindlog-backend/pkg/ai"

	"github.com/google/uuid"
)

// fakeAIClient is a canned-response ai.Client. The batch analyzer calls it
// from multiple goroutines, so bookkeeping is mutex-guarded.
type fakeAIClient struct {
	available        bool
	response         string
	promptTokens     int
	completionTokens int
	err              error

	mu           sync.Mutex
	calls        int
	lastMessages []ai.Message
	lastOptions  ai.Options
}

func (f *fakeAIClient) Complete(_ context.Context, messages []ai.Message, opts ai.Options) (*ai.Completion, error) {
	f.mu.Lock()
	f.calls++
	f.lastMessages = messages
	f.lastOptions = opts
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return &ai.Completion{
		Text:             f.response,
		PromptTokens:     f.promptTokens,
		CompletionTokens: f.completionTokens,
	}, nil
}

func (f *fakeAIClient) Available() bool { return f.available }

type sentimentUpdate struct {
	userID, entryID, emotion string
	score, magnitude         float64
}

// fakeEntryRepo implements repository.EntryRepository in memory
type fakeEntryRepo struct {
	entries       []*journaldomain.JournalEntry
	searchEntries []*journaldomain.JournalEntry
	searchTotal   int64
	searchErr     error
	searchParams  repository.SearchParams
	searchCalls   int
	rangeEntries  []*journaldomain.JournalEntry
	rangeCalls    int
	unanalyzed    []*journaldomain.JournalEntry
	updates       []sentimentUpdate
	updateErr     error
}

func (f *fakeEntryRepo) Create(entry *journaldomain.JournalEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	entry.CreatedAt = time.Now()
	entry.UpdatedAt = entry.CreatedAt
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeEntryRepo) FindByID(userID, id string) (*journaldomain.JournalEntry, error) {
	for _, e := range f.entries {
		if e.ID == id && e.UserID == userID {
			return e, nil
		}
	}
	return nil, nil
}

func (f *fakeEntryRepo) Delete(userID, id string) error { return nil }

func (f *fakeEntryRepo) Search(params repository.SearchParams) ([]*journaldomain.JournalEntry, int64, error) {
	f.searchCalls++
	f.searchParams = params
	if f.searchErr != nil {
		return nil, 0, f.searchErr
	}
	total := f.searchTotal
	if total == 0 {
		total = int64(len(f.searchEntries))
	}
	return f.searchEntries, total, nil
}

func (f *fakeEntryRepo) FindByDateRange(userID string, start, end time.Time) ([]*journaldomain.JournalEntry, error) {
	f.rangeCalls++
	return f.rangeEntries, nil
}

func (f *fakeEntryRepo) UpdateSentiment(userID, id string, score, magnitude float64, emotion string, analyzedAt time.Time) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updates = append(f.updates, sentimentUpdate{
		userID: userID, entryID: id, emotion: emotion,
		score: score, magnitude: magnitude,
	})
	return nil
}

func (f *fakeEntryRepo) FindUnanalyzed(userID string, limit int) ([]*journaldomain.JournalEntry, error) {
	if limit < len(f.unanalyzed) {
		return f.unanalyzed[:limit], nil
	}
	return f.unanalyzed, nil
}

// fakeSummaryRepo implements repository.SummaryRepository with upsert-by-key
// semantics so idempotency is observable
type fakeSummaryRepo struct {
	rows    map[string]*journaldomain.Summary
	dailies []*journaldomain.Summary
	upserts int
}

func newFakeSummaryRepo() *fakeSummaryRepo {
	return &fakeSummaryRepo{rows: make(map[string]*journaldomain.Summary)}
}

func summaryKey(userID string, typ journaldomain.SummaryType, start, end time.Time) string {
	return fmt.Sprintf("%s|%s|%d|%d", userID, typ, start.UnixNano(), end.UnixNano())
}

func (f *fakeSummaryRepo) Upsert(summary *journaldomain.Summary) error {
	f.upserts++
	key := summaryKey(summary.UserID, summary.Type, summary.StartDate, summary.EndDate)
	if existing, ok := f.rows[key]; ok {
		summary.ID = existing.ID
	} else if summary.ID == "" {
		summary.ID = uuid.New().String()
	}
	copied := *summary
	f.rows[key] = &copied
	return nil
}

func (f *fakeSummaryRepo) FindByPeriod(userID string, typ journaldomain.SummaryType, start, end time.Time) (*journaldomain.Summary, error) {
	if s, ok := f.rows[summaryKey(userID, typ, start, end)]; ok {
		return s, nil
	}
	return nil, nil
}

func (f *fakeSummaryRepo) FindByUser(userID string, typ journaldomain.SummaryType, limit int) ([]*journaldomain.Summary, error) {
	var out []*journaldomain.Summary
	for _, s := range f.rows {
		if s.UserID == userID && (typ == "" || s.Type == typ) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.After(out[j].StartDate) })
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeSummaryRepo) FindDailyInRange(userID string, start, end time.Time) ([]*journaldomain.Summary, error) {
	return f.dailies, nil
}

// fakeUsageRepo implements repository.UsageRepository in memory. Tracked from
// batch goroutines, so access is mutex-guarded.
type fakeUsageRepo struct {
	mu        sync.Mutex
	records   []*journaldomain.UsageRecord
	insertErr error
}

func (f *fakeUsageRepo) Insert(record *journaldomain.UsageRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return f.insertErr
	}
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	f.records = append(f.records, record)
	return nil
}

func (f *fakeUsageRepo) CountSince(userID string, op journaldomain.OperationType, since time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, r := range f.records {
		if r.UserID == userID && r.OperationType == op && !r.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func (f *fakeUsageRepo) CountAllSince(userID string, since time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, r := range f.records {
		if r.UserID == userID && !r.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func (f *fakeUsageRepo) FindSince(userID string, since time.Time) ([]*journaldomain.UsageRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*journaldomain.UsageRecord
	for _, r := range f.records {
		if r.UserID == userID && !r.CreatedAt.Before(since) {
			out = append(out, r)
		}
	}
	return out, nil
}

// fakeRecentSearchRepo implements repository.RecentSearchRepository with
// upsert-by-query semantics
type fakeRecentSearchRepo struct {
	rows        map[string]*journaldomain.RecentSearch // keyed by userID|query
	upsertCalls int
	trimCalls   int
	lastTrimCap int
}

func newFakeRecentSearchRepo() *fakeRecentSearchRepo {
	return &fakeRecentSearchRepo{rows: make(map[string]*journaldomain.RecentSearch)}
}

func (f *fakeRecentSearchRepo) Upsert(userID, query string) error {
	f.upsertCalls++
	key := userID + "|" + query
	if existing, ok := f.rows[key]; ok {
		existing.CreatedAt = time.Now()
		return nil
	}
	f.rows[key] = &journaldomain.RecentSearch{
		ID:        uuid.New().String(),
		UserID:    userID,
		Query:     query,
		CreatedAt: time.Now(),
	}
	return nil
}

func (f *fakeRecentSearchRepo) ListByUser(userID string, limit int) ([]*journaldomain.RecentSearch, error) {
	var out []*journaldomain.RecentSearch
	for _, r := range f.rows {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeRecentSearchRepo) TrimToCap(userID string, max int) error {
	f.trimCalls++
	f.lastTrimCap = max
	kept, _ := f.ListByUser(userID, max)
	keep := make(map[string]bool, len(kept))
	for _, r := range kept {
		keep[r.ID] = true
	}
	for key, r := range f.rows {
		if r.UserID == userID && !keep[r.ID] {
			delete(f.rows, key)
		}
	}
	return nil
}

func (f *fakeRecentSearchRepo) Delete(userID, id string) error {
	for key, r := range f.rows {
		if r.UserID == userID && r.ID == id {
			delete(f.rows, key)
		}
	}
	return nil
}

func (f *fakeRecentSearchRepo) Clear(userID string) error {
	for key, r := range f.rows {
		if r.UserID == userID {
			delete(f.rows, key)
		}
	}
	return nil
}
