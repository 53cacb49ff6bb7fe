package usecase

import (
	"testing"
	"time"

	journaldomain "mindlog-backend/internal/journal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWorker(client *fakeAIClient, entryRepo *fakeEntryRepo) *SentimentWorker {
	analyzer := NewSentimentAnalyzer(client, NewUsageTracker(&fakeUsageRepo{}), "gpt-4o-mini")
	analyzer.sleep = func(time.Duration) {}
	// One worker keeps the in-memory fakes free of concurrent access
	return NewSentimentWorker(analyzer, entryRepo, 1)
}

func TestWorkerWritesSentimentOnSuccess(t *testing.T) {
	client := &fakeAIClient{
		available: true,
		response:  `{"score": -0.6, "magnitude": 0.8, "primary_emotion": "anxious", "confidence": 0.85}`,
	}
	entryRepo := &fakeEntryRepo{}
	w := newTestWorker(client, entryRepo)

	w.Start()
	require.True(t, w.QueueJob(SentimentJob{UserID: "u1", EntryID: "e1", Content: "Worried about tomorrow."}))
	w.Stop()

	require.Len(t, entryRepo.updates, 1)
	update := entryRepo.updates[0]
	assert.Equal(t, "u1", update.userID)
	assert.Equal(t, "e1", update.entryID)
	assert.Equal(t, "anxious", update.emotion)
	assert.InDelta(t, -0.6, update.score, 1e-9)
	assert.InDelta(t, 0.8, update.magnitude, 1e-9)
}

func TestWorkerSkipsWriteOnFallback(t *testing.T) {
	// Unparseable model output collapses to the neutral fallback, which the
	// worker must not persist: the entry stays unanalyzed for backfill.
	client := &fakeAIClient{available: true, response: "sorry, I cannot help with that"}
	entryRepo := &fakeEntryRepo{}
	w := newTestWorker(client, entryRepo)

	w.Start()
	require.True(t, w.QueueJob(SentimentJob{UserID: "u1", EntryID: "e1", Content: "Some entry."}))
	w.Stop()

	assert.Empty(t, entryRepo.updates)
}

func TestWorkerSkipsWriteWhenLLMUnavailable(t *testing.T) {
	client := &fakeAIClient{available: false}
	entryRepo := &fakeEntryRepo{}
	w := newTestWorker(client, entryRepo)

	w.Start()
	require.True(t, w.QueueJob(SentimentJob{UserID: "u1", EntryID: "e1", Content: "Some entry."}))
	w.Stop()

	assert.Zero(t, client.calls)
	assert.Empty(t, entryRepo.updates)
}

func TestWorkerSurvivesUpdateFailure(t *testing.T) {
	client := &fakeAIClient{
		available: true,
		response:  `{"score": 0.2, "magnitude": 0.3, "primary_emotion": "calm", "confidence": 0.7}`,
	}
	entryRepo := &fakeEntryRepo{updateErr: assert.AnError}
	w := newTestWorker(client, entryRepo)

	w.Start()
	require.True(t, w.QueueJob(SentimentJob{UserID: "u1", EntryID: "e1", Content: "Fine."}))
	require.True(t, w.QueueJob(SentimentJob{UserID: "u1", EntryID: "e2", Content: "Also fine."}))
	w.Stop()

	// Both jobs processed despite the store failing; none reached the entry
	assert.Equal(t, 2, client.calls)
	assert.Empty(t, entryRepo.updates)
}

func TestQueueJobRejectsWhenFull(t *testing.T) {
	w := newTestWorker(&fakeAIClient{}, &fakeEntryRepo{})

	for i := 0; i < cap(w.jobQueue); i++ {
		require.True(t, w.QueueJob(SentimentJob{EntryID: "e"}))
	}
	assert.False(t, w.QueueJob(SentimentJob{EntryID: "overflow"}))
}

func TestQueueEntryCarriesEntryFields(t *testing.T) {
	w := newTestWorker(&fakeAIClient{}, &fakeEntryRepo{})

	entry := &journaldomain.JournalEntry{ID: "e1", UserID: "u1", Content: "Hello."}
	require.True(t, w.QueueEntry(entry))

	job := <-w.jobQueue
	assert.Equal(t, "u1", job.UserID)
	assert.Equal(t, "e1", job.EntryID)
	assert.Equal(t, "Hello.", job.Content)
}

func TestQueueJobAfterStopReturnsFalse(t *testing.T) {
	w := newTestWorker(&fakeAIClient{}, &fakeEntryRepo{})
	w.Start()
	w.Stop()

	// A late enqueue during shutdown is rejected, never a panic
	assert.False(t, w.QueueJob(SentimentJob{UserID: "u1", EntryID: "e1"}))
	assert.NotPanics(t, func() { w.Stop() })
}

func TestStartIsIdempotent(t *testing.T) {
	w := newTestWorker(&fakeAIClient{available: true, response: `{"score": 0, "magnitude": 0, "primary_emotion": "neutral", "confidence": 0.5}`}, &fakeEntryRepo{})

	w.Start()
	w.Start()
	w.Stop()
}
