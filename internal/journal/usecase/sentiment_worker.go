package usecase

import (
	"context"
	"log"
	"sync"

	journaldomain "mindlog-backend/internal/journal/domain"
	"mindlog-backend/internal/journal/repository"
)

// SentimentJob is one entry queued for background sentiment analysis
type SentimentJob struct {
	UserID  string
	EntryID string
	Content string
}

// SentimentWorker runs fire-and-forget sentiment analysis. Entry creation
// returns immediately; the eventual sentiment write is the only deferred
// mutation in the system and failing it leaves the entry valid with null
// sentiment fields.
type SentimentWorker struct {
	analyzer    *SentimentAnalyzer
	entryRepo   repository.EntryRepository
	jobQueue    chan SentimentJob
	workerWg    sync.WaitGroup
	workerCount int
	started     bool
	stopped     bool
	mu          sync.Mutex
}

// NewSentimentWorker creates a new sentiment worker pool
func NewSentimentWorker(analyzer *SentimentAnalyzer, entryRepo repository.EntryRepository, workerCount int) *SentimentWorker {
	if workerCount <= 0 {
		workerCount = 3
	}

	return &SentimentWorker{
		analyzer:    analyzer,
		entryRepo:   entryRepo,
		jobQueue:    make(chan SentimentJob, 500),
		workerCount: workerCount,
	}
}

// Start starts the workers
func (w *SentimentWorker) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.started {
		return
	}

	for i := 0; i < w.workerCount; i++ {
		w.workerWg.Add(1)
		go w.worker(i)
	}
	w.started = true
	log.Printf("[SentimentWorker] Started %d workers", w.workerCount)
}

// Stop drains the queue and stops all workers gracefully. Jobs queued after
// Stop are rejected rather than accepted into a closing queue.
func (w *SentimentWorker) Stop() {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	w.stopped = true
	close(w.jobQueue)
	w.mu.Unlock()

	w.workerWg.Wait()
	log.Println("[SentimentWorker] All workers stopped")
}

func (w *SentimentWorker) worker(id int) {
	defer w.workerWg.Done()

	for job := range w.jobQueue {
		w.processJob(job)
	}

	log.Printf("[SentimentWorker] Worker %d stopped", id)
}

// processJob is the error boundary for one analysis: nothing that happens in
// here can reach the entry-creation response path.
func (w *SentimentWorker) processJob(job SentimentJob) {
	outcome := w.analyzer.analyze(context.Background(), job.UserID, job.Content)
	if outcome.FellBack {
		// Leave the sentiment fields null so a later backfill can retry;
		// writing the neutral fallback would mark the entry as analyzed.
		log.Printf("[SentimentWorker] Skipped entry %s: %s", job.EntryID, outcome.Reason)
		return
	}

	err := w.entryRepo.UpdateSentiment(
		job.UserID, job.EntryID,
		outcome.Result.Score, outcome.Result.Magnitude,
		outcome.Result.PrimaryEmotion, w.analyzer.now(),
	)
	if err != nil {
		log.Printf("[SentimentWorker] Update failed for entry %s: %v", job.EntryID, err)
		return
	}

	log.Printf("[SentimentWorker] Analyzed entry %s (%s)", job.EntryID, outcome.Result.PrimaryEmotion)
}

// QueueJob adds a job to the queue without blocking; false means the queue is
// full or the worker has been stopped
func (w *SentimentWorker) QueueJob(job SentimentJob) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return false
	}

	select {
	case w.jobQueue <- job:
		return true
	default:
		return false
	}
}

// QueueEntry queues a freshly created entry for analysis
func (w *SentimentWorker) QueueEntry(entry *journaldomain.JournalEntry) bool {
	return w.QueueJob(SentimentJob{
		UserID:  entry.UserID,
		EntryID: entry.ID,
		Content: entry.Content,
	})
}
