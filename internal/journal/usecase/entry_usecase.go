package usecase

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	journaldomain "mindlog-backend/internal/journal/domain"
	"mindlog-backend/internal/journal/repository"
)

// ErrEntryNotFound is returned when an entry does not exist for the user
var ErrEntryNotFound = errors.New("entry not found")

const backfillBatchLimit = 100

// EntryUsecase is the thin CRUD layer around journal entries. Its one
// nontrivial job is dispatching the fire-and-forget sentiment analysis on
// create; the response never waits on the analyzer.
type EntryUsecase struct {
	entryRepo repository.EntryRepository
	worker    *SentimentWorker
}

// NewEntryUsecase creates a new EntryUsecase
func NewEntryUsecase(entryRepo repository.EntryRepository, worker *SentimentWorker) *EntryUsecase {
	return &EntryUsecase{
		entryRepo: entryRepo,
		worker:    worker,
	}
}

// Create validates and stores a new entry, then queues sentiment analysis
func (u *EntryUsecase) Create(userID, content, mood string) (*journaldomain.JournalEntry, error) {
	if strings.TrimSpace(content) == "" {
		return nil, errors.New("content must not be empty")
	}
	if len(content) > journaldomain.MaxContentLength {
		return nil, fmt.Errorf("content exceeds %d characters", journaldomain.MaxContentLength)
	}
	if mood != "" && !journaldomain.Mood(mood).Valid() {
		return nil, fmt.Errorf("unknown mood %q", mood)
	}

	entry := &journaldomain.JournalEntry{
		UserID:  userID,
		Content: content,
		Mood:    mood,
	}
	if err := u.entryRepo.Create(entry); err != nil {
		return nil, err
	}

	if u.worker != nil && !u.worker.QueueEntry(entry) {
		log.Printf("[Entry] Sentiment queue full, skipping analysis for entry %s", entry.ID)
	}

	return entry, nil
}

// GetByID returns one of the user's entries
func (u *EntryUsecase) GetByID(userID, id string) (*journaldomain.JournalEntry, error) {
	entry, err := u.entryRepo.FindByID(userID, id)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, ErrEntryNotFound
	}
	return entry, nil
}

// List returns a filtered page of the user's entries, newest first
func (u *EntryUsecase) List(userID string, mood string, startDate, endDate *time.Time, page, limit int) ([]*journaldomain.JournalEntry, int64, error) {
	if page < 0 {
		page = 0
	}
	if limit <= 0 {
		limit = searchDefaultLimit
	}
	if limit > searchMaxLimit {
		limit = searchMaxLimit
	}

	return u.entryRepo.Search(repository.SearchParams{
		UserID:    userID,
		Mood:      mood,
		StartDate: startDate,
		EndDate:   endDate,
		Limit:     limit,
		Offset:    page * limit,
	})
}

// Delete removes one of the user's entries; deleting an absent row is not an error
func (u *EntryUsecase) Delete(userID, id string) error {
	return u.entryRepo.Delete(userID, id)
}

// Backfill queues entries that were never analyzed (for example because the
// LLM was down or the queue was full at create time). Returns how many were queued.
func (u *EntryUsecase) Backfill(userID string) (int, error) {
	entries, err := u.entryRepo.FindUnanalyzed(userID, backfillBatchLimit)
	if err != nil {
		return 0, err
	}

	queued := 0
	for _, entry := range entries {
		if u.worker.QueueEntry(entry) {
			queued++
		}
	}
	return queued, nil
}
