package usecase

import (
	"strings"

	journaldomain "mindlog-backend/internal/journal/domain"
	"mindlog-backend/internal/journal/repository"
)

const recentSearchesMaxList = 100

// RecentSearches maintains a bounded, deduplicated history of a user's queries
type RecentSearches struct {
	repo repository.RecentSearchRepository
}

// NewRecentSearches creates a new RecentSearches store
func NewRecentSearches(repo repository.RecentSearchRepository) *RecentSearches {
	return &RecentSearches{repo: repo}
}

// Save records a query, refreshing the timestamp on a repeat and trimming the
// history to the cap. Blank queries are a no-op.
func (s *RecentSearches) Save(userID, query string) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	if err := s.repo.Upsert(userID, query); err != nil {
		return err
	}
	return s.repo.TrimToCap(userID, journaldomain.RecentSearchCap)
}

// List returns the user's history, newest first
func (s *RecentSearches) List(userID string, limit int) ([]*journaldomain.RecentSearch, error) {
	if limit <= 0 || limit > recentSearchesMaxList {
		limit = journaldomain.RecentSearchCap
	}
	return s.repo.ListByUser(userID, limit)
}

// Delete removes one remembered query; deleting an absent row is not an error
func (s *RecentSearches) Delete(userID, id string) error {
	return s.repo.Delete(userID, id)
}

// Clear wipes the user's history
func (s *RecentSearches) Clear(userID string) error {
	return s.repo.Clear(userID)
}
