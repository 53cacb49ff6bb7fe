package usecase

import (
	"log"
	"strings"
	"time"
	"unicode"

	journaldomain "mindlog-backend/internal/journal/domain"
	"mindlog-backend/internal/journal/repository"
	"mindlog-backend/pkg/highlight"
)

const (
	searchDefaultLimit = 20
	searchMaxLimit     = 100

	// minTokenLength drops stop-word-ish short tokens before matching; a
	// query of only short tokens behaves as an empty query
	minTokenLength = 3

	highlightLength = 200
)

// SearchFilters narrows a search beyond the query text
type SearchFilters struct {
	Mood      string
	StartDate *time.Time
	EndDate   *time.Time
}

// SearchResult wraps an entry with its result position and display excerpt
type SearchResult struct {
	Entry     *journaldomain.JournalEntry `json:"entry"`
	Rank      int                         `json:"rank"`
	Highlight string                      `json:"highlight"`
}

// SearchPage is one page of ranked results
type SearchPage struct {
	Results []SearchResult `json:"results"`
	Total   int64          `json:"total"`
	HasMore bool           `json:"has_more"`
}

// SearchEngine compiles user queries against the store's full-text index and
// produces ranked, highlighted, user-scoped results. An empty query degrades
// to a plain filtered listing, which is a legal browse mode.
type SearchEngine struct {
	entryRepo      repository.EntryRepository
	recentSearches *RecentSearches
}

// NewSearchEngine creates a new SearchEngine
func NewSearchEngine(entryRepo repository.EntryRepository, recentSearches *RecentSearches) *SearchEngine {
	return &SearchEngine{
		entryRepo:      entryRepo,
		recentSearches: recentSearches,
	}
}

// Search runs one paginated search for the user
func (e *SearchEngine) Search(userID, query string, filters SearchFilters, page, limit int) (*SearchPage, error) {
	if page < 0 {
		page = 0
	}
	if limit <= 0 {
		limit = searchDefaultLimit
	}
	if limit > searchMaxLimit {
		limit = searchMaxLimit
	}

	terms := tokenizeQuery(query)

	entries, total, err := e.entryRepo.Search(repository.SearchParams{
		UserID:    userID,
		Terms:     terms,
		Mood:      filters.Mood,
		StartDate: filters.StartDate,
		EndDate:   filters.EndDate,
		Limit:     limit,
		Offset:    page * limit,
	})
	if err != nil {
		return nil, err
	}

	results := make([]SearchResult, len(entries))
	for i, entry := range entries {
		results[i] = SearchResult{
			Entry:     entry,
			Rank:      page*limit + i + 1,
			Highlight: highlight.Highlight(entry.Content, query, highlightLength),
		}
	}

	// History recording is best-effort and never fails the search
	if trimmed := strings.TrimSpace(query); trimmed != "" {
		if err := e.recentSearches.Save(userID, trimmed); err != nil {
			log.Printf("[Search] Failed to record recent search for user %s: %v", userID, err)
		}
	}

	return &SearchPage{
		Results: results,
		Total:   total,
		HasMore: int64((page+1)*limit) < total,
	}, nil
}

// tokenizeQuery splits a raw query into sanitized full-text tokens: lowercase,
// alphanumeric only, short tokens dropped. The sanitization doubles as escaping
// for the tsquery the repository builds.
func tokenizeQuery(query string) []string {
	var terms []string
	for _, field := range strings.Fields(query) {
		var b strings.Builder
		for _, r := range field {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				b.WriteRune(unicode.ToLower(r))
			}
		}
		if tok := b.String(); len(tok) >= minTokenLength {
			terms = append(terms, tok)
		}
	}
	return terms
}
