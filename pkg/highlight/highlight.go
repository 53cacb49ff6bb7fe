package highlight

import (
	"strings"
	"unicode/utf8"
)

const (
	// MarkOpen and MarkClose wrap matched terms in returned excerpts
	MarkOpen  = "<mark>"
	MarkClose = "</mark>"

	// Ellipsis marks a window truncated relative to the full text
	Ellipsis = "..."

	// leftContext is how many characters of context precede the first match
	leftContext = 50

	// minTermLength filters short tokens that would produce noisy highlights
	minTermLength = 3
)

// Terms splits a raw query into the lowercased terms used for matching.
// Tokens shorter than three characters are dropped.
func Terms(query string) []string {
	var terms []string
	for _, tok := range strings.Fields(query) {
		if len(tok) >= minTermLength {
			terms = append(terms, strings.ToLower(tok))
		}
	}
	return terms
}

// Highlight returns an excerpt of text at most maxLength characters long,
// centered near the first case-insensitive occurrence of any query term, with
// every term occurrence inside the window wrapped in highlight markers. When
// nothing matches, the result is a plain truncation with no markers.
func Highlight(text, query string, maxLength int) string {
	if maxLength <= 0 || text == "" {
		return ""
	}

	terms := Terms(query)
	if len(terms) == 0 {
		return truncate(text, maxLength)
	}

	first := firstMatch(text, terms)
	if first < 0 {
		return truncate(text, maxLength)
	}

	start := first - leftContext
	if start < 0 {
		start = 0
	}
	end := start + maxLength
	if end > len(text) {
		end = len(text)
		start = end - maxLength
		if start < 0 {
			start = 0
		}
	}

	window := markTerms(text[start:end], terms)
	if start > 0 {
		window = Ellipsis + window
	}
	if end < len(text) {
		window = window + Ellipsis
	}
	return window
}

// ExtractSnippets returns up to maxSnippets disjoint windows of snippetLength
// characters, one per distinct match location in text order. Used when a
// single excerpt gives insufficient context.
func ExtractSnippets(text, query string, snippetLength, maxSnippets int) []string {
	if snippetLength <= 0 || maxSnippets <= 0 || text == "" {
		return nil
	}

	terms := Terms(query)
	if len(terms) == 0 {
		return nil
	}

	var snippets []string
	offset := 0
	for len(snippets) < maxSnippets {
		match := firstMatch(text[offset:], terms)
		if match < 0 {
			break
		}
		match += offset

		start := match - leftContext
		if start < offset {
			start = offset
		}
		end := start + snippetLength
		if end > len(text) {
			end = len(text)
		}

		snippet := markTerms(text[start:end], terms)
		if start > 0 {
			snippet = Ellipsis + snippet
		}
		if end < len(text) {
			snippet = snippet + Ellipsis
		}
		snippets = append(snippets, snippet)

		offset = end
		if offset >= len(text) {
			break
		}
	}
	return snippets
}

// firstMatch returns the byte offset of the earliest case-insensitive
// occurrence of any term, or -1
func firstMatch(text string, terms []string) int {
	lower := strings.ToLower(text)
	first := -1
	for _, term := range terms {
		if idx := strings.Index(lower, term); idx >= 0 && (first < 0 || idx < first) {
			first = idx
		}
	}
	return first
}

// markTerms wraps every case-insensitive occurrence of every term in window
// with highlight markers
func markTerms(window string, terms []string) string {
	lower := strings.ToLower(window)

	// Collect match ranges, then rebuild left to right so overlapping term
	// occurrences never produce nested markers.
	type span struct{ start, end int }
	var spans []span
	for _, term := range terms {
		from := 0
		for {
			idx := strings.Index(lower[from:], term)
			if idx < 0 {
				break
			}
			start := from + idx
			spans = append(spans, span{start, start + len(term)})
			from = start + len(term)
		}
	}
	if len(spans) == 0 {
		return window
	}

	// Sort by start, merge overlaps
	for i := 1; i < len(spans); i++ {
		for j := i; j > 0 && spans[j].start < spans[j-1].start; j-- {
			spans[j], spans[j-1] = spans[j-1], spans[j]
		}
	}
	merged := spans[:1]
	for _, s := range spans[1:] {
		last := &merged[len(merged)-1]
		if s.start <= last.end {
			if s.end > last.end {
				last.end = s.end
			}
			continue
		}
		merged = append(merged, s)
	}

	var b strings.Builder
	prev := 0
	for _, s := range merged {
		b.WriteString(window[prev:s.start])
		b.WriteString(MarkOpen)
		b.WriteString(window[s.start:s.end])
		b.WriteString(MarkClose)
		prev = s.end
	}
	b.WriteString(window[prev:])
	return b.String()
}

// truncate cuts text to at most maxLength bytes on a rune boundary
func truncate(text string, maxLength int) string {
	if len(text) <= maxLength {
		return text
	}
	cut := maxLength
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}
