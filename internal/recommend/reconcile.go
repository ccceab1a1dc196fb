// Package recommend builds completion prompts for recommendations and maps
// the free-text replies back onto catalog books.
//
// Title matching is substring based. A title that is a substring of another
// title, or of unrelated prose, can produce false matches; a reply that
// paraphrases a title produces none. Callers always fall back to the
// candidate order, so an unusable reply degrades to unranked results.
package recommend

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/bookbuddy/bookbuddy-server/internal/domain"
)

// RankByLines orders candidates by the reply's lines. For every non-blank line
// the first candidate whose title appears in it (case-sensitive) is taken;
// candidates the reply never names follow in their original order. The result
// has no duplicates and at most limit entries.
func RankByLines(candidates []*domain.Book, reply string, limit int) []*domain.Book {
	if limit <= 0 || len(candidates) == 0 {
		return []*domain.Book{}
	}

	ranked := make([]*domain.Book, 0, min(limit, len(candidates)))
	taken := make(map[string]bool, len(candidates))

	for line := range strings.Lines(reply) {
		if len(ranked) >= limit {
			break
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		for _, b := range candidates {
			if b.Title == "" || !strings.Contains(line, b.Title) {
				continue
			}
			if !taken[b.ID] {
				taken[b.ID] = true
				ranked = append(ranked, b)
			}
			break
		}
	}

	for _, b := range candidates {
		if len(ranked) >= limit {
			break
		}
		if !taken[b.ID] {
			taken[b.ID] = true
			ranked = append(ranked, b)
		}
	}
	return ranked
}

// MatchMentions returns the candidates whose title appears anywhere in the
// reply, compared after Unicode normalization and case folding. Candidate
// order is preserved and at most limit books are returned.
func MatchMentions(candidates []*domain.Book, reply string, limit int) []*domain.Book {
	matched := []*domain.Book{}
	if limit <= 0 || reply == "" {
		return matched
	}

	haystack := fold(reply)
	for _, b := range candidates {
		if len(matched) >= limit {
			break
		}
		title := fold(b.Title)
		if title == "" {
			continue
		}
		if strings.Contains(haystack, title) {
			matched = append(matched, b)
		}
	}
	return matched
}

// BackfillPopular tops up a short selection. When fewer than minCount books
// were selected, the first limit candidates rated at least minRating are
// appended unless already selected. The result is truncated to limit.
func BackfillPopular(selected, candidates []*domain.Book, minRating float64, minCount, limit int) []*domain.Book {
	out := append([]*domain.Book{}, selected...)

	if len(out) < minCount {
		popular := make([]*domain.Book, 0, limit)
		for _, b := range candidates {
			if len(popular) >= limit {
				break
			}
			if b.IsPopular(minRating) {
				popular = append(popular, b)
			}
		}

		seen := make(map[string]bool, len(out))
		for _, b := range out {
			seen[b.ID] = true
		}
		for _, b := range popular {
			if !seen[b.ID] {
				seen[b.ID] = true
				out = append(out, b)
			}
		}
	}

	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Dedupe drops repeated books by ID, keeping first occurrences.
func Dedupe(books []*domain.Book) []*domain.Book {
	seen := make(map[string]bool, len(books))
	out := make([]*domain.Book, 0, len(books))
	for _, b := range books {
		if seen[b.ID] {
			continue
		}
		seen[b.ID] = true
		out = append(out, b)
	}
	return out
}

func fold(s string) string {
	// Caser values carry state and are not safe for concurrent use.
	return cases.Fold().String(norm.NFC.String(s))
}
