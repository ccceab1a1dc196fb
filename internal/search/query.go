package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// Hit is one ranked search result.
type Hit struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
	Title string  `json:"title"`
}

// SearchTitles runs a free-text query against book titles and returns up to limit
// hits, best first.
func (s *SearchIndex) SearchTitles(ctx context.Context, text string, limit int) ([]Hit, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return []Hit{}, nil
	}
	if limit <= 0 {
		limit = 20
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	req := bleve.NewSearchRequestOptions(buildTitleQuery(text), limit, 0, false)
	req.SortBy([]string{"-_score"})
	req.Fields = []string{"title"}

	res, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	hits := make([]Hit, 0, len(res.Hits))
	for _, h := range res.Hits {
		hit := Hit{ID: h.ID, Score: h.Score}
		if t, ok := h.Fields["title"].(string); ok {
			hit.Title = t
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

// buildTitleQuery ORs a stemmed match, a typo-tolerant fuzzy term and a prefix term,
// all on the title field.
func buildTitleQuery(text string) query.Query {
	queries := []query.Query{}

	match := bleve.NewMatchQuery(text)
	match.SetField("title")
	match.SetBoost(3.0)
	queries = append(queries, match)

	fuzzy := bleve.NewFuzzyQuery(strings.ToLower(text))
	fuzzy.SetFuzziness(1)
	fuzzy.SetField("title")
	fuzzy.SetBoost(0.8)
	queries = append(queries, fuzzy)

	// Prefix for type-ahead, minimum 2 chars.
	if len(text) >= 2 {
		prefix := bleve.NewPrefixQuery(strings.ToLower(text))
		prefix.SetField("title")
		prefix.SetBoost(0.5)
		queries = append(queries, prefix)
	}

	return bleve.NewDisjunctionQuery(queries...)
}
