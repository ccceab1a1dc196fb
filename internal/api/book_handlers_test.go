package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookbuddy/bookbuddy-server/internal/domain"
)

func titles(books []*domain.Book) []string {
	out := make([]string, len(books))
	for i, b := range books {
		out[i] = b.Title
	}
	return out
}

func TestAddBook(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.register(t, "librarian")

	resp := ts.api.Post("/api/v1/books", bearer(token), map[string]any{
		"title":       "Piranesi",
		"author":      "Susanna Clarke",
		"genres":      []string{"Fantasy", "Fantasy"},
		"moods":       []string{"mysterious"},
		"description": "<p>A house of <strong>endless</strong> halls.</p>",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	book := decodeData[domain.Book](t, resp.Body.Bytes())
	assert.NotEmpty(t, book.ID)
	assert.Equal(t, []string{"Fantasy"}, book.Genres)
	assert.Equal(t, "A house of **endless** halls.", book.Description)
	assert.Zero(t, book.TotalRatings)

	resp = ts.api.Get("/api/v1/books/" + book.ID)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "Piranesi", decodeData[domain.Book](t, resp.Body.Bytes()).Title)
}

func TestAddBook_RequiresAuth(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/books", map[string]any{"title": "Dune", "author": "Frank Herbert"})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestAddBook_Validation(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.register(t, "librarian")

	resp := ts.api.Post("/api/v1/books", bearer(token), map[string]any{
		"title":     "   ",
		"author":    "Someone",
		"cover_url": "not a url",
	})
	require.Equal(t, http.StatusBadRequest, resp.Code)

	env := decodeError(t, resp.Body.Bytes())
	assert.Equal(t, "VALIDATION", env.Code)
	assert.Contains(t, env.Details, "title")
	assert.Contains(t, env.Details, "cover_url")
}

func TestGetBook_NotFound(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/books/book-missing")
	require.Equal(t, http.StatusNotFound, resp.Code)

	env := decodeError(t, resp.Body.Bytes())
	assert.Equal(t, 1, env.Version)
	assert.Equal(t, "NOT_FOUND", env.Code)
	assert.Equal(t, "book not found", env.Error)
}

func TestSearchBooks(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.register(t, "librarian")

	ts.addBook(t, token, map[string]any{"title": "Dune", "author": "Frank Herbert", "genres": []string{"Science Fiction"}, "moods": []string{"adventurous"}})
	ts.addBook(t, token, map[string]any{"title": "The Hobbit", "author": "J.R.R. Tolkien", "genres": []string{"Fantasy"}, "moods": []string{"adventurous", "cozy"}})
	ts.addBook(t, token, map[string]any{"title": "Emma", "author": "Jane Austen", "genres": []string{"Classic"}, "moods": []string{"witty"}})

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"title query", "?query=hobbit", []string{"The Hobbit"}},
		{"genre", "?genre=Classic", []string{"Emma"}},
		{"mood", "?mood=cozy", []string{"The Hobbit"}},
		{"query beats genre", "?query=dune&genre=Classic", []string{"Dune"}},
		{"unknown mood", "?mood=gloomy", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ts.api.Get("/api/v1/books" + tt.query)
			require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
			got := decodeData[BooksResponse](t, resp.Body.Bytes())
			assert.Equal(t, tt.want, titles(got.Books))
		})
	}

	resp := ts.api.Get("/api/v1/books?limit=2")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Len(t, decodeData[BooksResponse](t, resp.Body.Bytes()).Books, 2)

	resp = ts.api.Get("/api/v1/books?limit=1000")
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestBooksByMood(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.register(t, "librarian")

	ts.addBook(t, token, map[string]any{"title": "Treasure Island", "author": "R. L. Stevenson", "moods": []string{"adventurous"}})
	ts.addBook(t, token, map[string]any{"title": "Emma", "author": "Jane Austen", "moods": []string{"witty"}})

	resp := ts.api.Get("/api/v1/books/moods/adventurous?limit=2")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, []string{"Treasure Island"}, titles(decodeData[BooksResponse](t, resp.Body.Bytes()).Books))
}

func TestFeaturedAndSeed(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.register(t, "librarian")

	resp := ts.api.Post("/api/v1/books/seed", bearer(token))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Equal(t, 6, decodeData[SeedResponse](t, resp.Body.Bytes()).Seeded)

	resp = ts.api.Post("/api/v1/books/seed", bearer(token))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Zero(t, decodeData[SeedResponse](t, resp.Body.Bytes()).Seeded)

	resp = ts.api.Get("/api/v1/books/featured")
	require.Equal(t, http.StatusOK, resp.Code)
	for _, b := range decodeData[BooksResponse](t, resp.Body.Bytes()).Books {
		assert.GreaterOrEqual(t, b.AverageRating, 4.0, b.Title)
	}
}
