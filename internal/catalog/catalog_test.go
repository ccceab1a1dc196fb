package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContainsHTML(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"Plain prose about a library.", false},
		{"A story where 3 < 4 and x > y.", false},
		{"<p>Between life and death</p>", true},
		{"Line one<br/>Line two", true},
		{"<STRONG>Loud</STRONG> text", true},
		{"Uses <custom> markers only", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ContainsHTML(tt.in), "%q", tt.in)
	}
}

func TestNormalizeDescription(t *testing.T) {
	assert.Equal(t, "Plain text.", NormalizeDescription("  Plain text.  "))
	assert.Equal(t, "", NormalizeDescription("   "))

	got := NormalizeDescription("<p>A <strong>bold</strong> move.</p><ul><li>One</li><li>Two</li></ul>")
	assert.Contains(t, got, "**bold**")
	assert.Contains(t, got, "- One")
	assert.NotContains(t, got, "<p>")
}

func TestSampleBooks(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	books := SampleBooks(now)
	require.Len(t, books, 6)

	titles := make([]string, len(books))
	for i, b := range books {
		titles[i] = b.Title
		assert.True(t, strings.HasPrefix(b.ID, "book-seed-"))
		require.NotNil(t, b.Price)
		assert.False(t, b.CreatedAt.Before(now))
		if i > 0 {
			assert.True(t, b.CreatedAt.After(books[i-1].CreatedAt))
		}
	}
	assert.Equal(t, []string{
		"The Midnight Library",
		"Dune",
		"The Seven Husbands of Evelyn Hugo",
		"Atomic Habits",
		"The Silent Patient",
		"Educated",
	}, titles)
	assert.Equal(t, []string{"adventurous", "epic", "mysterious"}, books[1].Moods)

	// Copies are independent.
	books[1].Moods[0] = "changed"
	assert.Equal(t, "adventurous", SampleBooks(now)[1].Moods[0])
}

func TestParseImport(t *testing.T) {
	input := `[
		{"title": "  Dune ", "author": "Frank Herbert", "genres": ["Science Fiction", "", "Science Fiction"], "moods": ["epic"], "description": "<p>Spice.</p>", "price": 14.99},
		{"title": "Legacy", "author": "Someone", "genre": ["Fantasy"], "mood": ["cozy"], "published_year": 1999}
	]`

	books, err := ParseImport(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, books, 2)

	assert.Equal(t, "Dune", books[0].Title)
	assert.Equal(t, []string{"Science Fiction"}, books[0].Genres)
	assert.Equal(t, "Spice.", books[0].Description)
	require.NotNil(t, books[0].Price)
	assert.Equal(t, 14.99, *books[0].Price)

	assert.Equal(t, []string{"Fantasy"}, books[1].Genres)
	assert.Equal(t, []string{"cozy"}, books[1].Moods)
	assert.Equal(t, 1999, books[1].PublishedYear)
}

func TestParseImport_Invalid(t *testing.T) {
	_, err := ParseImport(strings.NewReader(`{"title": "not an array"}`))
	assert.ErrorContains(t, err, "decode import")
}

func TestReadImportFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "books.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"title":"Educated","author":"Tara Westover"}]`), 0o600))

	books, err := ReadImportFile(path)
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "Educated", books[0].Title)
	assert.Empty(t, books[0].Genres)

	_, err = ReadImportFile(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}
