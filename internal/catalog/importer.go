package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// maxImportFileSize bounds how much of an import file is read.
const maxImportFileSize = 32 << 20

// BookInput is a book as submitted through the API or an import file.
type BookInput struct {
	Title         string   `json:"title" validate:"notblank,max=500"`
	Author        string   `json:"author" validate:"notblank,max=300"`
	Genres        []string `json:"genres" validate:"max=20,dive,notblank"`
	Moods         []string `json:"moods" validate:"max=20,dive,notblank"`
	Description   string   `json:"description" validate:"max=20000"`
	CoverURL      string   `json:"cover_url,omitempty" validate:"omitempty,http_url"`
	ISBN          string   `json:"isbn,omitempty" validate:"omitempty,max=20"`
	PublishedYear int      `json:"published_year,omitempty" validate:"omitempty,gte=0,lte=3000"`
	Price         *float64 `json:"price,omitempty" validate:"omitempty,gte=0"`
}

// importRecord also accepts the singular genre/mood arrays used by older exports.
type importRecord struct {
	BookInput
	Genre []string `json:"genre"`
	Mood  []string `json:"mood"`
}

// ParseImport decodes a JSON array of books.
func ParseImport(r io.Reader) ([]BookInput, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxImportFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("read import: %w", err)
	}
	if len(data) > maxImportFileSize {
		return nil, fmt.Errorf("import exceeds %d bytes", maxImportFileSize)
	}

	var records []importRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode import: %w", err)
	}

	out := make([]BookInput, 0, len(records))
	for _, rec := range records {
		in := rec.BookInput
		if len(in.Genres) == 0 {
			in.Genres = rec.Genre
		}
		if len(in.Moods) == 0 {
			in.Moods = rec.Mood
		}
		out = append(out, in.Normalized())
	}
	return out, nil
}

// ReadImportFile parses the import file at path.
func ReadImportFile(path string) ([]BookInput, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open import: %w", err)
	}
	defer f.Close()

	books, err := ParseImport(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return books, nil
}

// Normalized trims text fields, drops blank and repeated tags and converts
// HTML descriptions to Markdown.
func (in BookInput) Normalized() BookInput {
	in.Title = strings.TrimSpace(in.Title)
	in.Author = strings.TrimSpace(in.Author)
	in.Genres = cleanTags(in.Genres)
	in.Moods = cleanTags(in.Moods)
	in.Description = NormalizeDescription(in.Description)
	in.CoverURL = strings.TrimSpace(in.CoverURL)
	in.ISBN = strings.TrimSpace(in.ISBN)
	return in
}

// ErrEmptyImport is returned for an import file with no books.
var ErrEmptyImport = errors.New("import contains no books")

func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
