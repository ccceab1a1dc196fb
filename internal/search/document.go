// Package search provides full-text title search over the book catalog using Bleve.
package search

import (
	"github.com/bookbuddy/bookbuddy-server/internal/domain"
)

// BookDocument is the indexed projection of a catalog book.
// Only the fields that queries touch are stored; the catalog row stays the source of truth.
type BookDocument struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Author      string   `json:"author"`
	Description string   `json:"description,omitempty"`
	Genres      []string `json:"genres,omitempty"`
	Moods       []string `json:"moods,omitempty"`
	CreatedAt   int64    `json:"created_at"` // Unix millis
}

// NewBookDocument builds the index document for a book.
func NewBookDocument(b *domain.Book) *BookDocument {
	return &BookDocument{
		ID:          b.ID,
		Title:       b.Title,
		Author:      b.Author,
		Description: b.Description,
		Genres:      b.Genres,
		Moods:       b.Moods,
		CreatedAt:   b.CreatedAt.UnixMilli(),
	}
}

// ToMap converts the document to a map whose keys match the index mapping.
func (d *BookDocument) ToMap() map[string]any {
	m := map[string]any{
		"id":         d.ID,
		"title":      d.Title,
		"author":     d.Author,
		"created_at": d.CreatedAt,
	}
	if d.Description != "" {
		m["description"] = d.Description
	}
	if len(d.Genres) > 0 {
		m["genres"] = d.Genres
	}
	if len(d.Moods) > 0 {
		m["moods"] = d.Moods
	}
	return m
}
