// Package domain contains the core BookBuddy models and the rules that operate on them.
package domain

import (
	"slices"
	"time"
)

// PopularRatingThreshold is the average rating at which a book counts as featured or popular.
const PopularRatingThreshold = 4.0

// Book is a catalog entry.
//
// AverageRating and TotalRatings are derived from the book's reviews and are only
// written by the rating aggregation routine.
type Book struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Author        string    `json:"author"`
	Genres        []string  `json:"genres"`
	Moods         []string  `json:"moods"`
	Description   string    `json:"description"`
	CoverURL      string    `json:"cover_url,omitempty"`
	CoverBlurHash string    `json:"cover_blurhash,omitempty"`
	ISBN          string    `json:"isbn,omitempty"`
	PublishedYear int       `json:"published_year,omitempty"`
	Price         *float64  `json:"price,omitempty"`
	AverageRating float64   `json:"average_rating"`
	TotalRatings  int       `json:"total_ratings"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// HasMood reports whether the book carries the mood tag exactly.
func (b *Book) HasMood(mood string) bool {
	return slices.Contains(b.Moods, mood)
}

// HasGenre reports whether the book carries the genre tag exactly.
func (b *Book) HasGenre(genre string) bool {
	return slices.Contains(b.Genres, genre)
}

// IsPopular reports whether the book's average rating meets minRating.
func (b *Book) IsPopular(minRating float64) bool {
	return b.AverageRating >= minRating
}
