package domain

import (
	"math"
	"time"
)

// Rating bounds for a review.
const (
	MinRating = 1
	MaxRating = 5
)

// Review is one user's rating of one book. There is at most one per (book, user).
type Review struct {
	ID            string    `json:"id"`
	BookID        string    `json:"book_id"`
	UserID        string    `json:"user_id"`
	Rating        int       `json:"rating"`
	Text          string    `json:"review,omitempty"`
	IsRecommended bool      `json:"is_recommended"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// RatingSummary is the aggregate a book stores for its current review set.
type RatingSummary struct {
	Average float64
	Count   int
}

// SummarizeRatings computes the mean rating rounded to one decimal place.
// An empty set summarizes to zero average and zero count.
func SummarizeRatings(ratings []int) RatingSummary {
	if len(ratings) == 0 {
		return RatingSummary{}
	}
	sum := 0
	for _, r := range ratings {
		sum += r
	}
	return RatingSummary{
		Average: RoundToTenth(float64(sum) / float64(len(ratings))),
		Count:   len(ratings),
	}
}

// RoundToTenth rounds half away from zero to one decimal place.
func RoundToTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
