package domain

import "time"

// BookRecommendation is a persisted suggestion for a user.
// Confidence is stored as given and never interpreted.
type BookRecommendation struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	BookID     string    `json:"book_id"`
	Reason     string    `json:"reason"`
	Mood       string    `json:"mood,omitempty"`
	Confidence float64   `json:"confidence"`
	IsViewed   bool      `json:"is_viewed"`
	CreatedAt  time.Time `json:"created_at"`
}
