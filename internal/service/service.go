// Package service implements BookBuddy's use cases on top of the relational
// store, the chat store, the search index and the completion client.
package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/bookbuddy/bookbuddy-server/internal/color"
	"github.com/bookbuddy/bookbuddy-server/internal/domain"
	domainerrors "github.com/bookbuddy/bookbuddy-server/internal/errors"
	"github.com/bookbuddy/bookbuddy-server/internal/search"
	"github.com/bookbuddy/bookbuddy-server/internal/store"
)

// Default page sizes.
const (
	DefaultSearchLimit          = 20
	DefaultMoodLimit            = 10
	DefaultBookReviewsLimit     = 10
	DefaultUserReviewsLimit     = 20
	DefaultPublicListsLimit     = 20
	DefaultRecommendationsLimit = 10
	DefaultMoodRecommendations  = 5

	// FeaturedLimit caps the featured shelf.
	FeaturedLimit = 12

	// MaxLimit bounds every caller-supplied limit.
	MaxLimit = 100
)

// TitleSearcher runs free-text title queries. *search.SearchIndex implements it.
type TitleSearcher interface {
	SearchTitles(ctx context.Context, text string, limit int) ([]search.Hit, error)
}

// CoverQueue accepts books whose cover placeholder should be computed.
type CoverQueue interface {
	Enqueue(bookID, url string) error
}

// UserSummary is the public face of an account shown next to content it owns.
type UserSummary struct {
	ID          string `json:"id"`
	DisplayName string `json:"name"`
	AvatarColor string `json:"avatar_color"`
}

func summarize(u *domain.User) *UserSummary {
	if u == nil {
		return nil
	}
	return &UserSummary{
		ID:          u.ID,
		DisplayName: u.DisplayName,
		AvatarColor: color.ForUser(u.ID),
	}
}

func limitOr(limit, def int) int {
	if limit <= 0 {
		return def
	}
	return min(limit, MaxLimit)
}

func loggerOrDiscard(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return logger
}

// notFound converts a store miss into a domain NOT_FOUND with msg and returns
// other errors unchanged.
func notFound(err error, msg string) error {
	if errors.Is(err, store.ErrNotFound) {
		return domainerrors.NotFound(msg).WithCause(err)
	}
	return err
}
