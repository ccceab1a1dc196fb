package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bookbuddy/bookbuddy-server/internal/ai"
	"github.com/bookbuddy/bookbuddy-server/internal/domain"
	domainerrors "github.com/bookbuddy/bookbuddy-server/internal/errors"
	"github.com/bookbuddy/bookbuddy-server/internal/id"
	"github.com/bookbuddy/bookbuddy-server/internal/metrics"
	"github.com/bookbuddy/bookbuddy-server/internal/recommend"
	"github.com/bookbuddy/bookbuddy-server/internal/store"
	"github.com/bookbuddy/bookbuddy-server/internal/store/sqlite"
	"github.com/bookbuddy/bookbuddy-server/internal/validation"
)

// Pipeline sizes.
const (
	moodCandidateLimit      = 20
	personalizedReviewLimit = 10
	personalizedTagCount    = 2
	personalizedPerTag      = 3
	personalizedBookLimit   = 8
	likedRating             = 4
)

// PersonalizedFallbackText replaces the assistant's text when it can't be generated.
const PersonalizedFallbackText = "Unable to generate AI recommendations at this time."

// RecommendationService runs the recommendation pipeline: fetch catalog
// candidates, ask the assistant to rank or explain them, then map the reply
// back onto catalog books. Assistant failures degrade to unranked or
// featured books and are never returned to the caller.
type RecommendationService struct {
	store     *sqlite.Store
	books     *BookService
	completer ai.Completer
	validator *validation.Validator
	logger    *slog.Logger
}

// NewRecommendationService creates a new recommendation service.
func NewRecommendationService(
	store *sqlite.Store,
	books *BookService,
	completer ai.Completer,
	validator *validation.Validator,
	logger *slog.Logger,
) *RecommendationService {
	return &RecommendationService{
		store:     store,
		books:     books,
		completer: completer,
		validator: validator,
		logger:    loggerOrDiscard(logger),
	}
}

// PersonalizedRecommendations pairs the assistant's free-text suggestions with
// catalog books drawn from the user's preferences.
type PersonalizedRecommendations struct {
	AIRecommendations string         `json:"ai_recommendations,omitempty"`
	Books             []*domain.Book `json:"books"`
}

// PlaylistRecommendations are books matched to a music playlist.
type PlaylistRecommendations struct {
	Explanation string         `json:"explanation"`
	Books       []*domain.Book `json:"books"`
	PlaylistID  string         `json:"playlist_id"`
}

// SaveRecommendationRequest persists a suggestion for the caller.
type SaveRecommendationRequest struct {
	BookID     string  `json:"book_id" validate:"required"`
	Reason     string  `json:"reason" validate:"max=5000"`
	Mood       string  `json:"mood,omitempty" validate:"max=100"`
	Confidence float64 `json:"confidence"`
}

// SavedRecommendation is a stored recommendation with its book.
type SavedRecommendation struct {
	*domain.BookRecommendation
	Book *domain.Book `json:"book"`
}

// GetRecommendationsByMood ranks the books tagged with mood by how well the
// assistant thinks they suit it.
func (s *RecommendationService) GetRecommendationsByMood(ctx context.Context, mood string, limit int) ([]*domain.Book, error) {
	limit = limitOr(limit, DefaultMoodRecommendations)

	candidates, err := s.books.GetBooksByMood(ctx, mood, moodCandidateLimit)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return []*domain.Book{}, nil
	}

	reply, err := s.ask(ctx, recommend.MoodRankPrompt(mood, candidates), recommend.RankTemperature)
	if err != nil {
		s.logger.Warn("Mood ranking failed, using catalog order", "mood", mood, "error", err)
		metrics.RecordAIFallback("mood")
		return candidates[:min(limit, len(candidates))], nil
	}
	return recommend.RankByLines(candidates, reply, limit), nil
}

// GetPersonalizedRecommendations suggests books from the caller's preferences
// and recently liked books. A user with neither gets the featured shelf.
func (s *RecommendationService) GetPersonalizedRecommendations(ctx context.Context, userID string) (*PersonalizedRecommendations, error) {
	prefs, err := s.store.GetUserPreferences(ctx, userID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("get preferences: %w", err)
	}

	reviews, err := s.store.ListUserReviews(ctx, userID, personalizedReviewLimit)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}

	if prefs == nil && len(reviews) == 0 {
		featured, err := s.books.GetFeaturedBooks(ctx)
		if err != nil {
			return nil, err
		}
		return &PersonalizedRecommendations{Books: featured}, nil
	}

	liked := make([]*domain.Review, 0, len(reviews))
	for _, r := range reviews {
		if r.Rating >= likedRating {
			liked = append(liked, r)
		}
	}
	rated, err := ratedBooks(ctx, s.store, liked)
	if err != nil {
		return nil, err
	}

	text, err := s.ask(ctx, recommend.PersonalizedPrompt(prefs, rated), recommend.CreativeTemperature)
	if err != nil {
		s.logger.Warn("Personalized recommendations failed, using featured books", "user_id", userID, "error", err)
		metrics.RecordAIFallback("personalized")
		return s.personalizedFallback(ctx)
	}

	books, err := s.preferenceBooks(ctx, prefs)
	if err != nil {
		return nil, err
	}
	return &PersonalizedRecommendations{AIRecommendations: text, Books: books}, nil
}

func (s *RecommendationService) personalizedFallback(ctx context.Context) (*PersonalizedRecommendations, error) {
	featured, err := s.books.GetFeaturedBooks(ctx)
	if err != nil {
		return nil, err
	}
	return &PersonalizedRecommendations{AIRecommendations: PersonalizedFallbackText, Books: featured}, nil
}

// preferenceBooks draws a few books for each of the first favorite genres and
// preferred moods.
func (s *RecommendationService) preferenceBooks(ctx context.Context, prefs *domain.UserPreferences) ([]*domain.Book, error) {
	books := []*domain.Book{}
	if prefs == nil {
		return books, nil
	}

	for _, genre := range prefs.FavoriteGenres[:min(personalizedTagCount, len(prefs.FavoriteGenres))] {
		found, err := s.books.SearchBooks(ctx, BookQuery{Genre: genre, Limit: personalizedPerTag})
		if err != nil {
			return nil, err
		}
		books = append(books, found...)
	}
	for _, mood := range prefs.PreferredMoods[:min(personalizedTagCount, len(prefs.PreferredMoods))] {
		found, err := s.books.GetBooksByMood(ctx, mood, personalizedPerTag)
		if err != nil {
			return nil, err
		}
		books = append(books, found...)
	}

	books = recommend.Dedupe(books)
	return books[:min(personalizedBookLimit, len(books))], nil
}

// GetPlaylistRecommendations matches catalog books to the character of a
// music playlist.
func (s *RecommendationService) GetPlaylistRecommendations(ctx context.Context, playlistID string) (*PlaylistRecommendations, error) {
	playlistID = strings.TrimSpace(playlistID)
	if playlistID == "" {
		return nil, domainerrors.Validation("playlist id is required")
	}

	analysis := recommend.AnalyzePlaylist(playlistID)

	candidates, err := s.books.SearchBooks(ctx, BookQuery{Limit: recommend.PlaylistCandidateLimit})
	if err != nil {
		s.logger.Warn("Playlist candidates unavailable", "playlist_id", playlistID, "error", err)
		return s.playlistFallback(ctx, playlistID)
	}

	explanation, err := s.ask(ctx, recommend.PlaylistPrompt(analysis, candidates), recommend.CreativeTemperature)
	if err != nil {
		s.logger.Warn("Playlist recommendations failed, using featured books", "playlist_id", playlistID, "error", err)
		return s.playlistFallback(ctx, playlistID)
	}

	matched := recommend.MatchMentions(candidates, explanation, recommend.PlaylistResultLimit)
	books := recommend.BackfillPopular(matched, candidates,
		domain.PopularRatingThreshold, recommend.PlaylistMinMatches, recommend.PlaylistResultLimit)

	return &PlaylistRecommendations{
		Explanation: explanation,
		Books:       books,
		PlaylistID:  playlistID,
	}, nil
}

func (s *RecommendationService) playlistFallback(ctx context.Context, playlistID string) (*PlaylistRecommendations, error) {
	metrics.RecordAIFallback("playlist")

	featured, err := s.books.GetFeaturedBooks(ctx)
	if err != nil {
		return nil, err
	}
	return &PlaylistRecommendations{
		Explanation: recommend.PlaylistFallbackExplanation,
		Books:       featured[:min(recommend.PlaylistResultLimit, len(featured))],
		PlaylistID:  playlistID,
	}, nil
}

// SaveRecommendation stores a recommendation for the caller. It starts unviewed.
func (s *RecommendationService) SaveRecommendation(ctx context.Context, userID string, req SaveRecommendationRequest) (*domain.BookRecommendation, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	recID, err := id.Generate("rec")
	if err != nil {
		return nil, fmt.Errorf("generate recommendation ID: %w", err)
	}

	rec := &domain.BookRecommendation{
		ID:         recID,
		UserID:     userID,
		BookID:     req.BookID,
		Reason:     req.Reason,
		Mood:       strings.TrimSpace(req.Mood),
		Confidence: req.Confidence,
		IsViewed:   false,
		CreatedAt:  time.Now(),
	}
	if err := s.store.CreateRecommendation(ctx, rec); err != nil {
		return nil, notFound(err, "book not found")
	}
	return rec, nil
}

// GetUserRecommendations returns the caller's saved recommendations, newest
// first. Recommendations whose book no longer exists are left out.
func (s *RecommendationService) GetUserRecommendations(ctx context.Context, userID string, limit int) ([]SavedRecommendation, error) {
	recs, err := s.store.ListUserRecommendations(ctx, userID, limitOr(limit, DefaultRecommendationsLimit))
	if err != nil {
		return nil, fmt.Errorf("list recommendations: %w", err)
	}

	ids := make([]string, len(recs))
	for i, r := range recs {
		ids[i] = r.BookID
	}
	books, err := s.store.GetBooksByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load recommended books: %w", err)
	}
	byID := make(map[string]*domain.Book, len(books))
	for _, b := range books {
		byID[b.ID] = b
	}

	out := make([]SavedRecommendation, 0, len(recs))
	for _, r := range recs {
		if b, ok := byID[r.BookID]; ok {
			out = append(out, SavedRecommendation{BookRecommendation: r, Book: b})
		}
	}
	return out, nil
}

// ask sends a single-prompt completion.
func (s *RecommendationService) ask(ctx context.Context, prompt string, temperature float64) (string, error) {
	return s.completer.Complete(ctx, ai.Request{
		Messages:    []ai.Message{ai.User(prompt)},
		Temperature: temperature,
	})
}
