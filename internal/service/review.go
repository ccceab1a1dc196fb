package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bookbuddy/bookbuddy-server/internal/domain"
	domainerrors "github.com/bookbuddy/bookbuddy-server/internal/errors"
	"github.com/bookbuddy/bookbuddy-server/internal/id"
	"github.com/bookbuddy/bookbuddy-server/internal/store"
	"github.com/bookbuddy/bookbuddy-server/internal/store/sqlite"
	"github.com/bookbuddy/bookbuddy-server/internal/validation"
)

// ReviewService manages reviews. Every write recomputes the reviewed book's
// rating aggregate in the same transaction as the review itself.
type ReviewService struct {
	store     *sqlite.Store
	validator *validation.Validator
	logger    *slog.Logger
}

// NewReviewService creates a new review service.
func NewReviewService(store *sqlite.Store, validator *validation.Validator, logger *slog.Logger) *ReviewService {
	return &ReviewService{
		store:     store,
		validator: validator,
		logger:    loggerOrDiscard(logger),
	}
}

// AddReviewRequest rates a book.
type AddReviewRequest struct {
	BookID        string `json:"book_id" validate:"required"`
	Rating        int    `json:"rating" validate:"rating"`
	Review        string `json:"review" validate:"max=5000"`
	IsRecommended bool   `json:"is_recommended"`
}

// ReviewWithUser is a review shown on a book page.
type ReviewWithUser struct {
	*domain.Review
	User *UserSummary `json:"user"`
}

// ReviewWithBook is a review shown in the reviewer's history.
type ReviewWithBook struct {
	*domain.Review
	Book *domain.Book `json:"book"`
}

// AddReview creates the caller's review of a book or replaces it in place.
func (s *ReviewService) AddReview(ctx context.Context, userID string, req AddReviewRequest) (*domain.Review, error) {
	req.Review = strings.TrimSpace(req.Review)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	reviewID, err := id.Generate("review")
	if err != nil {
		return nil, fmt.Errorf("generate review ID: %w", err)
	}

	now := time.Now()
	review := &domain.Review{
		ID:            reviewID,
		BookID:        req.BookID,
		UserID:        userID,
		Rating:        req.Rating,
		Text:          req.Review,
		IsRecommended: req.IsRecommended,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	created, err := s.store.UpsertReview(ctx, review)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("book not found")
		}
		return nil, fmt.Errorf("upsert review: %w", err)
	}

	s.logger.Info("Review saved",
		"review_id", review.ID,
		"book_id", review.BookID,
		"user_id", userID,
		"created", created,
	)
	return review, nil
}

// DeleteReview removes one of the caller's reviews. Missing reviews and
// reviews written by someone else are reported the same way.
func (s *ReviewService) DeleteReview(ctx context.Context, userID, reviewID string) error {
	deleted, err := s.store.DeleteOwnedReview(ctx, reviewID, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFound("review not found or unauthorized")
		}
		return fmt.Errorf("delete review: %w", err)
	}

	s.logger.Info("Review deleted", "review_id", reviewID, "book_id", deleted.BookID, "user_id", userID)
	return nil
}

// GetBookReviews returns a book's reviews newest first with their authors.
func (s *ReviewService) GetBookReviews(ctx context.Context, bookID string, limit int) ([]ReviewWithUser, error) {
	reviews, err := s.store.ListBookReviews(ctx, bookID, limitOr(limit, DefaultBookReviewsLimit))
	if err != nil {
		return nil, fmt.Errorf("list book reviews: %w", err)
	}

	userIDs := make([]string, 0, len(reviews))
	for _, r := range reviews {
		userIDs = append(userIDs, r.UserID)
	}
	users, err := s.store.GetUsersByIDs(ctx, userIDs)
	if err != nil {
		return nil, fmt.Errorf("load reviewers: %w", err)
	}

	out := make([]ReviewWithUser, len(reviews))
	for i, r := range reviews {
		out[i] = ReviewWithUser{Review: r, User: summarize(users[r.UserID])}
	}
	return out, nil
}

// GetUserReviews returns the caller's reviews newest first with their books.
func (s *ReviewService) GetUserReviews(ctx context.Context, userID string, limit int) ([]ReviewWithBook, error) {
	reviews, err := s.store.ListUserReviews(ctx, userID, limitOr(limit, DefaultUserReviewsLimit))
	if err != nil {
		return nil, fmt.Errorf("list user reviews: %w", err)
	}
	return s.withBooks(ctx, reviews)
}

// GetUserReviewForBook returns the caller's review of a book, or nil.
func (s *ReviewService) GetUserReviewForBook(ctx context.Context, userID, bookID string) (*domain.Review, error) {
	review, err := s.store.GetUserReviewForBook(ctx, bookID, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user review: %w", err)
	}
	return review, nil
}

func (s *ReviewService) withBooks(ctx context.Context, reviews []*domain.Review) ([]ReviewWithBook, error) {
	bookIDs := make([]string, len(reviews))
	for i, r := range reviews {
		bookIDs[i] = r.BookID
	}
	books, err := s.store.GetBooksByIDs(ctx, bookIDs)
	if err != nil {
		return nil, fmt.Errorf("load reviewed books: %w", err)
	}
	byID := make(map[string]*domain.Book, len(books))
	for _, b := range books {
		byID[b.ID] = b
	}

	out := make([]ReviewWithBook, len(reviews))
	for i, r := range reviews {
		out[i] = ReviewWithBook{Review: r, Book: byID[r.BookID]}
	}
	return out, nil
}
