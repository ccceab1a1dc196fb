package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/bookbuddy/bookbuddy-server/internal/domain"
	"github.com/bookbuddy/bookbuddy-server/internal/service"
)

func (s *Server) registerReviewRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getBookReviews",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{id}/reviews",
		Summary:     "List book reviews",
		Description: "Returns a book's reviews, newest first, with reviewer names",
		Tags:        []string{"Reviews"},
	}, s.handleGetBookReviews)

	huma.Register(s.api, huma.Operation{
		OperationID: "getMyBookReview",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{id}/reviews/mine",
		Summary:     "Get my review of a book",
		Description: "Returns the caller's review of the book, or null",
		Tags:        []string{"Reviews"},
		Security:    bearerAuth,
	}, s.handleGetMyBookReview)

	huma.Register(s.api, huma.Operation{
		OperationID: "addReview",
		Method:      http.MethodPost,
		Path:        "/api/v1/books/{id}/reviews",
		Summary:     "Review a book",
		Description: "Creates the caller's review or replaces their existing one. Updates the book's rating.",
		Tags:        []string{"Reviews"},
		Security:    bearerAuth,
	}, s.handleAddReview)

	huma.Register(s.api, huma.Operation{
		OperationID: "getMyReviews",
		Method:      http.MethodGet,
		Path:        "/api/v1/reviews/mine",
		Summary:     "List my reviews",
		Description: "Returns the caller's reviews with their books",
		Tags:        []string{"Reviews"},
		Security:    bearerAuth,
	}, s.handleGetMyReviews)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteReview",
		Method:      http.MethodDelete,
		Path:        "/api/v1/reviews/{id}",
		Summary:     "Delete review",
		Description: "Deletes one of the caller's reviews and updates the book's rating",
		Tags:        []string{"Reviews"},
		Security:    bearerAuth,
	}, s.handleDeleteReview)
}

// === DTOs ===

// BookReviewsInput pages a book's reviews.
type BookReviewsInput struct {
	ID    string `path:"id" doc:"Book ID"`
	Limit int    `query:"limit" minimum:"0" maximum:"100" doc:"Maximum results (default 10)"`
}

// BookReviewsResponse lists a book's reviews.
type BookReviewsResponse struct {
	Reviews []service.ReviewWithUser `json:"reviews" doc:"Reviews, newest first"`
}

// BookReviewsOutput wraps book reviews for Huma.
type BookReviewsOutput struct {
	Body BookReviewsResponse
}

// AddReviewRequest is the request body for reviewing a book.
type AddReviewRequest struct {
	Rating        int    `json:"rating" doc:"Whole-star rating from 1 to 5"`
	Review        string `json:"review,omitempty" doc:"Review text"`
	IsRecommended bool   `json:"is_recommended,omitempty" doc:"Whether the reviewer recommends the book"`
}

// AddReviewInput wraps the review request for Huma.
type AddReviewInput struct {
	ID   string `path:"id" doc:"Book ID"`
	Body AddReviewRequest
}

// ReviewOutput wraps a review for Huma.
type ReviewOutput struct {
	Body *domain.Review
}

// MyReviewsInput pages the caller's reviews.
type MyReviewsInput struct {
	Limit int `query:"limit" minimum:"0" maximum:"100" doc:"Maximum results (default 20)"`
}

// MyReviewsResponse lists the caller's reviews.
type MyReviewsResponse struct {
	Reviews []service.ReviewWithBook `json:"reviews" doc:"Reviews, newest first"`
}

// MyReviewsOutput wraps the caller's reviews for Huma.
type MyReviewsOutput struct {
	Body MyReviewsResponse
}

// ReviewIDInput identifies a review.
type ReviewIDInput struct {
	ID string `path:"id" doc:"Review ID"`
}

// === Handlers ===

func (s *Server) handleGetBookReviews(ctx context.Context, input *BookReviewsInput) (*BookReviewsOutput, error) {
	reviews, err := s.services.Review.GetBookReviews(ctx, input.ID, input.Limit)
	if err != nil {
		return nil, err
	}
	return &BookReviewsOutput{Body: BookReviewsResponse{Reviews: reviews}}, nil
}

func (s *Server) handleGetMyBookReview(ctx context.Context, input *BookIDInput) (*ReviewOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	review, err := s.services.Review.GetUserReviewForBook(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}
	return &ReviewOutput{Body: review}, nil
}

func (s *Server) handleAddReview(ctx context.Context, input *AddReviewInput) (*ReviewOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	review, err := s.services.Review.AddReview(ctx, userID, service.AddReviewRequest{
		BookID:        input.ID,
		Rating:        input.Body.Rating,
		Review:        input.Body.Review,
		IsRecommended: input.Body.IsRecommended,
	})
	if err != nil {
		return nil, err
	}
	return &ReviewOutput{Body: review}, nil
}

func (s *Server) handleGetMyReviews(ctx context.Context, input *MyReviewsInput) (*MyReviewsOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	reviews, err := s.services.Review.GetUserReviews(ctx, userID, input.Limit)
	if err != nil {
		return nil, err
	}
	return &MyReviewsOutput{Body: MyReviewsResponse{Reviews: reviews}}, nil
}

func (s *Server) handleDeleteReview(ctx context.Context, input *ReviewIDInput) (*MessageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Review.DeleteReview(ctx, userID, input.ID); err != nil {
		return nil, err
	}
	return message("Review deleted"), nil
}
