package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/bookbuddy/bookbuddy-server/internal/domain"
	"github.com/bookbuddy/bookbuddy-server/internal/service"
)

func (s *Server) registerRecommendationRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getMoodRecommendations",
		Method:      http.MethodGet,
		Path:        "/api/v1/recommendations/mood/{mood}",
		Summary:     "Recommendations for a mood",
		Description: "Ranks the books tagged with a mood by how well they fit it",
		Tags:        []string{"Recommendations"},
	}, s.handleGetMoodRecommendations)

	huma.Register(s.api, huma.Operation{
		OperationID: "getPersonalizedRecommendations",
		Method:      http.MethodGet,
		Path:        "/api/v1/recommendations/personalized",
		Summary:     "Personalized recommendations",
		Description: "Suggests books from the caller's preferences and recently liked books",
		Tags:        []string{"Recommendations"},
		Security:    bearerAuth,
	}, s.handleGetPersonalizedRecommendations)

	huma.Register(s.api, huma.Operation{
		OperationID: "getPlaylistRecommendations",
		Method:      http.MethodGet,
		Path:        "/api/v1/recommendations/playlist/{playlistId}",
		Summary:     "Recommendations for a playlist",
		Description: "Matches catalog books to the mood of a music playlist",
		Tags:        []string{"Recommendations"},
		Security:    bearerAuth,
	}, s.handleGetPlaylistRecommendations)

	huma.Register(s.api, huma.Operation{
		OperationID: "listSavedRecommendations",
		Method:      http.MethodGet,
		Path:        "/api/v1/recommendations/saved",
		Summary:     "List saved recommendations",
		Description: "Returns the caller's saved recommendations, newest first",
		Tags:        []string{"Recommendations"},
		Security:    bearerAuth,
	}, s.handleListSavedRecommendations)

	huma.Register(s.api, huma.Operation{
		OperationID: "saveRecommendation",
		Method:      http.MethodPost,
		Path:        "/api/v1/recommendations/saved",
		Summary:     "Save recommendation",
		Description: "Stores a recommended book for the caller",
		Tags:        []string{"Recommendations"},
		Security:    bearerAuth,
	}, s.handleSaveRecommendation)
}

// === DTOs ===

// MoodRecommendationsInput selects a mood.
type MoodRecommendationsInput struct {
	Mood  string `path:"mood" doc:"Mood tag"`
	Limit int    `query:"limit" minimum:"0" maximum:"20" doc:"Maximum results (default 5)"`
}

// PersonalizedOutput wraps personalized recommendations for Huma.
type PersonalizedOutput struct {
	Body *service.PersonalizedRecommendations
}

// PlaylistInput identifies a playlist.
type PlaylistInput struct {
	PlaylistID string `path:"playlistId" doc:"Music playlist ID"`
}

// PlaylistOutput wraps playlist recommendations for Huma.
type PlaylistOutput struct {
	Body *service.PlaylistRecommendations
}

// SavedRecommendationsInput pages saved recommendations.
type SavedRecommendationsInput struct {
	Limit int `query:"limit" minimum:"0" maximum:"100" doc:"Maximum results (default 10)"`
}

// SavedRecommendationsResponse lists saved recommendations.
type SavedRecommendationsResponse struct {
	Recommendations []service.SavedRecommendation `json:"recommendations" doc:"Saved recommendations"`
}

// SavedRecommendationsOutput wraps saved recommendations for Huma.
type SavedRecommendationsOutput struct {
	Body SavedRecommendationsResponse
}

// SaveRecommendationRequest is the request body for saving a recommendation.
type SaveRecommendationRequest struct {
	BookID     string  `json:"book_id" doc:"Book ID"`
	Reason     string  `json:"reason,omitempty" doc:"Why the book was recommended"`
	Mood       string  `json:"mood,omitempty" doc:"Mood the recommendation was made for"`
	Confidence float64 `json:"confidence,omitempty" doc:"Confidence from 0 to 1"`
}

// SaveRecommendationInput wraps the save request for Huma.
type SaveRecommendationInput struct {
	Body SaveRecommendationRequest
}

// RecommendationOutput wraps a saved recommendation for Huma.
type RecommendationOutput struct {
	Body *domain.BookRecommendation
}

// === Handlers ===

func (s *Server) handleGetMoodRecommendations(ctx context.Context, input *MoodRecommendationsInput) (*BooksOutput, error) {
	books, err := s.services.Recommendation.GetRecommendationsByMood(ctx, input.Mood, input.Limit)
	if err != nil {
		return nil, err
	}
	return booksOutput(books), nil
}

func (s *Server) handleGetPersonalizedRecommendations(ctx context.Context, _ *struct{}) (*PersonalizedOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	recs, err := s.services.Recommendation.GetPersonalizedRecommendations(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &PersonalizedOutput{Body: recs}, nil
}

func (s *Server) handleGetPlaylistRecommendations(ctx context.Context, input *PlaylistInput) (*PlaylistOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	recs, err := s.services.Recommendation.GetPlaylistRecommendations(ctx, input.PlaylistID)
	if err != nil {
		return nil, err
	}
	return &PlaylistOutput{Body: recs}, nil
}

func (s *Server) handleListSavedRecommendations(ctx context.Context, input *SavedRecommendationsInput) (*SavedRecommendationsOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	recs, err := s.services.Recommendation.GetUserRecommendations(ctx, userID, input.Limit)
	if err != nil {
		return nil, err
	}
	return &SavedRecommendationsOutput{Body: SavedRecommendationsResponse{Recommendations: recs}}, nil
}

func (s *Server) handleSaveRecommendation(ctx context.Context, input *SaveRecommendationInput) (*RecommendationOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	rec, err := s.services.Recommendation.SaveRecommendation(ctx, userID, service.SaveRecommendationRequest{
		BookID:     input.Body.BookID,
		Reason:     input.Body.Reason,
		Mood:       input.Body.Mood,
		Confidence: input.Body.Confidence,
	})
	if err != nil {
		return nil, err
	}
	return &RecommendationOutput{Body: rec}, nil
}
