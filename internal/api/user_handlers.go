package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/bookbuddy/bookbuddy-server/internal/domain"
	"github.com/bookbuddy/bookbuddy-server/internal/service"
)

func (s *Server) registerUserRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getCurrentUser",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/me",
		Summary:     "Get current user",
		Description: "Returns the authenticated user's account",
		Tags:        []string{"Users"},
		Security:    bearerAuth,
	}, s.handleGetCurrentUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "getPreferences",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/me/preferences",
		Summary:     "Get reading preferences",
		Description: "Returns the caller's taste profile, or null if none has been saved",
		Tags:        []string{"Users"},
		Security:    bearerAuth,
	}, s.handleGetPreferences)

	huma.Register(s.api, huma.Operation{
		OperationID: "updatePreferences",
		Method:      http.MethodPut,
		Path:        "/api/v1/users/me/preferences",
		Summary:     "Update reading preferences",
		Description: "Creates or patches the caller's taste profile. Omitted fields are left unchanged.",
		Tags:        []string{"Users"},
		Security:    bearerAuth,
	}, s.handleUpdatePreferences)

	huma.Register(s.api, huma.Operation{
		OperationID: "getUserStats",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/me/stats",
		Summary:     "Get reading stats",
		Description: "Returns review and reading list counts for the caller",
		Tags:        []string{"Users"},
		Security:    bearerAuth,
	}, s.handleGetUserStats)
}

// UserOutput wraps a user for Huma.
type UserOutput struct {
	Body *domain.User
}

// PreferencesOutput wraps preferences for Huma.
type PreferencesOutput struct {
	Body *domain.UserPreferences
}

// UpdatePreferencesRequest patches a taste profile.
type UpdatePreferencesRequest struct {
	FavoriteGenres *[]string `json:"favorite_genres,omitempty" doc:"Favorite genres; an empty list clears them"`
	PreferredMoods *[]string `json:"preferred_moods,omitempty" doc:"Preferred moods; an empty list clears them"`
	ReadingGoal    *int      `json:"reading_goal,omitempty" doc:"Books per month"`
	PlaylistID     *string   `json:"playlist_id,omitempty" doc:"Music playlist to match books against"`
}

// UpdatePreferencesInput wraps the preferences patch for Huma.
type UpdatePreferencesInput struct {
	Body UpdatePreferencesRequest
}

// StatsOutput wraps user stats for Huma.
type StatsOutput struct {
	Body *domain.UserStats
}

func (s *Server) handleGetCurrentUser(ctx context.Context, _ *struct{}) (*UserOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	user, err := s.services.Auth.Me(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &UserOutput{Body: user}, nil
}

func (s *Server) handleGetPreferences(ctx context.Context, _ *struct{}) (*PreferencesOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	prefs, err := s.services.User.GetUserPreferences(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &PreferencesOutput{Body: prefs}, nil
}

func (s *Server) handleUpdatePreferences(ctx context.Context, input *UpdatePreferencesInput) (*PreferencesOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	prefs, err := s.services.User.UpdateUserPreferences(ctx, userID, service.UpdatePreferencesRequest{
		FavoriteGenres: input.Body.FavoriteGenres,
		PreferredMoods: input.Body.PreferredMoods,
		ReadingGoal:    input.Body.ReadingGoal,
		PlaylistID:     input.Body.PlaylistID,
	})
	if err != nil {
		return nil, err
	}
	return &PreferencesOutput{Body: prefs}, nil
}

func (s *Server) handleGetUserStats(ctx context.Context, _ *struct{}) (*StatsOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	stats, err := s.services.User.GetUserStats(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &StatsOutput{Body: stats}, nil
}
