package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bookbuddy/bookbuddy-server/internal/domain"
	"github.com/bookbuddy/bookbuddy-server/internal/store"
	"github.com/bookbuddy/bookbuddy-server/internal/store/sqlite"
	"github.com/bookbuddy/bookbuddy-server/internal/validation"
)

// UserService serves per-user preferences and activity stats.
type UserService struct {
	store     *sqlite.Store
	validator *validation.Validator
	logger    *slog.Logger
}

// NewUserService creates a new user service.
func NewUserService(store *sqlite.Store, validator *validation.Validator, logger *slog.Logger) *UserService {
	return &UserService{
		store:     store,
		validator: validator,
		logger:    loggerOrDiscard(logger),
	}
}

// UpdatePreferencesRequest patches a taste profile. Nil fields are left alone;
// an empty list clears the field.
type UpdatePreferencesRequest struct {
	FavoriteGenres *[]string `json:"favorite_genres,omitempty" validate:"omitnil,max=50,dive,notblank,max=100"`
	PreferredMoods *[]string `json:"preferred_moods,omitempty" validate:"omitnil,max=50,dive,notblank,max=100"`
	ReadingGoal    *int      `json:"reading_goal,omitempty" validate:"omitnil,gte=0,lte=1000"`
	PlaylistID     *string   `json:"playlist_id,omitempty" validate:"omitnil,max=200"`
}

// GetUserPreferences returns the caller's profile, or nil if none was saved.
func (s *UserService) GetUserPreferences(ctx context.Context, userID string) (*domain.UserPreferences, error) {
	prefs, err := s.store.GetUserPreferences(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get preferences: %w", err)
	}
	return prefs, nil
}

// UpdateUserPreferences creates the profile on first write and patches it afterwards.
func (s *UserService) UpdateUserPreferences(ctx context.Context, userID string, req UpdatePreferencesRequest) (*domain.UserPreferences, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	patch := domain.PreferencesPatch{
		FavoriteGenres: trimList(req.FavoriteGenres),
		PreferredMoods: trimList(req.PreferredMoods),
		ReadingGoal:    req.ReadingGoal,
	}
	if req.PlaylistID != nil {
		playlist := strings.TrimSpace(*req.PlaylistID)
		patch.PlaylistID = &playlist
	}

	prefs, err := s.store.UpsertUserPreferences(ctx, userID, patch)
	if err != nil {
		return nil, notFound(err, "user not found")
	}

	s.logger.Debug("Preferences updated", "user_id", userID)
	return prefs, nil
}

// GetUserStats summarizes the caller's reviews and reading lists.
func (s *UserService) GetUserStats(ctx context.Context, userID string) (*domain.UserStats, error) {
	stats, err := s.store.GetUserStats(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user stats: %w", err)
	}
	return stats, nil
}

func trimList(values *[]string) *[]string {
	if values == nil {
		return nil
	}
	out := make([]string, len(*values))
	for i, v := range *values {
		out[i] = strings.TrimSpace(v)
	}
	return &out
}
