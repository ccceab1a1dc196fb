package domain

import "time"

// UserPreferences stores a user's taste profile. One row per user.
type UserPreferences struct {
	UserID         string    `json:"user_id"`
	FavoriteGenres []string  `json:"favorite_genres"`
	PreferredMoods []string  `json:"preferred_moods"`
	ReadingGoal    *int      `json:"reading_goal,omitempty"` // books per month
	PlaylistID     string    `json:"playlist_id,omitempty"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewUserPreferences returns an empty profile for userID.
func NewUserPreferences(userID string) *UserPreferences {
	return &UserPreferences{
		UserID:         userID,
		FavoriteGenres: []string{},
		PreferredMoods: []string{},
	}
}

// PreferencesPatch is a partial update. Nil fields are left alone.
type PreferencesPatch struct {
	FavoriteGenres *[]string
	PreferredMoods *[]string
	ReadingGoal    *int
	PlaylistID     *string
}

// Apply copies the set fields onto p.
func (patch PreferencesPatch) Apply(p *UserPreferences) {
	if patch.FavoriteGenres != nil {
		p.FavoriteGenres = append([]string{}, (*patch.FavoriteGenres)...)
	}
	if patch.PreferredMoods != nil {
		p.PreferredMoods = append([]string{}, (*patch.PreferredMoods)...)
	}
	if patch.ReadingGoal != nil {
		goal := *patch.ReadingGoal
		p.ReadingGoal = &goal
	}
	if patch.PlaylistID != nil {
		p.PlaylistID = *patch.PlaylistID
	}
	p.UpdatedAt = time.Now()
}
