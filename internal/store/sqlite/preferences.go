package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/bookbuddy/bookbuddy-server/internal/domain"
	"github.com/bookbuddy/bookbuddy-server/internal/store"
)

const preferencesColumns = `user_id, favorite_genres, preferred_moods, reading_goal, playlist_id, updated_at`

func scanPreferences(scanner interface{ Scan(dest ...any) error }) (*domain.UserPreferences, error) {
	var (
		p             domain.UserPreferences
		genres, moods string
		readingGoal   sql.NullInt64
		playlistID    sql.NullString
		updatedAt     string
	)

	err := scanner.Scan(&p.UserID, &genres, &moods, &readingGoal, &playlistID, &updatedAt)
	if err != nil {
		return nil, err
	}

	if p.FavoriteGenres, err = decodeTags(genres); err != nil {
		return nil, err
	}
	if p.PreferredMoods, err = decodeTags(moods); err != nil {
		return nil, err
	}
	if p.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	if readingGoal.Valid {
		goal := int(readingGoal.Int64)
		p.ReadingGoal = &goal
	}
	p.PlaylistID = playlistID.String
	return &p, nil
}

// GetUserPreferences returns a user's preferences.
// Returns store.ErrNotFound if the user has never saved any.
func (s *Store) GetUserPreferences(ctx context.Context, userID string) (*domain.UserPreferences, error) {
	return getPreferences(ctx, s.db, userID)
}

func getPreferences(ctx context.Context, q queryer, userID string) (*domain.UserPreferences, error) {
	p, err := scanPreferences(q.QueryRowContext(ctx,
		`SELECT `+preferencesColumns+` FROM user_preferences WHERE user_id = ?`, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	return p, err
}

// UpsertUserPreferences applies a patch to the user's preferences, creating the row
// on first write. Read and write share one transaction.
func (s *Store) UpsertUserPreferences(ctx context.Context, userID string, patch domain.PreferencesPatch) (*domain.UserPreferences, error) {
	var out *domain.UserPreferences

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		prefs, err := getPreferences(ctx, tx, userID)
		if errors.Is(err, store.ErrNotFound) {
			prefs = domain.NewUserPreferences(userID)
		} else if err != nil {
			return err
		}

		patch.Apply(prefs)

		genres, err := encodeTags(prefs.FavoriteGenres)
		if err != nil {
			return err
		}
		moods, err := encodeTags(prefs.PreferredMoods)
		if err != nil {
			return err
		}
		var goal sql.NullInt64
		if prefs.ReadingGoal != nil {
			goal = sql.NullInt64{Int64: int64(*prefs.ReadingGoal), Valid: true}
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO user_preferences (`+preferencesColumns+`)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(user_id) DO UPDATE SET
				favorite_genres = excluded.favorite_genres,
				preferred_moods = excluded.preferred_moods,
				reading_goal = excluded.reading_goal,
				playlist_id = excluded.playlist_id,
				updated_at = excluded.updated_at`,
			prefs.UserID, genres, moods, goal, nullString(prefs.PlaylistID), formatTime(prefs.UpdatedAt))
		if isForeignKeyViolation(err) {
			return store.ErrNotFound.WithMessage("user not found")
		}
		if err != nil {
			return err
		}
		out = prefs
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
