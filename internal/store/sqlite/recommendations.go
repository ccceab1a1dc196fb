package sqlite

import (
	"context"
	"database/sql"

	"github.com/bookbuddy/bookbuddy-server/internal/domain"
	"github.com/bookbuddy/bookbuddy-server/internal/store"
)

const recommendationColumns = `id, user_id, book_id, reason, mood, confidence, is_viewed, created_at`

// CreateRecommendation stores a recommendation.
// Returns store.ErrNotFound if the book does not exist.
func (s *Store) CreateRecommendation(ctx context.Context, rec *domain.BookRecommendation) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO book_recommendations (`+recommendationColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID,
		rec.UserID,
		rec.BookID,
		rec.Reason,
		nullString(rec.Mood),
		rec.Confidence,
		boolToInt(rec.IsViewed),
		formatTime(rec.CreatedAt),
	)
	if isForeignKeyViolation(err) {
		return store.ErrNotFound.WithMessage("book not found")
	}
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	return err
}

// ListUserRecommendations returns a user's saved recommendations, newest first.
func (s *Store) ListUserRecommendations(ctx context.Context, userID string, limit int) ([]*domain.BookRecommendation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+recommendationColumns+` FROM book_recommendations WHERE user_id = ?
		ORDER BY created_at DESC, rowid DESC LIMIT ?`, userID, clampLimit(limit, 10))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	recs := []*domain.BookRecommendation{}
	for rows.Next() {
		var (
			r         domain.BookRecommendation
			mood      sql.NullString
			viewed    int
			createdAt string
		)
		if err := rows.Scan(&r.ID, &r.UserID, &r.BookID, &r.Reason, &mood, &r.Confidence, &viewed, &createdAt); err != nil {
			return nil, err
		}
		if r.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		r.Mood = mood.String
		r.IsViewed = viewed != 0
		recs = append(recs, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return recs, nil
}
