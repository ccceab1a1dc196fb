package sqlite

import (
	"context"

	"github.com/bookbuddy/bookbuddy-server/internal/domain"
)

// GetUserStats aggregates a user's reviews and reading lists.
func (s *Store) GetUserStats(ctx context.Context, userID string) (*domain.UserStats, error) {
	var (
		stats     domain.UserStats
		avgRating float64
	)

	err := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM reviews WHERE user_id = ?),
			(SELECT COALESCE(AVG(rating), 0) FROM reviews WHERE user_id = ?),
			(SELECT COUNT(*) FROM reading_lists WHERE user_id = ?),
			(SELECT COUNT(*) FROM reading_list_books rlb
				JOIN reading_lists rl ON rl.id = rlb.list_id
				WHERE rl.user_id = ?)`,
		userID, userID, userID, userID,
	).Scan(&stats.ReviewsCount, &avgRating, &stats.ReadingListsCount, &stats.TotalBooksInLists)
	if err != nil {
		return nil, err
	}

	stats.AverageRatingGiven = domain.RoundToTenth(avgRating)
	return &stats, nil
}
