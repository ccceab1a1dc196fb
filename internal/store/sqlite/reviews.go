package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/bookbuddy/bookbuddy-server/internal/domain"
	"github.com/bookbuddy/bookbuddy-server/internal/store"
)

// reviewColumns must match the scan order in scanReview.
const reviewColumns = `id, book_id, user_id, rating, review_text, is_recommended, created_at, updated_at`

func scanReview(scanner interface{ Scan(dest ...any) error }) (*domain.Review, error) {
	var (
		r                    domain.Review
		text                 sql.NullString
		recommended          int
		createdAt, updatedAt string
	)

	err := scanner.Scan(&r.ID, &r.BookID, &r.UserID, &r.Rating, &text, &recommended, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	if r.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if r.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	r.Text = text.String
	r.IsRecommended = recommended != 0
	return &r, nil
}

// UpsertReview writes the caller's review of a book and recomputes the book's rating
// aggregate in the same transaction. An existing (book, user) review is replaced in
// place, keeping its ID and CreatedAt; review is updated with the stored values.
//
// Returns store.ErrNotFound if the book does not exist. Reports whether a new row was created.
func (s *Store) UpsertReview(ctx context.Context, review *domain.Review) (bool, error) {
	created := false

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := getBook(ctx, tx, review.BookID); err != nil {
			return err
		}

		existing, err := scanReview(tx.QueryRowContext(ctx,
			`SELECT `+reviewColumns+` FROM reviews WHERE book_id = ? AND user_id = ?`,
			review.BookID, review.UserID))
		switch {
		case errors.Is(err, sql.ErrNoRows):
			created = true
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO reviews (`+reviewColumns+`)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				review.ID,
				review.BookID,
				review.UserID,
				review.Rating,
				nullString(review.Text),
				boolToInt(review.IsRecommended),
				formatTime(review.CreatedAt),
				formatTime(review.UpdatedAt),
			); err != nil {
				return fmt.Errorf("insert review: %w", err)
			}
		case err != nil:
			return err
		default:
			review.ID = existing.ID
			review.CreatedAt = existing.CreatedAt
			if _, err := tx.ExecContext(ctx, `
				UPDATE reviews SET rating = ?, review_text = ?, is_recommended = ?, updated_at = ?
				WHERE id = ?`,
				review.Rating,
				nullString(review.Text),
				boolToInt(review.IsRecommended),
				formatTime(review.UpdatedAt),
				existing.ID,
			); err != nil {
				return fmt.Errorf("update review: %w", err)
			}
		}

		return recomputeBookRating(ctx, tx, review.BookID)
	})
	return created, err
}

// DeleteOwnedReview removes a review if userID wrote it and recomputes the book's
// rating aggregate in the same transaction. A missing review and a review owned by
// someone else both return store.ErrNotFound.
func (s *Store) DeleteOwnedReview(ctx context.Context, reviewID, userID string) (*domain.Review, error) {
	var deleted *domain.Review

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		r, err := scanReview(tx.QueryRowContext(ctx,
			`SELECT `+reviewColumns+` FROM reviews WHERE id = ?`, reviewID))
		if errors.Is(err, sql.ErrNoRows) || (err == nil && r.UserID != userID) {
			return store.ErrNotFound
		}
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM reviews WHERE id = ?`, reviewID); err != nil {
			return fmt.Errorf("delete review: %w", err)
		}
		deleted = r
		return recomputeBookRating(ctx, tx, r.BookID)
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

// recomputeBookRating sets a book's average and count from its current reviews.
// A book with no reviews goes back to zero.
func recomputeBookRating(ctx context.Context, tx *sql.Tx, bookID string) error {
	rows, err := tx.QueryContext(ctx, `SELECT rating FROM reviews WHERE book_id = ?`, bookID)
	if err != nil {
		return err
	}
	defer rows.Close()

	var ratings []int
	for rows.Next() {
		var r int
		if err := rows.Scan(&r); err != nil {
			return err
		}
		ratings = append(ratings, r)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	summary := domain.SummarizeRatings(ratings)
	_, err = tx.ExecContext(ctx,
		`UPDATE books SET average_rating = ?, total_ratings = ?, updated_at = ? WHERE id = ?`,
		summary.Average, summary.Count, formatTime(time.Now()), bookID)
	if err != nil {
		return fmt.Errorf("update book rating: %w", err)
	}
	return nil
}

// GetReview retrieves a review by ID.
// Returns store.ErrNotFound if the review does not exist.
func (s *Store) GetReview(ctx context.Context, id string) (*domain.Review, error) {
	r, err := scanReview(s.db.QueryRowContext(ctx,
		`SELECT `+reviewColumns+` FROM reviews WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	return r, err
}

// GetUserReviewForBook returns the user's review of a book.
// Returns store.ErrNotFound if the user has not reviewed it.
func (s *Store) GetUserReviewForBook(ctx context.Context, bookID, userID string) (*domain.Review, error) {
	r, err := scanReview(s.db.QueryRowContext(ctx,
		`SELECT `+reviewColumns+` FROM reviews WHERE book_id = ? AND user_id = ?`, bookID, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	return r, err
}

// ListBookReviews returns a book's reviews, newest first.
func (s *Store) ListBookReviews(ctx context.Context, bookID string, limit int) ([]*domain.Review, error) {
	return s.listReviews(ctx, `book_id = ?`, bookID, clampLimit(limit, 10))
}

// ListUserReviews returns the reviews a user wrote, newest first.
func (s *Store) ListUserReviews(ctx context.Context, userID string, limit int) ([]*domain.Review, error) {
	return s.listReviews(ctx, `user_id = ?`, userID, clampLimit(limit, 20))
}

func (s *Store) listReviews(ctx context.Context, where, arg string, limit int) ([]*domain.Review, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+reviewColumns+` FROM reviews WHERE `+where+`
		ORDER BY created_at DESC, rowid DESC LIMIT ?`, arg, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reviews := []*domain.Review{}
	for rows.Next() {
		r, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return reviews, nil
}
