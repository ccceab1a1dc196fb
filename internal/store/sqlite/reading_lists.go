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

// readingListColumns must match the scan order in scanReadingList.
const readingListColumns = `id, user_id, name, description, is_public, created_at, updated_at`

func scanReadingList(scanner interface{ Scan(dest ...any) error }) (*domain.ReadingList, error) {
	var (
		l                    domain.ReadingList
		description          sql.NullString
		isPublic             int
		createdAt, updatedAt string
	)

	err := scanner.Scan(&l.ID, &l.UserID, &l.Name, &description, &isPublic, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	if l.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if l.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	l.Description = description.String
	l.IsPublic = isPublic != 0
	l.BookIDs = []string{}
	return &l, nil
}

// CreateReadingList inserts a list and its initial books.
func (s *Store) CreateReadingList(ctx context.Context, list *domain.ReadingList) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO reading_lists (`+readingListColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			list.ID,
			list.UserID,
			list.Name,
			nullString(list.Description),
			boolToInt(list.IsPublic),
			formatTime(list.CreatedAt),
			formatTime(list.UpdatedAt),
		)
		if isUniqueViolation(err) {
			return store.ErrAlreadyExists
		}
		if err != nil {
			return err
		}

		for i, bookID := range list.BookIDs {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO reading_list_books (list_id, book_id, position) VALUES (?, ?, ?)`,
				list.ID, bookID, i); err != nil {
				if isForeignKeyViolation(err) {
					return store.ErrNotFound.WithMessage("book not found")
				}
				return fmt.Errorf("insert list book: %w", err)
			}
		}
		return nil
	})
}

// GetReadingList retrieves a list with its book IDs in list order.
// Returns store.ErrNotFound if the list does not exist.
func (s *Store) GetReadingList(ctx context.Context, id string) (*domain.ReadingList, error) {
	l, err := scanReadingList(s.db.QueryRowContext(ctx,
		`SELECT `+readingListColumns+` FROM reading_lists WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := s.loadListBooks(ctx, []*domain.ReadingList{l}); err != nil {
		return nil, err
	}
	return l, nil
}

// ListUserReadingLists returns every list a user owns, oldest first.
func (s *Store) ListUserReadingLists(ctx context.Context, userID string) ([]*domain.ReadingList, error) {
	return s.listReadingLists(ctx,
		`SELECT `+readingListColumns+` FROM reading_lists WHERE user_id = ?
		ORDER BY created_at ASC, rowid ASC`, userID)
}

// ListPublicReadingLists returns public lists, newest first.
func (s *Store) ListPublicReadingLists(ctx context.Context, limit int) ([]*domain.ReadingList, error) {
	return s.listReadingLists(ctx,
		`SELECT `+readingListColumns+` FROM reading_lists WHERE is_public = 1
		ORDER BY created_at DESC, rowid DESC LIMIT ?`, clampLimit(limit, 20))
}

func (s *Store) listReadingLists(ctx context.Context, query string, args ...any) ([]*domain.ReadingList, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lists := []*domain.ReadingList{}
	for rows.Next() {
		l, err := scanReadingList(rows)
		if err != nil {
			return nil, err
		}
		lists = append(lists, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := s.loadListBooks(ctx, lists); err != nil {
		return nil, err
	}
	return lists, nil
}

// loadListBooks fills BookIDs for each list in one query.
func (s *Store) loadListBooks(ctx context.Context, lists []*domain.ReadingList) error {
	if len(lists) == 0 {
		return nil
	}

	byID := make(map[string]*domain.ReadingList, len(lists))
	ids := make([]string, 0, len(lists))
	for _, l := range lists {
		byID[l.ID] = l
		ids = append(ids, l.ID)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT list_id, book_id FROM reading_list_books
		WHERE list_id IN (`+placeholders(len(ids))+`)
		ORDER BY list_id, position ASC`, stringArgs(ids)...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var listID, bookID string
		if err := rows.Scan(&listID, &bookID); err != nil {
			return err
		}
		byID[listID].BookIDs = append(byID[listID].BookIDs, bookID)
	}
	return rows.Err()
}

// UpdateReadingList rewrites a list's name, description and visibility.
// Returns store.ErrNotFound if the list does not exist.
func (s *Store) UpdateReadingList(ctx context.Context, list *domain.ReadingList) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE reading_lists SET name = ?, description = ?, is_public = ?, updated_at = ?
		WHERE id = ?`,
		list.Name,
		nullString(list.Description),
		boolToInt(list.IsPublic),
		formatTime(list.UpdatedAt),
		list.ID,
	)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

// DeleteReadingList removes a list and its book entries.
// Returns store.ErrNotFound if the list does not exist.
func (s *Store) DeleteReadingList(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM reading_lists WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

// AddBookToList appends a book to the end of a list.
// Adding a book already on the list is a no-op and reports false.
func (s *Store) AddBookToList(ctx context.Context, listID, bookID string) (bool, error) {
	added := false

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `
			INSERT INTO reading_list_books (list_id, book_id, position)
			SELECT ?, ?, COALESCE(MAX(position) + 1, 0) FROM reading_list_books WHERE list_id = ?
			ON CONFLICT(list_id, book_id) DO NOTHING`,
			listID, bookID, listID)
		if isForeignKeyViolation(err) {
			return store.ErrNotFound
		}
		if err != nil {
			return err
		}

		n, err := result.RowsAffected()
		if err != nil || n == 0 {
			return err
		}
		added = true
		return touchReadingList(ctx, tx, listID)
	})
	return added, err
}

// RemoveBookFromList drops a book from a list.
// Removing a book that is not on the list is a no-op and reports false.
func (s *Store) RemoveBookFromList(ctx context.Context, listID, bookID string) (bool, error) {
	removed := false

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			`DELETE FROM reading_list_books WHERE list_id = ? AND book_id = ?`, listID, bookID)
		if err != nil {
			return err
		}

		n, err := result.RowsAffected()
		if err != nil || n == 0 {
			return err
		}
		removed = true
		return touchReadingList(ctx, tx, listID)
	})
	return removed, err
}

func touchReadingList(ctx context.Context, tx *sql.Tx, listID string) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE reading_lists SET updated_at = ? WHERE id = ?`, formatTime(time.Now()), listID)
	return err
}
