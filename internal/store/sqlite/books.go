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

// bookColumns must match the scan order in scanBook.
const bookColumns = `id, title, author, genres, moods, description, cover_url, cover_blurhash,
	isbn, published_year, price, average_rating, total_ratings, created_at, updated_at`

func scanBook(scanner interface{ Scan(dest ...any) error }) (*domain.Book, error) {
	var (
		b                    domain.Book
		genres, moods        string
		coverURL, blurHash   sql.NullString
		isbn                 sql.NullString
		publishedYear        sql.NullInt64
		price                sql.NullFloat64
		createdAt, updatedAt string
	)

	err := scanner.Scan(
		&b.ID,
		&b.Title,
		&b.Author,
		&genres,
		&moods,
		&b.Description,
		&coverURL,
		&blurHash,
		&isbn,
		&publishedYear,
		&price,
		&b.AverageRating,
		&b.TotalRatings,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if b.Genres, err = decodeTags(genres); err != nil {
		return nil, err
	}
	if b.Moods, err = decodeTags(moods); err != nil {
		return nil, err
	}
	if b.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if b.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}

	b.CoverURL = coverURL.String
	b.CoverBlurHash = blurHash.String
	b.ISBN = isbn.String
	b.PublishedYear = int(publishedYear.Int64)
	if price.Valid {
		p := price.Float64
		b.Price = &p
	}
	return &b, nil
}

func bookArgs(book *domain.Book) ([]any, error) {
	genres, err := encodeTags(book.Genres)
	if err != nil {
		return nil, fmt.Errorf("marshal genres: %w", err)
	}
	moods, err := encodeTags(book.Moods)
	if err != nil {
		return nil, fmt.Errorf("marshal moods: %w", err)
	}

	var price sql.NullFloat64
	if book.Price != nil {
		price = sql.NullFloat64{Float64: *book.Price, Valid: true}
	}

	return []any{
		book.ID,
		book.Title,
		book.Author,
		genres,
		moods,
		book.Description,
		nullString(book.CoverURL),
		nullString(book.CoverBlurHash),
		nullString(book.ISBN),
		nullInt64(int64(book.PublishedYear)),
		price,
		book.AverageRating,
		book.TotalRatings,
		formatTime(book.CreatedAt),
		formatTime(book.UpdatedAt),
	}, nil
}

// CreateBook inserts a book and hands it to the search indexer.
// Returns store.ErrAlreadyExists on a duplicate ID.
func (s *Store) CreateBook(ctx context.Context, book *domain.Book) error {
	args, err := bookArgs(book)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO books (`+bookColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, args...)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	if err != nil {
		return err
	}

	s.indexBook(ctx, book)
	return nil
}

// InsertBookIfAbsent inserts a book unless a row with the same ID exists.
// Reports whether a row was written; existing rows are left untouched.
func (s *Store) InsertBookIfAbsent(ctx context.Context, book *domain.Book) (bool, error) {
	args, err := bookArgs(book)
	if err != nil {
		return false, err
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO books (`+bookColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING`, args...)
	if err != nil {
		return false, err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, nil
	}

	s.indexBook(ctx, book)
	return true, nil
}

func (s *Store) indexBook(ctx context.Context, book *domain.Book) {
	if err := s.searchIndexer.IndexBook(ctx, book); err != nil {
		s.logger.Warn("failed to index book", "book_id", book.ID, "error", err)
	}
}

// GetBook retrieves a book by ID.
// Returns store.ErrNotFound if the book does not exist.
func (s *Store) GetBook(ctx context.Context, id string) (*domain.Book, error) {
	return getBook(ctx, s.db, id)
}

func getBook(ctx context.Context, q queryer, id string) (*domain.Book, error) {
	row := q.QueryRowContext(ctx, `SELECT `+bookColumns+` FROM books WHERE id = ?`, id)

	b, err := scanBook(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	return b, err
}

// GetBooksByIDs returns the books that exist among ids, in the order of ids.
// Unknown IDs are skipped.
func (s *Store) GetBooksByIDs(ctx context.Context, ids []string) ([]*domain.Book, error) {
	if len(ids) == 0 {
		return []*domain.Book{}, nil
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+bookColumns+` FROM books WHERE id IN (`+placeholders(len(ids))+`)`, stringArgs(ids)...)
	if err != nil {
		return nil, err
	}
	byID, err := collectBooks(rows)
	if err != nil {
		return nil, err
	}

	index := make(map[string]*domain.Book, len(byID))
	for _, b := range byID {
		index[b.ID] = b
	}

	out := make([]*domain.Book, 0, len(ids))
	for _, id := range ids {
		if b, ok := index[id]; ok {
			out = append(out, b)
		}
	}
	return out, nil
}

// BookFilter selects catalog rows. Genre and Mood are exact tag matches.
// A zero Limit returns every matching row.
type BookFilter struct {
	Genre     string
	Mood      string
	MinRating float64
	Limit     int
}

// ListBooks returns books in catalog (insertion) order.
func (s *Store) ListBooks(ctx context.Context, f BookFilter) ([]*domain.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books WHERE 1 = 1`
	var args []any

	if f.Mood != "" {
		query += ` AND EXISTS (SELECT 1 FROM json_each(books.moods) WHERE json_each.value = ?)`
		args = append(args, f.Mood)
	}
	if f.Genre != "" {
		query += ` AND EXISTS (SELECT 1 FROM json_each(books.genres) WHERE json_each.value = ?)`
		args = append(args, f.Genre)
	}
	if f.MinRating > 0 {
		query += ` AND average_rating >= ?`
		args = append(args, f.MinRating)
	}

	query += ` ORDER BY created_at ASC, rowid ASC`
	if f.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collectBooks(rows)
}

// CountBooks returns the catalog size.
func (s *Store) CountBooks(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM books`).Scan(&n)
	return n, err
}

// SetBookCoverBlurHash stores the placeholder hash computed for a book's cover.
// Returns store.ErrNotFound if the book does not exist.
func (s *Store) SetBookCoverBlurHash(ctx context.Context, bookID, hash string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE books SET cover_blurhash = ?, updated_at = ? WHERE id = ?`,
		nullString(hash), formatTime(time.Now()), bookID)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

func collectBooks(rows *sql.Rows) ([]*domain.Book, error) {
	defer rows.Close()

	books := []*domain.Book{}
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return books, nil
}
