package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bookbuddy/bookbuddy-server/internal/catalog"
	"github.com/bookbuddy/bookbuddy-server/internal/domain"
	domainerrors "github.com/bookbuddy/bookbuddy-server/internal/errors"
	"github.com/bookbuddy/bookbuddy-server/internal/id"
	"github.com/bookbuddy/bookbuddy-server/internal/metrics"
	"github.com/bookbuddy/bookbuddy-server/internal/store"
	"github.com/bookbuddy/bookbuddy-server/internal/store/sqlite"
	"github.com/bookbuddy/bookbuddy-server/internal/validation"
)

// Sources a catalog write can come from.
const (
	SourceAPI    = "api"
	SourceSeed   = "seed"
	SourceImport = "import"
)

// BookService orchestrates catalog reads and writes.
type BookService struct {
	store     *sqlite.Store
	searcher  TitleSearcher
	covers    CoverQueue
	validator *validation.Validator
	logger    *slog.Logger
}

// NewBookService creates a new book service. searcher and covers may be nil.
func NewBookService(
	store *sqlite.Store,
	searcher TitleSearcher,
	covers CoverQueue,
	validator *validation.Validator,
	logger *slog.Logger,
) *BookService {
	return &BookService{
		store:     store,
		searcher:  searcher,
		covers:    covers,
		validator: validator,
		logger:    loggerOrDiscard(logger),
	}
}

// BookQuery selects catalog books. At most one filter applies, in the order
// Query, Mood, Genre; with none set the catalog is listed in insertion order.
type BookQuery struct {
	Query string
	Genre string
	Mood  string
	Limit int
}

// SearchBooks fetches candidate books for a query.
func (s *BookService) SearchBooks(ctx context.Context, q BookQuery) ([]*domain.Book, error) {
	limit := limitOr(q.Limit, DefaultSearchLimit)
	query := strings.TrimSpace(q.Query)

	var (
		books []*domain.Book
		err   error
	)
	switch {
	case query != "":
		books, err = s.searchTitles(ctx, query, limit)
	case q.Mood != "":
		books, err = s.store.ListBooks(ctx, sqlite.BookFilter{Mood: q.Mood, Limit: limit})
	case q.Genre != "":
		books, err = s.store.ListBooks(ctx, sqlite.BookFilter{Genre: q.Genre, Limit: limit})
	default:
		books, err = s.store.ListBooks(ctx, sqlite.BookFilter{Limit: limit})
	}
	if err != nil {
		return nil, fmt.Errorf("search books: %w", err)
	}
	return books, nil
}

func (s *BookService) searchTitles(ctx context.Context, query string, limit int) ([]*domain.Book, error) {
	if s.searcher == nil {
		return s.scanTitles(ctx, query, limit)
	}

	hits, err := s.searcher.SearchTitles(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(hits))
	for i, h := range hits {
		ids[i] = h.ID
	}
	return s.store.GetBooksByIDs(ctx, ids)
}

// scanTitles serves title queries when no index is configured.
func (s *BookService) scanTitles(ctx context.Context, query string, limit int) ([]*domain.Book, error) {
	all, err := s.store.ListBooks(ctx, sqlite.BookFilter{})
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(query)
	out := []*domain.Book{}
	for _, b := range all {
		if len(out) >= limit {
			break
		}
		if strings.Contains(strings.ToLower(b.Title), needle) {
			out = append(out, b)
		}
	}
	return out, nil
}

// GetBook returns a book by ID.
func (s *BookService) GetBook(ctx context.Context, bookID string) (*domain.Book, error) {
	book, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		return nil, notFound(err, "book not found")
	}
	return book, nil
}

// GetBooksByMood returns books tagged with mood, in catalog order.
func (s *BookService) GetBooksByMood(ctx context.Context, mood string, limit int) ([]*domain.Book, error) {
	books, err := s.store.ListBooks(ctx, sqlite.BookFilter{Mood: mood, Limit: limitOr(limit, DefaultMoodLimit)})
	if err != nil {
		return nil, fmt.Errorf("books by mood: %w", err)
	}
	return books, nil
}

// GetFeaturedBooks returns up to FeaturedLimit books rated at least 4.0.
func (s *BookService) GetFeaturedBooks(ctx context.Context) ([]*domain.Book, error) {
	books, err := s.store.ListBooks(ctx, sqlite.BookFilter{
		MinRating: domain.PopularRatingThreshold,
		Limit:     FeaturedLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("featured books: %w", err)
	}
	return books, nil
}

// AddBook validates and stores a new book with an empty rating aggregate.
func (s *BookService) AddBook(ctx context.Context, userID string, input catalog.BookInput) (*domain.Book, error) {
	book, err := s.createBook(ctx, input)
	if err != nil {
		return nil, err
	}
	metrics.RecordBooksImported(SourceAPI, 1)

	s.logger.Info("Book added", "book_id", book.ID, "user_id", userID)
	return book, nil
}

func (s *BookService) createBook(ctx context.Context, input catalog.BookInput) (*domain.Book, error) {
	input = input.Normalized()
	if err := s.validator.Validate(input); err != nil {
		return nil, err
	}

	bookID, err := id.Generate("book")
	if err != nil {
		return nil, fmt.Errorf("generate book ID: %w", err)
	}

	now := time.Now()
	book := &domain.Book{
		ID:            bookID,
		Title:         input.Title,
		Author:        input.Author,
		Genres:        input.Genres,
		Moods:         input.Moods,
		Description:   input.Description,
		CoverURL:      input.CoverURL,
		ISBN:          input.ISBN,
		PublishedYear: input.PublishedYear,
		Price:         input.Price,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.store.CreateBook(ctx, book); err != nil {
		return nil, fmt.Errorf("create book: %w", err)
	}

	s.queueCover(book)
	return book, nil
}

// SeedBooks inserts the sample catalog. Books already present are skipped,
// so repeated calls insert nothing and report 0.
func (s *BookService) SeedBooks(ctx context.Context) (int, error) {
	inserted := 0
	for _, book := range catalog.SampleBooks(time.Now()) {
		ok, err := s.store.InsertBookIfAbsent(ctx, book)
		if err != nil {
			return inserted, fmt.Errorf("seed %s: %w", book.ID, err)
		}
		if ok {
			inserted++
			s.queueCover(book)
		}
	}

	metrics.RecordBooksImported(SourceSeed, inserted)
	if inserted > 0 {
		s.logger.Info("Seeded sample books", "count", inserted)
	}
	return inserted, nil
}

// ImportFailure describes one rejected record of an import.
type ImportFailure struct {
	Index int    `json:"index"`
	Title string `json:"title"`
	Error string `json:"error"`
}

// ImportResult summarizes an import.
type ImportResult struct {
	Imported []*domain.Book  `json:"imported"`
	Failed   []ImportFailure `json:"failed"`
}

// ImportBooks adds every valid input. Invalid records are reported and skipped;
// a storage failure aborts the import.
func (s *BookService) ImportBooks(ctx context.Context, inputs []catalog.BookInput) (*ImportResult, error) {
	if len(inputs) == 0 {
		return nil, domainerrors.Validation(catalog.ErrEmptyImport.Error())
	}

	result := &ImportResult{Imported: []*domain.Book{}, Failed: []ImportFailure{}}
	for i, input := range inputs {
		book, err := s.createBook(ctx, input)
		if err != nil {
			var de *domainerrors.Error
			if !errors.As(err, &de) && !errors.Is(err, store.ErrAlreadyExists) {
				metrics.RecordBooksImported(SourceImport, len(result.Imported))
				return result, err
			}
			result.Failed = append(result.Failed, ImportFailure{Index: i, Title: input.Title, Error: err.Error()})
			continue
		}
		result.Imported = append(result.Imported, book)
	}

	metrics.RecordBooksImported(SourceImport, len(result.Imported))
	return result, nil
}

// ImportFile imports a JSON catalog file.
func (s *BookService) ImportFile(ctx context.Context, path string) (*ImportResult, error) {
	inputs, err := catalog.ReadImportFile(path)
	if err != nil {
		return nil, domainerrors.Validation("unreadable import file").WithCause(err)
	}

	result, err := s.ImportBooks(ctx, inputs)
	if err != nil {
		return result, err
	}

	s.logger.Info("Catalog file imported",
		"path", path,
		"imported", len(result.Imported),
		"failed", len(result.Failed),
	)
	return result, nil
}

func (s *BookService) queueCover(book *domain.Book) {
	if s.covers == nil || book.CoverURL == "" {
		return
	}
	if err := s.covers.Enqueue(book.ID, book.CoverURL); err != nil {
		s.logger.Warn("Cover placeholder not queued", "book_id", book.ID, "error", err)
	}
}
