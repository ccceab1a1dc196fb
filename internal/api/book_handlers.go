package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/bookbuddy/bookbuddy-server/internal/catalog"
	"github.com/bookbuddy/bookbuddy-server/internal/domain"
	"github.com/bookbuddy/bookbuddy-server/internal/service"
)

func (s *Server) registerBookRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "searchBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/books",
		Summary:     "Search books",
		Description: "Lists catalog books. A title query wins over mood, and mood wins over genre.",
		Tags:        []string{"Books"},
	}, s.handleSearchBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "getFeaturedBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/featured",
		Summary:     "Featured books",
		Description: "Returns the highest rated books",
		Tags:        []string{"Books"},
	}, s.handleGetFeaturedBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBooksByMood",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/moods/{mood}",
		Summary:     "Books by mood",
		Description: "Lists books tagged with a mood",
		Tags:        []string{"Books"},
	}, s.handleGetBooksByMood)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBook",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{id}",
		Summary:     "Get book",
		Description: "Returns a book by ID",
		Tags:        []string{"Books"},
	}, s.handleGetBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "addBook",
		Method:      http.MethodPost,
		Path:        "/api/v1/books",
		Summary:     "Add book",
		Description: "Adds a book to the catalog. HTML descriptions are converted to Markdown.",
		Tags:        []string{"Books"},
		Security:    bearerAuth,
	}, s.handleAddBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "seedBooks",
		Method:      http.MethodPost,
		Path:        "/api/v1/books/seed",
		Summary:     "Seed catalog",
		Description: "Loads the sample catalog if the catalog is empty",
		Tags:        []string{"Books"},
		Security:    bearerAuth,
	}, s.handleSeedBooks)
}

// === DTOs ===

// SearchBooksInput contains the catalog filters.
type SearchBooksInput struct {
	Query string `query:"query" doc:"Title search"`
	Genre string `query:"genre" doc:"Genre filter"`
	Mood  string `query:"mood" doc:"Mood filter"`
	Limit int    `query:"limit" minimum:"0" maximum:"100" doc:"Maximum results (default 20)"`
}

// MoodBooksInput selects books for a mood.
type MoodBooksInput struct {
	Mood  string `path:"mood" doc:"Mood tag"`
	Limit int    `query:"limit" minimum:"0" maximum:"100" doc:"Maximum results (default 10)"`
}

// BookIDInput identifies a book.
type BookIDInput struct {
	ID string `path:"id" doc:"Book ID"`
}

// BooksResponse is a list of books.
type BooksResponse struct {
	Books []*domain.Book `json:"books" doc:"Books"`
}

// BooksOutput wraps a book list for Huma.
type BooksOutput struct {
	Body BooksResponse
}

// BookOutput wraps a book for Huma.
type BookOutput struct {
	Body *domain.Book
}

// AddBookRequest is the request body for adding a book.
type AddBookRequest struct {
	Title         string   `json:"title" doc:"Title"`
	Author        string   `json:"author" doc:"Author"`
	Genres        []string `json:"genres,omitempty" doc:"Genre tags"`
	Moods         []string `json:"moods,omitempty" doc:"Mood tags"`
	Description   string   `json:"description,omitempty" doc:"Description; HTML is converted to Markdown"`
	CoverURL      string   `json:"cover_url,omitempty" doc:"Cover image URL"`
	ISBN          string   `json:"isbn,omitempty" doc:"ISBN"`
	PublishedYear int      `json:"published_year,omitempty" doc:"Year of publication"`
	Price         *float64 `json:"price,omitempty" doc:"Price"`
}

// AddBookInput wraps the add book request for Huma.
type AddBookInput struct {
	Body AddBookRequest
}

// SeedResponse reports how many sample books were added.
type SeedResponse struct {
	Seeded int `json:"seeded" doc:"Books added; 0 when the catalog already had books"`
}

// SeedOutput wraps the seed response for Huma.
type SeedOutput struct {
	Body SeedResponse
}

func booksOutput(books []*domain.Book) *BooksOutput {
	if books == nil {
		books = []*domain.Book{}
	}
	return &BooksOutput{Body: BooksResponse{Books: books}}
}

// === Handlers ===

func (s *Server) handleSearchBooks(ctx context.Context, input *SearchBooksInput) (*BooksOutput, error) {
	books, err := s.services.Book.SearchBooks(ctx, service.BookQuery{
		Query: input.Query,
		Genre: input.Genre,
		Mood:  input.Mood,
		Limit: input.Limit,
	})
	if err != nil {
		return nil, err
	}
	return booksOutput(books), nil
}

func (s *Server) handleGetFeaturedBooks(ctx context.Context, _ *struct{}) (*BooksOutput, error) {
	books, err := s.services.Book.GetFeaturedBooks(ctx)
	if err != nil {
		return nil, err
	}
	return booksOutput(books), nil
}

func (s *Server) handleGetBooksByMood(ctx context.Context, input *MoodBooksInput) (*BooksOutput, error) {
	books, err := s.services.Book.GetBooksByMood(ctx, input.Mood, input.Limit)
	if err != nil {
		return nil, err
	}
	return booksOutput(books), nil
}

func (s *Server) handleGetBook(ctx context.Context, input *BookIDInput) (*BookOutput, error) {
	book, err := s.services.Book.GetBook(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &BookOutput{Body: book}, nil
}

func (s *Server) handleAddBook(ctx context.Context, input *AddBookInput) (*BookOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	book, err := s.services.Book.AddBook(ctx, userID, catalog.BookInput{
		Title:         input.Body.Title,
		Author:        input.Body.Author,
		Genres:        input.Body.Genres,
		Moods:         input.Body.Moods,
		Description:   input.Body.Description,
		CoverURL:      input.Body.CoverURL,
		ISBN:          input.Body.ISBN,
		PublishedYear: input.Body.PublishedYear,
		Price:         input.Body.Price,
	})
	if err != nil {
		return nil, err
	}
	return &BookOutput{Body: book}, nil
}

func (s *Server) handleSeedBooks(ctx context.Context, _ *struct{}) (*SeedOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	n, err := s.services.Book.SeedBooks(ctx)
	if err != nil {
		return nil, err
	}
	return &SeedOutput{Body: SeedResponse{Seeded: n}}, nil
}
