package sqlite

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bookbuddy/bookbuddy-server/internal/domain"
	"github.com/bookbuddy/bookbuddy-server/internal/store"
)

type recordingIndexer struct {
	mu  sync.Mutex
	ids []string
}

func (r *recordingIndexer) IndexBook(_ context.Context, b *domain.Book) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ids = append(r.ids, b.ID)
	return nil
}

func TestCreateAndGetBook(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	price := 12.99
	now := time.Now()
	book := &domain.Book{
		ID:            "book-1",
		Title:         "Dune",
		Author:        "Frank Herbert",
		Genres:        []string{"Science Fiction"},
		Moods:         []string{"adventurous", "epic"},
		Description:   "Desert planet.",
		CoverURL:      "https://example.com/dune.jpg",
		ISBN:          "9780441013593",
		PublishedYear: 1965,
		Price:         &price,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.CreateBook(ctx, book); err != nil {
		t.Fatalf("CreateBook: %v", err)
	}

	got, err := s.GetBook(ctx, "book-1")
	if err != nil {
		t.Fatalf("GetBook: %v", err)
	}
	if got.Title != "Dune" || got.PublishedYear != 1965 || got.ISBN != book.ISBN {
		t.Errorf("got %+v", got)
	}
	if got.Price == nil || *got.Price != 12.99 {
		t.Errorf("Price = %v", got.Price)
	}
	if len(got.Moods) != 2 || got.Moods[1] != "epic" {
		t.Errorf("Moods = %v", got.Moods)
	}
	if got.AverageRating != 0 || got.TotalRatings != 0 {
		t.Errorf("new book should have no ratings, got %v/%d", got.AverageRating, got.TotalRatings)
	}

	if err := s.CreateBook(ctx, book); !errors.Is(err, store.ErrAlreadyExists) {
		t.Errorf("duplicate: expected ErrAlreadyExists, got %v", err)
	}
}

func TestCreateBook_OptionalFieldsStayEmpty(t *testing.T) {
	s := newTestStore(t)
	makeTestBook(t, s, 1, "Plain", nil, nil)

	got, err := s.GetBook(context.Background(), "book-01")
	if err != nil {
		t.Fatalf("GetBook: %v", err)
	}
	if got.Price != nil || got.CoverURL != "" || got.PublishedYear != 0 {
		t.Errorf("optional fields set: %+v", got)
	}
	if got.Moods == nil || got.Genres == nil {
		t.Error("tag slices should decode to empty, not nil")
	}
}

func TestCreateBook_NotifiesIndexer(t *testing.T) {
	s := newTestStore(t)
	idx := &recordingIndexer{}
	s.SetSearchIndexer(idx)

	makeTestBook(t, s, 1, "Indexed", nil, nil)

	if len(idx.ids) != 1 || idx.ids[0] != "book-01" {
		t.Errorf("indexed %v", idx.ids)
	}
}

func TestListBooks_MoodFilter(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	makeTestBook(t, s, 1, "Quiet", []string{"calm"}, nil)
	makeTestBook(t, s, 2, "Quest", []string{"adventurous", "epic"}, nil)
	makeTestBook(t, s, 3, "Almost", []string{"adventurous-ish"}, nil)

	books, err := s.ListBooks(ctx, BookFilter{Mood: "adventurous", Limit: 2})
	if err != nil {
		t.Fatalf("ListBooks: %v", err)
	}
	if len(books) != 1 || books[0].Title != "Quest" {
		t.Errorf("got %v, want exactly Quest", titles(books))
	}
}

func TestListBooks_GenreAndLimitKeepCatalogOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	makeTestBook(t, s, 3, "Third", nil, []string{"Fiction"})
	makeTestBook(t, s, 1, "First", nil, []string{"Fiction"})
	makeTestBook(t, s, 2, "Second", nil, []string{"Fiction", "Drama"})
	makeTestBook(t, s, 4, "Other", nil, []string{"Memoir"})

	books, err := s.ListBooks(ctx, BookFilter{Genre: "Fiction", Limit: 2})
	if err != nil {
		t.Fatalf("ListBooks: %v", err)
	}
	if got := titles(books); len(got) != 2 || got[0] != "First" || got[1] != "Second" {
		t.Errorf("got %v, want [First Second]", got)
	}

	all, err := s.ListBooks(ctx, BookFilter{})
	if err != nil {
		t.Fatalf("ListBooks: %v", err)
	}
	if len(all) != 4 {
		t.Errorf("unfiltered len = %d, want 4", len(all))
	}
}

func TestListBooks_MinRating(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	low := makeTestBook(t, s, 1, "Low", nil, nil)
	high := makeTestBook(t, s, 2, "High", nil, nil)
	_, _ = s.db.Exec(`UPDATE books SET average_rating = 3.9 WHERE id = ?`, low.ID)
	_, _ = s.db.Exec(`UPDATE books SET average_rating = 4.0 WHERE id = ?`, high.ID)

	books, err := s.ListBooks(ctx, BookFilter{MinRating: domain.PopularRatingThreshold, Limit: 12})
	if err != nil {
		t.Fatalf("ListBooks: %v", err)
	}
	if got := titles(books); len(got) != 1 || got[0] != "High" {
		t.Errorf("got %v, want [High]", got)
	}
}

func TestGetBooksByIDs_PreservesRequestOrder(t *testing.T) {
	s := newTestStore(t)
	makeTestBook(t, s, 1, "A", nil, nil)
	makeTestBook(t, s, 2, "B", nil, nil)

	books, err := s.GetBooksByIDs(context.Background(), []string{"book-02", "missing", "book-01"})
	if err != nil {
		t.Fatalf("GetBooksByIDs: %v", err)
	}
	if got := titles(books); len(got) != 2 || got[0] != "B" || got[1] != "A" {
		t.Errorf("got %v, want [B A]", got)
	}
}

func TestInsertBookIfAbsent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now()
	book := &domain.Book{ID: "book-seed", Title: "Seeded", Author: "X", CreatedAt: now, UpdatedAt: now}

	inserted, err := s.InsertBookIfAbsent(ctx, book)
	if err != nil || !inserted {
		t.Fatalf("first insert: inserted=%v err=%v", inserted, err)
	}

	book.Title = "Changed"
	inserted, err = s.InsertBookIfAbsent(ctx, book)
	if err != nil || inserted {
		t.Fatalf("second insert: inserted=%v err=%v", inserted, err)
	}

	got, _ := s.GetBook(ctx, "book-seed")
	if got.Title != "Seeded" {
		t.Errorf("existing row overwritten: %q", got.Title)
	}
	if n, _ := s.CountBooks(ctx); n != 1 {
		t.Errorf("CountBooks = %d", n)
	}
}

func TestSetBookCoverBlurHash(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	makeTestBook(t, s, 1, "Covered", nil, nil)

	if err := s.SetBookCoverBlurHash(ctx, "book-01", "LEHV6nWB2yk8pyo0adR*.7kCMdnj"); err != nil {
		t.Fatalf("SetBookCoverBlurHash: %v", err)
	}
	got, _ := s.GetBook(ctx, "book-01")
	if got.CoverBlurHash != "LEHV6nWB2yk8pyo0adR*.7kCMdnj" {
		t.Errorf("CoverBlurHash = %q", got.CoverBlurHash)
	}

	if err := s.SetBookCoverBlurHash(ctx, "missing", "x"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func titles(books []*domain.Book) []string {
	out := make([]string, len(books))
	for i, b := range books {
		out[i] = b.Title
	}
	return out
}
