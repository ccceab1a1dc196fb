package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bookbuddy/bookbuddy-server/internal/domain"
	domainerrors "github.com/bookbuddy/bookbuddy-server/internal/errors"
	"github.com/bookbuddy/bookbuddy-server/internal/id"
	"github.com/bookbuddy/bookbuddy-server/internal/store"
	"github.com/bookbuddy/bookbuddy-server/internal/store/sqlite"
	"github.com/bookbuddy/bookbuddy-server/internal/validation"
)

const listNotOwned = "reading list not found or unauthorized"

// ReadingListService manages user reading lists.
type ReadingListService struct {
	store     *sqlite.Store
	validator *validation.Validator
	logger    *slog.Logger
}

// NewReadingListService creates a new reading list service.
func NewReadingListService(store *sqlite.Store, validator *validation.Validator, logger *slog.Logger) *ReadingListService {
	return &ReadingListService{
		store:     store,
		validator: validator,
		logger:    loggerOrDiscard(logger),
	}
}

// CreateReadingListRequest creates an empty list.
type CreateReadingListRequest struct {
	Name        string `json:"name" validate:"notblank,max=200"`
	Description string `json:"description" validate:"max=2000"`
	IsPublic    bool   `json:"is_public"`
}

// UpdateReadingListRequest is a partial update; nil fields are left alone.
type UpdateReadingListRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitnil,notblank,max=200"`
	Description *string `json:"description,omitempty" validate:"omitnil,max=2000"`
	IsPublic    *bool   `json:"is_public,omitempty"`
}

// ReadingListDetail is a list with its books resolved.
type ReadingListDetail struct {
	*domain.ReadingList
	Books     []*domain.Book `json:"books"`
	BookCount int            `json:"book_count"`
	Owner     *UserSummary   `json:"owner,omitempty"`
}

// PublicReadingList is a list as shown in the public directory.
type PublicReadingList struct {
	*domain.ReadingList
	Owner     *UserSummary `json:"owner"`
	BookCount int          `json:"book_count"`
}

// CreateReadingList creates an empty list owned by userID.
func (s *ReadingListService) CreateReadingList(ctx context.Context, userID string, req CreateReadingListRequest) (*domain.ReadingList, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Description = strings.TrimSpace(req.Description)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	listID, err := id.Generate("list")
	if err != nil {
		return nil, fmt.Errorf("generate list ID: %w", err)
	}

	now := time.Now()
	list := &domain.ReadingList{
		ID:          listID,
		UserID:      userID,
		Name:        req.Name,
		Description: req.Description,
		BookIDs:     []string{},
		IsPublic:    req.IsPublic,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.CreateReadingList(ctx, list); err != nil {
		return nil, fmt.Errorf("create reading list: %w", err)
	}

	s.logger.Info("Reading list created", "list_id", listID, "user_id", userID)
	return list, nil
}

// GetUserReadingLists returns the caller's lists with their books.
func (s *ReadingListService) GetUserReadingLists(ctx context.Context, userID string) ([]ReadingListDetail, error) {
	lists, err := s.store.ListUserReadingLists(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list reading lists: %w", err)
	}

	out := make([]ReadingListDetail, len(lists))
	for i, l := range lists {
		books, err := s.store.GetBooksByIDs(ctx, l.BookIDs)
		if err != nil {
			return nil, fmt.Errorf("load list books: %w", err)
		}
		out[i] = ReadingListDetail{ReadingList: l, Books: books, BookCount: len(books)}
	}
	return out, nil
}

// GetReadingList returns a list visible to viewerID, which is "" for anonymous
// callers. Private lists of other users are reported as missing.
func (s *ReadingListService) GetReadingList(ctx context.Context, viewerID, listID string) (*ReadingListDetail, error) {
	list, err := s.store.GetReadingList(ctx, listID)
	if err != nil {
		return nil, notFound(err, "reading list not found")
	}
	if !list.IsVisibleTo(viewerID) {
		return nil, domainerrors.NotFound("reading list not found")
	}

	books, err := s.store.GetBooksByIDs(ctx, list.BookIDs)
	if err != nil {
		return nil, fmt.Errorf("load list books: %w", err)
	}

	var owner *UserSummary
	if u, err := s.store.GetUser(ctx, list.UserID); err == nil {
		owner = summarize(u)
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("load list owner: %w", err)
	}

	return &ReadingListDetail{
		ReadingList: list,
		Books:       books,
		BookCount:   len(books),
		Owner:       owner,
	}, nil
}

// GetPublicReadingLists returns public lists newest first with their owners.
func (s *ReadingListService) GetPublicReadingLists(ctx context.Context, limit int) ([]PublicReadingList, error) {
	lists, err := s.store.ListPublicReadingLists(ctx, limitOr(limit, DefaultPublicListsLimit))
	if err != nil {
		return nil, fmt.Errorf("list public reading lists: %w", err)
	}

	ownerIDs := make([]string, len(lists))
	for i, l := range lists {
		ownerIDs[i] = l.UserID
	}
	owners, err := s.store.GetUsersByIDs(ctx, ownerIDs)
	if err != nil {
		return nil, fmt.Errorf("load list owners: %w", err)
	}

	out := make([]PublicReadingList, len(lists))
	for i, l := range lists {
		out[i] = PublicReadingList{
			ReadingList: l,
			Owner:       summarize(owners[l.UserID]),
			BookCount:   len(l.BookIDs),
		}
	}
	return out, nil
}

// AddBookToList appends a book to one of the caller's lists.
// A book already on the list is left where it is.
func (s *ReadingListService) AddBookToList(ctx context.Context, userID, listID, bookID string) error {
	if _, err := s.ownedList(ctx, userID, listID); err != nil {
		return err
	}

	added, err := s.store.AddBookToList(ctx, listID, bookID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFound("book not found")
		}
		return fmt.Errorf("add book to list: %w", err)
	}
	if added {
		s.logger.Debug("Book added to reading list", "list_id", listID, "book_id", bookID)
	}
	return nil
}

// RemoveBookFromList drops a book from one of the caller's lists.
// Removing a book that isn't there is a no-op.
func (s *ReadingListService) RemoveBookFromList(ctx context.Context, userID, listID, bookID string) error {
	if _, err := s.ownedList(ctx, userID, listID); err != nil {
		return err
	}
	if _, err := s.store.RemoveBookFromList(ctx, listID, bookID); err != nil {
		return fmt.Errorf("remove book from list: %w", err)
	}
	return nil
}

// UpdateReadingList applies a partial update to one of the caller's lists.
func (s *ReadingListService) UpdateReadingList(ctx context.Context, userID, listID string, req UpdateReadingListRequest) (*domain.ReadingList, error) {
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		req.Name = &name
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	list, err := s.ownedList(ctx, userID, listID)
	if err != nil {
		return nil, err
	}

	patch := domain.ReadingListPatch{
		Name:        req.Name,
		Description: req.Description,
		IsPublic:    req.IsPublic,
	}
	if !patch.Apply(list) {
		return list, nil
	}

	if err := s.store.UpdateReadingList(ctx, list); err != nil {
		return nil, notFound(err, listNotOwned)
	}
	return list, nil
}

// DeleteReadingList removes one of the caller's lists.
func (s *ReadingListService) DeleteReadingList(ctx context.Context, userID, listID string) error {
	if _, err := s.ownedList(ctx, userID, listID); err != nil {
		return err
	}
	if err := s.store.DeleteReadingList(ctx, listID); err != nil {
		return notFound(err, listNotOwned)
	}

	s.logger.Info("Reading list deleted", "list_id", listID, "user_id", userID)
	return nil
}

func (s *ReadingListService) ownedList(ctx context.Context, userID, listID string) (*domain.ReadingList, error) {
	list, err := s.store.GetReadingList(ctx, listID)
	if err != nil {
		return nil, notFound(err, listNotOwned)
	}
	if !list.IsOwnedBy(userID) {
		return nil, domainerrors.NotFound(listNotOwned)
	}
	return list, nil
}
