package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/bookbuddy/bookbuddy-server/internal/domain"
	"github.com/bookbuddy/bookbuddy-server/internal/service"
)

func (s *Server) registerReadingListRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listReadingLists",
		Method:      http.MethodGet,
		Path:        "/api/v1/reading-lists",
		Summary:     "List my reading lists",
		Description: "Returns the caller's reading lists with their books",
		Tags:        []string{"Reading Lists"},
		Security:    bearerAuth,
	}, s.handleListReadingLists)

	huma.Register(s.api, huma.Operation{
		OperationID: "createReadingList",
		Method:      http.MethodPost,
		Path:        "/api/v1/reading-lists",
		Summary:     "Create reading list",
		Description: "Creates an empty reading list",
		Tags:        []string{"Reading Lists"},
		Security:    bearerAuth,
	}, s.handleCreateReadingList)

	huma.Register(s.api, huma.Operation{
		OperationID: "listPublicReadingLists",
		Method:      http.MethodGet,
		Path:        "/api/v1/reading-lists/public",
		Summary:     "List public reading lists",
		Description: "Returns public reading lists, newest first, with their owners",
		Tags:        []string{"Reading Lists"},
	}, s.handleListPublicReadingLists)

	huma.Register(s.api, huma.Operation{
		OperationID: "getReadingList",
		Method:      http.MethodGet,
		Path:        "/api/v1/reading-lists/{id}",
		Summary:     "Get reading list",
		Description: "Returns a reading list if it is public or owned by the caller",
		Tags:        []string{"Reading Lists"},
	}, s.handleGetReadingList)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateReadingList",
		Method:      http.MethodPatch,
		Path:        "/api/v1/reading-lists/{id}",
		Summary:     "Update reading list",
		Description: "Changes a list's name, description or visibility. Omitted fields are left unchanged.",
		Tags:        []string{"Reading Lists"},
		Security:    bearerAuth,
	}, s.handleUpdateReadingList)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteReadingList",
		Method:      http.MethodDelete,
		Path:        "/api/v1/reading-lists/{id}",
		Summary:     "Delete reading list",
		Description: "Deletes one of the caller's reading lists",
		Tags:        []string{"Reading Lists"},
		Security:    bearerAuth,
	}, s.handleDeleteReadingList)

	huma.Register(s.api, huma.Operation{
		OperationID: "addBookToReadingList",
		Method:      http.MethodPost,
		Path:        "/api/v1/reading-lists/{id}/books",
		Summary:     "Add book to reading list",
		Description: "Appends a book to the list. Adding a book already on the list does nothing.",
		Tags:        []string{"Reading Lists"},
		Security:    bearerAuth,
	}, s.handleAddBookToReadingList)

	huma.Register(s.api, huma.Operation{
		OperationID: "removeBookFromReadingList",
		Method:      http.MethodDelete,
		Path:        "/api/v1/reading-lists/{id}/books/{bookId}",
		Summary:     "Remove book from reading list",
		Description: "Removes a book from the list. Removing a book not on the list does nothing.",
		Tags:        []string{"Reading Lists"},
		Security:    bearerAuth,
	}, s.handleRemoveBookFromReadingList)
}

// === DTOs ===

// ReadingListsResponse lists the caller's reading lists.
type ReadingListsResponse struct {
	Lists []service.ReadingListDetail `json:"lists" doc:"Reading lists"`
}

// ReadingListsOutput wraps reading lists for Huma.
type ReadingListsOutput struct {
	Body ReadingListsResponse
}

// CreateReadingListRequest is the request body for creating a list.
type CreateReadingListRequest struct {
	Name        string `json:"name" doc:"List name"`
	Description string `json:"description,omitempty" doc:"List description"`
	IsPublic    bool   `json:"is_public,omitempty" doc:"Whether other users can see the list"`
}

// CreateReadingListInput wraps the create request for Huma.
type CreateReadingListInput struct {
	Body CreateReadingListRequest
}

// ReadingListOutput wraps a reading list for Huma.
type ReadingListOutput struct {
	Body *domain.ReadingList
}

// PublicReadingListsInput pages the public directory.
type PublicReadingListsInput struct {
	Limit int `query:"limit" minimum:"0" maximum:"100" doc:"Maximum results (default 20)"`
}

// PublicReadingListsResponse lists public reading lists.
type PublicReadingListsResponse struct {
	Lists []service.PublicReadingList `json:"lists" doc:"Public reading lists"`
}

// PublicReadingListsOutput wraps public lists for Huma.
type PublicReadingListsOutput struct {
	Body PublicReadingListsResponse
}

// ReadingListIDInput identifies a reading list.
type ReadingListIDInput struct {
	ID string `path:"id" doc:"Reading list ID"`
}

// ReadingListDetailOutput wraps a list with its books for Huma.
type ReadingListDetailOutput struct {
	Body *service.ReadingListDetail
}

// UpdateReadingListRequest is a partial update.
type UpdateReadingListRequest struct {
	Name        *string `json:"name,omitempty" doc:"New name"`
	Description *string `json:"description,omitempty" doc:"New description"`
	IsPublic    *bool   `json:"is_public,omitempty" doc:"New visibility"`
}

// UpdateReadingListInput wraps the update request for Huma.
type UpdateReadingListInput struct {
	ID   string `path:"id" doc:"Reading list ID"`
	Body UpdateReadingListRequest
}

// AddBookToListRequest names the book to add.
type AddBookToListRequest struct {
	BookID string `json:"book_id" doc:"Book ID"`
}

// AddBookToListInput wraps the add request for Huma.
type AddBookToListInput struct {
	ID   string `path:"id" doc:"Reading list ID"`
	Body AddBookToListRequest
}

// RemoveBookFromListInput identifies a book on a list.
type RemoveBookFromListInput struct {
	ID     string `path:"id" doc:"Reading list ID"`
	BookID string `path:"bookId" doc:"Book ID"`
}

// === Handlers ===

func (s *Server) handleListReadingLists(ctx context.Context, _ *struct{}) (*ReadingListsOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	lists, err := s.services.ReadingList.GetUserReadingLists(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &ReadingListsOutput{Body: ReadingListsResponse{Lists: lists}}, nil
}

func (s *Server) handleCreateReadingList(ctx context.Context, input *CreateReadingListInput) (*ReadingListOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	list, err := s.services.ReadingList.CreateReadingList(ctx, userID, service.CreateReadingListRequest{
		Name:        input.Body.Name,
		Description: input.Body.Description,
		IsPublic:    input.Body.IsPublic,
	})
	if err != nil {
		return nil, err
	}
	return &ReadingListOutput{Body: list}, nil
}

func (s *Server) handleListPublicReadingLists(ctx context.Context, input *PublicReadingListsInput) (*PublicReadingListsOutput, error) {
	lists, err := s.services.ReadingList.GetPublicReadingLists(ctx, input.Limit)
	if err != nil {
		return nil, err
	}
	return &PublicReadingListsOutput{Body: PublicReadingListsResponse{Lists: lists}}, nil
}

func (s *Server) handleGetReadingList(ctx context.Context, input *ReadingListIDInput) (*ReadingListDetailOutput, error) {
	list, err := s.services.ReadingList.GetReadingList(ctx, optionalUserID(ctx), input.ID)
	if err != nil {
		return nil, err
	}
	return &ReadingListDetailOutput{Body: list}, nil
}

func (s *Server) handleUpdateReadingList(ctx context.Context, input *UpdateReadingListInput) (*ReadingListOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	list, err := s.services.ReadingList.UpdateReadingList(ctx, userID, input.ID, service.UpdateReadingListRequest{
		Name:        input.Body.Name,
		Description: input.Body.Description,
		IsPublic:    input.Body.IsPublic,
	})
	if err != nil {
		return nil, err
	}
	return &ReadingListOutput{Body: list}, nil
}

func (s *Server) handleDeleteReadingList(ctx context.Context, input *ReadingListIDInput) (*MessageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.ReadingList.DeleteReadingList(ctx, userID, input.ID); err != nil {
		return nil, err
	}
	return message("Reading list deleted"), nil
}

func (s *Server) handleAddBookToReadingList(ctx context.Context, input *AddBookToListInput) (*MessageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.ReadingList.AddBookToList(ctx, userID, input.ID, input.Body.BookID); err != nil {
		return nil, err
	}
	return message("Book added to reading list"), nil
}

func (s *Server) handleRemoveBookFromReadingList(ctx context.Context, input *RemoveBookFromListInput) (*MessageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.ReadingList.RemoveBookFromList(ctx, userID, input.ID, input.BookID); err != nil {
		return nil, err
	}
	return message("Book removed from reading list"), nil
}
