package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookbuddy/bookbuddy-server/internal/domain"
	"github.com/bookbuddy/bookbuddy-server/internal/service"
)

func (ts *testServer) createList(t *testing.T, token, name string, public bool) string {
	t.Helper()
	resp := ts.api.Post("/api/v1/reading-lists", bearer(token), map[string]any{
		"name":      name,
		"is_public": public,
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	return decodeData[domain.ReadingList](t, resp.Body.Bytes()).ID
}

func TestReadingLists_AddIsIdempotent(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.register(t, "reader")
	dune := ts.addBook(t, token, map[string]any{"title": "Dune", "author": "Frank Herbert"})
	emma := ts.addBook(t, token, map[string]any{"title": "Emma", "author": "Jane Austen"})
	listID := ts.createList(t, token, "Summer", false)

	for _, bookID := range []string{dune, emma, dune} {
		resp := ts.api.Post("/api/v1/reading-lists/"+listID+"/books", bearer(token), map[string]any{"book_id": bookID})
		require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	}

	resp := ts.api.Get("/api/v1/reading-lists/"+listID, bearer(token))
	require.Equal(t, http.StatusOK, resp.Code)
	list := decodeData[service.ReadingListDetail](t, resp.Body.Bytes())
	assert.Equal(t, []string{dune, emma}, list.BookIDs)
	assert.Equal(t, 2, list.BookCount)

	// Removing a book twice is fine.
	for range 2 {
		resp = ts.api.Delete("/api/v1/reading-lists/"+listID+"/books/"+dune, bearer(token))
		require.Equal(t, http.StatusOK, resp.Code)
	}

	resp = ts.api.Get("/api/v1/reading-lists", bearer(token))
	require.Equal(t, http.StatusOK, resp.Code)
	lists := decodeData[ReadingListsResponse](t, resp.Body.Bytes()).Lists
	require.Len(t, lists, 1)
	assert.Equal(t, []string{emma}, lists[0].BookIDs)
}

func TestReadingLists_Visibility(t *testing.T) {
	ts := setupTestServer(t)
	owner, _ := ts.register(t, "owner")
	other, _ := ts.register(t, "other")
	private := ts.createList(t, owner, "Secret", false)
	public := ts.createList(t, owner, "Shared", true)

	tests := []struct {
		name       string
		listID     string
		headers    []any
		wantStatus int
	}{
		{"owner sees private", private, []any{bearer(owner)}, http.StatusOK},
		{"other cannot see private", private, []any{bearer(other)}, http.StatusNotFound},
		{"anonymous cannot see private", private, nil, http.StatusNotFound},
		{"anonymous sees public", public, nil, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ts.api.Get("/api/v1/reading-lists/"+tt.listID, tt.headers...)
			assert.Equal(t, tt.wantStatus, resp.Code, resp.Body.String())
		})
	}

	resp := ts.api.Get("/api/v1/reading-lists/public")
	require.Equal(t, http.StatusOK, resp.Code)
	lists := decodeData[PublicReadingListsResponse](t, resp.Body.Bytes()).Lists
	require.Len(t, lists, 1)
	assert.Equal(t, "Shared", lists[0].Name)
	assert.Equal(t, "owner", lists[0].Owner.DisplayName)
}

func TestReadingLists_OwnerOnlyMutations(t *testing.T) {
	ts := setupTestServer(t)
	owner, _ := ts.register(t, "owner")
	other, _ := ts.register(t, "other")
	bookID := ts.addBook(t, owner, map[string]any{"title": "Dune", "author": "Frank Herbert"})
	listID := ts.createList(t, owner, "Mine", true)

	resp := ts.api.Post("/api/v1/reading-lists/"+listID+"/books", bearer(other), map[string]any{"book_id": bookID})
	require.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, "reading list not found or unauthorized", decodeError(t, resp.Body.Bytes()).Error)

	resp = ts.api.Patch("/api/v1/reading-lists/"+listID, bearer(other), map[string]any{"name": "Stolen"})
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = ts.api.Delete("/api/v1/reading-lists/"+listID, bearer(other))
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestReadingLists_UpdateAndDelete(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.register(t, "reader")
	listID := ts.createList(t, token, "Draft", false)

	resp := ts.api.Patch("/api/v1/reading-lists/"+listID, bearer(token), map[string]any{
		"name":      "  Final  ",
		"is_public": true,
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	list := decodeData[domain.ReadingList](t, resp.Body.Bytes())
	assert.Equal(t, "Final", list.Name)
	assert.True(t, list.IsPublic)

	resp = ts.api.Patch("/api/v1/reading-lists/"+listID, bearer(token), map[string]any{"name": " "})
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = ts.api.Delete("/api/v1/reading-lists/"+listID, bearer(token))
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Get("/api/v1/reading-lists/"+listID, bearer(token))
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestReadingLists_CreateValidation(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.register(t, "reader")

	resp := ts.api.Post("/api/v1/reading-lists", bearer(token), map[string]any{"name": ""})
	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Contains(t, decodeError(t, resp.Body.Bytes()).Details, "name")
}
