package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/require"

	"github.com/bookbuddy/bookbuddy-server/internal/ai"
	"github.com/bookbuddy/bookbuddy-server/internal/auth"
	"github.com/bookbuddy/bookbuddy-server/internal/payment"
	"github.com/bookbuddy/bookbuddy-server/internal/search"
	"github.com/bookbuddy/bookbuddy-server/internal/service"
	"github.com/bookbuddy/bookbuddy-server/internal/store"
	"github.com/bookbuddy/bookbuddy-server/internal/store/sqlite"
	"github.com/bookbuddy/bookbuddy-server/internal/validation"
)

const (
	testKeyHex        = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"
	testPaymentSecret = "test_secret"
)

// testEnvelope decodes a success envelope with typed data.
type testEnvelope[T any] struct {
	Version int            `json:"v"`
	Success bool           `json:"success"`
	Data    T              `json:"data"`
	Error   string         `json:"error"`
	Code    string         `json:"code"`
	Details map[string]any `json:"details"`
}

// testServer wraps the API server for handler tests.
type testServer struct {
	*Server
	api       humatest.TestAPI
	db        *sqlite.Store
	completer *ai.StubCompleter
	signer    *payment.Verifier
}

type testServerOptions struct {
	replies      []ai.StubReply
	authPerMin   int
	authBurst    int
	skipBackends bool
}

func setupTestServer(t *testing.T, opts ...testServerOptions) *testServer {
	t.Helper()
	var o testServerOptions
	if len(opts) > 0 {
		o = opts[0]
	}
	if o.authPerMin == 0 {
		o.authPerMin = 6000
		o.authBurst = 1000
	}

	dir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	db, err := sqlite.Open(filepath.Join(dir, "bookbuddy.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	chats, err := store.New(filepath.Join(dir, "chat"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = chats.Close() })

	index, err := search.NewSearchIndex(search.Options{DataPath: dir})
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })
	db.SetSearchIndexer(index)

	tokens, err := auth.NewTokenService(testKeyHex, 15*time.Minute, 24*time.Hour)
	require.NoError(t, err)

	v := validation.New()
	completer := ai.NewStubCompleter(o.replies...)
	signer := payment.NewVerifier(testPaymentSecret)
	hasher := auth.NewPasswordHasher(auth.ArgonParams{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32})

	sessions := service.NewSessionService(db, tokens, logger)
	books := service.NewBookService(db, index, nil, v, logger)
	services := &Services{
		Auth:           service.NewAuthService(db, tokens, sessions, hasher, v, logger),
		Book:           books,
		Review:         service.NewReviewService(db, v, logger),
		ReadingList:    service.NewReadingListService(db, v, logger),
		User:           service.NewUserService(db, v, logger),
		Chat:           service.NewChatService(chats, db, completer, v, logger),
		Recommendation: service.NewRecommendationService(db, books, completer, v, logger),
		Payment:        service.NewPaymentService(db, signer, "rzp_test_key", v, logger),
	}

	backends := Backends{Database: db, Chats: chats, Search: index}
	if o.skipBackends {
		backends = Backends{}
	}

	s := NewServer(services, backends, Options{
		AuthRequestsPerMinute: o.authPerMin,
		AuthBurst:             o.authBurst,
	}, logger)
	t.Cleanup(s.Close)

	return &testServer{
		Server:    s,
		api:       humatest.Wrap(t, s.api),
		db:        db,
		completer: completer,
		signer:    signer,
	}
}

// decodeData unmarshals a response envelope and returns its data.
func decodeData[T any](t *testing.T, body []byte) T {
	t.Helper()
	var env testEnvelope[T]
	require.NoError(t, json.Unmarshal(body, &env), "body: %s", body)
	require.True(t, env.Success, "body: %s", body)
	return env.Data
}

// decodeError unmarshals an error envelope.
func decodeError(t *testing.T, body []byte) testEnvelope[any] {
	t.Helper()
	var env testEnvelope[any]
	require.NoError(t, json.Unmarshal(body, &env), "body: %s", body)
	require.False(t, env.Success, "body: %s", body)
	return env
}

// register signs up a user and returns the access token and user ID.
func (ts *testServer) register(t *testing.T, name string) (token, userID string) {
	t.Helper()
	resp := ts.api.Post("/api/v1/auth/register", map[string]any{
		"email":        name + "@example.com",
		"password":     "correct horse battery",
		"display_name": name,
	})
	require.Equal(t, http.StatusOK, resp.Code, "register failed: %s", resp.Body.String())

	data := decodeData[AuthResponse](t, resp.Body.Bytes())
	return data.AccessToken, data.User.ID
}

func bearer(token string) string {
	return "Authorization: Bearer " + token
}

// addBook creates a book through the API.
func (ts *testServer) addBook(t *testing.T, token string, body map[string]any) string {
	t.Helper()
	resp := ts.api.Post("/api/v1/books", bearer(token), body)
	require.Equal(t, http.StatusOK, resp.Code, "add book failed: %s", resp.Body.String())
	return decodeData[map[string]any](t, resp.Body.Bytes())["id"].(string)
}
