package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bookbuddy/bookbuddy-server/internal/ai"
	"github.com/bookbuddy/bookbuddy-server/internal/auth"
	"github.com/bookbuddy/bookbuddy-server/internal/catalog"
	"github.com/bookbuddy/bookbuddy-server/internal/domain"
	"github.com/bookbuddy/bookbuddy-server/internal/payment"
	"github.com/bookbuddy/bookbuddy-server/internal/search"
	"github.com/bookbuddy/bookbuddy-server/internal/store"
	"github.com/bookbuddy/bookbuddy-server/internal/store/sqlite"
	"github.com/bookbuddy/bookbuddy-server/internal/validation"
)

const (
	testKeyHex        = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"
	testPaymentSecret = "test_secret"
	testPaymentKeyID  = "rzp_test_key"
)

var testArgonParams = auth.ArgonParams{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}

// testEnv wires every service against temporary stores.
type testEnv struct {
	store     *sqlite.Store
	chats     *store.Store
	index     *search.SearchIndex
	completer *ai.StubCompleter
	tokens    *auth.TokenService

	auth            *AuthService
	sessions        *SessionService
	books           *BookService
	reviews         *ReviewService
	lists           *ReadingListService
	users           *UserService
	chat            *ChatService
	recommendations *RecommendationService
	payments        *PaymentService
}

func setupServices(t *testing.T, replies ...ai.StubReply) *testEnv {
	t.Helper()
	dir := t.TempDir()

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
	completer := ai.NewStubCompleter(replies...)

	env := &testEnv{
		store:     db,
		chats:     chats,
		index:     index,
		completer: completer,
		tokens:    tokens,
	}
	env.sessions = NewSessionService(db, tokens, nil)
	env.auth = NewAuthService(db, tokens, env.sessions, auth.NewPasswordHasher(testArgonParams), v, nil)
	env.books = NewBookService(db, index, nil, v, nil)
	env.reviews = NewReviewService(db, v, nil)
	env.lists = NewReadingListService(db, v, nil)
	env.users = NewUserService(db, v, nil)
	env.chat = NewChatService(chats, db, completer, v, nil)
	env.recommendations = NewRecommendationService(db, env.books, completer, v, nil)
	env.payments = NewPaymentService(db, payment.NewVerifier(testPaymentSecret), testPaymentKeyID, v, nil)
	return env
}

// register creates an account and returns its user ID.
func (e *testEnv) register(t *testing.T, name string) string {
	t.Helper()
	resp, err := e.auth.Register(context.Background(), RegisterRequest{
		Email:       name + "@example.com",
		Password:    "correct horse battery",
		DisplayName: name,
	})
	require.NoError(t, err)
	return resp.User.ID
}

// addBook stores a book through the catalog service.
func (e *testEnv) addBook(t *testing.T, title string, genres, moods []string) *domain.Book {
	t.Helper()
	book, err := e.books.AddBook(context.Background(), "", catalog.BookInput{
		Title:       title,
		Author:      "Author of " + title,
		Genres:      genres,
		Moods:       moods,
		Description: "A book called " + title + ".",
	})
	require.NoError(t, err)
	// Keep created_at strictly increasing so catalog order is insertion order.
	time.Sleep(2 * time.Millisecond)
	return book
}

// review writes a rating for a book.
func (e *testEnv) review(t *testing.T, userID, bookID string, rating int) *domain.Review {
	t.Helper()
	r, err := e.reviews.AddReview(context.Background(), userID, AddReviewRequest{BookID: bookID, Rating: rating})
	require.NoError(t, err)
	return r
}

func bookIDs(books []*domain.Book) []string {
	out := make([]string, len(books))
	for i, b := range books {
		out[i] = b.ID
	}
	return out
}

func bookTitles(books []*domain.Book) []string {
	out := make([]string, len(books))
	for i, b := range books {
		out[i] = b.Title
	}
	return out
}
