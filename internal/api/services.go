package api

import (
	"context"

	"github.com/bookbuddy/bookbuddy-server/internal/service"
)

// Services groups all business logic services used by the API server.
// This reduces the parameter count for NewServer and improves testability.
type Services struct {
	Auth           *service.AuthService
	Book           *service.BookService
	Review         *service.ReviewService
	ReadingList    *service.ReadingListService
	User           *service.UserService
	Chat           *service.ChatService
	Recommendation *service.RecommendationService
	Payment        *service.PaymentService
}

// Pinger is a backend that can report whether it answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

// DocumentCounter is implemented by the search index.
type DocumentCounter interface {
	DocumentCount() (uint64, error)
}

// Backends are the stores the health check probes. Nil entries are
// reported as not configured.
type Backends struct {
	Database Pinger          // SQLite catalog and accounts
	Chats    Pinger          // Badger chat sessions
	Search   DocumentCounter // Bleve title index
}
