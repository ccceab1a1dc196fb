package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bookbuddy/bookbuddy-server/internal/ai"
	"github.com/bookbuddy/bookbuddy-server/internal/domain"
	"github.com/bookbuddy/bookbuddy-server/internal/metrics"
	"github.com/bookbuddy/bookbuddy-server/internal/recommend"
	"github.com/bookbuddy/bookbuddy-server/internal/store"
	"github.com/bookbuddy/bookbuddy-server/internal/store/sqlite"
	"github.com/bookbuddy/bookbuddy-server/internal/validation"
)

// Replies stored when the assistant has nothing to say.
const (
	ChatEmptyReply   = "I'm sorry, I couldn't generate a response."
	ChatFailureReply = "I'm sorry, I'm having trouble responding right now. Please try again in a moment."
)

// chatRecentReviews is how many of the user's latest reviews go into the system prompt.
const chatRecentReviews = 5

// ChatService runs the assistant conversation. Each user has one session;
// every exchange appends the user's message and exactly one assistant reply.
type ChatService struct {
	chats     *store.Store
	store     *sqlite.Store
	completer ai.Completer
	validator *validation.Validator
	logger    *slog.Logger
	now       func() time.Time
}

// NewChatService creates a new chat service.
func NewChatService(
	chats *store.Store,
	store *sqlite.Store,
	completer ai.Completer,
	validator *validation.Validator,
	logger *slog.Logger,
) *ChatService {
	return &ChatService{
		chats:     chats,
		store:     store,
		completer: completer,
		validator: validator,
		logger:    loggerOrDiscard(logger),
		now:       time.Now,
	}
}

// SendMessageRequest is one user turn.
type SendMessageRequest struct {
	Message string `json:"message" validate:"notblank,max=4000"`
}

// GetChatSession returns the caller's session, or nil when there is none.
func (s *ChatService) GetChatSession(ctx context.Context, userID string) (*domain.ChatSession, error) {
	session, err := s.chats.GetChatSession(ctx, userID)
	if store.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get chat session: %w", err)
	}
	return session, nil
}

// SendMessage asks the assistant for a reply to the user's message and stores
// both in one write. Completion failures never surface: a fixed apology is
// stored and returned instead.
func (s *ChatService) SendMessage(ctx context.Context, userID string, req SendMessageRequest) (*domain.ChatMessage, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	session, err := s.GetChatSession(ctx, userID)
	if err != nil {
		return nil, err
	}
	var history []domain.ChatMessage
	if session != nil {
		history = session.Messages
	}

	userMsg := s.message(domain.ChatRoleUser, req.Message)
	pending := &domain.ChatSession{UserID: userID, Messages: append(slices.Clip(history), userMsg)}

	reply := s.complete(ctx, userID, pending)

	if _, err := s.chats.AppendChatMessages(ctx, userID, userMsg, reply); err != nil {
		return nil, fmt.Errorf("append chat exchange: %w", err)
	}
	return &reply, nil
}

func (s *ChatService) complete(ctx context.Context, userID string, session *domain.ChatSession) domain.ChatMessage {
	system, err := s.systemPrompt(ctx, userID)
	if err != nil {
		s.logger.Warn("Chat context unavailable", "user_id", userID, "error", err)
		metrics.RecordAIFallback("chat")
		return s.message(domain.ChatRoleAssistant, ChatFailureReply)
	}

	history := session.Recent(domain.ChatContextWindow)
	messages := make([]ai.Message, 0, len(history)+1)
	messages = append(messages, ai.System(system))
	for _, m := range history {
		messages = append(messages, ai.Message{Role: ai.Role(m.Role), Content: m.Content})
	}

	content, err := s.completer.Complete(ctx, ai.Request{
		Messages:    messages,
		Temperature: recommend.CreativeTemperature,
		MaxTokens:   recommend.ChatMaxTokens,
	})
	if err != nil {
		s.logger.Warn("Chat completion failed", "user_id", userID, "error", err)
		metrics.RecordAIFallback("chat")
		return s.message(domain.ChatRoleAssistant, ChatFailureReply)
	}
	if strings.TrimSpace(content) == "" {
		content = ChatEmptyReply
	}
	return s.message(domain.ChatRoleAssistant, content)
}

func (s *ChatService) systemPrompt(ctx context.Context, userID string) (string, error) {
	prefs, err := s.store.GetUserPreferences(ctx, userID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return "", fmt.Errorf("get preferences: %w", err)
	}

	reviews, err := s.store.ListUserReviews(ctx, userID, chatRecentReviews)
	if err != nil {
		return "", fmt.Errorf("list reviews: %w", err)
	}
	rated, err := ratedBooks(ctx, s.store, reviews)
	if err != nil {
		return "", err
	}

	return recommend.ChatSystemPrompt(prefs, rated), nil
}

// ClearChatSession deletes the caller's session. Clearing when there is no
// session is a no-op.
func (s *ChatService) ClearChatSession(ctx context.Context, userID string) error {
	deleted, err := s.chats.DeleteChatSession(ctx, userID)
	if err != nil {
		return fmt.Errorf("delete chat session: %w", err)
	}
	if deleted {
		s.logger.Info("Chat session cleared", "user_id", userID)
	}
	return nil
}

func (s *ChatService) message(role domain.ChatRole, content string) domain.ChatMessage {
	return domain.ChatMessage{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: s.now(),
	}
}

// ratedBooks pairs reviews with their books for prompts. Reviews whose book
// no longer exists are skipped.
func ratedBooks(ctx context.Context, st *sqlite.Store, reviews []*domain.Review) ([]recommend.RatedBook, error) {
	ids := make([]string, len(reviews))
	for i, r := range reviews {
		ids[i] = r.BookID
	}
	books, err := st.GetBooksByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load rated books: %w", err)
	}
	byID := make(map[string]*domain.Book, len(books))
	for _, b := range books {
		byID[b.ID] = b
	}

	out := make([]recommend.RatedBook, 0, len(reviews))
	for _, r := range reviews {
		b, ok := byID[r.BookID]
		if !ok {
			continue
		}
		out = append(out, recommend.RatedBook{Title: b.Title, Author: b.Author, Rating: r.Rating})
	}
	return out, nil
}
