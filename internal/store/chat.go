package store

import (
	"context"
	"errors"
	"time"

	"github.com/bookbuddy/bookbuddy-server/internal/domain"
)

// GetChatSession returns the user's chat session.
// Returns ErrNotFound when the user has never sent a message or cleared their history.
func (s *Store) GetChatSession(ctx context.Context, userID string) (*domain.ChatSession, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var session domain.ChatSession
	if err := s.get(buildKey(chatSessionPrefix, userID), &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// AppendChatMessages appends messages to the user's session, creating it when absent.
// The read and the write happen in one transaction, so two concurrent appends for the
// same user never drop each other's messages: the loser gets ErrConflict.
func (s *Store) AppendChatMessages(ctx context.Context, userID string, msgs ...domain.ChatMessage) (*domain.ChatSession, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return update(s, buildKey(chatSessionPrefix, userID), func(cur *domain.ChatSession) (*domain.ChatSession, error) {
		if cur == nil {
			cur = &domain.ChatSession{UserID: userID, Messages: []domain.ChatMessage{}}
		}
		for _, m := range msgs {
			cur.Append(m)
		}
		if cur.LastUpdated.IsZero() {
			cur.LastUpdated = time.Now()
		}
		return cur, nil
	})
}

// DeleteChatSession removes the user's session. Deleting a missing session is a no-op
// and reports false.
func (s *Store) DeleteChatSession(ctx context.Context, userID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	key := buildKey(chatSessionPrefix, userID)
	ok, err := s.exists(key)
	if err != nil || !ok {
		return false, err
	}
	if err := s.delete(key); err != nil {
		return false, err
	}

	if s.logger != nil {
		s.logger.Debug("chat session cleared", "user_id", userID)
	}
	return true, nil
}

// IsNotFound reports whether err is a not-found store error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
