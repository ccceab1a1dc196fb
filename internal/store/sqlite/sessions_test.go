package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bookbuddy/bookbuddy-server/internal/domain"
	"github.com/bookbuddy/bookbuddy-server/internal/store"
)

func makeTestSession(id, userID, hash string, expires time.Time) *domain.Session {
	now := time.Now()
	return &domain.Session{
		ID:               id,
		UserID:           userID,
		RefreshTokenHash: hash,
		ExpiresAt:        expires,
		CreatedAt:        now,
		LastSeenAt:       now,
		IPAddress:        "127.0.0.1",
		UserAgent:        "test-agent",
	}
}

func TestSessionLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	makeTestUser(t, s, "user-1")

	sess := makeTestSession("session-1", "user-1", "hash-1", time.Now().Add(time.Hour))
	if err := s.CreateSession(ctx, sess); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	got, err := s.GetSessionByRefreshToken(ctx, "hash-1")
	if err != nil {
		t.Fatalf("GetSessionByRefreshToken: %v", err)
	}
	if got.ID != "session-1" || got.UserAgent != "test-agent" {
		t.Errorf("got %+v", got)
	}

	sess.RefreshTokenHash = "hash-2"
	if err := s.UpdateSession(ctx, sess); err != nil {
		t.Fatalf("UpdateSession: %v", err)
	}
	if _, err := s.GetSessionByRefreshToken(ctx, "hash-1"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("rotated hash should be gone, got %v", err)
	}

	if err := s.DeleteSession(ctx, "session-1"); err != nil {
		t.Fatalf("DeleteSession: %v", err)
	}
	if err := s.DeleteSession(ctx, "session-1"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("second delete: expected ErrNotFound, got %v", err)
	}
}

func TestCreateSession_UnknownUser(t *testing.T) {
	s := newTestStore(t)

	sess := makeTestSession("session-1", "ghost", "hash-1", time.Now().Add(time.Hour))
	if err := s.CreateSession(context.Background(), sess); err == nil {
		t.Error("expected foreign key failure")
	}
}

func TestDeleteExpiredSessions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	makeTestUser(t, s, "user-1")

	now := time.Now()
	_ = s.CreateSession(ctx, makeTestSession("old", "user-1", "h1", now.Add(-time.Hour)))
	_ = s.CreateSession(ctx, makeTestSession("live", "user-1", "h2", now.Add(time.Hour)))

	n, err := s.DeleteExpiredSessions(ctx, now)
	if err != nil {
		t.Fatalf("DeleteExpiredSessions: %v", err)
	}
	if n != 1 {
		t.Errorf("removed %d, want 1", n)
	}
	if _, err := s.GetSession(ctx, "live"); err != nil {
		t.Errorf("live session removed: %v", err)
	}
}
