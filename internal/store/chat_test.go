package store_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookbuddy/bookbuddy-server/internal/domain"
	"github.com/bookbuddy/bookbuddy-server/internal/store"
)

func setupTestStore(t *testing.T) *store.Store {
	t.Helper()

	s, err := store.New(filepath.Join(t.TempDir(), "badger"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func msg(id string, role domain.ChatRole, content string) domain.ChatMessage {
	return domain.ChatMessage{ID: id, Role: role, Content: content, Timestamp: time.Now().UTC()}
}

func TestGetChatSession_Missing(t *testing.T) {
	s := setupTestStore(t)

	_, err := s.GetChatSession(context.Background(), "user-1")
	assert.True(t, store.IsNotFound(err))
}

func TestAppendChatMessages_CreatesThenAppends(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	session, err := s.AppendChatMessages(ctx, "user-1", msg("m1", domain.ChatRoleUser, "hi"))
	require.NoError(t, err)
	assert.Equal(t, "user-1", session.UserID)
	require.Len(t, session.Messages, 1)

	_, err = s.AppendChatMessages(ctx, "user-1", msg("m2", domain.ChatRoleAssistant, "hello"))
	require.NoError(t, err)

	got, err := s.GetChatSession(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "m1", got.Messages[0].ID)
	assert.Equal(t, domain.ChatRoleAssistant, got.Messages[1].Role)
	assert.False(t, got.LastUpdated.IsZero())
}

func TestAppendChatMessages_IsolatedPerUser(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	_, err := s.AppendChatMessages(ctx, "user-1", msg("a", domain.ChatRoleUser, "one"))
	require.NoError(t, err)
	_, err = s.AppendChatMessages(ctx, "user-2", msg("b", domain.ChatRoleUser, "two"))
	require.NoError(t, err)

	got, err := s.GetChatSession(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "one", got.Messages[0].Content)
}

func TestAppendChatMessages_ConcurrentWritersNeverLoseMessages(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	const writers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.AppendChatMessages(ctx, "user-1", msg(string(rune('a'+i)), domain.ChatRoleUser, "x"))
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
				return
			}
			assert.ErrorIs(t, err, store.ErrConflict)
		}()
	}
	wg.Wait()

	got, err := s.GetChatSession(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, got.Messages, succeeded)
}

func TestDeleteChatSession(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	deleted, err := s.DeleteChatSession(ctx, "user-1")
	require.NoError(t, err)
	assert.False(t, deleted, "clearing a missing session is a no-op")

	_, err = s.AppendChatMessages(ctx, "user-1", msg("m1", domain.ChatRoleUser, "hi"))
	require.NoError(t, err)

	deleted, err = s.DeleteChatSession(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, deleted)

	_, err = s.GetChatSession(ctx, "user-1")
	assert.True(t, store.IsNotFound(err))
}
