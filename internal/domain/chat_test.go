package domain

import (
	"fmt"
	"testing"
	"time"
)

func TestChatSession_Recent(t *testing.T) {
	s := &ChatSession{UserID: "user-1"}
	for i := 0; i < 14; i++ {
		s.Append(ChatMessage{ID: fmt.Sprint(i), Role: ChatRoleUser, Content: fmt.Sprint(i), Timestamp: time.Now()})
	}

	recent := s.Recent(ChatContextWindow)
	if len(recent) != 10 {
		t.Fatalf("len(Recent) = %d, want 10", len(recent))
	}
	if recent[0].ID != "4" || recent[9].ID != "13" {
		t.Errorf("window = %s..%s, want 4..13", recent[0].ID, recent[9].ID)
	}
	if len(s.Messages) != 14 {
		t.Errorf("full history trimmed to %d", len(s.Messages))
	}
}

func TestChatSession_RecentShortHistory(t *testing.T) {
	s := &ChatSession{}
	s.Append(ChatMessage{ID: "a", Role: ChatRoleUser, Timestamp: time.Now()})

	if got := s.Recent(10); len(got) != 1 {
		t.Errorf("len(Recent) = %d, want 1", len(got))
	}
}

func TestChatSession_AppendBumpsLastUpdated(t *testing.T) {
	ts := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	s := &ChatSession{}
	s.Append(ChatMessage{Role: ChatRoleAssistant, Timestamp: ts})

	if !s.LastUpdated.Equal(ts) {
		t.Errorf("LastUpdated = %v, want %v", s.LastUpdated, ts)
	}
}
