package domain

import "time"

// ChatRole tags who authored a chat message.
type ChatRole string

const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
)

// ChatContextWindow is how many trailing messages are forwarded to the completion API.
const ChatContextWindow = 10

// ChatMessage is one entry in a chat session.
type ChatMessage struct {
	ID        string    `json:"id"`
	Role      ChatRole  `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// ChatSession is the single conversation a user has with the assistant.
// Messages are only ever appended; the whole session is removed on clear.
type ChatSession struct {
	UserID      string        `json:"user_id"`
	Messages    []ChatMessage `json:"messages"`
	LastUpdated time.Time     `json:"last_updated"`
}

// Append adds a message and bumps LastUpdated.
func (s *ChatSession) Append(msg ChatMessage) {
	s.Messages = append(s.Messages, msg)
	s.LastUpdated = msg.Timestamp
}

// Recent returns up to the last n messages, oldest first.
func (s *ChatSession) Recent(n int) []ChatMessage {
	if n <= 0 || len(s.Messages) <= n {
		return s.Messages
	}
	return s.Messages[len(s.Messages)-n:]
}
