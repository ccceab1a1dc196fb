// Package ai talks to an OpenAI-compatible chat completion API.
//
// Callers build prompts (see the recommend package) and treat every error as
// a signal to serve a fallback; nothing here retries.
package ai

import "context"

// Role is the author of a prompt message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one prompt entry.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Request is a single completion call. MaxTokens of zero leaves the provider default.
type Request struct {
	Messages    []Message
	Temperature float64
	MaxTokens   int
}

// Completer produces the assistant text for a prompt.
// An empty string with a nil error means the provider returned no content.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// System returns a system message.
func System(content string) Message { return Message{Role: RoleSystem, Content: content} }

// User returns a user message.
func User(content string) Message { return Message{Role: RoleUser, Content: content} }
