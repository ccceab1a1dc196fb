package ai

import (
	"context"
	"sync"
)

// StubCompleter is a scripted Completer for tests. Each call consumes the next
// reply; once the script runs out the last reply repeats.
type StubCompleter struct {
	mu       sync.Mutex
	replies  []StubReply
	requests []Request
}

// StubReply is one scripted response.
type StubReply struct {
	Content string
	Err     error
}

// NewStubCompleter returns a stub that answers with replies in order.
func NewStubCompleter(replies ...StubReply) *StubCompleter {
	return &StubCompleter{replies: replies}
}

// Complete records the request and returns the next scripted reply.
func (s *StubCompleter) Complete(ctx context.Context, req Request) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.requests = append(s.requests, req)
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(s.replies) == 0 {
		return "", nil
	}
	idx := len(s.requests) - 1
	if idx >= len(s.replies) {
		idx = len(s.replies) - 1
	}
	r := s.replies[idx]
	return r.Content, r.Err
}

// Requests returns a copy of every request received so far.
func (s *StubCompleter) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// Calls returns how many requests were received.
func (s *StubCompleter) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}
