package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/bookbuddy/bookbuddy-server/internal/domain"
	"github.com/bookbuddy/bookbuddy-server/internal/service"
)

func (s *Server) registerChatRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getChatSession",
		Method:      http.MethodGet,
		Path:        "/api/v1/chat",
		Summary:     "Get chat session",
		Description: "Returns the caller's conversation with the assistant, or null if there is none",
		Tags:        []string{"Chat"},
		Security:    bearerAuth,
	}, s.handleGetChatSession)

	huma.Register(s.api, huma.Operation{
		OperationID: "sendChatMessage",
		Method:      http.MethodPost,
		Path:        "/api/v1/chat/messages",
		Summary:     "Send chat message",
		Description: "Appends a message to the conversation and returns the assistant's reply",
		Tags:        []string{"Chat"},
		Security:    bearerAuth,
	}, s.handleSendChatMessage)

	huma.Register(s.api, huma.Operation{
		OperationID: "clearChatSession",
		Method:      http.MethodDelete,
		Path:        "/api/v1/chat",
		Summary:     "Clear chat session",
		Description: "Deletes the caller's conversation. Clearing an empty conversation succeeds.",
		Tags:        []string{"Chat"},
		Security:    bearerAuth,
	}, s.handleClearChatSession)
}

// ChatSessionOutput wraps a chat session for Huma.
type ChatSessionOutput struct {
	Body *domain.ChatSession
}

// SendChatMessageRequest is one user turn.
type SendChatMessageRequest struct {
	Message string `json:"message" doc:"Message to the assistant"`
}

// SendChatMessageInput wraps the message for Huma.
type SendChatMessageInput struct {
	Body SendChatMessageRequest
}

// ChatMessageOutput wraps the assistant's reply for Huma.
type ChatMessageOutput struct {
	Body *domain.ChatMessage
}

func (s *Server) handleGetChatSession(ctx context.Context, _ *struct{}) (*ChatSessionOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	session, err := s.services.Chat.GetChatSession(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &ChatSessionOutput{Body: session}, nil
}

func (s *Server) handleSendChatMessage(ctx context.Context, input *SendChatMessageInput) (*ChatMessageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	reply, err := s.services.Chat.SendMessage(ctx, userID, service.SendMessageRequest{Message: input.Body.Message})
	if err != nil {
		return nil, err
	}
	return &ChatMessageOutput{Body: reply}, nil
}

func (s *Server) handleClearChatSession(ctx context.Context, _ *struct{}) (*MessageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Chat.ClearChatSession(ctx, userID); err != nil {
		return nil, err
	}
	return message("Chat cleared"), nil
}
