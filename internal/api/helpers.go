package api

import (
	"strings"

	"github.com/bookbuddy/bookbuddy-server/internal/service"
)

// ClientHeaders are read from auth requests to label the session.
type ClientHeaders struct {
	XForwardedFor string `header:"X-Forwarded-For"`
	XRealIP       string `header:"X-Real-IP"`
	UserAgent     string `header:"User-Agent"`
}

func (h ClientHeaders) clientInfo() service.ClientInfo {
	ip := h.XRealIP
	if h.XForwardedFor != "" {
		first, _, _ := strings.Cut(h.XForwardedFor, ",")
		ip = strings.TrimSpace(first)
	}
	return service.ClientInfo{IPAddress: ip, UserAgent: h.UserAgent}
}

// MessageResponse contains a simple message.
type MessageResponse struct {
	Message string `json:"message" doc:"Success message"`
}

// MessageOutput wraps the message response for Huma.
type MessageOutput struct {
	Body MessageResponse
}

func message(msg string) *MessageOutput {
	return &MessageOutput{Body: MessageResponse{Message: msg}}
}
