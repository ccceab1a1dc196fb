package api

import (
	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/bookbuddy/bookbuddy-server/internal/errors"
	"github.com/bookbuddy/bookbuddy-server/internal/http/response"
	"github.com/bookbuddy/bookbuddy-server/internal/store"
)

// EnvelopeVersion is sent as "v" on every response body.
const EnvelopeVersion = response.Version

// APIEnvelope wraps successful responses and bare errors.
type APIEnvelope struct { //nolint:revive // mirrors APIError
	Version int    `json:"v"`
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// APIErrorEnvelope wraps coded errors.
type APIErrorEnvelope struct { //nolint:revive // mirrors APIError
	Version int    `json:"v"`
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
	Details any    `json:"details,omitempty"`
}

// EnvelopeTransformer is a huma transformer that wraps every response body
// in the versioned envelope.
func EnvelopeTransformer(_ huma.Context, _ string, v any) (any, error) {
	switch val := v.(type) {
	case APIEnvelope, APIErrorEnvelope:
		return v, nil
	case *APIError:
		return errorEnvelope(val.Code, val.Message, val.Details), nil
	case *domainerrors.Error:
		return errorEnvelope(string(val.Code), val.Message, val.Details), nil
	case *store.Error:
		return errorEnvelope(string(response.CodeForStatus(val.HTTPCode())), val.Message, nil), nil
	case error:
		return APIEnvelope{Version: EnvelopeVersion, Error: val.Error()}, nil
	default:
		return APIEnvelope{Version: EnvelopeVersion, Success: true, Data: v}, nil
	}
}

func errorEnvelope(code, message string, details any) APIErrorEnvelope {
	return APIErrorEnvelope{
		Version: EnvelopeVersion,
		Error:   message,
		Code:    code,
		Message: message,
		Details: details,
	}
}
