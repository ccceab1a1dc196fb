package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/bookbuddy/bookbuddy-server/internal/errors"
	"github.com/bookbuddy/bookbuddy-server/internal/store"
)

func TestEnvelopeTransformer_SuccessResponse(t *testing.T) {
	data := map[string]string{"title": "Piranesi"}

	result, err := EnvelopeTransformer(nil, "200", data)
	require.NoError(t, err)

	envelope, ok := result.(APIEnvelope)
	require.True(t, ok, "Expected APIEnvelope type")

	assert.Equal(t, EnvelopeVersion, envelope.Version)
	assert.True(t, envelope.Success)
	assert.Equal(t, data, envelope.Data)
	assert.Empty(t, envelope.Error)
}

func TestEnvelopeTransformer_PlainError(t *testing.T) {
	result, err := EnvelopeTransformer(nil, "400", errors.New("validation failed"))
	require.NoError(t, err)

	envelope, ok := result.(APIEnvelope)
	require.True(t, ok, "Expected APIEnvelope type")

	assert.False(t, envelope.Success)
	assert.Nil(t, envelope.Data)
	assert.Equal(t, "validation failed", envelope.Error)
}

func TestEnvelopeTransformer_CodedErrors(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		wantCode string
		wantMsg  string
	}{
		{
			name:     "api error",
			input:    &APIError{Code: "VALIDATION", Message: "validation failed", Details: map[string]string{"name": "is required"}},
			wantCode: "VALIDATION",
			wantMsg:  "validation failed",
		},
		{
			name:     "domain error",
			input:    domainerrors.PaymentFailed("payment verification failed"),
			wantCode: "PAYMENT_FAILED",
			wantMsg:  "payment verification failed",
		},
		{
			name:     "store error",
			input:    &store.Error{Code: http.StatusConflict, Message: "already exists"},
			wantCode: "CONFLICT",
			wantMsg:  "already exists",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := EnvelopeTransformer(nil, "400", tt.input)
			require.NoError(t, err)

			envelope, ok := result.(APIErrorEnvelope)
			require.True(t, ok, "Expected APIErrorEnvelope type")

			assert.Equal(t, EnvelopeVersion, envelope.Version)
			assert.False(t, envelope.Success)
			assert.Equal(t, tt.wantCode, envelope.Code)
			assert.Equal(t, tt.wantMsg, envelope.Message)
			assert.Equal(t, tt.wantMsg, envelope.Error)
		})
	}
}

func TestEnvelopeTransformer_PassesEnvelopesThrough(t *testing.T) {
	in := APIErrorEnvelope{Version: EnvelopeVersion, Error: "already wrapped"}

	result, err := EnvelopeTransformer(nil, "500", in)
	require.NoError(t, err)
	assert.Equal(t, in, result)
}

func TestInternalErrorsAreNotLeaked(t *testing.T) {
	err := newAPIError(http.StatusInternalServerError, "database is locked: SQLITE_BUSY")

	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.Equal(t, http.StatusInternalServerError, apiErr.GetStatus())
	assert.Equal(t, "internal server error", apiErr.Message)
}

func TestAuthRateLimit(t *testing.T) {
	ts := setupTestServer(t, testServerOptions{authPerMin: 1, authBurst: 1})
	login := map[string]any{"email": "nobody@example.com", "password": "wrong password"}

	resp := ts.api.Post("/api/v1/auth/login", login)
	require.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = ts.api.Post("/api/v1/auth/login", login)
	require.Equal(t, http.StatusTooManyRequests, resp.Code)
	assert.Equal(t, "RATE_LIMITED", decodeError(t, resp.Body.Bytes()).Code)

	// Other routes are not limited.
	resp = ts.api.Get("/api/v1/books")
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		headers    map[string]string
		remoteAddr string
		want       string
	}{
		{"forwarded chain", map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.1"}, "10.0.0.2:4000", "203.0.113.7"},
		{"real ip", map[string]string{"X-Real-IP": "198.51.100.4"}, "10.0.0.2:4000", "198.51.100.4"},
		{"remote addr", nil, "192.0.2.10:52100", "192.0.2.10"},
		{"remote addr without port", nil, "192.0.2.10", "192.0.2.10"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			if got := getClientIP(r); got != tt.want {
				t.Errorf("getClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	ts := setupTestServer(t)

	ts.api.Get("/api/v1/books")

	rec := httptest.NewRecorder()
	ts.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "bookbuddy_api_requests_total")
}
