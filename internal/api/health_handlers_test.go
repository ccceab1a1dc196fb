package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthCheck_EmptyIndexIsDegraded(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/health")
	require.Equal(t, http.StatusOK, resp.Code)

	health := decodeData[HealthResponse](t, resp.Body.Bytes())
	assert.Equal(t, statusDegraded, health.Status)
	assert.Equal(t, statusHealthy, health.Components["database"].Status)
	assert.Equal(t, statusHealthy, health.Components["chat"].Status)
	assert.Equal(t, statusDegraded, health.Components["search"].Status)
}

func TestHealthCheck_Healthy(t *testing.T) {
	ts := setupTestServer(t)
	token, _ := ts.register(t, "librarian")
	ts.addBook(t, token, map[string]any{"title": "Dune", "author": "Frank Herbert"})

	resp := ts.api.Get("/health")
	require.Equal(t, http.StatusOK, resp.Code)

	health := decodeData[HealthResponse](t, resp.Body.Bytes())
	assert.Equal(t, statusHealthy, health.Status)
	assert.Equal(t, "1 books indexed", health.Components["search"].Message)
}

func TestHealthCheck_NoBackends(t *testing.T) {
	ts := setupTestServer(t, testServerOptions{skipBackends: true})

	resp := ts.api.Get("/health")
	require.Equal(t, http.StatusOK, resp.Code)

	health := decodeData[HealthResponse](t, resp.Body.Bytes())
	assert.Equal(t, statusDegraded, health.Status)
	for name, c := range health.Components {
		assert.Equal(t, statusDegraded, c.Status, name)
	}
}
