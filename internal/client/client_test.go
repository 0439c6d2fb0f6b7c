package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestGetSendsHeadersAndQuery(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/v1/action/feed", r.URL.Path)
		assert.Equal(t, "50", r.URL.Query().Get("limit"))
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		w.Write([]byte(`{"events": [], "has_more": false}`))
	}))
	defer ts.Close()

	c := New(Config{BaseURL: ts.URL + "/", Token: " secret "}, zap.NewNop())
	var out struct {
		Events  []any `json:"events"`
		HasMore bool  `json:"has_more"`
	}
	err := c.Get(context.Background(), "/api/v1/action/feed", url.Values{"limit": {"50"}}, &out)
	require.NoError(t, err)
	assert.NotNil(t, out.Events)
}

func TestPostEncodesBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Empty(t, r.Header.Get("Authorization"))
		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "storm", body["description"])
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id": "e1"}`))
	}))
	defer ts.Close()

	c := New(Config{BaseURL: ts.URL}, zap.NewNop())
	var out map[string]any
	err := c.Post(context.Background(), "/x", map[string]string{"description": "storm"}, &out)
	require.NoError(t, err)
	assert.Equal(t, "e1", out["id"])
}

func TestNon2xxReturnsAPIError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"detail": "Агент не найден"}`))
	}))
	defer ts.Close()

	c := New(Config{BaseURL: ts.URL}, zap.NewNop())
	err := c.Get(context.Background(), "/api/v1/system/agents/404", nil, nil)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, map[string]any{"detail": "Агент не найден"}, apiErr.Body)
	assert.Equal(t, "API error 404: Агент не найден", apiErr.Error())
}

func TestNon2xxPlainBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer ts.Close()

	c := New(Config{BaseURL: ts.URL}, zap.NewNop())
	err := c.Get(context.Background(), "/", nil, nil)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Equal(t, "boom\n", apiErr.Body)
}

func TestTransportErrorIsWrapped(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	base := ts.URL
	ts.Close()

	c := New(Config{BaseURL: base}, zap.NewNop())
	err := c.Get(context.Background(), "/", nil, nil)
	require.Error(t, err)
	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
}
