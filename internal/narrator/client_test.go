package narrator

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"sheetdash/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(url string) *Client {
	return NewClient(config.NarratorConfig{
		URL:       url,
		APIKey:    "test-key",
		Model:     "gpt-3.5-turbo",
		Timeout:   2 * time.Second,
		MaxTokens: 150,
	})
}

func TestClient_Narrate(t *testing.T) {
	var got completionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, http.MethodPost, r.Method)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"  Scores look steady.  "}}]}`))
	}))
	defer srv.Close()

	text, err := newTestClient(srv.URL).Narrate(context.Background(), "summarize")

	require.NoError(t, err)
	assert.Equal(t, "Scores look steady.", text)
	assert.Equal(t, "gpt-3.5-turbo", got.Model)
	assert.Equal(t, 150, got.MaxTokens)
	assert.Equal(t, 0.7, got.Temperature)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "user", got.Messages[0].Role)
	assert.Equal(t, "summarize", got.Messages[0].Content)
}

func TestClient_NarrateEmptyChoice(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"no choices", `{"choices":[]}`},
		{"blank content", `{"choices":[{"message":{"content":"   "}}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			text, err := newTestClient(srv.URL).Narrate(context.Background(), "p")

			require.NoError(t, err)
			assert.Equal(t, NoInsight, text)
		})
	}
}

func TestClient_NarrateErrors(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		want      error
		degrading bool
	}{
		{"rate limited", http.StatusTooManyRequests, ErrRateLimited, true},
		{"unauthorized", http.StatusUnauthorized, ErrUnauthorized, true},
		{"forbidden", http.StatusForbidden, ErrUnauthorized, true},
		{"server error", http.StatusBadGateway, ErrUnavailable, true},
		{"bad request", http.StatusBadRequest, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			_, err := newTestClient(srv.URL).Narrate(context.Background(), "p")

			require.Error(t, err)
			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
			}
			assert.Equal(t, tt.degrading, errors.Is(err, ErrDependencyUnavailable))
		})
	}
}

func TestClient_NarrateNotConfigured(t *testing.T) {
	c := newTestClient("http://localhost")
	c.APIKey = ""

	_, err := c.Narrate(context.Background(), "p")

	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.ErrorIs(t, err, ErrDependencyUnavailable)
}

func TestClient_NarrateTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := newTestClient(url).Narrate(context.Background(), "p")

	assert.ErrorIs(t, err, ErrUnavailable)
}
