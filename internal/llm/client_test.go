package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New("sk-test", WithBaseURL(srv.URL+"/"), WithModel("test/model"), WithHTTPClient(srv.Client()))
}

func TestComplete_OK(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "test/model", body["model"])
		assert.Equal(t, map[string]any{"type": "json_object"}, body["response_format"])

		_, _ = w.Write([]byte(`{"model":"test/model-2024","choices":[{"message":{"role":"assistant","content":"hi"},"finish_reason":"stop"}],"usage":{"total_tokens":7}}`))
	})

	got, err := c.Complete(context.Background(), Request{
		Messages: []Message{{Role: "user", Content: "hello"}},
		JSONMode: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "hi", got.Content)
	assert.Equal(t, "stop", got.FinishReason)
	assert.Equal(t, "test/model-2024", got.Model)
	assert.Equal(t, 7, got.Usage.TotalTokens)
}

func TestComplete_ErrorEnvelope(t *testing.T) {
	cases := []struct {
		name     string
		status   int
		body     string
		header   string
		wantCode string
		wantType string
		wantMsg  string
		wantWait time.Duration
	}{
		{"string code", 401, `{"error":{"code":"invalid_api_key","message":"bad key","type":"invalid_request_error"}}`, "", "invalid_api_key", "invalid_request_error", "bad key", 0},
		{"numeric code", 429, `{"error":{"code":429,"message":"Rate limit exceeded"}}`, "12", "", "", "Rate limit exceeded", 12 * time.Second},
		{"no body", 503, ``, "", "", "", "Service Unavailable", 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if tc.header != "" {
					w.Header().Set("Retry-After", tc.header)
				}
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			})
			_, err := c.Complete(context.Background(), Request{Messages: []Message{{Role: "user", Content: "x"}}})

			var ae *APIError
			require.True(t, errors.As(err, &ae), "got %T", err)
			assert.Equal(t, tc.status, ae.StatusCode())
			assert.Equal(t, tc.wantCode, ae.ErrorCode())
			assert.Equal(t, tc.wantType, ae.ErrorType())
			assert.Equal(t, tc.wantMsg, ae.Message)
			assert.Equal(t, tc.wantWait, ae.RetryAfter())
		})
	}
}

func TestComplete_ContentFilterAndEmptyChoices(t *testing.T) {
	filtered := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":""},"finish_reason":"content_filter"}]}`))
	})
	_, err := filtered.Complete(context.Background(), Request{})
	var ae *APIError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, "content_filter", ae.Code)

	empty := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	})
	_, err = empty.Complete(context.Background(), Request{})
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, CodeInvalidResponse, ae.Code)
	assert.Equal(t, http.StatusBadGateway, ae.Status)
}

func TestComplete_ContextDeadline(t *testing.T) {
	release := make(chan struct{})
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := c.Complete(ctx, Request{})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRetryAfter(t *testing.T) {
	assert.Equal(t, time.Duration(0), retryAfter(""))
	assert.Equal(t, time.Duration(0), retryAfter("-3"))
	assert.Equal(t, 5*time.Second, retryAfter(" 5 "))
	assert.Equal(t, time.Duration(0), retryAfter("garbage"))
	future := time.Now().Add(90 * time.Second).UTC().Format(http.TimeFormat)
	assert.InDelta(t, 90, retryAfter(future).Seconds(), 2)
}
