package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProviderFunc(t *testing.T) {
	var provider Provider = ProviderFunc(func(ctx context.Context, messages []Message, tools []Tool) (*Response, error) {
		return &Response{
			Content: "custom response",
			Usage:   Usage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15},
		}, nil
	})

	resp, err := provider.Complete(context.Background(), []Message{{Role: RoleUser, Content: "hello"}}, nil)
	require.NoError(t, err)
	assert.Equal(t, "custom response", resp.Content)
	assert.Equal(t, 15, resp.Usage.TotalTokens)
}

func TestUsageAdd(t *testing.T) {
	u := Usage{InputTokens: 1, OutputTokens: 2, TotalTokens: 3}.Add(Usage{InputTokens: 4, OutputTokens: 5, TotalTokens: 9})
	assert.Equal(t, Usage{InputTokens: 5, OutputTokens: 7, TotalTokens: 12}, u)
	assert.False(t, u.IsZero())
	assert.True(t, Usage{}.IsZero())
}

func TestImageDataURL(t *testing.T) {
	img := Image{MIMEType: "image/png", Data: []byte("abc")}
	assert.Equal(t, "YWJj", img.Base64())
	assert.Equal(t, "data:image/png;base64,YWJj", img.DataURL())
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(&APIError{StatusCode: 429}))
	assert.True(t, IsRetryable(&APIError{StatusCode: 503}))
	assert.False(t, IsRetryable(&APIError{StatusCode: 400}))
	assert.True(t, IsRetryable(fmt.Errorf("wrapped: %w", &NetworkError{Op: "send", Err: errors.New("reset")})))
	assert.False(t, IsRetryable(&ConfigError{Field: "api_key", Msg: "missing"}))
	assert.False(t, IsRetryable(errors.New("plain")))
}

func TestNewAPIErrorTruncatesBody(t *testing.T) {
	body := make([]byte, 2000)
	for i := range body {
		body[i] = 'x'
	}
	err := NewAPIError("openai", 500, body)
	assert.Len(t, err.Body, maxErrorBody+3)
	assert.Contains(t, err.Error(), "openai API error (status 500)")
}

func TestRetryStopsOnPermanentError(t *testing.T) {
	cfg := &Config{MaxRetries: 3, RetryInterval: time.Millisecond}
	calls := 0
	err := Retry(context.Background(), cfg, func() error {
		calls++
		return &APIError{Provider: "openai", StatusCode: 401, Body: "bad key"}
	})

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 1, calls)
}

func TestRetryRetriesTransientErrors(t *testing.T) {
	var retries int
	cfg := &Config{
		MaxRetries:    2,
		RetryInterval: time.Millisecond,
		OnRetry:       func(error, time.Duration) { retries++ },
	}
	calls := 0
	err := Retry(context.Background(), cfg, func() error {
		calls++
		if calls < 3 {
			return &APIError{StatusCode: 503}
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, 2, retries)
}

func TestPostJSON(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "v1", r.Header.Get("X-Test"))
		if atomic.AddInt32(&hits, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	cfg := &Config{MaxRetries: 1, RetryInterval: time.Millisecond}
	var out struct {
		OK bool `json:"ok"`
	}
	header := http.Header{}
	header.Set("X-Test", "v1")

	err := PostJSON(context.Background(), cfg, "test", server.URL, header, map[string]string{"a": "b"}, &out)
	require.NoError(t, err)
	assert.True(t, out.OK)
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
}

func TestPostJSONAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"bad"}`))
	}))
	defer server.Close()

	var out map[string]any
	err := PostJSON(context.Background(), &Config{MaxRetries: 2, RetryInterval: time.Millisecond}, "test", server.URL, nil, struct{}{}, &out)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Contains(t, apiErr.Body, "bad")
}

func TestNewAPIErrorTruncatesOnRuneBoundary(t *testing.T) {
	body := "x" + strings.Repeat("é", maxErrorBody)
	err := NewAPIError("openai", 500, []byte(body))

	assert.True(t, utf8.ValidString(err.Body))
	assert.True(t, strings.HasSuffix(err.Body, "..."))
	assert.LessOrEqual(t, len(err.Body), maxErrorBody+len("..."))
}
