package websearch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prodmap/prodmap/pkg/errors"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(Config{
		APIKey:  "test-key",
		CX:      "test-cx",
		BaseURL: server.URL,
	})
	require.NoError(t, err)
	return client
}

func TestSearch(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "test-key", q.Get("key"))
		assert.Equal(t, "test-cx", q.Get("cx"))
		assert.Equal(t, "canon eos r5 specifications", q.Get("q"))
		assert.Equal(t, "5", q.Get("num"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"items": [
				{"title": "Canon EOS R5 Specs", "link": "https://example.com/r5", "snippet": "45MP full frame"},
				{"title": "Review", "link": "https://example.com/review", "snippet": "Great camera"}
			]
		}`))
	})

	results, err := client.Search(context.Background(), "canon eos r5 specifications", 5)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "Canon EOS R5 Specs", results[0].Title)
	assert.Equal(t, "https://example.com/r5", results[0].URL)
	assert.Equal(t, "45MP full frame", results[0].Snippet)
}

func TestSearchNoItems(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})

	results, err := client.Search(context.Background(), "obscure product", 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchClampsResultCount(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "10", r.URL.Query().Get("num"))
		_, _ = w.Write([]byte(`{}`))
	})

	_, err := client.Search(context.Background(), "q", 50)
	require.NoError(t, err)
	_, err = client.Search(context.Background(), "q", 0)
	require.NoError(t, err)
}

func TestSearchHTTPError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error": {"code": 429, "message": "quota exceeded"}}`, http.StatusTooManyRequests)
	})

	_, err := client.Search(context.Background(), "q", 5)
	require.Error(t, err)
	assert.True(t, errors.IsCollaborator(err), "HTTP failures are collaborator errors")
	assert.Contains(t, err.Error(), "429")
}

func TestSearchMalformedResponse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	})

	_, err := client.Search(context.Background(), "q", 5)
	require.Error(t, err)
	assert.True(t, errors.IsParse(err), "malformed payloads are parse errors")
}

func TestNewClientValidation(t *testing.T) {
	_, err := NewClient(Config{CX: "cx"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrAPIKeyRequired))

	_, err = NewClient(Config{APIKey: "key"})
	require.Error(t, err)
}
