package tavily

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_MissingKey(t *testing.T) {
	_, err := New()
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestSearch(t *testing.T) {
	var got searchRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer tvly-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"query": "go",
			"results": [
				{"title": "Go", "url": "https://go.dev", "content": "The Go language", "score": 0.9},
				{"title": "Blog", "url": "https://go.dev/blog", "content": "Posts", "score": 0.5}
			]
		}`))
	}))
	defer srv.Close()

	c, err := New(func(o *Options) {
		o.APIKey = "tvly-test"
		o.Endpoint = srv.URL
	})
	require.NoError(t, err)

	results, err := c.Search(context.Background(), "go", 10)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "https://go.dev", results[0].URL)
	assert.InDelta(t, 0.9, results[0].Score, 1e-9)

	assert.Equal(t, "go", got.Query)
	assert.Equal(t, 5, got.MaxResults)
	assert.Equal(t, "basic", got.SearchDepth)
}

func TestSearch_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail": {"error": "Unauthorized: missing or invalid API key."}}`))
	}))
	defer srv.Close()

	c, err := New(func(o *Options) {
		o.APIKey = "bad"
		o.Endpoint = srv.URL
	})
	require.NoError(t, err)

	_, err = c.Search(context.Background(), "go", 5)
	assert.EqualError(t, err, "tavily status 401: Unauthorized: missing or invalid API key.")
}
