package providers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adda-Baaj/cine-khobor/pkg/httpclient"
)

const okBody = `{
  "status": "ok",
  "totalResults": 2,
  "articles": [
    {
      "source": {"id": "variety", "name": "Variety"},
      "title": " Dune: Part Three trailer ",
      "description": "First look.",
      "url": "https://variety.com/dune",
      "urlToImage": "https://variety.com/dune.jpg",
      "publishedAt": "2024-03-01T18:30:00Z"
    },
    {
      "source": {"id": null, "name": "Blog"},
      "title": null,
      "description": null,
      "url": "https://blog.example.com/post",
      "urlToImage": null,
      "publishedAt": "2024-03-02T08:00:00Z"
    }
  ]
}`

func newTestFetcher(t *testing.T, handler http.HandlerFunc) Fetcher {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewNewsAPIFetcher(httpclient.NewRestyClient(2*time.Second), NewsAPIConfig{
		Endpoint: srv.URL + "/v2/everything",
		APIKey:   "test-key",
	})
}

func TestNewsAPIFetcherFetch(t *testing.T) {
	f := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "/v2/everything", r.URL.Path)
		assert.Equal(t, `"Dune" (film OR movie)`, q.Get("q"))
		assert.Equal(t, "en", q.Get("language"))
		assert.Equal(t, "publishedAt", q.Get("sortBy"))
		assert.Equal(t, "30", q.Get("pageSize"))
		assert.Equal(t, "test-key", q.Get("apiKey"))
		_, _ = io.WriteString(w, okBody)
	})

	articles, err := f.Fetch(context.Background(), Search{Query: `"Dune" (film OR movie)`})
	require.NoError(t, err)
	require.Len(t, articles, 2)

	first := articles[0]
	assert.Equal(t, "Dune: Part Three trailer", first.Title)
	assert.Equal(t, "First look.", first.Description)
	assert.Equal(t, "Variety", first.SourceName)
	assert.Equal(t, "https://variety.com/dune.jpg", first.ImageURL)
	assert.Equal(t, "2024-03-01T18:30:00Z", first.PublishedAt)
	assert.Equal(t, hashURL("https://variety.com/dune"), first.ID)

	second := articles[1]
	assert.Empty(t, second.Title)
	assert.Empty(t, second.Description)
	assert.Empty(t, second.ImageURL)
	assert.Equal(t, "Blog", second.SourceName)
}

func TestNewsAPIFetcherPageSizeOverride(t *testing.T) {
	f := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "5", r.URL.Query().Get("pageSize"))
		_, _ = io.WriteString(w, `{"status":"ok","articles":[]}`)
	})

	articles, err := f.Fetch(context.Background(), Search{Query: "x", PageSize: 5})
	require.NoError(t, err)
	assert.Empty(t, articles)
}

func TestNewsAPIFetcherAPIError(t *testing.T) {
	f := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"status":"error","code":"apiKeyInvalid","message":"Your API key is invalid."}`)
	})

	_, err := f.Fetch(context.Background(), Search{Query: "x"})
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "apiKeyInvalid", apiErr.Code)
	assert.Equal(t, "Your API key is invalid.", apiErr.Message)
	assert.Contains(t, err.Error(), "Your API key is invalid.")
}

func TestNewsAPIFetcherBadBody(t *testing.T) {
	f := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, "<html>bad gateway</html>")
	})

	_, err := f.Fetch(context.Background(), Search{Query: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode newsapi response")
	assert.Contains(t, err.Error(), "502")
}

func TestNewsAPIFetcherTransportError(t *testing.T) {
	f := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := f.Fetch(ctx, Search{Query: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch newsapi")
	assert.NotContains(t, err.Error(), "test-key")
}

func TestAPIErrorMessage(t *testing.T) {
	assert.Equal(t, "api error (http 500): no message", (&APIError{StatusCode: 500}).Error())
}

func TestResponseSnippet(t *testing.T) {
	assert.Equal(t, "<empty>", responseSnippet([]byte("  ")))
	long := make([]byte, 600)
	for i := range long {
		long[i] = 'a'
	}
	assert.Len(t, responseSnippet(long), 515)
}
