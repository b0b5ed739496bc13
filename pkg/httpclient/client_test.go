package httpclient

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRestyClientGet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "dune", r.URL.Query().Get("q"))
		assert.Equal(t, "yes", r.Header.Get("X-Test"))
		assert.Contains(t, r.Header.Get("User-Agent"), "cine-khobor")
		w.WriteHeader(http.StatusTeapot)
		_, _ = io.WriteString(w, "short and stout")
	}))
	defer srv.Close()

	c := NewRestyClient(time.Second)
	resp, err := c.Get(context.Background(), srv.URL, map[string]string{"q": "dune"}, map[string]string{"X-Test": "yes"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusTeapot, resp.StatusCode())
	assert.Equal(t, "short and stout", string(resp.Body()))
}

func TestRestyClientDo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, `{"ok":true}`, string(body))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := NewRestyClient(time.Second)
	resp, err := c.Do(context.Background(), "put", srv.URL, []byte(`{"ok":true}`), map[string]string{"Content-Type": "application/json"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode())
}

func TestRestyClientErrorRedactsQuery(t *testing.T) {
	c := NewRestyClient(50 * time.Millisecond)
	_, err := c.Get(context.Background(), "http://127.0.0.1:1/v2/everything?apiKey=secret", nil, nil)
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "secret")
}
