package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const parseBody = `{"parse":{"title":"Anexo:Vocabulario","pageid":1,"text":"<table class=\"wikitable\"></table>"}}`

func newTestClient(t *testing.T, srv *httptest.Server, opts Options) *Client {
	t.Helper()
	opts.Endpoint = srv.URL + "/w/api.php"
	c, err := New(opts)
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

func TestParsedPage(t *testing.T) {
	var got *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(parseBody))
	}))
	defer srv.Close()

	c := newTestClient(t, srv, Options{})
	body, err := c.ParsedPage(context.Background(), "Anexo:Diferencias de vocabulario")
	require.NoError(t, err)
	assert.Equal(t, parseBody, string(body))

	require.NotNil(t, got)
	assert.Equal(t, "/w/api.php", got.URL.Path)
	assert.Equal(t, DefaultUserAgent, got.Header.Get("User-Agent"))

	q := got.URL.Query()
	assert.Equal(t, "parse", q.Get("action"))
	assert.Equal(t, "Anexo:Diferencias de vocabulario", q.Get("page"))
	assert.Equal(t, "text", q.Get("prop"))
	assert.Equal(t, "json", q.Get("format"))
	assert.Equal(t, "2", q.Get("formatversion"))
	assert.Equal(t, "1", q.Get("redirects"))
}

func TestCustomUserAgent(t *testing.T) {
	var ua string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua = r.Header.Get("User-Agent")
	}))
	defer srv.Close()

	c := newTestClient(t, srv, Options{UserAgent: "research-bot/2.0"})
	_, err := c.Raw(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "research-bot/2.0", ua)
}

func TestNon2xxIsRetrievalError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	c := newTestClient(t, srv, Options{})
	_, err := c.Raw(context.Background(), srv.URL+"/missing")

	var re *RetrievalError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, http.StatusNotFound, re.StatusCode)
	assert.Equal(t, srv.URL+"/missing", re.Locator)
	assert.Contains(t, err.Error(), "status 404")
}

func TestTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c := newTestClient(t, srv, Options{Timeout: 50 * time.Millisecond})

	start := time.Now()
	_, err := c.Raw(context.Background(), srv.URL)
	var re *RetrievalError
	require.ErrorAs(t, err, &re)
	assert.Zero(t, re.StatusCode)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := newTestClient(t, srv, Options{})
	_, err := c.Raw(ctx, srv.URL)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBodyTooLarge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.Repeat("x", 100)))
	}))
	defer srv.Close()

	c := newTestClient(t, srv, Options{MaxBodySize: 10})
	_, err := c.Raw(context.Background(), srv.URL)
	assert.ErrorIs(t, err, ErrBodyTooLarge)

	c = newTestClient(t, srv, Options{MaxBodySize: 100})
	body, err := c.Raw(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Len(t, body, 100)
}

func TestCache(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(parseBody))
	}))
	defer srv.Close()

	c := newTestClient(t, srv, Options{})
	for i := 0; i < 3; i++ {
		_, err := c.ParsedPage(context.Background(), "Anexo:Vocabulario")
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), hits.Load())

	_, err := c.ParsedPage(context.Background(), "Otra página")
	require.NoError(t, err)
	assert.Equal(t, int32(2), hits.Load())
}

func TestCacheDisabled(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	c := newTestClient(t, srv, Options{CacheSize: -1})
	for i := 0; i < 2; i++ {
		_, err := c.Raw(context.Background(), srv.URL)
		require.NoError(t, err)
	}
	assert.Equal(t, int32(2), hits.Load())
}

func TestFailuresAreNotCached(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	c := newTestClient(t, srv, Options{})
	_, err := c.Raw(context.Background(), srv.URL)
	require.Error(t, err)

	body, err := c.Raw(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))
}

func TestEmptyLocator(t *testing.T) {
	c, err := New(Options{})
	require.NoError(t, err)
	defer c.Close()

	_, err = c.ParsedPage(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrEmptyLocator)

	_, err = c.Raw(context.Background(), "")
	assert.ErrorIs(t, err, ErrEmptyLocator)
}

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"es.wikipedia.org/wiki/Anexo", "https://es.wikipedia.org/wiki/Anexo"},
		{" http://example.com ", "http://example.com"},
		{"https://example.com", "https://example.com"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeURL(tt.in), "NormalizeURL(%q)", tt.in)
	}
}

func TestDefaults(t *testing.T) {
	c, err := New(Options{})
	require.NoError(t, err)
	defer c.Close()

	opts := c.Options()
	assert.Equal(t, DefaultEndpoint, opts.Endpoint)
	assert.Equal(t, DefaultTimeout, opts.Timeout)
	assert.Equal(t, int64(DefaultMaxBodySize), opts.MaxBodySize)
	assert.Contains(t, c.PageURL("Anexo:X"), "action=parse")
}
