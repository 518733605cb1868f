// Package fetch retrieves reference pages over HTTP: rendered page HTML from
// the MediaWiki Parse API, or the raw body behind any URL.
//
// Every request carries an identifying User-Agent and is bounded by a
// timeout and a body size limit. Successful bodies are cached in memory.
// There are no retries.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/maypok86/otter"
)

const (
	// DefaultEndpoint is the Spanish Wikipedia action API.
	DefaultEndpoint = "https://es.wikipedia.org/w/api.php"
	// DefaultUserAgent identifies the client to the wiki.
	DefaultUserAgent = "wikimelt/1.0 (+https://github.com/tsawler/wikimelt)"
	// DefaultTimeout bounds a whole request, body included.
	DefaultTimeout = 30 * time.Second
	// DefaultMaxBodySize is 20MB.
	DefaultMaxBodySize = 20 * 1024 * 1024
	// DefaultCacheSize is the number of cached bodies.
	DefaultCacheSize = 64
	// DefaultCacheTTL is how long a cached body is served.
	DefaultCacheTTL = 10 * time.Minute
)

// Options configures a Client. Zero fields take their defaults; a negative
// CacheSize disables the cache.
type Options struct {
	Endpoint    string
	UserAgent   string
	Timeout     time.Duration
	MaxBodySize int64
	CacheSize   int
	CacheTTL    time.Duration

	// HTTPClient replaces the default client. Its own Timeout still applies.
	HTTPClient *http.Client
}

// DefaultOptions returns the default client options.
func DefaultOptions() Options {
	return Options{
		Endpoint:    DefaultEndpoint,
		UserAgent:   DefaultUserAgent,
		Timeout:     DefaultTimeout,
		MaxBodySize: DefaultMaxBodySize,
		CacheSize:   DefaultCacheSize,
		CacheTTL:    DefaultCacheTTL,
	}
}

func (o *Options) applyDefaults() {
	def := DefaultOptions()
	if o.Endpoint == "" {
		o.Endpoint = def.Endpoint
	}
	if o.UserAgent == "" {
		o.UserAgent = def.UserAgent
	}
	if o.Timeout <= 0 {
		o.Timeout = def.Timeout
	}
	if o.MaxBodySize <= 0 {
		o.MaxBodySize = def.MaxBodySize
	}
	if o.CacheSize == 0 {
		o.CacheSize = def.CacheSize
	}
	if o.CacheTTL <= 0 {
		o.CacheTTL = def.CacheTTL
	}
}

// Client fetches pages. It is safe for concurrent use.
type Client struct {
	opts  Options
	http  *http.Client
	cache *otter.Cache[string, []byte]
}

// New creates a client.
func New(opts Options) (*Client, error) {
	opts.applyDefaults()

	c := &Client{opts: opts, http: opts.HTTPClient}
	if c.http == nil {
		c.http = &http.Client{
			Timeout: opts.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return errors.New("too many redirects (>10)")
				}
				return nil
			},
		}
	}

	if opts.CacheSize > 0 {
		cache, err := otter.MustBuilder[string, []byte](opts.CacheSize).
			WithTTL(opts.CacheTTL).
			Build()
		if err != nil {
			return nil, fmt.Errorf("building cache: %w", err)
		}
		c.cache = &cache
	}

	return c, nil
}

// Close releases the cache.
func (c *Client) Close() {
	if c.cache != nil {
		c.cache.Close()
	}
}

// Options returns the effective options.
func (c *Client) Options() Options {
	return c.opts
}

// PageURL returns the Parse API request URL for a page title.
func (c *Client) PageURL(title string) string {
	params := url.Values{}
	params.Set("action", "parse")
	params.Set("page", title)
	params.Set("prop", "text")
	params.Set("format", "json")
	params.Set("formatversion", "2")
	params.Set("redirects", "1")
	return c.opts.Endpoint + "?" + params.Encode()
}

// ParsedPage returns the Parse API response body for the page title. The
// body is JSON; hand it to htmldoc.ParseParseAPI.
func (c *Client) ParsedPage(ctx context.Context, title string) ([]byte, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, &RetrievalError{Locator: title, Err: ErrEmptyLocator}
	}
	return c.get(ctx, title, c.PageURL(title), "application/json")
}

// Raw returns the body behind rawURL. A URL without a scheme gets https://.
func (c *Client) Raw(ctx context.Context, rawURL string) ([]byte, error) {
	u := NormalizeURL(rawURL)
	if u == "" {
		return nil, &RetrievalError{Locator: rawURL, Err: ErrEmptyLocator}
	}
	return c.get(ctx, u, u, "text/html,application/xhtml+xml")
}

// NormalizeURL trims rawURL and adds https:// when it has no scheme.
func NormalizeURL(rawURL string) string {
	u := strings.TrimSpace(rawURL)
	if u == "" {
		return ""
	}
	if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
		u = "https://" + u
	}
	return u
}

func (c *Client) get(ctx context.Context, locator, u, accept string) ([]byte, error) {
	if c.cache != nil {
		if body, ok := c.cache.Get(u); ok {
			return body, nil
		}
	}

	ctx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, &RetrievalError{Locator: locator, Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("User-Agent", c.opts.UserAgent)
	req.Header.Set("Accept", accept)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &RetrievalError{Locator: locator, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &RetrievalError{
			Locator:    locator,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status %s", resp.Status),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.opts.MaxBodySize+1))
	if err != nil {
		return nil, &RetrievalError{Locator: locator, StatusCode: resp.StatusCode, Err: fmt.Errorf("reading body: %w", err)}
	}
	if int64(len(body)) > c.opts.MaxBodySize {
		return nil, &RetrievalError{Locator: locator, StatusCode: resp.StatusCode, Err: ErrBodyTooLarge}
	}

	if c.cache != nil {
		c.cache.Set(u, body)
	}
	return body, nil
}
