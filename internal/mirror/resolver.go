package mirror

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultRequestTimeout bounds a single resolve or fetch request so a stuck
// remote cannot hold a worker forever.
const DefaultRequestTimeout = 60 * time.Second

// Resolver turns a collection's base endpoint plus an item identifier into
// a concrete, fetchable document URL.
//
// Resolve reports found=false for every kind of failure: network errors,
// non-success status, and final URLs that do not look like a PDF document.
// It never returns an error; "could not resolve" is a normal outcome.
type Resolver interface {
	Resolve(ctx context.Context, baseURL, item string) (resolved string, found bool)
}

// HTTPResolver resolves documents using redirect-following HTTP semantics:
// GET <baseURL><escaped item> and inspect where the redirects land.
type HTTPResolver struct {
	Client *http.Client
}

// NewHTTPResolver returns a resolver backed by client. A nil client gets a
// default with DefaultRequestTimeout.
func NewHTTPResolver(client *http.Client) *HTTPResolver {
	if client == nil {
		client = &http.Client{Timeout: DefaultRequestTimeout}
	}
	return &HTTPResolver{Client: client}
}

// Resolve implements Resolver.
//
// The item is query-escaped (spaces as '+') and appended to baseURL. The
// document is considered found iff the final response status is 2xx and the
// final URL's path ends in ".pdf".
func (r *HTTPResolver) Resolve(ctx context.Context, baseURL, item string) (string, bool) {
	full := baseURL + url.QueryEscape(item)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, full, nil)
	if err != nil {
		return "", false
	}

	resp, err := r.Client.Do(req)
	if err != nil {
		return "", false
	}
	defer resp.Body.Close()

	// Drain so the connection can be reused.
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", false
	}

	final := resp.Request.URL
	if !strings.HasSuffix(strings.ToLower(final.Path), ".pdf") {
		return "", false
	}

	return final.String(), true
}
