package mirror

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
)

// Fetcher streams a resolved URL's content to a local path.
//
// On success exactly one file exists at dest. On any failure (non-success
// status, network error mid-stream, filesystem error) no file remains at
// dest.
type Fetcher interface {
	Fetch(ctx context.Context, url, dest string) error
}

// HTTPFetcher downloads documents over HTTP with chunked streaming, so
// memory use is bounded regardless of document size.
type HTTPFetcher struct {
	Client *http.Client
}

// NewHTTPFetcher returns a fetcher backed by client. A nil client gets a
// default with DefaultRequestTimeout.
func NewHTTPFetcher(client *http.Client) *HTTPFetcher {
	if client == nil {
		client = &http.Client{Timeout: DefaultRequestTimeout}
	}
	return &HTTPFetcher{Client: client}
}

// Fetch implements Fetcher.
func (f *HTTPFetcher) Fetch(ctx context.Context, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %s fetching %s", resp.Status, url)
	}

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dest, err)
	}

	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		os.Remove(dest)
		return fmt.Errorf("failed to stream %s: %w", url, err)
	}

	if err := out.Close(); err != nil {
		os.Remove(dest)
		return fmt.Errorf("failed to close %s: %w", dest, err)
	}

	return nil
}
