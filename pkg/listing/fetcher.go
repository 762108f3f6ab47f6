package listing

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// browserHeaders mimics a desktop Firefox request. The booking site serves
// locale-specific availability strings, so Accept-Language must request
// German first for the waitlist sentinels to match.
var browserHeaders = map[string]string{
	"User-Agent":                "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:133.0) Gecko/20100101 Firefox/133.0",
	"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
	"Accept-Language":           "de,en-US;q=0.7,en;q=0.3",
	"Upgrade-Insecure-Requests": "1",
	"Sec-Fetch-Dest":            "document",
	"Sec-Fetch-Mode":            "navigate",
	"Sec-Fetch-Site":            "none",
	"Sec-Fetch-User":            "?1",
	"Priority":                  "u=0, i",
}

// DefaultFetchTimeout bounds a single listing page request.
const DefaultFetchTimeout = 30 * time.Second

// Fetcher retrieves the course listing page and parses it into a Snapshot.
type Fetcher struct {
	url    string
	client *http.Client
}

// NewFetcher creates a fetcher for the given listing URL. A non-positive
// timeout falls back to DefaultFetchTimeout.
func NewFetcher(url string, timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	return &Fetcher{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

// URL returns the listing page URL this fetcher polls.
func (f *Fetcher) URL() string { return f.url }

// Fetch performs one GET against the listing page and parses the response.
func (f *Fetcher) Fetch(ctx context.Context) (*Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build listing request: %w", err)
	}
	for k, v := range browserHeaders {
		req.Header.Set(k, v)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch listing page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("listing page returned status %d", resp.StatusCode)
	}

	return NewSnapshot(resp.Body)
}
