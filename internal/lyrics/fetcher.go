// Package lyrics fetches song lyric text from a lyrics.ovh-style API.
// Lookups are best effort: any failure yields absence, never an error, and
// nothing is retried.
package lyrics

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://api.lyrics.ovh/v1"
	defaultTimeout = 5 * time.Second
)

// Fetcher looks up lyrics by (artist, song).
type Fetcher struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithBaseURL overrides the lyrics API base URL.
func WithBaseURL(u string) Option {
	return func(f *Fetcher) { f.baseURL = u }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) { f.httpClient.Timeout = d }
}

// NewFetcher creates a lyrics fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch returns the lyrics text for a track, or false when lyrics are
// unavailable for any reason (non-200, transport failure, malformed body).
func (f *Fetcher) Fetch(ctx context.Context, trackName, artistName string) (string, bool) {
	reqURL := fmt.Sprintf("%s/%s/%s", f.baseURL,
		url.PathEscape(sanitize(artistName)), url.PathEscape(sanitize(trackName)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", false
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", false
	}

	var payload struct {
		Lyrics string `json:"lyrics"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", false
	}
	if payload.Lyrics == "" {
		return "", false
	}
	return payload.Lyrics, true
}

var quoteStripper = strings.NewReplacer(`"`, "", `'`, "")

// sanitize normalizes a name the way the lyrics source addresses songs:
// quote characters stripped, surrounding whitespace trimmed, lowercased.
func sanitize(s string) string {
	return strings.ToLower(strings.TrimSpace(quoteStripper.Replace(s)))
}
