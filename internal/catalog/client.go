// Package catalog provides access to the Spotify Web API resources the
// analysis pipeline consumes: playlist metadata, playlist track pages, and
// per-artist genre lists.
//
// Two sources are available: Client attaches a caller-supplied bearer
// credential to every request, AppSource is pre-authorized with application
// credentials. Both memoize artist genre lookups.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultBaseURL = "https://api.spotify.com/v1"

	// pageLimit is the maximum page size the tracks endpoint allows.
	pageLimit = 100
)

// UpstreamError reports a failed catalog API call, either a non-2xx status
// or a transport failure. It aborts the analysis that triggered it.
type UpstreamError struct {
	URL    string
	Status int   // zero on transport failure
	Err    error // non-nil on transport failure
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("catalog request %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("catalog request %s: status %d", e.URL, e.Status)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// Client is a Spotify Web API client for caller-supplied bearer credentials.
// The genre cache is shared across credentials: genre data does not depend on
// who asks.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	genres     *genreCache
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRateLimit caps outbound requests at n per second.
func WithRateLimit(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(n), n)
		}
	}
}

// NewClient creates a catalog client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(20), 20),
		genres:  newGenreCache(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// PlaylistMetadata fetches the playlist name and owner display name.
func (c *Client) PlaylistMetadata(ctx context.Context, playlistID, token string) (Playlist, error) {
	var resp playlistResponse
	reqURL := fmt.Sprintf("%s/playlists/%s", c.baseURL, playlistID)
	if err := c.getJSON(ctx, reqURL, token, &resp); err != nil {
		return Playlist{}, err
	}
	return Playlist{Name: resp.Name, Owner: resp.Owner.DisplayName}, nil
}

// PlaylistTracks fetches every track of a playlist, following the upstream
// "next" link until it is null. Tracks accumulate in page order. Items whose
// track payload is null (removed or local-only entries) are skipped.
func (c *Client) PlaylistTracks(ctx context.Context, playlistID, token string) ([]Track, error) {
	reqURL := fmt.Sprintf("%s/playlists/%s/tracks?limit=%d", c.baseURL, playlistID, pageLimit)

	var tracks []Track
	for reqURL != "" {
		var page trackPage
		if err := c.getJSON(ctx, reqURL, token, &page); err != nil {
			return nil, err
		}

		for _, item := range page.Items {
			if item.Track == nil {
				continue
			}
			tracks = append(tracks, *item.Track)
		}

		if page.Next == nil {
			break
		}
		reqURL = *page.Next
	}
	return tracks, nil
}

// ArtistGenres fetches the genre list for an artist, memoized for the client
// lifetime. A second call for the same artist issues no network request.
func (c *Client) ArtistGenres(ctx context.Context, artistID, token string) ([]string, error) {
	return c.genres.get(artistID, func() ([]string, error) {
		var resp artistResponse
		reqURL := fmt.Sprintf("%s/artists/%s", c.baseURL, artistID)
		if err := c.getJSON(ctx, reqURL, token, &resp); err != nil {
			return nil, err
		}
		return resp.Genres, nil
	})
}

// WithToken binds a bearer credential to the client, yielding a source
// usable by the analysis pipeline.
func (c *Client) WithToken(token string) *TokenSource {
	return &TokenSource{client: c, token: token}
}

// getJSON performs one authorized GET and decodes the JSON response.
func (c *Client) getJSON(ctx context.Context, reqURL, token string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &UpstreamError{URL: reqURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return &UpstreamError{URL: reqURL, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &UpstreamError{URL: reqURL, Err: err}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parsing catalog response: %w", err)
	}
	return nil
}

// TokenSource is a Client bound to one bearer credential.
type TokenSource struct {
	client *Client
	token  string
}

// PlaylistMetadata implements the analysis source contract.
func (s *TokenSource) PlaylistMetadata(ctx context.Context, playlistID string) (Playlist, error) {
	return s.client.PlaylistMetadata(ctx, playlistID, s.token)
}

// PlaylistTracks implements the analysis source contract.
func (s *TokenSource) PlaylistTracks(ctx context.Context, playlistID string) ([]Track, error) {
	return s.client.PlaylistTracks(ctx, playlistID, s.token)
}

// ArtistGenres implements the analysis source contract.
func (s *TokenSource) ArtistGenres(ctx context.Context, artistID string) ([]string, error) {
	return s.client.ArtistGenres(ctx, artistID, s.token)
}
