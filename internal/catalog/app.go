package catalog

import (
	"context"
	"errors"
	"os"

	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2/clientcredentials"
)

// ErrMissingAppCredentials is returned when SPOTIFY_ID or SPOTIFY_SECRET is
// not set.
var ErrMissingAppCredentials = errors.New("missing SPOTIFY_ID or SPOTIFY_SECRET environment variable")

// AppConfig holds application credentials for the client-credentials flow.
type AppConfig struct {
	ClientID     string
	ClientSecret string
}

// LoadAppConfig reads application credentials from environment variables.
// Returns ErrMissingAppCredentials if either variable is not set.
func LoadAppConfig() (*AppConfig, error) {
	clientID := os.Getenv("SPOTIFY_ID")
	clientSecret := os.Getenv("SPOTIFY_SECRET")
	if clientID == "" || clientSecret == "" {
		return nil, ErrMissingAppCredentials
	}
	return &AppConfig{ClientID: clientID, ClientSecret: clientSecret}, nil
}

// AppSource serves the same contract as Client.WithToken but is authorized
// with application credentials instead of a caller-supplied bearer token.
// Token acquisition and refresh are handled by the oauth2 transport.
type AppSource struct {
	api    *spotify.Client
	genres *genreCache
}

// NewAppSource creates a pre-authorized catalog source.
func NewAppSource(ctx context.Context, cfg *AppConfig) *AppSource {
	config := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     spotifyauth.TokenURL,
	}
	httpClient := config.Client(ctx)

	return &AppSource{
		api:    spotify.New(httpClient, spotify.WithRetry(true)),
		genres: newGenreCache(),
	}
}

// PlaylistMetadata fetches the playlist name and owner display name.
func (s *AppSource) PlaylistMetadata(ctx context.Context, playlistID string) (Playlist, error) {
	pl, err := s.api.GetPlaylist(ctx, spotify.ID(playlistID))
	if err != nil {
		return Playlist{}, &UpstreamError{URL: "playlists/" + playlistID, Err: err}
	}
	return Playlist{Name: pl.Name, Owner: pl.Owner.DisplayName}, nil
}

// PlaylistTracks fetches every track of a playlist, page by page. Items
// without a track payload are skipped.
func (s *AppSource) PlaylistTracks(ctx context.Context, playlistID string) ([]Track, error) {
	page, err := s.api.GetPlaylistItems(ctx, spotify.ID(playlistID), spotify.Limit(pageLimit))
	if err != nil {
		return nil, &UpstreamError{URL: "playlists/" + playlistID + "/tracks", Err: err}
	}

	var tracks []Track
	for {
		for _, item := range page.Items {
			if item.Track.Track == nil {
				continue
			}
			tracks = append(tracks, convertTrack(item.Track.Track))
		}

		err = s.api.NextPage(ctx, page)
		if errors.Is(err, spotify.ErrNoMorePages) {
			break
		}
		if err != nil {
			return nil, &UpstreamError{URL: "playlists/" + playlistID + "/tracks", Err: err}
		}
	}
	return tracks, nil
}

// ArtistGenres fetches the genre list for an artist, memoized for the source
// lifetime.
func (s *AppSource) ArtistGenres(ctx context.Context, artistID string) ([]string, error) {
	return s.genres.get(artistID, func() ([]string, error) {
		artist, err := s.api.GetArtist(ctx, spotify.ID(artistID))
		if err != nil {
			return nil, &UpstreamError{URL: "artists/" + artistID, Err: err}
		}
		return artist.Genres, nil
	})
}

// convertTrack maps a Spotify API track onto the simplified track model.
func convertTrack(t *spotify.FullTrack) Track {
	artists := make([]Artist, len(t.Artists))
	for i, a := range t.Artists {
		artists[i] = Artist{ID: a.ID.String(), Name: a.Name}
	}

	duration := int(t.Duration)

	return Track{
		ID:         t.ID.String(),
		Name:       t.Name,
		DurationMs: &duration,
		PreviewURL: t.PreviewURL,
		Explicit:   t.Explicit,
		Album: Album{
			Name:        t.Album.Name,
			ReleaseDate: t.Album.ReleaseDate,
		},
		Artists: artists,
	}
}
