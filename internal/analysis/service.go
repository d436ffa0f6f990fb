package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tobiasmay/go-playlist-fingerprint/internal/catalog"
)

// Source is the catalog capability the analysis consumes. Both the
// bearer-token client and the app-credential client satisfy it.
type Source interface {
	PlaylistMetadata(ctx context.Context, playlistID string) (catalog.Playlist, error)
	PlaylistTracks(ctx context.Context, playlistID string) ([]catalog.Track, error)
	ArtistGenres(ctx context.Context, artistID string) ([]string, error)
}

// ErrNoTracks signals an empty or unknown playlist. It is a no-data outcome,
// distinct from an upstream failure.
var ErrNoTracks = errors.New("playlist has no tracks")

// Service runs full playlist analyses against a catalog source.
type Service struct {
	concurrency int
	logger      *log.Logger
	now         func() time.Time
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithConcurrency sets the number of concurrent artist genre fetches.
func WithConcurrency(n int) ServiceOption {
	return func(s *Service) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithLogger replaces the default logger.
func WithLogger(logger *log.Logger) ServiceOption {
	return func(s *Service) { s.logger = logger }
}

// withNow fixes the clock. Tests only.
func withNow(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

// NewService creates an analysis service.
func NewService(opts ...ServiceOption) *Service {
	s := &Service{
		concurrency: DefaultConcurrency,
		logger:      log.Default(),
		now:         func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run fetches the playlist through src and computes its report. Metadata and
// track retrieval failures abort the run; genre lookup failures degrade to
// missing genres. Returns ErrNoTracks when the playlist has no usable
// tracks.
func (s *Service) Run(ctx context.Context, src Source, playlistID string) (*Report, error) {
	meta, err := src.PlaylistMetadata(ctx, playlistID)
	if err != nil {
		return nil, fmt.Errorf("fetching playlist metadata: %w", err)
	}

	tracks, err := src.PlaylistTracks(ctx, playlistID)
	if err != nil {
		return nil, fmt.Errorf("fetching playlist tracks: %w", err)
	}
	if len(tracks) == 0 {
		return nil, ErrNoTracks
	}

	genres := fetchGenres(ctx, src, tracks, s.concurrency, s.logger)
	lookup := func(artistID string) []string { return genres[artistID] }

	return Analyze(meta, tracks, lookup, s.now()), nil
}
