package analysis

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/tobiasmay/go-playlist-fingerprint/internal/catalog"
)

// DefaultConcurrency bounds parallel artist genre fetches.
const DefaultConcurrency = 5

// fetchGenres resolves the genre list of every distinct credited artist in
// tracks through src, with at most concurrency fetches in flight. A failed
// lookup degrades to no genres for that artist and never aborts the run.
func fetchGenres(ctx context.Context, src Source, tracks []catalog.Track, concurrency int, logger *log.Logger) map[string][]string {
	var ids []string
	seen := make(map[string]struct{})
	for _, track := range tracks {
		for _, artist := range track.Artists {
			if artist.ID == "" {
				continue
			}
			if _, ok := seen[artist.ID]; ok {
				continue
			}
			seen[artist.ID] = struct{}{}
			ids = append(ids, artist.ID)
		}
	}

	genres := make(map[string][]string, len(ids))
	if len(ids) == 0 {
		return genres
	}

	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	type result struct {
		artistID string
		genres   []string
	}

	workCh := make(chan string, len(ids))
	for _, id := range ids {
		workCh <- id
	}
	close(workCh)

	resCh := make(chan result, len(ids))

	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range workCh {
				list, err := src.ArtistGenres(ctx, id)
				if err != nil {
					logger.Warn("artist genre lookup failed", "artist", id, "err", err)
					continue
				}
				resCh <- result{artistID: id, genres: list}
			}
		}()
	}
	wg.Wait()
	close(resCh)

	for r := range resCh {
		genres[r.artistID] = r.genres
	}
	return genres
}
