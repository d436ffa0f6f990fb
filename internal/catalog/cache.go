package catalog

import (
	"sync"

	"golang.org/x/sync/singleflight"
)

// genreCache memoizes artist genre lists for the lifetime of a catalog
// source. Entries are append-only and never evicted; a cached empty slice
// means the artist has no genres, a missing key means not yet fetched.
// Concurrent lookups for the same artist share a single upstream request.
type genreCache struct {
	mu       sync.RWMutex
	entries  map[string][]string
	inflight singleflight.Group
}

func newGenreCache() *genreCache {
	return &genreCache{entries: make(map[string][]string)}
}

// get returns the cached genre list for artistID, calling fetch at most once
// per key across all concurrent callers on a miss.
func (gc *genreCache) get(artistID string, fetch func() ([]string, error)) ([]string, error) {
	gc.mu.RLock()
	cached, ok := gc.entries[artistID]
	gc.mu.RUnlock()
	if ok {
		return cached, nil
	}

	v, err, _ := gc.inflight.Do(artistID, func() (any, error) {
		// Re-check under the flight: a previous flight may have
		// populated the entry between the miss and Do.
		gc.mu.RLock()
		cached, ok := gc.entries[artistID]
		gc.mu.RUnlock()
		if ok {
			return cached, nil
		}

		genres, err := fetch()
		if err != nil {
			return nil, err
		}
		if genres == nil {
			genres = []string{}
		}

		gc.mu.Lock()
		gc.entries[artistID] = genres
		gc.mu.Unlock()

		return genres, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]string), nil
}
