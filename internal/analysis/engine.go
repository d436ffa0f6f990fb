// Package analysis computes the statistics report for a playlist: artist and
// genre frequencies, release-year distribution, and the derived scores.
package analysis

import (
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/tobiasmay/go-playlist-fingerprint/internal/catalog"
)

// topN is how many entries top_artists and top_genres keep.
const topN = 10

// GenreLookup returns the genre list for an artist ID. Unknown artists may
// yield nil.
type GenreLookup func(artistID string) []string

// Analyze computes the full report from already-fetched data in one pass
// plus genre lookups. It performs no I/O. Returns nil for an empty track
// list; callers map that to a not-found outcome rather than an error.
//
// now anchors both the analyzed_at timestamp and the throwback/freshness
// year windows.
func Analyze(meta catalog.Playlist, tracks []catalog.Track, lookup GenreLookup, now time.Time) *Report {
	if len(tracks) == 0 {
		return nil
	}

	artistCounts := newCounter()
	genreCounts := newCounter()
	years := make(map[int]int)

	nowYear := now.Year()
	var (
		throwback    int
		fresh        int
		explicit     int
		withDuration int
		durationSum  int
		totalArtists int
	)

	for _, track := range tracks {
		totalArtists += len(track.Artists)

		for _, artist := range track.Artists {
			artistCounts.add(artist.Name)
		}

		if year, ok := releaseYear(track.Album.ReleaseDate); ok {
			years[year]++
			if nowYear-year >= 10 {
				throwback++
			}
			if nowYear-year <= 2 {
				fresh++
			}
		}

		if track.DurationMs != nil {
			withDuration++
			durationSum += *track.DurationMs
		}

		if track.Explicit {
			explicit++
		}

		for _, artist := range track.Artists {
			for _, genre := range lookup(artist.ID) {
				genreCounts.add(genre)
			}
		}
	}

	total := len(tracks)

	// A track counts toward concentration when any of its credited artists
	// is among the top 3 overall.
	top3 := make(map[string]bool, 3)
	for _, nc := range artistCounts.top(3) {
		top3[nc.Name] = true
	}
	concentrated := 0
	for _, track := range tracks {
		for _, artist := range track.Artists {
			if top3[artist.Name] {
				concentrated++
				break
			}
		}
	}

	averageDuration := 0
	if withDuration > 0 {
		averageDuration = durationSum / withDuration
	}

	return &Report{
		PlaylistName:  meta.Name,
		PlaylistOwner: meta.Owner,
		AnalyzedAt:    now,

		Tracks: tracks,

		TotalTracks:       total,
		TopArtists:        artistCounts.top(topN),
		YearDistribution:  years,
		AverageDurationMs: averageDuration,
		TopGenres:         genreCounts.top(topN),

		ThrowbackIndex:      percentage(throwback, total),
		ExplicitEnergy:      percentage(explicit, total),
		ArtistConcentration: percentage(concentrated, total),
		FreshnessScore:      percentage(fresh, total),
		CollabScore:         round2(ratio(totalArtists, total)),
	}
}

// releaseYear extracts the release year as the first four characters of the
// date string parsed as an integer. Missing or non-numeric dates report no
// year.
func releaseYear(releaseDate string) (int, bool) {
	if releaseDate == "" {
		return 0, false
	}
	s := releaseDate
	if len(s) > 4 {
		s = s[:4]
	}
	year, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return year, true
}

// percentage is 100*count/total rounded to two decimals, 0 when total is 0.
func percentage(count, total int) float64 {
	return round2(100 * ratio(count, total))
}

func ratio(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(count) / float64(total)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// counter tallies string frequencies while remembering first-seen order so
// equal counts rank in encounter order.
type counter struct {
	counts map[string]int
	order  []string
}

func newCounter() *counter {
	return &counter{counts: make(map[string]int)}
}

func (c *counter) add(key string) {
	if _, ok := c.counts[key]; !ok {
		c.order = append(c.order, key)
	}
	c.counts[key]++
}

// top returns the n highest-count entries, ties broken by first-seen order.
func (c *counter) top(n int) []NameCount {
	ranked := make([]NameCount, 0, len(c.order))
	for _, key := range c.order {
		ranked = append(ranked, NameCount{Name: key, Count: c.counts[key]})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}
