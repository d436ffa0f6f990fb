package mood

import (
	"context"
	"sync"

	"github.com/tobiasmay/go-playlist-fingerprint/internal/catalog"
)

const (
	// DefaultBatchSize is how many tracks go into one classification
	// request.
	DefaultBatchSize = 6

	// DefaultGroupConcurrency bounds how many groups are classified at
	// once.
	DefaultGroupConcurrency = 3
)

// LyricsSource fetches lyric text for a (track, artist) pair. Absence is
// reported through the boolean, never through an error.
type LyricsSource interface {
	Fetch(ctx context.Context, trackName, artistName string) (string, bool)
}

// BatchClassifier labels one group of tracks. The returned map has an entry
// for every input pair.
type BatchClassifier interface {
	ClassifyBatch(ctx context.Context, items []TrackLyrics) map[string]string
}

// Scheduler drives the lyric-to-mood pipeline: it partitions a track list
// into fixed-size groups, fetches lyrics per track, classifies each group in
// one request, and merges the group results into one mapping.
type Scheduler struct {
	lyrics      LyricsSource
	classifier  BatchClassifier
	batchSize   int
	concurrency int
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithBatchSize sets the group size.
func WithBatchSize(n int) SchedulerOption {
	return func(s *Scheduler) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

// WithGroupConcurrency sets how many groups may be in flight at once.
func WithGroupConcurrency(n int) SchedulerOption {
	return func(s *Scheduler) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// NewScheduler creates a batch scheduler over the given sources.
func NewScheduler(lyricsSrc LyricsSource, classifier BatchClassifier, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		lyrics:      lyricsSrc,
		classifier:  classifier,
		batchSize:   DefaultBatchSize,
		concurrency: DefaultGroupConcurrency,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ClassifyAll labels every track that has an ID. Groups are consecutive and
// preserve input order; the final group may be smaller. Groups run on a
// bounded worker pool and their partial results are merged by this
// goroutine alone; an ID labeled by an earlier group is never overwritten.
func (s *Scheduler) ClassifyAll(ctx context.Context, tracks []catalog.Track) map[string]string {
	var eligible []catalog.Track
	for _, track := range tracks {
		if track.ID == "" {
			continue
		}
		eligible = append(eligible, track)
	}
	if len(eligible) == 0 {
		return map[string]string{}
	}

	var groups [][]catalog.Track
	for i := 0; i < len(eligible); i += s.batchSize {
		end := min(i+s.batchSize, len(eligible))
		groups = append(groups, eligible[i:end])
	}

	partials := make([]map[string]string, len(groups))

	type work struct {
		index int
		group []catalog.Track
	}
	workCh := make(chan work, len(groups))
	for i, group := range groups {
		workCh <- work{index: i, group: group}
	}
	close(workCh)

	var wg sync.WaitGroup
	for i := 0; i < s.concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for w := range workCh {
				partials[w.index] = s.classifyGroup(ctx, w.group)
			}
		}()
	}
	wg.Wait()

	moods := make(map[string]string, len(eligible))
	for _, partial := range partials {
		for id, label := range partial {
			if _, ok := moods[id]; ok {
				continue
			}
			moods[id] = label
		}
	}
	return moods
}

// classifyGroup fetches lyrics for each track in the group, failures
// isolated per track as absence, then classifies the group in one request.
func (s *Scheduler) classifyGroup(ctx context.Context, group []catalog.Track) map[string]string {
	items := make([]TrackLyrics, 0, len(group))
	for _, track := range group {
		text, found := s.lyrics.Fetch(ctx, track.Name, track.PrimaryArtist())
		items = append(items, TrackLyrics{TrackID: track.ID, Lyrics: text, Found: found})
	}
	return s.classifier.ClassifyBatch(ctx, items)
}
