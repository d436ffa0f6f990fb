package analysis

import (
	"encoding/json"
	"time"

	"github.com/tobiasmay/go-playlist-fingerprint/internal/catalog"
)

// NameCount is a (name, count) frequency pair. It marshals as a two-element
// array, which is the report wire shape for top_artists and top_genres.
type NameCount struct {
	Name  string
	Count int
}

// MarshalJSON encodes the pair as ["name", count].
func (nc NameCount) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{nc.Name, nc.Count})
}

// UnmarshalJSON decodes ["name", count].
func (nc *NameCount) UnmarshalJSON(data []byte) error {
	var pair [2]json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if err := json.Unmarshal(pair[0], &nc.Name); err != nil {
		return err
	}
	return json.Unmarshal(pair[1], &nc.Count)
}

// Report is the aggregate result of one playlist analysis. It is immutable
// after construction; AnalysisID is filled in by the store when the report
// is persisted.
type Report struct {
	PlaylistName  string    `json:"playlist_name"`
	PlaylistOwner string    `json:"playlist_owner"`
	AnalyzedAt    time.Time `json:"analyzed_at"`

	Tracks []catalog.Track `json:"tracks"`

	TotalTracks       int         `json:"total_tracks"`
	TopArtists        []NameCount `json:"top_artists"`
	YearDistribution  map[int]int `json:"year_distribution"`
	AverageDurationMs int         `json:"average_duration_ms"`
	TopGenres         []NameCount `json:"top_genres"`

	ThrowbackIndex      float64 `json:"throwback_index"`
	ExplicitEnergy      float64 `json:"explicit_energy"`
	ArtistConcentration float64 `json:"artist_concentration"`
	FreshnessScore      float64 `json:"freshness_score"`
	CollabScore         float64 `json:"collab_score"`

	AnalysisID string `json:"analysis_id,omitempty"`
}
