package analysis

import (
	"encoding/json"
	"testing"

	"github.com/tobiasmay/go-playlist-fingerprint/internal/catalog"
)

func TestNameCountMarshal(t *testing.T) {
	data, err := json.Marshal(NameCount{Name: "indie rock", Count: 7})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := string(data); got != `["indie rock",7]` {
		t.Errorf("marshal = %s, want [\"indie rock\",7]", got)
	}
}

func TestNameCountRoundTrip(t *testing.T) {
	orig := []NameCount{{Name: "A", Count: 6}, {Name: "B", Count: 3}}

	data, err := json.Marshal(orig)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded []NameCount
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if len(decoded) != 2 || decoded[0] != orig[0] || decoded[1] != orig[1] {
		t.Errorf("round trip = %v, want %v", decoded, orig)
	}
}

func TestNameCountUnmarshalInvalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"object", `{"name": "x", "count": 1}`},
		{"short array", `["x"]`},
		{"wrong types", `[1, "x"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var nc NameCount
			if err := json.Unmarshal([]byte(tt.data), &nc); err == nil {
				t.Errorf("expected error for %s", tt.data)
			}
		})
	}
}

func TestReportJSONShape(t *testing.T) {
	tracks := []catalog.Track{
		makeTrack("t1", "2016-05-01", intPtr(180000), true, catalog.Artist{ID: "a", Name: "A"}),
	}
	report := Analyze(catalog.Playlist{Name: "Mix", Owner: "Sam"}, tracks, noGenres, fixedNow)

	data, err := json.Marshal(report)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded map[string]json.RawMessage
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	// Compatibility contract for report consumers.
	keys := []string{
		"playlist_name", "playlist_owner", "analyzed_at", "tracks",
		"total_tracks", "top_artists", "year_distribution",
		"average_duration_ms", "top_genres", "throwback_index",
		"explicit_energy", "artist_concentration", "freshness_score",
		"collab_score",
	}
	for _, key := range keys {
		if _, ok := decoded[key]; !ok {
			t.Errorf("report JSON missing key %q", key)
		}
	}

	// analysis_id is omitted until the report is persisted.
	if _, ok := decoded["analysis_id"]; ok {
		t.Error("unsaved report should not carry analysis_id")
	}

	if got := string(decoded["year_distribution"]); got != `{"2016":1}` {
		t.Errorf("year_distribution = %s, want {\"2016\":1}", got)
	}
	if got := string(decoded["top_artists"]); got != `[["A",1]]` {
		t.Errorf("top_artists = %s, want [[\"A\",1]]", got)
	}
}
