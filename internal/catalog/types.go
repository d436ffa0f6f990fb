package catalog

// Playlist holds the playlist identity fields carried into a report.
type Playlist struct {
	Name  string `json:"name"`
	Owner string `json:"owner"`
}

// Artist is one credited artist on a track.
type Artist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Album holds the album fields the analysis needs. ReleaseDate is the
// upstream date string, either a full date or just a year.
type Album struct {
	Name        string `json:"name"`
	ReleaseDate string `json:"release_date"`
}

// Track is the simplified track model carried through the analysis and into
// the report. ID is empty for local or unavailable tracks. DurationMs is nil
// when the upstream omits it.
type Track struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	DurationMs *int     `json:"duration_ms"`
	PreviewURL string   `json:"preview_url"`
	Explicit   bool     `json:"explicit"`
	Album      Album    `json:"album"`
	Artists    []Artist `json:"artists"`
}

// PrimaryArtist returns the first credited artist name, or "" if the track
// has no artists.
func (t Track) PrimaryArtist() string {
	if len(t.Artists) == 0 {
		return ""
	}
	return t.Artists[0].Name
}

// playlistResponse is the JSON response for GET /playlists/{id}.
type playlistResponse struct {
	Name  string `json:"name"`
	Owner struct {
		DisplayName string `json:"display_name"`
	} `json:"owner"`
}

// trackPage is one page of GET /playlists/{id}/tracks. Next is the absolute
// URL of the following page, null on the last one.
type trackPage struct {
	Items []struct {
		Track *Track `json:"track"`
	} `json:"items"`
	Next *string `json:"next"`
}

// artistResponse is the JSON response for GET /artists/{id}.
type artistResponse struct {
	Genres []string `json:"genres"`
}
