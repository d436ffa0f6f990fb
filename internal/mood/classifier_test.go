package mood

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

// completionServer returns an httptest server that replies with the given
// message content and records decoded requests.
func completionServer(t *testing.T, content string, requests *[]chatRequest) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		if requests != nil {
			*requests = append(*requests, req)
		}

		w.Header().Set("Content-Type", "application/json")
		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": content}},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
}

func TestClassify(t *testing.T) {
	var requests []chatRequest
	server := completionServer(t, `{"mood": "Melancholic"}`, &requests)
	defer server.Close()

	c := NewClassifier(&Config{APIURL: server.URL, Model: "test-model"})

	got := c.Classify(context.Background(), "rain against the window")
	if got != "Melancholic" {
		t.Errorf("mood = %q, want Melancholic", got)
	}

	if len(requests) != 1 {
		t.Fatalf("requests = %d, want 1", len(requests))
	}
	req := requests[0]
	if req.Model != "test-model" {
		t.Errorf("model = %q", req.Model)
	}
	if req.Temperature != 0 {
		t.Errorf("temperature = %v, want 0", req.Temperature)
	}
	if req.MaxTokens != singleTokenBudget {
		t.Errorf("max_tokens = %d, want %d", req.MaxTokens, singleTokenBudget)
	}
	if len(req.Messages) != 2 || req.Messages[0].Role != "system" || req.Messages[1].Role != "user" {
		t.Errorf("unexpected messages: %+v", req.Messages)
	}
	if !strings.Contains(req.Messages[1].Content, "rain against the window") {
		t.Error("prompt does not contain the lyrics")
	}
}

func TestClassifyNoLyricsShortCircuits(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	c := NewClassifier(&Config{APIURL: server.URL, Model: "m"})

	if got := c.Classify(context.Background(), ""); got != LabelNoLyrics {
		t.Errorf("mood = %q, want %q", got, LabelNoLyrics)
	}
	if calls.Load() != 0 {
		t.Errorf("expected no network call, got %d", calls.Load())
	}
}

func TestClassifyDegradesToUnknown(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "unparseable reply",
			handler: func(w http.ResponseWriter, r *http.Request) {
				resp := map[string]any{
					"choices": []map[string]any{
						{"message": map[string]any{"content": "The mood is Happy!"}},
					},
				}
				json.NewEncoder(w).Encode(resp)
			},
		},
		{
			name: "empty mood",
			handler: func(w http.ResponseWriter, r *http.Request) {
				resp := map[string]any{
					"choices": []map[string]any{
						{"message": map[string]any{"content": `{"mood": ""}`}},
					},
				}
				json.NewEncoder(w).Encode(resp)
			},
		},
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "overloaded", http.StatusServiceUnavailable)
			},
		},
		{
			name: "no choices",
			handler: func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `{"choices": []}`)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			c := NewClassifier(&Config{APIURL: server.URL, Model: "m"})

			if got := c.Classify(context.Background(), "some lyrics"); got != LabelUnknown {
				t.Errorf("mood = %q, want %q", got, LabelUnknown)
			}
		})
	}
}

func TestClassifyBatch(t *testing.T) {
	var requests []chatRequest
	server := completionServer(t, `{"t1": "Happy", "t2": "Dark"}`, &requests)
	defer server.Close()

	c := NewClassifier(&Config{APIURL: server.URL, Model: "m"})

	items := []TrackLyrics{
		{TrackID: "t1", Lyrics: "sunshine", Found: true},
		{TrackID: "t2", Lyrics: "shadows", Found: true},
	}
	got := c.ClassifyBatch(context.Background(), items)

	if got["t1"] != "Happy" || got["t2"] != "Dark" {
		t.Errorf("moods = %v", got)
	}

	req := requests[0]
	if req.MaxTokens != batchTokensPerTrack*2 {
		t.Errorf("max_tokens = %d, want %d", req.MaxTokens, batchTokensPerTrack*2)
	}
	prompt := req.Messages[1].Content
	for _, want := range []string{"Track ID: t1", "Track ID: t2", "sunshine", "shadows"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestClassifyBatchRendersPlaceholder(t *testing.T) {
	var requests []chatRequest
	server := completionServer(t, `{"t1": "Calm"}`, &requests)
	defer server.Close()

	c := NewClassifier(&Config{APIURL: server.URL, Model: "m"})

	c.ClassifyBatch(context.Background(), []TrackLyrics{{TrackID: "t1", Found: false}})

	if !strings.Contains(requests[0].Messages[1].Content, noLyricsPlaceholder) {
		t.Errorf("prompt missing placeholder %q", noLyricsPlaceholder)
	}
}

func TestClassifyBatchAtomicDegradation(t *testing.T) {
	server := completionServer(t, "sorry, I cannot help with that", nil)
	defer server.Close()

	c := NewClassifier(&Config{APIURL: server.URL, Model: "m"})

	items := []TrackLyrics{
		{TrackID: "t1", Lyrics: "a", Found: true},
		{TrackID: "t2", Lyrics: "b", Found: true},
		{TrackID: "t3", Found: false},
	}
	got := c.ClassifyBatch(context.Background(), items)

	if len(got) != 3 {
		t.Fatalf("entries = %d, want 3", len(got))
	}
	for id, label := range got {
		if label != LabelUnknown {
			t.Errorf("moods[%s] = %q, want %q", id, label, LabelUnknown)
		}
	}
}

func TestClassifyBatchTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	c := NewClassifier(&Config{APIURL: server.URL, Model: "m"})

	got := c.ClassifyBatch(context.Background(), []TrackLyrics{{TrackID: "t1", Lyrics: "x", Found: true}})
	if got["t1"] != LabelUnknown {
		t.Errorf("moods = %v, want t1 -> Unknown", got)
	}
}

func TestClassifyBatchFillsOmittedIDs(t *testing.T) {
	// Model only answers for t1; t2 had lyrics, t3 did not.
	server := completionServer(t, `{"t1": "Pumped"}`, nil)
	defer server.Close()

	c := NewClassifier(&Config{APIURL: server.URL, Model: "m"})

	items := []TrackLyrics{
		{TrackID: "t1", Lyrics: "a", Found: true},
		{TrackID: "t2", Lyrics: "b", Found: true},
		{TrackID: "t3", Found: false},
	}
	got := c.ClassifyBatch(context.Background(), items)

	if got["t1"] != "Pumped" {
		t.Errorf("moods[t1] = %q", got["t1"])
	}
	if got["t2"] != LabelUnknown {
		t.Errorf("moods[t2] = %q, want %q", got["t2"], LabelUnknown)
	}
	if got["t3"] != LabelNoLyrics {
		t.Errorf("moods[t3] = %q, want %q", got["t3"], LabelNoLyrics)
	}
}

func TestClassifyBatchEmpty(t *testing.T) {
	c := NewClassifier(&Config{APIURL: "http://unused", Model: "m"})

	got := c.ClassifyBatch(context.Background(), nil)
	if len(got) != 0 {
		t.Errorf("expected empty map, got %v", got)
	}
}

func TestVocabularySize(t *testing.T) {
	if len(Vocabulary) != 24 {
		t.Errorf("vocabulary size = %d, want 24", len(Vocabulary))
	}

	seen := make(map[string]bool)
	for _, word := range Vocabulary {
		if seen[word] {
			t.Errorf("duplicate mood word %q", word)
		}
		seen[word] = true
	}
}
