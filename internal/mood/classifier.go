package mood

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

const (
	// singleTokenBudget bounds the reply for one {"mood": ...} object.
	singleTokenBudget = 50

	// batchTokensPerTrack sizes the batch reply budget; the reply grows
	// with the number of track IDs in the prompt.
	batchTokensPerTrack = 160

	noLyricsPlaceholder = "No lyrics available."

	singleSystemPrompt = "You are a helpful assistant that analyzes song lyrics sentiment."
	batchSystemPrompt  = "You label song lyrics with exactly one mood from the provided list."
)

// TrackLyrics pairs a track ID with its fetched lyrics. Found is false when
// the lyrics source had nothing for the track.
type TrackLyrics struct {
	TrackID string
	Lyrics  string
	Found   bool
}

// Classifier labels lyrics with one mood word via an external
// chat-completion service. The model reply is untrusted text: malformed or
// failed responses degrade to the Unknown label, never to an error.
type Classifier struct {
	apiURL     string
	model      string
	httpClient *http.Client
	logger     *log.Logger
}

// ClassifierOption configures a Classifier.
type ClassifierOption func(*Classifier)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClassifierOption {
	return func(c *Classifier) { c.httpClient = hc }
}

// WithLogger replaces the default logger.
func WithLogger(logger *log.Logger) ClassifierOption {
	return func(c *Classifier) { c.logger = logger }
}

// NewClassifier creates a mood classifier for the configured service.
func NewClassifier(cfg *Config, opts ...ClassifierOption) *Classifier {
	c := &Classifier{
		apiURL:     cfg.APIURL,
		model:      cfg.Model,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     log.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify labels one track's lyrics. Empty lyrics short-circuit to the
// NoLyrics label without a network call.
func (c *Classifier) Classify(ctx context.Context, lyricsText string) string {
	if lyricsText == "" {
		return LabelNoLyrics
	}

	content, err := c.complete(ctx, singleSystemPrompt, singlePrompt(lyricsText), singleTokenBudget)
	if err != nil {
		c.logger.Warn("mood classification failed", "err", err)
		return LabelUnknown
	}

	var parsed struct {
		Mood string `json:"mood"`
	}
	if err := json.Unmarshal([]byte(content), &parsed); err != nil || parsed.Mood == "" {
		return LabelUnknown
	}
	return parsed.Mood
}

// ClassifyBatch labels a group of tracks in one request. Failure is atomic
// per batch: on any transport, status, or parse error every input track maps
// to Unknown. Track IDs the model omits are filled with a sentinel so no
// input is left without an entry.
func (c *Classifier) ClassifyBatch(ctx context.Context, items []TrackLyrics) map[string]string {
	if len(items) == 0 {
		return map[string]string{}
	}

	content, err := c.complete(ctx, batchSystemPrompt, batchPrompt(items), batchTokensPerTrack*len(items))
	if err != nil {
		c.logger.Warn("batch mood classification failed", "tracks", len(items), "err", err)
		return unknownAll(items)
	}

	var parsed map[string]string
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		c.logger.Warn("unparseable batch mood reply", "tracks", len(items), "err", err)
		return unknownAll(items)
	}

	moods := make(map[string]string, len(items))
	for _, item := range items {
		mood, ok := parsed[item.TrackID]
		if !ok || mood == "" {
			if item.Found {
				mood = LabelUnknown
			} else {
				mood = LabelNoLyrics
			}
		}
		moods[item.TrackID] = mood
	}
	return moods
}

func unknownAll(items []TrackLyrics) map[string]string {
	moods := make(map[string]string, len(items))
	for _, item := range items {
		moods[item.TrackID] = LabelUnknown
	}
	return moods
}

// chatRequest is the completion request body. Temperature stays zero for
// deterministic intent.
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// complete performs one chat-completion request and returns the trimmed
// message content.
func (c *Classifier) complete(ctx context.Context, system, user string, maxTokens int) (string, error) {
	payload := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		MaxTokens:   maxTokens,
		Temperature: 0,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encoding completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating completion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("executing completion request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("completion status %d", resp.StatusCode)
	}

	var decoded chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("parsing completion response: %w", err)
	}
	if len(decoded.Choices) == 0 {
		return "", errors.New("completion response has no choices")
	}
	return strings.TrimSpace(decoded.Choices[0].Message.Content), nil
}

func singlePrompt(lyricsText string) string {
	return "Analyze the sentiment of the following song lyrics. " +
		"From this list of moods, choose exactly one mood that best describes the overall mood of the lyrics:\n" +
		strings.Join(Vocabulary, ", ") + ".\n" +
		"Respond ONLY with a valid JSON object with a single key \"mood\" and the mood word as the value. " +
		"Do NOT include any explanation or extra text.\n\n" +
		"Lyrics:\n" + lyricsText + "\n\n" +
		"JSON response:"
}

func batchPrompt(items []TrackLyrics) string {
	var b strings.Builder
	b.WriteString("Analyze each set of lyrics below and reply ONLY with a JSON object " +
		"mapping track_id to one mood word from this list:\n" +
		strings.Join(Vocabulary, ", ") + ".\n")
	for _, item := range items {
		text := item.Lyrics
		if !item.Found || text == "" {
			text = noLyricsPlaceholder
		}
		b.WriteString("\nTrack ID: " + item.TrackID + "\nLyrics:\n" + text + "\n")
	}
	b.WriteString("\nJSON response:")
	return b.String()
}
