// Package mood labels song lyrics with one word from a fixed mood
// vocabulary by prompting an external chat-completion service, batching
// tracks to amortize request overhead.
package mood

import "os"

const (
	defaultAPIURL = "https://ai.hackclub.com/chat/completions"
	defaultModel  = "gpt-3.5-turbo"
)

// Config holds the classification service settings.
type Config struct {
	APIURL string
	Model  string
}

// LoadConfig reads classifier configuration from MOOD_API_URL and
// MOOD_MODEL, falling back to the public defaults.
func LoadConfig() *Config {
	cfg := &Config{APIURL: defaultAPIURL, Model: defaultModel}
	if v := os.Getenv("MOOD_API_URL"); v != "" {
		cfg.APIURL = v
	}
	if v := os.Getenv("MOOD_MODEL"); v != "" {
		cfg.Model = v
	}
	return cfg
}
