// Command playlist-fingerprint runs the playlist analysis API server.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"

	"github.com/tobiasmay/go-playlist-fingerprint/internal/analysis"
	"github.com/tobiasmay/go-playlist-fingerprint/internal/catalog"
	"github.com/tobiasmay/go-playlist-fingerprint/internal/lyrics"
	"github.com/tobiasmay/go-playlist-fingerprint/internal/mood"
	"github.com/tobiasmay/go-playlist-fingerprint/internal/store"
	"github.com/tobiasmay/go-playlist-fingerprint/internal/web"
)

const defaultDataDir = "data/analyses"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// A missing .env file is fine; the environment may already be set.
	_ = godotenv.Load()

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
	})

	ctx := context.Background()

	st, closeStore, err := newStore(ctx, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	catalogClient := catalog.NewClient()

	// With app credentials configured, requests without a bearer token fall
	// back to the client-credentials flow instead of being rejected.
	var appSource analysis.Source
	if cfg, err := catalog.LoadAppConfig(); err == nil {
		appSource = catalog.NewAppSource(ctx, cfg)
		logger.Info("app-credential catalog source enabled")
	} else {
		logger.Info("no app credentials; requests must carry a bearer token")
	}

	lyricsOpts := []lyrics.Option{}
	if v := os.Getenv("LYRICS_API_URL"); v != "" {
		lyricsOpts = append(lyricsOpts, lyrics.WithBaseURL(v))
	}

	classifier := mood.NewClassifier(mood.LoadConfig(), mood.WithLogger(logger))
	scheduler := mood.NewScheduler(lyrics.NewFetcher(lyricsOpts...), classifier)

	handlers := web.NewHandlers(web.HandlersConfig{
		Catalog:   catalogClient,
		AppSource: appSource,
		Analyzer:  analysis.NewService(analysis.WithLogger(logger)),
		Moods:     scheduler,
		Store:     st,
		Logger:    logger,
	})

	server := web.NewServer(web.ServerConfig{
		Addr:     os.Getenv("ADDR"),
		Handlers: handlers,
		Logger:   logger,
	})

	return server.Run()
}

// newStore selects the analysis store: Postgres when DATABASE_URL is set,
// otherwise JSON files under DATA_DIR.
func newStore(ctx context.Context, logger *log.Logger) (store.Store, func(), error) {
	if databaseURL := os.Getenv("DATABASE_URL"); databaseURL != "" {
		pg, err := store.NewPostgresStore(ctx, databaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting analysis store: %w", err)
		}
		logger.Info("using postgres analysis store")
		return pg, pg.Close, nil
	}

	dir := os.Getenv("DATA_DIR")
	if dir == "" {
		dir = defaultDataDir
	}
	fs, err := store.NewFileStore(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("creating analysis store: %w", err)
	}
	logger.Info("using file analysis store", "dir", dir)
	return fs, func() {}, nil
}
