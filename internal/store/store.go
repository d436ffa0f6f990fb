// Package store persists computed playlist reports for later lookup by
// analysis ID. Reports are opaque blobs to the store: beyond assigning an
// ID it never inspects them.
package store

import (
	"context"
	"encoding/hex"
	"errors"

	"github.com/google/uuid"

	"github.com/tobiasmay/go-playlist-fingerprint/internal/analysis"
)

// ErrNotFound is returned when no report exists for an analysis ID.
var ErrNotFound = errors.New("analysis not found")

// Store saves and loads playlist reports by analysis ID.
type Store interface {
	Save(ctx context.Context, report *analysis.Report) (string, error)
	Load(ctx context.Context, analysisID string) (*analysis.Report, error)
}

// newAnalysisID returns a short random hex identifier.
func newAnalysisID() string {
	id := uuid.New()
	return hex.EncodeToString(id[:4])
}
