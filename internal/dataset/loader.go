package dataset

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// ErrUnavailable wraps every failure to produce a dataset.
var ErrUnavailable = errors.New("dataset: unavailable")

// Loader serves a parsed dataset and re-reads the file when its size or
// modification time changes.
type Loader struct {
	path string

	mu      sync.Mutex
	ds      *Dataset
	modTime time.Time
	size    int64
}

// NewLoader creates a loader for the CSV file at path. Nothing is read until
// the first Get.
func NewLoader(path string) *Loader {
	return &Loader{path: path}
}

// Path returns the CSV path.
func (l *Loader) Path() string {
	return l.path
}

// Get returns the current dataset. Errors wrap ErrUnavailable.
func (l *Loader) Get(ctx context.Context) (*Dataset, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	info, err := os.Stat(l.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	if l.ds != nil && info.ModTime().Equal(l.modTime) && info.Size() == l.size {
		return l.ds, nil
	}

	start := time.Now()
	ds, err := Load(ctx, l.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	l.ds, l.modTime, l.size = ds, info.ModTime(), info.Size()
	log.Info().
		Str("path", l.path).
		Int("records", ds.Len()).
		Int("stations", len(ds.stations)).
		Dur("elapsed", time.Since(start)).
		Msg("dataset loaded")
	return ds, nil
}
