package repository

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/jszwec/csvutil"

	"airquality-dashboard/internal/models"
)

// FileStore keeps the station cache in a CSV file with the columns
// station, latitude, longitude.
type FileStore struct {
	path string
}

// NewFileStore creates a store for the CSV file at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file path.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads every row. A missing file is an empty cache.
func (s *FileStore) Load(ctx context.Context) ([]models.StationLocation, error) {
	f, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("repository: failed to open cache file: %w", err)
	}
	defer f.Close()

	rows, err := decodeLocations(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to read cache file %s: %w", s.path, err)
	}
	return rows, nil
}

// Save rewrites the whole file. The new content is written to a temporary
// file in the same directory and renamed over the old one.
func (s *FileStore) Save(ctx context.Context, rows []models.StationLocation) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("repository: failed to create cache directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("repository: failed to create temp cache file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck

	if err := encodeLocations(tmp, rows); err != nil {
		tmp.Close()
		return fmt.Errorf("repository: failed to write cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("repository: failed to close temp cache file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("repository: failed to replace cache file: %w", err)
	}
	return nil
}

var locationColumns = []string{"station", "latitude", "longitude"}

// decodeLocations reads station,latitude,longitude rows. Extra columns are
// ignored.
func decodeLocations(ctx context.Context, r io.Reader) ([]models.StationLocation, error) {
	dec, err := csvutil.NewDecoder(csv.NewReader(r))
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := requireColumns(dec.Header(), locationColumns); err != nil {
		return nil, err
	}

	var rows []models.StationLocation
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var row models.StationLocation
		err := dec.Decode(&row)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func encodeLocations(w io.Writer, rows []models.StationLocation) error {
	cw := csv.NewWriter(w)
	enc := csvutil.NewEncoder(cw)
	if err := enc.EncodeHeader(models.StationLocation{}); err != nil {
		return err
	}
	for _, row := range rows {
		if err := enc.Encode(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func requireColumns(header, required []string) error {
	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[h] = true
	}
	for _, col := range required {
		if !present[col] {
			return fmt.Errorf("missing column %q", col)
		}
	}
	return nil
}
