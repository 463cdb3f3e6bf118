package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"airquality-dashboard/internal/models"
)

// Store persists the station cache rows.
type Store interface {
	Load(ctx context.Context) ([]models.StationLocation, error)
	Save(ctx context.Context, rows []models.StationLocation) error
}

// ErrInMemoryOnly is returned by Save after a failed Load. The stored rows
// were never read, so writing the cache back would drop them.
var ErrInMemoryOnly = errors.New("cache: store not loaded, keeping rows in memory only")

// StationCache holds station coordinates in memory between an explicit
// Load and Save against its Store. Rows are only ever appended.
type StationCache struct {
	store Store

	mu      sync.RWMutex
	rows    []models.StationLocation
	index   map[string]int
	persist bool

	// saveMu orders saves so an older snapshot never replaces a newer one.
	saveMu sync.Mutex
}

// NewStationCache creates an empty cache backed by store.
func NewStationCache(store Store) *StationCache {
	return &StationCache{store: store, index: make(map[string]int), persist: true}
}

// Load replaces the in-memory rows with the stored ones. On error the cache
// is left empty and keeps working in memory only: Save stops writing to the
// store until a later Load succeeds.
func (c *StationCache) Load(ctx context.Context) error {
	rows, err := c.store.Load(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.rows = nil
	c.index = make(map[string]int)
	c.persist = err == nil
	if err != nil {
		return fmt.Errorf("cache: load: %w", err)
	}
	for _, r := range rows {
		c.add(r)
	}
	return nil
}

// Save writes every row to the store. It returns ErrInMemoryOnly without
// touching the store when the last Load failed.
func (c *StationCache) Save(ctx context.Context) error {
	c.saveMu.Lock()
	defer c.saveMu.Unlock()

	if !c.Persistent() {
		return ErrInMemoryOnly
	}
	if err := c.store.Save(ctx, c.Entries()); err != nil {
		return fmt.Errorf("cache: save: %w", err)
	}
	return nil
}

// Persistent reports whether Save writes to the store.
func (c *StationCache) Persistent() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.persist
}

// Lookup returns the coordinates stored for station, matched exactly.
func (c *StationCache) Lookup(station string) (models.Coordinates, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	i, ok := c.index[station]
	if !ok {
		return models.Coordinates{}, false
	}
	return c.rows[i].Coordinates(), true
}

// Add appends a row. It reports false when the station is already cached.
func (c *StationCache) Add(row models.StationLocation) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.add(row)
}

func (c *StationCache) add(row models.StationLocation) bool {
	if _, ok := c.index[row.Station]; ok {
		return false
	}
	c.index[row.Station] = len(c.rows)
	c.rows = append(c.rows, row)
	return true
}

// Entries returns a copy of the rows in insertion order.
func (c *StationCache) Entries() []models.StationLocation {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]models.StationLocation, len(c.rows))
	copy(out, c.rows)
	return out
}

// Len returns the number of cached stations.
func (c *StationCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.rows)
}
