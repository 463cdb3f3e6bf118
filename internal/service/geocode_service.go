package service

import (
	"context"
	"fmt"
	"strings"

	"airquality-dashboard/internal/models"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// ResolveStatus describes how a station's coordinates were obtained
type ResolveStatus string

const (
	StatusHit      ResolveStatus = "hit"
	StatusResolved ResolveStatus = "resolved"
	StatusNotFound ResolveStatus = "not_found"
	StatusFailed   ResolveStatus = "failed"
)

// Resolution is the outcome of resolving one station. Coordinates is nil
// unless Status is hit or resolved.
type Resolution struct {
	Station     string              `json:"station"`
	Coordinates *models.Coordinates `json:"coordinates"`
	Status      ResolveStatus       `json:"status"`
	// Persisted is false when a new row could not be written to the store.
	Persisted bool  `json:"persisted"`
	Err       error `json:"-"`
}

// OK reports whether coordinates are available.
func (r Resolution) OK() bool {
	return r.Coordinates != nil
}

// Geocoder interface for dependency injection
type Geocoder interface {
	Geocode(ctx context.Context, query string) (*models.Coordinates, error)
}

// StationCache interface for dependency injection
type StationCache interface {
	Lookup(station string) (models.Coordinates, bool)
	Add(row models.StationLocation) bool
	Save(ctx context.Context) error
}

// GeoCodeService resolves station names to coordinates, consulting the
// cache before the external geocoder
type GeoCodeService struct {
	geocoder  Geocoder
	cache     StationCache
	qualifier string

	// misses collapses concurrent misses for the same station.
	misses singleflight.Group
}

// NewGeoCodeService creates a new geo code service. qualifier is appended
// to every query, e.g. "China".
func NewGeoCodeService(geocoder Geocoder, cache StationCache, qualifier string) *GeoCodeService {
	return &GeoCodeService{geocoder: geocoder, cache: cache, qualifier: qualifier}
}

// Query returns the geocoding query sent for station.
func (s *GeoCodeService) Query(station string) string {
	if s.qualifier == "" {
		return station
	}
	return station + ", " + s.qualifier
}

// Resolve returns the coordinates of station. A cache hit makes no external
// call. A miss queries the geocoder once and, on a match, appends the row to
// the cache and saves the whole cache. Concurrent misses for one station
// share a single geocoder call. Failures never propagate; they are reported
// in the Resolution.
func (s *GeoCodeService) Resolve(ctx context.Context, station string) Resolution {
	if strings.TrimSpace(station) == "" {
		return Resolution{
			Station: station,
			Status:  StatusFailed,
			Err:     fmt.Errorf("service: station cannot be empty"),
		}
	}
	if res, ok := s.lookup(station); ok {
		return res
	}

	ch := s.misses.DoChan(station, func() (interface{}, error) {
		return s.resolveMiss(context.WithoutCancel(ctx), station), nil
	})
	select {
	case <-ctx.Done():
		return Resolution{
			Station: station,
			Status:  StatusFailed,
			Err:     fmt.Errorf("service: resolve %q cancelled: %w", station, ctx.Err()),
		}
	case r := <-ch:
		return r.Val.(Resolution)
	}
}

func (s *GeoCodeService) lookup(station string) (Resolution, bool) {
	coords, ok := s.cache.Lookup(station)
	if !ok {
		return Resolution{}, false
	}
	return Resolution{Station: station, Coordinates: &coords, Status: StatusHit, Persisted: true}, true
}

func (s *GeoCodeService) resolveMiss(ctx context.Context, station string) Resolution {
	// Another miss may have stored the station since the first lookup.
	if res, ok := s.lookup(station); ok {
		return res
	}

	res := Resolution{Station: station}
	coords, err := s.geocoder.Geocode(ctx, s.Query(station))
	if err != nil {
		res.Status = StatusFailed
		res.Err = fmt.Errorf("service: failed to geocode %q: %w", station, err)
		log.Warn().Err(err).Str("station", station).Msg("geocoding failed")
		return res
	}
	if coords == nil {
		res.Status = StatusNotFound
		log.Warn().Str("station", station).Msg("geocoder returned no result")
		return res
	}
	if !coords.Valid() {
		res.Status = StatusFailed
		res.Err = fmt.Errorf("service: geocoder returned invalid coordinates for %q", station)
		log.Warn().Str("station", station).Msg("geocoder returned invalid coordinates")
		return res
	}

	s.cache.Add(models.StationLocation{
		Station:   station,
		Latitude:  coords.Latitude,
		Longitude: coords.Longitude,
	})
	res.Coordinates = coords
	res.Status = StatusResolved

	if err := s.cache.Save(ctx); err != nil {
		res.Err = fmt.Errorf("service: failed to save cache: %w", err)
		log.Warn().Err(err).Str("station", station).Msg("cannot save geocoding cache")
		return res
	}
	res.Persisted = true
	return res
}

// ResolveAll resolves stations one at a time, in order.
func (s *GeoCodeService) ResolveAll(ctx context.Context, stations []string) []Resolution {
	out := make([]Resolution, 0, len(stations))
	for _, station := range stations {
		out = append(out, s.Resolve(ctx, station))
	}
	return out
}
