package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"airquality-dashboard/internal/aqi"
	"airquality-dashboard/internal/dataset"
	"airquality-dashboard/internal/models"

	"github.com/rs/zerolog/log"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"golang.org/x/sync/singleflight"
)

// DefaultMapWindow is how far back from the latest record the map averages.
const DefaultMapWindow = 7 * 24 * time.Hour

// simpleMarkerSize is the marker size of a station at the mean concentration.
const simpleMarkerSize = 50

var (
	ErrUnknownStation = errors.New("service: unknown station")
	ErrNoPollutants   = errors.New("service: select at least one pollutant")
)

// DatasetSource interface for dependency injection
type DatasetSource interface {
	Get(ctx context.Context) (*dataset.Dataset, error)
}

// Resolver interface for dependency injection
type Resolver interface {
	ResolveAll(ctx context.Context, stations []string) []Resolution
}

// DashboardService builds the dashboard views from the measurement dataset
type DashboardService struct {
	data     DatasetSource
	resolver Resolver
	window   time.Duration
	notices  []string

	group singleflight.Group
	// encode is swapped in tests to force the simple-map fallback.
	encode func(*geojson.FeatureCollection) ([]byte, error)
}

// NewDashboardService creates a new dashboard service. notices are copied
// into the warnings of every map, e.g. a cache that failed to load.
func NewDashboardService(data DatasetSource, resolver Resolver, window time.Duration, notices ...string) *DashboardService {
	if window <= 0 {
		window = DefaultMapWindow
	}
	return &DashboardService{
		data:     data,
		resolver: resolver,
		window:   window,
		notices:  notices,
		encode:   (*geojson.FeatureCollection).MarshalJSON,
	}
}

func (s *DashboardService) dataset(ctx context.Context) (*dataset.Dataset, error) {
	ds, err := s.data.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: failed to load dataset: %w", err)
	}
	return ds, nil
}

// Stations returns the station names in dataset order.
func (s *DashboardService) Stations(ctx context.Context) ([]string, error) {
	ds, err := s.dataset(ctx)
	if err != nil {
		return nil, err
	}
	return ds.Stations(), nil
}

// Pollutants returns the pollutants present in the dataset with their units.
func (s *DashboardService) Pollutants(ctx context.Context) ([]models.PollutantInfo, error) {
	ds, err := s.dataset(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.PollutantInfo, 0, len(aqi.Pollutants()))
	for _, p := range ds.AvailablePollutants() {
		out = append(out, models.PollutantInfo{Pollutant: p, Unit: aqi.Unit(p)})
	}
	return out, nil
}

// Trend returns the monthly means of pollutants at station.
func (s *DashboardService) Trend(ctx context.Context, station string, pollutants []aqi.Pollutant) (*models.TrendView, error) {
	if len(pollutants) == 0 {
		return nil, ErrNoPollutants
	}
	for _, p := range pollutants {
		if _, err := aqi.Table(p); err != nil {
			return nil, fmt.Errorf("service: %w", err)
		}
	}

	ds, err := s.dataset(ctx)
	if err != nil {
		return nil, err
	}
	if !ds.HasStation(station) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStation, station)
	}

	return &models.TrendView{
		Station:    station,
		Pollutants: pollutants,
		Points:     ds.ForStation(station).MonthlyTrend(pollutants),
	}, nil
}

// Comparison averages every pollutant per station and flags the station with
// the highest total.
func (s *DashboardService) Comparison(ctx context.Context) (*models.ComparisonView, error) {
	ds, err := s.dataset(ctx)
	if err != nil {
		return nil, err
	}
	pollutants := aqi.Pollutants()
	stations, highest := ds.StationAverages(pollutants)
	return &models.ComparisonView{
		Pollutants: pollutants,
		Stations:   stations,
		Highest:    highest,
	}, nil
}

// Hourly returns the hour-of-day profile of pollutant over all stations.
func (s *DashboardService) Hourly(ctx context.Context, pollutant aqi.Pollutant) (*models.HourlyView, error) {
	if _, err := aqi.Table(pollutant); err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}
	ds, err := s.dataset(ctx)
	if err != nil {
		return nil, err
	}
	view := ds.HourlyProfile(pollutant)
	return &view, nil
}

// CategoryMap returns the per-station AQI category map of pollutant over the
// last window of data. When no category map can be built it returns a simple
// map instead; only a dataset failure is returned as an error. Concurrent
// calls for the same pollutant share one build.
func (s *DashboardService) CategoryMap(ctx context.Context, pollutant aqi.Pollutant) (*models.MapView, error) {
	if _, err := aqi.Table(pollutant); err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}

	ch := s.group.DoChan(string(pollutant), func() (interface{}, error) {
		return s.buildMap(context.WithoutCancel(ctx), pollutant)
	})
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("service: map request cancelled: %w", ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*models.MapView), nil
	}
}

func (s *DashboardService) buildMap(ctx context.Context, pollutant aqi.Pollutant) (*models.MapView, error) {
	ds, err := s.dataset(ctx)
	if err != nil {
		return nil, err
	}

	unit := aqi.Unit(pollutant)
	view := &models.MapView{
		Mode:      models.MapModeCategory,
		Pollutant: pollutant,
		Unit:      unit,
		Title:     fmt.Sprintf("Air quality category by %s (%s) per station", pollutant, unit),
		Warnings:  append([]string{}, s.notices...),
	}

	latest, ok := ds.Latest()
	if !ok {
		view.Warnings = append(view.Warnings, "no measurements available")
		return simpleMap(view, nil), nil
	}
	view.From, view.To = latest.Add(-s.window), latest

	// Every station is resolved, not only those reporting in the window, so
	// the cache is warm for stations that report later.
	resolved := make(map[string]Resolution)
	for _, res := range s.resolver.ResolveAll(ctx, ds.Stations()) {
		resolved[res.Station] = res
	}

	means := ds.Since(view.From).StationMeans(pollutant)
	points := make([]models.MapPoint, 0, len(means))
	for _, m := range means {
		res := resolved[m.Station]
		if res.OK() && !res.Persisted {
			view.Warnings = append(view.Warnings, fmt.Sprintf("could not save cached coordinates for %s", m.Station))
		}
		if !res.OK() || !res.Coordinates.Valid() {
			view.Warnings = append(view.Warnings, fmt.Sprintf("no coordinates for %s", m.Station))
			continue
		}
		points = append(points, models.MapPoint{
			Station:   m.Station,
			Latitude:  res.Coordinates.Latitude,
			Longitude: res.Coordinates.Longitude,
			Value:     models.Nullable(m.Mean),
		})
	}

	log.Info().
		Str("pollutant", string(pollutant)).
		Int("stations", len(means)).
		Int("located", len(points)).
		Msg("building category map")

	if len(points) == 0 {
		view.Warnings = append(view.Warnings, "no valid coordinates to visualise")
		return simpleMap(view, nil), nil
	}

	groups := make(map[aqi.Category][]models.MapPoint)
	fc := &geojson.FeatureCollection{Features: make([]*geojson.Feature, 0, len(points))}
	for i := range points {
		p := &points[i]
		cat, err := aqi.Categorize(pollutant, value(p.Value))
		if err != nil {
			return nil, fmt.Errorf("service: %w", err)
		}
		p.Category, p.Color = cat.Label, cat.Color
		groups[cat] = append(groups[cat], *p)

		fc.Features = append(fc.Features, &geojson.Feature{
			ID:       p.Station,
			Geometry: geom.NewPointFlat(geom.XY, []float64{p.Longitude, p.Latitude}),
			Properties: map[string]interface{}{
				"station":  p.Station,
				"value":    p.Value,
				"category": cat.Label,
				"color":    cat.Color,
			},
		})
	}

	for _, cat := range aqi.Categories() {
		if pts, ok := groups[cat]; ok {
			view.Groups = append(view.Groups, models.CategoryGroup{Category: cat, Points: pts})
		}
	}

	raw, err := s.encode(fc)
	if err != nil {
		log.Warn().Err(err).Str("pollutant", string(pollutant)).Msg("cannot encode category map, falling back to simple map")
		view.Warnings = append(view.Warnings, "could not build the category map, showing a simple map")
		return simpleMap(view, points), nil
	}
	view.GeoJSON = raw
	return view, nil
}

// simpleMap turns view into a plain marker map sized by value relative to
// the mean of all values.
func simpleMap(view *models.MapView, points []models.MapPoint) *models.MapView {
	view.Mode = models.MapModeSimple
	view.Groups = nil
	view.GeoJSON = nil

	var sum float64
	var n int
	for _, p := range points {
		if p.Value != nil {
			sum += *p.Value
			n++
		}
	}
	avg := math.NaN()
	if n > 0 {
		avg = sum / float64(n)
	}

	view.Points = make([]models.MapPoint, 0, len(points))
	for _, p := range points {
		p.Category, p.Color = "", ""
		p.Size = simpleMarkerSize
		if p.Value != nil && avg > 0 {
			p.Size = *p.Value / avg * simpleMarkerSize
		}
		view.Points = append(view.Points, p)
	}
	if len(view.Points) == 0 {
		view.Warnings = append(view.Warnings, "no stations with valid coordinates to display")
	}
	return view
}

func value(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}
