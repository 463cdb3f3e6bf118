package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"airquality-dashboard/internal/cache"
	"airquality-dashboard/internal/dataset"
	"airquality-dashboard/internal/geocoder"
	"airquality-dashboard/internal/repository"
	"airquality-dashboard/internal/service"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Resolve every dataset station through the geocoder and cache the results",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		ds, err := dataset.Load(ctx, cfg.DataFile)
		if err != nil {
			return fmt.Errorf("load dataset: %w", err)
		}

		store, closeStore, err := repository.OpenStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer closeStore()

		stationCache := loadStationCache(ctx, store)

		client := geocoder.NewClient(
			geocoder.WithBaseURL(cfg.GeocoderURL),
			geocoder.WithUserAgent(cfg.GeocoderUserAgent),
			geocoder.WithTimeout(cfg.GeocoderTimeout),
			geocoder.WithMinDelay(cfg.GeocoderMinDelay),
			geocoder.WithMaxRetries(cfg.GeocoderMaxRetries),
		)
		resolver := service.NewGeoCodeService(client, stationCache, cfg.CountryQualifier)

		return resolveStations(ctx, resolver, ds.Stations(), cmd.OutOrStdout())
	},
}

// loadStationCache loads the cache from store. A load failure is logged and
// leaves the cache in memory only, so the stored rows are never rewritten.
func loadStationCache(ctx context.Context, store cache.Store) *cache.StationCache {
	stationCache := cache.NewStationCache(store)
	if err := stationCache.Load(ctx); err != nil {
		log.Warn().Err(err).Msg("cannot load geocoding cache, results will not be saved")
		return stationCache
	}
	log.Info().Int("stations", stationCache.Len()).Msg("geocoding cache loaded")
	return stationCache
}

// stationResolver interface for dependency injection
type stationResolver interface {
	ResolveAll(ctx context.Context, stations []string) []service.Resolution
}

// resolveStations resolves stations in order and writes one table row each.
func resolveStations(ctx context.Context, r stationResolver, stations []string, out io.Writer) error {
	results := r.ResolveAll(ctx, stations)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STATION\tSTATUS\tLATITUDE\tLONGITUDE\tSAVED")
	var ok int
	for _, res := range results {
		lat, lon := "-", "-"
		if res.OK() {
			ok++
			lat = fmt.Sprintf("%.6f", res.Coordinates.Latitude)
			lon = fmt.Sprintf("%.6f", res.Coordinates.Longitude)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%t\n", res.Station, res.Status, lat, lon, res.Persisted)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out, "%d of %d stations have coordinates\n", ok, len(results))
	return nil
}

func init() {
	rootCmd.AddCommand(resolveCmd)
}
