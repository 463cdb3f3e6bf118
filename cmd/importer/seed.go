package main

import (
	"context"
	"fmt"
	"os"

	"airquality-dashboard/internal/cache"
	"airquality-dashboard/internal/config"
	"airquality-dashboard/internal/repository"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	seedFile   string
	seedDriver string
)

// seedResult counts what a seed run did with the input rows.
type seedResult struct {
	Read     int
	Added    int
	Existing int
	Invalid  int
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Merge station coordinates from a CSV file into the cache store",
	RunE: func(cmd *cobra.Command, _ []string) error {
		c := cfg
		if seedDriver != "" {
			c.CacheDriver = seedDriver
			if err := c.Validate(); err != nil {
				return err
			}
		}

		res, err := seed(cmd.Context(), c, seedFile)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Read %d rows: %d added, %d already cached, %d skipped (invalid coordinates)\n",
			res.Read, res.Added, res.Existing, res.Invalid)
		return nil
	},
}

// seed merges the station,latitude,longitude rows of file into the store
// selected by c. Stations already in the store keep their coordinates.
func seed(ctx context.Context, c config.Config, file string) (seedResult, error) {
	var res seedResult

	if _, err := os.Stat(file); err != nil {
		return res, fmt.Errorf("open %s: %w", file, err)
	}
	rows, err := repository.NewFileStore(file).Load(ctx)
	if err != nil {
		return res, fmt.Errorf("parse %s: %w", file, err)
	}
	res.Read = len(rows)

	store, closeStore, err := repository.OpenStore(ctx, c)
	if err != nil {
		return res, err
	}
	defer closeStore()

	stationCache := cache.NewStationCache(store)
	if err := stationCache.Load(ctx); err != nil {
		return res, err
	}

	for _, row := range rows {
		if !row.Coordinates().Valid() {
			res.Invalid++
			log.Warn().Str("station", row.Station).Msg("skipping row with invalid coordinates")
			continue
		}
		if stationCache.Add(row) {
			res.Added++
		} else {
			res.Existing++
		}
	}

	if res.Added > 0 {
		if err := stationCache.Save(ctx); err != nil {
			return res, err
		}
	}
	log.Info().
		Str("driver", c.CacheDriver).
		Int("added", res.Added).
		Int("cached", stationCache.Len()).
		Msg("seed complete")
	return res, nil
}

func init() {
	seedCmd.Flags().StringVar(&seedFile, "file", "", "path to a station,latitude,longitude CSV file (required)")
	seedCmd.Flags().StringVar(&seedDriver, "driver", "", "cache driver to seed: file, postgres or sqlite (defaults to CACHE_DRIVER)")
	_ = seedCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(seedCmd)
}
