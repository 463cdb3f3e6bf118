package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"airquality-dashboard/internal/config"
	"airquality-dashboard/internal/models"
	"airquality-dashboard/internal/repository"
	"airquality-dashboard/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommands_Metadata(t *testing.T) {
	assert.Equal(t, "seed", seedCmd.Use)
	assert.NotNil(t, seedCmd.Flags().Lookup("file"))
	assert.NotNil(t, seedCmd.Flags().Lookup("driver"))
	assert.Equal(t, "resolve", resolveCmd.Use)
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("config"))
}

func TestSeed(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "stations.csv")
	require.NoError(t, os.WriteFile(input, []byte(
		"station,latitude,longitude\n"+
			"Aotizhongxin,39.982,116.397\n"+
			"Changping,NaN,116.230\n"+
			"Dongsi,39.929,116.417\n"), 0o644))

	cachePath := filepath.Join(dir, "cache.csv")
	existing := repository.NewFileStore(cachePath)
	require.NoError(t, existing.Save(context.Background(), []models.StationLocation{
		{Station: "Dongsi", Latitude: 1, Longitude: 2},
	}))

	c := config.Config{CacheDriver: config.DriverFile, CacheFile: cachePath}
	res, err := seed(context.Background(), c, input)
	require.NoError(t, err)

	assert.Equal(t, seedResult{Read: 3, Added: 1, Existing: 1, Invalid: 1}, res)

	rows, err := existing.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []models.StationLocation{
		{Station: "Dongsi", Latitude: 1, Longitude: 2},
		{Station: "Aotizhongxin", Latitude: 39.982, Longitude: 116.397},
	}, rows)
}

func TestSeed_SQLite(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "stations.csv")
	require.NoError(t, os.WriteFile(input, []byte("station,latitude,longitude\nWanliu,39.987,116.287\n"), 0o644))

	c := config.Config{CacheDriver: config.DriverSQLite, SQLitePath: filepath.Join(dir, "cache.db")}
	res, err := seed(context.Background(), c, input)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Added)

	// Seeding twice adds nothing.
	res, err = seed(context.Background(), c, input)
	require.NoError(t, err)
	assert.Equal(t, seedResult{Read: 1, Existing: 1}, res)
}

func TestSeed_MissingFile(t *testing.T) {
	c := config.Config{CacheDriver: config.DriverFile, CacheFile: filepath.Join(t.TempDir(), "cache.csv")}
	_, err := seed(context.Background(), c, filepath.Join(t.TempDir(), "nope.csv"))
	assert.Error(t, err)
}

type fixedResolver []service.Resolution

func (f fixedResolver) ResolveAll(context.Context, []string) []service.Resolution {
	return f
}

func TestResolveStations(t *testing.T) {
	var out bytes.Buffer
	r := fixedResolver{
		{Station: "Aotizhongxin", Coordinates: &models.Coordinates{Latitude: 39.982, Longitude: 116.397}, Status: service.StatusHit, Persisted: true},
		{Station: "Atlantis", Status: service.StatusNotFound},
	}

	require.NoError(t, resolveStations(context.Background(), r, []string{"Aotizhongxin", "Atlantis"}, &out))

	got := out.String()
	assert.Contains(t, got, "STATION")
	assert.Contains(t, got, "39.982000")
	assert.Contains(t, got, "not_found")
	assert.Contains(t, got, "1 of 2 stations have coordinates")
}

type fixedGeocoder models.Coordinates

func (g fixedGeocoder) Geocode(context.Context, string) (*models.Coordinates, error) {
	c := models.Coordinates(g)
	return &c, nil
}

func TestResolve_UnreadableCacheStillPrintsTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "geocoding_cache.csv")
	original := []byte("station,latitude,longitude\nA,10,20\nB,,30\n")
	require.NoError(t, os.WriteFile(path, original, 0o644))

	stationCache := loadStationCache(context.Background(), repository.NewFileStore(path))
	require.NotNil(t, stationCache)
	assert.False(t, stationCache.Persistent())

	resolver := service.NewGeoCodeService(fixedGeocoder{Latitude: 40.29, Longitude: 116.22}, stationCache, "China")

	var out bytes.Buffer
	require.NoError(t, resolveStations(context.Background(), resolver, []string{"Dingling"}, &out))
	assert.Contains(t, out.String(), "40.290000")
	assert.Contains(t, out.String(), "1 of 1 stations have coordinates")

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, original, got)
}
