package service

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"airquality-dashboard/internal/cache"
	"airquality-dashboard/internal/models"
	"airquality-dashboard/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockGeocoder is a mock implementation of the Geocoder interface
type MockGeocoder struct {
	mock.Mock
}

// Geocode implements Geocoder.
func (m *MockGeocoder) Geocode(ctx context.Context, query string) (*models.Coordinates, error) {
	args := m.Called(ctx, query)
	coords, _ := args.Get(0).(*models.Coordinates)
	return coords, args.Error(1)
}

// failingStore loads nothing and refuses every save
type failingStore struct{}

func (failingStore) Load(context.Context) ([]models.StationLocation, error) { return nil, nil }
func (failingStore) Save(context.Context, []models.StationLocation) error   { return assert.AnError }

// slowGeocoder counts calls and answers every query after a short delay
type slowGeocoder struct {
	calls atomic.Int32
	delay time.Duration
}

func (g *slowGeocoder) Geocode(ctx context.Context, _ string) (*models.Coordinates, error) {
	g.calls.Add(1)
	time.Sleep(g.delay)
	return &models.Coordinates{Latitude: 39.95, Longitude: 116.3}, nil
}

func newFileCache(t *testing.T, rows ...models.StationLocation) (*cache.StationCache, string) {
	path := filepath.Join(t.TempDir(), "geocoding_cache.csv")
	store := repository.NewFileStore(path)
	if len(rows) > 0 {
		require.NoError(t, store.Save(context.Background(), rows))
	}
	c := cache.NewStationCache(store)
	require.NoError(t, c.Load(context.Background()))
	return c, path
}

func TestGeoCodeService_Resolve(t *testing.T) {
	tests := []struct {
		name            string
		station         string
		cached          []models.StationLocation
		mockCoords      *models.Coordinates
		mockError       error
		expectCall      bool
		expectedStatus  ResolveStatus
		expectedCoords  *models.Coordinates
		expectPersisted bool
		expectError     bool
	}{
		{
			name:           "empty station",
			station:        "",
			expectedStatus: StatusFailed,
			expectError:    true,
		},
		{
			name:            "cache hit",
			station:         "Dongsi",
			cached:          []models.StationLocation{{Station: "Dongsi", Latitude: 39.929, Longitude: 116.417}},
			expectedStatus:  StatusHit,
			expectedCoords:  &models.Coordinates{Latitude: 39.929, Longitude: 116.417},
			expectPersisted: true,
		},
		{
			name:            "cache miss resolved",
			station:         "Wanliu",
			mockCoords:      &models.Coordinates{Latitude: 39.987, Longitude: 116.287},
			expectCall:      true,
			expectedStatus:  StatusResolved,
			expectedCoords:  &models.Coordinates{Latitude: 39.987, Longitude: 116.287},
			expectPersisted: true,
		},
		{
			name:           "no result",
			station:        "Atlantis",
			mockCoords:     nil,
			expectCall:     true,
			expectedStatus: StatusNotFound,
		},
		{
			name:           "geocoder error",
			station:        "Wanliu",
			mockError:      assert.AnError,
			expectCall:     true,
			expectedStatus: StatusFailed,
			expectError:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Setup
			mockGeo := new(MockGeocoder)
			c, _ := newFileCache(t, tt.cached...)
			service := NewGeoCodeService(mockGeo, c, "China")

			if tt.expectCall {
				mockGeo.On("Geocode", mock.Anything, tt.station+", China").Return(tt.mockCoords, tt.mockError).Once()
			}

			// Execute
			res := service.Resolve(context.Background(), tt.station)

			// Assert
			assert.Equal(t, tt.station, res.Station)
			assert.Equal(t, tt.expectedStatus, res.Status)
			assert.Equal(t, tt.expectedCoords, res.Coordinates)
			assert.Equal(t, tt.expectPersisted, res.Persisted)
			if tt.expectError {
				assert.Error(t, res.Err)
			} else {
				assert.NoError(t, res.Err)
			}

			mockGeo.AssertExpectations(t)
			if !tt.expectCall {
				mockGeo.AssertNotCalled(t, "Geocode", mock.Anything, mock.Anything)
			}
		})
	}
}

func TestGeoCodeService_CacheHitNeverCallsGeocoder(t *testing.T) {
	rows := []models.StationLocation{
		{Station: "Aotizhongxin", Latitude: 39.982, Longitude: 116.397},
		{Station: "Changping", Latitude: 40.217, Longitude: 116.230},
		{Station: "Dingling", Latitude: 40.292, Longitude: 116.220},
	}
	mockGeo := new(MockGeocoder)
	c, _ := newFileCache(t, rows...)
	service := NewGeoCodeService(mockGeo, c, "China")

	for i := 0; i < 3; i++ {
		for _, r := range rows {
			res := service.Resolve(context.Background(), r.Station)
			require.True(t, res.OK())
			assert.Equal(t, StatusHit, res.Status)
		}
	}
	mockGeo.AssertNotCalled(t, "Geocode", mock.Anything, mock.Anything)
}

func TestGeoCodeService_MissIsPersistedAndBecomesHit(t *testing.T) {
	mockGeo := new(MockGeocoder)
	mockGeo.On("Geocode", mock.Anything, "Huairou, China").
		Return(&models.Coordinates{Latitude: 40.328, Longitude: 116.628}, nil).Once()

	c, path := newFileCache(t)
	service := NewGeoCodeService(mockGeo, c, "China")

	first := service.Resolve(context.Background(), "Huairou")
	require.Equal(t, StatusResolved, first.Status)
	second := service.Resolve(context.Background(), "Huairou")
	assert.Equal(t, StatusHit, second.Status)
	assert.Equal(t, first.Coordinates, second.Coordinates)
	mockGeo.AssertNumberOfCalls(t, "Geocode", 1)

	// A fresh cache over the same file also hits.
	reloaded := cache.NewStationCache(repository.NewFileStore(path))
	require.NoError(t, reloaded.Load(context.Background()))
	got, ok := reloaded.Lookup("Huairou")
	require.True(t, ok)
	assert.Equal(t, models.Coordinates{Latitude: 40.328, Longitude: 116.628}, got)
}

func TestGeoCodeService_ResolveAll(t *testing.T) {
	mockGeo := new(MockGeocoder)
	mockGeo.On("Geocode", mock.Anything, "B, China").
		Return(&models.Coordinates{Latitude: 30.0, Longitude: 40.0}, nil).Once()

	c, path := newFileCache(t, models.StationLocation{Station: "A", Latitude: 10.0, Longitude: 20.0})
	service := NewGeoCodeService(mockGeo, c, "China")

	results := service.ResolveAll(context.Background(), []string{"A", "B"})

	require.Len(t, results, 2)
	assert.Equal(t, &models.Coordinates{Latitude: 10.0, Longitude: 20.0}, results[0].Coordinates)
	assert.Equal(t, &models.Coordinates{Latitude: 30.0, Longitude: 40.0}, results[1].Coordinates)
	mockGeo.AssertExpectations(t)

	rows, err := repository.NewFileStore(path).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []models.StationLocation{
		{Station: "A", Latitude: 10.0, Longitude: 20.0},
		{Station: "B", Latitude: 30.0, Longitude: 40.0},
	}, rows)
}

func TestGeoCodeService_ResolveAllContinuesPastFailures(t *testing.T) {
	mockGeo := new(MockGeocoder)
	mockGeo.On("Geocode", mock.Anything, "Broken, China").Return(nil, assert.AnError).Once()
	mockGeo.On("Geocode", mock.Anything, "Missing, China").Return(nil, nil).Once()
	mockGeo.On("Geocode", mock.Anything, "Fine, China").
		Return(&models.Coordinates{Latitude: 1, Longitude: 2}, nil).Once()

	c, _ := newFileCache(t)
	service := NewGeoCodeService(mockGeo, c, "China")

	results := service.ResolveAll(context.Background(), []string{"Broken", "Missing", "Fine"})

	require.Len(t, results, 3)
	assert.Equal(t, StatusFailed, results[0].Status)
	assert.Nil(t, results[0].Coordinates)
	assert.Equal(t, StatusNotFound, results[1].Status)
	assert.Nil(t, results[1].Coordinates)
	assert.Equal(t, StatusResolved, results[2].Status)
	assert.Equal(t, 1, c.Len())
	mockGeo.AssertExpectations(t)
}

func TestGeoCodeService_SaveFailureKeepsInMemoryRow(t *testing.T) {
	mockGeo := new(MockGeocoder)
	mockGeo.On("Geocode", mock.Anything, "Gucheng, China").
		Return(&models.Coordinates{Latitude: 39.914, Longitude: 116.184}, nil).Once()

	c := cache.NewStationCache(failingStore{})
	service := NewGeoCodeService(mockGeo, c, "China")

	res := service.Resolve(context.Background(), "Gucheng")
	assert.Equal(t, StatusResolved, res.Status)
	assert.True(t, res.OK())
	assert.False(t, res.Persisted)
	assert.ErrorIs(t, res.Err, assert.AnError)

	again := service.Resolve(context.Background(), "Gucheng")
	assert.Equal(t, StatusHit, again.Status)
	mockGeo.AssertNumberOfCalls(t, "Geocode", 1)
}

func TestGeoCodeService_InvalidCoordinatesAreNotCached(t *testing.T) {
	mockGeo := new(MockGeocoder)
	c, path := newFileCache(t)
	service := NewGeoCodeService(mockGeo, c, "")

	mockGeo.On("Geocode", mock.Anything, "Shunyi").
		Return(&models.Coordinates{Latitude: math.Inf(1), Longitude: 1}, nil).Once()

	res := service.Resolve(context.Background(), "Shunyi")
	assert.Equal(t, StatusFailed, res.Status)
	assert.False(t, res.OK())
	assert.Equal(t, 0, c.Len())

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestGeoCodeService_Query(t *testing.T) {
	assert.Equal(t, "Tiantan, China", NewGeoCodeService(nil, nil, "China").Query("Tiantan"))
	assert.Equal(t, "Tiantan", NewGeoCodeService(nil, nil, "").Query("Tiantan"))
}

func TestGeoCodeService_FailedLoadNeverOverwritesStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "geocoding_cache.csv")
	original := []byte("station,latitude,longitude\nA,10,20\nB,,30\nC,5,6\n")
	require.NoError(t, os.WriteFile(path, original, 0o644))

	c := cache.NewStationCache(repository.NewFileStore(path))
	require.Error(t, c.Load(context.Background()))

	mockGeo := new(MockGeocoder)
	mockGeo.On("Geocode", mock.Anything, "D, China").
		Return(&models.Coordinates{Latitude: 1, Longitude: 2}, nil).Once()
	service := NewGeoCodeService(mockGeo, c, "China")

	res := service.Resolve(context.Background(), "D")
	assert.Equal(t, StatusResolved, res.Status)
	assert.Equal(t, &models.Coordinates{Latitude: 1, Longitude: 2}, res.Coordinates)
	assert.False(t, res.Persisted)
	assert.ErrorIs(t, res.Err, cache.ErrInMemoryOnly)

	again := service.Resolve(context.Background(), "D")
	assert.Equal(t, StatusHit, again.Status)
	mockGeo.AssertNumberOfCalls(t, "Geocode", 1)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, original, got)
}

func TestGeoCodeService_ConcurrentMissesShareOneCall(t *testing.T) {
	geo := &slowGeocoder{delay: 50 * time.Millisecond}
	c, path := newFileCache(t)
	service := NewGeoCodeService(geo, c, "China")

	const callers = 8
	results := make([]Resolution, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = service.Resolve(context.Background(), "Wanshouxigong")
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), geo.calls.Load())
	for _, res := range results {
		require.True(t, res.OK())
		assert.Equal(t, &models.Coordinates{Latitude: 39.95, Longitude: 116.3}, res.Coordinates)
	}

	rows, err := repository.NewFileStore(path).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []models.StationLocation{
		{Station: "Wanshouxigong", Latitude: 39.95, Longitude: 116.3},
	}, rows)
}

func TestGeoCodeService_CancelledCallerStopsWaiting(t *testing.T) {
	geo := &slowGeocoder{delay: 200 * time.Millisecond}
	c, _ := newFileCache(t)
	service := NewGeoCodeService(geo, c, "")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	res := service.Resolve(ctx, "Dongsi")
	assert.Equal(t, StatusFailed, res.Status)
	assert.ErrorIs(t, res.Err, context.DeadlineExceeded)

	// The shared lookup still completes and lands in the cache.
	assert.Eventually(t, func() bool {
		_, ok := c.Lookup("Dongsi")
		return ok
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, int32(1), geo.calls.Load())
}
