package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"airquality-dashboard/internal/cache"
	"airquality-dashboard/internal/config"
	"airquality-dashboard/internal/dataset"
	"airquality-dashboard/internal/geocoder"
	"airquality-dashboard/internal/handler"
	"airquality-dashboard/internal/repository"
	"airquality-dashboard/internal/service"

	_ "airquality-dashboard/docs"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// @title        Air Quality Dashboard API
// @version      1.0
// @description  Pollutant trends, station comparison, hourly profiles and AQI category maps.
// @BasePath     /
func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadConfig("./configs")
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load config")
	}
	if err := config.InitLogger(cfg.LogLevel, cfg.LogFormat); err != nil {
		log.Fatal().Err(err).Msg("cannot init logger")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Cache store
	store, closeStore, err := repository.OpenStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("cannot open cache store")
	}
	defer closeStore()

	stationCache := cache.NewStationCache(store)
	var notices []string
	if err := stationCache.Load(ctx); err != nil {
		log.Warn().Err(err).Msg("cannot load geocoding cache, starting empty")
		notices = append(notices, "geocoding cache could not be loaded; new coordinates are kept in memory only")
	} else {
		log.Info().Int("stations", stationCache.Len()).Msg("geocoding cache loaded")
	}

	// Initialize layers
	client := geocoder.NewClient(
		geocoder.WithBaseURL(cfg.GeocoderURL),
		geocoder.WithUserAgent(cfg.GeocoderUserAgent),
		geocoder.WithTimeout(cfg.GeocoderTimeout),
		geocoder.WithMinDelay(cfg.GeocoderMinDelay),
		geocoder.WithMaxRetries(cfg.GeocoderMaxRetries),
	)
	geoCodeService := service.NewGeoCodeService(client, stationCache, cfg.CountryQualifier)
	dashboardService := service.NewDashboardService(
		dataset.NewLoader(cfg.DataFile),
		geoCodeService,
		cfg.MapWindow,
		notices...,
	)

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := handler.NewRouter(
		handler.NewDashboardHandler(dashboardService),
		handler.NewGeoCodeHandler(geoCodeService),
	)

	srv := &http.Server{
		Addr:              cfg.ServerAddress,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.ServerAddress).Str("data", cfg.DataFile).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}
	log.Info().Msg("server stopped")
}
