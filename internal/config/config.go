package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Cache drivers
const (
	DriverFile     = "file"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config stores all configuration of the application.
// The values are read by viper from a config file or environment variable.
type Config struct {
	ServerAddress string `mapstructure:"SERVER_ADDRESS"`
	DataFile      string `mapstructure:"DATA_FILE"`

	CacheDriver string `mapstructure:"CACHE_DRIVER"`
	CacheFile   string `mapstructure:"CACHE_FILE"`
	DBSource    string `mapstructure:"DB_SOURCE"`
	SQLitePath  string `mapstructure:"SQLITE_PATH"`

	GeocoderURL        string        `mapstructure:"GEOCODER_URL"`
	GeocoderUserAgent  string        `mapstructure:"GEOCODER_USER_AGENT"`
	GeocoderTimeout    time.Duration `mapstructure:"GEOCODER_TIMEOUT"`
	GeocoderMinDelay   time.Duration `mapstructure:"GEOCODER_MIN_DELAY"`
	GeocoderMaxRetries int           `mapstructure:"GEOCODER_MAX_RETRIES"`
	CountryQualifier   string        `mapstructure:"COUNTRY_QUALIFIER"`

	MapWindow time.Duration `mapstructure:"MAP_WINDOW"`

	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`
}

// LoadConfig reads configuration from app.env under path, if present, and
// from environment variables, which take precedence.
func LoadConfig(path string) (config Config, err error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("app")
	v.SetConfigType("env")

	v.AutomaticEnv()

	v.SetDefault("SERVER_ADDRESS", "0.0.0.0:8080")
	v.SetDefault("DATA_FILE", "data/all_data.csv")
	v.SetDefault("CACHE_DRIVER", DriverFile)
	v.SetDefault("CACHE_FILE", "geocoding_cache.csv")
	v.SetDefault("DB_SOURCE", "")
	v.SetDefault("SQLITE_PATH", "geocoding_cache.db")
	v.SetDefault("GEOCODER_URL", "https://nominatim.openstreetmap.org")
	v.SetDefault("GEOCODER_USER_AGENT", "airquality-dashboard/geo_lookup")
	v.SetDefault("GEOCODER_TIMEOUT", 10*time.Second)
	v.SetDefault("GEOCODER_MIN_DELAY", time.Second)
	v.SetDefault("GEOCODER_MAX_RETRIES", 5)
	v.SetDefault("COUNTRY_QUALIFIER", "China")
	v.SetDefault("MAP_WINDOW", 7*24*time.Hour)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	if err = v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return config, fmt.Errorf("config: read file: %w", err)
		}
	}

	if err = v.Unmarshal(&config); err != nil {
		return config, fmt.Errorf("config: unmarshal: %w", err)
	}
	config.CacheDriver = strings.ToLower(config.CacheDriver)

	return config, config.Validate()
}

// Validate checks the values that have a fixed set of choices.
func (c Config) Validate() error {
	switch c.CacheDriver {
	case DriverFile, DriverSQLite:
	case DriverPostgres:
		if c.DBSource == "" {
			return fmt.Errorf("config: DB_SOURCE is required for the postgres cache driver")
		}
	default:
		return fmt.Errorf("config: unknown CACHE_DRIVER %q", c.CacheDriver)
	}
	if c.GeocoderMaxRetries < 0 {
		return fmt.Errorf("config: GEOCODER_MAX_RETRIES must not be negative")
	}
	return nil
}

// InitLogger configures the global zerolog logger.
func InitLogger(level, format string) error {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return fmt.Errorf("config: parse log level: %w", err)
	}
	zerolog.SetGlobalLevel(lvl)
	zerolog.TimeFieldFormat = time.RFC3339

	if format == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	} else {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}
	return nil
}
