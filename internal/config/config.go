package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/i474232898/weather-assistant/internal/units"
	"github.com/i474232898/weather-assistant/internal/weather"
	"github.com/i474232898/weather-assistant/internal/weather/providers"
)

var validate = validator.New()

type AppConfig struct {
	Port        string
	HTTPTimeout time.Duration `validate:"gt=0"`

	ForecastURL          string `validate:"required,url"`
	GeocodingURL         string `validate:"required,url"`
	GoogleGeocoderAPIKey string

	// DefaultLocation is selected at startup.
	DefaultLocation weather.NamedLocation
	DefaultUnit     units.System `validate:"oneof=metric imperial"`

	// RefreshInterval controls how often the active location is refetched
	// and idle chat sessions are pruned.
	RefreshInterval  time.Duration `validate:"gt=0"`
	ChatReplyTimeout time.Duration `validate:"gt=0"`

	// Chat session retention.
	SessionMaxAge   time.Duration // idle time before a session is dropped (0 = unlimited)
	SessionMaxCount int           // max live sessions (0 = unlimited)

	SearchResultCount int `validate:"min=1,max=10"`
}

// fileConfig is the optional YAML overlay named by CONFIG_FILE.
type fileConfig struct {
	DefaultLocation *struct {
		Name        string    `yaml:"name"`
		Country     string    `yaml:"country"`
		Coordinates []float64 `yaml:"coordinates"`
	} `yaml:"default_location"`
	Unit              string `yaml:"unit"`
	SearchResultCount int    `yaml:"search_result_count"`
}

// Load reads configuration from the YAML overlay and environment with
// sensible defaults. Environment variables take precedence over the file.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}

	cfg.Port = getenvDefault("PORT", cfg.Port)
	cfg.ForecastURL = getenvDefault("OPENMETEO_FORECAST_URL", cfg.ForecastURL)
	cfg.GeocodingURL = getenvDefault("OPENMETEO_GEOCODING_URL", cfg.GeocodingURL)
	cfg.GoogleGeocoderAPIKey = os.Getenv("GOOGLE_GEOCODER_API_KEY")

	var err error
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", cfg.HTTPTimeout); err != nil {
		return nil, err
	}
	if cfg.RefreshInterval, err = getenvDuration("REFRESH_INTERVAL", cfg.RefreshInterval); err != nil {
		return nil, err
	}
	if cfg.ChatReplyTimeout, err = getenvDuration("CHAT_REPLY_TIMEOUT", cfg.ChatReplyTimeout); err != nil {
		return nil, err
	}
	if cfg.SessionMaxAge, err = getenvDuration("SESSION_MAX_AGE", cfg.SessionMaxAge); err != nil {
		return nil, err
	}
	cfg.SessionMaxCount = getenvInt("SESSION_MAX_COUNT", cfg.SessionMaxCount)
	cfg.SearchResultCount = getenvInt("SEARCH_RESULT_COUNT", cfg.SearchResultCount)

	if v := os.Getenv("DEFAULT_UNIT"); v != "" {
		unit, err := units.ParseSystem(v)
		if err != nil {
			return nil, fmt.Errorf("invalid DEFAULT_UNIT: %w", err)
		}
		cfg.DefaultUnit = unit
	}

	loc := &cfg.DefaultLocation
	loc.Name = getenvDefault("DEFAULT_LOCATION_NAME", loc.Name)
	loc.Country = getenvDefault("DEFAULT_LOCATION_COUNTRY", loc.Country)
	if loc.Latitude, err = getenvFloat("DEFAULT_LOCATION_LAT", loc.Latitude); err != nil {
		return nil, err
	}
	if loc.Longitude, err = getenvFloat("DEFAULT_LOCATION_LON", loc.Longitude); err != nil {
		return nil, err
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func defaults() *AppConfig {
	return &AppConfig{
		Port:         "8080",
		HTTPTimeout:  10 * time.Second,
		ForecastURL:  providers.DefaultForecastURL,
		GeocodingURL: providers.DefaultGeocodingURL,
		DefaultLocation: weather.NamedLocation{
			Name:        "Berlin",
			Country:     "Germany",
			Coordinates: weather.Coordinates{Latitude: 52.52, Longitude: 13.41},
		},
		DefaultUnit:       units.Metric,
		RefreshInterval:   15 * time.Minute,
		ChatReplyTimeout:  20 * time.Second,
		SessionMaxAge:     2 * time.Hour,
		SessionMaxCount:   1000,
		SearchResultCount: 5,
	}
}

func (cfg *AppConfig) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	if fc.DefaultLocation != nil {
		if len(fc.DefaultLocation.Coordinates) != 2 {
			return fmt.Errorf("config file %s: default_location.coordinates must be [lat, lon]", path)
		}
		cfg.DefaultLocation = weather.NamedLocation{
			Name:    fc.DefaultLocation.Name,
			Country: fc.DefaultLocation.Country,
			Coordinates: weather.Coordinates{
				Latitude:  fc.DefaultLocation.Coordinates[0],
				Longitude: fc.DefaultLocation.Coordinates[1],
			},
		}
	}
	if fc.Unit != "" {
		unit, err := units.ParseSystem(fc.Unit)
		if err != nil {
			return fmt.Errorf("config file %s: %w", path, err)
		}
		cfg.DefaultUnit = unit
	}
	if fc.SearchResultCount > 0 {
		cfg.SearchResultCount = fc.SearchResultCount
	}
	log.Printf("INFO: loaded config overlay from %s", path)
	return nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getenvFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}
