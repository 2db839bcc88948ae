package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultCities is the static list tracked when CITIES is not set.
var DefaultCities = []string{
	"New York, USA",
	"London, UK",
	"Tokyo, Japan",
	"Sydney, Australia",
	"Paris, France",
	"Mumbai, India",
	"Dubai, UAE",
	"Singapore",
	"San Francisco, USA",
	"Toronto, Canada",
}

// AppConfig holds runtime configuration for the pipeline.
type AppConfig struct {
	OpenWeatherAPIKey string

	// Cities to track each run.
	Cities []string

	// Directories for the file-mediated hand-off between stages.
	RawDataDir       string
	ProcessedDataDir string

	// SQLite database file.
	DatabasePath string

	// FetchInterval controls how often the full pipeline runs.
	FetchInterval time.Duration

	// RateLimitDelay is the courtesy pause between successive upstream calls.
	RateLimitDelay time.Duration

	HTTPTimeout time.Duration

	// Geocoder backend: "nominatim" (default) or "google".
	Geocoder             string
	GoogleGeocoderAPIKey string
	NominatimURL         string

	Port string
}

// Load reads configuration from environment with sensible defaults.
// A missing OpenWeather API key is a fatal configuration error.
func Load() (*AppConfig, error) {
	_ = godotenv.Load()

	cfg := &AppConfig{}

	cfg.OpenWeatherAPIKey = strings.TrimSpace(os.Getenv("OPENWEATHER_API_KEY"))
	if cfg.OpenWeatherAPIKey == "" {
		return nil, errors.New("OPENWEATHER_API_KEY is required")
	}

	cfg.Cities = DefaultCities
	if v := os.Getenv("CITIES"); v != "" {
		var cities []string
		for _, c := range strings.Split(v, ",") {
			if c = strings.TrimSpace(c); c != "" {
				cities = append(cities, c)
			}
		}
		if len(cities) == 0 {
			return nil, errors.New("CITIES is set but contains no city names")
		}
		cfg.Cities = cities
	}

	cfg.RawDataDir = getenvDefault("RAW_DATA_DIR", "data/raw")
	cfg.ProcessedDataDir = getenvDefault("PROCESSED_DATA_DIR", "data/processed")
	cfg.DatabasePath = getenvDefault("DATABASE_PATH", "data/weather_data.db")

	var err error
	if cfg.FetchInterval, err = getenvDuration("FETCH_INTERVAL", time.Hour); err != nil {
		return nil, err
	}
	if cfg.RateLimitDelay, err = getenvDuration("RATE_LIMIT_DELAY", time.Second); err != nil {
		return nil, err
	}
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}

	cfg.Geocoder = getenvDefault("GEOCODER", "nominatim")
	cfg.GoogleGeocoderAPIKey = os.Getenv("GOOGLE_GEOCODER_API_KEY")
	cfg.NominatimURL = os.Getenv("NOMINATIM_URL")
	if cfg.Geocoder == "google" && cfg.GoogleGeocoderAPIKey == "" {
		return nil, errors.New("GEOCODER=google requires GOOGLE_GEOCODER_API_KEY")
	}

	cfg.Port = getenvDefault("PORT", "8080")

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
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
