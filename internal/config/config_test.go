package config

import (
	"testing"
	"time"
)

func TestLoadRequiresAPIKey(t *testing.T) {
	t.Setenv("OPENWEATHER_API_KEY", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected an error when OPENWEATHER_API_KEY is missing")
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("OPENWEATHER_API_KEY", "test-key")
	t.Setenv("CITIES", "")
	t.Setenv("FETCH_INTERVAL", "")
	t.Setenv("GEOCODER", "")
	t.Setenv("GOOGLE_GEOCODER_API_KEY", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(cfg.Cities) != len(DefaultCities) {
		t.Errorf("cities = %d entries, want the default list (%d)", len(cfg.Cities), len(DefaultCities))
	}
	if cfg.FetchInterval != time.Hour {
		t.Errorf("fetch interval = %v, want 1h", cfg.FetchInterval)
	}
	if cfg.Geocoder != "nominatim" {
		t.Errorf("geocoder = %q, want nominatim", cfg.Geocoder)
	}
	if cfg.RawDataDir == "" || cfg.ProcessedDataDir == "" || cfg.DatabasePath == "" {
		t.Error("data paths must have defaults")
	}
}

func TestLoadCustomCities(t *testing.T) {
	t.Setenv("OPENWEATHER_API_KEY", "test-key")
	t.Setenv("CITIES", "Berlin Germany,Madrid Spain, ,Lisbon Portugal")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	want := []string{"Berlin Germany", "Madrid Spain", "Lisbon Portugal"}
	if len(cfg.Cities) != len(want) {
		t.Fatalf("cities = %v, want %v", cfg.Cities, want)
	}
	for i := range want {
		if cfg.Cities[i] != want[i] {
			t.Fatalf("cities = %v, want %v", cfg.Cities, want)
		}
	}
}

func TestGoogleGeocoderRequiresKey(t *testing.T) {
	t.Setenv("OPENWEATHER_API_KEY", "test-key")
	t.Setenv("GEOCODER", "google")
	t.Setenv("GOOGLE_GEOCODER_API_KEY", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected an error for GEOCODER=google without a key")
	}
}
