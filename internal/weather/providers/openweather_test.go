package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestCurrentWeatherRequestShape(t *testing.T) {
	var gotQuery map[string]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/weather" {
			t.Errorf("path = %q, want /weather", r.URL.Path)
		}
		gotQuery = map[string]string{
			"appid": r.URL.Query().Get("appid"),
			"units": r.URL.Query().Get("units"),
			"lat":   r.URL.Query().Get("lat"),
			"lon":   r.URL.Query().Get("lon"),
		}
		w.Write([]byte(`{"main":{"temp":10}}`))
	}))
	defer srv.Close()

	c := NewOpenWeatherClient(srv.Client(), "test-key", srv.URL)

	payload, err := c.CurrentWeather(context.Background(), 35.68, 139.69)
	if err != nil {
		t.Fatalf("CurrentWeather failed: %v", err)
	}
	if !json.Valid(payload) {
		t.Error("payload is not valid JSON")
	}

	if gotQuery["appid"] != "test-key" {
		t.Errorf("appid = %q, want test-key", gotQuery["appid"])
	}
	if gotQuery["units"] != "metric" {
		t.Errorf("units = %q, want metric", gotQuery["units"])
	}
	if gotQuery["lat"] == "" || gotQuery["lon"] == "" {
		t.Error("lat/lon query parameters missing")
	}
}

func TestAirPollutionOmitsUnits(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/air_pollution" {
			t.Errorf("path = %q, want /air_pollution", r.URL.Path)
		}
		if r.URL.Query().Has("units") {
			t.Error("air_pollution request should not carry a units parameter")
		}
		w.Write([]byte(`{"list":[{"components":{"co":0.3}}]}`))
	}))
	defer srv.Close()

	c := NewOpenWeatherClient(srv.Client(), "test-key", srv.URL)
	if _, err := c.AirPollution(context.Background(), 35.68, 139.69); err != nil {
		t.Fatalf("AirPollution failed: %v", err)
	}
}

func TestCurrentWeatherNon2xxIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewOpenWeatherClient(srv.Client(), "bad-key", srv.URL)
	// Shrink the backoff so the failing path stays fast.
	c.httpCfg.Backoff = BackoffConfig{MaxRetries: 0, InitialInterval: time.Millisecond}

	if _, err := c.CurrentWeather(context.Background(), 0, 0); err == nil {
		t.Fatal("expected an error for a 401 response")
	}
}

func TestMissingAPIKey(t *testing.T) {
	c := NewOpenWeatherClient(http.DefaultClient, "", "")
	if _, err := c.CurrentWeather(context.Background(), 0, 0); err == nil {
		t.Fatal("expected an error when the API key is not configured")
	}
}
