package etl

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"

	"github.com/akarpov91/weather-etl/internal/weather"
)

const sampleWeatherPayload = `{"main":{"temp":22.5,"feels_like":21.8,"humidity":55,"pressure":1012},` +
	`"wind":{"speed":3.6,"deg":220},"clouds":{"all":40},` +
	`"weather":[{"main":"Clouds","description":"scattered clouds"}],` +
	`"sys":{"sunrise":1710996000,"sunset":1711039200}}`

const sampleAirPayload = `{"list":[{"main":{"aqi":1},` +
	`"components":{"co":0.3,"no":0.02,"no2":0.77,"o3":68.66,"so2":0.64,"pm2_5":0.5,"pm10":0.54,"nh3":0.12}}]}`

type fakeGeocoder struct {
	coords map[string]weather.Coordinate
	calls  int
}

func (f *fakeGeocoder) Name() string { return "fake" }

func (f *fakeGeocoder) Resolve(ctx context.Context, city string) (weather.Coordinate, error) {
	f.calls++
	coord, ok := f.coords[city]
	if !ok {
		return weather.Coordinate{}, weather.ErrLocationNotFound
	}
	return coord, nil
}

type fakeFetcher struct {
	weatherErr error
	airErr     error
}

func (f *fakeFetcher) CurrentWeather(ctx context.Context, lat, lon float64) (json.RawMessage, error) {
	if f.weatherErr != nil {
		return nil, f.weatherErr
	}
	return json.RawMessage(sampleWeatherPayload), nil
}

func (f *fakeFetcher) AirPollution(ctx context.Context, lat, lon float64) (json.RawMessage, error) {
	if f.airErr != nil {
		return nil, f.airErr
	}
	return json.RawMessage(sampleAirPayload), nil
}

func TestExtractSkipsFailingCities(t *testing.T) {
	dir := t.TempDir()
	geo := &fakeGeocoder{coords: map[string]weather.Coordinate{
		"Tokyo, Japan": {Lat: 35.68, Lon: 139.69, Name: "Tokyo, Japan"},
	}}

	e := NewExtractor([]string{"Tokyo, Japan", "Atlantis"}, geo, &fakeFetcher{}, dir, 0)

	path, err := e.Extract(context.Background())
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if path == "" {
		t.Fatal("expected a snapshot path")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	var observations []weather.RawObservation
	if err := json.Unmarshal(data, &observations); err != nil {
		t.Fatalf("parse snapshot: %v", err)
	}

	if len(observations) != 1 {
		t.Fatalf("expected 1 observation, got %d", len(observations))
	}
	if observations[0].City != "Tokyo, Japan" {
		t.Errorf("observation city = %q, want Tokyo", observations[0].City)
	}
	if !json.Valid(observations[0].Weather) || !json.Valid(observations[0].AirQuality) {
		t.Error("raw payloads should round-trip as valid JSON")
	}
}

func TestExtractNoDataCollected(t *testing.T) {
	dir := t.TempDir()
	geo := &fakeGeocoder{coords: nil} // every city fails to resolve

	e := NewExtractor([]string{"Atlantis", "El Dorado"}, geo, &fakeFetcher{}, dir, 0)

	path, err := e.Extract(context.Background())
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if path != "" {
		t.Errorf("expected no snapshot, got %q", path)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected no files written, found %d", len(entries))
	}
}

func TestExtractSkipsCityOnFetchFailure(t *testing.T) {
	dir := t.TempDir()
	geo := &fakeGeocoder{coords: map[string]weather.Coordinate{
		"Tokyo, Japan": {Lat: 35.68, Lon: 139.69, Name: "Tokyo, Japan"},
	}}
	fetcher := &fakeFetcher{airErr: errors.New("upstream 500")}

	e := NewExtractor([]string{"Tokyo, Japan"}, geo, fetcher, dir, 0)

	// Air-quality failure discards the city entirely; no partial data.
	path, err := e.Extract(context.Background())
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if path != "" {
		t.Errorf("expected no snapshot when air fetch fails, got %q", path)
	}
}

func TestGeocodingCacheShortCircuits(t *testing.T) {
	geo := &fakeGeocoder{coords: map[string]weather.Coordinate{
		"Tokyo, Japan": {Lat: 35.68, Lon: 139.69, Name: "Tokyo, Japan"},
	}}
	e := NewExtractor([]string{"Tokyo, Japan"}, geo, &fakeFetcher{}, t.TempDir(), 0)

	ctx := context.Background()
	if _, err := e.resolve(ctx, "Tokyo, Japan"); err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if _, err := e.resolve(ctx, "Tokyo, Japan"); err != nil {
		t.Fatalf("cached resolve failed: %v", err)
	}

	if geo.calls != 1 {
		t.Errorf("geocoder called %d times, want 1 (cache hit)", geo.calls)
	}
}
