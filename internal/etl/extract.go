package etl

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/akarpov91/weather-etl/internal/weather"
)

// WeatherFetcher is the slice of the OpenWeather client the extractor needs.
type WeatherFetcher interface {
	CurrentWeather(ctx context.Context, lat, lon float64) (json.RawMessage, error)
	AirPollution(ctx context.Context, lat, lon float64) (json.RawMessage, error)
}

// Extractor fetches weather and air-quality payloads for the configured
// cities and persists one raw snapshot per run. Cities are processed
// sequentially with a courtesy delay between upstream calls to respect rate
// limits.
type Extractor struct {
	cities   []string
	geocoder weather.Geocoder
	fetcher  WeatherFetcher
	rawDir   string
	delay    time.Duration

	// Geocoding cache, scoped to this Extractor instance.
	coords map[string]weather.Coordinate

	now func() time.Time
}

func NewExtractor(cities []string, geocoder weather.Geocoder, fetcher WeatherFetcher, rawDir string, delay time.Duration) *Extractor {
	return &Extractor{
		cities:   cities,
		geocoder: geocoder,
		fetcher:  fetcher,
		rawDir:   rawDir,
		delay:    delay,
		coords:   make(map[string]weather.Coordinate),
		now:      time.Now,
	}
}

// Extract runs one extraction pass. Cities that fail geocoding or either
// fetch are logged and skipped; partial per-city data is never kept. Returns
// the snapshot path, or "" with a nil error when no city yielded data.
func (e *Extractor) Extract(ctx context.Context) (string, error) {
	if err := os.MkdirAll(e.rawDir, 0o755); err != nil {
		return "", err
	}

	// The geocoding cache lives for one extraction run only.
	e.coords = make(map[string]weather.Coordinate)

	runTS := e.now()
	var observations []weather.RawObservation

	for _, city := range e.cities {
		log.Printf("extract: fetching data for %s", city)

		coord, err := e.resolve(ctx, city)
		if err != nil {
			log.Printf("extract: could not resolve coordinates for %s: %v", city, err)
			continue
		}

		if err := e.pause(ctx); err != nil {
			return "", err
		}
		weatherPayload, err := e.fetcher.CurrentWeather(ctx, coord.Lat, coord.Lon)
		if err != nil {
			log.Printf("extract: weather fetch failed for %s: %v", city, err)
			continue
		}

		if err := e.pause(ctx); err != nil {
			return "", err
		}
		airPayload, err := e.fetcher.AirPollution(ctx, coord.Lat, coord.Lon)
		if err != nil {
			log.Printf("extract: air quality fetch failed for %s: %v", city, err)
			continue
		}

		observations = append(observations, weather.RawObservation{
			City:       coord.Name,
			Latitude:   coord.Lat,
			Longitude:  coord.Lon,
			Timestamp:  e.now().UTC(),
			Weather:    weatherPayload,
			AirQuality: airPayload,
		})
	}

	if len(observations) == 0 {
		log.Println("extract: no data collected")
		return "", nil
	}

	path := filepath.Join(e.rawDir, fmt.Sprintf("%s%s.json", rawFilePrefix, runTS.Format(fileTimestampLayout)))
	data, err := json.MarshalIndent(observations, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}

	log.Printf("extract: data saved to %s", path)
	return path, nil
}

// resolve returns the cached coordinate for a city, geocoding on a miss.
func (e *Extractor) resolve(ctx context.Context, city string) (weather.Coordinate, error) {
	if coord, ok := e.coords[city]; ok {
		return coord, nil
	}

	coord, err := e.geocoder.Resolve(ctx, city)
	if err != nil {
		return weather.Coordinate{}, err
	}
	e.coords[city] = coord
	return coord, nil
}

// pause waits out the rate-limit courtesy delay, honouring cancellation.
func (e *Extractor) pause(ctx context.Context) error {
	if e.delay <= 0 {
		return nil
	}
	timer := time.NewTimer(e.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
