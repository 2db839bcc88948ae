package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/akarpov91/weather-etl/internal/weather"
	"github.com/sony/gobreaker"
)

const defaultNominatimBaseURL = "https://nominatim.openstreetmap.org"

// NominatimGeocoder resolves place names through the OpenStreetMap Nominatim
// search endpoint. Nominatim requires an identifying User-Agent.
type NominatimGeocoder struct {
	name      string
	baseURL   string
	userAgent string
	httpCfg   HTTPClientConfig
	circuit   *gobreaker.CircuitBreaker
}

func NewNominatimGeocoder(client *http.Client, baseURL string) *NominatimGeocoder {
	if baseURL == "" {
		baseURL = defaultNominatimBaseURL
	}
	return &NominatimGeocoder{
		name:      "nominatim",
		baseURL:   baseURL,
		userAgent: "weather-etl/1.0",
		httpCfg: HTTPClientConfig{
			Client:  client,
			Backoff: defaultBackoff(),
		},
		circuit: newBreaker("nominatim"),
	}
}

func (g *NominatimGeocoder) Name() string {
	return g.name
}

// Resolve returns the first search hit for the place name, or
// weather.ErrLocationNotFound when the result set is empty.
func (g *NominatimGeocoder) Resolve(ctx context.Context, city string) (weather.Coordinate, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("q", city)
		values.Set("format", "json")
		values.Set("limit", "1")

		u := fmt.Sprintf("%s/search?%s", g.baseURL, values.Encode())
		req, err := http.NewRequest(http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", g.userAgent)
		return req, nil
	}

	resp, err := doRequestWithResilience(ctx, g.httpCfg, g.circuit, buildRequest)
	if err != nil {
		return weather.Coordinate{}, err
	}
	defer resp.Body.Close()

	var hits []struct {
		Lat string `json:"lat"`
		Lon string `json:"lon"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&hits); err != nil {
		return weather.Coordinate{}, err
	}
	if len(hits) == 0 {
		return weather.Coordinate{}, fmt.Errorf("%w: %s", weather.ErrLocationNotFound, city)
	}

	lat, err := strconv.ParseFloat(hits[0].Lat, 64)
	if err != nil {
		return weather.Coordinate{}, fmt.Errorf("parse latitude for %s: %w", city, err)
	}
	lon, err := strconv.ParseFloat(hits[0].Lon, 64)
	if err != nil {
		return weather.Coordinate{}, fmt.Errorf("parse longitude for %s: %w", city, err)
	}

	return weather.Coordinate{Lat: lat, Lon: lon, Name: city}, nil
}
