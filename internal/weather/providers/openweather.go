package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/sony/gobreaker"
)

const defaultOpenWeatherBaseURL = "https://api.openweathermap.org/data/2.5"

// OpenWeatherClient fetches current conditions and air pollution data from
// the OpenWeather API. Payloads are returned raw; flattening happens in the
// transform stage.
type OpenWeatherClient struct {
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

// NewOpenWeatherClient creates a client using the shared HTTP client. baseURL
// may be empty to use the public API endpoint.
func NewOpenWeatherClient(client *http.Client, apiKey, baseURL string) *OpenWeatherClient {
	if baseURL == "" {
		baseURL = defaultOpenWeatherBaseURL
	}
	return &OpenWeatherClient{
		apiKey:  apiKey,
		baseURL: baseURL,
		httpCfg: HTTPClientConfig{
			Client:  client,
			Backoff: defaultBackoff(),
		},
		circuit: newBreaker("openweather"),
	}
}

// CurrentWeather returns the raw current-conditions payload for a coordinate,
// in metric units.
func (c *OpenWeatherClient) CurrentWeather(ctx context.Context, lat, lon float64) (json.RawMessage, error) {
	values := url.Values{}
	values.Set("lat", fmt.Sprintf("%f", lat))
	values.Set("lon", fmt.Sprintf("%f", lon))
	values.Set("appid", c.apiKey)
	values.Set("units", "metric")
	return c.get(ctx, "/weather", values)
}

// AirPollution returns the raw pollutant-components payload for a coordinate.
func (c *OpenWeatherClient) AirPollution(ctx context.Context, lat, lon float64) (json.RawMessage, error) {
	values := url.Values{}
	values.Set("lat", fmt.Sprintf("%f", lat))
	values.Set("lon", fmt.Sprintf("%f", lon))
	values.Set("appid", c.apiKey)
	return c.get(ctx, "/air_pollution", values)
}

func (c *OpenWeatherClient) get(ctx context.Context, path string, values url.Values) (json.RawMessage, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("openweather api key is not configured")
	}

	buildRequest := func() (*http.Request, error) {
		u := fmt.Sprintf("%s%s?%s", c.baseURL, path, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, c.httpCfg, c.circuit, buildRequest)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("openweather %s: invalid JSON payload", path)
	}
	return json.RawMessage(body), nil
}
