package providers

import (
	"context"
	"fmt"

	"github.com/akarpov91/weather-etl/internal/weather"
	"github.com/kelvins/geocoder"
)

// GoogleGeocoder resolves place names through the Google Geocoding API.
// Selected over Nominatim when a Google API key is configured.
type GoogleGeocoder struct {
	name string
}

func NewGoogleGeocoder(apiKey string) *GoogleGeocoder {
	// The geocoder package keys all requests off a package-level API key.
	geocoder.ApiKey = apiKey
	return &GoogleGeocoder{name: "google"}
}

func (g *GoogleGeocoder) Name() string {
	return g.name
}

func (g *GoogleGeocoder) Resolve(ctx context.Context, city string) (weather.Coordinate, error) {
	if err := ctx.Err(); err != nil {
		return weather.Coordinate{}, err
	}

	location, err := geocoder.Geocoding(geocoder.Address{City: city})
	if err != nil {
		return weather.Coordinate{}, fmt.Errorf("%w: %s (%v)", weather.ErrLocationNotFound, city, err)
	}

	return weather.Coordinate{
		Lat:  location.Latitude,
		Lon:  location.Longitude,
		Name: city,
	}, nil
}
