package weather

import (
	"context"
	"errors"
)

// ErrLocationNotFound is returned by geocoders when a place name does not
// resolve to any coordinate.
var ErrLocationNotFound = errors.New("location not found")

// Geocoder resolves a free-text place name to a coordinate.
type Geocoder interface {
	Name() string
	Resolve(ctx context.Context, city string) (Coordinate, error)
}
