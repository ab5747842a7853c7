package geolocation

import (
	"context"
	"errors"

	"github.com/UnknownOlympus/orbit/internal/models"
)

// Provider is an interface that defines a method for geolocating an IP address.
// The Locate method takes a context and an IP address as input,
// and returns the corresponding coordinates and an error if any occurs.
type Provider interface {
	Locate(ctx context.Context, ip string) (*models.Coordinates, error)
}

// ErrMissingCoordinates is returned when a lookup succeeds but carries no usable latitude/longitude.
var ErrMissingCoordinates = errors.New("response did not contain latitude and/or longitude")

// toCoordinates validates a latitude/longitude pair.
// Zero counts as missing: providers report unknown positions as 0, so a point
// exactly on the equator or the prime meridian is rejected too.
func toCoordinates(lat, lon float64) (*models.Coordinates, error) {
	if lat == 0 || lon == 0 {
		return nil, ErrMissingCoordinates
	}

	return &models.Coordinates{Latitude: lat, Longitude: lon}, nil
}
