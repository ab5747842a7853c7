package geolocation

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/UnknownOlympus/orbit/internal/models"
	"googlemaps.github.io/maps"
)

// GoogleProvider geolocates the caller through the Google Maps Geolocation API.
// Google derives the position from the address the request originates from, which is
// the same public IP the echo service reported.
type GoogleProvider struct {
	client GoogleAPIClient // client is the Google Maps API client
	log    *slog.Logger    // log is the logger for logging operations
}

type GoogleAPIClient interface {
	Geolocate(ctx context.Context, r *maps.GeolocationRequest) (*maps.GeolocationResult, error)
}

// NewGoogleProvider initializes a new GoogleProvider with the given Maps client and logger.
func NewGoogleProvider(client GoogleAPIClient, log *slog.Logger) *GoogleProvider {
	return &GoogleProvider{client: client, log: log}
}

// Locate asks the Geolocation API for the position of the requesting address.
func (gp *GoogleProvider) Locate(ctx context.Context, ip string) (*models.Coordinates, error) {
	gp.log.DebugContext(ctx, "Geolocating using Google Maps", "ip", ip)

	req := maps.GeolocationRequest{ConsiderIP: true}
	resp, err := gp.client.Geolocate(ctx, &req)
	if err != nil {
		return nil, fmt.Errorf("failed to geolocate ip: %w", err)
	}

	if resp == nil {
		return nil, ErrMissingCoordinates
	}

	gp.log.DebugContext(ctx, "Google Maps found result", "accuracy_m", resp.Accuracy)

	return toCoordinates(resp.Location.Lat, resp.Location.Lng)
}
