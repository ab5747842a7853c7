package geolocation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/UnknownOlympus/orbit/internal/httpclient"
	"github.com/UnknownOlympus/orbit/internal/models"
)

// IPWhoisBaseURL is the public ipwho.is endpoint; the IP address is appended as a path segment.
const IPWhoisBaseURL = "http://ipwho.is"

// ErrLookupFailed is returned when ipwho.is explicitly reports an unsuccessful lookup.
var ErrLookupFailed = errors.New("ipwho.is lookup was unsuccessful")

// IPWhoisProvider implements the Provider interface using the free ipwho.is API.
type IPWhoisProvider struct {
	client  httpclient.HTTPClient // HTTP client for making requests
	baseURL string                // Base URL for the ipwho.is API
	log     *slog.Logger          // Logger for logging operations
}

// ipwhoisResponse represents the subset of the ipwho.is JSON response we rely on.
// Success is a pointer so that an absent field is not mistaken for a failure.
type ipwhoisResponse struct {
	Success   *bool   `json:"success"`
	Message   string  `json:"message"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// NewIPWhoisProvider creates a new ipwho.is geolocation provider.
// An empty base URL falls back to IPWhoisBaseURL.
func NewIPWhoisProvider(baseURL string, timeout time.Duration, log *slog.Logger) *IPWhoisProvider {
	return NewIPWhoisProviderWithClient(httpclient.New(timeout), baseURL, log)
}

// NewIPWhoisProviderWithClient creates an ipwho.is provider with a custom HTTP client.
// Useful for testing with mocked HTTP clients.
func NewIPWhoisProviderWithClient(client httpclient.HTTPClient, baseURL string, log *slog.Logger) *IPWhoisProvider {
	if baseURL == "" {
		baseURL = IPWhoisBaseURL
	}
	return &IPWhoisProvider{client: client, baseURL: baseURL, log: log}
}

// Locate resolves an IP address to coordinates using a single ipwho.is request.
func (wp *IPWhoisProvider) Locate(ctx context.Context, ip string) (*models.Coordinates, error) {
	wp.log.DebugContext(ctx, "Geolocating using ipwho.is", "ip", ip)

	reqURL, err := url.JoinPath(wp.baseURL, ip)
	if err != nil {
		return nil, fmt.Errorf("failed to build request URL: %w", err)
	}

	var resp ipwhoisResponse
	if err = httpclient.GetJSON(ctx, wp.client, "fetching coordinates of IP", reqURL, &resp); err != nil {
		return nil, err
	}

	if resp.Success != nil && !*resp.Success {
		wp.log.WarnContext(ctx, "ipwho.is reported failure", "ip", ip, "message", resp.Message)
		return nil, fmt.Errorf("%w: %s", ErrLookupFailed, resp.Message)
	}

	coords, err := toCoordinates(resp.Latitude, resp.Longitude)
	if err != nil {
		return nil, err
	}

	wp.log.DebugContext(ctx, "ipwho.is found result", "lat", coords.Latitude, "lon", coords.Longitude)

	return coords, nil
}
