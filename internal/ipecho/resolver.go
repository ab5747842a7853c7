package ipecho

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/UnknownOlympus/orbit/internal/httpclient"
)

// DefaultURL is the ipify endpoint that echoes the caller's public IP as JSON.
const DefaultURL = "https://api.ipify.org?format=json"

// ErrEmptyIP is returned when the echo service answers 200 without an address.
var ErrEmptyIP = errors.New("IP echo response did not contain an ip")

// Resolver discovers the caller's public IP address with a single request to an IP-echo service.
type Resolver struct {
	client httpclient.HTTPClient // HTTP client for making requests
	url    string                // Full URL of the echo endpoint
	log    *slog.Logger          // Logger for logging operations
}

type echoResponse struct {
	IP string `json:"ip"`
}

// NewResolver creates a Resolver for the given endpoint. An empty URL falls back to DefaultURL.
func NewResolver(url string, timeout time.Duration, log *slog.Logger) *Resolver {
	return NewResolverWithClient(httpclient.New(timeout), url, log)
}

// NewResolverWithClient creates a Resolver with a custom HTTP client.
// Useful for testing with mocked HTTP clients.
func NewResolverWithClient(client httpclient.HTTPClient, url string, log *slog.Logger) *Resolver {
	if url == "" {
		url = DefaultURL
	}
	return &Resolver{client: client, url: url, log: log}
}

// ResolveIP returns the public IP address reported by the echo service.
func (r *Resolver) ResolveIP(ctx context.Context) (string, error) {
	r.log.DebugContext(ctx, "Resolving public IP", "url", r.url)

	var resp echoResponse
	if err := httpclient.GetJSON(ctx, r.client, "fetching IP", r.url, &resp); err != nil {
		return "", err
	}

	if resp.IP == "" {
		return "", ErrEmptyIP
	}

	r.log.DebugContext(ctx, "Resolved public IP", "ip", resp.IP)

	return resp.IP, nil
}
