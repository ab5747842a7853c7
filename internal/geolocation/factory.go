package geolocation

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/UnknownOlympus/orbit/internal/httpclient"
	"googlemaps.github.io/maps"
)

// ProviderType represents the type of geolocation provider.
type ProviderType string

const (
	// ProviderTypeIPWhois represents the free ipwho.is HTTP API.
	ProviderTypeIPWhois ProviderType = "ipwhois"
	// ProviderTypeGoogle represents the Google Maps Geolocation API.
	ProviderTypeGoogle ProviderType = "google"
	// ProviderTypeMaxMind represents a local MaxMind GeoLite2-City database.
	ProviderTypeMaxMind ProviderType = "maxmind"
)

// ProviderConfig holds configuration for creating a geolocation provider.
type ProviderConfig struct {
	Type    ProviderType  // Type of provider to create
	BaseURL string        // Base URL (used by ipwho.is provider)
	APIKey  string        // API key (used by Google provider)
	DBPath  string        // Path to the city database (used by MaxMind provider)
	Timeout time.Duration // HTTP timeout for remote providers
	Logger  *slog.Logger  // Logger for the provider
}

// NewProvider creates a geolocation provider based on the provided configuration.
//
// Supported provider types:
// - "ipwhois": ipwho.is API (free, no API key required)
// - "google": Google Maps Geolocation API (requires API key)
// - "maxmind": local GeoLite2-City database (requires database path)
//
// Returns an error if the provider type is unsupported or if provider creation fails.
func NewProvider(config ProviderConfig) (Provider, error) {
	switch config.Type {
	case ProviderTypeIPWhois:
		return NewIPWhoisProvider(config.BaseURL, config.Timeout, config.Logger), nil
	case ProviderTypeGoogle:
		return newGoogleProvider(config)
	case ProviderTypeMaxMind:
		return newMaxMindProvider(config)
	default:
		return nil, fmt.Errorf("unsupported provider type: %s", config.Type)
	}
}

// newGoogleProvider creates a Google Maps geolocation provider.
func newGoogleProvider(config ProviderConfig) (Provider, error) {
	if config.APIKey == "" {
		return nil, errors.New("API key is required for Google provider")
	}

	client, err := maps.NewClient(
		maps.WithAPIKey(config.APIKey),
		maps.WithHTTPClient(httpclient.New(config.Timeout)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Google Maps client: %w", err)
	}

	return NewGoogleProvider(client, config.Logger), nil
}

// newMaxMindProvider opens the configured GeoLite2-City database.
func newMaxMindProvider(config ProviderConfig) (Provider, error) {
	if config.DBPath == "" {
		return nil, errors.New("database path is required for MaxMind provider")
	}

	provider, err := OpenMaxMindProvider(config.DBPath, config.Logger)
	if err != nil {
		return nil, err
	}

	return provider, nil
}
