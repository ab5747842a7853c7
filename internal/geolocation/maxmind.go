package geolocation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"

	"github.com/UnknownOlympus/orbit/internal/models"
	"github.com/oschwald/geoip2-golang"
)

// ErrInvalidIP is returned when the address handed to the MaxMind provider cannot be parsed.
var ErrInvalidIP = errors.New("invalid IP address format")

// CityReader is the part of *geoip2.Reader used for lookups.
type CityReader interface {
	City(ipAddress net.IP) (*geoip2.City, error)
}

// MaxMindProvider geolocates IP addresses against a local GeoLite2-City database.
type MaxMindProvider struct {
	reader CityReader
	log    *slog.Logger
}

// NewMaxMindProvider wraps an opened city database.
func NewMaxMindProvider(reader CityReader, log *slog.Logger) *MaxMindProvider {
	return &MaxMindProvider{reader: reader, log: log}
}

// OpenMaxMindProvider opens the GeoLite2-City database at path.
func OpenMaxMindProvider(path string, log *slog.Logger) (*MaxMindProvider, error) {
	db, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open GeoLite2-City database at %s: %w", path, err)
	}

	return NewMaxMindProvider(db, log), nil
}

// Locate looks the IP address up in the city database.
func (mp *MaxMindProvider) Locate(ctx context.Context, ip string) (*models.Coordinates, error) {
	mp.log.DebugContext(ctx, "Geolocating using MaxMind", "ip", ip)

	parsedIP := net.ParseIP(ip)
	if parsedIP == nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidIP, ip)
	}

	record, err := mp.reader.City(parsedIP)
	if err != nil {
		return nil, fmt.Errorf("city lookup failed: %w", err)
	}

	return toCoordinates(record.Location.Latitude, record.Location.Longitude)
}

// Close releases the underlying database if it holds one.
func (mp *MaxMindProvider) Close() error {
	if closer, ok := mp.reader.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
