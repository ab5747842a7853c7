package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

// UserAgent is sent with every outgoing request.
const UserAgent = "Orbit-ISS-Tracker/1.0 (https://github.com/UnknownOlympus/orbit)"

// HTTPClient defines the interface for making HTTP requests.
// This allows for easy mocking in tests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// StatusError is returned when an upstream API answers with a status other than 200.
type StatusError struct {
	Op         string // Op names the lookup that failed, e.g. "fetching IP".
	StatusCode int    // StatusCode is the HTTP status returned by the API.
	Body       string // Body is the raw response body, if any.
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("status code %d when %s", e.StatusCode, e.Op)
	}
	return fmt.Sprintf("status code %d when %s. Response: %s", e.StatusCode, e.Op, e.Body)
}

// New returns an *http.Client with the given overall request timeout.
// A zero timeout leaves the client without a deadline.
func New(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

// GetJSON performs a GET request against rawURL and decodes a 200 response into out.
// Transport failures are wrapped, non-200 responses become a *StatusError.
func GetJSON(ctx context.Context, client HTTPClient, op, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", UserAgent)

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request when %s: %w", op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return &StatusError{Op: op, StatusCode: resp.StatusCode, Body: string(body)}
	}

	if err = json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response when %s: %w", op, err)
	}

	return nil
}

// IsTransient reports whether err is worth retrying: transport failures,
// 429 and 5xx responses. Cancellation and validation errors are not transient.
func IsTransient(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode == http.StatusTooManyRequests || statusErr.StatusCode >= http.StatusInternalServerError
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}
