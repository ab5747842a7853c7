package flyover

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"github.com/UnknownOlympus/orbit/internal/httpclient"
	"github.com/UnknownOlympus/orbit/internal/models"
)

// DefaultURL is the pass-prediction endpoint; lat and lon are passed as query parameters.
const DefaultURL = "https://iss-flyover.herokuapp.com/json/"

// successMessage is the literal the API puts in "message" when predictions were computed.
const successMessage = "success"

// ErrUnsuccessful is returned when the API answers without a "success" message.
var ErrUnsuccessful = errors.New("fetching ISS fly-over times was unsuccessful")

// Predictor fetches upcoming ISS passes for a pair of coordinates.
type Predictor struct {
	client  httpclient.HTTPClient // HTTP client for making requests
	baseURL string                // Base URL of the prediction endpoint
	log     *slog.Logger          // Logger for logging operations
}

// predictionResponse mirrors the JSON document returned by the prediction API.
type predictionResponse struct {
	Message  string        `json:"message"`
	Response []models.Pass `json:"response"`
}

// NewPredictor creates a Predictor for the given endpoint. An empty URL falls back to DefaultURL.
func NewPredictor(baseURL string, timeout time.Duration, log *slog.Logger) *Predictor {
	return NewPredictorWithClient(httpclient.New(timeout), baseURL, log)
}

// NewPredictorWithClient creates a Predictor with a custom HTTP client.
func NewPredictorWithClient(client httpclient.HTTPClient, baseURL string, log *slog.Logger) *Predictor {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	return &Predictor{client: client, baseURL: baseURL, log: log}
}

// Predict returns the upcoming passes over coords in the order the API reports them.
func (p *Predictor) Predict(ctx context.Context, coords models.Coordinates) ([]models.Pass, error) {
	reqURL, err := url.Parse(p.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}

	query := reqURL.Query()
	query.Set("lat", strconv.FormatFloat(coords.Latitude, 'f', -1, 64))
	query.Set("lon", strconv.FormatFloat(coords.Longitude, 'f', -1, 64))
	reqURL.RawQuery = query.Encode()

	p.log.DebugContext(ctx, "Fly-over request URL", "url", reqURL.String())

	var resp predictionResponse
	if err = httpclient.GetJSON(ctx, p.client, "fetching ISS fly-over times", reqURL.String(), &resp); err != nil {
		return nil, err
	}

	if resp.Message != successMessage {
		p.log.WarnContext(ctx, "Fly-over API reported failure", "message", resp.Message)
		return nil, ErrUnsuccessful
	}

	p.log.DebugContext(ctx, "Fly-over API returned passes", "count", len(resp.Response))

	return resp.Response, nil
}
