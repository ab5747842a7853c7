package tracker

import (
	"context"
	"log/slog"
	"time"

	"github.com/UnknownOlympus/orbit/internal/async"
	"github.com/UnknownOlympus/orbit/internal/httpclient"
	"github.com/UnknownOlympus/orbit/internal/metrics"
	"github.com/UnknownOlympus/orbit/internal/models"
	"github.com/UnknownOlympus/orbit/internal/retry"
)

// IPResolver discovers the caller's public IP address.
type IPResolver interface {
	ResolveIP(ctx context.Context) (string, error)
}

// Locator turns an IP address into coordinates.
type Locator interface {
	Locate(ctx context.Context, ip string) (*models.Coordinates, error)
}

// Predictor lists upcoming ISS passes over a location.
type Predictor interface {
	Predict(ctx context.Context, coords models.Coordinates) ([]models.Pass, error)
}

// RetryConfig is the opt-in per-step retry policy. Attempts <= 1 disables retries.
type RetryConfig struct {
	Attempts int
	MinDelay time.Duration
	MaxDelay time.Duration
}

// Tracker chains the three lookups needed to find the next ISS passes
// over the caller's location: public IP, then coordinates, then passes.
type Tracker struct {
	log       *slog.Logger     // Logger for logging tracker activities
	resolver  IPResolver       // Public IP lookup
	locator   Locator          // IP geolocation lookup
	predictor Predictor        // Pass prediction lookup
	metrics   *metrics.Metrics // Metrics for tracking step performance
	retry     RetryConfig      // Per-step retry policy
}

// NewTracker creates a new Tracker from its three lookup steps.
func NewTracker(
	log *slog.Logger,
	resolver IPResolver,
	locator Locator,
	predictor Predictor,
	metrics *metrics.Metrics,
	retry RetryConfig,
) *Tracker {
	return &Tracker{
		log:       log,
		resolver:  resolver,
		locator:   locator,
		predictor: predictor,
		metrics:   metrics,
		retry:     retry,
	}
}

// NextPasses resolves the caller's IP, geolocates it and fetches the upcoming passes,
// strictly in that order. The first failing step's error is returned as is and no
// further step runs.
func (t *Tracker) NextPasses(ctx context.Context) ([]models.Pass, error) {
	passes, err := t.nextPasses(ctx)
	if err != nil {
		t.metrics.Lookups.WithLabelValues("failure").Inc()
		return nil, err
	}

	t.metrics.Lookups.WithLabelValues("success").Inc()
	return passes, nil
}

// NextPassesAsync starts NextPasses on its own goroutine and returns a future for its result.
func (t *Tracker) NextPassesAsync(ctx context.Context) *async.Future[[]models.Pass] {
	return async.Go(ctx, t.NextPasses)
}

// NextPassesCallback starts NextPasses and invokes cb exactly once with its outcome.
// Exactly one of passes and err is meaningful.
func (t *Tracker) NextPassesCallback(ctx context.Context, cb func(passes []models.Pass, err error)) {
	t.NextPassesAsync(ctx).OnComplete(cb)
}

func (t *Tracker) nextPasses(ctx context.Context) ([]models.Pass, error) {
	ip, err := runStep(ctx, t, metrics.StepResolveIP, t.resolver.ResolveIP)
	if err != nil {
		return nil, err
	}

	coords, err := runStep(ctx, t, metrics.StepLocate, func(ctx context.Context) (*models.Coordinates, error) {
		return t.locator.Locate(ctx, ip)
	})
	if err != nil {
		return nil, err
	}

	passes, err := runStep(ctx, t, metrics.StepPredict, func(ctx context.Context) ([]models.Pass, error) {
		return t.predictor.Predict(ctx, *coords)
	})
	if err != nil {
		return nil, err
	}

	t.log.InfoContext(ctx, "Found upcoming passes",
		"ip", ip,
		"lat", coords.Latitude,
		"lon", coords.Longitude,
		"passes", len(passes))

	return passes, nil
}

// runStep executes one lookup under the retry policy and records its duration and outcome.
func runStep[T any](ctx context.Context, t *Tracker, step string, op func(context.Context) (T, error)) (T, error) {
	policy := retry.Policy{
		Attempts:  t.retry.Attempts,
		MinDelay:  t.retry.MinDelay,
		MaxDelay:  t.retry.MaxDelay,
		Retryable: httpclient.IsTransient,
		OnRetry: func(attempt int, err error, wait time.Duration) {
			t.metrics.StepRetries.WithLabelValues(step).Inc()
			t.log.WarnContext(ctx, "Retrying lookup step",
				"step", step,
				"attempt", attempt,
				"wait", wait,
				"error", err)
		},
	}

	t.log.DebugContext(ctx, "Running lookup step", "step", step)

	startTime := time.Now()
	val, err := retry.Do(ctx, policy, op)
	t.metrics.StepSeconds.WithLabelValues(step).Observe(time.Since(startTime).Seconds())

	if err != nil {
		t.metrics.StepErrors.WithLabelValues(step).Inc()
		t.log.ErrorContext(ctx, "Lookup step failed", "step", step, "error", err)
	}

	return val, err
}
