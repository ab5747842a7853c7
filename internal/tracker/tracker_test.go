package tracker_test

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/UnknownOlympus/orbit/internal/flyover"
	"github.com/UnknownOlympus/orbit/internal/geolocation"
	"github.com/UnknownOlympus/orbit/internal/httpclient"
	"github.com/UnknownOlympus/orbit/internal/metrics"
	"github.com/UnknownOlympus/orbit/internal/models"
	"github.com/UnknownOlympus/orbit/internal/tracker"
	"github.com/UnknownOlympus/orbit/test/mocks"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	resolver  *mocks.IPResolver
	locator   *mocks.Provider
	predictor *mocks.Predictor
	metrics   *metrics.Metrics
	tracker   *tracker.Tracker
}

func newFixture(t *testing.T, retry tracker.RetryConfig) *fixture {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	fx := &fixture{
		resolver:  mocks.NewIPResolver(t),
		locator:   mocks.NewProvider(t),
		predictor: mocks.NewPredictor(t),
		metrics:   metrics.NewMetrics(prometheus.NewRegistry()),
	}
	fx.tracker = tracker.NewTracker(logger, fx.resolver, fx.locator, fx.predictor, fx.metrics, retry)

	return fx
}

var (
	sampleIP     = "162.245.144.188"
	sampleCoords = &models.Coordinates{Latitude: 51.5, Longitude: -0.12}
	samplePasses = []models.Pass{{RiseTime: 134564234, Duration: 600}}
)

func TestTracker_NextPasses(t *testing.T) {
	ctx := t.Context()

	t.Run("successful lookup chain", func(t *testing.T) {
		fx := newFixture(t, tracker.RetryConfig{})

		fx.resolver.On("ResolveIP", ctx).Return(sampleIP, nil).Once()
		fx.locator.On("Locate", ctx, sampleIP).Return(sampleCoords, nil).Once()
		fx.predictor.On("Predict", ctx, *sampleCoords).Return(samplePasses, nil).Once()

		passes, err := fx.tracker.NextPasses(ctx)

		require.NoError(t, err)
		assert.Equal(t, samplePasses, passes)
		assert.InDelta(t, 1, testutil.ToFloat64(fx.metrics.Lookups.WithLabelValues("success")), 0)
	})

	t.Run("resolve failure short-circuits", func(t *testing.T) {
		fx := newFixture(t, tracker.RetryConfig{})
		statusErr := &httpclient.StatusError{Op: "fetching IP", StatusCode: http.StatusInternalServerError}

		fx.resolver.On("ResolveIP", ctx).Return("", statusErr).Once()

		passes, err := fx.tracker.NextPasses(ctx)

		require.Nil(t, passes)
		require.ErrorIs(t, err, statusErr)
		fx.locator.AssertNotCalled(t, "Locate", mock.Anything, mock.Anything)
		fx.predictor.AssertNotCalled(t, "Predict", mock.Anything, mock.Anything)
		assert.InDelta(t, 1, testutil.ToFloat64(fx.metrics.StepErrors.WithLabelValues(metrics.StepResolveIP)), 0)
		assert.InDelta(t, 1, testutil.ToFloat64(fx.metrics.Lookups.WithLabelValues("failure")), 0)
	})

	t.Run("locate failure never reaches predictor", func(t *testing.T) {
		fx := newFixture(t, tracker.RetryConfig{})

		fx.resolver.On("ResolveIP", ctx).Return(sampleIP, nil).Once()
		fx.locator.On("Locate", ctx, sampleIP).Return(nil, geolocation.ErrMissingCoordinates).Once()

		passes, err := fx.tracker.NextPasses(ctx)

		require.Nil(t, passes)
		require.ErrorIs(t, err, geolocation.ErrMissingCoordinates)
		fx.predictor.AssertNumberOfCalls(t, "Predict", 0)
		assert.InDelta(t, 1, testutil.ToFloat64(fx.metrics.StepErrors.WithLabelValues(metrics.StepLocate)), 0)
	})

	t.Run("predict failure is reported", func(t *testing.T) {
		fx := newFixture(t, tracker.RetryConfig{})

		fx.resolver.On("ResolveIP", ctx).Return(sampleIP, nil).Once()
		fx.locator.On("Locate", ctx, sampleIP).Return(sampleCoords, nil).Once()
		fx.predictor.On("Predict", ctx, *sampleCoords).Return(nil, flyover.ErrUnsuccessful).Once()

		passes, err := fx.tracker.NextPasses(ctx)

		require.Nil(t, passes)
		require.ErrorIs(t, err, flyover.ErrUnsuccessful)
		assert.InDelta(t, 1, testutil.ToFloat64(fx.metrics.StepErrors.WithLabelValues(metrics.StepPredict)), 0)
	})

	t.Run("transient failure is retried when enabled", func(t *testing.T) {
		fx := newFixture(t, tracker.RetryConfig{Attempts: 3, MinDelay: time.Millisecond, MaxDelay: time.Millisecond})
		unavailable := &httpclient.StatusError{Op: "fetching IP", StatusCode: http.StatusServiceUnavailable}

		fx.resolver.On("ResolveIP", ctx).Return("", unavailable).Once()
		fx.resolver.On("ResolveIP", ctx).Return(sampleIP, nil).Once()
		fx.locator.On("Locate", ctx, sampleIP).Return(sampleCoords, nil).Once()
		fx.predictor.On("Predict", ctx, *sampleCoords).Return(samplePasses, nil).Once()

		passes, err := fx.tracker.NextPasses(ctx)

		require.NoError(t, err)
		assert.Equal(t, samplePasses, passes)
		assert.InDelta(t, 1, testutil.ToFloat64(fx.metrics.StepRetries.WithLabelValues(metrics.StepResolveIP)), 0)
	})

	t.Run("validation failure is not retried", func(t *testing.T) {
		fx := newFixture(t, tracker.RetryConfig{Attempts: 3, MinDelay: time.Millisecond, MaxDelay: time.Millisecond})

		fx.resolver.On("ResolveIP", ctx).Return(sampleIP, nil).Once()
		fx.locator.On("Locate", ctx, sampleIP).Return(nil, geolocation.ErrMissingCoordinates).Once()

		_, err := fx.tracker.NextPasses(ctx)

		require.ErrorIs(t, err, geolocation.ErrMissingCoordinates)
		fx.locator.AssertNumberOfCalls(t, "Locate", 1)
		assert.InDelta(t, 0, testutil.ToFloat64(fx.metrics.StepRetries.WithLabelValues(metrics.StepLocate)), 0)
	})
}

func TestTracker_NextPassesAsync(t *testing.T) {
	ctx := t.Context()

	t.Run("await yields passes", func(t *testing.T) {
		fx := newFixture(t, tracker.RetryConfig{})

		fx.resolver.On("ResolveIP", mock.Anything).Return(sampleIP, nil).Once()
		fx.locator.On("Locate", mock.Anything, sampleIP).Return(sampleCoords, nil).Once()
		fx.predictor.On("Predict", mock.Anything, *sampleCoords).Return(samplePasses, nil).Once()

		passes, err := fx.tracker.NextPassesAsync(ctx).Await(ctx)

		require.NoError(t, err)
		assert.Equal(t, samplePasses, passes)
	})

	t.Run("await yields first error", func(t *testing.T) {
		fx := newFixture(t, tracker.RetryConfig{})

		fx.resolver.On("ResolveIP", mock.Anything).Return("", assert.AnError).Once()

		passes, err := fx.tracker.NextPassesAsync(ctx).Await(ctx)

		require.ErrorIs(t, err, assert.AnError)
		assert.Nil(t, passes)
	})
}

func TestTracker_NextPassesCallback(t *testing.T) {
	type outcome struct {
		passes []models.Pass
		err    error
	}

	run := func(t *testing.T, fx *fixture) outcome {
		t.Helper()

		results := make(chan outcome, 1)
		fx.tracker.NextPassesCallback(t.Context(), func(passes []models.Pass, err error) {
			results <- outcome{passes: passes, err: err}
		})

		select {
		case res := <-results:
			return res
		case <-time.After(time.Second):
			t.Fatal("callback was not invoked")
			return outcome{}
		}
	}

	t.Run("callback receives passes", func(t *testing.T) {
		fx := newFixture(t, tracker.RetryConfig{})

		fx.resolver.On("ResolveIP", mock.Anything).Return(sampleIP, nil).Once()
		fx.locator.On("Locate", mock.Anything, sampleIP).Return(sampleCoords, nil).Once()
		fx.predictor.On("Predict", mock.Anything, *sampleCoords).Return(samplePasses, nil).Once()

		res := run(t, fx)

		require.NoError(t, res.err)
		assert.Equal(t, samplePasses, res.passes)
	})

	t.Run("callback receives predictor error", func(t *testing.T) {
		fx := newFixture(t, tracker.RetryConfig{})

		fx.resolver.On("ResolveIP", mock.Anything).Return(sampleIP, nil).Once()
		fx.locator.On("Locate", mock.Anything, sampleIP).Return(sampleCoords, nil).Once()
		fx.predictor.On("Predict", mock.Anything, *sampleCoords).Return(nil, flyover.ErrUnsuccessful).Once()

		res := run(t, fx)

		require.ErrorIs(t, res.err, flyover.ErrUnsuccessful)
		assert.Nil(t, res.passes)
	})
}

func TestTracker_ContextCancelled(t *testing.T) {
	fx := newFixture(t, tracker.RetryConfig{})
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	fx.resolver.On("ResolveIP", ctx).Return("", context.Canceled).Once()

	_, err := fx.tracker.NextPasses(ctx)

	require.ErrorIs(t, err, context.Canceled)
	fx.locator.AssertNotCalled(t, "Locate", mock.Anything, mock.Anything)
}
