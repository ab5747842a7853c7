package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Step labels used across the lookup chain.
const (
	StepResolveIP = "resolve_ip"
	StepLocate    = "locate"
	StepPredict   = "predict"
)

type Metrics struct {
	Lookups     *prometheus.CounterVec
	StepErrors  *prometheus.CounterVec
	StepRetries *prometheus.CounterVec
	StepSeconds *prometheus.HistogramVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		Lookups: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "orbit_lookups_total",
			Help: "Total number of completed next-pass lookups.",
		}, []string{"status"}),
		StepErrors: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "orbit_step_errors_total",
			Help: "Total number of failed lookup steps.",
		}, []string{"step"}),
		StepRetries: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "orbit_step_retries_total",
			Help: "Total number of retried lookup step attempts.",
		}, []string{"step"}),
		StepSeconds: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "orbit_step_duration_seconds",
			Help:    "Duration of each lookup step against its upstream API.",
			Buckets: prometheus.DefBuckets,
		}, []string{"step"}),
	}
}
