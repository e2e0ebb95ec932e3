package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	SightingsProcessed *prometheus.CounterVec
	ResolutionFailures *prometheus.CounterVec
	StoreWriteFailures prometheus.Counter
	RadiusQuerySeconds prometheus.Histogram
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		SightingsProcessed: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "geomap_sightings_processed_total",
			Help: "Total number of processed sightings by source and outcome.",
		}, []string{"source", "status"}),
		ResolutionFailures: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "geomap_resolution_failures_total",
			Help: "Total number of dropped sightings by failure reason.",
		}, []string{"reason"}),
		StoreWriteFailures: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "geomap_store_write_failures_total",
			Help: "Total number of failed aggregate store writes.",
		}),
		RadiusQuerySeconds: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Name:    "geomap_radius_query_duration_seconds",
			Help:    "Duration of radius queries including clustering.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}
