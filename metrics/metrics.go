// Package metrics holds the Prometheus collectors for the atlas engine. They
// are registered with the default registry on import.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	AtlasUpdatesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "geoatlas_updates_total",
		Help: "Atlas update requests by chosen mode",
	}, []string{"mode"})
	AtlasUpdateDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "geoatlas_update_duration_ms",
		Help:    "Atlas update duration in milliseconds",
		Buckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	}, []string{"mode"})
	AtlasSupersededTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "geoatlas_superseded_total",
		Help: "Atlas updates abandoned for a newer request",
	})
	StampsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "geoatlas_stamps_total",
		Help: "Photos stamped into an atlas",
	})
	StampsSkippedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "geoatlas_stamps_skipped_total",
		Help: "Photos not stamped, by reason",
	}, []string{"reason"})

	FetchRequestsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "geoatlas_fetch_requests_total",
		Help: "Photo downloads sent to the network",
	})
	FetchFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "geoatlas_fetch_failures_total",
		Help: "Photo downloads that failed",
	})
	FetchCacheHitsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "geoatlas_fetch_cache_hits_total",
		Help: "Photo cache hits by layer",
	}, []string{"layer"})
	FetchCacheMissesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "geoatlas_fetch_cache_misses_total",
		Help: "Photo cache misses by layer",
	}, []string{"layer"})

	LocateTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "geoatlas_locate_total",
		Help: "Country lookups by result",
	}, []string{"result"})
)

func init() {
	prometheus.MustRegister(AtlasUpdatesTotal)
	prometheus.MustRegister(AtlasUpdateDurationMs)
	prometheus.MustRegister(AtlasSupersededTotal)
	prometheus.MustRegister(StampsTotal)
	prometheus.MustRegister(StampsSkippedTotal)
	prometheus.MustRegister(FetchRequestsTotal)
	prometheus.MustRegister(FetchFailuresTotal)
	prometheus.MustRegister(FetchCacheHitsTotal)
	prometheus.MustRegister(FetchCacheMissesTotal)
	prometheus.MustRegister(LocateTotal)
}

// Handler serves the default registry for scraping.
func Handler() http.Handler { return promhttp.Handler() }
