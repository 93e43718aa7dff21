// Package metrics exposes Prometheus instrumentation for the dashboard.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/AdrianWisniewskiKaggle/Country-Specific-User-Ranking-Dashboard/internal/logger"
)

var (
	// RendersTotal counts render invocations.
	RendersTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rankdash_renders_total",
		Help: "Total number of render invocations",
	})

	// SentinelRendersTotal counts renders that matched no records.
	SentinelRendersTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rankdash_sentinel_renders_total",
		Help: "Total number of renders that produced the empty-result sentinel row",
	})

	// RowsEmittedTotal counts display rows emitted across all renders.
	RowsEmittedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rankdash_rows_emitted_total",
		Help: "Total number of display rows emitted",
	})

	// RenderDuration observes render latency.
	RenderDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "rankdash_render_duration_seconds",
		Help:    "Render invocation latency",
		Buckets: prometheus.DefBuckets,
	})

	// DatasetRecords reports the size of the loaded table.
	DatasetRecords = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "rankdash_dataset_records",
		Help: "Number of records in the loaded dataset",
	})

	// RequestsTotal counts HTTP requests by status class.
	RequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rankdash_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"path", "status"})
)

// Init registers all collectors and serves the /metrics endpoint on addr
// in a background goroutine.
func Init(addr string) {
	prometheus.MustRegister(
		RendersTotal,
		SentinelRendersTotal,
		RowsEmittedTotal,
		RenderDuration,
		DatasetRecords,
		RequestsTotal,
	)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	logger.Info("metrics endpoint listening", "addr", addr)

	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			logger.Error("metrics endpoint failed", "addr", addr, "error", err.Error())
		}
	}()
}
