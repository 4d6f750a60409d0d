// Package metrics holds the Prometheus collectors of the inventory service.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assettrack_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "assettrack_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "assettrack_api_active_requests",
			Help: "Current number of in-flight API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assettrack_api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Identifier allocation
	IDsAllocated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assettrack_ids_allocated_total",
			Help: "Identifiers handed out by the sequential allocator",
		},
		[]string{"table"},
	)

	AllocationConflicts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assettrack_id_allocation_conflicts_total",
			Help: "Allocations rejected because the computed id was already taken",
		},
		[]string{"table"},
	)

	// Status audit trail
	StatusTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assettrack_item_status_transitions_total",
			Help: "Item status changes written to the history table",
		},
		[]string{"status"},
	)

	StatusUnchanged = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "assettrack_item_status_unchanged_total",
			Help: "Item updates that kept the stored status",
		},
	)

	// Uploads
	UploadChunks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "assettrack_upload_chunks_total",
			Help: "Upload chunks appended to staging files",
		},
	)

	UploadsFinalized = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assettrack_uploads_finalized_total",
			Help: "Uploads moved from staging into the blob store",
		},
		[]string{"driver"},
	)

	UploadBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "assettrack_upload_size_bytes",
			Help:    "Size of finalized uploads",
			Buckets: prometheus.ExponentialBuckets(16*1024, 4, 8),
		},
	)

	StagingSwept = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "assettrack_upload_staging_swept_total",
			Help: "Abandoned staging files removed by the sweeper",
		},
	)

	BlobErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assettrack_blob_errors_total",
			Help: "Blob store operations that failed",
		},
		[]string{"operation"},
	)
)

// RecordAPIRequest records a finished API request.
func RecordAPIRequest(method, endpoint string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest increments or decrements the in-flight gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

func RecordAllocation(table string, conflict bool) {
	if conflict {
		AllocationConflicts.WithLabelValues(table).Inc()
		return
	}
	IDsAllocated.WithLabelValues(table).Inc()
}

func RecordStatusChange(changed bool, status string) {
	if !changed {
		StatusUnchanged.Inc()
		return
	}
	StatusTransitions.WithLabelValues(status).Inc()
}

func RecordUploadFinalized(driver string, size int64) {
	UploadsFinalized.WithLabelValues(driver).Inc()
	UploadBytes.Observe(float64(size))
}
