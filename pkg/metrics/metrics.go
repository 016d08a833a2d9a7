// Package metrics exposes Prometheus instruments for the recommendation
// pipeline, the oracle and catalog transports, and the HTTP layer.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Pipeline stage names.
const (
	StageTranslate = "translate"
	StageResolve   = "resolve"
	StageDiscover  = "discover"
	StageEnrich    = "enrich"
	StagePersist   = "persist"
)

var (
	PipelineRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinemind_pipeline_runs_total",
			Help: "Recommendation pipeline runs by outcome category",
		},
		[]string{"outcome"}, // "ok" or an apperrors category
	)

	PipelineStageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cinemind_pipeline_stage_duration_seconds",
			Help:    "Duration of each recommendation pipeline stage",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"stage"},
	)

	OracleRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinemind_oracle_requests_total",
			Help: "Language-model calls by provider and result",
		},
		[]string{"provider", "result"},
	)

	CatalogRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinemind_catalog_requests_total",
			Help: "TMDb calls by operation and result",
		},
		[]string{"operation", "result"},
	)

	CatalogRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cinemind_catalog_request_duration_seconds",
			Help:    "TMDb call latency",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"operation"},
	)

	ThumbnailFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cinemind_thumbnail_fallbacks_total",
			Help: "Candidates that received the placeholder thumbnail",
		},
	)

	KeywordCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinemind_keyword_cache_lookups_total",
			Help: "Keyword id cache lookups by result",
		},
		[]string{"result"}, // "hit", "miss", "error"
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cinemind_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)

// RecordPipelineRun counts one generation request. outcome is "ok" or an error category.
func RecordPipelineRun(outcome string) {
	PipelineRuns.WithLabelValues(outcome).Inc()
}

// ObserveStage records how long a pipeline stage took.
func ObserveStage(stage string, start time.Time) {
	PipelineStageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

// RecordOracleRequest counts one oracle call.
func RecordOracleRequest(provider string, err error) {
	OracleRequests.WithLabelValues(provider, resultLabel(err)).Inc()
}

// RecordCatalogRequest counts one catalog call and its latency.
func RecordCatalogRequest(operation string, duration time.Duration, err error) {
	CatalogRequests.WithLabelValues(operation, resultLabel(err)).Inc()
	CatalogRequestDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordThumbnailFallback counts a placeholder thumbnail.
func RecordThumbnailFallback() {
	ThumbnailFallbacks.Inc()
}

// RecordKeywordCacheLookup counts a keyword cache lookup.
func RecordKeywordCacheLookup(result string) {
	KeywordCacheLookups.WithLabelValues(result).Inc()
}

// RecordAPIRequest records HTTP latency for a route pattern.
func RecordAPIRequest(method, route string, status int, duration time.Duration) {
	APIRequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(duration.Seconds())
}

func resultLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
