package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "match_occupancy_"

	ResultSuccess = "success"
	ResultError   = "error"
)

var (
	registerOnce sync.Once

	aggregationTotal   *prometheus.CounterVec
	aggregationLatency *prometheus.HistogramVec

	statsCacheTotal *prometheus.CounterVec

	ingestedRecords *prometheus.CounterVec

	refreshTotal   *prometheus.CounterVec
	refreshLatency prometheus.Histogram

	plotRenderTotal *prometheus.CounterVec
)

// Init registers the service metrics on the default registry.
func Init() {
	registerOnce.Do(func() {
		aggregationTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "aggregation_total",
				Help: "Total match metric aggregations by metric and result",
			},
			[]string{"metric", "result"},
		)
		aggregationLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "aggregation_latency_seconds",
				Help:    "Match metric aggregation latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"metric"},
		)
		statsCacheTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "stats_cache_total",
				Help: "Match stats cache lookups by outcome",
			},
			[]string{"outcome"},
		)
		ingestedRecords = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "ingested_records_total",
				Help: "Occupancy records stored by source",
			},
			[]string{"source"},
		)
		refreshTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "refresh_total",
				Help: "Upstream refresh runs by result",
			},
			[]string{"result"},
		)
		refreshLatency = prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "refresh_latency_seconds",
				Help:    "Upstream refresh latency in seconds",
				Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
			},
		)
		plotRenderTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "plot_render_total",
				Help: "Match plots rendered by country and result",
			},
			[]string{"country", "result"},
		)

		prometheus.MustRegister(
			aggregationTotal,
			aggregationLatency,
			statsCacheTotal,
			ingestedRecords,
			refreshTotal,
			refreshLatency,
			plotRenderTotal,
		)
	})
}

func resultOf(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultSuccess
}

// ObserveAggregation records one aggregation run.
func ObserveAggregation(metric string, err error, duration time.Duration) {
	if aggregationTotal != nil {
		aggregationTotal.WithLabelValues(metric, resultOf(err)).Inc()
	}
	if aggregationLatency != nil {
		aggregationLatency.WithLabelValues(metric).Observe(duration.Seconds())
	}
}

// IncStatsCache counts a cache lookup; hit is false on a miss.
func IncStatsCache(hit bool) {
	if statsCacheTotal == nil {
		return
	}
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	statsCacheTotal.WithLabelValues(outcome).Inc()
}

// AddIngestedRecords counts stored records.
func AddIngestedRecords(source string, count int) {
	if count <= 0 {
		return
	}
	if source == "" {
		source = "unknown"
	}
	if ingestedRecords != nil {
		ingestedRecords.WithLabelValues(source).Add(float64(count))
	}
}

// ObserveRefresh records one refresher run.
func ObserveRefresh(err error, duration time.Duration) {
	if refreshTotal != nil {
		refreshTotal.WithLabelValues(resultOf(err)).Inc()
	}
	if refreshLatency != nil {
		refreshLatency.Observe(duration.Seconds())
	}
}

func IncPlotRender(country string, err error) {
	if plotRenderTotal != nil {
		plotRenderTotal.WithLabelValues(country, resultOf(err)).Inc()
	}
}
