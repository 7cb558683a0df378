package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all prometheus metrics
type Metrics struct {
	APICalls         prometheus.Counter
	PollCycles       *prometheus.CounterVec
	FetchDuration    prometheus.Histogram
	QuotaCallsUsed   prometheus.Gauge
	QuotaUsedPercent prometheus.Gauge
	BoostActive      *prometheus.GaugeVec
	ErrorsCount      *prometheus.CounterVec
}

// NewMetrics creates new prometheus metrics
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		APICalls: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_calls_total",
			Help:      "The total number of outbound Swedavia API calls",
		}),
		PollCycles: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "poll_cycles_total",
			Help:      "The total number of poll cycles per airport",
		}, []string{"airport", "result"}),
		FetchDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Time taken to fetch flight data for one poll cycle",
			Buckets:   prometheus.DefBuckets,
		}),
		QuotaCallsUsed: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "quota_calls_used",
			Help:      "API calls recorded in the 30-day rolling window",
		}),
		QuotaUsedPercent: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "quota_used_percent",
			Help:      "Percentage of the 30-day API call quota used",
		}),
		BoostActive: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "boost_active",
			Help:      "Whether boost mode is active per subscriber",
		}, []string{"subscriber"}),
		ErrorsCount: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "The total number of errors",
		}, []string{"operation"}),
	}
}
