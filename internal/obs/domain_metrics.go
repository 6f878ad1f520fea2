package obs

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// CheckoutTotal counts sale submission outcomes.
	CheckoutTotal *prometheus.CounterVec
	// RegisterCloseTotal counts register close outcomes.
	RegisterCloseTotal *prometheus.CounterVec
	// UpstreamRequestTotal counts calls to the business-management API.
	UpstreamRequestTotal *prometheus.CounterVec
	// UpstreamRequestLatency records upstream call latency in milliseconds.
	UpstreamRequestLatency *prometheus.HistogramVec
	// ReceiptRenderTotal counts PDF document renders.
	ReceiptRenderTotal *prometheus.CounterVec
)

// MustRegisterDomainMetrics initialises and registers POS domain collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		CheckoutTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkout_total",
			Help:      "Count of sale submission outcomes.",
		}, []string{"result"})
		RegisterCloseTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "register_close_total",
			Help:      "Count of register close outcomes.",
		}, []string{"result"})
		UpstreamRequestTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_request_total",
			Help:      "Count of upstream API calls by endpoint and outcome.",
		}, []string{"endpoint", "result"})
		UpstreamRequestLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_request_duration_ms",
			Help:      "Latency of upstream API calls in milliseconds.",
			Buckets:   []float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		}, []string{"endpoint"})
		ReceiptRenderTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "receipt_render_total",
			Help:      "Count of PDF document renders by kind and outcome.",
		}, []string{"kind", "result"})

		reg.MustRegister(
			CheckoutTotal,
			RegisterCloseTotal,
			UpstreamRequestTotal,
			UpstreamRequestLatency,
			ReceiptRenderTotal,
		)
	})
}

// ObserveUpstream records one upstream call outcome. Safe to call before
// registration; it simply drops the sample.
func ObserveUpstream(endpoint, result string, millis float64) {
	if UpstreamRequestTotal != nil {
		UpstreamRequestTotal.WithLabelValues(endpoint, result).Inc()
	}
	if UpstreamRequestLatency != nil {
		UpstreamRequestLatency.WithLabelValues(endpoint).Observe(millis)
	}
}
