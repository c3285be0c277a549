package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/opsdeck/backoffice/internal/logger"
)

var (
	APIRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bo_api_requests_total",
			Help: "Number of API requests",
		},
		[]string{"method", "path", "status"},
	)
	APILatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bo_api_latency_seconds",
			Help:    "API latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
	PageRenders = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bo_page_renders_total",
			Help: "Resolved render plans by page",
		},
		[]string{"page", "strategy"},
	)
	BindingCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bo_binding_calls_total",
			Help: "Executed API bindings by outcome",
		},
		[]string{"page", "api", "outcome"},
	)
	StaleResponses = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bo_stale_responses_total",
			Help: "List responses discarded by the sequence guard",
		},
	)
	Pages = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "bo_pages_total",
			Help: "Number of stored page definitions",
		},
	)
)

func init() {
	prometheus.MustRegister(APIRequests, APILatency, PageRenders, BindingCalls, StaleResponses, Pages)
}

// PageCounter reports the number of stored page definitions.
type PageCounter interface {
	Count(ctx context.Context) (int, error)
}

// StartPageGauge refreshes the page gauge periodically.
func StartPageGauge(ctx context.Context, c PageCounter) {
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			n, err := c.Count(ctx)
			if err != nil {
				logger.L.Error("count pages", "err", err)
			} else {
				Pages.Set(float64(n))
			}
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
}
