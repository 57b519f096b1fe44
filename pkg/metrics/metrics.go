// Package metrics exposes prometheus collectors for the attendance engine
// on a dedicated listener, separate from the admin API port.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const subsystem = "attendance"

// latencyBuckets covers fast admin reads up to slow batch fan-outs.
var latencyBuckets = []float64{
	25, 50, 75, 100, 150, 200, 300, 400, 500,
	750, 1000, 1500, 2000,
	3000, 5000, 7500, 10000, 15000,
	30000, 60000,
}

var (
	reqCnt = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Subsystem: subsystem,
			Name:      "requests_total",
			Help:      "How many HTTP requests processed, partitioned by status code, method and handler.",
		},
		[]string{"code", "method", "handler"},
	)

	reqDur = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Subsystem: subsystem,
			Name:      "request_duration_ms",
			Help:      "HTTP request latency in milliseconds.",
			Buckets:   latencyBuckets,
		},
		[]string{"handler"},
	)

	// ExtensionsGranted counts validity extensions credited, by skip kind.
	ExtensionsGranted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Subsystem: subsystem,
			Name:      "extensions_granted_total",
			Help:      "Validity extensions credited, partitioned by skip kind.",
		},
		[]string{"kind"},
	)

	// SkipNoops counts replayed skip events that resolved as idempotent no-ops.
	SkipNoops = prometheus.NewCounter(
		prometheus.CounterOpts{
			Subsystem: subsystem,
			Name:      "skip_noops_total",
			Help:      "Skip events ignored because the day was already a leave.",
		},
	)

	// BatchOutcomes counts per-subscription results of global leave batches.
	BatchOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Subsystem: subsystem,
			Name:      "batch_leave_outcomes_total",
			Help:      "Per-subscription outcomes of global leave batches.",
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(reqCnt, reqDur, ExtensionsGranted, SkipNoops, BatchOutcomes)
}

// HandlerMiddleware records request count and latency per route.
func HandlerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		handler := c.FullPath()
		if handler == "" {
			handler = c.Request.URL.Path
		}
		reqCnt.WithLabelValues(strconv.Itoa(c.Writer.Status()), c.Request.Method, handler).Inc()
		reqDur.WithLabelValues(handler).Observe(float64(time.Since(start).Milliseconds()))
	}
}

// Serve starts the metrics listener on addr. Runs until the process stops;
// call it from a goroutine.
func Serve(addr string, log *zap.SugaredLogger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Errorf("metrics listener stopped: %v", err)
	}
}
