// Package metrics constructs the metrics the application will track.
package metrics

import (
	"context"
	"expvar"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// This holds the single instance of the metrics value needed for
// collecting metrics. The expvar package is already based on a singleton
// for the different metrics that are registered with the package so there
// isn't much choice here.
var m *metrics

// =============================================================================

// metrics represents the set of metrics we gather. These fields are
// safe to be accessed concurrently thanks to expvar and prometheus. No
// extra abstraction is required.
type metrics struct {
	goroutines *expvar.Int
	requests   *expvar.Int
	errors     *expvar.Int
	panics     *expvar.Int

	cache    *prometheus.CounterVec
	upstream *prometheus.HistogramVec
}

// init constructs the metrics value that will be used to capture metrics.
// The metrics value is stored in a package level variable since everything
// inside of expvar and the default prometheus registry is registered as a
// singleton.
func init() {
	m = &metrics{
		goroutines: expvar.NewInt("goroutines"),
		requests:   expvar.NewInt("requests"),
		errors:     expvar.NewInt("errors"),
		panics:     expvar.NewInt("panics"),

		cache: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gateway",
			Name:      "cache_lookups_total",
			Help:      "Response cache lookups by cache and result.",
		}, []string{"cache", "result"}),

		upstream: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "gateway",
			Name:      "upstream_call_duration_seconds",
			Help:      "Full node RPC call latency by method and outcome.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "outcome"}),
	}
}

// =============================================================================

// Metrics will be supported through the context.

// ctxKey represents the type of value for the context key.
type ctxKey int

// key is how metric values are stored/retrieved.
const key ctxKey = 1

// =============================================================================

// Set sets the metrics data into the context.
func Set(ctx context.Context) context.Context {
	return context.WithValue(ctx, key, m)
}

// AddGoroutines refreshes the goroutine metric every 100 requests.
func AddGoroutines(ctx context.Context) {
	if v, ok := ctx.Value(key).(*metrics); ok {
		if v.requests.Value()%100 == 0 {
			v.goroutines.Set(int64(runtime.NumGoroutine()))
		}
	}
}

// AddRequests increments the request metric by 1.
func AddRequests(ctx context.Context) {
	if v, ok := ctx.Value(key).(*metrics); ok {
		v.requests.Add(1)
	}
}

// AddErrors increments the errors metric by 1.
func AddErrors(ctx context.Context) {
	if v, ok := ctx.Value(key).(*metrics); ok {
		v.errors.Add(1)
	}
}

// AddPanics increments the panics metric by 1.
func AddPanics(ctx context.Context) {
	if v, ok := ctx.Value(key).(*metrics); ok {
		v.panics.Add(1)
	}
}

// =============================================================================

// CacheHit records a lookup answered from the named cache.
func CacheHit(cache string) {
	m.cache.WithLabelValues(cache, "hit").Inc()
}

// CacheMiss records a lookup the named cache could not answer.
func CacheMiss(cache string) {
	m.cache.WithLabelValues(cache, "miss").Inc()
}

// ObserveUpstream records the latency and outcome of a full node call.
func ObserveUpstream(method string, took time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.upstream.WithLabelValues(method, outcome).Observe(took.Seconds())
}
