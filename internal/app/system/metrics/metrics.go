// Package metrics exposes Prometheus request metrics, feed fetch counters
// and board record gauges.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	metricsstore "github.com/dalemusser/prepboard/internal/app/store/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const namespace = "prepboard"

// Metrics owns a private registry so tests can create as many as they like.
type Metrics struct {
	reg         *prometheus.Registry
	requests    *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	feedFetches *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route pattern and status code.",
		}, []string{"method", "route", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		feedFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feed_fetches_total",
			Help:      "Upstream feed fetches by result.",
		}, []string{"result"}),
	}
	m.reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests,
		m.duration,
		m.feedFetches,
	)
	return m
}

// Middleware records every request under its chi route pattern, so
// /api/announcements/{id} is one series regardless of id.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil {
			if p := rc.RoutePattern(); p != "" {
				route = p
			}
		}
		code := ww.Status()
		if code == 0 {
			code = http.StatusOK
		}
		m.requests.WithLabelValues(r.Method, route, strconv.Itoa(code)).Inc()
		m.duration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

// FeedFetch counts one upstream fetch; result is "ok" or "error".
func (m *Metrics) FeedFetch(result string) {
	if m == nil {
		return
	}
	m.feedFetches.WithLabelValues(result).Inc()
}

// CountFunc returns the current board totals.
type CountFunc func(ctx context.Context) (metricsstore.Counts, error)

// RegisterRecordCounts adds gauges that query fn on each scrape.
func (m *Metrics) RegisterRecordCounts(fn CountFunc, timeout time.Duration, logger *zap.Logger) error {
	return m.reg.Register(&recordCollector{
		fetch:   fn,
		timeout: timeout,
		log:     logger,
		desc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "records"),
			"Stored records by kind.",
			[]string{"kind"}, nil,
		),
	})
}

type recordCollector struct {
	fetch   CountFunc
	timeout time.Duration
	log     *zap.Logger
	desc    *prometheus.Desc
}

func (c *recordCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.desc
}

func (c *recordCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	counts, err := c.fetch(ctx)
	if err != nil {
		c.log.Warn("record counts for metrics failed", zap.Error(err))
	}
	for kind, v := range map[string]int64{
		"announcements":      counts.Announcements,
		"assignments":        counts.Assignments,
		"assignments_open":   counts.OpenAssignments,
		"assignments_closed": counts.ClosedAssignments,
	} {
		ch <- prometheus.MustNewConstMetric(c.desc, prometheus.GaugeValue, float64(v), kind)
	}
}
