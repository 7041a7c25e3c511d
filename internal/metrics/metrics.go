// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "crimewatch"

var (
	// VotesCast counts vote transitions by resulting status
	VotesCast = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "votes_cast_total",
		Help:      "Vote transitions by resulting status.",
	}, []string{"status"})

	CommentsAdded = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "comments_added_total",
		Help:      "Comments appended to crime reports.",
	})

	CrimesReported = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "crimes_reported_total",
		Help:      "Crime reports submitted by crime type.",
	}, []string{"crime_type"})

	LawyerPromotions = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "lawyer_promotions_total",
		Help:      "Users promoted to the LAWYER role.",
	})

	// StatsCache counts analytics cache lookups by result (hit, miss, error)
	StatsCache = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stats_cache_total",
		Help:      "Analytics cache lookups by result.",
	}, []string{"result"})

	FeedSubscribers = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "feed_subscribers",
		Help:      "Open live crime feed connections.",
	})

	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by route pattern, method and status.",
	}, []string{"route", "method", "status"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route pattern.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method"})
)

// Handler serves the default registry
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware records request counts and latency labelled by chi route pattern
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		httpRequests.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
		httpDuration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}
