package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "partediario_http_requests_total",
		Help: "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "partediario_http_request_duration_seconds",
		Help:    "HTTP request latency by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	actividadesRegistradas = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "partediario_actividades_total",
		Help: "Activities committed, by kind.",
	}, []string{"tipo"})

	reversionesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "partediario_reversiones_total",
		Help: "Activities successfully reversed.",
	})
)

// Metrics records request counts and latency per route. Routes with no
// matching handler are labeled "unmatched" to keep cardinality bounded.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// ContarActividad bumps the per-kind activity counter after a commit.
func ContarActividad(tipo string) { actividadesRegistradas.WithLabelValues(tipo).Inc() }

// ContarReversion bumps the reversal counter after a commit.
func ContarReversion() { reversionesTotal.Inc() }
