package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	initOnce sync.Once

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docadmin_http_requests_total",
			Help: "Total HTTP requests handled by the admin API.",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "docadmin_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	uploadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docadmin_uploads_total",
			Help: "Documents stored by the upload collaborator, by kind (create, replace).",
		},
		[]string{"kind"},
	)

	uploadedBytesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "docadmin_uploaded_bytes_total",
			Help: "Bytes written to the object store for uploaded documents.",
		},
	)

	linkCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docadmin_link_cache_total",
			Help: "Document link cache lookups, by result (hit, miss).",
		},
		[]string{"result"},
	)
)

// InitMetrics registers collectors with the default registry. Safe to call more than once.
func InitMetrics() {
	initOnce.Do(func() {
		prometheus.MustRegister(
			httpRequestsTotal,
			httpRequestDuration,
			uploadsTotal,
			uploadedBytesTotal,
			linkCacheTotal,
		)
	})
}

// Register attaches the Prometheus metrics endpoint to the router.
func Register(router *gin.Engine, path string) {
	router.GET(path, gin.WrapH(promhttp.Handler()))
}

// Middleware records request counts and latency per matched route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())

		httpRequestsTotal.WithLabelValues(c.Request.Method, route, status).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// ObserveUpload counts a stored document. replaced is true when it superseded an earlier file.
func ObserveUpload(size int64, replaced bool) {
	kind := "create"
	if replaced {
		kind = "replace"
	}
	uploadsTotal.WithLabelValues(kind).Inc()
	if size > 0 {
		uploadedBytesTotal.Add(float64(size))
	}
}

// ObserveLinkCache counts a document link cache lookup.
func ObserveLinkCache(hit bool) {
	if hit {
		linkCacheTotal.WithLabelValues("hit").Inc()
		return
	}
	linkCacheTotal.WithLabelValues("miss").Inc()
}
