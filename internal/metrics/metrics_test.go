package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsMiddlewareIncrementsCounters(t *testing.T) {
	gin.SetMode(gin.TestMode)

	InitMetrics()

	r := gin.New()
	r.Use(Middleware())
	r.GET("/test", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "/test", "200"))

	req, _ := http.NewRequest(http.MethodGet, "/test", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "/test", "200"))
	if after != before+1 {
		t.Fatalf("expected counter to grow by 1, got %v -> %v", before, after)
	}
}

func TestObserveUploadSplitsByKind(t *testing.T) {
	InitMetrics()

	created := testutil.ToFloat64(uploadsTotal.WithLabelValues("create"))
	replaced := testutil.ToFloat64(uploadsTotal.WithLabelValues("replace"))
	bytesBefore := testutil.ToFloat64(uploadedBytesTotal)

	ObserveUpload(1024, false)
	ObserveUpload(10, true)

	if got := testutil.ToFloat64(uploadsTotal.WithLabelValues("create")); got != created+1 {
		t.Fatalf("create counter: expected %v, got %v", created+1, got)
	}
	if got := testutil.ToFloat64(uploadsTotal.WithLabelValues("replace")); got != replaced+1 {
		t.Fatalf("replace counter: expected %v, got %v", replaced+1, got)
	}
	if got := testutil.ToFloat64(uploadedBytesTotal); got != bytesBefore+1034 {
		t.Fatalf("bytes counter: expected %v, got %v", bytesBefore+1034, got)
	}
}

func TestRegisterExposesMetricsEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)

	InitMetrics()
	ObserveLinkCache(true)

	r := gin.New()
	Register(r, "/metrics")

	req, _ := http.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()

	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 from /metrics, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "docadmin_link_cache_total") {
		t.Fatalf("expected link cache counter in /metrics output")
	}
}
