package httpapi

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func scrapeMetrics(t *testing.T) []byte {
	t.Helper()
	rec := httptest.NewRecorder()
	promhttp.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("/metrics status=%d", rec.Code)
	}
	return rec.Body.Bytes()
}

func TestMetricsMiddlewareEmitsRequestCounters(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	rec := httptest.NewRecorder()
	MetricsMiddleware(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/test", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	if body := scrapeMetrics(t); !bytes.Contains(body, []byte("neurod_http_requests_total")) {
		t.Fatal("neurod_http_requests_total not exposed")
	}
}

func TestMetricsMiddlewareLabelsByRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/generate", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	MetricsMiddleware(r).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/generate", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	// the counter must be keyed by the chi pattern, not a raw path variant
	got := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("/generate", http.MethodPost, "200"))
	if got < 1 {
		t.Fatalf("no samples recorded under the /generate route pattern")
	}
}

func TestIncrementBackpressureCountsByReason(t *testing.T) {
	before := testutil.ToFloat64(backpressureTotal.WithLabelValues("queue_full"))
	IncrementBackpressure("queue_full")
	IncrementBackpressure("queue_full")
	after := testutil.ToFloat64(backpressureTotal.WithLabelValues("queue_full"))
	if after != before+2 {
		t.Fatalf("queue_full counter: before=%v after=%v", before, after)
	}

	// an empty reason is recorded under "unspecified"
	before = testutil.ToFloat64(backpressureTotal.WithLabelValues("unspecified"))
	IncrementBackpressure("")
	after = testutil.ToFloat64(backpressureTotal.WithLabelValues("unspecified"))
	if after != before+1 {
		t.Fatalf("unspecified counter: before=%v after=%v", before, after)
	}
}
