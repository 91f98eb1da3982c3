package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsMiddleware_RecordsRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Post("/v1/research", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("{}"))
	})

	req := httptest.NewRequest(http.MethodPost, "/v1/research", http.NoBody)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if v := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("POST", "/v1/research", "200")); v < 1 {
		t.Errorf("expected http_requests_total >= 1, got %f", v)
	}
	if testutil.CollectAndCount(httpRequestDuration) == 0 {
		t.Error("expected http_request_duration_seconds to have observations")
	}
}

func TestMetricsMiddleware_DifferentStatusCodes(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/fail", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusBadGateway) })

	tests := []struct {
		path   string
		status string
	}{
		{"/health", "200"},
		{"/fail", "502"},
	}
	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, tc.path, http.NoBody))

			if v := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", tc.path, tc.status)); v < 1 {
				t.Errorf("expected requests_total for %s/%s >= 1, got %f", tc.path, tc.status, v)
			}
		})
	}
}

func TestMetricsMiddleware_WithoutChiContext(t *testing.T) {
	h := Middleware()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/raw", http.NoBody))

	if v := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "unknown", "418")); v < 1 {
		t.Errorf("expected unknown path label, got %f", v)
	}
}

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", "unknown"},
		{"/v1/research", "/v1/research"},
	}
	for _, tc := range tests {
		if got := normalizePath(tc.input); got != tc.expected {
			t.Errorf("normalizePath(%q) = %q, want %q", tc.input, got, tc.expected)
		}
	}
}
