package obs_test

import (
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/fedya1922n/food-shop/internal/obs"
)

func TestHTTPMetricsLabelsByRoutePattern(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := obs.NewHTTPMetrics("foodshop", []float64{1, 10}, registry)

	r := chi.NewRouter()
	r.Use(obs.RoutePatternMiddleware)
	r.Use(obs.HTTPObs{Metrics: metrics}.Middleware)
	r.Get("/api/v1/products/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/products/p-milk", nil))
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rr.Code)
	}

	total := testutil.ToFloat64(metrics.ReqTotal.WithLabelValues(http.MethodGet, "/api/v1/products/{id}", "204"))
	if total != 1 {
		t.Fatalf("expected counter 1, got %v", total)
	}
	if samples := testutil.CollectAndCount(metrics.ReqDur); samples == 0 {
		t.Fatal("expected a histogram sample")
	}
	if val := testutil.ToFloat64(metrics.InFlight); val != 0 {
		t.Fatalf("expected no in-flight requests, got %v", val)
	}
}

func TestTracingMiddlewareNamesSpanByRoutePattern(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)))
	t.Cleanup(func() { otel.SetTracerProvider(noop.NewTracerProvider()) })

	r := chi.NewRouter()
	r.Use(obs.RoutePatternMiddleware)
	r.Use(obs.TracingMiddleware)
	r.Get("/api/v1/products/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/products/p-milk", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected one span, got %d", len(spans))
	}
	// The span carries the matched pattern, not the raw path.
	if got := spans[0].Name(); got != "GET /api/v1/products/{id}" {
		t.Fatalf("span name = %q", got)
	}
}

func TestNewHTTPMetricsReusesRegisteredCollectors(t *testing.T) {
	registry := prometheus.NewRegistry()
	first := obs.NewHTTPMetrics("foodshop", nil, registry)
	second := obs.NewHTTPMetrics("foodshop", nil, registry)
	if first.ReqTotal != second.ReqTotal {
		t.Fatal("expected the counter to be reused on re-registration")
	}
}

func TestParseBucketsCSV(t *testing.T) {
	cases := map[string][]float64{
		"":               nil,
		"  ":             nil,
		"5,10,50":        {5, 10, 50},
		" 5 , ,x,-1,10 ": {5, 10},
	}
	for in, want := range cases {
		if got := obs.ParseBucketsCSV(in); !reflect.DeepEqual(got, want) {
			t.Fatalf("ParseBucketsCSV(%q) = %v, want %v", in, got, want)
		}
	}
}
