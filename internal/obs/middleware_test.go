package obs_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/pos-terminal/internal/obs"
)

func TestHTTPObsMiddlewareRecordsRouteMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := obs.NewHTTPMetrics("pos", nil, reg)

	r := chi.NewRouter()
	r.Use(obs.RoutePatternMiddleware)
	r.Use(obs.HTTPObs{Metrics: metrics}.Middleware)
	r.Get("/carts/{cartID}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	srv := httptest.NewServer(r)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/carts/abc123")
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.Equal(t, http.StatusOK, resp.StatusCode)

	got := testutil.ToFloat64(metrics.ReqTotal.WithLabelValues(http.MethodGet, "/carts/{cartID}", "200"))
	require.Equal(t, float64(1), got)
	require.Equal(t, float64(0), testutil.ToFloat64(metrics.InFlight))
}

func TestStatusRecorderCapturesStatusAndBytes(t *testing.T) {
	rec := obs.NewStatusRecorder(httptest.NewRecorder())
	rec.WriteHeader(http.StatusNotFound)
	n, err := rec.Write([]byte("missing"))
	require.NoError(t, err)
	require.Equal(t, 7, n)
	require.Equal(t, http.StatusNotFound, rec.Status())
	require.Equal(t, int64(7), rec.BytesWritten())
}

func TestParseBucketsCSV(t *testing.T) {
	require.Nil(t, obs.ParseBucketsCSV("  "))
	require.Equal(t, []float64{5, 50, 500}, obs.ParseBucketsCSV("5, 50,500, junk, -1"))
}
