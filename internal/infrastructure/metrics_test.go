package infrastructure

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := NewMetrics()

	m.ObserveRun(nil)
	m.ObserveRun(nil)
	m.ObserveRun(errors.New("boom"))
	m.AddRowsRemoved("missing_values", 3)
	m.AddRowsRemoved("streams", 0)
	m.ObserveStage("clean", 20*time.Millisecond)
	m.ObserveRequest(http.MethodGet, "/healthz", http.StatusOK, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RunsTotal.WithLabelValues(RunStatusSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RunsTotal.WithLabelValues(RunStatusFailure)))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.RowsRemoved.WithLabelValues("missing_values")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.RowsRemoved))
	assert.Equal(t, 1, testutil.CollectAndCount(m.StageDuration))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "/healthz", "200")))
}

func TestMetrics_Handler(t *testing.T) {
	m := NewMetrics()
	m.ObserveRun(nil)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `trackstats_runs_total{status="success"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}

func TestMetrics_SeparateRegistries(t *testing.T) {
	a, b := NewMetrics(), NewMetrics()
	a.ObserveRun(nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(a.RunsTotal.WithLabelValues(RunStatusSuccess)))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.RunsTotal.WithLabelValues(RunStatusSuccess)))

	families, err := a.Registry().Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "trackstats_runs_total")
}
