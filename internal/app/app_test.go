package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trackstats/internal/config"
	"trackstats/internal/shared/testutil"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Input.Encoding = "utf8"
	cfg.Storage.DatabasePath = filepath.Join(t.TempDir(), "runs.db")
	cfg.Export.Dir = t.TempDir()
	cfg.Server.ShutdownTimeout = 5 * time.Second
	return cfg
}

func newTestApp(t *testing.T, cfg *config.Config) *Application {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	application, err := NewApplication(cfg, logger)
	require.NoError(t, err)
	t.Cleanup(func() { application.Close(context.Background()) })
	return application
}

func catalogUpload(t *testing.T) *http.Request {
	t.Helper()
	csv := testutil.CSV(testutil.TrackTable(
		testutil.Track{Name: "Flowers", ArtistCount: 1, Streams: 1000, BPM: 118, Key: "C#"},
		testutil.Track{Name: "Kill Bill", ArtistCount: 2, Streams: 500, BPM: 89, Key: "G#"},
		testutil.Track{Name: "Vampire", ArtistCount: 1, Streams: 800, BPM: 138, Key: "F"},
	))

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "catalog.csv")
	require.NoError(t, err)
	_, err = part.Write(csv)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyses", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func serve(a *Application, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	a.Router.ServeHTTP(w, req)
	return w
}

func TestApplication_AnalysisRoundTrip(t *testing.T) {
	application := newTestApp(t, testConfig(t))

	created := serve(application, catalogUpload(t))
	require.Equal(t, http.StatusCreated, created.Code, created.Body.String())
	assert.NotEmpty(t, created.Header().Get("X-Request-ID"))
	assert.Equal(t, "nosniff", created.Header().Get("X-Content-Type-Options"))

	var run struct {
		ID       string `json:"id"`
		Source   string `json:"source"`
		Cleaning struct {
			RowsAfter int `json:"rows_after"`
		} `json:"cleaning"`
	}
	require.NoError(t, json.NewDecoder(created.Body).Decode(&run))
	require.NotEmpty(t, run.ID)
	assert.Equal(t, "catalog.csv", run.Source)
	assert.Equal(t, 3, run.Cleaning.RowsAfter)

	fetched := serve(application, httptest.NewRequest(http.MethodGet, "/api/v1/analyses/"+run.ID, nil))
	require.Equal(t, http.StatusOK, fetched.Code)
	assert.Contains(t, fetched.Body.String(), run.ID)

	listed := serve(application, httptest.NewRequest(http.MethodGet, "/api/v1/analyses?limit=5", nil))
	require.Equal(t, http.StatusOK, listed.Code)
	var list struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.NewDecoder(listed.Body).Decode(&list))
	assert.Equal(t, 1, list.Count)

	metrics := serve(application, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, metrics.Code)
	text := metrics.Body.String()
	assert.Contains(t, text, `trackstats_runs_total{status="success"} 1`)
	assert.Contains(t, text, `trackstats_http_requests_total{method="POST",route="/api/v1/analyses",status="201"} 1`)
	assert.Contains(t, text, `route="/api/v1/analyses/{id}"`)
}

func TestApplication_Routes(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
		wantBody   string
	}{
		{"liveness", http.MethodGet, "/healthz", http.StatusOK, `"alive"`},
		{"readiness", http.MethodGet, "/readyz", http.StatusOK, `"ready"`},
		{"unknown route", http.MethodGet, "/nope", http.StatusNotFound, "/errors/not-found"},
		{"unknown run", http.MethodGet, "/api/v1/analyses/does-not-exist", http.StatusNotFound, "/errors/run/not-found"},
		{"wrong method", http.MethodDelete, "/api/v1/analyses", http.StatusMethodNotAllowed, "Method Not Allowed"},
		{"bad limit", http.MethodGet, "/api/v1/analyses?limit=0", http.StatusBadRequest, "VALIDATION_FAILED"},
	}

	application := newTestApp(t, testConfig(t))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(application, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
		})
	}
}

func TestApplication_StorageDisabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.Storage.Enabled = false
	application := newTestApp(t, cfg)
	assert.Nil(t, application.Store)

	created := serve(application, catalogUpload(t))
	require.Equal(t, http.StatusCreated, created.Code)

	listed := serve(application, httptest.NewRequest(http.MethodGet, "/api/v1/analyses", nil))
	require.Equal(t, http.StatusOK, listed.Code)
	assert.Contains(t, listed.Body.String(), `"count":0`)

	ready := serve(application, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Contains(t, ready.Body.String(), `"disabled"`)
}

func TestApplication_RateLimit(t *testing.T) {
	cfg := testConfig(t)
	cfg.Server.RateLimit = config.RateLimitConfig{Enabled: true, RPS: 0.1, Burst: 1}
	application := newTestApp(t, cfg)

	first := serve(application, httptest.NewRequest(http.MethodGet, "/api/v1/analyses", nil))
	second := serve(application, httptest.NewRequest(http.MethodGet, "/api/v1/analyses", nil))
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)

	// health probes are not rate limited
	assert.Equal(t, http.StatusOK, serve(application, httptest.NewRequest(http.MethodGet, "/healthz", nil)).Code)
}

func TestApplication_StartStop(t *testing.T) {
	application := newTestApp(t, testConfig(t))
	application.Server.Addr = "127.0.0.1:0"

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, application.Start(ctx, cancel))
	require.NotEmpty(t, application.Addr())

	resp, err := http.Get(fmt.Sprintf("http://%s/healthz", application.Addr()))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "alive")

	require.NoError(t, application.Stop(context.Background()))
	_, err = http.Get(fmt.Sprintf("http://%s/healthz", application.Addr()))
	assert.Error(t, err)
}
