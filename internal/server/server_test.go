package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/testkube/testreport/internal/app"
	"github.com/testkube/testreport/internal/artifacts"
	"github.com/testkube/testreport/internal/database"
)

func newTestServer(t *testing.T, db database.Database) (*Server, string) {
	t.Helper()
	dir := t.TempDir()
	return NewServer(artifacts.NewManager(dir), db, 10, zap.NewNop()), dir
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func serve(srv *Server, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	rr := httptest.NewRecorder()
	srv.Router().ServeHTTP(rr, req)
	return rr
}

func TestHandleLatest_RedirectsToNewestHTML(t *testing.T) {
	srv, dir := newTestServer(t, nil)
	writeFile(t, dir, "test_report_20240101_000000.html", "old")
	writeFile(t, dir, "test_report_20240102_000000.html", "new")

	rr := serve(srv, http.MethodGet, "/")

	assert.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "/reports/test_report_20240102_000000.html", rr.Header().Get("Location"))
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestHandleLatest_NoReports(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	rr := serve(srv, http.MethodGet, "/")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHandleReportFile(t *testing.T) {
	srv, dir := newTestServer(t, nil)
	writeFile(t, dir, "test_report_20240101_000000.md", "# Report")

	rr := serve(srv, http.MethodGet, "/reports/test_report_20240101_000000.md")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "# Report", rr.Body.String())

	rr = serve(srv, http.MethodGet, "/reports/missing.md")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = serve(srv, http.MethodGet, "/reports/..%2f..%2fetc%2fpasswd")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHandleSummaryAPI(t *testing.T) {
	srv, dir := newTestServer(t, nil)

	rr := serve(srv, http.MethodGet, "/api/v1/summary")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	writeFile(t, dir, "test_report_20240101_000000.json", `{"summary":{"total":1}}`)
	writeFile(t, dir, "test_report_20240105_000000.json", `{"summary":{"total":5}}`)

	rr = serve(srv, http.MethodGet, "/api/v1/summary")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"summary":{"total":5}}`, rr.Body.String())
}

func TestHandleTrendAPI(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	db := database.NewMockDatabase(
		database.RunRecord{ID: "a", GeneratedAt: base, PassRate: 50, Total: 4},
		database.RunRecord{ID: "b", GeneratedAt: base.Add(time.Hour), PassRate: 75, Total: 4},
	)
	srv, _ := newTestServer(t, db)

	rr := serve(srv, http.MethodGet, "/api/v1/trend")
	require.Equal(t, http.StatusOK, rr.Code)

	var points []app.DataPoint
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &points))
	require.Len(t, points, 2)
	assert.Equal(t, 50.0, points[0].PassRate)
	assert.Equal(t, 75.0, points[1].PassRate)
}

func TestHandleTrendAPI_Errors(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	rr := serve(srv, http.MethodGet, "/api/v1/trend")
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)

	db := database.NewMockDatabase()
	db.TrendErr = errors.New("connection refused")
	srv, _ = newTestServer(t, db)
	rr = serve(srv, http.MethodGet, "/api/v1/trend")
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestCORSPreflight(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/summary", nil).WithContext(context.Background())
	rr := httptest.NewRecorder()
	srv.Router().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
}
