package main

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*WebServer, http.Handler) {
	t.Helper()
	ws := NewWebServer(testConfig(t), "")
	ws.now = func() time.Time { return reportDate }
	return ws, ws.Router()
}

func doRequest(t *testing.T, handler http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	_, handler := newTestServer(t)
	rec := doRequest(t, handler, http.MethodGet, "/healthz", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	_, err := uuid.Parse(rec.Header().Get(CorrelationIDHeader))
	assert.NoError(t, err, "a correlation id is generated")
}

func TestCorrelationIDIsEchoed(t *testing.T) {
	_, handler := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(CorrelationIDHeader, "req-42")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, "req-42", rec.Header().Get(CorrelationIDHeader))
}

func TestGetConfig(t *testing.T) {
	ws, handler := newTestServer(t)
	rec := doRequest(t, handler, http.MethodGet, "/api/config", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var config Config
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &config))
	assert.Equal(t, ws.config.Inputs, config.Inputs)
}

func TestProjectEndpoint(t *testing.T) {
	_, handler := newTestServer(t)
	rec := doRequest(t, handler, http.MethodPost, "/api/project", `{"warm_rent": 1000}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp APIProjectionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	require.NotNil(t, resp.Result)
	require.Len(t, resp.Result.Points, 15)
	assert.Equal(t, 256515.0, resp.Result.Points[14].FundBalance)
	assert.Empty(t, resp.Warnings)
}

func TestProjectEndpoint_WarnsOutOfRange(t *testing.T) {
	_, handler := newTestServer(t)
	rec := doRequest(t, handler, http.MethodPost, "/api/project", `{"purchase_price": 50000}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp APIProjectionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success, "out-of-range inputs still project")
	require.Len(t, resp.Warnings, 1)
	assert.Contains(t, resp.Warnings[0], "purchase_price")
}

func TestProjectEndpoint_BadRequests(t *testing.T) {
	_, handler := newTestServer(t)

	rec := doRequest(t, handler, http.MethodPost, "/api/project", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, handler, http.MethodGet, "/api/project", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestSensitivityEndpoint(t *testing.T) {
	_, handler := newTestServer(t)
	rec := doRequest(t, handler, http.MethodPost, "/api/sensitivity", `{"return_min": 4, "return_max": 8, "step": 2}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp APISensitivityResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	require.Len(t, resp.Analysis.Rows, 3)
	assert.Equal(t, 256515.0, resp.Analysis.Rows[1].FinalBalance)

	rec = doRequest(t, handler, http.MethodPost, "/api/sensitivity", `{"return_min": 8, "return_max": 4}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProjectEndpoint_ReturnBelowTotalLoss(t *testing.T) {
	_, handler := newTestServer(t)
	rec := doRequest(t, handler, http.MethodPost, "/api/project", `{"expected_return_rate": -150}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotZero(t, rec.Body.Len())

	var resp APIProjectionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	require.Len(t, resp.Result.Points, 15)
	assert.Equal(t, 0.0, resp.Result.Points[14].FundBalance)
	assert.NotEmpty(t, resp.Warnings)
}

func TestWriteJSON_UnencodableValue(t *testing.T) {
	rec := httptest.NewRecorder()
	writeJSON(rec, http.StatusOK, map[string]float64{"balance": math.NaN()})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var resp ExportResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.NotEmpty(t, resp.Message)
}

func TestSensitivityEndpoint_RejectsUnboundedSweeps(t *testing.T) {
	_, handler := newTestServer(t)
	bodies := map[string]string{
		"span overflows int":   `{"return_min": 0, "return_max": 1e18, "step": 1e-9}`,
		"too many rows":        `{"return_min": 0, "return_max": 15, "step": 0.001}`,
		"above guidance range": `{"return_min": 0, "return_max": 1000000, "step": 1000}`,
		"below guidance range": `{"return_min": -150, "return_max": 5}`,
		"negative step":        `{"return_min": 0, "return_max": 15, "step": -1}`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			rec := doRequest(t, handler, http.MethodPost, "/api/sensitivity", body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}

	rec := doRequest(t, handler, http.MethodPost, "/api/sensitivity", `{"return_min": 0, "return_max": 15, "step": 0.1}`)
	require.Equal(t, http.StatusOK, rec.Code, "151 rows are fine")
}

func TestExportEndpoints_RejectOutOfRangeInput(t *testing.T) {
	ws, handler := newTestServer(t)
	for _, path := range []string{"/api/download-pdf", "/api/export-pdf", "/api/export-csv"} {
		t.Run(path, func(t *testing.T) {
			rec := doRequest(t, handler, http.MethodPost, path, `{"expected_return_rate": 500}`)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), "expected_return_rate")
		})
	}

	entries, err := os.ReadDir(ws.config.Report.ExportDir)
	if err == nil {
		assert.Empty(t, entries, "nothing is written for rejected input")
	}
}

func TestDownloadPDF(t *testing.T) {
	_, handler := newTestServer(t)
	rec := doRequest(t, handler, http.MethodPost, "/api/download-pdf", `{}`)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="Finanzieren_auf_Probe_2026-10-18.pdf"`, rec.Header().Get("Content-Disposition"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "%PDF-"))
}

func TestExportPDF(t *testing.T) {
	ws, handler := newTestServer(t)
	rec := doRequest(t, handler, http.MethodPost, "/api/export-pdf", `{"warm_rent": 1100}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ExportResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.Success, resp.Message)
	assert.Equal(t, filepath.Join(ws.config.Report.ExportDir, "Finanzieren_auf_Probe_2026-10-18.pdf"), resp.FilePath)

	data, err := os.ReadFile(resp.FilePath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "%PDF-"))
}

func TestExportCSV(t *testing.T) {
	_, handler := newTestServer(t)
	rec := doRequest(t, handler, http.MethodPost, "/api/export-csv", `{}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ExportResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.Success, resp.Message)
	assert.Equal(t, "Finanzieren_auf_Probe_2026-10-18.csv", filepath.Base(resp.FilePath))

	data, err := os.ReadFile(resp.FilePath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "15;256515;183000,00")
}
