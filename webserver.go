package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// CorrelationIDHeader carries the request id in both directions
const CorrelationIDHeader = "X-Correlation-ID"

type contextKey string

const correlationIDContextKey contextKey = "correlationID"

// WebServer holds the HTTP server configuration
type WebServer struct {
	config *Config
	addr   string
	now    func() time.Time
}

// NewWebServer creates a new web server instance
func NewWebServer(config *Config, addr string) *WebServer {
	return &WebServer{
		config: config,
		addr:   addr,
		now:    time.Now,
	}
}

// APIProjectionResponse is returned by /api/project
type APIProjectionResponse struct {
	Success  bool              `json:"success"`
	Error    string            `json:"error,omitempty"`
	Result   *ProjectionResult `json:"result,omitempty"`
	Warnings []string          `json:"warnings,omitempty"`
}

// APISensitivityRequest combines the inputs with the return range to sweep
type APISensitivityRequest struct {
	ProjectionInput
	SensitivityConfig
}

// APISensitivityResponse is returned by /api/sensitivity
type APISensitivityResponse struct {
	Success  bool                 `json:"success"`
	Error    string               `json:"error,omitempty"`
	Analysis *SensitivityAnalysis `json:"analysis,omitempty"`
}

// ExportResponse is returned by the endpoints that write into the export directory
type ExportResponse struct {
	Success  bool   `json:"success"`
	FilePath string `json:"file_path,omitempty"`
	Message  string `json:"message"`
}

// Router returns the API routes wrapped in correlation and request logging
func (ws *WebServer) Router() http.Handler {
	r := mux.NewRouter()
	r.Use(correlationIDMiddleware, requestLoggingMiddleware)

	r.HandleFunc("/healthz", ws.handleHealth).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/config", ws.handleGetConfig).Methods(http.MethodGet)
	api.HandleFunc("/project", ws.handleProject).Methods(http.MethodPost)
	api.HandleFunc("/sensitivity", ws.handleSensitivity).Methods(http.MethodPost)
	api.HandleFunc("/export-pdf", ws.handleExportPDF).Methods(http.MethodPost)
	api.HandleFunc("/download-pdf", ws.handleDownloadPDF).Methods(http.MethodPost)
	api.HandleFunc("/export-csv", ws.handleExportCSV).Methods(http.MethodPost)

	return r
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (ws *WebServer) Start(ctx context.Context) error {
	// Listen on the address (use :0 for auto-assign)
	listener, err := net.Listen("tcp", ws.addr)
	if err != nil {
		return errors.Wrapf(err, "listen on %s", ws.addr)
	}

	actualAddr := listener.Addr().String()
	url := fmt.Sprintf("http://%s", actualAddr)
	if strings.HasPrefix(actualAddr, ":") || strings.HasPrefix(actualAddr, "0.0.0.0:") || strings.HasPrefix(actualAddr, "[::]:") {
		port := actualAddr[strings.LastIndex(actualAddr, ":")+1:]
		url = fmt.Sprintf("http://localhost:%s", port)
	}

	if retention := ws.config.Report.ExportRetention; retention > 0 {
		stop, err := StartExportPruner(ws.config.Report.ExportDir, retention)
		if err != nil {
			Log.Warn("export pruning disabled", zap.Error(err))
		} else {
			defer stop()
		}
	}

	server := &http.Server{
		Handler:      ws.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	Log.Info("Starting web server", zap.String("addr", actualAddr), zap.String("url", url))

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.Serve(listener)
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		Log.Info("Shutting down web server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	}
}

// correlationIDMiddleware reuses the caller's correlation id or assigns a new one
func correlationIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		correlationID := r.Header.Get(CorrelationIDHeader)
		if correlationID == "" {
			correlationID = uuid.New().String()
		}
		w.Header().Set(CorrelationIDHeader, correlationID)
		ctx := context.WithValue(r.Context(), correlationIDContextKey, correlationID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// CorrelationIDFromContext retrieves the correlation id set by the middleware
func CorrelationIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(correlationIDContextKey).(string); ok {
		return id
	}
	return ""
}

// requestLogger returns Log annotated with the request's correlation id
func requestLogger(r *http.Request) *zap.Logger {
	if id := CorrelationIDFromContext(r.Context()); id != "" {
		return Log.With(zap.String("correlation_id", id))
	}
	return Log
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func requestLoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		requestLogger(r).Info("Request handled",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

// writeJSON encodes v before writing the status, so an unencodable value becomes a 500
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		Log.Error("encode response", zap.Error(err))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprintf(w, "{\"success\":false,\"message\":%q}\n", "response could not be encoded")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

// sendJSONError sends a JSON error response
func sendJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ExportResponse{Success: false, Message: message})
}

func (ws *WebServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleGetConfig returns the current configuration
func (ws *WebServer) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ws.config)
}

// decodeInput reads a ProjectionInput; fields missing from the body keep the configured values
func (ws *WebServer) decodeInput(r *http.Request) (ProjectionInput, error) {
	input := ws.config.Inputs
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		return input, errors.Wrap(err, "invalid request body")
	}
	return input, nil
}

// decodeExportInput is decodeInput for the export endpoints, which also reject
// inputs outside the guidance ranges
func (ws *WebServer) decodeExportInput(r *http.Request) (ProjectionInput, error) {
	input, err := ws.decodeInput(r)
	if err != nil {
		return input, err
	}
	if warnings := input.OutOfRange(); len(warnings) > 0 {
		return input, errors.Errorf("input out of range: %s", strings.Join(warnings, ", "))
	}
	return input, nil
}

func (ws *WebServer) handleProject(w http.ResponseWriter, r *http.Request) {
	input, err := ws.decodeInput(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, APIProjectionResponse{Success: false, Error: err.Error()})
		return
	}

	result := RunProjection(input, ws.config.Engine)
	writeJSON(w, http.StatusOK, APIProjectionResponse{
		Success:  true,
		Result:   &result,
		Warnings: input.OutOfRange(),
	})
}

func (ws *WebServer) handleSensitivity(w http.ResponseWriter, r *http.Request) {
	req := APISensitivityRequest{
		ProjectionInput:   ws.config.Inputs,
		SensitivityConfig: ws.config.Sensitivity,
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, APISensitivityResponse{Success: false, Error: "invalid request body: " + err.Error()})
		return
	}
	if err := req.SensitivityConfig.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, APISensitivityResponse{Success: false, Error: "invalid return range: " + err.Error()})
		return
	}

	analysis := RunSensitivityAnalysis(req.ProjectionInput, ws.config.Engine, req.SensitivityConfig)
	writeJSON(w, http.StatusOK, APISensitivityResponse{Success: true, Analysis: &analysis})
}

// handleExportPDF renders the report and saves it in the export directory
func (ws *WebServer) handleExportPDF(w http.ResponseWriter, r *http.Request) {
	input, err := ws.decodeExportInput(r)
	if err != nil {
		sendJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	doc, _, err := GenerateReport(ws.config, input, ws.now())
	if err != nil {
		sendJSONError(w, http.StatusInternalServerError, ErrRenderFailed.Error())
		return
	}

	path, err := SaveDocument(ws.config.Report.ExportDir, doc)
	if err != nil {
		requestLogger(r).Error("save PDF", zap.Error(err))
		sendJSONError(w, http.StatusInternalServerError, "Failed to write PDF: "+err.Error())
		return
	}

	requestLogger(r).Info("PDF exported", zap.String("path", path), zap.Int("bytes", len(doc.Bytes)))
	writeJSON(w, http.StatusOK, ExportResponse{
		Success:  true,
		FilePath: path,
		Message:  fmt.Sprintf("PDF saved to %s", path),
	})
}

// handleDownloadPDF returns PDF content directly for browser download
func (ws *WebServer) handleDownloadPDF(w http.ResponseWriter, r *http.Request) {
	input, err := ws.decodeExportInput(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	doc, _, err := GenerateReport(ws.config, input, ws.now())
	if err != nil {
		http.Error(w, ErrRenderFailed.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", doc.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(doc.Bytes)))
	w.Write(doc.Bytes)
}

// handleExportCSV writes the yearly table as CSV into the export directory
func (ws *WebServer) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	input, err := ws.decodeExportInput(r)
	if err != nil {
		sendJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	result := RunProjection(input, ws.config.Engine)
	var buf bytes.Buffer
	if err := WriteCSV(&buf, result.Points); err != nil {
		sendJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}

	filename := strings.TrimSuffix(ExportFilename(ws.config.Report.FilenamePrefix, ws.now()), ".pdf") + ".csv"
	path, err := saveExport(ws.config.Report.ExportDir, filename, buf.Bytes())
	if err != nil {
		requestLogger(r).Error("save CSV", zap.Error(err))
		sendJSONError(w, http.StatusInternalServerError, "Failed to write CSV: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, ExportResponse{
		Success:  true,
		FilePath: path,
		Message:  fmt.Sprintf("CSV saved to %s", path),
	})
}
