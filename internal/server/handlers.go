package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/screentel/screentel/internal/assembler"
	"github.com/screentel/screentel/internal/pipeline"
	"github.com/screentel/screentel/internal/utils"
	"github.com/screentel/screentel/internal/version"
)

// healthHandler returns server health status.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := HealthResponse{
		Status:  "healthy",
		Version: version.Version,
		Time:    time.Now().UTC().Format(time.RFC3339),
	}

	writeJSON(w, http.StatusOK, response)
}

// operatorsHandler returns the configured carrier lexicon.
func (s *Server) operatorsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	operators := s.pipeline.Operators()
	writeJSON(w, http.StatusOK, OperatorsResponse{
		Operators: operators,
		Count:     len(operators),
	})
}

// analyzeHandler processes screenshot analysis requests.
func (s *Server) analyzeHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	maxBytes := s.maxUploadMB * 1024 * 1024
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	if err := r.ParseMultipartForm(maxBytes); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "too large") {
			s.writeErrorResponse(w, "File too large", http.StatusRequestEntityTooLarge)
		} else {
			s.writeErrorResponse(w, "Failed to parse form data", http.StatusBadRequest)
		}
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		// Accept "file" as an alternative field name.
		file, header, err = r.FormFile("file")
		if err != nil {
			s.writeErrorResponse(w, "No image file provided", http.StatusBadRequest)
			return
		}
	}
	defer func() { _ = file.Close() }()

	if header.Size > maxBytes {
		s.writeErrorResponse(w, "File too large", http.StatusRequestEntityTooLarge)
		return
	}

	if !utils.IsSupportedImage(header.Filename) {
		s.writeErrorResponse(w, "Unsupported file type", http.StatusBadRequest)
		return
	}

	imageData, err := io.ReadAll(file)
	if err != nil {
		s.writeErrorResponse(w, "Failed to read image data", http.StatusInternalServerError)
		return
	}
	uploadSizeBytes.Observe(float64(len(imageData)))

	img, _, err := utils.DecodeImage(bytes.NewReader(imageData))
	if err != nil {
		s.writeErrorResponse(w, "Invalid image format", http.StatusBadRequest)
		return
	}

	storedPath := ""
	if s.saveUploads {
		storedPath, err = s.saveUpload(header.Filename, imageData)
		if err != nil {
			// The upload copy is best effort, the analysis still runs.
			slog.Warn("failed to persist upload", "filename", header.Filename, "error", err)
			storedPath = ""
		}
	}

	ctx := r.Context()
	if s.timeoutSec > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(s.timeoutSec)*time.Second)
		defer cancel()
	}

	start := time.Now()
	resp := s.pipeline.Analyze(ctx, img, pipeline.Options{
		ImagePath: storedPath,
		Debug:     isDebugRequest(r),
	})
	duration := time.Since(start)

	status := "success"
	code := http.StatusOK
	if !resp.Success {
		status = "error"
		code = http.StatusInternalServerError
	}
	analysisRequestsTotal.WithLabelValues("http", status).Inc()
	analysisDuration.WithLabelValues("http").Observe(duration.Seconds())
	if resp.Success && resp.Data != nil {
		if op := resp.Data.StructuredData.SpeedTest.ActiveOperator; op != "" {
			activeOperatorTotal.WithLabelValues(op).Inc()
		}
	}

	if s.history != nil {
		if _, err := s.history.Save(r.Context(), header.Filename, resp); err != nil {
			slog.Warn("failed to save analysis record", "filename", header.Filename, "error", err)
		}
	}

	writeJSON(w, code, resp)
}

// recordsHandler lists stored analysis records.
func (s *Server) recordsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.history == nil {
		s.writeErrorResponse(w, "History is not enabled", http.StatusNotFound)
		return
	}

	limit := s.historyLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	records, err := s.history.List(r.Context(), limit)
	if err != nil {
		slog.Error("failed to list analysis records", "error", err)
		s.writeErrorResponse(w, "Failed to list records", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, RecordsResponse{Records: records, Count: len(records)})
}

// recordHandler returns a single stored record by ID.
func (s *Server) recordHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.history == nil {
		s.writeErrorResponse(w, "History is not enabled", http.StatusNotFound)
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/records/")
	if id == "" || strings.Contains(id, "/") {
		s.writeErrorResponse(w, "Invalid record ID", http.StatusBadRequest)
		return
	}

	rec, err := s.history.Get(r.Context(), id)
	if err != nil {
		s.writeErrorResponse(w, "Record not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, rec)
}

// isDebugRequest reports whether debug output was requested via query or
// form value.
func isDebugRequest(r *http.Request) bool {
	v := r.FormValue("debug")
	if v == "" {
		v = r.URL.Query().Get("debug")
	}
	return v == "1" || strings.EqualFold(v, "true")
}

// writeErrorResponse writes a JSON error envelope.
func (s *Server) writeErrorResponse(w http.ResponseWriter, message string, statusCode int) {
	writeJSON(w, statusCode, assembler.Failure(message, time.Now()))
}

func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
