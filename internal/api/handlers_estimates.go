package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/russellconstruction9/RRsolutions/internal/estimate"
	"github.com/russellconstruction9/RRsolutions/internal/pipeline"
	"github.com/russellconstruction9/RRsolutions/internal/response"
)

func (s *Server) handleUploadEstimate(w http.ResponseWriter, r *http.Request) {
	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	format, err := s.requestFormat(r.FormValue("format"))
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)

	// Read file data.
	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return
	}
	if !estimate.IsPDF(data) {
		jsonError(w, fmt.Sprintf("unsupported file type: %s is not a PDF", filepath.Ext(filename)), http.StatusUnsupportedMediaType)
		return
	}

	job := pipeline.NewJob(filename, format, data)
	if err := s.orchestrator.Submit(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]any{
		"job_id":   job.ID,
		"status":   pipeline.StatusQueued,
		"format":   format,
		"poll_url": fmt.Sprintf("/api/estimates/%s/status", job.ID),
	})
}

func (s *Server) handleEstimateStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	snap := job.Snapshot()
	body := map[string]any{
		"job_id":    snap.ID,
		"filename":  snap.Filename,
		"status":    snap.Status,
		"phase":     snap.Phase,
		"pages":     snap.Pages,
		"attempts":  snap.Attempts,
		"documents": snap.Documents,
		"errors":    snap.Errors,
		"warnings":  snap.Warnings,
	}
	if snap.SessionID != "" {
		body["session_id"] = snap.SessionID
		body["session_url"] = "/api/sessions/" + snap.SessionID
	}
	writeJSON(w, http.StatusOK, body)
}

// requestFormat resolves an optional format parameter against the default.
func (s *Server) requestFormat(v string) (response.Format, error) {
	if strings.TrimSpace(v) == "" {
		return s.cfg.ResponseFormat, nil
	}
	return response.ParseFormat(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	// Remove any path separators that might have survived.
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
