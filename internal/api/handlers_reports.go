package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/figdoc/internal/figma"
	"github.com/dgallion1/figdoc/internal/parser"
	"github.com/dgallion1/figdoc/internal/pipeline"
)

const (
	maxLinkLen  = 500
	maxTokenLen = 200
)

func (s *Server) handleCreateReport(w http.ResponseWriter, r *http.Request) {
	// Extra 1MB for form overhead.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			jsonError(w, fmt.Sprintf("request exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
			return
		}
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	link := strings.TrimSpace(r.FormValue("figma_link"))
	token := strings.TrimSpace(r.FormValue("figma_token"))
	switch {
	case link == "":
		jsonError(w, "figma_link is required", http.StatusBadRequest)
		return
	case len(link) > maxLinkLen:
		jsonError(w, fmt.Sprintf("figma_link is longer than %d characters", maxLinkLen), http.StatusBadRequest)
		return
	case token == "":
		jsonError(w, figma.ErrEmptyToken.Error(), http.StatusBadRequest)
		return
	case len(token) > maxTokenLen:
		jsonError(w, fmt.Sprintf("figma_token is longer than %d characters", maxTokenLen), http.StatusBadRequest)
		return
	}
	key, err := figma.ParseFileKey(link)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	attachment, status, err := s.readAttachment(r)
	if err != nil {
		jsonError(w, err.Error(), status)
		return
	}

	job := pipeline.NewJob(key, token, attachment)
	if err := s.jobs.Submit(job); err != nil {
		s.log.Warn("job rejected", "job_id", job.ID, "error", err)
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	s.log.Info("job queued", "job_id", job.ID, "file_key", key, "attachment", attachment != nil)

	writeJSON(w, http.StatusAccepted, map[string]any{
		"job_id":   job.ID,
		"status":   pipeline.StatusQueued,
		"poll_url": fmt.Sprintf("/api/reports/%s", job.ID),
	})
}

// readAttachment parses the optional report_file part. A missing part is
// not an error.
func (s *Server) readAttachment(r *http.Request) (*parser.Attachment, int, error) {
	file, header, err := r.FormFile("report_file")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, 0, nil
	}
	if err != nil {
		return nil, http.StatusBadRequest, fmt.Errorf("report_file: %w", err)
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if !parser.IsSupportedExtension(filename) {
		return nil, http.StatusBadRequest, fmt.Errorf("unsupported file type: %s", filepath.Ext(filename))
	}

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		return nil, http.StatusInternalServerError, errors.New("failed to read report_file")
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		return nil, http.StatusRequestEntityTooLarge, fmt.Errorf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes)
	}

	att, err := parser.ParseFile(bytes.NewReader(data), filename)
	if err != nil {
		s.log.Warn("attachment parse failed", "filename", filename, "error", err)
		return nil, http.StatusBadRequest, fmt.Errorf("could not read %s: %w", filename, err)
	}
	return att, 0, nil
}

func (s *Server) handleReportStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.jobs.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	snap := job.Snapshot()
	body := map[string]any{"job": snap}
	if snap.Filename != "" {
		body["download_url"] = "/api/download/" + snap.Filename
	}
	writeJSON(w, http.StatusOK, body)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." || name == "/" {
		name = "unnamed"
	}
	return name
}
