package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/figdoc/internal/render"
	"github.com/dgallion1/figdoc/internal/storage"
)

// handleDownload streams a stored report.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	name, err := storage.CleanName(chi.URLParam(r, "filename"))
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	rc, size, err := s.store.Open(r.Context(), name)
	if errors.Is(err, storage.ErrNotFound) {
		jsonError(w, "report not found", http.StatusNotFound)
		return
	}
	if err != nil {
		s.log.Error("open report failed", "filename", name, "store", s.store.Kind(), "error", err)
		jsonError(w, "failed to open report", http.StatusInternalServerError)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", contentTypeFor(name))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	if size >= 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
	}
	if _, err := io.Copy(w, rc); err != nil {
		s.log.Warn("download interrupted", "filename", name, "error", err)
	}
}

func contentTypeFor(name string) string {
	ext := strings.TrimPrefix(filepath.Ext(name), ".")
	if ext == "" {
		return "application/octet-stream"
	}
	if r, err := render.ForFormat(ext); err == nil {
		return r.ContentType()
	}
	return "application/octet-stream"
}
