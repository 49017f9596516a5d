package api

import (
	"context"
	"net/http"
	"time"
)

const healthCheckTimeout = 5 * time.Second

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	checks := map[string]bool{
		"enhancement_configured": s.cfg.Provider != "off" && s.cfg.Credential() != "",
		"storage_writable":       true,
	}
	body := map[string]any{
		"service": "figdoc",
		"version": Version,
		"storage": s.store.Kind(),
	}
	if err := s.store.Check(ctx); err != nil {
		s.log.Warn("storage check failed", "store", s.store.Kind(), "error", err)
		checks["storage_writable"] = false
		body["storage_error"] = err.Error()
	}

	status := "healthy"
	for _, ok := range checks {
		if !ok {
			status = "degraded"
		}
	}
	body["status"] = status
	body["checks"] = checks
	body["queue_depth"] = s.jobs.QueueDepth()
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) handleLLMStats(w http.ResponseWriter, r *http.Request) {
	if s.stats == nil {
		jsonError(w, "llm stats unavailable", http.StatusServiceUnavailable)
		return
	}
	model := ""
	switch s.cfg.Provider {
	case "groq":
		model = s.cfg.GroqModel
	case "gemini":
		model = s.cfg.GeminiModel
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"provider": s.cfg.Provider,
		"model":    model,
		"stats":    s.stats.Snapshot(),
	})
}
