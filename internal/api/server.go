// File path: internal/api/server.go
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	chi "github.com/go-chi/chi/v5"

	"github.com/commsforge/commsforge/internal/common"
	"github.com/commsforge/commsforge/internal/pipeline"
)

// Server exposes the personalization pipeline over HTTP.
type Server struct {
	router   chi.Router
	pipeline *pipeline.Pipeline
	backend  string
}

// NewServer wires the routes for one pipeline instance. backendName appears
// in health responses so operators can tell hosted from offline mode.
func NewServer(p *pipeline.Pipeline, backendName string) (*Server, error) {
	if p == nil {
		return nil, fmt.Errorf("pipeline required")
	}
	s := &Server{
		router:   chi.NewRouter(),
		pipeline: p,
		backend:  backendName,
	}
	s.routes()
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	logger := common.Logger()
	logger.Info("api: configuring routes")
	s.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			logger.Debug("request", "method", r.Method, "path", r.URL.Path, "dur", time.Since(start), "remote", r.RemoteAddr)
		})
	})

	s.router.Get("/healthz", s.handleHealth)
	s.router.Post("/v1/personalize", s.handlePersonalize)
	s.router.Get("/v1/logs", s.handleLogs)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, err error) {
	logger := common.Logger()
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "status", status, "error", err)
	} else {
		logger.Warn("request failed", "status", status, "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
