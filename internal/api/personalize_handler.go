// File path: internal/api/personalize_handler.go
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/commsforge/commsforge/internal/common"
)

// personalizeRequest is the inbound payload: one letter plus a raw customer
// record. Absent customer fields resolve to profile defaults downstream.
type personalizeRequest struct {
	Letter   string         `json:"letter"`
	Customer map[string]any `json:"customer"`
}

func (s *Server) handlePersonalize(w http.ResponseWriter, r *http.Request) {
	var req personalizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	if strings.TrimSpace(req.Letter) == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("letter text required"))
		return
	}
	bundle, err := s.pipeline.Personalize(r.Context(), req.Letter, req.Customer)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	writeJSON(w, http.StatusOK, bundle)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"backend": s.backend,
	})
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"entries": common.LogEntries(),
	})
}
