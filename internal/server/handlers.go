package server

import (
	"net/http"

	"github.com/aristath/frontier/internal/utils"
)

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"}, s.log)
}
