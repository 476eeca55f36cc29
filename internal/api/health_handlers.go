package api

import (
	"net/http"
	"time"

	"github.com/stacklend/stacklend-server/internal/http/response"
)

// HealthResponse contains health check data.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

// handleHealthCheck reports server liveness.
func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	response.Success(w, HealthResponse{
		Status: "healthy",
		Time:   time.Now().UTC().Format(time.RFC3339),
	}, s.logger)
}
