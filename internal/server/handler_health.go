package server

import (
	"net/http"
	"time"
)

// healthResponse reports server liveness plus optimizer reachability.
type healthResponse struct {
	Status    string `json:"status"`
	Uptime    string `json:"uptime"`
	Optimizer string `json:"optimizer"`
}

// handleHealth returns 200 whenever the server itself is up; the
// optimizer field reports reachable, unreachable, or disabled.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())

	opt := "disabled"
	if s.optimizer != nil {
		if err := s.optimizer.Health(r.Context()); err != nil {
			opt = "unreachable"
		} else {
			opt = "reachable"
		}
	}

	respondOK(w, reqID, healthResponse{
		Status:    "ok",
		Uptime:    time.Since(s.startTime).Round(time.Second).String(),
		Optimizer: opt,
	})
}
