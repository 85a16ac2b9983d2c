package api

import (
	"net/http"
	"time"

	"github.com/openclaw/qrgen/status"
)

type statusResponse struct {
	State    string         `json:"state"`
	HasImage bool           `json:"has_image"`
	Message  status.Message `json:"message"`
	Uptime   string         `json:"uptime"`
	Version  string         `json:"version"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	state, msg := s.Snapshot()
	uptime := time.Since(s.startTime).Truncate(time.Second).String()

	writeJSON(w, http.StatusOK, statusResponse{
		State:    string(state),
		HasImage: s.Current() != nil,
		Message:  msg,
		Uptime:   uptime,
		Version:  s.Version,
	})
}
