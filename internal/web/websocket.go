package web

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Local tool, same-origin only in practice.
		return true
	},
}

// handleWebSocket streams job updates for the job named in the query string.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	jobID := r.URL.Query().Get("job")
	if jobID == "" {
		http.Error(w, "job parameter required", http.StatusBadRequest)
		return
	}

	job, err := s.jobMgr.GetJob(jobID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("WebSocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	updates := s.jobMgr.Subscribe(jobID)
	defer s.jobMgr.Unsubscribe(jobID, updates)

	// Send the current state right away so late subscribers catch up.
	if err := conn.WriteJSON(s.jobToResponse(job)); err != nil {
		return
	}

	// Reader goroutine detects client disconnects.
	disconnect := make(chan struct{})
	go func() {
		defer close(disconnect)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(30 * time.Second)
	defer ping.Stop()

	for {
		select {
		case updated, ok := <-updates:
			if !ok {
				return
			}
			if err := conn.WriteJSON(s.jobToResponse(updated)); err != nil {
				return
			}
			switch updated.Status {
			case StatusCompleted, StatusFailed, StatusCancelled:
				return
			}
		case <-ping.C:
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-disconnect:
			return
		}
	}
}
