package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/yourusername/vidfetch-go/internal/app"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for now
	},
}

// ProgressWebSocketHandler pushes live job-progress snapshots to clients
type ProgressWebSocketHandler struct {
	scheduler *app.JobScheduler
	logger    *zap.Logger
	interval  time.Duration
}

// NewProgressWebSocketHandler creates a new progress stream handler
func NewProgressWebSocketHandler(scheduler *app.JobScheduler, log *zap.Logger) *ProgressWebSocketHandler {
	return &ProgressWebSocketHandler{
		scheduler: scheduler,
		logger:    log,
		interval:  time.Second,
	}
}

// HandleWebSocket handles GET /api/v1/jobs/ws. Every tick the client
// receives a snapshot of the active jobs until it disconnects.
func (h *ProgressWebSocketHandler) HandleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("Failed to upgrade WebSocket", zap.Error(err))
		return
	}
	defer conn.Close()

	h.logger.Info("Progress stream client connected",
		zap.String("remote_addr", c.Request.RemoteAddr))

	// Drain reads so close frames are noticed.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			h.logger.Info("Progress stream client disconnected",
				zap.String("remote_addr", c.Request.RemoteAddr))
			return
		case <-ticker.C:
			jobs, err := h.scheduler.ListActive()
			if err != nil {
				h.logger.Error("Failed to load active jobs for stream", zap.Error(err))
				continue
			}
			if err := conn.WriteJSON(jobs); err != nil {
				return
			}
		}
	}
}
