package handlers

import (
	"net/http"
	"time"

	"github.com/Niladri080/Chat-App/pkg"
	"github.com/Niladri080/Chat-App/ws"
)

// StatusHandler, public health/status endpoint'i.
type StatusHandler struct {
	hub       ws.EventPublisher
	startedAt time.Time
}

// NewStatusHandler, constructor.
func NewStatusHandler(hub ws.EventPublisher) *StatusHandler {
	return &StatusHandler{hub: hub, startedAt: time.Now()}
}

// statusResponse, GET /api/status yanıtı.
type statusResponse struct {
	Status        string `json:"status"`
	OnlineUsers   int    `json:"onlineUsers"`
	UptimeSeconds int64  `json:"uptimeSeconds"`
}

// Get godoc
// GET /api/status
// Auth gerektirmez — load balancer health check'leri için.
func (h *StatusHandler) Get(w http.ResponseWriter, r *http.Request) {
	pkg.JSON(w, http.StatusOK, statusResponse{
		Status:        "ok",
		OnlineUsers:   len(h.hub.OnlineUserIDs()),
		UptimeSeconds: int64(time.Since(h.startedAt).Seconds()),
	})
}
