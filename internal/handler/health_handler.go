package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

// QueueStats reports the processing queue's current load.
type QueueStats interface {
	Len() int
	InFlight() int
}

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	db    *sqlx.DB
	queue QueueStats
}

// NewHealthHandler creates a new HealthHandler. queue may be nil.
func NewHealthHandler(db *sqlx.DB, queue QueueStats) *HealthHandler {
	return &HealthHandler{db: db, queue: queue}
}

// Liveness handles GET /healthz
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness handles GET /readyz
func (h *HealthHandler) Readiness(c *gin.Context) {
	if err := h.db.PingContext(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": "database not reachable"})
		return
	}
	body := gin.H{"status": "ok"}
	if h.queue != nil {
		body["queue_depth"] = h.queue.Len()
		body["in_flight"] = h.queue.InFlight()
	}
	c.JSON(http.StatusOK, body)
}
