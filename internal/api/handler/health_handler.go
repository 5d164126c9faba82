package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Root handles GET /
func (h *Handler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": h.appName,
		"version": h.version,
		"status":  "running",
	})
}

// Health handles GET /health
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": h.appName,
	})
}

// Ready handles GET /health/ready
// Reports 503 while the broker is disconnected or the database (when
// configured) fails its check
func (h *Handler) Ready(c *gin.Context) {
	status := http.StatusOK
	checks := gin.H{}

	if h.broker != nil {
		if h.broker.IsConnected() {
			checks["rabbitmq"] = "ok"
		} else {
			checks["rabbitmq"] = "disconnected"
			status = http.StatusServiceUnavailable
		}
	}

	if h.database != nil {
		if err := h.database.HealthCheck(c.Request.Context()); err != nil {
			checks["database"] = err.Error()
			status = http.StatusServiceUnavailable
		} else {
			checks["database"] = "ok"
		}
	}

	state := "ready"
	if status != http.StatusOK {
		state = "not_ready"
	}

	c.JSON(status, gin.H{
		"status": state,
		"checks": checks,
	})
}
