package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const ServiceName = "ssml-podcast-api"

type HealthHandler struct {
	service string
}

func NewHealthHandler() *HealthHandler { return &HealthHandler{service: ServiceName} }

// GET /
func (h *HealthHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "service": h.service})
}

// GET /health
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
