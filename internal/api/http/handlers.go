package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/httpbinder/internal/binder"
	"github.com/GriffinCanCode/httpbinder/internal/infrastructure/tracing"
)

// Handlers serves the admin API over a client registry.
type Handlers struct {
	registry *binder.Registry
	started  time.Time
}

// NewHandlers creates handlers for registry.
func NewHandlers(registry *binder.Registry) *Handlers {
	return &Handlers{registry: registry, started: time.Now()}
}

// Health reports liveness plus a summary of the bindings.
func (h *Handlers) Health(c *gin.Context) {
	bindings := h.registry.Bindings()

	resolved, open := 0, 0
	for _, b := range bindings {
		if b.Resolved {
			resolved++
		}
		if b.BreakerState == "open" {
			open++
		}
	}

	status := "healthy"
	if open > 0 {
		status = "degraded"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":        status,
		"uptime":        time.Since(h.started).Round(time.Second).String(),
		"clients":       len(bindings),
		"resolved":      resolved,
		"open_breakers": open,
	})
}

// ListClients lists every client binding.
func (h *Handlers) ListClients(c *gin.Context) {
	bindings := h.registry.Bindings()
	c.JSON(http.StatusOK, gin.H{
		"clients": bindings,
		"count":   len(bindings),
	})
}

// GetClient returns the binding a qualifier or alias belongs to.
func (h *Handlers) GetClient(c *gin.Context) {
	q := c.Param("qualifier")
	for _, b := range h.registry.Bindings() {
		if b.Qualifier == q {
			c.JSON(http.StatusOK, b)
			return
		}
		for _, a := range b.Aliases {
			if a == q {
				c.JSON(http.StatusOK, b)
				return
			}
		}
	}

	c.JSON(http.StatusNotFound, gin.H{
		"error":    "no client bound to qualifier",
		"trace_id": tracing.GetTraceID(c.Request.Context()),
	})
}
