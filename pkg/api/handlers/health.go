package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/urmzd/homecare/pkg/api/types"
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// PingFunc adapts a function to a Pinger.
type PingFunc func(ctx context.Context) error

// PingContext calls f.
func (f PingFunc) PingContext(ctx context.Context) error {
	return f(ctx)
}

// HealthHandler handles health check endpoints
type HealthHandler struct {
	database Pinger
	llm      Pinger
}

// NewHealthHandler creates a new health handler. Either pinger may be nil.
func NewHealthHandler(database, llm Pinger) *HealthHandler {
	return &HealthHandler{database: database, llm: llm}
}

func probe(ctx context.Context, p Pinger) string {
	if p == nil {
		return "disabled"
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := p.PingContext(ctx); err != nil {
		return "unreachable"
	}
	return "ok"
}

// Health handles GET /health
// @Summary      Health check
// @Description  Returns the health of the API, the database and the language model
// @Tags         health
// @Produce      json
// @Success      200  {object}  types.HealthResponse  "Service is healthy"
// @Failure      503  {object}  types.HealthResponse  "Service is degraded"
// @Router       /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	ctx := c.Request.Context()
	resp := types.HealthResponse{
		Status:    "healthy",
		Database:  probe(ctx, h.database),
		LLM:       probe(ctx, h.llm),
		Timestamp: time.Now(),
	}

	httpStatus := http.StatusOK
	if resp.Database == "unreachable" {
		resp.Status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable
	} else if resp.LLM == "unreachable" {
		resp.Status = "degraded"
	}
	c.JSON(httpStatus, resp)
}
