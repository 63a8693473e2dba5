package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/urmzd/homecare/pkg/api/types"
	"github.com/urmzd/homecare/pkg/db"
	"github.com/urmzd/homecare/pkg/device"
	"github.com/urmzd/homecare/pkg/notify"
	"github.com/urmzd/homecare/pkg/rag"
	"github.com/urmzd/homecare/pkg/retry"
	"github.com/urmzd/homecare/pkg/schedule"
	"github.com/urmzd/homecare/pkg/toolcall"
)

// writeError maps err onto a status code and an ErrorResponse.
func writeError(c *gin.Context, err error) {
	var (
		validation *toolcall.ValidationError
		invalid    *toolcall.InvalidDeviceError
		conflict   *toolcall.ConflictError
		notFound   *toolcall.NotFoundError
	)
	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "invalid_arguments", Message: toolcall.UserMessage(err)})
	case errors.As(err, &invalid):
		c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "invalid_device", Message: toolcall.UserMessage(err)})
	case errors.As(err, &conflict):
		c.JSON(http.StatusConflict, types.ErrorResponse{Error: "conflict", Message: toolcall.UserMessage(err)})
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, types.ErrorResponse{Error: "not_found", Message: toolcall.UserMessage(err)})
	case errors.Is(err, toolcall.ErrUnknownTool):
		c.JSON(http.StatusNotFound, types.ErrorResponse{Error: "unknown_tool", Message: err.Error()})
	case errors.Is(err, notify.ErrNotFound), errors.Is(err, db.ErrProfileNotFound), errors.Is(err, db.ErrNoActiveProfile):
		c.JSON(http.StatusNotFound, types.ErrorResponse{Error: "not_found", Message: err.Error()})
	case errors.Is(err, device.ErrUnknownRoom), errors.Is(err, device.ErrUnknownDeviceType), errors.Is(err, device.ErrInvalidState),
		errors.Is(err, schedule.ErrInvalidTime), errors.Is(err, schedule.ErrInvalidDate), errors.Is(err, notify.ErrEmptyMessage):
		c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "invalid_request", Message: err.Error()})
	case errors.Is(err, toolcall.ErrNoRetriever), errors.Is(err, rag.ErrEmptyIndex):
		c.JSON(http.StatusServiceUnavailable, types.ErrorResponse{Error: "rag_unavailable", Message: err.Error()})
	case errors.Is(err, retry.ErrUnavailable):
		c.JSON(http.StatusServiceUnavailable, types.ErrorResponse{Error: "unavailable", Message: toolcall.UserMessage(err)})
	default:
		c.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "internal_error", Message: err.Error()})
	}
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "invalid_request", Message: msg})
}

// sendSSEEvent writes an SSE event to the response
func sendSSEEvent(w io.Writer, eventType string, data any) {
	jsonData, _ := json.Marshal(data)
	_, _ = io.WriteString(w, "event: "+eventType+"\n")
	_, _ = io.WriteString(w, "data: "+string(jsonData)+"\n\n")
}
