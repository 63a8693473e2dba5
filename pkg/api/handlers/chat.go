package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/urmzd/homecare/pkg/api/types"
	"github.com/urmzd/homecare/pkg/assistant"
)

// HistoryClearer drops persisted chat history.
type HistoryClearer interface {
	Clear(ctx context.Context) error
}

// ChatHandler handles conversation endpoints
type ChatHandler struct {
	assistant *assistant.Assistant
	history   HistoryClearer
}

// NewChatHandler creates a new chat handler. history may be nil.
func NewChatHandler(a *assistant.Assistant, history HistoryClearer) *ChatHandler {
	return &ChatHandler{assistant: a, history: history}
}

// Chat handles POST /chat
// @Summary      Send a chat message
// @Description  Runs one assistant turn: the model answers and any tool calls it issues are applied
// @Tags         chat
// @Accept       json
// @Produce      json
// @Param        request  body      types.ChatRequest  true  "User message"
// @Success      200      {object}  types.ChatResponse
// @Failure      400      {object}  types.ErrorResponse  "Invalid request"
// @Router       /chat [post]
func (h *ChatHandler) Chat(c *gin.Context) {
	var req types.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	reply, err := h.assistant.Chat(c.Request.Context(), req.Message)
	if errors.Is(err, assistant.ErrEmptyMessage) {
		badRequest(c, err.Error())
		return
	}
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, types.ChatResponse{
		Message:   reply.Message,
		Results:   reply.Results,
		Errors:    reply.Errors,
		Retrieval: reply.Retrieval,
	})
}

// History handles GET /chat/history
// @Summary      Conversation memory
// @Description  Returns the recent messages and the rolling summary the assistant keeps
// @Tags         chat
// @Produce      json
// @Success      200  {object}  types.HistoryResponse
// @Router       /chat/history [get]
func (h *ChatHandler) History(c *gin.Context) {
	conv := h.assistant.Conversation()
	c.JSON(http.StatusOK, types.HistoryResponse{
		Messages: conv.Recent(),
		Summary:  conv.Summary(),
	})
}

// Reset handles DELETE /chat
// @Summary      Reset the conversation
// @Description  Clears the conversation memory and the persisted history
// @Tags         chat
// @Success      204
// @Failure      500  {object}  types.ErrorResponse
// @Router       /chat [delete]
func (h *ChatHandler) Reset(c *gin.Context) {
	h.assistant.Reset()
	if h.history != nil {
		if err := h.history.Clear(c.Request.Context()); err != nil {
			writeError(c, err)
			return
		}
	}
	c.Status(http.StatusNoContent)
}
