package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/urmzd/homecare/pkg/api/types"
	"github.com/urmzd/homecare/pkg/toolcall"
)

// ToolsHandler exposes the tool-call surface directly, bypassing the model
type ToolsHandler struct {
	decoder *toolcall.Decoder
	router  *toolcall.Router
}

// NewToolsHandler creates a new tools handler
func NewToolsHandler(decoder *toolcall.Decoder, router *toolcall.Router) *ToolsHandler {
	return &ToolsHandler{decoder: decoder, router: router}
}

// ListTools handles GET /tools
// @Summary      List tools
// @Description  Returns every tool with the JSON Schema of its arguments
// @Tags         tools
// @Produce      json
// @Success      200  {object}  types.ToolsResponse
// @Router       /tools [get]
func (h *ToolsHandler) ListTools(c *gin.Context) {
	tools := make([]types.ToolInfo, 0, len(toolcall.Names))
	for _, name := range toolcall.Names {
		tools = append(tools, types.ToolInfo{Name: name, Schema: toolcall.ArgumentSchema(name)})
	}
	c.JSON(http.StatusOK, types.ToolsResponse{Tools: tools})
}

// Call handles POST /tools/:name
// @Summary      Invoke a tool
// @Description  Validates the arguments against the tool's schema and dispatches the call
// @Tags         tools
// @Accept       json
// @Produce      json
// @Param        name       path      string  true  "Tool name"
// @Param        arguments  body      object  true  "Tool arguments"
// @Success      200        {object}  toolcall.Result
// @Failure      400        {object}  types.ErrorResponse  "Invalid arguments"
// @Failure      404        {object}  types.ErrorResponse  "Unknown tool or schedule item"
// @Failure      409        {object}  types.ErrorResponse  "Schedule conflict"
// @Router       /tools/{name} [post]
func (h *ToolsHandler) Call(c *gin.Context) {
	var args map[string]any
	if c.Request.ContentLength != 0 {
		if err := json.NewDecoder(c.Request.Body).Decode(&args); err != nil {
			badRequest(c, "arguments must be a JSON object")
			return
		}
	}

	call, err := h.decoder.Decode(c.Param("name"), args)
	if err != nil {
		writeError(c, err)
		return
	}
	res, err := h.router.Dispatch(c.Request.Context(), call)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
