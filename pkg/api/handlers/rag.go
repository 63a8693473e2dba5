package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/urmzd/homecare/pkg/api/types"
	"github.com/urmzd/homecare/pkg/toolcall"
)

// RAGHandler queries the health knowledge base
type RAGHandler struct {
	retriever toolcall.Retriever
}

// NewRAGHandler creates a new knowledge handler. retriever may be nil.
func NewRAGHandler(retriever toolcall.Retriever) *RAGHandler {
	return &RAGHandler{retriever: retriever}
}

// Query handles POST /rag/query
// @Summary      Query the knowledge base
// @Description  Enhances the query with the user's condition and returns the passages above the similarity threshold
// @Tags         rag
// @Accept       json
// @Produce      json
// @Param        request  body      types.RAGQueryRequest  true  "Query"
// @Success      200      {object}  rag.Result
// @Failure      503      {object}  types.ErrorResponse  "Knowledge base not configured"
// @Router       /rag/query [post]
func (h *RAGHandler) Query(c *gin.Context) {
	var req types.RAGQueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if h.retriever == nil {
		writeError(c, toolcall.ErrNoRetriever)
		return
	}
	res, err := h.retriever.Retrieve(c.Request.Context(), req.Query, req.UserCondition)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
