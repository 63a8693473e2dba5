package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/urmzd/homecare/pkg/api/types"
	"github.com/urmzd/homecare/pkg/assistant"
	"github.com/urmzd/homecare/pkg/db"
)

// ProfileHandler handles the active runtime profile
type ProfileHandler struct {
	profiles  db.ProfileStore
	assistant *assistant.Assistant
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(profiles db.ProfileStore, a *assistant.Assistant) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, assistant: a}
}

func profileResponse(p *db.Profile) types.ProfileResponse {
	return types.ProfileResponse{
		Name:      p.Name,
		UserName:  p.UserName,
		Condition: p.Condition,
		Timezone:  p.Timezone,
	}
}

// GetProfile handles GET /profile
// @Summary      Get the active profile
// @Tags         profile
// @Produce      json
// @Success      200  {object}  types.ProfileResponse
// @Failure      404  {object}  types.ErrorResponse  "No active profile"
// @Router       /profile [get]
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	p, err := h.profiles.GetActive(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, profileResponse(p))
}

// UpdateProfile handles PUT /profile
// @Summary      Update the active profile
// @Description  Changes the user's name, health condition or timezone. The assistant uses the new values from its next turn
// @Tags         profile
// @Accept       json
// @Produce      json
// @Param        request  body      types.UpdateProfileRequest  true  "Fields to change"
// @Success      200      {object}  types.ProfileResponse
// @Failure      400      {object}  types.ErrorResponse  "Invalid timezone"
// @Failure      404      {object}  types.ErrorResponse  "No active profile"
// @Router       /profile [put]
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	var req types.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	p, err := h.profiles.GetActive(ctx)
	if err != nil {
		writeError(c, err)
		return
	}

	if req.UserName != nil {
		p.UserName = strings.TrimSpace(*req.UserName)
	}
	if req.Condition != nil {
		p.Condition = strings.TrimSpace(*req.Condition)
	}
	if req.Timezone != nil {
		tz := strings.TrimSpace(*req.Timezone)
		if _, err := time.LoadLocation(tz); err != nil || tz == "" {
			badRequest(c, "invalid timezone: "+*req.Timezone)
			return
		}
		p.Timezone = tz
	}

	if err := h.profiles.Update(ctx, p); err != nil {
		writeError(c, err)
		return
	}
	if h.assistant != nil {
		h.assistant.SetProfile(assistant.Profile{UserName: p.UserName, Condition: p.Condition})
	}
	c.JSON(http.StatusOK, profileResponse(p))
}
