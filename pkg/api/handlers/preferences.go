package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/urmzd/homecare/pkg/api/types"
	"github.com/urmzd/homecare/pkg/device"
	"github.com/urmzd/homecare/pkg/home"
)

// PreferencesHandler handles the do-not-remind list and device
// notification preferences
type PreferencesHandler struct {
	home *home.Home
}

// NewPreferencesHandler creates a new preferences handler
func NewPreferencesHandler(h *home.Home) *PreferencesHandler {
	return &PreferencesHandler{home: h}
}

func (h *PreferencesHandler) current() types.PreferencesResponse {
	resp := types.PreferencesResponse{
		DoNotRemind: h.home.Preferences.DoNotRemind(),
		DoNotNotify: h.home.Preferences.Muted(),
	}
	if resp.DoNotRemind == nil {
		resp.DoNotRemind = []string{}
	}
	if resp.DoNotNotify == nil {
		resp.DoNotNotify = []device.Key{}
	}
	return resp
}

// GetPreferences handles GET /preferences
// @Summary      Get preferences
// @Tags         preferences
// @Produce      json
// @Success      200  {object}  types.PreferencesResponse
// @Router       /preferences [get]
func (h *PreferencesHandler) GetPreferences(c *gin.Context) {
	c.JSON(http.StatusOK, h.current())
}

// AddDoNotRemind handles POST /preferences/do-not-remind
// @Summary      Add a do-not-remind entry
// @Description  Assistant messages mentioning the entry are suppressed
// @Tags         preferences
// @Accept       json
// @Produce      json
// @Param        request  body      types.DoNotRemindRequest  true  "Entry"
// @Success      200      {object}  types.PreferencesResponse
// @Failure      400      {object}  types.ErrorResponse
// @Router       /preferences/do-not-remind [post]
func (h *PreferencesHandler) AddDoNotRemind(c *gin.Context) {
	var req types.DoNotRemindRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	item := strings.TrimSpace(req.Item)
	if item == "" {
		badRequest(c, "item must not be empty")
		return
	}
	err := h.home.Mutate(c.Request.Context(), func() error {
		h.home.Preferences.AddDoNotRemind(item)
		return nil
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.current())
}

// RemoveDoNotRemind handles DELETE /preferences/do-not-remind/:item
// @Summary      Remove a do-not-remind entry
// @Tags         preferences
// @Produce      json
// @Param        item  path      string  true  "Entry"
// @Success      200   {object}  types.PreferencesResponse
// @Failure      404   {object}  types.ErrorResponse  "Entry not on the list"
// @Router       /preferences/do-not-remind/{item} [delete]
func (h *PreferencesHandler) RemoveDoNotRemind(c *gin.Context) {
	item := c.Param("item")
	var removed bool
	err := h.home.Mutate(c.Request.Context(), func() error {
		removed = h.home.Preferences.RemoveDoNotRemind(item)
		return nil
	})
	if err != nil {
		writeError(c, err)
		return
	}
	if !removed {
		c.JSON(http.StatusNotFound, types.ErrorResponse{Error: "not_found", Message: "entry not on the do-not-remind list"})
		return
	}
	c.JSON(http.StatusOK, h.current())
}

// SetNotify handles PUT /preferences/notify
// @Summary      Set device-left-on notifications for a device
// @Tags         preferences
// @Accept       json
// @Produce      json
// @Param        request  body      types.NotifyPreferenceRequest  true  "Device and flag"
// @Success      200      {object}  types.PreferencesResponse
// @Failure      400      {object}  types.ErrorResponse  "Unknown room or device"
// @Router       /preferences/notify [put]
func (h *PreferencesHandler) SetNotify(c *gin.Context) {
	var req types.NotifyPreferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	room, err := device.ParseRoom(req.Room)
	if err != nil {
		writeError(c, err)
		return
	}
	typ, err := device.ParseType(req.Device)
	if err != nil {
		writeError(c, err)
		return
	}

	err = h.home.Mutate(c.Request.Context(), func() error {
		h.home.Preferences.SetNotify(device.Key{Room: room, Type: typ}, req.Notify)
		return nil
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.current())
}
