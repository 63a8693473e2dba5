package handlers

import (
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/urmzd/homecare/pkg/api/types"
	"github.com/urmzd/homecare/pkg/device"
	"github.com/urmzd/homecare/pkg/home"
	"github.com/urmzd/homecare/pkg/toolcall"
)

// DevicesHandler handles device and location endpoints
type DevicesHandler struct {
	home   *home.Home
	router *toolcall.Router
}

// NewDevicesHandler creates a new devices handler
func NewDevicesHandler(h *home.Home, router *toolcall.Router) *DevicesHandler {
	return &DevicesHandler{home: h, router: router}
}

// pathParam undoes the separators clients use for "Living Room" in paths.
func pathParam(c *gin.Context, name string) string {
	return strings.NewReplacer("_", " ", "-", " ").Replace(c.Param(name))
}

// ListDevices handles GET /devices
// @Summary      List all devices
// @Description  Returns the full room by device matrix, the installed fixtures and the user's location
// @Tags         devices
// @Produce      json
// @Success      200  {object}  types.DevicesResponse
// @Router       /devices [get]
func (h *DevicesHandler) ListDevices(c *gin.Context) {
	snap := h.home.Devices.Snapshot()
	c.JSON(http.StatusOK, types.DevicesResponse{
		Location: snap.Location,
		Devices:  snap.Devices,
		Fixtures: device.Fixtures,
		On:       len(snap.On()),
	})
}

// GetDevice handles GET /devices/:room/:device
// @Summary      Get one device
// @Description  Returns the state of one device. Rooms may be written living_room or living-room
// @Tags         devices
// @Produce      json
// @Param        room    path      string  true  "Room"
// @Param        device  path      string  true  "Device type"
// @Success      200     {object}  types.DeviceResponse
// @Failure      400     {object}  types.ErrorResponse  "Unknown room or device"
// @Router       /devices/{room}/{device} [get]
func (h *DevicesHandler) GetDevice(c *gin.Context) {
	room, err := device.ParseRoom(pathParam(c, "room"))
	if err != nil {
		writeError(c, err)
		return
	}
	typ, err := device.ParseType(pathParam(c, "device"))
	if err != nil {
		writeError(c, err)
		return
	}
	rec, err := h.home.Devices.DeviceState(room, typ)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.DeviceResponse{
		Device:    rec,
		Installed: slices.Contains(device.Fixtures[room], typ),
	})
}

// SetState handles POST /devices/:room/:device/state
// @Summary      Switch a device
// @Description  Applies an e_device_control call for the device
// @Tags         devices
// @Accept       json
// @Produce      json
// @Param        room     path      string                 true  "Room"
// @Param        device   path      string                 true  "Device type"
// @Param        request  body      types.SetStateRequest  true  "ON or OFF"
// @Success      200      {object}  toolcall.Result
// @Failure      400      {object}  types.ErrorResponse  "Invalid device or state"
// @Router       /devices/{room}/{device}/state [post]
func (h *DevicesHandler) SetState(c *gin.Context) {
	var req types.SetStateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	res, err := h.router.Dispatch(c.Request.Context(), toolcall.DeviceControl{
		Room:   pathParam(c, "room"),
		Device: pathParam(c, "device"),
		Action: strings.ToUpper(strings.TrimSpace(req.State)),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GetLocation handles GET /location
// @Summary      Current location
// @Tags         devices
// @Produce      json
// @Success      200  {object}  types.LocationResponse
// @Router       /location [get]
func (h *DevicesHandler) GetLocation(c *gin.Context) {
	c.JSON(http.StatusOK, types.LocationResponse{Location: h.home.Devices.Location()})
}

// SetLocation handles PUT /location
// @Summary      Move the user
// @Description  Sets the room the user occupies
// @Tags         devices
// @Accept       json
// @Produce      json
// @Param        request  body      types.SetLocationRequest  true  "Room"
// @Success      200      {object}  types.LocationResponse
// @Failure      400      {object}  types.ErrorResponse  "Unknown room"
// @Router       /location [put]
func (h *DevicesHandler) SetLocation(c *gin.Context) {
	var req types.SetLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	room, err := device.ParseRoom(req.Room)
	if err != nil {
		writeError(c, err)
		return
	}

	err = h.home.Mutate(c.Request.Context(), func() error {
		return h.home.Devices.SetLocation(room)
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.LocationResponse{Location: room})
}
