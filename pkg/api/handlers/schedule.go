package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/urmzd/homecare/pkg/api/types"
	"github.com/urmzd/homecare/pkg/home"
	"github.com/urmzd/homecare/pkg/schedule"
	"github.com/urmzd/homecare/pkg/toolcall"
)

// ScheduleHandler handles schedule endpoints. Writes go through the tool
// router so REST, chat and MCP share one validation path.
type ScheduleHandler struct {
	home   *home.Home
	router *toolcall.Router
}

// NewScheduleHandler creates a new schedule handler
func NewScheduleHandler(h *home.Home, router *toolcall.Router) *ScheduleHandler {
	return &ScheduleHandler{home: h, router: router}
}

// ListSchedule handles GET /schedule
// @Summary      List schedule items
// @Description  Without a date, returns today's items followed by upcoming one-time items. With a date, returns the items active that day
// @Tags         schedule
// @Produce      json
// @Param        date  query     string  false  "Day as YYYY-MM-DD"
// @Success      200   {object}  types.ScheduleResponse
// @Failure      400   {object}  types.ErrorResponse  "Invalid date"
// @Router       /schedule [get]
func (h *ScheduleHandler) ListSchedule(c *gin.Context) {
	var (
		day   string
		items []schedule.Item
	)
	if raw := c.Query("date"); raw != "" {
		var err error
		if day, err = schedule.ParseDate(raw); err != nil {
			writeError(c, err)
			return
		}
		items = h.home.Schedule.Active(day)
	} else {
		items = h.home.Schedule.Upcoming()
	}
	if items == nil {
		items = []schedule.Item{}
	}
	c.JSON(http.StatusOK, types.ScheduleResponse{Date: day, Items: items, Count: len(items)})
}

// AddItem handles POST /schedule
// @Summary      Add a schedule item
// @Description  Adds a recurring item, or a one-time item when a date is given
// @Tags         schedule
// @Accept       json
// @Produce      json
// @Param        request  body      types.AddScheduleRequest  true  "Item"
// @Success      201      {object}  toolcall.Result
// @Failure      400      {object}  types.ErrorResponse  "Invalid time or date"
// @Failure      409      {object}  types.ErrorResponse  "Time already taken"
// @Router       /schedule [post]
func (h *ScheduleHandler) AddItem(c *gin.Context) {
	var req types.AddScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	h.dispatch(c, http.StatusCreated, toolcall.ScheduleModifier{
		ModifyType: toolcall.ModifyAdd,
		Time:       req.Time,
		Activity:   req.Activity,
		Date:       req.Date,
	})
}

// ChangeItem handles PATCH /schedule
// @Summary      Change a schedule item
// @Description  Moves an item to a new time, renames its activity, or both
// @Tags         schedule
// @Accept       json
// @Produce      json
// @Param        request  body      types.ChangeScheduleRequest  true  "Selector and update"
// @Success      200      {object}  toolcall.Result
// @Failure      400      {object}  types.ErrorResponse  "Invalid request"
// @Failure      404      {object}  types.ErrorResponse  "No such item"
// @Failure      409      {object}  types.ErrorResponse  "Time already taken"
// @Router       /schedule [patch]
func (h *ScheduleHandler) ChangeItem(c *gin.Context) {
	var req types.ChangeScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	h.dispatch(c, http.StatusOK, toolcall.ScheduleModifier{
		ModifyType:  toolcall.ModifyChange,
		OldTime:     req.OldTime,
		OldActivity: req.OldActivity,
		Date:        req.Date,
		Time:        req.Time,
		Activity:    req.Activity,
	})
}

// DeleteItem handles DELETE /schedule
// @Summary      Delete a schedule item
// @Tags         schedule
// @Produce      json
// @Param        time      query     string  true   "Time as HH:MM"
// @Param        activity  query     string  false  "Activity, to disambiguate"
// @Param        date      query     string  false  "Date of a one-time item"
// @Success      200       {object}  toolcall.Result
// @Failure      404       {object}  types.ErrorResponse  "No such item"
// @Router       /schedule [delete]
func (h *ScheduleHandler) DeleteItem(c *gin.Context) {
	t := c.Query("time")
	if t == "" {
		badRequest(c, "time query parameter is required")
		return
	}
	h.dispatch(c, http.StatusOK, toolcall.ScheduleModifier{
		ModifyType: toolcall.ModifyDelete,
		Time:       t,
		Activity:   c.Query("activity"),
		Date:       c.Query("date"),
	})
}

func (h *ScheduleHandler) dispatch(c *gin.Context, status int, call toolcall.ScheduleModifier) {
	res, err := h.router.Dispatch(c.Request.Context(), call)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(status, res)
}
