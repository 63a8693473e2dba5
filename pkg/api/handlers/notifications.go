package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/urmzd/homecare/pkg/api/types"
	"github.com/urmzd/homecare/pkg/device"
	"github.com/urmzd/homecare/pkg/notify"
)

// heartbeatInterval paces keep-alive events on streaming endpoints.
var heartbeatInterval = 30 * time.Second

// NotificationsHandler handles inbox endpoints
type NotificationsHandler struct {
	inbox   *notify.Inbox
	sink    notify.Sink
	devices *device.StateManager
	now     func() time.Time
}

// NewNotificationsHandler creates a new notifications handler. Custom
// notifications are delivered to sink, which should include the inbox.
// devices may be nil, in which case the event stream carries notifications
// only.
func NewNotificationsHandler(inbox *notify.Inbox, sink notify.Sink, devices *device.StateManager) *NotificationsHandler {
	return &NotificationsHandler{inbox: inbox, sink: sink, devices: devices, now: time.Now}
}

// ListNotifications handles GET /notifications
// @Summary      List notifications
// @Description  Returns retained notifications, newest first
// @Tags         notifications
// @Produce      json
// @Param        unacked  query     bool  false  "Only unacknowledged notifications"
// @Success      200      {object}  types.NotificationsResponse
// @Router       /notifications [get]
func (h *NotificationsHandler) ListNotifications(c *gin.Context) {
	unacked, _ := strconv.ParseBool(c.DefaultQuery("unacked", "false"))
	list := h.inbox.List(unacked)
	c.JSON(http.StatusOK, types.NotificationsResponse{Notifications: list, Count: len(list)})
}

// PostCustom handles POST /notifications
// @Summary      Post a custom notification
// @Description  Delivers an operator message through the same inbox the scheduler uses
// @Tags         notifications
// @Accept       json
// @Produce      json
// @Param        request  body      types.CustomNotificationRequest  true  "Message"
// @Success      201      {object}  notify.Notification
// @Failure      400      {object}  types.ErrorResponse  "Empty message"
// @Router       /notifications [post]
func (h *NotificationsHandler) PostCustom(c *gin.Context) {
	var req types.CustomNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	n, err := notify.NewCustom(req.Message, h.now())
	if err != nil {
		writeError(c, err)
		return
	}
	if err := h.sink.Deliver(c.Request.Context(), n); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, n)
}

// Acknowledge handles POST /notifications/:id/ack
// @Summary      Acknowledge a notification
// @Tags         notifications
// @Produce      json
// @Param        id   path      string  true  "Notification ID"
// @Success      200  {object}  notify.Notification
// @Failure      404  {object}  types.ErrorResponse  "Unknown notification"
// @Router       /notifications/{id}/ack [post]
func (h *NotificationsHandler) Acknowledge(c *gin.Context) {
	n, err := h.inbox.Acknowledge(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, n)
}

// Events handles GET /notifications/events (SSE)
// @Summary      Notification event stream
// @Description  Server-Sent Events stream of new notifications and device state changes
// @Tags         notifications
// @Produce      text/event-stream
// @Success      200  {string}  string  "SSE stream"
// @Router       /notifications/events [get]
func (h *NotificationsHandler) Events(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	notifications := h.inbox.Subscribe()
	defer h.inbox.Unsubscribe(notifications)

	var deviceEvents chan device.Event
	if h.devices != nil {
		deviceEvents = h.devices.Subscribe()
		defer h.devices.Unsubscribe(deviceEvents)
	}

	sendSSEEvent(c.Writer, "connected", map[string]any{
		"timestamp": h.now(),
		"message":   "Connected to notification stream",
	})
	c.Writer.Flush()

	clientGone := c.Request.Context().Done()

	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-clientGone:
			return

		case n, ok := <-notifications:
			if !ok {
				return
			}
			sendSSEEvent(c.Writer, "notification", n)
			c.Writer.Flush()

		case ev, ok := <-deviceEvents:
			if !ok {
				return
			}
			sendSSEEvent(c.Writer, ev.Type, ev)
			c.Writer.Flush()

		case <-ticker.C:
			sendSSEEvent(c.Writer, "heartbeat", map[string]any{
				"timestamp": h.now(),
			})
			c.Writer.Flush()
		}
	}
}
