package types

import (
	"encoding/json"
	"time"

	"github.com/urmzd/homecare/pkg/device"
	"github.com/urmzd/homecare/pkg/llm"
	"github.com/urmzd/homecare/pkg/notify"
	"github.com/urmzd/homecare/pkg/rag"
	"github.com/urmzd/homecare/pkg/schedule"
	"github.com/urmzd/homecare/pkg/toolcall"
)

// --- Request DTOs ---

// ChatRequest is the request body for POST /chat
type ChatRequest struct {
	Message string `json:"message" binding:"required"`
}

// SetStateRequest is the request body for POST /devices/:room/:device/state
type SetStateRequest struct {
	State string `json:"state" binding:"required"`
}

// SetLocationRequest is the request body for PUT /location
type SetLocationRequest struct {
	Room string `json:"room" binding:"required"`
}

// AddScheduleRequest is the request body for POST /schedule
type AddScheduleRequest struct {
	Time     string `json:"time" binding:"required"`
	Activity string `json:"activity" binding:"required"`
	Date     string `json:"date,omitempty"`
}

// ChangeScheduleRequest is the request body for PATCH /schedule
type ChangeScheduleRequest struct {
	OldTime     string `json:"old_time" binding:"required"`
	OldActivity string `json:"old_activity,omitempty"`
	Date        string `json:"date,omitempty"`
	Time        string `json:"time,omitempty"`
	Activity    string `json:"activity,omitempty"`
}

// CustomNotificationRequest is the request body for POST /notifications
type CustomNotificationRequest struct {
	Message string `json:"message" binding:"required"`
}

// DoNotRemindRequest is the request body for POST /preferences/do-not-remind
type DoNotRemindRequest struct {
	Item string `json:"item" binding:"required"`
}

// NotifyPreferenceRequest is the request body for PUT /preferences/notify
type NotifyPreferenceRequest struct {
	Room   string `json:"room" binding:"required"`
	Device string `json:"device" binding:"required"`
	Notify bool   `json:"notify"`
}

// UpdateProfileRequest is the request body for PUT /profile
type UpdateProfileRequest struct {
	UserName  *string `json:"user_name,omitempty"`
	Condition *string `json:"user_condition,omitempty"`
	Timezone  *string `json:"timezone,omitempty"`
}

// RAGQueryRequest is the request body for POST /rag/query
type RAGQueryRequest struct {
	Query         string `json:"query" binding:"required"`
	UserCondition string `json:"user_condition,omitempty"`
}

// --- Response DTOs ---

// ErrorResponse represents an API error
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// HealthResponse is returned from GET /health
type HealthResponse struct {
	Status    string    `json:"status"`
	Database  string    `json:"database"`
	LLM       string    `json:"llm"`
	Timestamp time.Time `json:"timestamp"`
}

// ChatResponse is returned from POST /chat
type ChatResponse struct {
	Message   string            `json:"message"`
	Results   []toolcall.Result `json:"results,omitempty"`
	Errors    []string          `json:"errors,omitempty"`
	Retrieval *rag.Result       `json:"retrieval,omitempty"`
}

// HistoryResponse is returned from GET /chat/history
type HistoryResponse struct {
	Messages []llm.Message `json:"messages"`
	Summary  llm.Summary   `json:"summary"`
}

// DevicesResponse is returned from GET /devices
type DevicesResponse struct {
	Location device.Room                   `json:"location"`
	Devices  []device.Record               `json:"devices"`
	Fixtures map[device.Room][]device.Type `json:"fixtures"`
	On       int                           `json:"on"`
}

// DeviceResponse is returned from GET /devices/:room/:device
type DeviceResponse struct {
	Device    device.Record `json:"device"`
	Installed bool          `json:"installed"`
}

// LocationResponse is returned from GET/PUT /location
type LocationResponse struct {
	Location device.Room `json:"location"`
}

// ScheduleResponse is returned from GET /schedule
type ScheduleResponse struct {
	Date  string          `json:"date,omitempty"`
	Items []schedule.Item `json:"items"`
	Count int             `json:"count"`
}

// NotificationsResponse is returned from GET /notifications
type NotificationsResponse struct {
	Notifications []notify.Notification `json:"notifications"`
	Count         int                   `json:"count"`
}

// PreferencesResponse is returned from the preference endpoints
type PreferencesResponse struct {
	DoNotRemind []string     `json:"do_not_remind"`
	DoNotNotify []device.Key `json:"do_not_notify"`
}

// ProfileResponse is returned from GET/PUT /profile
type ProfileResponse struct {
	Name      string `json:"name"`
	UserName  string `json:"user_name"`
	Condition string `json:"user_condition"`
	Timezone  string `json:"timezone"`
}

// ToolsResponse is returned from GET /tools
type ToolsResponse struct {
	Tools []ToolInfo `json:"tools"`
}

// ToolInfo describes one tool and its argument schema.
type ToolInfo struct {
	Name   toolcall.Name   `json:"name"`
	Schema json.RawMessage `json:"schema"`
}
