package mcp

import (
	"github.com/urmzd/homecare/pkg/device"
	"github.com/urmzd/homecare/pkg/notify"
	"github.com/urmzd/homecare/pkg/schedule"
	"github.com/urmzd/homecare/pkg/toolcall"
)

// GetHealthOutput is the output for the get_health tool
type GetHealthOutput struct {
	Status    string `json:"status" jsonschema:"description=Overall health status"`
	Timestamp string `json:"timestamp" jsonschema:"description=ISO8601 timestamp"`
}

// GetStateOutput is the output for the get_state tool
type GetStateOutput struct {
	Location device.Room     `json:"location" jsonschema:"description=Room the user occupies"`
	Devices  []device.Record `json:"devices" jsonschema:"description=Every device of the matrix"`
	On       []device.Key    `json:"on" jsonschema:"description=Devices currently switched on"`
	Today    string          `json:"today" jsonschema:"description=Current date"`
	Schedule []schedule.Item `json:"schedule" jsonschema:"description=Items active today"`
}

// LocationOutput is the output for the set_location tool
type LocationOutput struct {
	Location device.Room `json:"location"`
}

// ListScheduleOutput is the output for the list_schedule tool
type ListScheduleOutput struct {
	Date  string          `json:"date,omitempty"`
	Items []schedule.Item `json:"items"`
	Count int             `json:"count"`
}

// ListNotificationsOutput is the output for the list_notifications tool
type ListNotificationsOutput struct {
	Notifications []notify.Notification `json:"notifications"`
	Count         int                   `json:"count"`
}

// AskAssistantOutput is the output for the ask_assistant tool
type AskAssistantOutput struct {
	Message string            `json:"message"`
	Results []toolcall.Result `json:"results,omitempty"`
	Errors  []string          `json:"errors,omitempty"`
}
