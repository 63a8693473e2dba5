// Package toolcall defines the closed set of tool calls the assistant can
// issue and the router that applies them to the home.
package toolcall

import (
	"errors"
	"fmt"
	"strings"
)

// Name identifies a tool.
type Name string

// Tool names
const (
	ChatMessageTool      Name = "chat_message"
	DeviceControlTool    Name = "e_device_control"
	ScheduleModifierTool Name = "schedule_modifier"
	RAGQueryTool         Name = "rag_query"
)

// Names lists every tool.
var Names = []Name{ChatMessageTool, DeviceControlTool, ScheduleModifierTool, RAGQueryTool}

// ErrUnknownTool indicates a tool name outside the closed set
var ErrUnknownTool = errors.New("unknown tool")

// ParseName resolves a tool name.
func ParseName(s string) (Name, error) {
	n := Name(strings.TrimSpace(s))
	for _, known := range Names {
		if n == known {
			return n, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTool, s)
}

// Call is one of ChatMessage, DeviceControl, ScheduleModifier or RAGQuery.
// The set is closed: only this package can add implementations.
type Call interface {
	Name() Name
	Arguments() map[string]any
	isCall()
}

// ChatMessage sends text to the user without touching state.
type ChatMessage struct {
	Message string `json:"message"`
}

// DeviceControl switches one device. Fields hold the normalized text as
// received; the router validates them against the enumerations.
type DeviceControl struct {
	Room   string `json:"room"`
	Device string `json:"device"`
	Action string `json:"action"`
}

// ModifyType selects the schedule operation.
type ModifyType string

// Schedule operations
const (
	ModifyAdd    ModifyType = "add"
	ModifyDelete ModifyType = "delete"
	ModifyChange ModifyType = "change"
)

// ScheduleModifier adds, deletes or changes a schedule item. Date is an
// already-resolved YYYY-MM-DD and marks the item one-time.
type ScheduleModifier struct {
	ModifyType  ModifyType `json:"modify_type"`
	Time        string     `json:"time,omitempty"`
	Activity    string     `json:"activity,omitempty"`
	OldTime     string     `json:"old_time,omitempty"`
	OldActivity string     `json:"old_activity,omitempty"`
	Date        string     `json:"date,omitempty"`
}

// RAGQuery asks the knowledge base a question.
type RAGQuery struct {
	Query         string `json:"query"`
	UserCondition string `json:"user_condition,omitempty"`
}

func (ChatMessage) Name() Name      { return ChatMessageTool }
func (DeviceControl) Name() Name    { return DeviceControlTool }
func (ScheduleModifier) Name() Name { return ScheduleModifierTool }
func (RAGQuery) Name() Name         { return RAGQueryTool }

func (ChatMessage) isCall()      {}
func (DeviceControl) isCall()    {}
func (ScheduleModifier) isCall() {}
func (RAGQuery) isCall()         {}

func (c ChatMessage) Arguments() map[string]any {
	return map[string]any{"message": c.Message}
}

func (c DeviceControl) Arguments() map[string]any {
	return map[string]any{"room": c.Room, "device": c.Device, "action": c.Action}
}

func (c ScheduleModifier) Arguments() map[string]any {
	args := map[string]any{"modify_type": string(c.ModifyType)}
	for k, v := range map[string]string{
		"time":         c.Time,
		"activity":     c.Activity,
		"old_time":     c.OldTime,
		"old_activity": c.OldActivity,
		"date":         c.Date,
	} {
		if v != "" {
			args[k] = v
		}
	}
	return args
}

func (c RAGQuery) Arguments() map[string]any {
	args := map[string]any{"query": c.Query}
	if c.UserCondition != "" {
		args["user_condition"] = c.UserCondition
	}
	return args
}

// Wire is the JSON form of a call: {"tool": name, "arguments": {...}}.
type Wire struct {
	Tool      Name           `json:"tool"`
	Arguments map[string]any `json:"arguments"`
}

// Encode returns the wire form of c.
func Encode(c Call) Wire {
	return Wire{Tool: c.Name(), Arguments: c.Arguments()}
}
