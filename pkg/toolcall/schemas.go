package toolcall

import (
	"encoding/json"

	"github.com/urmzd/homecare/pkg/toolcall/schema"
)

// Argument schemas check shape only. Room, device and action enumerations
// are enforced by the router so they surface as InvalidDeviceError.
var argumentSchemas = map[Name]json.RawMessage{
	ChatMessageTool: json.RawMessage(`{
		"type": "object",
		"properties": {
			"message": {"type": "string"}
		},
		"required": ["message"]
	}`),
	DeviceControlTool: json.RawMessage(`{
		"type": "object",
		"properties": {
			"room":   {"type": "string"},
			"device": {"type": "string"},
			"action": {"type": "string"}
		}
	}`),
	ScheduleModifierTool: json.RawMessage(`{
		"type": "object",
		"properties": {
			"modify_type":  {"type": "string"},
			"time":         {"type": ["string", "number", "null"]},
			"activity":     {"type": ["string", "null"]},
			"old_time":     {"type": ["string", "number", "null"]},
			"old_activity": {"type": ["string", "null"]},
			"date":         {"type": ["string", "null"], "pattern": "^\\d{4}-\\d{2}-\\d{2}$"}
		}
	}`),
	RAGQueryTool: json.RawMessage(`{
		"type": "object",
		"properties": {
			"query":          {"type": "string"},
			"user_condition": {"type": ["string", "null"]}
		}
	}`),
}

// NewValidator returns a validator with every tool's argument schema
// registered under the tool name.
func NewValidator() (*schema.Validator, error) {
	v := schema.NewValidator()
	for _, name := range Names {
		if err := v.Register(string(name), argumentSchemas[name]); err != nil {
			return nil, err
		}
	}
	return v, nil
}

// ArgumentSchema returns the JSON schema of a tool's arguments.
func ArgumentSchema(name Name) json.RawMessage {
	return argumentSchemas[name]
}
