package toolcall

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-viper/mapstructure/v2"

	"github.com/urmzd/homecare/pkg/device"
	"github.com/urmzd/homecare/pkg/toolcall/schema"
)

// Decoder turns a tool name and a loose argument map into a typed Call.
type Decoder struct {
	validator *schema.Validator
}

// NewDecoder creates a decoder with the built-in argument schemas.
func NewDecoder() (*Decoder, error) {
	v, err := NewValidator()
	if err != nil {
		return nil, fmt.Errorf("failed to compile argument schemas: %w", err)
	}
	return &Decoder{validator: v}, nil
}

// Decode builds the call named name. Unknown names return ErrUnknownTool;
// malformed or missing arguments return a *ValidationError.
func (d *Decoder) Decode(name string, args map[string]any) (Call, error) {
	tool, err := ParseName(name)
	if err != nil {
		return nil, err
	}
	if args == nil {
		args = map[string]any{}
	}

	if err := d.validator.ValidateNamed(string(tool), args); err != nil {
		return nil, &ValidationError{Tool: tool, Reason: schema.Summary(err), Err: err}
	}

	switch tool {
	case ChatMessageTool:
		var c ChatMessage
		if err := decodeInto(tool, args, &c); err != nil {
			return nil, err
		}
		return c, nil
	case DeviceControlTool:
		var c DeviceControl
		if err := decodeInto(tool, args, &c); err != nil {
			return nil, err
		}
		return normalizeDeviceControl(c)
	case ScheduleModifierTool:
		var c ScheduleModifier
		if err := decodeInto(tool, args, &c); err != nil {
			return nil, err
		}
		return checkScheduleModifier(c)
	case RAGQueryTool:
		var c RAGQuery
		if err := decodeInto(tool, args, &c); err != nil {
			return nil, err
		}
		c.Query = strings.TrimSpace(c.Query)
		if c.Query == "" {
			return nil, missing(tool, "query")
		}
		return c, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownTool, name)
}

// DecodeJSON decodes raw JSON arguments.
func (d *Decoder) DecodeJSON(name string, raw json.RawMessage) (Call, error) {
	args := map[string]any{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &args); err != nil {
			return nil, &ValidationError{Tool: Name(name), Reason: "arguments must be a JSON object", Err: err}
		}
	}
	return d.Decode(name, args)
}

func decodeInto(tool Name, args map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(args); err != nil {
		return &ValidationError{Tool: tool, Reason: err.Error(), Err: err}
	}
	return nil
}

// normalizeDeviceControl fills a missing room from a combined device such
// as "Kitchen Light" and uppercases the action. Enumeration checks are
// left to the router.
func normalizeDeviceControl(c DeviceControl) (Call, error) {
	c.Room = strings.TrimSpace(c.Room)
	c.Device = strings.TrimSpace(c.Device)
	c.Action = strings.ToUpper(strings.TrimSpace(c.Action))

	if room, rest, ok := device.SplitRoomDevice(c.Device); ok {
		if c.Room == "" {
			c.Room = string(room)
		} else if named, err := device.ParseRoom(c.Room); err == nil && named != room {
			return nil, &ValidationError{
				Tool:   DeviceControlTool,
				Field:  "room",
				Reason: fmt.Sprintf("room %s does not match device %q; which room did you mean", named, c.Device),
			}
		}
		c.Device = rest
	}

	switch {
	case c.Room == "":
		return nil, missing(DeviceControlTool, "room")
	case c.Device == "":
		return nil, missing(DeviceControlTool, "device")
	case c.Action == "":
		return nil, missing(DeviceControlTool, "action")
	}
	return c, nil
}

func checkScheduleModifier(c ScheduleModifier) (Call, error) {
	c.ModifyType = ModifyType(strings.ToLower(strings.TrimSpace(string(c.ModifyType))))
	c.Time = strings.TrimSpace(c.Time)
	c.Activity = strings.TrimSpace(c.Activity)
	c.OldTime = strings.TrimSpace(c.OldTime)
	c.OldActivity = strings.TrimSpace(c.OldActivity)
	c.Date = strings.TrimSpace(c.Date)

	switch c.ModifyType {
	case ModifyAdd:
		if c.Time == "" {
			return nil, missing(ScheduleModifierTool, "time")
		}
		if c.Activity == "" {
			return nil, missing(ScheduleModifierTool, "activity")
		}
	case ModifyDelete:
		if c.Time == "" {
			return nil, missing(ScheduleModifierTool, "time")
		}
	case ModifyChange:
		if c.OldTime == "" {
			return nil, missing(ScheduleModifierTool, "old_time")
		}
		if c.Time == "" && c.Activity == "" {
			return nil, &ValidationError{
				Tool:   ScheduleModifierTool,
				Field:  "time",
				Reason: "a new time or activity is required to change an item",
			}
		}
	case "":
		return nil, missing(ScheduleModifierTool, "modify_type")
	default:
		return nil, &ValidationError{
			Tool:   ScheduleModifierTool,
			Field:  "modify_type",
			Reason: fmt.Sprintf("modify_type must be add, delete or change, not %q", c.ModifyType),
		}
	}
	return c, nil
}
