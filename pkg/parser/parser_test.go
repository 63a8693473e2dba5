package parser

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/urmzd/homecare/pkg/toolcall"
)

func newTestParser(t *testing.T) *Parser {
	t.Helper()
	dec, err := toolcall.NewDecoder()
	require.NoError(t, err)
	return New(dec)
}

func TestParse_RoundTrip(t *testing.T) {
	p := newTestParser(t)
	calls := []toolcall.Call{
		toolcall.ChatMessage{Message: "Hello there"},
		toolcall.DeviceControl{Room: "Bedroom", Device: "Light", Action: "ON"},
		toolcall.ScheduleModifier{ModifyType: toolcall.ModifyAdd, Time: "14:00", Activity: "Meeting"},
		toolcall.RAGQuery{Query: "seated exercises", UserCondition: "wheelchair"},
	}
	for _, c := range calls {
		t.Run(string(c.Name()), func(t *testing.T) {
			raw, err := json.Marshal(toolcall.Encode(c))
			require.NoError(t, err)

			for _, text := range []string{
				string(raw),
				"Sure! Here you go:\n```json\n" + string(raw) + "\n```",
				"Okay, doing that now " + string(raw) + " hope that helps",
				"<think>the user wants something</think>" + string(raw),
			} {
				res := p.Parse(text)
				require.Equal(t, ToolCall, res.Kind, text)
				assert.Equal(t, c, res.Call)
			}
		})
	}
}

func TestParseAll_Array(t *testing.T) {
	p := newTestParser(t)
	text := `[
		{"tool": "e_device_control", "arguments": {"room": "Kitchen", "device": "Light", "action": "ON"}},
		{"tool": "chat_message", "arguments": {"message": "Kitchen light is on."}}
	]`

	results := p.ParseAll(text)
	require.Len(t, results, 2)
	assert.Equal(t, toolcall.DeviceControl{Room: "Kitchen", Device: "Light", Action: "ON"}, results[0].Call)
	assert.Equal(t, toolcall.ChatMessage{Message: "Kitchen light is on."}, results[1].Call)
}

func TestParse_NameArgumentPair(t *testing.T) {
	p := newTestParser(t)
	res := p.Parse(`["rag_query", {"query": "low sugar snacks"}]`)
	require.Equal(t, ToolCall, res.Kind)
	assert.Equal(t, toolcall.RAGQuery{Query: "low sugar snacks"}, res.Call)
}

func TestParse_CallShapes(t *testing.T) {
	p := newTestParser(t)
	tests := map[string]struct {
		text string
		want toolcall.Call
	}{
		"name and arguments": {
			`{"name": "e_device_control", "arguments": {"room": "Bedroom", "device": "Light", "action": "ON"}}`,
			toolcall.DeviceControl{Room: "Bedroom", Device: "Light", Action: "ON"},
		},
		"tool_call wrapper": {
			`{"tool_call": {"tool": "rag_query", "arguments": {"query": "seated exercises"}}}`,
			toolcall.RAGQuery{Query: "seated exercises"},
		},
		"encoded arguments": {
			`{"tool_calls": [{"function": {"name": "schedule_modifier", "arguments": "{\"modify_type\": \"delete\", \"time\": \"09:00\"}"}}]}`,
			toolcall.ScheduleModifier{ModifyType: toolcall.ModifyDelete, Time: "09:00"},
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			res := p.Parse(tt.text)
			require.Equal(t, ToolCall, res.Kind, res.Message)
			assert.Equal(t, tt.want, res.Call)
		})
	}

	res := p.Parse(`{"name": "Somchai", "age": 70}`)
	assert.Equal(t, PlainMessage, res.Kind, "an object without arguments is not a call")
}

func TestParse_UnknownToolKeepsProse(t *testing.T) {
	p := newTestParser(t)
	res := p.Parse(`Sure! Here you go: {"tool": "turn_on_light", "arguments": {"room": "Bedroom"}}`)
	assert.Equal(t, PlainMessage, res.Kind)
	assert.Equal(t, "Sure! Here you go", res.Message)
	assert.NoError(t, res.Err)
}

func TestParse_PathologicalInputIsLinear(t *testing.T) {
	p := newTestParser(t)
	for name, text := range map[string]string{
		"open braces":  strings.Repeat("{", 60000),
		"deep nesting": strings.Repeat("[", 30000) + strings.Repeat("]", 30000),
		"mixed":        strings.Repeat(`{"a": [`, 10000) + `"tool"`,
	} {
		t.Run(name, func(t *testing.T) {
			start := time.Now()
			var res Result
			require.NotPanics(t, func() { res = p.Parse(text) })
			assert.Equal(t, PlainMessage, res.Kind)
			assert.Less(t, time.Since(start), time.Second)
		})
	}
}

func TestParse_Lenient(t *testing.T) {
	p := newTestParser(t)
	want := toolcall.DeviceControl{Room: "Bedroom", Device: "Fan", Action: "OFF"}
	tests := map[string]string{
		"trailing commas": `{"tool": "e_device_control", "arguments": {"room": "Bedroom", "device": "Fan", "action": "OFF",},}`,
		"unquoted keys":   `{tool: "e_device_control", arguments: {room: "Bedroom", device: "Fan", action: "OFF"}}`,
		"single quotes":   `{'tool': 'e_device_control', 'arguments': {'room': 'Bedroom', 'device': 'Fan', 'action': 'OFF'}}`,
		"truncated":       `{"tool": "e_device_control", "arguments": {"room": "Bedroom", "device": "Fan", "action": "OFF"`,
		"regex fallback":  `tool: e_device_control arguments: {"room": "Bedroom", "device": "Fan", "action": "OFF"}`,
	}
	for name, text := range tests {
		t.Run(name, func(t *testing.T) {
			res := p.Parse(text)
			require.Equal(t, ToolCall, res.Kind, res.Message)
			assert.Equal(t, want, res.Call)
		})
	}
}

func TestParse_PlainText(t *testing.T) {
	p := newTestParser(t)
	res := p.Parse("  Good morning! How did you sleep?  ")
	assert.Equal(t, PlainMessage, res.Kind)
	assert.Equal(t, toolcall.ChatMessage{Message: "Good morning! How did you sleep?"}, res.Call)
	assert.NoError(t, res.Err)
}

func TestParse_Degrades(t *testing.T) {
	p := newTestParser(t)
	tests := map[string]string{
		"garbage json":  `{"tool": "e_device_control", "arguments": {"room": ]]] }`,
		"unknown tool":  `{"tool": "launch_rocket", "arguments": {"target": "moon"}}`,
		"tool no shape": `["tool" "e_device_control" ::: ]`,
	}
	for name, text := range tests {
		t.Run(name, func(t *testing.T) {
			var res Result
			require.NotPanics(t, func() { res = p.Parse(text) })
			assert.Equal(t, PlainMessage, res.Kind)
			assert.Equal(t, MalformedMessage, res.Message)
			assert.IsType(t, toolcall.ChatMessage{}, res.Call)
		})
	}
}

func TestParse_Empty(t *testing.T) {
	p := newTestParser(t)
	res := p.Parse("<think>hmm</think>   ")
	assert.Equal(t, PlainMessage, res.Kind)

	res = p.Parse("")
	assert.Equal(t, EmptyMessage, res.Message)
}

func TestParse_MissingArguments(t *testing.T) {
	p := newTestParser(t)
	res := p.Parse(`{"tool": "schedule_modifier", "arguments": {"modify_type": "add", "time": "10:00"}}`)

	require.Equal(t, ParseFailure, res.Kind)
	var verr *toolcall.ValidationError
	require.ErrorAs(t, res.Err, &verr)
	assert.Equal(t, "activity", verr.Field)
	assert.Contains(t, res.Message, "activity")
}

func TestStripReasoning(t *testing.T) {
	assert.Equal(t, "answer", StripReasoning("<think>a</think> ignored </think>answer"))
	assert.Equal(t, "answer", StripReasoning("thinking...</reasoning>\n answer"))
	assert.Equal(t, "<think>only</think>", StripReasoning("<think>only</think>"))
}

func TestRepair(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`{"a": 1}`, `{"a": 1}`},
		{`{a: 1, b_2: "x",}`, `{"a": 1, "b_2": "x"}`},
		{`{'a': 'it"s'}`, `{"a": "it\"s"}`},
		{`{"a": [1, 2`, `{"a": [1, 2]}`},
		{`{"a": "unterminated`, `{"a": "unterminated"}`},
		{`{"a":`, `{"a":null}`},
		{`{"msg": "time, note: keep"}`, `{"msg": "time, note: keep"}`},
	}
	for _, tt := range tests {
		got := Repair(tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.True(t, json.Valid([]byte(got)), got)
	}
}

func TestLooksLikeToolCall(t *testing.T) {
	assert.True(t, LooksLikeToolCall(`{"tool": "x"`))
	assert.True(t, LooksLikeToolCall(`Here: "tool" with "arguments" {`))
	assert.False(t, LooksLikeToolCall("I can use a tool for that"))
}
