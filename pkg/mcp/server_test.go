package mcp

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/urmzd/homecare/pkg/device"
	"github.com/urmzd/homecare/pkg/home"
	"github.com/urmzd/homecare/pkg/notify"
	"github.com/urmzd/homecare/pkg/schedule"
	"github.com/urmzd/homecare/pkg/toolcall"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	h := home.New(device.NewStateManager(), schedule.NewEngine(), nil)
	dec, err := toolcall.NewDecoder()
	require.NoError(t, err)
	return NewServer("test", Deps{
		Home:    h,
		Decoder: dec,
		Router:  toolcall.NewRouter(h, nil),
		Inbox:   notify.NewInbox(0),
	})
}

func request(name string, args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", res.Content[0])
	return tc.Text
}

func TestToolCall_DeviceControl(t *testing.T) {
	s := newTestServer(t)
	handler := s.handleToolCall(toolcall.DeviceControlTool)

	res, err := handler(context.Background(), request("e_device_control",
		map[string]any{"room": "livingroom", "device": "television", "action": "on"}))
	require.NoError(t, err)
	require.False(t, res.IsError, text(t, res))

	var out toolcall.Result
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &out))
	assert.Equal(t, "Set Living Room TV to ON", out.Message)

	rec, err := s.deps.Home.Devices.DeviceState(device.LivingRoom, device.TV)
	require.NoError(t, err)
	assert.Equal(t, device.On, rec.State)
}

func TestToolCall_Errors(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	res, err := s.handleToolCall(toolcall.DeviceControlTool)(ctx, request("e_device_control",
		map[string]any{"room": "garage", "device": "light", "action": "on"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, text(t, res), "Rooms are")

	add := s.handleToolCall(toolcall.ScheduleModifierTool)
	res, err = add(ctx, request("schedule_modifier", map[string]any{"modify_type": "add", "time": "14:00", "activity": "Meeting"}))
	require.NoError(t, err)
	require.False(t, res.IsError, text(t, res))

	res, err = add(ctx, request("schedule_modifier", map[string]any{"modify_type": "add", "time": "14:00", "activity": "Lunch"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, text(t, res), "14:00")

	res, err = s.handleToolCall(toolcall.RAGQueryTool)(ctx, request("rag_query", map[string]any{"query": "snacks"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, text(t, res), toolcall.ErrNoRetriever.Error())
}

func TestGetState(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	res, err := s.handleSetLocation(ctx, request("set_location", map[string]any{"room": "kitchen"}))
	require.NoError(t, err)
	require.False(t, res.IsError)

	res, err = s.handleGetState(ctx, request("get_state", nil))
	require.NoError(t, err)
	var out GetStateOutput
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &out))
	assert.Equal(t, device.Kitchen, out.Location)
	assert.Len(t, out.Devices, len(device.Rooms)*len(device.Types))
	assert.Empty(t, out.On)

	res, err = s.handleSetLocation(ctx, request("set_location", map[string]any{"room": "attic"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestNotifications(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	n, err := notify.NewCustom("Take your medication", time.Now())
	require.NoError(t, err)
	require.NoError(t, s.deps.Inbox.Deliver(ctx, n))

	res, err := s.handleListNotifications(ctx, request("list_notifications", map[string]any{"unacked": true}))
	require.NoError(t, err)
	var list ListNotificationsOutput
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &list))
	require.Equal(t, 1, list.Count)

	res, err = s.handleAcknowledge(ctx, request("acknowledge_notification", map[string]any{"id": n.ID}))
	require.NoError(t, err)
	require.False(t, res.IsError)
	assert.Empty(t, s.deps.Inbox.List(true))

	res, err = s.handleAcknowledge(ctx, request("acknowledge_notification", map[string]any{"id": "nope"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)

	res, err = s.handleAcknowledge(ctx, request("acknowledge_notification", nil))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestListSchedule(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	require.NoError(t, s.deps.Home.Schedule.Seed(schedule.DefaultRoutine))

	res, err := s.handleListSchedule(ctx, request("list_schedule", nil))
	require.NoError(t, err)
	var out ListScheduleOutput
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &out))
	assert.Equal(t, len(schedule.DefaultRoutine), out.Count)

	res, err = s.handleListSchedule(ctx, request("list_schedule", map[string]any{"date": "someday"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}
