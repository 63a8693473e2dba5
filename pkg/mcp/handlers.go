package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/urmzd/homecare/pkg/device"
	"github.com/urmzd/homecare/pkg/schedule"
	"github.com/urmzd/homecare/pkg/toolcall"
)

// handleToolCall decodes and dispatches one of the assistant tools.
func (s *Server) handleToolCall(name toolcall.Name) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		call, err := s.deps.Decoder.Decode(string(name), request.GetArguments())
		if err != nil {
			return toolError(err), nil
		}
		res, err := s.deps.Router.Dispatch(ctx, call)
		if err != nil {
			return toolError(err), nil
		}
		return mcp.NewToolResultText(formatJSON(res)), nil
	}
}

func (s *Server) handleGetHealth(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	out := GetHealthOutput{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	return mcp.NewToolResultText(formatJSON(out)), nil
}

func (s *Server) handleGetState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	snap := s.deps.Home.Devices.Snapshot()
	today := s.deps.Home.Schedule.Today()

	out := GetStateOutput{
		Location: snap.Location,
		Devices:  snap.Devices,
		On:       []device.Key{},
		Today:    today,
		Schedule: s.deps.Home.Schedule.Active(today),
	}
	for _, rec := range snap.On() {
		out.On = append(out.On, rec.Key())
	}
	if out.Schedule == nil {
		out.Schedule = []schedule.Item{}
	}
	return mcp.NewToolResultText(formatJSON(out)), nil
}

func (s *Server) handleSetLocation(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := requiredString(request, "room")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	room, err := device.ParseRoom(raw)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	h := s.deps.Home
	if err := h.Mutate(ctx, func() error { return h.Devices.SetLocation(room) }); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to set location: %s", err)), nil
	}
	return mcp.NewToolResultText(formatJSON(LocationOutput{Location: room})), nil
}

func (s *Server) handleListSchedule(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var out ListScheduleOutput
	if raw, ok := request.GetArguments()["date"].(string); ok && raw != "" {
		day, err := schedule.ParseDate(raw)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		out.Date = day
		out.Items = s.deps.Home.Schedule.Active(day)
	} else {
		out.Items = s.deps.Home.Schedule.Upcoming()
	}
	if out.Items == nil {
		out.Items = []schedule.Item{}
	}
	out.Count = len(out.Items)
	return mcp.NewToolResultText(formatJSON(out)), nil
}

func (s *Server) handleListNotifications(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	unacked, _ := request.GetArguments()["unacked"].(bool)
	list := s.deps.Inbox.List(unacked)
	out := ListNotificationsOutput{Notifications: list, Count: len(list)}
	return mcp.NewToolResultText(formatJSON(out)), nil
}

func (s *Server) handleAcknowledge(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requiredString(request, "id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	n, err := s.deps.Inbox.Acknowledge(id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatJSON(n)), nil
}

func (s *Server) handleAskAssistant(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	msg, err := requiredString(request, "message")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	reply, err := s.deps.Assistant.Chat(ctx, msg)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out := AskAssistantOutput{Message: reply.Message, Results: reply.Results, Errors: reply.Errors}
	return mcp.NewToolResultText(formatJSON(out)), nil
}

// --- helpers ---

// toolError renders a dispatch failure the way the assistant would phrase
// it, keeping the raw error for failures outside the router taxonomy.
func toolError(err error) *mcp.CallToolResult {
	var (
		validation *toolcall.ValidationError
		invalid    *toolcall.InvalidDeviceError
		conflict   *toolcall.ConflictError
		notFound   *toolcall.NotFoundError
	)
	if errors.As(err, &validation) || errors.As(err, &invalid) || errors.As(err, &conflict) || errors.As(err, &notFound) {
		return mcp.NewToolResultError(toolcall.UserMessage(err))
	}
	return mcp.NewToolResultError(err.Error())
}

func requiredString(request mcp.CallToolRequest, key string) (string, error) {
	args := request.GetArguments()
	v, ok := args[key]
	if !ok || v == nil {
		return "", fmt.Errorf("required parameter %q is missing", key)
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", fmt.Errorf("parameter %q must be a non-empty string", key)
	}
	return s, nil
}

func formatJSON(v any) string {
	b, err := encodeJSON(v)
	if err != nil {
		return fmt.Sprintf(`{"error":"failed to marshal response: %s"}`, err)
	}
	return string(b)
}

func encodeJSON(v any) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}
