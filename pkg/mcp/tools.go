package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/urmzd/homecare/pkg/toolcall"
)

var toolDescriptions = map[toolcall.Name]string{
	toolcall.ChatMessageTool:      "Send a message to the user. Messages matching the do-not-remind list are suppressed.",
	toolcall.DeviceControlTool:    "Switch a device ON or OFF. Rooms: Bedroom, Bathroom, Kitchen, Living Room. Devices: Light, AC, TV, Fan, Alarm.",
	toolcall.ScheduleModifierTool: "Add, delete or change a schedule item. Times are HH:MM; a date (YYYY-MM-DD) makes the item one-time.",
	toolcall.RAGQueryTool:         "Search the health knowledge base, optionally tailoring the query to the user's condition.",
}

// registerTools registers all MCP tools with the server
func (s *Server) registerTools() {
	// The four assistant tools share their argument schemas with the chat path
	for _, name := range toolcall.Names {
		s.mcpServer.AddTool(
			mcp.NewToolWithRawSchema(string(name), toolDescriptions[name], toolcall.ArgumentSchema(name)),
			s.handleToolCall(name),
		)
	}

	s.mcpServer.AddTool(
		mcp.NewTool("get_health",
			mcp.WithDescription("Check that the home state is being served"),
		),
		s.handleGetHealth,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("get_state",
			mcp.WithDescription("Get the user's location, every device state and today's schedule"),
		),
		s.handleGetState,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("set_location",
			mcp.WithDescription("Move the user to a room"),
			mcp.WithString("room",
				mcp.Required(),
				mcp.Description("Bedroom, Bathroom, Kitchen or Living Room"),
			),
		),
		s.handleSetLocation,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("list_schedule",
			mcp.WithDescription("List schedule items, either upcoming or those active on a given day"),
			mcp.WithString("date",
				mcp.Description("Day as YYYY-MM-DD (default: today and upcoming one-time items)"),
			),
		),
		s.handleListSchedule,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("list_notifications",
			mcp.WithDescription("List retained notifications, newest first"),
			mcp.WithBoolean("unacked",
				mcp.Description("Only unacknowledged notifications (default false)"),
			),
		),
		s.handleListNotifications,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("acknowledge_notification",
			mcp.WithDescription("Mark a notification as acknowledged"),
			mcp.WithString("id",
				mcp.Required(),
				mcp.Description("Notification ID"),
			),
		),
		s.handleAcknowledge,
	)

	if s.deps.Assistant != nil {
		s.mcpServer.AddTool(
			mcp.NewTool("ask_assistant",
				mcp.WithDescription("Run one conversational turn with the home care assistant"),
				mcp.WithString("message",
					mcp.Required(),
					mcp.Description("What the user says"),
				),
			),
			s.handleAskAssistant,
		)
	}
}
