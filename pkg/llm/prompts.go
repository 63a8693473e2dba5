package llm

import (
	"fmt"
	"strings"
	"time"

	"github.com/urmzd/homecare/pkg/device"
	"github.com/urmzd/homecare/pkg/notify"
	"github.com/urmzd/homecare/pkg/rag"
	"github.com/urmzd/homecare/pkg/schedule"
)

const promptHeader = `You are a home assistant for an elderly or disabled user. You switch devices, keep the daily schedule and answer questions.

OUTPUT FORMAT:
- Reply with a JSON array of tool calls only: [{"tool": "...", "arguments": {...}}]
- Never claim a device changed unless you call e_device_control for it.

TOOLS:
1. chat_message(message) - talk to the user or answer a question.
2. e_device_control(room, device, action) - switch a device.
   room: Bedroom, Bathroom, Kitchen or Living Room. Default to the Current Location.
   device: Light, AC, TV, Fan or Alarm. action: ON or OFF.
   For "everything" make one call per installed device in that room.
3. schedule_modifier(modify_type, time, activity, old_time, old_activity, date)
   modify_type: add, delete or change. time: HH:MM ("14.00" becomes "14:00", "2.30pm" becomes "14:30").
   add needs time and activity. delete needs time. change needs old_time plus a new time or activity.
   date: YYYY-MM-DD for a one-time event. Use TOMORROW'S DATE for "tomorrow". Leave it out for a daily routine item.
4. rag_query(query, user_condition) - look up health guidance in the knowledge base.

INSTALLED DEVICES:
- Bedroom: Light, Alarm, AC | Bathroom: Light | Kitchen: Light, Alarm | Living Room: Light, TV, AC, Fan
`

const promptRules = `
RULES:
- Questions (what, which, when, where) get a chat_message. Commands (turn, add, delete, change) get a tool call.
- Act when the intent is clear. Ask only for information that is genuinely missing.
- A time mentioned together with a device action is a schedule request, not an immediate switch.
- "I'm awake", "I'm up" or "let's work now" mean the user started the current activity: delete that schedule item, switch its devices except the Alarm, then summarize in a chat_message.
- "I won't work today" or "skip breakfast" only delete the item.
- Run change or delete before add when both touch the same time.
- "yes" after a device question or notification switches the devices it mentioned. "no" or "leave it on" is acknowledged with a chat_message.

HEALTH:
- Read the whole USER INFORMATION condition before recommending food or exercise, and say that the advice is tailored.
- A wheelchair user cannot walk, jog or do standing exercise. Suggest seated exercise only.
- When a HEALTH KNOWLEDGE section is present, answer from it. Never diagnose; suggest seeing a professional for medical concerns.
- Use rag_query for health questions that need facts you were not given.
`

const promptExamples = `
EXAMPLES:
- "Turn on the light" (Current Location: Bedroom) -> [{"tool": "e_device_control", "arguments": {"room": "Bedroom", "device": "Light", "action": "ON"}}]
- "I have a meeting at 14.00" -> [{"tool": "schedule_modifier", "arguments": {"modify_type": "add", "time": "14:00", "activity": "Meeting"}}]
- "Move work to 10:00" (Work at 09:00) -> [{"tool": "schedule_modifier", "arguments": {"modify_type": "change", "old_time": "09:00", "time": "10:00"}}]
- "I will not work today" (Work at 09:00) -> [{"tool": "schedule_modifier", "arguments": {"modify_type": "delete", "time": "09:00"}}, {"tool": "chat_message", "arguments": {"message": "Removed work from today's schedule."}}]
- "What devices are on?" -> [{"tool": "chat_message", "arguments": {"message": "..."}}]
`

// SystemPrompt returns the instructions sent with every turn. The compact
// variant drops the worked examples.
func SystemPrompt(compact bool) string {
	if compact {
		return promptHeader + promptRules
	}
	return promptHeader + promptRules + promptExamples
}

// maxKnowledgeChunks and maxKnowledgeChunkLen bound the knowledge section.
const (
	maxKnowledgeChunks   = 3
	maxKnowledgeChunkLen = 500
)

// KnowledgeSection renders retrieved passages for the system prompt.
func KnowledgeSection(r rag.Result) string {
	if !r.Found || len(r.Chunks) == 0 {
		return "HEALTH KNOWLEDGE:\nNothing specific was found. Answer carefully from general knowledge and recommend consulting a healthcare professional."
	}
	var sb strings.Builder
	sb.WriteString("HEALTH KNOWLEDGE (retrieved for this question):\n")
	for i, c := range r.Chunks {
		if i == maxKnowledgeChunks {
			break
		}
		text := c.Text
		if len(text) > maxKnowledgeChunkLen {
			text = text[:maxKnowledgeChunkLen] + "..."
		}
		fmt.Fprintf(&sb, "\n--- Passage %d (score %.3f) ---\n%s\n", i+1, c.Score, text)
	}
	sb.WriteString("\nBase the answer on these passages and the user's condition.")
	return sb.String()
}

// NotificationSection tells the model the user is answering n.
func NotificationSection(n notify.Notification) string {
	var sb strings.Builder
	sb.WriteString("THE USER IS REPLYING TO A NOTIFICATION:\n")
	fmt.Fprintf(&sb, "Message: %q\n", n.Message)
	if len(n.Devices) > 0 {
		names := make([]string, len(n.Devices))
		for i, k := range n.Devices {
			names[i] = k.String()
		}
		fmt.Fprintf(&sb, "Devices: %s\n", strings.Join(names, ", "))
		sb.WriteString("On \"yes\" or \"turn them off\" call e_device_control with OFF for each of these devices, even outside the current room.\n")
	}
	return sb.String()
}

// StateContext is the snapshot of the home rendered into each turn.
type StateContext struct {
	Now         time.Time
	UserName    string
	Condition   string
	Location    device.Room
	Devices     device.Snapshot
	Today       []schedule.Item
	DoNotRemind []string
	Muted       []device.Key
}

// CurrentActivity returns the latest item at or before now.
func CurrentActivity(items []schedule.Item, now time.Time) (schedule.Item, bool) {
	var (
		cur   schedule.Item
		found bool
	)
	hhmm := now.Format("15:04")
	for _, it := range items {
		if it.Time <= hhmm && (!found || it.Time >= cur.Time) {
			cur, found = it, true
		}
	}
	return cur, found
}

// String renders the context block.
func (s StateContext) String() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "CURRENT TIME: %s\n", s.Now.Format(time.DateTime))
	fmt.Fprintf(&sb, "CURRENT DATE: %s\n", s.Now.Format(schedule.DateLayout))
	fmt.Fprintf(&sb, "TOMORROW'S DATE: %s\n\n", s.Now.AddDate(0, 0, 1).Format(schedule.DateLayout))

	sb.WriteString("USER INFORMATION:\n")
	if s.UserName != "" {
		fmt.Fprintf(&sb, "  Name: %s\n", s.UserName)
	}
	if s.Condition != "" {
		fmt.Fprintf(&sb, "  Condition: %s\n", s.Condition)
	}

	sb.WriteString("\nTODAY'S ACTIVE SCHEDULE:\n")
	if len(s.Today) == 0 {
		sb.WriteString("  (empty)\n")
	}
	for _, it := range s.Today {
		fmt.Fprintf(&sb, "  - %s: %s", it.Time, it.Activity)
		if !it.Recurring() {
			sb.WriteString(" (one-time)")
		}
		if len(it.Actions) > 0 {
			acts := make([]string, len(it.Actions))
			for i, a := range it.Actions {
				acts[i] = fmt.Sprintf("%s %s:%s", a.Room, a.Device, a.State)
			}
			fmt.Fprintf(&sb, " [%s]", strings.Join(acts, ", "))
		}
		if it.Location != "" {
			fmt.Fprintf(&sb, " @%s", it.Location)
		}
		sb.WriteByte('\n')
	}
	if cur, ok := CurrentActivity(s.Today, s.Now); ok {
		fmt.Fprintf(&sb, "CURRENT ACTIVITY: %s (since %s)\n", cur.Activity, cur.Time)
	}

	fmt.Fprintf(&sb, "\nCurrent Location: %s\n", s.Location)
	sb.WriteString("Devices ON: ")
	on := s.Devices.On()
	if len(on) == 0 {
		sb.WriteString("none")
	}
	for i, r := range on {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(r.Key().String())
	}
	sb.WriteByte('\n')

	if len(s.DoNotRemind) > 0 {
		fmt.Fprintf(&sb, "Do not remind about: %s\n", strings.Join(s.DoNotRemind, ", "))
	}
	if len(s.Muted) > 0 {
		names := make([]string, len(s.Muted))
		for i, k := range s.Muted {
			names[i] = k.String()
		}
		fmt.Fprintf(&sb, "User chose to leave on without notification: %s\n", strings.Join(names, ", "))
	}
	return sb.String()
}
