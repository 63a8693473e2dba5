package llm

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
)

// Conversation memory limits
const (
	DefaultWindow    = 5
	MaxKeyEvents     = 20
	MaxSummaryLen    = 500
	maxSummaryPrompt = 2000
	promptKeyEvents  = 5
	keyEventLen      = 80
)

// EventType classifies a key event.
type EventType string

// Key event types
const (
	EventDeviceControl  EventType = "device_control"
	EventScheduleChange EventType = "schedule_change"
	EventPreferenceSet  EventType = "preference_set"
)

// KeyEvent is a state change worth remembering past the message window.
type KeyEvent struct {
	Type    EventType `json:"type"`
	Summary string    `json:"summary"`
}

// Summary compresses messages that fell out of the window.
type Summary struct {
	Text      string     `json:"summary"`
	KeyEvents []KeyEvent `json:"key_events"`
}

// Conversation is the rolling chat memory: the last messages verbatim
// plus a summary of older ones.
type Conversation struct {
	mu       sync.Mutex
	window   int
	messages []Message
	summary  Summary
}

// NewConversation keeps window messages verbatim.
func NewConversation(window int) *Conversation {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Conversation{window: window}
}

// Append adds messages to the history.
func (c *Conversation) Append(msgs ...Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, msgs...)
}

// Recent returns the messages inside the window.
func (c *Conversation) Recent() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	start := max(0, len(c.messages)-c.window)
	return append([]Message(nil), c.messages[start:]...)
}

// Overflow returns the messages older than the window.
func (c *Conversation) Overflow() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := len(c.messages) - c.window
	if n <= 0 {
		return nil
	}
	return append([]Message(nil), c.messages[:n]...)
}

// Compact replaces the summary and drops the n oldest messages.
func (c *Conversation) Compact(s Summary, n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n = min(n, len(c.messages))
	c.messages = append([]Message(nil), c.messages[n:]...)
	c.summary = s
}

// Summary returns the current summary.
func (c *Conversation) Summary() Summary {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.summary
	s.KeyEvents = append([]KeyEvent(nil), s.KeyEvents...)
	return s
}

// Record notes a key event, keeping the newest MaxKeyEvents.
func (c *Conversation) Record(e KeyEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.summary.KeyEvents = capEvents(append(c.summary.KeyEvents, e))
}

// Restore replaces the history and summary.
func (c *Conversation) Restore(msgs []Message, s Summary) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append([]Message(nil), msgs...)
	s.KeyEvents = capEvents(s.KeyEvents)
	c.summary = s
}

// Reset clears the conversation.
func (c *Conversation) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = nil
	c.summary = Summary{}
}

func capEvents(events []KeyEvent) []KeyEvent {
	if len(events) > MaxKeyEvents {
		events = events[len(events)-MaxKeyEvents:]
	}
	return events
}

// SummarySection renders the summary for the system prompt, or "" when
// there is nothing to show.
func (s Summary) SummarySection() string {
	if s.Text == "" && len(s.KeyEvents) == 0 {
		return ""
	}
	var sb strings.Builder
	if s.Text != "" {
		sb.WriteString("PREVIOUS CONVERSATION SUMMARY:\n")
		sb.WriteString(s.Text)
		sb.WriteByte('\n')
	}
	if len(s.KeyEvents) > 0 {
		sb.WriteString("Recent key events:\n")
		events := s.KeyEvents[max(0, len(s.KeyEvents)-promptKeyEvents):]
		for _, e := range events {
			fmt.Fprintf(&sb, "- %s: %s\n", e.Type, truncate(e.Summary, keyEventLen))
		}
	}
	return sb.String()
}

// Summarizer condenses overflowing messages with the model.
type Summarizer struct {
	completer Completer
}

// NewSummarizer creates a Summarizer.
func NewSummarizer(c Completer) *Summarizer {
	return &Summarizer{completer: c}
}

var summaryOptions = Options{Temperature: 0.3, TopP: 0.9, NumCtx: 4096, NumPredict: 300}

// Summarize merges old into existing. When the model fails the summary
// falls back to a count of key events.
func (s *Summarizer) Summarize(ctx context.Context, old []Message, existing Summary) Summary {
	if len(old) == 0 {
		return existing
	}

	var transcript strings.Builder
	for _, m := range old {
		fmt.Fprintf(&transcript, "%s: %s\n", strings.ToUpper(string(m.Role)), m.Content)
	}
	if strings.TrimSpace(transcript.String()) == "" {
		return existing
	}

	prompt := "Summarize this conversation. Focus on the user's preferences and decisions, " +
		"device control patterns, schedule changes and anything the user shared about themselves.\n\n" +
		"Conversation:\n" + truncate(transcript.String(), maxSummaryPrompt) +
		"\n\nWrite a concise summary of at most 200 words:"

	text, err := s.completer.Complete(ctx, Request{
		Messages: []Message{{Role: RoleUser, Content: prompt}},
		Options:  summaryOptions,
	})
	text = strings.TrimSpace(text)
	if err != nil || text == "" {
		log.Warn().Err(err).Int("key_events", len(existing.KeyEvents)).Msg("Summarization failed, using fallback")
		text = fmt.Sprintf("Previous conversation included: %d key events (device controls, schedule changes, preferences).", len(existing.KeyEvents))
	}

	if existing.Text != "" {
		text = existing.Text + "\n\n" + text
	}
	return Summary{
		Text:      truncate(text, MaxSummaryLen),
		KeyEvents: capEvents(append([]KeyEvent(nil), existing.KeyEvents...)),
	}
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
