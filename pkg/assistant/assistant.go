// Package assistant runs one chat turn end to end: it builds the prompt
// from the home state, asks the model, parses the reply into tool calls
// and dispatches them through the router.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/urmzd/homecare/pkg/db"
	"github.com/urmzd/homecare/pkg/device"
	"github.com/urmzd/homecare/pkg/home"
	"github.com/urmzd/homecare/pkg/llm"
	"github.com/urmzd/homecare/pkg/notify"
	"github.com/urmzd/homecare/pkg/parser"
	"github.com/urmzd/homecare/pkg/rag"
	"github.com/urmzd/homecare/pkg/toolcall"
)

// Replies that do not come from the model.
const (
	NotUnderstoodMessage = "I didn't understand that. Could you please rephrase?"
	DoneMessage          = "Done."
)

// ErrEmptyMessage indicates a blank user message
var ErrEmptyMessage = errors.New("message must not be empty")

// Profile describes the user for the prompt and for retrieval.
type Profile struct {
	UserName  string
	Condition string
}

// Notifications is the part of the inbox a turn reads.
type Notifications interface {
	Latest(kind notify.Kind) (notify.Notification, bool)
	Acknowledge(id string) (notify.Notification, error)
}

// Journal persists the conversation.
type Journal interface {
	Append(ctx context.Context, msgs ...db.ChatMessage) error
	Recent(ctx context.Context, limit int) ([]db.ChatMessage, error)
	SaveSummary(ctx context.Context, s db.Summary) error
	LatestSummary(ctx context.Context) (*db.Summary, error)
}

// Config tunes the assistant.
type Config struct {
	CompactPrompt bool          `mapstructure:"compact_prompt"`
	Window        int           `mapstructure:"window"`
	NoticeWindow  time.Duration `mapstructure:"notice_window"` // How long a notification counts as the subject of a reply
}

// DefaultConfig returns the default assistant settings.
func DefaultConfig() Config {
	return Config{Window: llm.DefaultWindow, NoticeWindow: 30 * time.Minute}
}

// Reply is the outcome of a turn.
type Reply struct {
	Message   string            `json:"message"`
	Results   []toolcall.Result `json:"results,omitempty"`
	Errors    []string          `json:"errors,omitempty"`
	Retrieval *rag.Result       `json:"retrieval,omitempty"`
}

// Assistant is safe for concurrent use; turns are serialized.
type Assistant struct {
	turn sync.Mutex

	home       *home.Home
	router     *toolcall.Router
	parser     *parser.Parser
	completer  llm.Completer
	summarizer *llm.Summarizer
	retriever  toolcall.Retriever
	inbox      Notifications
	journal    Journal
	conv       *llm.Conversation
	cfg        Config

	profileMu sync.RWMutex
	profile   Profile

	now func() time.Time
}

// Option configures an Assistant.
type Option func(*Assistant)

// WithRetriever enables knowledge lookups.
func WithRetriever(r toolcall.Retriever) Option {
	return func(a *Assistant) { a.retriever = r }
}

// WithJournal persists history and summaries.
func WithJournal(j Journal) Option {
	return func(a *Assistant) { a.journal = j }
}

// WithNotifications lets turns answer device-left-on notifications.
func WithNotifications(n Notifications) Option {
	return func(a *Assistant) { a.inbox = n }
}

// WithClock sets the clock.
func WithClock(now func() time.Time) Option {
	return func(a *Assistant) { a.now = now }
}

// WithProfile sets the user profile.
func WithProfile(p Profile) Option {
	return func(a *Assistant) { a.profile = p }
}

// New creates an assistant. completer should already retry.
func New(h *home.Home, router *toolcall.Router, p *parser.Parser, completer llm.Completer, cfg Config, opts ...Option) *Assistant {
	if cfg.Window <= 0 {
		cfg.Window = llm.DefaultWindow
	}
	a := &Assistant{
		home:       h,
		router:     router,
		parser:     p,
		completer:  completer,
		summarizer: llm.NewSummarizer(completer),
		conv:       llm.NewConversation(cfg.Window),
		cfg:        cfg,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// SetProfile replaces the user profile.
func (a *Assistant) SetProfile(p Profile) {
	a.profileMu.Lock()
	defer a.profileMu.Unlock()
	a.profile = p
}

// Profile returns the user profile.
func (a *Assistant) Profile() Profile {
	a.profileMu.RLock()
	defer a.profileMu.RUnlock()
	return a.profile
}

// Conversation exposes the chat memory.
func (a *Assistant) Conversation() *llm.Conversation {
	return a.conv
}

// Load restores the conversation from the journal.
func (a *Assistant) Load(ctx context.Context) error {
	if a.journal == nil {
		return nil
	}
	msgs, err := a.journal.Recent(ctx, a.cfg.Window)
	if err != nil {
		return fmt.Errorf("failed to load chat history: %w", err)
	}
	sum, err := a.journal.LatestSummary(ctx)
	if err != nil {
		return fmt.Errorf("failed to load conversation summary: %w", err)
	}

	history := make([]llm.Message, 0, len(msgs))
	for _, m := range msgs {
		history = append(history, llm.Message{Role: llm.Role(m.Role), Content: m.Content})
	}
	var s llm.Summary
	if sum != nil {
		s.Text = sum.Text
		for _, e := range sum.KeyEvents {
			s.KeyEvents = append(s.KeyEvents, llm.KeyEvent{Type: llm.EventType(e.Type), Summary: e.Summary})
		}
	}
	a.conv.Restore(history, s)
	return nil
}

// Chat runs one turn. Model and dispatch failures end up in the reply
// text; the returned error is reserved for invalid input.
func (a *Assistant) Chat(ctx context.Context, text string) (Reply, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Reply{Message: NotUnderstoodMessage}, ErrEmptyMessage
	}

	a.turn.Lock()
	defer a.turn.Unlock()

	now := a.now()
	notice, hasNotice := a.recentNotice(now)

	var reply Reply
	if hasNotice && len(notice.Devices) > 0 && isLeaveOn(text) {
		reply = a.leaveOn(ctx, notice)
	} else {
		reply = a.ask(ctx, text, now, notice, hasNotice)
	}

	a.remember(ctx, text, reply.Message, now)
	return reply, nil
}

// recentNotice returns the newest unacknowledged device-left-on
// notification inside the notice window.
func (a *Assistant) recentNotice(now time.Time) (notify.Notification, bool) {
	if a.inbox == nil {
		return notify.Notification{}, false
	}
	n, ok := a.inbox.Latest(notify.KindDeviceLeftOn)
	if !ok || n.Acknowledged {
		return notify.Notification{}, false
	}
	if a.cfg.NoticeWindow > 0 && now.Sub(n.Timestamp) > a.cfg.NoticeWindow {
		return notify.Notification{}, false
	}
	return n, true
}

// leaveOn mutes left-on notifications for the notice's devices.
func (a *Assistant) leaveOn(ctx context.Context, n notify.Notification) Reply {
	err := a.home.Mutate(ctx, func() error {
		for _, k := range n.Devices {
			a.home.Preferences.SetNotify(k, false)
		}
		return nil
	})
	if err != nil {
		log.Error().Err(err).Msg("Failed to store notification preference")
	}
	if _, err := a.inbox.Acknowledge(n.ID); err != nil {
		log.Warn().Err(err).Str("id", n.ID).Msg("Failed to acknowledge notification")
	}

	msg := fmt.Sprintf("Got it! I won't notify you about %s anymore.", deviceNames(n.Devices))
	a.conv.Record(llm.KeyEvent{Type: llm.EventPreferenceSet, Summary: msg})
	log.Info().Str("devices", deviceNames(n.Devices)).Msg("Muted device-left-on notifications")
	return Reply{Message: msg}
}

func deviceNames(keys []device.Key) string {
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = k.String()
	}
	return strings.Join(names, " and ")
}

func (a *Assistant) ask(ctx context.Context, text string, now time.Time, notice notify.Notification, hasNotice bool) Reply {
	profile := a.Profile()
	state := a.stateContext(now, profile)

	var knowledge *rag.Result
	current := ""
	if cur, ok := llm.CurrentActivity(state.Today, now); ok {
		current = cur.Activity
	}
	if a.retriever != nil && needsKnowledge(text, profile.Condition, current) {
		res, err := a.retriever.Retrieve(ctx, text, profile.Condition)
		if err != nil {
			log.Warn().Err(err).Msg("Knowledge prefetch failed")
		} else {
			knowledge = &res
		}
	}

	var extra []string
	if knowledge != nil {
		extra = append(extra, llm.KnowledgeSection(*knowledge))
	}
	if hasNotice {
		extra = append(extra, llm.NotificationSection(notice))
	}

	raw, err := a.completer.Complete(ctx, llm.Request{Messages: a.messages(text, state, extra...)})
	if err != nil {
		log.Error().Err(err).Msg("Completion failed")
		return Reply{Message: toolcall.UserMessage(err)}
	}

	reply := a.dispatch(ctx, a.parser.ParseAll(raw), true)
	if knowledge != nil && reply.Retrieval == nil {
		reply.Retrieval = knowledge
	}

	// A rag_query needs a second pass so the model can answer from the passages.
	if reply.Retrieval != nil && knowledge == nil {
		follow, err := a.completer.Complete(ctx, llm.Request{
			Messages: a.messages(text, state, llm.KnowledgeSection(*reply.Retrieval)),
		})
		if err != nil {
			log.Error().Err(err).Msg("Follow-up completion failed")
			reply.Errors = append(reply.Errors, toolcall.UserMessage(err))
		} else {
			second := a.dispatch(ctx, a.parser.ParseAll(follow), false)
			reply.Results = append(reply.Results, second.Results...)
			reply.Errors = append(reply.Errors, second.Errors...)
			reply.Message = joinNonEmpty(reply.Message, second.Message)
		}
	}

	if reply.Message == "" && len(reply.Errors) == 0 {
		reply.Message = DoneMessage
	}
	reply.Message = joinNonEmpty(reply.Message, strings.Join(reply.Errors, "\n"))
	return reply
}

func (a *Assistant) messages(text string, state llm.StateContext, extra ...string) []llm.Message {
	var sb strings.Builder
	sb.WriteString(llm.SystemPrompt(a.cfg.CompactPrompt))
	for _, e := range extra {
		sb.WriteString("\n")
		sb.WriteString(e)
		sb.WriteString("\n")
	}
	if s := a.conv.Summary().SummarySection(); s != "" {
		sb.WriteString("\n")
		sb.WriteString(s)
	}
	sb.WriteString("\nCURRENT SYSTEM STATE:\n")
	sb.WriteString(state.String())

	msgs := []llm.Message{{Role: llm.RoleSystem, Content: sb.String()}}
	msgs = append(msgs, a.conv.Recent()...)
	return append(msgs, llm.Message{Role: llm.RoleUser, Content: text})
}

func (a *Assistant) stateContext(now time.Time, p Profile) llm.StateContext {
	snap := a.home.Snapshot()
	return llm.StateContext{
		Now:         now,
		UserName:    p.UserName,
		Condition:   p.Condition,
		Location:    snap.Devices.Location,
		Devices:     snap.Devices,
		Today:       a.home.Schedule.Active(a.home.Schedule.Today()),
		DoNotRemind: snap.DoNotRemind,
		Muted:       snap.DoNotNotify,
	}
}

// dispatch applies parse results in order. Chat messages form the reply
// text; action results are only used when the model said nothing.
func (a *Assistant) dispatch(ctx context.Context, results []parser.Result, allowRetrieval bool) Reply {
	var (
		reply   Reply
		chats   []string
		actions []string
	)
	for _, r := range results {
		switch r.Kind {
		case parser.ParseFailure:
			reply.Errors = append(reply.Errors, r.Message)
			continue
		}
		if r.Call == nil {
			chats = append(chats, r.Message)
			continue
		}

		if _, ok := r.Call.(toolcall.RAGQuery); ok && !allowRetrieval {
			continue
		}
		res, err := a.router.Dispatch(ctx, r.Call)
		if err != nil {
			reply.Errors = append(reply.Errors, toolcall.UserMessage(err))
			continue
		}
		reply.Results = append(reply.Results, res)

		switch res.Tool {
		case toolcall.ChatMessageTool:
			if !res.Suppressed {
				chats = append(chats, res.Message)
			}
		case toolcall.DeviceControlTool:
			actions = append(actions, res.Message)
			a.conv.Record(llm.KeyEvent{Type: llm.EventDeviceControl, Summary: res.Message})
		case toolcall.ScheduleModifierTool:
			actions = append(actions, res.Message)
			a.conv.Record(llm.KeyEvent{Type: llm.EventScheduleChange, Summary: res.Message})
		case toolcall.RAGQueryTool:
			reply.Retrieval = res.Retrieval
		}
	}

	if len(chats) > 0 {
		reply.Message = strings.Join(chats, "\n")
	} else {
		reply.Message = strings.Join(actions, "\n")
	}
	return reply
}

func joinNonEmpty(parts ...string) string {
	var out []string
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, "\n")
}

// remember appends the turn to memory and folds overflow into the summary.
func (a *Assistant) remember(ctx context.Context, user, reply string, now time.Time) {
	turn := []llm.Message{
		{Role: llm.RoleUser, Content: user},
		{Role: llm.RoleAssistant, Content: reply},
	}
	a.conv.Append(turn...)

	if a.journal != nil {
		err := a.journal.Append(ctx,
			db.ChatMessage{Role: string(llm.RoleUser), Content: user, CreatedAt: now},
			db.ChatMessage{Role: string(llm.RoleAssistant), Content: reply, CreatedAt: now},
		)
		if err != nil {
			log.Error().Err(err).Msg("Failed to persist chat history")
		}
	}

	old := a.conv.Overflow()
	if len(old) < a.cfg.Window {
		return
	}
	sum := a.summarizer.Summarize(ctx, old, a.conv.Summary())
	a.conv.Compact(sum, len(old))

	if a.journal != nil {
		rec := db.Summary{Text: sum.Text, MessageCount: len(old), CreatedAt: now}
		for _, e := range sum.KeyEvents {
			rec.KeyEvents = append(rec.KeyEvents, db.KeyEvent{Type: string(e.Type), Summary: e.Summary})
		}
		if err := a.journal.SaveSummary(ctx, rec); err != nil {
			log.Error().Err(err).Msg("Failed to persist conversation summary")
		}
	}
}

// Reset clears the conversation memory.
func (a *Assistant) Reset() {
	a.turn.Lock()
	defer a.turn.Unlock()
	a.conv.Reset()
}
