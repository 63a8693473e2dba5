package toolcall

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/urmzd/homecare/pkg/device"
	"github.com/urmzd/homecare/pkg/home"
	"github.com/urmzd/homecare/pkg/rag"
	"github.com/urmzd/homecare/pkg/schedule"
)

// Retriever answers knowledge questions for rag_query.
type Retriever interface {
	Retrieve(ctx context.Context, query, condition string) (rag.Result, error)
}

// Result is the outcome of a dispatched call.
type Result struct {
	Tool    Name   `json:"tool"`
	Message string `json:"message"`

	// Suppressed is set when a chat message matched the do-not-remind list.
	Suppressed bool `json:"suppressed,omitempty"`

	Device    *device.Transition `json:"device,omitempty"`
	Item      *schedule.Item     `json:"item,omitempty"`
	Previous  *schedule.Item     `json:"previous,omitempty"`
	Retrieval *rag.Result        `json:"retrieval,omitempty"`
}

// Router applies tool calls to a Home. It is the only component that
// mutates devices and schedule on behalf of the user.
type Router struct {
	home      *home.Home
	retriever Retriever
}

// NewRouter creates a router. retriever may be nil, in which case
// rag_query reports the knowledge base as unavailable.
func NewRouter(h *home.Home, retriever Retriever) *Router {
	return &Router{home: h, retriever: retriever}
}

// ErrNoRetriever indicates rag_query without a configured knowledge base
var ErrNoRetriever = errors.New("knowledge base not configured")

// Dispatch validates and applies call. A failing call changes nothing.
func (r *Router) Dispatch(ctx context.Context, call Call) (Result, error) {
	if call == nil {
		return Result{}, fmt.Errorf("%w: nil call", ErrUnknownTool)
	}
	var (
		res Result
		err error
	)
	switch c := call.(type) {
	case ChatMessage:
		res = r.chat(c)
	case DeviceControl:
		res, err = r.deviceControl(ctx, c)
	case ScheduleModifier:
		res, err = r.scheduleModifier(ctx, c)
	case RAGQuery:
		res, err = r.ragQuery(ctx, c)
	default:
		err = fmt.Errorf("%w: %T", ErrUnknownTool, call)
	}

	if err != nil {
		log.Warn().Str("tool", string(call.Name())).Bool("success", false).Err(err).Msg("Tool call rejected")
		return Result{Tool: call.Name()}, err
	}
	log.Info().Str("tool", string(res.Tool)).Bool("success", true).Str("message", res.Message).Msg("Tool call dispatched")
	return res, nil
}

func (r *Router) chat(c ChatMessage) Result {
	res := Result{Tool: ChatMessageTool, Message: c.Message}
	if entry, ok := r.home.Preferences.Suppresses(c.Message); ok {
		log.Info().Str("entry", entry).Msg("Suppressed reminder on do-not-remind list")
		res.Suppressed = true
	}
	return res
}

func (r *Router) deviceControl(ctx context.Context, c DeviceControl) (Result, error) {
	invalid := func(err error) error {
		return &InvalidDeviceError{Room: c.Room, Device: c.Device, Action: c.Action, Err: err}
	}
	room, err := device.ParseRoom(c.Room)
	if err != nil {
		return Result{}, invalid(err)
	}
	typ, err := device.ParseType(c.Device)
	if err != nil {
		return Result{}, invalid(err)
	}
	state, err := device.ParseState(c.Action)
	if err != nil {
		return Result{}, invalid(err)
	}

	var tr device.Transition
	err = r.home.Mutate(ctx, func() error {
		var err error
		tr, err = r.home.Devices.SetDeviceState(room, typ, state)
		return err
	})
	if err != nil {
		return Result{}, invalid(err)
	}
	return Result{
		Tool:    DeviceControlTool,
		Message: fmt.Sprintf("Set %s %s to %s", room, typ, state),
		Device:  &tr,
	}, nil
}

func (r *Router) scheduleModifier(ctx context.Context, c ScheduleModifier) (Result, error) {
	sched := r.home.Schedule
	res := Result{Tool: ScheduleModifierTool}

	var err error
	switch c.ModifyType {
	case ModifyAdd:
		err = r.home.Mutate(ctx, func() error {
			item, err := sched.Add(c.Time, c.Activity, c.Date)
			if err != nil {
				return err
			}
			res.Item = &item
			if item.Recurring() {
				res.Message = fmt.Sprintf("Added recurring activity '%s' at %s", item.Activity, item.Time)
			} else {
				res.Message = fmt.Sprintf("Added one-time event '%s' at %s for %s", item.Activity, item.Time, item.Date)
			}
			return nil
		})
	case ModifyDelete:
		err = r.home.Mutate(ctx, func() error {
			item, err := sched.Delete(schedule.Selector{Time: c.Time, Activity: c.Activity, Date: c.Date})
			if err != nil {
				return err
			}
			res.Item = &item
			res.Message = fmt.Sprintf("Deleted schedule item at %s", item.Time)
			return nil
		})
	case ModifyChange:
		err = r.home.Mutate(ctx, func() error {
			before, after, err := sched.Change(
				schedule.Selector{Time: c.OldTime, Activity: c.OldActivity, Date: c.Date},
				schedule.Update{Time: c.Time, Activity: c.Activity},
			)
			if err != nil {
				return err
			}
			res.Previous = &before
			res.Item = &after
			res.Message = changeMessage(before, after)
			return nil
		})
	default:
		return Result{}, &ValidationError{
			Tool:   ScheduleModifierTool,
			Field:  "modify_type",
			Reason: fmt.Sprintf("modify_type must be add, delete or change, not %q", c.ModifyType),
		}
	}
	if err != nil {
		return Result{}, scheduleError(c, err)
	}
	return res, nil
}

func changeMessage(before, after schedule.Item) string {
	var parts []string
	if after.Time != before.Time {
		parts = append(parts, fmt.Sprintf("time from %s to %s", before.Time, after.Time))
	}
	if after.Activity != before.Activity {
		parts = append(parts, fmt.Sprintf("activity to '%s'", after.Activity))
	}
	if len(parts) == 0 {
		return "Changed schedule item"
	}
	return "Changed " + strings.Join(parts, " and ")
}

// scheduleError maps engine errors onto the router taxonomy.
func scheduleError(c ScheduleModifier, err error) error {
	var conflict *schedule.ConflictError
	switch {
	case errors.As(err, &conflict):
		return &ConflictError{Time: conflict.Time, Activity: conflict.Existing.Activity, Err: err}
	case errors.Is(err, schedule.ErrNotFound):
		t := c.Time
		if c.ModifyType == ModifyChange {
			t = c.OldTime
		}
		return &NotFoundError{Time: t, Err: err}
	case errors.Is(err, schedule.ErrInvalidTime):
		return &ValidationError{Tool: ScheduleModifierTool, Field: "time", Reason: err.Error(), Err: err}
	case errors.Is(err, schedule.ErrInvalidDate), errors.Is(err, schedule.ErrPastDate):
		return &ValidationError{Tool: ScheduleModifierTool, Field: "date", Reason: err.Error(), Err: err}
	case errors.Is(err, schedule.ErrEmptyActivity):
		return &ValidationError{Tool: ScheduleModifierTool, Field: "activity", Reason: err.Error(), Err: err}
	case errors.Is(err, schedule.ErrNothingToChange):
		return &ValidationError{Tool: ScheduleModifierTool, Field: "time", Reason: err.Error(), Err: err}
	}
	return err
}

func (r *Router) ragQuery(ctx context.Context, c RAGQuery) (Result, error) {
	if r.retriever == nil {
		return Result{}, ErrNoRetriever
	}
	found, err := r.retriever.Retrieve(ctx, c.Query, c.UserCondition)
	if err != nil {
		return Result{}, fmt.Errorf("retrieval failed: %w", err)
	}
	msg := "No relevant information found."
	if found.Found {
		msg = fmt.Sprintf("Found %d relevant passage(s).", len(found.Chunks))
	}
	return Result{Tool: RAGQueryTool, Message: msg, Retrieval: &found}, nil
}
