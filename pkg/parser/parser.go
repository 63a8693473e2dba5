// Package parser extracts tool calls from raw model output. Extraction is
// strict first, then lenient, and always ends in a usable result: output
// that holds no recognizable call becomes a plain chat message.
package parser

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/urmzd/homecare/pkg/toolcall"
)

// Kind tags a parse result.
type Kind int

const (
	// ToolCall carries a decoded call ready for dispatch.
	ToolCall Kind = iota + 1
	// PlainMessage carries text for the user wrapped in a chat_message call.
	PlainMessage
	// ParseFailure carries a known tool whose arguments were rejected.
	ParseFailure
)

func (k Kind) String() string {
	switch k {
	case ToolCall:
		return "tool_call"
	case PlainMessage:
		return "plain_message"
	case ParseFailure:
		return "parse_failure"
	}
	return "unknown"
}

const (
	// MalformedMessage replaces output that looks like a tool call but
	// could not be parsed, so raw JSON never reaches the user.
	MalformedMessage = "I encountered an issue processing that request. Could you please try again?"

	// EmptyMessage replaces empty model output.
	EmptyMessage = "I'm sorry, I didn't receive a response. Please try again."
)

// ErrMalformed is attached to results produced from unparseable tool calls
var ErrMalformed = errors.New("malformed tool call")

// Result is one extracted item. For PlainMessage, Call is a
// toolcall.ChatMessage holding Message. For ParseFailure, Err holds the
// *toolcall.ValidationError and Message its user-facing rendering.
type Result struct {
	Kind    Kind
	Call    toolcall.Call
	Message string
	Err     error
}

// Parser extracts tool calls using a Decoder for argument validation.
type Parser struct {
	decoder *toolcall.Decoder
}

// New creates a parser.
func New(decoder *toolcall.Decoder) *Parser {
	return &Parser{decoder: decoder}
}

// Parse returns the first result of ParseAll.
func (p *Parser) Parse(raw string) Result {
	return p.ParseAll(raw)[0]
}

// ParseAll extracts every tool call in raw, in order. It always returns at
// least one result.
func (p *Parser) ParseAll(raw string) []Result {
	text := StripReasoning(raw)
	if text == "" {
		return []Result{plain(EmptyMessage, nil)}
	}

	calls, ok := extract(text)
	if !ok {
		if LooksLikeToolCall(text) {
			log.Warn().Str("output", truncate(text, 200)).Msg("Unparseable tool call in model output")
			return []Result{plain(MalformedMessage, ErrMalformed)}
		}
		return []Result{plain(text, nil)}
	}

	var results []Result
	for _, rc := range calls {
		call, err := p.decoder.Decode(rc.name, rc.args)
		var verr *toolcall.ValidationError
		switch {
		case err == nil:
			results = append(results, Result{Kind: ToolCall, Call: call})
		case errors.Is(err, toolcall.ErrUnknownTool):
			log.Debug().Str("tool", rc.name).Msg("Ignoring unknown tool in model output")
			if msg, ok := rc.args["message"].(string); ok && strings.TrimSpace(msg) != "" {
				results = append(results, plain(msg, nil))
			}
		case errors.As(err, &verr):
			results = append(results, Result{Kind: ParseFailure, Message: toolcall.UserMessage(err), Err: err})
		default:
			results = append(results, Result{Kind: ParseFailure, Message: MalformedMessage, Err: err})
		}
	}
	if len(results) == 0 {
		// Only unknown tools: the prose around them is the reply.
		if msg := prose(text); msg != "" {
			return []Result{plain(msg, nil)}
		}
		return []Result{plain(MalformedMessage, ErrMalformed)}
	}
	return results
}

// prose returns text without fenced blocks and tool-call segments.
func prose(text string) string {
	text = fencePattern.ReplaceAllString(text, " ")
	var b strings.Builder
	last := 0
	for _, sp := range segmentSpans(text) {
		b.WriteString(text[last:sp[0]])
		b.WriteByte(' ')
		last = sp[1]
	}
	b.WriteString(text[last:])
	return strings.TrimRight(strings.Join(strings.Fields(b.String()), " "), ":")
}

func plain(msg string, err error) Result {
	return Result{Kind: PlainMessage, Call: toolcall.ChatMessage{Message: msg}, Message: msg, Err: err}
}

// StripReasoning drops everything up to the last </think> or </reasoning>
// marker. Output that is empty after the marker is returned unstripped.
func StripReasoning(raw string) string {
	text := strings.TrimSpace(raw)
	for _, marker := range []string{"</think>", "</reasoning>"} {
		if i := strings.LastIndex(text, marker); i >= 0 {
			if rest := strings.TrimSpace(text[i+len(marker):]); rest != "" {
				text = rest
			}
		}
	}
	return text
}

// LooksLikeToolCall reports whether text resembles a JSON tool call.
func LooksLikeToolCall(text string) bool {
	lower := strings.ToLower(strings.TrimSpace(text))
	hasTool := strings.Contains(lower, `"tool"`) || strings.Contains(lower, `'tool'`)
	if !hasTool {
		return false
	}
	if strings.HasPrefix(lower, "{") || strings.HasPrefix(lower, "[") {
		return true
	}
	hasArgs := strings.Contains(lower, `"arguments"`) || strings.Contains(lower, `'arguments'`)
	return hasArgs && strings.ContainsAny(lower, "{[")
}

type rawCall struct {
	name string
	args map[string]any
}

var (
	fencePattern = regexp.MustCompile("(?s)```[a-zA-Z]*\\s*(.*?)```")
	toolPattern  = regexp.MustCompile(`(?i)["']?tool["']?\s*[:=]\s*["']?(chat_message|e_device_control|schedule_modifier|rag_query)\b`)
	argsPattern  = regexp.MustCompile(`(?is)["']?arguments["']?\s*[:=]\s*(\{.*\})`)
)

// extract runs the strict stages, then the lenient ones.
func extract(text string) ([]rawCall, bool) {
	var candidates []string
	for _, m := range fencePattern.FindAllStringSubmatch(text, -1) {
		candidates = append(candidates, strings.TrimSpace(m[1]))
	}
	candidates = append(candidates, text)

	for _, c := range candidates {
		if calls, ok := decodeCandidate(c, false); ok {
			return calls, true
		}
	}

	segments := jsonSegments(text)
	if calls, ok := fromSegments(segments, false); ok {
		return calls, true
	}

	for _, c := range candidates {
		if calls, ok := decodeCandidate(c, true); ok {
			return calls, true
		}
	}
	if calls, ok := fromSegments(segments, true); ok {
		return calls, true
	}

	return regexFallback(text)
}

func fromSegments(segments []string, lenient bool) ([]rawCall, bool) {
	var calls []rawCall
	for _, s := range segments {
		if found, ok := decodeCandidate(s, lenient); ok {
			calls = append(calls, found...)
		}
	}
	return calls, len(calls) > 0
}

func decodeCandidate(s string, lenient bool) ([]rawCall, bool) {
	s = strings.TrimSpace(s)
	if s == "" || (s[0] != '{' && s[0] != '[') {
		return nil, false
	}
	if lenient {
		s = Repair(s)
	}
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, false
	}
	calls := interpret(v)
	return calls, len(calls) > 0
}

// interpret accepts {"tool": n, "arguments": {...}}, {"name": n,
// "arguments": {...}}, {"tool_call": ...}, ["name", {...}] and arrays of
// any of these. Arguments may also arrive as a JSON-encoded string.
func interpret(v any) []rawCall {
	switch t := v.(type) {
	case map[string]any:
		for _, key := range []string{"tool_call", "tool_calls", "function"} {
			if inner, ok := t[key]; ok {
				return interpret(inner)
			}
		}
		if name, ok := t["tool"].(string); ok {
			return []rawCall{{name: name, args: arguments(t)}}
		}
		if name, ok := t["name"].(string); ok {
			if _, hasArgs := t["arguments"]; hasArgs {
				return []rawCall{{name: name, args: arguments(t)}}
			}
		}
		return nil
	case []any:
		if len(t) == 2 {
			if name, ok := t[0].(string); ok {
				if args, ok := t[1].(map[string]any); ok {
					return []rawCall{{name: name, args: args}}
				}
			}
		}
		var out []rawCall
		for _, el := range t {
			out = append(out, interpret(el)...)
		}
		return out
	}
	return nil
}

func arguments(obj map[string]any) map[string]any {
	switch a := obj["arguments"].(type) {
	case map[string]any:
		return a
	case string:
		var args map[string]any
		if err := json.Unmarshal([]byte(a), &args); err == nil {
			return args
		}
	}
	return nil
}

func regexFallback(text string) ([]rawCall, bool) {
	m := toolPattern.FindStringSubmatch(text)
	if m == nil {
		return nil, false
	}
	name := strings.ToLower(m[1])
	args := map[string]any{}
	if am := argsPattern.FindStringSubmatch(text); am != nil {
		obj := am[1]
		if end := closingIndex(obj, 0); end >= 0 {
			obj = obj[:end+1]
		}
		if err := json.Unmarshal([]byte(Repair(obj)), &args); err != nil {
			return nil, false
		}
	} else if name != string(toolcall.ChatMessageTool) {
		return nil, false
	}
	return []rawCall{{name: name, args: args}}, true
}

// jsonSegments returns the top-level bracketed segments of s that mention a
// tool. Brackets inside strings are ignored; a segment still open at the
// end of s runs to the end.
func jsonSegments(s string) []string {
	spans := segmentSpans(s)
	out := make([]string, len(spans))
	for i, sp := range spans {
		out[i] = s[sp[0]:sp[1]]
	}
	return out
}

// segmentSpans locates the segments returned by jsonSegments as [start,
// end) pairs. Brackets are matched in one pass and every byte of s is
// searched for a tool mention at most twice, so the cost stays linear.
func segmentSpans(s string) [][2]int {
	closing := matchBrackets(s)

	var out [][2]int
	checkedOpen := false
	for i := 0; i < len(s); i++ {
		end, ok := closing[i]
		if !ok {
			continue
		}
		if end < 0 {
			// Later unclosed segments are suffixes of this one.
			if checkedOpen {
				continue
			}
			checkedOpen = true
			if mentionsTool(s[i:]) {
				out = append(out, [2]int{i, len(s)})
				break
			}
			continue
		}
		if mentionsTool(s[i : end+1]) {
			out = append(out, [2]int{i, end + 1})
		}
		// Nested segments are substrings of this one.
		i = end
	}
	return out
}

// matchBrackets maps the index of every opening bracket outside a string to
// the index of its closing bracket, or -1 if it never closes.
func matchBrackets(s string) map[int]int {
	out := make(map[int]int)
	var stack []int
	var quote byte
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == quote:
				quote = 0
			}
			continue
		}
		switch c {
		case '"':
			quote = c
		case '{', '[':
			stack = append(stack, i)
			out[i] = -1
		case '}', ']':
			if len(stack) > 0 {
				out[stack[len(stack)-1]] = i
				stack = stack[:len(stack)-1]
			}
		}
	}
	return out
}

// closingIndex returns the index of the bracket closing the one at start,
// or -1 if it never closes.
func closingIndex(s string, start int) int {
	depth := 0
	var quote byte
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == quote:
				quote = 0
			}
			continue
		}
		switch c {
		case '"':
			quote = c
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func mentionsTool(s string) bool {
	if strings.Contains(s, `"tool"`) || strings.Contains(s, `'tool'`) {
		return true
	}
	for _, n := range toolcall.Names {
		if strings.Contains(s, `"`+string(n)+`"`) {
			return true
		}
	}
	return false
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
