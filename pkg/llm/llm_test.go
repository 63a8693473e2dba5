package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/urmzd/homecare/pkg/device"
	"github.com/urmzd/homecare/pkg/notify"
	"github.com/urmzd/homecare/pkg/rag"
	"github.com/urmzd/homecare/pkg/retry"
	"github.com/urmzd/homecare/pkg/schedule"
)

var fastPolicy = retry.Policy{MaxAttempts: 3, InitialInterval: time.Millisecond, MaxInterval: 2 * time.Millisecond}

func TestOllama_Complete(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/chat", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"model":"m","message":{"role":"assistant","content":"[{\"tool\":\"chat_message\"}]"},"done":true}`))
	}))
	defer srv.Close()

	c, err := NewOllama(srv.URL, "m", srv.Client())
	require.NoError(t, err)

	out, err := c.Complete(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "hi"}}})
	require.NoError(t, err)
	assert.Equal(t, `[{"tool":"chat_message"}]`, out)

	assert.Equal(t, "m", got["model"])
	assert.Equal(t, false, got["stream"])
	opts := got["options"].(map[string]any)
	assert.InDelta(t, 0.7, opts["temperature"], 1e-9)
	assert.InDelta(t, 0.9, opts["top_p"], 1e-9)
	assert.InDelta(t, 16384, opts["num_ctx"], 1e-9)
}

func TestOllama_Embed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/embed", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"model":"e","embeddings":[[1,0],[0,1]]}`))
	}))
	defer srv.Close()

	c, err := NewOllama(srv.URL, "m", srv.Client())
	require.NoError(t, err)
	c.WithEmbedModel("e")

	var _ rag.Embedder = c
	vecs, err := c.Embed(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{1, 0}, {0, 1}}, vecs)
}

func TestRetrying_ServerErrorsAreRetried(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"boom"}`))
	}))
	defer srv.Close()

	c, err := NewOllama(srv.URL, "m", srv.Client())
	require.NoError(t, err)

	_, err = WithRetry(c, fastPolicy).Complete(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "hi"}}})
	require.Error(t, err)
	assert.ErrorIs(t, err, retry.ErrUnavailable)
	assert.Equal(t, int32(3), hits.Load())
}

func TestRetrying_MissingModelIsPermanent(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"model 'm' not found"}`))
	}))
	defer srv.Close()

	c, err := NewOllama(srv.URL, "m", srv.Client())
	require.NoError(t, err)

	_, err = WithRetry(c, fastPolicy).Complete(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "hi"}}})
	require.Error(t, err)
	assert.NotErrorIs(t, err, retry.ErrUnavailable)
	assert.Equal(t, int32(1), hits.Load())
}

func TestRetrying_EmptyRequest(t *testing.T) {
	_, err := WithRetry(completerFunc(func(context.Context, Request) (string, error) {
		return "", nil
	}), fastPolicy).Complete(context.Background(), Request{})
	assert.ErrorIs(t, err, ErrEmptyRequest)
}

func TestOpenAI_Complete(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"), r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"x","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"hello"},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	c := NewOpenAI(srv.URL+"/v1", "key", "gpt")
	out, err := c.Complete(context.Background(), Request{Messages: []Message{
		{Role: RoleSystem, Content: "sys"},
		{Role: RoleUser, Content: "hi"},
	}})
	require.NoError(t, err)
	assert.Equal(t, "hello", out)
	assert.Equal(t, "gpt", got["model"])
	assert.Len(t, got["messages"], 2)
}

type completerFunc func(ctx context.Context, req Request) (string, error)

func (f completerFunc) Complete(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

func TestConversation_Window(t *testing.T) {
	c := NewConversation(2)
	c.Append(
		Message{Role: RoleUser, Content: "1"},
		Message{Role: RoleAssistant, Content: "2"},
		Message{Role: RoleUser, Content: "3"},
	)

	assert.Equal(t, []Message{{Role: RoleAssistant, Content: "2"}, {Role: RoleUser, Content: "3"}}, c.Recent())
	old := c.Overflow()
	require.Len(t, old, 1)

	c.Compact(Summary{Text: "s"}, len(old))
	assert.Nil(t, c.Overflow())
	assert.Len(t, c.Recent(), 2)
	assert.Equal(t, "s", c.Summary().Text)
}

func TestConversation_KeyEventsCapped(t *testing.T) {
	c := NewConversation(0)
	for i := 0; i < MaxKeyEvents+5; i++ {
		c.Record(KeyEvent{Type: EventDeviceControl, Summary: string(rune('a' + i))})
	}
	events := c.Summary().KeyEvents
	require.Len(t, events, MaxKeyEvents)
	assert.Equal(t, string(rune('a'+5)), events[0].Summary)
}

func TestSummarizer(t *testing.T) {
	old := []Message{{Role: RoleUser, Content: strings.Repeat("x", 3000)}}

	t.Run("merges and truncates", func(t *testing.T) {
		var prompt string
		s := NewSummarizer(completerFunc(func(_ context.Context, req Request) (string, error) {
			prompt = req.Messages[0].Content
			assert.InDelta(t, 0.3, req.Options.Temperature, 1e-9)
			return strings.Repeat("y", 400), nil
		}))
		out := s.Summarize(context.Background(), old, Summary{Text: strings.Repeat("z", 200)})
		assert.Len(t, out.Text, MaxSummaryLen)
		assert.True(t, strings.HasPrefix(out.Text, "zzz"))
		assert.Less(t, len(prompt), 2300)
	})

	t.Run("fallback", func(t *testing.T) {
		s := NewSummarizer(completerFunc(func(context.Context, Request) (string, error) {
			return "", errors.New("down")
		}))
		existing := Summary{KeyEvents: []KeyEvent{{Type: EventDeviceControl}, {Type: EventScheduleChange}}}
		out := s.Summarize(context.Background(), old, existing)
		assert.Equal(t, "Previous conversation included: 2 key events (device controls, schedule changes, preferences).", out.Text)
		assert.Len(t, out.KeyEvents, 2)
	})

	t.Run("nothing to do", func(t *testing.T) {
		s := NewSummarizer(completerFunc(func(context.Context, Request) (string, error) {
			t.Fatal("unexpected completion")
			return "", nil
		}))
		assert.Equal(t, Summary{Text: "keep"}, s.Summarize(context.Background(), nil, Summary{Text: "keep"}))
	})
}

func TestStateContext(t *testing.T) {
	now := time.Date(2025, 1, 15, 8, 15, 0, 0, time.UTC)
	sc := StateContext{
		Now:       now,
		UserName:  "Somchai",
		Condition: "Uses a wheelchair",
		Location:  device.Kitchen,
		Devices: device.Snapshot{Location: device.Kitchen, Devices: []device.Record{
			{Room: device.Kitchen, Type: device.Light, State: device.On},
			{Room: device.Bedroom, Type: device.AC, State: device.Off},
		}},
		Today: []schedule.Item{
			{Time: "07:00", Activity: "Wake up"},
			{Time: "08:00", Activity: "Breakfast"},
			{Time: "14:00", Activity: "Meeting", Date: "2025-01-15"},
		},
		Muted: []device.Key{{Room: device.LivingRoom, Type: device.TV}},
	}
	out := sc.String()

	assert.Contains(t, out, "CURRENT DATE: 2025-01-15")
	assert.Contains(t, out, "TOMORROW'S DATE: 2025-01-16")
	assert.Contains(t, out, "Condition: Uses a wheelchair")
	assert.Contains(t, out, "CURRENT ACTIVITY: Breakfast")
	assert.Contains(t, out, "- 14:00: Meeting (one-time)")
	assert.Contains(t, out, "Devices ON: Kitchen Light\n")
	assert.Contains(t, out, "Living Room TV")
}

func TestKnowledgeSection(t *testing.T) {
	assert.Contains(t, KnowledgeSection(rag.Result{}), "Nothing specific was found")

	r := rag.Result{Found: true, Chunks: []rag.Chunk{
		{Text: strings.Repeat("a", 600), Score: 0.91},
		{Text: "b", Score: 0.8}, {Text: "c", Score: 0.7}, {Text: "d", Score: 0.6},
	}}
	out := KnowledgeSection(r)
	assert.Contains(t, out, "Passage 1 (score 0.910)")
	assert.Contains(t, out, strings.Repeat("a", 500)+"...")
	assert.NotContains(t, out, "Passage 4")
}

func TestNotificationSection(t *testing.T) {
	out := NotificationSection(notify.Notification{
		Message: "Bedroom Light is still on",
		Devices: []device.Key{{Room: device.Bedroom, Type: device.Light}},
	})
	assert.Contains(t, out, "Devices: Bedroom Light")
}

func TestSystemPrompt(t *testing.T) {
	assert.Contains(t, SystemPrompt(false), "EXAMPLES:")
	assert.NotContains(t, SystemPrompt(true), "EXAMPLES:")
	assert.Contains(t, SystemPrompt(true), "schedule_modifier")
}
