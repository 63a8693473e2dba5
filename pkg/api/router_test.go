package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/urmzd/homecare/pkg/api/types"
	"github.com/urmzd/homecare/pkg/assistant"
	"github.com/urmzd/homecare/pkg/db"
	"github.com/urmzd/homecare/pkg/device"
	"github.com/urmzd/homecare/pkg/home"
	"github.com/urmzd/homecare/pkg/llm"
	"github.com/urmzd/homecare/pkg/notify"
	"github.com/urmzd/homecare/pkg/parser"
	"github.com/urmzd/homecare/pkg/rag"
	"github.com/urmzd/homecare/pkg/schedule"
	"github.com/urmzd/homecare/pkg/toolcall"
)

type cannedCompleter struct {
	reply string
}

func (c cannedCompleter) Complete(context.Context, llm.Request) (string, error) {
	return c.reply, nil
}

type testServer struct {
	handler   http.Handler
	home      *home.Home
	inbox     *notify.Inbox
	assistant *assistant.Assistant
}

func newTestServer(t *testing.T, completer llm.Completer, retriever toolcall.Retriever) *testServer {
	t.Helper()
	ctx := context.Background()

	database, err := db.Open(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	require.NoError(t, database.Migrate(ctx))
	require.NoError(t, database.Bootstrap(ctx))

	h := home.New(device.NewStateManager(), schedule.NewEngine(), database.HomeState())
	dec, err := toolcall.NewDecoder()
	require.NoError(t, err)
	router := toolcall.NewRouter(h, retriever)
	inbox := notify.NewInbox(0)

	a := assistant.New(h, router, parser.New(dec), completer, assistant.DefaultConfig(),
		assistant.WithNotifications(inbox),
		assistant.WithJournal(database.History()),
	)

	deps := Deps{
		Home:      h,
		Router:    router,
		Decoder:   dec,
		Assistant: a,
		Inbox:     inbox,
		Sink:      notify.Fanout{inbox, database.Notifications()},
		Profiles:  database.Profiles(),
		History:   database.History(),
		Database:  database,
	}
	if retriever != nil {
		deps.Retriever = retriever
	}
	return &testServer{handler: NewRouter(deps).Handler(), home: h, inbox: inbox, assistant: a}
}

func (s *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, cannedCompleter{}, nil)

	rec := s.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[types.HealthResponse](t, rec)
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "ok", resp.Database)
	assert.Equal(t, "disabled", resp.LLM)
}

func TestRequestID(t *testing.T) {
	s := newTestServer(t, cannedCompleter{}, nil)

	rec := s.do(t, http.MethodGet, "/health", nil)
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "caller-id")
	rec = httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	assert.Equal(t, "caller-id", rec.Header().Get(RequestIDHeader))
}

func TestDevices_SetAndGet(t *testing.T) {
	s := newTestServer(t, cannedCompleter{}, nil)

	rec := s.do(t, http.MethodPost, "/api/v1/devices/living_room/tv/state", types.SetStateRequest{State: "on"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := decode[toolcall.Result](t, rec)
	assert.Equal(t, "Set Living Room TV to ON", res.Message)

	rec = s.do(t, http.MethodGet, "/api/v1/devices/Living-Room/TV", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	dev := decode[types.DeviceResponse](t, rec)
	assert.Equal(t, device.On, dev.Device.State)
	assert.True(t, dev.Installed)

	rec = s.do(t, http.MethodGet, "/api/v1/devices", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[types.DevicesResponse](t, rec)
	assert.Len(t, list.Devices, len(device.Rooms)*len(device.Types))
	assert.Equal(t, 1, list.On)
	assert.Equal(t, device.Bedroom, list.Location)
}

func TestDevices_InvalidRoomDoesNotMutate(t *testing.T) {
	s := newTestServer(t, cannedCompleter{}, nil)
	before := s.home.Devices.Snapshot()

	rec := s.do(t, http.MethodPost, "/api/v1/devices/garage/light/state", types.SetStateRequest{State: "ON"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_device", decode[types.ErrorResponse](t, rec).Error)
	assert.Equal(t, before, s.home.Devices.Snapshot())

	rec = s.do(t, http.MethodGet, "/api/v1/devices/bedroom/toaster", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLocation(t *testing.T) {
	s := newTestServer(t, cannedCompleter{}, nil)

	rec := s.do(t, http.MethodPut, "/api/v1/location", types.SetLocationRequest{Room: "kitchen"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, device.Kitchen, s.home.Devices.Location())

	rec = s.do(t, http.MethodPut, "/api/v1/location", types.SetLocationRequest{Room: "attic"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, device.Kitchen, s.home.Devices.Location())

	rec = s.do(t, http.MethodGet, "/api/v1/location", nil)
	assert.Equal(t, device.Kitchen, decode[types.LocationResponse](t, rec).Location)
}

func TestSchedule_ConflictAndDelete(t *testing.T) {
	s := newTestServer(t, cannedCompleter{}, nil)

	rec := s.do(t, http.MethodPost, "/api/v1/schedule", types.AddScheduleRequest{Time: "14:00", Activity: "Meeting"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodPost, "/api/v1/schedule", types.AddScheduleRequest{Time: "14.00", Activity: "Lunch"})
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, decode[types.ErrorResponse](t, rec).Message, "14:00")

	rec = s.do(t, http.MethodPatch, "/api/v1/schedule", types.ChangeScheduleRequest{OldTime: "14:00", Time: "15:00"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Changed time from 14:00 to 15:00", decode[toolcall.Result](t, rec).Message)

	rec = s.do(t, http.MethodGet, "/api/v1/schedule", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[types.ScheduleResponse](t, rec)
	require.Equal(t, 1, list.Count)
	assert.Equal(t, "15:00", list.Items[0].Time)

	rec = s.do(t, http.MethodDelete, "/api/v1/schedule?time=15:00", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodDelete, "/api/v1/schedule?time=15:00", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodDelete, "/api/v1/schedule", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSchedule_InvalidInput(t *testing.T) {
	s := newTestServer(t, cannedCompleter{}, nil)

	rec := s.do(t, http.MethodGet, "/api/v1/schedule?date=tomorrow", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/schedule", types.AddScheduleRequest{Time: "25:00", Activity: "Nap"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/schedule", types.AddScheduleRequest{Time: "10:00", Activity: "Nap", Date: "2000-01-01"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNotifications_CustomAndAck(t *testing.T) {
	s := newTestServer(t, cannedCompleter{}, nil)

	rec := s.do(t, http.MethodPost, "/api/v1/notifications", types.CustomNotificationRequest{Message: "Drink water"})
	require.Equal(t, http.StatusCreated, rec.Code)
	n := decode[notify.Notification](t, rec)
	assert.Equal(t, notify.KindCustom, n.Kind)

	rec = s.do(t, http.MethodGet, "/api/v1/notifications?unacked=true", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decode[types.NotificationsResponse](t, rec).Count)

	rec = s.do(t, http.MethodPost, "/api/v1/notifications/"+n.ID+"/ack", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[notify.Notification](t, rec).Acknowledged)

	rec = s.do(t, http.MethodGet, "/api/v1/notifications?unacked=true", nil)
	assert.Equal(t, 0, decode[types.NotificationsResponse](t, rec).Count)

	rec = s.do(t, http.MethodPost, "/api/v1/notifications/missing/ack", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/notifications", types.CustomNotificationRequest{Message: "   "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPreferences(t *testing.T) {
	s := newTestServer(t, cannedCompleter{}, nil)

	rec := s.do(t, http.MethodPost, "/api/v1/preferences/do-not-remind", types.DoNotRemindRequest{Item: "Exercise"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"exercise"}, decode[types.PreferencesResponse](t, rec).DoNotRemind)

	rec = s.do(t, http.MethodPut, "/api/v1/preferences/notify", types.NotifyPreferenceRequest{Room: "bedroom", Device: "lamp", Notify: false})
	require.Equal(t, http.StatusOK, rec.Code)
	muted := decode[types.PreferencesResponse](t, rec).DoNotNotify
	assert.Equal(t, []device.Key{{Room: device.Bedroom, Type: device.Light}}, muted)

	rec = s.do(t, http.MethodDelete, "/api/v1/preferences/do-not-remind/exercise", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[types.PreferencesResponse](t, rec).DoNotRemind)

	rec = s.do(t, http.MethodDelete, "/api/v1/preferences/do-not-remind/exercise", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTools(t *testing.T) {
	s := newTestServer(t, cannedCompleter{}, nil)

	rec := s.do(t, http.MethodGet, "/api/v1/tools", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	tools := decode[types.ToolsResponse](t, rec).Tools
	require.Len(t, tools, len(toolcall.Names))
	for _, tool := range tools {
		assert.NotEmpty(t, tool.Schema, tool.Name)
	}

	rec = s.do(t, http.MethodPost, "/api/v1/tools/e_device_control",
		map[string]any{"room": "kitchen", "device": "lights", "action": "on"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	kitchen, err := s.home.Devices.DeviceState(device.Kitchen, device.Light)
	require.NoError(t, err)
	assert.Equal(t, device.On, kitchen.State)

	rec = s.do(t, http.MethodPost, "/api/v1/tools/e_device_control", map[string]any{"room": "kitchen"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/tools/open_door", map[string]any{})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/tools/rag_query", map[string]any{"query": "what can I eat?"})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

type fixedRetriever struct{}

func (fixedRetriever) Retrieve(_ context.Context, query, _ string) (rag.Result, error) {
	return rag.Result{Found: true, Query: query, Chunks: []rag.Chunk{{Text: "Choose whole grains.", Score: 0.9}}}, nil
}

func TestRAGQuery(t *testing.T) {
	s := newTestServer(t, cannedCompleter{}, nil)
	rec := s.do(t, http.MethodPost, "/api/v1/rag/query", types.RAGQueryRequest{Query: "breakfast ideas"})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	s = newTestServer(t, cannedCompleter{}, fixedRetriever{})
	rec = s.do(t, http.MethodPost, "/api/v1/rag/query", types.RAGQueryRequest{Query: "breakfast ideas"})
	require.Equal(t, http.StatusOK, rec.Code)
	res := decode[rag.Result](t, rec)
	assert.True(t, res.Found)
	require.Len(t, res.Chunks, 1)
}

func TestChat(t *testing.T) {
	s := newTestServer(t, cannedCompleter{
		reply: `[{"tool": "e_device_control", "arguments": {"room": "Bedroom", "device": "Light", "action": "ON"}}]`,
	}, nil)

	rec := s.do(t, http.MethodPost, "/api/v1/chat", types.ChatRequest{Message: "turn on the bedroom light"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[types.ChatResponse](t, rec)
	assert.Equal(t, "Set Bedroom Light to ON", resp.Message)
	require.Len(t, resp.Results, 1)

	rec = s.do(t, http.MethodGet, "/api/v1/chat/history", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[types.HistoryResponse](t, rec).Messages, 2)

	rec = s.do(t, http.MethodDelete, "/api/v1/chat", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, s.assistant.Conversation().Recent())

	rec = s.do(t, http.MethodPost, "/api/v1/chat", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProfile(t *testing.T) {
	s := newTestServer(t, cannedCompleter{}, nil)

	rec := s.do(t, http.MethodGet, "/api/v1/profile", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, db.DefaultUserName, decode[types.ProfileResponse](t, rec).UserName)

	tz := "Mars/Olympus"
	rec = s.do(t, http.MethodPut, "/api/v1/profile", types.UpdateProfileRequest{Timezone: &tz})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	name, cond := "Malee", "Hypertension"
	rec = s.do(t, http.MethodPut, "/api/v1/profile", types.UpdateProfileRequest{UserName: &name, Condition: &cond})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Malee", decode[types.ProfileResponse](t, rec).UserName)
	assert.Equal(t, assistant.Profile{UserName: "Malee", Condition: "Hypertension"}, s.assistant.Profile())
}
