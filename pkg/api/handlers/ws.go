package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/urmzd/homecare/pkg/assistant"
	"github.com/urmzd/homecare/pkg/device"
	"github.com/urmzd/homecare/pkg/notify"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// WSMessage is the envelope for both directions of the chat socket.
type WSMessage struct {
	Type    string          `json:"type"`
	Content string          `json:"content,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// WebSocket message types
const (
	WSTypeMessage      = "message"
	WSTypeReset        = "reset"
	WSTypeAck          = "ack"
	WSTypeReply        = "reply"
	WSTypeNotification = "notification"
	WSTypeDevice       = "device"
	WSTypeCleared      = "conversation_cleared"
	WSTypeError        = "error"
)

// WSHandler serves a chat socket that also pushes notifications
type WSHandler struct {
	assistant *assistant.Assistant
	inbox     *notify.Inbox
	devices   *device.StateManager
}

// NewWSHandler creates a new websocket handler. devices may be nil.
func NewWSHandler(a *assistant.Assistant, inbox *notify.Inbox, devices *device.StateManager) *WSHandler {
	return &WSHandler{assistant: a, inbox: inbox, devices: devices}
}

// Serve handles GET /ws
// @Summary      Chat socket
// @Description  WebSocket carrying chat turns from the client and notifications, replies and device events from the server
// @Tags         chat
// @Success      101
// @Router       /ws [get]
func (h *WSHandler) Serve(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	s := &wsSession{conn: conn, handler: h}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.push(ctx)
	}()

	s.run(ctx)
	cancel()
	wg.Wait()
}

type wsSession struct {
	conn    *websocket.Conn
	handler *WSHandler
	writeMu sync.Mutex
}

func (s *wsSession) run(ctx context.Context) {
	for {
		_, msgBytes, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Msg("WebSocket closed unexpectedly")
			}
			return
		}

		var msg WSMessage
		if err := json.Unmarshal(msgBytes, &msg); err != nil {
			s.sendError("Invalid message format")
			continue
		}

		switch msg.Type {
		case WSTypeMessage:
			reply, err := s.handler.assistant.Chat(ctx, msg.Content)
			if err != nil {
				s.sendError(err.Error())
				continue
			}
			s.sendData(WSTypeReply, reply.Message, reply)
		case WSTypeReset:
			s.handler.assistant.Reset()
			s.send(WSMessage{Type: WSTypeCleared})
		case WSTypeAck:
			n, err := s.handler.inbox.Acknowledge(msg.Content)
			if err != nil {
				s.sendError(err.Error())
				continue
			}
			s.sendData(WSTypeNotification, n.Message, n)
		default:
			s.sendError("Unknown message type: " + msg.Type)
		}
	}
}

// push forwards notifications and device events until ctx ends.
func (s *wsSession) push(ctx context.Context) {
	notifications := s.handler.inbox.Subscribe()
	defer s.handler.inbox.Unsubscribe(notifications)

	var events chan device.Event
	if s.handler.devices != nil {
		events = s.handler.devices.Subscribe()
		defer s.handler.devices.Unsubscribe(events)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case n, ok := <-notifications:
			if !ok {
				return
			}
			s.sendData(WSTypeNotification, n.Message, n)
		case ev, ok := <-events:
			if !ok {
				return
			}
			s.sendData(WSTypeDevice, ev.Type, ev)
		}
	}
}

func (s *wsSession) sendData(typ, content string, data any) {
	raw, err := json.Marshal(data)
	if err != nil {
		s.sendError(err.Error())
		return
	}
	s.send(WSMessage{Type: typ, Content: content, Data: raw})
}

func (s *wsSession) send(msg WSMessage) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	_ = s.conn.WriteJSON(msg)
}

func (s *wsSession) sendError(message string) {
	s.send(WSMessage{Type: WSTypeError, Content: message})
}
