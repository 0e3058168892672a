package ws

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/vasyldobrodev-cpu/nippy-backend/internal/models"
	"github.com/vasyldobrodev-cpu/nippy-backend/internal/observability"
)

// Hub maintains one room of websocket connections per conversation and
// implements the conversation service's notifier port.
type Hub struct {
	rooms    map[uuid.UUID]map[*websocket.Conn]bool
	connInfo map[uuid.UUID]map[*websocket.Conn]ConnInfo
	mu       sync.RWMutex
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		rooms:    make(map[uuid.UUID]map[*websocket.Conn]bool),
		connInfo: make(map[uuid.UUID]map[*websocket.Conn]ConnInfo),
	}
}

// AddClient registers a websocket connection to a conversation room.
func (h *Hub) AddClient(conversationID uuid.UUID, conn *websocket.Conn, info ConnInfo) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.rooms[conversationID]; !ok {
		h.rooms[conversationID] = make(map[*websocket.Conn]bool)
	}
	h.rooms[conversationID][conn] = true
	if _, ok := h.connInfo[conversationID]; !ok {
		h.connInfo[conversationID] = make(map[*websocket.Conn]ConnInfo)
	}
	h.connInfo[conversationID][conn] = info
}

// RemoveClient removes a websocket connection from its room.
func (h *Hub) RemoveClient(conversationID uuid.UUID, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.rooms[conversationID]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.rooms, conversationID)
		}
	}
	if infos, ok := h.connInfo[conversationID]; ok {
		delete(infos, conn)
		if len(infos) == 0 {
			delete(h.connInfo, conversationID)
		}
	}
}

// RoomSize reports how many connections a conversation room holds.
func (h *Hub) RoomSize(conversationID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[conversationID])
}

// MessageSent pushes a new message to every connection in the room and
// publishes the domain event.
func (h *Hub) MessageSent(conversationID uuid.UUID, msg models.Message) {
	h.broadcast(conversationID, models.ConversationEvent{Type: "message", Message: &msg})
	observability.IncWSEvent("message")
	observability.IncMessageSent(string(msg.Type))

	_ = observability.PublishEvent(context.Background(), observability.RoutingMessageSent, observability.EventEnvelope{
		EventType: "domain_events",
		EventName: "message_sent",
		Payload: map[string]interface{}{
			"conversation_id": conversationID.String(),
			"message_id":      msg.ID.String(),
			"sender_id":       msg.SenderID.String(),
			"type":            msg.Type,
		},
	}, nil)
}

// StatusChanged pushes a status transition to every connection in the room
// and publishes the domain event.
func (h *Hub) StatusChanged(conversationID uuid.UUID, conv models.Conversation) {
	status := conv.Status
	h.broadcast(conversationID, models.ConversationEvent{
		Type:         "status_changed",
		Conversation: &conv,
		Status:       &status,
	})
	observability.IncWSEvent("status_changed")

	_ = observability.PublishEvent(context.Background(), observability.RoutingStatusChanged, observability.EventEnvelope{
		EventType: "domain_events",
		EventName: "status_changed",
		Payload: map[string]interface{}{
			"conversation_id": conversationID.String(),
			"status":          status,
		},
	}, nil)
}

func (h *Hub) broadcast(conversationID uuid.UUID, event models.ConversationEvent) {
	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.rooms[conversationID]))
	for conn := range h.rooms[conversationID] {
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	payload, _ := json.Marshal(event)
	for _, conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			log.Printf("websocket write error: %v", err)
			conn.Close()
			h.publishWSError(conversationID, conn, err)
			h.RemoveClient(conversationID, conn)
		}
	}
}

func (h *Hub) publishWSError(conversationID uuid.UUID, conn *websocket.Conn, err error) {
	info, ok := h.getConnInfo(conversationID, conn)
	if !ok {
		return
	}

	headers := observability.BuildHeaders(info.RequestID, info.TraceID)
	_ = observability.PublishEvent(context.Background(), "ws_events.conversations", observability.EventEnvelope{
		EventType: "ws_events",
		EventName: "ws_error",
		Payload:   wsEventPayload(conversationID, info, "ws_error", time.Since(info.ConnectedAt), err.Error()),
	}, headers)
	observability.IncWSEvent("ws_error")
}

func (h *Hub) getConnInfo(conversationID uuid.UUID, conn *websocket.Conn) (ConnInfo, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if infos, ok := h.connInfo[conversationID]; ok {
		info, exists := infos[conn]
		return info, exists
	}
	return ConnInfo{}, false
}

func wsEventPayload(conversationID uuid.UUID, info ConnInfo, event string, duration time.Duration, reason string) map[string]interface{} {
	return map[string]interface{}{
		"ws": map[string]interface{}{
			"conversation_id": conversationID.String(),
			"event":           event,
			"conn_id":         info.ConnID,
			"duration_ms":     duration.Milliseconds(),
			"reason":          reason,
		},
		"identity": map[string]interface{}{
			"user_id":   info.UserID.String(),
			"device_id": info.DeviceID,
			"ip":        info.IP,
		},
	}
}
