package websocket

import (
	"context"
	"encoding/json"
	"fmt"
)

// marshalMessage converts a Message to JSON bytes
func marshalMessage(message *Message) ([]byte, error) {
	// If Payload is set, marshal it to Data
	if message.Payload != nil {
		data, err := json.Marshal(message.Payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal payload: %w", err)
		}
		message.Data = data
	}

	return json.Marshal(message)
}

// MessageRouter routes messages based on type
type MessageRouter struct {
	handlers map[string]MessageHandler
}

// NewMessageRouter creates a new MessageRouter
func NewMessageRouter() *MessageRouter {
	return &MessageRouter{
		handlers: make(map[string]MessageHandler),
	}
}

// Register registers a handler for a message type
func (r *MessageRouter) Register(messageType string, handler MessageHandler) {
	r.handlers[messageType] = handler
}

// Route routes a message to the appropriate handler
func (r *MessageRouter) Route(ctx context.Context, client *Client, message *Message) error {
	handler, ok := r.handlers[message.Type]
	if !ok {
		return fmt.Errorf("no handler for message type: %s", message.Type)
	}

	return handler(ctx, client, message)
}

// Built-in message handlers

// PingHandler handles ping messages
func PingHandler(ctx context.Context, client *Client, message *Message) error {
	return client.SendJSON("pong", map[string]interface{}{
		"timestamp": message.Data,
	})
}

// StatusHandler returns connection status
func StatusHandler(ctx context.Context, client *Client, message *Message) error {
	return client.SendJSON("status", map[string]interface{}{
		"client_id":            client.ID,
		"auth_client_id":       client.ClientID,
		"connected_at":         client.connectedAt,
		"connection_duration":  client.ConnectionDuration().String(),
		"last_heartbeat":       client.GetLastHeartbeat(),
	})
}

// RunEvent describes one step of an in-progress recommendation run. The run
// ID isn't known to any client until POST /recommend's response arrives,
// by which point the run has already finished, so there's no per-run
// subscription to join: every connected client receives every RunEvent and
// filters on RunID itself.
type RunEvent struct {
	RunID       string  `json:"run_id"`
	Stage       string  `json:"stage"` // "started", "complete", "error"
	Description string  `json:"description"`
	CostBefore  float64 `json:"cost_before,omitempty"`
	CostAfter   float64 `json:"cost_after,omitempty"`
}

// PublishRunEvent broadcasts a run_event message to every connected client.
func PublishRunEvent(hub *Hub, event RunEvent) {
	hub.Broadcast(&Message{
		Type:    "run_event",
		Payload: event,
	})
}

// RegisterDefaultHandlers registers built-in message handlers
func RegisterDefaultHandlers(hub *Hub) {
	hub.RegisterHandler("ping", PingHandler)
	hub.RegisterHandler("status", StatusHandler)
}
