package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
)

// MessageType represents the type of WebSocket message
type MessageType string

const (
	MessageTypeSubscribe   MessageType = "subscribe"
	MessageTypeUnsubscribe MessageType = "unsubscribe"
	MessageTypeEvent       MessageType = "event"
	MessageTypeError       MessageType = "error"
)

// AllApplications is the subscription key for every application's events
const AllApplications uint = 0

// WSMessage represents a WebSocket message. Clients send subscribe and
// unsubscribe; the hub sends event and error.
type WSMessage struct {
	Type          MessageType `json:"type"`
	ApplicationID *uint       `json:"application_id,omitempty"`
	Event         string      `json:"event,omitempty"`
	Data          interface{} `json:"data,omitempty"`
	Error         string      `json:"error,omitempty"`
}

// Hub maintains the set of active clients and fans application events out
// to them
type Hub struct {
	// Registered clients
	clients map[*Client]bool

	// Subscriptions: applicationID -> set of clients; AllApplications
	// receives everything
	subscriptions map[uint]map[*Client]bool

	register    chan *Client
	unregister  chan *Client
	subscribe   chan *subscriptionRequest
	unsubscribe chan *subscriptionRequest
	broadcast   chan *broadcastMessage

	// done is closed when Run returns
	done chan struct{}

	mu sync.RWMutex

	logger *slog.Logger
}

type subscriptionRequest struct {
	client        *Client
	applicationID uint
}

type broadcastMessage struct {
	applicationID uint
	message       []byte
}

// NewHub creates a new Hub instance
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients:       make(map[*Client]bool),
		subscriptions: make(map[uint]map[*Client]bool),
		register:      make(chan *Client),
		unregister:    make(chan *Client),
		subscribe:     make(chan *subscriptionRequest),
		unsubscribe:   make(chan *subscriptionRequest),
		broadcast:     make(chan *broadcastMessage, 256),
		done:          make(chan struct{}),
		logger:        logger,
	}
}

// Run processes hub requests until ctx is cancelled, then disconnects
// every client
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				close(client.send)
			}
			h.clients = make(map[*Client]bool)
			h.subscriptions = make(map[uint]map[*Client]bool)
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			h.debug("client registered")

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				for applicationID, subscribers := range h.subscriptions {
					delete(subscribers, client)
					if len(subscribers) == 0 {
						delete(h.subscriptions, applicationID)
					}
				}
			}
			h.mu.Unlock()
			h.debug("client unregistered")

		case req := <-h.subscribe:
			h.mu.Lock()
			if _, ok := h.clients[req.client]; ok {
				if h.subscriptions[req.applicationID] == nil {
					h.subscriptions[req.applicationID] = make(map[*Client]bool)
				}
				h.subscriptions[req.applicationID][req.client] = true
			}
			h.mu.Unlock()
			h.debug("client subscribed", slog.Uint64("application_id", uint64(req.applicationID)))

		case req := <-h.unsubscribe:
			h.mu.Lock()
			if subscribers, ok := h.subscriptions[req.applicationID]; ok {
				delete(subscribers, req.client)
				if len(subscribers) == 0 {
					delete(h.subscriptions, req.applicationID)
				}
			}
			h.mu.Unlock()
			h.debug("client unsubscribed", slog.Uint64("application_id", uint64(req.applicationID)))

		case msg := <-h.broadcast:
			h.mu.RLock()
			for client := range h.recipients(msg.applicationID) {
				select {
				case client.send <- msg.message:
				default:
					h.debug("subscriber queue full, event dropped",
						slog.Uint64("application_id", uint64(msg.applicationID)))
				}
			}
			h.mu.RUnlock()
		}
	}
}

// recipients returns subscribers of the application plus subscribers of
// all applications. Callers hold h.mu.
func (h *Hub) recipients(applicationID uint) map[*Client]bool {
	out := make(map[*Client]bool)
	for client := range h.subscriptions[AllApplications] {
		out[client] = true
	}
	if applicationID != AllApplications {
		for client := range h.subscriptions[applicationID] {
			out[client] = true
		}
	}
	return out
}

// Register adds a client to the hub. Requests made after Run has returned
// are dropped.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
	}
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Subscribe subscribes a client to one application, or to all of them with
// AllApplications
func (h *Hub) Subscribe(client *Client, applicationID uint) {
	select {
	case h.subscribe <- &subscriptionRequest{client: client, applicationID: applicationID}:
	case <-h.done:
	}
}

// Unsubscribe removes a subscription
func (h *Hub) Unsubscribe(client *Client, applicationID uint) {
	select {
	case h.unsubscribe <- &subscriptionRequest{client: client, applicationID: applicationID}:
	case <-h.done:
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// SubscriberCount returns the number of clients subscribed to applicationID
func (h *Hub) SubscriberCount(applicationID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscriptions[applicationID])
}

// BroadcastApplicationEvent queues an event for subscribers. It never
// blocks; events are dropped when the queue is full.
func (h *Hub) BroadcastApplicationEvent(eventType string, applicationID uint, payload interface{}) {
	id := applicationID
	msg := WSMessage{
		Type:          MessageTypeEvent,
		ApplicationID: &id,
		Event:         eventType,
		Data:          payload,
	}

	data, err := json.Marshal(msg)
	if err != nil {
		if h.logger != nil {
			h.logger.Error("failed to marshal application event", slog.Any("error", err))
		}
		return
	}

	select {
	case h.broadcast <- &broadcastMessage{applicationID: applicationID, message: data}:
	default:
		if h.logger != nil {
			h.logger.Warn("event queue full, dropping application event",
				slog.String("event", eventType),
				slog.Uint64("application_id", uint64(applicationID)))
		}
	}
}

func (h *Hub) debug(msg string, attrs ...any) {
	if h.logger != nil {
		h.logger.Debug(msg, attrs...)
	}
}
