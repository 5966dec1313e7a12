package ws

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/google/uuid"
)

// Event types pushed to dashboard clients.
const (
	EventOrderCreated       = "order.created"
	EventOrderStatusUpdated = "order.status_updated"
)

// Event represents a WebSocket message to be broadcast
type Event struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// branchEvent routes an event to a single branch room
type branchEvent struct {
	BranchID uuid.UUID
	Event    Event
}

// Hub keeps one room of dashboard clients per branch and fans order events
// out to the room of the branch the order belongs to.
type Hub struct {
	// Registered clients by branch ID
	rooms map[uuid.UUID]map[*Client]bool

	register   chan *Client
	unregister chan *Client

	// Outbound messages to broadcast
	broadcast chan *branchEvent

	// Closed when Run returns
	done chan struct{}

	mu sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[uuid.UUID]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *branchEvent, 256),
		done:       make(chan struct{}),
	}
}

// Run starts the hub's main loop and returns when ctx is cancelled.
// This should be called as a goroutine: go hub.Run(ctx)
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.closeAll()
			return

		case client := <-h.register:
			h.mu.Lock()
			if h.rooms[client.branchID] == nil {
				h.rooms[client.branchID] = make(map[*Client]bool)
			}
			h.rooms[client.branchID][client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			h.removeLocked(client)
			h.mu.Unlock()

		case event := <-h.broadcast:
			message, err := json.Marshal(event.Event)
			if err != nil {
				log.Printf("ERROR: marshal ws event: %v", err)
				continue
			}

			h.mu.Lock()
			for client := range h.rooms[event.BranchID] {
				select {
				case client.send <- message:
				default:
					// Slow consumer: drop it rather than stall the room
					h.removeLocked(client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// removeLocked drops a client and its empty room. Caller holds h.mu.
func (h *Hub) removeLocked(client *Client) {
	clients, ok := h.rooms[client.branchID]
	if !ok {
		return
	}
	if _, exists := clients[client]; !exists {
		return
	}
	delete(clients, client)
	close(client.send)
	if len(clients) == 0 {
		delete(h.rooms, client.branchID)
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, clients := range h.rooms {
		for client := range clients {
			h.removeLocked(client)
		}
	}
}

// BroadcastToBranch queues an event for every client watching branchID.
// The event is dropped when the queue is full so request handlers never block
// on the live feed.
func (h *Hub) BroadcastToBranch(branchID uuid.UUID, event Event) {
	select {
	case h.broadcast <- &branchEvent{BranchID: branchID, Event: event}:
	default:
		log.Printf("WARN: ws broadcast queue full, dropping %s for branch %s", event.Type, branchID)
	}
}

// Publish marshals payload and broadcasts it as an event of the given type.
func (h *Hub) Publish(branchID uuid.UUID, eventType string, payload interface{}) {
	raw, err := json.Marshal(payload)
	if err != nil {
		log.Printf("ERROR: marshal %s payload: %v", eventType, err)
		return
	}
	h.BroadcastToBranch(branchID, Event{Type: eventType, Payload: raw})
}
