package websocket

import (
	"errors"
	"sync"

	"github.com/rs/zerolog/log"
)

// ErrClientClosed is returned when attempting to send to a closed client
var ErrClientClosed = errors.New("client is closed")

// ClientInterface defines the interface that clients must implement
type ClientInterface interface {
	ID() string
	UserID() int32
	Send(data []byte) error
	Close() error
}

// Hub tracks open change-feed connections per user.
// It is safe for concurrent use.
type Hub struct {
	// user ID -> client ID -> client
	clients map[int32]map[string]ClientInterface
	mu      sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		clients: make(map[int32]map[string]ClientInterface),
	}
}

// Register adds a client under its user
func (h *Hub) Register(client ClientInterface) {
	h.mu.Lock()
	defer h.mu.Unlock()

	userID := client.UserID()
	if h.clients[userID] == nil {
		h.clients[userID] = make(map[string]ClientInterface)
	}
	h.clients[userID][client.ID()] = client

	log.Debug().
		Int32("user_id", userID).
		Str("client_id", client.ID()).
		Msg("WebSocket client registered")
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client ClientInterface) {
	h.mu.Lock()
	defer h.mu.Unlock()

	userID := client.UserID()
	userClients, ok := h.clients[userID]
	if !ok {
		return
	}
	if _, exists := userClients[client.ID()]; !exists {
		return
	}

	delete(userClients, client.ID())
	if len(userClients) == 0 {
		delete(h.clients, userID)
	}

	log.Debug().
		Int32("user_id", userID).
		Str("client_id", client.ID()).
		Msg("WebSocket client unregistered")
}

// Broadcast sends an event to every connection of one user
func (h *Hub) Broadcast(userID int32, event Event) {
	data, err := event.ToJSON()
	if err != nil {
		log.Error().
			Err(err).
			Int32("user_id", userID).
			Str("event_type", event.Type).
			Msg("Failed to serialize event")
		return
	}

	targets := h.snapshot(userID)
	if len(targets) == 0 {
		return
	}

	for _, client := range targets {
		go func(c ClientInterface) {
			if err := c.Send(data); err != nil {
				log.Warn().
					Err(err).
					Int32("user_id", userID).
					Str("client_id", c.ID()).
					Msg("Failed to send to client")
			}
		}(client)
	}

	log.Debug().
		Int32("user_id", userID).
		Str("event_type", event.Type).
		Int("client_count", len(targets)).
		Msg("Broadcast event")
}

// snapshot copies a user's clients so sends happen without holding the lock
func (h *Hub) snapshot(userID int32) []ClientInterface {
	h.mu.RLock()
	defer h.mu.RUnlock()

	userClients := h.clients[userID]
	result := make([]ClientInterface, 0, len(userClients))
	for _, client := range userClients {
		result = append(result, client)
	}
	return result
}

// ClientCount returns the number of open connections for a user
func (h *Hub) ClientCount(userID int32) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// TotalClientCount returns the number of open connections across all users
func (h *Hub) TotalClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := 0
	for _, userClients := range h.clients {
		total += len(userClients)
	}
	return total
}

// Shutdown closes every connection and empties the hub
func (h *Hub) Shutdown() {
	h.mu.Lock()
	all := h.clients
	h.clients = make(map[int32]map[string]ClientInterface)
	h.mu.Unlock()

	closed := 0
	for _, userClients := range all {
		for _, client := range userClients {
			if err := client.Close(); err != nil {
				log.Debug().Err(err).Str("client_id", client.ID()).Msg("Error closing client")
			}
			closed++
		}
	}
	log.Info().Int("client_count", closed).Msg("WebSocket hub shut down")
}
