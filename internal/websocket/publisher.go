package websocket

// EventPublisher delivers change events addressed to a user
type EventPublisher interface {
	Publish(userID int32, event Event)
}

var _ EventPublisher = (*Hub)(nil)

// Publish implements EventPublisher by broadcasting to the user's connections
func (h *Hub) Publish(userID int32, event Event) {
	h.Broadcast(userID, event)
}

// NoOpPublisher is a publisher that does nothing (for testing or when feeds are disabled)
type NoOpPublisher struct{}

// Publish does nothing
func (n *NoOpPublisher) Publish(userID int32, event Event) {}

// MultiPublisher fans an event out to several publishers in order
type MultiPublisher []EventPublisher

// Publish forwards the event to every non-nil publisher
func (m MultiPublisher) Publish(userID int32, event Event) {
	for _, p := range m {
		if p != nil {
			p.Publish(userID, event)
		}
	}
}
