package websocket

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventType represents the type of event (created, updated, deleted)
type EventType string

const (
	EventTypeCreated EventType = "created"
	EventTypeUpdated EventType = "updated"
	EventTypeDeleted EventType = "deleted"
)

// EntityType represents the type of entity the event is about
type EntityType string

const (
	EntityTypeBudget      EntityType = "budget"
	EntityTypeTransaction EntityType = "transaction"
	EntityTypeCategory    EntityType = "category"
)

// Event represents a change notification sent to a user's clients
// Format: { type, entity, payload, timestamp }
type Event struct {
	Type      string      `json:"type"`      // e.g. "budget.created"
	Entity    EntityType  `json:"entity"`
	Payload   interface{} `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}

// NewEvent creates a new event with the given type, entity, and payload
func NewEvent(eventType EventType, entityType EntityType, payload interface{}) Event {
	return Event{
		Type:      fmt.Sprintf("%s.%s", entityType, eventType),
		Entity:    entityType,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON serializes the event to JSON bytes
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// BudgetCreated creates a budget.created event
func BudgetCreated(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypeBudget, payload)
}

// BudgetUpdated creates a budget.updated event
func BudgetUpdated(payload interface{}) Event {
	return NewEvent(EventTypeUpdated, EntityTypeBudget, payload)
}

// BudgetDeleted creates a budget.deleted event
func BudgetDeleted(payload interface{}) Event {
	return NewEvent(EventTypeDeleted, EntityTypeBudget, payload)
}

// TransactionCreated creates a transaction.created event
func TransactionCreated(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypeTransaction, payload)
}

// TransactionUpdated creates a transaction.updated event
func TransactionUpdated(payload interface{}) Event {
	return NewEvent(EventTypeUpdated, EntityTypeTransaction, payload)
}

// TransactionDeleted creates a transaction.deleted event
func TransactionDeleted(payload interface{}) Event {
	return NewEvent(EventTypeDeleted, EntityTypeTransaction, payload)
}

// CategoryCreated creates a category.created event
func CategoryCreated(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypeCategory, payload)
}

// CategoryDeleted creates a category.deleted event
func CategoryDeleted(payload interface{}) Event {
	return NewEvent(EventTypeDeleted, EntityTypeCategory, payload)
}
