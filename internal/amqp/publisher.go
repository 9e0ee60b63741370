package amqp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/budgetly/budgetly-backend/internal/websocket"
	"github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"
)

const publishTimeout = 5 * time.Second

// channel is the subset of *amqp091.Channel used for publishing
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Close() error
}

// Message is the body published for every change event
type Message struct {
	UserID int32           `json:"userId"`
	Event  websocket.Event `json:"event"`
}

// Publisher forwards change events to a direct exchange, routed by entity
// (budget, transaction, category). It satisfies websocket.EventPublisher.
type Publisher struct {
	conn     *amqp091.Connection
	channel  channel
	exchange string
}

var _ websocket.EventPublisher = (*Publisher)(nil)

// NewPublisher dials url and declares a durable direct exchange
func NewPublisher(url, exchange string) (*Publisher, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		exchange,
		"direct",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	log.Info().Str("exchange", exchange).Msg("AMQP event publisher ready")
	return &Publisher{conn: conn, channel: ch, exchange: exchange}, nil
}

func newPublisherWithChannel(ch channel, exchange string) *Publisher {
	return &Publisher{channel: ch, exchange: exchange}
}

// Publish sends the event and logs failures; delivery never fails the caller
func (p *Publisher) Publish(userID int32, event websocket.Event) {
	if err := p.PublishEvent(context.Background(), userID, event); err != nil {
		log.Warn().
			Err(err).
			Int32("user_id", userID).
			Str("event_type", event.Type).
			Msg("Failed to publish event to AMQP")
	}
}

// PublishEvent sends one persistent JSON message with routing key = event entity
func (p *Publisher) PublishEvent(ctx context.Context, userID int32, event websocket.Event) error {
	body, err := json.Marshal(Message{UserID: userID, Event: event})
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = p.channel.PublishWithContext(
		ctx,
		p.exchange,
		string(event.Entity),
		false, // mandatory
		false, // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    event.Timestamp,
			Type:         event.Type,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}

	log.Debug().
		Int32("user_id", userID).
		Str("event_type", event.Type).
		Str("exchange", p.exchange).
		Msg("Published event to AMQP")
	return nil
}

// Close closes the channel and connection
func (p *Publisher) Close() error {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
