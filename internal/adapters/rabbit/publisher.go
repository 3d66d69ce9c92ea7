package rabbit

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/tableq/tableq/internal/notify"
)

const exchange = "tableq.events"

type Publisher struct {
	ch *amqp.Channel
}

func NewPublisher(conn *amqp.Connection) (*Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}
	err = ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil)
	if err != nil {
		return nil, err
	}
	return &Publisher{ch: ch}, nil
}

// Notify publishes a notification intent with the intent kind as the routing
// key. Delivery is at-most-best-effort; the engine treats any error here as
// non-fatal.
func (p *Publisher) Notify(ctx context.Context, intent notify.Intent) error {
	body, err := json.Marshal(intent)
	if err != nil {
		return err
	}
	msg := amqp.Publishing{
		MessageId:   uuid.New().String(),
		ContentType: "application/json",
		Body:        body,
	}
	return p.ch.PublishWithContext(ctx, exchange, string(intent.Kind), false, false, msg)
}
