package rabbit

import (
	"context"

	amqp "github.com/rabbitmq/amqp091-go"
)

const notificationsQueue = "notifications.q"

type Consumer struct {
	ch    *amqp.Channel
	queue string
}

// NewConsumer declares the notifications queue and binds it to all queue.*
// events on the tableq exchange.
func NewConsumer(conn *amqp.Connection) (*Consumer, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}
	err = ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil)
	if err != nil {
		return nil, err
	}
	_, err = ch.QueueDeclare(notificationsQueue, true, false, false, false, nil)
	if err != nil {
		return nil, err
	}
	if err := ch.QueueBind(notificationsQueue, "queue.*", exchange, false, nil); err != nil {
		return nil, err
	}
	return &Consumer{ch: ch, queue: notificationsQueue}, nil
}

func (c *Consumer) Consume(ctx context.Context) (<-chan amqp.Delivery, error) {
	return c.ch.Consume(c.queue, "", false, false, false, false, nil)
}
