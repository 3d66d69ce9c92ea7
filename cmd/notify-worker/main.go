// The notify worker drains notification intents published by the API and
// delivers them as email. Delivery failures are acked and logged: the
// contract is at-most-best-effort, a broken mailbox must never wedge the
// queue.
package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/tableq/tableq/internal/adapters/rabbit"
	"github.com/tableq/tableq/internal/config"
	"github.com/tableq/tableq/internal/notify"
	"github.com/tableq/tableq/internal/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := observability.NewLogger()

	conn, err := amqp.Dial(cfg.RabbitURL)
	if err != nil {
		log.Fatalf("failed to connect to rabbitmq: %v", err)
	}
	defer conn.Close()

	consumer, err := rabbit.NewConsumer(conn)
	if err != nil {
		log.Fatalf("failed to create consumer: %v", err)
	}

	mailer := notify.NewMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom)
	worker := NewWorker(consumer, mailer, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := worker.Run(ctx); err != nil {
			logger.Error("worker stopped", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logger.Info("Shutdown notify worker")
}

type Worker struct {
	consumer *rabbit.Consumer
	mailer   *notify.Mailer
	logger   observability.Logger
}

func NewWorker(consumer *rabbit.Consumer, mailer *notify.Mailer, logger observability.Logger) *Worker {
	return &Worker{consumer: consumer, mailer: mailer, logger: logger}
}

func (w *Worker) Run(ctx context.Context) error {
	deliveries, err := w.consumer.Consume(ctx)
	if err != nil {
		return err
	}
	w.logger.Info("Notify worker started")

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return nil
			}
			w.handle(d)
		}
	}
}

func (w *Worker) handle(d amqp.Delivery) {
	defer d.Ack(false)

	var intent notify.Intent
	if err := json.Unmarshal(d.Body, &intent); err != nil {
		w.logger.Error("failed to decode notification intent", err)
		return
	}
	if intent.Contact == "" {
		return
	}

	if err := w.mailer.Send(intent); err != nil {
		w.logger.WithField("kind", string(intent.Kind)).Error("failed to send email", err)
	}
}
