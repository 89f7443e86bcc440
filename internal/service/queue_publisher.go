// Package service publishes domain events to RabbitMQ.  Publishing is
// best-effort: errors are logged and returned so callers can ignore them
// without interrupting the request that triggered the event.
package service

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/iliyamo/lesson-scheduler/internal/queue"
)

// LessonEventPublisher emits lesson change events to the lesson.events
// queue.  A nil publisher is safe to call and publishes nothing.
type LessonEventPublisher struct {
	url    string
	logger *zap.Logger
}

func NewLessonEventPublisher(url string, logger *zap.Logger) *LessonEventPublisher {
	return &LessonEventPublisher{url: url, logger: logger}
}

// Publish marshals the event and delivers it persistently to the durable
// lesson.events queue.  Each call dials its own short-lived connection so
// a broker outage never holds request-path resources.
func (p *LessonEventPublisher) Publish(ctx context.Context, ev queue.LessonEvent) error {
	if p == nil {
		return nil
	}
	conn, err := amqp.Dial(p.url)
	if err != nil {
		p.logger.Warn("rabbitmq: dial failed", zap.Error(err))
		return err
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		p.logger.Warn("rabbitmq: channel open failed", zap.Error(err))
		return err
	}
	defer ch.Close()

	if _, err := ch.QueueDeclare(queue.LessonEventsQueue, true, false, false, false, nil); err != nil {
		p.logger.Warn("rabbitmq: queue declare failed", zap.Error(err))
		return err
	}

	body, err := json.Marshal(ev)
	if err != nil {
		p.logger.Error("rabbitmq: marshal event failed", zap.Error(err))
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", queue.LessonEventsQueue, false, false, pub); err != nil {
		p.logger.Warn("rabbitmq: publish failed", zap.Error(err))
		return err
	}
	return nil
}
