package event

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/climate-dashboard-api/internal/models"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// channel is the subset of *amqp.Channel the publisher needs
type channel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// AuditEvent is the message body published for every audit entry
type AuditEvent struct {
	Entry       *models.AuditEntry `json:"entry"`
	PublishedAt time.Time          `json:"published_at"`
}

// AuditPublisher forwards committed audit entries to a durable queue
type AuditPublisher struct {
	ch    channel
	queue string
	log   zerolog.Logger

	declared  atomic.Bool
	published atomic.Int64
	failed    atomic.Int64
}

// NewAuditPublisher creates a publisher on an open connection
func NewAuditPublisher(conn *Connection, queue string, log zerolog.Logger) *AuditPublisher {
	return newAuditPublisher(conn.Channel, queue, log)
}

func newAuditPublisher(ch channel, queue string, log zerolog.Logger) *AuditPublisher {
	return &AuditPublisher{
		ch:    ch,
		queue: queue,
		log:   log.With().Str("component", "audit_publisher").Logger(),
	}
}

// Publish sends entry as a persistent JSON message
func (p *AuditPublisher) Publish(ctx context.Context, entry *models.AuditEntry) error {
	if !p.declared.Load() {
		_, err := p.ch.QueueDeclare(
			p.queue, // name
			true,    // durable
			false,   // delete when unused
			false,   // exclusive
			false,   // no-wait
			nil,     // arguments
		)
		if err != nil {
			p.failed.Add(1)
			return fmt.Errorf("failed to declare queue: %w", err)
		}
		p.declared.Store(true)
	}

	now := time.Now().UTC()
	body, err := json.Marshal(AuditEvent{Entry: entry, PublishedAt: now})
	if err != nil {
		p.failed.Add(1)
		return fmt.Errorf("failed to marshal audit event: %w", err)
	}

	err = p.ch.PublishWithContext(
		ctx,
		"",      // exchange
		p.queue, // routing key
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			MessageId:    entry.ID,
			Type:         entry.Action,
			Body:         body,
			Timestamp:    now,
		},
	)
	if err != nil {
		p.failed.Add(1)
		return fmt.Errorf("failed to publish audit event: %w", err)
	}

	p.published.Add(1)
	p.log.Debug().
		Str("action", entry.Action).
		Str("target_id", entry.TargetID).
		Msg("Audit event published")

	return nil
}

// Stats returns the number of published and failed messages
func (p *AuditPublisher) Stats() (published, failed int64) {
	return p.published.Load(), p.failed.Load()
}
