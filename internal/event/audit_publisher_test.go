package event

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/climate-dashboard-api/internal/models"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChannel struct {
	declares   int
	declareErr error
	publishErr error
	keys       []string
	messages   []amqp.Publishing
}

func (f *fakeChannel) QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error) {
	f.declares++
	return amqp.Queue{Name: name}, f.declareErr
}

func (f *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.keys = append(f.keys, key)
	f.messages = append(f.messages, msg)
	return nil
}

func TestPublish_SendsPersistentJSON(t *testing.T) {
	ch := &fakeChannel{}
	p := newAuditPublisher(ch, "climate.audit", zerolog.Nop())

	entry := &models.AuditEntry{ID: "e1", Action: models.AuditActionRoleChange, TargetID: "u1", OldValue: "viewer", NewValue: "analyst", Success: true}
	require.NoError(t, p.Publish(context.Background(), entry))
	require.NoError(t, p.Publish(context.Background(), entry))

	assert.Equal(t, 1, ch.declares, "queue is declared once")
	require.Len(t, ch.messages, 2)
	assert.Equal(t, []string{"climate.audit", "climate.audit"}, ch.keys)

	msg := ch.messages[0]
	assert.Equal(t, amqp.Persistent, msg.DeliveryMode)
	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, models.AuditActionRoleChange, msg.Type)

	var decoded AuditEvent
	require.NoError(t, json.Unmarshal(msg.Body, &decoded))
	assert.Equal(t, "analyst", decoded.Entry.NewValue)

	published, failed := p.Stats()
	assert.Equal(t, int64(2), published)
	assert.Equal(t, int64(0), failed)
}

func TestPublish_Failures(t *testing.T) {
	ch := &fakeChannel{declareErr: errors.New("channel closed")}
	p := newAuditPublisher(ch, "q", zerolog.Nop())

	err := p.Publish(context.Background(), &models.AuditEntry{ID: "e1"})
	assert.ErrorContains(t, err, "declare")

	ch.declareErr = nil
	ch.publishErr = errors.New("broker gone")
	err = p.Publish(context.Background(), &models.AuditEntry{ID: "e2"})
	assert.ErrorContains(t, err, "publish")

	_, failed := p.Stats()
	assert.Equal(t, int64(2), failed)
}
