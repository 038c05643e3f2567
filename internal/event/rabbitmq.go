// Package event publishes audit events to RabbitMQ
package event

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// Connection holds the RabbitMQ connection and channel
type Connection struct {
	Connection *amqp.Connection
	Channel    *amqp.Channel
	log        zerolog.Logger
}

// Connect dials the broker at url and opens a channel
func Connect(url string, log zerolog.Logger) (*Connection, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	log.Info().Msg("Connected to RabbitMQ")

	return &Connection{
		Connection: conn,
		Channel:    ch,
		log:        log,
	}, nil
}

// Close closes the channel and the connection
func (c *Connection) Close() error {
	if c.Channel != nil {
		if err := c.Channel.Close(); err != nil {
			c.log.Error().Err(err).Msg("Failed to close RabbitMQ channel")
		}
	}
	if c.Connection != nil {
		if err := c.Connection.Close(); err != nil {
			c.log.Error().Err(err).Msg("Failed to close RabbitMQ connection")
			return err
		}
	}
	c.log.Info().Msg("RabbitMQ connection closed")
	return nil
}
