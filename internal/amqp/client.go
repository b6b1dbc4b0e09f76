// Package amqp carries report export requests and record notifications
// between the API and the worker over RabbitMQ.
package amqp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"

	applog "despesas/internal/log"
)

type Client struct {
	conn         *amqp091.Connection
	channel      *amqp091.Channel
	exchangeName string
	queueName    string
	log          *applog.Logger
}

func NewClient(url, exchangeName, queueName string) (*Client, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	client := &Client{
		conn:         conn,
		channel:      channel,
		exchangeName: exchangeName,
		queueName:    queueName,
		log:          applog.ForComponent(applog.ComponentAMQP),
	}

	if err := client.setup(); err != nil {
		client.Close()
		return nil, fmt.Errorf("setup exchange and queue: %w", err)
	}

	return client, nil
}

func (c *Client) setup() error {
	err := c.channel.ExchangeDeclare(
		c.exchangeName, // name
		"direct",       // type
		true,           // durable
		false,          // auto-deleted
		false,          // internal
		false,          // no-wait
		nil,            // arguments
	)
	if err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	_, err = c.channel.QueueDeclare(
		c.queueName, // name
		true,        // durable
		false,       // delete when unused
		false,       // exclusive
		false,       // no-wait
		nil,         // arguments
	)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	err = c.channel.QueueBind(
		c.queueName,    // queue name
		c.queueName,    // routing key (same as queue name for direct exchange)
		c.exchangeName, // exchange
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}

	return nil
}

func (c *Client) publish(ctx context.Context, body []byte) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return c.channel.PublishWithContext(
		ctx,
		c.exchangeName, // exchange
		c.queueName,    // routing key
		false,          // mandatory
		false,          // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
}

// PublishExportRequest queues a spreadsheet export for the worker.
func (c *Client) PublishExportRequest(ctx context.Context, msg ExportRequestMessage) error {
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	body, err := encodeEnvelope(TypeExportRequest, msg)
	if err != nil {
		return err
	}
	if err := c.publish(ctx, body); err != nil {
		return fmt.Errorf("publish export request: %w", err)
	}

	c.log.InfoContext(ctx, "Published export request",
		"user_id", msg.UserID,
		"property", msg.Property,
		"exchange", c.exchangeName,
		"queue", c.queueName)

	return nil
}

// PublishRecordCreated notifies the worker that a record was saved.
func (c *Client) PublishRecordCreated(ctx context.Context, msg RecordCreatedMessage) error {
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	body, err := encodeEnvelope(TypeRecordCreated, msg)
	if err != nil {
		return err
	}
	if err := c.publish(ctx, body); err != nil {
		return fmt.Errorf("publish record created: %w", err)
	}

	c.log.InfoContext(ctx, "Published record created message",
		"id", msg.ID,
		"exchange", c.exchangeName,
		"queue", c.queueName)

	return nil
}

// Handlers dispatches decoded messages by envelope type. A nil handler
// drops that message type with a nack.
type Handlers struct {
	OnExportRequest func(context.Context, *ExportRequestMessage) error
	OnRecordCreated func(context.Context, *RecordCreatedMessage) error
}

// Consume blocks reading the queue until the context is cancelled or the
// delivery channel closes. Handler errors requeue the message; decode
// failures drop it.
func (c *Client) Consume(ctx context.Context, handlers Handlers) error {
	msgs, err := c.channel.Consume(
		c.queueName, // queue
		"",          // consumer
		false,       // auto-ack (we want manual ack)
		false,       // exclusive
		false,       // no-local
		false,       // no-wait
		nil,         // args
	)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	c.log.InfoContext(ctx, "Started consuming messages", "queue", c.queueName)

	for {
		select {
		case <-ctx.Done():
			c.log.InfoContext(ctx, "Stopping message consumption", "reason", ctx.Err())
			return ctx.Err()
		case delivery, ok := <-msgs:
			if !ok {
				return fmt.Errorf("message channel closed")
			}

			env, err := decodeEnvelope(delivery.Body)
			if err != nil {
				c.log.ErrorContext(ctx, "Failed to decode message", "error", err)
				delivery.Nack(false, false) // reject and don't requeue
				continue
			}

			if err := c.dispatch(ctx, env, handlers); err != nil {
				c.log.ErrorContext(ctx, "Failed to handle message",
					"error", err,
					"type", env.Type)
				delivery.Nack(false, true) // reject and requeue
				continue
			}

			delivery.Ack(false)
		}
	}
}

func (c *Client) dispatch(ctx context.Context, env *Envelope, handlers Handlers) error {
	switch env.Type {
	case TypeExportRequest:
		if handlers.OnExportRequest == nil {
			return fmt.Errorf("no handler for %s", env.Type)
		}
		var msg ExportRequestMessage
		if err := json.Unmarshal(env.Payload, &msg); err != nil {
			return fmt.Errorf("unmarshal export request: %w", err)
		}
		return handlers.OnExportRequest(ctx, &msg)
	case TypeRecordCreated:
		if handlers.OnRecordCreated == nil {
			return fmt.Errorf("no handler for %s", env.Type)
		}
		var msg RecordCreatedMessage
		if err := json.Unmarshal(env.Payload, &msg); err != nil {
			return fmt.Errorf("unmarshal record created: %w", err)
		}
		return handlers.OnRecordCreated(ctx, &msg)
	default:
		return fmt.Errorf("unknown message type %q", env.Type)
	}
}

func (c *Client) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
