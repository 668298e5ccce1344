package rabbitmq

import (
	"fmt"

	"github.com/streadway/amqp"
)

// RabbitMQService owns the connection and channel used for publishing and
// consuming order lifecycle events.
type RabbitMQService struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
}

// NewRabbitMQService connects to the broker and declares the topic exchange,
// one durable queue per event topic and a dead-letter exchange/queue pair.
func NewRabbitMQService(host, exchange, queueName string, topics []string) (*RabbitMQService, error) {
	conn, err := amqp.Dial(host)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		exchange,
		"topic",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to declare an exchange: %w", err)
	}

	// dead-letter exchange
	dlxName := exchange + ".dlx"
	err = ch.ExchangeDeclare(
		dlxName,
		"fanout",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to declare a dead-letter exchange: %w", err)
	}

	dlqName := queueName + ".dlq"
	if _, err = ch.QueueDeclare(dlqName, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("failed to declare a dead-letter queue: %w", err)
	}
	if err = ch.QueueBind(dlqName, "", dlxName, false, nil); err != nil {
		return nil, fmt.Errorf("failed to bind dead-letter queue: %w", err)
	}

	args := amqp.Table{
		"x-dead-letter-exchange": dlxName,
	}
	if _, err = ch.QueueDeclare(queueName, true, false, false, false, args); err != nil {
		return nil, fmt.Errorf("failed to declare a queue: %w", err)
	}

	// One queue per event topic, each with its own DLQ bound on the exchange
	// so failed deliveries can be journaled and replayed.
	for _, topic := range topics {
		if _, err = ch.QueueDeclare(topic, true, false, false, false, args); err != nil {
			return nil, fmt.Errorf("failed to declare event queue %s: %w", topic, err)
		}
		if err = ch.QueueBind(topic, topic, exchange, false, nil); err != nil {
			return nil, fmt.Errorf("failed to bind event queue %s: %w", topic, err)
		}

		topicDLQ := topic + ".dlq"
		if _, err = ch.QueueDeclare(topicDLQ, true, false, false, false, nil); err != nil {
			return nil, fmt.Errorf("failed to declare DLQ %s: %w", topicDLQ, err)
		}
		if err = ch.QueueBind(topicDLQ, topicDLQ, exchange, false, nil); err != nil {
			return nil, fmt.Errorf("failed to bind DLQ %s: %w", topicDLQ, err)
		}
	}

	return &RabbitMQService{
		conn:     conn,
		channel:  ch,
		exchange: exchange,
	}, nil
}

// Publish sends a persistent message to a topic on the exchange.
func (s *RabbitMQService) Publish(topic string, body []byte) error {
	if topic == "" {
		return fmt.Errorf("topic cannot be empty")
	}
	if body == nil {
		return fmt.Errorf("message body cannot be nil")
	}

	if s.conn.IsClosed() {
		return fmt.Errorf("connection to RabbitMQ is closed")
	}
	if s.channel == nil {
		return fmt.Errorf("channel is not initialized")
	}

	err := s.channel.Publish(
		s.exchange,
		topic, // routing key
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			MessageId:    fmt.Sprintf("%s_%d", topic, len(body)),
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish message to topic '%s': %w", topic, err)
	}

	return nil
}

// Consume starts consuming messages from a queue.
func (s *RabbitMQService) Consume(queueName string) (<-chan amqp.Delivery, error) {
	if s.conn.IsClosed() {
		return nil, fmt.Errorf("connection is closed")
	}

	msgs, err := s.channel.Consume(
		queueName, // queue
		"",        // consumer
		false,     // auto-ack
		false,     // exclusive
		false,     // no-local
		false,     // no-wait
		nil,       // args
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start consuming queue: %w", err)
	}
	return msgs, nil
}

// IsHealthy checks if the RabbitMQ connection is healthy.
func (s *RabbitMQService) IsHealthy() bool {
	return !s.conn.IsClosed() && s.channel != nil
}

// Close closes the channel and connection to RabbitMQ.
func (s *RabbitMQService) Close() {
	s.channel.Close()
	s.conn.Close()
}
