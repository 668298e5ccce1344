package infrastructure

import (
	"context"
	"fmt"
	"go-commerce-api/src/infrastructure/log"
	"go-commerce-api/src/infrastructure/rabbitmq"
	"sync"
	"time"
)

// EventHandler processes a single message body consumed from a queue.
type EventHandler interface {
	Handle(ctx context.Context, msgBody []byte)
}

// EventListener consumes the queue that matches each registered topic and
// dispatches deliveries to the handler registered for it.
type EventListener struct {
	rabbitMQService *rabbitmq.RabbitMQService
	logger          log.Logger
	handlers        map[string]EventHandler
}

func NewEventListener(rabbit *rabbitmq.RabbitMQService, logger log.Logger) *EventListener {
	return &EventListener{
		rabbitMQService: rabbit,
		logger:          logger,
		handlers:        make(map[string]EventHandler),
	}
}

// RegisterHandler registers an event handler for a specific topic. The queue
// name is expected to match the topic.
func (el *EventListener) RegisterHandler(topic string, handler EventHandler) {
	el.handlers[topic] = handler
}

// StartListening starts one consumer goroutine per registered handler and
// blocks until they all stop.
func (el *EventListener) StartListening(ctx context.Context) error {
	var wg sync.WaitGroup

	for topic, handler := range el.handlers {
		wg.Add(1)
		go func(topic string, h EventHandler) {
			defer wg.Done()
			el.listenToQueue(ctx, topic, h)
		}(topic, handler)
	}

	wg.Wait()
	return nil
}

func (el *EventListener) listenToQueue(ctx context.Context, queueName string, handler EventHandler) {
	maxRetries := 5
	retryDelay := time.Second * 2

	el.logger.Info(ctx, "Starting to listen for events on queue: "+queueName)

	for attempt := 1; attempt <= maxRetries; attempt++ {
		msgs, err := el.rabbitMQService.Consume(queueName)
		if err != nil {
			el.logger.Exception(ctx, fmt.Sprintf("Failed to start consuming queue: %s (attempt %d/%d)", queueName, attempt, maxRetries), err)

			if attempt == maxRetries {
				el.logger.Exception(ctx, "Max retries reached for queue: "+queueName+", giving up", err)
				return
			}

			time.Sleep(retryDelay)
			retryDelay *= 2
			continue
		}

		el.logger.Info(ctx, "Successfully started consuming queue: "+queueName)

	consume:
		for {
			select {
			case <-ctx.Done():
				el.logger.Info(ctx, "Stopping event listener for queue: "+queueName)
				return
			case msg, ok := <-msgs:
				if !ok {
					el.logger.Warn(ctx, "Message channel closed for queue: "+queueName+", attempting to reconnect...")
					break consume
				}
				// Handle in a separate goroutine so a slow handler does not
				// block the delivery channel.
				go func() {
					handler.Handle(ctx, msg.Body)
					msg.Ack(false)
				}()
			}
		}
	}
}
