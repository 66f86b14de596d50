package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"

	"github.com/rs/zerolog"
	"github.com/streadway/amqp"

	"github.com/fooddelivery/delivery-platform/internal/api/metrics"
	"github.com/fooddelivery/delivery-platform/internal/core/domain"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// AMQPChannel is the slice of amqp.Channel the publisher needs.
type AMQPChannel interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type message struct {
	topic string
	body  []byte
}

// Publisher dispatches notification events to RabbitMQ queues named after
// their topics. Publish is fire-and-forget: events are handed to a fixed set
// of workers through buffered channels; delivery failures are logged and
// never surface to the originating request.
type Publisher struct {
	workers []chan message
	channel AMQPChannel
	log     zerolog.Logger
}

// NewPublisher creates a Publisher with numWorkers workers. If
// numWorkers <= 0, defaultWorkers is used.
func NewPublisher(numWorkers int, channel AMQPChannel, log zerolog.Logger) *Publisher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	p := &Publisher{
		workers: make([]chan message, numWorkers),
		channel: channel,
		log:     log,
	}
	for i := range p.workers {
		p.workers[i] = make(chan message, channelBuffer)
	}
	return p
}

// Start launches the worker goroutines. Workers stop when ctx is cancelled.
func (p *Publisher) Start(ctx context.Context) {
	for i, ch := range p.workers {
		go p.runWorker(ctx, i, ch)
	}
}

// Publish serializes the event and enqueues it for delivery. It never
// blocks: when the responsible worker's buffer is full the event is dropped
// and the loss is logged.
func (p *Publisher) Publish(topic string, event any) {
	body, err := json.Marshal(event)
	if err != nil {
		p.log.Error().Err(err).Str("topic", topic).Msg("failed to serialize event")
		metrics.EventsDroppedTotal.WithLabelValues(topic).Inc()
		return
	}

	select {
	case p.workers[p.shardIndex(topic)] <- message{topic: topic, body: body}:
	default:
		p.log.Warn().Str("topic", topic).Msg("event buffer full, dropping event")
		metrics.EventsDroppedTotal.WithLabelValues(topic).Inc()
	}
}

// shardIndex keeps all events of a topic on one worker, preserving
// per-topic ordering.
func (p *Publisher) shardIndex(topic string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(topic))
	return int(h.Sum32()) % len(p.workers)
}

func (p *Publisher) runWorker(ctx context.Context, id int, ch <-chan message) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if err := p.channel.Publish("", msg.topic, false, false, amqp.Publishing{
				ContentType:  "application/json",
				Body:         msg.body,
				DeliveryMode: amqp.Persistent,
			}); err != nil {
				p.log.Error().Err(err).
					Str("topic", msg.topic).
					Int("worker_id", id).
					Msg("event publish failed")
				metrics.EventsDroppedTotal.WithLabelValues(msg.topic).Inc()
				continue
			}
			metrics.EventsPublishedTotal.WithLabelValues(msg.topic).Inc()
		}
	}
}

// Connect dials RabbitMQ and declares one durable queue per notification
// topic so publishes on the default exchange route by queue name.
func Connect(url string) (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, fmt.Errorf("amqp dial: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("amqp channel: %w", err)
	}

	topics := []string{
		domain.TopicUserRegistration,
		domain.TopicAdminUserRegistration,
		domain.TopicPasswordReset,
		domain.TopicProfileUpdate,
	}
	for _, topic := range topics {
		if _, err := channel.QueueDeclare(topic, true, false, false, false, nil); err != nil {
			_ = channel.Close()
			_ = conn.Close()
			return nil, nil, fmt.Errorf("declare queue %s: %w", topic, err)
		}
	}

	return conn, channel, nil
}
