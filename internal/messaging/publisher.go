// Package messaging publishes episode delivery events to RabbitMQ so
// downstream consumers (push notifications, analytics) learn about new
// episodes without coupling to the generation flow.
package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// EpisodeDeliveredEvent is the payload published after every successful
// episode generation.
type EpisodeDeliveredEvent struct {
	EventType     string    `json:"eventType"`
	ArcID         uuid.UUID `json:"arcId"`
	UserID        uuid.UUID `json:"userId"`
	EpisodeID     uuid.UUID `json:"episodeId"`
	EpisodeNumber int       `json:"episodeNumber"`
	Title         string    `json:"title"`
	ArcCompleted  bool      `json:"arcCompleted"`
	DeliveredAt   time.Time `json:"deliveredAt"`
}

const eventTypeEpisodeDelivered = "episode.delivered"

// EpisodeEventPublisher publishes episode lifecycle events.
type EpisodeEventPublisher interface {
	PublishEpisodeDelivered(ctx context.Context, event EpisodeDeliveredEvent) error
}

// Compile-time check to ensure rabbitMQPublisher implements the interface
var _ EpisodeEventPublisher = (*rabbitMQPublisher)(nil)

type rabbitMQPublisher struct {
	channel   *amqp.Channel
	queueName string
	logger    *zap.Logger
}

// NewRabbitMQPublisher opens a channel on conn and declares the event
// queue. Queue parameters must match the consumer's declaration.
func NewRabbitMQPublisher(conn *amqp.Connection, queueName string, logger *zap.Logger) (EpisodeEventPublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("episode event publisher: failed to open channel: %w", err)
	}

	_, err = ch.QueueDeclare(
		queueName, // name
		true,      // durable
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	)
	if err != nil {
		ch.Close()
		return nil, fmt.Errorf("episode event publisher: failed to declare queue '%s': %w", queueName, err)
	}

	return &rabbitMQPublisher{
		channel:   ch,
		queueName: queueName,
		logger:    logger.Named("EpisodeEventPublisher"),
	}, nil
}

func (p *rabbitMQPublisher) PublishEpisodeDelivered(ctx context.Context, event EpisodeDeliveredEvent) error {
	event.EventType = eventTypeEpisodeDelivered

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal episode delivered event: %w", err)
	}

	if err := p.publishMessage(ctx, body); err != nil {
		p.logger.Error("Failed to publish episode delivered event",
			zap.String("arc_id", event.ArcID.String()),
			zap.Int("episode_number", event.EpisodeNumber),
			zap.Error(err))
		return fmt.Errorf("failed to publish episode delivered event: %w", err)
	}

	p.logger.Debug("Episode delivered event published",
		zap.String("arc_id", event.ArcID.String()),
		zap.Int("episode_number", event.EpisodeNumber))
	return nil
}

func (p *rabbitMQPublisher) publishMessage(ctx context.Context, body []byte) error {
	if p.channel == nil {
		return errors.New("rabbitmq channel is not initialized")
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var err error
	for attempt := 1; attempt <= 3; attempt++ {
		err = p.channel.PublishWithContext(ctx,
			"",          // exchange (default)
			p.queueName, // routing key
			false,       // mandatory
			false,       // immediate
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent,
				Body:         body,
				Timestamp:    time.Now(),
				AppId:        "saga-server",
			},
		)
		if err == nil {
			return nil
		}
		p.logger.Warn("Publish attempt failed",
			zap.Int("attempt", attempt),
			zap.String("queue", p.queueName),
			zap.Error(err))
		time.Sleep(time.Duration(attempt) * 100 * time.Millisecond)
	}
	return fmt.Errorf("failed to publish to queue %s after retries: %w", p.queueName, err)
}
