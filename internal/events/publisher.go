// Package events publishes user lifecycle events to a Redis stream.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"

	"github.com/usersvc/usersvc/internal/metrics"
	"github.com/usersvc/usersvc/internal/model"
)

const (
	// StreamKey is the Redis stream for user events.
	StreamKey = "stream:user_events"

	// MaxStreamLen is the approximate max length of the stream.
	MaxStreamLen = 100000

	// PublishTimeout is the max time to wait for Redis publish.
	PublishTimeout = 500 * time.Millisecond
)

// Publisher appends user events to the Redis stream.
type Publisher struct {
	redis   *redis.Client
	logger  *slog.Logger
	metrics metrics.Recorder
	wg      sync.WaitGroup
}

// NewPublisher creates a new user event publisher.
func NewPublisher(client *redis.Client, logger *slog.Logger, recorder metrics.Recorder) *Publisher {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &Publisher{
		redis:   client,
		logger:  logger.With("component", "events.publisher"),
		metrics: recorder,
	}
}

// NewUserCreatedEvent builds a user.created event with a fresh ULID.
func NewUserCreatedEvent(user *model.User, occurredAt time.Time) model.UserEvent {
	return model.UserEvent{
		EventID:    ulid.Make().String(),
		EventType:  model.EventTypeUserCreated,
		OccurredAt: occurredAt.UTC(),
		User: model.EventUser{
			ID:       user.ID,
			Username: user.Username,
			Email:    user.Email,
		},
	}
}

// Publish adds an event to the stream synchronously and returns its stream ID.
func (p *Publisher) Publish(ctx context.Context, event model.UserEvent) (string, error) {
	if !model.IsValidEventType(event.EventType) {
		return "", fmt.Errorf("invalid event type %q", event.EventType)
	}

	data, err := json.Marshal(event)
	if err != nil {
		return "", fmt.Errorf("marshal event: %w", err)
	}

	result, err := p.redis.XAdd(ctx, &redis.XAddArgs{
		Stream: StreamKey,
		MaxLen: MaxStreamLen,
		Approx: true,
		ID:     "*",
		Values: map[string]interface{}{
			"event_id":   event.EventID,
			"event_type": string(event.EventType),
			"payload":    string(data),
		},
	}).Result()
	if err != nil {
		return "", fmt.Errorf("xadd: %w", err)
	}

	return result, nil
}

// PublishUserCreated publishes a user.created event without blocking the caller.
// Errors are logged and counted, never returned.
func (p *Publisher) PublishUserCreated(user *model.User) {
	event := NewUserCreatedEvent(user, time.Now())

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), PublishTimeout)
		defer cancel()

		streamID, err := p.Publish(ctx, event)
		if err != nil {
			p.logger.Warn("failed to publish user event",
				"event_id", event.EventID,
				"user_id", user.ID,
				"error", err,
			)
			p.metrics.IncEventPublished(metrics.PublishDropped)
			return
		}

		p.logger.Debug("user event published",
			"event_id", event.EventID,
			"user_id", user.ID,
			"stream_id", streamID,
		)
		p.metrics.IncEventPublished(metrics.PublishSuccess)
	}()
}

// Close waits for in-flight publishes or until ctx is done.
func (p *Publisher) Close(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("wait for pending events: %w", ctx.Err())
	}
}
