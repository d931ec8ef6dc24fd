package events

import (
	"context"
	"encoding/json"
	"server/config"
	"server/internal/database"
	"server/internal/logger"
	"sync"
	"time"

	"github.com/valkey-io/valkey-go"
)

// Channels published by the application lifecycle.
const (
	ChannelApplications = "applications"
	ChannelLinks        = "completion-links"
	ChannelProviders    = "providers"
)

type Event struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Channel   string         `json:"channel,omitempty"`
	UserID    string         `json:"userId,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// EventBus publishes lifecycle events over the Events cache database so
// out-of-process collaborators (mailer, admin UI) can react to them.
type EventBus struct {
	client database.CacheClient
	config config.Config
	log    logger.Logger

	mu      sync.Mutex
	cancels []context.CancelFunc
}

func New(client database.CacheClient, config config.Config) *EventBus {
	return &EventBus{
		client: client,
		config: config,
		log:    logger.New("events"),
	}
}

func (b *EventBus) Publish(channel string, event Event) error {
	log := b.log.Function("Publish")

	payload, err := json.Marshal(event)
	if err != nil {
		return log.Err("failed to marshal event", err, "event", event)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := b.client.Do(ctx, b.client.B().Publish().Channel(channel).Message(string(payload)).Build()).Error(); err != nil {
		return log.Err("failed to publish event", err, "channel", channel)
	}

	return nil
}

// Subscribe delivers events on channel to handler until the bus is closed.
func (b *EventBus) Subscribe(channel string, handler func(Event)) {
	log := b.log.Function("Subscribe")

	ctx, cancel := context.WithCancel(context.Background())
	b.mu.Lock()
	b.cancels = append(b.cancels, cancel)
	b.mu.Unlock()

	go func() {
		err := b.client.Receive(ctx, b.client.B().Subscribe().Channel(channel).Build(),
			func(msg valkey.PubSubMessage) {
				var event Event
				if err := json.Unmarshal([]byte(msg.Message), &event); err != nil {
					log.Er("failed to unmarshal event", err, "channel", channel)
					return
				}
				handler(event)
			})
		if err != nil && ctx.Err() == nil {
			log.Er("subscription terminated", err, "channel", channel)
		}
	}()
}

func (b *EventBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, cancel := range b.cancels {
		cancel()
	}
	b.cancels = nil

	return nil
}
