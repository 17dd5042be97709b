package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/apexlens/backoffice/internal/config"
)

// Bus publishes and subscribes to job events on one Redis channel.
type Bus struct {
	rdb     *goredis.Client
	channel string
	log     *slog.Logger
}

// NewBus connects to Redis and verifies the connection with a ping.
func NewBus(cfg config.RedisConfig, logger *slog.Logger) (*Bus, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("realtime: redis ping: %w", err)
	}

	return &Bus{
		rdb:     rdb,
		channel: cfg.Channel,
		log:     logger.With("component", "realtime"),
	}, nil
}

// Publish sends one event to every subscriber. Publishing is best-effort
// from the caller's point of view; a failure is an error, not a panic.
func (b *Bus) Publish(ctx context.Context, ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("realtime: encode event: %w", err)
	}

	if err := b.rdb.Publish(ctx, b.channel, data).Err(); err != nil {
		return fmt.Errorf("realtime: publish: %w", err)
	}

	b.log.DebugContext(ctx, "event published",
		slog.String("type", string(ev.Type)), slog.String("table", ev.Table))
	return nil
}

// Subscribe returns a channel of decoded events. The channel closes when
// ctx is cancelled or the subscription drops. Undecodable payloads are
// logged and skipped.
func (b *Bus) Subscribe(ctx context.Context) <-chan Event {
	sub := b.rdb.Subscribe(ctx, b.channel)
	out := make(chan Event)

	go func() {
		defer close(out)
		defer sub.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-sub.Channel():
				if !ok {
					return
				}
				var ev Event
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					b.log.Warn("dropping undecodable event", slog.String("error", err.Error()))
					continue
				}
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out
}

// Ping verifies the Redis connection, for health checks.
func (b *Bus) Ping(ctx context.Context) error {
	return b.rdb.Ping(ctx).Err()
}

// Close releases the Redis connection.
func (b *Bus) Close() error {
	return b.rdb.Close()
}
