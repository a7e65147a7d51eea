package realtime

import (
	"context"
	"fmt"

	"github.com/dalemusser/blend/internal/app/system/metrics"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisOptions configures the cross-instance relay.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Channel  string
}

// NewRedisClient creates a client for the relay. It does not dial.
func NewRedisClient(opts RedisOptions) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
}

// Ping checks the Redis connection.
func Ping(ctx context.Context, rdb *redis.Client) error {
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("failed to ping Redis: %w", err)
	}
	return nil
}

// RedisRelay publishes events to a Redis channel; every instance runs the
// relay's subscriber, which hands frames to its local Hub. With several API
// instances behind a load balancer, an admin connected to any of them sees
// events raised on all of them.
type RedisRelay struct {
	rdb     *redis.Client
	channel string
	hub     *Hub
	log     *zap.Logger
}

// NewRedisRelay wires rdb to hub over channel.
func NewRedisRelay(rdb *redis.Client, channel string, hub *Hub, logger *zap.Logger) *RedisRelay {
	return &RedisRelay{rdb: rdb, channel: channel, hub: hub, log: logger}
}

// Publish sends the frame through Redis. If Redis is unavailable the frame
// is still delivered to local clients.
func (r *RedisRelay) Publish(ctx context.Context, event string, data any) {
	frame, err := encode(event, data)
	if err != nil {
		r.log.Error("failed to encode event", zap.String("event", event), zap.Error(err))
		return
	}
	metrics.IncBroadcast(event)
	if err := r.rdb.Publish(ctx, r.channel, frame).Err(); err != nil {
		r.log.Warn("redis publish failed; delivering locally",
			zap.String("event", event), zap.Error(err))
		r.hub.Broadcast(frame)
	}
}

// Run subscribes to the channel and forwards frames to the hub until ctx is
// canceled. It returns once the subscription is confirmed or fails, after
// starting the forwarding goroutine.
func (r *RedisRelay) Run(ctx context.Context) error {
	sub := r.rdb.Subscribe(ctx, r.channel)
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return fmt.Errorf("subscribe %s: %w", r.channel, err)
	}

	go func() {
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				r.hub.Broadcast([]byte(msg.Payload))
			}
		}
	}()

	r.log.Info("realtime relay subscribed", zap.String("channel", r.channel))
	return nil
}
