package publisher

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultPublishTimeout bounds a single publish when no timeout is configured
const DefaultPublishTimeout = 500 * time.Millisecond

// RedisPublisher implements Publisher using a Redis stream
type RedisPublisher struct {
	client          *redis.Client
	ctx             context.Context
	stream          string
	streamMaxLength int64
	timeout         time.Duration
}

// Ensure RedisPublisher implements Publisher
var _ Publisher = (*RedisPublisher)(nil)

// NewRedisPublisher creates a new Redis publisher. Each publish gives up
// after timeout.
func NewRedisPublisher(ctx context.Context, addr string, db int, stream string, streamMaxLength int, timeout time.Duration) *RedisPublisher {
	if timeout <= 0 {
		timeout = DefaultPublishTimeout
	}

	client := redis.NewClient(&redis.Options{
		Addr:                  addr,
		DB:                    db,
		ContextTimeoutEnabled: true,
	})

	return &RedisPublisher{
		client:          client,
		ctx:             ctx,
		stream:          stream,
		streamMaxLength: int64(streamMaxLength),
		timeout:         timeout,
	}
}

// Ping checks that Redis is reachable
func (p *RedisPublisher) Ping() error {
	return p.client.Ping(p.ctx).Err()
}

// Publish appends the message to the stream, trimming it to roughly the
// configured maximum length
func (p *RedisPublisher) Publish(key string, message []byte) error {
	args := &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]interface{}{
			"session_id": key,
			"message":    string(message),
		},
	}
	if p.streamMaxLength > 0 {
		args.MaxLen = p.streamMaxLength
		args.Approx = true
	}

	ctx, cancel := context.WithTimeout(p.ctx, p.timeout)
	defer cancel()
	return p.client.XAdd(ctx, args).Err()
}

// Close closes the Redis connection
func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
