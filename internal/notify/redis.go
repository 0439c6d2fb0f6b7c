package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nidhogg/nuka-view/internal/state"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// maxStreamLen caps each stream; older entries are trimmed approximately.
const maxStreamLen = 1000

// Publisher mirrors store changes onto Redis Streams so other processes can
// follow a session's view state.
type Publisher struct {
	rdb    *redis.Client
	prefix string
	logger *zap.Logger
}

// NewPublisher connects to Redis and verifies the connection.
func NewPublisher(redisURL, prefix string, logger *zap.Logger) (*Publisher, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &Publisher{rdb: rdb, prefix: prefix, logger: logger}, nil
}

// Stream returns the stream key used for a store.
func (p *Publisher) Stream(store string) string {
	return p.prefix + store
}

// Publish appends c to its store's stream.
func (p *Publisher) Publish(ctx context.Context, c state.Change) error {
	data, err := json.Marshal(c)
	if err != nil {
		return err
	}

	stream := p.Stream(c.Store)
	_, err = p.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		MaxLen: maxStreamLen,
		Approx: true,
		Values: map[string]interface{}{
			"data": string(data),
		},
	}).Result()
	if err != nil {
		return fmt.Errorf("publish to %s: %w", stream, err)
	}

	p.logger.Debug("published change",
		zap.String("stream", stream),
		zap.String("kind", string(c.Kind)),
		zap.Int("count", c.Count))
	return nil
}

// OnChange implements state.Listener. Failures are logged, never returned.
func (p *Publisher) OnChange(ctx context.Context, c state.Change) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()
	if err := p.Publish(ctx, c); err != nil {
		p.logger.Warn("change not published", zap.String("store", c.Store), zap.Error(err))
	}
}

// Subscribe follows a store's stream from now on. Cancel ctx to stop.
func (p *Publisher) Subscribe(ctx context.Context, store string) <-chan state.Change {
	ch := make(chan state.Change, 16)
	stream := p.Stream(store)

	go func() {
		defer close(ch)
		lastID := "$"

		for {
			select {
			case <-ctx.Done():
				return
			default:
			}

			results, err := p.rdb.XRead(ctx, &redis.XReadArgs{
				Streams: []string{stream, lastID},
				Count:   10,
				Block:   time.Second * 2,
			}).Result()
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				continue
			}

			for _, r := range results {
				for _, msg := range r.Messages {
					lastID = msg.ID
					data, ok := msg.Values["data"].(string)
					if !ok {
						continue
					}
					var c state.Change
					if json.Unmarshal([]byte(data), &c) != nil {
						continue
					}
					select {
					case ch <- c:
					case <-ctx.Done():
						return
					}
				}
			}
		}
	}()

	return ch
}

// Close shuts down the Redis connection.
func (p *Publisher) Close() error {
	return p.rdb.Close()
}
