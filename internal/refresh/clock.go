package refresh

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Listener receives clock ticks.
type Listener interface {
	OnTick(ctx context.Context, at time.Time)
}

// Clock ticks at a fixed interval and fans each tick out to its listeners.
type Clock struct {
	interval  time.Duration
	listeners []Listener
	mu        sync.RWMutex
	cancel    context.CancelFunc
	done      chan struct{}
	logger    *zap.Logger
}

// NewClock creates a stopped clock.
func NewClock(interval time.Duration, logger *zap.Logger) *Clock {
	return &Clock{
		interval: interval,
		logger:   logger,
	}
}

// AddListener registers a tick listener.
func (c *Clock) AddListener(l Listener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, l)
}

// Start begins the tick loop in a background goroutine.
func (c *Clock) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	c.mu.Lock()
	c.cancel = cancel
	c.done = make(chan struct{})
	done := c.done
	c.mu.Unlock()

	go c.loop(ctx, done)
	c.logger.Info("refresh clock started", zap.Duration("interval", c.interval))
}

// Stop halts the tick loop and waits for an in-flight tick to finish.
func (c *Clock) Stop() {
	c.mu.Lock()
	cancel, done := c.cancel, c.done
	c.cancel = nil
	c.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	c.logger.Info("refresh clock stopped")
}

func (c *Clock) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case t := <-ticker.C:
			c.tick(ctx, t)
		}
	}
}

func (c *Clock) tick(ctx context.Context, at time.Time) {
	c.mu.RLock()
	listeners := make([]Listener, len(c.listeners))
	copy(listeners, c.listeners)
	c.mu.RUnlock()

	for _, l := range listeners {
		l.OnTick(ctx, at)
	}
}
