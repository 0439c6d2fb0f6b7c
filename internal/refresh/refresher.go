package refresh

import (
	"context"
	"sync"
	"time"

	"github.com/nidhogg/nuka-view/internal/state"
	"go.uber.org/zap"
)

// Func reloads one store and reports where the new value came from.
type Func func(ctx context.Context) state.Source

type target struct {
	name string
	fn   Func
}

// Refresher is a clock Listener that reloads every registered store on each
// tick. Targets run one after another; each gets its own timeout.
type Refresher struct {
	timeout time.Duration
	targets []target
	mu      sync.Mutex
	logger  *zap.Logger
}

// NewRefresher creates a refresher whose reloads are bounded by timeout.
func NewRefresher(timeout time.Duration, logger *zap.Logger) *Refresher {
	return &Refresher{timeout: timeout, logger: logger}
}

// Add registers a store reload under name.
func (r *Refresher) Add(name string, fn Func) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.targets = append(r.targets, target{name: name, fn: fn})
}

// RefreshNow reloads every target immediately and returns each one's source.
func (r *Refresher) RefreshNow(ctx context.Context) map[string]state.Source {
	r.mu.Lock()
	targets := make([]target, len(r.targets))
	copy(targets, r.targets)
	r.mu.Unlock()

	out := make(map[string]state.Source, len(targets))
	for _, t := range targets {
		tctx, cancel := context.WithTimeout(ctx, r.timeout)
		src := t.fn(tctx)
		cancel()

		out[t.name] = src
		if src != state.SourceLive {
			r.logger.Warn("store refreshed without backend data",
				zap.String("store", t.name),
				zap.String("source", string(src)))
			continue
		}
		r.logger.Debug("store refreshed", zap.String("store", t.name))
	}
	return out
}

// OnTick implements Listener.
func (r *Refresher) OnTick(ctx context.Context, at time.Time) {
	r.RefreshNow(ctx)
}
