package refresh

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nidhogg/nuka-view/internal/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRefreshNowRunsEveryTarget(t *testing.T) {
	r := NewRefresher(time.Second, zap.NewNop())
	var order []string
	r.Add("agents", func(ctx context.Context) state.Source {
		order = append(order, "agents")
		_, ok := ctx.Deadline()
		assert.True(t, ok, "each target runs with a deadline")
		return state.SourceEmpty
	})
	r.Add("events", func(ctx context.Context) state.Source {
		order = append(order, "events")
		return state.SourceLive
	})

	got := r.RefreshNow(context.Background())
	assert.Equal(t, []string{"agents", "events"}, order)
	assert.Equal(t, map[string]state.Source{"agents": state.SourceEmpty, "events": state.SourceLive}, got)
}

func TestClockDrivesRefresher(t *testing.T) {
	var calls atomic.Int32
	r := NewRefresher(time.Second, zap.NewNop())
	r.Add("events", func(ctx context.Context) state.Source {
		calls.Add(1)
		return state.SourceLive
	})

	c := NewClock(10*time.Millisecond, zap.NewNop())
	c.AddListener(r)
	c.Start()
	require.Eventually(t, func() bool { return calls.Load() >= 2 }, 2*time.Second, 5*time.Millisecond)
	c.Stop()

	n := calls.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, n, calls.Load(), "no ticks after Stop")
}

func TestStopWithoutStart(t *testing.T) {
	c := NewClock(time.Second, zap.NewNop())
	c.Stop()
}
