package state

import (
	"context"
	"sync"
	"time"
)

// Source tells callers where a Result's value came from.
type Source string

const (
	SourceLive     Source = "live"
	SourceFallback Source = "fallback" // built-in sample data
	SourceEmpty    Source = "empty"    // request failed, nothing substituted
)

// Result is the outcome of a store operation that never fails outright.
// Err is set whenever Source is not SourceLive.
type Result[T any] struct {
	Value  T
	Source Source
	Err    error
}

// Live wraps a value fetched from the backend.
func Live[T any](v T) Result[T] {
	return Result[T]{Value: v, Source: SourceLive}
}

// Fallback wraps substitute data used after err.
func Fallback[T any](v T, err error) Result[T] {
	return Result[T]{Value: v, Source: SourceFallback, Err: err}
}

// Empty wraps the zero-ish value used after err.
func Empty[T any](v T, err error) Result[T] {
	return Result[T]{Value: v, Source: SourceEmpty, Err: err}
}

// Kind names the mutation that produced a Change.
type Kind string

const (
	KindReplace Kind = "replace"
	KindSelect  Kind = "select"
	KindUpdate  Kind = "update"
	KindPrepend Kind = "prepend"
)

// Change describes one wholesale replacement of a store's held list.
type Change struct {
	Store  string    `json:"store"`
	Kind   Kind      `json:"kind"`
	ID     string    `json:"id,omitempty"`
	Count  int       `json:"count"`
	Source Source    `json:"source"`
	At     time.Time `json:"at"`
}

// Listener receives store changes.
type Listener interface {
	OnChange(ctx context.Context, c Change)
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(ctx context.Context, c Change)

func (f ListenerFunc) OnChange(ctx context.Context, c Change) { f(ctx, c) }

// Notifier fans changes out to registered listeners.
type Notifier struct {
	mu        sync.RWMutex
	listeners []Listener
}

// AddListener registers l for all future changes.
func (n *Notifier) AddListener(l Listener) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.listeners = append(n.listeners, l)
}

// Notify calls every listener synchronously, in registration order.
func (n *Notifier) Notify(ctx context.Context, c Change) {
	if c.At.IsZero() {
		c.At = time.Now()
	}
	n.mu.RLock()
	ls := make([]Listener, len(n.listeners))
	copy(ls, n.listeners)
	n.mu.RUnlock()

	for _, l := range ls {
		l.OnChange(ctx, c)
	}
}
