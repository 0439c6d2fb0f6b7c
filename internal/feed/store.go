package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/nidhogg/nuka-view/internal/client"
	"github.com/nidhogg/nuka-view/internal/mood"
	"github.com/nidhogg/nuka-view/internal/state"
	"go.uber.org/zap"
)

const (
	StoreName    = "events"
	DefaultLimit = 50

	feedPath       = "/api/v1/action/feed"
	worldEventPath = "/api/v1/action/world-event"
	agentEventPath = "/api/v1/action/agent-event"
	historyPath    = "/api/v1/action/events/agent/"
)

// Backend is the subset of the HTTP client the store needs.
type Backend interface {
	Get(ctx context.Context, path string, query url.Values, out any) error
	Post(ctx context.Context, path string, body any, out any) error
}

// Store holds the most recent events, newest first, for one UI session.
type Store struct {
	state.Notifier

	backend Backend
	limit   int
	logger  *zap.Logger
	now     func() time.Time

	mu          sync.RWMutex
	events      []Event
	loading     bool
	lastLocalID int64
}

// NewStore creates an empty event store fetching at most limit events.
func NewStore(backend Backend, limit int, logger *zap.Logger) *Store {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Store{
		backend: backend,
		limit:   limit,
		logger:  logger,
		now:     time.Now,
		events:  []Event{},
	}
}

// Events returns a copy of the held feed.
func (s *Store) Events() []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}

// Loading reports whether a feed fetch is in flight.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// List fetches the recent feed and replaces the held events. On failure the
// built-in sample events are held instead.
//
// Overlapping calls are not coalesced; the last response to arrive wins.
func (s *Store) List(ctx context.Context) state.Result[[]Event] {
	s.setLoading(true)
	defer s.setLoading(false)

	events, err := s.fetch(ctx, feedPath, "events")
	if err != nil {
		s.logger.Error("load events failed",
			zap.Error(err),
			zap.Any("response", client.ErrorBody(err)))
		samples := SampleEvents(s.now())
		s.replace(ctx, samples, state.Change{Kind: state.KindReplace, Source: state.SourceFallback})
		return state.Fallback(samples, err)
	}

	s.replace(ctx, events, state.Change{Kind: state.KindReplace, Source: state.SourceLive})
	s.logger.Debug("events loaded", zap.Int("count", len(events)))
	return state.Live(events)
}

// History fetches the events an agent took part in. The result is not held.
func (s *Store) History(ctx context.Context, agentID string) state.Result[[]Event] {
	events, err := s.fetch(ctx, historyPath+url.PathEscape(agentID), "events")
	if err != nil {
		s.logger.Error("load agent events failed",
			zap.String("agent", agentID),
			zap.Error(err),
			zap.Any("response", client.ErrorBody(err)))
		return state.Empty([]Event{}, err)
	}
	return state.Live(events)
}

func (s *Store) fetch(ctx context.Context, path, key string) ([]Event, error) {
	var raw json.RawMessage
	q := url.Values{"limit": {strconv.Itoa(s.limit)}}
	if err := s.backend.Get(ctx, path, q, &raw); err != nil {
		return nil, err
	}
	records, err := client.DecodeList[wireEvent](raw, key)
	if err != nil {
		return nil, err
	}
	events := make([]Event, len(records))
	for i, w := range records {
		events[i] = normalize(w)
	}
	return events, nil
}

// Add posts a new event and prepends the created record. If the request
// fails a locally built event is prepended instead. The prepended event is
// always returned.
func (s *Store) Add(ctx context.Context, in Input) Event {
	var (
		path string
		body any
	)
	switch v := in.(type) {
	case WorldEvent:
		path, body = worldEventPath, worldBody(v)
	case AgentEvent:
		path, body = agentEventPath, agentBody(v)
	default:
		// Input is sealed; only a nil interface gets here.
		err := fmt.Errorf("unsupported event input %T", in)
		s.logger.Error("add event failed", zap.Error(err))
		return s.prepend(ctx, s.localEvent(WorldEvent{}), state.SourceFallback)
	}

	var w wireEvent
	if err := s.backend.Post(ctx, path, body, &w); err != nil {
		s.logger.Error("add event failed",
			zap.String("path", path),
			zap.Error(err),
			zap.Any("response", client.ErrorBody(err)))
		return s.prepend(ctx, s.localEvent(in), state.SourceFallback)
	}
	return s.prepend(ctx, normalize(w), state.SourceLive)
}

// localEvent mirrors what the backend would have created for in.
func (s *Store) localEvent(in Input) Event {
	now := s.now()
	e := Event{
		ID:        s.nextLocalID(now),
		Timestamp: now,
		AgentIDs:  []string{},
	}
	switch v := in.(type) {
	case WorldEvent:
		e.Type = worldEventType
		e.Content = firstNonEmpty(v.Description, defaultContent)
		e.Description = nullable(v.Description)
	case AgentEvent:
		e.Type = firstNonEmpty(v.Kind, defaultType)
		e.Content = firstNonEmpty(v.Content, v.Description, defaultContent)
		e.Description = nullable(v.Description)
		if v.AgentID != "" {
			e.AgentIDs = append(e.AgentIDs, v.AgentID)
		}
		if v.TargetAgentID != "" {
			e.AgentIDs = append(e.AgentIDs, v.TargetAgentID)
		}
	}
	e.Mood = mood.ForEvent(e.Type, e.Content)
	return e
}

// nextLocalID returns the wall clock in milliseconds, bumped so ids never
// repeat within this store.
func (s *Store) nextLocalID(now time.Time) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := now.UnixMilli()
	if id <= s.lastLocalID {
		id = s.lastLocalID + 1
	}
	s.lastLocalID = id
	return strconv.FormatInt(id, 10)
}

func (s *Store) prepend(ctx context.Context, e Event, src state.Source) Event {
	s.mu.Lock()
	next := make([]Event, 0, len(s.events)+1)
	next = append(next, e)
	next = append(next, s.events...)
	s.events = next
	count := len(next)
	s.mu.Unlock()

	s.Notify(ctx, state.Change{Store: StoreName, Kind: state.KindPrepend, ID: e.ID, Count: count, Source: src})
	return e
}

func (s *Store) replace(ctx context.Context, events []Event, c state.Change) {
	s.mu.Lock()
	s.events = events
	s.mu.Unlock()

	c.Store = StoreName
	c.Count = len(events)
	s.Notify(ctx, c)
}

func (s *Store) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}
