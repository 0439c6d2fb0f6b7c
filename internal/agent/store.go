package agent

import (
	"context"
	"encoding/json"
	"net/url"
	"sync"

	"github.com/nidhogg/nuka-view/internal/client"
	"github.com/nidhogg/nuka-view/internal/state"
	"go.uber.org/zap"
)

const (
	StoreName = "agents"

	agentsPath = "/api/v1/system/agents"
	graphPath  = "/api/v1/system/agents/graph/relationships"
)

// Backend is the subset of the HTTP client the store needs.
type Backend interface {
	Get(ctx context.Context, path string, query url.Values, out any) error
}

// Store holds the agent list, the selected agent and the loading flag for one
// UI session. The held slice is never mutated in place: every change swaps in
// a new slice and notifies listeners.
type Store struct {
	state.Notifier

	backend Backend
	logger  *zap.Logger

	mu       sync.RWMutex
	agents   []Agent
	selected *Agent
	loading  bool
}

// NewStore creates an empty agent store.
func NewStore(backend Backend, logger *zap.Logger) *Store {
	return &Store{
		backend: backend,
		logger:  logger,
		agents:  []Agent{},
	}
}

// Agents returns a copy of the held list.
func (s *Store) Agents() []Agent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Agent, len(s.agents))
	copy(out, s.agents)
	return out
}

// Selected returns the selected agent, or nil.
func (s *Store) Selected() *Agent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.selected == nil {
		return nil
	}
	a := *s.selected
	return &a
}

// Loading reports whether a list fetch is in flight.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// List fetches every agent and replaces the held list. On failure the list is
// reset to empty.
//
// Overlapping calls are not coalesced; the last response to arrive wins.
func (s *Store) List(ctx context.Context) state.Result[[]Agent] {
	s.setLoading(true)
	defer s.setLoading(false)

	agents, err := s.fetchAll(ctx)
	if err != nil {
		s.logger.Error("load agents failed",
			zap.Error(err),
			zap.Any("response", client.ErrorBody(err)))
		s.replace(ctx, []Agent{}, state.Change{Kind: state.KindReplace, Source: state.SourceEmpty})
		return state.Empty([]Agent{}, err)
	}

	s.replace(ctx, agents, state.Change{Kind: state.KindReplace, Source: state.SourceLive})
	s.logger.Debug("agents loaded", zap.Int("count", len(agents)))
	return state.Live(agents)
}

func (s *Store) fetchAll(ctx context.Context) ([]Agent, error) {
	var raw json.RawMessage
	if err := s.backend.Get(ctx, agentsPath, nil, &raw); err != nil {
		return nil, err
	}
	records, err := client.DecodeList[wireAgent](raw, "agents")
	if err != nil {
		return nil, err
	}
	agents := make([]Agent, len(records))
	for i, w := range records {
		agents[i] = normalize(w)
	}
	return agents, nil
}

// Select fetches the agent's detail, makes it the selection and swaps it into
// the held list at its current position. If the request fails the held summary
// entry, if any, becomes the selection.
func (s *Store) Select(ctx context.Context, id string) *Agent {
	var w wireAgent
	if err := s.backend.Get(ctx, agentsPath+"/"+url.PathEscape(id), nil, &w); err != nil {
		s.logger.Error("load agent detail failed",
			zap.String("id", id),
			zap.Error(err),
			zap.Any("response", client.ErrorBody(err)))

		s.mu.Lock()
		s.selected = nil
		if i := s.indexOf(id); i >= 0 {
			a := s.agents[i]
			s.selected = &a
		}
		sel := s.selected
		count := len(s.agents)
		s.mu.Unlock()

		s.Notify(ctx, state.Change{Store: StoreName, Kind: state.KindSelect, ID: id, Count: count, Source: state.SourceFallback})
		if sel == nil {
			return nil
		}
		out := *sel
		return &out
	}

	detail := normalizeDetail(w)

	s.mu.Lock()
	sel := detail
	s.selected = &sel
	if i := s.indexOf(id); i >= 0 {
		s.agents = splice(s.agents, i, detail)
	}
	count := len(s.agents)
	s.mu.Unlock()

	s.Notify(ctx, state.Change{Store: StoreName, Kind: state.KindSelect, ID: id, Count: count, Source: state.SourceLive})
	out := detail
	return &out
}

// Update merges patch into the held agent with the given id. It returns false
// and leaves the list untouched when the id is not held.
func (s *Store) Update(ctx context.Context, id string, patch Patch) bool {
	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	s.agents = splice(s.agents, i, patch.apply(s.agents[i]))
	count := len(s.agents)
	s.mu.Unlock()

	s.Notify(ctx, state.Change{Store: StoreName, Kind: state.KindUpdate, ID: id, Count: count, Source: state.SourceLive})
	return true
}

// Graph fetches the relationship graph. It is not held by the store.
func (s *Store) Graph(ctx context.Context) state.Result[Graph] {
	var w wireGraph
	if err := s.backend.Get(ctx, graphPath, nil, &w); err != nil {
		s.logger.Error("load relationship graph failed",
			zap.Error(err),
			zap.Any("response", client.ErrorBody(err)))
		return state.Empty(Graph{Nodes: []GraphNode{}, Edges: []GraphEdge{}}, err)
	}
	return state.Live(normalizeGraph(w))
}

func (s *Store) replace(ctx context.Context, agents []Agent, c state.Change) {
	s.mu.Lock()
	s.agents = agents
	s.mu.Unlock()

	c.Store = StoreName
	c.Count = len(agents)
	s.Notify(ctx, c)
}

func (s *Store) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}

// indexOf must be called with mu held.
func (s *Store) indexOf(id string) int {
	for i := range s.agents {
		if s.agents[i].ID == id {
			return i
		}
	}
	return -1
}

// splice returns prefix ++ [a] ++ suffix as a new slice.
func splice(agents []Agent, i int, a Agent) []Agent {
	next := make([]Agent, 0, len(agents))
	next = append(next, agents[:i]...)
	next = append(next, a)
	next = append(next, agents[i+1:]...)
	return next
}
