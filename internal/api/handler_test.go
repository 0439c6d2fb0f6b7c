package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nidhogg/nuka-view/internal/agent"
	"github.com/nidhogg/nuka-view/internal/client"
	"github.com/nidhogg/nuka-view/internal/feed"
	"go.uber.org/zap"
)

// fakeSimulation stands in for the simulation backend.
func fakeSimulation(t *testing.T, failFeed bool) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/system/agents", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"agents": [
			{"id": "1", "name": "Alex", "is_active": true, "emotion": {"mood": "happy", "happiness": 0.9}},
			{"id": "2", "name": "Maria", "is_active": true}
		], "total": 2}`)
	})
	mux.HandleFunc("GET /api/v1/system/agents/1", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"id": "1", "name": "Alex", "is_active": true,
			"personality": {"openness": 0.8},
			"memories": [{"content": "found a cave", "timestamp": "2025-01-01T00:00:00"}]}`)
	})
	mux.HandleFunc("GET /api/v1/system/agents/graph/relationships", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"nodes": [{"id": "1", "name": "Alex", "mood": "happy"}], "edges": []}`)
	})
	mux.HandleFunc("GET /api/v1/action/feed", func(w http.ResponseWriter, r *http.Request) {
		if failFeed {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		io.WriteString(w, `{"events": [{"id": "e1", "event_type": "action", "description": "walks"}], "has_more": false}`)
	})
	mux.HandleFunc("GET /api/v1/action/events/agent/1", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"events": [{"id": "e1", "event_type": "action", "agent_id": "1"}], "total": 1}`)
	})
	mux.HandleFunc("POST /api/v1/action/world-event", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"id": "w1", "event_type": "world_event", "description": "rain"}`)
	})
	mux.HandleFunc("POST /api/v1/action/agent-event", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"detail": "Агент не найден"}`)
	})
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

// newTestServer wires both stores against the fake simulation.
func newTestServer(t *testing.T, failFeed bool) *httptest.Server {
	t.Helper()
	logger := zap.NewNop()
	sim := fakeSimulation(t, failFeed)
	c := client.New(client.Config{BaseURL: sim.URL}, logger)

	h := NewHandler(agent.NewStore(c, logger), feed.NewStore(c, 50, logger), logger)
	ts := httptest.NewServer(h.Router())
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, ts *httptest.Server, method, path string, body interface{}) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	}
	req, _ := http.NewRequest(method, ts.URL+path, reader)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

type agentList struct {
	Source string        `json:"source"`
	Items  []agent.Agent `json:"items"`
}

type eventList struct {
	Source string       `json:"source"`
	Items  []feed.Event `json:"items"`
	Error  string       `json:"error"`
}

// --- Tests ---

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t, false)

	resp := doJSON(t, ts, http.MethodGet, "/api/health", nil)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var body map[string]interface{}
	decodeJSON(t, resp, &body)
	if body["status"] != "ok" {
		t.Errorf("expected status ok, got %v", body["status"])
	}
}

func TestAgentsRefreshAndList(t *testing.T) {
	ts := newTestServer(t, false)

	var held []agent.Agent
	decodeJSON(t, doJSON(t, ts, http.MethodGet, "/api/agents", nil), &held)
	if len(held) != 0 {
		t.Fatalf("expected empty list before refresh, got %d", len(held))
	}

	resp := doJSON(t, ts, http.MethodPost, "/api/agents/refresh", nil)
	if resp.StatusCode != 200 {
		t.Fatalf("refresh: expected 200, got %d", resp.StatusCode)
	}
	var refreshed agentList
	decodeJSON(t, resp, &refreshed)
	if refreshed.Source != "live" || len(refreshed.Items) != 2 {
		t.Fatalf("refresh: got source %q with %d items", refreshed.Source, len(refreshed.Items))
	}
	if refreshed.Items[0].Mood.Current != "счастливый" {
		t.Errorf("expected mood label счастливый, got %q", refreshed.Items[0].Mood.Current)
	}

	decodeJSON(t, doJSON(t, ts, http.MethodGet, "/api/agents", nil), &held)
	if len(held) != 2 || held[1].Name != "Maria" {
		t.Fatalf("unexpected held list: %+v", held)
	}
}

func TestSelectAgent(t *testing.T) {
	ts := newTestServer(t, false)
	doJSON(t, ts, http.MethodPost, "/api/agents/refresh", nil).Body.Close()

	var sel agent.Agent
	decodeJSON(t, doJSON(t, ts, http.MethodPost, "/api/agents/1/select", nil), &sel)
	if len(sel.Memories) != 1 || sel.Memories[0].Content != "found a cave" {
		t.Fatalf("expected detail with one memory, got %+v", sel.Memories)
	}
	if sel.Personality.Openness == nil || *sel.Personality.Openness != 0.8 {
		t.Errorf("expected openness 0.8, got %v", sel.Personality.Openness)
	}

	var current agent.Agent
	decodeJSON(t, doJSON(t, ts, http.MethodGet, "/api/agents/selected", nil), &current)
	if current.ID != "1" {
		t.Errorf("expected selected agent 1, got %q", current.ID)
	}

	// Detail for agent 2 is not served: the summary is selected instead.
	decodeJSON(t, doJSON(t, ts, http.MethodPost, "/api/agents/2/select", nil), &sel)
	if sel.ID != "2" || len(sel.Memories) != 0 {
		t.Errorf("expected summary fallback for agent 2, got %+v", sel)
	}
}

func TestUpdateAgent(t *testing.T) {
	ts := newTestServer(t, false)
	doJSON(t, ts, http.MethodPost, "/api/agents/refresh", nil).Body.Close()

	resp := doJSON(t, ts, http.MethodPatch, "/api/agents/2", map[string]interface{}{"currentPlan": "paint"})
	if resp.StatusCode != 200 {
		t.Fatalf("patch: expected 200, got %d", resp.StatusCode)
	}
	var updated agent.Agent
	decodeJSON(t, resp, &updated)
	if updated.CurrentPlan != "paint" || updated.Name != "Maria" {
		t.Errorf("unexpected patched agent: %+v", updated)
	}

	resp = doJSON(t, ts, http.MethodPatch, "/api/agents/404", map[string]interface{}{"name": "x"})
	resp.Body.Close()
	if resp.StatusCode != 404 {
		t.Errorf("patch unknown: expected 404, got %d", resp.StatusCode)
	}

	req, _ := http.NewRequest(http.MethodPatch, ts.URL+"/api/agents/2", bytes.NewBufferString("{"))
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != 400 {
		t.Errorf("bad body: expected 400, got %d", resp.StatusCode)
	}
}

func TestEventsRefreshFallback(t *testing.T) {
	ts := newTestServer(t, true)

	var list eventList
	decodeJSON(t, doJSON(t, ts, http.MethodPost, "/api/events/refresh", nil), &list)
	if list.Source != "fallback" {
		t.Fatalf("expected fallback source, got %q", list.Source)
	}
	if len(list.Items) != 5 {
		t.Fatalf("expected 5 sample events, got %d", len(list.Items))
	}
	if list.Error == "" {
		t.Error("expected error message on fallback")
	}
}

func TestAddEvents(t *testing.T) {
	ts := newTestServer(t, false)
	doJSON(t, ts, http.MethodPost, "/api/events/refresh", nil).Body.Close()

	resp := doJSON(t, ts, http.MethodPost, "/api/events/world", map[string]interface{}{"description": "rain"})
	if resp.StatusCode != 201 {
		t.Fatalf("world: expected 201, got %d", resp.StatusCode)
	}
	var world feed.Event
	decodeJSON(t, resp, &world)
	if world.ID != "w1" {
		t.Errorf("expected backend id w1, got %q", world.ID)
	}

	// The backend rejects agent events; a local one is created instead.
	var local feed.Event
	decodeJSON(t, doJSON(t, ts, http.MethodPost, "/api/events/agent", map[string]interface{}{
		"kind": "chat", "content": "бесит", "agent_id": "1",
	}), &local)
	if local.Mood != "negative" || local.Type != "chat" {
		t.Errorf("unexpected local event: %+v", local)
	}

	var held []feed.Event
	decodeJSON(t, doJSON(t, ts, http.MethodGet, "/api/events", nil), &held)
	if len(held) != 3 {
		t.Fatalf("expected 3 held events, got %d", len(held))
	}
	if held[0].ID != local.ID || held[1].ID != "w1" || held[2].ID != "e1" {
		t.Errorf("unexpected order: %s, %s, %s", held[0].ID, held[1].ID, held[2].ID)
	}
}

func TestGraphAndHistory(t *testing.T) {
	ts := newTestServer(t, false)

	var graph struct {
		Source string      `json:"source"`
		Items  agent.Graph `json:"items"`
	}
	decodeJSON(t, doJSON(t, ts, http.MethodGet, "/api/agents/graph", nil), &graph)
	if graph.Source != "live" || len(graph.Items.Nodes) != 1 {
		t.Fatalf("unexpected graph: %+v", graph)
	}

	var history eventList
	decodeJSON(t, doJSON(t, ts, http.MethodGet, "/api/agents/1/events", nil), &history)
	if history.Source != "live" || len(history.Items) != 1 {
		t.Fatalf("unexpected history: %+v", history)
	}

	decodeJSON(t, doJSON(t, ts, http.MethodGet, "/api/agents/2/events", nil), &history)
	if history.Source != "empty" || len(history.Items) != 0 {
		t.Errorf("expected empty history for agent 2, got %+v", history)
	}
}
