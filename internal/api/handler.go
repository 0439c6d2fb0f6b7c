package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/nidhogg/nuka-view/internal/agent"
	"github.com/nidhogg/nuka-view/internal/feed"
	"github.com/nidhogg/nuka-view/internal/state"
	"go.uber.org/zap"
)

// Handler exposes one session's view state over HTTP.
type Handler struct {
	agents *agent.Store
	events *feed.Store
	logger *zap.Logger
}

// NewHandler creates a new API handler.
func NewHandler(agents *agent.Store, events *feed.Store, logger *zap.Logger) *Handler {
	return &Handler{
		agents: agents,
		events: events,
		logger: logger,
	}
}

// Router builds the chi router with all routes.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.healthCheck)

		r.Get("/agents", h.listAgents)
		r.Post("/agents/refresh", h.refreshAgents)
		r.Get("/agents/selected", h.selectedAgent)
		r.Get("/agents/graph", h.agentGraph)
		r.Post("/agents/{id}/select", h.selectAgent)
		r.Patch("/agents/{id}", h.updateAgent)
		r.Get("/agents/{id}/events", h.agentEvents)

		r.Get("/events", h.listEvents)
		r.Post("/events/refresh", h.refreshEvents)
		r.Post("/events/world", h.addWorldEvent)
		r.Post("/events/agent", h.addAgentEvent)
	})

	return r
}

// listResponse tells the UI whether items are real or substitute data.
type listResponse[T any] struct {
	Source state.Source `json:"source"`
	Items  T            `json:"items"`
	Error  string       `json:"error,omitempty"`
}

func newListResponse[T any](res state.Result[T]) listResponse[T] {
	out := listResponse[T]{Source: res.Source, Items: res.Value}
	if res.Err != nil {
		out.Error = res.Err.Error()
	}
	return out
}

func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":         "ok",
		"agents_loading": h.agents.Loading(),
		"events_loading": h.events.Loading(),
	})
}

func (h *Handler) listAgents(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.agents.Agents())
}

func (h *Handler) refreshAgents(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, newListResponse(h.agents.List(r.Context())))
}

func (h *Handler) selectedAgent(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.agents.Selected())
}

func (h *Handler) selectAgent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	writeJSON(w, http.StatusOK, h.agents.Select(r.Context(), id))
}

func (h *Handler) updateAgent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var patch agent.Patch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if !h.agents.Update(r.Context(), id, patch) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "agent not found"})
		return
	}
	for _, a := range h.agents.Agents() {
		if a.ID == id {
			writeJSON(w, http.StatusOK, a)
			return
		}
	}
	// Replaced by a concurrent refresh between Update and the lookup.
	writeJSON(w, http.StatusNotFound, map[string]string{"error": "agent not found"})
}

func (h *Handler) agentGraph(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, newListResponse(h.agents.Graph(r.Context())))
}

func (h *Handler) agentEvents(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	writeJSON(w, http.StatusOK, newListResponse(h.events.History(r.Context(), id)))
}

func (h *Handler) listEvents(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.events.Events())
}

func (h *Handler) refreshEvents(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, newListResponse(h.events.List(r.Context())))
}

func (h *Handler) addWorldEvent(w http.ResponseWriter, r *http.Request) {
	var in feed.WorldEvent
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.badRequest(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, h.events.Add(r.Context(), in))
}

func (h *Handler) addAgentEvent(w http.ResponseWriter, r *http.Request) {
	var in feed.AgentEvent
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.badRequest(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, h.events.Add(r.Context(), in))
}

func (h *Handler) badRequest(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Debug("rejected request",
		zap.String("path", r.URL.Path),
		zap.String("request_id", middleware.GetReqID(r.Context())),
		zap.Error(err))
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
