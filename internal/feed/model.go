package feed

import (
	"time"

	"github.com/nidhogg/nuka-view/internal/mood"
)

const (
	defaultType    = "action"
	defaultContent = "Событие"
	worldEventType = "world_event"
)

// Event is the display model of a feed entry.
type Event struct {
	ID          string         `json:"id"`
	Type        string         `json:"type"`
	Content     string         `json:"content"`
	AgentName   *string        `json:"agentName"`
	AgentIDs    []string       `json:"agentIds"`
	Timestamp   time.Time      `json:"timestamp"`
	Mood        mood.EventMood `json:"mood"`
	Description *string        `json:"description"`
}

// Input is a new event submitted by the UI: either a WorldEvent or an
// AgentEvent.
type Input interface {
	isInput()
}

// WorldEvent is a free-text occurrence not tied to any agent.
type WorldEvent struct {
	Description string         `json:"description"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// AgentEvent is an occurrence originating from one agent and optionally
// aimed at another.
type AgentEvent struct {
	Kind          string         `json:"kind"`
	Description   string         `json:"description"`
	Content       string         `json:"content"`
	AgentID       string         `json:"agent_id"`
	TargetAgentID string         `json:"target_agent_id,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty"`
}

func (WorldEvent) isInput() {}
func (AgentEvent) isInput() {}

// wire shapes

type wireEvent struct {
	ID            string `json:"id"`
	EventType     string `json:"event_type"`
	Description   string `json:"description"`
	AgentID       string `json:"agent_id"`
	AgentName     string `json:"agent_name"`
	TargetAgentID string `json:"target_agent_id"`
	Content       string `json:"content"`
	Timestamp     string `json:"timestamp"`
}

type worldEventBody struct {
	Description string         `json:"description"`
	Metadata    map[string]any `json:"metadata"`
}

type agentEventBody struct {
	EventType     string         `json:"event_type"`
	Description   string         `json:"description"`
	AgentID       string         `json:"agent_id"`
	TargetAgentID *string        `json:"target_agent_id"`
	Content       *string        `json:"content"`
	Metadata      map[string]any `json:"metadata"`
}
