package agent

import (
	"time"

	"github.com/nidhogg/nuka-view/internal/mood"
)

const (
	defaultAvatar     = ":)"
	defaultBackground = "Нет описания"
	defaultPlan       = "Нет активного плана"
	defaultRelation   = "знакомый"
	defaultMoodLevel  = 0.5
	defaultTraitScore = 0.5
	statusActive      = "активный"
	statusInactive    = "неактивный"
)

// Agent is the display model of a simulated resident.
type Agent struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Avatar        string         `json:"avatar"`
	Personality   Personality    `json:"personality"`
	Mood          Mood           `json:"mood"`
	Memories      []Memory       `json:"memories"`
	Relationships []Relationship `json:"relationships"`
	CurrentPlan   string         `json:"currentPlan"`
	CurrentGoal   *string        `json:"currentGoal"`
	Status        string         `json:"status"`
}

// Personality holds derived trait labels. The raw scores are only present
// once the agent's detail has been fetched.
type Personality struct {
	Traits            []string `json:"traits"`
	Background        string   `json:"background"`
	Openness          *float64 `json:"openness,omitempty"`
	Extraversion      *float64 `json:"extraversion,omitempty"`
	Agreeableness     *float64 `json:"agreeableness,omitempty"`
	Conscientiousness *float64 `json:"conscientiousness,omitempty"`
	Neuroticism       *float64 `json:"neuroticism,omitempty"`
}

type Mood struct {
	Current string  `json:"current"`
	Level   float64 `json:"level"`
	Color   string  `json:"color"`
}

type Memory struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

type Relationship struct {
	AgentID   string  `json:"agentId"`
	AgentName string  `json:"agentName"`
	Sentiment float64 `json:"sentiment"`
	Type      string  `json:"type"`
}

// Patch is a partial set of top-level fields merged by Store.Update.
// Nil fields are left untouched.
type Patch struct {
	Name          *string        `json:"name,omitempty"`
	Avatar        *string        `json:"avatar,omitempty"`
	Personality   *Personality   `json:"personality,omitempty"`
	Mood          *Mood          `json:"mood,omitempty"`
	Memories      []Memory       `json:"memories,omitempty"`
	Relationships []Relationship `json:"relationships,omitempty"`
	CurrentPlan   *string        `json:"currentPlan,omitempty"`
	CurrentGoal   *string        `json:"currentGoal,omitempty"`
	Status        *string        `json:"status,omitempty"`
}

func (p Patch) apply(a Agent) Agent {
	if p.Name != nil {
		a.Name = *p.Name
	}
	if p.Avatar != nil {
		a.Avatar = *p.Avatar
	}
	if p.Personality != nil {
		a.Personality = *p.Personality
	}
	if p.Mood != nil {
		a.Mood = *p.Mood
	}
	if p.Memories != nil {
		a.Memories = p.Memories
	}
	if p.Relationships != nil {
		a.Relationships = p.Relationships
	}
	if p.CurrentPlan != nil {
		a.CurrentPlan = *p.CurrentPlan
	}
	if p.CurrentGoal != nil {
		a.CurrentGoal = p.CurrentGoal
	}
	if p.Status != nil {
		a.Status = *p.Status
	}
	return a
}

// Graph is the relationship graph of active agents.
type Graph struct {
	Nodes []GraphNode `json:"nodes"`
	Edges []GraphEdge `json:"edges"`
}

type GraphNode struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
	Mood   Mood   `json:"mood"`
}

type GraphEdge struct {
	Source    string  `json:"source"`
	Target    string  `json:"target"`
	Sentiment float64 `json:"sentiment"`
	Type      string  `json:"type"`
}

// wire shapes as sent by the backend

type wireAgent struct {
	ID            string             `json:"id"`
	Name          string             `json:"name"`
	Bio           string             `json:"bio"`
	AvatarURL     string             `json:"avatar_url"`
	Personality   *mood.Personality  `json:"personality"`
	Emotion       *wireEmotion       `json:"emotion"`
	Relationships []wireRelationship `json:"relationships"`
	Memories      []wireMemory       `json:"memories"`
	CurrentPlan   string             `json:"current_plan"`
	CurrentGoal   *string            `json:"current_goal"`
	IsActive      bool               `json:"is_active"`
}

type wireEmotion struct {
	Mood      mood.Key `json:"mood"`
	Happiness *float64 `json:"happiness"`
}

type wireRelationship struct {
	AgentID     string  `json:"agent_id"`
	AgentName   string  `json:"agent_name"`
	Sympathy    float64 `json:"sympathy"`
	Description string  `json:"description"`
}

type wireMemory struct {
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

type wireGraph struct {
	Nodes []struct {
		ID        string   `json:"id"`
		Name      string   `json:"name"`
		Mood      mood.Key `json:"mood"`
		AvatarURL string   `json:"avatar_url"`
	} `json:"nodes"`
	Edges []struct {
		Source      string  `json:"source"`
		Target      string  `json:"target"`
		Sympathy    float64 `json:"sympathy"`
		Description string  `json:"description"`
	} `json:"edges"`
}
