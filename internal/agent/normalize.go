package agent

import (
	"strconv"

	"github.com/nidhogg/nuka-view/internal/client"
	"github.com/nidhogg/nuka-view/internal/mood"
)

// normalize maps a backend summary record to the display model.
func normalize(w wireAgent) Agent {
	key := mood.Neutral
	level := defaultMoodLevel
	if w.Emotion != nil {
		if w.Emotion.Mood != "" {
			key = w.Emotion.Mood
		}
		if w.Emotion.Happiness != nil {
			level = *w.Emotion.Happiness
		}
	}

	a := Agent{
		ID:     w.ID,
		Name:   w.Name,
		Avatar: orDefault(w.AvatarURL, defaultAvatar),
		Personality: Personality{
			Traits:     mood.Traits(w.Personality),
			Background: orDefault(w.Bio, defaultBackground),
		},
		Mood: Mood{
			Current: mood.Label(key),
			Level:   level,
			Color:   mood.Color(key),
		},
		Memories:      []Memory{},
		Relationships: make([]Relationship, 0, len(w.Relationships)),
		CurrentPlan:   orDefault(w.CurrentPlan, defaultPlan),
		CurrentGoal:   w.CurrentGoal,
		Status:        statusInactive,
	}
	if w.IsActive {
		a.Status = statusActive
	}
	for _, r := range w.Relationships {
		a.Relationships = append(a.Relationships, Relationship{
			AgentID:   r.AgentID,
			AgentName: r.AgentName,
			Sentiment: r.Sympathy,
			Type:      orDefault(r.Description, defaultRelation),
		})
	}
	return a
}

// normalizeDetail extends normalize with raw personality scores and memories.
func normalizeDetail(w wireAgent) Agent {
	a := normalize(w)
	if p := w.Personality; p != nil {
		a.Personality.Openness = scoreOrDefault(p.Openness)
		a.Personality.Extraversion = scoreOrDefault(p.Extraversion)
		a.Personality.Agreeableness = scoreOrDefault(p.Agreeableness)
		a.Personality.Conscientiousness = scoreOrDefault(p.Conscientiousness)
		a.Personality.Neuroticism = scoreOrDefault(p.Neuroticism)
	}
	a.Memories = make([]Memory, 0, len(w.Memories))
	for i, m := range w.Memories {
		a.Memories = append(a.Memories, Memory{
			ID:        strconv.Itoa(i),
			Content:   m.Content,
			Timestamp: client.ParseTime(m.Timestamp),
		})
	}
	return a
}

func normalizeGraph(w wireGraph) Graph {
	g := Graph{
		Nodes: make([]GraphNode, 0, len(w.Nodes)),
		Edges: make([]GraphEdge, 0, len(w.Edges)),
	}
	for _, n := range w.Nodes {
		g.Nodes = append(g.Nodes, GraphNode{
			ID:     n.ID,
			Name:   n.Name,
			Avatar: orDefault(n.AvatarURL, defaultAvatar),
			Mood: Mood{
				Current: mood.Label(n.Mood),
				Level:   defaultMoodLevel,
				Color:   mood.Color(n.Mood),
			},
		})
	}
	for _, e := range w.Edges {
		g.Edges = append(g.Edges, GraphEdge{
			Source:    e.Source,
			Target:    e.Target,
			Sentiment: e.Sympathy,
			Type:      orDefault(e.Description, defaultRelation),
		})
	}
	return g
}

func scoreOrDefault(s *float64) *float64 {
	v := defaultTraitScore
	if s != nil {
		v = *s
	}
	return &v
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
