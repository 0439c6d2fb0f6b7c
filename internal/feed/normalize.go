package feed

import (
	"github.com/nidhogg/nuka-view/internal/client"
	"github.com/nidhogg/nuka-view/internal/mood"
)

func normalize(w wireEvent) Event {
	ids := make([]string, 0, 2)
	if w.AgentID != "" {
		ids = append(ids, w.AgentID)
	}
	if w.TargetAgentID != "" {
		ids = append(ids, w.TargetAgentID)
	}

	content := firstNonEmpty(w.Content, w.Description, defaultContent)
	return Event{
		ID:          w.ID,
		Type:        firstNonEmpty(w.EventType, defaultType),
		Content:     content,
		AgentName:   nullable(w.AgentName),
		AgentIDs:    ids,
		Timestamp:   client.ParseTime(w.Timestamp),
		Mood:        mood.ForEvent(w.EventType, content),
		Description: nullable(w.Description),
	}
}

func worldBody(in WorldEvent) worldEventBody {
	return worldEventBody{
		Description: firstNonEmpty(in.Description, defaultContent),
		Metadata:    metadataOrEmpty(in.Metadata),
	}
}

func agentBody(in AgentEvent) agentEventBody {
	return agentEventBody{
		EventType:     firstNonEmpty(in.Kind, defaultType),
		Description:   firstNonEmpty(in.Content, in.Description, defaultContent),
		AgentID:       in.AgentID,
		TargetAgentID: nullable(in.TargetAgentID),
		Content:       nullable(in.Content),
		Metadata:      metadataOrEmpty(in.Metadata),
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func metadataOrEmpty(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}
