package mood

import "strings"

// EventMood is the tone shown next to a feed entry.
type EventMood string

const (
	EventPositive EventMood = "positive"
	EventNeutral  EventMood = "neutral"
	EventExcited  EventMood = "excited"
	EventNegative EventMood = "negative"
)

var eventMoods = map[string]EventMood{
	"chat":         EventPositive,
	"action":       EventNeutral,
	"mood_change":  EventNeutral,
	"relationship": EventPositive,
	"world_event":  EventNeutral,
	"user_message": EventNeutral,
	"reflection":   EventNeutral,
	"goal_set":     EventExcited,
}

// Checked in order; the first list with a hit wins.
var negativeWordLists = [][]string{
	// aggressive
	{"ненавижу", "презираю", "злой", "злюсь", "бесит", "раздражает", "достал", "надоел", "уйди", "отстань", "заткнись", "тупой", "идиот", "дурак"},
	// offended
	{"обижен", "обидно", "обиделся", "несправедливо", "нечестно", "предал", "обманул", "разочарован", "расстроен"},
	// mildly negative
	{"плохо", "грустно", "не нравится", "неприятно"},
}

// ForEvent derives the display mood of an event. Chat content containing a
// negative word overrides the type default.
func ForEvent(eventType, content string) EventMood {
	if eventType == "chat" && content != "" {
		lower := strings.ToLower(content)
		for _, words := range negativeWordLists {
			for _, w := range words {
				if strings.Contains(lower, w) {
					return EventNegative
				}
			}
		}
	}
	if m, ok := eventMoods[eventType]; ok {
		return m
	}
	return EventNeutral
}
