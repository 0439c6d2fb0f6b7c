package feed

import (
	"time"

	"github.com/nidhogg/nuka-view/internal/mood"
)

// SampleEvents returns the built-in feed shown when the backend is
// unreachable, stamped relative to now.
func SampleEvents(now time.Time) []Event {
	ago := func(min int) time.Time { return now.Add(-time.Duration(min) * time.Minute) }
	return []Event{
		{ID: "1", Type: "interaction", Content: "Алекс и Мария обсуждают новое открытие", AgentIDs: []string{"1", "2"}, Timestamp: ago(5), Mood: mood.EventPositive},
		{ID: "2", Type: "action", Content: "Роберт проводит анализ данных", AgentIDs: []string{"3"}, Timestamp: ago(10), Mood: mood.EventNeutral},
		{ID: "3", Type: "discovery", Content: "Алекс обнаружил интересное место", AgentIDs: []string{"1"}, Timestamp: ago(15), Mood: mood.EventExcited},
		{ID: "4", Type: "creation", Content: "Мария создала новое произведение искусства", AgentIDs: []string{"2"}, Timestamp: ago(20), Mood: "happy"},
		{ID: "5", Type: "memory", Content: "Алекс вспомнил прошлую встречу с Марией", AgentIDs: []string{"1"}, Timestamp: ago(25), Mood: mood.EventPositive},
	}
}
