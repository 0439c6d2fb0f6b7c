// Package mood holds the lookup tables shared by the agent and event views:
// mood colours and labels, personality trait labels and event moods.
package mood

// Key is one of the fixed emotional states reported by the simulation.
type Key string

const (
	Happy   Key = "happy"
	Sad     Key = "sad"
	Angry   Key = "angry"
	Neutral Key = "neutral"
	Excited Key = "excited"
	Anxious Key = "anxious"
	Bored   Key = "bored"
)

var colors = map[Key]string{
	Happy:   "#10b981",
	Sad:     "#3b82f6",
	Angry:   "#ef4444",
	Neutral: "#6b7280",
	Excited: "#f59e0b",
	Anxious: "#f97316",
	Bored:   "#94a3b8",
}

var labels = map[Key]string{
	Happy:   "счастливый",
	Sad:     "грустный",
	Angry:   "раздражённый",
	Neutral: "нейтральный",
	Excited: "взволнованный",
	Anxious: "тревожный",
	Bored:   "скучный",
}

// Keys lists every defined mood key.
func Keys() []Key {
	return []Key{Happy, Sad, Angry, Neutral, Excited, Anxious, Bored}
}

// Color returns the hex colour bound to key. Unknown keys get neutral's colour.
func Color(key Key) string {
	if c, ok := colors[key]; ok {
		return c
	}
	return colors[Neutral]
}

// Label returns the localized label for key. Unknown keys get neutral's label.
func Label(key Key) string {
	if l, ok := labels[key]; ok {
		return l
	}
	return labels[Neutral]
}
