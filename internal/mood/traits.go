package mood

const (
	TraitUnknown  = "неизвестно"
	TraitBalanced = "сбалансированный"

	highThreshold = 0.7
	lowThreshold  = 0.3
)

// Personality carries the five scores in [0,1]. A nil score was not reported.
type Personality struct {
	Openness          *float64 `json:"openness"`
	Extraversion      *float64 `json:"extraversion"`
	Agreeableness     *float64 `json:"agreeableness"`
	Conscientiousness *float64 `json:"conscientiousness"`
	Neuroticism       *float64 `json:"neuroticism"`
}

type dimension struct {
	score     func(*Personality) *float64
	high, low string
}

// Order matters: labels are emitted in this sequence.
var dimensions = []dimension{
	{func(p *Personality) *float64 { return p.Openness }, "открытый", "замкнутый"},
	{func(p *Personality) *float64 { return p.Extraversion }, "экстравертный", "интровертный"},
	{func(p *Personality) *float64 { return p.Agreeableness }, "доброжелательный", "недоверчивый"},
	{func(p *Personality) *float64 { return p.Conscientiousness }, "сознательный", "беспечный"},
	{func(p *Personality) *float64 { return p.Neuroticism }, "эмоциональный", "спокойный"},
}

// Traits buckets personality scores into labels. The result is never empty.
func Traits(p *Personality) []string {
	if p == nil {
		return []string{TraitUnknown}
	}
	var traits []string
	for _, d := range dimensions {
		s := d.score(p)
		if s == nil {
			continue
		}
		switch {
		case *s > highThreshold:
			traits = append(traits, d.high)
		case *s < lowThreshold:
			traits = append(traits, d.low)
		}
	}
	if len(traits) == 0 {
		return []string{TraitBalanced}
	}
	return traits
}
