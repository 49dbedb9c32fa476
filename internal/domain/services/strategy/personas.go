package strategy

import (
	"hash/fnv"

	"honeytrap-lab/internal/domain/models"
)

// Persona is a decoy victim identity the engagement plays for a session
type Persona struct {
	Key       string                            `json:"key"`
	Name      string                            `json:"name"`
	AgeRange  string                            `json:"age_range"`
	TechLevel string                            `json:"tech_level"`
	Traits    string                            `json:"traits"`
	Style     string                            `json:"style"`
	Emotions  map[models.EngagementStage]string `json:"emotions"`
}

// Roster is the fixed persona set. Order matters: selection indexes into
// it by session id hash, so reordering reshuffles existing sessions.
var Roster = []Persona{
	{
		Key:       "elderly",
		Name:      "Kamla Devi",
		AgeRange:  "60-70",
		TechLevel: "very low",
		Traits:    "confused, polite, trusting, not tech-savvy, religious",
		Style:     "formal, uses sir/madam, asks basic questions, mentions family",
		Emotions: map[models.EngagementStage]string{
			models.StageEarly:  "worried and confused",
			models.StageMiddle: "anxious but cooperative",
			models.StageLate:   "increasingly doubtful, mentions asking family",
		},
	},
	{
		Key:       "professional",
		Name:      "Rahul Sharma",
		AgeRange:  "28-40",
		TechLevel: "moderate",
		Traits:    "busy, cautious, somewhat tech-aware, professional",
		Style:     "professional, asks for verification, time-constrained",
		Emotions: map[models.EngagementStage]string{
			models.StageEarly:  "slightly concerned but busy",
			models.StageMiddle: "cautious and demanding proof",
			models.StageLate:   "suspicious and questioning legitimacy",
		},
	},
	{
		Key:       "student",
		Name:      "Priya Patel",
		AgeRange:  "19-24",
		TechLevel: "moderate-high",
		Traits:    "curious, casual, somewhat savvy but inexperienced with banking",
		Style:     "informal, casual English, asks friends/family",
		Emotions: map[models.EngagementStage]string{
			models.StageEarly:  "confused and slightly worried",
			models.StageMiddle: "curious but hesitant",
			models.StageLate:   "suspicious, mentions telling parents",
		},
	},
	{
		Key:       "homemaker",
		Name:      "Sunita Verma",
		AgeRange:  "35-50",
		TechLevel: "low",
		Traits:    "worried, family-focused, relies on spouse, careful with money",
		Style:     "concerned, mentions family, seeks reassurance",
		Emotions: map[models.EngagementStage]string{
			models.StageEarly:  "very worried about family finances",
			models.StageMiddle: "hesitant, wants to consult husband",
			models.StageLate:   "growing doubt, wants to visit bank in person",
		},
	},
	{
		Key:       "business_owner",
		Name:      "Ajay Gupta",
		AgeRange:  "40-55",
		TechLevel: "moderate",
		Traits:    "practical, transaction-focused, time-sensitive, sharp",
		Style:     "direct, asks about business impact, wants specifics",
		Emotions: map[models.EngagementStage]string{
			models.StageEarly:  "concerned about business disruption",
			models.StageMiddle: "demanding details and verification",
			models.StageLate:   "pointing out inconsistencies, threatening to call bank",
		},
	},
}

// SelectPersona picks the persona for a session. FNV-1a keeps the
// choice stable across restarts, unlike runtime map iteration or a
// seeded hash.
func SelectPersona(sessionID string) Persona {
	h := fnv.New32a()
	h.Write([]byte(sessionID))
	return Roster[int(h.Sum32())%len(Roster)]
}

// EmotionFor returns the persona's emotional register for a stage
func (p Persona) EmotionFor(stage models.EngagementStage) string {
	if e, ok := p.Emotions[stage]; ok {
		return e
	}
	return "neutral"
}
