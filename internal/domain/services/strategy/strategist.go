package strategy

import (
	"honeytrap-lab/internal/domain/models"
	"honeytrap-lab/pkg/logger"
)

// Strategist plans the decoy's next conversational move
type Strategist struct {
	logger *logger.Logger
}

// New creates a strategist
func New(log *logger.Logger) *Strategist {
	return &Strategist{logger: log.WithComponent("strategy")}
}

// infoTarget pairs an intelligence category with the question that
// elicits it. Priority order: payment identifiers first, references last.
type infoTarget struct {
	category string
	question string
	have     func(*models.ExtractedIntelligence) bool
}

var infoTargets = []infoTarget{
	{"phone_number", "What number can I call you back on?", (*models.ExtractedIntelligence).HasPhones},
	{"upi_id", "Where should I send payment? What is the UPI ID?", (*models.ExtractedIntelligence).HasUPI},
	{"bank_account", "What bank account should I transfer to?", (*models.ExtractedIntelligence).HasBankDetails},
	{"link", "Can you send me the official link?", (*models.ExtractedIntelligence).HasLinks},
	{"email", "Can you email me the details? What is your email address?", func(i *models.ExtractedIntelligence) bool { return len(i.EmailAddresses) > 0 }},
	{"reference_id", "What is the case number or reference ID?", func(i *models.ExtractedIntelligence) bool { return len(i.ReferenceIDs) > 0 }},
	{"policy_number", "What is my policy number?", func(i *models.ExtractedIntelligence) bool { return len(i.PolicyNumbers) > 0 }},
	{"order_number", "What is the order or transaction number?", func(i *models.ExtractedIntelligence) bool { return len(i.OrderNumbers) > 0 }},
}

// NextDirective plans the next turn. The directive always carries
// exactly one concrete information request: the highest-priority
// category not yet collected, or a stalling ask once everything the
// roster targets has been harvested.
func (s *Strategist) NextDirective(sessionID string, turn int, intel *models.ExtractedIntelligence) models.Directive {
	stage := StageFor(turn)
	persona := SelectPersona(sessionID)
	plan := stagePlans[stage]

	category, request := s.pickRequest(turn, intel)

	d := models.Directive{
		Persona:        persona.Name,
		Stage:          stage,
		Emotion:        persona.EmotionFor(stage),
		Tactics:        plan.tactics,
		InfoRequest:    request,
		TargetCategory: category,
	}

	s.logger.Debug().
		Str("session_id", sessionID).
		Int("turn", turn).
		Str("stage", string(stage)).
		Str("target", category).
		Msg("directive planned")

	return d
}

// PersonaFor exposes the full persona record for reply generation
func (s *Strategist) PersonaFor(sessionID string) Persona {
	return SelectPersona(sessionID)
}

func (s *Strategist) pickRequest(turn int, intel *models.ExtractedIntelligence) (string, string) {
	if intel == nil {
		intel = &models.ExtractedIntelligence{}
	}
	for _, t := range infoTargets {
		if !t.have(intel) {
			return t.category, t.question
		}
	}
	return "stall", StallingAsk(turn)
}
