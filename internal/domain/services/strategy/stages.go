package strategy

import "honeytrap-lab/internal/domain/models"

// Stage boundaries by turn count. Turn count never decreases, so the
// stage never regresses.
const (
	earlyStageMaxTurn  = 5
	middleStageMaxTurn = 12
)

// StageFor maps a turn count to the engagement stage
func StageFor(turn int) models.EngagementStage {
	switch {
	case turn <= earlyStageMaxTurn:
		return models.StageEarly
	case turn <= middleStageMaxTurn:
		return models.StageMiddle
	default:
		return models.StageLate
	}
}

type stagePlan struct {
	goal      string
	tactics   []string
	questions []string
}

var stagePlans = map[models.EngagementStage]stagePlan{
	models.StageEarly: {
		goal:    "appear_vulnerable",
		tactics: []string{"ask_basic_questions", "show_concern", "be_polite", "seem_naive"},
		questions: []string{
			"What happened to my account?",
			"Who is calling? Which bank?",
			"Why are you contacting me?",
			"Is this very serious?",
			"What should I do?",
		},
	},
	models.StageMiddle: {
		goal:    "extract_contact_info",
		tactics: []string{"ask_verification", "show_hesitation", "request_details", "stall"},
		questions: []string{
			"Can you give me your employee ID?",
			"What is the official number I can call back?",
			"Where exactly should I send the payment?",
			"Can you send me an official email about this?",
			"What is your UPI ID for verification?",
		},
	},
	models.StageLate: {
		goal:    "maximize_extraction_show_suspicion",
		tactics: []string{"point_out_inconsistencies", "ask_hard_questions", "demand_proof"},
		questions: []string{
			"Why didn't the bank send me an SMS about this?",
			"I want to call the bank directly to verify.",
			"This seems unusual. Banks don't usually call like this.",
			"Can I visit the branch instead?",
			"Let me check with my family first.",
		},
	},
}

// stallingAsks keep the scammer talking once every category is collected
var stallingAsks = []string{
	"Let me check with my family first, please hold.",
	"I need to find my documents. Can you wait a moment?",
	"Can you call back in 10 minutes? I am in the middle of something.",
	"I am having trouble understanding. Can you explain again slowly?",
	"Wait, let me get my reading glasses to see the message properly.",
	"My phone battery is low. Can you give me a number to call back?",
	"Let me write this down. Can you repeat that slowly?",
	"I need to go to the other room to find my bank passbook.",
}

// StallingAsk returns a deterministic stalling line for a turn
func StallingAsk(turn int) string {
	if turn < 0 {
		turn = 0
	}
	return stallingAsks[turn%len(stallingAsks)]
}
