package detection

import (
	"regexp"
	"strings"

	"honeytrap-lab/internal/domain/models"
)

// Context layer: conversation-level signals over the scammer's side of
// the history. Feature layer: structural red flags in the current text.

var escalationTerms = []string{"block", "suspend", "legal", "arrest", "urgent", "immediately"}

var infoRequestTerms = []string{"otp", "upi", "account", "password", "pin", "card", "cvv"}

var trustTerms = []string{"bank", "officer", "government", "rbi", "official"}

var moneyTerms = []string{"send", "pay", "transfer", "upi", "amount"}

var orgNames = []string{"sbi", "hdfc", "icici", "axis", "rbi", "police", "income tax", "customs"}

// scoreContext evaluates the scammer messages in the history for
// escalating threats, repeated info requests, trust-then-money sequencing
// and excessive organization name-dropping. Clamped to [0,1].
func scoreContext(history []models.HistoryEntry) float64 {
	var scammerMsgs []string
	for _, m := range history {
		sender := strings.ToLower(m.Sender)
		if sender == "scammer" || sender == "unknown" {
			scammerMsgs = append(scammerMsgs, strings.ToLower(m.Text))
		}
	}
	if len(scammerMsgs) == 0 {
		return 0
	}

	score := 0.0

	// Escalating threat language across the conversation
	threatCounts := make([]int, len(scammerMsgs))
	for i, msg := range scammerMsgs {
		for _, kw := range escalationTerms {
			if strings.Contains(msg, kw) {
				threatCounts[i]++
			}
		}
	}
	if len(threatCounts) >= 2 && threatCounts[len(threatCounts)-1] > threatCounts[0] {
		score += 0.3
	}

	// Repeated requests for personal or payment information
	infoRequests := 0
	for _, msg := range scammerMsgs {
		for _, kw := range infoRequestTerms {
			if strings.Contains(msg, kw) {
				infoRequests++
				break
			}
		}
	}
	if infoRequests >= 2 {
		score += 0.25
	}

	// Trust-building early, money request later
	hasTrust := false
	for i, msg := range scammerMsgs {
		if i >= 3 {
			break
		}
		for _, kw := range trustTerms {
			if strings.Contains(msg, kw) {
				hasTrust = true
			}
		}
	}
	hasMoney := false
	for i, msg := range scammerMsgs {
		if i < 2 {
			continue
		}
		for _, kw := range moneyTerms {
			if strings.Contains(msg, kw) {
				hasMoney = true
			}
		}
	}
	if hasTrust && hasMoney {
		score += 0.3
	}

	// Claiming too many organizations is its own tell
	orgs := make(map[string]struct{})
	for _, msg := range scammerMsgs {
		for _, org := range orgNames {
			if strings.Contains(msg, org) {
				orgs[org] = struct{}{}
			}
		}
	}
	if len(orgs) >= 3 {
		score += 0.2
	}

	return min(1.0, score)
}

// Structural feature regexes

var (
	hasPhoneRe  = regexp.MustCompile(`(?:\+91|91|0)?[6-9]\d{9}`)
	hasUPIRe    = regexp.MustCompile(`\w+@\w+`)
	hasLinkRe   = regexp.MustCompile(`(?i)https?://|bit\.ly|tinyurl|goo\.gl|\w+\[dot\]\w+`)
	hasAmountRe = regexp.MustCompile(`(?i)(?:₹|rs\.?|inr)\s*[\d,]+`)
)

var urgencyFlagTerms = []string{
	"urgent", "immediately", "now", "today", "hurry", "asap",
	"fast", "quickly", "right now", "last chance", "final",
}

var authorityTerms = []string{
	"bank", "rbi", "government", "police", "income tax",
	"officer", "court", "legal", "customs", "cyber cell",
}

var threatFlagTerms = []string{
	"blocked", "suspended", "arrested", "fir", "jail", "penalty",
	"fine", "legal action", "warrant", "terminated", "suspension",
	"deactivated", "frozen",
}

var sensitiveInfoTerms = []string{
	"otp", "pin", "cvv", "password", "account number", "card number",
	"aadhaar", "pan", "verify your details", "verify your identity",
	"confirm your details", "update your details",
}

func containsAny(text string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(text, t) {
			return true
		}
	}
	return false
}

// scoreFeatures runs the structural layer. Each triggered flag adds its
// fixed weight; the score clamps to 1. Flags are reported regardless of
// the final verdict.
func scoreFeatures(text string) (float64, []models.RedFlag) {
	lower := strings.ToLower(text)
	score := 0.0
	var flags []models.RedFlag

	if containsAny(lower, urgencyFlagTerms) {
		score += 0.3
		flags = append(flags, models.FlagUrgency)
	}
	if hasPhoneRe.MatchString(text) || hasUPIRe.MatchString(text) {
		score += 0.2
		flags = append(flags, models.FlagContactInfoPresent)
	}
	if hasLinkRe.MatchString(text) {
		score += 0.25
		flags = append(flags, models.FlagLinkDetected)
	}
	if containsAny(lower, authorityTerms) {
		score += 0.3
		flags = append(flags, models.FlagAuthorityImpersonation)
	}
	if containsAny(lower, sensitiveInfoTerms) {
		score += 0.4
		flags = append(flags, models.FlagSensitiveInfoRequest)
	}
	if containsAny(lower, threatFlagTerms) {
		score += 0.35
		flags = append(flags, models.FlagThreatDetected)
	}
	if hasAmountRe.MatchString(text) {
		score += 0.15
		flags = append(flags, models.FlagMoneyAmountMentioned)
	}

	return min(1.0, score), flags
}
