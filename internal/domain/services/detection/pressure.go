package detection

import (
	"regexp"
	"strings"
)

// Pressure-tactic analysis: urgency and threat intensity, combined into
// a single pressure score used to bump the final confidence.

var urgencyKeywords = map[string]float64{
	// Critical
	"immediately": 1.0, "right now": 1.0, "asap": 1.0,
	"within 1 hour": 1.0, "expire now": 1.0,
	// High
	"today": 0.8, "urgent": 0.8, "now": 0.8, "hurry": 0.8,
	"within 24 hours": 0.8, "last chance": 0.8, "final notice": 0.8,
	"final warning": 0.8, "deadline": 0.8, "expires": 0.8,
	"time is running out": 0.8, "act fast": 0.8,
	// Medium
	"soon": 0.5, "quickly": 0.5, "fast": 0.5,
	"as soon as possible": 0.5, "don't delay": 0.5,
	"time sensitive": 0.5, "limited time": 0.5,
	"must": 0.5, "need to": 0.5, "have to": 0.5,
	"required": 0.5, "mandatory": 0.5,
	// Low
	"please do": 0.3, "kindly": 0.3, "at the earliest": 0.3,
	"action required": 0.3, "action needed": 0.3,
	// Hindi
	"turant": 0.8, "abhi": 0.8, "jaldi": 0.7,
	"foran": 0.8, "tatkaal": 0.8,
}

var threatKeywords = map[string]float64{
	// Critical
	"arrested": 1.0, "jail": 1.0, "prison": 1.0,
	"warrant": 1.0, "fir": 1.0, "criminal case": 1.0,
	// High
	"blocked": 0.8, "suspended": 0.8, "frozen": 0.8,
	"closed": 0.8, "terminated": 0.8, "deactivated": 0.8,
	"legal action": 0.8, "court": 0.8, "police": 0.8,
	"blacklisted": 0.8, "permanently closed": 0.8,
	"legal proceedings": 0.8, "prosecution": 0.8,
	// Medium
	"fine": 0.5, "penalty": 0.5, "charges": 0.5,
	"restricted": 0.5, "disabled": 0.5, "locked": 0.5,
	"under investigation": 0.5, "suspicious activity": 0.5,
	"unauthorized": 0.5, "security breach": 0.5,
	// Low
	"problem": 0.3, "issue": 0.3, "risk": 0.3,
	"warning": 0.3, "alert": 0.3, "notice": 0.3,
	// Hindi
	"band": 0.8, "giraftar": 1.0, "jurmana": 0.5,
	"khatam": 0.7, "khatre": 0.5,
}

type weightedPattern struct {
	re     *regexp.Regexp
	weight float64
}

var threatPatterns = []weightedPattern{
	{regexp.MustCompile(`(?i)your\s+account\s+(?:will be|has been|is)\s+(?:blocked|suspended|frozen|closed|terminated)`), 0.9},
	{regexp.MustCompile(`(?i)(?:legal|police|court)\s+action\s+(?:will be|has been)\s+(?:taken|initiated)`), 0.9},
	{regexp.MustCompile(`(?i)(?:will|shall)\s+be\s+(?:arrested|prosecuted|penalized)`), 1.0},
	{regexp.MustCompile(`(?i)(?:fine|penalty)\s+of\s+(?:rs|inr|₹)?\s*\d+`), 0.7},
	{regexp.MustCompile(`(?i)(?:last|final)\s+(?:warning|notice|chance)`), 0.8},
	{regexp.MustCompile(`(?i)(?:failure|failing)\s+to\s+(?:comply|respond|act)`), 0.7},
	{regexp.MustCompile(`(?i)(?:within|before)\s+\d+\s+(?:hours?|minutes?|days?)`), 0.7},
	{regexp.MustCompile(`(?i)no\s+(?:more|further)\s+(?:time|delay|extension)`), 0.8},
}

// PressureAnalysis summarizes urgency and threat intensity for one message
type PressureAnalysis struct {
	UrgencyScore float64  `json:"urgency_score"`
	ThreatScore  float64  `json:"threat_score"`
	Combined     float64  `json:"combined_pressure_score"`
	UrgencyTerms []string `json:"urgency_terms,omitempty"`
	ThreatTerms  []string `json:"threat_terms,omitempty"`
}

// Sorted term order keeps repeated analysis of the same text identical.
var (
	urgencyTermOrder = sortedTerms(urgencyKeywords)
	threatTermOrder  = sortedTerms(threatKeywords)
)

// AnalyzePressure scores urgency and threat language. Each side
// normalizes 3 points of keyword weight to 1.0; the combined score
// weighs threats slightly above urgency.
func AnalyzePressure(text string) PressureAnalysis {
	lower := strings.ToLower(text)
	var a PressureAnalysis

	var urgencyTotal float64
	for _, kw := range urgencyTermOrder {
		if strings.Contains(lower, kw) {
			urgencyTotal += urgencyKeywords[kw]
			a.UrgencyTerms = append(a.UrgencyTerms, kw)
		}
	}
	a.UrgencyScore = min(1.0, urgencyTotal/3.0)

	var threatTotal float64
	for _, kw := range threatTermOrder {
		if strings.Contains(lower, kw) {
			threatTotal += threatKeywords[kw]
			a.ThreatTerms = append(a.ThreatTerms, kw)
		}
	}
	for _, p := range threatPatterns {
		if p.re.MatchString(text) {
			threatTotal += p.weight
		}
	}
	a.ThreatScore = min(1.0, threatTotal/3.0)

	a.Combined = a.UrgencyScore*0.45 + a.ThreatScore*0.55
	return a
}
