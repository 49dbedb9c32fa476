package detection

import (
	"context"
	"strings"
)

// ClassProbs is a probability distribution over message classes
type ClassProbs struct {
	Legit      float64 `json:"legit"`
	Suspicious float64 `json:"suspicious"`
	Scam       float64 `json:"scam"`
}

// ScamScore is the probability mass the blend consumes
func (p ClassProbs) ScamScore() float64 {
	return p.Scam
}

// Classifier produces class probabilities for a message. Implementations
// may call out to a model service; errors are tolerated by the engine.
type Classifier interface {
	Classify(ctx context.Context, text string) (ClassProbs, error)
}

// heuristicClassifier buckets messages by counts of hard scam phrases
// and softer suspicion phrases. It is the default when no trained model
// is wired in.
type heuristicClassifier struct{}

// NewHeuristicClassifier returns the built-in keyword-bucket classifier
func NewHeuristicClassifier() Classifier {
	return heuristicClassifier{}
}

var classifierScamPhrases = []string{
	"send otp", "share otp", "blocked", "suspended", "frozen",
	"pay now", "transfer money", "click here", "verify now",
	"give cvv", "share pin", "lottery", "won prize", "claim now",
}

var classifierSuspiciousPhrases = []string{
	"verify", "urgent", "immediately", "action required",
	"security alert", "unusual activity", "kyc update",
}

func (heuristicClassifier) Classify(_ context.Context, text string) (ClassProbs, error) {
	lower := strings.ToLower(text)

	scamHits := 0
	for _, kw := range classifierScamPhrases {
		if strings.Contains(lower, kw) {
			scamHits++
		}
	}
	susHits := 0
	for _, kw := range classifierSuspiciousPhrases {
		if strings.Contains(lower, kw) {
			susHits++
		}
	}

	switch {
	case scamHits >= 2:
		return ClassProbs{Legit: 0.1, Suspicious: 0.15, Scam: 0.75}, nil
	case scamHits == 1:
		return ClassProbs{Legit: 0.2, Suspicious: 0.3, Scam: 0.5}, nil
	case susHits >= 2:
		return ClassProbs{Legit: 0.25, Suspicious: 0.6, Scam: 0.15}, nil
	case susHits == 1:
		return ClassProbs{Legit: 0.4, Suspicious: 0.45, Scam: 0.15}, nil
	default:
		return ClassProbs{Legit: 0.7, Suspicious: 0.2, Scam: 0.1}, nil
	}
}
