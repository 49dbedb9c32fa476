package detection

import (
	"context"
	"fmt"
	"math"
	"strings"

	"honeytrap-lab/internal/domain/models"
	"honeytrap-lab/pkg/logger"
)

// DefaultScamThreshold is tuned low: a false positive costs a wasted
// engagement, a false negative loses the scammer entirely.
const DefaultScamThreshold = 0.35

// Blend weights for the rule layers and the classifier
const (
	keywordWeight    = 0.30
	patternWeight    = 0.30
	contextWeight    = 0.20
	featureWeight    = 0.20
	ruleBlendWeight  = 0.75
	classifierWeight = 0.25
	pressureBoost    = 0.10
)

// Engine scores messages for fraud likelihood using layered rule
// scorers blended with a classifier. Safe for concurrent use.
type Engine struct {
	logger     *logger.Logger
	patterns   *PatternDB
	classifier Classifier
	threshold  float64
}

// Option configures an Engine
type Option func(*Engine)

// WithThreshold overrides the scam decision threshold
func WithThreshold(t float64) Option {
	return func(e *Engine) {
		if t > 0 {
			e.threshold = t
		}
	}
}

// WithClassifier swaps in a different classifier implementation
func WithClassifier(c Classifier) Option {
	return func(e *Engine) {
		if c != nil {
			e.classifier = c
		}
	}
}

// NewEngine creates a detection engine with the built-in rule set
func NewEngine(log *logger.Logger, opts ...Option) *Engine {
	e := &Engine{
		logger:     log.WithComponent("detection"),
		patterns:   NewPatternDB(),
		classifier: NewHeuristicClassifier(),
		threshold:  DefaultScamThreshold,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Threshold returns the configured scam decision threshold
func (e *Engine) Threshold() float64 {
	return e.threshold
}

// Analyze scores a single message against the full layer stack. It never
// returns an error: a failing layer contributes zero and the remaining
// layers still produce a verdict.
func (e *Engine) Analyze(ctx context.Context, text string, history []models.HistoryEntry) models.DetectionResult {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.DetectionResult{ScamType: models.ScamTypeUnknown}
	}

	if len(strings.Fields(text)) < 3 {
		return e.analyzeShort(text)
	}

	var (
		kwMatched   []string
		patMatched  []string
		typeWeights map[models.ScamType]float64
		flags       []models.RedFlag
		scores      models.ComponentScores
	)

	e.runLayer("keywords", func() {
		scores.Keyword, kwMatched = scoreKeywords(text)
	})
	e.runLayer("patterns", func() {
		scores.Pattern, patMatched, typeWeights = e.patterns.Score(text)
	})
	e.runLayer("context", func() {
		scores.Context = scoreContext(history)
	})
	e.runLayer("features", func() {
		scores.Feature, flags = scoreFeatures(text)
	})
	e.runLayer("classifier", func() {
		probs, err := e.classifier.Classify(ctx, text)
		if err != nil {
			e.logger.Warn().Err(err).Msg("classifier failed, contributing zero")
			return
		}
		scores.Classifier = probs.ScamScore()
	})

	ruleScore := scores.Keyword*keywordWeight +
		scores.Pattern*patternWeight +
		scores.Context*contextWeight +
		scores.Feature*featureWeight
	confidence := ruleScore*ruleBlendWeight + scores.Classifier*classifierWeight

	pressure := AnalyzePressure(text)
	if pressure.Combined > 0.5 {
		confidence += pressureBoost
	}
	confidence = clamp01(confidence)

	scamType := DominantType(typeWeights)
	isScam := confidence >= e.threshold
	if isScam && scamType == models.ScamTypeUnknown {
		scamType = inferScamType(text)
	}

	result := models.DetectionResult{
		IsScam:          isScam,
		Confidence:      round3(confidence),
		ScamType:        scamType,
		RedFlags:        flags,
		MatchedKeywords: kwMatched,
		MatchedPatterns: patMatched,
		Components:      scores,
	}

	e.logger.Debug().
		Bool("is_scam", isScam).
		Float64("confidence", result.Confidence).
		Str("scam_type", string(scamType)).
		Int("red_flags", len(flags)).
		Msg("message analyzed")

	return result
}

// analyzeShort handles messages under three words with a reduced check
func (e *Engine) analyzeShort(text string) models.DetectionResult {
	matched := matchShortMessage(text)
	if len(matched) == 0 {
		return models.DetectionResult{
			Confidence: 0.1,
			ScamType:   models.ScamTypeUnknown,
		}
	}
	return models.DetectionResult{
		IsScam:          true,
		Confidence:      0.6,
		ScamType:        inferScamType(text),
		MatchedKeywords: matched,
		MatchedPatterns: []string{fmt.Sprintf("short_msg_keywords:%d", len(matched))},
	}
}

// runLayer isolates one scorer so a panic degrades to a zero score
func (e *Engine) runLayer(name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error().Interface("panic", r).Str("layer", name).Msg("scoring layer panicked")
		}
	}()
	fn()
}

// keyword groups used to infer a type when no pattern rule matched
var typeInferenceTerms = []struct {
	scamType models.ScamType
	terms    []string
}{
	{models.ScamTypeOTPTheft, []string{"otp", "pin", "cvv", "password", "verification code", "mpin"}},
	{models.ScamTypeUPIFraud, []string{"upi", "paytm", "phonepe", "gpay", "send money", "transfer"}},
	{models.ScamTypeBankImpersonation, []string{"bank", "account", "sbi", "hdfc", "icici", "rbi"}},
	{models.ScamTypePhishingLink, []string{"click", "link", "visit", "website"}},
	{models.ScamTypeInvestment, []string{"invest", "returns", "double money", "scheme"}},
	{models.ScamTypeJob, []string{"work from home", "part time", "registration fee"}},
	{models.ScamTypePrizeLottery, []string{"won", "lottery", "prize", "winner", "congratulations"}},
	{models.ScamTypeTaxLegal, []string{"income tax", "legal", "court", "police", "arrest"}},
}

func inferScamType(text string) models.ScamType {
	lower := strings.ToLower(text)
	for _, group := range typeInferenceTerms {
		for _, term := range group.terms {
			if strings.Contains(lower, term) {
				return group.scamType
			}
		}
	}
	return models.ScamTypeUnknown
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
