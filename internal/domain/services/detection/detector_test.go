package detection

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"honeytrap-lab/internal/domain/models"
	"honeytrap-lab/pkg/logger"
)

func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	return NewEngine(logger.NewDefault(), opts...)
}

func TestAnalyzeEmptyText(t *testing.T) {
	e := newTestEngine(t)

	result := e.Analyze(context.Background(), "", nil)

	assert.False(t, result.IsScam)
	assert.Zero(t, result.Confidence)
	assert.Equal(t, models.ScamTypeUnknown, result.ScamType)

	result = e.Analyze(context.Background(), "   \t\n  ", nil)
	assert.False(t, result.IsScam)
}

func TestAnalyzeShortMessageWithKeyword(t *testing.T) {
	e := newTestEngine(t)

	result := e.Analyze(context.Background(), "share OTP", nil)

	assert.True(t, result.IsScam)
	assert.InDelta(t, 0.6, result.Confidence, 0.001)
	assert.Equal(t, models.ScamTypeOTPTheft, result.ScamType)
	assert.Contains(t, result.MatchedKeywords, "otp")
}

func TestAnalyzeShortMessageBenign(t *testing.T) {
	e := newTestEngine(t)

	result := e.Analyze(context.Background(), "hello there", nil)

	assert.False(t, result.IsScam)
	assert.InDelta(t, 0.1, result.Confidence, 0.001)
}

func TestAnalyzeObviousScam(t *testing.T) {
	e := newTestEngine(t)

	text := "URGENT: Your SBI account has been blocked. Share your OTP immediately to verify your identity or face legal action."
	result := e.Analyze(context.Background(), text, nil)

	assert.True(t, result.IsScam)
	assert.Greater(t, result.Confidence, 0.5)
	assert.NotEmpty(t, result.MatchedKeywords)
	assert.NotEmpty(t, result.MatchedPatterns)
	assert.NotEqual(t, models.ScamTypeUnknown, result.ScamType)
	assert.Positive(t, result.Components.Keyword)
	assert.Positive(t, result.Components.Pattern)
}

func TestAnalyzeBenignMessage(t *testing.T) {
	e := newTestEngine(t)

	text := "Hey, are we still meeting for lunch tomorrow at the usual place?"
	result := e.Analyze(context.Background(), text, nil)

	assert.False(t, result.IsScam)
	assert.Less(t, result.Confidence, e.Threshold())
}

func TestAnalyzeLotteryScamType(t *testing.T) {
	e := newTestEngine(t)

	text := "Congratulations! You have won a lottery prize of Rs 25 lakh. Pay the processing fee to claim your reward now."
	result := e.Analyze(context.Background(), text, nil)

	assert.True(t, result.IsScam)
	assert.Equal(t, models.ScamTypePrizeLottery, result.ScamType)
}

func TestAnalyzeConfidenceClamped(t *testing.T) {
	e := newTestEngine(t)

	// Stacks every layer plus the pressure boost
	text := "URGENT URGENT your account is blocked suspended frozen, share OTP PIN CVV immediately or police will arrest you, jail warrant FIR, last chance, send money via UPI now or legal action within 24 hours"
	result := e.Analyze(context.Background(), text, nil)

	assert.True(t, result.IsScam)
	assert.LessOrEqual(t, result.Confidence, 1.0)
}

func TestAnalyzeUsesHistoryContext(t *testing.T) {
	e := newTestEngine(t)
	now := time.Now()

	history := []models.HistoryEntry{
		{Sender: "scammer", Text: "Hello sir, I am calling from your bank.", Timestamp: now},
		{Sender: "user", Text: "Oh, okay.", Timestamp: now},
		{Sender: "scammer", Text: "We noticed a problem. Please share your account number.", Timestamp: now},
		{Sender: "user", Text: "Which problem?", Timestamp: now},
		{Sender: "scammer", Text: "To fix it you must transfer money immediately.", Timestamp: now},
	}

	withHistory := e.Analyze(context.Background(), "Please share your OTP now to complete verification", history)
	withoutHistory := e.Analyze(context.Background(), "Please share your OTP now to complete verification", nil)

	assert.True(t, withHistory.IsScam)
	assert.GreaterOrEqual(t, withHistory.Confidence, withoutHistory.Confidence)
}

func TestWithThresholdOption(t *testing.T) {
	e := newTestEngine(t, WithThreshold(0.9))
	assert.InDelta(t, 0.9, e.Threshold(), 0.001)

	// Non-positive thresholds keep the default
	e = newTestEngine(t, WithThreshold(0))
	assert.InDelta(t, DefaultScamThreshold, e.Threshold(), 0.001)
}

type panickyClassifier struct{}

func (panickyClassifier) Classify(ctx context.Context, text string) (ClassProbs, error) {
	panic("classifier exploded")
}

func TestAnalyzeSurvivesClassifierPanic(t *testing.T) {
	e := newTestEngine(t, WithClassifier(panickyClassifier{}))

	text := "Your account is blocked, share OTP immediately to verify"
	require.NotPanics(t, func() {
		result := e.Analyze(context.Background(), text, nil)
		// Rule layers alone still cross the threshold
		assert.True(t, result.IsScam)
		assert.Zero(t, result.Components.Classifier)
	})
}

func TestInferScamType(t *testing.T) {
	cases := []struct {
		text string
		want models.ScamType
	}{
		{"please share your otp", models.ScamTypeOTPTheft},
		{"send money to my upi", models.ScamTypeUPIFraud},
		{"your bank account needs attention", models.ScamTypeBankImpersonation},
		{"we will invest for guaranteed returns", models.ScamTypeInvestment},
		{"nothing suspicious here", models.ScamTypeUnknown},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, inferScamType(tc.text), tc.text)
	}
}

func TestScoreKeywordsNormalization(t *testing.T) {
	score, matched := scoreKeywords("otp blocked suspended urgent arrested jail warrant cvv")
	assert.InDelta(t, 1.0, score, 0.001)
	assert.GreaterOrEqual(t, len(matched), 5)

	score, matched = scoreKeywords("a perfectly ordinary sentence with nothing odd")
	assert.Zero(t, score)
	assert.Empty(t, matched)
}

func TestAnalyzeBlockedAccountOTPRedFlags(t *testing.T) {
	e := newTestEngine(t)

	result := e.Analyze(context.Background(), "Your account will be blocked today, share OTP now", nil)

	assert.True(t, result.IsScam)
	assert.GreaterOrEqual(t, result.Confidence, DefaultScamThreshold)
	assert.Contains(t, result.RedFlags, models.FlagUrgency)
	assert.Contains(t, result.RedFlags, models.FlagSensitiveInfoRequest)
}

func TestAnalyzeMatchedTermsDeterministic(t *testing.T) {
	e := newTestEngine(t)
	text := "URGENT: your account is blocked, share your OTP and CVV immediately " +
		"or police will arrest you, verify your PIN and click the link now"

	first := e.Analyze(context.Background(), text, nil)
	require.NotEmpty(t, first.MatchedKeywords)

	for i := 0; i < 20; i++ {
		again := e.Analyze(context.Background(), text, nil)
		assert.Equal(t, first.MatchedKeywords, again.MatchedKeywords)
		assert.Equal(t, first.MatchedPatterns, again.MatchedPatterns)
		assert.Equal(t, first.RedFlags, again.RedFlags)
		assert.Equal(t, first.Confidence, again.Confidence)
	}
}

func TestAnalyzePressureTermsDeterministic(t *testing.T) {
	text := "act fast, urgent deadline today or your account will be blocked and you will be arrested"

	first := AnalyzePressure(text)
	require.NotEmpty(t, first.UrgencyTerms)
	require.NotEmpty(t, first.ThreatTerms)

	for i := 0; i < 20; i++ {
		again := AnalyzePressure(text)
		assert.Equal(t, first.UrgencyTerms, again.UrgencyTerms)
		assert.Equal(t, first.ThreatTerms, again.ThreatTerms)
	}
}
