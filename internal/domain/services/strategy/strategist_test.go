package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"honeytrap-lab/internal/domain/models"
	"honeytrap-lab/pkg/logger"
)

func TestStageFor(t *testing.T) {
	cases := []struct {
		turn int
		want models.EngagementStage
	}{
		{1, models.StageEarly},
		{5, models.StageEarly},
		{6, models.StageMiddle},
		{12, models.StageMiddle},
		{13, models.StageLate},
		{50, models.StageLate},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, StageFor(tc.turn), "turn %d", tc.turn)
	}
}

func TestSelectPersonaDeterministic(t *testing.T) {
	a := SelectPersona("session-abc")
	b := SelectPersona("session-abc")
	assert.Equal(t, a.Name, b.Name)

	// Different ids spread across the roster
	names := make(map[string]struct{})
	for _, id := range []string{"s1", "s2", "s3", "s4", "s5", "s6", "s7", "s8"} {
		names[SelectPersona(id).Name] = struct{}{}
	}
	assert.Greater(t, len(names), 1)
}

func TestNextDirectiveSingleInfoRequest(t *testing.T) {
	s := New(logger.NewDefault())

	d := s.NextDirective("session-1", 1, &models.ExtractedIntelligence{})

	assert.NotEmpty(t, d.Persona)
	assert.Equal(t, models.StageEarly, d.Stage)
	assert.NotEmpty(t, d.Emotion)
	assert.NotEmpty(t, d.Tactics)
	// Nothing collected yet: phone number is the top priority
	assert.Equal(t, "phone_number", d.TargetCategory)
	assert.NotEmpty(t, d.InfoRequest)
}

func TestNextDirectiveSkipsCollectedCategories(t *testing.T) {
	s := New(logger.NewDefault())

	intel := &models.ExtractedIntelligence{
		PhoneNumbers: []string{"+919876543210"},
	}
	d := s.NextDirective("session-1", 7, intel)
	assert.Equal(t, "upi_id", d.TargetCategory)

	intel.UPIIDs = []string{"x@paytm"}
	intel.BankAccounts = []string{"123456789012"}
	d = s.NextDirective("session-1", 8, intel)
	assert.Equal(t, "link", d.TargetCategory)
}

func TestNextDirectiveStallsWhenAllCollected(t *testing.T) {
	s := New(logger.NewDefault())

	intel := &models.ExtractedIntelligence{
		PhoneNumbers:   []string{"+919876543210"},
		UPIIDs:         []string{"x@paytm"},
		BankAccounts:   []string{"123456789012"},
		PhishingLinks:  []string{"https://bad.example"},
		EmailAddresses: []string{"a@b.com"},
		ReferenceIDs:   []string{"REF-1"},
		PolicyNumbers:  []string{"POL-1"},
		OrderNumbers:   []string{"ORD-1"},
	}

	d := s.NextDirective("session-1", 14, intel)
	assert.Equal(t, "stall", d.TargetCategory)
	assert.Equal(t, StallingAsk(14), d.InfoRequest)
	assert.Equal(t, models.StageLate, d.Stage)
}

func TestNextDirectiveNilIntelligence(t *testing.T) {
	s := New(logger.NewDefault())

	d := s.NextDirective("session-1", 1, nil)
	assert.Equal(t, "phone_number", d.TargetCategory)
}

func TestStallingAskDeterministic(t *testing.T) {
	assert.Equal(t, StallingAsk(3), StallingAsk(3))
	assert.NotPanics(t, func() { StallingAsk(-5) })
}

func TestPersonaEmotionPerStage(t *testing.T) {
	for _, p := range Roster {
		for _, stage := range []models.EngagementStage{models.StageEarly, models.StageMiddle, models.StageLate} {
			assert.NotEmpty(t, p.EmotionFor(stage), "%s at %s", p.Name, stage)
		}
	}
}
