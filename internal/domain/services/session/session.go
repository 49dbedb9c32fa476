package session

import (
	"sync"
	"time"

	"honeytrap-lab/internal/domain/models"
	"honeytrap-lab/internal/domain/services/strategy"
)

// Session is one live engagement with a scammer. All mutable fields are
// guarded by mu; the registry lock is never held while touching them.
type Session struct {
	mu sync.Mutex

	id      string
	persona strategy.Persona

	state             models.SessionState
	turnCount         int
	startTime         time.Time
	lastMessageTime   time.Time
	scamDetected      bool
	maxConfidence     float64
	scamTypes         []models.ScamType
	redFlags          []models.RedFlag
	intel             models.ExtractedIntelligence
	history           []models.HistoryEntry
	terminationReason models.TerminationReason

	inactivityTimer *time.Timer
}

func newSession(id string, now time.Time) *Session {
	return &Session{
		id:              id,
		persona:         strategy.SelectPersona(id),
		state:           models.SessionActive,
		startTime:       now,
		lastMessageTime: now,
	}
}

// recordDetection folds one detection result into the session.
// ScamDetected latches true and never resets; scam types and red
// flags accumulate as deduplicated unions across turns.
func (s *Session) recordDetection(result models.DetectionResult) {
	if result.IsScam {
		s.scamDetected = true
	}
	if result.Confidence > s.maxConfidence {
		s.maxConfidence = result.Confidence
	}
	for _, f := range result.RedFlags {
		if !containsFlag(s.redFlags, f) {
			s.redFlags = append(s.redFlags, f)
		}
	}
	if result.ScamType != "" && result.ScamType != models.ScamTypeUnknown {
		if !containsType(s.scamTypes, result.ScamType) {
			s.scamTypes = append(s.scamTypes, result.ScamType)
		}
	}
}

func containsFlag(flags []models.RedFlag, f models.RedFlag) bool {
	for _, x := range flags {
		if x == f {
			return true
		}
	}
	return false
}

func containsType(types []models.ScamType, t models.ScamType) bool {
	for _, x := range types {
		if x == t {
			return true
		}
	}
	return false
}

// stopTimer stops the inactivity timer if armed. Caller holds s.mu.
func (s *Session) stopTimer() {
	if s.inactivityTimer != nil {
		s.inactivityTimer.Stop()
		s.inactivityTimer = nil
	}
}

// view snapshots the session for API responses. Caller holds s.mu.
func (s *Session) view() models.SessionView {
	return models.SessionView{
		SessionID:         s.id,
		State:             s.state,
		Stage:             strategy.StageFor(s.turnCount),
		Persona:           s.persona.Name,
		TurnCount:         s.turnCount,
		ScamDetected:      s.scamDetected,
		Confidence:        s.maxConfidence,
		ScamTypes:         append([]models.ScamType(nil), s.scamTypes...),
		RedFlags:          append([]models.RedFlag(nil), s.redFlags...),
		Intelligence:      s.intel,
		StartTime:         s.startTime,
		LastMessageTime:   s.lastMessageTime,
		TerminationReason: s.terminationReason,
	}
}

// View snapshots the session under its lock
func (s *Session) View() models.SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view()
}

// historySnapshot copies the history for lock-free reply generation.
// Caller holds s.mu.
func (s *Session) historySnapshot() []models.HistoryEntry {
	return append([]models.HistoryEntry(nil), s.history...)
}

// dominantScamType picks the first accumulated type. Pattern weights
// already ordered accumulation by strength per message; the first type
// recorded is the one that tripped detection. Caller holds s.mu.
func (s *Session) dominantScamType() models.ScamType {
	if len(s.scamTypes) > 0 {
		return s.scamTypes[0]
	}
	return models.ScamTypeUnknown
}

// buildReport assembles the final report snapshot. Caller holds s.mu.
func (s *Session) buildReport() models.FinalReport {
	duration := s.lastMessageTime.Sub(s.startTime)
	if duration < 0 {
		duration = 0
	}
	return models.FinalReport{
		SessionID:                 s.id,
		ScamDetected:              s.scamDetected,
		ScamType:                  s.dominantScamType(),
		ConfidenceLevel:           s.maxConfidence,
		TotalMessagesExchanged:    s.turnCount,
		EngagementDurationSeconds: int64(duration.Seconds()),
		ExtractedIntelligence:     s.intel,
		AgentNotes:                s.buildAgentNotes(),
	}
}
