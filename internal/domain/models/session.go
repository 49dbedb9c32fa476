package models

import "time"

// SessionState is the lifecycle state of an engagement session
type SessionState string

const (
	SessionActive     SessionState = "active"
	SessionFinalizing SessionState = "finalizing"
	SessionCompleted  SessionState = "completed"
)

// EngagementStage is the conversation phase, derived from turn count
type EngagementStage string

const (
	StageEarly  EngagementStage = "early"
	StageMiddle EngagementStage = "middle"
	StageLate   EngagementStage = "late"
)

// TerminationReason records why a session was finalized
type TerminationReason string

const (
	ReasonMaxTurns        TerminationReason = "max_turns"
	ReasonMaxDuration     TerminationReason = "max_duration"
	ReasonInactivity      TerminationReason = "inactivity"
	ReasonSufficientIntel TerminationReason = "sufficient_intelligence"
	ReasonForced          TerminationReason = "forced"
)

// HistoryEntry is a single exchange retained for reply generation
type HistoryEntry struct {
	Sender    string    `json:"sender"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// SessionView is a read-only snapshot of a session for API responses
type SessionView struct {
	SessionID         string                `json:"sessionId"`
	State             SessionState          `json:"state"`
	Stage             EngagementStage       `json:"stage"`
	Persona           string                `json:"persona"`
	TurnCount         int                   `json:"turnCount"`
	ScamDetected      bool                  `json:"scamDetected"`
	Confidence        float64               `json:"confidence"`
	ScamTypes         []ScamType            `json:"scamTypes,omitempty"`
	RedFlags          []RedFlag             `json:"redFlags,omitempty"`
	Intelligence      ExtractedIntelligence `json:"extractedIntelligence"`
	StartTime         time.Time             `json:"startTime"`
	LastMessageTime   time.Time             `json:"lastMessageTime"`
	TerminationReason TerminationReason     `json:"terminationReason,omitempty"`
}

// EngineStats aggregates lifecycle counters for the stats endpoints
type EngineStats struct {
	ActiveSessions    int                         `json:"active_sessions"`
	SessionsStarted   int64                       `json:"sessions_started"`
	SessionsFinalized int64                       `json:"sessions_finalized"`
	MessagesProcessed int64                       `json:"messages_processed"`
	ScamsDetected     int64                       `json:"scams_detected"`
	ReportsDelivered  int64                       `json:"reports_delivered"`
	ReportsFailed     int64                       `json:"reports_failed"`
	FinalizedByReason map[TerminationReason]int64 `json:"finalized_by_reason"`
}
