package models

import "time"

// MessageMeta carries channel context supplied by the message source
type MessageMeta struct {
	Channel  string `json:"channel,omitempty"`
	Language string `json:"language,omitempty"`
	Locale   string `json:"locale,omitempty"`
	Sender   string `json:"sender,omitempty"`
}

// ProcessMessageRequest is one inbound scammer message
type ProcessMessageRequest struct {
	SessionID string      `json:"session_id"`
	Text      string      `json:"text"`
	Timestamp *time.Time  `json:"timestamp,omitempty"`
	Meta      MessageMeta `json:"metadata,omitempty"`
}

// ProcessMessageResponse is the per-message engagement decision
type ProcessMessageResponse struct {
	SessionID      string                `json:"session_id"`
	Stage          EngagementStage       `json:"stage"`
	Reply          string                `json:"reply"`
	Directive      *Directive            `json:"directive,omitempty"`
	Detection      DetectionResult       `json:"detection"`
	Intelligence   ExtractedIntelligence `json:"intelligence"`
	ShouldFinalize bool                  `json:"should_finalize"`
	State          SessionState          `json:"state"`
}

// AnalyzeRequest asks for stateless detection and extraction of one text
type AnalyzeRequest struct {
	Text string `json:"text"`
}

// AnalyzeResponse pairs the detection verdict with extracted identifiers
type AnalyzeResponse struct {
	Detection    DetectionResult       `json:"detection"`
	Intelligence ExtractedIntelligence `json:"intelligence"`
	CachedAt     *time.Time            `json:"cached_at,omitempty"`
}

// Directive is the guidance handed to the reply generator for one turn
type Directive struct {
	Persona        string          `json:"persona"`
	Stage          EngagementStage `json:"stage"`
	Emotion        string          `json:"emotion"`
	Tactics        []string        `json:"tactics,omitempty"`
	InfoRequest    string          `json:"info_request"`
	TargetCategory string          `json:"target_category,omitempty"`
}
