package models

import "time"

// FinalReport is the payload delivered to the reporting callback when a
// session completes. Field names are fixed by the callback contract.
type FinalReport struct {
	SessionID                 string                `json:"sessionId"`
	ScamDetected              bool                  `json:"scamDetected"`
	ScamType                  ScamType              `json:"scamType"`
	ConfidenceLevel           float64               `json:"confidenceLevel"`
	TotalMessagesExchanged    int                   `json:"totalMessagesExchanged"`
	EngagementDurationSeconds int64                 `json:"engagementDurationSeconds"`
	ExtractedIntelligence     ExtractedIntelligence `json:"extractedIntelligence"`
	AgentNotes                string                `json:"agentNotes"`
}

// DeliveryStatus tracks the outcome of a report delivery attempt chain
type DeliveryStatus string

const (
	DeliveryPending   DeliveryStatus = "pending"
	DeliveryDelivered DeliveryStatus = "delivered"
	DeliveryFailed    DeliveryStatus = "failed"
	DeliverySkipped   DeliveryStatus = "skipped"
)

// DeliveryRecord is the archived outcome of a finalized session's report
type DeliveryRecord struct {
	SessionID         string            `json:"session_id"`
	Report            FinalReport       `json:"report"`
	Status            DeliveryStatus    `json:"status"`
	Attempts          int               `json:"attempts"`
	TerminationReason TerminationReason `json:"termination_reason"`
	DeliveredAt       *time.Time        `json:"delivered_at,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
}
