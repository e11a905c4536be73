package events

import (
	"time"
)

// EventType defines the type of event
type EventType string

const (
	// EventTypeCandidateScored is emitted for every scored candidate pair
	EventTypeCandidateScored EventType = "candidate.scored"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID       string    `json:"event_id"`
	EventType     EventType `json:"event_type"`
	SchemaVersion string    `json:"schema_version"`
	RunID         string    `json:"run_id"`
	Timestamp     time.Time `json:"timestamp"`
}

// CandidateScoredEvent carries the features and scores of one candidate pair
// for downstream linking and storage.
type CandidateScoredEvent struct {
	BaseEvent
	ProductA       string             `json:"product_a"`
	ProductB       string             `json:"product_b"`
	VendorA        string             `json:"vendor_a,omitempty"`
	VendorB        string             `json:"vendor_b,omitempty"`
	CandidateScore float64            `json:"candidate_score"`
	OverallScore   float64            `json:"overall_score"`
	Label          int                `json:"label"`
	LabelPolicy    string             `json:"label_policy"`
	Features       map[string]float64 `json:"features"`
}
