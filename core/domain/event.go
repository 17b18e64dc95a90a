package domain

import "time"

// EventType is the kind of job-application event a message represents.
type EventType string

const (
	EventNewApplication     EventType = "new_application"     // Application confirmation from an ATS or careers address
	EventRejected           EventType = "rejected"            // Rejection notice
	EventInterviewRequested EventType = "interview_requested" // Interview invitation or scheduling request
	EventOffered            EventType = "offered"             // Offer letter or offer discussion
	EventUnrelated          EventType = "unrelated"           // Not a job-application event
)

// IsActionable reports whether the event mutates application state.
func (e EventType) IsActionable() bool {
	return e != EventUnrelated && e != ""
}

// ClassificationResult is the classifier's verdict for one normalized
// message. RuleID names the rule tier that matched, for auditability.
type ClassificationResult struct {
	EventType  EventType `json:"event_type"`
	Confidence float64   `json:"confidence"`
	RuleID     string    `json:"rule_id"`

	// Extracted identity, when the message carried one
	Company  string `json:"company,omitempty"`
	Position string `json:"position,omitempty"`

	// Signals that fired, for debugging and the import ledger
	Signals []string `json:"signals,omitempty"`

	ClassifiedAt time.Time `json:"classified_at"`
}

// Rule IDs, one per classifier tier plus the threshold demotion.
const (
	RuleOffer            = "tier1:offer"
	RuleInterview        = "tier2:interview"
	RuleRejection        = "tier3:rejection"
	RuleConfirmation     = "tier4:confirmation"
	RuleUnrelated        = "tier5:unrelated"
	RuleBelowThreshold   = "threshold:below-minimum"
	RuleOutreachSuppress = "suppress:recruiter-outreach"
	RuleAlertSuppress    = "suppress:job-alert"
)
