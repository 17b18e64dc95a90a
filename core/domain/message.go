package domain

import (
	"time"
)

// RawMessage is a mail-provider message exactly as the provider returned it.
// Immutable once fetched; the provider message ID is unique per mailbox.
type RawMessage struct {
	MessageID  string    `json:"message_id"`
	ThreadID   string    `json:"thread_id,omitempty"`
	FromEmail  string    `json:"from_email"`
	FromName   string    `json:"from_name,omitempty"`
	Subject    string    `json:"subject"`
	Body       string    `json:"body"`
	ReceivedAt time.Time `json:"received_at"`
}

// NormalizedMessage is a RawMessage plus the derived fields the signal
// extractor and classifier operate on. Created once per RawMessage, never
// mutated afterwards.
type NormalizedMessage struct {
	Raw RawMessage `json:"raw"`

	// BodyClean keeps original casing with HTML tags and quoted-reply
	// boilerplate removed; the Lower fields are its lowercased form used
	// for keyword matching.
	BodyClean    string `json:"body_clean"`
	SubjectLower string `json:"subject_lower"`
	BodyLower    string `json:"body_lower"`

	SenderDomain    string `json:"sender_domain"`
	SenderLocalPart string `json:"sender_local_part"`

	// Sender local part matches a no-reply / mailer-daemon pattern
	IsAutomatedSender bool `json:"is_automated_sender"`

	// Subject starts with Re:/Fw:/Fwd:
	IsReply bool `json:"is_reply"`
}
