// Package contact derives contact records from personal responses so
// the Connections feature knows who the owner has been talking to.
package contact

import (
	"strings"
	"time"

	"jobtrack_server/core/domain"

	"github.com/google/uuid"
)

// Extract returns the contact a message introduces, or nil when the
// message is not a personal response. Interview and offer messages
// always qualify; a rejection qualifies only when a human sent it.
// ATS and no-reply senders never become contacts.
func Extract(userID uuid.UUID, msg *domain.NormalizedMessage, signals domain.SignalSet, res *domain.ClassificationResult, applicationID *int64, now time.Time) *domain.Contact {
	if signals.Has(domain.SignalKnownATS) || signals.Has(domain.SignalAutomatedSender) {
		return nil
	}

	switch res.EventType {
	case domain.EventInterviewRequested, domain.EventOffered:
	case domain.EventRejected:
		// Reached only for human senders; the guard above already
		// excluded automated ones.
	default:
		return nil
	}

	email := strings.ToLower(strings.TrimSpace(msg.Raw.FromEmail))
	if email == "" {
		return nil
	}

	name := strings.TrimSpace(msg.Raw.FromName)
	if name == "" {
		name = nameFromLocalPart(msg.SenderLocalPart)
	}

	return &domain.Contact{
		UserID:        userID,
		Name:          name,
		Email:         email,
		Company:       res.Company,
		ApplicationID: applicationID,
		FirstSeenAt:   now,
		LastContactAt: now,
	}
}

// nameFromLocalPart turns "jane.doe" into "Jane Doe".
func nameFromLocalPart(local string) string {
	local = strings.NewReplacer(".", " ", "_", " ", "-", " ", "+", " ").Replace(local)
	words := strings.Fields(local)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
