// Package classify turns a message's signal set into a classification
// verdict. Rule tiers are evaluated in strict priority order and the
// first match wins, so every verdict traces to exactly one rule.
package classify

import (
	"time"

	"jobtrack_server/core/domain"
	"jobtrack_server/core/service/signal"
)

// Per-tier confidence. Tiers are ordered by how actionable and explicit
// the evidence is, not by how common the event is.
const (
	ConfidenceOffer        = 0.9
	ConfidenceInterview    = 0.85
	ConfidenceRejection    = 0.8
	ConfidenceConfirmation = 0.7

	DefaultThreshold = 0.5
)

// Classifier applies the rule tiers. Classification never fails: a
// message no tier recognizes is Unrelated, not an error.
type Classifier struct {
	extractor *signal.Extractor
	threshold float64
}

func New(extractor *signal.Extractor, threshold float64) *Classifier {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Classifier{
		extractor: extractor,
		threshold: threshold,
	}
}

// Classify evaluates the tiers for one message.
//
// Suppressions run before any tier: job-alert digests and recruiter
// outreach about new positions are never application events, no matter
// which keyword families they trip. Interview outranks rejection so a
// "unfortunately not this week, let's schedule a call" message lands on
// the actionable outcome.
func (c *Classifier) Classify(msg *domain.NormalizedMessage, signals domain.SignalSet) *domain.ClassificationResult {
	now := time.Now().UTC()

	if signals.Has(domain.SignalJobAlertDigest) {
		return c.result(msg, signals, domain.EventUnrelated, 0, domain.RuleAlertSuppress, now)
	}
	if signals.Has(domain.SignalRecruiterOutreach) {
		return c.result(msg, signals, domain.EventUnrelated, 0, domain.RuleOutreachSuppress, now)
	}

	// Tier 1: offer. An automated sender that also trips rejection
	// vocabulary is a templated rejection quoting offer terms, not an
	// offer.
	if signals.Has(domain.SignalOfferKeyword) &&
		!(signals.Has(domain.SignalAutomatedSender) && signals.Has(domain.SignalRejectionKeyword)) {
		return c.actionable(msg, signals, domain.EventOffered, ConfidenceOffer, domain.RuleOffer, now)
	}

	// Tier 2: interview. Evaluated before rejection by policy.
	if signals.Has(domain.SignalInterviewKeyword) {
		return c.actionable(msg, signals, domain.EventInterviewRequested, ConfidenceInterview, domain.RuleInterview, now)
	}

	// Tier 3: rejection. Mail from a personal mailbox is a human
	// conversation, not a rejection notice.
	if signals.Has(domain.SignalRejectionKeyword) && !signals.Has(domain.SignalPersonalFreemail) {
		return c.actionable(msg, signals, domain.EventRejected, ConfidenceRejection, domain.RuleRejection, now)
	}

	// Tier 4: application confirmation, only from an ATS, automated, or
	// recruiting sender, and never from a reply thread.
	if signals.Has(domain.SignalConfirmationKeyword) &&
		(signals.Has(domain.SignalKnownATS) || signals.Has(domain.SignalAutomatedSender) || signals.Has(domain.SignalCareersSender)) &&
		!signals.Has(domain.SignalReplyThread) &&
		!signals.Has(domain.SignalPersonalFreemail) {
		return c.actionable(msg, signals, domain.EventNewApplication, ConfidenceConfirmation, domain.RuleConfirmation, now)
	}

	return c.result(msg, signals, domain.EventUnrelated, 0, domain.RuleUnrelated, now)
}

// actionable builds a verdict for an event tier, demoting it to
// Unrelated when its confidence falls under the configured floor.
func (c *Classifier) actionable(msg *domain.NormalizedMessage, signals domain.SignalSet, event domain.EventType, confidence float64, ruleID string, now time.Time) *domain.ClassificationResult {
	if confidence < c.threshold {
		res := c.result(msg, signals, domain.EventUnrelated, confidence, domain.RuleBelowThreshold, now)
		return res
	}

	res := c.result(msg, signals, event, confidence, ruleID, now)
	identity := c.extractor.ExtractIdentity(msg, event)
	res.Company = identity.Company
	res.Position = identity.Position
	return res
}

func (c *Classifier) result(msg *domain.NormalizedMessage, signals domain.SignalSet, event domain.EventType, confidence float64, ruleID string, now time.Time) *domain.ClassificationResult {
	return &domain.ClassificationResult{
		EventType:    event,
		Confidence:   confidence,
		RuleID:       ruleID,
		Signals:      signals.Names(),
		ClassifiedAt: now,
	}
}
