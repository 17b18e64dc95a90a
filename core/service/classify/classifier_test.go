package classify

import (
	"testing"

	"jobtrack_server/core/domain"
	"jobtrack_server/core/service/signal"
)

func newClassifier() *Classifier {
	return New(signal.NewExtractor(nil), DefaultThreshold)
}

func sigs(names ...string) domain.SignalSet {
	s := domain.SignalSet{}
	for _, n := range names {
		s[n] = true
	}
	return s
}

func plainMsg() *domain.NormalizedMessage {
	return &domain.NormalizedMessage{
		Raw: domain.RawMessage{
			MessageID: "m1",
			FromEmail: "recruiting@acme.com",
			Subject:   "Update",
			Body:      "Body",
		},
		SubjectLower: "update",
		BodyLower:    "body",
		SenderDomain: "acme.com",
	}
}

func TestClassifyTiers(t *testing.T) {
	c := newClassifier()

	tests := []struct {
		name           string
		signals        domain.SignalSet
		wantEvent      domain.EventType
		wantConfidence float64
		wantRule       string
	}{
		{
			name:           "offer keywords classify as offered",
			signals:        sigs(domain.SignalOfferKeyword),
			wantEvent:      domain.EventOffered,
			wantConfidence: ConfidenceOffer,
			wantRule:       domain.RuleOffer,
		},
		{
			name:           "interview keywords classify as interview requested",
			signals:        sigs(domain.SignalInterviewKeyword),
			wantEvent:      domain.EventInterviewRequested,
			wantConfidence: ConfidenceInterview,
			wantRule:       domain.RuleInterview,
		},
		{
			name:           "rejection keywords classify as rejected",
			signals:        sigs(domain.SignalRejectionKeyword),
			wantEvent:      domain.EventRejected,
			wantConfidence: ConfidenceRejection,
			wantRule:       domain.RuleRejection,
		},
		{
			name:           "confirmation from ats classifies as new application",
			signals:        sigs(domain.SignalConfirmationKeyword, domain.SignalKnownATS),
			wantEvent:      domain.EventNewApplication,
			wantConfidence: ConfidenceConfirmation,
			wantRule:       domain.RuleConfirmation,
		},
		{
			name:           "confirmation from automated sender classifies as new application",
			signals:        sigs(domain.SignalConfirmationKeyword, domain.SignalAutomatedSender),
			wantEvent:      domain.EventNewApplication,
			wantConfidence: ConfidenceConfirmation,
			wantRule:       domain.RuleConfirmation,
		},
		{
			name:      "confirmation without trusted sender stays unrelated",
			signals:   sigs(domain.SignalConfirmationKeyword),
			wantEvent: domain.EventUnrelated,
			wantRule:  domain.RuleUnrelated,
		},
		{
			name:      "no signals classify as unrelated",
			signals:   sigs(),
			wantEvent: domain.EventUnrelated,
			wantRule:  domain.RuleUnrelated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := c.Classify(plainMsg(), tt.signals)
			if res.EventType != tt.wantEvent {
				t.Errorf("EventType = %s, want %s", res.EventType, tt.wantEvent)
			}
			if res.Confidence != tt.wantConfidence {
				t.Errorf("Confidence = %v, want %v", res.Confidence, tt.wantConfidence)
			}
			if res.RuleID != tt.wantRule {
				t.Errorf("RuleID = %s, want %s", res.RuleID, tt.wantRule)
			}
		})
	}
}

func TestClassifyInterviewBeatsRejection(t *testing.T) {
	c := newClassifier()

	res := c.Classify(plainMsg(), sigs(domain.SignalInterviewKeyword, domain.SignalRejectionKeyword))
	if res.EventType != domain.EventInterviewRequested {
		t.Errorf("EventType = %s, want %s", res.EventType, domain.EventInterviewRequested)
	}
	if res.RuleID != domain.RuleInterview {
		t.Errorf("RuleID = %s, want %s", res.RuleID, domain.RuleInterview)
	}
}

func TestClassifySuppressions(t *testing.T) {
	c := newClassifier()

	tests := []struct {
		name     string
		signals  domain.SignalSet
		wantRule string
	}{
		{
			name:     "job alert digest suppressed despite confirmation keywords",
			signals:  sigs(domain.SignalJobAlertDigest, domain.SignalConfirmationKeyword, domain.SignalKnownATS),
			wantRule: domain.RuleAlertSuppress,
		},
		{
			name:     "recruiter outreach suppressed despite interview keywords",
			signals:  sigs(domain.SignalRecruiterOutreach, domain.SignalInterviewKeyword),
			wantRule: domain.RuleOutreachSuppress,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := c.Classify(plainMsg(), tt.signals)
			if res.EventType != domain.EventUnrelated {
				t.Errorf("EventType = %s, want %s", res.EventType, domain.EventUnrelated)
			}
			if res.RuleID != tt.wantRule {
				t.Errorf("RuleID = %s, want %s", res.RuleID, tt.wantRule)
			}
		})
	}
}

func TestClassifyFreemailGuards(t *testing.T) {
	c := newClassifier()

	res := c.Classify(plainMsg(), sigs(domain.SignalRejectionKeyword, domain.SignalPersonalFreemail))
	if res.EventType != domain.EventUnrelated {
		t.Errorf("freemail rejection: EventType = %s, want unrelated", res.EventType)
	}

	res = c.Classify(plainMsg(), sigs(domain.SignalConfirmationKeyword, domain.SignalAutomatedSender, domain.SignalPersonalFreemail))
	if res.EventType != domain.EventUnrelated {
		t.Errorf("freemail confirmation: EventType = %s, want unrelated", res.EventType)
	}
}

func TestClassifyReplyIsNotConfirmation(t *testing.T) {
	c := newClassifier()

	res := c.Classify(plainMsg(), sigs(domain.SignalConfirmationKeyword, domain.SignalKnownATS, domain.SignalReplyThread))
	if res.EventType != domain.EventUnrelated {
		t.Errorf("reply confirmation: EventType = %s, want unrelated", res.EventType)
	}
}

func TestClassifyAutomatedRejectionQuotingOfferTerms(t *testing.T) {
	c := newClassifier()

	res := c.Classify(plainMsg(), sigs(domain.SignalOfferKeyword, domain.SignalRejectionKeyword, domain.SignalAutomatedSender))
	if res.EventType != domain.EventRejected {
		t.Errorf("EventType = %s, want %s", res.EventType, domain.EventRejected)
	}
}

func TestClassifyBelowThreshold(t *testing.T) {
	c := New(signal.NewExtractor(nil), 0.75)

	res := c.Classify(plainMsg(), sigs(domain.SignalConfirmationKeyword, domain.SignalKnownATS))
	if res.EventType != domain.EventUnrelated {
		t.Errorf("EventType = %s, want unrelated below threshold", res.EventType)
	}
	if res.RuleID != domain.RuleBelowThreshold {
		t.Errorf("RuleID = %s, want %s", res.RuleID, domain.RuleBelowThreshold)
	}
}

func TestClassifyEndToEndScenario(t *testing.T) {
	extractor := signal.NewExtractor(nil)
	c := New(extractor, DefaultThreshold)

	msg := &domain.NormalizedMessage{
		Raw: domain.RawMessage{
			MessageID: "m-scenario",
			FromEmail: "jane.doe@acme.com",
			FromName:  "Jane Doe",
			Subject:   "Interview invitation",
			Body:      "We'd like to schedule a call unfortunately not this week",
		},
		BodyClean:       "We'd like to schedule a call unfortunately not this week",
		SubjectLower:    "interview invitation",
		BodyLower:       "we'd like to schedule a call unfortunately not this week",
		SenderDomain:    "acme.com",
		SenderLocalPart: "jane.doe",
	}

	signals := extractor.Extract(msg, []string{"Acme"})
	if !signals.Has(domain.SignalInterviewKeyword) {
		t.Fatal("interview keyword did not fire")
	}
	if !signals.Has(domain.SignalRejectionKeyword) {
		t.Fatal("rejection keyword did not fire")
	}

	res := c.Classify(msg, signals)
	if res.EventType != domain.EventInterviewRequested {
		t.Errorf("EventType = %s, want %s", res.EventType, domain.EventInterviewRequested)
	}
}
