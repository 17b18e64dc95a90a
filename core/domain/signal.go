package domain

// SignalSet maps signal names to whether they fired for one message.
// Derived and ephemeral; never persisted as-is.
type SignalSet map[string]bool

// Has reports whether the named signal fired.
func (s SignalSet) Has(name string) bool {
	return s[name]
}

// Names returns the fired signal names in stable order for logging.
func (s SignalSet) Names() []string {
	names := make([]string, 0, len(s))
	for _, n := range signalOrder {
		if s[n] {
			names = append(names, n)
		}
	}
	return names
}

// Signal names produced by the extractor.
const (
	SignalRejectionKeyword     = "rejection-keyword"
	SignalInterviewKeyword     = "interview-keyword"
	SignalOfferKeyword         = "offer-keyword"
	SignalConfirmationKeyword  = "confirmation-keyword"
	SignalKnownATS             = "known-ats-sender"
	SignalAutomatedSender      = "automated-sender"
	SignalCareersSender        = "careers-sender"
	SignalPersonalFreemail     = "personal-freemail-sender"
	SignalKnownCompanyMention  = "known-company-mention"
	SignalRecruiterOutreach    = "recruiter-outreach"
	SignalJobAlertDigest       = "job-alert-digest"
	SignalReplyThread          = "reply-thread"
	SignalApplicationReference = "application-reference"
)

var signalOrder = []string{
	SignalOfferKeyword,
	SignalInterviewKeyword,
	SignalRejectionKeyword,
	SignalConfirmationKeyword,
	SignalKnownATS,
	SignalAutomatedSender,
	SignalCareersSender,
	SignalPersonalFreemail,
	SignalKnownCompanyMention,
	SignalRecruiterOutreach,
	SignalJobAlertDigest,
	SignalReplyThread,
	SignalApplicationReference,
}
