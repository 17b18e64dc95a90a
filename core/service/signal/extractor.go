// Package signal derives classification signals from normalized
// messages. Signals are computed independently and are side-effect-free.
package signal

import (
	"regexp"
	"strings"

	"jobtrack_server/core/domain"
)

// Body text beyond this point is signature blocks and legal footers,
// not classification material.
const bodyMatchLimit = 3000

// Options extends the built-in vocabulary. Extra keywords are matched
// as literal phrases, not regular expressions.
type Options struct {
	ExtraRejectionKeywords    []string
	ExtraInterviewKeywords    []string
	ExtraOfferKeywords        []string
	ExtraConfirmationKeywords []string
	ExtraATSDomains           []string
}

// Extractor computes the signal set for a message.
type Extractor struct {
	rejection    []*regexp.Regexp
	interview    []*regexp.Regexp
	offer        []*regexp.Regexp
	confirmation []*regexp.Regexp
	outreach     []*regexp.Regexp
	outreachSubj []*regexp.Regexp
	appReference []*regexp.Regexp

	atsDomains []string
	freemail   map[string]bool
	careers    map[string]bool
}

func NewExtractor(opts *Options) *Extractor {
	if opts == nil {
		opts = &Options{}
	}

	e := &Extractor{
		rejection:    compileAll(rejectionPatterns, opts.ExtraRejectionKeywords),
		interview:    compileAll(interviewPatterns, opts.ExtraInterviewKeywords),
		offer:        compileAll(offerPatterns, opts.ExtraOfferKeywords),
		confirmation: compileAll(confirmationPatterns, opts.ExtraConfirmationKeywords),
		outreach:     compileAll(outreachPatterns, nil),
		outreachSubj: compileAll(outreachSubjectPatterns, nil),
		appReference: compileAll(applicationReferencePatterns, nil),
		atsDomains:   append(append([]string{}, atsDomains...), opts.ExtraATSDomains...),
		freemail:     toSet(freemailDomains),
		careers:      toSet(careersLocalParts),
	}
	return e
}

// Extract computes every signal for one message. knownCompanies are the
// owner's existing application company names, used to flag messages that
// mention a company already on file.
func (e *Extractor) Extract(msg *domain.NormalizedMessage, knownCompanies []string) domain.SignalSet {
	body := msg.BodyLower
	if len(body) > bodyMatchLimit {
		body = body[:bodyMatchLimit]
	}
	text := msg.SubjectLower + " " + body

	signals := domain.SignalSet{}

	signals[domain.SignalRejectionKeyword] = matchAny(e.rejection, text)
	signals[domain.SignalInterviewKeyword] = matchAny(e.interview, text)
	signals[domain.SignalOfferKeyword] = matchAny(e.offer, text)
	signals[domain.SignalConfirmationKeyword] = matchAny(e.confirmation, text)
	signals[domain.SignalApplicationReference] = matchAny(e.appReference, text)

	signals[domain.SignalKnownATS] = e.IsATSDomain(msg.SenderDomain)
	signals[domain.SignalAutomatedSender] = msg.IsAutomatedSender
	signals[domain.SignalCareersSender] = e.careers[msg.SenderLocalPart]
	signals[domain.SignalPersonalFreemail] = e.freemail[msg.SenderDomain]
	signals[domain.SignalReplyThread] = msg.IsReply

	signals[domain.SignalRecruiterOutreach] = e.isRecruiterOutreach(msg.SubjectLower, text)
	signals[domain.SignalJobAlertDigest] = containsAny(msg.SubjectLower, jobAlertKeywords)

	signals[domain.SignalKnownCompanyMention] = mentionsKnownCompany(text, knownCompanies)

	return signals
}

// IsATSDomain reports whether the sender domain belongs to a known
// applicant tracking system.
func (e *Extractor) IsATSDomain(senderDomain string) bool {
	for _, d := range e.atsDomains {
		if senderDomain == d || strings.HasSuffix(senderDomain, "."+d) {
			return true
		}
	}
	return false
}

// Recruiter outreach means someone is pitching a new position, not
// responding to an application the owner submitted. Two body hits, or a
// pitch-flavored subject plus one body hit, is the bar.
func (e *Extractor) isRecruiterOutreach(subject, text string) bool {
	bodyHits := 0
	for _, re := range e.outreach {
		if re.MatchString(text) {
			bodyHits++
			if bodyHits >= 2 {
				return true
			}
		}
	}
	if bodyHits == 0 {
		return false
	}
	for _, re := range e.outreachSubj {
		if re.MatchString(subject) {
			return true
		}
	}
	return false
}

func mentionsKnownCompany(text string, companies []string) bool {
	for _, c := range companies {
		norm := strings.ToLower(strings.TrimSpace(c))
		if len(norm) > 2 && strings.Contains(text, norm) {
			return true
		}
	}
	return false
}

func compileAll(patterns, literals []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(patterns)+len(literals))
	for _, p := range patterns {
		out = append(out, regexp.MustCompile(p))
	}
	for _, l := range literals {
		l = strings.ToLower(strings.TrimSpace(l))
		if l == "" {
			continue
		}
		out = append(out, regexp.MustCompile(regexp.QuoteMeta(l)))
	}
	return out
}

func matchAny(res []*regexp.Regexp, text string) bool {
	for _, re := range res {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func toSet(items []string) map[string]bool {
	m := make(map[string]bool, len(items))
	for _, it := range items {
		m[it] = true
	}
	return m
}
