// Package normalize converts raw provider messages into the canonical
// form the signal extractor and classifier operate on.
package normalize

import (
	"html"
	"regexp"
	"strings"

	"jobtrack_server/core/domain"
	"jobtrack_server/pkg/apperr"
)

var (
	htmlTagPattern   = regexp.MustCompile(`(?s)<(script|style)[^>]*>.*?</(script|style)>|<[^>]+>`)
	replyPrefixRe    = regexp.MustCompile(`^(?i)(re|fw|fwd):\s*`)
	quotedHeaderRe   = regexp.MustCompile(`(?im)^on .{0,120}wrote:\s*$`)
	whitespaceRe     = regexp.MustCompile(`[ \t]+`)
	blankLinesRe     = regexp.MustCompile(`\n{3,}`)
	automatedLocalRe = regexp.MustCompile(`(?i)^(no[-_.]?reply|do[-_.]?not[-_.]?reply|mailer-daemon|postmaster|bounces?|notifications?|alerts?|auto[-_.]?confirm|system|robot)`)
)

// Normalizer derives the canonical message representation. It is pure:
// the same raw message always yields the same normalized message.
type Normalizer struct{}

func New() *Normalizer {
	return &Normalizer{}
}

// Normalize strips HTML and quoted-reply boilerplate, lowercases the
// text, and splits the sender address. A message with no subject, no
// body, and no sender is unusable and fails with MalformedMessage.
func (n *Normalizer) Normalize(raw *domain.RawMessage) (*domain.NormalizedMessage, error) {
	subject := strings.TrimSpace(raw.Subject)
	body := CleanBody(raw.Body)

	if subject == "" && body == "" && strings.TrimSpace(raw.FromEmail) == "" {
		return nil, apperr.MalformedMessage(raw.MessageID)
	}

	localPart, domainPart := splitAddress(raw.FromEmail)

	return &domain.NormalizedMessage{
		Raw:               *raw,
		BodyClean:         body,
		SubjectLower:      strings.ToLower(subject),
		BodyLower:         strings.ToLower(body),
		SenderDomain:      domainPart,
		SenderLocalPart:   localPart,
		IsAutomatedSender: automatedLocalRe.MatchString(localPart),
		IsReply:           replyPrefixRe.MatchString(subject),
	}, nil
}

// CleanBody removes HTML tags, decodes entities, and drops quoted-reply
// boilerplate (lines starting with ">" and everything below an
// "On ... wrote:" header).
func CleanBody(body string) string {
	text := htmlTagPattern.ReplaceAllString(body, " ")
	text = html.UnescapeString(text)

	// Drop everything from the first quoted-reply header onward.
	if loc := quotedHeaderRe.FindStringIndex(text); loc != nil {
		text = text[:loc[0]]
	}

	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, ">") {
			continue
		}
		kept = append(kept, line)
	}
	text = strings.Join(kept, "\n")

	text = whitespaceRe.ReplaceAllString(text, " ")
	text = blankLinesRe.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

func splitAddress(email string) (local, domainPart string) {
	addr := strings.ToLower(strings.TrimSpace(email))
	// Tolerate "Name <addr@host>" forms that slip past the provider adapter.
	if i := strings.LastIndex(addr, "<"); i >= 0 {
		addr = strings.TrimSuffix(addr[i+1:], ">")
	}
	at := strings.LastIndex(addr, "@")
	if at < 0 {
		return addr, ""
	}
	return addr[:at], addr[at+1:]
}
