package signal

import (
	"regexp"
	"strings"

	"jobtrack_server/core/domain"
)

// Company and position extraction works on original-case text; the
// capital-letter anchors in these patterns are what keeps them from
// swallowing whole sentences.

var explicitBodyCompanyRes = compileRes([]string{
	`application with\s+([A-Z][A-Za-z0-9\s&\-\.']+?)(?:\.|!|,)`,
	`(?i:thanks|thank you) for (?:your )?interest in\s+([A-Z][A-Za-z0-9\s&\-\.']+?)(?:\.|!|,|\s+We)`,
})

var companyRes = compileRes([]string{
	`^[Tt]hanks for [Aa]pplying to\s+([A-Z][A-Za-z0-9\s&\-\.']+?)(?:!|\.?\s*$)`,
	`[Ii]nterest in\s+([A-Z][A-Za-z0-9\s&\-\.']+?)(?:!|\s*$)`,
	`^([A-Z][A-Za-z0-9\s&\-\.]+?)\s+Application\s+(?:Update|Status|Confirmation)`,
	`[Aa]pplication\s+(?:to|at|for .+? at)\s+([A-Z][A-Za-z0-9\s&\-\.]+?)(?:!|\.|\s*$)`,
	`application was (?:sent to|viewed by)\s+([A-Z][A-Za-z0-9\s&\-\.',]+?)(?:\s*$|!)`,
	`@\s*([A-Z][A-Za-z0-9\s&\-\.]+?)(?:\s*$|!)`,
	`\s+at\s+([A-Z][A-Za-z0-9\s&\-\.]+?)(?:\s*$|!|\.)`,
	`(?i:thanks|thank you) for (?:applying|your application) (?:to|at)\s+([A-Z][A-Za-z0-9\s&\-\.']+?)(?:\.|!)`,
	`application (?:to|at|with)\s+([A-Z][A-Za-z0-9\s&\-\.]+?)\s+(?:has been|was|is)`,
	`(?:you )?applied (?:to|at)\s+([A-Z][A-Za-z0-9\s&\-\.]+?)(?:\.|!|\s+on|\s+for)`,
	`[Yy]our application to\s+([A-Z][A-Za-z0-9\s&\-\.]+?)(?:\s+has|\.|!)`,
	`received your application.*?(?:at|to)\s+([A-Z][A-Za-z0-9\s&\-\.]+?)(?:\.|!)`,
	`(?:joining|working at|working for)\s+([A-Z][A-Za-z0-9\s&\-\.]+?)(?:\.|!|,)`,
})

// Patterns common in rejection and interview emails.
var responseCompanyRes = compileRes([]string{
	`[Uu]pdate (?:from|on your.{0,30}(?:at|to|with))\s+([A-Z][A-Za-z0-9\s&\-\.']+?)(?:\s*$|!|\.)`,
	`application (?:to|at|with)\s+([A-Z][A-Za-z0-9\s&\-\.']+?)(?:\s+has|\s+was|\.|!|,)`,
	`(?:role|position) at\s+([A-Z][A-Za-z0-9\s&\-\.']+?)(?:\s*$|!|\.|,)`,
	`from\s+([A-Z][A-Za-z0-9\s&\-\.']+?)\s+(?:Careers|Recruiting|Talent|HR|Team)(?:\s|$|<)`,
	`the (?:team|hiring team|recruiting team) at\s+([A-Z][A-Za-z0-9\s&\-\.']+?)(?:\s*$|!|\.|,)`,
	`on behalf of\s+([A-Z][A-Za-z0-9\s&\-\.']+?)(?:\s*$|!|\.|,)`,
	`we at\s+([A-Z][A-Za-z0-9\s&\-\.']+?)(?:\s+|\.|,|!)`,
})

var subjectPositionRes = compileRes([]string{
	`Indeed Application:\s*(.+?)(?:\s*@|\s*$)`,
	`Application\s+(?:Update|Status|Confirmation):\s*(.+?)(?:\s*$)`,
	`^(.+?)\s*@\s*[A-Z]`,
	`^(.+?)\s+at\s+[A-Z]`,
	`[Aa]pplying to\s+(.+?)(?:\s+-\s+|\s+at\s+|\s*$)`,
})

var bodyPositionRes = compileRes([]string{
	`(?:following role|following position|following job)(?:\(s\))?:\s*\n?\s*(.+?)(?:\s*\(|\n|$)`,
	`(?i)position of\s+([A-Z][A-Za-z0-9\s\-/]+?)(?:\.|,|!|\s+at|\s+with|\n)`,
	`(?i)interest in (?:the\s+)?(?:following)?(.+?)\s+(?:position|role|opportunity)`,
	`(?i)applying to (?:the\s+)?(.+?)\s+(?:position|role)`,
})

var (
	companySuffixRe  = regexp.MustCompile(`(?i)\s*(?:Inc\.?|LLC\.?|Ltd\.?|Corp\.?|Corporation|Company|Co\.?)?\s*$`)
	leadingArticleRe = regexp.MustCompile(`(?i)^\s*(?:the\s+)?`)
	urlArtifactRe    = regexp.MustCompile(`\s*\[?https?://[^\s\]]*\]?|<[^>]+>`)
	multiSpaceRe     = regexp.MustCompile(`\s+`)
	capitalStartRe   = regexp.MustCompile(`^[A-Z0-9]`)
)

// Sender names and extracted fragments that are never a real employer.
var genericCompanyNames = toSet([]string{
	"indeed", "linkedin", "indeed apply", "linkedin jobs", "glassdoor",
	"ziprecruiter", "monster", "careerbuilder", "handshake",
	"greenhouse", "lever", "workday", "icims", "smartrecruiters",
	"workable", "jobvite", "taleo", "ashby", "bamboohr", "zoho",
	"breezy", "jazz", "recruiterbox", "noreply", "no-reply",
	"notifications", "alerts", "updates", "candidates", "team",
	"hr team", "recruiting", "talent", "careers", "jobs", "hr",
	"human resources", "hiring", "applicant", "candidate",
})

var companyFragmentRes = compileRes([]string{
	`following job`, `has been`, `was received`, `thank you`, `thanks for`,
	`we received`, `your application`, `the position`, `this email`,
	`click here`, `log in`, `http`, `www\.`, `was intended`, `we have`,
	`we are`, `in the meantime`, `please`, `on \w+,`, `^\d{1,2}:\d{2}`,
	`hr team`, `recruiting team`, `talent team`, `apply now`, `view job`,
	`see all jobs`,
})

var positionBadRes = compileRes([]string{
	`^the\s`, `http`, `www\.`, `click here`, `@`, `\.com`,
	`thanks for applying`, `thank you for`, `on \w+,`, `this email`,
	`was intended`, `your application`, `your recent`, `be considered`,
	`hiring process`, `status of your`, `if you have any questions`,
	`^>`, `^\d{3}[\.\-]`, `email:`, `phone:`, `^from:`, `was sent to`,
	`in the meantime`, `^of\s+`, `^our\s+`, `one of our`,
})

var positionKeywords = []string{
	"intern", "manager", "director", "engineer", "developer",
	"analyst", "specialist", "coordinator", "assistant", "associate",
	"representative", "recruiter", "designer", "planner", "lead",
	"executive", "administrator", "consultant", "advisor", "officer",
	"estimator", "technician", "operator", "supervisor", "trainer",
}

// Words that mark a multi-word name as an organization rather than a
// person.
var companyIndicatorWords = []string{
	"inc", "llc", "ltd", "corp", "group", "solutions", "services",
	"consulting", "technologies", "systems", "company", "studio",
	"media", "digital", "agency", "recruiting", "staffing", "partners",
	"associates", "labs", "energy", "college", "university", "hospital",
	"medical",
}

var platformSenderKeywords = []string{
	"indeed", "linkedin", "greenhouse", "lever", "workday", "icims",
	"smartrecruiters", "workable", "handshake", "jobvite", "taleo",
	"ashby", "bamboohr", "zoho", "glassdoor", "ziprecruiter",
	"monster", "careerbuilder",
}

// Identity is the (company, position) pair a message talks about.
type Identity struct {
	Company  string
	Position string
}

// ExtractIdentity pulls the employer and job title out of a message.
// Either field may come back empty; the resolver treats empty fields as
// unknown rather than as a distinct value.
func (e *Extractor) ExtractIdentity(msg *domain.NormalizedMessage, eventType domain.EventType) Identity {
	subject := strings.TrimSpace(msg.Raw.Subject)
	body := msg.BodyClean
	if len(body) > 5000 {
		body = body[:5000]
	}

	var company string
	if eventType == domain.EventRejected || eventType == domain.EventInterviewRequested || eventType == domain.EventOffered {
		company = e.extractResponseCompany(subject, body, msg.Raw)
	}
	if company == "" {
		company = e.extractCompany(subject, body, msg.Raw)
	}

	return Identity{
		Company:  company,
		Position: extractPosition(subject, body),
	}
}

func (e *Extractor) extractCompany(subject, body string, raw domain.RawMessage) string {
	// Unambiguous body phrasings come first; subject patterns like
	// "application to X" misfire more often.
	if c := firstCompanyMatch(explicitBodyCompanyRes, body); c != "" {
		return c
	}
	if c := firstCompanyMatch(companyRes, subject); c != "" {
		return c
	}
	if c := e.companyFromSenderName(raw.FromName); c != "" {
		return c
	}
	if c := firstCompanyMatch(companyRes, body); c != "" {
		return c
	}
	return e.companyFromDomain(raw.FromEmail)
}

func (e *Extractor) extractResponseCompany(subject, body string, raw domain.RawMessage) string {
	if c := firstCompanyMatch(responseCompanyRes, subject); c != "" {
		return c
	}
	if c := firstCompanyMatch(responseCompanyRes, body); c != "" {
		return c
	}
	return e.companyFromSenderName(raw.FromName)
}

func firstCompanyMatch(res []*regexp.Regexp, text string) string {
	for _, re := range res {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		company := CleanCompanyName(m[1])
		if looksLikeCompany(company) {
			return company
		}
	}
	return ""
}

func (e *Extractor) companyFromSenderName(name string) string {
	name = strings.TrimSpace(strings.Trim(name, `"'`))
	// "TEKsystems @ icims" carries the employer before the platform.
	if i := strings.Index(name, " @ "); i > 0 {
		name = strings.TrimSpace(name[:i])
	}
	lower := strings.ToLower(name)
	if len(name) <= 2 || genericCompanyNames[lower] {
		return ""
	}
	for _, kw := range platformSenderKeywords {
		if strings.Contains(lower, kw) {
			return ""
		}
	}
	cleaned := CleanCompanyName(name)
	if looksLikeCompany(cleaned) {
		return cleaned
	}
	return ""
}

// companyFromDomain is the last resort: "careers@acme.com" → "Acme".
func (e *Extractor) companyFromDomain(fromEmail string) string {
	_, domainPart := splitSender(fromEmail)
	if domainPart == "" || e.IsATSDomain(domainPart) || e.freemail[domainPart] {
		return ""
	}
	label := domainPart
	if i := strings.Index(label, "."); i > 0 {
		label = label[:i]
	}
	skip := map[string]bool{"mail": true, "email": true, "e": true, "noreply": true, "no-reply": true, "notifications": true, "candidates": true}
	if len(label) <= 2 || skip[label] {
		return ""
	}
	label = strings.NewReplacer("-", " ", "_", " ").Replace(label)
	return titleCase(label)
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func extractPosition(subject, body string) string {
	for _, re := range subjectPositionRes {
		if m := re.FindStringSubmatch(subject); m != nil {
			p := CleanPositionName(m[1])
			if looksLikePosition(p) {
				return p
			}
		}
	}
	for _, text := range []string{subject, body} {
		if len(text) > 3000 {
			text = text[:3000]
		}
		for _, re := range bodyPositionRes {
			if m := re.FindStringSubmatch(text); m != nil {
				p := CleanPositionName(m[1])
				if looksLikePosition(p) {
					return p
				}
			}
		}
	}
	return ""
}

// CleanCompanyName strips URLs, legal suffixes, and stray punctuation.
func CleanCompanyName(company string) string {
	company = urlArtifactRe.ReplaceAllString(company, "")
	company = companySuffixRe.ReplaceAllString(company, "")
	company = leadingArticleRe.ReplaceAllString(company, "")
	company = multiSpaceRe.ReplaceAllString(company, " ")
	return strings.Trim(strings.TrimSpace(company), ".,!?:;-")
}

// CleanPositionName collapses whitespace and drops noise words around
// the title.
func CleanPositionName(position string) string {
	position = multiSpaceRe.ReplaceAllString(position, " ")
	position = strings.Trim(strings.TrimSpace(position), ".,!?:;-")
	for _, noise := range []string{"position", "role", "opportunity", "job", "the"} {
		position = strings.TrimSpace(strings.TrimPrefix(position, noise+" "))
		position = strings.TrimSpace(strings.TrimSuffix(position, " "+noise))
	}
	return position
}

func looksLikeCompany(text string) bool {
	if len(text) < 2 || len(text) > 80 {
		return false
	}
	lower := strings.ToLower(text)
	if genericCompanyNames[lower] {
		return false
	}
	for _, re := range companyFragmentRes {
		if re.MatchString(lower) {
			return false
		}
	}
	for _, prefix := range []string{"indeed", "linkedin", "glassdoor", "handshake"} {
		if strings.HasPrefix(lower, prefix) {
			return false
		}
	}
	if looksLikePersonName(text, lower) {
		return false
	}
	return capitalStartRe.MatchString(text)
}

// looksLikePersonName rejects "Jane Doe" style sender names: two or
// three capitalized alphabetic words with no organization word.
func looksLikePersonName(text, lower string) bool {
	words := strings.Fields(text)
	if len(words) < 2 || len(words) > 3 {
		return false
	}
	for _, ind := range companyIndicatorWords {
		if strings.Contains(lower, ind) {
			return false
		}
	}
	for _, w := range words {
		if len(w) < 2 || !isUpperAlpha(w[0]) || !isLowerAlphaRun(w[1:]) {
			return false
		}
	}
	return true
}

func isUpperAlpha(c byte) bool {
	return c >= 'A' && c <= 'Z'
}

func isLowerAlphaRun(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 'a' || s[i] > 'z' {
			return false
		}
	}
	return true
}

func looksLikePosition(text string) bool {
	if len(text) < 3 || len(text) > 100 {
		return false
	}
	lower := strings.ToLower(text)
	for _, kw := range positionKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	for _, re := range positionBadRes {
		if re.MatchString(lower) {
			return false
		}
	}
	// A single capitalized word with no title keyword is a company name.
	if !strings.Contains(strings.TrimSpace(text), " ") {
		return false
	}
	return true
}

func splitSender(email string) (local, domainPart string) {
	addr := strings.ToLower(strings.TrimSpace(email))
	if i := strings.LastIndex(addr, "<"); i >= 0 {
		addr = strings.TrimSuffix(addr[i+1:], ">")
	}
	at := strings.LastIndex(addr, "@")
	if at < 0 {
		return addr, ""
	}
	return addr[:at], addr[at+1:]
}

func compileRes(patterns []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		out = append(out, regexp.MustCompile(p))
	}
	return out
}
