package signal

import (
	"testing"

	"jobtrack_server/core/domain"
)

func msgFrom(subject, body, fromEmail, fromName string) *domain.NormalizedMessage {
	local, domainPart := splitSender(fromEmail)
	return &domain.NormalizedMessage{
		Raw: domain.RawMessage{
			MessageID: "test",
			FromEmail: fromEmail,
			FromName:  fromName,
			Subject:   subject,
			Body:      body,
		},
		BodyClean:       body,
		SubjectLower:    toLowerTrim(subject),
		BodyLower:       toLowerTrim(body),
		SenderDomain:    domainPart,
		SenderLocalPart: local,
	}
}

func toLowerTrim(s string) string {
	out := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		out[i] = c
	}
	return string(out)
}

func TestExtractKeywordFamilies(t *testing.T) {
	e := NewExtractor(nil)

	tests := []struct {
		name    string
		subject string
		body    string
		want    string
	}{
		{
			name:    "rejection keywords",
			subject: "Your application at Acme",
			body:    "Unfortunately we have decided not to proceed with your candidacy.",
			want:    domain.SignalRejectionKeyword,
		},
		{
			name:    "interview keywords",
			subject: "Next steps",
			body:    "We would like to schedule an interview with you next week.",
			want:    domain.SignalInterviewKeyword,
		},
		{
			name:    "offer keywords",
			subject: "Good news",
			body:    "We are pleased to extend an offer of employment. Your start date is flexible.",
			want:    domain.SignalOfferKeyword,
		},
		{
			name:    "confirmation keywords",
			subject: "Thank you for applying to Acme",
			body:    "We received your application and will be in touch.",
			want:    domain.SignalConfirmationKeyword,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			signals := e.Extract(msgFrom(tt.subject, tt.body, "recruiting@acme.com", ""), nil)
			if !signals.Has(tt.want) {
				t.Errorf("signal %s did not fire; fired: %v", tt.want, signals.Names())
			}
		})
	}
}

func TestExtractSenderSignals(t *testing.T) {
	e := NewExtractor(nil)

	tests := []struct {
		name      string
		fromEmail string
		automated bool
		want      string
		wantNot   string
	}{
		{
			name:      "greenhouse is a known ats",
			fromEmail: "noreply@greenhouse.io",
			automated: true,
			want:      domain.SignalKnownATS,
		},
		{
			name:      "workday subdomain is a known ats",
			fromEmail: "acme@myworkdayjobs.com",
			want:      domain.SignalKnownATS,
		},
		{
			name:      "careers mailbox",
			fromEmail: "careers@acme.com",
			want:      domain.SignalCareersSender,
			wantNot:   domain.SignalKnownATS,
		},
		{
			name:      "gmail is personal freemail",
			fromEmail: "jane.doe@gmail.com",
			want:      domain.SignalPersonalFreemail,
			wantNot:   domain.SignalKnownATS,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := msgFrom("hello", "body", tt.fromEmail, "")
			msg.IsAutomatedSender = tt.automated
			signals := e.Extract(msg, nil)
			if !signals.Has(tt.want) {
				t.Errorf("signal %s did not fire; fired: %v", tt.want, signals.Names())
			}
			if tt.wantNot != "" && signals.Has(tt.wantNot) {
				t.Errorf("signal %s fired unexpectedly", tt.wantNot)
			}
		})
	}
}

func TestExtractRecruiterOutreach(t *testing.T) {
	e := NewExtractor(nil)

	outreach := msgFrom(
		"Exciting opportunity at my client",
		"I came across your profile on LinkedIn and I am reaching out because you'd be a great fit for an open role.",
		"sourcer@agency.com", "")
	signals := e.Extract(outreach, nil)
	if !signals.Has(domain.SignalRecruiterOutreach) {
		t.Error("recruiter outreach not detected")
	}

	response := msgFrom(
		"Your application at Acme",
		"Thank you for applying. We would like to schedule an interview.",
		"recruiting@acme.com", "")
	signals = e.Extract(response, nil)
	if signals.Has(domain.SignalRecruiterOutreach) {
		t.Error("application response misdetected as outreach")
	}
}

func TestExtractJobAlertDigest(t *testing.T) {
	e := NewExtractor(nil)
	msg := msgFrom("10 new jobs matching your profile", "Apply now to these roles.", "alerts@indeed.com", "")
	signals := e.Extract(msg, nil)
	if !signals.Has(domain.SignalJobAlertDigest) {
		t.Error("job alert digest not detected from subject")
	}
}

func TestExtractKnownCompanyMention(t *testing.T) {
	e := NewExtractor(nil)
	msg := msgFrom("Update on your Acme application", "The team at Acme has reviewed your application.", "noreply@greenhouse.io", "")

	signals := e.Extract(msg, []string{"Acme"})
	if !signals.Has(domain.SignalKnownCompanyMention) {
		t.Error("known company mention not detected")
	}

	signals = e.Extract(msg, []string{"Globex"})
	if signals.Has(domain.SignalKnownCompanyMention) {
		t.Error("company mention fired for absent company")
	}
}

func TestExtractorExtraVocabulary(t *testing.T) {
	e := NewExtractor(&Options{
		ExtraRejectionKeywords: []string{"wir haben uns gegen sie entschieden"},
		ExtraATSDomains:        []string{"recruitee.com"},
	})

	msg := msgFrom("Ihre Bewerbung", "Wir haben uns gegen Sie entschieden.", "noreply@recruitee.com", "")
	signals := e.Extract(msg, nil)
	if !signals.Has(domain.SignalRejectionKeyword) {
		t.Error("configured extra rejection keyword did not fire")
	}
	if !signals.Has(domain.SignalKnownATS) {
		t.Error("configured extra ats domain did not fire")
	}
}

func TestExtractIdentity(t *testing.T) {
	e := NewExtractor(nil)

	tests := []struct {
		name         string
		subject      string
		body         string
		fromEmail    string
		fromName     string
		eventType    domain.EventType
		wantCompany  string
		wantPosition string
	}{
		{
			name:        "explicit application with phrase",
			subject:     "Application update",
			body:        "Thank you for your application with Globex. We will review it shortly.",
			fromEmail:   "noreply@greenhouse.io",
			eventType:   domain.EventNewApplication,
			wantCompany: "Globex",
		},
		{
			name:        "thanks for applying subject",
			subject:     "Thanks for Applying to Initech!",
			body:        "We got it.",
			fromEmail:   "noreply@lever.co",
			eventType:   domain.EventNewApplication,
			wantCompany: "Initech",
		},
		{
			name:         "position from subject before at",
			subject:      "Software Engineer at Hooli",
			body:         "Your application was received.",
			fromEmail:    "noreply@hooli.com",
			eventType:    domain.EventNewApplication,
			wantCompany:  "Hooli",
			wantPosition: "Software Engineer",
		},
		{
			name:        "sender display name",
			subject:     "We got your application",
			body:        "We will be in touch soon.",
			fromEmail:   "talent@initrode.com",
			fromName:    "Initrode Solutions",
			eventType:   domain.EventNewApplication,
			wantCompany: "Initrode Solutions",
		},
		{
			name:        "person sender name falls back to domain",
			subject:     "Following up",
			body:        "The role at... well, we should talk sometime.",
			fromEmail:   "jane.doe@acme.com",
			fromName:    "Jane Doe",
			eventType:   domain.EventInterviewRequested,
			wantCompany: "Acme",
		},
		{
			name:        "company suffix stripped",
			subject:     "Thanks for Applying to Vandelay Industries Inc.",
			body:        "Received.",
			fromEmail:   "noreply@greenhouse.io",
			eventType:   domain.EventNewApplication,
			wantCompany: "Vandelay Industries",
		},
		{
			name:        "response pattern team at",
			subject:     "Application update",
			body:        "The hiring team at Stark, after careful review, has decided not to proceed.",
			fromEmail:   "recruiting@stark.com",
			eventType:   domain.EventRejected,
			wantCompany: "Stark",
		},
		{
			name:        "domain fallback",
			subject:     "Application received",
			body:        "Thanks.",
			fromEmail:   "jobs@wayne-enterprises.com",
			eventType:   domain.EventNewApplication,
			wantCompany: "Wayne Enterprises",
		},
		{
			name:      "ats domain never used as company",
			subject:   "Hello",
			body:      "General message with no company mention.",
			fromEmail: "noreply@greenhouse.io",
			eventType: domain.EventNewApplication,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := msgFrom(tt.subject, tt.body, tt.fromEmail, tt.fromName)
			id := e.ExtractIdentity(msg, tt.eventType)
			if id.Company != tt.wantCompany {
				t.Errorf("Company = %q, want %q", id.Company, tt.wantCompany)
			}
			if tt.wantPosition != "" && id.Position != tt.wantPosition {
				t.Errorf("Position = %q, want %q", id.Position, tt.wantPosition)
			}
		})
	}
}

func TestCleanCompanyName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Acme Inc.", "Acme"},
		{"Globex LLC", "Globex"},
		{"  Initech  Corp ", "Initech"},
		{"Hooli!", "Hooli"},
		{"The Umbrella Company", "Umbrella"},
	}
	for _, tt := range tests {
		if got := CleanCompanyName(tt.in); got != tt.want {
			t.Errorf("CleanCompanyName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
