package normalize

import (
	"strings"
	"testing"
	"time"

	"jobtrack_server/core/domain"
	"jobtrack_server/pkg/apperr"
)

func TestNormalize(t *testing.T) {
	n := New()

	tests := []struct {
		name          string
		raw           *domain.RawMessage
		wantSubject   string
		wantDomain    string
		wantLocal     string
		wantAutomated bool
		wantReply     bool
	}{
		{
			name: "plain confirmation email",
			raw: &domain.RawMessage{
				MessageID: "m1",
				FromEmail: "noreply@greenhouse.io",
				Subject:   "Thank You for Applying to Acme",
				Body:      "We received your application.",
			},
			wantSubject:   "thank you for applying to acme",
			wantDomain:    "greenhouse.io",
			wantLocal:     "noreply",
			wantAutomated: true,
		},
		{
			name: "human sender is not automated",
			raw: &domain.RawMessage{
				MessageID: "m2",
				FromEmail: "jane.doe@acme.com",
				Subject:   "Interview invitation",
				Body:      "We'd like to schedule a call.",
			},
			wantSubject: "interview invitation",
			wantDomain:  "acme.com",
			wantLocal:   "jane.doe",
		},
		{
			name: "reply prefix detected",
			raw: &domain.RawMessage{
				MessageID: "m3",
				FromEmail: "recruiter@acme.com",
				Subject:   "Re: Interview invitation",
				Body:      "Sounds good.",
			},
			wantSubject: "re: interview invitation",
			wantDomain:  "acme.com",
			wantLocal:   "recruiter",
			wantReply:   true,
		},
		{
			name: "angle bracket address form",
			raw: &domain.RawMessage{
				MessageID: "m4",
				FromEmail: "Acme Careers <careers@acme.com>",
				Subject:   "Application received",
				Body:      "Thanks.",
			},
			wantSubject: "application received",
			wantDomain:  "acme.com",
			wantLocal:   "careers",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := n.Normalize(tt.raw)
			if err != nil {
				t.Fatalf("Normalize() error = %v", err)
			}
			if msg.SubjectLower != tt.wantSubject {
				t.Errorf("SubjectLower = %q, want %q", msg.SubjectLower, tt.wantSubject)
			}
			if msg.SenderDomain != tt.wantDomain {
				t.Errorf("SenderDomain = %q, want %q", msg.SenderDomain, tt.wantDomain)
			}
			if msg.SenderLocalPart != tt.wantLocal {
				t.Errorf("SenderLocalPart = %q, want %q", msg.SenderLocalPart, tt.wantLocal)
			}
			if msg.IsAutomatedSender != tt.wantAutomated {
				t.Errorf("IsAutomatedSender = %v, want %v", msg.IsAutomatedSender, tt.wantAutomated)
			}
			if msg.IsReply != tt.wantReply {
				t.Errorf("IsReply = %v, want %v", msg.IsReply, tt.wantReply)
			}
		})
	}
}

func TestNormalizeDeterministic(t *testing.T) {
	n := New()
	raw := &domain.RawMessage{
		MessageID:  "m1",
		FromEmail:  "noreply@lever.co",
		Subject:    "Your application",
		Body:       "<p>Thanks for applying!</p>",
		ReceivedAt: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	first, err := n.Normalize(raw)
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	second, err := n.Normalize(raw)
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if first.BodyLower != second.BodyLower || first.SubjectLower != second.SubjectLower {
		t.Error("Normalize() is not deterministic for identical input")
	}
}

func TestNormalizeMalformed(t *testing.T) {
	n := New()
	_, err := n.Normalize(&domain.RawMessage{MessageID: "empty"})
	if err == nil {
		t.Fatal("Normalize() expected error for empty message")
	}
	appErr := apperr.AsAppError(err)
	if appErr.Code != apperr.CodeMalformedMessage {
		t.Errorf("error code = %s, want %s", appErr.Code, apperr.CodeMalformedMessage)
	}
}

func TestCleanBody(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "strips html tags",
			body: "<div><p>Thank you for applying.</p></div>",
			want: "Thank you for applying.",
		},
		{
			name: "decodes entities",
			body: "Johnson &amp; Johnson",
			want: "Johnson & Johnson",
		},
		{
			name: "drops quoted reply lines",
			body: "Sounds good.\n> When are you free?\n> Thanks",
			want: "Sounds good.",
		},
		{
			name: "drops everything after reply header",
			body: "See you Tuesday.\nOn Mon, Mar 3, 2025 at 9:00 AM Jane Doe wrote:\nOriginal text here",
			want: "See you Tuesday.",
		},
		{
			name: "removes script blocks entirely",
			body: "Before<script>alert(1)</script>After",
			want: "Before After",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CleanBody(tt.body)
			if got != tt.want {
				t.Errorf("CleanBody() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCleanBodyCollapsesWhitespace(t *testing.T) {
	got := CleanBody("a  \t  b\n\n\n\n\nc")
	if strings.Contains(got, "  ") {
		t.Errorf("CleanBody() left runs of spaces: %q", got)
	}
	if strings.Contains(got, "\n\n\n") {
		t.Errorf("CleanBody() left runs of blank lines: %q", got)
	}
}
