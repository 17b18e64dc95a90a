package domain

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ApplicationStatus is the lifecycle state of a tracked job application.
type ApplicationStatus string

const (
	StatusApplied      ApplicationStatus = "applied"
	StatusInterviewing ApplicationStatus = "interviewing"
	StatusOffered      ApplicationStatus = "offered"
	StatusRejected     ApplicationStatus = "rejected"
	StatusWithdrawn    ApplicationStatus = "withdrawn"
)

// IsTerminal reports whether the engine may still transition out of the
// status. Rejected and Withdrawn are final for engine purposes; only the
// user can revive them.
func (s ApplicationStatus) IsTerminal() bool {
	return s == StatusRejected || s == StatusWithdrawn
}

// ApplicationSource records how an application entered the system.
type ApplicationSource string

const (
	SourceManual   ApplicationSource = "manual"
	SourceImported ApplicationSource = "imported"
)

// Application is a tracked job application. Mutated only through the
// state machine; the engine never deletes one.
type Application struct {
	ID       int64             `json:"id"`
	UserID   uuid.UUID         `json:"user_id"`
	Company  string            `json:"company"`
	Position string            `json:"position"`
	Status   ApplicationStatus `json:"status"`
	Source   ApplicationSource `json:"source"`

	// Source of the most recent status change. When manual and newer than
	// an incoming email, the transition is flagged, not blocked.
	LastStatusSource ApplicationSource `json:"last_status_source"`
	StatusChangedAt  time.Time         `json:"status_changed_at"`

	AppliedAt time.Time `json:"applied_at"`
	Notes     string    `json:"notes,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IdentityKey is the dedup identity for an application:
// (owner, normalized company, normalized position).
func (a *Application) IdentityKey() string {
	return ApplicationKey(a.UserID, a.Company, a.Position)
}

// ApplicationKey builds the case- and suffix-insensitive identity key used
// to prevent duplicate imported applications.
func ApplicationKey(userID uuid.UUID, company, position string) string {
	return userID.String() + "|" + NormalizeCompany(company) + "|" + NormalizeTitle(position)
}

var (
	companySuffixRe = regexp.MustCompile(`(?i),?\s+(inc|llc|ltd|corp|corporation|company|co)\.?\s*$`)
	spaceRe         = regexp.MustCompile(`\s+`)
)

// NormalizeCompany canonicalizes a company name for identity comparison:
// collapse whitespace, strip a trailing corporate suffix, casefold.
func NormalizeCompany(name string) string {
	name = spaceRe.ReplaceAllString(strings.TrimSpace(name), " ")
	name = companySuffixRe.ReplaceAllString(name, "")
	return strings.ToLower(strings.TrimSpace(name))
}

// NormalizeTitle canonicalizes a position title for identity comparison.
func NormalizeTitle(title string) string {
	title = spaceRe.ReplaceAllString(strings.TrimSpace(title), " ")
	return strings.ToLower(title)
}
