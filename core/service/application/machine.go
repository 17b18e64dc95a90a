// Package application holds the state machine and resolution logic for
// application records. Records are mutated only through this package.
package application

import (
	"time"

	"jobtrack_server/core/domain"
)

// Apply returns the status an event moves an application to. The second
// return is false when the event does not change the status, either
// because the current state is terminal or because the transition is
// not in the table. Rejected and Withdrawn are terminal: the engine
// never transitions out of them.
func Apply(current domain.ApplicationStatus, event domain.EventType) (domain.ApplicationStatus, bool) {
	if current.IsTerminal() {
		return current, false
	}

	switch event {
	case domain.EventInterviewRequested:
		if current == domain.StatusApplied {
			return domain.StatusInterviewing, true
		}
	case domain.EventOffered:
		if current == domain.StatusInterviewing {
			return domain.StatusOffered, true
		}
	case domain.EventRejected:
		if current == domain.StatusApplied || current == domain.StatusInterviewing || current == domain.StatusOffered {
			return domain.StatusRejected, true
		}
	}

	return current, false
}

// OverridesManualEdit reports whether applying an email-driven
// transition would supersede a manual status change the user made after
// the message arrived. The transition still happens; this only flags it
// in the scan report.
func OverridesManualEdit(app *domain.Application, receivedAt time.Time) bool {
	return app.LastStatusSource == domain.SourceManual && app.StatusChangedAt.After(receivedAt)
}
