// Package scan drives one bounded mailbox scan per owner: fetch, then
// normalize, dedup, classify, resolve, and commit each message in order.
package scan

import (
	"context"
	"errors"
	"time"

	"jobtrack_server/core/domain"
	"jobtrack_server/core/port/in"
	"jobtrack_server/core/port/out"
	"jobtrack_server/core/service/application"
	"jobtrack_server/core/service/classify"
	"jobtrack_server/core/service/contact"
	"jobtrack_server/core/service/normalize"
	"jobtrack_server/core/service/signal"
	"jobtrack_server/pkg/apperr"
	"jobtrack_server/pkg/logger"

	"github.com/google/uuid"
)

// Config bounds the default scan window.
type Config struct {
	DefaultDaysBack   int
	DefaultMaxResults int
}

// Deps wires the orchestrator. Archive is optional; everything else is
// required.
type Deps struct {
	Provider out.MailProvider
	Accounts out.MailAccountRepository
	Locker   out.ScanLocker
	Tx       out.TxManager
	Apps     out.ApplicationRepository
	Ledger   out.LedgerRepository
	Contacts out.ContactRepository
	Reports  out.ScanReportRepository
	Archive  out.MessageArchive

	Extractor  *signal.Extractor
	Classifier *classify.Classifier
	Resolver   *application.Resolver
}

// Orchestrator implements in.ScanService. Messages are processed
// sequentially in provider order; later messages in a thread supersede
// earlier ones by arriving later, never by racing them.
type Orchestrator struct {
	cfg  Config
	deps Deps

	normalizer *normalize.Normalizer
	log        *logger.Logger
}

func NewOrchestrator(cfg Config, deps Deps) *Orchestrator {
	if cfg.DefaultDaysBack <= 0 {
		cfg.DefaultDaysBack = 30
	}
	if cfg.DefaultMaxResults <= 0 {
		cfg.DefaultMaxResults = 200
	}
	return &Orchestrator{
		cfg:        cfg,
		deps:       deps,
		normalizer: normalize.New(),
		log:        logger.Default().WithField("component", "scan"),
	}
}

var _ in.ScanService = (*Orchestrator)(nil)

// Scan runs one bounded scan for the owner. Safe to re-run at any time:
// the ledger makes reprocessing a no-op.
func (o *Orchestrator) Scan(ctx context.Context, userID uuid.UUID, req *in.ScanRequest) (*domain.ScanReport, error) {
	release, err := o.deps.Locker.Acquire(ctx, userID)
	if err != nil {
		if errors.Is(err, out.ErrScanInProgress) {
			return nil, apperr.ScanInProgress(userID.String())
		}
		return nil, apperr.InternalWithError(err)
	}
	defer release()

	account, err := o.deps.Accounts.GetByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, out.ErrNotFound) {
			return nil, apperr.NotFound("connected mailbox")
		}
		return nil, apperr.DatabaseError("load mail account", err)
	}

	if req == nil {
		req = &in.ScanRequest{}
	}
	now := time.Now().UTC()
	opts := req.Window(now, o.cfg.DefaultDaysBack, o.cfg.DefaultMaxResults)

	report := &domain.ScanReport{
		UserID:    userID,
		Status:    domain.ScanComplete,
		StartedAt: now,
	}

	messages, fetchErr := o.deps.Provider.FetchWindow(ctx, account.Token, opts)
	switch {
	case fetchErr == nil:
	case errors.Is(fetchErr, out.ErrRateLimited):
		// Process what arrived, report the scan partial.
		report.Status = domain.ScanPartial
	default:
		return nil, apperr.ScanIncomplete("mailbox fetch failed", fetchErr)
	}
	report.Fetched = len(messages)

	companies, err := o.deps.Apps.ListCompanies(ctx, userID)
	if err != nil {
		return nil, apperr.DatabaseError("list companies", err)
	}

	log := o.log.WithField("user_id", userID.String())
	for _, raw := range messages {
		o.processMessage(ctx, userID, raw, &companies, report, log)
	}

	report.FinishedAt = time.Now().UTC()

	if err := o.deps.Reports.Save(ctx, report); err != nil {
		log.WithError(err).Warn("failed to persist scan report")
	}
	if err := o.deps.Accounts.UpdateLastSynced(ctx, userID, report.FinishedAt); err != nil {
		log.WithError(err).Warn("failed to record last sync time")
	}

	log.WithFields(map[string]any{
		"fetched":      report.Fetched,
		"imported":     report.Imported,
		"transitioned": report.Transitioned,
		"unresolved":   report.Unresolved,
		"status":       string(report.Status),
	}).Info("scan finished")

	return report, nil
}

// processMessage runs one message through the pipeline. The ledger
// append and any application mutation commit in one transaction, so a
// crash never leaves a message marked processed without its state
// change. Failures are counted, never fatal to the scan.
func (o *Orchestrator) processMessage(ctx context.Context, userID uuid.UUID, raw *domain.RawMessage, companies *[]string, report *domain.ScanReport, log *logger.Logger) {
	msg, err := o.normalizer.Normalize(raw)
	if err != nil {
		report.Errors++
		log.WithField("message_id", raw.MessageID).Debug("skipping malformed message")
		return
	}

	seen, err := o.deps.Ledger.Exists(ctx, userID, raw.MessageID)
	if err != nil {
		report.Errors++
		return
	}
	if seen {
		report.SkippedDuplicate++
		return
	}

	signals := o.deps.Extractor.Extract(msg, *companies)
	res := o.deps.Classifier.Classify(msg, signals)

	entry := &domain.ImportLedgerEntry{
		UserID:      userID,
		MessageID:   raw.MessageID,
		EventType:   res.EventType,
		Confidence:  res.Confidence,
		RuleID:      res.RuleID,
		Signals:     res.Signals,
		ProcessedAt: time.Now().UTC(),
	}

	err = o.deps.Tx.WithinTx(ctx, func(ctx context.Context) error {
		if !res.EventType.IsActionable() {
			report.SkippedUnrelated++
			return o.deps.Ledger.Append(ctx, entry)
		}
		return o.applyEvent(ctx, userID, msg, signals, res, entry, companies, report)
	})
	if err != nil {
		if errors.Is(err, out.ErrLedgerConflict) {
			report.SkippedDuplicate++
			return
		}
		report.Errors++
		log.WithError(err).WithField("message_id", raw.MessageID).Warn("message commit failed")
	}
}

// applyEvent resolves the event against the owner's applications and
// applies the state machine, inside the caller's transaction.
func (o *Orchestrator) applyEvent(ctx context.Context, userID uuid.UUID, msg *domain.NormalizedMessage, signals domain.SignalSet, res *domain.ClassificationResult, entry *domain.ImportLedgerEntry, companies *[]string, report *domain.ScanReport) error {
	resolution, err := o.deps.Resolver.Resolve(ctx, userID, res)
	if err != nil {
		return err
	}

	if resolution.Unresolved {
		o.recordUnresolved(ctx, userID, msg, res, len(resolution.Candidates), report)
		return o.deps.Ledger.Append(ctx, entry)
	}

	now := time.Now().UTC()
	var app *domain.Application

	switch {
	case res.EventType == domain.EventNewApplication && resolution.Application != nil:
		// Identity already on file: refresh, never duplicate.
		app = resolution.Application
		if err := o.deps.Apps.Touch(ctx, app.ID, now); err != nil {
			return err
		}
		report.SkippedDuplicate++

	case res.EventType == domain.EventNewApplication:
		app = &domain.Application{
			UserID:           userID,
			Company:          res.Company,
			Position:         res.Position,
			Status:           domain.StatusApplied,
			Source:           domain.SourceImported,
			LastStatusSource: domain.SourceImported,
			StatusChangedAt:  now,
			AppliedAt:        msg.Raw.ReceivedAt,
		}
		if err := o.deps.Apps.Create(ctx, app); err != nil {
			return err
		}
		report.Imported++
		*companies = append(*companies, app.Company)

	default:
		app = resolution.Application
		next, changed := application.Apply(app.Status, res.EventType)
		transition := domain.Transition{
			ApplicationID: app.ID,
			Company:       app.Company,
			Position:      app.Position,
			From:          app.Status,
			To:            next,
			EventType:     res.EventType,
			MessageID:     msg.Raw.MessageID,
		}
		if changed {
			transition.OverridesManualEdit = application.OverridesManualEdit(app, msg.Raw.ReceivedAt)
			app.Status = next
			app.LastStatusSource = domain.SourceImported
			app.StatusChangedAt = now
			if err := o.deps.Apps.Update(ctx, app); err != nil {
				return err
			}
			report.Transitioned++
		} else {
			transition.NoOp = true
		}
		report.Transitions = append(report.Transitions, transition)
	}

	entry.ApplicationID = &app.ID

	if c := contact.Extract(userID, msg, signals, res, &app.ID, now); c != nil {
		created, err := o.deps.Contacts.Upsert(ctx, c)
		if err != nil {
			return err
		}
		if created {
			report.ContactsAdded++
		}
	}

	return o.deps.Ledger.Append(ctx, entry)
}

// recordUnresolved reports an ambiguous event and archives its evidence
// for review. Archive failures never fail the message.
func (o *Orchestrator) recordUnresolved(ctx context.Context, userID uuid.UUID, msg *domain.NormalizedMessage, res *domain.ClassificationResult, candidates int, report *domain.ScanReport) {
	event := domain.UnresolvedEvent{
		MessageID:  msg.Raw.MessageID,
		EventType:  res.EventType,
		Company:    res.Company,
		Position:   res.Position,
		Subject:    msg.Raw.Subject,
		FromEmail:  msg.Raw.FromEmail,
		ReceivedAt: msg.Raw.ReceivedAt,
		Candidates: candidates,
	}
	report.Unresolved++
	report.UnresolvedEvents = append(report.UnresolvedEvents, event)

	if o.deps.Archive == nil {
		return
	}
	evidence := &out.UnresolvedEvidence{
		Event:   event,
		Body:    msg.BodyClean,
		RuleID:  res.RuleID,
		Signals: res.Signals,
	}
	if err := o.deps.Archive.StoreUnresolved(ctx, userID, evidence); err != nil {
		o.log.WithError(err).Debug("unresolved evidence archive failed")
	}
}

// LatestReport returns the owner's most recent scan report.
func (o *Orchestrator) LatestReport(ctx context.Context, userID uuid.UUID) (*domain.ScanReport, error) {
	report, err := o.deps.Reports.Latest(ctx, userID)
	if err != nil {
		if errors.Is(err, out.ErrNotFound) {
			return nil, apperr.NotFound("scan report")
		}
		return nil, apperr.DatabaseError("load scan report", err)
	}
	return report, nil
}

// ListUnresolved returns archived unresolved events for review.
func (o *Orchestrator) ListUnresolved(ctx context.Context, userID uuid.UUID, limit int) ([]*out.UnresolvedEvidence, error) {
	if o.deps.Archive == nil {
		return nil, nil
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	evidence, err := o.deps.Archive.ListUnresolved(ctx, userID, limit)
	if err != nil {
		return nil, apperr.DatabaseError("list unresolved events", err)
	}
	return evidence, nil
}
