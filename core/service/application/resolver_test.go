package application

import (
	"context"
	"testing"
	"time"

	"jobtrack_server/core/domain"
	"jobtrack_server/core/port/out"

	"github.com/google/uuid"
)

type fakeAppRepo struct {
	apps   []*domain.Application
	nextID int64
}

func (f *fakeAppRepo) GetByID(ctx context.Context, id int64) (*domain.Application, error) {
	for _, a := range f.apps {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, out.ErrNotFound
}

func (f *fakeAppRepo) GetByIdentity(ctx context.Context, userID uuid.UUID, company, position string) (*domain.Application, error) {
	key := domain.ApplicationKey(userID, company, position)
	for _, a := range f.apps {
		if a.IdentityKey() == key {
			return a, nil
		}
	}
	return nil, out.ErrNotFound
}

func (f *fakeAppRepo) ListOpenByCompany(ctx context.Context, userID uuid.UUID, company string) ([]*domain.Application, error) {
	norm := domain.NormalizeCompany(company)
	var open []*domain.Application
	for _, a := range f.apps {
		if a.UserID == userID && !a.Status.IsTerminal() && domain.NormalizeCompany(a.Company) == norm {
			open = append(open, a)
		}
	}
	return open, nil
}

func (f *fakeAppRepo) ListCompanies(ctx context.Context, userID uuid.UUID) ([]string, error) {
	var companies []string
	for _, a := range f.apps {
		if a.UserID == userID {
			companies = append(companies, a.Company)
		}
	}
	return companies, nil
}

func (f *fakeAppRepo) Create(ctx context.Context, app *domain.Application) error {
	f.nextID++
	app.ID = f.nextID
	f.apps = append(f.apps, app)
	return nil
}

func (f *fakeAppRepo) Update(ctx context.Context, app *domain.Application) error {
	for i, a := range f.apps {
		if a.ID == app.ID {
			f.apps[i] = app
			return nil
		}
	}
	return out.ErrNotFound
}

func (f *fakeAppRepo) Touch(ctx context.Context, id int64, at time.Time) error {
	for _, a := range f.apps {
		if a.ID == id {
			a.UpdatedAt = at
			return nil
		}
	}
	return out.ErrNotFound
}

func seedApp(repo *fakeAppRepo, userID uuid.UUID, company, position string, status domain.ApplicationStatus) *domain.Application {
	app := &domain.Application{
		UserID:   userID,
		Company:  company,
		Position: position,
		Status:   status,
	}
	_ = repo.Create(context.Background(), app)
	return app
}

func TestResolveExactIdentity(t *testing.T) {
	userID := uuid.New()
	repo := &fakeAppRepo{}
	seeded := seedApp(repo, userID, "Acme", "Engineer", domain.StatusApplied)
	r := NewResolver(repo, false)

	res, err := r.Resolve(context.Background(), userID, &domain.ClassificationResult{
		EventType: domain.EventInterviewRequested,
		Company:   "Acme",
		Position:  "Engineer",
	})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if res.Unresolved {
		t.Fatal("Resolve() unresolved, want exact match")
	}
	if res.Application == nil || res.Application.ID != seeded.ID {
		t.Errorf("Resolve() matched wrong application: %+v", res.Application)
	}
}

func TestResolveIdentityIsCaseAndSuffixInsensitive(t *testing.T) {
	userID := uuid.New()
	repo := &fakeAppRepo{}
	seeded := seedApp(repo, userID, "Acme Inc.", "Software Engineer", domain.StatusApplied)
	r := NewResolver(repo, false)

	res, err := r.Resolve(context.Background(), userID, &domain.ClassificationResult{
		EventType: domain.EventNewApplication,
		Company:   "acme",
		Position:  "software  engineer",
	})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if res.Application == nil || res.Application.ID != seeded.ID {
		t.Errorf("Resolve() did not match normalized identity: %+v", res.Application)
	}
}

func TestResolveNewApplicationMissMeansCreate(t *testing.T) {
	userID := uuid.New()
	r := NewResolver(&fakeAppRepo{}, false)

	res, err := r.Resolve(context.Background(), userID, &domain.ClassificationResult{
		EventType: domain.EventNewApplication,
		Company:   "Globex",
		Position:  "Analyst",
	})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if res.Unresolved {
		t.Error("new application with known company must not be unresolved")
	}
	if res.Application != nil {
		t.Error("expected empty resolution meaning create")
	}
}

func TestResolveSingleCandidateFallback(t *testing.T) {
	userID := uuid.New()
	repo := &fakeAppRepo{}
	seeded := seedApp(repo, userID, "Acme", "Engineer", domain.StatusApplied)
	seedApp(repo, userID, "Acme", "Designer", domain.StatusRejected)
	r := NewResolver(repo, false)

	// Position missing, but only one open Acme application exists.
	res, err := r.Resolve(context.Background(), userID, &domain.ClassificationResult{
		EventType: domain.EventRejected,
		Company:   "Acme",
	})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if res.Unresolved {
		t.Fatal("Resolve() unresolved, want single-candidate fallback")
	}
	if res.Application == nil || res.Application.ID != seeded.ID {
		t.Errorf("Resolve() matched wrong application: %+v", res.Application)
	}
}

func TestResolveAmbiguousCandidates(t *testing.T) {
	userID := uuid.New()
	repo := &fakeAppRepo{}
	seedApp(repo, userID, "Acme", "Engineer", domain.StatusApplied)
	seedApp(repo, userID, "Acme", "Designer", domain.StatusInterviewing)
	r := NewResolver(repo, false)

	res, err := r.Resolve(context.Background(), userID, &domain.ClassificationResult{
		EventType: domain.EventRejected,
		Company:   "Acme",
	})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if !res.Unresolved {
		t.Fatal("Resolve() resolved an ambiguous event")
	}
	if len(res.Candidates) != 2 {
		t.Errorf("Candidates = %d, want 2", len(res.Candidates))
	}
}

func TestResolveZeroCandidates(t *testing.T) {
	userID := uuid.New()
	r := NewResolver(&fakeAppRepo{}, false)

	res, err := r.Resolve(context.Background(), userID, &domain.ClassificationResult{
		EventType: domain.EventOffered,
		Company:   "Unknown Co",
	})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if !res.Unresolved {
		t.Error("Resolve() resolved an event with no candidates")
	}
}

func TestResolveStrictModeSkipsFallback(t *testing.T) {
	userID := uuid.New()
	repo := &fakeAppRepo{}
	seedApp(repo, userID, "Acme", "Engineer", domain.StatusApplied)
	r := NewResolver(repo, true)

	res, err := r.Resolve(context.Background(), userID, &domain.ClassificationResult{
		EventType: domain.EventRejected,
		Company:   "Acme",
	})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if !res.Unresolved {
		t.Error("strict mode must not use the company fallback")
	}
}

func TestResolveMissingCompany(t *testing.T) {
	userID := uuid.New()
	r := NewResolver(&fakeAppRepo{}, false)

	res, err := r.Resolve(context.Background(), userID, &domain.ClassificationResult{
		EventType: domain.EventRejected,
	})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if !res.Unresolved {
		t.Error("response event without a company must be unresolved")
	}

	res, err = r.Resolve(context.Background(), userID, &domain.ClassificationResult{
		EventType: domain.EventNewApplication,
	})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if !res.Unresolved {
		t.Error("confirmation without a company must be unresolved")
	}
}
