package reconcile

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"counselor_admin_backend/internal/counselors/repository"
	"counselor_admin_backend/internal/events"
	"counselor_admin_backend/internal/idp"
	"counselor_admin_backend/platform/logger"
)

type fakeStore struct {
	orphans  []repository.Counselor
	listErr  error
	links    map[uuid.UUID]uuid.UUID
	linkErrs map[uuid.UUID]error
}

func newFakeStore(orphans ...repository.Counselor) *fakeStore {
	return &fakeStore{
		orphans:  orphans,
		links:    make(map[uuid.UUID]uuid.UUID),
		linkErrs: make(map[uuid.UUID]error),
	}
}

func (f *fakeStore) ListMissingIdentity(_ context.Context, limit int) ([]repository.Counselor, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	if len(f.orphans) > limit {
		return f.orphans[:limit], nil
	}
	return f.orphans, nil
}

func (f *fakeStore) SetIdentityRef(_ context.Context, id, identityID uuid.UUID) error {
	if err := f.linkErrs[id]; err != nil {
		return err
	}
	f.links[id] = identityID
	return nil
}

type pagedProvider struct {
	pages       [][]idp.Identity
	listErr     error
	created     []idp.CreateIdentityParams
	createErr   error
	nextCreated uuid.UUID
}

func (p *pagedProvider) CreateIdentity(_ context.Context, params idp.CreateIdentityParams) (idp.Identity, error) {
	if p.createErr != nil {
		return idp.Identity{}, p.createErr
	}
	p.created = append(p.created, params)
	if p.nextCreated == uuid.Nil {
		p.nextCreated = uuid.New()
	}
	return idp.Identity{ID: p.nextCreated, Phone: params.Phone, Email: params.Email}, nil
}

func (p *pagedProvider) DeleteIdentity(context.Context, uuid.UUID) error { return nil }

func (p *pagedProvider) ListIdentities(_ context.Context, page, _ int) ([]idp.Identity, error) {
	if p.listErr != nil {
		return nil, p.listErr
	}
	if page > len(p.pages) {
		return nil, nil
	}
	return p.pages[page-1], nil
}

type recordingBus struct {
	published []events.Event
}

func (b *recordingBus) Publish(_ context.Context, event events.Event) {
	b.published = append(b.published, event)
}

func (b *recordingBus) PublishSync(_ context.Context, event events.Event) error {
	b.published = append(b.published, event)
	return nil
}

func (b *recordingBus) Subscribe(string, events.Handler) {}

func orphan(phone string) repository.Counselor {
	return repository.Counselor{
		ID:          uuid.New(),
		FullName:    "Asha Rao",
		Email:       "asha@example.com",
		PhoneNumber: phone,
	}
}

func TestRunLinksExistingIdentity(t *testing.T) {
	profile := orphan("+919876543210")
	store := newFakeStore(profile)

	existing := idp.Identity{ID: uuid.New(), Phone: "919876543210"}
	provider := &pagedProvider{pages: [][]idp.Identity{{existing}}}
	bus := &recordingBus{}

	svc := New(store, provider, bus, logger.New("development"))
	report, err := svc.Run(context.Background(), Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.Matched != 1 || report.Repaired != 1 || report.Created != 0 {
		t.Fatalf("unexpected report: %+v", report)
	}
	// The provider stores the number without the leading +; matching must
	// still succeed.
	if store.links[profile.ID] != existing.ID {
		t.Fatalf("profile linked to wrong identity: %v", store.links)
	}
	if len(provider.created) != 0 {
		t.Fatalf("no identity should be created when one exists, got %d", len(provider.created))
	}

	if len(bus.published) != 1 {
		t.Fatalf("expected 1 event, got %d", len(bus.published))
	}
	backfilled, ok := bus.published[0].(events.CounselorIdentityBackfilled)
	if !ok {
		t.Fatalf("expected CounselorIdentityBackfilled, got %T", bus.published[0])
	}
	if backfilled.CreatedIdentity {
		t.Fatal("event should record a matched identity, not a created one")
	}
}

func TestRunCreatesIdentityWhenUnmatched(t *testing.T) {
	profile := orphan("+919876543210")
	store := newFakeStore(profile)

	provider := &pagedProvider{pages: [][]idp.Identity{{
		{ID: uuid.New(), Phone: "911111111111"},
	}}}
	bus := &recordingBus{}

	svc := New(store, provider, bus, logger.New("development"))
	report, err := svc.Run(context.Background(), Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.Created != 1 || report.Repaired != 1 || report.Matched != 0 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if len(provider.created) != 1 {
		t.Fatalf("expected 1 created identity, got %d", len(provider.created))
	}
	params := provider.created[0]
	if params.Phone != profile.PhoneNumber || !params.PhoneVerified {
		t.Fatalf("unexpected creation params: %+v", params)
	}
	if store.links[profile.ID] != provider.nextCreated {
		t.Fatalf("profile not linked to created identity: %v", store.links)
	}
}

func TestRunScansMultiplePages(t *testing.T) {
	profile := orphan("+919876543210")
	store := newFakeStore(profile)

	match := idp.Identity{ID: uuid.New(), Phone: "+919876543210"}
	pageOne := make([]idp.Identity, 2)
	for i := range pageOne {
		pageOne[i] = idp.Identity{ID: uuid.New(), Phone: "911111111111"}
	}
	provider := &pagedProvider{pages: [][]idp.Identity{pageOne, {match}}}

	svc := New(store, provider, &recordingBus{}, logger.New("development"))
	report, err := svc.Run(context.Background(), Options{PageSize: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.Matched != 1 {
		t.Fatalf("expected match on second page, got %+v", report)
	}
	if store.links[profile.ID] != match.ID {
		t.Fatalf("profile linked to wrong identity: %v", store.links)
	}
}

func TestRunSkipsFailedRowsAndContinues(t *testing.T) {
	bad := orphan("+919000000000")
	good := orphan("+919876543210")
	store := newFakeStore(bad, good)
	store.linkErrs[bad.ID] = errors.New("row locked")

	provider := &pagedProvider{pages: [][]idp.Identity{{
		{ID: uuid.New(), Phone: "919000000000"},
		{ID: uuid.New(), Phone: "919876543210"},
	}}}

	svc := New(store, provider, &recordingBus{}, logger.New("development"))
	report, err := svc.Run(context.Background(), Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.Skipped != 1 || report.Repaired != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if _, linked := store.links[good.ID]; !linked {
		t.Fatal("later rows must be processed after a skip")
	}
}

func TestRunDryRunHasNoSideEffects(t *testing.T) {
	profile := orphan("+919876543210")
	store := newFakeStore(profile)
	provider := &pagedProvider{}
	bus := &recordingBus{}

	svc := New(store, provider, bus, logger.New("development"))
	report, err := svc.Run(context.Background(), Options{DryRun: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.Created != 1 {
		t.Fatalf("dry run should report the would-be creation: %+v", report)
	}
	if len(provider.created) != 0 || len(store.links) != 0 || len(bus.published) != 0 {
		t.Fatal("dry run must not create, link, or publish")
	}
}

func TestRunAbortsWhenListingFails(t *testing.T) {
	store := newFakeStore()
	store.listErr = errors.New("connection refused")

	svc := New(store, &pagedProvider{}, &recordingBus{}, logger.New("development"))
	if _, err := svc.Run(context.Background(), Options{}); err == nil {
		t.Fatal("expected error when listing orphans fails")
	}
}
