// Package reconcile repairs counselor profiles whose identity reference is
// missing. Rows like these come from legacy imports and from provisioning
// attempts whose compensation also failed, leaving profile and identity
// disconnected.
package reconcile

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"counselor_admin_backend/internal/counselors/repository"
	"counselor_admin_backend/internal/events"
	"counselor_admin_backend/internal/idp"
	"counselor_admin_backend/platform/logger"
	"counselor_admin_backend/platform/metrics"
	"counselor_admin_backend/platform/phone"
)

// Backfill outcome label values.
const (
	outcomeMatched = "matched_existing"
	outcomeCreated = "created_identity"
	outcomeSkipped = "skipped"
)

// ProfileStore is the subset of the counselors repository the backfill needs.
type ProfileStore interface {
	ListMissingIdentity(ctx context.Context, limit int) ([]repository.Counselor, error)
	SetIdentityRef(ctx context.Context, id, identityID uuid.UUID) error
}

// Options bound a backfill run.
type Options struct {
	// Limit caps how many profile rows one run repairs.
	Limit int
	// MaxPages bounds the identity listing scan per profile. The provider has
	// no indexed phone lookup, so an exhausted scan means "assume absent".
	MaxPages int
	// PageSize is the identity listing page size.
	PageSize int
	// DryRun reports what would happen without creating or linking anything.
	DryRun bool
}

// Defaults applied when an option is zero.
const (
	DefaultLimit    = 100
	DefaultMaxPages = 10
	DefaultPageSize = 100
)

// Report summarizes a backfill run.
type Report struct {
	Scanned  int
	Matched  int
	Created  int
	Repaired int
	Skipped  int
}

// Service links orphaned counselor profiles to identities.
type Service struct {
	store    ProfileStore
	provider idp.Provider
	bus      events.Bus
	log      *logger.Logger
}

// New creates a reconciliation service.
func New(store ProfileStore, provider idp.Provider, bus events.Bus, log *logger.Logger) *Service {
	return &Service{
		store:    store,
		provider: provider,
		bus:      bus,
		log:      log,
	}
}

// Run repairs up to opts.Limit orphaned profiles. A failure on one row is
// logged and counted as skipped; the run continues with the next row. Only a
// failure to list the orphaned rows aborts the run.
func (s *Service) Run(ctx context.Context, opts Options) (Report, error) {
	opts = withDefaults(opts)

	var report Report

	profiles, err := s.store.ListMissingIdentity(ctx, opts.Limit)
	if err != nil {
		return report, fmt.Errorf("list profiles missing identity: %w", err)
	}

	s.log.Info("identity backfill started", "rows", len(profiles), "dry_run", opts.DryRun)

	for _, profile := range profiles {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}
		report.Scanned++

		identity, found, err := s.findIdentityByPhone(ctx, profile.PhoneNumber, opts)
		if err != nil {
			s.skip(&report, profile, "identity lookup failed", err)
			continue
		}

		createdIdentity := false
		if !found {
			if opts.DryRun {
				s.log.Info("would create identity",
					"counselor_id", profile.ID.String(), "phone", profile.PhoneNumber)
				report.Created++
				continue
			}

			identity, err = s.provider.CreateIdentity(ctx, idp.CreateIdentityParams{
				Phone:         profile.PhoneNumber,
				Email:         profile.Email,
				DisplayName:   profile.FullName,
				PhoneVerified: true,
			})
			if err != nil {
				s.skip(&report, profile, "identity creation failed", err)
				continue
			}
			createdIdentity = true
		}

		if opts.DryRun {
			s.log.Info("would link identity",
				"counselor_id", profile.ID.String(), "identity_id", identity.ID.String())
			report.Matched++
			continue
		}

		if err := s.store.SetIdentityRef(ctx, profile.ID, identity.ID); err != nil {
			s.skip(&report, profile, "identity link failed", err)
			continue
		}

		if createdIdentity {
			report.Created++
			metrics.BackfillTotal.WithLabelValues(outcomeCreated).Inc()
		} else {
			report.Matched++
			metrics.BackfillTotal.WithLabelValues(outcomeMatched).Inc()
		}
		report.Repaired++

		s.bus.Publish(ctx, events.CounselorIdentityBackfilled{
			BaseEvent:       events.NewBaseEvent(),
			CounselorID:     profile.ID,
			IdentityID:      identity.ID,
			CreatedIdentity: createdIdentity,
		})

		s.log.Info("counselor identity repaired",
			"counselor_id", profile.ID.String(),
			"identity_id", identity.ID.String(),
			"created_identity", createdIdentity,
		)
	}

	s.log.Info("identity backfill finished",
		"scanned", report.Scanned,
		"matched", report.Matched,
		"created", report.Created,
		"repaired", report.Repaired,
		"skipped", report.Skipped,
	)

	return report, nil
}

// findIdentityByPhone scans identity listing pages for a phone match. The scan
// is bounded: an exhausted scan reports not-found rather than an error, which
// can create a second identity for the same person if the provider holds more
// pages than MaxPages. Raising MaxPages trades run time for accuracy.
func (s *Service) findIdentityByPhone(ctx context.Context, phoneNumber string, opts Options) (idp.Identity, bool, error) {
	for page := 1; page <= opts.MaxPages; page++ {
		identities, err := s.provider.ListIdentities(ctx, page, opts.PageSize)
		if err != nil {
			return idp.Identity{}, false, err
		}
		if len(identities) == 0 {
			return idp.Identity{}, false, nil
		}

		for _, identity := range identities {
			if phone.Equal(identity.Phone, phoneNumber) {
				return identity, true, nil
			}
		}

		if len(identities) < opts.PageSize {
			return idp.Identity{}, false, nil
		}
	}

	return idp.Identity{}, false, nil
}

func (s *Service) skip(report *Report, profile repository.Counselor, reason string, err error) {
	report.Skipped++
	metrics.BackfillTotal.WithLabelValues(outcomeSkipped).Inc()
	s.log.Warn("skipping counselor",
		"counselor_id", profile.ID.String(),
		"reason", reason,
		"error", err.Error(),
	)
}

func withDefaults(opts Options) Options {
	if opts.Limit <= 0 {
		opts.Limit = DefaultLimit
	}
	if opts.MaxPages <= 0 {
		opts.MaxPages = DefaultMaxPages
	}
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	return opts
}
