// Package service implements counselor provisioning and profile management.
// Provisioning coordinates two backends with no shared transaction: the
// identity provider and the profile store. The identity is created first and
// compensated (deleted) if the profile insert fails.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"counselor_admin_backend/internal/counselors/repository"
	"counselor_admin_backend/internal/counselors/transport"
	"counselor_admin_backend/internal/events"
	"counselor_admin_backend/internal/idp"
	"counselor_admin_backend/platform/apperr"
	"counselor_admin_backend/platform/config"
	"counselor_admin_backend/platform/logger"
	"counselor_admin_backend/platform/metrics"
)

// Service coordinates counselor provisioning and profile operations.
type Service struct {
	repo     repository.Repository
	provider idp.Provider
	bus      events.Bus
	cfg      config.PhoneConfig
	log      *logger.Logger
}

// New creates a new counselors service.
func New(repo repository.Repository, provider idp.Provider, bus events.Bus, cfg config.PhoneConfig, log *logger.Logger) *Service {
	return &Service{
		repo:     repo,
		provider: provider,
		bus:      bus,
		cfg:      cfg,
		log:      log,
	}
}

// Provision validates the request, creates an identity, and inserts the
// profile row. If the insert fails the just-created identity is deleted so a
// retry of the same payload can succeed.
//
// Validation failures happen before any side effect. Once the identity call
// is made, the sequence runs to completion even if the caller goes away:
// abandoning it midway would strand an identity without a profile.
func (s *Service) Provision(ctx context.Context, req transport.CreateCounselorRequest) (transport.CounselorResponse, error) {
	canonical, err := Canonicalize(req, s.cfg.GetPhoneCountryCode(), s.cfg.GetDefaultLanguage())
	if err != nil {
		metrics.ProvisioningTotal.WithLabelValues(metrics.ResultValidationFailed).Inc()
		return transport.CounselorResponse{}, err
	}

	ctx = context.WithoutCancel(ctx)

	identity, err := s.provider.CreateIdentity(ctx, idp.CreateIdentityParams{
		Phone:         canonical.Phone,
		Email:         canonical.Email,
		DisplayName:   canonical.FullName,
		PhoneVerified: true,
	})
	if err != nil {
		metrics.ProvisioningTotal.WithLabelValues(metrics.ResultIdentityRejected).Inc()
		return transport.CounselorResponse{}, &IdentityCreationError{Err: err}
	}

	counselor, err := s.repo.Insert(ctx, insertParams(identity.ID, canonical))
	if err != nil {
		s.compensate(ctx, identity.ID, canonical.Phone)

		if errors.Is(err, repository.ErrProfileExists) {
			metrics.ProvisioningTotal.WithLabelValues(metrics.ResultDuplicateProfile).Inc()
			return transport.CounselorResponse{}, &DuplicateProfileError{}
		}

		metrics.ProvisioningTotal.WithLabelValues(metrics.ResultProfileRejected).Inc()
		return transport.CounselorResponse{}, &ProfileCreationError{Err: err}
	}

	metrics.ProvisioningTotal.WithLabelValues(metrics.ResultSuccess).Inc()
	s.bus.Publish(ctx, events.CounselorProvisioned{
		BaseEvent:   events.NewBaseEvent(),
		CounselorID: counselor.ID,
		IdentityID:  identity.ID,
		FullName:    counselor.FullName,
		Email:       counselor.Email,
		Phone:       counselor.PhoneNumber,
	})

	return toResponse(counselor), nil
}

// compensate deletes an identity created by a provisioning attempt whose
// profile insert failed. Failure here is recorded, not returned: the store
// error the caller is about to see is the actionable one, and the orphaned
// identity is repaired by the identity backfill.
func (s *Service) compensate(ctx context.Context, identityID uuid.UUID, phone string) {
	if err := s.provider.DeleteIdentity(ctx, identityID); err != nil {
		cerr := &CompensationError{IdentityID: identityID, Err: err}
		metrics.CompensationFailures.Inc()
		s.log.CompensationFailure(identityID.String(), cerr)
		s.bus.Publish(ctx, events.IdentityCompensationFailed{
			BaseEvent:  events.NewBaseEvent(),
			IdentityID: identityID,
			Phone:      phone,
			Reason:     cerr.Error(),
		})
	}
}

// GetByID retrieves a single counselor profile.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (transport.CounselorResponse, error) {
	counselor, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.CounselorResponse{}, err
	}
	return toResponse(counselor), nil
}

// List retrieves all counselor profiles.
func (s *Service) List(ctx context.Context) (transport.CounselorListResponse, error) {
	counselors, err := s.repo.List(ctx)
	if err != nil {
		return transport.CounselorListResponse{}, err
	}

	results := make([]transport.CounselorResponse, 0, len(counselors))
	for _, counselor := range counselors {
		results = append(results, toResponse(counselor))
	}

	return transport.CounselorListResponse{Counselors: results, Total: len(results)}, nil
}

// Update applies ordinary profile edits. Contact fields and the identity
// reference are not editable here.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req transport.UpdateCounselorRequest) (transport.CounselorResponse, error) {
	dateOfBirth, err := parseDateOfBirth(req.DateOfBirth)
	if err != nil {
		return transport.CounselorResponse{}, apperr.Validation("invalid date_of_birth format (expected YYYY-MM-DD)")
	}

	counselor, err := s.repo.Update(ctx, repository.UpdateParams{
		ID:                 id,
		FullName:           req.FullName,
		Bio:                req.Bio,
		AvatarURL:          req.AvatarURL,
		DateOfBirth:        dateOfBirth,
		LicenseNumber:      req.LicenseNumber,
		Specializations:    req.Specializations,
		Languages:          req.Languages,
		YearsOfExperience:  req.YearsOfExperience,
		RateVideoPerMinute: req.RateVideoPerMinute,
		RateVoicePerMinute: req.RateVoicePerMinute,
		RateChatPerMinute:  req.RateChatPerMinute,
		AcceptsChat:        req.AcceptsChat,
		AcceptsVoice:       req.AcceptsVoice,
		AcceptsVideo:       req.AcceptsVideo,
		IsActive:           req.IsActive,
		IsAcceptingCalls:   req.IsAcceptingCalls,
	})
	if err != nil {
		return transport.CounselorResponse{}, err
	}

	return toResponse(counselor), nil
}

func insertParams(identityID uuid.UUID, canonical CanonicalRequest) repository.InsertParams {
	return repository.InsertParams{
		IdentityID:         identityID,
		FullName:           canonical.FullName,
		Email:              canonical.Email,
		PhoneNumber:        canonical.Phone,
		Bio:                canonical.Bio,
		AvatarURL:          canonical.AvatarURL,
		DateOfBirth:        canonical.DateOfBirth,
		LicenseNumber:      canonical.LicenseNumber,
		Specializations:    canonical.Specializations,
		Languages:          canonical.Languages,
		YearsOfExperience:  canonical.YearsOfExperience,
		RateVideoPerMinute: canonical.RateVideoPerMinute,
		RateVoicePerMinute: canonical.RateVoicePerMinute,
		RateChatPerMinute:  canonical.RateChatPerMinute,
		AcceptsChat:        canonical.AcceptsChat,
		AcceptsVoice:       canonical.AcceptsVoice,
		AcceptsVideo:       canonical.AcceptsVideo,
		IsActive:           canonical.IsActive,
		IsAcceptingCalls:   canonical.IsAcceptingCalls,
	}
}

func toResponse(c repository.Counselor) transport.CounselorResponse {
	var dateOfBirth *string
	if c.DateOfBirth != nil {
		formatted := c.DateOfBirth.Format("2006-01-02")
		dateOfBirth = &formatted
	}

	specializations := c.Specializations
	if specializations == nil {
		specializations = []string{}
	}
	languages := c.Languages
	if languages == nil {
		languages = []string{}
	}

	return transport.CounselorResponse{
		ID:                 c.ID,
		IdentityID:         c.IdentityID,
		FullName:           c.FullName,
		Email:              c.Email,
		PhoneNumber:        c.PhoneNumber,
		Bio:                c.Bio,
		AvatarURL:          c.AvatarURL,
		DateOfBirth:        dateOfBirth,
		LicenseNumber:      c.LicenseNumber,
		Specializations:    specializations,
		Languages:          languages,
		YearsOfExperience:  c.YearsOfExperience,
		RateVideoPerMinute: c.RateVideoPerMinute,
		RateVoicePerMinute: c.RateVoicePerMinute,
		RateChatPerMinute:  c.RateChatPerMinute,
		AcceptsChat:        c.AcceptsChat,
		AcceptsVoice:       c.AcceptsVoice,
		AcceptsVideo:       c.AcceptsVideo,
		IsActive:           c.IsActive,
		IsAcceptingCalls:   c.IsAcceptingCalls,
		CreatedAt:          c.CreatedAt.Format(time.RFC3339),
		UpdatedAt:          c.UpdatedAt.Format(time.RFC3339),
	}
}
