package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrProfileExists indicates the unique constraint on the identity reference
// rejected an insert: the identity already has a counselor profile.
var ErrProfileExists = errors.New("counselor profile already exists for this identity")

// Counselor represents a counselor profile row.
// IdentityID is nil only for legacy rows awaiting identity backfill; a valid
// profile references exactly one identity.
type Counselor struct {
	ID                 uuid.UUID
	IdentityID         *uuid.UUID
	FullName           string
	Email              string
	PhoneNumber        string
	Bio                *string
	AvatarURL          *string
	DateOfBirth        *time.Time
	LicenseNumber      *string
	Specializations    []string
	Languages          []string
	YearsOfExperience  int
	RateVideoPerMinute float64
	RateVoicePerMinute float64
	RateChatPerMinute  float64
	AcceptsChat        bool
	AcceptsVoice       bool
	AcceptsVideo       bool
	IsActive           bool
	IsAcceptingCalls   bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// InsertParams contains the canonical fields for creating a counselor profile.
type InsertParams struct {
	IdentityID         uuid.UUID
	FullName           string
	Email              string
	PhoneNumber        string
	Bio                *string
	AvatarURL          *string
	DateOfBirth        *time.Time
	LicenseNumber      *string
	Specializations    []string
	Languages          []string
	YearsOfExperience  int
	RateVideoPerMinute float64
	RateVoicePerMinute float64
	RateChatPerMinute  float64
	AcceptsChat        bool
	AcceptsVoice       bool
	AcceptsVideo       bool
	IsActive           bool
	IsAcceptingCalls   bool
}

// UpdateParams contains optional profile field edits; nil fields keep their
// current values.
type UpdateParams struct {
	ID                 uuid.UUID
	FullName           *string
	Bio                *string
	AvatarURL          *string
	DateOfBirth        *time.Time
	LicenseNumber      *string
	Specializations    []string
	Languages          []string
	YearsOfExperience  *int
	RateVideoPerMinute *float64
	RateVoicePerMinute *float64
	RateChatPerMinute  *float64
	AcceptsChat        *bool
	AcceptsVoice       *bool
	AcceptsVideo       *bool
	IsActive           *bool
	IsAcceptingCalls   *bool
}

// Reader provides read operations for counselor profiles.
type Reader interface {
	GetByID(ctx context.Context, id uuid.UUID) (Counselor, error)
	List(ctx context.Context) ([]Counselor, error)
	// ListMissingIdentity returns profiles whose identity reference is absent,
	// oldest first, bounded by limit.
	ListMissingIdentity(ctx context.Context, limit int) ([]Counselor, error)
}

// Writer provides write operations for counselor profiles.
type Writer interface {
	// Insert creates a profile linked to the given identity and returns the
	// stored row with generated id and timestamps. A duplicate identity
	// reference fails with ErrProfileExists.
	Insert(ctx context.Context, params InsertParams) (Counselor, error)
	Update(ctx context.Context, params UpdateParams) (Counselor, error)
	// SetIdentityRef links an existing profile row to an identity.
	SetIdentityRef(ctx context.Context, id, identityID uuid.UUID) error
}

// Repository combines all counselor profile operations.
type Repository interface {
	Reader
	Writer
}
