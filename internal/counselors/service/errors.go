package service

import (
	"github.com/google/uuid"
)

// Provisioning spans two independently failable backends; these error types
// tell callers which step rejected the request. All of them surface as
// 400 responses carrying their message.

// IdentityCreationError reports that the identity provider rejected
// CreateIdentity (duplicate phone, malformed contact data, provider outage).
// Nothing was created, so no compensation runs.
type IdentityCreationError struct {
	Err error
}

func (e *IdentityCreationError) Error() string {
	if e.Err == nil {
		return "failed to create identity"
	}
	return e.Err.Error()
}

func (e *IdentityCreationError) Unwrap() error { return e.Err }

// ProfileCreationError reports that the profile store rejected the insert
// after the identity was created. The compensating identity delete has
// already been attempted by the time callers see this.
type ProfileCreationError struct {
	Err error
}

func (e *ProfileCreationError) Error() string {
	if e.Err == nil {
		return "failed to create counselor profile"
	}
	return e.Err.Error()
}

func (e *ProfileCreationError) Unwrap() error { return e.Err }

// DuplicateProfileError is the ProfileCreationError specialization for an
// insert rejected by the one-profile-per-identity constraint.
type DuplicateProfileError struct{}

func (e *DuplicateProfileError) Error() string {
	return "Counselor profile already exists for this auth user"
}

// CompensationError records a failed rollback delete. It is logged and
// counted but never returned to callers: surfacing it would mask the
// original, more actionable store error. The orphaned identity is left for
// the identity backfill.
type CompensationError struct {
	IdentityID uuid.UUID
	Err        error
}

func (e *CompensationError) Error() string {
	return "failed to delete identity " + e.IdentityID.String() + ": " + e.Err.Error()
}

func (e *CompensationError) Unwrap() error { return e.Err }
