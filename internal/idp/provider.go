// Package idp integrates with the external identity provider's admin API.
// Identities are the authenticated principals that counselor profiles
// reference; this package owns creating, deleting, and listing them.
package idp

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Identity is an authenticated principal in the identity provider.
type Identity struct {
	ID    uuid.UUID
	Phone string
	Email string
}

// CreateIdentityParams contains the fields for creating a new identity.
// Administrator-provisioned identities assert the phone as verified (nobody
// completes an OTP flow on the admin's behalf); email stays unverified.
type CreateIdentityParams struct {
	Phone         string
	Email         string
	DisplayName   string
	PhoneVerified bool
}

// Provider is the identity provisioner consumed by the counselors module and
// the reconciliation utility.
type Provider interface {
	// CreateIdentity registers a new identity. The provider enforces phone
	// uniqueness; a duplicate phone fails here rather than at the profile store.
	CreateIdentity(ctx context.Context, params CreateIdentityParams) (Identity, error)

	// DeleteIdentity removes an identity. Used only as the compensating action
	// when profile creation fails after the identity was created.
	DeleteIdentity(ctx context.Context, id uuid.UUID) error

	// ListIdentities returns one page of identities. The provider offers no
	// indexed phone lookup, so callers scan a bounded number of pages; an
	// absent match is not proof of non-existence.
	ListIdentities(ctx context.Context, page, perPage int) ([]Identity, error)
}

// APIError is a structured error returned by the provider's admin API.
type APIError struct {
	StatusCode int
	Message    string
}

// Error returns the provider's human-readable message so it can be surfaced
// to the caller verbatim.
func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("identity provider returned status %d", e.StatusCode)
}
