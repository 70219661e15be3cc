// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"counselor_admin_backend/platform/events"
	"counselor_admin_backend/platform/logger"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
	InMemoryBus = events.InMemoryBus
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// NewInMemoryBus creates a new in-memory event bus.
func NewInMemoryBus(log *logger.Logger) *InMemoryBus {
	return events.NewInMemoryBus(log)
}

// =============================================================================
// Counselor Domain Events
// =============================================================================

// CounselorProvisioned is published after an identity and its profile row
// have both been created successfully.
type CounselorProvisioned struct {
	BaseEvent
	CounselorID uuid.UUID `json:"counselorId"`
	IdentityID  uuid.UUID `json:"identityId"`
	FullName    string    `json:"fullName"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
}

func (e CounselorProvisioned) EventName() string { return "counselors.provisioned" }

// IdentityCompensationFailed is published when the rollback delete of a
// just-created identity fails, leaving an orphan for the backfill to repair.
type IdentityCompensationFailed struct {
	BaseEvent
	IdentityID uuid.UUID `json:"identityId"`
	Phone      string    `json:"phone"`
	Reason     string    `json:"reason"`
}

func (e IdentityCompensationFailed) EventName() string { return "counselors.identity.compensation_failed" }

// CounselorIdentityBackfilled is published when the reconciliation utility
// links a previously orphaned profile row to an identity.
type CounselorIdentityBackfilled struct {
	BaseEvent
	CounselorID     uuid.UUID `json:"counselorId"`
	IdentityID      uuid.UUID `json:"identityId"`
	CreatedIdentity bool      `json:"createdIdentity"`
}

func (e CounselorIdentityBackfilled) EventName() string { return "counselors.identity.backfilled" }
