// Package notification provides event handlers for sending notifications in
// response to domain events. Domain modules publish events and stay unaware
// of email providers or templates.
package notification

import (
	"context"

	"counselor_admin_backend/internal/email"
	"counselor_admin_backend/internal/events"
	"counselor_admin_backend/platform/logger"
)

// Module subscribes to domain events and dispatches notifications.
// It is not HTTP-facing.
type Module struct {
	sender email.Sender
	log    *logger.Logger
}

// New creates the notification module.
func New(sender email.Sender, log *logger.Logger) *Module {
	return &Module{sender: sender, log: log}
}

// RegisterHandlers subscribes the module to the events it acts on.
func (m *Module) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.CounselorProvisioned{}.EventName(), m)
	bus.Subscribe(events.IdentityCompensationFailed{}.EventName(), m)
}

// Handle routes events to the appropriate handler method.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.CounselorProvisioned:
		return m.handleProvisioned(ctx, e)
	case events.IdentityCompensationFailed:
		m.handleCompensationFailed(e)
		return nil
	default:
		return nil
	}
}

func (m *Module) handleProvisioned(ctx context.Context, e events.CounselorProvisioned) error {
	if err := m.sender.SendCounselorWelcomeEmail(ctx, e.Email, e.FullName); err != nil {
		// Email delivery is best effort; the counselor is already provisioned.
		m.log.Error("failed to send counselor welcome email",
			"counselor_id", e.CounselorID.String(),
			"error", err.Error(),
		)
		return err
	}

	m.log.Info("counselor welcome email sent", "counselor_id", e.CounselorID.String())
	return nil
}

func (m *Module) handleCompensationFailed(e events.IdentityCompensationFailed) {
	m.log.Error("orphaned identity awaiting backfill",
		"identity_id", e.IdentityID.String(),
		"phone", e.Phone,
		"reason", e.Reason,
	)
}

// Compile-time check that Module implements events.Handler
var _ events.Handler = (*Module)(nil)
