package notification

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"counselor_admin_backend/internal/events"
	"counselor_admin_backend/platform/logger"
)

type fakeSender struct {
	calls []string
	err   error
}

func (f *fakeSender) SendCounselorWelcomeEmail(_ context.Context, toEmail, _ string) error {
	f.calls = append(f.calls, toEmail)
	return f.err
}

func TestWelcomeEmailSentOnProvisioned(t *testing.T) {
	sender := &fakeSender{}
	log := logger.New("development")
	module := New(sender, log)

	bus := events.NewInMemoryBus(log)
	module.RegisterHandlers(bus)

	err := bus.PublishSync(context.Background(), events.CounselorProvisioned{
		BaseEvent:   events.NewBaseEvent(),
		CounselorID: uuid.New(),
		IdentityID:  uuid.New(),
		FullName:    "Asha Rao",
		Email:       "asha@example.com",
		Phone:       "+919876543210",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(sender.calls) != 1 || sender.calls[0] != "asha@example.com" {
		t.Fatalf("expected one welcome email to asha@example.com, got %v", sender.calls)
	}
}

func TestSenderFailureIsReported(t *testing.T) {
	sender := &fakeSender{err: errors.New("smtp unavailable")}
	log := logger.New("development")
	module := New(sender, log)

	bus := events.NewInMemoryBus(log)
	module.RegisterHandlers(bus)

	err := bus.PublishSync(context.Background(), events.CounselorProvisioned{
		BaseEvent: events.NewBaseEvent(),
		Email:     "asha@example.com",
		FullName:  "Asha Rao",
	})
	if err == nil {
		t.Fatal("expected handler error to surface through PublishSync")
	}
}

func TestCompensationFailureEventIsIgnoredByEmail(t *testing.T) {
	sender := &fakeSender{}
	log := logger.New("development")
	module := New(sender, log)

	bus := events.NewInMemoryBus(log)
	module.RegisterHandlers(bus)

	err := bus.PublishSync(context.Background(), events.IdentityCompensationFailed{
		BaseEvent:  events.NewBaseEvent(),
		IdentityID: uuid.New(),
		Phone:      "+919876543210",
		Reason:     "provider unavailable",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sender.calls) != 0 {
		t.Fatalf("no email expected, got %v", sender.calls)
	}
}
