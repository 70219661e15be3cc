package service

import (
	"errors"
	"testing"

	"counselor_admin_backend/internal/counselors/transport"
	"counselor_admin_backend/platform/apperr"
)

func strPtr(s string) *string     { return &s }
func intPtr(i int) *int           { return &i }
func floatPtr(f float64) *float64 { return &f }
func boolPtr(b bool) *bool        { return &b }

func validFlatRequest() transport.CreateCounselorRequest {
	return transport.CreateCounselorRequest{
		ProfilePayload: transport.ProfilePayload{FullName: "Asha Rao"},
		PhoneNumber:    "9876543210",
		Email:          "asha@example.com",
	}
}

func TestCanonicalizeAcceptsBothShapes(t *testing.T) {
	flat := transport.CreateCounselorRequest{
		ProfilePayload: transport.ProfilePayload{
			FullName:  "Asha Rao",
			Bio:       strPtr("Experienced counselor"),
			Languages: []string{"en", "hi"},
		},
		PhoneNumber: "+91 98765 43210",
		Email:       "asha@example.com",
	}
	nested := transport.CreateCounselorRequest{
		Phone: "+91 98765 43210",
		Email: "asha@example.com",
		Profile: transport.ProfileField{Payload: &transport.ProfilePayload{
			FullName:  "Asha Rao",
			Bio:       strPtr("Experienced counselor"),
			Languages: []string{"en", "hi"},
		}},
	}

	fromFlat, err := Canonicalize(flat, "91", "en")
	if err != nil {
		t.Fatalf("flat shape: unexpected error: %v", err)
	}
	fromNested, err := Canonicalize(nested, "91", "en")
	if err != nil {
		t.Fatalf("nested shape: unexpected error: %v", err)
	}

	if fromFlat.Phone != fromNested.Phone || fromFlat.FullName != fromNested.FullName {
		t.Fatalf("shapes diverged: flat=%+v nested=%+v", fromFlat, fromNested)
	}
	if fromFlat.Phone != "+919876543210" {
		t.Fatalf("expected canonical phone +919876543210, got %q", fromFlat.Phone)
	}
	if *fromFlat.Bio != *fromNested.Bio {
		t.Fatalf("bio diverged: %q vs %q", *fromFlat.Bio, *fromNested.Bio)
	}
}

func TestCanonicalizeNestedProfileWins(t *testing.T) {
	req := transport.CreateCounselorRequest{
		ProfilePayload: transport.ProfilePayload{FullName: "Top Level"},
		Phone:          "9876543210",
		Email:          "asha@example.com",
		Profile:        transport.ProfileField{Payload: &transport.ProfilePayload{FullName: "Nested Name"}},
	}

	canonical, err := Canonicalize(req, "91", "en")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if canonical.FullName != "Nested Name" {
		t.Fatalf("expected nested profile to win, got %q", canonical.FullName)
	}
}

func TestCanonicalizePhonePreferredOverPhoneNumber(t *testing.T) {
	req := validFlatRequest()
	req.Phone = "9000000000"
	req.PhoneNumber = "9111111111"

	canonical, err := Canonicalize(req, "91", "en")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if canonical.Phone != "+919000000000" {
		t.Fatalf("expected phone field to win, got %q", canonical.Phone)
	}
}

func TestCanonicalizeValidationOrder(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*transport.CreateCounselorRequest)
		wantMsg string
	}{
		{
			name:    "missing email reported first",
			mutate:  func(r *transport.CreateCounselorRequest) { r.Email = ""; r.FullName = ""; r.PhoneNumber = "" },
			wantMsg: "email is required",
		},
		{
			name:    "missing full_name reported before phone",
			mutate:  func(r *transport.CreateCounselorRequest) { r.FullName = ""; r.PhoneNumber = "" },
			wantMsg: "full_name is required",
		},
		{
			name:    "missing phone",
			mutate:  func(r *transport.CreateCounselorRequest) { r.PhoneNumber = "" },
			wantMsg: "phone or phone_number is required",
		},
		{
			name:    "invalid email format",
			mutate:  func(r *transport.CreateCounselorRequest) { r.Email = "not-an-email" },
			wantMsg: "invalid email format",
		},
		{
			name:    "email without domain dot",
			mutate:  func(r *transport.CreateCounselorRequest) { r.Email = "asha@example" },
			wantMsg: "invalid email format",
		},
		{
			name:    "presence checked before email format",
			mutate:  func(r *transport.CreateCounselorRequest) { r.Email = "not-an-email"; r.FullName = "" },
			wantMsg: "full_name is required",
		},
		{
			name:    "short phone",
			mutate:  func(r *transport.CreateCounselorRequest) { r.PhoneNumber = "12345" },
			wantMsg: "invalid phone number (must have at least 10 digits)",
		},
		{
			name:    "country code alone is not a number",
			mutate:  func(r *transport.CreateCounselorRequest) { r.PhoneNumber = "+91" },
			wantMsg: "invalid phone number (must have at least 10 digits)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validFlatRequest()
			tt.mutate(&req)

			_, err := Canonicalize(req, "91", "en")
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if apperr.GetKind(err) != apperr.KindValidation {
				t.Fatalf("expected validation kind, got %v", apperr.GetKind(err))
			}
			if err.Error() != tt.wantMsg {
				t.Fatalf("expected message %q, got %q", tt.wantMsg, err.Error())
			}
		})
	}
}

func TestCanonicalizePhoneFormats(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"9876543210", "+919876543210"},
		{"+919876543210", "+919876543210"},
		{"919876543210", "+919876543210"},
		{"+91 98765-43210", "+919876543210"},
		// The country code is stripped only as a literal leading prefix; a
		// "91" behind formatting, or repeated after the prefix, survives.
		{"(91) 98765 43210", "+91919876543210"},
		{"+9191 9876543210", "+91919876543210"},
	}

	for _, tt := range tests {
		req := validFlatRequest()
		req.PhoneNumber = tt.raw

		canonical, err := Canonicalize(req, "91", "en")
		if err != nil {
			t.Fatalf("Canonicalize(%q): unexpected error: %v", tt.raw, err)
		}
		if canonical.Phone != tt.want {
			t.Fatalf("Canonicalize(%q): expected %q, got %q", tt.raw, tt.want, canonical.Phone)
		}
	}
}

func TestCanonicalizeAppliesDefaults(t *testing.T) {
	canonical, err := Canonicalize(validFlatRequest(), "91", "en")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if canonical.Specializations == nil || len(canonical.Specializations) != 0 {
		t.Fatalf("expected empty specializations, got %v", canonical.Specializations)
	}
	if len(canonical.Languages) != 1 || canonical.Languages[0] != "en" {
		t.Fatalf("expected default languages [en], got %v", canonical.Languages)
	}
	if canonical.YearsOfExperience != 0 {
		t.Fatalf("expected zero years of experience, got %d", canonical.YearsOfExperience)
	}
	if canonical.RateVideoPerMinute != 2.0 || canonical.RateVoicePerMinute != 1.5 || canonical.RateChatPerMinute != 0.5 {
		t.Fatalf("unexpected default rates: %v %v %v",
			canonical.RateVideoPerMinute, canonical.RateVoicePerMinute, canonical.RateChatPerMinute)
	}
	if !canonical.AcceptsChat || !canonical.AcceptsVoice || !canonical.AcceptsVideo {
		t.Fatal("expected all channel flags to default to true")
	}
	if !canonical.IsActive || !canonical.IsAcceptingCalls {
		t.Fatal("expected activity flags to default to true")
	}
	if canonical.DateOfBirth != nil {
		t.Fatalf("expected nil date of birth, got %v", canonical.DateOfBirth)
	}
}

func TestCanonicalizeKeepsExplicitValues(t *testing.T) {
	req := validFlatRequest()
	req.Languages = []string{}
	req.Specializations = []string{"anxiety"}
	req.YearsOfExperience = intPtr(7)
	req.RateVideoPerMinute = floatPtr(0)
	req.AcceptsVideo = boolPtr(false)
	req.IsActive = boolPtr(false)
	req.DateOfBirth = strPtr("1990-04-15")

	canonical, err := Canonicalize(req, "91", "en")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// An explicitly empty language list is not replaced by the default.
	if len(canonical.Languages) != 0 {
		t.Fatalf("expected explicit empty languages kept, got %v", canonical.Languages)
	}
	if len(canonical.Specializations) != 1 || canonical.Specializations[0] != "anxiety" {
		t.Fatalf("unexpected specializations: %v", canonical.Specializations)
	}
	if canonical.YearsOfExperience != 7 {
		t.Fatalf("expected 7 years, got %d", canonical.YearsOfExperience)
	}
	if canonical.RateVideoPerMinute != 0 {
		t.Fatalf("expected explicit zero rate kept, got %v", canonical.RateVideoPerMinute)
	}
	if canonical.AcceptsVideo || canonical.IsActive {
		t.Fatal("expected explicit false flags kept")
	}
	if canonical.DateOfBirth == nil || canonical.DateOfBirth.Format("2006-01-02") != "1990-04-15" {
		t.Fatalf("unexpected date of birth: %v", canonical.DateOfBirth)
	}
}

func TestCanonicalizeRejectsMalformedDateOfBirth(t *testing.T) {
	req := validFlatRequest()
	req.DateOfBirth = strPtr("15/04/1990")

	_, err := Canonicalize(req, "91", "en")
	if err == nil {
		t.Fatal("expected error for malformed date_of_birth")
	}
	if apperr.GetKind(err) != apperr.KindValidation {
		t.Fatalf("expected validation kind, got %v", apperr.GetKind(err))
	}
}

func TestCanonicalizeUsesConfiguredDefaultLanguage(t *testing.T) {
	canonical, err := Canonicalize(validFlatRequest(), "91", "hi")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(canonical.Languages) != 1 || canonical.Languages[0] != "hi" {
		t.Fatalf("expected configured default language [hi], got %v", canonical.Languages)
	}
}

func TestCanonicalizeIsPure(t *testing.T) {
	req := validFlatRequest()
	req.PhoneNumber = "123"

	if _, err := Canonicalize(req, "91", "en"); err == nil {
		t.Fatal("expected error")
	} else if !errors.As(err, new(*apperr.Error)) {
		t.Fatalf("expected *apperr.Error, got %T", err)
	}
}
