package service

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"counselor_admin_backend/internal/counselors/transport"
	"counselor_admin_backend/platform/apperr"
	"counselor_admin_backend/platform/phone"
)

// Default per-minute rates in currency units, applied when a rate is absent.
const (
	defaultRateVideo = 2.0
	defaultRateVoice = 1.5
	defaultRateChat  = 0.5
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// CanonicalRequest is the single internal representation both payload shapes
// normalize into. All defaults are applied and the phone is canonical.
type CanonicalRequest struct {
	FullName           string
	Email              string
	Phone              string
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

// Canonicalize validates an incoming payload and normalizes it into a
// CanonicalRequest. It is a pure transformation; failures are
// apperr.Validation and happen before any network call.
//
// The nested "profile" value is the profile source when it is an object;
// otherwise the top-level payload is (the flat shape). Contact fields always
// come from the top level, with "phone" preferred over the legacy
// "phone_number".
func Canonicalize(req transport.CreateCounselorRequest, countryCode, defaultLanguage string) (CanonicalRequest, error) {
	profile := &req.ProfilePayload
	if req.Profile.Payload != nil {
		profile = req.Profile.Payload
	}

	rawPhone := strings.TrimSpace(req.Phone)
	if rawPhone == "" {
		rawPhone = strings.TrimSpace(req.PhoneNumber)
	}
	email := strings.TrimSpace(req.Email)
	fullName := strings.TrimSpace(profile.FullName)

	if email == "" {
		return CanonicalRequest{}, apperr.Validation("email is required")
	}
	if fullName == "" {
		return CanonicalRequest{}, apperr.Validation("full_name is required")
	}
	if rawPhone == "" {
		return CanonicalRequest{}, apperr.Validation("phone or phone_number is required")
	}
	if !emailPattern.MatchString(email) {
		return CanonicalRequest{}, apperr.Validation("invalid email format")
	}

	canonicalPhone, err := phone.Canonicalize(rawPhone, countryCode)
	if err != nil {
		if errors.Is(err, phone.ErrTooShort) {
			return CanonicalRequest{}, apperr.Validation("invalid phone number (must have at least 10 digits)")
		}
		return CanonicalRequest{}, apperr.Validation("invalid phone number")
	}

	dateOfBirth, err := parseDateOfBirth(profile.DateOfBirth)
	if err != nil {
		return CanonicalRequest{}, apperr.Validation("invalid date_of_birth format (expected YYYY-MM-DD)")
	}

	specializations := profile.Specializations
	if specializations == nil {
		specializations = []string{}
	}
	// An explicitly empty language list is kept; only an absent one defaults.
	languages := profile.Languages
	if languages == nil {
		languages = []string{defaultLanguage}
	}

	return CanonicalRequest{
		FullName:           fullName,
		Email:              email,
		Phone:              canonicalPhone,
		Bio:                emptyToNil(profile.Bio),
		AvatarURL:          emptyToNil(profile.AvatarURL),
		DateOfBirth:        dateOfBirth,
		LicenseNumber:      emptyToNil(profile.LicenseNumber),
		Specializations:    specializations,
		Languages:          languages,
		YearsOfExperience:  intOrDefault(profile.YearsOfExperience, 0),
		RateVideoPerMinute: floatOrDefault(profile.RateVideoPerMinute, defaultRateVideo),
		RateVoicePerMinute: floatOrDefault(profile.RateVoicePerMinute, defaultRateVoice),
		RateChatPerMinute:  floatOrDefault(profile.RateChatPerMinute, defaultRateChat),
		AcceptsChat:        boolOrDefault(profile.AcceptsChat, true),
		AcceptsVoice:       boolOrDefault(profile.AcceptsVoice, true),
		AcceptsVideo:       boolOrDefault(profile.AcceptsVideo, true),
		IsActive:           boolOrDefault(profile.IsActive, true),
		IsAcceptingCalls:   boolOrDefault(profile.IsAcceptingCalls, true),
	}, nil
}

func parseDateOfBirth(value *string) (*time.Time, error) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil, nil
	}
	parsed, err := time.Parse("2006-01-02", strings.TrimSpace(*value))
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

func emptyToNil(value *string) *string {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	return &trimmed
}

func intOrDefault(value *int, fallback int) int {
	if value == nil {
		return fallback
	}
	return *value
}

func floatOrDefault(value *float64, fallback float64) float64 {
	if value == nil {
		return fallback
	}
	return *value
}

func boolOrDefault(value *bool, fallback bool) bool {
	if value == nil {
		return fallback
	}
	return *value
}
