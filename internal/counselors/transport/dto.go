package transport

import (
	"bytes"
	"encoding/json"

	"github.com/google/uuid"
)

// ProfilePayload carries the counselor profile fields common to both accepted
// request shapes. Optional fields are pointers so absent values can be told
// apart from zero values when defaults are applied.
type ProfilePayload struct {
	FullName           string    `json:"full_name"`
	Bio                *string   `json:"bio,omitempty"`
	AvatarURL          *string   `json:"avatar_url,omitempty"`
	DateOfBirth        *string   `json:"date_of_birth,omitempty"`
	LicenseNumber      *string   `json:"license_number,omitempty"`
	Specializations    []string  `json:"specializations,omitempty"`
	Languages          []string  `json:"languages,omitempty"`
	YearsOfExperience  *int      `json:"years_of_experience,omitempty" validate:"omitempty,min=0"`
	RateVideoPerMinute *float64  `json:"rate_video_per_minute,omitempty" validate:"omitempty,min=0"`
	RateVoicePerMinute *float64  `json:"rate_voice_per_minute,omitempty" validate:"omitempty,min=0"`
	RateChatPerMinute  *float64  `json:"rate_chat_per_minute,omitempty" validate:"omitempty,min=0"`
	AcceptsChat        *bool     `json:"accepts_chat,omitempty"`
	AcceptsVoice       *bool     `json:"accepts_voice,omitempty"`
	AcceptsVideo       *bool     `json:"accepts_video,omitempty"`
	IsActive           *bool     `json:"is_active,omitempty"`
	IsAcceptingCalls   *bool     `json:"is_accepting_calls,omitempty"`
}

// CreateCounselorRequest accepts two payload shapes:
//
//  1. Flat: contact and profile fields all at the top level, phone under
//     "phone_number" (what the current admin frontend sends).
//  2. Nested: top-level "phone"/"email" with the profile fields under a
//     "profile" object (the planned future shape).
//
// The embedded ProfilePayload binds the flat shape; Profile binds the nested
// one and wins when present as a JSON object.
type CreateCounselorRequest struct {
	ProfilePayload
	Phone       string       `json:"phone"`
	PhoneNumber string       `json:"phone_number"`
	Email       string       `json:"email"`
	Profile     ProfileField `json:"profile,omitempty"`
}

// ProfileField decodes the nested "profile" value leniently: a JSON object
// binds into Payload; any other value (string, number, array, null) leaves
// Payload nil so the top-level fields apply.
type ProfileField struct {
	Payload *ProfilePayload
}

func (f *ProfileField) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil
	}

	var payload ProfilePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return err
	}
	f.Payload = &payload
	return nil
}

// UpdateCounselorRequest contains ordinary profile field edits. Contact data
// and identity linkage are immutable through this request; the provisioning
// flow is the only writer of canonical contact fields.
type UpdateCounselorRequest struct {
	FullName           *string  `json:"full_name,omitempty" validate:"omitempty,min=1"`
	Bio                *string  `json:"bio,omitempty"`
	AvatarURL          *string  `json:"avatar_url,omitempty"`
	DateOfBirth        *string  `json:"date_of_birth,omitempty"`
	LicenseNumber      *string  `json:"license_number,omitempty"`
	Specializations    []string `json:"specializations,omitempty"`
	Languages          []string `json:"languages,omitempty"`
	YearsOfExperience  *int     `json:"years_of_experience,omitempty" validate:"omitempty,min=0"`
	RateVideoPerMinute *float64 `json:"rate_video_per_minute,omitempty" validate:"omitempty,min=0"`
	RateVoicePerMinute *float64 `json:"rate_voice_per_minute,omitempty" validate:"omitempty,min=0"`
	RateChatPerMinute  *float64 `json:"rate_chat_per_minute,omitempty" validate:"omitempty,min=0"`
	AcceptsChat        *bool    `json:"accepts_chat,omitempty"`
	AcceptsVoice       *bool    `json:"accepts_voice,omitempty"`
	AcceptsVideo       *bool    `json:"accepts_video,omitempty"`
	IsActive           *bool    `json:"is_active,omitempty"`
	IsAcceptingCalls   *bool    `json:"is_accepting_calls,omitempty"`
}

// CounselorResponse represents a counselor profile in API responses.
// Field names mirror the stored row.
type CounselorResponse struct {
	ID                 uuid.UUID  `json:"id"`
	IdentityID         *uuid.UUID `json:"identity_id"`
	FullName           string     `json:"full_name"`
	Email              string     `json:"email"`
	PhoneNumber        string     `json:"phone_number"`
	Bio                *string    `json:"bio"`
	AvatarURL          *string    `json:"avatar_url"`
	DateOfBirth        *string    `json:"date_of_birth"`
	LicenseNumber      *string    `json:"license_number"`
	Specializations    []string   `json:"specializations"`
	Languages          []string   `json:"languages"`
	YearsOfExperience  int        `json:"years_of_experience"`
	RateVideoPerMinute float64    `json:"rate_video_per_minute"`
	RateVoicePerMinute float64    `json:"rate_voice_per_minute"`
	RateChatPerMinute  float64    `json:"rate_chat_per_minute"`
	AcceptsChat        bool       `json:"accepts_chat"`
	AcceptsVoice       bool       `json:"accepts_voice"`
	AcceptsVideo       bool       `json:"accepts_video"`
	IsActive           bool       `json:"is_active"`
	IsAcceptingCalls   bool       `json:"is_accepting_calls"`
	CreatedAt          string     `json:"created_at"`
	UpdatedAt          string     `json:"updated_at"`
}

// CreateCounselorResponse wraps the newly provisioned counselor.
type CreateCounselorResponse struct {
	Counselor CounselorResponse `json:"counselor"`
}

// CounselorListResponse wraps a list of counselors.
type CounselorListResponse struct {
	Counselors []CounselorResponse `json:"counselors"`
	Total      int                 `json:"total"`
}
