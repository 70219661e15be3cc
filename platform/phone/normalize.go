// Package phone provides phone number utilities.
// This is part of the platform layer and contains no business logic.
package phone

import (
	"errors"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// MinDigits is the minimum number of subscriber digits a phone number must
// carry after the country-code prefix is stripped.
const MinDigits = 10

// ErrTooShort indicates the number has fewer than MinDigits digits left after
// stripping formatting and the country-code prefix.
var ErrTooShort = errors.New("phone number has too few digits")

// Canonicalize converts an arbitrarily formatted phone number into the fixed
// country-code E.164-style form "+<cc><digits>".
//
// The country code is assumed rather than detected: a leading "+<cc>" or
// "<cc>" is stripped once, every remaining non-digit character is dropped,
// and the fixed prefix is re-applied. International numbers outside the
// configured country are out of scope. Numbers are never truncated or padded;
// inputs with fewer than MinDigits remaining digits fail with ErrTooShort.
func Canonicalize(raw, countryCode string) (string, error) {
	trimmed := strings.TrimSpace(raw)

	stripped := trimmed
	if countryCode != "" {
		if strings.HasPrefix(stripped, "+"+countryCode) {
			stripped = stripped[len(countryCode)+1:]
		} else if strings.HasPrefix(stripped, countryCode) {
			stripped = stripped[len(countryCode):]
		}
	}

	digits := keepDigits(stripped)
	if len(digits) < MinDigits {
		return "", ErrTooShort
	}

	return "+" + countryCode + digits, nil
}

// Equal reports whether two phone numbers refer to the same subscriber.
//
// Identity providers commonly store phone numbers without the leading "+",
// while this application stores the canonical "+<cc>..." form. Both sides are
// parsed as international numbers where possible; when parsing fails the
// comparison falls back to digits-only equality.
func Equal(a, b string) bool {
	na, errA := phonenumbers.Parse(internationalForm(a), "")
	nb, errB := phonenumbers.Parse(internationalForm(b), "")
	if errA == nil && errB == nil {
		return phonenumbers.Format(na, phonenumbers.E164) == phonenumbers.Format(nb, phonenumbers.E164)
	}

	da := keepDigits(a)
	db := keepDigits(b)
	return da != "" && da == db
}

func internationalForm(s string) string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" || strings.HasPrefix(trimmed, "+") {
		return trimmed
	}
	return "+" + trimmed
}

func keepDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
