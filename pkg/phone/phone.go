// Package phone normalizes Indian mobile numbers to the digits-only
// international form used by the WhatsApp Cloud API.
package phone

import "strings"

const DefaultCountryCode = "91"

// Digits strips everything but 0-9.
func Digits(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Normalize returns the number with a country code, or "" when raw has
// fewer than ten digits. A leading trunk zero is dropped.
func Normalize(raw string) string {
	digits := strings.TrimLeft(Digits(raw), "0")
	switch {
	case len(digits) < 10:
		return ""
	case len(digits) == 10:
		return DefaultCountryCode + digits
	default:
		return digits
	}
}

// Local returns the trailing ten digits, or "" when there are fewer.
func Local(raw string) string {
	digits := Digits(raw)
	if len(digits) < 10 {
		return ""
	}
	return digits[len(digits)-10:]
}

// Mask keeps the last four characters of raw and stars the rest, for logs.
func Mask(raw string) string {
	raw = strings.TrimSpace(raw)
	if len(raw) <= 4 {
		return raw
	}
	return strings.Repeat("*", len(raw)-4) + raw[len(raw)-4:]
}
