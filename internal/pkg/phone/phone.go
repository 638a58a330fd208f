package phone

import "strings"

// Canonical phone policy for the whole service. Every caller (signup
// admission, dashboards) goes through Normalize so the store only ever
// contains one spelling of a number.

const maxE164Digits = 15

// Normalize reduces raw user input to E.164. Ten digits are assumed to be
// NANP and get a +1 prefix; eleven or more digits keep their leading
// country code. Returns "" for anything that cannot form a valid number.
func Normalize(raw string) string {
	var digits strings.Builder
	for _, r := range strings.TrimSpace(raw) {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	d := digits.String()
	switch {
	case len(d) == 10:
		return "+1" + d
	case len(d) >= 11 && len(d) <= maxE164Digits:
		return "+" + d
	default:
		return ""
	}
}

// Mask hides everything but the last four digits for display. Numbers with
// four digits or fewer are returned as-is.
func Mask(phone string) string {
	var digits strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	d := digits.String()
	if len(d) <= 4 {
		return d
	}
	return "•••-" + d[len(d)-4:]
}
