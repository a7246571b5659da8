// Package phone canonicalizes raw contact phone numbers so that the same
// physical number always compares equal, regardless of punctuation, leading
// zeros or a missing country code.
package phone

import "strings"

// Normalizer applies country-specific canonicalization rules. CountryCode is
// digits only (e.g. "91"); LocalDigits is the locally significant digit
// count used for suffix comparison.
type Normalizer struct {
	CountryCode string
	LocalDigits int
}

func NewNormalizer(countryCode string, localDigits int) Normalizer {
	return Normalizer{CountryCode: countryCode, LocalDigits: localDigits}
}

// Normalize returns the canonical "+<cc><local>" form of a raw number. It is
// pure and total: unparseable input yields a best-effort string, and an
// input with no digits at all yields "" (callers must reject that as
// unnormalizable). Country-code prefixing is heuristic, so canonical forms
// are compared by Same, not by byte equality.
func (n Normalizer) Normalize(raw string) string {
	digits := StripNonDigits(raw)
	if digits == "" {
		return ""
	}

	expected := len(n.CountryCode) + n.LocalDigits

	switch {
	case strings.HasPrefix(digits, "0") && len(digits) == n.LocalDigits+1:
		// Domestic trunk prefix: drop the zero, add the country code.
		return "+" + n.CountryCode + digits[1:]
	case strings.HasPrefix(digits, n.CountryCode) && len(digits) >= expected:
		return "+" + digits[:expected]
	case len(digits) == n.LocalDigits:
		return "+" + n.CountryCode + digits
	default:
		return "+" + digits
	}
}

// Suffix returns the locally significant tail of a number, the stable key
// for duplicate detection.
func (n Normalizer) Suffix(number string) string {
	return LastDigits(number, n.LocalDigits)
}

// Same reports whether two numbers denote the same physical contact.
func (n Normalizer) Same(a, b string) bool {
	sa, sb := n.Suffix(a), n.Suffix(b)
	return sa != "" && sa == sb
}

func StripNonDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func LastDigits(s string, count int) string {
	digits := StripNonDigits(s)
	if len(digits) <= count {
		return digits
	}
	return digits[len(digits)-count:]
}
