package parser

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// DiagKind tags a number normalization diagnostic so "legitimately zero" and
// "failed to parse" are never conflated in the audit trail.
type DiagKind string

const (
	DiagAbsent    DiagKind = "absent"
	DiagMalformed DiagKind = "malformed"
	DiagNegative  DiagKind = "negative"
)

// NumberDiagnostic reports why a raw amount normalized to zero (or was
// repaired on the way to a value). Diagnostics are notes, never errors:
// noisy amounts are an expected input condition.
type NumberDiagnostic struct {
	Raw     string
	Kind    DiagKind
	Message string
}

func (d *NumberDiagnostic) String() string {
	return fmt.Sprintf("%s: %q (%s)", d.Kind, d.Raw, d.Message)
}

// ocrDigitRepairs maps character confusions OCR engines commonly produce
// inside numeric runs.
var ocrDigitRepairs = strings.NewReplacer(
	"O", "0",
	"o", "0",
	"I", "1",
	"l", "1",
	"|", "1",
)

// Normalize parses a locale-formatted amount string into a decimal.
//
// The primary format is Indonesian grouping ("1.234.567,89", optionally
// prefixed with "Rp"); the reversed style ("1,234,567.89") is also accepted
// when a dot appears after the last comma. Exactly one comma makes the comma
// the decimal separator and strips dots as grouping; zero commas strip dots
// and parse an integer-valued amount; more than one comma (without a
// trailing dot decimal) is malformed and yields zero plus a diagnostic
// rather than a guess.
//
// The result is always non-negative: amounts in this domain are never
// negative, so a parsed negative is reported as implausible and dropped.
// Empty input is "absent", not malformed, and also yields zero.
func Normalize(raw string) (decimal.Decimal, *NumberDiagnostic) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero, &NumberDiagnostic{Raw: raw, Kind: DiagAbsent, Message: "empty amount treated as zero"}
	}

	s = stripCurrencyPrefix(s)
	s = strings.ReplaceAll(s, " ", "")

	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	s = ocrDigitRepairs.Replace(s)

	// A valid amount never ends in a separator; trailing ones are glued
	// punctuation ("1.000,00," mid-sentence), not part of the number.
	s = strings.TrimRight(s, ".,")

	if !isNumericShape(s) {
		return decimal.Zero, &NumberDiagnostic{Raw: raw, Kind: DiagMalformed, Message: "not a numeric token"}
	}

	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")

	var canonical string
	switch {
	case lastComma >= 0 && lastDot > lastComma:
		// Reversed locale: dot is the decimal separator, commas are grouping.
		canonical = strings.ReplaceAll(s, ",", "")
	case strings.Count(s, ",") > 1:
		return decimal.Zero, &NumberDiagnostic{Raw: raw, Kind: DiagMalformed, Message: "multiple decimal markers"}
	case strings.Count(s, ",") == 1:
		canonical = strings.Replace(strings.ReplaceAll(s, ".", ""), ",", ".", 1)
	default:
		canonical = strings.ReplaceAll(s, ".", "")
	}

	d, err := decimal.NewFromString(canonical)
	if err != nil {
		return decimal.Zero, &NumberDiagnostic{Raw: raw, Kind: DiagMalformed, Message: err.Error()}
	}

	if neg || d.IsNegative() {
		return decimal.Zero, &NumberDiagnostic{Raw: raw, Kind: DiagNegative, Message: "negative amount is implausible for this domain"}
	}
	return d, nil
}

// stripCurrencyPrefix removes a leading "Rp" / "Rp." / "IDR" marker,
// case-insensitively.
func stripCurrencyPrefix(s string) string {
	lower := strings.ToLower(s)
	for _, prefix := range []string{"rp.", "rp", "idr"} {
		if strings.HasPrefix(lower, prefix) {
			return strings.TrimSpace(s[len(prefix):])
		}
	}
	return s
}

// isNumericShape reports whether s consists solely of digits and separator
// characters, with at least one digit.
func isNumericShape(s string) bool {
	if s == "" {
		return false
	}
	hasDigit := false
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			hasDigit = true
		case r == '.' || r == ',':
		default:
			return false
		}
	}
	return hasDigit
}

// FormatAmount renders a decimal in Indonesian style ("1.234.567,89"),
// the inverse of Normalize for round-trip checks and display.
func FormatAmount(d decimal.Decimal) string {
	fixed := d.StringFixed(2)
	neg := strings.HasPrefix(fixed, "-")
	fixed = strings.TrimPrefix(fixed, "-")

	parts := strings.SplitN(fixed, ".", 2)
	intPart := parts[0]

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}

	out := b.String() + "," + parts[1]
	if neg {
		out = "-" + out
	}
	return out
}
