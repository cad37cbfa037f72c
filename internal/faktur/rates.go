package faktur

import "github.com/shopspring/decimal"

// RateTier identifies which detection tier produced the document tax rate.
type RateTier string

const (
	TierCalculated RateTier = "calculated"
	TierCoded      RateTier = "coded"
	TierDefault    RateTier = "default"
)

// ValidRates is the closed set of PPN rates the regime has used: the zero
// rate for exempt/export documents, the pre-2022 10%, the 11% rate effective
// April 2022 and the 12% rate effective 2025. A calculated ratio outside
// this set is a data error, never a new rate.
var ValidRates = []decimal.Decimal{
	decimal.Zero,
	decimal.NewFromFloat(0.10),
	decimal.NewFromFloat(0.11),
	decimal.NewFromFloat(0.12),
}

// NearestRate returns the valid rate closest to ratio and the absolute
// distance to it.
func NearestRate(ratio decimal.Decimal) (decimal.Decimal, decimal.Decimal) {
	best := ValidRates[0]
	bestDiff := ratio.Sub(best).Abs()
	for _, r := range ValidRates[1:] {
		diff := ratio.Sub(r).Abs()
		if diff.LessThan(bestDiff) {
			best = r
			bestDiff = diff
		}
	}
	return best, bestDiff
}

// Faktur Pajak transaction codes are the first two digits of the faktur
// serial number (e.g. "010.000-25.00000001" → "01"). Codes 07 and 08 mark
// PPN-not-collected and PPN-exempt documents respectively, which carry the
// zero rate; every other known code taxes at the statutory rate.
var zeroRateCodes = map[string]bool{
	"07": true,
	"08": true,
}

var knownTransactionCodes = map[string]bool{
	"01": true, "02": true, "03": true, "04": true, "05": true,
	"06": true, "07": true, "08": true, "09": true,
}

// RateForTransactionCode infers a rate from the 2-character transaction code
// prefix. The second return value reports whether the prefix was recognized.
func RateForTransactionCode(code string, statutory decimal.Decimal) (decimal.Decimal, bool) {
	if len(code) < 2 {
		return decimal.Zero, false
	}
	prefix := code[:2]
	if !knownTransactionCodes[prefix] {
		return decimal.Zero, false
	}
	if zeroRateCodes[prefix] {
		return decimal.Zero, true
	}
	return statutory, true
}
