package parser

import "github.com/shopspring/decimal"

// Options carries the empirically-tuned pipeline constants. They are
// configuration, not hard constants: deployments validate them against
// their own document corpus.
type Options struct {
	// RateTolerance is the maximum distance between a calculated tax/base
	// ratio and a valid regime rate for tier-1 detection to accept it.
	RateTolerance decimal.Decimal
	// StatutoryRate is the tier-3 fallback PPN rate.
	StatutoryRate decimal.Decimal
	// MinAmount is the extraction floor: numeric tokens below it are
	// footnote markers, percentages or page numbers, not amounts.
	MinAmount decimal.Decimal
	// MatchTolerancePct is the relative tolerance (percent) for "these two
	// amounts are the same figure" decisions in the inclusive-VAT detector.
	MatchTolerancePct decimal.Decimal
}

// DefaultOptions returns the tuned defaults.
func DefaultOptions() Options {
	return Options{
		RateTolerance:     decimal.NewFromFloat(0.02),
		StatutoryRate:     decimal.NewFromFloat(0.11),
		MinAmount:         decimal.NewFromInt(100),
		MatchTolerancePct: decimal.NewFromFloat(0.5),
	}
}
