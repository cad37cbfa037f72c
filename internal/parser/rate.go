package parser

import (
	"github.com/shopspring/decimal"

	"pajakos/internal/faktur"
)

// RateDetection is the outcome of the three-tier rate inference, including
// which tier produced it (part of the debug channel).
type RateDetection struct {
	Rate  decimal.Decimal
	Tier  faktur.RateTier
	Ratio string
}

// DetectRate infers the document PPN rate.
//
// Tier 1 computes tax/base from the observed amounts and snaps it to the
// nearest valid regime rate within tolerance; real amounts are strictly
// more trustworthy than any static table. Tier 2 maps the transaction-code
// prefix through the known code table. Tier 3 falls back to the statutory
// default so the pipeline always has a usable rate.
func DetectRate(base, tax decimal.Decimal, docTypeCode string, opts Options) RateDetection {
	if base.IsPositive() && tax.IsPositive() {
		ratio := tax.Div(base)
		rate, diff := faktur.NearestRate(ratio)
		if diff.LessThanOrEqual(opts.RateTolerance) {
			return RateDetection{Rate: rate, Tier: faktur.TierCalculated, Ratio: ratio.Round(6).String()}
		}
	}

	if rate, ok := faktur.RateForTransactionCode(docTypeCode, opts.StatutoryRate); ok {
		return RateDetection{Rate: rate, Tier: faktur.TierCoded}
	}

	return RateDetection{Rate: opts.StatutoryRate, Tier: faktur.TierDefault}
}
