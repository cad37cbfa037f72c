package parser

import (
	"github.com/shopspring/decimal"
)

// SwapResult is the fully-defined output of the swap corrector. It is
// returned as a new value tuple; the corrector never mutates its inputs
// conditionally across branches.
type SwapResult struct {
	Base    decimal.Decimal
	Tax     decimal.Decimal
	Swapped bool
}

// FixSwappedFields detects the extraction defect where taxable base and tax
// amount were read in inverted positions. A tax amount exceeding its base is
// a hard signal, not a heuristic: no supported rate produces tax >= base.
// Applying the fix twice is the identity.
func FixSwappedFields(base, tax decimal.Decimal) SwapResult {
	if tax.IsPositive() && tax.GreaterThan(base) {
		return SwapResult{Base: tax, Tax: base, Swapped: true}
	}
	return SwapResult{Base: base, Tax: tax, Swapped: false}
}

// InclusiveResult is the outcome of the VAT-inclusivity detector.
type InclusiveResult struct {
	IsInclusive   bool
	Reason        string
	CorrectedBase decimal.Decimal
	CorrectedTax  decimal.Decimal
}

// DetectInclusiveGross checks whether the extracted base is actually the
// VAT-inclusive gross: base ≈ gross while gross/(1+rate) differs materially
// from the extracted base. When detected it back-calculates
// base = gross/(1+rate) and tax = base × rate.
func DetectInclusiveGross(gross, base, tax, rate decimal.Decimal, opts Options) InclusiveResult {
	if !gross.IsPositive() || !rate.IsPositive() {
		return InclusiveResult{CorrectedBase: base, CorrectedTax: tax}
	}

	// Harga Jual legitimately equals the base on documents without discounts,
	// so base = gross alone proves nothing. A stated tax consistent with the
	// base at the detected rate means the figures are already tax-exclusive.
	if tax.IsPositive() && withinPct(tax, base.Mul(rate), opts.MatchTolerancePct) {
		return InclusiveResult{CorrectedBase: base, CorrectedTax: tax}
	}

	implied := gross.Div(decimal.NewFromInt(1).Add(rate)).Round(2)

	baseNearGross := withinPct(base, gross, opts.MatchTolerancePct)
	baseNearImplied := withinPct(base, implied, opts.MatchTolerancePct)

	if !baseNearGross || baseNearImplied {
		return InclusiveResult{CorrectedBase: base, CorrectedTax: tax}
	}

	return InclusiveResult{
		IsInclusive:   true,
		Reason:        "taxable base equals the gross total; gross already embeds PPN",
		CorrectedBase: implied,
		CorrectedTax:  implied.Mul(rate).Round(2),
	}
}

// withinPct reports whether a and b differ by at most tolPct percent of the
// larger magnitude.
func withinPct(a, b, tolPct decimal.Decimal) bool {
	diff := a.Sub(b).Abs()
	ref := decimal.Max(a.Abs(), b.Abs())
	if ref.IsZero() {
		return true
	}
	return diff.Div(ref).Mul(decimal.NewFromInt(100)).LessThanOrEqual(tolPct)
}
