package validator

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pajakos/internal/domain"
	"pajakos/internal/faktur"
)

func applyCheck(t *testing.T, c RowCheck, item *faktur.LineItem, rc RateContext) CheckResult {
	t.Helper()
	results := c.Apply(item, rc)
	require.Len(t, results, 1)
	return results[0]
}

func TestItemCodeCheck(t *testing.T) {
	c := ItemCodeCheck()
	assert.Equal(t, "row.item_code", c.Key())
	assert.Equal(t, domain.CheckSeverityWarning, c.Severity())

	rc := RateContext{}

	res := applyCheck(t, c, &faktur.LineItem{LineNo: 1, ItemCode: "100000000001"}, rc)
	assert.True(t, res.Passed)

	res = applyCheck(t, c, &faktur.LineItem{LineNo: 1}, rc)
	assert.False(t, res.Passed)
	assert.Equal(t, 0.90, res.Penalty)

	res = applyCheck(t, c, &faktur.LineItem{LineNo: 1, ItemCode: "000000000000"}, rc)
	assert.False(t, res.Passed)
	assert.Equal(t, 0.90, res.Penalty)
}

func TestArithmeticCheck(t *testing.T) {
	c := ArithmeticCheck(DefaultTolerances())
	rc := RateContext{Rate: decimal.NewFromFloat(0.11)}

	exact := &faktur.LineItem{
		LineNo:      1,
		TaxableBase: decimal.NewFromInt(1000000),
		TaxAmount:   decimal.NewFromInt(110000),
	}
	assert.True(t, applyCheck(t, c, exact, rc).Passed)

	// Rounding noise inside the tolerance still passes.
	noisy := &faktur.LineItem{
		LineNo:      2,
		TaxableBase: decimal.NewFromInt(4313371),
		TaxAmount:   decimal.NewFromInt(517605),
	}
	assert.True(t, applyCheck(t, c, noisy, RateContext{Rate: decimal.NewFromFloat(0.12)}).Passed)

	deviant := &faktur.LineItem{
		LineNo:      3,
		TaxableBase: decimal.NewFromInt(1000000),
		TaxAmount:   decimal.NewFromInt(150000),
	}
	res := applyCheck(t, c, deviant, rc)
	assert.False(t, res.Passed)
	assert.Equal(t, 0.85, res.Penalty)
}

func TestArithmeticCheck_ZeroRate(t *testing.T) {
	c := ArithmeticCheck(DefaultTolerances())
	rc := RateContext{Rate: decimal.Zero}

	clean := &faktur.LineItem{LineNo: 1, TaxableBase: decimal.NewFromInt(5000000)}
	assert.True(t, applyCheck(t, c, clean, rc).Passed)

	// Tax stated on a zero-rate row is a finding.
	stated := &faktur.LineItem{
		LineNo:      2,
		TaxableBase: decimal.NewFromInt(5000000),
		TaxAmount:   decimal.NewFromInt(550000),
	}
	res := applyCheck(t, c, stated, rc)
	assert.False(t, res.Passed)
	assert.Equal(t, 0.85, res.Penalty)
}

func TestMagnitudeCheck(t *testing.T) {
	c := MagnitudeCheck(DefaultTolerances())
	rc := RateContext{}

	ok := &faktur.LineItem{LineNo: 1, TaxableBase: decimal.NewFromInt(1000000)}
	assert.True(t, applyCheck(t, c, ok, rc).Passed)

	tiny := &faktur.LineItem{LineNo: 2, TaxableBase: decimal.NewFromInt(500)}
	res := applyCheck(t, c, tiny, rc)
	assert.False(t, res.Passed)
	assert.Equal(t, 0.92, res.Penalty)

	huge := &faktur.LineItem{LineNo: 3, TaxableBase: decimal.New(2, 11)}
	res = applyCheck(t, c, huge, rc)
	assert.False(t, res.Passed)
	assert.Equal(t, 0.92, res.Penalty)
}

func TestGrossConsistencyCheck(t *testing.T) {
	c := GrossConsistencyCheck()
	assert.Equal(t, "row.gross_consistency", c.Key())
	assert.Equal(t, domain.CheckSeverityCritical, c.Severity())
	rc := RateContext{}

	ok := &faktur.LineItem{
		LineNo:      1,
		GrossAmount: decimal.NewFromInt(1110000),
		TaxableBase: decimal.NewFromInt(1000000),
	}
	assert.True(t, applyCheck(t, c, ok, rc).Passed)

	// No-discount rows state the base equal to the gross.
	equal := &faktur.LineItem{
		LineNo:      2,
		GrossAmount: decimal.NewFromInt(1000000),
		TaxableBase: decimal.NewFromInt(1000000),
	}
	assert.True(t, applyCheck(t, c, equal, rc).Passed)

	// A gross column misread low can never legitimately undercut the base.
	misread := &faktur.LineItem{
		LineNo:      3,
		GrossAmount: decimal.NewFromInt(1000),
		TaxableBase: decimal.NewFromInt(2000000),
		TaxAmount:   decimal.NewFromInt(220000),
	}
	res := applyCheck(t, c, misread, rc)
	assert.False(t, res.Passed)
	assert.Equal(t, 0.80, res.Penalty)
}

func TestCorrectionFlagChecks(t *testing.T) {
	checks := CorrectionFlagChecks()
	require.Len(t, checks, 3)
	rc := RateContext{}

	clean := &faktur.LineItem{LineNo: 1}
	for _, c := range checks {
		assert.True(t, applyCheck(t, c, clean, rc).Passed, "check %s", c.Key())
	}

	corrected := &faktur.LineItem{
		LineNo: 2,
		Flags: faktur.LineItemFlags{
			FieldsSwapped:        true,
			VATInclusiveDetected: true,
			DPPRecalculated:      true,
		},
	}
	wantPenalty := map[string]float64{
		"row.fields_swapped":   0.80,
		"row.vat_inclusive":    0.95,
		"row.dpp_recalculated": 0.95,
	}
	for _, c := range checks {
		res := applyCheck(t, c, corrected, rc)
		assert.False(t, res.Passed, "check %s", c.Key())
		assert.Equal(t, wantPenalty[c.Key()], res.Penalty, "check %s", c.Key())
	}

	// The swap correction is the only critical one.
	assert.Equal(t, domain.CheckSeverityCritical, checks[0].Severity())
	assert.Equal(t, domain.CheckSeverityWarning, checks[1].Severity())
	assert.Equal(t, domain.CheckSeverityWarning, checks[2].Severity())
}

func TestRegistry_FixedOrderAndReplace(t *testing.T) {
	tol := DefaultTolerances()
	r := DefaultRegistry(tol)

	keys := make([]string, 0)
	for _, c := range r.All() {
		keys = append(keys, c.Key())
	}
	assert.Equal(t, []string{
		"row.item_code",
		"row.tax_arithmetic",
		"row.magnitude",
		"row.gross_consistency",
		"row.fields_swapped",
		"row.vat_inclusive",
		"row.dpp_recalculated",
	}, keys)

	// Re-registering a key keeps its position.
	r.Register(MagnitudeCheck(tol))
	assert.Equal(t, "row.magnitude", r.All()[2].Key())
	assert.NotNil(t, r.Get("row.magnitude"))
}
