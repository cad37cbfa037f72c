package validator

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pajakos/internal/faktur"
)

func newTestEngine() *Engine {
	tol := DefaultTolerances()
	return NewEngine(DefaultRegistry(tol), tol)
}

func cleanItem(lineNo int) faktur.LineItem {
	return faktur.LineItem{
		LineNo:      lineNo,
		ItemCode:    "100000000001",
		GrossAmount: decimal.NewFromInt(1110000),
		TaxableBase: decimal.NewFromInt(1000000),
		TaxAmount:   decimal.NewFromInt(110000),
		Notes:       []string{},
	}
}

func TestValidateRows_CleanRowKeepsFullConfidence(t *testing.T) {
	e := newTestEngine()
	items := []faktur.LineItem{cleanItem(1)}

	e.ValidateRows(items, RateContext{Rate: decimal.NewFromFloat(0.11)})

	assert.Equal(t, 1.0, items[0].RowConfidence)
	assert.Empty(t, items[0].Notes)
}

func TestValidateRows_PenaltiesCompound(t *testing.T) {
	e := newTestEngine()
	item := cleanItem(1)
	item.ItemCode = ""
	item.Flags.FieldsSwapped = true
	items := []faktur.LineItem{item}

	e.ValidateRows(items, RateContext{Rate: decimal.NewFromFloat(0.11)})

	// 0.90 for the missing item code times 0.80 for the swap.
	assert.InDelta(t, 0.72, items[0].RowConfidence, 1e-9)
	assert.Len(t, items[0].Notes, 2)
	assert.Contains(t, items[0].Notes[0], "item code missing")
}

func TestEvaluate_EmptyItems(t *testing.T) {
	e := newTestEngine()

	ev := e.Evaluate(nil, faktur.Reconciliation{Match: true}, Metadata{HeaderComplete: true})

	assert.Equal(t, faktur.StatusNeedsReview, ev.Status)
	assert.Equal(t, 0.0, ev.Confidence)
	assert.Equal(t, []faktur.ReasonCode{faktur.ReasonNothingExtracted}, ev.ReasonCodes)
	require.Len(t, ev.Penalties, 1)
	assert.Equal(t, 0.0, ev.Penalties[0].Multiplier)
}

func TestEvaluate_ApprovedOnlyWithoutReasonCodes(t *testing.T) {
	e := newTestEngine()
	items := []faktur.LineItem{cleanItem(1), cleanItem(2)}
	e.ValidateRows(items, RateContext{Rate: decimal.NewFromFloat(0.11)})

	ev := e.Evaluate(items, faktur.Reconciliation{Match: true}, Metadata{HeaderComplete: true})

	assert.Equal(t, faktur.StatusApproved, ev.Status)
	assert.Equal(t, 1.0, ev.Confidence)
	assert.Empty(t, ev.ReasonCodes)
}

func TestEvaluate_DocConfidenceIsWeakestRow(t *testing.T) {
	e := newTestEngine()
	weak := cleanItem(1)
	weak.ItemCode = ""
	items := []faktur.LineItem{cleanItem(2), weak}
	e.ValidateRows(items, RateContext{Rate: decimal.NewFromFloat(0.11)})

	ev := e.Evaluate(items, faktur.Reconciliation{Match: true}, Metadata{HeaderComplete: true})

	// 0.90 from the weak row; above the review band, so still approved.
	assert.InDelta(t, 0.90, ev.Confidence, 1e-9)
	assert.Equal(t, faktur.StatusApproved, ev.Status)
}

func TestEvaluate_LowRowRoutesToReview(t *testing.T) {
	e := newTestEngine()
	weak := cleanItem(1)
	weak.Flags.FieldsSwapped = true
	items := []faktur.LineItem{weak}
	e.ValidateRows(items, RateContext{Rate: decimal.NewFromFloat(0.11)})
	require.Less(t, items[0].RowConfidence, faktur.ConfidenceMedium)

	ev := e.Evaluate(items, faktur.Reconciliation{Match: true}, Metadata{HeaderComplete: true})

	assert.Equal(t, faktur.StatusNeedsReview, ev.Status)
	assert.Contains(t, ev.ReasonCodes, faktur.ReasonLowRowConfidence)
}

func TestEvaluate_ReconcileMismatchPenalty(t *testing.T) {
	e := newTestEngine()
	items := []faktur.LineItem{cleanItem(1)}
	e.ValidateRows(items, RateContext{Rate: decimal.NewFromFloat(0.11)})

	rec := faktur.Reconciliation{
		Match: false,
		Discrepancies: []faktur.Discrepancy{{
			Field:    "tax_total",
			Expected: decimal.NewFromInt(110000),
			Actual:   decimal.NewFromInt(150000),
			DiffPct:  26.67,
		}},
	}
	ev := e.Evaluate(items, rec, Metadata{HeaderComplete: true})

	assert.Equal(t, faktur.StatusNeedsReview, ev.Status)
	assert.Contains(t, ev.ReasonCodes, faktur.ReasonReconcileMismatch)
	assert.InDelta(t, 0.75, ev.Confidence, 1e-9)
}

func TestEvaluate_DateOutsidePeriod(t *testing.T) {
	e := newTestEngine()
	items := []faktur.LineItem{cleanItem(1)}
	e.ValidateRows(items, RateContext{Rate: decimal.NewFromFloat(0.11)})

	date := time.Date(2025, 3, 17, 0, 0, 0, 0, time.UTC)
	start := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 4, 30, 0, 0, 0, 0, time.UTC)

	ev := e.Evaluate(items, faktur.Reconciliation{Match: true}, Metadata{
		DocumentDate:   &date,
		PeriodStart:    &start,
		PeriodEnd:      &end,
		HeaderComplete: true,
	})

	assert.Contains(t, ev.ReasonCodes, faktur.ReasonDateOutsidePeriod)
	assert.InDelta(t, 0.80, ev.Confidence, 1e-9)

	// Missing bounds never fire the check.
	ev = e.Evaluate(items, faktur.Reconciliation{Match: true}, Metadata{
		DocumentDate:   &date,
		HeaderComplete: true,
	})
	assert.NotContains(t, ev.ReasonCodes, faktur.ReasonDateOutsidePeriod)
}

func TestEvaluate_HeaderIncomplete(t *testing.T) {
	e := newTestEngine()
	items := []faktur.LineItem{cleanItem(1)}
	e.ValidateRows(items, RateContext{Rate: decimal.NewFromFloat(0.11)})

	ev := e.Evaluate(items, faktur.Reconciliation{Match: true}, Metadata{})

	assert.Contains(t, ev.ReasonCodes, faktur.ReasonHeaderIncomplete)
	assert.InDelta(t, 0.90, ev.Confidence, 1e-9)
}

func TestEvaluate_LedgerReconstructsConfidence(t *testing.T) {
	e := newTestEngine()
	weak := cleanItem(1)
	weak.ItemCode = ""
	items := []faktur.LineItem{weak}
	e.ValidateRows(items, RateContext{Rate: decimal.NewFromFloat(0.11)})

	rec := faktur.Reconciliation{Match: false}
	ev := e.Evaluate(items, rec, Metadata{})

	// 0.90 row floor x 0.75 reconciliation x 0.90 incomplete header.
	product := 1.0
	for _, p := range ev.Penalties {
		product *= p.Multiplier
	}
	assert.InDelta(t, ev.Confidence, product, 1e-9)
	assert.InDelta(t, 0.6075, ev.Confidence, 1e-9)
}
