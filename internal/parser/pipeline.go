package parser

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"pajakos/internal/faktur"
	"pajakos/internal/validator"
)

// Pipeline runs the full extraction, correction and validation flow over one
// document. It is stateless and safe for concurrent use; Parse is a pure
// function of its input, so reprocessing the same document always yields the
// same result.
type Pipeline struct {
	extractor *Extractor
	engine    *validator.Engine
	opts      Options
}

// NewPipeline wires an extractor and a validation engine into a pipeline.
func NewPipeline(opts Options, engine *validator.Engine) *Pipeline {
	return &Pipeline{
		extractor: NewExtractor(opts),
		engine:    engine,
		opts:      opts,
	}
}

// DefaultPipeline builds a pipeline with the tuned default options and the
// full built-in check registry.
func DefaultPipeline() *Pipeline {
	tol := validator.DefaultTolerances()
	return NewPipeline(DefaultOptions(), validator.NewEngine(validator.DefaultRegistry(tol), tol))
}

// Parse extracts, corrects and validates a raw OCR document. It never
// errors: a document the pipeline cannot make sense of comes back as a
// NeedsReview result with the evidence in the debug channel.
func (p *Pipeline) Parse(doc faktur.RawDocument) faktur.ParseResult {
	text := doc.Text

	fields := p.extractor.SummaryFields(text)
	byName := make(map[string]faktur.ExtractedField, len(fields))
	for _, f := range fields {
		byName[f.Label] = f
	}

	fakturNumber := p.extractor.FakturNumber(text)
	docDate := p.extractor.DocumentDate(text)
	docTypeCode := doc.DocTypeCode
	if docTypeCode == "" {
		docTypeCode = TransactionCode(fakturNumber)
	}

	debug := faktur.DebugInfo{
		FakturNumber:  fakturNumber,
		SummaryFields: fields,
	}
	if docDate != nil {
		debug.DocumentDate = docDate.Format("2006-01-02")
	}
	for _, f := range fields {
		if f.Diagnostic != "" {
			debug.NumberDiagnostics = append(debug.NumberDiagnostics,
				fmt.Sprintf("%s: %s", f.Label, f.Diagnostic))
		}
	}

	var notes []string
	for _, name := range []string{FieldGross, FieldTaxableBase, FieldTax} {
		if !byName[name].Found {
			notes = append(notes, fmt.Sprintf("summary field %s not found in document", name))
		}
	}

	// Header corrections run before rate detection: a swapped header would
	// otherwise feed tier 1 a ratio near 9 and silently push the document
	// down to the code or statutory tier.
	headerBase := byName[FieldTaxableBase].Value
	headerTax := byName[FieldTax].Value
	headerGross := byName[FieldGross].Value
	if sr := FixSwappedFields(headerBase, headerTax); sr.Swapped {
		headerBase, headerTax = sr.Base, sr.Tax
		debug.SwapCorrections++
		notes = append(notes, "header taxable base and tax were swapped in the source")
	}

	det := DetectRate(headerBase, headerTax, docTypeCode, p.opts)
	debug.RateTier = det.Tier
	debug.RateRatio = det.Ratio

	if ir := DetectInclusiveGross(headerGross, headerBase, headerTax, det.Rate, p.opts); ir.IsInclusive {
		headerBase, headerTax = ir.CorrectedBase, ir.CorrectedTax
		debug.InclusiveDetected++
		notes = append(notes, "header: "+ir.Reason)
	}

	secondary := byName[FieldSecondaryTax].Value
	grossFound := byName[FieldGross].Found
	if !grossFound {
		// Gross is defined as base + tax (+ secondary tax); derive it so
		// downstream consumers always see a complete totals block.
		headerGross = headerBase.Add(headerTax).Add(secondary)
	}

	header := faktur.HeaderSummary{
		GrossTotal:        headerGross,
		DiscountTotal:     byName[FieldDiscount].Value,
		AdvanceTotal:      byName[FieldAdvance].Value,
		TaxableBaseTotal:  headerBase,
		TaxTotal:          headerTax,
		SecondaryTaxTotal: secondary,
		TaxRate:           det.Rate,
		RateTier:          det.Tier,
	}

	items := p.correctRows(p.extractor.LineItems(text), det.Rate, &debug)

	rc := validator.RateContext{Rate: det.Rate, Tier: det.Tier}
	p.engine.ValidateRows(items, rc)

	rec := validator.Reconcile(items, header, validator.HeaderPresence{
		TaxableBase: byName[FieldTaxableBase].Found,
		Tax:         byName[FieldTax].Found,
		Gross:       grossFound,
	}, p.engine.Tolerances())
	debug.Reconciliation = &rec

	meta := validator.Metadata{
		DocumentDate:   docDate,
		PeriodStart:    doc.PeriodStart,
		PeriodEnd:      doc.PeriodEnd,
		HeaderComplete: byName[FieldTaxableBase].Found && byName[FieldTax].Found,
	}
	ev := p.engine.Evaluate(items, rec, meta)
	debug.Penalties = ev.Penalties

	if items == nil {
		items = []faktur.LineItem{}
	}
	return faktur.ParseResult{
		Items:           items,
		Header:          header,
		Status:          ev.Status,
		Confidence:      ev.Confidence,
		ReasonCodes:     ev.ReasonCodes,
		ValidationNotes: append(notes, ev.Notes...),
		Debug:           debug,
	}
}

// correctRows applies the per-row correctors in fixed order: swap first,
// then inclusive-gross, then tax derivation for rows the OCR collapsed to a
// single amount.
func (p *Pipeline) correctRows(rows []rowExtraction, rate decimal.Decimal, debug *faktur.DebugInfo) []faktur.LineItem {
	items := make([]faktur.LineItem, 0, len(rows))
	for _, row := range rows {
		item := row.Item

		if sr := FixSwappedFields(item.TaxableBase, item.TaxAmount); sr.Swapped {
			item.TaxableBase, item.TaxAmount = sr.Base, sr.Tax
			item.Flags.FieldsSwapped = true
			debug.SwapCorrections++
		}

		// Single-amount rows have gross = base by construction, which is not
		// evidence of embedded PPN; they go straight to tax derivation.
		if !row.TaxMissing {
			if ir := DetectInclusiveGross(item.GrossAmount, item.TaxableBase, item.TaxAmount, rate, p.opts); ir.IsInclusive {
				item.TaxableBase, item.TaxAmount = ir.CorrectedBase, ir.CorrectedTax
				item.Flags.VATInclusiveDetected = true
				item.Notes = append(item.Notes, ir.Reason)
				debug.InclusiveDetected++
			}
		}

		if row.TaxMissing && rate.IsPositive() {
			item.TaxAmount = item.TaxableBase.Mul(rate).Round(2)
			item.GrossAmount = item.TaxableBase.Add(item.TaxAmount)
			item.Flags.DPPRecalculated = true
			item.Notes = append(item.Notes, "tax amount derived from base at the detected rate")
		}

		items = append(items, item)
	}
	return items
}

// ParseText is a convenience wrapper for callers that only have the raw OCR
// text.
func (p *Pipeline) ParseText(text string) faktur.ParseResult {
	return p.Parse(faktur.RawDocument{Text: strings.ReplaceAll(text, "\r\n", "\n")})
}
