package parser

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"pajakos/internal/faktur"
)

// rowExtraction is a line item straight out of the text, before rate
// derivation and corrections.
type rowExtraction struct {
	Item       faktur.LineItem
	TaxMissing bool
}

// LineItems extracts invoice rows from the raw text. A row is a line that
// starts with a (monotonically increasing) row number and carries at least
// one amount. Summary lines are excluded by label so totals are never
// double-counted as items.
func (e *Extractor) LineItems(text string) []rowExtraction {
	var rows []rowExtraction
	last := 0

	for _, line := range strings.Split(text, "\n") {
		if isSummaryLine(line) {
			continue
		}
		m := lineItemRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		lineNo, _ := strconv.Atoi(m[1])
		// Row numbers must advance; a small gap is allowed for rows the OCR
		// dropped entirely, anything larger is not a row number.
		if lineNo <= last || lineNo > last+3 {
			continue
		}

		body := m[2]
		itemCode := ""
		var amounts []decimal.Decimal
		firstAmountStart := len(body)

		for _, loc := range numberTokenRe.FindAllStringIndex(body, -1) {
			tok := body[loc[0]:loc[1]]
			if !isAmountToken(tok) {
				// Bare digit runs are codes, years or quantities. The first
				// one long enough is the item code.
				if itemCode == "" && itemCodeRe.MatchString(tok) {
					itemCode = tok
				}
				continue
			}
			value, d := Normalize(tok)
			if d != nil || value.LessThan(e.opts.MinAmount) {
				continue
			}
			amounts = append(amounts, value)
			if loc[0] < firstAmountStart {
				firstAmountStart = loc[0]
			}
		}
		if len(amounts) == 0 {
			continue
		}

		item := faktur.LineItem{
			LineNo:      lineNo,
			ItemCode:    itemCode,
			Description: rowDescription(body, itemCode, firstAmountStart),
			Notes:       []string{},
		}
		taxMissing := false

		// Column order on the printed form is harga jual, DPP, PPN. Rows
		// that only yield two amounts are the frequent OCR collapse of
		// DPP+PPN; a single amount is the row's value with tax still to be
		// derived at the detected rate.
		switch {
		case len(amounts) >= 3:
			item.GrossAmount = amounts[0]
			item.TaxableBase = amounts[1]
			item.TaxAmount = amounts[2]
		case len(amounts) == 2:
			item.TaxableBase = amounts[0]
			item.TaxAmount = amounts[1]
			item.GrossAmount = amounts[0].Add(amounts[1])
		default:
			item.GrossAmount = amounts[0]
			item.TaxableBase = amounts[0]
			item.TaxAmount = decimal.Zero
			taxMissing = true
		}

		rows = append(rows, rowExtraction{Item: item, TaxMissing: taxMissing})
		last = lineNo
	}
	return rows
}

// isAmountToken reports whether tok looks like a money amount: amounts on
// these documents always carry grouping or decimal separators.
func isAmountToken(tok string) bool {
	return strings.ContainsAny(tok, ".,")
}

func isSummaryLine(line string) bool {
	for _, fp := range summaryPatterns {
		for _, re := range fp.patterns {
			if re.MatchString(line) {
				return true
			}
		}
	}
	return false
}

// rowDescription strips the item code and trailing amount columns from the
// row body, leaving the free-text description.
func rowDescription(body, itemCode string, firstAmountStart int) string {
	desc := body[:firstAmountStart]
	if itemCode != "" {
		if idx := strings.Index(desc, itemCode); idx >= 0 {
			desc = desc[:idx] + desc[idx+len(itemCode):]
		}
	}
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(desc), "-|"))
}
