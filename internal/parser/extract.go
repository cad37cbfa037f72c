package parser

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"pajakos/internal/faktur"
)

// Extractor locates summary fields, the faktur number and the document date
// in raw OCR text. It holds no per-document state.
type Extractor struct {
	opts Options
}

// NewExtractor creates an Extractor with the given options.
func NewExtractor(opts Options) *Extractor {
	return &Extractor{opts: opts}
}

// SummaryFields extracts every summary field in fixed order. A field whose
// label never matched is returned with Found=false so downstream tiers can
// apply fallback logic; extraction misses are notes, not errors.
func (e *Extractor) SummaryFields(text string) []faktur.ExtractedField {
	lines := strings.Split(text, "\n")
	fields := make([]faktur.ExtractedField, 0, len(summaryPatterns))

	for _, fp := range summaryPatterns {
		field := faktur.ExtractedField{Label: fp.field, Value: decimal.Zero}
		for _, re := range fp.patterns {
			if field.Found {
				break
			}
			for lineNo, line := range lines {
				loc := re.FindStringIndex(line)
				if loc == nil {
					continue
				}
				value, raw, diag, ok := e.valueAfterLabel(line, loc[1])
				if !ok {
					// Label matched but no usable amount followed it on
					// this line; keep scanning further lines.
					if diag != "" && field.Diagnostic == "" {
						field.Diagnostic = diag
					}
					continue
				}
				field.Raw = raw
				field.Value = value
				field.Found = true
				field.Line = lineNo
				field.Diagnostic = diag
				break
			}
		}
		fields = append(fields, field)
	}
	return fields
}

// valueAfterLabel selects the numeric token with the smallest positive
// character offset after labelEnd, that is, the value immediately following
// the label. Taking the rightmost token instead silently attributes one field's
// value to another whenever two summary fields share an OCR line, so tokens
// are tried strictly in nearest-first order.
func (e *Extractor) valueAfterLabel(line string, labelEnd int) (decimal.Decimal, string, string, bool) {
	var diag string
	for _, loc := range numberTokenRe.FindAllStringIndex(line, -1) {
		if loc[0] < labelEnd {
			continue
		}
		raw := line[loc[0]:loc[1]]
		value, d := Normalize(raw)
		if d != nil && d.Kind != DiagAbsent {
			if diag == "" {
				diag = d.String()
			}
			continue
		}
		if value.LessThan(e.opts.MinAmount) {
			// Below the magnitude floor: a footnote marker, percentage or
			// page number misread as an amount.
			continue
		}
		return value, raw, diag, true
	}
	return decimal.Zero, "", diag, false
}

// FakturNumber returns the faktur serial number, or "" when absent.
func (e *Extractor) FakturNumber(text string) string {
	m := fakturNumberRe.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return m[1]
}

// TransactionCode derives the 2-digit transaction code from a faktur serial
// number such as "010.000-25.00000001".
func TransactionCode(fakturNumber string) string {
	digits := make([]byte, 0, 2)
	for i := 0; i < len(fakturNumber) && len(digits) < 2; i++ {
		c := fakturNumber[i]
		if c >= '0' && c <= '9' {
			digits = append(digits, c)
		}
	}
	if len(digits) < 2 {
		return ""
	}
	return string(digits)
}

// DocumentDate finds the document issue date, trying the Indonesian long
// form first and falling back to dd/mm/yyyy.
func (e *Extractor) DocumentDate(text string) *time.Time {
	if m := longDateRe.FindStringSubmatch(text); m != nil {
		day, _ := strconv.Atoi(m[1])
		month := indonesianMonths[strings.ToLower(m[2])]
		year, _ := strconv.Atoi(m[3])
		if valid := validDate(year, month, day); valid != nil {
			return valid
		}
	}
	if m := numericDateRe.FindStringSubmatch(text); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		if valid := validDate(year, month, day); valid != nil {
			return valid
		}
	}
	return nil
}

func validDate(year, month, day int) *time.Time {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return nil
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || int(t.Month()) != month {
		return nil
	}
	return &t
}
