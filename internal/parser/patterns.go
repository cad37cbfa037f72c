package parser

import "regexp"

// Summary field names, in the fixed order they are extracted and reported.
const (
	FieldGross        = "gross_total"
	FieldDiscount     = "discount_total"
	FieldAdvance      = "advance_total"
	FieldTaxableBase  = "taxable_base_total"
	FieldTax          = "tax_total"
	FieldSecondaryTax = "secondary_tax_total"
)

// fieldPatterns pairs a summary field with its label patterns, ordered
// most-specific first. The whole table is compiled once at process start and
// never mutated, which keeps it safe to share across concurrent workers.
type fieldPatterns struct {
	field    string
	patterns []*regexp.Regexp
}

var summaryPatterns = []fieldPatterns{
	{
		field: FieldGross,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)harga\s+jual\s*/?\s*penggantian\s*/?\s*uang\s+muka\s*/?\s*termin`),
			regexp.MustCompile(`(?i)harga\s+jual\s*/?\s*penggantian`),
			regexp.MustCompile(`(?i)jumlah\s+harga\s+jual`),
		},
	},
	{
		field: FieldDiscount,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)dikurangi\s+potongan\s+harga`),
			regexp.MustCompile(`(?i)potongan\s+harga`),
		},
	},
	{
		field: FieldAdvance,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)dikurangi\s+uang\s+muka\s+yang\s+telah\s+diterima`),
			regexp.MustCompile(`(?i)dikurangi\s+uang\s+muka`),
		},
	},
	{
		field: FieldTaxableBase,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)dasar\s+pengenaan\s+pajak`),
			regexp.MustCompile(`\bDPP\b`),
		},
	},
	{
		field: FieldTax,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)(?:total|jumlah)\s+ppn\b`),
			regexp.MustCompile(`(?i)ppn\s*=\s*[\d.,]+\s*%[^0-9]*`),
			regexp.MustCompile(`(?i)\bppn\b`),
		},
	},
	{
		field: FieldSecondaryTax,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)(?:total|jumlah)\s+ppnbm\b`),
			regexp.MustCompile(`(?i)\bppnbm\b`),
		},
	},
}

// numberTokenRe matches candidate amount tokens, including the OCR digit
// confusions Normalize knows how to repair.
var numberTokenRe = regexp.MustCompile(`[0-9OoIl][0-9OoIl.,]*`)

// fakturNumberRe captures the full faktur serial number; its first two
// digits are the transaction code used by tier-2 rate inference.
var fakturNumberRe = regexp.MustCompile(`(?i)(?:kode\s+dan\s+)?nomor\s+seri\s+faktur\s+pajak\s*:?\s*([0-9][0-9.\-]{5,})`)

// Document date: either the Indonesian long form ("17 Maret 2025") or a
// numeric dd/mm/yyyy.
var (
	longDateRe    = regexp.MustCompile(`(?i)\b(\d{1,2})\s+(januari|februari|maret|april|mei|juni|juli|agustus|september|oktober|november|desember)\s+(\d{4})\b`)
	numericDateRe = regexp.MustCompile(`\b(\d{1,2})[/-](\d{1,2})[/-](\d{4})\b`)
)

var indonesianMonths = map[string]int{
	"januari": 1, "februari": 2, "maret": 3, "april": 4,
	"mei": 5, "juni": 6, "juli": 7, "agustus": 8,
	"september": 9, "oktober": 10, "november": 11, "desember": 12,
}

// lineItemRe matches the start of an invoice row: a small row number
// followed by the row body.
var lineItemRe = regexp.MustCompile(`^\s*(\d{1,3})[.)]?\s+(\S.*)$`)

// itemCodeRe matches a bare item code token (six or more digits, no
// separators). "000000" is the placeholder code OCR frequently yields.
var itemCodeRe = regexp.MustCompile(`^\d{6,}$`)
