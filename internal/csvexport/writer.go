package csvexport

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"pajakos/internal/domain"
	"pajakos/internal/faktur"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// columns defines the CSV header row (20 columns).
var columns = []string{
	"Source Name",
	"Parsing Status",
	"Parse Outcome",
	"Review Status",
	"Confidence",
	"Faktur Number",
	"Document Date",
	"Rate Tier",
	"Tax Rate",
	"Gross Total",
	"Discount Total",
	"Advance Total",
	"Taxable Base Total",
	"Tax Total",
	"Secondary Tax Total",
	"Line Item Count",
	"Reason Codes",
	"Reviewer Notes",
	"Parsed At",
	"Created At",
}

// Writer wraps csv.Writer for exporting documents as CSV.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer that writes CSV to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteHeader writes the 20-column header row.
func (w *Writer) WriteHeader() error {
	return w.csv.Write(columns)
}

// WriteDocuments converts a batch of documents to CSV rows and writes them.
func (w *Writer) WriteDocuments(docs []domain.Document) error {
	for i := range docs {
		row := documentToRow(&docs[i])
		if err := w.csv.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

// documentToRow converts a single document to a 20-element string slice.
// If the document is not successfully parsed or ParseResult is invalid, the
// metadata columns are filled and the faktur columns are left empty.
func documentToRow(doc *domain.Document) []string {
	row := make([]string, len(columns))

	// Metadata columns (always filled)
	row[0] = doc.SourceName
	row[1] = string(doc.ParsingStatus)
	row[2] = doc.ParseStatus
	row[3] = string(doc.ReviewStatus)
	row[17] = doc.ReviewerNotes
	row[18] = formatTime(doc.ParsedAt)
	row[19] = doc.CreatedAt.Format(time.RFC3339)

	// Faktur columns: only if parsing completed and JSON is valid
	if doc.ParsingStatus != domain.ParsingStatusCompleted || len(doc.ParseResult) == 0 {
		return row
	}

	var result faktur.ParseResult
	if err := json.Unmarshal(doc.ParseResult, &result); err != nil {
		return row
	}

	row[4] = strconv.FormatFloat(result.Confidence, 'f', 3, 64)
	row[5] = result.Debug.FakturNumber
	row[6] = result.Debug.DocumentDate
	row[7] = string(result.Header.RateTier)
	row[8] = result.Header.TaxRate.String()
	row[9] = result.Header.GrossTotal.StringFixed(2)
	row[10] = result.Header.DiscountTotal.StringFixed(2)
	row[11] = result.Header.AdvanceTotal.StringFixed(2)
	row[12] = result.Header.TaxableBaseTotal.StringFixed(2)
	row[13] = result.Header.TaxTotal.StringFixed(2)
	row[14] = result.Header.SecondaryTaxTotal.StringFixed(2)
	row[15] = strconv.Itoa(len(result.Items))
	row[16] = joinReasons(result.ReasonCodes)

	return row
}

func joinReasons(reasons []faktur.ReasonCode) string {
	parts := make([]string, len(reasons))
	for i, r := range reasons {
		parts[i] = string(r)
	}
	return strings.Join(parts, "; ")
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename cleans an export name for use in Content-Disposition.
// Replaces non-alphanumeric chars (except - _) with _, collapses consecutive
// underscores, and truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns a sanitized filename for the Content-Disposition
// header. Format: {sanitized_name}_{YYYY-MM-DD}.{ext}
func BuildFilename(name, ext string) string {
	sanitized := SanitizeFilename(name)
	date := time.Now().Format("2006-01-02")
	return fmt.Sprintf("%s_%s.%s", sanitized, date, ext)
}
