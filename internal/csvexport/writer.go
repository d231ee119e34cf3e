package csvexport

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"claimdesk/internal/domain"
	"claimdesk/internal/xlsxexport"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// columns defines the CSV header row.
var columns = []string{
	"Section",
	"Item",
	"Value",
	"Detail",
	"Sources",
}

// Section names in output order.
const (
	SectionSummary     = "summary"
	SectionCoverage    = "coverage"
	SectionDeductible  = "deductible"
	SectionEndorsement = "endorsement"
	SectionExclusion   = "exclusion"
	SectionCondition   = "condition"
	SectionSource      = "source"
)

// Writer wraps csv.Writer for exporting an effective policy as flat rows.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer that writes CSV to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteHeader writes the header row.
func (w *Writer) WriteHeader() error {
	return w.csv.Write(columns)
}

// WritePolicy converts the effective policy to rows and writes them.
func (w *Writer) WritePolicy(claim *domain.Claim, ep *domain.EffectivePolicy) error {
	for _, row := range policyRows(claim, ep) {
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

// Write emits the BOM, the header and every row of ep to out.
func Write(out io.Writer, claim *domain.Claim, ep *domain.EffectivePolicy) error {
	if _, err := out.Write(BOM); err != nil {
		return err
	}
	w := NewWriter(out)
	if err := w.WriteHeader(); err != nil {
		return err
	}
	if err := w.WritePolicy(claim, ep); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

func policyRows(claim *domain.Claim, ep *domain.EffectivePolicy) [][]string {
	var rows [][]string
	add := func(section, item, value, detail, sources string) {
		rows = append(rows, []string{section, item, value, detail, sources})
	}

	add(SectionSummary, "Claim Number", claim.ClaimNumber, claim.CarrierClaimNumber, "")
	add(SectionSummary, "Policy Number", ep.PolicyNumber, "", "")
	add(SectionSummary, "Jurisdiction", ep.Jurisdiction, "", "")
	add(SectionSummary, "Base Forms", strings.Join(ep.BaseForms, ", "), "", "")

	codes := make([]string, 0, len(ep.Coverages))
	for code := range ep.Coverages {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	for _, code := range codes {
		c := ep.Coverages[code]
		detail := c.SettlementBasis
		if c.ModifiedBy != "" {
			detail = strings.TrimSpace(detail + " modified by " + c.ModifiedBy)
		}
		add(SectionCoverage, coverageLabel(code, c.Name), formatMoney(c.Limit), detail, "")
	}

	add(SectionDeductible, "All Perils", formatMoney(ep.Deductibles.AllPerils), "", "")
	add(SectionDeductible, "Wind/Hail", formatMoney(ep.Deductibles.WindHail), "", "")
	add(SectionDeductible, "Wind/Hail Percent", formatPercent(ep.Deductibles.WindHailPercent), "", "")

	for _, e := range ep.AppliedEndorsements {
		add(SectionEndorsement, e.FormCode, string(e.EndorsementType),
			strings.TrimSpace(fmt.Sprintf("priority %d %s", e.PrecedencePriority, e.Title)), e.DocumentID.String())
	}
	for _, ex := range ep.Exclusions {
		add(SectionExclusion, ex, "", "", "")
	}
	for _, cond := range ep.Conditions {
		add(SectionCondition, cond, "", "", "")
	}

	paths := make([]string, 0, len(ep.SourceMap))
	for p := range ep.SourceMap {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for _, p := range paths {
		add(SectionSource, p, "", "", joinIDs(ep.SourceMap[p]))
	}
	return rows
}

func coverageLabel(code, name string) string {
	if name == "" {
		return code
	}
	return code + " " + name
}

func joinIDs(ids []uuid.UUID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = id.String()
	}
	return strings.Join(parts, "; ")
}

func formatMoney(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 2, 64)
}

func formatPercent(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64) + "%"
}

// BuildFilename returns the download name for a claim's CSV export.
// Format: effective_policy_{claim number}_{YYYY-MM-DD}.csv
func BuildFilename(claimNumber string, now time.Time) string {
	return fmt.Sprintf("effective_policy_%s_%s.csv", xlsxexport.SanitizeFilename(claimNumber), now.Format("2006-01-02"))
}
