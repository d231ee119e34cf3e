// Package xlsxexport renders an effective policy as an audit workbook.
package xlsxexport

import (
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"claimdesk/internal/domain"
)

// Sheet names in workbook order.
const (
	SheetSummary        = "Summary"
	SheetCoverages      = "Coverages"
	SheetLossSettlement = "Loss Settlement"
	SheetEndorsements   = "Endorsements"
	SheetProvisions     = "Provisions"
	SheetSources        = "Sources"
)

var (
	coverageColumns     = []interface{}{"Code", "Name", "Limit", "Settlement Basis", "Modified By", "Description"}
	settlementColumns   = []interface{}{"Section", "Basis", "Description", "Metal Component Rule", "Source Form"}
	scheduleColumns     = []interface{}{"Age Range", "Min Age (yrs)", "Max Age (yrs)", "Roof Material", "Payment %"}
	endorsementColumns  = []interface{}{"Order", "Form Code", "Title", "Type", "Priority", "Document ID"}
	provisionColumns    = []interface{}{"Kind", "Term", "Text"}
	sourceColumns       = []interface{}{"Field", "Document IDs"}
	settlementSectionOf = []struct {
		label string
		get   func(ls domain.LossSettlement) *domain.SettlementRule
	}{
		{"Dwelling and Structures", func(ls domain.LossSettlement) *domain.SettlementRule { return ls.DwellingAndStructures }},
		{"Personal Property", func(ls domain.LossSettlement) *domain.SettlementRule { return ls.PersonalProperty }},
	}
)

// Write renders claim and its effective policy as an xlsx workbook to w.
// Rows are emitted in a stable order so identical inputs give identical
// cell contents.
func Write(w io.Writer, claim *domain.Claim, ep *domain.EffectivePolicy) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return fmt.Errorf("xlsxexport.Write: %w", err)
	}
	for _, name := range []string{SheetCoverages, SheetLossSettlement, SheetEndorsements, SheetProvisions, SheetSources} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("xlsxexport.Write: creating sheet %s: %w", name, err)
		}
	}

	writers := []func(*excelize.File, *domain.Claim, *domain.EffectivePolicy) error{
		writeSummary, writeCoverages, writeLossSettlement, writeEndorsements, writeProvisions, writeSources,
	}
	for _, write := range writers {
		if err := write(f, claim, ep); err != nil {
			return fmt.Errorf("xlsxexport.Write: %w", err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("xlsxexport.Write: %w", err)
	}
	return nil
}

// rows appends values row by row starting at A1.
type rows struct {
	f     *excelize.File
	sheet string
	next  int
}

func newRows(f *excelize.File, sheet string) *rows {
	return &rows{f: f, sheet: sheet, next: 1}
}

func (r *rows) add(values ...interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, r.next)
	if err != nil {
		return err
	}
	if err := r.f.SetSheetRow(r.sheet, cell, &values); err != nil {
		return fmt.Errorf("sheet %s row %d: %w", r.sheet, r.next, err)
	}
	r.next++
	return nil
}

func writeSummary(f *excelize.File, claim *domain.Claim, ep *domain.EffectivePolicy) error {
	r := newRows(f, SheetSummary)
	entries := [][2]interface{}{
		{"Claim Number", claim.ClaimNumber},
		{"Carrier Claim Number", claim.CarrierClaimNumber},
		{"Insured", claim.InsuredName},
		{"Date of Loss", formatDate(claim.DateOfLoss)},
		{"Primary Peril", claim.PrimaryPeril},
		{"Policy Number", ep.PolicyNumber},
		{"Jurisdiction", ep.Jurisdiction},
		{"Base Forms", strings.Join(ep.BaseForms, ", ")},
		{"All Perils Deductible", money(ep.Deductibles.AllPerils)},
		{"Wind/Hail Deductible", money(ep.Deductibles.WindHail)},
		{"Wind/Hail Deductible %", percent(ep.Deductibles.WindHailPercent)},
		{"Applied Endorsements", strconv.Itoa(len(ep.AppliedEndorsements))},
	}
	for _, e := range entries {
		if err := r.add(e[0], e[1]); err != nil {
			return err
		}
	}
	return f.SetColWidth(SheetSummary, "A", "A", 26)
}

func writeCoverages(f *excelize.File, _ *domain.Claim, ep *domain.EffectivePolicy) error {
	r := newRows(f, SheetCoverages)
	if err := r.add(coverageColumns...); err != nil {
		return err
	}
	codes := make([]string, 0, len(ep.Coverages))
	for code := range ep.Coverages {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	for _, code := range codes {
		c := ep.Coverages[code]
		if err := r.add(c.Code, c.Name, money(c.Limit), c.SettlementBasis, c.ModifiedBy, c.Description); err != nil {
			return err
		}
	}
	return nil
}

func writeLossSettlement(f *excelize.File, _ *domain.Claim, ep *domain.EffectivePolicy) error {
	r := newRows(f, SheetLossSettlement)
	if err := r.add(settlementColumns...); err != nil {
		return err
	}
	for _, s := range settlementSectionOf {
		rule := s.get(ep.LossSettlement)
		if rule == nil {
			continue
		}
		if err := r.add(s.label, rule.Basis, rule.Description, "", rule.SourceFormCode); err != nil {
			return err
		}
	}

	roof := ep.LossSettlement.RoofingSystem
	if roof == nil {
		return nil
	}
	if err := r.add("Roofing System", roof.Basis, roof.Description, roof.MetalComponentRule, roof.SourceFormCode); err != nil {
		return err
	}
	if len(roof.PaymentSchedule) == 0 {
		return nil
	}
	if err := r.add(); err != nil {
		return err
	}
	if err := r.add(scheduleColumns...); err != nil {
		return err
	}
	for _, e := range roof.PaymentSchedule {
		if err := r.add(e.AgeRange, number(e.MinAgeYears), number(e.MaxAgeYears), e.RoofMaterial, number(e.PaymentPercent)); err != nil {
			return err
		}
	}
	return nil
}

func writeEndorsements(f *excelize.File, _ *domain.Claim, ep *domain.EffectivePolicy) error {
	r := newRows(f, SheetEndorsements)
	if err := r.add(endorsementColumns...); err != nil {
		return err
	}
	for i, e := range ep.AppliedEndorsements {
		if err := r.add(i+1, e.FormCode, e.Title, string(e.EndorsementType), e.PrecedencePriority, e.DocumentID.String()); err != nil {
			return err
		}
	}
	return nil
}

func writeProvisions(f *excelize.File, _ *domain.Claim, ep *domain.EffectivePolicy) error {
	r := newRows(f, SheetProvisions)
	if err := r.add(provisionColumns...); err != nil {
		return err
	}
	for _, d := range ep.Definitions {
		if err := r.add("Definition", d.Term, d.Meaning); err != nil {
			return err
		}
	}
	for _, e := range ep.Exclusions {
		if err := r.add("Exclusion", "", e); err != nil {
			return err
		}
	}
	for _, c := range ep.Conditions {
		if err := r.add("Condition", "", c); err != nil {
			return err
		}
	}
	return nil
}

func writeSources(f *excelize.File, _ *domain.Claim, ep *domain.EffectivePolicy) error {
	r := newRows(f, SheetSources)
	if err := r.add(sourceColumns...); err != nil {
		return err
	}
	paths := make([]string, 0, len(ep.SourceMap))
	for p := range ep.SourceMap {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for _, p := range paths {
		if err := r.add(p, joinIDs(ep.SourceMap[p])); err != nil {
			return err
		}
	}
	return nil
}

func joinIDs(ids []uuid.UUID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = id.String()
	}
	return strings.Join(parts, ", ")
}

func money(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 2, 64)
}

func percent(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64) + "%"
}

func number(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename cleans a name for use in Content-Disposition.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns the download name for a claim's workbook.
// Format: effective_policy_{claim number}_{YYYY-MM-DD}.xlsx
func BuildFilename(claimNumber string, now time.Time) string {
	return fmt.Sprintf("effective_policy_%s_%s.xlsx", SanitizeFilename(claimNumber), now.Format("2006-01-02"))
}
