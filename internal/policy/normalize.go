package policy

import (
	"strings"

	"claimdesk/internal/domain"
)

// NormalizeBasis maps settlement language onto ACV, RCV or SCHEDULED.
// Unrecognized text is returned trimmed and unchanged.
func NormalizeBasis(s string) string {
	u := strings.ToUpper(strings.TrimSpace(s))
	switch {
	case u == "":
		return ""
	case strings.Contains(u, "SCHEDULE"):
		return domain.SettlementBasisScheduled
	case strings.Contains(u, "ACTUAL CASH") || strings.Contains(u, "ACV"):
		return domain.SettlementBasisACV
	case strings.Contains(u, "REPLACEMENT") || strings.Contains(u, "RCV"):
		return domain.SettlementBasisRCV
	}
	return strings.TrimSpace(s)
}

// CoverageCode reduces "Coverage A", "coverage_a", "Cov. A - Dwelling" and
// "A" to "A". Codes that are not a single letter are returned uppercased.
func CoverageCode(s string) string {
	r := strings.NewReplacer("_", " ", "-", " ", ".", " ", ":", " ")
	var fields []string
	for _, f := range strings.Fields(strings.ToUpper(r.Replace(s))) {
		if f == "COVERAGE" || f == "COV" {
			continue
		}
		fields = append(fields, f)
	}
	if len(fields) == 0 {
		return ""
	}
	if len(fields[0]) == 1 {
		return fields[0]
	}
	return strings.Join(fields, " ")
}

func mentionsRoof(s string) bool {
	return containsAnyOf(strings.ToLower(s), "roof", "hail")
}

func containsAnyOf(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func normalizeKey(s string) string {
	return strings.ToUpper(strings.Join(strings.Fields(s), " "))
}

func containsFold(list []string, s string) bool {
	k := normalizeKey(s)
	for _, v := range list {
		if normalizeKey(v) == k {
			return true
		}
	}
	return false
}

// appendUnique appends s unless an equal entry exists, ignoring case and
// spacing. It reports whether the list changed.
func appendUnique(list *[]string, s string) bool {
	if strings.TrimSpace(s) == "" || containsFold(*list, s) {
		return false
	}
	*list = append(*list, s)
	return true
}

// removeFold removes every entry equal to s and reports whether any was found.
func removeFold(list *[]string, s string) bool {
	k := normalizeKey(s)
	kept := make([]string, 0, len(*list))
	for _, v := range *list {
		if normalizeKey(v) != k {
			kept = append(kept, v)
		}
	}
	removed := len(kept) != len(*list)
	*list = kept
	return removed
}

func definitionIndex(defs []domain.Definition, term string) int {
	k := normalizeKey(term)
	for i, d := range defs {
		if normalizeKey(d.Term) == k {
			return i
		}
	}
	return -1
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func copyFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}
