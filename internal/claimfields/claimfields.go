// Package claimfields derives the denormalized claim columns from a canonical
// FNOL extraction: numeric coverage limits, deductibles, address parts and the
// date of loss.
package claimfields

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"claimdesk/internal/domain"
)

var (
	amountPattern  = regexp.MustCompile(`(\$\s*)?(\d{1,3}(?:,\d{3})+|\d+)(\.\d+)?`)
	percentPattern = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*%`)

	// "123 Main St, Dallas, TX 75201" and "123 Main St, Dallas TX 75201-1234".
	fullAddressPattern = regexp.MustCompile(`^\s*(.+?),\s*([A-Za-z][A-Za-z .'-]*?),?\s+([A-Za-z]{2})\.?\s+(\d{5}(?:-\d{4})?)\s*$`)
	// "123 Main St Dallas TX 75201" without separators: street and city stay together.
	stateZipPattern = regexp.MustCompile(`^\s*(.+?)[,\s]+([A-Za-z]{2})\.?\s+(\d{5}(?:-\d{4})?)\s*$`)
)

// ParseCurrency extracts a dollar amount. Strings that only carry a
// percentage, or no recognizable amount at all, return nil. A "$"-prefixed
// amount is preferred over bare numbers so that labels such as form numbers
// or years are not mistaken for the limit.
func ParseCurrency(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	var bare *float64
	for _, m := range amountPattern.FindAllStringSubmatchIndex(s, -1) {
		if followedByPercent(s, m[1]) {
			continue
		}
		digits := strings.ReplaceAll(s[m[4]:m[5]], ",", "")
		if m[6] >= 0 {
			digits += s[m[6]:m[7]]
		}
		v, err := strconv.ParseFloat(digits, 64)
		if err != nil {
			continue
		}
		if m[2] >= 0 {
			return &v
		}
		if bare == nil {
			bare = &v
		}
	}
	return bare
}

func followedByPercent(s string, end int) bool {
	rest := strings.TrimLeft(s[end:], " ")
	return strings.HasPrefix(rest, "%")
}

// ParsePercent extracts the first percentage in s, e.g. "1%" or "2 % of
// Coverage A".
func ParsePercent(s string) *float64 {
	m := percentPattern.FindStringSubmatch(s)
	if m == nil {
		return nil
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return nil
	}
	return &v
}

// Address is a US street address split into parts.
type Address struct {
	Street string
	City   string
	State  string
	Zip    string
}

// ParseAddress splits a combined address line. ok is false when no state and
// ZIP code could be found at the end of the string.
func ParseAddress(s string) (Address, bool) {
	if m := fullAddressPattern.FindStringSubmatch(s); m != nil {
		return Address{
			Street: strings.TrimSpace(m[1]),
			City:   strings.TrimSpace(m[2]),
			State:  strings.ToUpper(m[3]),
			Zip:    m[4],
		}, true
	}
	if m := stateZipPattern.FindStringSubmatch(s); m != nil {
		return Address{
			Street: strings.TrimSpace(m[1]),
			State:  strings.ToUpper(m[2]),
			Zip:    m[3],
		}, true
	}
	return Address{}, false
}

// ParseDate accepts the US layouts seen on loss reports.
func ParseDate(s string) (time.Time, error) {
	formats := []string{
		"01/02/2006",
		"1/2/2006",
		"01/02/06",
		"1/2/06",
		"2006-01-02",
		"01-02-2006",
		"Jan 2, 2006",
		"January 2, 2006",
		"2006-01-02T15:04:05Z07:00",
	}
	s = strings.TrimSpace(s)
	for _, f := range formats {
		if t, err := time.Parse(f, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date: %s", s)
}

// FormatClaimNumber renders a per-organization yearly sequence value as
// YYYY-NNNNNN.
func FormatClaimNumber(year int, seq int64) string {
	return fmt.Sprintf("%04d-%06d", year, seq)
}

// Populate copies the FNOL-derived scalars onto c. Values that cannot be
// parsed are left unset.
func Populate(c *domain.Claim, f *domain.FNOLExtraction) {
	c.CarrierClaimNumber = f.ClaimNumber
	if f.DateOfLoss != "" {
		if t, err := ParseDate(f.DateOfLoss); err == nil {
			c.DateOfLoss = &t
		}
	}
	if f.Insured != nil {
		c.InsuredName = f.Insured.Name
	}
	if f.Policy != nil {
		c.PolicyNumber = f.Policy.PolicyNumber
	}

	if p := f.Property; p != nil {
		c.PropertyAddress = p.Street
		c.PropertyCity = p.City
		c.PropertyState = strings.ToUpper(p.State)
		c.PropertyZip = p.Zip
		if p.Address != "" && (c.PropertyAddress == "" || c.PropertyCity == "" || c.PropertyState == "" || c.PropertyZip == "") {
			if addr, ok := ParseAddress(p.Address); ok {
				c.PropertyAddress = firstNonEmpty(c.PropertyAddress, addr.Street)
				c.PropertyCity = firstNonEmpty(c.PropertyCity, addr.City)
				c.PropertyState = firstNonEmpty(c.PropertyState, addr.State)
				c.PropertyZip = firstNonEmpty(c.PropertyZip, addr.Zip)
			} else if c.PropertyAddress == "" {
				c.PropertyAddress = p.Address
			}
		}
	}

	if cov := f.Coverages; cov != nil {
		c.CoverageA = ParseCurrency(cov.CoverageA)
		c.CoverageB = ParseCurrency(cov.CoverageB)
		c.CoverageC = ParseCurrency(cov.CoverageC)
		c.CoverageD = ParseCurrency(cov.CoverageD)
	}
	if d := f.Deductibles; d != nil {
		c.DeductibleAllPerils = ParseCurrency(d.AllPerils)
		c.DeductibleWindHail = ParseCurrency(d.WindHail)
		c.WindHailPercent = ParsePercent(d.WindHail)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
