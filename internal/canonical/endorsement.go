package canonical

import (
	"math"
	"strings"

	"claimdesk/internal/domain"
	"claimdesk/internal/merge"
)

var endorsementAnchors = []string{"endorsements[].form_code", "endorsements[].title"}

// Keyword lists for best-effort endorsement classification. They are checked
// in the order loss settlement, state amendatory, coverage specific; anything
// unmatched is general.
var (
	lossSettlementKeywords = []string{
		"SCHEDULE", "ROOF", "ACV", "ACTUAL CASH", "LOSS SETTLEMENT",
		"REPLACEMENT COST", "DEPRECIATION",
	}
	stateAmendatoryKeywords = []string{
		"AMENDATORY", "SPECIAL PROVISIONS", "AMENDMENT OF POLICY PROVISIONS",
	}
	coverageSpecificKeywords = []string{
		"COVERAGE", "PERSONAL PROPERTY", "DWELLING", "OTHER STRUCTURES",
		"WATER BACK", "ORDINANCE", "SERVICE LINE", "EQUIPMENT BREAKDOWN",
	}
	stateCodes = map[string]bool{
		"AL": true, "AK": true, "AZ": true, "AR": true, "CA": true, "CO": true, "CT": true,
		"DE": true, "FL": true, "GA": true, "HI": true, "ID": true, "IL": true, "IN": true,
		"IA": true, "KS": true, "KY": true, "LA": true, "ME": true, "MD": true, "MA": true,
		"MI": true, "MN": true, "MS": true, "MO": true, "MT": true, "NE": true, "NV": true,
		"NH": true, "NJ": true, "NM": true, "NY": true, "NC": true, "ND": true, "OH": true,
		"OK": true, "OR": true, "PA": true, "RI": true, "SC": true, "SD": true, "TN": true,
		"TX": true, "UT": true, "VT": true, "VA": true, "WA": true, "WV": true, "WI": true,
		"WY": true, "DC": true,
	}
)

// ClassifyEndorsement guesses an endorsement's type from its form code and
// title. It is a tie-breaker for extractions that omit the type, not a
// guarantee.
func ClassifyEndorsement(formCode, title string) domain.EndorsementType {
	text := normalizeKey(formCode + " " + title)
	switch {
	case containsAny(text, lossSettlementKeywords):
		return domain.EndorsementTypeLossSettlement
	case containsAny(text, stateAmendatoryKeywords) || hasStateSuffix(formCode):
		return domain.EndorsementTypeStateAmendatory
	case containsAny(text, coverageSpecificKeywords):
		return domain.EndorsementTypeCoverageSpecific
	}
	return domain.EndorsementTypeGeneral
}

// DefaultPriority returns the band default precedence for an endorsement type.
func DefaultPriority(t domain.EndorsementType) int {
	if band, ok := domain.PriorityBands[t]; ok {
		return band.Default
	}
	return domain.PriorityBands[domain.EndorsementTypeGeneral].Default
}

func containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

func hasStateSuffix(formCode string) bool {
	fields := strings.Fields(strings.ToUpper(formCode))
	if len(fields) < 2 {
		return false
	}
	return stateCodes[fields[len(fields)-1]]
}

// Endorsements maps a merged raw endorsement document onto the canonical
// packet. Items sharing a form code are merged with the page merge rules,
// except raw_text, which is concatenated in page order, and the
// applies_to lists, which are set-unioned.
func Endorsements(in Input) (*domain.EndorsementPacket, error) {
	items := objList(in.Raw, "endorsements")

	type group struct {
		raw       map[string]interface{}
		texts     []string
		forms     []string
		coverages []string
	}
	var order []string
	groups := map[string]*group{}

	for _, item := range items {
		key := domain.FormKey(str(item, "form_code"), str(item, "title"))
		if key == "" {
			continue
		}
		g, ok := groups[key]
		if !ok {
			g = &group{raw: map[string]interface{}{}}
			groups[key] = g
			order = append(order, key)
		}
		if t := rawString(item, "raw_text"); t != "" {
			g.texts = append(g.texts, t)
		}
		g.forms = unionStrings(g.forms, strList(item, "applies_to_forms"))
		g.coverages = unionStrings(g.coverages, strList(item, "applies_to_coverages"))

		rest := make(map[string]interface{}, len(item))
		for k, v := range item {
			switch k {
			case "raw_text", "applies_to_forms", "applies_to_coverages":
				continue
			}
			rest[k] = v
		}
		g.raw = merge.Objects(g.raw, rest)
	}

	if len(order) == 0 {
		return nil, &domain.MalformedDocumentError{Class: domain.DocumentClassEndorsement, Anchors: endorsementAnchors}
	}

	packet := &domain.EndorsementPacket{}
	for _, key := range order {
		g := groups[key]
		e := endorsement(g.raw)
		e.AppliesToForms = g.forms
		e.AppliesToCoverages = g.coverages
		e.RawText = strings.Join(g.texts, "\n\n")
		packet.Endorsements = append(packet.Endorsements, e)
	}
	if len(packet.Endorsements) == 1 && packet.Endorsements[0].RawText == "" {
		packet.Endorsements[0].RawText = in.JoinedText()
	}
	return packet, nil
}

// rawString reads a string verbatim, without trimming.
func rawString(m map[string]interface{}, key string) string {
	s, _ := m[key].(string)
	if strings.TrimSpace(s) == "" {
		return ""
	}
	return s
}

func endorsement(raw map[string]interface{}) domain.EndorsementExtraction {
	e := domain.EndorsementExtraction{
		FormCode:     str(raw, "form_code"),
		Title:        str(raw, "title"),
		EditionDate:  str(raw, "edition_date"),
		Jurisdiction: str(raw, "jurisdiction"),
	}

	e.EndorsementType = domain.EndorsementType(strings.ToLower(str(raw, "endorsement_type")))
	if !e.EndorsementType.Valid() {
		e.EndorsementType = ClassifyEndorsement(e.FormCode, e.Title)
	}
	if p := number(raw, "precedence_priority"); p != nil {
		e.PrecedencePriority = clampPriority(*p)
	} else {
		e.PrecedencePriority = DefaultPriority(e.EndorsementType)
	}

	if m := obj(raw, "modifications"); m != nil {
		mods := modifications(m)
		if mods != nil {
			e.Modifications = mods
		}
	}

	for _, s := range objList(raw, "schedules") {
		sched := domain.Schedule{
			Name:    str(s, "name"),
			Section: str(s, "section"),
		}
		for _, row := range objList(s, "entries") {
			entry := domain.ScheduleEntry{
				AgeRange:       str(row, "age_range"),
				MinAgeYears:    number(row, "min_age_years"),
				MaxAgeYears:    number(row, "max_age_years"),
				RoofMaterial:   str(row, "roof_material"),
				PaymentPercent: number(row, "payment_percent"),
			}
			if entry.AgeRange != "" || entry.MinAgeYears != nil || entry.MaxAgeYears != nil ||
				entry.RoofMaterial != "" || entry.PaymentPercent != nil {
				sched.Entries = append(sched.Entries, entry)
			}
		}
		if sched.Name != "" || sched.Section != "" || len(sched.Entries) > 0 {
			e.Schedules = append(e.Schedules, sched)
		}
	}
	return e
}

func clampPriority(p float64) int {
	n := int(math.Round(p))
	if n < 1 {
		return 1
	}
	if n > 100 {
		return 100
	}
	return n
}

func modifications(m map[string]interface{}) *domain.EndorsementModifications {
	mods := &domain.EndorsementModifications{}
	empty := true

	if d := obj(m, "definitions"); d != nil {
		changes := &domain.DefinitionChanges{
			Added:    definitions(d, "added"),
			Deleted:  strList(d, "deleted"),
			Replaced: definitions(d, "replaced"),
		}
		if len(changes.Added)+len(changes.Deleted)+len(changes.Replaced) > 0 {
			mods.Definitions = changes
			empty = false
		}
	}
	if l := listChanges(obj(m, "exclusions")); l != nil {
		mods.Exclusions = l
		empty = false
	}
	if l := listChanges(obj(m, "conditions")); l != nil {
		mods.Conditions = l
		empty = false
	}
	if ls := obj(m, "loss_settlement"); ls != nil {
		changes := &domain.LossSettlementChanges{}
		for _, r := range objList(ls, "replaced") {
			rule := domain.LossSettlementRule{
				Section:            str(r, "section"),
				Basis:              str(r, "basis"),
				Description:        str(r, "description"),
				MetalComponentRule: str(r, "metal_component_rule"),
			}
			if rule != (domain.LossSettlementRule{}) {
				changes.Replaced = append(changes.Replaced, rule)
			}
		}
		if len(changes.Replaced) > 0 {
			mods.LossSettlement = changes
			empty = false
		}
	}
	for _, c := range objList(m, "coverages") {
		cm := domain.CoverageModification{
			Coverage:        str(c, "coverage"),
			Description:     str(c, "description"),
			SettlementBasis: str(c, "settlement_basis"),
		}
		if cm.Coverage != "" {
			mods.Coverages = append(mods.Coverages, cm)
			empty = false
		}
	}

	if empty {
		return nil
	}
	return mods
}

func listChanges(m map[string]interface{}) *domain.ListChanges {
	if m == nil {
		return nil
	}
	l := &domain.ListChanges{
		Added:   strList(m, "added"),
		Deleted: strList(m, "deleted"),
	}
	if len(l.Added) == 0 && len(l.Deleted) == 0 {
		return nil
	}
	return l
}
