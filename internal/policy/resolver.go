// Package policy computes a claim's effective policy by layering endorsements
// over the base policy forms.
package policy

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/google/uuid"

	"claimdesk/internal/domain"
)

// Source map keys.
const (
	pathJurisdiction     = "jurisdiction"
	pathPolicyNumber     = "policyNumber"
	pathBaseForms        = "baseForms"
	pathExclusions       = "exclusions"
	pathConditions       = "conditions"
	pathDefinitions      = "definitions"
	pathDwelling         = "lossSettlement.dwellingAndStructures"
	pathRoofing          = "lossSettlement.roofingSystem"
	pathRoofingSchedule  = "lossSettlement.roofingSystem.paymentSchedule"
	pathRoofingMetalRule = "lossSettlement.roofingSystem.metalComponentRule"
	pathPersonalProperty = "lossSettlement.personalProperty"
	pathDedAllPerils     = "deductibles.allPerils"
	pathDedWindHail      = "deductibles.windHail"
	pathDedWindHailPct   = "deductibles.windHailPercent"
)

func coveragePath(code, field string) string {
	return "coverages." + code + "." + field
}

// Resolve folds the claim's scalars, its base policy forms and its
// endorsements into an EffectivePolicy. It has no side effects and never
// fails: records that cannot be decoded or carry no usable data simply
// contribute nothing. Identical inputs produce identical output, including
// the JSON encoding.
//
// Base forms are folded first-writer-wins in creation order. Endorsements are
// folded in ascending precedence_priority order, most recently created first
// within a priority, and each write replaces what came before, so the
// endorsement folded last wins a contested field.
func Resolve(claim *domain.Claim, forms []domain.PolicyFormRecord, endorsements []domain.EndorsementRecord) *domain.EffectivePolicy {
	r := &resolver{ep: &domain.EffectivePolicy{
		ClaimID:             claim.ID,
		BaseForms:           []string{},
		Coverages:           map[string]domain.CoverageRule{},
		Exclusions:          []string{},
		Conditions:          []string{},
		Definitions:         []domain.Definition{},
		AppliedEndorsements: []domain.AppliedEndorsement{},
		SourceMap:           map[string][]uuid.UUID{},
	}}

	r.seed(claim)
	for _, f := range SortForms(forms) {
		r.foldForm(f)
	}
	for _, e := range SortEndorsements(endorsements) {
		r.foldEndorsement(e)
	}
	return r.ep
}

// SortForms returns a copy of forms ordered by creation time, then id.
func SortForms(forms []domain.PolicyFormRecord) []domain.PolicyFormRecord {
	out := make([]domain.PolicyFormRecord, len(forms))
	copy(out, forms)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out
}

// SortEndorsements returns a copy of endorsements in fold order: ascending
// precedence_priority, then most recently created first, then document id and
// form code ascending.
func SortEndorsements(endorsements []domain.EndorsementRecord) []domain.EndorsementRecord {
	out := make([]domain.EndorsementRecord, len(endorsements))
	copy(out, endorsements)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.PrecedencePriority != b.PrecedencePriority {
			return a.PrecedencePriority < b.PrecedencePriority
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		if a.DocumentID != b.DocumentID {
			return a.DocumentID.String() < b.DocumentID.String()
		}
		return a.FormCode < b.FormCode
	})
	return out
}

type resolver struct {
	ep *domain.EffectivePolicy
}

// set makes id the sole contributor of path.
func (r *resolver) set(path string, id uuid.UUID) {
	if id == uuid.Nil {
		return
	}
	r.ep.SourceMap[path] = []uuid.UUID{id}
}

// add appends id to the contributors of path, once.
func (r *resolver) add(path string, id uuid.UUID) {
	if id == uuid.Nil {
		return
	}
	for _, existing := range r.ep.SourceMap[path] {
		if existing == id {
			return
		}
	}
	r.ep.SourceMap[path] = append(r.ep.SourceMap[path], id)
}

func (r *resolver) seed(c *domain.Claim) {
	src := c.SourceDocumentID
	if c.PropertyState != "" {
		r.ep.Jurisdiction = c.PropertyState
		r.set(pathJurisdiction, src)
	}
	if c.PolicyNumber != "" {
		r.ep.PolicyNumber = c.PolicyNumber
		r.set(pathPolicyNumber, src)
	}

	limits := []struct {
		code  string
		limit *float64
	}{
		{"A", c.CoverageA},
		{"B", c.CoverageB},
		{"C", c.CoverageC},
		{"D", c.CoverageD},
	}
	for _, l := range limits {
		if l.limit == nil {
			continue
		}
		r.ep.Coverages[l.code] = domain.CoverageRule{Code: l.code, Limit: copyFloat(l.limit)}
		r.set(coveragePath(l.code, "limit"), src)
	}

	if c.DeductibleAllPerils != nil {
		r.ep.Deductibles.AllPerils = copyFloat(c.DeductibleAllPerils)
		r.set(pathDedAllPerils, src)
	}
	if c.DeductibleWindHail != nil {
		r.ep.Deductibles.WindHail = copyFloat(c.DeductibleWindHail)
		r.set(pathDedWindHail, src)
	}
	if c.WindHailPercent != nil {
		r.ep.Deductibles.WindHailPercent = copyFloat(c.WindHailPercent)
		r.set(pathDedWindHailPct, src)
	}
}

func (r *resolver) foldForm(rec domain.PolicyFormRecord) {
	var form domain.PolicyFormExtraction
	if err := json.Unmarshal(rec.Extraction, &form); err != nil {
		return
	}
	src := rec.DocumentID
	code := firstNonEmpty(form.FormCode, domain.DisplayFormCode(rec.FormCode))

	if code != "" && !containsFold(r.ep.BaseForms, code) {
		r.ep.BaseForms = append(r.ep.BaseForms, code)
		r.add(pathBaseForms, src)
	}
	if r.ep.Jurisdiction == "" && form.Jurisdiction != "" {
		r.ep.Jurisdiction = form.Jurisdiction
		r.set(pathJurisdiction, src)
	}

	p := form.Provisions
	if p == nil {
		return
	}

	for _, cp := range p.Coverages {
		key := CoverageCode(firstNonEmpty(cp.Code, cp.Name))
		if key == "" {
			continue
		}
		rule := r.coverage(key)
		if rule.Name == "" && cp.Name != "" {
			rule.Name = cp.Name
			r.set(coveragePath(key, "name"), src)
		}
		if rule.Description == "" && cp.Description != "" {
			rule.Description = cp.Description
		}
		if rule.SettlementBasis == "" && cp.LossSettlement != "" {
			rule.SettlementBasis = NormalizeBasis(cp.LossSettlement)
			r.set(coveragePath(key, "settlementBasis"), src)
		}
		r.ep.Coverages[key] = rule
	}

	if ls := p.LossSettlement; ls != nil {
		ld := r.ep.LossSettlement
		if dwelling := firstNonEmpty(ls.Dwelling, ls.OtherStructures); ld.DwellingAndStructures == nil && dwelling != "" {
			r.ep.LossSettlement.DwellingAndStructures = &domain.SettlementRule{
				Basis: NormalizeBasis(dwelling), Description: dwelling, SourceFormCode: code,
			}
			r.set(pathDwelling, src)
		}
		if ld.RoofingSystem == nil && ls.RoofingSystem != "" {
			r.ep.LossSettlement.RoofingSystem = &domain.RoofingSettlement{
				Basis: NormalizeBasis(ls.RoofingSystem), Description: ls.RoofingSystem, SourceFormCode: code,
			}
			r.set(pathRoofing, src)
		}
		if ld.PersonalProperty == nil && ls.PersonalProperty != "" {
			r.ep.LossSettlement.PersonalProperty = &domain.SettlementRule{
				Basis: NormalizeBasis(ls.PersonalProperty), Description: ls.PersonalProperty, SourceFormCode: code,
			}
			r.set(pathPersonalProperty, src)
		}
	}

	for _, e := range p.Exclusions {
		if appendUnique(&r.ep.Exclusions, e) {
			r.add(pathExclusions, src)
		}
	}
	for _, c := range p.Conditions {
		if appendUnique(&r.ep.Conditions, c) {
			r.add(pathConditions, src)
		}
	}
	for _, d := range p.Definitions {
		if definitionIndex(r.ep.Definitions, d.Term) < 0 {
			r.ep.Definitions = append(r.ep.Definitions, d)
			r.add(pathDefinitions, src)
		}
	}
}

func (r *resolver) foldEndorsement(rec domain.EndorsementRecord) {
	var e domain.EndorsementExtraction
	if err := json.Unmarshal(rec.Extraction, &e); err != nil {
		return
	}
	src := rec.DocumentID
	code := firstNonEmpty(e.FormCode, domain.DisplayFormCode(rec.FormCode))

	r.ep.AppliedEndorsements = append(r.ep.AppliedEndorsements, domain.AppliedEndorsement{
		DocumentID:         rec.DocumentID,
		FormCode:           code,
		Title:              e.Title,
		EndorsementType:    rec.EndorsementType,
		PrecedencePriority: rec.PrecedencePriority,
	})

	if m := e.Modifications; m != nil {
		if m.LossSettlement != nil {
			for _, rule := range m.LossSettlement.Replaced {
				r.replaceSettlement(rule, code, src)
			}
		}
		if m.Exclusions != nil {
			r.applyListChanges(&r.ep.Exclusions, m.Exclusions, pathExclusions, src)
		}
		if m.Conditions != nil {
			r.applyListChanges(&r.ep.Conditions, m.Conditions, pathConditions, src)
		}
		if m.Definitions != nil {
			r.applyDefinitionChanges(m.Definitions, src)
		}
		for _, cm := range m.Coverages {
			key := CoverageCode(cm.Coverage)
			if key == "" {
				continue
			}
			rule := r.coverage(key)
			rule.ModifiedBy = code
			r.set(coveragePath(key, "modifiedBy"), src)
			if cm.SettlementBasis != "" {
				rule.SettlementBasis = NormalizeBasis(cm.SettlementBasis)
				r.set(coveragePath(key, "settlementBasis"), src)
			}
			if cm.Description != "" {
				rule.Description = cm.Description
			}
			r.ep.Coverages[key] = rule
		}
	}

	for _, s := range e.Schedules {
		if len(s.Entries) == 0 || !mentionsRoof(s.Section+" "+s.Name) {
			continue
		}
		roof := r.roofing(code)
		roof.PaymentSchedule = append([]domain.ScheduleEntry(nil), s.Entries...)
		roof.Basis = domain.SettlementBasisScheduled
		roof.SourceFormCode = code
		r.add(pathRoofing, src)
		r.set(pathRoofingSchedule, src)
	}
}

func (r *resolver) replaceSettlement(rule domain.LossSettlementRule, code string, src uuid.UUID) {
	section := strings.ToLower(rule.Section)
	switch {
	case mentionsRoof(section):
		r.ep.LossSettlement.RoofingSystem = &domain.RoofingSettlement{
			Basis:              NormalizeBasis(rule.Basis),
			Description:        rule.Description,
			MetalComponentRule: rule.MetalComponentRule,
			SourceFormCode:     code,
		}
		r.set(pathRoofing, src)
		delete(r.ep.SourceMap, pathRoofingSchedule)
		if rule.MetalComponentRule != "" {
			r.set(pathRoofingMetalRule, src)
		} else {
			delete(r.ep.SourceMap, pathRoofingMetalRule)
		}
		return
	case containsAnyOf(section, "personal property", "contents", "coverage c"):
		r.ep.LossSettlement.PersonalProperty = &domain.SettlementRule{
			Basis: NormalizeBasis(rule.Basis), Description: rule.Description, SourceFormCode: code,
		}
		r.set(pathPersonalProperty, src)
	case containsAnyOf(section, "dwelling", "structure", "coverage a", "coverage b"):
		r.ep.LossSettlement.DwellingAndStructures = &domain.SettlementRule{
			Basis: NormalizeBasis(rule.Basis), Description: rule.Description, SourceFormCode: code,
		}
		r.set(pathDwelling, src)
	}

	if rule.MetalComponentRule != "" {
		roof := r.roofing(code)
		roof.MetalComponentRule = rule.MetalComponentRule
		r.set(pathRoofingMetalRule, src)
	}
}

// roofing returns the roofing settlement, creating an empty one when the
// base forms did not define it.
func (r *resolver) roofing(code string) *domain.RoofingSettlement {
	if r.ep.LossSettlement.RoofingSystem == nil {
		r.ep.LossSettlement.RoofingSystem = &domain.RoofingSettlement{SourceFormCode: code}
	}
	return r.ep.LossSettlement.RoofingSystem
}

func (r *resolver) coverage(key string) domain.CoverageRule {
	rule, ok := r.ep.Coverages[key]
	if !ok {
		rule = domain.CoverageRule{Code: key}
	}
	return rule
}

func (r *resolver) applyListChanges(list *[]string, changes *domain.ListChanges, path string, src uuid.UUID) {
	for _, a := range changes.Added {
		if appendUnique(list, a) {
			r.add(path, src)
		}
	}
	for _, d := range changes.Deleted {
		if removeFold(list, d) {
			r.add(path, src)
		}
	}
}

func (r *resolver) applyDefinitionChanges(changes *domain.DefinitionChanges, src uuid.UUID) {
	defs := &r.ep.Definitions
	upsert := func(d domain.Definition) {
		if d.Term == "" {
			return
		}
		if i := definitionIndex(*defs, d.Term); i >= 0 {
			(*defs)[i] = d
		} else {
			*defs = append(*defs, d)
		}
		r.add(pathDefinitions, src)
	}
	for _, d := range changes.Added {
		upsert(d)
	}
	for _, d := range changes.Replaced {
		upsert(d)
	}
	for _, term := range changes.Deleted {
		if i := definitionIndex(*defs, term); i >= 0 {
			*defs = append((*defs)[:i:i], (*defs)[i+1:]...)
			r.add(pathDefinitions, src)
		}
	}
}
