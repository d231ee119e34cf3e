package domain

import "strings"

// TitleKeyPrefix marks a stored form key derived from an endorsement title
// because no form code was printed.
const TitleKeyPrefix = "TITLE:"

// FormKey is the key canonical rows are grouped, stored and superseded under:
// the form code uppercased with whitespace collapsed, or the normalized title
// behind TitleKeyPrefix when the code is blank. Empty when both are blank.
func FormKey(formCode, title string) string {
	if k := normalizeFormText(formCode); k != "" {
		return k
	}
	if k := normalizeFormText(title); k != "" {
		return TitleKeyPrefix + k
	}
	return ""
}

// DisplayFormCode returns a stored key as a printable form code. Title-derived
// keys have no code to show.
func DisplayFormCode(key string) string {
	if strings.HasPrefix(key, TitleKeyPrefix) {
		return ""
	}
	return key
}

func normalizeFormText(s string) string {
	return strings.ToUpper(strings.Join(strings.Fields(s), " "))
}

// FNOLExtraction is the canonical first-notice-of-loss record. Every field is
// optional; absent values stay absent.
type FNOLExtraction struct {
	ClaimNumber  string           `json:"claim_number,omitempty"`
	DateOfLoss   string           `json:"date_of_loss,omitempty"`
	Peril        *FNOLPeril       `json:"peril,omitempty"`
	Insured      *FNOLInsured     `json:"insured,omitempty"`
	Property     *FNOLProperty    `json:"property,omitempty"`
	Policy       *FNOLPolicy      `json:"policy,omitempty"`
	Coverages    *FNOLCoverages   `json:"coverages,omitempty"`
	Deductibles  *FNOLDeductibles `json:"deductibles,omitempty"`
	Endorsements []string         `json:"endorsements,omitempty"`
	Reporting    *FNOLReporting   `json:"reporting,omitempty"`
}

type FNOLPeril struct {
	Cause       string `json:"cause,omitempty"`
	Description string `json:"description,omitempty"`
}

type FNOLInsured struct {
	Name           string `json:"name,omitempty"`
	SecondaryName  string `json:"secondary_name,omitempty"`
	Phone          string `json:"phone,omitempty"`
	Email          string `json:"email,omitempty"`
	MailingAddress string `json:"mailing_address,omitempty"`
}

type FNOLProperty struct {
	Address      string `json:"address,omitempty"`
	Street       string `json:"street,omitempty"`
	City         string `json:"city,omitempty"`
	State        string `json:"state,omitempty"`
	Zip          string `json:"zip,omitempty"`
	YearBuilt    string `json:"year_built,omitempty"`
	Stories      string `json:"stories,omitempty"`
	RoofMaterial string `json:"roof_material,omitempty"`
	RoofType     string `json:"roof_type,omitempty"`
	RoofAge      string `json:"roof_age,omitempty"`
}

type FNOLPolicy struct {
	PolicyNumber   string `json:"policy_number,omitempty"`
	Carrier        string `json:"carrier,omitempty"`
	EffectiveDate  string `json:"effective_date,omitempty"`
	ExpirationDate string `json:"expiration_date,omitempty"`
	FormCode       string `json:"form_code,omitempty"`
}

// FNOLCoverages holds coverage limits as written on the report.
type FNOLCoverages struct {
	CoverageA string `json:"coverage_a,omitempty"`
	CoverageB string `json:"coverage_b,omitempty"`
	CoverageC string `json:"coverage_c,omitempty"`
	CoverageD string `json:"coverage_d,omitempty"`
}

type FNOLDeductibles struct {
	AllPerils string `json:"all_perils,omitempty"`
	WindHail  string `json:"wind_hail,omitempty"`
}

type FNOLReporting struct {
	ReportedBy   string `json:"reported_by,omitempty"`
	ReportedDate string `json:"reported_date,omitempty"`
	ReportMethod string `json:"report_method,omitempty"`
	AdjusterName string `json:"adjuster_name,omitempty"`
}

// PolicyFormExtraction is the canonical base policy form. RawText carries the
// verbatim page text so nothing is lost to summarization.
type PolicyFormExtraction struct {
	FormCode     string            `json:"form_code,omitempty"`
	FormName     string            `json:"form_name,omitempty"`
	EditionDate  string            `json:"edition_date,omitempty"`
	Jurisdiction string            `json:"jurisdiction,omitempty"`
	Provisions   *PolicyProvisions `json:"provisions,omitempty"`
	RawText      string            `json:"raw_text,omitempty"`
}

type PolicyProvisions struct {
	Definitions    []Definition            `json:"definitions,omitempty"`
	Coverages      []CoverageProvision     `json:"coverages,omitempty"`
	NamedPerils    []string                `json:"named_perils,omitempty"`
	Exclusions     []string                `json:"exclusions,omitempty"`
	Conditions     []string                `json:"conditions,omitempty"`
	LossSettlement *LossSettlementDefaults `json:"loss_settlement,omitempty"`
}

type Definition struct {
	Term    string `json:"term,omitempty"`
	Meaning string `json:"meaning,omitempty"`
}

type CoverageProvision struct {
	Code           string `json:"code,omitempty"`
	Name           string `json:"name,omitempty"`
	Description    string `json:"description,omitempty"`
	LossSettlement string `json:"loss_settlement,omitempty"`
}

type LossSettlementDefaults struct {
	Dwelling         string `json:"dwelling,omitempty"`
	OtherStructures  string `json:"other_structures,omitempty"`
	RoofingSystem    string `json:"roofing_system,omitempty"`
	PersonalProperty string `json:"personal_property,omitempty"`
}

// EndorsementExtraction is a delta-only endorsement record.
type EndorsementExtraction struct {
	FormCode           string                    `json:"form_code,omitempty"`
	Title              string                    `json:"title,omitempty"`
	EditionDate        string                    `json:"edition_date,omitempty"`
	Jurisdiction       string                    `json:"jurisdiction,omitempty"`
	AppliesToForms     []string                  `json:"applies_to_forms,omitempty"`
	AppliesToCoverages []string                  `json:"applies_to_coverages,omitempty"`
	EndorsementType    EndorsementType           `json:"endorsement_type"`
	PrecedencePriority int                       `json:"precedence_priority"`
	Modifications      *EndorsementModifications `json:"modifications,omitempty"`
	Schedules          []Schedule                `json:"schedules,omitempty"`
	RawText            string                    `json:"raw_text,omitempty"`
}

type EndorsementModifications struct {
	Definitions    *DefinitionChanges     `json:"definitions,omitempty"`
	Exclusions     *ListChanges           `json:"exclusions,omitempty"`
	Conditions     *ListChanges           `json:"conditions,omitempty"`
	LossSettlement *LossSettlementChanges `json:"loss_settlement,omitempty"`
	Coverages      []CoverageModification `json:"coverages,omitempty"`
}

type DefinitionChanges struct {
	Added    []Definition `json:"added,omitempty"`
	Deleted  []string     `json:"deleted,omitempty"`
	Replaced []Definition `json:"replaced,omitempty"`
}

type ListChanges struct {
	Added   []string `json:"added,omitempty"`
	Deleted []string `json:"deleted,omitempty"`
}

type LossSettlementChanges struct {
	Replaced []LossSettlementRule `json:"replaced,omitempty"`
}

type LossSettlementRule struct {
	Section            string `json:"section,omitempty"`
	Basis              string `json:"basis,omitempty"`
	Description        string `json:"description,omitempty"`
	MetalComponentRule string `json:"metal_component_rule,omitempty"`
}

type CoverageModification struct {
	Coverage        string `json:"coverage,omitempty"`
	Description     string `json:"description,omitempty"`
	SettlementBasis string `json:"settlement_basis,omitempty"`
}

// Schedule is a payment table such as an age-based roof surface schedule.
type Schedule struct {
	Name    string          `json:"name,omitempty"`
	Section string          `json:"section,omitempty"`
	Entries []ScheduleEntry `json:"entries,omitempty"`
}

type ScheduleEntry struct {
	AgeRange       string   `json:"age_range,omitempty"`
	MinAgeYears    *float64 `json:"min_age_years,omitempty"`
	MaxAgeYears    *float64 `json:"max_age_years,omitempty"`
	RoofMaterial   string   `json:"roof_material,omitempty"`
	PaymentPercent *float64 `json:"payment_percent,omitempty"`
}

// EndorsementPacket is the canonical payload of an endorsement document. A
// single packet may contain several endorsements, one per form code.
type EndorsementPacket struct {
	Endorsements []EndorsementExtraction `json:"endorsements"`
}
