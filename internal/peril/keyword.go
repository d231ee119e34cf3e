// Package peril provides the default keyword-based peril classifier.
package peril

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"claimdesk/internal/domain"
	"claimdesk/internal/port"
)

type rule struct {
	peril    string
	keywords []string
}

// Rules are listed in tie-break order.
var rules = []rule{
	{domain.PerilWindHail, []string{"hail", "wind", "tornado", "hurricane", "windstorm", "storm"}},
	{domain.PerilWater, []string{"water", "leak", "pipe burst", "burst pipe", "flood", "plumbing", "overflow", "sewer", "backup"}},
	{domain.PerilFire, []string{"fire", "smoke", "burn", "flame"}},
	{domain.PerilLightning, []string{"lightning", "power surge"}},
	{domain.PerilTheft, []string{"theft", "stolen", "burglary", "break-in", "robbery"}},
	{domain.PerilVandalism, []string{"vandal", "malicious", "graffiti"}},
	{domain.PerilFallingObject, []string{"falling object", "tree fell", "fallen tree", "tree limb", "tree on", "debris"}},
	{domain.PerilFreeze, []string{"freeze", "frozen", "ice dam"}},
	{domain.PerilCollapse, []string{"collapse", "sinkhole"}},
}

const (
	causeWeight       = 2
	descriptionWeight = 1
)

// KeywordClassifier scores loss text against fixed keyword lists. Matches in
// the cause of loss count double those in the description.
type KeywordClassifier struct{}

// NewKeywordClassifier returns the default classifier.
func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{}
}

var _ port.PerilClassifier = (*KeywordClassifier)(nil)

// Classify implements port.PerilClassifier.
func (c *KeywordClassifier) Classify(_ context.Context, input port.PerilInput) (*port.PerilClassification, error) {
	cause := strings.ToLower(input.Cause)
	desc := strings.ToLower(input.Description)

	type scored struct {
		peril string
		score int
		order int
		cause bool
	}
	var hits []scored
	for i, r := range rules {
		s := scored{peril: r.peril, order: i}
		for _, k := range r.keywords {
			if strings.Contains(cause, k) {
				s.score += causeWeight
				s.cause = true
			}
			if strings.Contains(desc, k) {
				s.score += descriptionWeight
			}
		}
		if s.score > 0 {
			hits = append(hits, s)
		}
	}

	if len(hits) == 0 {
		return &port.PerilClassification{
			PrimaryPeril: domain.PerilOther,
			Confidence:   0,
			Reasoning:    "no peril keywords matched",
		}, nil
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].score != hits[j].score {
			return hits[i].score > hits[j].score
		}
		return hits[i].order < hits[j].order
	})

	out := &port.PerilClassification{PrimaryPeril: hits[0].peril}
	for _, h := range hits[1:] {
		out.SecondaryPerils = append(out.SecondaryPerils, h.peril)
	}
	switch {
	case hits[0].cause && len(hits) == 1:
		out.Confidence = 0.9
	case hits[0].cause:
		out.Confidence = 0.75
	default:
		out.Confidence = 0.5
	}
	out.Reasoning = fmt.Sprintf("keyword score %d for %s", hits[0].score, hits[0].peril)
	return out, nil
}
