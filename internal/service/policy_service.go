package service

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"

	"claimdesk/internal/domain"
	"claimdesk/internal/policy"
	"claimdesk/internal/port"
	"claimdesk/internal/xlsxexport"
)

// PolicyService loads a claim's canonical extractions and resolves its
// effective policy. Nothing it computes is stored.
type PolicyService interface {
	EffectivePolicy(ctx context.Context, orgID, claimID uuid.UUID) (*domain.Claim, *domain.EffectivePolicy, error)
	Export(ctx context.Context, orgID, claimID uuid.UUID, w io.Writer) (*domain.Claim, error)
}

type policyService struct {
	claimRepo     port.ClaimRepository
	canonicalRepo port.CanonicalRepository
}

// NewPolicyService creates a new PolicyService.
func NewPolicyService(claimRepo port.ClaimRepository, canonicalRepo port.CanonicalRepository) PolicyService {
	return &policyService{claimRepo: claimRepo, canonicalRepo: canonicalRepo}
}

// EffectivePolicy returns domain.ErrClaimNotFound when the claim does not
// exist in the organization. Missing forms or endorsements are not errors.
func (s *policyService) EffectivePolicy(ctx context.Context, orgID, claimID uuid.UUID) (*domain.Claim, *domain.EffectivePolicy, error) {
	claim, err := s.claimRepo.GetByID(ctx, orgID, claimID)
	if err != nil {
		return nil, nil, err
	}

	forms, err := s.canonicalRepo.ListCanonicalPolicyForms(ctx, claim.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("policyService.EffectivePolicy: %w", err)
	}
	endorsements, err := s.canonicalRepo.ListCanonicalEndorsements(ctx, claim.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("policyService.EffectivePolicy: %w", err)
	}

	return claim, policy.Resolve(claim, forms, endorsements), nil
}

func (s *policyService) Export(ctx context.Context, orgID, claimID uuid.UUID, w io.Writer) (*domain.Claim, error) {
	claim, ep, err := s.EffectivePolicy(ctx, orgID, claimID)
	if err != nil {
		return nil, err
	}
	if err := xlsxexport.Write(w, claim, ep); err != nil {
		return nil, fmt.Errorf("policyService.Export: %w", err)
	}
	return claim, nil
}
