package service_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"claimdesk/internal/domain"
	"claimdesk/internal/service"
	"claimdesk/mocks"
)

func TestPolicyService_EffectivePolicy(t *testing.T) {
	claimRepo := new(mocks.MockClaimRepo)
	canonicalRepo := new(mocks.MockCanonicalRepo)
	svc := service.NewPolicyService(claimRepo, canonicalRepo)

	orgID := uuid.New()
	coverageC := 187900.0
	claim := &domain.Claim{ID: uuid.New(), OrganizationID: orgID, ClaimNumber: "2025-000001",
		PropertyState: "TX", CoverageC: &coverageC, SourceDocumentID: uuid.New()}

	formDoc := uuid.New()
	form, _ := json.Marshal(domain.PolicyFormExtraction{FormCode: "HO 00 03"})
	endorsement, _ := json.Marshal(domain.EndorsementExtraction{
		FormCode: "TDP 004", EndorsementType: domain.EndorsementTypeLossSettlement, PrecedencePriority: 5,
	})

	claimRepo.On("GetByID", mock.Anything, orgID, claim.ID).Return(claim, nil)
	canonicalRepo.On("ListCanonicalPolicyForms", mock.Anything, claim.ID).Return([]domain.PolicyFormRecord{
		{ID: uuid.New(), DocumentID: formDoc, FormCode: "HO 00 03", Extraction: form, CreatedAt: time.Now()},
	}, nil)
	canonicalRepo.On("ListCanonicalEndorsements", mock.Anything, claim.ID).Return([]domain.EndorsementRecord{
		{ID: uuid.New(), DocumentID: uuid.New(), FormCode: "TDP 004", PrecedencePriority: 5,
			EndorsementType: domain.EndorsementTypeLossSettlement, Extraction: endorsement, CreatedAt: time.Now()},
	}, nil)

	got, ep, err := svc.EffectivePolicy(context.Background(), orgID, claim.ID)
	require.NoError(t, err)

	assert.Equal(t, claim, got)
	assert.Equal(t, claim.ID, ep.ClaimID)
	assert.Equal(t, "TX", ep.Jurisdiction)
	assert.Equal(t, []string{"HO 00 03"}, ep.BaseForms)
	assert.Equal(t, 187900.0, *ep.Coverages["C"].Limit)
	require.Len(t, ep.AppliedEndorsements, 1)
	assert.Equal(t, "TDP 004", ep.AppliedEndorsements[0].FormCode)
}

func TestPolicyService_ClaimNotFound(t *testing.T) {
	claimRepo := new(mocks.MockClaimRepo)
	canonicalRepo := new(mocks.MockCanonicalRepo)
	svc := service.NewPolicyService(claimRepo, canonicalRepo)

	claimRepo.On("GetByID", mock.Anything, mock.Anything, mock.Anything).Return(nil, domain.ErrClaimNotFound)

	_, _, err := svc.EffectivePolicy(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrClaimNotFound)
	canonicalRepo.AssertNotCalled(t, "ListCanonicalPolicyForms", mock.Anything, mock.Anything)
}

func TestPolicyService_EmptyClaimStillResolves(t *testing.T) {
	claimRepo := new(mocks.MockClaimRepo)
	canonicalRepo := new(mocks.MockCanonicalRepo)
	svc := service.NewPolicyService(claimRepo, canonicalRepo)

	claim := &domain.Claim{ID: uuid.New()}
	claimRepo.On("GetByID", mock.Anything, mock.Anything, claim.ID).Return(claim, nil)
	canonicalRepo.On("ListCanonicalPolicyForms", mock.Anything, claim.ID).Return([]domain.PolicyFormRecord{}, nil)
	canonicalRepo.On("ListCanonicalEndorsements", mock.Anything, claim.ID).Return([]domain.EndorsementRecord{}, nil)

	_, ep, err := svc.EffectivePolicy(context.Background(), uuid.New(), claim.ID)
	require.NoError(t, err)
	assert.Empty(t, ep.BaseForms)
	assert.Empty(t, ep.AppliedEndorsements)
	assert.Empty(t, ep.Coverages)
}

func TestPolicyService_RepositoryError(t *testing.T) {
	claimRepo := new(mocks.MockClaimRepo)
	canonicalRepo := new(mocks.MockCanonicalRepo)
	svc := service.NewPolicyService(claimRepo, canonicalRepo)

	claim := &domain.Claim{ID: uuid.New()}
	claimRepo.On("GetByID", mock.Anything, mock.Anything, claim.ID).Return(claim, nil)
	canonicalRepo.On("ListCanonicalPolicyForms", mock.Anything, claim.ID).Return(nil, errors.New("db down"))

	_, _, err := svc.EffectivePolicy(context.Background(), uuid.New(), claim.ID)
	assert.ErrorContains(t, err, "db down")
}

func TestPolicyService_Export(t *testing.T) {
	claimRepo := new(mocks.MockClaimRepo)
	canonicalRepo := new(mocks.MockCanonicalRepo)
	svc := service.NewPolicyService(claimRepo, canonicalRepo)

	claim := &domain.Claim{ID: uuid.New(), ClaimNumber: "2025-000009", InsuredName: "DANNY DIKKER"}
	claimRepo.On("GetByID", mock.Anything, mock.Anything, claim.ID).Return(claim, nil)
	canonicalRepo.On("ListCanonicalPolicyForms", mock.Anything, claim.ID).Return([]domain.PolicyFormRecord{}, nil)
	canonicalRepo.On("ListCanonicalEndorsements", mock.Anything, claim.ID).Return([]domain.EndorsementRecord{}, nil)

	var buf bytes.Buffer
	got, err := svc.Export(context.Background(), uuid.New(), claim.ID, &buf)
	require.NoError(t, err)
	assert.Equal(t, claim, got)

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	assert.Contains(t, f.GetSheetList(), "Summary")
}
