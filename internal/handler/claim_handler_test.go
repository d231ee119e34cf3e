package handler_test

import (
	"io"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"claimdesk/internal/domain"
	"claimdesk/internal/handler"
	"claimdesk/mocks"
)

func TestClaimHandler_EffectivePolicy(t *testing.T) {
	mockSvc := new(mocks.MockPolicyService)
	h := handler.NewClaimHandler(mockSvc)

	orgID := uuid.New()
	claim := &domain.Claim{ID: uuid.New(), OrganizationID: orgID}
	ep := &domain.EffectivePolicy{ClaimID: claim.ID, Jurisdiction: "TX", BaseForms: []string{"HO 00 03"}}
	mockSvc.On("EffectivePolicy", mock.Anything, orgID, claim.ID).Return(claim, ep, nil)

	c, w := newTestContext(http.MethodGet, "/api/v1/claims/"+claim.ID.String()+"/effective-policy", orgID, claim.ID.String())
	h.EffectivePolicy(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"jurisdiction":"TX"`)
	assert.Contains(t, w.Body.String(), `"baseForms":["HO 00 03"]`)
}

func TestClaimHandler_EffectivePolicy_NotFound(t *testing.T) {
	mockSvc := new(mocks.MockPolicyService)
	h := handler.NewClaimHandler(mockSvc)

	orgID := uuid.New()
	claimID := uuid.New()
	mockSvc.On("EffectivePolicy", mock.Anything, orgID, claimID).Return(nil, nil, domain.ErrClaimNotFound)

	c, w := newTestContext(http.MethodGet, "/api/v1/claims/"+claimID.String()+"/effective-policy", orgID, claimID.String())
	h.EffectivePolicy(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "CLAIM_NOT_FOUND", decode(t, w).Error.Code)
}

func TestClaimHandler_ExportEffectivePolicy(t *testing.T) {
	mockSvc := new(mocks.MockPolicyService)
	h := handler.NewClaimHandler(mockSvc)

	orgID := uuid.New()
	claim := &domain.Claim{ID: uuid.New(), ClaimNumber: "2025-000001"}
	mockSvc.On("Export", mock.Anything, orgID, claim.ID, mock.Anything).
		Run(func(args mock.Arguments) {
			_, _ = io.WriteString(args.Get(3).(io.Writer), "PK-workbook")
		}).
		Return(claim, nil)

	c, w := newTestContext(http.MethodGet, "/api/v1/claims/"+claim.ID.String()+"/effective-policy/export", orgID, claim.ID.String())
	h.ExportEffectivePolicy(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), `attachment; filename="effective_policy_2025-000001_`)
	assert.Equal(t, "PK-workbook", w.Body.String())
}

func TestClaimHandler_ExportEffectivePolicy_NotFound(t *testing.T) {
	mockSvc := new(mocks.MockPolicyService)
	h := handler.NewClaimHandler(mockSvc)

	orgID := uuid.New()
	claimID := uuid.New()
	mockSvc.On("Export", mock.Anything, orgID, claimID, mock.Anything).Return(nil, domain.ErrClaimNotFound)

	c, w := newTestContext(http.MethodGet, "/api/v1/claims/"+claimID.String()+"/effective-policy/export", orgID, claimID.String())
	h.ExportEffectivePolicy(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMapDomainError(t *testing.T) {
	tests := []struct {
		err        error
		wantStatus int
		wantCode   string
	}{
		{domain.ErrDocumentNotFound, http.StatusNotFound, "DOCUMENT_NOT_FOUND"},
		{domain.ErrClaimNotFound, http.StatusNotFound, "CLAIM_NOT_FOUND"},
		{domain.ErrDocumentAlreadyQueued, http.StatusConflict, "DOCUMENT_ALREADY_QUEUED"},
		{domain.ErrQueueStopped, http.StatusServiceUnavailable, "QUEUE_STOPPED"},
		{&domain.ValidationError{Field: "loss_context", Reason: "empty"}, http.StatusUnprocessableEntity, "VALIDATION_FAILED"},
		{io.ErrUnexpectedEOF, http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tt := range tests {
		status, code, _ := handler.MapDomainError(tt.err)
		assert.Equal(t, tt.wantStatus, status, tt.err.Error())
		assert.Equal(t, tt.wantCode, code, tt.err.Error())
	}
}

func TestClaimHandler_ExportEffectivePolicy_CSV(t *testing.T) {
	mockSvc := new(mocks.MockPolicyService)
	h := handler.NewClaimHandler(mockSvc)

	orgID := uuid.New()
	claim := &domain.Claim{ID: uuid.New(), ClaimNumber: "2025-000001"}
	ep := &domain.EffectivePolicy{ClaimID: claim.ID, Jurisdiction: "TX"}
	mockSvc.On("EffectivePolicy", mock.Anything, orgID, claim.ID).Return(claim, ep, nil)

	c, w := newTestContext(http.MethodGet, "/api/v1/claims/"+claim.ID.String()+"/effective-policy/export?format=csv", orgID, claim.ID.String())
	h.ExportEffectivePolicy(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), `filename="effective_policy_2025-000001_`)
	assert.Contains(t, w.Body.String(), "summary,Jurisdiction,TX,,")
	mockSvc.AssertNotCalled(t, "Export", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestClaimHandler_ExportEffectivePolicy_InvalidFormat(t *testing.T) {
	h := handler.NewClaimHandler(new(mocks.MockPolicyService))

	claimID := uuid.NewString()
	c, w := newTestContext(http.MethodGet, "/api/v1/claims/"+claimID+"/effective-policy/export?format=pdf", uuid.New(), claimID)
	h.ExportEffectivePolicy(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_FORMAT", decode(t, w).Error.Code)
}
