package router_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"claimdesk/internal/config"
	"claimdesk/internal/domain"
	"claimdesk/internal/handler"
	"claimdesk/internal/router"
	"claimdesk/mocks"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setup(docSvc *mocks.MockDocumentService, policySvc *mocks.MockPolicyService) *gin.Engine {
	return router.Setup(
		&config.ServerConfig{AllowedOrigins: []string{"http://localhost:3000"}},
		handler.NewDocumentHandler(docSvc),
		handler.NewClaimHandler(policySvc),
		handler.NewHealthHandler(nil, nil),
	)
}

func TestRouter_Liveness(t *testing.T) {
	r := setup(new(mocks.MockDocumentService), new(mocks.MockPolicyService))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", http.NoBody))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRouter_RequiresOrganization(t *testing.T) {
	r := setup(new(mocks.MockDocumentService), new(mocks.MockPolicyService))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/documents/"+uuid.NewString(), http.NoBody))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "MISSING_ORGANIZATION")
}

func TestRouter_ProcessDocument(t *testing.T) {
	docSvc := new(mocks.MockDocumentService)
	r := setup(docSvc, new(mocks.MockPolicyService))

	orgID := uuid.New()
	docID := uuid.New()
	docSvc.On("Process", mock.Anything, orgID, docID).Return(&domain.Document{ID: docID, OrganizationID: orgID}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents/"+docID.String()+"/process", http.NoBody)
	req.Header.Set("X-Organization-ID", orgID.String())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusAccepted, w.Code)
	docSvc.AssertExpectations(t)
}

func TestRouter_Metrics(t *testing.T) {
	r := setup(new(mocks.MockDocumentService), new(mocks.MockPolicyService))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "claimdesk_queue_depth")
}
