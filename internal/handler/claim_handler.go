package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"claimdesk/internal/csvexport"
	"claimdesk/internal/service"
	"claimdesk/internal/xlsxexport"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	csvContentType  = "text/csv; charset=utf-8"
)

// ClaimHandler serves the effective policy of a claim.
type ClaimHandler struct {
	policyService service.PolicyService
	now           func() time.Time
}

// NewClaimHandler creates a new ClaimHandler.
func NewClaimHandler(policyService service.PolicyService) *ClaimHandler {
	return &ClaimHandler{policyService: policyService, now: time.Now}
}

// EffectivePolicy handles GET /api/v1/claims/:id/effective-policy
// @Summary Get a claim's effective policy
// @Description Resolve the base policy form and endorsements linked to the claim into one effective policy. Computed on every request.
// @Tags claims
// @Produce json
// @Param X-Organization-ID header string true "Organization ID (UUID)"
// @Param id path string true "Claim ID (UUID)"
// @Success 200 {object} Response{data=domain.EffectivePolicy} "Effective policy"
// @Failure 400 {object} ErrorResponseBody "Invalid ID or missing organization"
// @Failure 404 {object} ErrorResponseBody "Claim not found"
// @Router /claims/{id}/effective-policy [get]
func (h *ClaimHandler) EffectivePolicy(c *gin.Context) {
	orgID, claimID, ok := extractOrganization(c, "id")
	if !ok {
		return
	}

	_, ep, err := h.policyService.EffectivePolicy(c.Request.Context(), orgID, claimID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, ep)
}

// ExportEffectivePolicy handles GET /api/v1/claims/:id/effective-policy/export
// @Summary Export a claim's effective policy
// @Description Download the effective policy and its source map as an XLSX audit workbook, or as flat CSV rows
// @Tags claims
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Produce text/csv
// @Param X-Organization-ID header string true "Organization ID (UUID)"
// @Param id path string true "Claim ID (UUID)"
// @Param format query string false "xlsx (default) or csv"
// @Success 200 {file} file "XLSX workbook or CSV file"
// @Failure 400 {object} ErrorResponseBody "Invalid ID or missing organization"
// @Failure 404 {object} ErrorResponseBody "Claim not found"
// @Router /claims/{id}/effective-policy/export [get]
func (h *ClaimHandler) ExportEffectivePolicy(c *gin.Context) {
	orgID, claimID, ok := extractOrganization(c, "id")
	if !ok {
		return
	}

	switch c.DefaultQuery("format", "xlsx") {
	case "xlsx":
	case "csv":
		h.exportCSV(c, orgID, claimID)
		return
	default:
		RespondError(c, http.StatusBadRequest, "INVALID_FORMAT", "format must be xlsx or csv")
		return
	}

	var buf bytes.Buffer
	claim, err := h.policyService.Export(c.Request.Context(), orgID, claimID, &buf)
	if err != nil {
		HandleError(c, err)
		return
	}

	filename := xlsxexport.BuildFilename(claim.ClaimNumber, h.now())
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (h *ClaimHandler) exportCSV(c *gin.Context, orgID, claimID uuid.UUID) {
	claim, ep, err := h.policyService.EffectivePolicy(c.Request.Context(), orgID, claimID)
	if err != nil {
		HandleError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := csvexport.Write(&buf, claim, ep); err != nil {
		HandleError(c, err)
		return
	}

	filename := csvexport.BuildFilename(claim.ClaimNumber, h.now())
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, csvContentType, buf.Bytes())
}
