package handler

import (
	"github.com/gin-gonic/gin"

	"claimdesk/internal/service"
)

// DocumentHandler handles document pipeline endpoints.
type DocumentHandler struct {
	documentService service.DocumentService
}

// NewDocumentHandler creates a new DocumentHandler.
func NewDocumentHandler(documentService service.DocumentService) *DocumentHandler {
	return &DocumentHandler{documentService: documentService}
}

// GetByID handles GET /api/v1/documents/:id
// @Summary Get document by ID
// @Description Get a document's class, processing status and canonical extraction
// @Tags documents
// @Produce json
// @Param X-Organization-ID header string true "Organization ID (UUID)"
// @Param id path string true "Document ID (UUID)"
// @Success 200 {object} Response{data=domain.Document} "Document details"
// @Failure 400 {object} ErrorResponseBody "Invalid ID or missing organization"
// @Failure 404 {object} ErrorResponseBody "Document not found"
// @Router /documents/{id} [get]
func (h *DocumentHandler) GetByID(c *gin.Context) {
	orgID, docID, ok := extractOrganization(c, "id")
	if !ok {
		return
	}

	doc, err := h.documentService.GetByID(c.Request.Context(), orgID, docID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, doc)
}

// Process handles POST /api/v1/documents/:id/process
// @Summary Queue a document for processing
// @Description Enqueue the document for classification and extraction. Reprocessing a completed document re-extracts it.
// @Tags documents
// @Produce json
// @Param X-Organization-ID header string true "Organization ID (UUID)"
// @Param id path string true "Document ID (UUID)"
// @Success 202 {object} Response{data=ProcessAcceptedResponse} "Document queued"
// @Failure 400 {object} ErrorResponseBody "Invalid ID or missing organization"
// @Failure 404 {object} ErrorResponseBody "Document not found"
// @Failure 409 {object} ErrorResponseBody "Document already queued or in flight"
// @Router /documents/{id}/process [post]
func (h *DocumentHandler) Process(c *gin.Context) {
	orgID, docID, ok := extractOrganization(c, "id")
	if !ok {
		return
	}

	doc, err := h.documentService.Process(c.Request.Context(), orgID, docID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondAccepted(c, ProcessAcceptedResponse{DocumentID: doc.ID, Status: "queued"})
}

// ListAudit handles GET /api/v1/documents/:id/audit
// @Summary List document audit trail
// @Description List pipeline events recorded for a document, newest first
// @Tags documents
// @Produce json
// @Param X-Organization-ID header string true "Organization ID (UUID)"
// @Param id path string true "Document ID (UUID)"
// @Param offset query int false "Offset for pagination" default(0)
// @Param limit query int false "Limit for pagination (max 100)" default(20)
// @Success 200 {object} Response{data=[]domain.DocumentAuditEntry,meta=PagMeta} "Audit entries"
// @Failure 400 {object} ErrorResponseBody "Invalid ID or missing organization"
// @Failure 404 {object} ErrorResponseBody "Document not found"
// @Router /documents/{id}/audit [get]
func (h *DocumentHandler) ListAudit(c *gin.Context) {
	orgID, docID, ok := extractOrganization(c, "id")
	if !ok {
		return
	}

	offset, limit := parsePagination(c)
	entries, total, err := h.documentService.ListAudit(c.Request.Context(), orgID, docID, offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, entries, PagMeta{Total: total, Offset: offset, Limit: limit})
}
