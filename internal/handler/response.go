package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"claimdesk/internal/domain"
	"claimdesk/internal/middleware"
)

// APIResponse is the standard envelope for all API responses.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    *PagMeta    `json:"meta,omitempty"`
}

// APIError holds error details in the response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// PagMeta holds pagination metadata.
type PagMeta struct {
	Total  int `json:"total"`
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// RespondOK sends a 200 success response.
func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// RespondAccepted sends a 202 success response.
func RespondAccepted(c *gin.Context, data interface{}) {
	c.JSON(http.StatusAccepted, APIResponse{Success: true, Data: data})
}

// RespondPaginated sends a 200 success response with pagination metadata.
func RespondPaginated(c *gin.Context, data interface{}, meta PagMeta) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data, Meta: &meta})
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: msg},
	})
}

// MapDomainError translates domain errors to HTTP status codes and error codes.
func MapDomainError(err error) (status int, code, msg string) {
	var validationErr *domain.ValidationError
	switch {
	case errors.Is(err, domain.ErrDocumentNotFound):
		return http.StatusNotFound, "DOCUMENT_NOT_FOUND", "document not found"
	case errors.Is(err, domain.ErrClaimNotFound):
		return http.StatusNotFound, "CLAIM_NOT_FOUND", "claim not found"
	case errors.Is(err, domain.ErrExtractionNotFound):
		return http.StatusNotFound, "EXTRACTION_NOT_FOUND", "canonical extraction not found"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND", "resource not found"
	case errors.Is(err, domain.ErrDocumentAlreadyQueued):
		return http.StatusConflict, "DOCUMENT_ALREADY_QUEUED", "document is already queued or being processed"
	case errors.Is(err, domain.ErrQueueStopped):
		return http.StatusServiceUnavailable, "QUEUE_STOPPED", "processing queue is shutting down"
	case errors.Is(err, domain.ErrMissingOrganization):
		return http.StatusBadRequest, "MISSING_ORGANIZATION", "X-Organization-ID header is required"
	case errors.Is(err, domain.ErrUnsupportedMimeType):
		return http.StatusBadRequest, "UNSUPPORTED_MIME_TYPE", "unsupported document mime type"
	case errors.As(err, &validationErr):
		return http.StatusUnprocessableEntity, "VALIDATION_FAILED", validationErr.Error()
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred"
	}
}

// HandleError maps a domain error and sends the appropriate error response.
func HandleError(c *gin.Context, err error) {
	status, code, msg := MapDomainError(err)
	if status >= 500 {
		requestID, _ := c.Get("request_id")
		zap.S().Errorf("[%s] internal error: %v", requestID, err)
	}
	RespondError(c, status, code, msg)
}

// extractOrganization returns the organization scope and the UUID path
// parameter. Returns false if either is missing (error response already written).
func extractOrganization(c *gin.Context, param string) (orgID, id uuid.UUID, ok bool) {
	orgID, err := middleware.GetOrganizationID(c)
	if err != nil {
		HandleError(c, err)
		return uuid.Nil, uuid.Nil, false
	}
	id, err = uuid.Parse(c.Param(param))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid "+param)
		return uuid.Nil, uuid.Nil, false
	}
	return orgID, id, true
}

func parsePagination(c *gin.Context) (offset, limit int) {
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return offset, limit
}
