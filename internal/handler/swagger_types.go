package handler

import "github.com/google/uuid"

// Swagger type definitions for API documentation.
// These types are used by swag to generate OpenAPI documentation.

// Response wraps a successful response.
type Response struct {
	Success bool        `json:"success" example:"true"`
	Data    interface{} `json:"data,omitempty"`
	Meta    *PagMeta    `json:"meta,omitempty"`
}

// ErrorResponseBody wraps an error response.
type ErrorResponseBody struct {
	Success bool      `json:"success" example:"false"`
	Error   *APIError `json:"error"`
}

// ProcessAcceptedResponse is returned when a document is queued.
type ProcessAcceptedResponse struct {
	DocumentID uuid.UUID `json:"document_id" example:"8f14e45f-ceea-467a-9575-5a1c8e2e2a3b"`
	Status     string    `json:"status" example:"queued"`
}
