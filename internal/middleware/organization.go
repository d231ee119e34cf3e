package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"claimdesk/internal/domain"
)

const (
	HeaderOrganizationID     = "X-Organization-ID"
	ContextKeyOrganizationID = "organization_id"
)

// OrganizationScope returns middleware that reads the organization id from
// the X-Organization-ID header. Authentication happens upstream; this only
// scopes every query to one organization.
func OrganizationScope() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(HeaderOrganizationID)
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   gin.H{"code": "MISSING_ORGANIZATION", "message": "X-Organization-ID header is required"},
			})
			return
		}
		orgID, err := uuid.Parse(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   gin.H{"code": "INVALID_ORGANIZATION", "message": "X-Organization-ID must be a UUID"},
			})
			return
		}
		c.Set(ContextKeyOrganizationID, orgID)
		c.Next()
	}
}

// GetOrganizationID extracts the organization ID from the Gin context.
func GetOrganizationID(c *gin.Context) (uuid.UUID, error) {
	val, exists := c.Get(ContextKeyOrganizationID)
	if !exists {
		return uuid.Nil, domain.ErrMissingOrganization
	}
	return val.(uuid.UUID), nil
}
