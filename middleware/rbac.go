package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/grcworks/requirement-gathering-backend/internal/auth"
)

// RBACMiddleware allows the request through only when the principal holds one
// of the allowed roles.
func RBACMiddleware(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.CurrentUser(c)
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
			return
		}

		for _, role := range allowedRoles {
			if user.Role == role {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient role"})
	}
}

// RequireTenantAccess gates tenant-scoped routes carrying a :tenantId path
// parameter. Admins and consultants pass; customers only for their own tenant.
func RequireTenantAccess() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.CurrentUser(c)
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
			return
		}

		tenantID, ok := auth.ParamID(c, "tenantId")
		if !ok {
			c.Abort()
			return
		}

		if !user.CanAccessThread(tenantID) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "no access to this tenant"})
			return
		}

		c.Next()
	}
}
