package middleware

import (
	"net/http"
	"strings"

	"collegium_backend/internal/auth"
	"collegium_backend/internal/models"

	"github.com/gin-gonic/gin"
)

const (
	ContextSubjectID   = "subjectID"
	ContextSubjectType = "subjectType"
	ContextRole        = "role"
)

// AuthMiddleware validates the bearer token and stores subject claims in the
// gin context.
func AuthMiddleware(parser *auth.TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header missing or invalid"})
			return
		}

		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
		claims, err := parser.ParseToken(tokenStr)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		c.Set(ContextSubjectID, claims.SubjectID)
		c.Set(ContextSubjectType, claims.SubjectType)
		c.Set(ContextRole, claims.Role)
		c.Next()
	}
}

// RequireSubjectType restricts a route to one subject kind.
func RequireSubjectType(subjectType models.SubjectType) gin.HandlerFunc {
	return func(c *gin.Context) {
		val, exists := c.Get(ContextSubjectType)
		if !exists || val.(models.SubjectType) != subjectType {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access denied: wrong account type"})
			return
		}
		c.Next()
	}
}

// RequireAdmin restricts a route to admin tokens.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		roleVal, exists := c.Get(ContextRole)
		if !exists {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access denied: no role"})
			return
		}
		if role, ok := roleVal.(string); !ok || role != "admin" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access denied: insufficient permissions"})
			return
		}
		c.Next()
	}
}

// SubjectFromContext returns the authenticated subject of the request.
func SubjectFromContext(c *gin.Context) (string, models.SubjectType) {
	id, _ := c.Get(ContextSubjectID)
	st, _ := c.Get(ContextSubjectType)
	subjectID, _ := id.(string)
	subjectType, _ := st.(models.SubjectType)
	return subjectID, subjectType
}
