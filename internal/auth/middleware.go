package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const adminContextKey = "docadminAdmin"

// ContextAdmin represents the authenticated principal stored in the request context.
type ContextAdmin struct {
	Email string
}

// RequireAdmin validates bearer tokens and rejects callers without the admin role.
func RequireAdmin(service *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			return
		}

		token := extractBearerToken(authHeader)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header"})
			return
		}

		claims, err := service.ValidateAccessToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}
		if !claims.IsAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": ErrForbidden.Error()})
			return
		}

		c.Set(adminContextKey, ContextAdmin{Email: claims.Email})
		c.Next()
	}
}

// CurrentAdmin extracts the authenticated admin from the context.
func CurrentAdmin(c *gin.Context) (ContextAdmin, bool) {
	value, exists := c.Get(adminContextKey)
	if !exists {
		return ContextAdmin{}, false
	}
	admin, ok := value.(ContextAdmin)
	return admin, ok
}

func extractBearerToken(header string) string {
	if !strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}
