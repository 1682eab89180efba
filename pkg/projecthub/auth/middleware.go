package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mikepea/projecthub/pkg/projecthub/models"
)

// ContextKeyPrincipal is the key for the authenticated principal in gin context
const ContextKeyPrincipal = "principal"

// AuthMiddleware validates JWT tokens and sets the principal in context
func AuthMiddleware(tokens *TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}

		// Expect "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			c.Abort()
			return
		}

		claims, err := tokens.ValidateToken(parts[1])
		if err != nil {
			if err == ErrExpiredToken {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Token has expired"})
			} else {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			}
			c.Abort()
			return
		}

		c.Set(ContextKeyPrincipal, claims.Principal())
		c.Next()
	}
}

// GetPrincipal returns the principal from the gin context
func GetPrincipal(c *gin.Context) (models.Principal, bool) {
	v, exists := c.Get(ContextKeyPrincipal)
	if !exists {
		return models.Principal{}, false
	}
	p, ok := v.(models.Principal)
	return p, ok
}

// RequireStudent middleware only lets student principals through
func RequireStudent() gin.HandlerFunc {
	return require(func(p models.Principal) bool { return p.IsStudent() }, "Student access required")
}

// RequireAdmin middleware only lets admin principals through, whatever their role
func RequireAdmin() gin.HandlerFunc {
	return require(func(p models.Principal) bool { return p.IsAdmin() }, "Admin access required")
}

// RequireAdminRole middleware only lets admins holding one of roles through
func RequireAdminRole(roles ...models.AdminRole) gin.HandlerFunc {
	return require(func(p models.Principal) bool {
		if !p.IsAdmin() {
			return false
		}
		for _, r := range roles {
			if p.Role == r {
				return true
			}
		}
		return false
	}, "Insufficient admin role")
}

func require(allowed func(models.Principal) bool, denied string) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, exists := GetPrincipal(c)
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			c.Abort()
			return
		}

		if !allowed(p) {
			c.JSON(http.StatusForbidden, gin.H{"error": denied})
			c.Abort()
			return
		}

		c.Next()
	}
}
