package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"blog-api/internal/auth"
)

// EditorKey is the gin context key holding the authenticated editor.
const EditorKey = "editor"

// RequireEditor validates the bearer token on write routes.
func RequireEditor(signer *auth.Signer) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ""
		if header := c.GetHeader("Authorization"); header != "" {
			// Extract token from "Bearer <token>"
			parts := strings.SplitN(header, " ", 2)
			if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
				tokenString = strings.TrimSpace(parts[1])
			}
		}
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization token is required",
			})
			return
		}

		claims, err := signer.ValidateToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or expired token",
			})
			return
		}

		c.Set(EditorKey, claims.Username)
		c.Next()
	}
}
