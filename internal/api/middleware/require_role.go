package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yoockh/interviewpilot/internal/utils"
)

// RequireRole lets a request through only when JWTAuth stored one of the
// allowed roles.
func RequireRole(allowed ...string) gin.HandlerFunc {
	allow := make(map[string]bool, len(allowed))
	for _, a := range allowed {
		if a = strings.ToLower(strings.TrimSpace(a)); a != "" {
			allow[a] = true
		}
	}

	return func(c *gin.Context) {
		role, _ := c.Get("role")
		name, _ := role.(string)
		if !allow[strings.ToLower(name)] {
			c.AbortWithStatusJSON(http.StatusForbidden, apiError{Code: utils.CodeForbidden, Message: "forbidden"})
			return
		}
		c.Next()
	}
}

// RequireAdmin guards question-bank edits. Supabase service keys carry
// service_role and are treated as admin.
func RequireAdmin() gin.HandlerFunc { return RequireRole("admin", "service_role") }
