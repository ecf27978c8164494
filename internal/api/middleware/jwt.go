package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/yoockh/interviewpilot/internal/utils"
)

type apiError struct {
	Code    utils.Code `json:"code"`
	Message string     `json:"message"`
}

type JWTConfig struct {
	Secret   string
	Issuer   string // optional
	Audience string // optional
}

// claims accepts the subject in "sub" or, for older tokens, "id".
type claims struct {
	jwt.RegisteredClaims
	LegacyID    string         `json:"id"`
	Role        string         `json:"role"`
	AppMetadata map[string]any `json:"app_metadata"` // {"role":"admin"} also works
}

func (c *claims) userID() string {
	if c.Subject != "" {
		return c.Subject
	}
	return c.LegacyID
}

func (c *claims) appRole() string {
	if c.AppMetadata != nil {
		if s, ok := c.AppMetadata["role"].(string); ok && s != "" {
			return s
		}
	}
	switch c.Role {
	case "", "authenticated", "anon":
		return "user"
	default:
		return c.Role
	}
}

func unauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, apiError{Code: utils.CodeUnauthorized, Message: msg})
}

func JWTAuth(cfg JWTConfig) gin.HandlerFunc {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	if cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(cfg.Audience))
	}
	parser := jwt.NewParser(opts...)

	return func(c *gin.Context) {
		if cfg.Secret == "" {
			c.AbortWithStatusJSON(http.StatusInternalServerError, apiError{
				Code:    utils.CodeInternal,
				Message: "JWT_SECRET is not set",
			})
			return
		}

		auth := c.GetHeader("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			unauthorized(c, "missing bearer token")
			return
		}
		raw := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
		if raw == "" {
			unauthorized(c, "missing bearer token")
			return
		}

		cl := &claims{}
		tok, err := parser.ParseWithClaims(raw, cl, func(t *jwt.Token) (any, error) {
			return []byte(cfg.Secret), nil
		})
		if err != nil || tok == nil || !tok.Valid {
			unauthorized(c, "invalid token")
			return
		}

		userID := cl.userID()
		if userID == "" {
			unauthorized(c, "missing subject")
			return
		}

		c.Set("user_id", userID)
		c.Set("role", cl.appRole())
		c.Next()
	}
}
