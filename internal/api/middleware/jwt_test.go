package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret"

func sign(t *testing.T, method jwt.SigningMethod, key any, c jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, c).SignedString(key)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func router(cfg JWTConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", JWTAuth(cfg), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetString("user_id"), "role": c.GetString("role")})
	})
	r.GET("/admin", JWTAuth(cfg), RequireAdmin(), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	return r
}

func do(r *gin.Engine, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuth(t *testing.T) {
	r := router(JWTConfig{Secret: testSecret, Issuer: "interviewpilot"})
	exp := time.Now().Add(time.Hour).Unix()

	cases := []struct {
		name   string
		token  string
		status int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"sub claim", sign(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{"sub": "u1", "iss": "interviewpilot", "exp": exp}), http.StatusOK},
		{"id claim", sign(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{"id": "u1", "iss": "interviewpilot", "exp": exp}), http.StatusOK},
		{"wrong secret", sign(t, jwt.SigningMethodHS256, []byte("other"), jwt.MapClaims{"sub": "u1", "iss": "interviewpilot", "exp": exp}), http.StatusUnauthorized},
		{"wrong issuer", sign(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{"sub": "u1", "iss": "evil", "exp": exp}), http.StatusUnauthorized},
		{"expired", sign(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{"sub": "u1", "iss": "interviewpilot", "exp": time.Now().Add(-time.Hour).Unix()}), http.StatusUnauthorized},
		{"no subject", sign(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{"iss": "interviewpilot", "exp": exp}), http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if w := do(r, "/me", tc.token); w.Code != tc.status {
				t.Fatalf("got %d, want %d: %s", w.Code, tc.status, w.Body.String())
			}
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	r := router(JWTConfig{Secret: testSecret})
	user := sign(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{"sub": "u1"})
	admin := sign(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{"sub": "u2", "role": "admin"})
	meta := sign(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{"sub": "u3", "role": "authenticated", "app_metadata": map[string]any{"role": "admin"}})

	if w := do(r, "/admin", user); w.Code != http.StatusForbidden {
		t.Fatalf("user: got %d", w.Code)
	}
	if w := do(r, "/admin", admin); w.Code != http.StatusNoContent {
		t.Fatalf("admin: got %d", w.Code)
	}
	if w := do(r, "/admin", meta); w.Code != http.StatusNoContent {
		t.Fatalf("app_metadata admin: got %d", w.Code)
	}
}
