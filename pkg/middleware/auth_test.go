package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/yeisme/postvault/pkg/configs"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret, subject string) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": subject,
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	return signed
}

func newAuthTestEngine(conf configs.AuthConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)

	e := gin.New()
	e.Use(AuthMiddleware(conf))
	e.GET("/posts", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user": c.GetString(ActingUserKey)})
	})
	e.GET("/health/db", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	return e
}

func TestAuthMiddlewareRejectsMissingToken(t *testing.T) {
	e := newAuthTestEngine(configs.AuthConfig{Enabled: true, Secret: testSecret})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/posts", nil)
	e.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestAuthMiddlewareRejectsBadToken(t *testing.T) {
	e := newAuthTestEngine(configs.AuthConfig{Enabled: true, Secret: testSecret})

	cases := []string{
		"Bearer not-a-jwt",
		"Basic dXNlcjpwYXNz",
		"Bearer " + signToken(t, "wrong-secret", "alice"),
	}

	for _, header := range cases {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/posts", nil)
		req.Header.Set("Authorization", header)
		e.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("header %q: status = %d, want 401", header, w.Code)
		}
	}
}

func TestAuthMiddlewareInjectsSubject(t *testing.T) {
	e := newAuthTestEngine(configs.AuthConfig{Enabled: true, Secret: testSecret})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/posts", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, "alice"))
	e.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	if want := `"user":"alice"`; !strings.Contains(w.Body.String(), want) {
		t.Errorf("body = %s, want %s", w.Body.String(), want)
	}
}

func TestAuthMiddlewareSkipPaths(t *testing.T) {
	e := newAuthTestEngine(configs.AuthConfig{
		Enabled:   true,
		Secret:    testSecret,
		SkipPaths: []string{"/health"},
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health/db", nil)
	e.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 for skipped path", w.Code)
	}
}

func TestAuthMiddlewareDevQueryFallback(t *testing.T) {
	e := newAuthTestEngine(configs.AuthConfig{
		Enabled:       true,
		Secret:        testSecret,
		DevAllowQuery: true,
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/posts?user=dev-user", nil)
	e.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	if want := `"user":"dev-user"`; !strings.Contains(w.Body.String(), want) {
		t.Errorf("body = %s, want %s", w.Body.String(), want)
	}
}

func TestAuthMiddlewareDisabled(t *testing.T) {
	e := newAuthTestEngine(configs.AuthConfig{Enabled: false})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/posts", nil)
	e.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 when auth disabled", w.Code)
	}
}

