package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const testSecret = "unit-test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func runJWT(t *testing.T, authorization string) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	next := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	if err := JWTAuth(testSecret)(next)(c); err != nil {
		t.Fatalf("middleware returned error: %v", err)
	}
	return rec, c
}

func TestJWTAuthValidToken(t *testing.T) {
	raw := signToken(t, testSecret, jwt.MapClaims{
		"sub":  float64(7),
		"role": "CLIENT",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	rec, c := runJWT(t, "Bearer "+raw)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if role, _ := c.Get("role").(string); role != "CLIENT" {
		t.Fatalf("expected role CLIENT in context, got %v", c.Get("role"))
	}
	if sub, _ := c.Get("user_id").(float64); uint64(sub) != 7 {
		t.Fatalf("expected user_id 7 in context, got %v", c.Get("user_id"))
	}
}

func TestJWTAuthRejections(t *testing.T) {
	expired := signToken(t, testSecret, jwt.MapClaims{
		"sub": float64(7), "role": "CLIENT",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})
	wrongKey := signToken(t, "other-secret", jwt.MapClaims{
		"sub": float64(7), "role": "CLIENT",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	tests := []struct {
		name   string
		header string
	}{
		{name: "missing header", header: ""},
		{name: "not bearer", header: "Basic abc"},
		{name: "garbage token", header: "Bearer not.a.jwt"},
		{name: "expired", header: "Bearer " + expired},
		{name: "wrong key", header: "Bearer " + wrongKey},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, _ := runJWT(t, tt.header)
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rec.Code)
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name    string
		role    any
		allowed []string
		code    int
	}{
		{name: "allowed", role: "COORDINATOR", allowed: []string{"COORDINATOR"}, code: http.StatusOK},
		{name: "one of several", role: "TECHNICIAN", allowed: []string{"TECHNICIAN", "COORDINATOR"}, code: http.StatusOK},
		{name: "wrong role", role: "CLIENT", allowed: []string{"COORDINATOR"}, code: http.StatusForbidden},
		{name: "missing role", role: nil, allowed: []string{"COORDINATOR"}, code: http.StatusForbidden},
		{name: "non-string role", role: 12, allowed: []string{"COORDINATOR"}, code: http.StatusForbidden},
	}

	e := echo.New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)
			if tt.role != nil {
				c.Set("role", tt.role)
			}
			next := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
			if err := RequireRole(tt.allowed...)(next)(c); err != nil {
				t.Fatalf("middleware returned error: %v", err)
			}
			if rec.Code != tt.code {
				t.Fatalf("expected %d, got %d", tt.code, rec.Code)
			}
		})
	}
}
