package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storefront-api/internal/service"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func token(t *testing.T, key, method string, claims Claims) string {
	t.Helper()

	var m jwt.SigningMethod = jwt.SigningMethodHS256
	if method == "HS512" {
		m = jwt.SigningMethodHS512
	}
	signed, err := jwt.NewWithClaims(m, claims).SignedString([]byte(key))
	require.NoError(t, err)
	return signed
}

func claimsFor(sub, role string, exp time.Time) Claims {
	return Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
}

func run(t *testing.T, authHeader string, mws ...echo.MiddlewareFunc) (echo.Context, error) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set(echo.HeaderAuthorization, authHeader)
	}
	c := e.NewContext(req, httptest.NewRecorder())

	h := func(echo.Context) error { return nil }
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return c, h(c)
}

func TestAuth(t *testing.T) {
	valid := token(t, secret, "HS256", claimsFor("cust-1", "customer", time.Now().Add(time.Hour)))

	c, err := run(t, "Bearer "+valid, Auth(secret))
	require.NoError(t, err)
	assert.Equal(t, "cust-1", CustomerID(c))
	assert.False(t, IsAdmin(c))

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic abc"},
		{"garbage", "Bearer not-a-jwt"},
		{"wrong key", "Bearer " + token(t, "other", "HS256", claimsFor("cust-1", "", time.Now().Add(time.Hour)))},
		{"wrong alg", "Bearer " + token(t, secret, "HS512", claimsFor("cust-1", "", time.Now().Add(time.Hour)))},
		{"expired", "Bearer " + token(t, secret, "HS256", claimsFor("cust-1", "", time.Now().Add(-time.Hour)))},
		{"no subject", "Bearer " + token(t, secret, "HS256", claimsFor("", "", time.Now().Add(time.Hour)))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.header, Auth(secret))
			assert.ErrorIs(t, err, service.ErrUnauthorized)
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	customer := token(t, secret, "HS256", claimsFor("cust-1", "customer", time.Now().Add(time.Hour)))
	admin := token(t, secret, "HS256", claimsFor("staff-1", RoleAdmin, time.Now().Add(time.Hour)))

	_, err := run(t, "Bearer "+customer, Auth(secret), RequireAdmin())
	assert.ErrorIs(t, err, service.ErrForbidden)

	c, err := run(t, "Bearer "+admin, Auth(secret), RequireAdmin())
	require.NoError(t, err)
	assert.True(t, IsAdmin(c))
}
