package middleware

import (
	"fmt"
	"storefront-api/internal/service"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const (
	customerIDKey = "customer_id"
	roleKey       = "role"

	RoleAdmin = "admin"
)

// Claims carried by the bearer token; Subject is the customer id.
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// Auth accepts HS256 bearer tokens signed with secret.
func Auth(secret string) echo.MiddlewareFunc {
	key := []byte(secret)
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			raw, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || raw == "" {
				return fmt.Errorf("%w: missing bearer token", service.ErrUnauthorized)
			}

			claims := &Claims{}
			_, err := parser.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
				return key, nil
			})
			if err != nil {
				return fmt.Errorf("%w: %v", service.ErrUnauthorized, err)
			}
			if claims.Subject == "" {
				return fmt.Errorf("%w: token has no subject", service.ErrUnauthorized)
			}

			c.Set(customerIDKey, claims.Subject)
			c.Set(roleKey, claims.Role)
			return next(c)
		}
	}
}

// RequireAdmin must run after Auth.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !IsAdmin(c) {
				return fmt.Errorf("%w: admin role required", service.ErrForbidden)
			}
			return next(c)
		}
	}
}

func CustomerID(c echo.Context) string {
	id, _ := c.Get(customerIDKey).(string)
	return id
}

func IsAdmin(c echo.Context) bool {
	role, _ := c.Get(roleKey).(string)
	return role == RoleAdmin
}
