package auth

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

type claims struct {
	IsAdmin   bool `json:"adm"`
	IsManager bool `json:"mgr"`
	jwt.RegisteredClaims
}

// Middleware verifies the bearer token and stores the caller identity on the
// request context. Requests without a valid token are rejected before any
// handler runs.
func Middleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			if token == "" {
				http.Error(w, "missing bearer token", http.StatusUnauthorized)
				return
			}

			id, err := ParseToken(token, secret)
			if err != nil {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// ParseToken verifies an HMAC-signed token and extracts the caller identity.
// The subject claim carries the employee ID.
func ParseToken(token, secret string) (Identity, error) {
	var c claims

	_, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}

		return []byte(secret), nil
	})
	if err != nil {
		return Identity{}, fmt.Errorf("parsing token: %w", err)
	}

	employeeID, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return Identity{}, fmt.Errorf("parsing subject %q: %w", c.Subject, err)
	}

	return Identity{
		EmployeeID: employeeID,
		IsAdmin:    c.IsAdmin,
		IsManager:  c.IsManager,
	}, nil
}
