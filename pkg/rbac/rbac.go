// Package rbac gates routes by the role carried in the caller's token.
package rbac

import (
	"net/http"

	"github.com/shashiranjanraj/ayoo/pkg/middleware"
	"github.com/shashiranjanraj/ayoo/pkg/response"
)

// Roles issued by the auth service.
const (
	Customer = "CUSTOMER"
	Merchant = "MERCHANT"
	Rider    = "RIDER"
	Admin    = "ADMIN"
)

// Valid reports whether role is one of the known roles.
func Valid(role string) bool {
	switch role {
	case Customer, Merchant, Rider, Admin:
		return true
	}
	return false
}

// HasRole allows the request only when the caller holds one of roles.
// Admin always passes. AuthMiddleware must run first.
func HasRole(roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(roles)+1)
	for _, r := range roles {
		allowed[r] = true
	}
	allowed[Admin] = true

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := middleware.RoleFromCtx(r)
			if !ok {
				response.Unauthorized(w, "")
				return
			}
			if !allowed[role] {
				response.Forbidden(w, "")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Guest blocks callers that are already authenticated (login, register).
func Guest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := middleware.UserIDFromCtx(r); ok {
			response.Error(w, http.StatusConflict, "Already authenticated")
			return
		}
		next.ServeHTTP(w, r)
	})
}
