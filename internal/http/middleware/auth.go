package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/brgysanroque/registry/internal/auth"
)

type contextKey string

const (
	ContextKeyEmail contextKey = "email"
	ContextKeyRole  contextKey = "role"
)

// RoleAdmin is the only role allowed through RequireAdmin.
const RoleAdmin = "admin"

// Auth validates the bearer token and injects identity claims into the context.
func Auth(jwtManager *auth.JWTManager, revocations auth.RevocationList) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if strings.TrimSpace(authHeader) == "" {
				writeError(w, http.StatusUnauthorized, "MISSING_TOKEN", "no token provided")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				writeError(w, http.StatusUnauthorized, "MISSING_TOKEN", "no token provided")
				return
			}

			claims, err := jwtManager.ParseAndValidate(parts[1])
			if err != nil {
				writeError(w, http.StatusUnauthorized, "INVALID_TOKEN", "invalid or expired token")
				return
			}

			revoked, err := revocations.IsRevoked(r.Context(), claims.ID)
			if err != nil || revoked {
				writeError(w, http.StatusUnauthorized, "INVALID_TOKEN", "invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyEmail, claims.Subject)
			ctx = context.WithValue(ctx, ContextKeyRole, claims.Role)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin gates admin-only operations.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.EqualFold(GetRole(r.Context()), RoleAdmin) {
			writeError(w, http.StatusForbidden, "FORBIDDEN", "access denied: admins only")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetEmail retrieves the authenticated email from the context.
func GetEmail(ctx context.Context) string {
	val, _ := ctx.Value(ContextKeyEmail).(string)
	return val
}

// GetRole retrieves the authenticated role from the context.
func GetRole(ctx context.Context) string {
	val, _ := ctx.Value(ContextKeyRole).(string)
	return val
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"code":    code,
		"message": message,
	})
}
