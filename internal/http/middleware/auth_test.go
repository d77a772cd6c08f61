package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/brgysanroque/registry/internal/auth"
)

const testSecret = "0123456789abcdef0123456789abcdef"

// stubRevocations marks a single jti as revoked.
type stubRevocations struct {
	revoked string
}

func (s *stubRevocations) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	s.revoked = jti
	return nil
}

func (s *stubRevocations) IsRevoked(ctx context.Context, jti string) (bool, error) {
	return s.revoked != "" && s.revoked == jti, nil
}

func protectedEcho(t *testing.T, revocations auth.RevocationList, adminOnly bool) http.Handler {
	t.Helper()
	manager := auth.NewJWTManager(testSecret, time.Hour)

	var inner http.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(GetEmail(r.Context()) + "/" + GetRole(r.Context())))
	})
	if adminOnly {
		inner = RequireAdmin(inner)
	}
	return Auth(manager, revocations)(inner)
}

func TestAuthMissingToken(t *testing.T) {
	handler := protectedEcho(t, auth.NoopRevocationList{}, false)

	for _, header := range []string{"", "Bearer", "Token abc"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("header %q: expected 401, got %d", header, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "MISSING_TOKEN") {
			t.Fatalf("header %q: expected MISSING_TOKEN, got %s", header, rec.Body.String())
		}
	}
}

func TestAuthInvalidToken(t *testing.T) {
	handler := protectedEcho(t, auth.NoopRevocationList{}, false)

	expired := auth.NewJWTManager(testSecret, -time.Minute)
	expiredToken, _, err := expired.GenerateAccessToken("a@b.c", "viewer")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	for _, token := range []string{"garbage", expiredToken} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "INVALID_TOKEN") {
			t.Fatalf("expected INVALID_TOKEN, got %s", rec.Body.String())
		}
	}
}

func TestAuthInjectsClaims(t *testing.T) {
	handler := protectedEcho(t, auth.NoopRevocationList{}, false)

	manager := auth.NewJWTManager(testSecret, time.Hour)
	token, _, err := manager.GenerateAccessToken("viewer@brgy.gov.ph", "viewer")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec.Body.String() != "viewer@brgy.gov.ph/viewer" {
		t.Fatalf("claims not injected: %s", rec.Body.String())
	}
}

func TestAuthRejectsRevokedToken(t *testing.T) {
	revocations := &stubRevocations{}
	handler := protectedEcho(t, revocations, false)

	manager := auth.NewJWTManager(testSecret, time.Hour)
	token, jti, err := manager.GenerateAccessToken("admin@brgy.gov.ph", "admin")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if err := revocations.Revoke(context.Background(), jti, time.Hour); err != nil {
		t.Fatalf("revoke: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for revoked token, got %d", rec.Code)
	}
}

func TestRequireAdmin(t *testing.T) {
	handler := protectedEcho(t, auth.NoopRevocationList{}, true)
	manager := auth.NewJWTManager(testSecret, time.Hour)

	tests := []struct {
		role string
		want int
	}{
		{"viewer", http.StatusForbidden},
		{"admin", http.StatusOK},
	}

	for _, tc := range tests {
		token, _, err := manager.GenerateAccessToken("user@brgy.gov.ph", tc.role)
		if err != nil {
			t.Fatalf("generate: %v", err)
		}

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != tc.want {
			t.Fatalf("role %q: expected %d, got %d", tc.role, tc.want, rec.Code)
		}
	}
}
