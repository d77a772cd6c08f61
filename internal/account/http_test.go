package account

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
)

func newTestRouter(store *memStore) chi.Router {
	h := NewHandler(newTestService(store, nil))
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return r
}

func postJSON(t *testing.T, router http.Handler, target string, body map[string]any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, target, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandleSignup(t *testing.T) {
	store := &memStore{}
	router := newTestRouter(store)

	rec := postJSON(t, router, "/signup", map[string]any{
		"email":            "admin@brgy.gov.ph",
		"password":         "secret-password",
		"role":             "admin",
		"confirmationCode": testAdminCode,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "Signup successful!") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
	if len(store.accounts) != 1 {
		t.Fatalf("account not stored")
	}
}

func TestHandleSignupErrors(t *testing.T) {
	store := &memStore{}
	router := newTestRouter(store)

	// Existing account for the duplicate case.
	rec := postJSON(t, router, "/signup", map[string]any{
		"email": "viewer@brgy.gov.ph", "password": "secret-password", "role": "viewer",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("seed signup: %d %s", rec.Code, rec.Body.String())
	}

	tests := []struct {
		name string
		body map[string]any
		code string
	}{
		{
			"missing fields",
			map[string]any{"email": "x@y.z"},
			"VALIDATION",
		},
		{
			"bad email",
			map[string]any{"email": "nope", "password": "secret-password", "role": "viewer"},
			"VALIDATION",
		},
		{
			"wrong admin code",
			map[string]any{"email": "a@b.c", "password": "secret-password", "role": "admin", "confirmationCode": "nope"},
			"INVALID_CONFIRMATION",
		},
		{
			"duplicate email",
			map[string]any{"email": "viewer@brgy.gov.ph", "password": "secret-password", "role": "viewer"},
			"DUPLICATE_ACCOUNT",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := postJSON(t, router, "/signup", tc.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
			if !strings.Contains(rec.Body.String(), tc.code) {
				t.Fatalf("expected code %s, got %s", tc.code, rec.Body.String())
			}
		})
	}
}

func TestHandleLogin(t *testing.T) {
	store := &memStore{}
	router := newTestRouter(store)

	rec := postJSON(t, router, "/signup", map[string]any{
		"email": "viewer@brgy.gov.ph", "password": "secret-password", "role": "viewer",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("signup: %d", rec.Code)
	}

	rec = postJSON(t, router, "/login", map[string]any{
		"email": "viewer@brgy.gov.ph", "password": "secret-password",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var payload struct {
		Success bool   `json:"success"`
		Token   string `json:"token"`
		User    struct {
			Email string `json:"email"`
			Role  string `json:"role"`
		} `json:"user"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !payload.Success || payload.Token == "" || payload.User.Role != "viewer" {
		t.Fatalf("unexpected payload: %+v", payload)
	}

	rec = postJSON(t, router, "/login", map[string]any{
		"email": "viewer@brgy.gov.ph", "password": "wrong",
	})
	if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), "Invalid password") {
		t.Fatalf("expected invalid-password 400, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = postJSON(t, router, "/login", map[string]any{
		"email": "nobody@brgy.gov.ph", "password": "secret-password",
	})
	if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), "User not found") {
		t.Fatalf("expected user-not-found 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHandleLogout(t *testing.T) {
	router := newTestRouter(&memStore{})

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.Header.Set("Authorization", "Bearer anything")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}
