package account

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// Handler exposes the signup/login/logout endpoints.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the authentication routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/signup", h.handleSignup)
	r.Post("/login", h.handleLogin)
	r.Post("/logout", h.handleLogout)
}

type signupRequest struct {
	Email            string `json:"email"`
	Password         string `json:"password"`
	Role             string `json:"role"`
	ConfirmationCode string `json:"confirmationCode"`
}

func (h *Handler) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "invalid request body")
		return
	}

	if req.Email == "" || req.Password == "" || req.Role == "" {
		writeError(w, http.StatusBadRequest, "VALIDATION", "Missing required fields!")
		return
	}

	err := h.service.Signup(r.Context(), req.Email, req.Password, req.Role, req.ConfirmationCode)
	if err != nil {
		var validation *ValidationError
		switch {
		case errors.As(err, &validation):
			writeError(w, http.StatusBadRequest, "VALIDATION", validation.Error())
		case errors.Is(err, ErrInvalidConfirmation):
			writeError(w, http.StatusBadRequest, "INVALID_CONFIRMATION", "Invalid confirmation code for admin role")
		case errors.Is(err, ErrDuplicate):
			writeError(w, http.StatusBadRequest, "DUPLICATE_ACCOUNT", "User already exists!")
		default:
			writeInternalError(w, err)
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Signup successful!",
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "invalid request body")
		return
	}

	result, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			writeError(w, http.StatusBadRequest, "NOT_FOUND", "User not found")
		case errors.Is(err, ErrInvalidCredentials):
			writeError(w, http.StatusBadRequest, "INVALID_CREDENTIALS", "Invalid password")
		default:
			writeInternalError(w, err)
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"token":   result.Token,
		"user": map[string]any{
			"email": result.Email,
			"role":  result.Role,
		},
	})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	authHeader := r.Header.Get("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		writeError(w, http.StatusUnauthorized, "MISSING_TOKEN", "no token provided")
		return
	}

	if err := h.service.Logout(r.Context(), parts[1]); err != nil {
		writeInternalError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Logged out",
	})
}

func writeInternalError(w http.ResponseWriter, err error) {
	log.Error().Err(err).Msg("account handler error")
	writeError(w, http.StatusInternalServerError, "INTERNAL", "internal server error")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]any{"code": code, "message": message})
}
