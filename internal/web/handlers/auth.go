package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/balasai14/multi-face-reg/internal/auth"
	"github.com/balasai14/multi-face-reg/internal/identity"
	"github.com/balasai14/multi-face-reg/internal/recognize"
	"github.com/balasai14/multi-face-reg/internal/web/middleware"
)

// AuthHandler handles enrollment and face-login endpoints.
type AuthHandler struct {
	service *identity.Service
	issuer  *auth.Issuer
	index   *recognize.Index
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(service *identity.Service, issuer *auth.Issuer, index *recognize.Index) *AuthHandler {
	return &AuthHandler{
		service: service,
		issuer:  issuer,
		index:   index,
	}
}

// signupRequest represents an enrollment request. The descriptor stays raw
// so the validator can accept both the array and stringified forms.
type signupRequest struct {
	IdentityKey string          `json:"identityKey"`
	DisplayName string          `json:"displayName"`
	Descriptor  json.RawMessage `json:"descriptor"`
}

// loginRequest represents a face-login request.
type loginRequest struct {
	IdentityKey string          `json:"identityKey"`
	Descriptor  json.RawMessage `json:"descriptor"`
}

// LoginResponse represents a successful login response.
type LoginResponse struct {
	Message string           `json:"message"`
	Token   string           `json:"token"`
	User    identity.Profile `json:"user"`
}

// Signup enrolls a new identity.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	record, err := h.service.Enroll(r.Context(), req.IdentityKey, req.DisplayName, req.Descriptor)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	// Keep the identification index in sync with the store.
	if h.index != nil {
		if err := h.index.Add(record); err != nil {
			log.Printf("failed to index identity %s: %v", record.IdentityKey, err)
		}
	}

	respondJSON(w, http.StatusCreated, map[string]string{
		"message": "User registered successfully.",
	})
}

// Login verifies a descriptor and issues a session token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	result, err := h.service.Login(r.Context(), req.IdentityKey, req.Descriptor)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	// The token also travels as a cookie for browser clients; API clients
	// use the Authorization header.
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    result.Token,
		Path:     "/",
		MaxAge:   int(h.issuer.Lifetime().Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	respondJSON(w, http.StatusOK, LoginResponse{
		Message: "Login successful.",
		Token:   result.Token,
		User:    result.User,
	})
}

// Logout acknowledges a logout. Tokens are bearer credentials with no
// server-side session store, so there is nothing to revoke; the client
// discards the token. The optional token cookie is cleared.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Logged out successfully.",
	})
}

// Check verifies the bearer token and returns the bound identity key.
func (h *AuthHandler) Check(w http.ResponseWriter, r *http.Request) {
	token := middleware.BearerToken(r)
	if token == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	subject, err := h.issuer.Verify(token)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"userId":  subject,
	})
}
