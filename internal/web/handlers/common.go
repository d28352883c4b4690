package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/balasai14/multi-face-reg/internal/database"
	"github.com/balasai14/multi-face-reg/internal/descriptor"
	"github.com/balasai14/multi-face-reg/internal/identity"
)

// errInvalidRequestBody is a shared error message for invalid JSON request bodies.
const errInvalidRequestBody = "invalid request body"

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondServiceError maps service errors to HTTP status codes. Error
// payloads carry only the sentinel message, never stored descriptors or
// configuration secrets.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, identity.ErrMissingField),
		errors.Is(err, descriptor.ErrMalformed),
		errors.Is(err, descriptor.ErrWrongLength),
		errors.Is(err, descriptor.ErrOutOfRange):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, database.ErrDuplicateIdentity):
		respondError(w, http.StatusConflict, "identity key already exists")
	case errors.Is(err, identity.ErrUnknownIdentity):
		respondError(w, http.StatusNotFound, "identity not found")
	case errors.Is(err, identity.ErrNoMatch):
		respondError(w, http.StatusUnauthorized, "face recognition failed")
	default:
		// Infrastructure failure: log the cause, return a generic payload.
		log.Printf("internal error: %v", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
	}
}
