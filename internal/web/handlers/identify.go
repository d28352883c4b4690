package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/balasai14/multi-face-reg/internal/constants"
	"github.com/balasai14/multi-face-reg/internal/descriptor"
	"github.com/balasai14/multi-face-reg/internal/extractor"
	"github.com/balasai14/multi-face-reg/internal/identity"
	"github.com/balasai14/multi-face-reg/internal/recognize"
)

// IdentifyHandler answers 1:N identification queries and identity lookups.
type IdentifyHandler struct {
	service   *identity.Service
	validator *descriptor.Validator
	index     *recognize.Index
	extractor *extractor.Client
}

// NewIdentifyHandler creates a new identify handler.
func NewIdentifyHandler(service *identity.Service, validator *descriptor.Validator, index *recognize.Index, client *extractor.Client) *IdentifyHandler {
	return &IdentifyHandler{
		service:   service,
		validator: validator,
		index:     index,
		extractor: client,
	}
}

// identifyRequest represents a 1:N identification request.
type identifyRequest struct {
	Descriptor json.RawMessage `json:"descriptor"`
	Limit      int             `json:"limit"`
}

// IdentifyResponse lists the nearest enrolled identities.
type IdentifyResponse struct {
	Candidates []recognize.Candidate `json:"candidates"`
}

// Identify finds the enrolled identities nearest to a descriptor.
func (h *IdentifyHandler) Identify(w http.ResponseWriter, r *http.Request) {
	var req identifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	desc, err := h.validator.Parse(req.Descriptor)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	limit := req.Limit
	if limit <= 0 || limit > 100 {
		limit = constants.DefaultIdentifyLimit
	}

	candidates, err := h.index.Identify(desc, limit)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if candidates == nil {
		candidates = []recognize.Candidate{}
	}

	respondJSON(w, http.StatusOK, IdentifyResponse{Candidates: candidates})
}

// IdentifyImage runs a raw face image through the external extractor and
// identifies the nearest enrolled identities. The image never touches the
// store; only its descriptor does.
func (h *IdentifyHandler) IdentifyImage(w http.ResponseWriter, r *http.Request) {
	image, err := io.ReadAll(r.Body)
	if err != nil || len(image) == 0 {
		respondError(w, http.StatusBadRequest, "image body is required")
		return
	}

	values, err := h.extractor.Extract(r.Context(), image)
	switch {
	case errors.Is(err, extractor.ErrNotReady):
		respondError(w, http.StatusServiceUnavailable, "extractor models are not loaded")
		return
	case errors.Is(err, extractor.ErrNoFace):
		respondError(w, http.StatusUnprocessableEntity, "no face found in image")
		return
	case err != nil:
		respondError(w, http.StatusBadGateway, "descriptor extraction failed")
		return
	}

	desc, err := h.validator.Validate(values)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	limit := constants.DefaultIdentifyLimit
	if q := r.URL.Query().Get("limit"); q != "" {
		if n, err := strconv.Atoi(q); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}

	candidates, err := h.index.Identify(desc, limit)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if candidates == nil {
		candidates = []recognize.Candidate{}
	}

	respondJSON(w, http.StatusOK, IdentifyResponse{Candidates: candidates})
}

// GetIdentity returns the public profile for an enrolled identity.
func (h *IdentifyHandler) GetIdentity(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	profile, err := h.service.Lookup(r.Context(), key)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, profile)
}

// SearchIdentities returns identities whose display name matches the query.
func (h *IdentifyHandler) SearchIdentities(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("name")
	if q == "" {
		respondError(w, http.StatusBadRequest, "name query parameter is required")
		return
	}

	matches := h.index.SearchByName(q)
	if matches == nil {
		matches = []recognize.Candidate{}
	}
	respondJSON(w, http.StatusOK, map[string]any{"identities": matches})
}
