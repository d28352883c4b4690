package handlers

import (
	"net/http"

	"github.com/balasai14/multi-face-reg/internal/extractor"
	"github.com/balasai14/multi-face-reg/internal/identity"
	"github.com/balasai14/multi-face-reg/internal/recognize"
)

// ModelsHandler exposes extractor lifecycle and service statistics.
type ModelsHandler struct {
	extractor *extractor.Client
	service   *identity.Service
	index     *recognize.Index
}

// NewModelsHandler creates a new models handler.
func NewModelsHandler(client *extractor.Client, service *identity.Service, index *recognize.Index) *ModelsHandler {
	return &ModelsHandler{
		extractor: client,
		service:   service,
		index:     index,
	}
}

// Load warms the external extractor's models. Loading an already-ready
// extractor succeeds immediately.
func (h *ModelsHandler) Load(w http.ResponseWriter, r *http.Request) {
	if h.extractor.State() == extractor.StateReady {
		respondJSON(w, http.StatusOK, map[string]string{"message": "Models already loaded."})
		return
	}

	if err := h.extractor.Load(r.Context()); err != nil {
		respondError(w, http.StatusBadGateway, "failed to load extractor models")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "Models loaded successfully."})
}

// Stats reports enrollment and index statistics.
func (h *ModelsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	count, err := h.service.Count(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"enrolled":  count,
		"indexed":   h.index.Size(),
		"extractor": h.extractor.State().String(),
	})
}

// Health handles the health check endpoint.
func (h *ModelsHandler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"extractor": h.extractor.State().String(),
	})
}
