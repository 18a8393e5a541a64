package handlers

import (
	"log"
	"net/http"

	"github.com/kozaktomas/face-attendance/internal/identity"
)

// IdentitiesHandler handles roster inspection and reset.
type IdentitiesHandler struct {
	store identity.Store
}

// NewIdentitiesHandler creates a new identities handler.
func NewIdentitiesHandler(store identity.Store) *IdentitiesHandler {
	return &IdentitiesHandler{store: store}
}

// IdentitiesResponse lists the enrolled identity codes.
type IdentitiesResponse struct {
	OK    bool     `json:"ok"`
	Size  int      `json:"size"`
	Codes []string `json:"codes"`
}

// List returns all enrolled identity codes, sorted.
func (h *IdentitiesHandler) List(w http.ResponseWriter, r *http.Request) {
	codes, err := h.store.List(r.Context())
	if err != nil {
		log.Printf("identities: listing failed: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to list identities")
		return
	}

	if codes == nil {
		codes = []string{}
	}
	respondJSON(w, http.StatusOK, IdentitiesResponse{
		OK:    true,
		Size:  len(codes),
		Codes: codes,
	})
}

// Reset clears all enrolled embeddings.
func (h *IdentitiesHandler) Reset(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Reset(r.Context()); err != nil {
		log.Printf("identities: reset failed: %v", err)
		respondError(w, http.StatusInternalServerError, errPersistFailed)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"ok": true, "msg": "cleared"})
}
