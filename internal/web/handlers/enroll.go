package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/kozaktomas/face-attendance/internal/config"
	"github.com/kozaktomas/face-attendance/internal/facemodel"
	"github.com/kozaktomas/face-attendance/internal/identity"
	"github.com/kozaktomas/face-attendance/internal/imaging"
)

// EnrollHandler handles identity enrollment.
type EnrollHandler struct {
	config *config.Config
	model  *facemodel.Client
	store  identity.Store
}

// NewEnrollHandler creates a new enroll handler.
func NewEnrollHandler(cfg *config.Config, model *facemodel.Client, store identity.Store) *EnrollHandler {
	return &EnrollHandler{
		config: cfg,
		model:  model,
		store:  store,
	}
}

// EnrollRequest carries one identity code and one or more base64 images.
type EnrollRequest struct {
	Code   string   `json:"code"`
	Images []string `json:"images"`
}

// EnrollResponse reports how many images contributed a face template.
type EnrollResponse struct {
	OK        bool   `json:"ok"`
	Code      string `json:"code"`
	Templates int    `json:"templates"`
}

// Enroll averages the embeddings of all submitted images that contain a face
// and upserts the result under the given code. Images without a detectable
// face are skipped; if none remains the request is a soft negative.
func (h *EnrollHandler) Enroll(w http.ResponseWriter, r *http.Request) {
	var req EnrollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	code := identity.NormalizeCode(req.Code)
	if code == "" || len(req.Images) == 0 {
		respondError(w, http.StatusBadRequest, errMissingInput)
		return
	}

	var embeddings [][]float32
	for _, img := range req.Images {
		data, err := imaging.DecodeBase64(img)
		if err != nil {
			respondError(w, http.StatusBadRequest, errInvalidImage)
			return
		}
		if err := imaging.Validate(data); err != nil {
			respondError(w, http.StatusBadRequest, errInvalidImage)
			return
		}

		detected, err := h.model.Detect(r.Context(), data)
		if err != nil {
			log.Printf("enroll: face model request failed: %v", err)
			respondError(w, http.StatusBadGateway, errEmbeddingFailed)
			return
		}
		if len(detected.Faces) > 0 {
			embeddings = append(embeddings, detected.Faces[0].Embedding)
		}
	}

	if len(embeddings) == 0 {
		respondNoFace(w)
		return
	}

	mean := identity.MeanEmbedding(embeddings)
	if err := h.store.Enroll(r.Context(), code, mean); err != nil {
		log.Printf("enroll: saving identity %s failed: %v", sanitizeForLog(code), err)
		respondError(w, http.StatusInternalServerError, errPersistFailed)
		return
	}

	respondJSON(w, http.StatusOK, EnrollResponse{
		OK:        true,
		Code:      code,
		Templates: len(embeddings),
	})
}
