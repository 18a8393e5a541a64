package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/kozaktomas/face-attendance/internal/attendance"
	"github.com/kozaktomas/face-attendance/internal/config"
	"github.com/kozaktomas/face-attendance/internal/facemodel"
	"github.com/kozaktomas/face-attendance/internal/imaging"
)

// defaultKind is assumed when the client omits the attempt type.
const defaultKind = "checkin"

// RecognizeHandler handles check-in and check-out attempts.
type RecognizeHandler struct {
	config   *config.Config
	model    *facemodel.Client
	pipeline *attendance.Pipeline
}

// NewRecognizeHandler creates a new recognize handler.
func NewRecognizeHandler(cfg *config.Config, model *facemodel.Client, pipeline *attendance.Pipeline) *RecognizeHandler {
	return &RecognizeHandler{
		config:   cfg,
		model:    model,
		pipeline: pipeline,
	}
}

// RecognizeRequest is one attempt as submitted by a client device.
//
// Lat, Lng, Accuracy and Threshold are pointers so that an absent field is
// distinguishable from an explicit zero.
type RecognizeRequest struct {
	Image     string   `json:"image"`
	Kind      string   `json:"type"`
	Threshold *float64 `json:"threshold"`
	Lat       *float64 `json:"lat"`
	Lng       *float64 `json:"lng"`
	Accuracy  *float64 `json:"accuracy"`
}

// RecognizeResponse wraps the verdict in the client envelope.
type RecognizeResponse struct {
	OK bool `json:"ok"`
	attendance.Verdict
}

// Recognize validates the attempt inputs, extracts the probe embedding and
// delegates the accept/reject decision to the pipeline. Once inputs pass
// validation every attempt gets a structured verdict, accepted or not.
func (h *RecognizeHandler) Recognize(w http.ResponseWriter, r *http.Request) {
	var req RecognizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	if req.Lat == nil || req.Lng == nil {
		respondError(w, http.StatusBadRequest, errMissingLocation)
		return
	}
	if req.Image == "" {
		respondError(w, http.StatusBadRequest, errMissingImage)
		return
	}

	kind := strings.ToLower(strings.TrimSpace(req.Kind))
	if kind == "" {
		kind = defaultKind
	}

	threshold := h.config.Recognition.Threshold
	if req.Threshold != nil {
		threshold = *req.Threshold
	}

	accuracy := 0.0
	if req.Accuracy != nil {
		accuracy = *req.Accuracy
	}

	data, err := imaging.DecodeBase64(req.Image)
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
		log.Printf("recognize: face model request failed: %v", err)
		respondError(w, http.StatusBadGateway, errEmbeddingFailed)
		return
	}
	if len(detected.Faces) == 0 {
		respondNoFace(w)
		return
	}

	verdict, err := h.pipeline.Decide(r.Context(), detected.Faces[0].Embedding, kind, threshold, *req.Lat, *req.Lng, accuracy)
	if err != nil {
		log.Printf("recognize: decision failed: %v", err)
		respondError(w, http.StatusInternalServerError, errPersistFailed)
		return
	}

	respondJSON(w, http.StatusOK, RecognizeResponse{OK: true, Verdict: verdict})
}
