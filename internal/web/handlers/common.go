package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
)

// errInvalidRequestBody is a shared error message for invalid JSON request bodies.
const errInvalidRequestBody = "invalid request body"

// Machine-readable error codes for input validation failures.
const (
	errMissingInput     = "missing_input"
	errMissingImage     = "missing_image"
	errMissingLocation  = "missing_location"
	errInvalidImage     = "invalid_image"
	errEmptyZoneList    = "empty_zone_list"
	errInvalidZoneShape = "invalid_zone_shape"
	errEmbeddingFailed  = "embedding_failed"
	errPersistFailed    = "persist_failed"
)

// reasonNoFaceDetected marks the soft negative when the model finds no face.
// It is a regular 200 response, not a transport error.
const reasonNoFaceDetected = "no_face_detected"

// sanitizeForLog removes newlines and carriage returns to prevent log injection.
func sanitizeForLog(s string) string {
	return strings.NewReplacer("\n", "", "\r", "").Replace(s)
}

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

// respondNoFace sends the soft negative for images without a detectable face.
func respondNoFace(w http.ResponseWriter) {
	respondJSON(w, http.StatusOK, map[string]any{
		"ok":     false,
		"reason": reasonNoFaceDetected,
	})
}

// HealthCheck handles the health check endpoint.
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}
