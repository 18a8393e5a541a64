package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/face-attendance/internal/attendance"
	"github.com/kozaktomas/face-attendance/internal/audit"
	"github.com/kozaktomas/face-attendance/internal/config"
	"github.com/kozaktomas/face-attendance/internal/facemodel"
	"github.com/kozaktomas/face-attendance/internal/geofence"
	"github.com/kozaktomas/face-attendance/internal/identity"
)

// tinyPNGBase64 is a valid 1x1 PNG, small enough to inline in request bodies.
const tinyPNGBase64 = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mP8z8BQDwAEhQGAhKmMIQAAAABJRU5ErkJggg=="

// testZoneLat/testZoneLng is the zone center used by recognize fixtures.
const (
	testZoneLat = 14.040438697809682
	testZoneLng = 100.73365761380248
)

// testConfig creates a minimal config for testing
func testConfig() *config.Config {
	return &config.Config{
		Recognition: config.RecognitionConfig{
			Threshold:    0.50,
			MaxAccuracyM: 5000,
		},
	}
}

// newFaceModelServer creates a mock embedding server that returns the given
// embedding for every image, or no faces at all when embedding is nil.
func newFaceModelServer(t *testing.T, embedding []float32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embed/face" {
			http.NotFound(w, r)
			return
		}

		resp := facemodel.DetectResponse{Model: "buffalo_l"}
		if embedding != nil {
			resp.FacesCount = 1
			resp.Faces = []facemodel.Face{{
				FaceIndex: 0,
				Dim:       len(embedding),
				Embedding: embedding,
				BBox:      []float64{10, 10, 90, 90},
				DetScore:  0.99,
			}}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
}

// newTestStore creates a file-backed identity store in a temp directory.
func newTestStore(t *testing.T) *identity.FileStore {
	t.Helper()
	store, err := identity.NewFileStore(filepath.Join(t.TempDir(), "face_db.json"))
	if err != nil {
		t.Fatalf("failed to create file store: %v", err)
	}
	return store
}

// newTestRegistry creates a geofence registry seeded with the given zones.
func newTestRegistry(t *testing.T, seed map[string][]geofence.Zone) *geofence.Registry {
	t.Helper()
	registry, err := geofence.NewRegistry(filepath.Join(t.TempDir(), "allowed_sites.json"), 5000, seed)
	if err != nil {
		t.Fatalf("failed to create registry: %v", err)
	}
	return registry
}

// enrollDirect puts an embedding into the store without going through HTTP.
func enrollDirect(t *testing.T, store identity.Store, code string, embedding []float32) {
	t.Helper()
	if err := store.Enroll(context.Background(), code, embedding); err != nil {
		t.Fatalf("failed to enroll %s: %v", code, err)
	}
}

// requestWithChiParams creates a request with chi URL parameters
func requestWithChiParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// postJSON builds a request with a JSON-encoded body.
func postJSON(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal request body: %v", err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// parseJSONResponse parses a JSON response body into the target type
func parseJSONResponse(t *testing.T, recorder *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(recorder.Body.Bytes(), target); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nBody: %s", err, recorder.Body.String())
	}
}

// assertStatusCode checks if the response has the expected status code
func assertStatusCode(t *testing.T, recorder *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if recorder.Code != expected {
		t.Errorf("expected status %d, got %d\nBody: %s", expected, recorder.Code, recorder.Body.String())
	}
}

// assertJSONError checks if the response is a JSON error with the expected message
func assertJSONError(t *testing.T, recorder *httptest.ResponseRecorder, expectedMessage string) {
	t.Helper()
	var result map[string]string
	if err := json.Unmarshal(recorder.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse error response: %v\nBody: %s", err, recorder.Body.String())
	}
	if result["error"] != expectedMessage {
		t.Errorf("expected error '%s', got '%s'", expectedMessage, result["error"])
	}
}

// readFileString reads a file created by a handler under test.
func readFileString(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return string(data)
}

// recognizePipeline wires a store, registry and audit log into a pipeline
// rooted in a temp directory. Returns the pipeline and the audit log path.
func recognizePipeline(t *testing.T, store identity.Store, registry *geofence.Registry) (*attendance.Pipeline, string) {
	t.Helper()
	logPath := filepath.Join(t.TempDir(), "attendance.csv")
	return attendance.NewPipeline(store, registry, audit.NewLog(logPath)), logPath
}
