package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kozaktomas/face-attendance/internal/facemodel"
)

func TestEnrollSuccess(t *testing.T) {
	server := newFaceModelServer(t, []float32{1, 0, 0})
	defer server.Close()

	store := newTestStore(t)
	handler := NewEnrollHandler(testConfig(), facemodel.NewClient(server.URL, ""), store)

	req := postJSON(t, http.MethodPost, "/api/v1/enroll", EnrollRequest{
		Code:   "alice",
		Images: []string{tinyPNGBase64, tinyPNGBase64},
	})
	recorder := httptest.NewRecorder()
	handler.Enroll(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)
	var resp EnrollResponse
	parseJSONResponse(t, recorder, &resp)
	if !resp.OK {
		t.Error("expected ok response")
	}
	if resp.Code != "alice" {
		t.Errorf("expected code alice, got %q", resp.Code)
	}
	if resp.Templates != 2 {
		t.Errorf("expected 2 templates, got %d", resp.Templates)
	}

	count, err := store.Count(context.Background())
	if err != nil {
		t.Fatalf("counting identities: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 enrolled identity, got %d", count)
	}
}

func TestEnrollTrimsAndNormalizesCode(t *testing.T) {
	server := newFaceModelServer(t, []float32{1, 0, 0})
	defer server.Close()

	store := newTestStore(t)
	handler := NewEnrollHandler(testConfig(), facemodel.NewClient(server.URL, ""), store)

	req := postJSON(t, http.MethodPost, "/api/v1/enroll", EnrollRequest{
		Code:   "  alice  ",
		Images: []string{tinyPNGBase64},
	})
	recorder := httptest.NewRecorder()
	handler.Enroll(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)

	codes, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("listing identities: %v", err)
	}
	if len(codes) != 1 || codes[0] != "alice" {
		t.Errorf("expected trimmed code [alice], got %v", codes)
	}
}

func TestEnrollMissingInput(t *testing.T) {
	server := newFaceModelServer(t, []float32{1, 0, 0})
	defer server.Close()

	handler := NewEnrollHandler(testConfig(), facemodel.NewClient(server.URL, ""), newTestStore(t))

	cases := []struct {
		name string
		req  EnrollRequest
	}{
		{"no code", EnrollRequest{Images: []string{tinyPNGBase64}}},
		{"blank code", EnrollRequest{Code: "   ", Images: []string{tinyPNGBase64}}},
		{"no images", EnrollRequest{Code: "alice"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			handler.Enroll(recorder, postJSON(t, http.MethodPost, "/api/v1/enroll", tc.req))

			assertStatusCode(t, recorder, http.StatusBadRequest)
			assertJSONError(t, recorder, errMissingInput)
		})
	}
}

func TestEnrollNoFaceDetected(t *testing.T) {
	server := newFaceModelServer(t, nil)
	defer server.Close()

	store := newTestStore(t)
	handler := NewEnrollHandler(testConfig(), facemodel.NewClient(server.URL, ""), store)

	req := postJSON(t, http.MethodPost, "/api/v1/enroll", EnrollRequest{
		Code:   "alice",
		Images: []string{tinyPNGBase64},
	})
	recorder := httptest.NewRecorder()
	handler.Enroll(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)
	var resp map[string]any
	parseJSONResponse(t, recorder, &resp)
	if resp["ok"] != false {
		t.Error("expected ok=false for image without a face")
	}
	if resp["reason"] != reasonNoFaceDetected {
		t.Errorf("expected reason %q, got %v", reasonNoFaceDetected, resp["reason"])
	}

	count, err := store.Count(context.Background())
	if err != nil {
		t.Fatalf("counting identities: %v", err)
	}
	if count != 0 {
		t.Errorf("no identity must be stored, got %d", count)
	}
}

func TestEnrollInvalidImage(t *testing.T) {
	server := newFaceModelServer(t, []float32{1, 0, 0})
	defer server.Close()

	handler := NewEnrollHandler(testConfig(), facemodel.NewClient(server.URL, ""), newTestStore(t))

	req := postJSON(t, http.MethodPost, "/api/v1/enroll", EnrollRequest{
		Code:   "alice",
		Images: []string{"not-base64!!!"},
	})
	recorder := httptest.NewRecorder()
	handler.Enroll(recorder, req)

	assertStatusCode(t, recorder, http.StatusBadRequest)
	assertJSONError(t, recorder, errInvalidImage)
}

func TestEnrollModelFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	handler := NewEnrollHandler(testConfig(), facemodel.NewClient(server.URL, ""), newTestStore(t))

	req := postJSON(t, http.MethodPost, "/api/v1/enroll", EnrollRequest{
		Code:   "alice",
		Images: []string{tinyPNGBase64},
	})
	recorder := httptest.NewRecorder()
	handler.Enroll(recorder, req)

	assertStatusCode(t, recorder, http.StatusBadGateway)
	assertJSONError(t, recorder, errEmbeddingFailed)
}
