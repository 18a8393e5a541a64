package handlers

import (
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/kozaktomas/face-attendance/internal/facemodel"
	"github.com/kozaktomas/face-attendance/internal/geofence"
)

// recognizeFixture builds a handler with alice enrolled as {1,0,0} and a
// 200 m zone at the test coordinates. The model server returns the given
// probe embedding for every image.
func recognizeFixture(t *testing.T, probe []float32) (*RecognizeHandler, string) {
	t.Helper()

	server := newFaceModelServer(t, probe)
	t.Cleanup(server.Close)

	store := newTestStore(t)
	enrollDirect(t, store, "alice", []float32{1, 0, 0})

	registry := newTestRegistry(t, map[string][]geofence.Zone{
		"alice": {{Lat: testZoneLat, Lng: testZoneLng, RadiusM: 200}},
	})

	pipeline, logPath := recognizePipeline(t, store, registry)
	return NewRecognizeHandler(testConfig(), facemodel.NewClient(server.URL, ""), pipeline), logPath
}

func floatPtr(v float64) *float64 { return &v }

func TestRecognizeAccepted(t *testing.T) {
	handler, logPath := recognizeFixture(t, []float32{1, 0, 0})

	req := postJSON(t, http.MethodPost, "/api/v1/recognize", RecognizeRequest{
		Image:    tinyPNGBase64,
		Lat:      floatPtr(testZoneLat),
		Lng:      floatPtr(testZoneLng),
		Accuracy: floatPtr(10),
	})
	recorder := httptest.NewRecorder()
	handler.Recognize(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)
	var resp RecognizeResponse
	parseJSONResponse(t, recorder, &resp)

	if !resp.OK {
		t.Error("expected ok response")
	}
	if !resp.Matched {
		t.Error("expected a match")
	}
	if resp.Name != "alice" {
		t.Errorf("expected name alice, got %q", resp.Name)
	}
	if resp.Score != 1.0 {
		t.Errorf("expected score 1.0, got %v", resp.Score)
	}
	if resp.Threshold != 0.50 {
		t.Errorf("expected default threshold 0.50, got %v", resp.Threshold)
	}
	if !resp.Geofence.Within {
		t.Error("expected position inside the zone")
	}
	if resp.Geofence.Reason != geofence.ReasonOK {
		t.Errorf("expected reason ok, got %q", resp.Geofence.Reason)
	}
	if resp.AttemptID == "" {
		t.Error("expected an attempt id")
	}

	// The accepted attempt lands in the audit log with the default kind.
	content := readFileString(t, logPath)
	if !strings.Contains(content, "alice,checkin,") {
		t.Errorf("expected audit row for alice checkin, got:\n%s", content)
	}
}

func TestRecognizeBelowThreshold(t *testing.T) {
	// Orthogonal probe scores 0.0 against alice.
	handler, logPath := recognizeFixture(t, []float32{0, 0, 1})

	req := postJSON(t, http.MethodPost, "/api/v1/recognize", RecognizeRequest{
		Image: tinyPNGBase64,
		Lat:   floatPtr(testZoneLat),
		Lng:   floatPtr(testZoneLng),
	})
	recorder := httptest.NewRecorder()
	handler.Recognize(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)
	var resp RecognizeResponse
	parseJSONResponse(t, recorder, &resp)

	if !resp.OK {
		t.Error("every valid attempt gets a structured verdict")
	}
	if resp.Matched {
		t.Error("expected no match")
	}
	if resp.Name != "Unknown" {
		t.Errorf("expected name Unknown, got %q", resp.Name)
	}
	if resp.Geofence.Reason != geofence.ReasonFaceNotMatched {
		t.Errorf("expected reason face_not_matched, got %q", resp.Geofence.Reason)
	}
	if resp.Geofence.DistanceM != nil {
		t.Errorf("no geofence evaluation means no distance, got %v", *resp.Geofence.DistanceM)
	}

	// Rejected attempts are not recorded; the log is created lazily on the
	// first accepted attempt, so the file must not exist at all.
	if _, err := os.Stat(logPath); !os.IsNotExist(err) {
		t.Errorf("expected no audit log file, stat returned %v", err)
	}
}

func TestRecognizeOutsideRadius(t *testing.T) {
	handler, _ := recognizeFixture(t, []float32{1, 0, 0})

	// Roughly 5 km north of the zone.
	req := postJSON(t, http.MethodPost, "/api/v1/recognize", RecognizeRequest{
		Image:    tinyPNGBase64,
		Lat:      floatPtr(testZoneLat + 0.045),
		Lng:      floatPtr(testZoneLng),
		Accuracy: floatPtr(10),
	})
	recorder := httptest.NewRecorder()
	handler.Recognize(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)
	var resp RecognizeResponse
	parseJSONResponse(t, recorder, &resp)

	if !resp.Matched {
		t.Error("face still matches outside the zone")
	}
	if resp.Geofence.Within {
		t.Error("expected position outside the zone")
	}
	if resp.Geofence.Reason != geofence.ReasonOutsideRadius {
		t.Errorf("expected reason outside_radius, got %q", resp.Geofence.Reason)
	}
	if resp.Geofence.DistanceM == nil {
		t.Fatal("expected a distance to the nearest zone")
	}
	if d := *resp.Geofence.DistanceM; d < 4950 || d > 5050 {
		t.Errorf("expected distance near 5000 m, got %v", d)
	}
}

func TestRecognizeCustomThreshold(t *testing.T) {
	handler, _ := recognizeFixture(t, []float32{0, 0, 1})

	// Threshold -1 matches anything, including an orthogonal probe.
	req := postJSON(t, http.MethodPost, "/api/v1/recognize", RecognizeRequest{
		Image:     tinyPNGBase64,
		Threshold: floatPtr(-1),
		Lat:       floatPtr(testZoneLat),
		Lng:       floatPtr(testZoneLng),
	})
	recorder := httptest.NewRecorder()
	handler.Recognize(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)
	var resp RecognizeResponse
	parseJSONResponse(t, recorder, &resp)

	if !resp.Matched {
		t.Error("threshold -1 must match any probe")
	}
	if resp.Threshold != -1 {
		t.Errorf("expected threshold -1 echoed back, got %v", resp.Threshold)
	}
}

func TestRecognizeMissingLocation(t *testing.T) {
	handler, _ := recognizeFixture(t, []float32{1, 0, 0})

	cases := []struct {
		name string
		req  RecognizeRequest
	}{
		{"no lat", RecognizeRequest{Image: tinyPNGBase64, Lng: floatPtr(testZoneLng)}},
		{"no lng", RecognizeRequest{Image: tinyPNGBase64, Lat: floatPtr(testZoneLat)}},
		{"neither", RecognizeRequest{Image: tinyPNGBase64}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			handler.Recognize(recorder, postJSON(t, http.MethodPost, "/api/v1/recognize", tc.req))

			assertStatusCode(t, recorder, http.StatusBadRequest)
			assertJSONError(t, recorder, errMissingLocation)
		})
	}
}

func TestRecognizeMissingImage(t *testing.T) {
	handler, _ := recognizeFixture(t, []float32{1, 0, 0})

	req := postJSON(t, http.MethodPost, "/api/v1/recognize", RecognizeRequest{
		Lat: floatPtr(testZoneLat),
		Lng: floatPtr(testZoneLng),
	})
	recorder := httptest.NewRecorder()
	handler.Recognize(recorder, req)

	assertStatusCode(t, recorder, http.StatusBadRequest)
	assertJSONError(t, recorder, errMissingImage)
}

func TestRecognizeNoFaceDetected(t *testing.T) {
	handler, _ := recognizeFixture(t, nil)

	req := postJSON(t, http.MethodPost, "/api/v1/recognize", RecognizeRequest{
		Image: tinyPNGBase64,
		Lat:   floatPtr(testZoneLat),
		Lng:   floatPtr(testZoneLng),
	})
	recorder := httptest.NewRecorder()
	handler.Recognize(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)
	var resp map[string]any
	parseJSONResponse(t, recorder, &resp)
	if resp["ok"] != false {
		t.Error("expected ok=false soft negative")
	}
	if resp["reason"] != reasonNoFaceDetected {
		t.Errorf("expected reason %q, got %v", reasonNoFaceDetected, resp["reason"])
	}
}

func TestRecognizePoorAccuracy(t *testing.T) {
	handler, _ := recognizeFixture(t, []float32{1, 0, 0})

	req := postJSON(t, http.MethodPost, "/api/v1/recognize", RecognizeRequest{
		Image:    tinyPNGBase64,
		Lat:      floatPtr(testZoneLat),
		Lng:      floatPtr(testZoneLng),
		Accuracy: floatPtr(9999),
	})
	recorder := httptest.NewRecorder()
	handler.Recognize(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)
	var resp RecognizeResponse
	parseJSONResponse(t, recorder, &resp)

	if resp.Geofence.Within {
		t.Error("poor accuracy must reject even a position inside the zone")
	}
	if resp.Geofence.Reason != geofence.ReasonGPSAccuracyPoor {
		t.Errorf("expected reason gps_accuracy_poor, got %q", resp.Geofence.Reason)
	}
}
