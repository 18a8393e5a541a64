// Package attendance orchestrates face matching and geofence evaluation
// into a single accept/reject decision and records accepted attempts.
package attendance

import (
	"math"

	"github.com/kozaktomas/face-attendance/internal/geofence"
)

// UnknownName is reported when no identity matched above the threshold.
const UnknownName = "Unknown"

// GeofenceResult is the geofence sub-result of a Verdict. DistanceM is nil
// when no distance was computed; zero means the position is exactly at a
// zone center.
type GeofenceResult struct {
	Within    bool            `json:"within"`
	DistanceM *float64        `json:"distance_m"`
	Reason    geofence.Reason `json:"reason"`
}

// Verdict is the structured outcome of one recognition attempt.
type Verdict struct {
	AttemptID string         `json:"attempt_id"`
	Matched   bool           `json:"matched"`
	Name      string         `json:"name"`
	Score     float64        `json:"score"`
	Threshold float64        `json:"threshold"`
	Period    string         `json:"period"`
	Geofence  GeofenceResult `json:"geofence"`
}

// Accepted reports whether the attempt passed both the face match and the
// geofence check.
func (v Verdict) Accepted() bool {
	return v.Matched && v.Geofence.Within
}

// round3 rounds a score to 3 decimals for display.
func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

// round1p rounds a distance to 1 decimal, passing nil through untouched so
// "no distance computed" stays distinguishable from zero.
func round1p(v *float64) *float64 {
	if v == nil {
		return nil
	}
	r := math.Round(*v*10) / 10
	return &r
}
