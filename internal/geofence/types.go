// Package geofence holds the per-identity zone registry and the containment
// policy applied to reported GPS positions.
package geofence

import (
	"errors"
	"math"
)

// DefaultCode is the reserved registry key used as a fallback when an
// identity has no explicit zone entry.
const DefaultCode = "default"

// Zone is a circular geofence: a center coordinate plus a radius in meters.
type Zone struct {
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	RadiusM float64 `json:"radius_m"`
}

// Validate checks that the zone's fields are finite and the radius is not negative.
func (z Zone) Validate() error {
	for _, v := range []float64{z.Lat, z.Lng, z.RadiusM} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.New("zone coordinates must be finite")
		}
	}
	if z.RadiusM < 0 {
		return errors.New("zone radius must not be negative")
	}
	return nil
}

// Reason explains the outcome of a geofence or match check.
type Reason string

const (
	ReasonOK              Reason = "ok"
	ReasonGPSAccuracyPoor Reason = "gps_accuracy_poor"
	ReasonNoSites         Reason = "no_sites_configured"
	ReasonOutsideRadius   Reason = "outside_radius"
	ReasonFaceNotMatched  Reason = "face_not_matched"
)

// Result is the outcome of evaluating a reported position against the zones
// resolved for one identity code.
//
// DistanceM is nil when no distance was computed (poor GPS accuracy, no zones
// configured). A nil distance is distinct from a distance of zero.
type Result struct {
	Within    bool
	DistanceM *float64
	Reason    Reason
}
