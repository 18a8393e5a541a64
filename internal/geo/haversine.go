// Package geo provides great-circle distance math for geofence checks.
package geo

import "math"

// EarthRadiusM is the mean Earth radius in meters used by the haversine formula.
const EarthRadiusM = 6371000.0

// HaversineM computes the great-circle distance in meters between two
// (lat, lng) coordinates given in degrees.
//
// The square-root argument is clamped to [0, 1] so that identical or
// antipodal points never produce NaN from float rounding.
func HaversineM(lat1, lng1, lat2, lng2 float64) float64 {
	p1 := radians(lat1)
	p2 := radians(lat2)
	dPhi := radians(lat2 - lat1)
	dLambda := radians(lng2 - lng1)

	sinPhi := math.Sin(dPhi / 2)
	sinLambda := math.Sin(dLambda / 2)

	a := sinPhi*sinPhi + math.Cos(p1)*math.Cos(p2)*sinLambda*sinLambda
	if a < 0 {
		a = 0
	}
	if a > 1 {
		a = 1
	}

	return EarthRadiusM * (2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a)))
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
