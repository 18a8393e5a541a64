package geofence

import "github.com/kozaktomas/face-attendance/internal/geo"

// distanceM is the distance function used for containment checks.
var distanceM = geo.HaversineM
