package attendance

import (
	"math"

	"github.com/VeriTime/VT-Backend/internal/org"
)

// earthRadiusMeters is the mean Earth radius used by the haversine formula.
const earthRadiusMeters = 6371000

// NoVerifiedPremises is the sentinel premise name reported when an
// institution has nothing to evaluate against.
const NoVerifiedPremises = "no verified locations"

// GeofenceResult is the outcome of evaluating a point against an
// institution's premises. DistanceMeters is exact; round only when
// rendering it to humans.
type GeofenceResult struct {
	WithinFence    bool
	NearestPremise string
	DistanceMeters float64
}

// Distance returns the great-circle distance in meters between two
// coordinates given in decimal degrees.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}

// EvaluateGeofence decides whether a reported point lies inside any premise's
// attendance radius. The caller supplies only active, attendance-enabled,
// verified premises of one institution; this function does not re-filter.
//
// The first premise whose radius contains the point wins. When none does,
// the nearest premise and its distance are reported for diagnostics.
func EvaluateGeofence(point Location, premises []org.Premise) GeofenceResult {
	if len(premises) == 0 {
		return GeofenceResult{
			WithinFence:    false,
			NearestPremise: NoVerifiedPremises,
			DistanceMeters: 0,
		}
	}

	for _, p := range premises {
		d := Distance(point.Latitude, point.Longitude, p.Latitude, p.Longitude)
		if d <= p.AttendanceRadius {
			return GeofenceResult{
				WithinFence:    true,
				NearestPremise: p.Name,
				DistanceMeters: d,
			}
		}
	}

	nearest := premises[0]
	nearestDist := Distance(point.Latitude, point.Longitude, nearest.Latitude, nearest.Longitude)
	for _, p := range premises[1:] {
		d := Distance(point.Latitude, point.Longitude, p.Latitude, p.Longitude)
		if d < nearestDist {
			nearest = p
			nearestDist = d
		}
	}

	return GeofenceResult{
		WithinFence:    false,
		NearestPremise: nearest.Name,
		DistanceMeters: nearestDist,
	}
}
