package utils

import (
	"github.com/golang/geo/s2"
)

const earthRadiusMeters = 6371010.0

// DistanceMeters returns the great-circle distance between two WGS84 points.
func DistanceMeters(lat1, lon1, lat2, lon2 float64) float64 {
	angle := s2.LatLngFromDegrees(lat1, lon1).Distance(s2.LatLngFromDegrees(lat2, lon2))
	return angle.Radians() * earthRadiusMeters
}

// GPSValid reports whether a reported accuracy is present and within threshold.
// A missing accuracy is never trusted.
func GPSValid(accuracy *float64, threshold float64) bool {
	return accuracy != nil && *accuracy <= threshold
}
