package util

import (
	"math"

	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
)

const earthRadiusMeters = 6371000.0

// HaversineDistance returns the great-circle distance in meters between two
// coordinates.
func HaversineDistance(lat1, lng1, lat2, lng2 float64) float64 {
	// Convert coordinates from degrees to S2 points
	point1 := s2.PointFromLatLng(s2.LatLngFromDegrees(lat1, lng1))
	point2 := s2.PointFromLatLng(s2.LatLngFromDegrees(lat2, lng2))

	// Calculate angle between points
	angle := s1.Angle(s2.ChordAngleBetweenPoints(point1, point2).Angle())

	// Convert angle to distance on Earth's surface
	return angle.Radians() * earthRadiusMeters
}

// DestinationPoint returns the point reached by traveling distanceMeters from
// (lat, lng) along the given compass bearing on a great circle.
func DestinationPoint(lat, lng, bearingDeg, distanceMeters float64) (float64, float64) {
	latLng := s2.LatLngFromDegrees(lat, lng)
	lat1 := latLng.Lat.Radians()
	lng1 := latLng.Lng.Radians()
	bearing := bearingDeg * math.Pi / 180
	angular := distanceMeters / earthRadiusMeters

	lat2 := math.Asin(math.Sin(lat1)*math.Cos(angular) +
		math.Cos(lat1)*math.Sin(angular)*math.Cos(bearing))
	lng2 := lng1 + math.Atan2(
		math.Sin(bearing)*math.Sin(angular)*math.Cos(lat1),
		math.Cos(angular)-math.Sin(lat1)*math.Sin(lat2))

	out := s2.LatLng{Lat: s1.Angle(lat2), Lng: s1.Angle(lng2)}.Normalized()
	return out.Lat.Degrees(), out.Lng.Degrees()
}

// InitialBearing returns the initial compass bearing in degrees [0, 360)
// from the first point toward the second.
func InitialBearing(lat1, lng1, lat2, lng2 float64) float64 {
	from := s2.LatLngFromDegrees(lat1, lng1)
	to := s2.LatLngFromDegrees(lat2, lng2)

	f1 := from.Lat.Radians()
	f2 := to.Lat.Radians()
	dl := to.Lng.Radians() - from.Lng.Radians()

	y := math.Sin(dl) * math.Cos(f2)
	x := math.Cos(f1)*math.Sin(f2) - math.Sin(f1)*math.Cos(f2)*math.Cos(dl)

	return NormalizeBearing(math.Atan2(y, x) * 180 / math.Pi)
}

// MoveToward returns the point distanceMeters along the great-circle path
// from the start point toward the end point, clamped at the end point.
func MoveToward(startLat, startLng, endLat, endLng, distanceMeters float64) [2]float64 {
	// Convert degrees to S2 points
	startPoint := s2.PointFromLatLng(s2.LatLngFromDegrees(startLat, startLng))
	endPoint := s2.PointFromLatLng(s2.LatLngFromDegrees(endLat, endLng))

	// Calculate total distance between points
	totalDistanceAngle := s1.Angle(s2.ChordAngleBetweenPoints(startPoint, endPoint).Angle())
	totalDistanceMeters := totalDistanceAngle.Radians() * earthRadiusMeters

	// If requested distance exceeds total distance, return end point
	if distanceMeters >= totalDistanceMeters {
		return [2]float64{endLat, endLng}
	}

	// Interpolate on the great circle path
	fraction := distanceMeters / totalDistanceMeters
	newPoint := s2.Interpolate(fraction, startPoint, endPoint)
	newLatLng := s2.LatLngFromPoint(newPoint)

	return [2]float64{newLatLng.Lat.Degrees(), newLatLng.Lng.Degrees()}
}

// NormalizeBearing wraps an angle into [0, 360).
func NormalizeBearing(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}

// AngularDiff returns the smallest absolute difference in degrees between
// two compass bearings, in [0, 180].
func AngularDiff(a, b float64) float64 {
	d := math.Abs(NormalizeBearing(a) - NormalizeBearing(b))
	if d > 180 {
		d = 360 - d
	}
	return d
}

// WithinBand reports whether a compass angle falls inside the band
// [minDeg, maxDeg]. Bands that cross north (min > max) wrap around.
func WithinBand(deg, minDeg, maxDeg float64) bool {
	deg = NormalizeBearing(deg)
	minDeg = NormalizeBearing(minDeg)
	maxDeg = NormalizeBearing(maxDeg)
	if minDeg <= maxDeg {
		return deg >= minDeg && deg <= maxDeg
	}
	return deg >= minDeg || deg <= maxDeg
}
