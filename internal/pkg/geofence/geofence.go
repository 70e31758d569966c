// Package geofence derives the square service area sent with every registration.
package geofence

import (
	"math"

	"roflexi/internal/domain"
)

const (
	// DefaultHalfSideKm is the distance from the center to each side of the square.
	DefaultHalfSideKm = 2.0

	kmPerLatDegree = 110.574
	kmPerLngDegree = 111.320
)

// KmToLatDeg converts a north-south distance to degrees of latitude.
func KmToLatDeg(km float64) float64 {
	return km / kmPerLatDegree
}

// KmToLngDeg converts an east-west distance at the given latitude to degrees of longitude.
func KmToLngDeg(km, latDeg float64) float64 {
	return km / (kmPerLngDegree * math.Cos(latDeg*math.Pi/180))
}

// Square returns the corners of the axis-aligned square around center in
// clockwise order: NE, NW, SW, SE. Undefined at the poles.
func Square(center domain.GeoPoint, halfSideKm float64) []domain.GeoPoint {
	dLat := KmToLatDeg(halfSideKm)
	dLng := KmToLngDeg(halfSideKm, center.Lat)

	return []domain.GeoPoint{
		{Lat: center.Lat + dLat, Lng: center.Lng + dLng},
		{Lat: center.Lat + dLat, Lng: center.Lng - dLng},
		{Lat: center.Lat - dLat, Lng: center.Lng - dLng},
		{Lat: center.Lat - dLat, Lng: center.Lng + dLng},
	}
}

// DefaultSquare is Square with DefaultHalfSideKm.
func DefaultSquare(center domain.GeoPoint) []domain.GeoPoint {
	return Square(center, DefaultHalfSideKm)
}
