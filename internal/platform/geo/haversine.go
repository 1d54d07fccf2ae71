// Package geo computes distances between WGS-84 coordinates.
package geo

import (
	"fmt"
	"math"
)

// EarthRadiusMeters is the mean Earth radius used by Distance.
const EarthRadiusMeters = 6_371_000.0

// Point is a latitude/longitude pair in decimal degrees.
type Point struct {
	Lat float64
	Lon float64
}

// Validate reports an error when the point is NaN or outside [-90,90]×[-180,180].
func (p Point) Validate() error {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lon) || math.IsInf(p.Lat, 0) || math.IsInf(p.Lon, 0) {
		return fmt.Errorf("coordinates must be finite numbers")
	}
	if p.Lat < -90 || p.Lat > 90 {
		return fmt.Errorf("latitude %v out of range [-90, 90]", p.Lat)
	}
	if p.Lon < -180 || p.Lon > 180 {
		return fmt.Errorf("longitude %v out of range [-180, 180]", p.Lon)
	}
	return nil
}

// Distance returns the great-circle (haversine) distance in meters.
func Distance(from, to Point) float64 {
	phi1 := radians(from.Lat)
	phi2 := radians(to.Lat)
	dPhi := radians(to.Lat - from.Lat)
	dLambda := radians(to.Lon - from.Lon)

	sinPhi := math.Sin(dPhi / 2)
	sinLambda := math.Sin(dLambda / 2)
	a := sinPhi*sinPhi + math.Cos(phi1)*math.Cos(phi2)*sinLambda*sinLambda
	// Rounding can push a slightly past 1 for antipodal points, which makes
	// Sqrt(1-a) NaN.
	a = math.Min(1, math.Max(0, a))
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusMeters * c
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
