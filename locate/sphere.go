package locate

import "math"

// The renderer's globe uses a right-handed frame with +Y through the north
// pole, +Z through (lat 0, lon 0) and +X through (lat 0, lon 90):
//
//	lat = asin(y / r)
//	lon = atan2(x, z)
//
// Swapping x and z mirrors the globe east to west, so this is part of the
// package contract and must match the mesh the texture is bound to.

// UnitSphereToLatLon returns the latitude and longitude in degrees of the
// direction (x, y, z). The vector need not be normalized. ok is false for
// the zero vector and for non-finite input.
func UnitSphereToLatLon(x, y, z float64) (lat, lon float64, ok bool) {
	r := math.Sqrt(x*x + y*y + z*z)
	if r == 0 || math.IsNaN(r) || math.IsInf(r, 0) {
		return 0, 0, false
	}

	s := math.Max(-1, math.Min(1, y/r))
	lat = math.Asin(s) * 180 / math.Pi
	lon = math.Atan2(x, z) * 180 / math.Pi
	return lat, lon, true
}

// LatLonToUnitSphere is the inverse of UnitSphereToLatLon.
func LatLonToUnitSphere(lat, lon float64) (x, y, z float64) {
	phi := lat * math.Pi / 180
	lambda := lon * math.Pi / 180
	return math.Cos(phi) * math.Sin(lambda), math.Sin(phi), math.Cos(phi) * math.Cos(lambda)
}
