package services

import "math"

// Calculate distance between two points using Haversine formula
func CalculateDistance(lat1, lng1, lat2, lng2 float64) float64 {
	const R = 6371 // Earth's radius in kilometers

	dLat := (lat2 - lat1) * math.Pi / 180
	dLng := (lng2 - lng1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*
			math.Sin(dLng/2)*math.Sin(dLng/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return R * c
}

// ListingDistance computes the distance in kilometers between a reference
// point and a listing's coordinates. A listing without coordinates gets
// distance 0, so "unknown" sorts as nearest; clients receive a hasLocation
// flag alongside so they can tell the two apart.
func ListingDistance(refLat, refLng float64, lat, lng *float64) float64 {
	if lat == nil || lng == nil {
		return 0
	}
	return CalculateDistance(refLat, refLng, *lat, *lng)
}
