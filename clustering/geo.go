package clustering

import "math"

// EarthRadiusKm is the sphere radius used for great-circle distances.
const EarthRadiusKm = 6371.0

// Point is a latitude/longitude pair in degrees.
type Point struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// HaversineKm returns the great-circle distance between a and b in kilometres.
func HaversineKm(a, b Point) float64 {
	lat1 := a.Latitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	dLat := lat2 - lat1
	dLon := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * EarthRadiusKm * math.Asin(math.Sqrt(h))
}

// centerOf returns the unweighted mean coordinate of landmarks.
func centerOf(landmarks []Landmark) Point {
	if len(landmarks) == 0 {
		return Point{}
	}
	var lat, lon float64
	for _, l := range landmarks {
		lat += l.Latitude
		lon += l.Longitude
	}
	n := float64(len(landmarks))
	return Point{Latitude: lat / n, Longitude: lon / n}
}

func (l Landmark) point() Point {
	return Point{Latitude: l.Latitude, Longitude: l.Longitude}
}
